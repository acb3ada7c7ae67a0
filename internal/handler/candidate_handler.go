package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hirewire/hirewire/internal/dto"
	"github.com/hirewire/hirewire/internal/service"
	"github.com/hirewire/hirewire/pkg/response"
	"github.com/hirewire/hirewire/pkg/validator"
	"github.com/redis/go-redis/v9"
)

type CandidateHandler struct {
	service   service.CandidateService
	redis     *redis.Client
	applyWait time.Duration
}

func NewCandidateHandler(svc service.CandidateService, rdb *redis.Client, applyWait time.Duration) *CandidateHandler {
	return &CandidateHandler{service: svc, redis: rdb, applyWait: applyWait}
}

func (h *CandidateHandler) Create(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.CreateCandidateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	candidate, err := h.service.CreateCandidate(c.Request.Context(), input, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": candidate})
}

func (h *CandidateHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid candidate id"})
		return
	}

	candidate, err := h.service.GetCandidate(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": candidate})
}

func (h *CandidateHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	candidates, err := h.service.ListCandidates(c.Request.Context(), limit, offset)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": candidates})
}

func (h *CandidateHandler) Update(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid candidate id"})
		return
	}

	var input dto.UpdateCandidateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	candidate, err := h.service.UpdateCandidate(c.Request.Context(), id, input, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": candidate})
}

func (h *CandidateHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid candidate id"})
		return
	}

	if err := h.service.DeleteCandidate(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "candidate deleted"})
}

// Apply is public and rate limited per applicant email so one person cannot
// flood the recruiters with notifications.
func (h *CandidateHandler) Apply(c *gin.Context) {
	var input dto.ApplyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	allowed, err := service.CheckAndSetRateLimit(c.Request.Context(), h.redis, input.Email, "apply", h.applyWait)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "please wait before applying again"})
		return
	}

	candidate, err := h.service.Apply(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": candidate})
}

func (h *CandidateHandler) ChangeStage(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid candidate id"})
		return
	}

	var input dto.ChangeStageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	candidate, err := h.service.ChangeStage(c.Request.Context(), id, input.StageID, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": candidate})
}

func (h *CandidateHandler) UploadDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid candidate id"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer file.Close()

	docType := c.PostForm("type")
	if docType == "" {
		docType = "resume"
	}

	doc, err := h.service.AttachDocument(c.Request.Context(), id, docType, fileHeader.Filename, file)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": doc})
}

func (h *CandidateHandler) DeleteDocument(c *gin.Context) {
	candidateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid candidate id"})
		return
	}
	documentID, err := uuid.Parse(c.Param("docId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	if err := h.service.RemoveDocument(c.Request.Context(), candidateID, documentID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "document deleted"})
}
