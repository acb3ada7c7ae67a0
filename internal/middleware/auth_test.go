package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hirewire/hirewire/internal/model"
	"github.com/hirewire/hirewire/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newAuthFixture(t *testing.T) (*AuthMiddleware, *gorm.DB) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&model.Role{}, &model.User{}, &model.Profile{}, &model.BlacklistedToken{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	m := NewAuthMiddleware(repository.NewUserRepository(db), repository.NewBlacklistRepository(db))
	return m, db
}

func signToken(t *testing.T, subject string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newAuthRouter(m *AuthMiddleware, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := append([]gin.HandlerFunc{m.RequireAuth()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})
	router.GET("/protected", handlers...)
	return router
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	m, _ := newAuthFixture(t)
	router := newAuthRouter(m)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRequireAuthAcceptsBearerHeader(t *testing.T) {
	m, _ := newAuthFixture(t)
	router := newAuthRouter(m)

	subject := uuid.NewString()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, subject))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestRequireAuthAcceptsQueryToken(t *testing.T) {
	m, _ := newAuthFixture(t)
	router := newAuthRouter(m)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected?token="+signToken(t, uuid.NewString()), nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestRequireAuthRejectsBlacklistedToken(t *testing.T) {
	m, db := newAuthFixture(t)
	router := newAuthRouter(m)

	token := signToken(t, uuid.NewString())
	entry := model.BlacklistedToken{Token: token, ExpiresAt: time.Now().Add(time.Hour)}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("blacklist token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRequireRoleForbidsWrongRole(t *testing.T) {
	m, db := newAuthFixture(t)

	roleID := model.RoleInterviewer
	user := model.User{Email: "interviewer@example.com", PasswordHash: "x", RoleID: &roleID}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	router := newAuthRouter(m, m.RequireRole(model.RoleAdministrator))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, user.ID.String()))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
	m, db := newAuthFixture(t)

	roleID := model.RoleAdministrator
	user := model.User{Email: "admin@example.com", PasswordHash: "x", RoleID: &roleID}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	router := newAuthRouter(m, m.RequireRole(model.RoleAdministrator, model.RoleRecruiter))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, user.ID.String()))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}
