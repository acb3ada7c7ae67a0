package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// DocumentStorage defines the contract for candidate document storage
// (resumes, cover letters). Cloudinary implementation below.
type DocumentStorage interface {
	// UploadDocument uploads a file from reader and returns the secure URL
	// and the public ID needed to delete it later. folder is a logical
	// folder in storage (e.g. "resumes").
	UploadDocument(ctx context.Context, r io.Reader, folder, fileName string) (url, publicID string, err error)
	// DeleteDocument removes a previously uploaded document by public ID.
	DeleteDocument(ctx context.Context, publicID string) error
}

type cloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStorage creates a Cloudinary-backed DocumentStorage.
// It expects CLOUDINARY_URL or individual CLOUDINARY_CLOUD_NAME /
// CLOUDINARY_API_KEY / CLOUDINARY_API_SECRET in the environment.
func NewCloudinaryStorage() (DocumentStorage, error) {
	// cloudinary.New() automatically reads CLOUDINARY_URL from environment if present.
	cld, err := cloudinary.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	cld.Config.URL.Secure = true

	if cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME"); cloudName != "" {
		cld.Config.Cloud.CloudName = cloudName
	}

	return &cloudinaryStorage{cld: cld}, nil
}

func (s *cloudinaryStorage) UploadDocument(ctx context.Context, r io.Reader, folder, fileName string) (string, string, error) {
	if s == nil || s.cld == nil {
		return "", "", fmt.Errorf("cloudinary storage is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	publicID := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileName)

	params := uploader.UploadParams{
		Folder:         folder,
		UseFilename:    api.Bool(true),
		UniqueFilename: api.Bool(true),
		PublicID:       publicID,
		Overwrite:      api.Bool(false),
		// Documents are served as-is, no image transformation.
		ResourceType: "raw",
	}

	resp, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return "", "", fmt.Errorf("failed to upload document to cloudinary: %w", err)
	}

	if resp.SecureURL == "" {
		return "", "", fmt.Errorf("cloudinary upload succeeded but secure URL is empty")
	}

	return resp.SecureURL, resp.PublicID, nil
}

func (s *cloudinaryStorage) DeleteDocument(ctx context.Context, publicID string) error {
	if s == nil || s.cld == nil {
		return fmt.Errorf("cloudinary storage is not initialized")
	}

	if publicID == "" {
		return fmt.Errorf("missing public ID")
	}

	// Invalidate: true helps to clear CDN cache
	params := uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "raw",
		Invalidate:   api.Bool(true),
	}

	resp, err := s.cld.Upload.Destroy(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to delete document from cloudinary: %w", err)
	}

	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy api returned result: %s", resp.Result)
	}

	return nil
}
