package uploads

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	pkgerrors "github.com/davidgarza-dev/fieldmark-backend/pkg/errors"
)

const maxUploadBytes = 20 * 1024 * 1024

var allowedMimeTypes = []string{"image/jpeg", "image/png", "image/webp"}

type urlSigner interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
}

// Service mints short-lived upload and download URLs for visit photos. No row
// is written here; the photo record is created when the client attaches the
// uploaded object to a visit.
type Service interface {
	PresignUpload(ctx context.Context, promoterID uuid.UUID, input PresignInput) (*PresignOutput, error)
	PresignDownload(ctx context.Context, objectKey string) (*DownloadOutput, error)
}

type service struct {
	signer      urlSigner
	bucket      string
	uploadTTL   time.Duration
	downloadTTL time.Duration
}

// NewService constructs an upload service backed by the provided URL signer.
func NewService(signer urlSigner, bucket string, uploadTTL, downloadTTL time.Duration) (Service, error) {
	if signer == nil {
		return nil, fmt.Errorf("url signer required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("storage bucket required")
	}
	if uploadTTL <= 0 {
		return nil, fmt.Errorf("upload ttl must be positive")
	}
	if downloadTTL <= 0 {
		return nil, fmt.Errorf("download ttl must be positive")
	}
	return &service{signer: signer, bucket: bucket, uploadTTL: uploadTTL, downloadTTL: downloadTTL}, nil
}

// PresignInput models the payload required to request an upload URL.
type PresignInput struct {
	MimeType  string
	FileName  string
	SizeBytes int64
}

// PresignOutput is returned to the client. PhotoURL is the durable object
// address the client later submits on check-in, check-out, or photo attach.
type PresignOutput struct {
	ObjectKey    string    `json:"object_key"`
	PhotoURL     string    `json:"photo_url"`
	SignedPutURL string    `json:"signed_put_url"`
	ContentType  string    `json:"content_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (s *service) PresignUpload(ctx context.Context, promoterID uuid.UUID, input PresignInput) (*PresignOutput, error) {
	if promoterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promoter identity missing")
	}

	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file_name is required")
	}
	if input.SizeBytes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size_bytes must be positive")
	}
	if input.SizeBytes > maxUploadBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("size_bytes must be at most %d bytes", maxUploadBytes))
	}

	mimeType := strings.TrimSpace(input.MimeType)
	if !isAllowedMime(mimeType) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mime_type not allowed for photos")
	}

	objectKey := buildObjectKey(promoterID, fileName)

	signedURL, err := s.signer.SignedURL(s.bucket, objectKey, mimeType, s.uploadTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}

	return &PresignOutput{
		ObjectKey:    objectKey,
		PhotoURL:     fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectKey),
		SignedPutURL: signedURL,
		ContentType:  mimeType,
		ExpiresAt:    time.Now().Add(s.uploadTTL),
	}, nil
}

// DownloadOutput carries a short-lived read URL for a stored photo object.
type DownloadOutput struct {
	ObjectKey    string    `json:"object_key"`
	SignedGetURL string    `json:"signed_get_url"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (s *service) PresignDownload(ctx context.Context, objectKey string) (*DownloadOutput, error) {
	objectKey = strings.TrimSpace(objectKey)
	if objectKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "object is required")
	}
	// Only objects minted by PresignUpload are downloadable through here.
	if !strings.HasPrefix(objectKey, "photos/") || strings.Contains(objectKey, "..") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "object key outside the photo namespace")
	}

	signedURL, err := s.signer.SignedReadURL(s.bucket, objectKey, s.downloadTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign download url")
	}

	return &DownloadOutput{
		ObjectKey:    objectKey,
		SignedGetURL: signedURL,
		ExpiresAt:    time.Now().Add(s.downloadTTL),
	}, nil
}

func isAllowedMime(mimeType string) bool {
	for _, candidate := range allowedMimeTypes {
		if strings.EqualFold(candidate, mimeType) {
			return true
		}
	}
	return false
}

func buildObjectKey(promoterID uuid.UUID, fileName string) string {
	cleanName := sanitizeFileName(fileName)
	id := uuid.New()
	if cleanName == "" {
		cleanName = id.String()
	}
	return fmt.Sprintf("photos/%s/%s/%s", promoterID.String(), id.String(), cleanName)
}

func sanitizeFileName(name string) string {
	clean := path.Base(strings.TrimSpace(name))
	if clean == "." || clean == "/" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
