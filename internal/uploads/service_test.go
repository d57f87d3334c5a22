package uploads

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/davidgarza-dev/fieldmark-backend/pkg/errors"
)

type stubSigner struct {
	lastBucket      string
	lastObject      string
	lastContentType string
	lastExpires     time.Duration
	err             error
}

func (s *stubSigner) SignedURL(bucket, object, contentType string, expires time.Duration) (string, error) {
	s.lastBucket = bucket
	s.lastObject = object
	s.lastContentType = contentType
	s.lastExpires = expires
	if s.err != nil {
		return "", s.err
	}
	return "https://signed.example/" + object, nil
}

func (s *stubSigner) SignedReadURL(bucket, object string, expires time.Duration) (string, error) {
	s.lastBucket = bucket
	s.lastObject = object
	s.lastExpires = expires
	if s.err != nil {
		return "", s.err
	}
	return "https://signed.example/read/" + object, nil
}

func TestPresignUploadBuildsScopedKey(t *testing.T) {
	signer := &stubSigner{}
	svc, err := NewService(signer, "fm-photos", 15*time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	promoterID := uuid.New()
	out, err := svc.PresignUpload(context.Background(), promoterID, PresignInput{
		MimeType:  "image/jpeg",
		FileName:  "store front.jpg",
		SizeBytes: 1024,
	})
	if err != nil {
		t.Fatalf("PresignUpload returned error: %v", err)
	}

	if !strings.HasPrefix(out.ObjectKey, "photos/"+promoterID.String()+"/") {
		t.Fatalf("object key %q not scoped to promoter", out.ObjectKey)
	}
	if !strings.HasSuffix(out.ObjectKey, "/store-front.jpg") {
		t.Fatalf("object key %q did not sanitize the file name", out.ObjectKey)
	}
	if out.PhotoURL != "https://storage.googleapis.com/fm-photos/"+out.ObjectKey {
		t.Fatalf("unexpected photo url %q", out.PhotoURL)
	}
	if out.SignedPutURL == "" {
		t.Fatal("expected a signed put url")
	}
	if signer.lastBucket != "fm-photos" || signer.lastContentType != "image/jpeg" {
		t.Fatalf("signer called with bucket=%q contentType=%q", signer.lastBucket, signer.lastContentType)
	}
	if signer.lastExpires != 15*time.Minute {
		t.Fatalf("signer called with expires=%v", signer.lastExpires)
	}
}

func TestPresignUploadRejectsBadInput(t *testing.T) {
	svc, err := NewService(&stubSigner{}, "fm-photos", 15*time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	cases := []struct {
		name  string
		input PresignInput
	}{
		{"missing file name", PresignInput{MimeType: "image/jpeg", SizeBytes: 10}},
		{"zero size", PresignInput{MimeType: "image/jpeg", FileName: "a.jpg"}},
		{"oversized", PresignInput{MimeType: "image/jpeg", FileName: "a.jpg", SizeBytes: maxUploadBytes + 1}},
		{"disallowed mime", PresignInput{MimeType: "application/pdf", FileName: "a.pdf", SizeBytes: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.PresignUpload(context.Background(), uuid.New(), tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestPresignDownloadSignsPhotoObjects(t *testing.T) {
	signer := &stubSigner{}
	svc, err := NewService(signer, "fm-photos", 15*time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	key := "photos/" + uuid.NewString() + "/abc/front.jpg"
	out, err := svc.PresignDownload(context.Background(), key)
	if err != nil {
		t.Fatalf("PresignDownload returned error: %v", err)
	}
	if out.SignedGetURL != "https://signed.example/read/"+key {
		t.Fatalf("unexpected signed url %q", out.SignedGetURL)
	}
	if signer.lastExpires != time.Hour {
		t.Fatalf("signer called with expires=%v", signer.lastExpires)
	}
}

func TestPresignDownloadRejectsForeignKeys(t *testing.T) {
	svc, err := NewService(&stubSigner{}, "fm-photos", 15*time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	for _, key := range []string{"", "exports/report.csv", "photos/../secrets"} {
		_, err := svc.PresignDownload(context.Background(), key)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("key %q: expected validation error, got %v", key, err)
		}
	}
}

func TestPresignUploadMapsSignerFailure(t *testing.T) {
	svc, err := NewService(&stubSigner{err: errors.New("no key")}, "fm-photos", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	_, err = svc.PresignUpload(context.Background(), uuid.New(), PresignInput{
		MimeType:  "image/png",
		FileName:  "a.png",
		SizeBytes: 10,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
