package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cf_bridge/internal/httpx"
)

func TestValidateBucketName(t *testing.T) {
	valid := []string{
		"media",
		"my-site-uploads",
		"a1b",
		"bucket-2024",
		strings.Repeat("a", 63),
	}
	for _, name := range valid {
		if err := ValidateBucketName(name); err != nil {
			t.Errorf("Expected '%s' to be valid: %v", name, err)
		}
	}

	invalid := []string{
		"",
		"ab",
		"UPPER",
		"has_underscore",
		"-leading",
		"trailing-",
		"dots.not.allowed",
		strings.Repeat("a", 64),
	}
	for _, name := range invalid {
		if err := ValidateBucketName(name); err == nil {
			t.Errorf("Expected '%s' to be rejected", name)
		}
	}
}

func TestValidateObjectKey(t *testing.T) {
	valid := []string{
		"photo.jpg",
		"uploads/2026/08/photo.jpg",
		"path with spaces.txt",
		strings.Repeat("k", 1024),
	}
	for _, key := range valid {
		if err := ValidateObjectKey(key); err != nil {
			t.Errorf("Expected '%s' to be valid: %v", key, err)
		}
	}

	invalid := []string{
		"",
		"/leading-slash.txt",
		strings.Repeat("k", 1025),
	}
	for _, key := range invalid {
		if err := ValidateObjectKey(key); err == nil {
			t.Errorf("Expected '%s' to be rejected", key)
		}
	}
}

func TestR2UploadObject_RejectsEmptyBody(t *testing.T) {
	svc := NewR2Service(nil, stubProvider{})
	err := svc.UploadObject(context.Background(), "site-1", "media", "photo.jpg", "image/jpeg", nil)
	if err == nil {
		t.Fatal("Expected an empty body to be rejected")
	}
	if MapError(err).Code != httpx.CodeValidationError {
		t.Errorf("Expected VALIDATION_ERROR, got %s", MapError(err).Code)
	}
}

func TestR2ListObjects_FiltersByPrefix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/r2/buckets/media/objects") {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("prefix"); got != "uploads/" {
			t.Errorf("Expected prefix query 'uploads/', got %q", got)
		}
		fmt.Fprint(w, `{"success":true,"errors":[],"result":[{"key":"uploads/a.jpg","size":1024},{"key":"uploads/b.jpg","size":2048}]}`)
	}))
	defer srv.Close()

	svc := NewR2Service(nil, &cfProvider{baseURL: srv.URL})
	objects, err := svc.ListObjects(context.Background(), "site-1", "media", "uploads/")
	if err != nil {
		t.Fatalf("ListObjects() failed: %v", err)
	}
	if len(objects) != 2 || objects[0].Key != "uploads/a.jpg" || objects[1].Size != 2048 {
		t.Errorf("Unexpected objects: %+v", objects)
	}
}
