package r2

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cf_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func objectRouter() *gin.Engine {
	r := gin.New()
	h := NewHandler(service.NewR2Service(nil, nil))
	r.PUT("/sites/:siteId/r2/buckets/:name/objects/*key", h.UploadObject)
	return r
}

func TestUploadObject_RejectsEmptyKey(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/sites/site-1/r2/buckets/media/objects/",
		strings.NewReader("payload"))
	objectRouter().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "key") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestUploadObject_RejectsEmptyBody(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/sites/site-1/r2/buckets/media/objects/photo.jpg", nil)
	objectRouter().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "body") {
		t.Fatalf("body = %s", w.Body.String())
	}
}
