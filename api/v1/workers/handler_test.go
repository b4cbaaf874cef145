package workers

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

func TestDeployScript_RejectsOversizeBody(t *testing.T) {
	r := gin.New()
	h := NewHandler(service.NewWorkersService(nil, nil))
	r.PUT("/sites/:siteId/workers/scripts/:name", h.DeployScript)

	body := strings.Repeat("a", maxScriptSize+1)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/sites/site-1/workers/scripts/my-worker",
		strings.NewReader(body))
	req.Header.Set("Content-Type", "application/javascript")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "1 MB") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestDeployTemplate_RequiresTemplate(t *testing.T) {
	r := gin.New()
	h := NewHandler(service.NewWorkersService(nil, nil))
	r.POST("/sites/:siteId/workers/scripts/:name/from-template", h.DeployTemplate)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sites/site-1/workers/scripts/my-worker/from-template",
		strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}
