package events

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cf_bridge/internal/events"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(worker *events.Worker) *gin.Engine {
	r := gin.New()
	h := NewHandler(worker)
	r.POST("/sites/:siteId/events", h.Report)
	return r
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sites/site-1/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestReport_Queued(t *testing.T) {
	// Worker is never started; a queued event just sits in the channel.
	worker := events.NewWorker(nil, nil, 4)
	r := newTestRouter(worker)

	w := post(r, `{"kind":"post_published","url":"https://example.com/hello","site_url":"https://example.com"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data struct {
			Queued bool `json:"queued"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Data.Queued {
		t.Fatal("event should have been queued")
	}
}

func TestReport_UnknownKind(t *testing.T) {
	worker := events.NewWorker(nil, nil, 4)
	r := newTestRouter(worker)

	w := post(r, `{"kind":"comment_posted"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestReport_MissingKind(t *testing.T) {
	worker := events.NewWorker(nil, nil, 4)
	r := newTestRouter(worker)

	w := post(r, `{"url":"https://example.com/x"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestReport_WorkerDisabled(t *testing.T) {
	r := newTestRouter(nil)

	w := post(r, `{"kind":"post_published"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "auto-purge is disabled") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestReport_FullQueueReportsDrop(t *testing.T) {
	worker := events.NewWorker(nil, nil, 1)
	r := newTestRouter(worker)

	if w := post(r, `{"kind":"post_published"}`); w.Code != http.StatusOK {
		t.Fatalf("first enqueue: status = %d", w.Code)
	}

	w := post(r, `{"kind":"post_updated"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Data struct {
			Queued bool `json:"queued"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Data.Queued {
		t.Fatal("second event should have been dropped")
	}
}
