package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(t *testing.T, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)
	return w
}

func TestOK_Envelope(t *testing.T) {
	w := perform(t, func(c *gin.Context) {
		OK(c, gin.H{"name": "example"})
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Success || resp.Data["name"] != "example" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestFailErr_Envelope(t *testing.T) {
	w := perform(t, func(c *gin.Context) {
		FailErr(c, ErrRateLimited("", 42))
	})

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Success {
		t.Fatal("error envelope must have success=false")
	}
	if resp.Error.Code != CodeRateLimited {
		t.Fatalf("code = %q", resp.Error.Code)
	}
	if resp.Error.Details["retry_after"] != float64(42) {
		t.Fatalf("details = %v", resp.Error.Details)
	}
}

func TestFailAny_UnwrapsAppError(t *testing.T) {
	w := perform(t, func(c *gin.Context) {
		FailAny(c, ErrNotFound("record not found"))
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}

	// Unknown errors become a 500 without leaking the internal message
	w = perform(t, func(c *gin.Context) {
		FailAny(c, errors.New("dial tcp: connection refused"))
	})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error.Code != CodeInternalError {
		t.Fatalf("code = %q", resp.Error.Code)
	}
	if resp.Error.Message == "dial tcp: connection refused" {
		t.Fatal("internal error text must not leak to the client")
	}
}

func TestOKList_Meta(t *testing.T) {
	w := perform(t, func(c *gin.Context) {
		OKList(c, []string{"a", "b"}, 17, 2, 10)
	})

	var resp struct {
		Meta ListMeta `json:"meta"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Meta.Total != 17 || resp.Meta.Page != 2 || resp.Meta.PageSize != 10 {
		t.Fatalf("meta = %+v", resp.Meta)
	}
}
