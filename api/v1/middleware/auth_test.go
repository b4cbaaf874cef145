package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cf_bridge/internal/auth"
	"cf_bridge/internal/httpx"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedRouter() *gin.Engine {
	r := gin.New()
	r.Use(AuthRequired())
	r.GET("/whoami", func(c *gin.Context) {
		uid, _ := c.Get("uid")
		username, _ := c.Get("username")
		httpx.OK(c, gin.H{"uid": uid, "username": username})
	})
	return r
}

func request(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return resp.Error.Code
}

func TestAuthRequired_ValidToken(t *testing.T) {
	auth.InitJWT("middleware-test-secret")
	token, err := auth.GenerateToken(3, "dave", "admin", time.Now().Add(time.Hour), "cf_bridge")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	w := request(newProtectedRouter(), "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data struct {
			UID      int    `json:"uid"`
			Username string `json:"username"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Data.UID != 3 || resp.Data.Username != "dave" {
		t.Fatalf("data = %+v", resp.Data)
	}
}

func TestAuthRequired_MissingHeader(t *testing.T) {
	auth.InitJWT("middleware-test-secret")
	w := request(newProtectedRouter(), "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	if code := errorCode(t, w); code != httpx.CodeUnauthorized {
		t.Fatalf("code = %q", code)
	}
}

func TestAuthRequired_MalformedHeader(t *testing.T) {
	auth.InitJWT("middleware-test-secret")
	w := request(newProtectedRouter(), "Token abc123")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestAuthRequired_ExpiredToken(t *testing.T) {
	auth.InitJWT("middleware-test-secret")
	token, err := auth.GenerateToken(3, "dave", "admin", time.Now().Add(-time.Minute), "cf_bridge")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	w := request(newProtectedRouter(), "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	if code := errorCode(t, w); code != httpx.CodeTokenExpired {
		t.Fatalf("code = %q, want TOKEN_EXPIRED", code)
	}
}

func TestAuthRequired_GarbageToken(t *testing.T) {
	auth.InitJWT("middleware-test-secret")
	w := request(newProtectedRouter(), "Bearer not.a.jwt")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	if code := errorCode(t, w); code != httpx.CodeInvalidToken {
		t.Fatalf("code = %q, want INVALID_TOKEN", code)
	}
}
