package cloudflare

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New("test-token", "acct-1", "zone-1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client.WithBaseURL(srv.URL), srv
}

func TestClient_SuccessEnvelope(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if r.URL.Path != "/zones/zone-1/dns_records" {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"success":true,"errors":[],"result":[
			{"id":"rec-1","type":"A","name":"example.com","content":"192.0.2.1","ttl":1,"proxied":true}
		]}`)
	}))

	records, err := client.ListDNSRecords(context.Background())
	if err != nil {
		t.Fatalf("ListDNSRecords: %v", err)
	}
	if len(records) != 1 || records[0].ID != "rec-1" || records[0].Type != "A" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestClient_FailureEnvelopeIsAPIError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"success":false,"errors":[{"code":10000,"message":"Authentication error"}],"result":null}`)
	}))

	_, err := client.GetZone(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Code != 10000 || apiErr.HTTPStatus != http.StatusForbidden {
		t.Fatalf("unexpected APIError: %+v", apiErr)
	}
	if !IsUnauthorized(err) {
		t.Fatal("code 10000 should classify as unauthorized")
	}
}

func TestClient_SuccessFalseOn200(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":false,"errors":[{"code":81044,"message":"Record does not exist"}],"result":null}`)
	}))

	_, err := client.GetDNSRecord(context.Background(), "missing")
	if err == nil {
		t.Fatal("success:false on HTTP 200 must still be an error")
	}
	if !IsNotFound(err) {
		t.Fatalf("code 81044 should classify as not found, got %v", err)
	}
}

func TestClient_RateLimitRetryAfter(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := client.PurgeEverything(context.Background())
	retryAfter, ok := IsRateLimited(err)
	if !ok {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if retryAfter != 7*time.Second {
		t.Fatalf("RetryAfter = %s, want 7s", retryAfter)
	}
}

func TestClient_RateLimitWithoutHeader(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := client.ListZones(context.Background(), "")
	retryAfter, ok := IsRateLimited(err)
	if !ok {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if retryAfter != defaultRetryAfter {
		t.Fatalf("RetryAfter = %s, want default %s", retryAfter, defaultRetryAfter)
	}
}

func TestClient_ConnectionFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client, err := New("test-token", "acct-1", "zone-1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	client.WithBaseURL(srv.URL)
	srv.Close()

	_, err = client.VerifyToken(context.Background())
	if !IsNetwork(err) {
		t.Fatalf("expected NetworkError, got %T: %v", err, err)
	}
}

func TestClient_RawEndpointPassesBodyThrough(t *testing.T) {
	const script = "addEventListener('fetch', e => e.respondWith(fetch(e.request)))"
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, script)
	}))

	got, err := client.GetWorkerScript(context.Background(), "proxy")
	if err != nil {
		t.Fatalf("GetWorkerScript: %v", err)
	}
	if got != script {
		t.Fatalf("script body = %q", got)
	}
}

func TestClient_RawEndpointErrorEnvelope(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"success":false,"errors":[{"code":10007,"message":"workers.api.error.script_not_found"}]}`)
	}))

	_, err := client.GetWorkerScript(context.Background(), "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Code != 10007 || apiErr.HTTPStatus != http.StatusNotFound {
		t.Fatalf("unexpected APIError: %+v", apiErr)
	}
	if !IsNotFound(err) {
		t.Fatal("HTTP 404 should classify as not found")
	}
}

func TestClient_RequiresToken(t *testing.T) {
	if _, err := New("", "acct", "zone"); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestErrorClassifiers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"401 status", &APIError{HTTPStatus: 401, Code: 9109}, IsUnauthorized, true},
		{"plan code 1212", &APIError{HTTPStatus: 400, Code: 1212}, IsPlanRestriction, true},
		{"plan code 1106", &APIError{HTTPStatus: 400, Code: 1106}, IsPlanRestriction, true},
		{"404 status", &APIError{HTTPStatus: 404, Code: 0}, IsNotFound, true},
		{"generic error", errors.New("boom"), IsUnauthorized, false},
		{"wrapped network", fmt.Errorf("call: %w", &NetworkError{Op: "GET /x", Err: errors.New("refused")}), IsNetwork, true},
	}
	for _, tt := range tests {
		if got := tt.check(tt.err); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPutR2Object_EscapesKeyAndSetsContentType(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %q", r.Method)
		}
		// Slashes in the key must stay escaped so the key is one path segment
		if got := r.URL.EscapedPath(); got != "/accounts/acct-1/r2/buckets/media/objects/uploads%2Fphoto.jpg" {
			t.Errorf("path = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "image/jpeg" {
			t.Errorf("Content-Type = %q", got)
		}
		fmt.Fprint(w, `{"success":true,"errors":[],"result":null}`)
	}))

	err := client.PutR2Object(context.Background(), "media", "uploads/photo.jpg", "image/jpeg", []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("PutR2Object: %v", err)
	}
}

func TestDeleteR2Object_NotFoundClassifies(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"success":false,"errors":[{"code":10007,"message":"object not found"}]}`)
	}))

	err := client.DeleteR2Object(context.Background(), "media", "gone.jpg")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !IsNotFound(err) {
		t.Errorf("expected a not-found classification, got %v", err)
	}
}
