package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"cf_bridge/internal/httpx"
	"cf_bridge/internal/model"
)

func TestURLBatches(t *testing.T) {
	tests := []struct {
		count       int
		wantBatches int
		wantLast    int
	}{
		{1, 1, 1},
		{29, 1, 29},
		{30, 1, 30},
		{31, 2, 1},
		{60, 2, 30},
		{95, 4, 5},
	}

	for _, tt := range tests {
		urls := make([]string, tt.count)
		for i := range urls {
			urls[i] = fmt.Sprintf("https://example.com/page-%d", i)
		}

		batches := urlBatches(urls)
		if len(batches) != tt.wantBatches {
			t.Errorf("%d urls: expected %d batches, got %d", tt.count, tt.wantBatches, len(batches))
			continue
		}

		total := 0
		for i, b := range batches {
			if len(b) > urlBatchSize {
				t.Errorf("%d urls: batch %d has %d entries, limit is %d", tt.count, i, len(b), urlBatchSize)
			}
			total += len(b)
		}
		if total != tt.count {
			t.Errorf("%d urls: batches cover %d urls", tt.count, total)
		}
		if got := len(batches[len(batches)-1]); got != tt.wantLast {
			t.Errorf("%d urls: expected last batch of %d, got %d", tt.count, tt.wantLast, got)
		}
	}
}

func TestURLBatches_Empty(t *testing.T) {
	if batches := urlBatches(nil); batches != nil {
		t.Errorf("Expected no batches for empty input, got %d", len(batches))
	}
}

func TestPurgeAll_WritesOneAuditRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/purge_cache") {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"success":true,"errors":[],"result":{"id":"purge-1"}}`)
	}))
	defer srv.Close()

	db := openTestDB(t, purgeEventsDDL)
	svc := NewCacheService(db, &cfProvider{baseURL: srv.URL}, nil, nil)

	if err := svc.PurgeAll(context.Background(), "site-1", model.PurgeTriggerUser); err != nil {
		t.Fatalf("PurgeAll() failed: %v", err)
	}

	var events []model.PurgeEvent
	if err := db.Find(&events).Error; err != nil {
		t.Fatalf("load events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected exactly 1 audit row, got %d", len(events))
	}
	e := events[0]
	if !e.Success || e.PurgeType != model.PurgeTypeAll || e.Trigger != model.PurgeTriggerUser {
		t.Errorf("Unexpected audit row: success=%v type=%s trigger=%s", e.Success, e.PurgeType, e.Trigger)
	}
}

func TestPurgeURLs_PartialFailureAggregatesBatches(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 2 {
			fmt.Fprint(w, `{"success":false,"errors":[{"code":1000,"message":"purge rejected"}]}`)
			return
		}
		fmt.Fprint(w, `{"success":true,"errors":[],"result":{"id":"purge-1"}}`)
	}))
	defer srv.Close()

	db := openTestDB(t, purgeEventsDDL)
	svc := NewCacheService(db, &cfProvider{baseURL: srv.URL}, nil, nil)

	// 35 urls split into a batch of 30 and a batch of 5
	urls := make([]string, 35)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.com/page-%d", i)
	}

	err := svc.PurgeURLs(context.Background(), "site-1", urls, model.PurgeTriggerUser)
	if err == nil {
		t.Fatal("Expected an error when a batch fails")
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("Expected both batches to be attempted, got %d calls", got)
	}

	var appErr *httpx.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("Expected AppError, got %T", err)
	}
	if appErr.Details["succeeded_batches"] != 1 || appErr.Details["failed_batches"] != 1 {
		t.Errorf("Unexpected batch counts: %v", appErr.Details)
	}
	outcomes, ok := appErr.Details["batches"].([]BatchOutcome)
	if !ok || len(outcomes) != 2 {
		t.Fatalf("Expected 2 batch outcomes, got %v", appErr.Details["batches"])
	}
	if outcomes[0].Error != "" || outcomes[1].Error == "" {
		t.Errorf("Expected only the second batch to fail: %+v", outcomes)
	}
	if outcomes[1].URLs != 5 {
		t.Errorf("Expected second batch of 5 urls, got %d", outcomes[1].URLs)
	}

	var events []model.PurgeEvent
	if err := db.Find(&events).Error; err != nil {
		t.Fatalf("load events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected exactly 1 audit row for the attempt, got %d", len(events))
	}
	if events[0].Success {
		t.Error("Expected the audit row to record failure")
	}
	if !strings.Contains(events[0].ErrorDetail, "batch 2 (5 urls)") {
		t.Errorf("Expected per-batch detail, got %q", events[0].ErrorDetail)
	}
}

func TestPurgeURLs_MultiBatchSuccessWritesOneRow(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `{"success":true,"errors":[],"result":{"id":"purge-1"}}`)
	}))
	defer srv.Close()

	db := openTestDB(t, purgeEventsDDL)
	svc := NewCacheService(db, &cfProvider{baseURL: srv.URL}, nil, nil)

	urls := make([]string, 61)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.com/p%d", i)
	}
	if err := svc.PurgeURLs(context.Background(), "site-1", urls, model.PurgeTriggerPostUpdate); err != nil {
		t.Fatalf("PurgeURLs() failed: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("Expected 3 batches, got %d calls", got)
	}

	var count int64
	if err := db.Model(&model.PurgeEvent{}).Count(&count).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 audit row for the attempt, got %d", count)
	}
}
