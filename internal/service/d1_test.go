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

func TestValidateDatabaseName(t *testing.T) {
	valid := []string{
		"app",
		"site-content",
		"cache_index",
		"db2024",
		strings.Repeat("a", 63),
	}
	for _, name := range valid {
		if err := ValidateDatabaseName(name); err != nil {
			t.Errorf("Expected '%s' to be valid: %v", name, err)
		}
	}

	invalid := []string{
		"",
		"UPPER",
		"-leading",
		"_leading",
		"has space",
		strings.Repeat("a", 64),
	}
	for _, name := range invalid {
		if err := ValidateDatabaseName(name); err == nil {
			t.Errorf("Expected '%s' to be rejected", name)
		}
	}
}

func TestD1Query_RejectsEmptySQL(t *testing.T) {
	svc := NewD1Service(stubProvider{})
	for _, sql := range []string{"", "   ", "\n\t"} {
		_, err := svc.Query(context.Background(), "site-1", "db-1", sql)
		if err == nil {
			t.Errorf("Expected blank sql %q to be rejected", sql)
			continue
		}
		if MapError(err).Code != httpx.CodeValidationError {
			t.Errorf("Expected VALIDATION_ERROR, got %s", MapError(err).Code)
		}
	}
}

func TestD1ListTables_ExtractsNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/d1/database/db-1/query") {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"success":true,"errors":[],"result":[{"success":true,"results":[{"name":"comments"},{"name":"posts"}],"meta":{"rows_read":2}}]}`)
	}))
	defer srv.Close()

	svc := NewD1Service(&cfProvider{baseURL: srv.URL})
	tables, err := svc.ListTables(context.Background(), "site-1", "db-1")
	if err != nil {
		t.Fatalf("ListTables() failed: %v", err)
	}
	if len(tables) != 2 || tables[0] != "comments" || tables[1] != "posts" {
		t.Errorf("Unexpected tables: %v", tables)
	}
}

func TestD1Get_FiltersListingByUUID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"errors":[],"result":[{"uuid":"db-1","name":"app"},{"uuid":"db-2","name":"analytics"}]}`)
	}))
	defer srv.Close()

	svc := NewD1Service(&cfProvider{baseURL: srv.URL})

	database, err := svc.Get(context.Background(), "site-1", "db-2")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if database.Name != "analytics" {
		t.Errorf("Expected 'analytics', got %q", database.Name)
	}

	_, err = svc.Get(context.Background(), "site-1", "db-9")
	if err == nil {
		t.Fatal("Expected unknown UUID to fail")
	}
	if MapError(err).Code != httpx.CodeNotFound {
		t.Errorf("Expected NOT_FOUND, got %s", MapError(err).Code)
	}
}
