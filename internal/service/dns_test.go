package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cf_bridge/internal/model"
)

func intPtr(v int) *int { return &v }

func TestDNSRecordInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		input   DNSRecordInput
		wantErr bool
	}{
		{"valid A", DNSRecordInput{Type: "A", Name: "www", Content: "203.0.113.10"}, false},
		{"A with hostname content", DNSRecordInput{Type: "A", Name: "www", Content: "example.com"}, true},
		{"A with IPv6 content", DNSRecordInput{Type: "A", Name: "www", Content: "2001:db8::1"}, true},
		{"valid AAAA", DNSRecordInput{Type: "AAAA", Name: "www", Content: "2001:db8::1"}, false},
		{"AAAA with IPv4 content", DNSRecordInput{Type: "AAAA", Name: "www", Content: "203.0.113.10"}, true},
		{"valid CNAME", DNSRecordInput{Type: "CNAME", Name: "blog", Content: "example.com"}, false},
		{"CNAME with garbage", DNSRecordInput{Type: "CNAME", Name: "blog", Content: "not a hostname"}, true},
		{"valid MX", DNSRecordInput{Type: "MX", Name: "@", Content: "mail.example.com", Priority: intPtr(10)}, false},
		{"MX without priority", DNSRecordInput{Type: "MX", Name: "@", Content: "mail.example.com"}, true},
		{"valid TXT", DNSRecordInput{Type: "TXT", Name: "@", Content: "v=spf1 -all"}, false},
		{"empty TXT", DNSRecordInput{Type: "TXT", Name: "@", Content: ""}, true},
		{"unknown type", DNSRecordInput{Type: "CAA", Name: "@", Content: "x"}, true},
		{"ttl automatic", DNSRecordInput{Type: "A", Name: "www", Content: "203.0.113.10", TTL: 1}, false},
		{"ttl in range", DNSRecordInput{Type: "A", Name: "www", Content: "203.0.113.10", TTL: 3600}, false},
		{"ttl too low", DNSRecordInput{Type: "A", Name: "www", Content: "203.0.113.10", TTL: 30}, true},
		{"ttl too high", DNSRecordInput{Type: "A", Name: "www", Content: "203.0.113.10", TTL: 100000}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}
}

func TestRenderZoneFile_Deterministic(t *testing.T) {
	records := []model.DNSRecord{
		{Type: model.DNSRecordTypeTXT, Name: "@", Content: "v=spf1 -all", TTL: 1},
		{Type: model.DNSRecordTypeA, Name: "www", Content: "203.0.113.10", TTL: 300},
		{Type: model.DNSRecordTypeMX, Name: "@", Content: "mail.example.com", TTL: 3600, Priority: intPtr(10)},
		{Type: model.DNSRecordTypeA, Name: "api", Content: "203.0.113.20", TTL: 300},
	}
	reversed := []model.DNSRecord{records[3], records[2], records[1], records[0]}

	first := renderZoneFile("example.com", records)
	second := renderZoneFile("example.com", reversed)
	if first != second {
		t.Errorf("Export is not deterministic:\n%s\nvs\n%s", first, second)
	}
}

func TestRenderZoneFile_Format(t *testing.T) {
	out := renderZoneFile("example.com", []model.DNSRecord{
		{Type: model.DNSRecordTypeA, Name: "www", Content: "203.0.113.10", TTL: 300},
		{Type: model.DNSRecordTypeMX, Name: "@", Content: "mail.example.com", TTL: 3600, Priority: intPtr(10)},
		{Type: model.DNSRecordTypeTXT, Name: "@", Content: "v=spf1 -all", TTL: 1},
		{Type: model.DNSRecordTypeCNAME, Name: "blog", Content: "example.com", TTL: 1},
	})

	if !strings.HasPrefix(out, "$ORIGIN example.com.\n") {
		t.Errorf("Missing $ORIGIN header:\n%s", out)
	}
	if !strings.Contains(out, "www\t300\tIN\tA\t203.0.113.10\n") {
		t.Errorf("A record misrendered:\n%s", out)
	}
	if !strings.Contains(out, "@\t3600\tIN\tMX\t10 mail.example.com.\n") {
		t.Errorf("MX record misrendered:\n%s", out)
	}
	// TXT content must be quoted, automatic TTL rendered as 300
	if !strings.Contains(out, "@\t300\tIN\tTXT\t\"v=spf1 -all\"\n") {
		t.Errorf("TXT record misrendered:\n%s", out)
	}
	// CNAME target gets the trailing dot
	if !strings.Contains(out, "blog\t300\tIN\tCNAME\texample.com.\n") {
		t.Errorf("CNAME record misrendered:\n%s", out)
	}
}

func TestDNSUpdate_MirrorWriteFailureReturnsStaleRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("Unexpected method: %s", r.Method)
		}
		fmt.Fprint(w, `{"success":true,"errors":[],"result":{"id":"rec-1","type":"A","name":"www.example.com","content":"203.0.113.10","proxied":false,"ttl":300}}`)
	}))
	defer srv.Close()

	// No dns_records table: every mirror write fails while the upstream
	// update itself succeeds.
	db := openTestDB(t)
	svc := NewDNSService(db, &cfProvider{baseURL: srv.URL})

	row, err := svc.Update(context.Background(), "site-1", "rec-1", DNSRecordInput{
		Type:    "A",
		Name:    "www.example.com",
		Content: "203.0.113.10",
		TTL:     300,
	})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if row.SyncedAt != nil {
		t.Error("Expected a nil SyncedAt when the mirror write fails")
	}
	if row.Content != "203.0.113.10" {
		t.Errorf("Unexpected content: %s", row.Content)
	}
}

func TestDNSUpdate_MirrorWriteSuccessIsSynced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"errors":[],"result":{"id":"rec-1","type":"A","name":"www.example.com","content":"203.0.113.20","proxied":true,"ttl":1}}`)
	}))
	defer srv.Close()

	db := openTestDB(t, dnsRecordsDDL)
	db.Create(&model.DNSRecord{
		SiteID:       "site-1",
		CloudflareID: "rec-1",
		Type:         model.DNSRecordTypeA,
		Name:         "www.example.com",
		Content:      "203.0.113.10",
		TTL:          300,
	})

	svc := NewDNSService(db, &cfProvider{baseURL: srv.URL})
	row, err := svc.Update(context.Background(), "site-1", "rec-1", DNSRecordInput{
		Type:    "A",
		Name:    "www.example.com",
		Content: "203.0.113.20",
		TTL:     1,
		Proxied: true,
	})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if row.SyncedAt == nil {
		t.Error("Expected SyncedAt to be set after a clean mirror write")
	}

	var stored model.DNSRecord
	if err := db.Where("cloudflare_id = ?", "rec-1").First(&stored).Error; err != nil {
		t.Fatalf("load mirror row: %v", err)
	}
	if stored.Content != "203.0.113.20" || stored.SyncedAt == nil {
		t.Errorf("Mirror row not refreshed: content=%s synced=%v", stored.Content, stored.SyncedAt)
	}
}
