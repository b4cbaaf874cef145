package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"cf_bridge/internal/cloudflare"
)

func TestPlaybackURLs(t *testing.T) {
	if got := EmbedURL("vid-1"); got != "https://iframe.cloudflarestream.com/vid-1" {
		t.Errorf("EmbedURL = %q", got)
	}
	if got := HLSURL("vid-1"); got != "https://cloudflarestream.com/vid-1/manifest/video.m3u8" {
		t.Errorf("HLSURL = %q", got)
	}
	if got := DASHURL("vid-1"); got != "https://cloudflarestream.com/vid-1/manifest/video.mpd" {
		t.Errorf("DASHURL = %q", got)
	}
	if got := ThumbnailURL("vid-1", 0); got != "https://cloudflarestream.com/vid-1/thumbnails/thumbnail.jpg?time=0s" {
		t.Errorf("ThumbnailURL = %q", got)
	}
	if got := ThumbnailURL("vid-1", 12.5); got != "https://cloudflarestream.com/vid-1/thumbnails/thumbnail.jpg?time=12.5s" {
		t.Errorf("ThumbnailURL at offset = %q", got)
	}
}

func TestAggregateStreamStats(t *testing.T) {
	videos := []cloudflare.StreamVideo{
		{UID: "a", ReadyToStream: true, Duration: 120.5, Size: 1 << 20},
		{UID: "b", ReadyToStream: false, Duration: 30, Size: 1 << 19},
		{UID: "c", ReadyToStream: true, Duration: 600, Size: 1 << 22},
	}

	stats := AggregateStreamStats(videos)
	if stats.TotalVideos != 3 || stats.ReadyVideos != 2 {
		t.Errorf("Unexpected counts: %+v", stats)
	}
	if stats.TotalDuration != 750.5 {
		t.Errorf("Expected total duration 750.5, got %g", stats.TotalDuration)
	}
	if stats.TotalSize != (1<<20)+(1<<19)+(1<<22) {
		t.Errorf("Unexpected total size: %d", stats.TotalSize)
	}

	empty := AggregateStreamStats(nil)
	if empty.TotalVideos != 0 || empty.TotalSize != 0 {
		t.Errorf("Expected zero stats for an empty library: %+v", empty)
	}
}

func TestStreamListVideos_AttachesPlaybackURLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"errors":[],"result":[{"uid":"vid-1","readyToStream":true,"duration":42}]}`)
	}))
	defer srv.Close()

	svc := NewStreamService(&cfProvider{baseURL: srv.URL})
	videos, err := svc.ListVideos(context.Background(), "site-1")
	if err != nil {
		t.Fatalf("ListVideos() failed: %v", err)
	}
	if len(videos) != 1 {
		t.Fatalf("Expected 1 video, got %d", len(videos))
	}
	v := videos[0]
	if v.EmbedURL != EmbedURL("vid-1") || v.HLSURL != HLSURL("vid-1") || v.DASHURL != DASHURL("vid-1") {
		t.Errorf("Playback URLs not attached: %+v", v)
	}
}

func TestStreamGetVideo_RejectsEmptyID(t *testing.T) {
	svc := NewStreamService(stubProvider{})
	if _, err := svc.GetVideo(context.Background(), "site-1", ""); err == nil {
		t.Error("Expected an empty video id to be rejected")
	}
	if err := svc.DeleteVideo(context.Background(), "site-1", ""); err == nil {
		t.Error("Expected an empty video id to be rejected on delete")
	}
}
