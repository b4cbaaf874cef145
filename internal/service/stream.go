package service

import (
	"context"
	"fmt"

	"cf_bridge/internal/cloudflare"
	"cf_bridge/internal/httpx"

	"github.com/sirupsen/logrus"
)

// StreamService manages Cloudflare Stream videos and live inputs.
// Video state lives entirely inside Cloudflare; no local mirror.
type StreamService struct {
	clients ClientProvider
	log     *logrus.Entry
}

// NewStreamService creates a Stream service
func NewStreamService(clients ClientProvider) *StreamService {
	return &StreamService{
		clients: clients,
		log:     logrus.WithField("component", "stream"),
	}
}

// StreamVideoView is a video decorated with playback URLs
type StreamVideoView struct {
	cloudflare.StreamVideo
	EmbedURL     string `json:"embed_url"`
	HLSURL       string `json:"hls_url"`
	DASHURL      string `json:"dash_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// EmbedURL is the iframe player URL for a video
func EmbedURL(videoID string) string {
	return "https://iframe.cloudflarestream.com/" + videoID
}

// HLSURL is the HLS manifest URL for a video
func HLSURL(videoID string) string {
	return "https://cloudflarestream.com/" + videoID + "/manifest/video.m3u8"
}

// DASHURL is the DASH manifest URL for a video
func DASHURL(videoID string) string {
	return "https://cloudflarestream.com/" + videoID + "/manifest/video.mpd"
}

// ThumbnailURL is a still frame taken at the given second
func ThumbnailURL(videoID string, atSeconds float64) string {
	return fmt.Sprintf("https://cloudflarestream.com/%s/thumbnails/thumbnail.jpg?time=%gs", videoID, atSeconds)
}

func videoView(v cloudflare.StreamVideo) StreamVideoView {
	return StreamVideoView{
		StreamVideo:  v,
		EmbedURL:     EmbedURL(v.UID),
		HLSURL:       HLSURL(v.UID),
		DASHURL:      DASHURL(v.UID),
		ThumbnailURL: ThumbnailURL(v.UID, 0),
	}
}

// ListVideos returns the account's videos with playback URLs attached
func (s *StreamService) ListVideos(ctx context.Context, siteID string) ([]StreamVideoView, error) {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	var videos []cloudflare.StreamVideo
	err = retryRead(ctx, func() error {
		videos, err = client.ListStreamVideos(ctx)
		return err
	})
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}

	views := make([]StreamVideoView, 0, len(videos))
	for _, v := range videos {
		views = append(views, videoView(v))
	}
	return views, nil
}

// GetVideo returns one video by UID
func (s *StreamService) GetVideo(ctx context.Context, siteID, videoID string) (*StreamVideoView, error) {
	if videoID == "" {
		return nil, httpx.ErrValidation("video id must not be empty")
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	video, err := client.GetStreamVideo(ctx, videoID)
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}
	view := videoView(*video)
	return &view, nil
}

// DeleteVideo removes a video. Upstream not-found counts as deleted.
func (s *StreamService) DeleteVideo(ctx context.Context, siteID, videoID string) error {
	if videoID == "" {
		return httpx.ErrValidation("video id must not be empty")
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return MapError(err)
	}
	if err := client.DeleteStreamVideo(ctx, videoID); err != nil && !cloudflare.IsNotFound(err) {
		return mapClientError(s.clients, siteID, err)
	}
	return nil
}

// ListLiveInputs returns the account's live ingest points
func (s *StreamService) ListLiveInputs(ctx context.Context, siteID string) ([]cloudflare.LiveInput, error) {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	var inputs []cloudflare.LiveInput
	err = retryRead(ctx, func() error {
		inputs, err = client.ListLiveInputs(ctx)
		return err
	})
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}
	return inputs, nil
}

// CreateLiveInput creates a live ingest point, optionally named via meta
func (s *StreamService) CreateLiveInput(ctx context.Context, siteID, name string) (*cloudflare.LiveInput, error) {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	params := cloudflare.LiveInputParams{
		Recording: map[string]interface{}{"mode": "automatic"},
	}
	if name != "" {
		params.Meta = map[string]interface{}{"name": name}
	}

	input, err := client.CreateLiveInput(ctx, params)
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}

	s.log.WithFields(logrus.Fields{"site_id": siteID, "input": input.UID}).Info("Live input created")
	return input, nil
}

// StreamStats summarizes a site's video library
type StreamStats struct {
	TotalVideos   int     `json:"total_videos"`
	ReadyVideos   int     `json:"ready_videos"`
	TotalDuration float64 `json:"total_duration"`
	TotalSize     int64   `json:"total_size"`
}

// AggregateStreamStats folds a video list into library totals
func AggregateStreamStats(videos []cloudflare.StreamVideo) StreamStats {
	var stats StreamStats
	stats.TotalVideos = len(videos)
	for _, v := range videos {
		if v.ReadyToStream {
			stats.ReadyVideos++
		}
		stats.TotalDuration += v.Duration
		stats.TotalSize += v.Size
	}
	return stats
}

// Stats aggregates the current video library
func (s *StreamService) Stats(ctx context.Context, siteID string) (*StreamStats, error) {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	var videos []cloudflare.StreamVideo
	err = retryRead(ctx, func() error {
		videos, err = client.ListStreamVideos(ctx)
		return err
	})
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}

	stats := AggregateStreamStats(videos)
	return &stats, nil
}
