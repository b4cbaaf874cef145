package warming

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// SitemapSource discovers recent content URLs from the site's XML
// sitemap. It tries the common sitemap locations in order and returns
// the first N page URLs found.
type SitemapSource struct {
	siteURL string
	client  *http.Client
}

// NewSitemapSource creates a sitemap-backed content source for one site
func NewSitemapSource(siteURL string) *SitemapSource {
	return &SitemapSource{
		siteURL: strings.TrimRight(siteURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// sitemap paths probed in order; the first that parses wins
var sitemapPaths = []string{"/wp-sitemap.xml", "/sitemap.xml", "/sitemap_index.xml"}

type sitemapDoc struct {
	XMLName xml.Name
	Entries []sitemapEntry `xml:"url"`
	Indexes []sitemapEntry `xml:"sitemap"`
}

type sitemapEntry struct {
	Loc string `xml:"loc"`
}

// RecentContentURLs returns up to limit page URLs from the sitemap.
// Sitemap indexes are followed one level deep.
func (s *SitemapSource) RecentContentURLs(ctx context.Context, siteID string, limit int) ([]string, error) {
	if s.siteURL == "" {
		return nil, nil
	}

	for _, path := range sitemapPaths {
		doc, err := s.fetch(ctx, s.siteURL+path)
		if err != nil {
			continue
		}
		urls := s.collect(ctx, doc, limit)
		if len(urls) > 0 {
			return urls, nil
		}
	}
	return nil, nil
}

func (s *SitemapSource) collect(ctx context.Context, doc *sitemapDoc, limit int) []string {
	urls := make([]string, 0, limit)
	for _, e := range doc.Entries {
		if len(urls) >= limit {
			return urls
		}
		if e.Loc != "" {
			urls = append(urls, e.Loc)
		}
	}

	// Index document: descend into child sitemaps until the limit fills
	for _, idx := range doc.Indexes {
		if len(urls) >= limit {
			break
		}
		if idx.Loc == "" {
			continue
		}
		child, err := s.fetch(ctx, idx.Loc)
		if err != nil {
			continue
		}
		for _, e := range child.Entries {
			if len(urls) >= limit {
				break
			}
			if e.Loc != "" {
				urls = append(urls, e.Loc)
			}
		}
	}
	return urls
}

func (s *SitemapSource) fetch(ctx context.Context, url string) (*sitemapDoc, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "cf-bridge-warmer/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sitemap fetch %s: status %d", url, resp.StatusCode)
	}

	var doc sitemapDoc
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("sitemap parse %s: %w", url, err)
	}
	return &doc, nil
}
