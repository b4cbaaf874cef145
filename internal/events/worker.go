package events

import (
	"context"
	"strings"
	"time"

	"cf_bridge/internal/model"

	"github.com/sirupsen/logrus"
)

// Purger is the slice of the cache service the worker needs
type Purger interface {
	PurgeAll(ctx context.Context, siteID string, trigger model.PurgeTrigger) error
	PurgeURLs(ctx context.Context, siteID string, urls []string, trigger model.PurgeTrigger) error
}

// SettingsSource reads a site's plugin settings
type SettingsSource interface {
	Get(siteID string) (*model.PluginSettings, error)
}

// handleTimeout bounds one event's purge work
const handleTimeout = 30 * time.Second

// Worker consumes content events and turns them into cache purges.
// Delivery is at-most-once: a full queue drops the event rather than
// blocking the producer, and a failed purge is logged, not requeued.
type Worker struct {
	queue    chan Event
	purger   Purger
	settings SettingsSource
	stopCh   chan struct{}
	doneCh   chan struct{}
	log      *logrus.Entry
}

// NewWorker creates an auto-purge worker with a bounded queue
func NewWorker(purger Purger, settings SettingsSource, queueSize int) *Worker {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Worker{
		queue:    make(chan Event, queueSize),
		purger:   purger,
		settings: settings,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		log:      logrus.WithField("component", "autopurge"),
	}
}

// Enqueue hands an event to the worker. Returns false when the queue is
// full and the event was dropped.
func (w *Worker) Enqueue(e Event) bool {
	select {
	case w.queue <- e:
		return true
	default:
		w.log.WithFields(logrus.Fields{
			"site_id": e.SiteID,
			"kind":    e.Kind,
		}).Warn("Queue full, event dropped")
		return false
	}
}

// Start launches the single consumer goroutine
func (w *Worker) Start() {
	w.log.Info("Auto-purge worker started")
	go w.run()
}

// Stop drains nothing; queued events are abandoned on shutdown
func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.doneCh
	w.log.Info("Auto-purge worker stopped")
}

func (w *Worker) run() {
	defer close(w.doneCh)
	for {
		select {
		case <-w.stopCh:
			return
		case e := <-w.queue:
			w.handle(e)
		}
	}
}

// handle processes one event. Errors never escape; a panic in a purge
// path must not take down the consumer loop.
func (w *Worker) handle(e Event) {
	defer func() {
		if r := recover(); r != nil {
			w.log.WithField("panic", r).Error("Recovered while handling event")
		}
	}()

	settings, err := w.settings.Get(e.SiteID)
	if err != nil {
		w.log.WithError(err).WithField("site_id", e.SiteID).Error("Failed to load settings, skipping event")
		return
	}
	if !e.Kind.Enabled(settings) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	log := w.log.WithFields(logrus.Fields{"site_id": e.SiteID, "kind": e.Kind})

	if e.Kind == ThemeActivated {
		if err := w.purger.PurgeAll(ctx, e.SiteID, e.Kind.Trigger()); err != nil {
			log.WithError(err).Error("Purge failed")
		}
		return
	}

	urls := PurgeURLSet(e)
	if len(urls) == 0 {
		log.Warn("Event carries no purgeable URLs")
		return
	}
	if err := w.purger.PurgeURLs(ctx, e.SiteID, urls, e.Kind.Trigger()); err != nil {
		log.WithError(err).Error("Purge failed")
	}
}

// PurgeURLSet derives the URLs to purge for an event. Post events also
// invalidate the index pages that embed the post: the site root, the
// sitemap and the feed.
func PurgeURLSet(e Event) []string {
	seen := make(map[string]bool)
	var urls []string
	add := func(u string) {
		if u != "" && !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}

	switch e.Kind {
	case PostPublished, PostUpdated, PostDeleted:
		add(e.URL)
		if root := strings.TrimSuffix(e.SiteURL, "/"); root != "" {
			add(root + "/")
			add(root + "/sitemap.xml")
			add(root + "/feed")
		}
	case MediaUploaded:
		add(e.URL)
	}
	return urls
}
