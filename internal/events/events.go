package events

import "cf_bridge/internal/model"

// Kind is a CMS content event kind
type Kind string

const (
	PostPublished  Kind = "post_published"
	PostUpdated    Kind = "post_updated"
	PostDeleted    Kind = "post_deleted"
	MediaUploaded  Kind = "media_uploaded"
	ThemeActivated Kind = "theme_activated"
)

// Event is one content change reported by the CMS
type Event struct {
	SiteID  string `json:"site_id"`
	Kind    Kind   `json:"kind" binding:"required"`
	URL     string `json:"url"`      // permalink or media URL, when applicable
	SiteURL string `json:"site_url"` // site root, used to derive index URLs
}

// Valid reports whether the kind is one this system understands
func (k Kind) Valid() bool {
	switch k {
	case PostPublished, PostUpdated, PostDeleted, MediaUploaded, ThemeActivated:
		return true
	}
	return false
}

// Trigger maps the event kind to the purge audit trigger
func (k Kind) Trigger() model.PurgeTrigger {
	switch k {
	case MediaUploaded:
		return model.PurgeTriggerMediaUpload
	case ThemeActivated:
		return model.PurgeTriggerThemeChange
	default:
		return model.PurgeTriggerPostUpdate
	}
}

// Enabled reports whether the site's settings allow purging for this
// event kind. The global toggle is checked first.
func (k Kind) Enabled(settings *model.PluginSettings) bool {
	if settings == nil || !settings.AutoPurgeEnabled {
		return false
	}
	switch k {
	case PostPublished, PostUpdated, PostDeleted:
		return settings.PurgeOnPostUpdate
	case MediaUploaded:
		return settings.PurgeOnMediaUpload
	case ThemeActivated:
		return settings.PurgeOnThemeChange
	}
	return false
}
