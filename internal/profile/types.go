package profile

import (
	"time"

	"github.com/kalambet/dietfit/internal/apiclient"
	"github.com/kalambet/dietfit/internal/bmi"
	"github.com/kalambet/dietfit/internal/silhouette"
)

// View is the dashboard as the profile and dashboard pages render it.
type View struct {
	User   apiclient.User           `json:"user"`
	Health *apiclient.HealthMetrics `json:"health,omitempty"`

	// HealthSource is "api" when the backend computed Health and "local"
	// when it was derived on this machine.
	HealthSource string `json:"health_source,omitempty"`

	// BodyFatUnknown is set when Health was estimated locally from a record
	// without the girths body fat needs.
	BodyFatUnknown bool `json:"body_fat_unknown,omitempty"`

	// Silhouette is nil when the user's measurements cannot be classified.
	Silhouette *silhouette.Descriptor `json:"silhouette,omitempty"`

	// Placeholder is the neutral presentation used in place of Silhouette.
	Placeholder *bmi.Presentation `json:"placeholder,omitempty"`

	// Stale is set when View came from the local snapshot because the API
	// could not be reached.
	Stale     bool      `json:"stale"`
	FetchedAt time.Time `json:"fetched_at"`
}

const (
	HealthFromAPI   = "api"
	HealthFromLocal = "local"
)
