package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Snapshot is the last user record fetched from the API, kept so the profile
// and dashboard views can render while the backend is unreachable.
type Snapshot struct {
	UserID     int
	Email      string
	UserJSON   string
	HealthJSON string // empty when the health endpoint was not fetched
	FetchedAt  time.Time
}

// Measurement is one locally classified height/weight entry.
type Measurement struct {
	ID        string
	CreatedAt time.Time
	HeightCm  float64
	WeightKg  float64
	Gender    string
	BMI       float64
	Category  string
}
