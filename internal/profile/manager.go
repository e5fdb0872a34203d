// Package profile serves the current user's dashboard view: the API record,
// health metrics and silhouette, cached briefly in memory and snapshotted to
// SQLite so the view still renders when the backend is down.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/kalambet/dietfit/internal/apiclient"
	"github.com/kalambet/dietfit/internal/bmi"
	"github.com/kalambet/dietfit/internal/health"
	"github.com/kalambet/dietfit/internal/silhouette"
	"github.com/kalambet/dietfit/internal/storage"
)

// Source is the remote side of the view. Implemented by apiclient.Client.
type Source interface {
	Dashboard(ctx context.Context) (*apiclient.Dashboard, error)
	Me(ctx context.Context) (*apiclient.User, error)
}

// SnapshotStore persists the last good view. Implemented by storage.Store.
type SnapshotStore interface {
	SaveSnapshot(snap storage.Snapshot) error
	LatestSnapshot() (storage.Snapshot, error)
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// DefaultTTL is how long a fetched view is served from memory.
const DefaultTTL = 60 * time.Second

type Options struct {
	TTL      time.Duration
	Clock    Clock
	Language language.Tag
	Logger   *slog.Logger
}

type Manager struct {
	source Source
	store  SnapshotStore
	clock  Clock
	ttl    time.Duration
	lang   language.Tag
	logger *slog.Logger

	mu       sync.RWMutex
	cached   *View
	cachedAt time.Time
}

// NewManager returns a Manager. store may be nil to disable the offline
// fallback.
func NewManager(source Source, store SnapshotStore, opts Options) *Manager {
	m := &Manager{
		source: source,
		store:  store,
		clock:  opts.Clock,
		ttl:    opts.TTL,
		lang:   opts.Language,
		logger: opts.Logger,
	}
	if m.clock == nil {
		m.clock = realClock{}
	}
	if m.ttl <= 0 {
		m.ttl = DefaultTTL
	}
	if m.lang == language.Und {
		m.lang = language.English
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// Get returns the cached view if fresh, otherwise fetches it. When the API
// is unreachable or failing the last snapshot is returned with Stale set.
// An expired session is never masked by the snapshot.
func (m *Manager) Get(ctx context.Context) (View, error) {
	m.mu.RLock()
	if v, ok := m.fresh(); ok {
		m.mu.RUnlock()
		return v, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring the write lock.
	if v, ok := m.fresh(); ok {
		return v, nil
	}
	return m.load(ctx)
}

// Refresh fetches the view regardless of cache age.
func (m *Manager) Refresh(ctx context.Context) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(ctx)
}

// Offline builds the view from the last snapshot without touching the API.
func (m *Manager) Offline() (View, error) {
	if m.store == nil {
		return View{}, storage.ErrNotFound
	}
	snap, err := m.store.LatestSnapshot()
	if err != nil {
		return View{}, err
	}
	return m.fromSnapshot(snap)
}

// Invalidate drops the in-memory view.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cached = nil
}

// fresh must be called with mu held.
func (m *Manager) fresh() (View, bool) {
	if m.cached != nil && m.clock.Now().Before(m.cachedAt.Add(m.ttl)) {
		return *m.cached, true
	}
	return View{}, false
}

// load must be called with mu held for writing.
func (m *Manager) load(ctx context.Context) (View, error) {
	v, err := m.fetch(ctx)
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthenticated) || m.store == nil {
			return View{}, err
		}
		stale, serr := m.Offline()
		if serr != nil {
			return View{}, err
		}
		m.logger.Warn("serving cached profile", "error", err, "fetched_at", stale.FetchedAt)
		return stale, nil
	}

	m.save(v)
	m.cached = &v
	m.cachedAt = v.FetchedAt
	return v, nil
}

func (m *Manager) fetch(ctx context.Context) (View, error) {
	now := m.clock.Now()

	d, err := m.source.Dashboard(ctx)
	if err == nil {
		return m.build(*d.User, d.Health, HealthFromAPI, now), nil
	}

	// The health endpoint rejects some records (e.g. a female profile
	// without hip). Fall back to the user alone and derive metrics locally.
	if code := apiclient.StatusCode(err); code < http.StatusBadRequest || code == http.StatusUnauthorized {
		return View{}, err
	}
	u, uerr := m.source.Me(ctx)
	if uerr != nil {
		return View{}, err
	}
	m.logger.Debug("health endpoint failed, computing locally", "error", err)
	h, fat := localHealth(*u)
	v := m.build(*u, h, HealthFromLocal, now)
	v.BodyFatUnknown = h != nil && !fat
	return v, nil
}

func (m *Manager) build(u apiclient.User, h *apiclient.HealthMetrics, src string, at time.Time) View {
	v := View{User: u, Health: h, FetchedAt: at}
	if h != nil {
		v.HealthSource = src
	}
	if metrics, err := u.BodyMetrics(); err == nil {
		if d, err := silhouette.FromMetrics(metrics, m.lang); err == nil {
			v.Silhouette = &d
		}
	}
	if v.Silhouette == nil {
		p := bmi.PresentationOf(bmi.Unavailable, m.lang)
		v.Placeholder = &p
	}
	return v
}

func (m *Manager) save(v View) {
	if m.store == nil {
		return
	}
	userJSON, err := json.Marshal(v.User)
	if err != nil {
		m.logger.Warn("encoding profile snapshot", "error", err)
		return
	}
	snap := storage.Snapshot{
		UserID:    v.User.ID,
		Email:     v.User.Email,
		UserJSON:  string(userJSON),
		FetchedAt: v.FetchedAt,
	}
	if v.Health != nil && v.HealthSource == HealthFromAPI {
		if hj, err := json.Marshal(v.Health); err == nil {
			snap.HealthJSON = string(hj)
		}
	}
	if err := m.store.SaveSnapshot(snap); err != nil {
		m.logger.Warn("saving profile snapshot", "error", err)
	}
}

func (m *Manager) fromSnapshot(snap storage.Snapshot) (View, error) {
	var u apiclient.User
	if err := json.Unmarshal([]byte(snap.UserJSON), &u); err != nil {
		return View{}, fmt.Errorf("decoding snapshot for user %d: %w", snap.UserID, err)
	}
	h, fat := localHealth(u)
	src := HealthFromLocal
	if snap.HealthJSON != "" {
		var cached apiclient.HealthMetrics
		if err := json.Unmarshal([]byte(snap.HealthJSON), &cached); err == nil {
			h, fat, src = &cached, true, HealthFromAPI
		}
	}
	v := m.build(u, h, src, snap.FetchedAt)
	v.BodyFatUnknown = h != nil && !fat
	v.Stale = true
	return v, nil
}

// localHealth derives metrics from the record, or nil when it lacks what
// BMR needs. fat is false when body fat could not be estimated.
func localHealth(u apiclient.User) (h *apiclient.HealthMetrics, fat bool) {
	metrics, fat, err := health.Estimate(u.HealthProfile())
	if err != nil {
		return nil, false
	}
	return &apiclient.HealthMetrics{UserID: u.ID, Metrics: metrics}, fat
}
