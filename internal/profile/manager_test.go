package profile

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/kalambet/dietfit/internal/apiclient"
	"github.com/kalambet/dietfit/internal/bmi"
	"github.com/kalambet/dietfit/internal/health"
	"github.com/kalambet/dietfit/internal/storage"
)

// --- Mock source ---

type mockSource struct {
	mu sync.Mutex

	user      *apiclient.User
	health    *apiclient.HealthMetrics
	dashErr   error
	meErr     error
	dashCalls int
	meCalls   int
}

func (s *mockSource) Dashboard(ctx context.Context) (*apiclient.Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dashCalls++
	if s.dashErr != nil {
		return nil, s.dashErr
	}
	u := *s.user
	return &apiclient.Dashboard{User: &u, Health: s.health}, nil
}

func (s *mockSource) Me(ctx context.Context) (*apiclient.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meCalls++
	if s.meErr != nil {
		return nil, s.meErr
	}
	u := *s.user
	return &u, nil
}

// --- Mock store ---

type mockStore struct {
	mu    sync.Mutex
	snaps map[int]storage.Snapshot
	last  int
}

func newMockStore() *mockStore {
	return &mockStore{snaps: make(map[int]storage.Snapshot)}
}

func (m *mockStore) SaveSnapshot(snap storage.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[snap.UserID] = snap
	m.last = snap.UserID
	return nil
}

func (m *mockStore) LatestSnapshot() (storage.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[m.last]
	if !ok {
		return storage.Snapshot{}, storage.ErrNotFound
	}
	return snap, nil
}

// --- Mock clock ---

type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// --- Fixtures ---

func maleUser() *apiclient.User {
	return &apiclient.User{
		ID:            7,
		Email:         "sam@example.com",
		HeightCm:      175,
		WeightKg:      80,
		Gender:        "male",
		Age:           30,
		ActivityLevel: health.Moderate,
		WaistCm:       85,
		NeckCm:        38,
		IsActive:      true,
	}
}

// femaleNoHip is a record the backend's body-fat formula rejects.
func femaleNoHip() *apiclient.User {
	return &apiclient.User{
		ID:            9,
		Email:         "kim@example.com",
		HeightCm:      165,
		WeightKg:      60,
		Gender:        "female",
		Age:           28,
		ActivityLevel: health.Sedentary,
		WaistCm:       70,
		NeckCm:        32,
		IsActive:      true,
	}
}

func apiHealth() *apiclient.HealthMetrics {
	return &apiclient.HealthMetrics{UserID: 7, Metrics: health.Metrics{BMI: 26.12, BodyFatPercent: 17, BMR: 1748.75, TDEE: 2710.56}}
}

func newTestManager(src Source, store SnapshotStore, clock Clock) *Manager {
	return NewManager(src, store, Options{TTL: time.Minute, Clock: clock})
}

// --- Tests ---

func TestGet_BuildsView(t *testing.T) {
	src := &mockSource{user: maleUser(), health: apiHealth()}
	mgr := newTestManager(src, newMockStore(), &mockClock{now: time.Unix(1000, 0)})

	v, err := mgr.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, v.Stale, "fresh view marked stale")
	assert.Equal(t, HealthFromAPI, v.HealthSource)
	assert.Equal(t, 2710.56, v.Health.TDEE)
	assert.False(t, v.BodyFatUnknown)

	require.NotNil(t, v.Silhouette)
	assert.Equal(t, bmi.Overweight, v.Silhouette.Variant.Category)
	assert.Equal(t, "#eab308", v.Silhouette.Color)
	assert.Equal(t, 1.0, v.Silhouette.VerticalScale)
	assert.Nil(t, v.Placeholder, "placeholder set for a valid record")
}

func TestGet_CachesWithinTTL(t *testing.T) {
	src := &mockSource{user: maleUser(), health: apiHealth()}
	clock := &mockClock{now: time.Unix(1000, 0)}
	mgr := newTestManager(src, newMockStore(), clock)
	ctx := context.Background()

	mgr.Get(ctx)
	mgr.Get(ctx)
	assert.Equal(t, 1, src.dashCalls, "within TTL")

	clock.Advance(61 * time.Second)
	mgr.Get(ctx)
	assert.Equal(t, 2, src.dashCalls, "after TTL")

	mgr.Invalidate()
	mgr.Get(ctx)
	assert.Equal(t, 3, src.dashCalls, "after Invalidate")
}

func TestGet_ConcurrentSingleFetch(t *testing.T) {
	src := &mockSource{user: maleUser(), health: apiHealth()}
	mgr := newTestManager(src, newMockStore(), &mockClock{now: time.Unix(1000, 0)})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.Get(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, src.dashCalls)
}

func TestGet_SavesSnapshot(t *testing.T) {
	store := newMockStore()
	src := &mockSource{user: maleUser(), health: apiHealth()}
	mgr := newTestManager(src, store, &mockClock{now: time.Unix(1000, 0)})

	_, err := mgr.Get(context.Background())
	require.NoError(t, err)

	snap, err := store.LatestSnapshot()
	require.NoError(t, err, "no snapshot saved")
	assert.Equal(t, 7, snap.UserID)
	assert.Equal(t, "sam@example.com", snap.Email)
	assert.NotEmpty(t, snap.HealthJSON)
	assert.True(t, snap.FetchedAt.Equal(time.Unix(1000, 0)), "FetchedAt = %v", snap.FetchedAt)
}

func TestGet_FallsBackToSnapshot(t *testing.T) {
	store := newMockStore()
	src := &mockSource{user: maleUser(), health: apiHealth()}
	clock := &mockClock{now: time.Unix(1000, 0)}
	mgr := newTestManager(src, store, clock)
	ctx := context.Background()

	_, err := mgr.Get(ctx)
	require.NoError(t, err)

	src.dashErr = fmt.Errorf("GET /users/me: API not reachable: connection refused")
	clock.Advance(2 * time.Minute)

	v, err := mgr.Get(ctx)
	require.NoError(t, err)
	assert.True(t, v.Stale, "view not marked stale")
	assert.True(t, v.FetchedAt.Equal(time.Unix(1000, 0)), "FetchedAt = %v, want snapshot time", v.FetchedAt)
	assert.Equal(t, HealthFromAPI, v.HealthSource)
	require.NotNil(t, v.Health)
	assert.Equal(t, 1748.75, v.Health.BMR)
	assert.NotNil(t, v.Silhouette, "stale view lacks silhouette")
}

func TestGet_NoSnapshotReturnsError(t *testing.T) {
	apiErr := errors.New("API not reachable")
	src := &mockSource{user: maleUser(), dashErr: apiErr}
	mgr := newTestManager(src, newMockStore(), &mockClock{now: time.Unix(1000, 0)})

	_, err := mgr.Get(context.Background())
	assert.ErrorIs(t, err, apiErr)
}

func TestGet_UnauthenticatedNotMasked(t *testing.T) {
	store := newMockStore()
	store.SaveSnapshot(storage.Snapshot{UserID: 7, Email: "sam@example.com", UserJSON: `{"id":7}`})
	src := &mockSource{user: maleUser(), dashErr: fmt.Errorf("GET /users/me: %w", apiclient.ErrUnauthenticated)}
	mgr := newTestManager(src, store, &mockClock{now: time.Unix(1000, 0)})

	_, err := mgr.Get(context.Background())
	assert.ErrorIs(t, err, apiclient.ErrUnauthenticated)
}

func TestGet_LocalHealthWhenEndpointRejects(t *testing.T) {
	src := &mockSource{
		user:    maleUser(),
		dashErr: &apiclient.HTTPError{StatusCode: http.StatusBadRequest, Detail: "Hip measurement is required"},
	}
	mgr := newTestManager(src, newMockStore(), &mockClock{now: time.Unix(1000, 0)})

	v, err := mgr.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, src.meCalls)
	assert.Equal(t, HealthFromLocal, v.HealthSource)
	require.NotNil(t, v.Health)
	assert.Equal(t, 1748.75, v.Health.BMR)
	assert.Equal(t, 2710.56, v.Health.TDEE)
	assert.False(t, v.BodyFatUnknown)
}

func TestGet_FemaleWithoutHipKeepsEnergyMetrics(t *testing.T) {
	store := newMockStore()
	src := &mockSource{
		user:    femaleNoHip(),
		dashErr: &apiclient.HTTPError{StatusCode: http.StatusBadRequest, Detail: "Hip measurement is required for female body fat calculation"},
	}
	mgr := newTestManager(src, store, &mockClock{now: time.Unix(1000, 0)})

	v, err := mgr.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, HealthFromLocal, v.HealthSource)
	require.NotNil(t, v.Health)
	assert.Equal(t, 1330.25, v.Health.BMR)
	assert.Equal(t, 1596.3, v.Health.TDEE)
	assert.Zero(t, v.Health.BodyFatPercent)
	assert.True(t, v.BodyFatUnknown)

	off, err := mgr.Offline()
	require.NoError(t, err)
	assert.True(t, off.BodyFatUnknown, "snapshot view keeps the unknown body fat")
	assert.Equal(t, 1596.3, off.Health.TDEE)
}

func TestGet_UnclassifiableRecordGetsPlaceholder(t *testing.T) {
	u := maleUser()
	u.HeightCm = 0
	src := &mockSource{user: u}
	mgr := NewManager(src, nil, Options{Clock: &mockClock{now: time.Unix(1000, 0)}, Language: language.German})

	v, err := mgr.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, v.Silhouette)
	require.NotNil(t, v.Placeholder)
	assert.Equal(t, bmi.PlaceholderColor, v.Placeholder.Color)
	assert.Equal(t, "Nicht verfügbar", v.Placeholder.Label)
}

func TestOffline(t *testing.T) {
	mgr := newTestManager(&mockSource{}, newMockStore(), &mockClock{})
	_, err := mgr.Offline()
	assert.ErrorIs(t, err, storage.ErrNotFound)

	store := newMockStore()
	store.SaveSnapshot(storage.Snapshot{
		UserID:   3,
		Email:    "lee@example.com",
		UserJSON: `{"id":3,"email":"lee@example.com","height_cm":160,"weight_kg":45,"gender":"female","age":25,"activity_level":"light","waist_cm":62,"neck_cm":30,"hip_cm":88}`,
	})
	mgr = newTestManager(&mockSource{}, store, &mockClock{})

	v, err := mgr.Offline()
	require.NoError(t, err)
	assert.True(t, v.Stale)
	assert.Equal(t, 3, v.User.ID)
	require.NotNil(t, v.Silhouette)
	assert.Equal(t, bmi.Underweight, v.Silhouette.Variant.Category)
	assert.Equal(t, HealthFromLocal, v.HealthSource)
	assert.NotNil(t, v.Health)
	assert.False(t, v.BodyFatUnknown)
}

func TestRefresh_BypassesCache(t *testing.T) {
	src := &mockSource{user: maleUser(), health: apiHealth()}
	mgr := newTestManager(src, newMockStore(), &mockClock{now: time.Unix(1000, 0)})
	ctx := context.Background()

	mgr.Get(ctx)
	mgr.Refresh(ctx)
	assert.Equal(t, 2, src.dashCalls)
}
