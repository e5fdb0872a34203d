package refresh

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/dietfit/internal/apiclient"
	"github.com/kalambet/dietfit/internal/profile"
)

type mockRefresher struct {
	calls     atomic.Int32
	refreshFn func(ctx context.Context) (profile.View, error)
}

func (m *mockRefresher) Refresh(ctx context.Context) (profile.View, error) {
	m.calls.Add(1)
	return m.refreshFn(ctx)
}

func TestRunOnce_Results(t *testing.T) {
	tests := []struct {
		name    string
		view    profile.View
		err     error
		want    string
		wantErr bool
	}{
		{name: "fresh", view: profile.View{User: apiclient.User{ID: 1}}, want: ResultOK},
		{name: "stale", view: profile.View{Stale: true}, want: ResultStale},
		{name: "error", err: errors.New("boom"), want: ResultError, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &mockRefresher{refreshFn: func(context.Context) (profile.View, error) {
				return tt.view, tt.err
			}}
			got, err := NewWorker(src, time.Minute).RunOnce(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunOnce_WrapsUnauthenticated(t *testing.T) {
	src := &mockRefresher{refreshFn: func(context.Context) (profile.View, error) {
		return profile.View{}, apiclient.ErrUnauthenticated
	}}
	_, err := NewWorker(src, time.Minute).RunOnce(context.Background())
	assert.ErrorIs(t, err, apiclient.ErrUnauthenticated)
}

func TestRun_StopsOnCancel(t *testing.T) {
	src := &mockRefresher{refreshFn: func(context.Context) (profile.View, error) {
		return profile.View{}, nil
	}}
	w := NewWorker(src, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return src.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond,
		"refresh did not repeat")
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "Run did not return after cancel")
	}
}

func TestNewWorker_Defaults(t *testing.T) {
	w := NewWorker(&mockRefresher{}, 0)
	assert.Equal(t, 5*time.Minute, w.interval)
	assert.Equal(t, 30*time.Second, w.retry)

	w = NewWorker(&mockRefresher{}, 10*time.Second)
	assert.Equal(t, 10*time.Second, w.retry, "retry is capped at the interval")
}
