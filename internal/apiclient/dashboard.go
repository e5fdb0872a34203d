package apiclient

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Dashboard is what the dashboard page loads on open.
type Dashboard struct {
	User   *User          `json:"user"`
	Health *HealthMetrics `json:"health"`
}

// Dashboard fetches the user record and health metrics concurrently.
// Either failure cancels the other request.
func (c *Client) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		u, err := c.Me(gCtx)
		if err != nil {
			return fmt.Errorf("loading profile: %w", err)
		}
		d.User = u
		return nil
	})
	g.Go(func() error {
		m, err := c.MyHealth(gCtx)
		if err != nil {
			return fmt.Errorf("loading health metrics: %w", err)
		}
		d.Health = m
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
