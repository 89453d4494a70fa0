package main

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// startBackgroundJobs loads the reviews, keeps them fresh when an interval
// is configured, and sweeps expired carts. Every job stops with ctx.
func (app *application) startBackgroundJobs(ctx context.Context, g *errgroup.Group) {
	g.Go(func() error {
		if interval := app.config.reviews.refreshInterval; interval > 0 {
			app.logger.Infow("refreshing reviews periodically", "interval", interval)
			return app.reviews.Run(ctx, interval)
		}
		// Run once at start
		if err := app.reviews.Refresh(ctx); err != nil && ctx.Err() == nil {
			app.logger.Errorf("Error loading reviews: %v", err)
		} else {
			app.logger.Infof("Reviews loaded at %s", time.Now().Format(time.RFC1123))
		}
		return nil
	})

	g.Go(func() error {
		app.carts.RunSweeper(ctx, app.config.cart.sweepInterval)
		return nil
	})
}
