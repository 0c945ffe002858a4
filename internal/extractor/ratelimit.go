package extractor

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// limitedProvider holds calls to a metered API under a request budget.
type limitedProvider struct {
	Provider
	limiter *rate.Limiter
}

// RateLimited wraps p so that it is called at most perMinute times a minute,
// with bursts of one. A non-positive perMinute returns p unchanged.
func RateLimited(p Provider, perMinute int) Provider {
	if perMinute <= 0 {
		return p
	}
	every := time.Minute / time.Duration(perMinute)
	return &limitedProvider{Provider: p, limiter: rate.NewLimiter(rate.Every(every), 1)}
}

func (l *limitedProvider) ExtractText(ctx context.Context, img Image) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for %s quota: %w", l.Name(), err)
	}
	return l.Provider.ExtractText(ctx, img)
}
