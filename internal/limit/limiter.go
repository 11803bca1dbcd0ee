package limit

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// Keyed rate-limits per key (an upstream hostname, a client IP).
type Keyed struct {
	mu sync.Mutex
	m  map[string]*rate.Limiter
	r  rate.Limit
	b  int
}

func NewKeyed(reqPerSec float64, burst int) *Keyed {
	return &Keyed{
		m: make(map[string]*rate.Limiter),
		r: rate.Limit(reqPerSec),
		b: burst,
	}
}

func (k *Keyed) limiterFor(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	if lim, ok := k.m[key]; ok {
		return lim
	}
	lim := rate.NewLimiter(k.r, k.b)
	k.m[key] = lim
	return lim
}

// Allow reports whether a request for key may proceed now.
func (k *Keyed) Allow(key string) bool {
	return k.limiterFor(key).Allow()
}

func (k *Keyed) Wait(ctx context.Context, key string) error {
	return k.limiterFor(key).Wait(ctx)
}

// WaitURL waits on the limiter for the URL's host.
func (k *Keyed) WaitURL(ctx context.Context, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return k.limiterFor("_").Wait(ctx)
	}
	return k.limiterFor(u.Host).Wait(ctx)
}
