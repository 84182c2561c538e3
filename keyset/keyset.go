// Package keyset holds the process-wide set of trusted token signing keys.
package keyset

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/jwk"
	"go.uber.org/zap"
)

const (
	// DefaultMinRefreshInterval bounds how often a key id miss may trigger a refetch.
	DefaultMinRefreshInterval = 5 * time.Minute

	// DefaultRefreshTimeout bounds a refetch triggered by a key id miss.
	DefaultRefreshTimeout = 10 * time.Second
)

var (
	// ErrKeyNotFound is returned when no key in the set carries the requested key id
	ErrKeyNotFound = errors.New("signing key not found")

	// ErrNotLoaded is returned when the set has never been loaded successfully
	ErrNotLoaded = errors.New("signing key set not loaded")
)

// Config holds keyset settings
type Config struct {
	MinRefreshInterval time.Duration
	RefreshTimeout     time.Duration
	Now                func() time.Time
}

// Keyset caches the keys from a Source. The cached set is replaced wholesale on refresh.
type Keyset struct {
	source         Source
	logger         *zap.Logger
	minRefresh     time.Duration
	refreshTimeout time.Duration
	now            func() time.Time

	mu       sync.RWMutex
	keys     jwk.Set
	loadedAt time.Time

	// refreshMu serializes refetches; lastAttempt is guarded by it.
	refreshMu   sync.Mutex
	lastAttempt time.Time
}

// New creates a new Keyset. Call Load before serving requests.
func New(source Source, logger *zap.Logger, cfg Config) *Keyset {
	if cfg.MinRefreshInterval <= 0 {
		cfg.MinRefreshInterval = DefaultMinRefreshInterval
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = DefaultRefreshTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Keyset{
		source:         source,
		logger:         logger,
		minRefresh:     cfg.MinRefreshInterval,
		refreshTimeout: cfg.RefreshTimeout,
		now:            cfg.Now,
	}
}

// Load fetches the key set from the source unconditionally
func (k *Keyset) Load(ctx context.Context) error {
	k.refreshMu.Lock()
	defer k.refreshMu.Unlock()

	return k.fetch(ctx)
}

// fetch must be called with refreshMu held.
func (k *Keyset) fetch(ctx context.Context) error {
	k.lastAttempt = k.now()

	set, err := k.source.Fetch(ctx)
	if err != nil {
		k.logger.Error("failed to load signing keys",
			zap.String("source", k.source.String()),
			zap.Error(err),
		)
		return err
	}
	if set.Len() == 0 {
		return fmt.Errorf("key set from %s is empty", k.source.String())
	}

	k.mu.Lock()
	k.keys = set
	k.loadedAt = k.lastAttempt
	k.mu.Unlock()

	k.logger.Info("signing keys loaded",
		zap.String("source", k.source.String()),
		zap.Int("keys", set.Len()),
	)
	return nil
}

// Resolve returns the raw public key for kid. A miss triggers at most one refetch per
// MinRefreshInterval. The refetch ignores ctx's cancellation and is bounded by RefreshTimeout.
func (k *Keyset) Resolve(ctx context.Context, kid string) (interface{}, error) {
	if key, err := k.lookup(kid); err == nil {
		return key, nil
	}

	k.refreshMu.Lock()
	// Another caller may have refreshed while we waited
	if key, err := k.lookup(kid); err == nil {
		k.refreshMu.Unlock()
		return key, nil
	}
	if k.now().Sub(k.lastAttempt) >= k.minRefresh {
		k.logger.Debug("refreshing signing keys on key id miss", zap.String("kid", kid))
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), k.refreshTimeout)
		err := k.fetch(fetchCtx)
		cancel()
		if err != nil {
			k.refreshMu.Unlock()
			return nil, fmt.Errorf("%w: %s (refresh failed: %v)", ErrKeyNotFound, kid, err)
		}
	}
	k.refreshMu.Unlock()

	return k.lookup(kid)
}

func (k *Keyset) lookup(kid string) (interface{}, error) {
	k.mu.RLock()
	set := k.keys
	k.mu.RUnlock()

	if set == nil {
		return nil, ErrNotLoaded
	}

	key, ok := set.LookupKeyID(kid)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, kid)
	}

	var raw interface{}
	if err := key.Raw(&raw); err != nil {
		return nil, fmt.Errorf("failed to get public key %s: %w", kid, err)
	}
	return raw, nil
}

// KeyIDs lists the key ids currently trusted, sorted
func (k *Keyset) KeyIDs() []string {
	k.mu.RLock()
	set := k.keys
	k.mu.RUnlock()

	if set == nil {
		return nil
	}

	ids := make([]string, 0, set.Len())
	for i := 0; i < set.Len(); i++ {
		if key, ok := set.Get(i); ok && key.KeyID() != "" {
			ids = append(ids, key.KeyID())
		}
	}
	sort.Strings(ids)
	return ids
}

// Loaded reports whether a key set is available and when it was fetched
func (k *Keyset) Loaded() (bool, time.Time) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.keys != nil, k.loadedAt
}
