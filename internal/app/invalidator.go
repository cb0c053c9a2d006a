package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Mr-fuaaaadh/hostelmate/internal/domain"
)

// PostCommitHook is a side effect that runs strictly after the transaction
// that mutated the provider graph commits. The orchestrator invokes hooks
// in registration order so the causality is visible in one place instead of
// scattered event subscriptions.
type PostCommitHook interface {
	ProviderWritten(ctx context.Context, ref domain.ProviderRef)
}

// Invalidator is the cache coherence layer. Any committed mutation of a
// provider root, its direct children, or a polymorphic association resolving
// to it purges the kind-level list entry and that provider's detail entry.
// Invalidation is "clear", not "refresh": the next read repopulates lazily.
// Failures are logged and non-fatal; the entry expires via TTL anyway.
type Invalidator struct {
	cache domain.Cache
	log   zerolog.Logger
}

func NewInvalidator(cache domain.Cache, log zerolog.Logger) *Invalidator {
	return &Invalidator{cache: cache, log: log}
}

func (i *Invalidator) ProviderWritten(ctx context.Context, ref domain.ProviderRef) {
	for _, key := range []string{ref.ListKey(), ref.DetailKey()} {
		if err := i.cache.Del(ctx, key); err != nil {
			i.log.Warn().Err(err).Str("key", key).Msg("cache invalidation failed")
		}
	}
}
