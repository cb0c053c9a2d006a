package app

import (
	"context"
	"fmt"

	"github.com/Mr-fuaaaadh/hostelmate/internal/domain"
)

// Registry resolves (kind, id) discriminator pairs to concrete provider
// rows. Every component that dereferences a polymorphic association goes
// through it; nothing else interprets the pair. Pure lookup, no side
// effects.
type Registry struct {
	store domain.Store
}

func NewRegistry(s domain.Store) *Registry { return &Registry{store: s} }

// Resolve validates the kind against the closed enumeration and checks the
// concrete row exists. Unknown kind is a configuration defect
// (ErrUnknownKind); a missing row is ErrNotFound.
func (r *Registry) Resolve(ctx context.Context, kind domain.ProviderKind, id int64) (domain.ProviderRef, error) {
	if !kind.Valid() {
		return domain.ProviderRef{}, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	ref := domain.ProviderRef{Kind: kind, ID: id}
	ok, err := r.store.ProviderExists(ctx, ref)
	if err != nil {
		return domain.ProviderRef{}, err
	}
	if !ok {
		return domain.ProviderRef{}, domain.ErrNotFound
	}
	return ref, nil
}

// Ref canonicalizes a concrete provider row back to its (kind, id) pair.
func (r *Registry) Ref(provider any) (domain.ProviderRef, error) {
	return domain.Ref(provider)
}
