package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Mr-fuaaaadh/hostelmate/internal/domain"
)

// Orchestrator commits a provider and its full nested object graph as one
// transaction. Binary payloads are pushed to external image storage before
// the transaction opens (and compensated on rollback) so the database never
// waits on slow uploads; rows only ever reference already-stored URLs.
//
// Post-commit hooks (cache invalidation) run in registration order, strictly
// after commit.
type Orchestrator struct {
	store    domain.Store
	images   domain.ImageStore
	registry *Registry
	rooms    *RoomCountMaintainer
	covers   CoverEnforcer
	hooks    []PostCommitHook
	log      zerolog.Logger
}

func NewOrchestrator(store domain.Store, images domain.ImageStore, reg *Registry, rooms *RoomCountMaintainer, log zerolog.Logger, hooks ...PostCommitHook) *Orchestrator {
	return &Orchestrator{store: store, images: images, registry: reg, rooms: rooms, hooks: hooks, log: log}
}

// CreateProvider inserts the root row with the authenticated caller as
// owner (never taken from the payload) and bulk-inserts every child
// collection. Any failure rolls the whole graph back; no partial provider
// is ever visible.
func (o *Orchestrator) CreateProvider(ctx context.Context, ownerID int64, kind domain.ProviderKind, p domain.ProviderPayload) (int64, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	if err := ValidatePayload(kind, p, true); err != nil {
		return 0, err
	}

	var uploaded []string
	imgs, err := o.storeImages(ctx, sliceOf(p.Images), &uploaded)
	if err != nil {
		o.discardImages(ctx, uploaded)
		return 0, err
	}
	menu, err := o.storeMenu(ctx, sliceOf(p.Menu), &uploaded)
	if err != nil {
		o.discardImages(ctx, uploaded)
		return 0, err
	}

	var id int64
	err = o.store.InTx(ctx, func(tx domain.TxStore) error {
		switch kind {
		case domain.KindHostel:
			id, err = tx.InsertHostel(ctx, hostelFromPayload(ownerID, p))
			if err != nil {
				return err
			}
			if err := o.writeHostelChildren(ctx, tx, id, p, imgs); err != nil {
				return err
			}
		case domain.KindHome:
			id, err = tx.InsertHome(ctx, homeFromPayload(ownerID, p))
			if err != nil {
				return err
			}
			for _, img := range imgs {
				if err := tx.InsertHomeImage(ctx, id, img); err != nil {
					return err
				}
			}
		}
		if len(menu) > 0 {
			ref := domain.ProviderRef{Kind: kind, ID: id}
			if _, err := tx.ReplaceMenu(ctx, ref, menu); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		o.discardImages(ctx, uploaded)
		return 0, err
	}

	o.afterCommit(ctx, domain.ProviderRef{Kind: kind, ID: id})
	return id, nil
}

// ReplaceProvider re-validates ownership before touching any row, updates
// the root scalars, and for each collection present in the payload performs
// a delete-all-then-insert. Absent collections are left untouched.
func (o *Orchestrator) ReplaceProvider(ctx context.Context, kind domain.ProviderKind, id, ownerID int64, p domain.ProviderPayload) error {
	ref, err := o.registry.Resolve(ctx, kind, id)
	if err != nil {
		return err
	}
	if err := ValidatePayload(kind, p, false); err != nil {
		return err
	}

	var uploaded []string
	imgs, err := o.storeImages(ctx, sliceOf(p.Images), &uploaded)
	if err != nil {
		o.discardImages(ctx, uploaded)
		return err
	}
	menu, err := o.storeMenu(ctx, sliceOf(p.Menu), &uploaded)
	if err != nil {
		o.discardImages(ctx, uploaded)
		return err
	}

	var orphaned []string
	err = o.store.InTx(ctx, func(tx domain.TxStore) error {
		owner, err := tx.LockProvider(ctx, ref)
		if err != nil {
			return err
		}
		if owner != ownerID {
			return domain.ErrForbidden
		}

		switch kind {
		case domain.KindHostel:
			h := hostelFromPayload(ownerID, p)
			h.ID = id
			if err := tx.UpdateHostel(ctx, h); err != nil {
				return err
			}
			if p.FacilityIDs != nil {
				if err := tx.ReplaceHostelFacilities(ctx, id, *p.FacilityIDs); err != nil {
					return err
				}
			}
			if p.Rules != nil {
				if err := tx.ReplaceRules(ctx, id, rulesFromPayload(*p.Rules)); err != nil {
					return err
				}
			}
			if p.Rooms != nil {
				urls, err := tx.DeleteRooms(ctx, id)
				if err != nil {
					return err
				}
				orphaned = append(orphaned, urls...)
				if err := o.insertRooms(ctx, tx, id, *p.Rooms); err != nil {
					return err
				}
				if err := o.rooms.Sync(ctx, tx, id); err != nil {
					return err
				}
			}
			if p.Images != nil {
				urls, err := tx.DeleteHostelImages(ctx, id)
				if err != nil {
					return err
				}
				orphaned = append(orphaned, urls...)
				if err := o.insertHostelImages(ctx, tx, id, imgs); err != nil {
					return err
				}
			}
		case domain.KindHome:
			h := homeFromPayload(ownerID, p)
			h.ID = id
			if err := tx.UpdateHome(ctx, h); err != nil {
				return err
			}
			if p.Images != nil {
				urls, err := tx.DeleteHomeImages(ctx, id)
				if err != nil {
					return err
				}
				orphaned = append(orphaned, urls...)
				for _, img := range imgs {
					if err := tx.InsertHomeImage(ctx, id, img); err != nil {
						return err
					}
				}
			}
		}
		if p.Menu != nil {
			urls, err := tx.ReplaceMenu(ctx, ref, menu)
			if err != nil {
				return err
			}
			orphaned = append(orphaned, urls...)
		}
		return nil
	})
	if err != nil {
		o.discardImages(ctx, uploaded)
		return err
	}

	o.discardImages(ctx, orphaned)
	o.afterCommit(ctx, ref)
	return nil
}

// DeleteProvider removes the root, its children (native cascade) and every
// polymorphic association (explicit cascade, the discriminator pair is not
// a real foreign key).
func (o *Orchestrator) DeleteProvider(ctx context.Context, kind domain.ProviderKind, id, ownerID int64) error {
	ref, err := o.registry.Resolve(ctx, kind, id)
	if err != nil {
		return err
	}
	var orphaned []string
	err = o.store.InTx(ctx, func(tx domain.TxStore) error {
		owner, err := tx.LockProvider(ctx, ref)
		if err != nil {
			return err
		}
		if owner != ownerID {
			return domain.ErrForbidden
		}
		menuURLs, err := tx.DeleteAssociations(ctx, ref)
		if err != nil {
			return err
		}
		orphaned = append(orphaned, menuURLs...)
		var urls []string
		if kind == domain.KindHostel {
			urls, err = tx.DeleteHostel(ctx, id)
		} else {
			urls, err = tx.DeleteHome(ctx, id)
		}
		if err != nil {
			return err
		}
		orphaned = append(orphaned, urls...)
		return nil
	})
	if err != nil {
		return err
	}

	o.discardImages(ctx, orphaned)
	o.afterCommit(ctx, ref)
	return nil
}

// SetMenu replaces the provider's weekly menu wholesale.
func (o *Orchestrator) SetMenu(ctx context.Context, kind domain.ProviderKind, id, ownerID int64, entries []domain.MenuEntryPayload) error {
	if err := ValidateMenu(entries); err != nil {
		return err
	}
	var uploaded []string
	menu, err := o.storeMenu(ctx, entries, &uploaded)
	if err != nil {
		o.discardImages(ctx, uploaded)
		return err
	}
	var orphaned []string
	if err := o.withOwnedProvider(ctx, kind, id, ownerID, func(tx domain.TxStore, ref domain.ProviderRef) error {
		urls, err := tx.ReplaceMenu(ctx, ref, menu)
		if err != nil {
			return err
		}
		orphaned = urls
		return nil
	}); err != nil {
		o.discardImages(ctx, uploaded)
		return err
	}
	o.discardImages(ctx, orphaned)
	return nil
}

// SetMealPlans replaces the provider's subscription plans wholesale.
func (o *Orchestrator) SetMealPlans(ctx context.Context, kind domain.ProviderKind, id, ownerID int64, plans []domain.MealPlanPayload) error {
	if err := ValidateMealPlans(plans); err != nil {
		return err
	}
	return o.withOwnedProvider(ctx, kind, id, ownerID, func(tx domain.TxStore, ref domain.ProviderRef) error {
		return tx.ReplaceMealPlans(ctx, ref, plansFromPayload(plans))
	})
}

// SetDeliveryAreas replaces the provider's delivery coverage wholesale.
func (o *Orchestrator) SetDeliveryAreas(ctx context.Context, kind domain.ProviderKind, id, ownerID int64, areas []domain.DeliveryAreaPayload) error {
	if err := ValidateDeliveryAreas(areas); err != nil {
		return err
	}
	return o.withOwnedProvider(ctx, kind, id, ownerID, func(tx domain.TxStore, ref domain.ProviderRef) error {
		return tx.ReplaceDeliveryAreas(ctx, ref, areasFromPayload(areas))
	})
}

// SetFeatures replaces the provider's marketing features wholesale.
func (o *Orchestrator) SetFeatures(ctx context.Context, kind domain.ProviderKind, id, ownerID int64, features []domain.FeaturePayload) error {
	if err := ValidateFeatures(features); err != nil {
		return err
	}
	return o.withOwnedProvider(ctx, kind, id, ownerID, func(tx domain.TxStore, ref domain.ProviderRef) error {
		return tx.ReplaceFeatures(ctx, ref, featuresFromPayload(features))
	})
}

// AddImages appends images to a provider without disturbing existing ones.
// Replacement happens only through ReplaceProvider.
func (o *Orchestrator) AddImages(ctx context.Context, kind domain.ProviderKind, id, ownerID int64, images []domain.ImagePayload) error {
	if err := ValidateImages(images); err != nil {
		return err
	}
	var uploaded []string
	imgs, err := o.storeImages(ctx, images, &uploaded)
	if err != nil {
		o.discardImages(ctx, uploaded)
		return err
	}
	if err := o.withOwnedProvider(ctx, kind, id, ownerID, func(tx domain.TxStore, ref domain.ProviderRef) error {
		if kind == domain.KindHostel {
			return o.insertHostelImages(ctx, tx, id, imgs)
		}
		for _, img := range imgs {
			if err := tx.InsertHomeImage(ctx, id, img); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		o.discardImages(ctx, uploaded)
		return err
	}
	return nil
}

// AddRoomImages appends images to a room; ownership is checked against the
// room's hostel, and invalidation targets that hostel's cache entries.
func (o *Orchestrator) AddRoomImages(ctx context.Context, roomID, ownerID int64, images []domain.ImagePayload) error {
	if err := ValidateImages(images); err != nil {
		return err
	}
	var uploaded []string
	imgs, err := o.storeImages(ctx, images, &uploaded)
	if err != nil {
		o.discardImages(ctx, uploaded)
		return err
	}

	var ref domain.ProviderRef
	err = o.store.InTx(ctx, func(tx domain.TxStore) error {
		hostelID, err := tx.RoomHostelID(ctx, roomID)
		if err != nil {
			return err
		}
		ref = domain.ProviderRef{Kind: domain.KindHostel, ID: hostelID}
		owner, err := tx.LockProvider(ctx, ref)
		if err != nil {
			return err
		}
		if owner != ownerID {
			return domain.ErrForbidden
		}
		for _, img := range imgs {
			if err := o.covers.BeforeRoomImage(ctx, tx, roomID, img); err != nil {
				return err
			}
			if err := tx.InsertRoomImage(ctx, roomID, img); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		o.discardImages(ctx, uploaded)
		return err
	}

	o.afterCommit(ctx, ref)
	return nil
}

// RecountHostel re-runs the aggregate maintainer for one hostel in its own
// transaction. Used by the repair command.
func (o *Orchestrator) RecountHostel(ctx context.Context, hostelID int64) error {
	err := o.store.InTx(ctx, func(tx domain.TxStore) error {
		return o.rooms.Sync(ctx, tx, hostelID)
	})
	if err != nil {
		return err
	}
	o.afterCommit(ctx, domain.ProviderRef{Kind: domain.KindHostel, ID: hostelID})
	return nil
}

// ---- internals ----

// withOwnedProvider wraps the lock / ownership / commit / hook sequence
// shared by every association write.
func (o *Orchestrator) withOwnedProvider(ctx context.Context, kind domain.ProviderKind, id, ownerID int64, fn func(tx domain.TxStore, ref domain.ProviderRef) error) error {
	ref, err := o.registry.Resolve(ctx, kind, id)
	if err != nil {
		return err
	}
	err = o.store.InTx(ctx, func(tx domain.TxStore) error {
		owner, err := tx.LockProvider(ctx, ref)
		if err != nil {
			return err
		}
		if owner != ownerID {
			return domain.ErrForbidden
		}
		return fn(tx, ref)
	})
	if err != nil {
		return err
	}
	o.afterCommit(ctx, ref)
	return nil
}

func (o *Orchestrator) writeHostelChildren(ctx context.Context, tx domain.TxStore, hostelID int64, p domain.ProviderPayload, imgs []domain.Image) error {
	if p.FacilityIDs != nil {
		if err := tx.ReplaceHostelFacilities(ctx, hostelID, *p.FacilityIDs); err != nil {
			return err
		}
	}
	if p.Rules != nil {
		if err := tx.ReplaceRules(ctx, hostelID, rulesFromPayload(*p.Rules)); err != nil {
			return err
		}
	}
	if p.Rooms != nil {
		if err := o.insertRooms(ctx, tx, hostelID, *p.Rooms); err != nil {
			return err
		}
	}
	if err := o.insertHostelImages(ctx, tx, hostelID, imgs); err != nil {
		return err
	}
	return o.rooms.Sync(ctx, tx, hostelID)
}

func (o *Orchestrator) insertRooms(ctx context.Context, tx domain.TxStore, hostelID int64, rooms []domain.RoomPayload) error {
	for _, rp := range rooms {
		roomID, err := tx.InsertRoom(ctx, roomFromPayload(hostelID, rp))
		if err != nil {
			return err
		}
		if len(rp.FacilityIDs) > 0 {
			if err := tx.ReplaceRoomFacilities(ctx, roomID, rp.FacilityIDs); err != nil {
				return err
			}
		}
	}
	return nil
}

// insertHostelImages applies rows in payload order; the cover enforcer runs
// before each flagged row, so the last flagged image of a batch keeps the
// cover.
func (o *Orchestrator) insertHostelImages(ctx context.Context, tx domain.TxStore, hostelID int64, imgs []domain.Image) error {
	for _, img := range imgs {
		if err := o.covers.BeforeHostelImage(ctx, tx, hostelID, img); err != nil {
			return err
		}
		if err := tx.InsertHostelImage(ctx, hostelID, img); err != nil {
			return err
		}
	}
	return nil
}

// storeImages uploads every payload image and records the URLs in *uploaded
// so the caller can compensate if the transaction never commits.
func (o *Orchestrator) storeImages(ctx context.Context, payloads []domain.ImagePayload, uploaded *[]string) ([]domain.Image, error) {
	if len(payloads) == 0 {
		return nil, nil
	}
	out := make([]domain.Image, 0, len(payloads))
	for i, p := range payloads {
		url, err := o.images.Store(ctx, p.Data)
		if err != nil {
			return nil, fmt.Errorf("store image %d: %w", i, err)
		}
		*uploaded = append(*uploaded, url)
		out = append(out, domain.Image{URL: url, Caption: p.Caption, IsCover: p.IsCover, Position: p.Position})
	}
	return out, nil
}

func (o *Orchestrator) storeMenu(ctx context.Context, payloads []domain.MenuEntryPayload, uploaded *[]string) ([]domain.MenuEntry, error) {
	if len(payloads) == 0 {
		return nil, nil
	}
	out := make([]domain.MenuEntry, 0, len(payloads))
	for i, p := range payloads {
		entry := menuFromPayload(p)
		slots := []struct {
			data []byte
			dst  *string
		}{
			{p.BreakfastImage, &entry.BreakfastImageURL},
			{p.LunchImage, &entry.LunchImageURL},
			{p.DinnerImage, &entry.DinnerImageURL},
		}
		for _, s := range slots {
			if len(s.data) == 0 {
				continue
			}
			url, err := o.images.Store(ctx, s.data)
			if err != nil {
				return nil, fmt.Errorf("store menu image for entry %d: %w", i, err)
			}
			*uploaded = append(*uploaded, url)
			*s.dst = url
		}
		out = append(out, entry)
	}
	return out, nil
}

// discardImages best-effort deletes stored files that no committed row
// references anymore. Failures are logged; storage-side garbage is
// preferable to failing a committed write.
func (o *Orchestrator) discardImages(ctx context.Context, urls []string) {
	for _, u := range urls {
		if u == "" {
			continue
		}
		if err := o.images.Delete(ctx, u); err != nil {
			o.log.Warn().Err(err).Str("url", u).Msg("orphaned image cleanup failed")
		}
	}
}

func (o *Orchestrator) afterCommit(ctx context.Context, ref domain.ProviderRef) {
	for _, h := range o.hooks {
		h.ProviderWritten(ctx, ref)
	}
}

func sliceOf[T any](p *[]T) []T {
	if p == nil {
		return nil
	}
	return *p
}
