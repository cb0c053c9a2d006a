package app

import (
	"context"

	"github.com/Mr-fuaaaadh/hostelmate/internal/domain"
)

// CoverEnforcer guarantees at most one cover image per parent. It runs as a
// pre-write step of the image insert that sets the flag, inside the same
// transaction, so two concurrent writers serialize through the parent row
// lock and exactly one cover survives. When a batch carries several flagged
// images, rows are applied in order and the last one wins.
type CoverEnforcer struct{}

// BeforeHostelImage clears any existing cover among the hostel's images
// when the incoming row claims the flag.
func (CoverEnforcer) BeforeHostelImage(ctx context.Context, tx domain.TxStore, hostelID int64, img domain.Image) error {
	if !img.IsCover {
		return nil
	}
	return tx.ClearHostelCovers(ctx, hostelID)
}

// BeforeRoomImage is the room-flavored twin.
func (CoverEnforcer) BeforeRoomImage(ctx context.Context, tx domain.TxStore, roomID int64, img domain.Image) error {
	if !img.IsCover {
		return nil
	}
	return tx.ClearRoomCovers(ctx, roomID)
}
