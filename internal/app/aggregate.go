package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Mr-fuaaaadh/hostelmate/internal/domain"
)

// RoomCountMaintainer keeps a hostel's derived room counters in sync with
// its live room set. Every room mutation triggers a full re-aggregation in
// the same transaction; there is no incremental +1/-1 bookkeeping, so a
// missed event can never accumulate drift. The counter update writes the
// provider row directly and is not itself treated as a room mutation.
type RoomCountMaintainer struct {
	log zerolog.Logger
}

func NewRoomCountMaintainer(log zerolog.Logger) *RoomCountMaintainer {
	return &RoomCountMaintainer{log: log}
}

// Sync recomputes total_rooms_count and available_rooms_count for the
// hostel. A missing hostel row (orphaned room) is logged and skipped; it
// never fails the triggering write.
func (m *RoomCountMaintainer) Sync(ctx context.Context, tx domain.TxStore, hostelID int64) error {
	found, err := tx.RecountRooms(ctx, hostelID)
	if err != nil {
		return err
	}
	if !found {
		m.log.Warn().Int64("hostel_id", hostelID).Msg("room count sync skipped: hostel row missing")
		return nil
	}
	m.log.Debug().Int64("hostel_id", hostelID).Msg("room counts recomputed")
	return nil
}
