package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Mr-fuaaaadh/hostelmate/internal/domain"
)

// Tx is the write surface of one open transaction. Produced by Repo.InTx,
// never constructed directly.
type Tx struct{ tx *sql.Tx }

func (t *Tx) LockProvider(ctx context.Context, ref domain.ProviderRef) (int64, error) {
	var q string
	switch ref.Kind {
	case domain.KindHostel:
		q = lockHostelSQL
	case domain.KindHome:
		q = lockHomeSQL
	default:
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownKind, ref.Kind)
	}
	var owner int64
	if err := t.tx.QueryRowContext(ctx, q, ref.ID).Scan(&owner); err != nil {
		if err == sql.ErrNoRows {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return owner, nil
}

// ---- provider roots ----

func (t *Tx) InsertHostel(ctx context.Context, h domain.Hostel) (int64, error) {
	res, err := t.tx.ExecContext(ctx, insertHostelSQL,
		h.OwnerID, h.Name, h.Description, h.Address, h.City, h.State, h.Pincode,
		h.HostelType, valF64(h.Lat), valF64(h.Lon), h.IsVerified, h.IsActive,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (t *Tx) UpdateHostel(ctx context.Context, h domain.Hostel) error {
	_, err := t.tx.ExecContext(ctx, updateHostelSQL,
		h.Name, h.Description, h.Address, h.City, h.State, h.Pincode,
		h.HostelType, valF64(h.Lat), valF64(h.Lon), h.ID,
	)
	return err
}

func (t *Tx) DeleteHostel(ctx context.Context, id int64) ([]string, error) {
	urls, err := t.collect(ctx, hostelImageURLsSQL, id)
	if err != nil {
		return nil, err
	}
	roomURLs, err := t.collect(ctx, roomImageURLsByHostelSQL, id)
	if err != nil {
		return nil, err
	}
	urls = append(urls, roomURLs...)
	if _, err := t.tx.ExecContext(ctx, deleteHostelSQL, id); err != nil {
		return nil, err
	}
	return urls, nil
}

func (t *Tx) InsertHome(ctx context.Context, h domain.Home) (int64, error) {
	res, err := t.tx.ExecContext(ctx, insertHomeSQL,
		h.OwnerID, h.Name, h.Description, h.Address, h.City, h.State, h.Pincode,
		valF64(h.Lat), valF64(h.Lon), h.IsVerified,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (t *Tx) UpdateHome(ctx context.Context, h domain.Home) error {
	_, err := t.tx.ExecContext(ctx, updateHomeSQL,
		h.Name, h.Description, h.Address, h.City, h.State, h.Pincode,
		valF64(h.Lat), valF64(h.Lon), h.ID,
	)
	return err
}

func (t *Tx) DeleteHome(ctx context.Context, id int64) ([]string, error) {
	urls, err := t.collect(ctx, homeImageURLsSQL, id)
	if err != nil {
		return nil, err
	}
	if _, err := t.tx.ExecContext(ctx, deleteHomeSQL, id); err != nil {
		return nil, err
	}
	return urls, nil
}

// ---- hostel children ----

func (t *Tx) ReplaceHostelFacilities(ctx context.Context, hostelID int64, facilityIDs []int64) error {
	if _, err := t.tx.ExecContext(ctx, deleteHostelFacilitiesSQL, hostelID); err != nil {
		return err
	}
	args := make([]any, 0, len(facilityIDs)*2)
	for _, fid := range facilityIDs {
		args = append(args, hostelID, fid)
	}
	return t.bulk(ctx, insertHostelFacilitiesPrefix, "(?,?)", len(facilityIDs), args)
}

func (t *Tx) ReplaceRules(ctx context.Context, hostelID int64, rules []domain.Rule) error {
	if _, err := t.tx.ExecContext(ctx, deleteRulesSQL, hostelID); err != nil {
		return err
	}
	args := make([]any, 0, len(rules)*5)
	for _, r := range rules {
		args = append(args, hostelID, r.Title, r.Description, r.RuleType, r.IsActive)
	}
	return t.bulk(ctx, insertRulesPrefix, "(?,?,?,?,?)", len(rules), args)
}

func (t *Tx) DeleteRooms(ctx context.Context, hostelID int64) ([]string, error) {
	urls, err := t.collect(ctx, roomImageURLsByHostelSQL, hostelID)
	if err != nil {
		return nil, err
	}
	if _, err := t.tx.ExecContext(ctx, deleteRoomsSQL, hostelID); err != nil {
		return nil, err
	}
	return urls, nil
}

func (t *Tx) InsertRoom(ctx context.Context, r domain.Room) (int64, error) {
	res, err := t.tx.ExecContext(ctx, insertRoomSQL,
		r.HostelID, r.RoomNumber, r.RoomType, r.IsAvailable,
		r.Capacity, r.DailyPrice, r.MonthlyPrice, r.Description,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (t *Tx) ReplaceRoomFacilities(ctx context.Context, roomID int64, facilityIDs []int64) error {
	if _, err := t.tx.ExecContext(ctx, deleteRoomFacilitiesSQL, roomID); err != nil {
		return err
	}
	args := make([]any, 0, len(facilityIDs)*2)
	for _, fid := range facilityIDs {
		args = append(args, roomID, fid)
	}
	return t.bulk(ctx, insertRoomFacilitiesPrefix, "(?,?)", len(facilityIDs), args)
}

func (t *Tx) RoomHostelID(ctx context.Context, roomID int64) (int64, error) {
	var id int64
	if err := t.tx.QueryRowContext(ctx, roomHostelSQL, roomID).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

// ---- images ----

func (t *Tx) DeleteHostelImages(ctx context.Context, hostelID int64) ([]string, error) {
	urls, err := t.collect(ctx, hostelImageURLsSQL, hostelID)
	if err != nil {
		return nil, err
	}
	if _, err := t.tx.ExecContext(ctx, deleteHostelImagesSQL, hostelID); err != nil {
		return nil, err
	}
	return urls, nil
}

func (t *Tx) InsertHostelImage(ctx context.Context, hostelID int64, img domain.Image) error {
	_, err := t.tx.ExecContext(ctx, insertHostelImageSQL,
		hostelID, img.URL, img.Caption, img.IsCover, img.Position)
	return err
}

func (t *Tx) ClearHostelCovers(ctx context.Context, hostelID int64) error {
	_, err := t.tx.ExecContext(ctx, clearHostelCoversSQL, hostelID)
	return err
}

func (t *Tx) InsertRoomImage(ctx context.Context, roomID int64, img domain.Image) error {
	_, err := t.tx.ExecContext(ctx, insertRoomImageSQL,
		roomID, img.URL, img.Caption, img.IsCover, img.Position)
	return err
}

func (t *Tx) ClearRoomCovers(ctx context.Context, roomID int64) error {
	_, err := t.tx.ExecContext(ctx, clearRoomCoversSQL, roomID)
	return err
}

func (t *Tx) DeleteHomeImages(ctx context.Context, homeID int64) ([]string, error) {
	urls, err := t.collect(ctx, homeImageURLsSQL, homeID)
	if err != nil {
		return nil, err
	}
	if _, err := t.tx.ExecContext(ctx, deleteHomeImagesSQL, homeID); err != nil {
		return nil, err
	}
	return urls, nil
}

func (t *Tx) InsertHomeImage(ctx context.Context, homeID int64, img domain.Image) error {
	_, err := t.tx.ExecContext(ctx, insertHomeImageSQL,
		homeID, img.URL, img.Caption, img.Position)
	return err
}

// ---- aggregate recount ----

func (t *Tx) RecountRooms(ctx context.Context, hostelID int64) (bool, error) {
	var exists bool
	if err := t.tx.QueryRowContext(ctx, hostelExistsSQL, hostelID).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	var total, available int
	if err := t.tx.QueryRowContext(ctx, countRoomsSQL, hostelID).Scan(&total, &available); err != nil {
		return false, err
	}
	if _, err := t.tx.ExecContext(ctx, setRoomCountsSQL, total, available, hostelID); err != nil {
		return false, err
	}
	return true, nil
}

// ---- polymorphic associations ----

func (t *Tx) ReplaceMenu(ctx context.Context, ref domain.ProviderRef, entries []domain.MenuEntry) ([]string, error) {
	urls, err := t.menuImageURLs(ctx, ref)
	if err != nil {
		return nil, err
	}
	if _, err := t.tx.ExecContext(ctx, deleteMenuSQL, ref.Kind.String(), ref.ID); err != nil {
		return nil, err
	}
	args := make([]any, 0, len(entries)*18)
	for _, m := range entries {
		args = append(args,
			ref.Kind.String(), ref.ID, m.Day,
			nulStr(m.VegBreakfast), nulStr(m.VegBreakfastSide),
			nulStr(m.VegLunch), nulStr(m.VegLunchSide),
			nulStr(m.VegDinner), nulStr(m.VegDinnerSide),
			nulStr(m.NonVegBreakfast), nulStr(m.NonVegBreakfastSide),
			nulStr(m.NonVegLunch), nulStr(m.NonVegLunchSide),
			nulStr(m.NonVegDinner), nulStr(m.NonVegDinnerSide),
			nulStr(m.BreakfastImageURL), nulStr(m.LunchImageURL), nulStr(m.DinnerImageURL),
		)
	}
	if err := t.bulk(ctx, insertMenuPrefix, "(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)", len(entries), args); err != nil {
		return nil, err
	}
	return urls, nil
}

func (t *Tx) ReplaceMealPlans(ctx context.Context, ref domain.ProviderRef, plans []domain.MealPlan) error {
	if _, err := t.tx.ExecContext(ctx, deleteMealPlansSQL, ref.Kind.String(), ref.ID); err != nil {
		return err
	}
	args := make([]any, 0, len(plans)*7)
	for _, p := range plans {
		features, _ := json.Marshal(p.Features)
		args = append(args,
			ref.Kind.String(), ref.ID, p.PlanID, p.Name, p.Price, valInt(p.Meals), string(features))
	}
	return t.bulk(ctx, insertMealPlansPrefix, "(?,?,?,?,?,?,?)", len(plans), args)
}

func (t *Tx) ReplaceDeliveryAreas(ctx context.Context, ref domain.ProviderRef, areas []domain.DeliveryArea) error {
	if _, err := t.tx.ExecContext(ctx, deleteDeliveryAreasSQL, ref.Kind.String(), ref.ID); err != nil {
		return err
	}
	args := make([]any, 0, len(areas)*3)
	for _, a := range areas {
		args = append(args, ref.Kind.String(), ref.ID, a.AreaName)
	}
	return t.bulk(ctx, insertDeliveryAreasPrefix, "(?,?,?)", len(areas), args)
}

func (t *Tx) ReplaceFeatures(ctx context.Context, ref domain.ProviderRef, features []domain.Feature) error {
	if _, err := t.tx.ExecContext(ctx, deleteFeaturesSQL, ref.Kind.String(), ref.ID); err != nil {
		return err
	}
	args := make([]any, 0, len(features)*5)
	for _, f := range features {
		args = append(args, ref.Kind.String(), ref.ID, nulStr(f.Icon), f.Title, nulStr(f.Description))
	}
	return t.bulk(ctx, insertFeaturesPrefix, "(?,?,?,?,?)", len(features), args)
}

func (t *Tx) DeleteAssociations(ctx context.Context, ref domain.ProviderRef) ([]string, error) {
	urls, err := t.menuImageURLs(ctx, ref)
	if err != nil {
		return nil, err
	}
	for _, q := range []string{deleteMenuSQL, deleteMealPlansSQL, deleteDeliveryAreasSQL, deleteFeaturesSQL} {
		if _, err := t.tx.ExecContext(ctx, q, ref.Kind.String(), ref.ID); err != nil {
			return nil, err
		}
	}
	return urls, nil
}

// menuImageURLs gathers the stored meal-slot image URLs for ref so the
// delete paths can hand them back for post-commit file cleanup.
func (t *Tx) menuImageURLs(ctx context.Context, ref domain.ProviderRef) ([]string, error) {
	k := ref.Kind.String()
	return t.collect(ctx, menuImageURLsSQL, k, ref.ID, k, ref.ID, k, ref.ID)
}

// ---- helpers ----

// bulk builds a multi-row VALUES insert; no-op for zero rows.
func (t *Tx) bulk(ctx context.Context, prefix, row string, n int, args []any) error {
	if n == 0 {
		return nil
	}
	rows := make([]string, n)
	for i := range rows {
		rows[i] = row
	}
	_, err := t.tx.ExecContext(ctx, prefix+strings.Join(rows, ","), args...)
	return err
}

func (t *Tx) collect(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
