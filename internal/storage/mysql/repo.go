package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/Mr-fuaaaadh/hostelmate/internal/domain"
)

// truncate cuts s to at most n bytes without splitting a UTF-8 rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

// nulStr maps "" to NULL so optional text columns stay NULL-clean.
func nulStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// InTx runs fn inside one transaction. Any error (or panic) rolls the whole
// thing back; partial graphs are never visible.
func (r *Repo) InTx(ctx context.Context, fn func(tx domain.TxStore) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(&Tx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *Repo) ProviderExists(ctx context.Context, ref domain.ProviderRef) (bool, error) {
	var q string
	switch ref.Kind {
	case domain.KindHostel:
		q = hostelExistsSQL
	case domain.KindHome:
		q = homeExistsSQL
	default:
		return false, fmt.Errorf("%w: %q", domain.ErrUnknownKind, ref.Kind)
	}
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, ref.ID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *Repo) GetHostel(ctx context.Context, id int64) (domain.HostelView, error) {
	var hv domain.HostelView
	var lat, lon sql.NullFloat64
	row := r.db.QueryRowContext(ctx, getHostelSQL, id)
	if err := row.Scan(
		&hv.ID, &hv.OwnerID, &hv.Name, &hv.Description, &hv.Address,
		&hv.City, &hv.State, &hv.Pincode, &hv.HostelType,
		&lat, &lon, &hv.IsVerified, &hv.IsActive,
		&hv.TotalRooms, &hv.AvailableRooms, &hv.CreatedAt, &hv.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.HostelView{}, domain.ErrNotFound
		}
		return domain.HostelView{}, err
	}
	if lat.Valid {
		v := lat.Float64
		hv.Lat = &v
	}
	if lon.Valid {
		v := lon.Float64
		hv.Lon = &v
	}

	var err error
	if hv.Facilities, err = r.facilities(ctx, hostelFacilitiesSQL, id); err != nil {
		return domain.HostelView{}, err
	}
	if hv.Rules, err = r.rules(ctx, id); err != nil {
		return domain.HostelView{}, err
	}
	if hv.Rooms, err = r.rooms(ctx, id); err != nil {
		return domain.HostelView{}, err
	}
	if hv.Images, err = r.images(ctx, hostelImagesSQL, id); err != nil {
		return domain.HostelView{}, err
	}
	ref := hv.Ref()
	if hv.Menu, err = r.menu(ctx, ref); err != nil {
		return domain.HostelView{}, err
	}
	if hv.MealPlans, err = r.mealPlans(ctx, ref); err != nil {
		return domain.HostelView{}, err
	}
	if hv.DeliveryAreas, err = r.deliveryAreas(ctx, ref); err != nil {
		return domain.HostelView{}, err
	}
	if hv.Features, err = r.features(ctx, ref); err != nil {
		return domain.HostelView{}, err
	}
	return hv, nil
}

func (r *Repo) GetHome(ctx context.Context, id int64) (domain.HomeView, error) {
	var hv domain.HomeView
	var lat, lon sql.NullFloat64
	row := r.db.QueryRowContext(ctx, getHomeSQL, id)
	if err := row.Scan(
		&hv.ID, &hv.OwnerID, &hv.Name, &hv.Description, &hv.Address,
		&hv.City, &hv.State, &hv.Pincode,
		&lat, &lon, &hv.IsVerified, &hv.CreatedAt, &hv.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.HomeView{}, domain.ErrNotFound
		}
		return domain.HomeView{}, err
	}
	if lat.Valid {
		v := lat.Float64
		hv.Lat = &v
	}
	if lon.Valid {
		v := lon.Float64
		hv.Lon = &v
	}

	var err error
	if hv.Images, err = r.images(ctx, homeImagesSQL, id); err != nil {
		return domain.HomeView{}, err
	}
	ref := hv.Ref()
	if hv.Menu, err = r.menu(ctx, ref); err != nil {
		return domain.HomeView{}, err
	}
	if hv.MealPlans, err = r.mealPlans(ctx, ref); err != nil {
		return domain.HomeView{}, err
	}
	if hv.DeliveryAreas, err = r.deliveryAreas(ctx, ref); err != nil {
		return domain.HomeView{}, err
	}
	if hv.Features, err = r.features(ctx, ref); err != nil {
		return domain.HomeView{}, err
	}
	return hv, nil
}

func (r *Repo) ListHostels(ctx context.Context) ([]domain.ProviderSummary, error) {
	rows, err := r.db.QueryContext(ctx, listHostelsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ProviderSummary{}
	for rows.Next() {
		var s domain.ProviderSummary
		var total, available int
		var cover sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &s.City, &s.State, &s.IsVerified, &total, &available, &cover); err != nil {
			return nil, err
		}
		s.Kind = domain.KindHostel.String()
		s.TotalRooms = &total
		s.AvailableRooms = &available
		if cover.Valid {
			u := cover.String
			s.CoverImageURL = &u
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) ListHomes(ctx context.Context) ([]domain.ProviderSummary, error) {
	rows, err := r.db.QueryContext(ctx, listHomesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ProviderSummary{}
	for rows.Next() {
		var s domain.ProviderSummary
		var cover sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &s.City, &s.State, &s.IsVerified, &cover); err != nil {
			return nil, err
		}
		s.Kind = domain.KindHome.String()
		if cover.Valid {
			u := cover.String
			s.CoverImageURL = &u
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) ListFacilities(ctx context.Context) ([]domain.Facility, error) {
	return r.facilities(ctx, listFacilitiesSQL)
}

// SearchProviders matches name or city per kind, capped at perKind rows
// each. Descriptions are trimmed to suggestion-card length.
func (r *Repo) SearchProviders(ctx context.Context, q string, perKind int) ([]domain.Suggestion, error) {
	like := "%" + q + "%"
	out := []domain.Suggestion{}
	for _, src := range []struct {
		query string
		kind  domain.ProviderKind
	}{
		{searchHostelsSQL, domain.KindHostel},
		{searchHomesSQL, domain.KindHome},
	} {
		rows, err := r.db.QueryContext(ctx, src.query, like, like, perKind)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var s domain.Suggestion
			if err := rows.Scan(&s.ID, &s.Name, &s.City, &s.Description); err != nil {
				rows.Close()
				return nil, err
			}
			s.Kind = src.kind.String()
			s.Description = truncate(s.Description, 120)
			out = append(out, s)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return out, nil
}

func (r *Repo) ListHostelIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, listHostelIDsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ---- child readers ----

func (r *Repo) facilities(ctx context.Context, query string, args ...any) ([]domain.Facility, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Facility{}
	for rows.Next() {
		var f domain.Facility
		if err := rows.Scan(&f.ID, &f.Name, &f.Slug); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *Repo) rules(ctx context.Context, hostelID int64) ([]domain.Rule, error) {
	rows, err := r.db.QueryContext(ctx, hostelRulesSQL, hostelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Rule{}
	for rows.Next() {
		var rl domain.Rule
		if err := rows.Scan(&rl.ID, &rl.Title, &rl.Description, &rl.RuleType, &rl.IsActive); err != nil {
			return nil, err
		}
		out = append(out, rl)
	}
	return out, rows.Err()
}

// rooms loads the hostel's room set and attaches per-room facilities and
// images grouped in memory, three queries total.
func (r *Repo) rooms(ctx context.Context, hostelID int64) ([]domain.RoomView, error) {
	rows, err := r.db.QueryContext(ctx, hostelRoomsSQL, hostelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.RoomView{}
	index := map[int64]int{}
	for rows.Next() {
		var rv domain.RoomView
		if err := rows.Scan(
			&rv.ID, &rv.HostelID, &rv.RoomNumber, &rv.RoomType, &rv.IsAvailable,
			&rv.Capacity, &rv.DailyPrice, &rv.MonthlyPrice, &rv.Description,
		); err != nil {
			return nil, err
		}
		rv.Facilities = []domain.Facility{}
		rv.Images = []domain.Image{}
		index[rv.ID] = len(out)
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	frows, err := r.db.QueryContext(ctx, roomFacilitiesByHostelSQL, hostelID)
	if err != nil {
		return nil, err
	}
	defer frows.Close()
	for frows.Next() {
		var roomID int64
		var f domain.Facility
		if err := frows.Scan(&roomID, &f.ID, &f.Name, &f.Slug); err != nil {
			return nil, err
		}
		if i, ok := index[roomID]; ok {
			out[i].Facilities = append(out[i].Facilities, f)
		}
	}
	if err := frows.Err(); err != nil {
		return nil, err
	}

	irows, err := r.db.QueryContext(ctx, roomImagesByHostelSQL, hostelID)
	if err != nil {
		return nil, err
	}
	defer irows.Close()
	for irows.Next() {
		var roomID int64
		var img domain.Image
		if err := irows.Scan(&roomID, &img.ID, &img.URL, &img.Caption, &img.IsCover, &img.Position); err != nil {
			return nil, err
		}
		if i, ok := index[roomID]; ok {
			out[i].Images = append(out[i].Images, img)
		}
	}
	return out, irows.Err()
}

func (r *Repo) images(ctx context.Context, query string, parentID int64) ([]domain.Image, error) {
	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Image{}
	for rows.Next() {
		var img domain.Image
		if err := rows.Scan(&img.ID, &img.URL, &img.Caption, &img.IsCover, &img.Position); err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

func (r *Repo) menu(ctx context.Context, ref domain.ProviderRef) ([]domain.MenuEntry, error) {
	rows, err := r.db.QueryContext(ctx, menuByProviderSQL, ref.Kind.String(), ref.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.MenuEntry{}
	for rows.Next() {
		var m domain.MenuEntry
		if err := rows.Scan(
			&m.ID, &m.Day,
			&m.VegBreakfast, &m.VegBreakfastSide,
			&m.VegLunch, &m.VegLunchSide,
			&m.VegDinner, &m.VegDinnerSide,
			&m.NonVegBreakfast, &m.NonVegBreakfastSide,
			&m.NonVegLunch, &m.NonVegLunchSide,
			&m.NonVegDinner, &m.NonVegDinnerSide,
			&m.BreakfastImageURL, &m.LunchImageURL, &m.DinnerImageURL,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repo) mealPlans(ctx context.Context, ref domain.ProviderRef) ([]domain.MealPlan, error) {
	rows, err := r.db.QueryContext(ctx, mealPlansByProviderSQL, ref.Kind.String(), ref.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.MealPlan{}
	for rows.Next() {
		var p domain.MealPlan
		var meals sql.NullInt64
		var featuresJSON []byte
		if err := rows.Scan(&p.ID, &p.PlanID, &p.Name, &p.Price, &meals, &featuresJSON); err != nil {
			return nil, err
		}
		if meals.Valid {
			m := int(meals.Int64)
			p.Meals = &m
		}
		p.Features = []string{}
		_ = json.Unmarshal(featuresJSON, &p.Features)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) deliveryAreas(ctx context.Context, ref domain.ProviderRef) ([]domain.DeliveryArea, error) {
	rows, err := r.db.QueryContext(ctx, deliveryAreasByProviderSQL, ref.Kind.String(), ref.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.DeliveryArea{}
	for rows.Next() {
		var a domain.DeliveryArea
		if err := rows.Scan(&a.ID, &a.AreaName); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repo) features(ctx context.Context, ref domain.ProviderRef) ([]domain.Feature, error) {
	rows, err := r.db.QueryContext(ctx, featuresByProviderSQL, ref.Kind.String(), ref.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Feature{}
	for rows.Next() {
		var f domain.Feature
		if err := rows.Scan(&f.ID, &f.Icon, &f.Title, &f.Description); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
