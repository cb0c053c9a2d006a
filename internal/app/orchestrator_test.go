package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Mr-fuaaaadh/hostelmate/internal/app"
	"github.com/Mr-fuaaaadh/hostelmate/internal/domain"
)

type world struct {
	store  *memStore
	cache  *memCache
	images *memImages
	orch   *app.Orchestrator
}

func newWorld() *world {
	store := newMemStore()
	cache := newMemCache()
	images := newMemImages()
	inv := app.NewInvalidator(cache, zerolog.Nop())
	orch := app.NewOrchestrator(
		store, images,
		app.NewRegistry(store),
		app.NewRoomCountMaintainer(zerolog.Nop()),
		zerolog.Nop(),
		inv,
	)
	return &world{store: store, cache: cache, images: images, orch: orch}
}

func hostelPayload() domain.ProviderPayload {
	return domain.ProviderPayload{
		Name:    "Sunrise Hostel",
		Address: "12 MG Road",
		City:    "Kochi",
		State:   "Kerala",
		Pincode: "682001",
	}
}

func homePayload() domain.ProviderPayload {
	return domain.ProviderPayload{
		Name:    "Amma's Kitchen",
		Address: "4 Beach Road",
		City:    "Kozhikode",
		State:   "Kerala",
		Pincode: "673001",
	}
}

func TestCreateProvider_FullGraph(t *testing.T) {
	w := newWorld()
	ctx := context.Background()

	p := hostelPayload()
	p.HostelType = domain.HostelTypeLadies
	p.FacilityIDs = ptr([]int64{1, 3})
	p.Rules = ptr([]domain.RulePayload{
		{Title: "No smoking", RuleType: domain.RuleSafety},
		{Title: "Gate closes at 10pm"}, // defaults to general
	})
	p.Rooms = ptr([]domain.RoomPayload{
		{RoomNumber: "101", RoomType: domain.RoomTypeDouble, Capacity: 2, MonthlyPrice: 6000},
		{RoomNumber: "102", RoomType: domain.RoomTypeDorm, Capacity: 6, MonthlyPrice: 3500, IsAvailable: ptr(false)},
	})
	p.Images = ptr([]domain.ImagePayload{
		{Data: []byte("front"), IsCover: true},
		{Data: []byte("lobby"), Position: 1},
	})
	p.Menu = ptr([]domain.MenuEntryPayload{
		{Day: "monday", VegBreakfast: "idli"},
		{Day: "tuesday", VegBreakfast: "dosa"},
	})

	id, err := w.orch.CreateProvider(ctx, 7, domain.KindHostel, p)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a generated id")
	}

	h := w.store.hostels[id]
	if h.OwnerID != 7 || h.HostelType != domain.HostelTypeLadies {
		t.Fatalf("unexpected root: %+v", h)
	}
	if h.TotalRooms != 2 || h.AvailableRooms != 1 {
		t.Fatalf("counters not derived in the same tx: total=%d available=%d", h.TotalRooms, h.AvailableRooms)
	}
	if got := len(w.store.hostelFacilities[id]); got != 2 {
		t.Fatalf("facilities: got %d want 2", got)
	}
	if got := w.store.rules[id]; len(got) != 2 || got[1].RuleType != domain.RuleGeneral || !got[1].IsActive {
		t.Fatalf("rule defaults not applied: %+v", got)
	}
	if got := len(w.store.hostelImages[id]); got != 2 {
		t.Fatalf("images: got %d want 2", got)
	}
	if got := len(w.store.menus[domain.ProviderRef{Kind: domain.KindHostel, ID: id}]); got != 2 {
		t.Fatalf("menu entries: got %d want 2", got)
	}
	if w.images.liveCount() != 2 {
		t.Fatalf("expected 2 stored binaries, have %d", w.images.liveCount())
	}
}

func TestCreateProvider_ValidationReportsEveryField(t *testing.T) {
	w := newWorld()

	p := domain.ProviderPayload{
		City:       "Kochi",
		HostelType: "coed", // not in the enumeration
		Rooms: ptr([]domain.RoomPayload{
			{RoomNumber: "", RoomType: "suite", Capacity: 0},
		}),
	}
	_, err := w.orch.CreateProvider(context.Background(), 1, domain.KindHostel, p)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if len(ve.Fields) < 6 {
		t.Fatalf("expected every violation reported at once, got %d: %+v", len(ve.Fields), ve.Fields)
	}
	if len(w.store.hostels) != 0 {
		t.Fatal("invalid payload must not touch the store")
	}
	if w.images.n != 0 {
		t.Fatal("invalid payload must not upload images")
	}
}

func TestCreateProvider_UnknownKind(t *testing.T) {
	w := newWorld()
	_, err := w.orch.CreateProvider(context.Background(), 1, domain.ProviderKind("Restaurant"), hostelPayload())
	if !errors.Is(err, domain.ErrUnknownKind) {
		t.Fatalf("want ErrUnknownKind, got %v", err)
	}
}

func TestCreateProvider_RollbackDiscardsUploads(t *testing.T) {
	w := newWorld()
	w.store.failOn["InsertRoom"] = fmt.Errorf("deadlock")

	p := hostelPayload()
	p.Rooms = ptr([]domain.RoomPayload{{RoomNumber: "101", RoomType: domain.RoomTypeSingle, Capacity: 1}})
	p.Images = ptr([]domain.ImagePayload{{Data: []byte("front")}})

	_, err := w.orch.CreateProvider(context.Background(), 1, domain.KindHostel, p)
	if err == nil {
		t.Fatal("expected the forced failure to surface")
	}
	if len(w.store.hostels) != 0 {
		t.Fatal("partial graph left behind after rollback")
	}
	if w.images.liveCount() != 0 {
		t.Fatalf("uploaded binaries not compensated: %d live", w.images.liveCount())
	}
}

func TestReplaceProvider_ForbiddenWritesNothing(t *testing.T) {
	w := newWorld()
	ctx := context.Background()
	id, err := w.orch.CreateProvider(ctx, 7, domain.KindHostel, hostelPayload())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	p := hostelPayload()
	p.Name = "Hijacked"
	err = w.orch.ReplaceProvider(ctx, domain.KindHostel, id, 8, p)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
	if w.store.hostels[id].Name != "Sunrise Hostel" {
		t.Fatal("forbidden replace must leave the row untouched")
	}
}

func TestReplaceProvider_NotFound(t *testing.T) {
	w := newWorld()
	err := w.orch.ReplaceProvider(context.Background(), domain.KindHostel, 999, 1, hostelPayload())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if w.images.n != 0 {
		t.Fatal("missing provider must be detected before any upload")
	}
}

func TestReplaceProvider_AbsentCollectionsUntouched(t *testing.T) {
	w := newWorld()
	ctx := context.Background()

	p := hostelPayload()
	p.Rooms = ptr([]domain.RoomPayload{
		{RoomNumber: "101", RoomType: domain.RoomTypeSingle, Capacity: 1},
	})
	id, err := w.orch.CreateProvider(ctx, 7, domain.KindHostel, p)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	upd := hostelPayload()
	upd.Name = "Sunrise Hostel Deluxe"
	if err := w.orch.ReplaceProvider(ctx, domain.KindHostel, id, 7, upd); err != nil {
		t.Fatalf("replace: %v", err)
	}

	if w.store.hostels[id].Name != "Sunrise Hostel Deluxe" {
		t.Fatal("root scalars not updated")
	}
	if len(w.store.rooms) != 1 {
		t.Fatalf("absent rooms collection must be left alone, have %d rooms", len(w.store.rooms))
	}
	if w.store.hostels[id].TotalRooms != 1 {
		t.Fatal("counters must survive a replace that does not touch rooms")
	}
}

func TestReplaceProvider_RoomsReplacedAndRecounted(t *testing.T) {
	w := newWorld()
	ctx := context.Background()

	p := hostelPayload()
	p.Rooms = ptr([]domain.RoomPayload{
		{RoomNumber: "101", RoomType: domain.RoomTypeSingle, Capacity: 1},
		{RoomNumber: "102", RoomType: domain.RoomTypeSingle, Capacity: 1},
		{RoomNumber: "103", RoomType: domain.RoomTypeSingle, Capacity: 1},
	})
	id, err := w.orch.CreateProvider(ctx, 7, domain.KindHostel, p)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	upd := hostelPayload()
	upd.Rooms = ptr([]domain.RoomPayload{
		{RoomNumber: "201", RoomType: domain.RoomTypeDouble, Capacity: 2, IsAvailable: ptr(false)},
	})
	if err := w.orch.ReplaceProvider(ctx, domain.KindHostel, id, 7, upd); err != nil {
		t.Fatalf("replace: %v", err)
	}

	if len(w.store.rooms) != 1 {
		t.Fatalf("rooms not replaced wholesale: %d", len(w.store.rooms))
	}
	h := w.store.hostels[id]
	if h.TotalRooms != 1 || h.AvailableRooms != 0 {
		t.Fatalf("counters stale after replace: total=%d available=%d", h.TotalRooms, h.AvailableRooms)
	}
}

func TestReplaceProvider_ImageReplaceOrphansOldFiles(t *testing.T) {
	w := newWorld()
	ctx := context.Background()

	p := hostelPayload()
	p.Images = ptr([]domain.ImagePayload{{Data: []byte("old")}})
	id, err := w.orch.CreateProvider(ctx, 7, domain.KindHostel, p)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	upd := hostelPayload()
	upd.Images = ptr([]domain.ImagePayload{{Data: []byte("new"), IsCover: true}})
	if err := w.orch.ReplaceProvider(ctx, domain.KindHostel, id, 7, upd); err != nil {
		t.Fatalf("replace: %v", err)
	}

	imgs := w.store.hostelImages[id]
	if len(imgs) != 1 || !imgs[0].IsCover {
		t.Fatalf("unexpected images after replace: %+v", imgs)
	}
	// One binary replaced one; only the new file should remain stored.
	if w.images.liveCount() != 1 {
		t.Fatalf("orphaned binary not cleaned up after commit: %d live", w.images.liveCount())
	}
}

func TestDeleteProvider_CascadesAssociationsAndFiles(t *testing.T) {
	w := newWorld()
	ctx := context.Background()

	p := homePayload()
	p.Images = ptr([]domain.ImagePayload{{Data: []byte("kitchen")}})
	id, err := w.orch.CreateProvider(ctx, 3, domain.KindHome, p)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := w.orch.SetMealPlans(ctx, domain.KindHome, id, 3, []domain.MealPlanPayload{
		{PlanID: "basic", Name: "Basic", Price: 2500},
	}); err != nil {
		t.Fatalf("set meal plans: %v", err)
	}
	if err := w.orch.SetMenu(ctx, domain.KindHome, id, 3, []domain.MenuEntryPayload{
		{Day: "monday", VegLunch: "sambar rice", LunchImage: []byte("lunch")},
	}); err != nil {
		t.Fatalf("set menu: %v", err)
	}

	if err := w.orch.DeleteProvider(ctx, domain.KindHome, id, 3); err != nil {
		t.Fatalf("delete: %v", err)
	}

	ref := domain.ProviderRef{Kind: domain.KindHome, ID: id}
	if len(w.store.plans[ref]) != 0 || len(w.store.menus[ref]) != 0 {
		t.Fatal("polymorphic rows survived the explicit cascade")
	}
	if _, ok := w.store.homes[id]; ok {
		t.Fatal("root row survived the delete")
	}
	if w.images.liveCount() != 0 {
		t.Fatal("stored files must be removed after a committed delete")
	}

	if err := w.orch.DeleteProvider(ctx, domain.KindHome, id, 3); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
}

func TestSetMealPlans_InvalidatesBothKeys(t *testing.T) {
	w := newWorld()
	ctx := context.Background()

	id, err := w.orch.CreateProvider(ctx, 3, domain.KindHome, homePayload())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Simulate warm cache entries for this provider's kind.
	_ = w.cache.Set(ctx, "home_list", []string{"warm"}, 60)
	_ = w.cache.Set(ctx, fmt.Sprintf("home_detail_%d", id), "warm", 60)
	_ = w.cache.Set(ctx, "hostel_list", "other kind stays", 60)

	if err := w.orch.SetMealPlans(ctx, domain.KindHome, id, 3, []domain.MealPlanPayload{
		{PlanID: "monthly", Name: "Monthly", Price: 3000, Meals: ptr(60), Features: []string{"veg"}},
	}); err != nil {
		t.Fatalf("set meal plans: %v", err)
	}

	if w.cache.has("home_list") || w.cache.has(fmt.Sprintf("home_detail_%d", id)) {
		t.Fatal("meal plan write must purge the home list and detail entries")
	}
	if !w.cache.has("hostel_list") {
		t.Fatal("other kind's entries must not be purged")
	}

	ref := domain.ProviderRef{Kind: domain.KindHome, ID: id}
	plans := w.store.plans[ref]
	if len(plans) != 1 || plans[0].Features == nil {
		t.Fatalf("unexpected plans: %+v", plans)
	}
}

func TestSetMenu_ReplacesWholesale(t *testing.T) {
	w := newWorld()
	ctx := context.Background()

	id, err := w.orch.CreateProvider(ctx, 3, domain.KindHome, homePayload())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	ref := domain.ProviderRef{Kind: domain.KindHome, ID: id}

	week := []domain.MenuEntryPayload{
		{Day: "monday", VegLunch: "sambar rice"},
		{Day: "tuesday", VegLunch: "curd rice"},
	}
	if err := w.orch.SetMenu(ctx, domain.KindHome, id, 3, week); err != nil {
		t.Fatalf("set menu: %v", err)
	}
	if err := w.orch.SetMenu(ctx, domain.KindHome, id, 3, week[:1]); err != nil {
		t.Fatalf("set menu again: %v", err)
	}
	if got := len(w.store.menus[ref]); got != 1 {
		t.Fatalf("menu must be replaced, not appended: %d entries", got)
	}

	err = w.orch.SetMenu(ctx, domain.KindHome, id, 99, week)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("foreign caller: want ErrForbidden, got %v", err)
	}
}

func TestSetMenu_ReplaceDiscardsOldMealImages(t *testing.T) {
	w := newWorld()
	ctx := context.Background()

	id, err := w.orch.CreateProvider(ctx, 3, domain.KindHome, homePayload())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	ref := domain.ProviderRef{Kind: domain.KindHome, ID: id}

	if err := w.orch.SetMenu(ctx, domain.KindHome, id, 3, []domain.MenuEntryPayload{
		{Day: "monday", VegBreakfast: "idli", BreakfastImage: []byte("idli photo")},
	}); err != nil {
		t.Fatalf("set menu: %v", err)
	}
	if w.images.liveCount() != 1 {
		t.Fatalf("breakfast image must be stored: %d live", w.images.liveCount())
	}
	old := w.store.menus[ref][0].BreakfastImageURL

	// An imageless replacement must remove the superseded binary too,
	// not just the rows.
	if err := w.orch.SetMenu(ctx, domain.KindHome, id, 3, []domain.MenuEntryPayload{
		{Day: "monday", VegBreakfast: "dosa"},
	}); err != nil {
		t.Fatalf("replace menu: %v", err)
	}
	if w.images.liveCount() != 0 {
		t.Fatalf("replaced meal image still stored: %d live", w.images.liveCount())
	}
	found := false
	for _, u := range w.images.deleted {
		if u == old {
			found = true
		}
	}
	if !found {
		t.Fatalf("old breakfast image %q was not discarded", old)
	}
}

func TestAddImages_BatchCoverLastWins(t *testing.T) {
	w := newWorld()
	ctx := context.Background()

	id, err := w.orch.CreateProvider(ctx, 7, domain.KindHostel, hostelPayload())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	batch := []domain.ImagePayload{
		{Data: []byte("a"), IsCover: true},
		{Data: []byte("b")},
		{Data: []byte("c"), IsCover: true},
	}
	if err := w.orch.AddImages(ctx, domain.KindHostel, id, 7, batch); err != nil {
		t.Fatalf("add images: %v", err)
	}

	covers := 0
	var coverURL string
	for _, img := range w.store.hostelImages[id] {
		if img.IsCover {
			covers++
			coverURL = img.URL
		}
	}
	if covers != 1 {
		t.Fatalf("exactly one cover must survive, got %d", covers)
	}
	if coverURL != "https://img.test/3" {
		t.Fatalf("last flagged image must keep the cover, got %s", coverURL)
	}
}

func TestAddRoomImages_OwnershipViaHostel(t *testing.T) {
	w := newWorld()
	ctx := context.Background()

	p := hostelPayload()
	p.Rooms = ptr([]domain.RoomPayload{{RoomNumber: "101", RoomType: domain.RoomTypeSingle, Capacity: 1}})
	hostelID, err := w.orch.CreateProvider(ctx, 7, domain.KindHostel, p)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	var roomID int64
	for id := range w.store.rooms {
		roomID = id
	}

	err = w.orch.AddRoomImages(ctx, roomID, 8, []domain.ImagePayload{{Data: []byte("bed")}})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("foreign caller: want ErrForbidden, got %v", err)
	}

	_ = w.cache.Set(ctx, fmt.Sprintf("hostel_detail_%d", hostelID), "warm", 60)
	if err := w.orch.AddRoomImages(ctx, roomID, 7, []domain.ImagePayload{{Data: []byte("bed"), IsCover: true}}); err != nil {
		t.Fatalf("add room images: %v", err)
	}
	if got := len(w.store.roomImages[roomID]); got != 1 {
		t.Fatalf("room images: got %d want 1", got)
	}
	if w.cache.has(fmt.Sprintf("hostel_detail_%d", hostelID)) {
		t.Fatal("room image write must invalidate the owning hostel's detail entry")
	}
}

func TestRecountHostel_RepairsDriftedCounters(t *testing.T) {
	w := newWorld()
	ctx := context.Background()

	p := hostelPayload()
	p.Rooms = ptr([]domain.RoomPayload{
		{RoomNumber: "101", RoomType: domain.RoomTypeSingle, Capacity: 1},
		{RoomNumber: "102", RoomType: domain.RoomTypeSingle, Capacity: 1},
	})
	id, err := w.orch.CreateProvider(ctx, 7, domain.KindHostel, p)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Drift the counters behind the maintainer's back.
	h := w.store.hostels[id]
	h.TotalRooms, h.AvailableRooms = 99, 99
	w.store.hostels[id] = h

	if err := w.orch.RecountHostel(ctx, id); err != nil {
		t.Fatalf("recount: %v", err)
	}
	h = w.store.hostels[id]
	if h.TotalRooms != 2 || h.AvailableRooms != 2 {
		t.Fatalf("counters not repaired: total=%d available=%d", h.TotalRooms, h.AvailableRooms)
	}
}

func TestRecountHostel_MissingHostelIsSkipped(t *testing.T) {
	w := newWorld()
	if err := w.orch.RecountHostel(context.Background(), 424242); err != nil {
		t.Fatalf("missing hostel must be skipped, not fail: %v", err)
	}
}
