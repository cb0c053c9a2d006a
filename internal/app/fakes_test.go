package app_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/Mr-fuaaaadh/hostelmate/internal/domain"
)

// ---- in-memory store ----

// memStore backs the orchestrator tests. InTx snapshots the maps up front
// and restores them when the closure fails, so rollback semantics match the
// real repository.
type memStore struct {
	mu     sync.Mutex
	nextID int64

	hostels map[int64]domain.Hostel
	homes   map[int64]domain.Home
	rooms   map[int64]domain.Room

	catalog          []domain.Facility
	hostelFacilities map[int64][]int64
	roomFacilities   map[int64][]int64
	rules            map[int64][]domain.Rule
	hostelImages     map[int64][]domain.Image
	roomImages       map[int64][]domain.Image
	homeImages       map[int64][]domain.Image

	menus map[domain.ProviderRef][]domain.MenuEntry
	plans map[domain.ProviderRef][]domain.MealPlan
	areas map[domain.ProviderRef][]domain.DeliveryArea
	feats map[domain.ProviderRef][]domain.Feature

	// failOn forces the named tx method to error, to exercise rollback.
	failOn map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		hostels:          map[int64]domain.Hostel{},
		homes:            map[int64]domain.Home{},
		rooms:            map[int64]domain.Room{},
		hostelFacilities: map[int64][]int64{},
		roomFacilities:   map[int64][]int64{},
		rules:            map[int64][]domain.Rule{},
		hostelImages:     map[int64][]domain.Image{},
		roomImages:       map[int64][]domain.Image{},
		homeImages:       map[int64][]domain.Image{},
		menus:            map[domain.ProviderRef][]domain.MenuEntry{},
		plans:            map[domain.ProviderRef][]domain.MealPlan{},
		areas:            map[domain.ProviderRef][]domain.DeliveryArea{},
		feats:            map[domain.ProviderRef][]domain.Feature{},
		failOn:           map[string]error{},
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copySliceMap[K comparable, V any](m map[K][]V) map[K][]V {
	out := make(map[K][]V, len(m))
	for k, v := range m {
		out[k] = append([]V(nil), v...)
	}
	return out
}

func (s *memStore) snapshot() *memStore {
	c := newMemStore()
	c.nextID = s.nextID
	c.hostels = copyMap(s.hostels)
	c.homes = copyMap(s.homes)
	c.rooms = copyMap(s.rooms)
	c.hostelFacilities = copySliceMap(s.hostelFacilities)
	c.roomFacilities = copySliceMap(s.roomFacilities)
	c.rules = copySliceMap(s.rules)
	c.hostelImages = copySliceMap(s.hostelImages)
	c.roomImages = copySliceMap(s.roomImages)
	c.homeImages = copySliceMap(s.homeImages)
	c.menus = copySliceMap(s.menus)
	c.plans = copySliceMap(s.plans)
	c.areas = copySliceMap(s.areas)
	c.feats = copySliceMap(s.feats)
	return c
}

func (s *memStore) restore(c *memStore) {
	s.nextID = c.nextID
	s.hostels = c.hostels
	s.homes = c.homes
	s.rooms = c.rooms
	s.hostelFacilities = c.hostelFacilities
	s.roomFacilities = c.roomFacilities
	s.rules = c.rules
	s.hostelImages = c.hostelImages
	s.roomImages = c.roomImages
	s.homeImages = c.homeImages
	s.menus = c.menus
	s.plans = c.plans
	s.areas = c.areas
	s.feats = c.feats
}

func (s *memStore) menuImageURLs(ref domain.ProviderRef) []string {
	var urls []string
	for _, m := range s.menus[ref] {
		for _, u := range []string{m.BreakfastImageURL, m.LunchImageURL, m.DinnerImageURL} {
			if u != "" {
				urls = append(urls, u)
			}
		}
	}
	return urls
}

func (s *memStore) InTx(ctx context.Context, fn func(tx domain.TxStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(&memTx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *memStore) ProviderExists(ctx context.Context, ref domain.ProviderRef) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ref.Kind == domain.KindHostel {
		_, ok := s.hostels[ref.ID]
		return ok, nil
	}
	_, ok := s.homes[ref.ID]
	return ok, nil
}

func (s *memStore) GetHostel(ctx context.Context, id int64) (domain.HostelView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hostels[id]
	if !ok {
		return domain.HostelView{}, domain.ErrNotFound
	}
	v := domain.HostelView{Hostel: h}
	v.Images = append([]domain.Image(nil), s.hostelImages[id]...)
	v.Rules = append([]domain.Rule(nil), s.rules[id]...)
	v.Menu = append([]domain.MenuEntry(nil), s.menus[h.Ref()]...)
	for _, r := range s.rooms {
		if r.HostelID == id {
			v.Rooms = append(v.Rooms, domain.RoomView{Room: r, Images: s.roomImages[r.ID]})
		}
	}
	return v, nil
}

func (s *memStore) GetHome(ctx context.Context, id int64) (domain.HomeView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.homes[id]
	if !ok {
		return domain.HomeView{}, domain.ErrNotFound
	}
	v := domain.HomeView{Home: h}
	v.Images = append([]domain.Image(nil), s.homeImages[id]...)
	v.Menu = append([]domain.MenuEntry(nil), s.menus[h.Ref()]...)
	v.MealPlans = append([]domain.MealPlan(nil), s.plans[h.Ref()]...)
	return v, nil
}

func (s *memStore) ListHostels(ctx context.Context) ([]domain.ProviderSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.ProviderSummary{}
	for _, h := range s.hostels {
		total, avail := h.TotalRooms, h.AvailableRooms
		out = append(out, domain.ProviderSummary{
			ID: h.ID, Kind: string(domain.KindHostel), Name: h.Name, City: h.City,
			State: h.State, IsVerified: h.IsVerified, TotalRooms: &total, AvailableRooms: &avail,
		})
	}
	return out, nil
}

func (s *memStore) ListHomes(ctx context.Context) ([]domain.ProviderSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.ProviderSummary{}
	for _, h := range s.homes {
		out = append(out, domain.ProviderSummary{
			ID: h.ID, Kind: string(domain.KindHome), Name: h.Name, City: h.City,
			State: h.State, IsVerified: h.IsVerified,
		})
	}
	return out, nil
}

func (s *memStore) ListFacilities(ctx context.Context) ([]domain.Facility, error) {
	return append([]domain.Facility(nil), s.catalog...), nil
}

func (s *memStore) SearchProviders(ctx context.Context, q string, perKind int) ([]domain.Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lq := strings.ToLower(q)
	out := []domain.Suggestion{}
	n := 0
	for _, h := range s.hostels {
		if n >= perKind {
			break
		}
		if strings.Contains(strings.ToLower(h.Name), lq) || strings.Contains(strings.ToLower(h.City), lq) {
			out = append(out, domain.Suggestion{ID: h.ID, Kind: "hostel", Name: h.Name, City: h.City})
			n++
		}
	}
	n = 0
	for _, h := range s.homes {
		if n >= perKind {
			break
		}
		if strings.Contains(strings.ToLower(h.Name), lq) || strings.Contains(strings.ToLower(h.City), lq) {
			out = append(out, domain.Suggestion{ID: h.ID, Kind: "home", Name: h.Name, City: h.City})
			n++
		}
	}
	return out, nil
}

func (s *memStore) ListHostelIDs(ctx context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []int64{}
	for id := range s.hostels {
		out = append(out, id)
	}
	return out, nil
}

// ---- tx view ----

type memTx struct{ s *memStore }

func (t *memTx) fail(name string) error { return t.s.failOn[name] }

func (t *memTx) LockProvider(ctx context.Context, ref domain.ProviderRef) (int64, error) {
	if err := t.fail("LockProvider"); err != nil {
		return 0, err
	}
	if ref.Kind == domain.KindHostel {
		if h, ok := t.s.hostels[ref.ID]; ok {
			return h.OwnerID, nil
		}
		return 0, domain.ErrNotFound
	}
	if h, ok := t.s.homes[ref.ID]; ok {
		return h.OwnerID, nil
	}
	return 0, domain.ErrNotFound
}

func (t *memTx) InsertHostel(ctx context.Context, h domain.Hostel) (int64, error) {
	if err := t.fail("InsertHostel"); err != nil {
		return 0, err
	}
	t.s.nextID++
	h.ID = t.s.nextID
	t.s.hostels[h.ID] = h
	return h.ID, nil
}

func (t *memTx) UpdateHostel(ctx context.Context, h domain.Hostel) error {
	if err := t.fail("UpdateHostel"); err != nil {
		return err
	}
	cur, ok := t.s.hostels[h.ID]
	if !ok {
		return domain.ErrNotFound
	}
	// Counters are owned by the recount path.
	h.TotalRooms, h.AvailableRooms = cur.TotalRooms, cur.AvailableRooms
	h.OwnerID = cur.OwnerID
	t.s.hostels[h.ID] = h
	return nil
}

func (t *memTx) DeleteHostel(ctx context.Context, id int64) ([]string, error) {
	if err := t.fail("DeleteHostel"); err != nil {
		return nil, err
	}
	urls := []string{}
	for _, img := range t.s.hostelImages[id] {
		urls = append(urls, img.URL)
	}
	for rid, r := range t.s.rooms {
		if r.HostelID != id {
			continue
		}
		for _, img := range t.s.roomImages[rid] {
			urls = append(urls, img.URL)
		}
		delete(t.s.roomImages, rid)
		delete(t.s.roomFacilities, rid)
		delete(t.s.rooms, rid)
	}
	delete(t.s.hostelImages, id)
	delete(t.s.hostelFacilities, id)
	delete(t.s.rules, id)
	delete(t.s.hostels, id)
	return urls, nil
}

func (t *memTx) InsertHome(ctx context.Context, h domain.Home) (int64, error) {
	if err := t.fail("InsertHome"); err != nil {
		return 0, err
	}
	t.s.nextID++
	h.ID = t.s.nextID
	t.s.homes[h.ID] = h
	return h.ID, nil
}

func (t *memTx) UpdateHome(ctx context.Context, h domain.Home) error {
	if err := t.fail("UpdateHome"); err != nil {
		return err
	}
	cur, ok := t.s.homes[h.ID]
	if !ok {
		return domain.ErrNotFound
	}
	h.OwnerID = cur.OwnerID
	t.s.homes[h.ID] = h
	return nil
}

func (t *memTx) DeleteHome(ctx context.Context, id int64) ([]string, error) {
	if err := t.fail("DeleteHome"); err != nil {
		return nil, err
	}
	urls := []string{}
	for _, img := range t.s.homeImages[id] {
		urls = append(urls, img.URL)
	}
	delete(t.s.homeImages, id)
	delete(t.s.homes, id)
	return urls, nil
}

func (t *memTx) ReplaceHostelFacilities(ctx context.Context, hostelID int64, ids []int64) error {
	if err := t.fail("ReplaceHostelFacilities"); err != nil {
		return err
	}
	t.s.hostelFacilities[hostelID] = append([]int64(nil), ids...)
	return nil
}

func (t *memTx) ReplaceRules(ctx context.Context, hostelID int64, rules []domain.Rule) error {
	if err := t.fail("ReplaceRules"); err != nil {
		return err
	}
	t.s.rules[hostelID] = append([]domain.Rule(nil), rules...)
	return nil
}

func (t *memTx) DeleteRooms(ctx context.Context, hostelID int64) ([]string, error) {
	if err := t.fail("DeleteRooms"); err != nil {
		return nil, err
	}
	urls := []string{}
	for rid, r := range t.s.rooms {
		if r.HostelID != hostelID {
			continue
		}
		for _, img := range t.s.roomImages[rid] {
			urls = append(urls, img.URL)
		}
		delete(t.s.roomImages, rid)
		delete(t.s.roomFacilities, rid)
		delete(t.s.rooms, rid)
	}
	return urls, nil
}

func (t *memTx) InsertRoom(ctx context.Context, r domain.Room) (int64, error) {
	if err := t.fail("InsertRoom"); err != nil {
		return 0, err
	}
	for _, other := range t.s.rooms {
		if other.HostelID == r.HostelID && other.RoomNumber == r.RoomNumber {
			return 0, fmt.Errorf("duplicate room number %q", r.RoomNumber)
		}
	}
	t.s.nextID++
	r.ID = t.s.nextID
	t.s.rooms[r.ID] = r
	return r.ID, nil
}

func (t *memTx) ReplaceRoomFacilities(ctx context.Context, roomID int64, ids []int64) error {
	if err := t.fail("ReplaceRoomFacilities"); err != nil {
		return err
	}
	t.s.roomFacilities[roomID] = append([]int64(nil), ids...)
	return nil
}

func (t *memTx) RoomHostelID(ctx context.Context, roomID int64) (int64, error) {
	if err := t.fail("RoomHostelID"); err != nil {
		return 0, err
	}
	r, ok := t.s.rooms[roomID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return r.HostelID, nil
}

func (t *memTx) DeleteHostelImages(ctx context.Context, hostelID int64) ([]string, error) {
	if err := t.fail("DeleteHostelImages"); err != nil {
		return nil, err
	}
	urls := []string{}
	for _, img := range t.s.hostelImages[hostelID] {
		urls = append(urls, img.URL)
	}
	delete(t.s.hostelImages, hostelID)
	return urls, nil
}

func (t *memTx) InsertHostelImage(ctx context.Context, hostelID int64, img domain.Image) error {
	if err := t.fail("InsertHostelImage"); err != nil {
		return err
	}
	t.s.nextID++
	img.ID = t.s.nextID
	t.s.hostelImages[hostelID] = append(t.s.hostelImages[hostelID], img)
	return nil
}

func (t *memTx) ClearHostelCovers(ctx context.Context, hostelID int64) error {
	if err := t.fail("ClearHostelCovers"); err != nil {
		return err
	}
	imgs := t.s.hostelImages[hostelID]
	for i := range imgs {
		imgs[i].IsCover = false
	}
	return nil
}

func (t *memTx) InsertRoomImage(ctx context.Context, roomID int64, img domain.Image) error {
	if err := t.fail("InsertRoomImage"); err != nil {
		return err
	}
	t.s.nextID++
	img.ID = t.s.nextID
	t.s.roomImages[roomID] = append(t.s.roomImages[roomID], img)
	return nil
}

func (t *memTx) ClearRoomCovers(ctx context.Context, roomID int64) error {
	if err := t.fail("ClearRoomCovers"); err != nil {
		return err
	}
	imgs := t.s.roomImages[roomID]
	for i := range imgs {
		imgs[i].IsCover = false
	}
	return nil
}

func (t *memTx) DeleteHomeImages(ctx context.Context, homeID int64) ([]string, error) {
	if err := t.fail("DeleteHomeImages"); err != nil {
		return nil, err
	}
	urls := []string{}
	for _, img := range t.s.homeImages[homeID] {
		urls = append(urls, img.URL)
	}
	delete(t.s.homeImages, homeID)
	return urls, nil
}

func (t *memTx) InsertHomeImage(ctx context.Context, homeID int64, img domain.Image) error {
	if err := t.fail("InsertHomeImage"); err != nil {
		return err
	}
	t.s.nextID++
	img.ID = t.s.nextID
	t.s.homeImages[homeID] = append(t.s.homeImages[homeID], img)
	return nil
}

func (t *memTx) RecountRooms(ctx context.Context, hostelID int64) (bool, error) {
	if err := t.fail("RecountRooms"); err != nil {
		return false, err
	}
	h, ok := t.s.hostels[hostelID]
	if !ok {
		return false, nil
	}
	total, avail := 0, 0
	for _, r := range t.s.rooms {
		if r.HostelID == hostelID {
			total++
			if r.IsAvailable {
				avail++
			}
		}
	}
	h.TotalRooms, h.AvailableRooms = total, avail
	t.s.hostels[hostelID] = h
	return true, nil
}

func (t *memTx) ReplaceMenu(ctx context.Context, ref domain.ProviderRef, entries []domain.MenuEntry) ([]string, error) {
	if err := t.fail("ReplaceMenu"); err != nil {
		return nil, err
	}
	urls := t.s.menuImageURLs(ref)
	t.s.menus[ref] = append([]domain.MenuEntry(nil), entries...)
	return urls, nil
}

func (t *memTx) ReplaceMealPlans(ctx context.Context, ref domain.ProviderRef, plans []domain.MealPlan) error {
	if err := t.fail("ReplaceMealPlans"); err != nil {
		return err
	}
	t.s.plans[ref] = append([]domain.MealPlan(nil), plans...)
	return nil
}

func (t *memTx) ReplaceDeliveryAreas(ctx context.Context, ref domain.ProviderRef, areas []domain.DeliveryArea) error {
	if err := t.fail("ReplaceDeliveryAreas"); err != nil {
		return err
	}
	t.s.areas[ref] = append([]domain.DeliveryArea(nil), areas...)
	return nil
}

func (t *memTx) ReplaceFeatures(ctx context.Context, ref domain.ProviderRef, features []domain.Feature) error {
	if err := t.fail("ReplaceFeatures"); err != nil {
		return err
	}
	t.s.feats[ref] = append([]domain.Feature(nil), features...)
	return nil
}

func (t *memTx) DeleteAssociations(ctx context.Context, ref domain.ProviderRef) ([]string, error) {
	if err := t.fail("DeleteAssociations"); err != nil {
		return nil, err
	}
	urls := t.s.menuImageURLs(ref)
	delete(t.s.menus, ref)
	delete(t.s.plans, ref)
	delete(t.s.areas, ref)
	delete(t.s.feats, ref)
	return urls, nil
}

// ---- cache ----

// memCache stores marshalled JSON like the Redis adapter, so views take the
// same serialization round trip as in production.
type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
	delErr  error
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *memCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, key)
	if c.delErr != nil {
		return c.delErr
	}
	delete(c.data, key)
	return nil
}

func (c *memCache) GetOrSet(ctx context.Context, key string, dst any, ttlSec int, fill func(context.Context) (any, error)) error {
	if ok, err := c.Get(ctx, key, dst); err != nil || ok {
		return err
	}
	v, err := fill(ctx)
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, v, ttlSec); err != nil {
		return err
	}
	b, _ := json.Marshal(v)
	return json.Unmarshal(b, dst)
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

// ---- image store ----

type memImages struct {
	mu      sync.Mutex
	n       int
	live    map[string]bool
	deleted []string
	// failAfter > 0 makes the nth Store call fail.
	failAfter int
}

func newMemImages() *memImages { return &memImages{live: map[string]bool{}} }

func (m *memImages) Store(ctx context.Context, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	if m.failAfter > 0 && m.n >= m.failAfter {
		return "", fmt.Errorf("image store unavailable")
	}
	url := fmt.Sprintf("https://img.test/%d", m.n)
	m.live[url] = true
	return url, nil
}

func (m *memImages) Delete(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.live, url)
	m.deleted = append(m.deleted, url)
	return nil
}

func (m *memImages) liveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// ---- misc helpers ----

func ptr[T any](v T) *T { return &v }
