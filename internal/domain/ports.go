package domain

import "context"

// Store is the read side plus the transaction entry point. All writes go
// through InTx; the closure either commits as a whole or leaves nothing
// behind.
type Store interface {
	InTx(ctx context.Context, fn func(tx TxStore) error) error

	// Read paths
	GetHostel(ctx context.Context, id int64) (HostelView, error)
	ListHostels(ctx context.Context) ([]ProviderSummary, error)
	GetHome(ctx context.Context, id int64) (HomeView, error)
	ListHomes(ctx context.Context) ([]ProviderSummary, error)
	ListFacilities(ctx context.Context) ([]Facility, error)
	SearchProviders(ctx context.Context, q string, perKind int) ([]Suggestion, error)
	ProviderExists(ctx context.Context, ref ProviderRef) (bool, error)
	ListHostelIDs(ctx context.Context) ([]int64, error)
}

// TxStore is the write surface visible inside one transaction. Delete
// methods that remove stored images report the orphaned URLs so the caller
// can clean up external storage after commit.
type TxStore interface {
	// LockProvider takes the provider row lock (SELECT ... FOR UPDATE) and
	// returns the owner id, or ErrNotFound. Concurrent replaces of the same
	// provider serialize here.
	LockProvider(ctx context.Context, ref ProviderRef) (ownerID int64, err error)

	InsertHostel(ctx context.Context, h Hostel) (int64, error)
	UpdateHostel(ctx context.Context, h Hostel) error
	DeleteHostel(ctx context.Context, id int64) ([]string, error)
	InsertHome(ctx context.Context, h Home) (int64, error)
	UpdateHome(ctx context.Context, h Home) error
	DeleteHome(ctx context.Context, id int64) ([]string, error)

	ReplaceHostelFacilities(ctx context.Context, hostelID int64, facilityIDs []int64) error
	ReplaceRules(ctx context.Context, hostelID int64, rules []Rule) error

	DeleteRooms(ctx context.Context, hostelID int64) ([]string, error)
	InsertRoom(ctx context.Context, r Room) (int64, error)
	ReplaceRoomFacilities(ctx context.Context, roomID int64, facilityIDs []int64) error
	RoomHostelID(ctx context.Context, roomID int64) (int64, error)

	DeleteHostelImages(ctx context.Context, hostelID int64) ([]string, error)
	InsertHostelImage(ctx context.Context, hostelID int64, img Image) error
	ClearHostelCovers(ctx context.Context, hostelID int64) error
	InsertRoomImage(ctx context.Context, roomID int64, img Image) error
	ClearRoomCovers(ctx context.Context, roomID int64) error
	DeleteHomeImages(ctx context.Context, homeID int64) ([]string, error)
	InsertHomeImage(ctx context.Context, homeID int64, img Image) error

	// RecountRooms re-derives both room counters from the live room set.
	// Returns false when the hostel row no longer exists.
	RecountRooms(ctx context.Context, hostelID int64) (bool, error)

	// ReplaceMenu swaps the whole weekly menu and returns the stored image
	// URLs the replaced rows pointed at, so the caller can discard the
	// binaries after commit.
	ReplaceMenu(ctx context.Context, ref ProviderRef, entries []MenuEntry) ([]string, error)
	ReplaceMealPlans(ctx context.Context, ref ProviderRef, plans []MealPlan) error
	ReplaceDeliveryAreas(ctx context.Context, ref ProviderRef, areas []DeliveryArea) error
	ReplaceFeatures(ctx context.Context, ref ProviderRef, features []Feature) error
	// DeleteAssociations removes every polymorphic row pointing at ref and
	// returns the menu image URLs those rows held. The relation has no
	// native foreign key, so the cascade lives here.
	DeleteAssociations(ctx context.Context, ref ProviderRef) ([]string, error)
}

// Cache is the shared key-value view store. The database stays the source
// of truth; everything cached is disposable.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
	GetOrSet(ctx context.Context, key string, dst any, ttlSec int, fill func(context.Context) (any, error)) error
}

// ImageStore is the external binary-storage collaborator.
type ImageStore interface {
	Store(ctx context.Context, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}
