package domain

import (
	"fmt"
	"time"
)

// ProviderKind discriminates the two concrete listing types. It is a closed
// enumeration: anything else is a configuration defect, not user input.
type ProviderKind string

const (
	KindHostel ProviderKind = "hostel"
	KindHome   ProviderKind = "home"
)

func (k ProviderKind) Valid() bool {
	return k == KindHostel || k == KindHome
}

func (k ProviderKind) String() string { return string(k) }

// ParseKind maps a wire tag to a ProviderKind or fails with ErrUnknownKind.
func ParseKind(s string) (ProviderKind, error) {
	switch ProviderKind(s) {
	case KindHostel:
		return KindHostel, nil
	case KindHome:
		return KindHome, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// ProviderRef is the canonical (kind, id) identity of a provider row.
// Children that attach polymorphically carry exactly this pair.
type ProviderRef struct {
	Kind ProviderKind
	ID   int64
}

func (r ProviderRef) ListKey() string   { return fmt.Sprintf("%s_list", r.Kind) }
func (r ProviderRef) DetailKey() string { return fmt.Sprintf("%s_detail_%d", r.Kind, r.ID) }

// Hostel types mirror the catalog the platform accepts.
const (
	HostelTypeGents  = "gents"
	HostelTypeLadies = "ladies"
	HostelTypeMixed  = "mixed"
)

func ValidHostelType(s string) bool {
	return s == HostelTypeGents || s == HostelTypeLadies || s == HostelTypeMixed
}

type Hostel struct {
	ID          int64    `json:"id"`
	OwnerID     int64    `json:"owner_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	Pincode     string   `json:"pincode"`
	HostelType  string   `json:"hostel_type"`
	Lat         *float64 `json:"lat,omitempty"`
	Lon         *float64 `json:"lon,omitempty"`
	IsVerified  bool     `json:"is_verified"`
	IsActive    bool     `json:"is_active"`

	// Derived counters, written only by the room-count maintainer.
	TotalRooms     int `json:"total_rooms_count"`
	AvailableRooms int `json:"available_rooms_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h Hostel) Ref() ProviderRef { return ProviderRef{Kind: KindHostel, ID: h.ID} }

type Home struct {
	ID          int64    `json:"id"`
	OwnerID     int64    `json:"owner_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	Pincode     string   `json:"pincode"`
	Lat         *float64 `json:"lat,omitempty"`
	Lon         *float64 `json:"lon,omitempty"`
	IsVerified  bool     `json:"is_verified"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h Home) Ref() ProviderRef { return ProviderRef{Kind: KindHome, ID: h.ID} }

// Ref canonicalizes a concrete provider row to its (kind, id) pair. Walking
// from an association back to its owner always goes through here.
func Ref(v any) (ProviderRef, error) {
	switch p := v.(type) {
	case Hostel:
		return p.Ref(), nil
	case *Hostel:
		return p.Ref(), nil
	case Home:
		return p.Ref(), nil
	case *Home:
		return p.Ref(), nil
	}
	return ProviderRef{}, fmt.Errorf("%w: %T is not a provider", ErrUnknownKind, v)
}
