package domain

import "fmt"

// Read models. These are what the cache stores, so every field must survive
// a JSON round trip.

type RoomView struct {
	Room
	Facilities []Facility `json:"facilities"`
	Images     []Image    `json:"images"`
}

type HostelView struct {
	Hostel
	Facilities    []Facility     `json:"facilities"`
	Rules         []Rule         `json:"rules"`
	Rooms         []RoomView     `json:"rooms"`
	Images        []Image        `json:"images"`
	Menu          []MenuEntry    `json:"menu"`
	MealPlans     []MealPlan     `json:"meal_plans"`
	DeliveryAreas []DeliveryArea `json:"delivery_areas"`
	Features      []Feature      `json:"features"`
}

// AvailabilitySummary renders "3/5 rooms available" for listings.
func (v HostelView) AvailabilitySummary() string {
	return fmt.Sprintf("%d/%d rooms available", v.AvailableRooms, v.TotalRooms)
}

type HomeView struct {
	Home
	Images        []Image        `json:"images"`
	Menu          []MenuEntry    `json:"menu"`
	MealPlans     []MealPlan     `json:"meal_plans"`
	DeliveryAreas []DeliveryArea `json:"delivery_areas"`
	Features      []Feature      `json:"features"`
}

// ProviderSummary is one row of a kind-level list.
type ProviderSummary struct {
	ID             int64   `json:"id"`
	Kind           string  `json:"kind"`
	Name           string  `json:"name"`
	City           string  `json:"city"`
	State          string  `json:"state"`
	IsVerified     bool    `json:"is_verified"`
	CoverImageURL  *string `json:"cover_image,omitempty"`
	TotalRooms     *int    `json:"total_rooms,omitempty"`
	AvailableRooms *int    `json:"available_rooms,omitempty"`
}

// Suggestion is one unified-search hit across both provider kinds.
type Suggestion struct {
	ID          int64  `json:"id"`
	Kind        string `json:"type"`
	Name        string `json:"name"`
	City        string `json:"city"`
	Description string `json:"description"`
}
