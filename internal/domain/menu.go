package domain

// Days accepted for menu entries; a provider has at most one entry per day.
var MenuDays = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

func ValidMenuDay(s string) bool {
	for _, d := range MenuDays {
		if s == d {
			return true
		}
	}
	return false
}

// MenuEntry attaches to either provider kind and is unique per
// (provider_kind, provider_id, day). All dish fields are optional.
type MenuEntry struct {
	ID  int64  `json:"id"`
	Day string `json:"day"`

	VegBreakfast        string `json:"veg_breakfast,omitempty"`
	VegBreakfastSide    string `json:"veg_breakfast_accompaniment,omitempty"`
	VegLunch            string `json:"veg_lunch,omitempty"`
	VegLunchSide        string `json:"veg_lunch_accompaniment,omitempty"`
	VegDinner           string `json:"veg_dinner,omitempty"`
	VegDinnerSide       string `json:"veg_dinner_accompaniment,omitempty"`
	NonVegBreakfast     string `json:"nonveg_breakfast,omitempty"`
	NonVegBreakfastSide string `json:"nonveg_breakfast_accompaniment,omitempty"`
	NonVegLunch         string `json:"nonveg_lunch,omitempty"`
	NonVegLunchSide     string `json:"nonveg_lunch_accompaniment,omitempty"`
	NonVegDinner        string `json:"nonveg_dinner,omitempty"`
	NonVegDinnerSide    string `json:"nonveg_dinner_accompaniment,omitempty"`

	BreakfastImageURL string `json:"breakfast_image,omitempty"`
	LunchImageURL     string `json:"lunch_image,omitempty"`
	DinnerImageURL    string `json:"dinner_image,omitempty"`
}

// MealPlan is a subscription plan offered by either provider kind.
type MealPlan struct {
	ID       int64    `json:"id"`
	PlanID   string   `json:"plan_id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Meals    *int     `json:"meals,omitempty"`
	Features []string `json:"features"`
}

// DeliveryArea is a named coverage area for meal delivery.
type DeliveryArea struct {
	ID       int64  `json:"id"`
	AreaName string `json:"area_name"`
}

// Feature is a marketing highlight shown on a provider's listing.
type Feature struct {
	ID          int64  `json:"id"`
	Icon        string `json:"icon,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}
