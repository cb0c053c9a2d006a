package domain

// ProviderPayload is the single write request describing a provider root
// plus its full associated graph. Collection fields are pointers so a
// replace can tell "absent, leave untouched" apart from "present and empty,
// delete everything". The owner is never part of the payload; it is always
// injected server-side from the authenticated caller.
type ProviderPayload struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	Pincode     string   `json:"pincode"`
	HostelType  string   `json:"hostel_type,omitempty"`
	Lat         *float64 `json:"latitude,omitempty"`
	Lon         *float64 `json:"longitude,omitempty"`

	FacilityIDs *[]int64            `json:"facility_ids,omitempty"`
	Rules       *[]RulePayload      `json:"rules,omitempty"`
	Rooms       *[]RoomPayload      `json:"rooms,omitempty"`
	Menu        *[]MenuEntryPayload `json:"menu,omitempty"`
	Images      *[]ImagePayload     `json:"images,omitempty"`
}

type RulePayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	RuleType    string `json:"rule_type"`
	IsActive    *bool  `json:"is_active,omitempty"` // default true
}

type RoomPayload struct {
	RoomNumber   string  `json:"room_number"`
	RoomType     string  `json:"room_type"`
	Capacity     int     `json:"capacity"`
	DailyPrice   float64 `json:"daily_price"`
	MonthlyPrice float64 `json:"monthly_price"`
	Description  string  `json:"description"`
	IsAvailable  *bool   `json:"is_available,omitempty"` // default true
	FacilityIDs  []int64 `json:"facility_ids,omitempty"`
}

// ImagePayload carries the raw bytes; encoding/json reads []byte fields as
// base64 strings. The orchestrator stores the bytes through the image
// service and persists the returned URL.
type ImagePayload struct {
	Data     []byte `json:"data"`
	Caption  string `json:"caption,omitempty"`
	IsCover  bool   `json:"is_cover,omitempty"`
	Position int    `json:"position,omitempty"`
}

type MenuEntryPayload struct {
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

	BreakfastImage []byte `json:"breakfast_image,omitempty"`
	LunchImage     []byte `json:"lunch_image,omitempty"`
	DinnerImage    []byte `json:"dinner_image,omitempty"`
}

type MealPlanPayload struct {
	PlanID   string   `json:"plan_id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Meals    *int     `json:"meals,omitempty"`
	Features []string `json:"features,omitempty"`
}

type DeliveryAreaPayload struct {
	AreaName string `json:"area_name"`
}

type FeaturePayload struct {
	Icon        string `json:"icon,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}
