package domain

// Room types accepted for hostel rooms.
const (
	RoomTypeSingle = "single"
	RoomTypeDouble = "double"
	RoomTypeTriple = "triple"
	RoomTypeDorm   = "dorm"
)

func ValidRoomType(s string) bool {
	switch s {
	case RoomTypeSingle, RoomTypeDouble, RoomTypeTriple, RoomTypeDorm:
		return true
	}
	return false
}

// Room is a child of a hostel only. (hostel_id, room_number) is unique.
type Room struct {
	ID           int64   `json:"id"`
	HostelID     int64   `json:"hostel_id"`
	RoomNumber   string  `json:"room_number"`
	RoomType     string  `json:"room_type"`
	IsAvailable  bool    `json:"is_available"`
	Capacity     int     `json:"capacity"`
	DailyPrice   float64 `json:"daily_price"`
	MonthlyPrice float64 `json:"monthly_price"`
	Description  string  `json:"description"`
}

// Facility is a shared catalog entry ("WiFi") referenced by join rows.
type Facility struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Rule categories for hostel policy items.
const (
	RuleGeneral  = "general"
	RuleSafety   = "safety"
	RuleTimings  = "timings"
	RuleBehavior = "behavior"
)

func ValidRuleType(s string) bool {
	switch s {
	case RuleGeneral, RuleSafety, RuleTimings, RuleBehavior:
		return true
	}
	return false
}

type Rule struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	RuleType    string `json:"rule_type"`
	IsActive    bool   `json:"is_active"`
}

// Image is a stored picture owned by a hostel or a room. For a fixed parent
// at most one row has IsCover set; the cover enforcer keeps that true
// transactionally on every write.
type Image struct {
	ID       int64  `json:"id"`
	URL      string `json:"url"`
	Caption  string `json:"caption"`
	IsCover  bool   `json:"is_cover"`
	Position int    `json:"position"`
}
