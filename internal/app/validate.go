package app

import (
	"fmt"

	"github.com/Mr-fuaaaadh/hostelmate/internal/domain"
)

// ValidatePayload checks the whole write request and reports every violated
// field at once. `create` tightens the rules: root scalars are mandatory and
// absent collections are treated as empty rather than "leave untouched".
func ValidatePayload(kind domain.ProviderKind, p domain.ProviderPayload, create bool) error {
	v := &domain.ValidationError{}

	if create {
		requireString(v, "name", p.Name)
		requireString(v, "address", p.Address)
		requireString(v, "city", p.City)
		requireString(v, "state", p.State)
		requireString(v, "pincode", p.Pincode)
	}
	if len(p.Pincode) > 10 {
		v.Add("pincode", "must be at most 10 characters")
	}
	if (p.Lat == nil) != (p.Lon == nil) {
		v.Add("latitude", "latitude and longitude must be given together")
	}

	switch kind {
	case domain.KindHostel:
		if p.HostelType != "" && !domain.ValidHostelType(p.HostelType) {
			v.Add("hostel_type", "must be one of gents, ladies, mixed")
		}
	case domain.KindHome:
		if p.HostelType != "" {
			v.Add("hostel_type", "not allowed for a home")
		}
		if p.Rooms != nil {
			v.Add("rooms", "not allowed for a home")
		}
		if p.Rules != nil {
			v.Add("rules", "not allowed for a home")
		}
		if p.FacilityIDs != nil {
			v.Add("facility_ids", "not allowed for a home")
		}
	}

	if p.FacilityIDs != nil {
		for i, id := range *p.FacilityIDs {
			if id <= 0 {
				v.Add(fmt.Sprintf("facility_ids[%d]", i), "must be a positive catalog id")
			}
		}
	}
	if p.Rules != nil {
		validateRules(v, *p.Rules)
	}
	if p.Rooms != nil {
		validateRooms(v, *p.Rooms)
	}
	if p.Menu != nil {
		validateMenu(v, *p.Menu)
	}
	if p.Images != nil {
		for i, img := range *p.Images {
			if len(img.Data) == 0 {
				v.Add(fmt.Sprintf("images[%d].data", i), "must not be empty")
			}
		}
	}

	return v.OrNil()
}

func validateRules(v *domain.ValidationError, rules []domain.RulePayload) {
	for i, r := range rules {
		if r.Title == "" {
			v.Add(fmt.Sprintf("rules[%d].title", i), "must not be empty")
		}
		if r.RuleType != "" && !domain.ValidRuleType(r.RuleType) {
			v.Add(fmt.Sprintf("rules[%d].rule_type", i), "must be one of general, safety, timings, behavior")
		}
	}
}

func validateRooms(v *domain.ValidationError, rooms []domain.RoomPayload) {
	seen := make(map[string]int, len(rooms))
	for i, r := range rooms {
		if r.RoomNumber == "" {
			v.Add(fmt.Sprintf("rooms[%d].room_number", i), "must not be empty")
		} else if prev, dup := seen[r.RoomNumber]; dup {
			v.Add(fmt.Sprintf("rooms[%d].room_number", i), fmt.Sprintf("duplicates rooms[%d]", prev))
		} else {
			seen[r.RoomNumber] = i
		}
		if !domain.ValidRoomType(r.RoomType) {
			v.Add(fmt.Sprintf("rooms[%d].room_type", i), "must be one of single, double, triple, dorm")
		}
		if r.Capacity <= 0 {
			v.Add(fmt.Sprintf("rooms[%d].capacity", i), "must be greater than zero")
		}
		if r.DailyPrice < 0 {
			v.Add(fmt.Sprintf("rooms[%d].daily_price", i), "must not be negative")
		}
		if r.MonthlyPrice < 0 {
			v.Add(fmt.Sprintf("rooms[%d].monthly_price", i), "must not be negative")
		}
		for j, fid := range r.FacilityIDs {
			if fid <= 0 {
				v.Add(fmt.Sprintf("rooms[%d].facility_ids[%d]", i, j), "must be a positive catalog id")
			}
		}
	}
}

func validateMenu(v *domain.ValidationError, entries []domain.MenuEntryPayload) {
	seen := make(map[string]int, len(entries))
	for i, m := range entries {
		if !domain.ValidMenuDay(m.Day) {
			v.Add(fmt.Sprintf("menu[%d].day", i), "must be a weekday name, lowercase")
			continue
		}
		if prev, dup := seen[m.Day]; dup {
			v.Add(fmt.Sprintf("menu[%d].day", i), fmt.Sprintf("duplicates menu[%d]", prev))
		} else {
			seen[m.Day] = i
		}
	}
}

// ValidateMenu covers the standalone weekly-menu replace operation.
func ValidateMenu(entries []domain.MenuEntryPayload) error {
	v := &domain.ValidationError{}
	validateMenu(v, entries)
	return v.OrNil()
}

// ValidateMealPlans covers the standalone meal-plan replace operation.
func ValidateMealPlans(plans []domain.MealPlanPayload) error {
	v := &domain.ValidationError{}
	for i, p := range plans {
		if p.Name == "" {
			v.Add(fmt.Sprintf("meal_plans[%d].name", i), "must not be empty")
		}
		if p.Price < 0 {
			v.Add(fmt.Sprintf("meal_plans[%d].price", i), "must not be negative")
		}
		if p.Meals != nil && *p.Meals <= 0 {
			v.Add(fmt.Sprintf("meal_plans[%d].meals", i), "must be greater than zero")
		}
	}
	return v.OrNil()
}

// ValidateDeliveryAreas covers the standalone delivery-area replace operation.
func ValidateDeliveryAreas(areas []domain.DeliveryAreaPayload) error {
	v := &domain.ValidationError{}
	for i, a := range areas {
		if a.AreaName == "" {
			v.Add(fmt.Sprintf("delivery_areas[%d].area_name", i), "must not be empty")
		}
	}
	return v.OrNil()
}

// ValidateFeatures covers the standalone feature replace operation.
func ValidateFeatures(features []domain.FeaturePayload) error {
	v := &domain.ValidationError{}
	for i, f := range features {
		if f.Title == "" {
			v.Add(fmt.Sprintf("features[%d].title", i), "must not be empty")
		}
	}
	return v.OrNil()
}

// ValidateImages covers the standalone append-images operations.
func ValidateImages(images []domain.ImagePayload) error {
	v := &domain.ValidationError{}
	for i, img := range images {
		if len(img.Data) == 0 {
			v.Add(fmt.Sprintf("images[%d].data", i), "must not be empty")
		}
	}
	return v.OrNil()
}

func requireString(v *domain.ValidationError, field, val string) {
	if val == "" {
		v.Add(field, "must not be empty")
	}
}
