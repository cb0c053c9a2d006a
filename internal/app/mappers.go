package app

import "github.com/Mr-fuaaaadh/hostelmate/internal/domain"

// Payload-to-row mapping. Defaults applied here, never in storage: hostel
// type falls back to mixed, rules and rooms default to active/available.

func hostelFromPayload(ownerID int64, p domain.ProviderPayload) domain.Hostel {
	ht := p.HostelType
	if ht == "" {
		ht = domain.HostelTypeMixed
	}
	return domain.Hostel{
		OwnerID:     ownerID,
		Name:        p.Name,
		Description: p.Description,
		Address:     p.Address,
		City:        p.City,
		State:       p.State,
		Pincode:     p.Pincode,
		HostelType:  ht,
		Lat:         p.Lat,
		Lon:         p.Lon,
		IsActive:    true,
	}
}

func homeFromPayload(ownerID int64, p domain.ProviderPayload) domain.Home {
	return domain.Home{
		OwnerID:     ownerID,
		Name:        p.Name,
		Description: p.Description,
		Address:     p.Address,
		City:        p.City,
		State:       p.State,
		Pincode:     p.Pincode,
		Lat:         p.Lat,
		Lon:         p.Lon,
	}
}

func rulesFromPayload(in []domain.RulePayload) []domain.Rule {
	out := make([]domain.Rule, 0, len(in))
	for _, r := range in {
		rt := r.RuleType
		if rt == "" {
			rt = domain.RuleGeneral
		}
		active := true
		if r.IsActive != nil {
			active = *r.IsActive
		}
		out = append(out, domain.Rule{
			Title:       r.Title,
			Description: r.Description,
			RuleType:    rt,
			IsActive:    active,
		})
	}
	return out
}

func roomFromPayload(hostelID int64, p domain.RoomPayload) domain.Room {
	available := true
	if p.IsAvailable != nil {
		available = *p.IsAvailable
	}
	return domain.Room{
		HostelID:     hostelID,
		RoomNumber:   p.RoomNumber,
		RoomType:     p.RoomType,
		IsAvailable:  available,
		Capacity:     p.Capacity,
		DailyPrice:   p.DailyPrice,
		MonthlyPrice: p.MonthlyPrice,
		Description:  p.Description,
	}
}

func menuFromPayload(p domain.MenuEntryPayload) domain.MenuEntry {
	return domain.MenuEntry{
		Day:                 p.Day,
		VegBreakfast:        p.VegBreakfast,
		VegBreakfastSide:    p.VegBreakfastSide,
		VegLunch:            p.VegLunch,
		VegLunchSide:        p.VegLunchSide,
		VegDinner:           p.VegDinner,
		VegDinnerSide:       p.VegDinnerSide,
		NonVegBreakfast:     p.NonVegBreakfast,
		NonVegBreakfastSide: p.NonVegBreakfastSide,
		NonVegLunch:         p.NonVegLunch,
		NonVegLunchSide:     p.NonVegLunchSide,
		NonVegDinner:        p.NonVegDinner,
		NonVegDinnerSide:    p.NonVegDinnerSide,
	}
}

func plansFromPayload(in []domain.MealPlanPayload) []domain.MealPlan {
	out := make([]domain.MealPlan, 0, len(in))
	for _, p := range in {
		features := p.Features
		if features == nil {
			features = []string{}
		}
		out = append(out, domain.MealPlan{
			PlanID:   p.PlanID,
			Name:     p.Name,
			Price:    p.Price,
			Meals:    p.Meals,
			Features: features,
		})
	}
	return out
}

func areasFromPayload(in []domain.DeliveryAreaPayload) []domain.DeliveryArea {
	out := make([]domain.DeliveryArea, 0, len(in))
	for _, a := range in {
		out = append(out, domain.DeliveryArea{AreaName: a.AreaName})
	}
	return out
}

func featuresFromPayload(in []domain.FeaturePayload) []domain.Feature {
	out := make([]domain.Feature, 0, len(in))
	for _, f := range in {
		out = append(out, domain.Feature{Icon: f.Icon, Title: f.Title, Description: f.Description})
	}
	return out
}
