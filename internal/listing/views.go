package listing

import (
	"cmp"
	"math"
	"slices"

	"github.com/lukman83/autovit-sync/internal/autovit"
	"github.com/lukman83/autovit-sync/internal/models"
)

// ToSummary projects a listing onto a catalog card.
func ToSummary(l *models.Listing) models.Summary {
	badges := l.Badges
	if badges == nil {
		badges = []models.Badge{}
	}
	return models.Summary{
		ID:            l.ID,
		AutovitID:     l.AutovitID,
		Title:         l.Title,
		Slug:          l.Slug,
		PriceValue:    l.PriceValue,
		PriceCurrency: l.PriceCurrency,
		Year:          l.Year,
		MileageKm:     l.MileageKm,
		FuelType:      l.FuelType,
		Gearbox:       l.Gearbox,
		MainImage:     l.MainImage,
		Badges:        badges,
		Location:      l.LocationLabel,
	}
}

// ToPayload projects a listing onto the detail page view.
func ToPayload(l *models.Listing) models.Payload {
	images := make([]models.ViewImage, len(l.Images))
	for i, img := range l.Images {
		images[i] = models.ViewImage{URL: img.URL, IsPrimary: i == 0}
	}
	groups := l.FeatureGroups
	if groups == nil {
		groups = []models.FeatureGroup{}
	}
	var description string
	if l.Description != nil {
		description = *l.Description
	}

	return models.Payload{
		ID:        l.ID,
		AutovitID: l.AutovitID,
		Slug:      l.Slug,
		Status:    l.Status,
		Title:     l.Title,
		Subtitle:  l.Subtitle,
		Price: models.Price{
			Value:      l.PriceValue,
			Currency:   l.PriceCurrency,
			OldValue:   l.PriceOldValue,
			Negotiable: l.PriceNegotiable,
			Labels:     l.PriceLabels,
		},
		MileageKm:           l.MileageKm,
		RegistrationYear:    l.Year,
		EngineCapacityCC:    l.EngineCapacityCC,
		EnginePowerHP:       l.EnginePowerHP,
		FuelType:            l.FuelType,
		Gearbox:             l.Gearbox,
		Transmission:        l.Transmission,
		BodyType:            l.BodyType,
		Color:               l.Color,
		EmissionClass:       l.EmissionClass,
		CO2Emissions:        l.CO2Emissions,
		Consumption:         l.Consumption,
		VIN:                 l.VIN,
		FirstRegistration:   l.FirstRegistration,
		TechnicalInspection: l.TechnicalInspection,
		LastService:         l.LastService,
		MainFeatures:        l.MainFeatures,
		Badges:              l.Badges,
		HighlightTags:       l.HighlightTags,
		Images:              images,
		Description:         l.Description,
		DescriptionBlocks:   ParseDescription(description),
		Details:             l.Details,
		FeatureGroups:       groups,
		TechnicalSpecs:      sortSpecs(l.TechnicalSpecs),
		Seller:              sellerView(l.Seller),
		FinancingOptions:    financingView(l.FinancingOptions),
		CreatedAt:           l.CreatedAt,
		UpdatedAt:           l.UpdatedAt,
	}
}

// sortSpecs orders specs by their order value; specs without one keep their
// relative position after the rest.
func sortSpecs(specs []models.TechnicalSpec) []models.TechnicalSpec {
	if specs == nil {
		return nil
	}
	out := slices.Clone(specs)
	slices.SortStableFunc(out, func(a, b models.TechnicalSpec) int {
		return cmp.Compare(orderKey(a.Order), orderKey(b.Order))
	})
	return out
}

func orderKey(o *float64) float64 {
	if o == nil {
		return math.Inf(1)
	}
	return *o
}

func sellerView(raw []byte) *models.Seller {
	n, err := autovit.ParseNode(raw)
	if err != nil || !n.IsObject() {
		return nil
	}

	text := func(keys ...string) string {
		s, _ := n.Get(keys...).Text()
		return s
	}
	s := &models.Seller{
		ID:      text("id"),
		Name:    text("name"),
		Type:    text("type"),
		Email:   n.Get("email").TextPtr(),
		Website: n.Get("website").TextPtr(),
		Address: n.Get("location", "address").TextPtr(),
		City:    n.Get("location", "city").TextPtr(),
		County:  n.Get("location", "region").TextPtr(),
	}
	if s.Type == "" {
		s.Type = "PRIVATE"
	}
	for _, p := range n.Get("phoneNumbers").Array() {
		if v, ok := p.Text(); ok {
			s.PhoneNumbers = append(s.PhoneNumbers, v)
		}
	}
	for _, b := range n.Get("featuresBadges").Array() {
		s.Badges = append(s.Badges, models.Badge{
			Code:  b.Get("code").TextPtr(),
			Label: b.Get("label").TextPtr(),
		})
	}
	for _, h := range n.Get("workingHours").Array() {
		day, _ := h.Get("day").Float()
		open, _ := h.Get("openAt").Text()
		closing, _ := h.Get("closeAt").Text()
		s.WorkingHours = append(s.WorkingHours, models.WorkingHours{
			Day:     int(day),
			OpenAt:  open,
			CloseAt: closing,
			IsOpen:  h.Get("isOpen").Bool(),
		})
	}
	if loc := n.Get("location"); loc.Exists() {
		s.Location = &models.SellerLocation{
			Latitude:     loc.Get("map", "latitude").FloatPtr(),
			Longitude:    loc.Get("map", "longitude").FloatPtr(),
			ShortAddress: loc.Get("shortAddress").TextPtr(),
		}
	}
	return s
}

// financingView reads financing offers written with either camelCase or
// snake_case keys.
func financingView(raw []byte) []models.FinancingOption {
	n, err := autovit.ParseNode(raw)
	if err != nil {
		return nil
	}
	items := n.Array()
	if items == nil {
		return nil
	}
	either := func(o autovit.Node, camel, snake string) autovit.Node {
		if v := o.Get(camel); v.Exists() {
			return v
		}
		return o.Get(snake)
	}

	out := make([]models.FinancingOption, 0, len(items))
	for _, o := range items {
		partner, _ := either(o, "partnerName", "partner_name").Text()
		monthly, _ := either(o, "monthlyPayment", "monthly_payment").Float()
		currency, ok := o.Get("currency").Text()
		if !ok {
			currency = "EUR"
		}
		out = append(out, models.FinancingOption{
			PartnerName:    partner,
			MonthlyPayment: monthly,
			AdvancePayment: either(o, "advancePayment", "advance_payment").FloatPtr(),
			Currency:       currency,
			LoanTermMonths: either(o, "loanTermMonths", "loan_term_months").FloatPtr(),
			APR:            o.Get("apr").FloatPtr(),
			Description:    o.Get("description").TextPtr(),
		})
	}
	return out
}
