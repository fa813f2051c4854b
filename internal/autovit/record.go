package autovit

import (
	"errors"
	"strings"

	"github.com/lukman83/autovit-sync/internal/apperr"
	"github.com/lukman83/autovit-sync/internal/models"
)

const (
	defaultTitle    = "Anunț Autovit"
	defaultCurrency = "EUR"
)

// BuildOptions carries caller supplied values that override the advert.
type BuildOptions struct {
	// Status, when set, replaces the advert's own status.
	Status string
}

// BuildListing assembles the persisted record from an advert. Optional
// fields the advert does not provide are left nil.
func BuildListing(advert *Advert, opts BuildOptions) (*models.Listing, error) {
	if advert == nil || !advert.Exists() {
		return nil, errAdvertMissing
	}
	n := advert.Node
	params := NewParameters(n)

	autovitID, ok := n.Get("id").Text()
	if !ok {
		autovitID, ok = n.Get("advertId").Text()
	}
	if !ok {
		return nil, apperr.New(apperr.KindPayloadShape, "Anunțul Autovit nu are un identificator.")
	}

	status, err := resolveStatus(opts.Status, n)
	if err != nil {
		return nil, err
	}

	price, ok := n.Get("price", "value").Text()
	if !ok {
		return nil, apperr.Wrap(apperr.KindPayloadShape, "Prețul anunțului lipsește sau nu poate fi citit.", errors.New("price.value is missing"))
	}
	priceValue, ok := NormalizeNumber(price)
	if !ok {
		return nil, apperr.Wrap(apperr.KindPayloadShape, "Prețul anunțului lipsește sau nu poate fi citit.", errors.New("price.value is not numeric: "+price))
	}

	title, ok := n.Get("title").Text()
	if !ok {
		title = defaultTitle
	}
	currency, ok := n.Get("price", "currency").Text()
	if !ok {
		currency = defaultCurrency
	}

	images := NormalizeImages(n)
	badges := NormalizeBadges(n)

	return &models.Listing{
		AutovitID: autovitID,
		Slug:      n.Get("slug").TextPtr(),
		Status:    status,
		Title:     title,
		Subtitle:  n.Get("adFromAdCore", "subtitle").TextPtr(),

		PriceValue:      priceValue,
		PriceCurrency:   currency,
		PriceOldValue:   normalizeNumberPtr(n.Get("price", "oldPrice", "value").TextPtr()),
		PriceNegotiable: n.Get("price", "isNegotiable").Bool(),
		PriceLabels:     PriceLabels(n),

		MileageKm:        normalizeIntPtr(params.Value("mileage")),
		Year:             normalizeIntPtr(params.Value("year")),
		EngineCapacityCC: normalizeIntPtr(params.Value("engine_capacity")),
		EnginePowerHP:    normalizeIntPtr(params.Value("engine_power")),
		FuelType:         params.Label("fuel_type"),
		Gearbox:          params.Label("gearbox"),
		Transmission:     params.Label("transmission"),
		BodyType:         params.Label("body_type"),
		Color:            params.Label("color"),
		EmissionClass:    params.Label("emission_class"),
		CO2Emissions:     params.Label("co2_emissions"),
		Consumption:      NormalizeConsumption(params),

		VIN:                 params.Label("vin_number"),
		FirstRegistration:   params.Label("first_registration"),
		TechnicalInspection: params.Label("technical_inspection_valid_until"),
		LastService:         params.Label("service_history"),

		MainFeatures:   NormalizeMainFeatures(n, params),
		Badges:         badges,
		HighlightTags:  HighlightTags(badges),
		Images:         images,
		MainImage:      MainImage(images),
		LocationLabel:  n.Get("seller", "location", "shortAddress").TextPtr(),
		Description:    n.Get("description").TextPtr(),
		Details:        NormalizeDetails(n),
		FeatureGroups:  NormalizeFeatureGroups(n),
		TechnicalSpecs: NormalizeTechnicalSpecs(n),

		Seller:           n.Get("seller").Raw(),
		FinancingOptions: n.Get("valueAddedServices").Raw(),
		Payload:          advert.Raw,
	}, nil
}

// resolveStatus prefers the requested status, then the advert's, then ACTIVE.
// A requested status outside the enum is a caller error; an unknown advert
// status is ignored.
func resolveStatus(requested string, advert Node) (models.Status, error) {
	if strings.TrimSpace(requested) != "" {
		st, err := models.ParseStatus(requested)
		if err != nil {
			return "", apperr.Wrap(apperr.KindValidation, "Status invalid. Valori acceptate: ACTIVE, DRAFT, ARCHIVED", err)
		}
		return st, nil
	}
	if s, ok := advert.Get("status").Text(); ok {
		if st, err := models.ParseStatus(s); err == nil {
			return st, nil
		}
	}
	return models.StatusActive, nil
}
