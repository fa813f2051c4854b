package listing

import (
	"context"
	"strings"

	"github.com/lukman83/autovit-sync/internal/apperr"
	"github.com/lukman83/autovit-sync/internal/models"
	"github.com/rs/zerolog"
)

// Patch is a manual edit. Nil fields are left as they are.
type Patch struct {
	Status          *string   `json:"status,omitempty"`
	Title           *string   `json:"title,omitempty"`
	Subtitle        *string   `json:"subtitle,omitempty"`
	PriceValue      *float64  `json:"price_value,omitempty"`
	PriceCurrency   *string   `json:"price_currency,omitempty"`
	PriceOldValue   *float64  `json:"price_old_value,omitempty"`
	PriceNegotiable *bool     `json:"price_negotiable,omitempty"`
	MileageKm       *int64    `json:"mileage_km,omitempty"`
	Year            *int64    `json:"year,omitempty"`
	EngineCapacity  *int64    `json:"engine_capacity_cc,omitempty"`
	EnginePower     *int64    `json:"engine_power_hp,omitempty"`
	FuelType        *string   `json:"fuel_type,omitempty"`
	Gearbox         *string   `json:"gearbox,omitempty"`
	Transmission    *string   `json:"transmission,omitempty"`
	BodyType        *string   `json:"body_type,omitempty"`
	Color           *string   `json:"color,omitempty"`
	Description     *string   `json:"description,omitempty"`
	Images          *[]string `json:"images,omitempty"`
	LocationLabel   *string   `json:"location_label,omitempty"`
}

// Editor applies manual changes to stored listings.
type Editor struct {
	store Store
}

func NewEditor(s Store) *Editor {
	return &Editor{store: s}
}

// UpdateStatus publishes, drafts or archives a listing.
func (e *Editor) UpdateStatus(ctx context.Context, id, status string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	st, err := parseStatus(status)
	if err != nil {
		return err
	}
	if err := e.store.UpdateStatus(ctx, id, st); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Str("id", id).Str("status", string(st)).Msg("listing status updated")
	return nil
}

// UpdateFields applies p and returns the updated listing. Every changed
// column is locked against imports that respect locks.
func (e *Editor) UpdateFields(ctx context.Context, id string, p Patch) (*models.Listing, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	l, err := e.store.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}

	changed, err := apply(l, p)
	if err != nil {
		return nil, err
	}
	if len(changed) == 0 {
		return l, nil
	}
	if err := e.store.SaveEdit(ctx, l, changed); err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Str("id", id).Strs("fields", changed).Msg("listing edited")
	return l, nil
}

func apply(l *models.Listing, p Patch) ([]string, error) {
	var changed []string
	set := func(col string) { changed = append(changed, col) }

	if p.Status != nil {
		st, err := parseStatus(*p.Status)
		if err != nil {
			return nil, err
		}
		l.Status = st
		set("status")
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return nil, apperr.New(apperr.KindValidation, "Titlul este obligatoriu")
		}
		l.Title = title
		set("title")
	}
	if p.PriceValue != nil {
		if *p.PriceValue < 0 {
			return nil, apperr.New(apperr.KindValidation, "Prețul nu poate fi negativ")
		}
		l.PriceValue = *p.PriceValue
		set("price_value")
	}
	if p.PriceCurrency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*p.PriceCurrency))
		if currency == "" {
			return nil, apperr.New(apperr.KindValidation, "Moneda este obligatorie")
		}
		l.PriceCurrency = currency
		set("price_currency")
	}
	if p.PriceNegotiable != nil {
		l.PriceNegotiable = *p.PriceNegotiable
		set("price_negotiable")
	}
	if p.Images != nil {
		var images []models.Image
		for _, u := range *p.Images {
			if u = strings.TrimSpace(u); u != "" {
				images = append(images, models.Image{URL: u})
			}
		}
		l.Images = images
		l.MainImage = nil
		if len(images) > 0 {
			l.MainImage = &images[0].URL
		}
		set("images")
		set("main_image")
	}

	optional := []struct {
		col string
		src *string
		dst **string
	}{
		{"subtitle", p.Subtitle, &l.Subtitle},
		{"fuel_type", p.FuelType, &l.FuelType},
		{"gearbox", p.Gearbox, &l.Gearbox},
		{"transmission", p.Transmission, &l.Transmission},
		{"body_type", p.BodyType, &l.BodyType},
		{"color", p.Color, &l.Color},
		{"description", p.Description, &l.Description},
		{"location_label", p.LocationLabel, &l.LocationLabel},
	}
	for _, f := range optional {
		if f.src == nil {
			continue
		}
		// an empty string clears the field
		*f.dst = nil
		if v := strings.TrimSpace(*f.src); v != "" {
			*f.dst = &v
		}
		set(f.col)
	}

	numbers := []struct {
		col string
		src *int64
		dst **int64
	}{
		{"mileage_km", p.MileageKm, &l.MileageKm},
		{"year", p.Year, &l.Year},
		{"engine_capacity_cc", p.EngineCapacity, &l.EngineCapacityCC},
		{"engine_power_hp", p.EnginePower, &l.EnginePowerHP},
	}
	for _, f := range numbers {
		if f.src == nil {
			continue
		}
		if *f.src < 0 {
			return nil, apperr.New(apperr.KindValidation, "Valorile numerice nu pot fi negative")
		}
		v := *f.src
		*f.dst = &v
		set(f.col)
	}
	if p.PriceOldValue != nil {
		v := *p.PriceOldValue
		l.PriceOldValue = &v
		set("price_old_value")
	}
	return changed, nil
}
