package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status is the publication state of a listing.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusDraft    Status = "DRAFT"
	StatusArchived Status = "ARCHIVED"
)

// ParseStatus accepts any casing of a known status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusActive, StatusDraft, StatusArchived:
		return st, nil
	}
	return "", fmt.Errorf("unknown listing status %q", s)
}

type Image struct {
	URL string `json:"url"`
}

type Feature struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Badge struct {
	Code  *string `json:"code"`
	Label *string `json:"label"`
}

type FeatureGroup struct {
	Key   *string  `json:"key"`
	Label *string  `json:"label"`
	Items []string `json:"items"`
}

type Detail struct {
	Key         *string  `json:"key"`
	Label       *string  `json:"label"`
	Value       *string  `json:"value"`
	Description *string  `json:"description"`
	Group       string   `json:"group"`
	Href        *string  `json:"href"`
	Order       *float64 `json:"order"`
}

type TechnicalSpec struct {
	Label    *string  `json:"label"`
	Value    string   `json:"value"`
	Category string   `json:"category"`
	Order    *float64 `json:"order"`
}

type Consumption struct {
	Urban      *string `json:"urban"`
	ExtraUrban *string `json:"extraUrban"`
	Combined   *string `json:"combined"`
}

// UnmarshalJSON also accepts the lower-case extraurban key of older rows.
func (c *Consumption) UnmarshalJSON(data []byte) error {
	var v struct {
		Urban      *string `json:"urban"`
		ExtraUrban *string `json:"extraUrban"`
		Legacy     *string `json:"extraurban"`
		Combined   *string `json:"combined"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	c.Urban, c.ExtraUrban, c.Combined = v.Urban, v.ExtraUrban, v.Combined
	if c.ExtraUrban == nil {
		c.ExtraUrban = v.Legacy
	}
	return nil
}

// Listing is one persisted vehicle listing, unique by AutovitID.
// Nil pointers and nil slices are stored as NULL.
type Listing struct {
	ID        string  `json:"id"`
	AutovitID string  `json:"autovit_id"`
	Slug      *string `json:"slug"`
	Status    Status  `json:"status"`

	Title    string  `json:"title"`
	Subtitle *string `json:"subtitle"`

	PriceValue      float64  `json:"price_value"`
	PriceCurrency   string   `json:"price_currency"`
	PriceOldValue   *float64 `json:"price_old_value"`
	PriceNegotiable bool     `json:"price_negotiable"`
	PriceLabels     []string `json:"price_labels"`

	MileageKm        *int64       `json:"mileage_km"`
	Year             *int64       `json:"year"`
	EngineCapacityCC *int64       `json:"engine_capacity_cc"`
	EnginePowerHP    *int64       `json:"engine_power_hp"`
	FuelType         *string      `json:"fuel_type"`
	Gearbox          *string      `json:"gearbox"`
	Transmission     *string      `json:"transmission"`
	BodyType         *string      `json:"body_type"`
	Color            *string      `json:"color"`
	EmissionClass    *string      `json:"emission_class"`
	CO2Emissions     *string      `json:"co2_emissions"`
	Consumption      *Consumption `json:"consumption"`

	VIN                 *string `json:"vin"`
	FirstRegistration   *string `json:"first_registration"`
	TechnicalInspection *string `json:"technical_inspection"`
	LastService         *string `json:"last_service"`

	MainFeatures   []Feature       `json:"main_features"`
	Badges         []Badge         `json:"badges"`
	HighlightTags  []string        `json:"highlight_tags"`
	Images         []Image         `json:"images"`
	MainImage      *string         `json:"main_image"`
	LocationLabel  *string         `json:"location_label"`
	Description    *string         `json:"description"`
	Details        []Detail        `json:"details"`
	FeatureGroups  []FeatureGroup  `json:"feature_groups"`
	TechnicalSpecs []TechnicalSpec `json:"technical_specs"`

	Seller           json.RawMessage `json:"seller"`
	FinancingOptions json.RawMessage `json:"financing_options"`
	Payload          json.RawMessage `json:"payload"`

	// LockedFields names columns changed by a manual edit. Imports running
	// with the respect-locks policy leave these columns untouched.
	LockedFields []string `json:"locked_fields"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
