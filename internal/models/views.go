package models

import "time"

// Summary is the catalog card projection of a listing.
type Summary struct {
	ID            string  `json:"id"`
	AutovitID     string  `json:"autovitId"`
	Title         string  `json:"title"`
	Slug          *string `json:"slug"`
	PriceValue    float64 `json:"priceValue"`
	PriceCurrency string  `json:"priceCurrency"`
	Year          *int64  `json:"year"`
	MileageKm     *int64  `json:"mileageKm"`
	FuelType      *string `json:"fuelType"`
	Gearbox       *string `json:"gearbox"`
	MainImage     *string `json:"mainImage"`
	Badges        []Badge `json:"badges"`
	Location      *string `json:"location"`
}

type Price struct {
	Value      float64  `json:"value"`
	Currency   string   `json:"currency"`
	OldValue   *float64 `json:"oldValue"`
	Negotiable bool     `json:"negotiable"`
	Labels     []string `json:"labels,omitempty"`
}

type ViewImage struct {
	URL       string `json:"url"`
	IsPrimary bool   `json:"isPrimary"`
}

type WorkingHours struct {
	Day     int    `json:"day"`
	OpenAt  string `json:"openAt"`
	CloseAt string `json:"closeAt"`
	IsOpen  bool   `json:"isOpen"`
}

type SellerLocation struct {
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	ShortAddress *string  `json:"shortAddress"`
}

type Seller struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	PhoneNumbers []string        `json:"phoneNumbers,omitempty"`
	Email        *string         `json:"email"`
	Website      *string         `json:"website"`
	Address      *string         `json:"address"`
	City         *string         `json:"city"`
	County       *string         `json:"county"`
	Badges       []Badge         `json:"badges,omitempty"`
	WorkingHours []WorkingHours  `json:"workingHours,omitempty"`
	Location     *SellerLocation `json:"location"`
}

type FinancingOption struct {
	PartnerName    string   `json:"partnerName"`
	MonthlyPayment float64  `json:"monthlyPayment"`
	AdvancePayment *float64 `json:"advancePayment"`
	Currency       string   `json:"currency"`
	LoanTermMonths *float64 `json:"loanTermMonths"`
	APR            *float64 `json:"apr"`
	Description    *string  `json:"description"`
}

type DescriptionBlock struct {
	Type    string   `json:"type"` // "paragraph" or "list"
	Content string   `json:"content,omitempty"`
	Items   []string `json:"items,omitempty"`
}

// Payload is the detail page projection of a listing.
type Payload struct {
	ID                  string             `json:"id"`
	AutovitID           string             `json:"autovitId"`
	Slug                *string            `json:"slug"`
	Status              Status             `json:"status"`
	Title               string             `json:"title"`
	Subtitle            *string            `json:"subtitle"`
	Price               Price              `json:"price"`
	MileageKm           *int64             `json:"mileageKm"`
	RegistrationYear    *int64             `json:"registrationYear"`
	EngineCapacityCC    *int64             `json:"engineCapacityCc"`
	EnginePowerHP       *int64             `json:"enginePowerHp"`
	FuelType            *string            `json:"fuelType"`
	Gearbox             *string            `json:"gearbox"`
	Transmission        *string            `json:"transmission"`
	BodyType            *string            `json:"bodyType"`
	Color               *string            `json:"color"`
	EmissionClass       *string            `json:"emissionClass"`
	CO2Emissions        *string            `json:"co2Emissions"`
	Consumption         *Consumption       `json:"consumption,omitempty"`
	VIN                 *string            `json:"vin"`
	FirstRegistration   *string            `json:"firstRegistration"`
	TechnicalInspection *string            `json:"technicalInspection"`
	LastService         *string            `json:"lastService"`
	MainFeatures        []Feature          `json:"mainFeatures,omitempty"`
	Badges              []Badge            `json:"badges,omitempty"`
	HighlightTags       []string           `json:"highlightTags,omitempty"`
	Images              []ViewImage        `json:"images"`
	Description         *string            `json:"description"`
	DescriptionBlocks   []DescriptionBlock `json:"descriptionBlocks"`
	Details             []Detail           `json:"details,omitempty"`
	FeatureGroups       []FeatureGroup     `json:"featureGroups"`
	TechnicalSpecs      []TechnicalSpec    `json:"technicalSpecs,omitempty"`
	Seller              *Seller            `json:"seller"`
	FinancingOptions    []FinancingOption  `json:"financingOptions,omitempty"`
	CreatedAt           time.Time          `json:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt"`
}
