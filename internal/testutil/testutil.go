// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/lukman83/autovit-sync/internal/store"
)

// OpenStore returns a migrated in-memory store that is closed when t ends.
func OpenStore(t testing.TB) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// AdvertPage renders a minimal advert page embedding advert the way the
// site does.
func AdvertPage(t testing.TB, advert any) string {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"props": map[string]any{
			"pageProps": map[string]any{"advert": advert},
		},
		"page": "/[advertSlug]",
	})
	if err != nil {
		t.Fatal(err)
	}
	return PageWithScript(string(data))
}

// PageWithScript wraps raw script text in the embedded data element.
func PageWithScript(script string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="ro"><head><title>Autovit</title>
<script id="__NEXT_DATA__" type="application/json">%s</script>
</head><body><div id="__next"></div></body></html>`, script)
}

func param(value, label string) map[string]any {
	return map[string]any{"values": []any{map[string]any{"value": value, "label": label}}}
}

// SampleAdvert returns a fully populated advert. Each call returns a fresh
// copy that tests may modify.
func SampleAdvert() map[string]any {
	return map[string]any{
		"id":           7054112233,
		"slug":         "bmw-seria-5-520d-xdrive-ID7H1abc",
		"title":        "BMW Seria 5 520d xDrive",
		"status":       "active",
		"description":  "<p>Mașină&nbsp;întreținută.</p><ul><li>Xenon</li><li>Navigație</li></ul>",
		"adFromAdCore": map[string]any{"subtitle": "2.0 Diesel 190 CP"},
		"price": map[string]any{
			"value":        "27 900",
			"currency":     "EUR",
			"isNegotiable": true,
			"oldPrice":     map[string]any{"value": "29 500"},
			"labels":       []any{map[string]any{"label": "Preț negociabil"}},
		},
		"parametersDict": map[string]any{
			"year":                    param("2019", "2019"),
			"mileage":                 param("95000", "95 000 km"),
			"fuel_type":               param("diesel", "Diesel"),
			"engine_power":            param("190", "190 CP"),
			"gearbox":                 param("automatic", "Automata"),
			"transmission":            param("all-wheel-auto", "4x4 (automat)"),
			"body_type":               param("sedan", "Sedan"),
			"color":                   param("black", "Negru"),
			"emission_class":          param("euro-6", "Euro 6"),
			"vin_number":              param("WBAJA11090B123456", "WBAJA11090B123456"),
			"urban_consumption":       param("6", "6 l/100km"),
			"combined_consumption":    param("5", "5 l/100km"),
			"first_registration":      param("2019-05-10", "10.05.2019"),
			"service_history":         param("yes", "Carte service"),
			"engine_capacity":         map[string]any{"values": []any{}},
			"technical_inspection_valid_until": map[string]any{},
		},
		"mainFeatures": []any{"Diesel", "Xenon", "Xenon"},
		"images": map[string]any{
			"photos": []any{
				map[string]any{"url": "https://ireland.apollo.olxcdn.com/v1/files/a/image"},
				map[string]any{"url": ""},
				map[string]any{"caption": "no url"},
				map[string]any{"url": "https://ireland.apollo.olxcdn.com/v1/files/b/image"},
			},
		},
		"badges": []any{
			map[string]any{"code": "VERIFIED", "label": "Verificat"},
			map[string]any{"code": "FINANCING", "label": "Finanțare"},
		},
		"equipment": []any{
			map[string]any{
				"key":   "comfort",
				"label": "Confort",
				"values": []any{
					map[string]any{"label": "Climatronic"},
					map[string]any{"label": "Scaune încălzite"},
				},
			},
		},
		"details": []any{
			map[string]any{"key": "make", "label": "Marca", "value": "BMW", "group": "basic", "overviewOrder": 1},
			map[string]any{"key": "engine_power", "label": "Putere", "value": "190 CP", "group": "technical_specs", "overviewOrder": 3},
			map[string]any{"key": "gearbox", "label": "Cutie de viteze", "value": "Automata", "group": "technical_specs", "overviewOrder": 2},
			map[string]any{"key": "warranty", "label": "Garanție", "group": "technical_specs"},
			map[string]any{"key": "note", "label": "Observații", "value": "Fără accidente"},
		},
		"seller": map[string]any{
			"id":           "seller-1",
			"name":         "Auto Dealer SRL",
			"type":         "PROFESSIONAL",
			"phoneNumbers": []any{"+40700000000"},
			"website":      "https://autodealer.example.ro",
			"featuresBadges": []any{
				map[string]any{"code": "DEALER", "label": "Dealer verificat"},
			},
			"workingHours": []any{
				map[string]any{"day": 1, "openAt": "09:00", "closeAt": "18:00", "isOpen": true},
				map[string]any{"day": 7, "isOpen": false},
			},
			"location": map[string]any{
				"address":      "Str. Fabricii 10",
				"city":         "Cluj-Napoca",
				"region":       "Cluj",
				"shortAddress": "Cluj-Napoca, Cluj",
				"map":          map[string]any{"latitude": 46.77, "longitude": 23.59},
			},
		},
		"valueAddedServices": []any{
			map[string]any{
				"partnerName":    "BT Leasing",
				"monthlyPayment": 450,
				"advancePayment": 5000,
				"loanTermMonths": 60,
				"apr":            8.9,
			},
			map[string]any{
				"partner_name":    "Credius",
				"monthly_payment": 390.5,
				"currency":        "RON",
			},
		},
	}
}
