package cmd

import (
	"fmt"
	"io"
	"math"
	"net/url"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lukman83/autovit-sync/internal/models"
)

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(header)
	t.SetStyle(table.StyleRounded)
	return t
}

// printImportTable prints one row per imported URL.
func printImportTable(w io.Writer, outcomes []importOutcome) {
	t := newTable(w, table.Row{"URL", "Autovit ID", "Status", "Result"})
	for _, o := range outcomes {
		if o.Error != "" {
			t.AppendRow(table.Row{truncate(cleanURL(o.URL), 60), "", "", "error: " + o.Error})
			continue
		}
		result := "updated"
		if o.Result.Created {
			result = "created"
		}
		t.AppendRow(table.Row{truncate(cleanURL(o.URL), 60), o.Result.AutovitID, o.Result.Status, result})
	}
	t.Render()
}

// printListingsTable prints listings newest change first.
func printListingsTable(w io.Writer, rows []models.Listing) {
	t := newTable(w, table.Row{"ID", "Autovit ID", "Title", "Price", "Year", "Status", "Updated"})
	for _, l := range rows {
		t.AppendRow(table.Row{
			l.ID,
			l.AutovitID,
			truncate(l.Title, 40),
			formatPrice(l.PriceValue, l.PriceCurrency),
			optInt(l.Year),
			l.Status,
			l.UpdatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d listing(s)", len(rows))})
	t.Render()
}

// printListingCard prints the detail view as label/value pairs.
func printListingCard(w io.Writer, p models.Payload) {
	t := newTable(w, table.Row{"Field", "Value"})
	add := func(label string, v any) { t.AppendRow(table.Row{label, v}) }

	add("ID", p.ID)
	add("Autovit ID", p.AutovitID)
	add("Status", p.Status)
	add("Title", p.Title)
	add("Price", formatPrice(p.Price.Value, p.Price.Currency))
	if p.Price.OldValue != nil {
		add("Old price", formatPrice(*p.Price.OldValue, p.Price.Currency))
	}
	add("Year", optInt(p.RegistrationYear))
	add("Mileage", optSuffix(p.MileageKm, " km"))
	add("Engine", optSuffix(p.EngineCapacityCC, " cm3"))
	add("Power", optSuffix(p.EnginePowerHP, " CP"))
	add("Fuel", optStr(p.FuelType))
	add("Gearbox", optStr(p.Gearbox))
	add("Body", optStr(p.BodyType))
	add("Images", len(p.Images))
	if p.Seller != nil {
		add("Seller", p.Seller.Name+" ("+p.Seller.Type+")")
	}
	add("Updated", p.UpdatedAt.Local().Format("2006-01-02 15:04"))
	t.Render()
}

// formatPrice formats a price as "27.900 EUR", keeping up to two decimals.
func formatPrice(v float64, currency string) string {
	whole := int64(math.Trunc(v))
	frac := int64(math.Round((v - float64(whole)) * 100))

	s := fmt.Sprintf("%d", whole)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)

	out := strings.Join(parts, ".")
	if frac != 0 {
		out += fmt.Sprintf(",%02d", frac)
	}
	return out + " " + currency
}

func optInt(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func optSuffix(v *int64, suffix string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d%s", *v, suffix)
}

func optStr(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return *v
}

// cleanURL strips tracking query params and returns just the advert page URL.
func cleanURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
