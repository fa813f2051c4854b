package autovit

import (
	"math"
	"strconv"
	"strings"

	"github.com/lukman83/autovit-sync/internal/models"
)

// NormalizeNumber keeps only digits and dots and parses the rest.
// "95 000 km" is 95000. Input with nothing numeric left is absent, never zero.
func NormalizeNumber(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func normalizeNumberPtr(s *string) *float64 {
	if s == nil {
		return nil
	}
	if f, ok := NormalizeNumber(*s); ok {
		return &f
	}
	return nil
}

func normalizeIntPtr(s *string) *int64 {
	f := normalizeNumberPtr(s)
	if f == nil {
		return nil
	}
	n := int64(math.Round(*f))
	return &n
}

// NormalizeImages maps photo entries to images, dropping entries without a
// URL. Source order is kept.
func NormalizeImages(advert Node) []models.Image {
	var out []models.Image
	for _, photo := range advert.Get("images", "photos").Array() {
		if u, ok := photo.Get("url").Text(); ok {
			out = append(out, models.Image{URL: u})
		}
	}
	return out
}

// MainImage is the first image by position.
func MainImage(images []models.Image) *string {
	if len(images) == 0 {
		return nil
	}
	u := images[0].URL
	return &u
}

var canonicalFeatures = []struct {
	key   string
	field Field
	label string
}{
	{"year", FieldValue, "An fabricație"},
	{"mileage", FieldLabel, "Kilometraj"},
	{"engine_capacity", FieldLabel, "Capacitate cilindrică"},
	{"fuel_type", FieldLabel, "Combustibil"},
}

// NormalizeMainFeatures lists the canonical parameters that are present,
// followed by the advert's own main feature strings. A feature whose value
// is already listed is skipped.
func NormalizeMainFeatures(advert Node, params Parameters) []models.Feature {
	var out []models.Feature
	seen := make(map[string]bool)
	for _, f := range canonicalFeatures {
		v, ok := params.Param(f.key, f.field)
		if !ok {
			continue
		}
		out = append(out, models.Feature{Label: f.label, Value: v})
		seen[v] = true
	}
	for _, item := range advert.Get("mainFeatures").Array() {
		v, ok := item.Text()
		if !ok || seen[v] {
			continue
		}
		out = append(out, models.Feature{Label: v, Value: v})
		seen[v] = true
	}
	return out
}

// NormalizeBadges copies badges as code/label pairs.
func NormalizeBadges(advert Node) []models.Badge {
	var out []models.Badge
	for _, b := range advert.Get("badges").Array() {
		out = append(out, models.Badge{
			Code:  b.Get("code").TextPtr(),
			Label: b.Get("label").TextPtr(),
		})
	}
	return out
}

// HighlightTags project one tag per badge: its label, or its code when the
// label is missing. Badges carrying neither are dropped.
func HighlightTags(badges []models.Badge) []string {
	var out []string
	for _, b := range badges {
		switch {
		case b.Label != nil:
			out = append(out, *b.Label)
		case b.Code != nil:
			out = append(out, *b.Code)
		}
	}
	return out
}

// NormalizeFeatureGroups maps equipment groups to their item labels.
func NormalizeFeatureGroups(advert Node) []models.FeatureGroup {
	groups := advert.Get("equipment").Array()
	if len(groups) == 0 {
		return nil
	}
	out := make([]models.FeatureGroup, 0, len(groups))
	for _, g := range groups {
		items := []string{}
		for _, v := range g.Get("values").Array() {
			if l, ok := v.Get("label").Text(); ok {
				items = append(items, l)
			}
		}
		out = append(out, models.FeatureGroup{
			Key:   g.Get("key").TextPtr(),
			Label: g.Get("label").TextPtr(),
			Items: items,
		})
	}
	return out
}

const technicalSpecsGroup = "technical_specs"

// NormalizeDetails maps the free-form details list. Entries without a group
// land in "other".
func NormalizeDetails(advert Node) []models.Detail {
	details := advert.Get("details").Array()
	if len(details) == 0 {
		return nil
	}
	out := make([]models.Detail, 0, len(details))
	for _, d := range details {
		group, ok := d.Get("group").Text()
		if !ok {
			group = "other"
		}
		out = append(out, models.Detail{
			Key:         d.Get("key").TextPtr(),
			Label:       d.Get("label").TextPtr(),
			Value:       d.Get("value").TextPtr(),
			Description: d.Get("description").TextPtr(),
			Group:       group,
			Href:        d.Get("href").TextPtr(),
			Order:       d.Get("overviewOrder").FloatPtr(),
		})
	}
	return out
}

// NormalizeTechnicalSpecs keeps the details tagged as technical specs. The
// source order value is carried but not applied.
func NormalizeTechnicalSpecs(advert Node) []models.TechnicalSpec {
	var out []models.TechnicalSpec
	for _, d := range advert.Get("details").Array() {
		group, _ := d.Get("group").Text()
		if group != technicalSpecsGroup {
			continue
		}
		value, _ := d.Get("value").Text()
		out = append(out, models.TechnicalSpec{
			Label:    d.Get("label").TextPtr(),
			Value:    value,
			Category: group,
			Order:    d.Get("overviewOrder").FloatPtr(),
		})
	}
	return out
}

// NormalizeConsumption returns nil only when none of the three figures is
// present.
func NormalizeConsumption(params Parameters) *models.Consumption {
	c := &models.Consumption{
		Urban:      params.Label("urban_consumption"),
		ExtraUrban: params.Label("extra_urban_consumption"),
		Combined:   params.Label("combined_consumption"),
	}
	if c.Urban == nil && c.ExtraUrban == nil && c.Combined == nil {
		return nil
	}
	return c
}

// PriceLabels lists price.labels[].label.
func PriceLabels(advert Node) []string {
	var out []string
	for _, l := range advert.Get("price", "labels").Array() {
		if s, ok := l.Get("label").Text(); ok {
			out = append(out, s)
		}
	}
	return out
}
