package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lukman83/autovit-sync/internal/apperr"
	"github.com/lukman83/autovit-sync/internal/models"
)

// ConflictPolicy decides what a re-import does to an existing row.
type ConflictPolicy string

const (
	// PolicyOverwrite replaces every column, discarding manual edits.
	PolicyOverwrite ConflictPolicy = "overwrite"
	// PolicyRespectLocks keeps columns listed in the row's locked_fields.
	PolicyRespectLocks ConflictPolicy = "respect-locks"
)

// ParseConflictPolicy validates a policy name.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch p := ConflictPolicy(s); p {
	case PolicyOverwrite, PolicyRespectLocks:
		return p, nil
	}
	return "", fmt.Errorf("unknown conflict policy %q", s)
}

// SortField orders listing queries, newest first.
type SortField string

const (
	SortCreated SortField = "created_at"
	SortUpdated SortField = "updated_at"
)

// ListFilter narrows ListListings.
type ListFilter struct {
	Status      models.Status // empty for any
	SortBy      SortField
	Limit       int
	WithPayload bool
}

var listingColumns = []string{
	"id", "autovit_id", "slug", "status", "title", "subtitle",
	"price_value", "price_currency", "price_old_value", "price_negotiable", "price_labels",
	"mileage_km", "year", "engine_capacity_cc", "engine_power_hp",
	"fuel_type", "gearbox", "transmission", "body_type", "color", "emission_class", "co2_emissions", "consumption",
	"vin", "first_registration", "technical_inspection", "last_service",
	"main_features", "badges", "highlight_tags", "images", "main_image", "location_label", "description",
	"details", "feature_groups", "technical_specs", "seller", "financing_options", "payload",
	"locked_fields", "created_at", "updated_at",
}

// columns an import never rewrites on conflict
var identityColumns = map[string]bool{"id": true, "autovit_id": true, "created_at": true}

// EditableColumns may be changed by a manual edit and are therefore lockable.
var EditableColumns = []string{
	"status", "title", "subtitle",
	"price_value", "price_currency", "price_old_value", "price_negotiable",
	"mileage_km", "year", "engine_capacity_cc", "engine_power_hp",
	"fuel_type", "gearbox", "transmission", "body_type", "color",
	"description", "images", "main_image", "location_label",
}

// UpsertResult describes the row written by UpsertListing.
type UpsertResult struct {
	ID      string
	Created bool
}

// UpsertListing inserts l, or updates the row with the same autovit_id in a
// single statement. The row id and created_at survive updates.
func (s *Store) UpsertListing(ctx context.Context, l *models.Listing, policy ConflictPolicy) (UpsertResult, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	row := *l
	row.ID = uuid.NewString()
	row.CreatedAt = now
	row.UpdatedAt = now
	row.LockedFields = nil

	values, err := s.listingValues(&row)
	if err != nil {
		return UpsertResult{}, apperr.Wrap(apperr.KindStorage, "Nu am putut salva anunțul", err)
	}
	args := make([]any, len(listingColumns))
	for i, c := range listingColumns {
		args[i] = values[c]
	}

	var set []string
	for _, c := range listingColumns {
		if identityColumns[c] {
			continue
		}
		switch {
		case policy == PolicyRespectLocks && c == "locked_fields":
			// locks outlive imports
		case policy == PolicyRespectLocks && c != "updated_at":
			set = append(set, fmt.Sprintf("%s = CASE WHEN %s THEN autovit_listings.%s ELSE excluded.%s END", c, s.lockedExpr(c), c, c))
		default:
			set = append(set, fmt.Sprintf("%s = excluded.%s", c, c))
		}
	}

	query := fmt.Sprintf(
		"INSERT INTO autovit_listings (%s) VALUES (%s) ON CONFLICT (autovit_id) DO UPDATE SET %s RETURNING id, created_at",
		strings.Join(listingColumns, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(listingColumns)), ", "),
		strings.Join(set, ", "),
	)

	var (
		id      string
		created time.Time
	)
	err = s.db.QueryRowContext(ctx, s.rebind(query), args...).Scan(&id, timeCol{&created})
	if err != nil {
		return UpsertResult{}, apperr.Wrap(apperr.KindStorage, "Nu am putut salva anunțul", fmt.Errorf("upsert listing %s: %w", l.AutovitID, err))
	}
	return UpsertResult{ID: id, Created: created.Equal(now)}, nil
}

func (s *Store) lockedExpr(col string) string {
	if s.dialect == DialectPostgres {
		return fmt.Sprintf(`COALESCE(autovit_listings.locked_fields, '[]'::jsonb) @> '["%s"]'::jsonb`, col)
	}
	return fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(autovit_listings.locked_fields) WHERE json_each.value = '%s')", col)
}

// GetListing returns the listing with the given row id.
func (s *Store) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	return s.getOne(ctx, "id", id)
}

// GetListingByAutovitID returns the listing imported from the given advert.
func (s *Store) GetListingByAutovitID(ctx context.Context, autovitID string) (*models.Listing, error) {
	return s.getOne(ctx, "autovit_id", autovitID)
}

func (s *Store) getOne(ctx context.Context, col, value string) (*models.Listing, error) {
	query := fmt.Sprintf("SELECT %s FROM autovit_listings WHERE %s = ?", strings.Join(listingColumns, ", "), col)
	l, err := scanListing(s.db.QueryRowContext(ctx, s.rebind(query), value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "Nu am putut încărca anunțul", err)
	}
	return l, nil
}

// ListListings returns listings newest first.
func (s *Store) ListListings(ctx context.Context, f ListFilter) ([]models.Listing, error) {
	cols := slices.Clone(listingColumns)
	if !f.WithPayload {
		cols[slices.Index(cols, "payload")] = "NULL"
	}
	sortBy := f.SortBy
	if sortBy != SortUpdated {
		sortBy = SortCreated
	}

	var (
		where string
		args  []any
	)
	if f.Status != "" {
		where = " WHERE status = ?"
		args = append(args, string(f.Status))
	}
	query := fmt.Sprintf("SELECT %s FROM autovit_listings%s ORDER BY %s DESC, id", strings.Join(cols, ", "), where, sortBy)
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "Nu am putut încărca anunțurile", err)
	}
	defer rows.Close()

	out := []models.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindStorage, "Nu am putut încărca anunțurile", err)
		}
		out = append(out, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "Nu am putut încărca anunțurile", err)
	}
	return out, nil
}

// UpdateStatus changes a listing's status without locking it.
func (s *Store) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind("UPDATE autovit_listings SET status = ?, updated_at = ? WHERE id = ?"),
		string(status), s.timeArg(time.Now()), id)
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "Nu am putut actualiza statusul", err)
	}
	return expectOneRow(res)
}

// SaveEdit writes the given columns of l and adds them to the row's locked
// fields. Only EditableColumns are accepted.
func (s *Store) SaveEdit(ctx context.Context, l *models.Listing, changed []string) error {
	if len(changed) == 0 {
		return nil
	}
	for _, c := range changed {
		if !slices.Contains(EditableColumns, c) {
			return apperr.New(apperr.KindValidation, fmt.Sprintf("Câmpul %q nu poate fi editat", c))
		}
	}

	row := *l
	row.LockedFields = mergeLocks(l.LockedFields, changed)
	row.UpdatedAt = time.Now()
	values, err := s.listingValues(&row)
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "Nu am putut salva modificările", err)
	}

	var (
		set  []string
		args []any
	)
	for _, c := range append(slices.Clone(changed), "locked_fields", "updated_at") {
		set = append(set, c+" = ?")
		args = append(args, values[c])
	}
	args = append(args, l.ID)

	query := fmt.Sprintf("UPDATE autovit_listings SET %s WHERE id = ?", strings.Join(set, ", "))
	res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "Nu am putut salva modificările", err)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}
	l.LockedFields = row.LockedFields
	return nil
}

// DeleteListing removes one listing. It reports whether a row existed.
func (s *Store) DeleteListing(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM autovit_listings WHERE id = ?"), id)
	if err != nil {
		return false, apperr.Wrap(apperr.KindStorage, "Ștergerea anunțului a eșuat", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Wrap(apperr.KindStorage, "Ștergerea anunțului a eșuat", err)
	}
	return n > 0, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "Nu am putut actualiza anunțul", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func mergeLocks(existing, changed []string) []string {
	out := slices.Clone(existing)
	for _, c := range changed {
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out
}

func (s *Store) timeArg(t time.Time) any {
	t = t.UTC().Truncate(time.Microsecond)
	if s.dialect == DialectPostgres {
		return t
	}
	return t.Format(sqliteTimeLayout)
}

// listingValues maps every column to its SQL argument.
func (s *Store) listingValues(l *models.Listing) (map[string]any, error) {
	jsonCols := map[string]any{
		"price_labels":    l.PriceLabels,
		"consumption":     l.Consumption,
		"main_features":   l.MainFeatures,
		"badges":          l.Badges,
		"highlight_tags":  l.HighlightTags,
		"images":          l.Images,
		"details":         l.Details,
		"feature_groups":  l.FeatureGroups,
		"technical_specs": l.TechnicalSpecs,
		"locked_fields":   l.LockedFields,
	}
	values := map[string]any{
		"id":                   l.ID,
		"autovit_id":           l.AutovitID,
		"slug":                 l.Slug,
		"status":               string(l.Status),
		"title":                l.Title,
		"subtitle":             l.Subtitle,
		"price_value":          l.PriceValue,
		"price_currency":       l.PriceCurrency,
		"price_old_value":      l.PriceOldValue,
		"price_negotiable":     l.PriceNegotiable,
		"mileage_km":           l.MileageKm,
		"year":                 l.Year,
		"engine_capacity_cc":   l.EngineCapacityCC,
		"engine_power_hp":      l.EnginePowerHP,
		"fuel_type":            l.FuelType,
		"gearbox":              l.Gearbox,
		"transmission":         l.Transmission,
		"body_type":            l.BodyType,
		"color":                l.Color,
		"emission_class":       l.EmissionClass,
		"co2_emissions":        l.CO2Emissions,
		"vin":                  l.VIN,
		"first_registration":   l.FirstRegistration,
		"technical_inspection": l.TechnicalInspection,
		"last_service":         l.LastService,
		"main_image":           l.MainImage,
		"location_label":       l.LocationLabel,
		"description":          l.Description,
		"seller":               rawArg(l.Seller),
		"financing_options":    rawArg(l.FinancingOptions),
		"payload":              rawArg(l.Payload),
		"created_at":           s.timeArg(l.CreatedAt),
		"updated_at":           s.timeArg(l.UpdatedAt),
	}
	for col, v := range jsonCols {
		arg, err := jsonArg(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", col, err)
		}
		values[col] = arg
	}
	return values, nil
}

// jsonArg encodes v as JSON text; nil slices and pointers become NULL.
func jsonArg(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return nil, nil
	}
	return string(data), nil
}

func rawArg(raw json.RawMessage) any {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return string(raw)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*models.Listing, error) {
	var (
		l      models.Listing
		status string
	)
	err := row.Scan(
		&l.ID, &l.AutovitID, strPtr{&l.Slug}, &status, &l.Title, strPtr{&l.Subtitle},
		&l.PriceValue, &l.PriceCurrency, floatPtr{&l.PriceOldValue}, &l.PriceNegotiable, jsonInto(&l.PriceLabels),
		intPtr{&l.MileageKm}, intPtr{&l.Year}, intPtr{&l.EngineCapacityCC}, intPtr{&l.EnginePowerHP},
		strPtr{&l.FuelType}, strPtr{&l.Gearbox}, strPtr{&l.Transmission}, strPtr{&l.BodyType}, strPtr{&l.Color},
		strPtr{&l.EmissionClass}, strPtr{&l.CO2Emissions}, jsonInto(&l.Consumption),
		strPtr{&l.VIN}, strPtr{&l.FirstRegistration}, strPtr{&l.TechnicalInspection}, strPtr{&l.LastService},
		jsonInto(&l.MainFeatures), jsonInto(&l.Badges), jsonInto(&l.HighlightTags), jsonInto(&l.Images),
		strPtr{&l.MainImage}, strPtr{&l.LocationLabel}, strPtr{&l.Description},
		jsonInto(&l.Details), jsonInto(&l.FeatureGroups), jsonInto(&l.TechnicalSpecs),
		rawCol{&l.Seller}, rawCol{&l.FinancingOptions}, rawCol{&l.Payload},
		jsonInto(&l.LockedFields), timeCol{&l.CreatedAt}, timeCol{&l.UpdatedAt},
	)
	if err != nil {
		return nil, err
	}
	l.Status = models.Status(status)
	return &l, nil
}
