package store

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS autovit_listings (
	id                   TEXT PRIMARY KEY,
	autovit_id           TEXT NOT NULL UNIQUE,
	slug                 TEXT,
	status               TEXT NOT NULL DEFAULT 'ACTIVE' CHECK (status IN ('ACTIVE', 'DRAFT', 'ARCHIVED')),
	title                TEXT NOT NULL,
	subtitle             TEXT,
	price_value          REAL NOT NULL,
	price_currency       TEXT NOT NULL DEFAULT 'EUR',
	price_old_value      REAL,
	price_negotiable     BOOLEAN NOT NULL DEFAULT FALSE,
	price_labels         TEXT,
	mileage_km           INTEGER,
	year                 INTEGER,
	engine_capacity_cc   INTEGER,
	engine_power_hp      INTEGER,
	fuel_type            TEXT,
	gearbox              TEXT,
	transmission         TEXT,
	body_type            TEXT,
	color                TEXT,
	emission_class       TEXT,
	co2_emissions        TEXT,
	consumption          TEXT,
	vin                  TEXT,
	first_registration   TEXT,
	technical_inspection TEXT,
	last_service         TEXT,
	main_features        TEXT,
	badges               TEXT,
	highlight_tags       TEXT,
	images               TEXT,
	main_image           TEXT,
	location_label       TEXT,
	description          TEXT,
	details              TEXT,
	feature_groups       TEXT,
	technical_specs      TEXT,
	seller               TEXT,
	financing_options    TEXT,
	payload              TEXT,
	locked_fields        TEXT,
	created_at           TIMESTAMP NOT NULL,
	updated_at           TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS autovit_listings_created_at_idx ON autovit_listings (created_at);
CREATE INDEX IF NOT EXISTS autovit_listings_updated_at_idx ON autovit_listings (updated_at);
CREATE TABLE IF NOT EXISTS admin_users (
	user_id TEXT PRIMARY KEY,
	role    TEXT NOT NULL
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS autovit_listings (
	id                   UUID PRIMARY KEY,
	autovit_id           TEXT NOT NULL UNIQUE,
	slug                 TEXT,
	status               TEXT NOT NULL DEFAULT 'ACTIVE' CHECK (status IN ('ACTIVE', 'DRAFT', 'ARCHIVED')),
	title                TEXT NOT NULL,
	subtitle             TEXT,
	price_value          DOUBLE PRECISION NOT NULL,
	price_currency       TEXT NOT NULL DEFAULT 'EUR',
	price_old_value      DOUBLE PRECISION,
	price_negotiable     BOOLEAN NOT NULL DEFAULT FALSE,
	price_labels         JSONB,
	mileage_km           BIGINT,
	year                 BIGINT,
	engine_capacity_cc   BIGINT,
	engine_power_hp      BIGINT,
	fuel_type            TEXT,
	gearbox              TEXT,
	transmission         TEXT,
	body_type            TEXT,
	color                TEXT,
	emission_class       TEXT,
	co2_emissions        TEXT,
	consumption          JSONB,
	vin                  TEXT,
	first_registration   TEXT,
	technical_inspection TEXT,
	last_service         TEXT,
	main_features        JSONB,
	badges               JSONB,
	highlight_tags       JSONB,
	images               JSONB,
	main_image           TEXT,
	location_label       TEXT,
	description          TEXT,
	details              JSONB,
	feature_groups       JSONB,
	technical_specs      JSONB,
	seller               JSONB,
	financing_options    JSONB,
	payload              JSONB,
	locked_fields        JSONB,
	created_at           TIMESTAMPTZ NOT NULL,
	updated_at           TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS autovit_listings_created_at_idx ON autovit_listings (created_at);
CREATE INDEX IF NOT EXISTS autovit_listings_updated_at_idx ON autovit_listings (updated_at);
CREATE TABLE IF NOT EXISTS admin_users (
	user_id TEXT PRIMARY KEY,
	role    TEXT NOT NULL
);
`
