package property_repository

// Schema создаёт таблицу объектов и индексы под поиск.
// Индекс по широте обслуживает префильтр поиска по радиусу.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS properties (
		property_id     UUID PRIMARY KEY,
		title           TEXT NOT NULL,
		description     TEXT NOT NULL DEFAULT '',
		status          TEXT NOT NULL,
		property_type   TEXT NOT NULL,
		beds            INT NOT NULL DEFAULT 0 CHECK (beds >= 0),
		baths           INT NOT NULL DEFAULT 0 CHECK (baths >= 0),
		sqft            INT NOT NULL DEFAULT 0,
		sales_price     DOUBLE PRECISION,
		monthly_rent    DOUBLE PRECISION,
		street          TEXT NOT NULL DEFAULT '',
		city            TEXT NOT NULL DEFAULT '',
		state           TEXT NOT NULL DEFAULT '',
		zip             TEXT NOT NULL DEFAULT '',
		school_district TEXT NOT NULL DEFAULT '',
		longitude       DOUBLE PRECISION CHECK (longitude BETWEEN -180 AND 180),
		latitude        DOUBLE PRECISION CHECK (latitude BETWEEN -90 AND 90),
		featured        BOOLEAN NOT NULL DEFAULT FALSE,
		is_active       BOOLEAN NOT NULL DEFAULT TRUE,
		furnished       TEXT,
		pet_allowed     BOOLEAN NOT NULL DEFAULT FALSE,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_listing
		ON properties (is_active, status, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_latitude
		ON properties (latitude) WHERE latitude IS NOT NULL AND longitude IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_properties_type_beds
		ON properties (property_type, beds)`,
}
