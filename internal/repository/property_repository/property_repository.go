package property_repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"estate_search/internal/domain"
	"estate_search/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// distanceSlackKm запас к радиусу для полосы широт и выборки кандидатов;
// точный отбор кандидатов делает движок.
const distanceSlackKm = 0.01

const selectColumns = `
	property_id, title, description, status, property_type,
	beds, baths, sqft, sales_price, monthly_rent,
	street, city, state, zip, school_district,
	longitude, latitude,
	featured, is_active, furnished, pet_allowed,
	created_at, updated_at`

// haversineSQL расстояние в км от точки ($lat, $lon) до объекта; формат: lat, lon плейсхолдеры.
const haversineSQL = `2 * 6371 * ASIN(SQRT(LEAST(1,
	POWER(SIN(RADIANS(latitude - %[1]s::double precision) / 2), 2) +
	COS(RADIANS(%[1]s::double precision)) * COS(RADIANS(latitude)) *
	POWER(SIN(RADIANS(longitude - %[2]s::double precision) / 2), 2))))`

// PropertyRepository каталог в PostgreSQL.
type PropertyRepository struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewPropertyRepository(db *pgxpool.Pool, log *slog.Logger) *PropertyRepository {
	return &PropertyRepository{db: db, log: log}
}

// EnsureSchema создаёт таблицу и индексы, если их нет.
func (r *PropertyRepository) EnsureSchema(ctx context.Context) error {
	const op = "PropertyRepository.EnsureSchema"

	for _, stmt := range Schema {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// Upsert создаёт или обновляет объекты одним батчем.
func (r *PropertyRepository) Upsert(ctx context.Context, props ...domain.Property) error {
	const op = "PropertyRepository.Upsert"

	query := `
		INSERT INTO properties (
			property_id, title, description, status, property_type,
			beds, baths, sqft, sales_price, monthly_rent,
			street, city, state, zip, school_district,
			longitude, latitude,
			featured, is_active, furnished, pet_allowed,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		ON CONFLICT (property_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			property_type = EXCLUDED.property_type,
			beds = EXCLUDED.beds,
			baths = EXCLUDED.baths,
			sqft = EXCLUDED.sqft,
			sales_price = EXCLUDED.sales_price,
			monthly_rent = EXCLUDED.monthly_rent,
			street = EXCLUDED.street,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			zip = EXCLUDED.zip,
			school_district = EXCLUDED.school_district,
			longitude = EXCLUDED.longitude,
			latitude = EXCLUDED.latitude,
			featured = EXCLUDED.featured,
			is_active = EXCLUDED.is_active,
			furnished = EXCLUDED.furnished,
			pet_allowed = EXCLUDED.pet_allowed,
			updated_at = EXCLUDED.updated_at
	`

	batch := &pgx.Batch{}
	for _, p := range props {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%s: property %s: %w", op, p.ID, err)
		}

		var lon, lat *float64
		if p.Location.Coordinate != nil {
			lon, lat = &p.Location.Coordinate.Longitude, &p.Location.Coordinate.Latitude
		}
		var furnished *string
		if p.Rental.Furnished != domain.FurnishedUnspecified {
			s := p.Rental.Furnished.String()
			furnished = &s
		}

		batch.Queue(query,
			p.ID,
			p.Title,
			p.Description,
			p.Status.String(),
			p.PropertyType.String(),
			p.BasicInfo.Beds,
			p.BasicInfo.Baths,
			p.BasicInfo.Sqft,
			p.Pricing.SalesPrice,
			p.Pricing.MonthlyRent,
			p.Location.Street,
			p.Location.City,
			p.Location.State,
			p.Location.Zip,
			p.Location.SchoolDistrict,
			lon,
			lat,
			p.Featured,
			p.IsActive,
			furnished,
			p.Rental.PetAllowed,
			p.CreatedAt,
			p.UpdatedAt,
		)
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetByID получает объект недвижимости по ID.
func (r *PropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Property, error) {
	const op = "PropertyRepository.GetByID"

	query := "SELECT" + selectColumns + " FROM properties WHERE property_id = $1"

	p, err := scanProperty(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Property{}, fmt.Errorf("%s: %w", op, repository.ErrPropertyNotFound)
		}
		return domain.Property{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Find объекты по предикату с сортировкой и срезом.
func (r *PropertyRepository) Find(ctx context.Context, pred domain.Predicate, opts domain.FindOptions) ([]domain.Property, error) {
	const op = "PropertyRepository.Find"

	where := newWhereBuilder()
	if err := where.predicate(pred); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	order, err := orderBy(opts.Sort)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := "SELECT" + selectColumns + " FROM properties" + where.sql() + order
	if opts.Skip > 0 {
		query += " OFFSET " + where.arg(opts.Skip)
	}
	if opts.Limit > 0 {
		query += " LIMIT " + where.arg(opts.Limit)
	}

	rows, err := r.db.Query(ctx, query, where.params...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	properties := make([]domain.Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan failed: %w", op, err)
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return properties, nil
}

// Count количество объектов по предикату.
func (r *PropertyRepository) Count(ctx context.Context, pred domain.Predicate) (int, error) {
	const op = "PropertyRepository.Count"

	where := newWhereBuilder()
	if err := where.predicate(pred); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM properties"+where.sql(), where.params...).Scan(&total); err != nil {
		return 0, fmt.Errorf("%s: count failed: %w", op, err)
	}
	return total, nil
}

// FindWithDistance кандидаты в радиусе от origin. Индекс по широте отсекает
// объекты вне полосы широт, расстояние считается в SQL по формуле гаверсинуса.
func (r *PropertyRepository) FindWithDistance(
	ctx context.Context,
	pred domain.Predicate,
	origin domain.Coordinate,
	radiusKm float64,
) ([]domain.RankedProperty, error) {
	const op = "PropertyRepository.FindWithDistance"

	query, params, err := buildDistanceQuery(pred, origin, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]domain.RankedProperty, 0)
	for rows.Next() {
		var rp domain.RankedProperty
		p, err := scanProperty(rows, &rp.DistanceKm)
		if err != nil {
			return nil, fmt.Errorf("%s: scan failed: %w", op, err)
		}
		rp.Property = p
		result = append(result, rp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	r.log.Debug("proximity candidates selected",
		slog.String("op", op),
		slog.Int("candidates", len(result)),
	)
	return result, nil
}

// FindNearestPage страница выдачи по радиусу: отбор, ранжирование
// (featured, расстояние, id) и срез выполняются в SQL, общее число совпадений
// приходит оконной функцией.
func (r *PropertyRepository) FindNearestPage(
	ctx context.Context,
	pred domain.Predicate,
	origin domain.Coordinate,
	radiusKm float64,
	opts domain.FindOptions,
) ([]domain.RankedProperty, int, error) {
	const op = "PropertyRepository.FindNearestPage"

	query, params, err := buildNearestPageQuery(pred, origin, radiusKm, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, params...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var total int
	result := make([]domain.RankedProperty, 0)
	for rows.Next() {
		var rp domain.RankedProperty
		p, err := scanProperty(rows, &rp.DistanceKm, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: scan failed: %w", op, err)
		}
		rp.Property = p
		result = append(result, rp)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: rows error: %w", op, err)
	}

	// за последней страницей строк нет, итог считается отдельно
	if len(result) == 0 && opts.Skip > 0 {
		query, params, err := buildNearestCountQuery(pred, origin, radiusKm)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		if err := r.db.QueryRow(ctx, query, params...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("%s: count failed: %w", op, err)
		}
	}

	return result, total, nil
}

func buildDistanceQuery(pred domain.Predicate, origin domain.Coordinate, radiusKm float64) (string, []interface{}, error) {
	where := newWhereBuilder()
	candidates, err := distanceCandidates(where, pred, origin, radiusKm)
	if err != nil {
		return "", nil, err
	}

	query := fmt.Sprintf(`
		SELECT * FROM (%s) candidates
		WHERE distance_km <= %s::double precision`,
		candidates, where.arg(radiusKm+distanceSlackKm))

	return query, where.params, nil
}

func buildNearestPageQuery(
	pred domain.Predicate,
	origin domain.Coordinate,
	radiusKm float64,
	opts domain.FindOptions,
) (string, []interface{}, error) {
	where := newWhereBuilder()
	candidates, err := distanceCandidates(where, pred, origin, radiusKm)
	if err != nil {
		return "", nil, err
	}

	query := fmt.Sprintf(`
		SELECT *, COUNT(*) OVER () AS total FROM (%s) candidates
		WHERE distance_km <= %s::double precision
		ORDER BY featured DESC, distance_km ASC, property_id ASC`,
		candidates, where.arg(radiusKm))
	if opts.Skip > 0 {
		query += " OFFSET " + where.arg(opts.Skip)
	}
	if opts.Limit > 0 {
		query += " LIMIT " + where.arg(opts.Limit)
	}

	return query, where.params, nil
}

func buildNearestCountQuery(pred domain.Predicate, origin domain.Coordinate, radiusKm float64) (string, []interface{}, error) {
	where := newWhereBuilder()
	candidates, err := distanceCandidates(where, pred, origin, radiusKm)
	if err != nil {
		return "", nil, err
	}

	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM (%s) candidates
		WHERE distance_km <= %s::double precision`,
		candidates, where.arg(radiusKm))

	return query, where.params, nil
}

// distanceCandidates подзапрос объектов с координатами в полосе широт
// вокруг origin, с вычисленным distance_km.
func distanceCandidates(where *whereBuilder, pred domain.Predicate, origin domain.Coordinate, radiusKm float64) (string, error) {
	if err := where.predicate(pred); err != nil {
		return "", err
	}

	minLat, maxLat := domain.LatitudeBand(origin, radiusKm+distanceSlackKm)
	where.add("latitude IS NOT NULL AND longitude IS NOT NULL")
	where.add(fmt.Sprintf("latitude BETWEEN %s AND %s", where.arg(minLat), where.arg(maxLat)))

	distance := fmt.Sprintf(haversineSQL, where.arg(origin.Latitude), where.arg(origin.Longitude))

	return fmt.Sprintf(`
			SELECT %s, %s AS distance_km
			FROM properties%s`,
		selectColumns, distance, where.sql()), nil
}

func scanProperty(row pgx.Row, extra ...any) (domain.Property, error) {
	var (
		p               domain.Property
		statusStr       string
		propertyTypeStr string
		lon, lat        *float64
		furnished       *string
	)

	dest := []any{
		&p.ID,
		&p.Title,
		&p.Description,
		&statusStr,
		&propertyTypeStr,
		&p.BasicInfo.Beds,
		&p.BasicInfo.Baths,
		&p.BasicInfo.Sqft,
		&p.Pricing.SalesPrice,
		&p.Pricing.MonthlyRent,
		&p.Location.Street,
		&p.Location.City,
		&p.Location.State,
		&p.Location.Zip,
		&p.Location.SchoolDistrict,
		&lon,
		&lat,
		&p.Featured,
		&p.IsActive,
		&furnished,
		&p.Rental.PetAllowed,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domain.Property{}, err
	}

	p.Status = domain.PropertyStatus(statusStr)
	p.PropertyType = domain.PropertyType(propertyTypeStr)
	if lon != nil && lat != nil {
		p.Location.Coordinate = &domain.Coordinate{Longitude: *lon, Latitude: *lat}
	}
	if furnished != nil {
		p.Rental.Furnished = domain.Furnished(*furnished)
	}
	return p, nil
}
