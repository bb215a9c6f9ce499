package mongo_repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"estate_search/internal/domain"
	"estate_search/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDB считает расстояние по сфере радиусом 6378.1 км, это чуть больше 6371,
// поэтому maxDistance расширяется; точный отбор делает движок или $match
// по пересчитанному расстоянию.
const (
	distanceInflation = 1.005
	distanceSlackKm   = 0.01

	mongoSphereRadiusKm = 6378.1
)

// PropertyRepository каталог в MongoDB. Поиск по радиусу через $geoNear
// по 2dsphere-индексу на location.coordinates.
type PropertyRepository struct {
	coll *mongo.Collection
	log  *slog.Logger
}

func NewPropertyRepository(coll *mongo.Collection, log *slog.Logger) *PropertyRepository {
	return &PropertyRepository{coll: coll, log: log}
}

// EnsureIndexes создаёт индексы, нужные для поиска.
func (r *PropertyRepository) EnsureIndexes(ctx context.Context) error {
	const op = "mongo.PropertyRepository.EnsureIndexes"

	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: coordinatesPath, Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "propertyType", Value: 1}, {Key: "basicInfo.beds", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Upsert создаёт или заменяет объекты.
func (r *PropertyRepository) Upsert(ctx context.Context, props ...domain.Property) error {
	const op = "mongo.PropertyRepository.Upsert"

	if len(props) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(props))
	for _, p := range props {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%s: property %s: %w", op, p.ID, err)
		}
		doc := toDocument(p)
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	if _, err := r.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetByID получает объект по ID.
func (r *PropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Property, error) {
	const op = "mongo.PropertyRepository.GetByID"

	var doc propertyDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Property{}, fmt.Errorf("%s: %w", op, repository.ErrPropertyNotFound)
		}
		return domain.Property{}, fmt.Errorf("%s: %w", op, err)
	}

	p, err := doc.toDomain()
	if err != nil {
		return domain.Property{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Find объекты по предикату. Используется агрегация, чтобы документы
// без поля сортировки шли в конце.
func (r *PropertyRepository) Find(ctx context.Context, pred domain.Predicate, opts domain.FindOptions) ([]domain.Property, error) {
	const op = "mongo.PropertyRepository.Find"

	pipeline, err := findPipeline(pred, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cursor.Close(ctx)

	var docs []propertyDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: decode failed: %w", op, err)
	}

	properties := make([]domain.Property, 0, len(docs))
	for _, doc := range docs {
		p, err := doc.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		properties = append(properties, p)
	}
	return properties, nil
}

// Count количество объектов по предикату.
func (r *PropertyRepository) Count(ctx context.Context, pred domain.Predicate) (int, error) {
	const op = "mongo.PropertyRepository.Count"

	filter, err := buildFilter(pred)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(n), nil
}

// FindWithDistance кандидаты в радиусе от origin через $geoNear.
func (r *PropertyRepository) FindWithDistance(
	ctx context.Context,
	pred domain.Predicate,
	origin domain.Coordinate,
	radiusKm float64,
) ([]domain.RankedProperty, error) {
	const op = "mongo.PropertyRepository.FindWithDistance"

	pipeline, err := geoNearPipeline(pred, origin, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cursor.Close(ctx)

	var docs []rankedDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: decode failed: %w", op, err)
	}

	result := make([]domain.RankedProperty, 0, len(docs))
	for _, doc := range docs {
		p, err := doc.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, domain.RankedProperty{Property: p, DistanceKm: doc.DistanceMeters / 1000})
	}

	r.log.Debug("proximity candidates selected",
		slog.String("op", op),
		slog.Int("candidates", len(result)),
	)
	return result, nil
}

// FindNearestPage страница выдачи по радиусу. Расстояние приводится к сфере
// domain.EarthRadiusKm, отбор, ранжирование и срез выполняются в агрегации,
// итог считается в той же $facet.
func (r *PropertyRepository) FindNearestPage(
	ctx context.Context,
	pred domain.Predicate,
	origin domain.Coordinate,
	radiusKm float64,
	opts domain.FindOptions,
) ([]domain.RankedProperty, int, error) {
	const op = "mongo.PropertyRepository.FindNearestPage"

	pipeline, err := nearestPagePipeline(pred, origin, radiusKm, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer cursor.Close(ctx)

	var pages []nearestPageDocument
	if err := cursor.All(ctx, &pages); err != nil {
		return nil, 0, fmt.Errorf("%s: decode failed: %w", op, err)
	}
	if len(pages) == 0 {
		return []domain.RankedProperty{}, 0, nil
	}

	page := pages[0]
	result := make([]domain.RankedProperty, 0, len(page.Items))
	for _, doc := range page.Items {
		p, err := doc.toDomain()
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, domain.RankedProperty{Property: p, DistanceKm: doc.DistanceKm})
	}
	return result, page.total(), nil
}

func findPipeline(pred domain.Predicate, opts domain.FindOptions) (mongo.Pipeline, error) {
	filter, err := buildFilter(pred)
	if err != nil {
		return nil, err
	}
	addFields, sortDoc, err := sortStages(opts.Sort)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{{{Key: "$match", Value: filter}}}
	if len(addFields) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$addFields", Value: addFields}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: sortDoc}})
	if opts.Skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: int64(opts.Skip)}})
	}
	if opts.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: int64(opts.Limit)}})
	}
	if len(addFields) > 0 {
		unset := make(bson.A, 0, len(addFields))
		for _, f := range addFields {
			unset = append(unset, f.Key)
		}
		pipeline = append(pipeline, bson.D{{Key: "$unset", Value: unset}})
	}
	return pipeline, nil
}

func geoNearPipeline(pred domain.Predicate, origin domain.Coordinate, radiusKm float64) (mongo.Pipeline, error) {
	filter, err := buildFilter(pred)
	if err != nil {
		return nil, err
	}

	maxDistanceMeters := (radiusKm*distanceInflation + distanceSlackKm) * 1000

	return mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.D{
			{Key: "near", Value: bson.D{
				{Key: "type", Value: "Point"},
				{Key: "coordinates", Value: bson.A{origin.Longitude, origin.Latitude}},
			}},
			{Key: "key", Value: coordinatesPath},
			{Key: "distanceField", Value: "distanceMeters"},
			{Key: "maxDistance", Value: maxDistanceMeters},
			{Key: "query", Value: filter},
			{Key: "spherical", Value: true},
		}}},
	}, nil
}

func nearestPagePipeline(
	pred domain.Predicate,
	origin domain.Coordinate,
	radiusKm float64,
	opts domain.FindOptions,
) (mongo.Pipeline, error) {
	filter, err := buildFilter(pred)
	if err != nil {
		return nil, err
	}

	items := bson.A{}
	if opts.Skip > 0 {
		items = append(items, bson.D{{Key: "$skip", Value: int64(opts.Skip)}})
	}
	if opts.Limit > 0 {
		items = append(items, bson.D{{Key: "$limit", Value: int64(opts.Limit)}})
	}
	if len(items) == 0 {
		items = append(items, bson.D{{Key: "$match", Value: bson.D{}}})
	}

	return mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.D{
			{Key: "near", Value: bson.D{
				{Key: "type", Value: "Point"},
				{Key: "coordinates", Value: bson.A{origin.Longitude, origin.Latitude}},
			}},
			{Key: "key", Value: coordinatesPath},
			{Key: "distanceField", Value: "distanceKm"},
			{Key: "distanceMultiplier", Value: domain.EarthRadiusKm / mongoSphereRadiusKm / 1000},
			{Key: "maxDistance", Value: (radiusKm*distanceInflation + distanceSlackKm) * 1000},
			{Key: "query", Value: filter},
			{Key: "spherical", Value: true},
		}}},
		{{Key: "$match", Value: bson.D{{Key: "distanceKm", Value: bson.D{{Key: "$lte", Value: radiusKm}}}}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "featured", Value: -1},
			{Key: "distanceKm", Value: 1},
			{Key: "_id", Value: 1},
		}}},
		{{Key: "$facet", Value: bson.D{
			{Key: "items", Value: items},
			{Key: "total", Value: bson.A{bson.D{{Key: "$count", Value: "n"}}}},
		}}},
	}, nil
}
