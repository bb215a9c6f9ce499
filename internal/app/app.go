package app

import (
	"context"
	"fmt"
	"log/slog"

	grpcapp "estate_search/internal/app/grpc"
	httpapp "estate_search/internal/app/http"
	"estate_search/internal/config"
	"estate_search/internal/domain"
	"estate_search/internal/http/propertyhttp"
	"estate_search/internal/lib/jsonld"
	"estate_search/internal/lib/metrics"
	minio "estate_search/internal/lib/minio/core"
	"estate_search/internal/lib/snapshot"
	"estate_search/internal/repository/memory_repository"
	"estate_search/internal/repository/mongo_repository"
	"estate_search/internal/repository/property_repository"
	"estate_search/internal/services/search"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Store хранилище каталога: чтение для поиска и запись для загрузки снимков.
type Store interface {
	search.PropertyRepository
	Upsert(ctx context.Context, props ...domain.Property) error
}

type App struct {
	GRPCServer *grpcapp.App
	HTTPServer *httpapp.App
	Search     *search.Service
	Store      Store
	Metrics    *metrics.QueryMetrics

	ping    func(ctx context.Context) error
	closers []func(ctx context.Context) error
}

// New собирает хранилище, загружает снимок (если задан), сервис поиска и серверы.
func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	a := &App{}

	store, err := a.openStore(ctx, log, cfg.Storage)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.Store = store

	if err := loadSnapshots(ctx, log, cfg, store); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a.Metrics = metrics.NewQueryMetrics(log)
	a.Search = search.New(log, store, a.Metrics, cfg.Search)

	router := propertyhttp.NewRouter(log, a.Search,
		propertyhttp.WithStats(a.Metrics),
		propertyhttp.WithHealthCheck(a.Ping),
		propertyhttp.WithJSONLD(jsonld.NewGenerator(cfg.HTTP.BaseURL)),
		propertyhttp.WithRequestTimeout(cfg.HTTP.RequestTimeout),
	)
	a.HTTPServer = httpapp.New(log, cfg.HTTP, router)
	a.GRPCServer = grpcapp.New(log, cfg.GRPC.Port, cfg.GRPC.Timeout)
	a.GRPCServer.SetServing(true)

	log.Info("search engine initialized",
		slog.String("storage", cfg.Storage.Driver),
		slog.Int("default_page_size", cfg.Search.DefaultPageSize),
		slog.Float64("default_radius_km", cfg.Search.DefaultRadiusKm),
	)

	return a, nil
}

// Ping проверяет доступность хранилища.
func (a *App) Ping(ctx context.Context) error {
	if a.ping == nil {
		return nil
	}
	return a.ping(ctx)
}

// Close освобождает соединения с хранилищем.
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i](ctx)
	}
	a.closers = nil
}

func (a *App) openStore(ctx context.Context, log *slog.Logger, cfg config.StorageConfig) (Store, error) {
	const op = "app.openStore"

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	switch cfg.Driver {
	case config.StoragePostgres:
		pool, err := pgxpool.New(connectCtx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.closers = append(a.closers, func(context.Context) error {
			pool.Close()
			return nil
		})
		if err := pool.Ping(connectCtx); err != nil {
			return nil, fmt.Errorf("%s: ping postgres: %w", op, err)
		}
		a.ping = pool.Ping

		repo := property_repository.NewPropertyRepository(pool, log)
		if err := repo.EnsureSchema(connectCtx); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return repo, nil

	case config.StorageMongo:
		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.closers = append(a.closers, client.Disconnect)
		if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
			return nil, fmt.Errorf("%s: ping mongo: %w", op, err)
		}
		a.ping = func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		}

		coll := client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
		repo := mongo_repository.NewPropertyRepository(coll, log)
		if err := repo.EnsureIndexes(connectCtx); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return repo, nil

	default:
		return memory_repository.NewPropertyRepository(log), nil
	}
}

// loadSnapshots заполняет хранилище из файла и/или объекта MinIO.
func loadSnapshots(ctx context.Context, log *slog.Logger, cfg *config.Config, store Store) error {
	const op = "app.loadSnapshots"

	loader := snapshot.NewLoader(log)

	if cfg.Storage.SnapshotPath != "" {
		stats, err := loader.LoadFile(ctx, cfg.Storage.SnapshotPath, store)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		log.Info("snapshot file loaded",
			slog.String("path", cfg.Storage.SnapshotPath),
			slog.Int("loaded", stats.Loaded),
			slog.Int("skipped", stats.Skipped),
		)
	}

	if cfg.Minio.Enabled {
		client, err := minio.NewMinioClient(ctx, cfg.Minio)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		stats, err := loader.LoadObject(ctx, client, cfg.Minio.SnapshotObject, store)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		log.Info("snapshot object loaded",
			slog.String("bucket", client.BucketName()),
			slog.String("object", cfg.Minio.SnapshotObject),
			slog.Int("loaded", stats.Loaded),
			slog.Int("skipped", stats.Skipped),
		)
	}

	return nil
}
