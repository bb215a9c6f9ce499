package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
)

type Config struct {
	Env     string `env:"ENV" env-default:"local"`
	Storage StorageConfig
	HTTP    HTTPConfig
	GRPC    GRPCConfig
	Minio   MinioConfig
	Search  SearchConfig
}

// StorageConfig выбор и параметры хранилища объектов.
type StorageConfig struct {
	// Driver: memory, postgres или mongo
	Driver          string        `env:"STORAGE_DRIVER" env-default:"memory"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	MongoURI        string        `env:"MONGO_URI"`
	MongoDatabase   string        `env:"MONGO_DATABASE" env-default:"estate"`
	MongoCollection string        `env:"MONGO_COLLECTION_PROPERTIES" env-default:"properties"`
	ConnectTimeout  time.Duration `env:"STORAGE_CONNECT_TIMEOUT" env-default:"10s"`
	// SnapshotPath JSON или YAML файл для заполнения memory-хранилища
	SnapshotPath string `env:"SNAPSHOT_PATH"`
}

type HTTPConfig struct {
	Address        string        `env:"HTTP_ADDRESS" env-default:":8080"`
	ReadTimeout    time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"5s"`
	WriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout    time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	// RequestTimeout дедлайн поискового запроса; 0 отключает
	RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"10s"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" env-default:"*" env-separator:","`
	// BaseURL публичного сайта, используется в JSON-LD ссылках
	BaseURL string `env:"PUBLIC_BASE_URL" env-default:"http://localhost:3000"`
}

type GRPCConfig struct {
	Port    int           `env:"GRPC_PORT" env-default:"44044"`
	Timeout time.Duration `env:"GRPC_TIMEOUT" env-default:"10s"`
}

type MinioConfig struct {
	Enabled           bool   `env:"MINIO_ENABLE" env-default:"false"`
	MinioEndpoint     string `env:"MINIO_ENDPOINT"`
	BucketName        string `env:"MINIO_BUCKET"`
	MinioRootUser     string `env:"MINIO_USER"`
	MinioRootPassword string `env:"MINIO_PASSWORD"`
	MinioUseSSL       bool   `env:"MINIO_USE_SSL"`
	// SnapshotObject ключ объекта со снимком каталога
	SnapshotObject string `env:"MINIO_SNAPSHOT_OBJECT" env-default:"properties.json"`
}

// SearchConfig параметры поиска по умолчанию.
type SearchConfig struct {
	DefaultPageSize int `env:"SEARCH_DEFAULT_PAGE_SIZE" env-default:"12"`
	MaxPageSize     int `env:"SEARCH_MAX_PAGE_SIZE" env-default:"100"`
	// DefaultRadiusKm радиус, если задана только точка
	DefaultRadiusKm float64 `env:"SEARCH_DEFAULT_RADIUS_KM" env-default:"10"`
	MaxRadiusKm     float64 `env:"SEARCH_MAX_RADIUS_KM" env-default:"500"`
	// SimilarDefaultLimit размер подборки похожих объектов
	SimilarDefaultLimit int `env:"SEARCH_SIMILAR_DEFAULT_LIMIT" env-default:"4"`
	SimilarMaxLimit     int `env:"SEARCH_SIMILAR_MAX_LIMIT" env-default:"20"`
}

// Load читает .env (если есть) и переменные окружения.
func Load() (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read config from environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for storage driver %q", c.Storage.Driver)
		}
	case StorageMongo:
		if c.Storage.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for storage driver %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Search.DefaultPageSize <= 0 || c.Search.MaxPageSize < c.Search.DefaultPageSize {
		return fmt.Errorf("invalid page size settings: default=%d max=%d", c.Search.DefaultPageSize, c.Search.MaxPageSize)
	}
	if c.Search.DefaultRadiusKm <= 0 || c.Search.MaxRadiusKm < c.Search.DefaultRadiusKm {
		return fmt.Errorf("invalid radius settings: default=%v max=%v", c.Search.DefaultRadiusKm, c.Search.MaxRadiusKm)
	}
	if c.Search.SimilarDefaultLimit <= 0 || c.Search.SimilarMaxLimit < c.Search.SimilarDefaultLimit {
		return fmt.Errorf("invalid similar limit settings: default=%d max=%d", c.Search.SimilarDefaultLimit, c.Search.SimilarMaxLimit)
	}
	return nil
}
