package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"estate_search/internal/domain"
	"estate_search/internal/lib/logger/sl"
	minio "estate_search/internal/lib/minio/core"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

const defaultBatchSize = 500

// Format формат файла снимка.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromName определяет формат по расширению.
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported snapshot format %q", name)
}

// Decode читает список записей. Неизвестные поля считаются ошибкой формата:
// опечатка в имени поля иначе молча дала бы объект без цены или координат.
func Decode(r io.Reader, format Format) ([]Record, error) {
	var records []Record
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("failed to parse json snapshot: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&records); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse yaml snapshot: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported snapshot format %q", format)
	}
	return records, nil
}

// Encode пишет список записей.
func Encode(w io.Writer, format Format, records []Record) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported snapshot format %q", format)
}

// Sink хранилище, в которое загружается снимок.
type Sink interface {
	Upsert(ctx context.Context, props ...domain.Property) error
}

// Stats итог загрузки.
type Stats struct {
	Total   int
	Loaded  int
	Skipped int
}

// Loader загружает снимок каталога в хранилище. Невалидные записи пропускаются
// с предупреждением, ошибка хранилища прерывает загрузку.
type Loader struct {
	log       *slog.Logger
	batchSize int
}

func NewLoader(log *slog.Logger) *Loader {
	return &Loader{log: log, batchSize: defaultBatchSize}
}

// Load читает снимок из r и пишет его в sink пачками.
func (l *Loader) Load(ctx context.Context, r io.Reader, format Format, sink Sink) (Stats, error) {
	const op = "snapshot.Loader.Load"
	log := l.log.With(slog.String("op", op))

	records, err := Decode(r, format)
	if err != nil {
		return Stats{}, fmt.Errorf("%s: %w", op, err)
	}

	stats := Stats{Total: len(records)}
	props := make([]domain.Property, 0, len(records))
	for i, rec := range records {
		p, err := rec.ToDomain()
		if err != nil {
			stats.Skipped++
			log.Warn("skipping invalid snapshot record",
				slog.Int("index", i),
				slog.String("id", rec.ID),
				sl.Err(err),
			)
			continue
		}
		props = append(props, p)
	}

	for _, batch := range lo.Chunk(props, l.batchSize) {
		if err := sink.Upsert(ctx, batch...); err != nil {
			return stats, fmt.Errorf("%s: %w", op, err)
		}
		stats.Loaded += len(batch)
	}

	log.Info("snapshot loaded",
		slog.Int("total", stats.Total),
		slog.Int("loaded", stats.Loaded),
		slog.Int("skipped", stats.Skipped),
	)
	return stats, nil
}

// LoadFile загружает снимок из локального файла; формат по расширению.
func (l *Loader) LoadFile(ctx context.Context, path string, sink Sink) (Stats, error) {
	const op = "snapshot.Loader.LoadFile"

	format, err := FormatFromName(path)
	if err != nil {
		return Stats{}, fmt.Errorf("%s: %w", op, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	return l.Load(ctx, f, format, sink)
}

// LoadObject загружает снимок из объекта MinIO; формат по расширению ключа.
func (l *Loader) LoadObject(ctx context.Context, client minio.Client, objectName string, sink Sink) (Stats, error) {
	const op = "snapshot.Loader.LoadObject"

	format, err := FormatFromName(objectName)
	if err != nil {
		return Stats{}, fmt.Errorf("%s: %w", op, err)
	}

	obj, err := client.GetObject(ctx, objectName)
	if err != nil {
		return Stats{}, fmt.Errorf("%s: %w", op, err)
	}
	defer obj.Close()

	return l.Load(ctx, obj, format, sink)
}
