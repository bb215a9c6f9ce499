package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"estate_search/internal/app"
	"estate_search/internal/config"
	"estate_search/internal/domain"
	"estate_search/internal/lib/logger/sl"
	"estate_search/internal/lib/snapshot"
	"estate_search/internal/services/search"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API and gRPC health server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := setupLogger(cfg.Env, os.Stdout)
			log.Info("starting estate_search", slog.String("env", cfg.Env))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, log, cfg)
			if err != nil {
				log.Error("failed to init application", sl.Err(err))
				return err
			}

			errCh := make(chan error, 2)
			go func() { errCh <- application.HTTPServer.Run() }()
			go func() { errCh <- application.GRPCServer.Run() }()

			select {
			case <-ctx.Done():
				log.Info("stopping application")
			case err = <-errCh:
				log.Error("server stopped", sl.Err(err))
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			application.GRPCServer.Stop()
			if stopErr := application.HTTPServer.Stop(shutdownCtx); stopErr != nil {
				log.Error("failed to stop http server", sl.Err(stopErr))
			}
			application.Close(shutdownCtx)

			log.Info("application stopped")
			return err
		},
	}
}

func parseFormat(s string) (snapshot.Format, error) {
	switch f := snapshot.Format(s); f {
	case snapshot.FormatJSON, snapshot.FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unsupported output format %q", s)
}

func addFilterFlags(fs *pflag.FlagSet, p *search.FilterParams) {
	fs.StringVar(&p.Status, "status", "", "listing status (ForSale, ForRent, Sold, ...)")
	fs.StringVar(&p.PropertyType, "type", "", "property type")
	fs.StringVar(&p.MinPrice, "min-price", "", "minimum sales price (sale statuses only)")
	fs.StringVar(&p.MaxPrice, "max-price", "", "maximum sales price (sale statuses only)")
	fs.StringVar(&p.MinRent, "min-rent", "", "minimum monthly rent (rent statuses only)")
	fs.StringVar(&p.MaxRent, "max-rent", "", "maximum monthly rent (rent statuses only)")
	fs.StringVar(&p.MinSqft, "min-sqft", "", "minimum square footage")
	fs.StringVar(&p.MaxSqft, "max-sqft", "", "maximum square footage")
	fs.StringVar(&p.Beds, "beds", "", "minimum bedrooms")
	fs.StringVar(&p.Baths, "baths", "", "minimum bathrooms")
	fs.StringVar(&p.City, "city", "", "city")
	fs.StringVar(&p.State, "state", "", "state")
	fs.StringVar(&p.Featured, "featured", "", "featured flag")
	fs.StringVar(&p.IsActive, "active", "", "active flag (defaults to true)")
	fs.StringVar(&p.Furnished, "furnished", "", "furnishing")
	fs.StringVar(&p.PetAllowed, "pets", "", "pets allowed")
	fs.StringVarP(&p.Query, "query", "q", "", "free text")
}

// openEngine поднимает хранилище и сервис поиска; логи идут в stderr.
func openEngine(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := setupLogger(cfg.Env, os.Stderr)
	return app.New(ctx, log, cfg)
}

func newSearchCmd() *cobra.Command {
	var (
		filters        search.FilterParams
		lat, lng       float64
		radius         float64
		page, pageSize int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the catalog by filters, text and radius",
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := search.SearchQuery{
				Filters:  filters,
				Page:     page,
				PageSize: pageSize,
			}
			latSet, lngSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lng")
			if latSet != lngSet {
				return errors.New("--lat and --lng must be set together")
			}
			if latSet {
				q.Origin = &domain.Coordinate{Longitude: lng, Latitude: lat}
			}
			if cmd.Flags().Changed("radius") {
				q.RadiusKm = lo.ToPtr(radius)
			}

			application, err := openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer application.Close(context.Background())

			result, err := application.Search.SearchProperties(cmd.Context(), q)
			if err != nil {
				return err
			}
			return writeHits(cmd.OutOrStdout(), result)
		},
	}

	addFilterFlags(cmd.Flags(), &filters)
	cmd.Flags().Float64Var(&lat, "lat", 0, "origin latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "origin longitude")
	cmd.Flags().Float64Var(&radius, "radius", 0, "radius in km")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "limit", 0, "page size")

	return cmd
}

func newSimilarCmd() *cobra.Command {
	var (
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "similar <property-id>",
		Short: "Show properties similar to the reference one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid property id %q: %w", args[0], err)
			}
			outFormat, err := parseFormat(format)
			if err != nil {
				return err
			}

			application, err := openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer application.Close(context.Background())

			props, err := application.Search.SimilarProperties(cmd.Context(), search.SimilarQuery{
				ReferenceID: id,
				Limit:       limit,
			})
			if err != nil {
				return err
			}
			return snapshot.Encode(cmd.OutOrStdout(), outFormat, lo.Map(props, func(p domain.Property, _ int) snapshot.Record {
				return snapshot.FromDomain(p)
			}))
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "number of similar properties")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")

	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		filters search.FilterParams
		format  string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export matching catalog records as a JSON or YAML snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pred, err := search.Compile(filters)
			if err != nil {
				return err
			}

			outFormat, err := parseFormat(format)
			if err != nil {
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				if !cmd.Flags().Changed("format") {
					if outFormat, err = snapshot.FormatFromName(output); err != nil {
						return err
					}
				}
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			application, err := openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer application.Close(context.Background())

			props, err := application.Store.Find(cmd.Context(), pred, domain.FindOptions{Sort: domain.RecencySort()})
			if err != nil {
				return err
			}
			return snapshot.Encode(w, outFormat, lo.Map(props, func(p domain.Property, _ int) snapshot.Record {
				return snapshot.FromDomain(p)
			}))
		},
	}

	addFilterFlags(cmd.Flags(), &filters)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")

	return cmd
}

func writeHits(w io.Writer, page domain.Page[domain.SearchHit]) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPRICE\tBEDS\tDISTANCE_KM\tTITLE")
	for _, h := range page.Items {
		price := "-"
		if v, _, ok := h.Property.OperativePrice(); ok {
			price = fmt.Sprintf("%.0f", v)
		}
		distance := "-"
		if h.DistanceKm != nil {
			distance = fmt.Sprintf("%.2f", *h.DistanceKm)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			h.Property.ID, h.Property.Status, price, h.Property.BasicInfo.Beds, distance, h.Property.Title)
	}
	fmt.Fprintf(tw, "\npage %d/%d, total %d\n", page.Page, page.TotalPages, page.Total)
	return tw.Flush()
}
