package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"masapos/backend/internal/domain"
	"masapos/backend/internal/httpapi"
	"masapos/backend/internal/salesession"
	"masapos/backend/internal/service"
	"masapos/backend/internal/store"
	"masapos/backend/internal/store/memory"
	pgstore "masapos/backend/internal/store/postgres"
	"masapos/backend/pkg/logger"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Database connection string",
		EnvVars: []string{"DATABASE_URL"},
	}
}

func reportFlags() []cli.Flag {
	return []cli.Flag{
		newDBURLFlag(),
		&cli.StringFlag{
			Name:  "file",
			Usage: "JSON file with an array of sale records (used instead of the database)",
		},
		&cli.StringFlag{Name: "from", Usage: "First sale date to include (YYYY-MM-DD or DD.MM.YYYY)"},
		&cli.StringFlag{Name: "to", Usage: "Last sale date to include (YYYY-MM-DD or DD.MM.YYYY)"},
		&cli.IntFlag{
			Name:    "max-gap",
			Usage:   "Largest gap in minutes between two payments of the same session",
			Value:   int(salesession.DefaultMaxGap / time.Minute),
			EnvVars: []string{"SESSION_MAX_GAP_MINUTES"},
		},
		&cli.IntFlag{
			Name:    "closing-min-items",
			Usage:   "Line count that marks a payment as closing its session (0 disables the rule)",
			Value:   salesession.DefaultClosingMinItems,
			EnvVars: []string{"SESSION_CLOSING_MIN_ITEMS"},
		},
	}
}

func main() {
	// stdout carries the report JSON
	logger.UseJSON(os.Stderr)
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("no .env file loaded")
	}
	logger.SetLevel(os.Getenv("LOG_LEVEL"))

	app := &cli.App{
		Name:  "salesreport",
		Usage: "Rebuild table sessions and sales reports from stored payments",
		Commands: []*cli.Command{
			{
				Name:   "sessions",
				Usage:  "Print reconstructed sale entries",
				Flags:  reportFlags(),
				Action: runReport("sessions"),
			},
			{
				Name:   "products",
				Usage:  "Print the product performance report",
				Flags:  reportFlags(),
				Action: runReport("products"),
			},
			{
				Name:   "staff",
				Usage:  "Print the staff performance report",
				Flags:  reportFlags(),
				Action: runReport("staff"),
			},
			{
				Name:  "add-user",
				Usage: "Create a login account in the database",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "role", Value: "cashier", Usage: "admin or cashier"},
				},
				Action: runAddUser,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("salesreport failed")
	}
}

func runReport(kind string) cli.ActionFunc {
	return func(c *cli.Context) error {
		repo, closeRepo, err := openSales(c)
		if err != nil {
			return err
		}
		defer closeRepo()

		if c.Int("max-gap") < 1 {
			return fmt.Errorf("--max-gap must be at least 1 minute")
		}
		svc := service.New(repo, nil, service.Options{
			MaxGap:          time.Duration(c.Int("max-gap")) * time.Minute,
			ClosingMinItems: c.Int("closing-min-items"),
		})
		filter := domain.ReportFilter{From: c.String("from"), To: c.String("to")}

		var out any
		switch kind {
		case "sessions":
			out, err = svc.Sessions(c.Context, filter)
		case "products":
			out, err = svc.ProductReport(c.Context, filter)
		case "staff":
			out, err = svc.StaffReport(c.Context, filter)
		default:
			return fmt.Errorf("unknown report %q", kind)
		}
		if err != nil {
			return err
		}
		return writeJSON(c.App.Writer, out)
	}
}

// openSales prefers --file over the database so reports can run on exported data.
func openSales(c *cli.Context) (store.SalesRepository, func(), error) {
	if path := strings.TrimSpace(c.String("file")); path != "" {
		records, err := loadRecords(path)
		if err != nil {
			return nil, nil, err
		}
		return memory.New(records), func() {}, nil
	}

	dbURL := strings.TrimSpace(c.String("db-url"))
	if dbURL == "" {
		return nil, nil, fmt.Errorf("either --file or --db-url is required")
	}
	ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
	defer cancel()
	pg, err := pgstore.New(ctx, dbURL)
	if err != nil {
		return nil, nil, err
	}
	return pg, func() {
		if err := pg.Close(); err != nil {
			logger.Log.Warn().Err(err).Msg("close database")
		}
	}, nil
}

func loadRecords(path string) ([]domain.SaleRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sales file: %w", err)
	}
	defer f.Close()
	return decodeRecords(f)
}

func decodeRecords(r io.Reader) ([]domain.SaleRecord, error) {
	var records []domain.SaleRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode sales file: %w", err)
	}
	for i := range records {
		if strings.TrimSpace(records[i].ID) == "" {
			records[i].ID = fmt.Sprintf("file-%d", i+1)
		}
	}
	return records, nil
}

func runAddUser(c *cli.Context) error {
	role := strings.ToLower(strings.TrimSpace(c.String("role")))
	if role != "admin" && role != "cashier" {
		return fmt.Errorf("role must be admin or cashier")
	}
	username := strings.ToLower(strings.TrimSpace(c.String("username")))
	if username == "" || len(c.String("password")) < 8 {
		return fmt.Errorf("username is required and password must be at least 8 characters")
	}

	dbURL := strings.TrimSpace(c.String("db-url"))
	if dbURL == "" {
		return fmt.Errorf("--db-url is required")
	}
	pg, err := pgstore.New(c.Context, dbURL)
	if err != nil {
		return err
	}
	defer pg.Close()
	if err := pg.EnsureSchema(c.Context); err != nil {
		return err
	}

	hash, err := httpapi.HashPassword(c.String("password"))
	if err != nil {
		return err
	}
	if err := pg.CreateUser(c.Context, domain.UserAccount{
		Username:  username,
		Password:  hash,
		Role:      role,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return err
	}
	logger.Log.Info().Str("username", username).Str("role", role).Msg("user created")
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
