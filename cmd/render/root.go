package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"structured_markup/internal/adapters/observability"
	"structured_markup/internal/app"
	"structured_markup/internal/domain"
	"structured_markup/internal/schema"
	"structured_markup/internal/storage/memory"
	mysqlrepo "structured_markup/internal/storage/mysql"
)

var (
	pc          domain.PageContext
	recordsFile string
	dsn         string
	nameGated   bool
	asJSON      bool
	appEnv      string
)

var rootCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the JSON-LD blocks for a page context",
	Long: `render assembles the LocalBusiness documents that apply to a page and
prints them to stdout as <script type="application/ld+json"> blocks.

Records come from MySQL (--dsn or MYSQL_DSN) or, with --records, from a JSON
file holding an admin export array.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runRender,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.Flags().BoolVar(&pc.Home, "home", false, "page is the front page")
	rootCmd.Flags().BoolVar(&pc.SinglePost, "post", false, "page is a single post")
	rootCmd.Flags().BoolVar(&pc.EventPost, "event", false, "page is a single event post")
	rootCmd.Flags().BoolVar(&pc.Page, "page", false, "page is a static page")
	rootCmd.Flags().StringVarP(&recordsFile, "records", "r", "", "read records from an export JSON file instead of MySQL")
	rootCmd.Flags().StringVar(&dsn, "dsn", "", "MySQL DSN (defaults to MYSQL_DSN)")
	rootCmd.Flags().BoolVar(&nameGated, "name-gated", false, "blank every field but the logo unless a name is stored")
	rootCmd.Flags().BoolVar(&asJSON, "json", false, "print the documents as a JSON array instead of script blocks")
}

func initConfig() {
	_ = godotenv.Load()
	appEnv = os.Getenv("APP_ENV")
	log.Logger = observability.NewStderrLogger(appEnv)
	if dsn == "" {
		dsn = os.Getenv("MYSQL_DSN")
	}
	if v := os.Getenv("SCHEMA_NAME_GATED"); v == "1" || v == "true" || v == "on" {
		nameGated = true
	}
}

func runRender(cmd *cobra.Command, _ []string) error {
	repo, err := openRepo(cmd.Context())
	if err != nil {
		return err
	}

	mode := schema.GatePerField
	if nameGated {
		mode = schema.GateOnName
	}
	svc := app.NewRenderService(repo, nil, 0, schema.DefaultRegistry(mode))
	out := cmd.OutOrStdout()

	if asJSON {
		docs := svc.Documents(cmd.Context(), pc)
		if docs == nil {
			docs = []schema.Document{}
		}
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "    ")
		return enc.Encode(docs)
	}

	n := svc.Render(cmd.Context(), pc, out)
	log.Debug().Int("documents", n).Msg("render done")
	return nil
}

func openRepo(ctx context.Context) (domain.RecordRepository, error) {
	if recordsFile != "" {
		b, err := os.ReadFile(recordsFile)
		if err != nil {
			return nil, fmt.Errorf("read records file: %w", err)
		}
		var payload []domain.ExportItem
		if err := json.Unmarshal(b, &payload); err != nil {
			return nil, fmt.Errorf("parse records file %s: %w", recordsFile, err)
		}
		repo := memory.New()
		if err := repo.UpsertRecords(ctx, app.RecordsFromExport(payload)); err != nil {
			return nil, err
		}
		return repo, nil
	}

	if dsn == "" {
		return nil, fmt.Errorf("no record source: pass --records or set --dsn / MYSQL_DSN")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	return mysqlrepo.New(db), nil
}
