package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/msto63/kurswerk/internal/catalog"
	"github.com/msto63/kurswerk/internal/pipeline"
	"github.com/msto63/kurswerk/internal/render"
	"github.com/msto63/kurswerk/internal/store"
)

var (
	scrapeOutput  string
	scrapeFormat  string
	scrapeWorkers int
	scrapeMin     int
	scrapeMax     int
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [url]",
	Short: "Katalog laden und Voraussetzungen extrahieren",
	Long: `Lädt eine Katalogseite, parst die Voraussetzungen jedes Kurses und
speichert das Ergebnis als JSON-Datei oder in einer SQLite-Datenbank.

Ohne URL wird catalog.url aus der Konfiguration verwendet.

Beispiele:
  kurswerk scrape
  kurswerk scrape --min 1 --max 199
  kurswerk scrape --format sqlite --output ./data/courses.db
  kurswerk scrape https://example.edu/catalog/cse/`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVarP(&scrapeOutput, "output", "o", "", "Ausgabepfad (default: output.path)")
	scrapeCmd.Flags().StringVarP(&scrapeFormat, "format", "f", "", "Ausgabeformat: json oder sqlite (default: output.format)")
	scrapeCmd.Flags().IntVarP(&scrapeWorkers, "workers", "w", 0, "Anzahl paralleler Parser (default: pipeline.workers)")
	scrapeCmd.Flags().IntVar(&scrapeMin, "min", 0, "Kleinste Kursnummer")
	scrapeCmd.Flags().IntVar(&scrapeMax, "max", 0, "Größte Kursnummer (0 = unbegrenzt)")
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.Format = scrapeFormat
		if !flags.Changed("output") && cfg.Output.Format == store.FormatSQLite {
			cfg.Output.Path = store.DefaultSQLiteConfig().Path
		}
	}
	if flags.Changed("output") {
		cfg.Output.Path = scrapeOutput
	}
	if flags.Changed("workers") {
		cfg.Pipeline.Workers = scrapeWorkers
	}
	if flags.Changed("min") {
		cfg.Catalog.ScopeMin = scrapeMin
	}
	if flags.Changed("max") {
		cfg.Catalog.ScopeMax = scrapeMax
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	url := cfg.Catalog.URL
	if len(args) == 1 {
		url = args[0]
	}

	st, err := store.Open(cfg.Output.Format, cfg.Output.Path)
	if err != nil {
		return fmt.Errorf("Ausgabe konnte nicht geöffnet werden: %w", err)
	}
	defer st.Close()

	scraper := catalog.NewScraper(catalog.Config{
		Timeout:   cfg.Catalog.Timeout.Duration,
		UserAgent: cfg.Catalog.UserAgent,
	}).WithLogger(newLogger(cfg, "catalog"))

	p := pipeline.New(scraper, st, pipeline.Config{
		Workers: cfg.Pipeline.Workers,
		Scope:   catalog.Scope{Min: cfg.Catalog.ScopeMin, Max: cfg.Catalog.ScopeMax},
	}).WithLogger(newLogger(cfg, "pipeline"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := p.Run(ctx, url)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), render.RunSummary(newStyles(cmd), render.Summary{
		RunID:    result.RunID,
		Source:   result.Source,
		Output:   cfg.Output.Format + ":" + cfg.Output.Path,
		Courses:  result.Courses,
		Skipped:  result.Skipped,
		Dropped:  result.Dropped,
		Duration: result.Duration,
	}))
	return nil
}
