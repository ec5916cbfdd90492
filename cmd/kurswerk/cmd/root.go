package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/msto63/kurswerk/internal/render"
	"github.com/msto63/kurswerk/pkg/core/config"
	kwerror "github.com/msto63/kurswerk/pkg/core/error"
	"github.com/msto63/kurswerk/pkg/core/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "kurswerk",
	Short: "kurswerk - Voraussetzungen aus Kurskatalogen extrahieren",
	Long: `kurswerk liest einen Kurskatalog und wandelt die Voraussetzungs-Sätze
jedes Kurses in einen strukturierten AND/OR-Baum um.

Befehle:
  scrape   - Katalog laden, parsen und speichern
  parse    - Einzelnen Voraussetzungs-Satz parsen
  show     - Gespeicherten Baum eines Kurses anzeigen
  runs     - Gespeicherte Läufe auflisten`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.ErrOrStderr(), "kurswerk", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config-Datei (default: ./configs/kurswerk.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose Output")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.General.LogLevel = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, name string) *logging.Logger {
	return logging.NewLogger(logging.LoggerConfig{
		Name:   name,
		Level:  cfg.General.LogLevel,
		Format: cfg.General.LogFormat,
	})
}

func newStyles(cmd *cobra.Command) render.Styles {
	return render.NewStyles(lipgloss.NewRenderer(cmd.OutOrStdout()))
}

// printError writes err to w. With --verbose a coded error is printed with
// its code, severity and details.
func printError(w io.Writer, msg string, err error) {
	fmt.Fprintf(w, "Fehler: %s: %v\n", msg, err)

	var e *kwerror.Error
	if verbose && errors.As(err, &e) {
		fmt.Fprintln(w, e.String())
	}
}
