package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/msto63/kurswerk/internal/store"
)

var runsPrune int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Gespeicherte Läufe auflisten",
	Long: `Listet die in der SQLite-Datenbank gespeicherten Läufe, neueste zuerst.

Beispiele:
  kurswerk runs
  kurswerk runs --prune 5     # nur die fünf neuesten Läufe behalten`,
	Args: cobra.NoArgs,
	RunE: runRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().IntVar(&runsPrune, "prune", 0, "Nur die N neuesten Läufe behalten")
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Output.Format != store.FormatSQLite {
		return fmt.Errorf("runs benötigt output.format = sqlite")
	}

	st, err := store.NewSQLiteStore(store.SQLiteConfig{Path: cfg.Output.Path})
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	if cmd.Flags().Changed("prune") {
		if runsPrune < 1 {
			return fmt.Errorf("--prune muss mindestens 1 sein")
		}
		deleted, err := st.Prune(ctx, runsPrune)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d Lauf/Läufe gelöscht.\n\n", deleted)
	}

	runs, err := st.Runs(ctx)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "Keine Läufe gespeichert.")
		return nil
	}

	fmt.Fprintf(out, "%-36s  %-19s  %6s  %s\n", "RUN", "GESTARTET", "KURSE", "QUELLE")
	fmt.Fprintln(out, strings.Repeat("-", 90))
	for _, r := range runs {
		fmt.Fprintf(out, "%-36s  %-19s  %6d  %s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.CourseCount, r.Source)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Gesamt: %d Lauf/Läufe\n", len(runs))
	return nil
}
