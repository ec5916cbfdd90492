package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/msto63/kurswerk/internal/prereq"
	"github.com/msto63/kurswerk/internal/render"
	"github.com/msto63/kurswerk/internal/store"
	kwerror "github.com/msto63/kurswerk/pkg/core/error"
)

var (
	showJSON       bool
	showDependents bool
)

var showCmd = &cobra.Command{
	Use:   "show <kurs>",
	Short: "Gespeicherten Baum eines Kurses anzeigen",
	Long: `Zeigt den zuletzt gespeicherten Voraussetzungs-Baum eines Kurses.
Gelesen wird aus output.path im konfigurierten Format.

Beispiele:
  kurswerk show "CSE 101"
  kurswerk show CSE 101 --json
  kurswerk show CSE 12 --dependents     # nur SQLite`,
	Args: cobra.MinimumNArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().BoolVar(&showJSON, "json", false, "Als JSON ausgeben")
	showCmd.Flags().BoolVarP(&showDependents, "dependents", "d", false, "Kurse auflisten, die diesen Kurs voraussetzen")
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	code := strings.Join(args, " ")
	ctx := context.Background()

	st, err := store.Open(cfg.Output.Format, cfg.Output.Path)
	if err != nil {
		return fmt.Errorf("Ausgabe konnte nicht geöffnet werden: %w", err)
	}
	defer st.Close()

	loader, ok := st.(store.Loader)
	if !ok {
		return fmt.Errorf("Format %s unterstützt kein Lesen", cfg.Output.Format)
	}

	rec, err := loader.Load(ctx, code)
	if kwerror.HasCode(err, kwerror.CodeNotFound) {
		return fmt.Errorf("Kurs %s nicht gefunden, zuerst kurswerk scrape ausführen: %w", code, err)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if showJSON {
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("Kurs konnte nicht serialisiert werden: %w", err)
		}
		fmt.Fprintln(out, string(data))
	} else {
		styles := newStyles(cmd)
		title := rec.Code
		if rec.Title != "" {
			title += " " + rec.Title
		}
		fmt.Fprintln(out, render.Tree(styles, title, rec.Tree()))
		if refs := prereq.Courses(rec.Tree()); len(refs) > 0 {
			fmt.Fprintf(out, "\n%s %s\n", styles.Label.Render("Referenziert:"), strings.Join(refs, ", "))
		}
	}

	if !showDependents {
		return nil
	}

	sqlite, ok := st.(*store.SQLiteStore)
	if !ok {
		return fmt.Errorf("--dependents benötigt output.format = sqlite")
	}
	deps, err := sqlite.Dependents(ctx, rec.Code)
	if err != nil {
		return err
	}
	if len(deps) == 0 {
		fmt.Fprintln(out, "Kein Kurs setzt diesen Kurs voraus.")
		return nil
	}
	fmt.Fprintf(out, "Vorausgesetzt von: %s\n", strings.Join(deps, ", "))
	return nil
}
