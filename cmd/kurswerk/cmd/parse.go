package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/msto63/kurswerk/internal/prereq"
	"github.com/msto63/kurswerk/internal/render"
)

var (
	parseTree   bool
	parseReport bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <satz>",
	Short: "Voraussetzungs-Satz parsen",
	Long: `Parst einen einzelnen Voraussetzungs-Satz und gibt den Baum als JSON aus.
Mit "-" werden Sätze zeilenweise von stdin gelesen.

Beispiele:
  kurswerk parse "CSE 12 or BME 160; and CSE 16"
  kurswerk parse --tree "MATH 3 or mathematics placement examination (MPE) score of 300"
  cat saetze.txt | kurswerk parse -`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVarP(&parseTree, "tree", "t", false, "Als Baum ausgeben")
	parseCmd.Flags().BoolVarP(&parseReport, "report", "r", false, "Verworfene Teilsätze auf stderr melden")
}

func runParse(cmd *cobra.Command, args []string) error {
	if len(args) == 1 && args[0] == "-" {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if err := printParsed(cmd, line); err != nil {
				return err
			}
		}
		return scanner.Err()
	}

	return printParsed(cmd, strings.Join(args, " "))
}

func printParsed(cmd *cobra.Command, sentence string) error {
	expr, report := prereq.ParseWithReport(sentence)

	if parseReport {
		printReport(cmd.ErrOrStderr(), report)
	}

	out := cmd.OutOrStdout()
	if parseTree {
		fmt.Fprintln(out, render.Tree(newStyles(cmd), sentence, expr))
		return nil
	}

	data, err := json.Marshal(expr)
	if err != nil {
		return fmt.Errorf("Baum konnte nicht serialisiert werden: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}

func printReport(w io.Writer, report prereq.Report) {
	for _, d := range report.Dropped {
		fmt.Fprintf(w, "verworfen (%s): %q\n", d.Reason, strings.TrimSpace(d.Clause))
	}
}
