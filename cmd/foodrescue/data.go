package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/erazemk/foodrescue/internal/model"
	"github.com/erazemk/foodrescue/internal/report"
)

func newImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Append posts from a CSV table",
		Long: `Append posts from a CSV table with a header row, such as an older
surplus.csv. Columns are matched by name; rows whose id is missing or already
stored are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			database, err := a.openDB()
			if err != nil {
				return err
			}
			defer database.Close()

			res, err := a.postStore(database).Import(context.Background(), f)
			if err != nil {
				return err
			}
			slog.Info("posts imported", "file", args[0], "imported", res.Imported, "skipped", res.Skipped)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d posts, skipped %d.\n", res.Imported, res.Skipped)
			return nil
		},
	}
}

func newExportCommand(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all posts as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.openDB()
			if err != nil {
				return err
			}
			defer database.Close()

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			if err := a.postStore(database).Export(context.Background(), w); err != nil {
				return err
			}
			if out != "" {
				slog.Info("posts exported", "file", out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newSummaryCommand(a *app) *cobra.Command {
	var asJSON bool
	var lang string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the impact dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.openDB()
			if err != nil {
				return err
			}
			defer database.Close()

			posts, err := a.postStore(database).LoadAll(context.Background())
			if err != nil {
				return err
			}
			d := report.Summarize(posts, a.cfg.TopN)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(d)
			}

			tag, err := language.Parse(lang)
			if err != nil {
				return fmt.Errorf("unknown language %q: %w", lang, err)
			}
			printSummary(cmd.OutOrStdout(), message.NewPrinter(tag), d)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	cmd.Flags().StringVar(&lang, "lang", "en-IN", "language tag for number formatting")
	return cmd
}

func printSummary(w io.Writer, p *message.Printer, d report.Dashboard) {
	p.Fprintf(w, "Meals rescued:   %d\n", d.CompletedMeals)
	p.Fprintf(w, "Posts:           %d\n", d.Total)
	p.Fprintf(w, "  open %d, claimed %d, completed %d, expired %d\n", d.Open, d.Claimed, d.Completed, d.Expired)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Meals by status:")
	for _, s := range model.Statuses {
		p.Fprintf(w, "  %-10s %d\n", s, d.MealsByStatus[s])
	}

	printBoard(w, p, "Top donors:", d.TopDonors)
	printBoard(w, p, "Top volunteers:", d.TopVolunteers)
}

func printBoard(w io.Writer, p *message.Printer, title string, rows []report.Contributor) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, title)
	if len(rows) == 0 {
		fmt.Fprintln(w, "  (none yet)")
		return
	}
	for i, c := range rows {
		p.Fprintf(w, "  %d. %s: %d meals\n", i+1, c.Name, c.Meals)
	}
}
