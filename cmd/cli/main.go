package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"journeygrid/adapters/source"
	"journeygrid/app"
	domain "journeygrid/domain/journey"
	"journeygrid/internal"
	"journeygrid/internal/config"
	"journeygrid/internal/journey"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type sourceFlags struct {
	url        string
	gid        string
	file       string
	sheet      string
	timeout    time.Duration
	maxBytes   int64
	highlights string
	logLevel   string
}

func main() {
	_ = godotenv.Load()

	flags := &sourceFlags{}
	rootCmd := &cobra.Command{
		Use:   "journeygrid-cli",
		Short: "Inspect a journey grid table from the command line",
		Long: `Load a published journey CSV (or a local .csv/.xlsx file) and print its axes,
the stage x stakeholder grid, or the condensed highlights of one card.

Source settings default to JOURNEY_CSV_URL, JOURNEY_CSV_GID, JOURNEY_SOURCE_FILE
and JOURNEY_SHEET; flags override them.`,
		SilenceUsage: true,
	}

	env := config.LoadSource()
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.url, "url", env.URL, "Published CSV URL")
	pf.StringVar(&flags.gid, "gid", env.GID, "Google Sheets tab gid")
	pf.StringVar(&flags.file, "file", env.File, "Local .csv or .xlsx file, used when --url is empty")
	pf.StringVar(&flags.sheet, "sheet", env.Sheet, "Worksheet name for .xlsx files")
	pf.DurationVar(&flags.timeout, "timeout", env.Timeout, "Fetch timeout")
	pf.Int64Var(&flags.maxBytes, "max-bytes", env.MaxBytes, "Maximum source size in bytes")
	pf.StringVar(&flags.highlights, "highlights", os.Getenv("JOURNEY_HIGHLIGHTS_FILE"), "YAML highlight policy file")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "Log level: error|warn|info|debug|trace")

	rootCmd.AddCommand(
		newAxesCmd(flags),
		newGridCmd(flags),
		newHighlightsCmd(flags),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAxesCmd(flags *sourceFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "axes",
		Short: "List the ordered stages and stakeholders with per-stage counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, snap, err := load(cmd, flags)
			if err != nil {
				return err
			}
			return printAxes(cmd.OutOrStdout(), snap)
		},
	}
}

func newGridCmd(flags *sourceFlags) *cobra.Command {
	var stages, stakeholders []string
	var condensed, asJSON bool

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Print the stage x stakeholder grid",
		Long: `Print the pruned grid for a selection. Without --stage or --stakeholder every
value of that axis is selected.

Example: journeygrid-cli grid --file journey.csv --stage Aware --stage Consider --condensed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := load(cmd, flags)
			if err != nil {
				return err
			}
			state, err := svc.NewSession()
			if err != nil {
				return err
			}
			if err := selectOnly(svc, state, domain.AxisStage, stages); err != nil {
				return err
			}
			if err := selectOnly(svc, state, domain.AxisStakeholder, stakeholders); err != nil {
				return err
			}

			view, err := svc.DeriveGrid(state.ID)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"view": view, "rows": view.Rows()})
			}
			return printGrid(cmd.OutOrStdout(), svc, view, condensed)
		},
	}

	cmd.Flags().StringArrayVar(&stages, "stage", nil, "Stage to select (repeatable)")
	cmd.Flags().StringArrayVar(&stakeholders, "stakeholder", nil, "Stakeholder to select (repeatable)")
	cmd.Flags().BoolVar(&condensed, "condensed", false, "Show only the highlighted fields of each card")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the derived grid as JSON")
	return cmd
}

func newHighlightsCmd(flags *sourceFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "highlights [stage] [stakeholder]",
		Short: "Show which fields the condensed card for one cell displays",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := load(cmd, flags)
			if err != nil {
				return err
			}
			rec, err := svc.RecordAt(args[0], args[1])
			if err != nil {
				return err
			}
			reg := svc.Registry()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range svc.HighlightsFor(rec) {
				fmt.Fprintf(w, "%s\t%s\n", name, fieldText(reg, rec, name))
			}
			return w.Flush()
		},
	}
}

func load(cmd *cobra.Command, flags *sourceFlags) (*app.JourneyService, *app.Snapshot, error) {
	if flags.url == "" && flags.file == "" {
		return nil, nil, fmt.Errorf("one of --url or --file is required")
	}

	policy := domain.DefaultHighlightPolicy()
	if flags.highlights != "" {
		p, err := config.LoadHighlightPolicy(flags.highlights)
		if err != nil {
			return nil, nil, err
		}
		policy = p
	}

	logger := internal.NewLogger(internal.ParseLogLevel(flags.logLevel), cmd.ErrOrStderr())
	src := source.New(config.SourceConfig{
		URL:      flags.url,
		GID:      flags.gid,
		File:     flags.file,
		Sheet:    flags.sheet,
		Timeout:  flags.timeout,
		MaxBytes: flags.maxBytes,
	}, logger)

	reg := domain.DefaultRegistry()
	svc := app.NewJourneyService(src, reg, policy, logger)
	snap, err := svc.Reload(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return svc, snap, nil
}

// selectOnly narrows an axis to values; an empty list keeps everything selected
func selectOnly(svc *app.JourneyService, state app.SessionState, axis domain.Axis, values []string) error {
	if len(values) == 0 {
		return nil
	}
	if _, err := svc.Clear(state.ID, axis); err != nil {
		return err
	}
	for _, v := range values {
		current, err := svc.Session(state.ID)
		if err != nil {
			return err
		}
		set := current.Stages
		if axis == domain.AxisStakeholder {
			set = current.Stakeholders
		}
		if set.Has(v) {
			continue
		}
		if !set.Axis().Contains(v) {
			return fmt.Errorf("unknown %s %q (known: %s)", axis, v, strings.Join(set.Axis(), ", "))
		}
		if _, err := svc.Toggle(state.ID, axis, v); err != nil {
			return err
		}
	}
	return nil
}

func printAxes(out io.Writer, snap *app.Snapshot) error {
	res := snap.Result
	fmt.Fprintf(out, "📊 %d records from %s\n", len(res.Records), snap.Origin)
	if len(res.MissingAxisColumns) > 0 {
		fmt.Fprintf(out, "⚠️  missing columns: %s\n", strings.Join(res.MissingAxisColumns, ", "))
	}

	fmt.Fprintf(out, "\nStakeholders: %s\n\n", strings.Join(res.StakeholderAxis, ", "))

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STAGE\tCARDS\tSTAKEHOLDERS\tSATISFACTION")
	for _, s := range snap.Stages {
		score := "-"
		if sat := s.Satisfaction; sat != nil {
			if sat.Scale == journey.ScaleFraction {
				score = fmt.Sprintf("%.0f%% (n=%d)", sat.Mean*100, sat.Count)
			} else {
				score = fmt.Sprintf("%.2f (n=%d)", sat.Mean, sat.Count)
			}
			if sat.Excluded > 0 {
				score += fmt.Sprintf(", %d on another scale", sat.Excluded)
			}
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", s.Stage, s.Cards, s.Stakeholders, score)
	}
	return w.Flush()
}

func printGrid(out io.Writer, svc *app.JourneyService, view domain.GridView, condensed bool) error {
	if view.VisibleCount == 0 {
		fmt.Fprintln(out, "No cards match the current selection.")
		return nil
	}

	reg := svc.Registry()
	expanded := reg.ExpandedOrder()
	for _, row := range view.Rows() {
		fmt.Fprintf(out, "== %s ==\n", row.Stage)
		for _, cell := range row.Cells {
			if cell.Empty {
				fmt.Fprintf(out, "  [%s] (no card)\n", cell.Stakeholder)
				continue
			}
			fmt.Fprintf(out, "  [%s]\n", cell.Stakeholder)

			var fields []string
			if condensed {
				fields = svc.HighlightsFor(cell.Record)
			} else {
				fields = expanded
			}
			for _, name := range fields {
				if text := fieldText(reg, cell.Record, name); text != "" {
					fmt.Fprintf(out, "    %s: %s\n", name, text)
				}
			}
		}
	}
	if view.Collisions > 0 {
		fmt.Fprintf(out, "\n%d card(s) hidden behind later rows for the same cell\n", view.Collisions)
	}
	return nil
}

func fieldText(reg *domain.Registry, rec *domain.Record, name string) string {
	spec, ok := reg.Lookup(name)
	if !ok {
		return ""
	}
	return spec.Value(rec).String()
}
