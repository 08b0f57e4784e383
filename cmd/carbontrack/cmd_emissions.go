package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/carbontrack/internal/app"
	"github.com/carbontrack/internal/chart"
	"github.com/carbontrack/internal/ledger"
	"github.com/carbontrack/internal/types"
)

var (
	emissionForm ledger.EmissionForm
	chartMode    string
)

var emissionsCmd = &cobra.Command{
	Use:     "emissions",
	Aliases: []string{"em"},
	Short:   "List and record emissions",
}

var emissionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded emissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := client.Controller.Snapshot()
		t := newTable(fmt.Sprintf("Emissions (%s)", snap.Source), "ID", "DATE", "CATEGORY", "ACTIVITY", "AMOUNT", "CO₂ KG")
		for _, e := range snap.Entries {
			id := e.ID
			if e.LocalOnly {
				id += mutedStyle.Render(" (local)")
			}
			t.add(id, e.Date, string(e.Category), e.Activity,
				fmt.Sprintf("%.2f %s", e.Amount, e.Unit), fmt.Sprintf("%.2f", e.Value()))
		}
		t.render(cmd.OutOrStdout())
		return nil
	},
}

var emissionsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record one emission",
	Long: `Record one emission. The CO₂ equivalent is calculated by the server;
when it cannot be reached the entry is kept locally and synced later.`,
	Example: `  carbontrack emissions add --category transportation --activity car_gasoline_medium --amount 42
  carbontrack emissions add --category food --activity beef --amount 0.5 --date 2025-09-14`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := opContext(cmd)
		defer cancel()
		return client.Controller.AddEmission(ctx, emissionForm)
	},
}

var emissionsActivitiesCmd = &cobra.Command{
	Use:   "activities <category>",
	Short: "Show the activities offered for a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := types.ParseCategory(args[0])
		if err != nil {
			return err
		}
		t := newTable("Activities: "+string(cat), "KEY", "NAME", "UNIT", "EXAMPLE")
		for _, a := range app.ActivityOptions(cat) {
			t.add(a.Key, a.Name, a.Unit, a.Example)
		}
		t.render(cmd.OutOrStdout())
		return nil
	},
}

var emissionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove an emission from the list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := opContext(cmd)
		defer cancel()
		return client.Controller.DeleteEmission(ctx, args[0])
	},
}

var emissionsSampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Fill the list with realistic sample data",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := opContext(cmd)
		defer cancel()
		return client.Controller.CreateSampleData(ctx)
	},
}

var emissionsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Send locally saved emissions to the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := opContext(cmd)
		defer cancel()
		report, err := client.Controller.SyncOutbox(ctx)
		fmt.Fprintf(cmd.OutOrStdout(), "synced %d, failed %d, pending %d\n", report.Synced, report.Failed, report.Pending)
		return err
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show totals and progress towards the monthly target",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := client.Controller.Snapshot()
		w := cmd.OutOrStdout()
		agg := snap.Aggregates

		fmt.Fprintln(w, titleStyle.Render("Carbon footprint"))
		fmt.Fprintf(w, "  total:       %.1f kg CO₂\n", agg.Total)
		fmt.Fprintf(w, "  %-12s %.1f kg CO₂\n", agg.Month+":", agg.Monthly)
		fmt.Fprintf(w, "  target:      %.0f kg CO₂ per month\n", snap.MonthlyTarget)
		fmt.Fprintf(w, "  progress:    %s %d%%\n", progressBar(agg.GoalProgress, 30), agg.GoalProgress)
		fmt.Fprintf(w, "  entries:     %d\n", len(snap.Entries))
		return nil
	},
}

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Draw emissions over time",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := opContext(cmd)
		defer cancel()
		if err := client.Controller.SetChartMode(ctx, chart.Mode(strings.ToLower(chartMode))); err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), client.Controller.Snapshot().ChartText)
		return nil
	},
}

func init() {
	f := emissionsAddCmd.Flags()
	f.StringVarP(&emissionForm.Category, "category", "c", "", "transportation, energy, food or waste")
	f.StringVarP(&emissionForm.Activity, "activity", "a", "", "Activity key (see 'emissions activities')")
	f.StringVarP(&emissionForm.Amount, "amount", "n", "", "Amount in the activity unit")
	f.StringVarP(&emissionForm.Unit, "unit", "u", "", "Unit (defaults to the activity unit)")
	f.StringVarP(&emissionForm.Date, "date", "d", "", "Date as YYYY-MM-DD (defaults to today)")
	f.StringVar(&emissionForm.Description, "description", "", "Free text note")

	chartCmd.Flags().StringVarP(&chartMode, "mode", "m", string(chart.ModeDaily), "daily or monthly")

	emissionsCmd.AddCommand(emissionsListCmd, emissionsAddCmd, emissionsActivitiesCmd,
		emissionsDeleteCmd, emissionsSampleCmd, emissionsSyncCmd)
}
