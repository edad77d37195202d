package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/docksched/config"
	"github.com/kilianp07/docksched/core/classify"
	"github.com/kilianp07/docksched/core/ingest"
	"github.com/kilianp07/docksched/core/model"
	"github.com/kilianp07/docksched/core/schedule"
	"github.com/kilianp07/docksched/infra/filesource"
)

var (
	resolveDay    string
	resolveFormat string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <list.json>",
	Short: "Classify and resolve one day of a list export",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveDay, "day", "", "day to resolve (YYYY-MM-DD), today when empty")
	resolveCmd.Flags().StringVar(&resolveFormat, "format", "table", "output format: table or json")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return err
	}
	now := time.Now().In(loc)
	if resolveDay == "" {
		resolveDay = model.DayKey(now)
	}
	day, err := model.ParseDayKey(resolveDay, loc)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	raw, err := filesource.Decode(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	cls := classify.New(cfg.Schedule.DefaultDurationMinutes)
	items, shifts := schedule.ResolveReport(cls.ClassifyAll(ingest.NormalizeDay(raw, day, loc, now)))

	out := cmd.OutOrStdout()
	switch resolveFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Day          string              `json:"day"`
			Appointments []model.Appointment `json:"appointments"`
			Shifts       []schedule.Shift    `json:"shifts"`
		}{resolveDay, items, shifts})
	case "table":
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tGATE\tTYPE\tCOMPANY\tPLATE\tSTATE\tID")
		for _, a := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", a.TimeLabel, a.GateID, a.Operation, a.CompanyName, a.PlateNumber, a.State, a.ID)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "%d appointments, %d shifted\n", len(items), len(shifts))
		return nil
	default:
		return fmt.Errorf("unknown format %q", resolveFormat)
	}
}
