package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/docksched/app/plugins"
	"github.com/kilianp07/docksched/config"
	"github.com/kilianp07/docksched/core/model"
	"github.com/kilianp07/docksched/core/stats"
	"github.com/kilianp07/docksched/pkg/export"
)

var (
	exportDay     string
	exportHistory bool
	exportOut     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a stored day or the seven day history as CSV",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportDay, "day", "", "day to export (YYYY-MM-DD), today when empty; base day with --history")
	exportCmd.Flags().BoolVar(&exportHistory, "history", false, "export the daily statistics of the seven days ending at --day")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file, default name in the working directory; - for stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return err
	}
	if exportDay == "" {
		exportDay = model.DayKey(time.Now().In(loc))
	}
	day, err := model.ParseDayKey(exportDay, loc)
	if err != nil {
		return err
	}
	store, err := plugins.NewStore(cfg.Persist)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	name := export.DayFileName(exportDay)
	if exportHistory {
		name = export.HistoryFileName
	}
	w, closeOut, err := output(cmd.OutOrStdout(), name)
	if err != nil {
		return err
	}
	defer closeOut()

	if exportHistory {
		return export.WriteHistoryCSV(w, stats.History(ctx, day, store.Load))
	}
	items, err := store.Load(ctx, exportDay)
	if err != nil {
		return err
	}
	return export.WriteDayCSV(w, items)
}

func output(stdout io.Writer, name string) (io.Writer, func(), error) {
	switch exportOut {
	case "-":
		return stdout, func() {}, nil
	case "":
		exportOut = name
	}
	f, err := os.Create(exportOut)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
