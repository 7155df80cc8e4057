package cli

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"alarmboard/internal/generate"
	"alarmboard/internal/model"
	"alarmboard/internal/schedule"
)

func newGenerateCommand() *cobra.Command {
	var (
		startFlag    string
		days         int
		alarms       []string
		weekdaysFlag string
		columns      int
		layoutFlag   string
		outPath      string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write an alarm CSV template covering a range of days.",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := resolveStart(startFlag)
			if err != nil {
				return err
			}
			layout, err := schedule.ParseDateLayout(layoutFlag)
			if err != nil {
				return err
			}
			opts := generate.Options{
				Start:   start,
				Days:    days,
				Alarms:  alarms,
				Columns: columns,
				Layout:  layout,
			}
			if weekdaysFlag != "" {
				if opts.Weekdays, err = generate.ParseWeekdays(weekdaysFlag); err != nil {
					return err
				}
			}

			var buf bytes.Buffer
			if err := generate.Write(&buf, opts); err != nil {
				return err
			}
			if outPath == "" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write template: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&startFlag, "start", "", "First date in YYYY-MM-DD (default: today)")
	cmd.Flags().IntVar(&days, "days", 7, "Number of days to cover")
	cmd.Flags().StringSliceVar(&alarms, "alarms", nil, `Alarm cells copied into every row, e.g. "05:30,06:00 Gym"`)
	cmd.Flags().StringVar(&weekdaysFlag, "weekdays", "", "Only emit these weekdays, e.g. mon,wed,fri")
	cmd.Flags().IntVar(&columns, "columns", 6, "Number of alarm columns")
	cmd.Flags().StringVar(&layoutFlag, "layout", "dash", "Date layout: dash (29-June-2025) or slash (29/06/2025)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default: stdout)")

	return cmd
}

func resolveStart(flag string) (model.Date, error) {
	if flag == "" {
		return model.DateOf(time.Now()), nil
	}
	t, err := time.Parse("2006-01-02", flag)
	if err != nil {
		return model.Date{}, fmt.Errorf("parse --start: %w", err)
	}
	return model.DateOf(t), nil
}
