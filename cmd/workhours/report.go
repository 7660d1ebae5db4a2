package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/workhours/api"
	"github.com/warp/workhours/export"
	"github.com/warp/workhours/tracker"
)

func monthCommand(open func() (*app, error)) *cobra.Command {
	var xlsxPath string

	cmd := &cobra.Command{
		Use:   "month YEAR MONTH",
		Short: "Compute a month",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := parseMonthArgs(args)
			if err != nil {
				return err
			}
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			report, err := a.service.Month(ctx, year, month)
			if err != nil {
				return err
			}
			if xlsxPath == "" {
				return printJSON(cmd.OutOrStdout(), report)
			}

			net, err := a.service.Net(ctx, year, month, tracker.BasisActual)
			if err != nil {
				return err
			}
			f, err := os.Create(xlsxPath)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", xlsxPath, err)
			}
			defer f.Close()
			if err := export.NewExporter().WriteMonth(f, report.MonthlyAggregate, &net.NetPay); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", xlsxPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write the month workbook to this file instead of printing JSON")
	return cmd
}

func yearCommand(open func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "year YEAR",
		Short: "Summarize the twelve months of a year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.service.YearSummary(cmd.Context(), year)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}
}

func netCommand(open func() (*app, error)) *cobra.Command {
	var basis string

	cmd := &cobra.Command{
		Use:   "net YEAR MONTH",
		Short: "Estimate the net pay of a month",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := parseMonthArgs(args)
			if err != nil {
				return err
			}
			b, err := tracker.ParseBasis(basis)
			if err != nil {
				return err
			}
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.service.Net(cmd.Context(), year, month, b)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVar(&basis, "basis", "actual", "Gross basis: actual or baseline")
	return cmd
}

func holidaysCommand(open func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "holidays YEAR",
		Short: "List the holidays of a year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.store.HolidaysInYear(cmd.Context(), year)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, h := range a.national.Year(year) {
				fmt.Fprintf(out, "%s  %s\n", h.Date, h.Name)
			}
			for _, h := range user {
				fmt.Fprintf(out, "%s  %s (custom)\n", h.Date, h.Name)
			}
			return nil
		},
	}
}

func demoCommand(open func() (*app, error)) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "demo SCENARIO YEAR MONTH",
		Short: "Reset the database and load a demo scenario into a month",
		Args: func(cmd *cobra.Command, args []string) error {
			if list {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(3)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list {
				for _, s := range api.Scenarios() {
					fmt.Fprintf(out, "%-18s %s\n", s.ID, s.Description)
				}
				return nil
			}
			year, month, err := parseMonthArgs(args[1:])
			if err != nil {
				return err
			}
			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := api.SeedScenario(cmd.Context(), a.store, a.national, args[0], year, month); err != nil {
				return err
			}
			a.log.WithField("scenario", args[0]).Info("scenario loaded")
			fmt.Fprintf(out, "loaded %s into %04d-%02d\n", args[0], year, int(month))
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "List the scenarios")
	return cmd
}

func parseMonthArgs(args []string) (int, time.Month, error) {
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year %q", args[0])
	}
	month, err := strconv.Atoi(args[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month %q (use 1-12)", args[1])
	}
	return year, time.Month(month), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
