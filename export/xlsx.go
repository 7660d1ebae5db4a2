/*
Package export writes computed months to spreadsheet workbooks.

SHEETS:
  Days      one row per computed date, every earning component in columns
  Buckets   overtime and standby hours and earnings per rate bucket
  Summary   totals, analytics and, when given, the net pay estimate

Amounts are written as numbers rounded to the cent so the workbook can be
summed by hand.
*/
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/warp/workhours/engine"
	"github.com/xuri/excelize/v2"
)

const (
	SheetDays    = "Days"
	SheetBuckets = "Buckets"
	SheetSummary = "Summary"
)

var dayHeaders = []string{
	"Date", "Kind", "Hours", "Overtime Hours", "Standby Hours",
	"Daily Portion", "Special Day Bonus", "Overtime", "Extra Travel", "Standby Work", "Standby Travel",
	"Travel Allowance", "Standby Indemnity", "Meals", "Fixed Day", "Total",
}

// Exporter builds workbooks.
type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

// Month builds the workbook of a month. net may be nil.
func (e *Exporter) Month(agg engine.MonthlyAggregate, net *engine.NetPay) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetDays); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	if err := writeRows(f, SheetDays, dayRows(agg)); err != nil {
		return nil, err
	}
	f.SetRowStyle(SheetDays, 1, 1, headerStyle)
	f.SetColWidth(SheetDays, "A", "A", 12)
	f.SetColWidth(SheetDays, "B", "B", 10)
	f.SetColWidth(SheetDays, "C", "P", 14)

	if _, err := f.NewSheet(SheetBuckets); err != nil {
		return nil, err
	}
	if err := writeRows(f, SheetBuckets, bucketRows(agg.Totals)); err != nil {
		return nil, err
	}
	f.SetRowStyle(SheetBuckets, 1, 1, headerStyle)
	f.SetColWidth(SheetBuckets, "A", "A", 16)
	f.SetColWidth(SheetBuckets, "B", "G", 14)

	if _, err := f.NewSheet(SheetSummary); err != nil {
		return nil, err
	}
	if err := writeRows(f, SheetSummary, summaryRows(agg, net)); err != nil {
		return nil, err
	}
	f.SetRowStyle(SheetSummary, 1, 1, headerStyle)
	f.SetColWidth(SheetSummary, "A", "A", 28)
	f.SetColWidth(SheetSummary, "B", "B", 16)

	return f, nil
}

// WriteMonth builds the workbook of a month and writes it to w.
func (e *Exporter) WriteMonth(w io.Writer, agg engine.MonthlyAggregate, net *engine.NetPay) error {
	f, err := e.Month(agg, net)
	if err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// FileName is the suggested download name of a month workbook.
func FileName(year int, month int) string {
	return fmt.Sprintf("workhours-%04d-%02d.xlsx", year, month)
}

func dayRows(agg engine.MonthlyAggregate) [][]any {
	rows := [][]any{toAny(dayHeaders)}
	for _, d := range agg.Days {
		b := d.Breakdown
		rows = append(rows, []any{
			d.Date.String(),
			string(d.Classification.Kind),
			num(b.TotalHours()),
			num(b.OvertimeHours()),
			num(b.Standby.Work.Hours().Add(b.Standby.Travel.Hours())),
			num(b.Ordinary.Earnings.DailyPortion),
			num(b.Ordinary.Earnings.Bonus),
			num(b.Overtime.Earnings()),
			num(b.Travel.Earnings),
			num(b.Standby.Work.Earnings()),
			num(b.Standby.Travel.Earnings()),
			num(b.Allowances.Travel),
			num(b.Allowances.Standby),
			num(b.Allowances.Meal),
			num(b.FixedDay),
			num(b.TotalEarnings),
		})
	}
	return rows
}

func bucketRows(totals engine.DailyBreakdown) [][]any {
	rows := [][]any{{
		"Bucket", "Overtime Hours", "Overtime", "Standby Work Hours", "Standby Work", "Standby Travel Hours", "Standby Travel",
	}}
	for _, bucket := range engine.AllBuckets() {
		ot := totals.Overtime.Get(bucket)
		work := totals.Standby.Work.Get(bucket)
		travel := totals.Standby.Travel.Get(bucket)
		rows = append(rows, []any{
			bucket.String(),
			num(ot.Hours), num(ot.Earnings),
			num(work.Hours), num(work.Earnings),
			num(travel.Hours), num(travel.Earnings),
		})
	}
	return rows
}

func summaryRows(agg engine.MonthlyAggregate, net *engine.NetPay) [][]any {
	a := agg.Analytics
	rows := [][]any{
		{"Item", "Value"},
		{"Month", fmt.Sprintf("%04d-%02d", agg.Year, int(agg.Month))},
		{"Total Earnings", num(agg.TotalEarnings)},
		{"Taxable Earnings", num(agg.TaxableEarnings)},
		{"Total Hours", num(agg.TotalHours)},
		{"Overtime Hours", num(agg.Totals.OvertimeHours())},
		{"Worked Days", a.WorkedDays},
		{"Worked Saturdays", a.WorkedSaturdays},
		{"Worked Sundays", a.WorkedSundays},
		{"Worked Holidays", a.WorkedHolidays},
		{"Fixed Days", a.FixedDays},
		{"Standby Days", a.StandbyDays},
		{"Standby Interventions", a.StandbyInterventions},
		{"Longest Streak", a.LongestStreak},
		{"Average Start", a.AverageStart},
	}
	if net != nil {
		rows = append(rows,
			[]any{"Net Pay", num(net.Net)},
			[]any{"Deductions", num(net.TotalDeductions)},
			[]any{"Deduction Rate", net.DeductionRate.Round(4).InexactFloat64()},
		)
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// num rounds to the cent for display; the sums stay those of the engine.
func num(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
