/*
service.go - Work-hours tracker service

PURPOSE:
  The host around the engine. Loads entries, the standby calendar,
  holidays and settings from a store.Repository, hands them to the engine
  and returns the results. All I/O and logging happen here; the engine
  stays pure.

HOLIDAYS:
  The calendar of a computation is the national calendar passed to
  NewService merged with the user holidays of the year from the
  repository.

NET PAY BASIS:
  actual    the estimator runs on the month's taxable earnings
  baseline  the deduction rate is computed on the contract monthly salary
            and applied to the month's taxable earnings, so the rate does
            not move with overtime

USAGE:
  svc := tracker.NewService(repo, ccnl.ItalianHolidays{}, logger)
  report, err := svc.Month(ctx, 2025, time.March)
  summary, err := svc.YearSummary(ctx, 2025)

SEE ALSO:
  - engine/calculator.go: The computations
  - store/store.go: The repository contract
*/
package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/warp/workhours/engine"
	"github.com/warp/workhours/factory"
	"github.com/warp/workhours/store"
	"golang.org/x/sync/errgroup"
)

// GrossBasis selects the gross figure the net estimate is based on.
type GrossBasis string

const (
	BasisActual   GrossBasis = "actual"
	BasisBaseline GrossBasis = "baseline"
)

// ParseBasis maps a query value to a GrossBasis; empty means actual.
func ParseBasis(s string) (GrossBasis, error) {
	switch GrossBasis(s) {
	case "", BasisActual:
		return BasisActual, nil
	case BasisBaseline:
		return BasisBaseline, nil
	}
	return "", fmt.Errorf("unknown gross basis %q: %w", s, store.ErrInvalidInput)
}

// Service computes months, days and years from stored data.
type Service struct {
	repo     store.Repository
	national engine.HolidayCalendar
	log      logrus.FieldLogger
}

func NewService(repo store.Repository, national engine.HolidayCalendar, log logrus.FieldLogger) *Service {
	if national == nil {
		national = engine.NoHolidays{}
	}
	return &Service{repo: repo, national: national, log: log}
}

// =============================================================================
// REPORTS
// =============================================================================

// MonthReport is a computed month plus the input warnings of its days.
type MonthReport struct {
	engine.MonthlyAggregate
	Warnings []string `json:"warnings,omitempty"`
}

// DayReport is one computed date.
type DayReport struct {
	engine.DayResult
	Entry    *engine.WorkDayEntry `json:"entry,omitempty"`
	Warnings []string             `json:"warnings,omitempty"`
}

// MonthSummary is one row of a year summary.
type MonthSummary struct {
	Month           time.Month      `json:"month"`
	TotalEarnings   decimal.Decimal `json:"total_earnings"`
	TaxableEarnings decimal.Decimal `json:"taxable_earnings"`
	TotalHours      decimal.Decimal `json:"total_hours"`
	OvertimeHours   decimal.Decimal `json:"overtime_hours"`
	WorkedDays      int             `json:"worked_days"`
	StandbyDays     int             `json:"standby_days"`
	Net             engine.NetPay   `json:"net"`
}

type YearSummary struct {
	Year            int             `json:"year"`
	Months          []MonthSummary  `json:"months"`
	TotalEarnings   decimal.Decimal `json:"total_earnings"`
	TaxableEarnings decimal.Decimal `json:"taxable_earnings"`
	TotalHours      decimal.Decimal `json:"total_hours"`
	OvertimeHours   decimal.Decimal `json:"overtime_hours"`
	Net             decimal.Decimal `json:"net"`
}

// NetReport is a net pay estimate for a month.
type NetReport struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Basis GrossBasis `json:"basis"`
	engine.NetPay
}

// =============================================================================
// COMPUTATIONS
// =============================================================================

// Calculator builds a calculator for a year from the stored settings and
// the holidays of that year.
func (s *Service) Calculator(ctx context.Context, year int) (*engine.Calculator, error) {
	settings, err := s.repo.LoadSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return s.calculatorWith(ctx, &settings, year)
}

func (s *Service) calculatorWith(ctx context.Context, settings *engine.Settings, year int) (*engine.Calculator, error) {
	user, err := s.repo.HolidaysInYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to load holidays: %w", err)
	}
	return engine.NewCalculator(settings, engine.Holidays{s.national, store.HolidaySet(user)})
}

// Month computes a calendar month.
func (s *Service) Month(ctx context.Context, year int, month time.Month) (*MonthReport, error) {
	if err := validMonth(year, month); err != nil {
		return nil, err
	}
	calc, err := s.Calculator(ctx, year)
	if err != nil {
		return nil, err
	}
	return s.month(ctx, calc, year, month)
}

func (s *Service) month(ctx context.Context, calc *engine.Calculator, year int, month time.Month) (*MonthReport, error) {
	entries, err := s.repo.EntriesForMonth(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	period := engine.MonthPeriod(year, month)
	standby, err := s.repo.StandbyDates(ctx, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load standby calendar: %w", err)
	}

	agg := calc.Month(year, month, entries, standby)
	report := &MonthReport{MonthlyAggregate: agg}
	for _, d := range agg.Days {
		for _, issue := range d.Issues {
			report.Warnings = append(report.Warnings, issue.Error())
			s.log.WithFields(logrus.Fields{"date": d.Date.String(), "issue": issue.Error()}).Warn("degraded entry input")
		}
	}
	s.log.WithFields(logrus.Fields{
		"year":     year,
		"month":    int(month),
		"days":     len(agg.Days),
		"earnings": agg.TotalEarnings.StringFixed(2),
	}).Debug("month computed")
	return report, nil
}

// Day computes a single date. A date with neither an entry nor a standby
// flag yields an empty ordinary day.
func (s *Service) Day(ctx context.Context, date engine.TimePoint) (*DayReport, error) {
	calc, err := s.Calculator(ctx, date.Year())
	if err != nil {
		return nil, err
	}

	entry, err := s.repo.GetEntry(ctx, date)
	if err != nil && !store.IsNotFound(err) {
		return nil, fmt.Errorf("failed to load entry: %w", err)
	}
	standby, err := s.repo.StandbyDates(ctx, date, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load standby calendar: %w", err)
	}

	res := calc.Day(date, entry, len(standby) > 0)
	report := &DayReport{DayResult: res, Entry: entry}
	for _, issue := range res.Issues {
		report.Warnings = append(report.Warnings, issue.Error())
	}
	return report, nil
}

// YearSummary computes the twelve months of a year concurrently.
func (s *Service) YearSummary(ctx context.Context, year int) (*YearSummary, error) {
	if err := validMonth(year, time.January); err != nil {
		return nil, err
	}
	calc, err := s.Calculator(ctx, year)
	if err != nil {
		return nil, err
	}

	summary := &YearSummary{Year: year, Months: make([]MonthSummary, 12)}
	g, gctx := errgroup.WithContext(ctx)
	for i := range summary.Months {
		i := i
		month := time.Month(i + 1)
		g.Go(func() error {
			report, err := s.month(gctx, calc, year, month)
			if err != nil {
				return fmt.Errorf("%s %d: %w", month, year, err)
			}
			summary.Months[i] = MonthSummary{
				Month:           month,
				TotalEarnings:   report.TotalEarnings,
				TaxableEarnings: report.TaxableEarnings,
				TotalHours:      report.TotalHours,
				OvertimeHours:   report.Totals.OvertimeHours(),
				WorkedDays:      report.Analytics.WorkedDays,
				StandbyDays:     report.Analytics.StandbyDays,
				Net:             calc.Net(report.TaxableEarnings),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, m := range summary.Months {
		summary.TotalEarnings = summary.TotalEarnings.Add(m.TotalEarnings)
		summary.TaxableEarnings = summary.TaxableEarnings.Add(m.TaxableEarnings)
		summary.TotalHours = summary.TotalHours.Add(m.TotalHours)
		summary.OvertimeHours = summary.OvertimeHours.Add(m.OvertimeHours)
		summary.Net = summary.Net.Add(m.Net.Net)
	}
	return summary, nil
}

// Net estimates the net pay of a month.
func (s *Service) Net(ctx context.Context, year int, month time.Month, basis GrossBasis) (*NetReport, error) {
	if err := validMonth(year, month); err != nil {
		return nil, err
	}
	settings, err := s.repo.LoadSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	// One settings snapshot serves both the month and the estimate.
	calc, err := s.calculatorWith(ctx, &settings, year)
	if err != nil {
		return nil, err
	}
	report, err := s.month(ctx, calc, year, month)
	if err != nil {
		return nil, err
	}
	return &NetReport{
		Year:   year,
		Month:  month,
		Basis:  basis,
		NetPay: EstimateWithBasis(report.TaxableEarnings, basis, calc.Settings()),
	}, nil
}

// EstimateWithBasis applies the gross basis to an actual gross figure.
func EstimateWithBasis(actual decimal.Decimal, basis GrossBasis, s engine.Settings) engine.NetPay {
	if basis != BasisBaseline {
		return engine.EstimateNet(actual, s.NetPay)
	}
	rate := engine.EstimateNet(s.Contract.MonthlySalary, s.NetPay).DeductionRate
	if actual.IsNegative() {
		actual = decimal.Zero
	}
	deductions := actual.Mul(rate).Round(2)
	return engine.NetPay{
		Gross:           actual,
		Net:             actual.Sub(deductions),
		TotalDeductions: deductions,
		DeductionRate:   rate,
	}
}

// =============================================================================
// WRITES
// =============================================================================

// SaveEntry stores an entry and returns the input warnings the engine will
// degrade silently.
func (s *Service) SaveEntry(ctx context.Context, entry *engine.WorkDayEntry) ([]string, error) {
	if err := s.repo.SaveEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}
	standby, err := s.repo.StandbyDates(ctx, entry.Date, entry.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to load standby calendar: %w", err)
	}
	user, err := s.repo.HolidaysInYear(ctx, entry.Date.Year())
	if err != nil {
		return nil, fmt.Errorf("failed to load holidays: %w", err)
	}
	cls := engine.Classify(entry.Date, entry, len(standby) > 0, engine.Holidays{s.national, store.HolidaySet(user)})

	var warnings []string
	for _, issue := range engine.Inspect(entry, cls) {
		warnings = append(warnings, issue.Error())
	}
	s.log.WithFields(logrus.Fields{"date": entry.Date.String(), "id": entry.ID, "warnings": len(warnings)}).Info("entry saved")
	return warnings, nil
}

func (s *Service) DeleteEntry(ctx context.Context, date engine.TimePoint) error {
	if err := s.repo.DeleteEntry(ctx, date); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	s.log.WithField("date", date.String()).Info("entry deleted")
	return nil
}

// SettingsView is the stored document, its resolution and the defaults used.
type SettingsView struct {
	Saved    factory.SettingsJSON `json:"saved"`
	Resolved engine.Settings      `json:"resolved"`
	Defaults []string             `json:"defaults,omitempty"`
}

func (s *Service) Settings(ctx context.Context) (*SettingsView, error) {
	sj, err := s.repo.RawSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settingsView(sj)
}

// UpdateSettings validates and stores a partial settings document.
func (s *Service) UpdateSettings(ctx context.Context, sj factory.SettingsJSON) (*SettingsView, error) {
	view, err := settingsView(sj)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveSettings(ctx, sj); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	s.log.WithField("defaults", len(view.Defaults)).Info("settings updated")
	return view, nil
}

// SeedSettings stores the document of a TOML file when no settings were
// saved yet. It reports whether it stored anything.
func (s *Service) SeedSettings(ctx context.Context, path string) (bool, error) {
	current, err := s.repo.RawSettings(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load settings: %w", err)
	}
	if !isEmpty(current) {
		return false, nil
	}
	sj, err := factory.ReadSettingsFile(path)
	if err != nil {
		return false, err
	}
	if _, err := s.UpdateSettings(ctx, sj); err != nil {
		return false, err
	}
	s.log.WithField("file", path).Info("settings seeded from file")
	return true, nil
}

func settingsView(sj factory.SettingsJSON) (*SettingsView, error) {
	resolved, err := factory.ResolveSettings(sj)
	if err != nil {
		return nil, fmt.Errorf("invalid settings: %v: %w", err, store.ErrInvalidInput)
	}
	view := &SettingsView{Saved: sj, Resolved: resolved}
	for _, missing := range factory.MissingFields(sj) {
		view.Defaults = append(view.Defaults, missing.Error())
	}
	return view, nil
}

func isEmpty(sj factory.SettingsJSON) bool {
	return sj.Contract == nil && sj.TravelAllowance == nil && sj.Standby == nil && sj.Meals == nil && sj.NetPay == nil
}

func validMonth(year int, month time.Month) error {
	if year < 1900 || year > 9999 || month < time.January || month > time.December {
		return fmt.Errorf("invalid month %d-%02d: %w", year, int(month), store.ErrInvalidInput)
	}
	return nil
}
