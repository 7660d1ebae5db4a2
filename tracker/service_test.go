package tracker_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/workhours/ccnl"
	"github.com/warp/workhours/engine"
	"github.com/warp/workhours/factory"
	"github.com/warp/workhours/logging"
	"github.com/warp/workhours/store"
	"github.com/warp/workhours/store/memory"
	"github.com/warp/workhours/tracker"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}

// Daily 100, hourly 12.50 over an 8h day; a 5000 baseline salary so the
// baseline deduction rate lands in the second IRPEF bracket.
func testSettings() engine.Settings {
	s := ccnl.DefaultSettings()
	s.Contract.MonthlySalary = dec("5000")
	s.Contract.DailyRate = dec("100")
	s.Contract.HourlyRate = dec("12.50")
	s.Contract.OvertimeThresholdHours = dec("8")
	return s
}

func newTestService(t *testing.T) (*tracker.Service, *memory.Memory) {
	t.Helper()
	repo := memory.New()
	require.NoError(t, repo.SaveSettings(context.Background(), factory.ToJSON(testSettings())))
	return tracker.NewService(repo, ccnl.ItalianHolidays{}, logging.Discard()), repo
}

func saveDay(t *testing.T, repo store.Repository, d engine.TimePoint, start, end string) {
	t.Helper()
	entry := &engine.WorkDayEntry{Date: d, Shifts: []engine.Interval{{Start: start, End: end}}}
	require.NoError(t, repo.SaveEntry(context.Background(), entry))
}

var (
	mon3 = engine.NewTimePoint(2025, time.March, 3)
	tue4 = engine.NewTimePoint(2025, time.March, 4)
	wed5 = engine.NewTimePoint(2025, time.March, 5)
	sun9 = engine.NewTimePoint(2025, time.March, 9)
	apr1 = engine.NewTimePoint(2025, time.April, 1)
	apr2 = engine.NewTimePoint(2025, time.April, 2)
)

// =============================================================================
// MONTH AND DAY
// =============================================================================

func TestService_Month(t *testing.T) {
	// GIVEN: Two full weekdays and a standby flag on a free Wednesday
	// WHEN: Computing March
	// THEN: 2 x 100 plus the 16h weekday indemnity

	svc, repo := newTestService(t)
	ctx := context.Background()
	saveDay(t, repo, mon3, "08:00", "16:00")
	saveDay(t, repo, tue4, "08:00", "16:00")
	require.NoError(t, repo.SetStandby(ctx, store.StandbyDay{Date: wed5}))

	report, err := svc.Month(ctx, 2025, time.March)
	require.NoError(t, err)

	assert.Len(t, report.Days, 3)
	assertDecimal(t, "204.22", report.TotalEarnings)
	assertDecimal(t, "16", report.TotalHours)
	assert.Equal(t, 2, report.Analytics.WorkedDays)
	assert.Equal(t, 1, report.Analytics.StandbyDays)
	assert.Empty(t, report.Warnings)
}

func TestService_MonthCollectsWarnings(t *testing.T) {
	svc, repo := newTestService(t)
	saveDay(t, repo, mon3, "8h", "12:00")

	report, err := svc.Month(context.Background(), 2025, time.March)
	require.NoError(t, err)

	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "shifts[0].start")
}

func TestService_MonthRejectsInvalidMonth(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Month(context.Background(), 2025, time.Month(13))
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	_, err = svc.YearSummary(context.Background(), 10000)
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestService_Day(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	saveDay(t, repo, mon3, "08:00", "12:00")
	require.NoError(t, repo.SetStandby(ctx, store.StandbyDay{Date: sun9}))

	worked, err := svc.Day(ctx, mon3)
	require.NoError(t, err)
	require.NotNil(t, worked.Entry)
	assert.True(t, worked.HasEntry)
	assertDecimal(t, "50", worked.Breakdown.TotalEarnings)

	standby, err := svc.Day(ctx, sun9)
	require.NoError(t, err)
	assert.Nil(t, standby.Entry)
	assert.True(t, standby.Classification.Synthetic)
	assertDecimal(t, "10.63", standby.Breakdown.TotalEarnings)

	empty, err := svc.Day(ctx, wed5)
	require.NoError(t, err)
	assert.False(t, empty.HasEntry)
	assertDecimal(t, "0", empty.Breakdown.TotalEarnings)
}

func TestService_HolidaysMerge(t *testing.T) {
	// GIVEN: A user holiday on a Tuesday and the national calendar
	// WHEN: Computing days
	// THEN: Both calendars mark their dates as holidays

	svc, repo := newTestService(t)
	ctx := context.Background()
	require.NoError(t, repo.SaveHoliday(ctx, &store.Holiday{Date: tue4, Name: "Local fair"}))

	local, err := svc.Day(ctx, tue4)
	require.NoError(t, err)
	assert.True(t, local.Classification.IsHoliday)

	liberation, err := svc.Day(ctx, engine.NewTimePoint(2025, time.April, 25))
	require.NoError(t, err)
	assert.True(t, liberation.Classification.IsHoliday)

	plain, err := svc.Day(ctx, mon3)
	require.NoError(t, err)
	assert.False(t, plain.Classification.IsHoliday)
}

// =============================================================================
// YEAR AND NET
// =============================================================================

func TestService_YearSummary(t *testing.T) {
	svc, repo := newTestService(t)
	saveDay(t, repo, mon3, "08:00", "16:00")
	saveDay(t, repo, apr1, "08:00", "16:00")
	saveDay(t, repo, apr2, "08:00", "16:00")

	summary, err := svc.YearSummary(context.Background(), 2025)
	require.NoError(t, err)

	require.Len(t, summary.Months, 12)
	for i, m := range summary.Months {
		assert.Equal(t, time.Month(i+1), m.Month)
	}
	assertDecimal(t, "100", summary.Months[2].TotalEarnings)
	assertDecimal(t, "200", summary.Months[3].TotalEarnings)
	assertDecimal(t, "0", summary.Months[4].TotalEarnings)
	assert.Equal(t, 2, summary.Months[3].WorkedDays)

	assertDecimal(t, "300", summary.TotalEarnings)
	assertDecimal(t, "24", summary.TotalHours)
	// 67.81 for March plus 135.62 for April
	assertDecimal(t, "203.43", summary.Net)
}

func TestService_NetBasis(t *testing.T) {
	// GIVEN: 200 of taxable earnings in April and a 5000 baseline salary
	// WHEN: Estimating the net on both bases
	// THEN: actual uses the 200 rate (0.3219), baseline the 5000 rate (0.3809)

	svc, repo := newTestService(t)
	ctx := context.Background()
	saveDay(t, repo, apr1, "08:00", "16:00")
	saveDay(t, repo, apr2, "08:00", "16:00")

	actual, err := svc.Net(ctx, 2025, time.April, tracker.BasisActual)
	require.NoError(t, err)
	assert.Equal(t, tracker.BasisActual, actual.Basis)
	assertDecimal(t, "200", actual.Gross)
	assertDecimal(t, "64.38", actual.TotalDeductions)
	assertDecimal(t, "135.62", actual.Net)

	baseline, err := svc.Net(ctx, 2025, time.April, tracker.BasisBaseline)
	require.NoError(t, err)
	assertDecimal(t, "0.3809", baseline.DeductionRate)
	assertDecimal(t, "76.18", baseline.TotalDeductions)
	assertDecimal(t, "123.82", baseline.Net)
}

// settingsSwitchingRepo serves the test settings on the first load and a
// custom 50% rule set afterwards, as if the settings changed mid-request.
type settingsSwitchingRepo struct {
	*memory.Memory
	loads int
}

func (r *settingsSwitchingRepo) LoadSettings(ctx context.Context) (engine.Settings, error) {
	r.loads++
	if r.loads == 1 {
		return r.Memory.LoadSettings(ctx)
	}
	s := testSettings()
	s.Contract.DailyRate = dec("200")
	s.NetPay.Method = engine.NetPayCustom
	s.NetPay.CustomRate = dec("0.5")
	return s, nil
}

func TestService_NetReadsSettingsOnce(t *testing.T) {
	// GIVEN: A repository whose settings change after the first read
	// WHEN: Estimating the net of April
	// THEN: The month and the estimate use the same settings

	mem := memory.New()
	ctx := context.Background()
	require.NoError(t, mem.SaveSettings(ctx, factory.ToJSON(testSettings())))
	saveDay(t, mem, apr1, "08:00", "16:00")
	saveDay(t, mem, apr2, "08:00", "16:00")
	repo := &settingsSwitchingRepo{Memory: mem}
	svc := tracker.NewService(repo, ccnl.ItalianHolidays{}, logging.Discard())

	report, err := svc.Net(ctx, 2025, time.April, tracker.BasisActual)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.loads)
	assertDecimal(t, "200", report.Gross)
	assertDecimal(t, "64.38", report.TotalDeductions)
}

func TestEstimateWithBasis_CustomRateOnZeroBaseline(t *testing.T) {
	s := testSettings()
	s.Contract.MonthlySalary = decimal.Zero
	s.NetPay.Method = engine.NetPayCustom
	s.NetPay.CustomRate = dec("0.3")

	np := tracker.EstimateWithBasis(dec("200"), tracker.BasisBaseline, s)

	assertDecimal(t, "0.3", np.DeductionRate)
	assertDecimal(t, "60", np.TotalDeductions)
	assertDecimal(t, "140", np.Net)
}

func TestParseBasis(t *testing.T) {
	basis, err := tracker.ParseBasis("")
	require.NoError(t, err)
	assert.Equal(t, tracker.BasisActual, basis)

	basis, err = tracker.ParseBasis("baseline")
	require.NoError(t, err)
	assert.Equal(t, tracker.BasisBaseline, basis)

	_, err = tracker.ParseBasis("gross")
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestEstimateWithBasis_NegativeActual(t *testing.T) {
	np := tracker.EstimateWithBasis(dec("-10"), tracker.BasisBaseline, testSettings())

	assertDecimal(t, "0", np.Gross)
	assertDecimal(t, "0", np.Net)
}

// =============================================================================
// WRITES
// =============================================================================

func TestService_SaveEntryWarnings(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	warnings, err := svc.SaveEntry(ctx, &engine.WorkDayEntry{
		Date:   mon3,
		Shifts: []engine.Interval{{Start: "08:00", End: "25:00"}},
	})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "shifts[0].end")

	stored, err := repo.GetEntry(ctx, mon3)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID, "degraded input is still stored")

	warnings, err = svc.SaveEntry(ctx, &engine.WorkDayEntry{Date: tue4, Shifts: []engine.Interval{{Start: "08:00", End: "16:00"}}})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	_, err = svc.SaveEntry(ctx, &engine.WorkDayEntry{})
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestService_DeleteEntry(t *testing.T) {
	svc, repo := newTestService(t)
	saveDay(t, repo, mon3, "08:00", "16:00")

	require.NoError(t, svc.DeleteEntry(context.Background(), mon3))
	assert.ErrorIs(t, svc.DeleteEntry(context.Background(), mon3), store.ErrNotFound)
}

func TestService_UpdateSettings(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	partial, err := factory.DecodeJSON([]byte(`{"contract": {"monthly_salary": 2600}}`))
	require.NoError(t, err)

	view, err := svc.UpdateSettings(ctx, partial)
	require.NoError(t, err)
	assertDecimal(t, "100", view.Resolved.Contract.DailyRate)
	assert.Len(t, view.Defaults, 38)

	current, err := svc.Settings(ctx)
	require.NoError(t, err)
	assert.Nil(t, current.Saved.NetPay)

	invalid, err := factory.DecodeJSON([]byte(`{"net_pay": {"method": "flat"}}`))
	require.NoError(t, err)
	_, err = svc.UpdateSettings(ctx, invalid)
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	current, err = svc.Settings(ctx)
	require.NoError(t, err)
	require.NotNil(t, current.Saved.Contract, "rejected update leaves the stored document")
}

func TestService_SeedSettings(t *testing.T) {
	// GIVEN: An empty repository and a TOML settings file
	// WHEN: Seeding twice
	// THEN: Only the first call stores the file

	repo := memory.New()
	svc := tracker.NewService(repo, nil, logging.Discard())
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("[contract]\nmonthly_salary = 2600\novertime_threshold_hours = 7.5\n"), 0o644))

	seeded, err := svc.SeedSettings(ctx, path)
	require.NoError(t, err)
	assert.True(t, seeded)

	s, err := repo.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 450, s.Contract.ThresholdMinutes())

	seeded, err = svc.SeedSettings(ctx, path)
	require.NoError(t, err)
	assert.False(t, seeded)
}
