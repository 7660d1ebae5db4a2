/*
handlers.go - HTTP API handlers for the work-hours tracker

PURPOSE:
  Exposes the tracker via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to the tracker service and the repository.

ENDPOINTS:
  Computations:
    GET    /api/months/{year}/{month}              Month breakdown + analytics
    GET    /api/months/{year}/{month}/export.xlsx  Month workbook
    GET    /api/months/{year}/{month}/net          Net estimate (?basis=actual|baseline)
    GET    /api/years/{year}                       Twelve month summaries
    GET    /api/days/{date}                        One computed day
    POST   /api/net                                Ad-hoc net estimate

  Entries:
    PUT    /api/entries/{date}    Create or replace the entry of a date
    DELETE /api/entries/{date}    Remove it

  Calendars:
    GET    /api/standby           Standby days (?from=&to=)
    POST   /api/standby           Flag a date or a range
    DELETE /api/standby/{date}    Clear a flag
    GET    /api/holidays          User holidays (?year= adds national ones)
    POST   /api/holidays          Add a user holiday
    DELETE /api/holidays/{id}     Remove a user holiday

  Settings:
    GET    /api/settings          Saved document, resolution, defaults used
    PUT    /api/settings          Replace the saved document

  Demo (scenarios.go):
    GET    /api/scenarios           Available scenarios
    GET    /api/scenarios/current   The loaded scenario, null when none
    POST   /api/scenarios/load      Reset and load a scenario into a month

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - tracker/service.go: The computations
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/warp/workhours/ccnl"
	"github.com/warp/workhours/engine"
	"github.com/warp/workhours/export"
	"github.com/warp/workhours/factory"
	"github.com/warp/workhours/store"
	"github.com/warp/workhours/tracker"
)

// maxStandbyRange bounds POST /api/standby ranges.
const maxStandbyRange = 366

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// NationalCalendar is the built-in holiday calendar, listable per year.
type NationalCalendar interface {
	engine.HolidayCalendar
	Year(year int) []ccnl.Holiday
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service  *tracker.Service
	Repo     store.Repository
	National NationalCalendar
	Exporter *export.Exporter
	Log      logrus.FieldLogger

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler over a repository and a national calendar.
func NewHandler(repo store.Repository, national NationalCalendar, log logrus.FieldLogger) *Handler {
	return &Handler{
		Service:  tracker.NewService(repo, national, log),
		Repo:     repo,
		National: national,
		Exporter: export.NewExporter(),
		Log:      log,
	}
}

// =============================================================================
// COMPUTATION ENDPOINTS
// =============================================================================

// GetMonth returns the computed month.
// GET /api/months/{year}/{month}
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	year, month, ok := monthParams(w, r)
	if !ok {
		return
	}
	report, err := h.Service.Month(r.Context(), year, month)
	if err != nil {
		h.fail(w, "Failed to compute month", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ExportMonth streams the month workbook.
// GET /api/months/{year}/{month}/export.xlsx
func (h *Handler) ExportMonth(w http.ResponseWriter, r *http.Request) {
	year, month, ok := monthParams(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	report, err := h.Service.Month(ctx, year, month)
	if err != nil {
		h.fail(w, "Failed to compute month", err)
		return
	}
	net, err := h.Service.Net(ctx, year, month, tracker.BasisActual)
	if err != nil {
		h.fail(w, "Failed to estimate net pay", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(year, int(month))))
	if err := h.Exporter.WriteMonth(w, report.MonthlyAggregate, &net.NetPay); err != nil {
		h.Log.WithError(err).Error("workbook export failed")
	}
}

// GetMonthNet returns the net estimate of a month.
// GET /api/months/{year}/{month}/net?basis=actual|baseline
func (h *Handler) GetMonthNet(w http.ResponseWriter, r *http.Request) {
	year, month, ok := monthParams(w, r)
	if !ok {
		return
	}
	basis, err := tracker.ParseBasis(r.URL.Query().Get("basis"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid basis (use actual or baseline)", err)
		return
	}
	report, err := h.Service.Net(r.Context(), year, month, basis)
	if err != nil {
		h.fail(w, "Failed to estimate net pay", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GetYear returns the twelve month summaries of a year.
// GET /api/years/{year}
func (h *Handler) GetYear(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	summary, err := h.Service.YearSummary(r.Context(), year)
	if err != nil {
		h.fail(w, "Failed to compute year", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GetDay returns one computed date.
// GET /api/days/{date}
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	report, err := h.Service.Day(r.Context(), date)
	if err != nil {
		h.fail(w, "Failed to compute day", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// EstimateNet estimates net pay for an arbitrary gross amount.
// POST /api/net
func (h *Handler) EstimateNet(w http.ResponseWriter, r *http.Request) {
	var req NetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Gross.IsNegative() {
		writeError(w, http.StatusBadRequest, "Gross must not be negative", nil)
		return
	}

	settings, err := h.Repo.LoadSettings(r.Context())
	if err != nil {
		h.fail(w, "Failed to load settings", err)
		return
	}
	np := settings.NetPay
	switch engine.NetPayMethod(req.Method) {
	case "":
	case engine.NetPayCustom, engine.NetPayIRPEF:
		np.Method = engine.NetPayMethod(req.Method)
	default:
		writeError(w, http.StatusBadRequest, "Invalid method (use custom or irpef)", nil)
		return
	}
	if req.CustomRate != nil {
		np.CustomRate = *req.CustomRate
	}
	writeJSON(w, http.StatusOK, engine.EstimateNet(req.Gross, np))
}

// =============================================================================
// ENTRY ENDPOINTS
// =============================================================================

// PutEntry creates or replaces the entry of a date.
// PUT /api/entries/{date}
func (h *Handler) PutEntry(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	entry := req.toEntry(date)
	warnings, err := h.Service.SaveEntry(r.Context(), entry)
	if err != nil {
		h.fail(w, "Failed to save entry", err)
		return
	}
	writeJSON(w, http.StatusOK, SaveEntryResponse{Entry: entry, Warnings: warnings})
}

// DeleteEntry removes the entry of a date.
// DELETE /api/entries/{date}
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteEntry(r.Context(), date); err != nil {
		h.fail(w, "Failed to delete entry", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// STANDBY ENDPOINTS
// =============================================================================

// ListStandby returns the standby days of a range, the current month by default.
// GET /api/standby?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) ListStandby(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	period := engine.MonthPeriod(now.Year(), now.Month())
	from, to := period.Start, period.End

	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = engine.ParseDate(v); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = engine.ParseDate(v); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
			return
		}
	}

	days, err := h.Repo.ListStandby(r.Context(), from, to)
	if err != nil {
		h.fail(w, "Failed to get standby days", err)
		return
	}
	dtos := make([]StandbyDTO, 0, len(days))
	for _, d := range days {
		dtos = append(dtos, toStandbyDTO(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{"standby": dtos})
}

// CreateStandby flags a date or every date of a range.
// POST /api/standby
func (h *Handler) CreateStandby(w http.ResponseWriter, r *http.Request) {
	var req StandbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var dates []engine.TimePoint
	switch {
	case req.Date != "":
		date, err := engine.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
		dates = []engine.TimePoint{date}
	case req.From != "" && req.To != "":
		from, err := engine.ParseDate(req.From)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return
		}
		to, err := engine.ParseDate(req.To)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
			return
		}
		dates = engine.Period{Start: from, End: to}.Days()
		if len(dates) == 0 || len(dates) > maxStandbyRange {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Range must cover 1 to %d days", maxStandbyRange), nil)
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "Date or from/to are required", nil)
		return
	}

	created := make([]StandbyDTO, 0, len(dates))
	for _, date := range dates {
		day := store.StandbyDay{Date: date, Note: req.Note}
		if err := h.Repo.SetStandby(r.Context(), day); err != nil {
			h.fail(w, "Failed to flag standby day", err)
			return
		}
		created = append(created, toStandbyDTO(day))
	}
	writeJSON(w, http.StatusCreated, map[string]any{"status": "created", "standby": created})
}

// DeleteStandby clears the flag of a date.
// DELETE /api/standby/{date}
func (h *Handler) DeleteStandby(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	if err := h.Repo.ClearStandby(r.Context(), date); err != nil {
		h.fail(w, "Failed to clear standby day", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// HOLIDAY ENDPOINTS
// =============================================================================

// ListHolidays returns the user holidays. With ?year= it returns the
// holidays of that year, national ones included.
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	yearParam := r.URL.Query().Get("year")
	if yearParam == "" {
		holidays, err := h.Repo.ListHolidays(ctx)
		if err != nil {
			h.fail(w, "Failed to get holidays", err)
			return
		}
		dtos := make([]HolidayDTO, 0, len(holidays))
		for _, hol := range holidays {
			dtos = append(dtos, toHolidayDTO(hol))
		}
		writeJSON(w, http.StatusOK, map[string]any{"holidays": dtos})
		return
	}

	year, err := strconv.Atoi(yearParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	user, err := h.Repo.HolidaysInYear(ctx, year)
	if err != nil {
		h.fail(w, "Failed to get holidays", err)
		return
	}
	var dtos []HolidayDTO
	if h.National != nil {
		for _, nat := range h.National.Year(year) {
			dtos = append(dtos, HolidayDTO{Date: nat.Date.String(), Name: nat.Name, National: true})
		}
	}
	for _, hol := range user {
		dtos = append(dtos, toHolidayDTO(hol))
	}
	if dtos == nil {
		dtos = []HolidayDTO{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"year": year, "holidays": dtos})
}

// CreateHoliday creates a new user holiday.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req HolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Date == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Date and name are required", nil)
		return
	}
	date, err := engine.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	holiday := store.Holiday{Date: date, Name: req.Name, Recurring: req.Recurring}
	if err := h.Repo.SaveHoliday(r.Context(), &holiday); err != nil {
		h.fail(w, "Failed to create holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"status":  "created",
		"holiday": toHolidayDTO(holiday),
	})
}

// DeleteHoliday deletes a user holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "Failed to delete holiday", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// SETTINGS ENDPOINTS
// =============================================================================

// GetSettings returns the saved document and its resolution.
// GET /api/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	view, err := h.Service.Settings(r.Context())
	if err != nil {
		h.fail(w, "Failed to get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// PutSettings replaces the saved document.
// PUT /api/settings
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var sj factory.SettingsJSON
	if err := json.NewDecoder(r.Body).Decode(&sj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	view, err := h.Service.UpdateSettings(r.Context(), sj)
	if err != nil {
		h.fail(w, "Failed to update settings", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// fail maps a service or store error to its status.
func (h *Handler) fail(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, store.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Log.WithError(err).Error(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func monthParams(w http.ResponseWriter, r *http.Request) (int, time.Month, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return 0, 0, false
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "Invalid month (use 1-12)", err)
		return 0, 0, false
	}
	return year, time.Month(month), true
}

func dateParam(w http.ResponseWriter, r *http.Request) (engine.TimePoint, bool) {
	date, err := engine.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return engine.TimePoint{}, false
	}
	return date, true
}
