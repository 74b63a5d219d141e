package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/airac-api/internal/airac"
	"github.com/zapponejosh/airac-api/internal/calendar"
	"github.com/zapponejosh/airac-api/internal/config"
	"github.com/zapponejosh/airac-api/internal/database"
	"github.com/zapponejosh/airac-api/internal/logger"
)

// MaxRangeDays bounds /cycles/range requests.
const MaxRangeDays = 3660

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	db        *database.DB
	calendars *calendar.Service
	conv      *airac.Converter
	cfg       *config.Config
	logger    *slog.Logger
	now       func() time.Time
}

// NewHandlers creates a new Handlers instance. conv is the default
// converter; requests may override its cycle length with ?weeks=N.
func NewHandlers(db *database.DB, conv *airac.Converter, cfg *config.Config, log *slog.Logger) *Handlers {
	return &Handlers{
		db:        db,
		calendars: calendar.NewService(db, log),
		conv:      conv,
		cfg:       cfg,
		logger:    log,
		now:       time.Now,
	}
}

// CycleResponse is the JSON form of a cycle.
type CycleResponse struct {
	Identifier      string `json:"identifier"`
	Year            int    `json:"year"`
	Ordinal         int    `json:"ordinal"`
	EffectiveDate   string `json:"effective_date"`
	EndDate         string `json:"end_date"`
	CycleLengthDays int    `json:"cycle_length_days"`
}

func newCycleResponse(conv *airac.Converter, cy airac.Cycle) CycleResponse {
	return CycleResponse{
		Identifier:      cy.Identifier.String(),
		Year:            cy.Year,
		Ordinal:         cy.Ordinal,
		EffectiveDate:   airac.FormatDate(cy.EffectiveDate),
		EndDate:         airac.FormatDate(conv.EndDate(cy)),
		CycleLengthDays: conv.CycleLengthDays(),
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.db.Health(ctx); err != nil {
		logger.Warn(ctx, "health check failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", CodeHealthCheckFailed)
		return
	}

	stats, err := h.db.GetStats(ctx)
	if err != nil {
		logger.Warn(ctx, "health check stats failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", CodeHealthCheckFailed)
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"status":            "healthy",
		"epoch":             airac.FormatDate(h.conv.Epoch()),
		"cycle_length_days": h.conv.CycleLengthDays(),
		"stored_calendars":  stats.Calendars,
		"stored_cycles":     stats.Cycles,
	})
}

// GetCurrentCycle handles GET /api/v1/cycles/current
func (h *Handlers) GetCurrentCycle(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.converterFor(w, r)
	if !ok {
		return
	}

	today := h.now().UTC()
	cy := calendar.Current(conv, today)

	WriteSuccess(w, map[string]interface{}{
		"date":  airac.FormatDate(today),
		"cycle": newCycleResponse(conv, cy),
	})
}

// GetCycleByDate handles GET /api/v1/cycles/date/{YYYY-MM-DD}
func (h *Handlers) GetCycleByDate(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.converterFor(w, r)
	if !ok {
		return
	}

	dateStr := chi.URLParam(r, "date")
	cy, err := conv.DateStringToCycle(dateStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid date: %s. Use YYYY-MM-DD", dateStr), CodeInvalidDate)
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"date":  dateStr,
		"cycle": newCycleResponse(conv, cy),
	})
}

// GetCycleByIdentifier handles GET /api/v1/cycles/identifier/{YYOO}
func (h *Handlers) GetCycleByIdentifier(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.converterFor(w, r)
	if !ok {
		return
	}

	idStr := chi.URLParam(r, "identifier")
	cy, err := conv.IdentifierStringToCycle(idStr)
	if err != nil {
		if airac.IsInvalidIdentifier(err) {
			WriteBadRequest(w, err.Error(), CodeInvalidIdentifier)
			return
		}
		logger.Error(r.Context(), "identifier lookup failed", err, slog.String("identifier", idStr))
		WriteInternalError(w, "Failed to resolve identifier")
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"identifier": idStr,
		"cycle":      newCycleResponse(conv, cy),
	})
}

// GetCycleRange handles GET /api/v1/cycles/range?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handlers) GetCycleRange(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.converterFor(w, r)
	if !ok {
		return
	}

	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" || endStr == "" {
		WriteBadRequest(w, "Both start and end date parameters are required")
		return
	}

	startDate, err := airac.ParseDate(startStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid start date: %s. Use YYYY-MM-DD", startStr), CodeInvalidDate)
		return
	}

	endDate, err := airac.ParseDate(endStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid end date: %s. Use YYYY-MM-DD", endStr), CodeInvalidDate)
		return
	}

	if startDate.After(endDate) {
		WriteBadRequest(w, "Start date must be before or equal to end date")
		return
	}

	if days := int(endDate.Sub(startDate).Hours() / 24); days > MaxRangeDays {
		WriteBadRequest(w, fmt.Sprintf("Date range cannot exceed %d days", MaxRangeDays))
		return
	}

	cycles := conv.CyclesBetween(startDate, endDate)
	results := make([]CycleResponse, 0, len(cycles))
	for _, cy := range cycles {
		results = append(results, newCycleResponse(conv, cy))
	}

	WriteSuccess(w, map[string]interface{}{
		"start":  startStr,
		"end":    endStr,
		"count":  len(results),
		"cycles": results,
	})
}

// GetCalendar handles GET /api/v1/calendar/{year}
func (h *Handlers) GetCalendar(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.converterFor(w, r)
	if !ok {
		return
	}

	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	cal, stored, err := h.calendars.Year(r.Context(), conv, year)
	if err != nil {
		h.writeCalendarError(w, r, year, err)
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"year":         cal.Year,
		"scheme":       cal.Scheme,
		"stored":       stored,
		"generated_at": cal.GeneratedAt,
		"cycles":       cal.Cycles,
	})
}

// RegenerateCalendar handles POST /api/v1/calendar/{year}
func (h *Handlers) RegenerateCalendar(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.converterFor(w, r)
	if !ok {
		return
	}

	year, ok := yearParam(w, r)
	if !ok {
		return
	}

	cal, err := h.calendars.Regenerate(r.Context(), conv, year)
	if err != nil {
		h.writeCalendarError(w, r, year, err)
		return
	}

	logger.Info(r.Context(), "calendar regenerated",
		slog.Int("year", year),
		slog.Int("cycle_length_days", conv.CycleLengthDays()),
	)

	WriteSuccess(w, map[string]interface{}{
		"year":         cal.Year,
		"scheme":       cal.Scheme,
		"generated_at": cal.GeneratedAt,
		"cycles":       cal.Cycles,
	})
}

func (h *Handlers) writeCalendarError(w http.ResponseWriter, r *http.Request, year int, err error) {
	if errors.Is(err, calendar.ErrYearOutOfRange) {
		WriteBadRequest(w, err.Error())
		return
	}
	logger.Error(r.Context(), "calendar request failed", err, slog.Int("year", year))
	WriteInternalError(w, "Failed to build calendar")
}

// converterFor returns the default converter, or one with the cycle length
// given by ?weeks=N. On a bad parameter it writes the error and returns false.
func (h *Handlers) converterFor(w http.ResponseWriter, r *http.Request) (*airac.Converter, bool) {
	weeksStr := r.URL.Query().Get("weeks")
	if weeksStr == "" {
		return h.conv, true
	}

	weeks, err := strconv.Atoi(weeksStr)
	if err != nil || weeks < 1 || weeks > config.MaxCycleLengthWeeks {
		WriteBadRequest(w, fmt.Sprintf("weeks must be an integer between 1 and %d", config.MaxCycleLengthWeeks))
		return nil, false
	}

	logger.Debug(r.Context(), "cycle length override", slog.Int("weeks", weeks))

	conv, err := airac.NewConverter(airac.Config{
		Epoch:           h.conv.Epoch(),
		CycleLengthDays: airac.CycleLengthWeeks(weeks),
	})
	if err != nil {
		WriteBadRequest(w, err.Error())
		return nil, false
	}
	return conv, true
}

func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	yearStr := chi.URLParam(r, "year")
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid year: %s", yearStr))
		return 0, false
	}
	return year, true
}
