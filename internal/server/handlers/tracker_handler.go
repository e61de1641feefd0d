package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/hatchlog/internal/dates"
	"github.com/mamadbah2/hatchlog/internal/domain/models"
	"github.com/mamadbah2/hatchlog/internal/engine"
	"github.com/mamadbah2/hatchlog/internal/service/tracker"
)

type incubationRequest struct {
	BatchName string `json:"batchName" binding:"required,max=100"`
	StartDate string `json:"startDate" binding:"required"`
	EggCount  int    `json:"eggCount" binding:"required,min=1"`
	Breed     string `json:"breed" binding:"max=100"`
}

type medicationRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	DateGiven    string `json:"dateGiven"`
	NextSchedule string `json:"nextSchedule"`
	Notes        string `json:"notes" binding:"max=500"`
}

type feedingRequest struct {
	Date     string  `json:"date"`
	FeedType string  `json:"feedType" binding:"required,max=100"`
	Amount   float64 `json:"amount" binding:"gte=0"`
	Notes    string  `json:"notes" binding:"max=500"`
}

// TrackerHandler serves the record mutations and the derived views.
type TrackerHandler struct {
	tracker *tracker.Tracker
	logger  *zap.Logger
}

// NewTrackerHandler constructs the HTTP handler adapter.
func NewTrackerHandler(t *tracker.Tracker, logger *zap.Logger) *TrackerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackerHandler{tracker: t, logger: logger}
}

// session opens the caller's session, answering the request itself on failure.
func (h *TrackerHandler) session(c *gin.Context) (*tracker.Session, bool) {
	s, err := h.tracker.Session(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return nil, false
	}
	return s, true
}

// view renders one session view as JSON.
func view[T any](h *TrackerHandler, c *gin.Context, render func(*tracker.Session) (T, error)) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	out, err := render(s)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// ListIncubations returns the active and history cards.
func (h *TrackerHandler) ListIncubations(c *gin.Context) {
	view(h, c, (*tracker.Session).Incubations)
}

// CreateIncubation starts a batch.
func (h *TrackerHandler) CreateIncubation(c *gin.Context) {
	var req incubationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	start, err := dates.ParseIn(req.StartDate, h.tracker.Location())
	if err != nil {
		badRequest(c, "startDate: "+err.Error())
		return
	}

	inc, err := h.tracker.AddIncubation(c.Request.Context(), userID(c), req.BatchName, start.Time, req.EggCount, req.Breed)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, inc)
}

// CompleteIncubation marks a batch completed.
func (h *TrackerHandler) CompleteIncubation(c *gin.Context) {
	inc, err := h.tracker.CompleteIncubation(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, inc)
}

// DeleteIncubation removes a batch.
func (h *TrackerHandler) DeleteIncubation(c *gin.Context) {
	if err := h.tracker.DeleteIncubation(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMedications returns medications with their urgency.
func (h *TrackerHandler) ListMedications(c *gin.Context) {
	view(h, c, (*tracker.Session).Medications)
}

// CreateMedication records a treatment.
func (h *TrackerHandler) CreateMedication(c *gin.Context) {
	var req medicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	med := models.Medication{Name: req.Name, Notes: req.Notes}
	if req.DateGiven != "" {
		given, err := dates.ParseIn(req.DateGiven, h.tracker.Location())
		if err != nil {
			badRequest(c, "dateGiven: "+err.Error())
			return
		}
		med.DateGiven = given
	}
	if req.NextSchedule != "" {
		next, err := dates.ParseIn(req.NextSchedule, h.tracker.Location())
		if err != nil {
			badRequest(c, "nextSchedule: "+err.Error())
			return
		}
		med.NextSchedule = &next
	}

	created, err := h.tracker.AddMedication(c.Request.Context(), userID(c), med)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// DeleteMedication removes a treatment record.
func (h *TrackerHandler) DeleteMedication(c *gin.Context) {
	if err := h.tracker.DeleteMedication(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListFeedings returns feedings newest first.
func (h *TrackerHandler) ListFeedings(c *gin.Context) {
	view(h, c, (*tracker.Session).Feedings)
}

// CreateFeeding logs a ration.
func (h *TrackerHandler) CreateFeeding(c *gin.Context) {
	var req feedingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	feeding := models.Feeding{FeedType: req.FeedType, Amount: req.Amount, Notes: req.Notes}
	if req.Date != "" {
		day, err := dates.ParseIn(req.Date, h.tracker.Location())
		if err != nil {
			badRequest(c, "date: "+err.Error())
			return
		}
		feeding.Date = day
	}

	created, err := h.tracker.AddFeeding(c.Request.Context(), userID(c), feeding)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// DeleteFeeding removes a ration.
func (h *TrackerHandler) DeleteFeeding(c *gin.Context) {
	if err := h.tracker.DeleteFeeding(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Dashboard returns the landing summary.
func (h *TrackerHandler) Dashboard(c *gin.Context) {
	view(h, c, (*tracker.Session).Dashboard)
}

// TodayTasks returns the day's to-do list.
func (h *TrackerHandler) TodayTasks(c *gin.Context) {
	view(h, c, (*tracker.Session).TodayTasks)
}

// FeedSummary returns the feed windows with their labels.
func (h *TrackerHandler) FeedSummary(c *gin.Context) {
	view(h, c, func(s *tracker.Session) (gin.H, error) {
		totals, err := s.FeedSummary()
		if err != nil {
			return nil, err
		}
		return gin.H{"totals": totals, "labels": totals.Labels()}, nil
	})
}

// Month returns the 42-cell calendar grid.
func (h *TrackerHandler) Month(c *gin.Context) {
	year, month, ok := yearMonth(c)
	if !ok {
		return
	}
	view(h, c, func(s *tracker.Session) (engine.Month, error) {
		return s.Month(year, month)
	})
}

// Day returns the event lines for one calendar day.
func (h *TrackerHandler) Day(c *gin.Context) {
	year, month, ok := yearMonth(c)
	if !ok {
		return
	}
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil || day < 1 || day > 31 {
		badRequest(c, "day must be 1..31")
		return
	}
	if time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Month() != month {
		badRequest(c, "day out of range for month")
		return
	}
	view(h, c, func(s *tracker.Session) (gin.H, error) {
		events, err := s.Day(year, month, day)
		if err != nil {
			return nil, err
		}
		return gin.H{"date": time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(dates.DateLayout), "events": events}, nil
	})
}

func yearMonth(c *gin.Context) (int, time.Month, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1 || year > 9999 {
		badRequest(c, "year must be numeric")
		return 0, 0, false
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		badRequest(c, "month must be numeric")
		return 0, 0, false
	}
	return year, time.Month(month), true
}
