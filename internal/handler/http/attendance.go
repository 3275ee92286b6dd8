package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/field-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/field-attendance/internal/handler/http/response"
	"github.com/cmlabs-hris/field-attendance/internal/pkg/metrics"
)

type AttendanceHandler interface {
	UpdateLocation(w http.ResponseWriter, r *http.Request)
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	Reset(w http.ResponseWriter, r *http.Request)
	Calendar(w http.ResponseWriter, r *http.Request)
	PrevMonth(w http.ResponseWriter, r *http.Request)
	NextMonth(w http.ResponseWriter, r *http.Request)
	Team(w http.ResponseWriter, r *http.Request)
	Dashboard(w http.ResponseWriter, r *http.Request)
	Events(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	metrics           *metrics.Metrics
	keepalive         time.Duration
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, m *metrics.Metrics) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		metrics:           m,
		keepalive:         30 * time.Second,
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// UpdateLocation implements AttendanceHandler.
func (h *attendanceHandlerImpl) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req attendance.LocationUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		slog.Debug("Failed to decode location update", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.UpdateLocation(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.CheckIn(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Checked in", result)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.CheckOut(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Checked out", result)
}

// Submit implements AttendanceHandler.
func (h *attendanceHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var req attendance.SubmitAttendanceRequest
	if err := decodeJSON(r, &req); err != nil {
		slog.Debug("Failed to decode attendance submission", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.attendanceService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance submitted", result)
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.Today(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Reset implements AttendanceHandler.
func (h *attendanceHandlerImpl) Reset(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.Reset(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance reset", result)
}

// Calendar implements AttendanceHandler. ?month=YYYY-MM jumps to that month.
func (h *attendanceHandlerImpl) Calendar(w http.ResponseWriter, r *http.Request) {
	var (
		result attendance.CalendarResponse
		err    error
	)
	if month := r.URL.Query().Get("month"); month != "" {
		result, err = h.attendanceService.SelectCalendarMonth(r.Context(), month)
	} else {
		result, err = h.attendanceService.Calendar(r.Context())
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// PrevMonth implements AttendanceHandler.
func (h *attendanceHandlerImpl) PrevMonth(w http.ResponseWriter, r *http.Request) {
	h.shift(w, r, -1)
}

// NextMonth implements AttendanceHandler.
func (h *attendanceHandlerImpl) NextMonth(w http.ResponseWriter, r *http.Request) {
	h.shift(w, r, 1)
}

func (h *attendanceHandlerImpl) shift(w http.ResponseWriter, r *http.Request, delta int) {
	result, err := h.attendanceService.ShiftCalendar(r.Context(), delta)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Team implements AttendanceHandler.
func (h *attendanceHandlerImpl) Team(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.TeamHistory(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Dashboard implements AttendanceHandler.
func (h *attendanceHandlerImpl) Dashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.Dashboard(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Events streams attendance changes over Server-Sent Events.
func (h *attendanceHandlerImpl) Events(w http.ResponseWriter, r *http.Request) {
	// Check if streaming is supported
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.attendanceService.Subscribe(r.Context())
	defer cleanup()
	defer h.metrics.StreamOpened()()

	// Send initial state so the client can render before the first change
	if today, err := h.attendanceService.Today(r.Context()); err == nil {
		if data, err := json.Marshal(today); err == nil {
			fmt.Fprintf(w, "event: connected\ndata: %s\n\n", data)
		}
	} else {
		fmt.Fprint(w, "event: connected\ndata: {}\n\n")
	}
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Warn("Failed to encode attendance event", "event", event.Event, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
