package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/movement"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
)

type AttendanceHandler interface {
	RecordSession(w http.ResponseWriter, r *http.Request)
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	Ping(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	Sessions(w http.ResponseWriter, r *http.Request)

	// Admin
	RecomputeSummary(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	monitorService    movement.MonitorService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, monitorService movement.MonitorService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		monitorService:    monitorService,
	}
}

// RecordSession implements AttendanceHandler.
func (h *attendanceHandlerImpl) RecordSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req attendance.RecordSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.UserID = userID

	h.record(w, r, req)
}

// locationBody is the body of the check-in and check-out shortcuts.
type locationBody struct {
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	DeviceInfo *string  `json:"device_info,omitempty"`
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.recordTyped(w, r, attendance.SessionTypeCheckIn)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	h.recordTyped(w, r, attendance.SessionTypeCheckOut)
}

func (h *attendanceHandlerImpl) recordTyped(w http.ResponseWriter, r *http.Request, typ attendance.SessionType) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var body locationBody
	if !decodeJSON(w, r, &body) {
		return
	}

	h.record(w, r, attendance.RecordSessionRequest{
		UserID:     userID,
		Type:       typ,
		Latitude:   body.Latitude,
		Longitude:  body.Longitude,
		DeviceInfo: body.DeviceInfo,
	})
}

func (h *attendanceHandlerImpl) record(w http.ResponseWriter, r *http.Request, req attendance.RecordSessionRequest) {
	result, err := h.attendanceService.RecordSession(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	message := "Checked in successfully"
	if req.Type == attendance.SessionTypeCheckOut {
		message = "Checked out successfully"
	}
	response.Created(w, message, result)
}

// Ping implements AttendanceHandler.
func (h *attendanceHandlerImpl) Ping(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req attendance.PingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.UserID = userID

	result, err := h.monitorService.EvaluatePing(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	status, err := h.attendanceService.GetTodayStatus(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, status)
}

// Sessions implements AttendanceHandler.
func (h *attendanceHandlerImpl) Sessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.GetTodaySessions(r.Context(), userID, r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// RecomputeSummary implements AttendanceHandler.
func (h *attendanceHandlerImpl) RecomputeSummary(w http.ResponseWriter, r *http.Request) {
	var req attendance.RecomputeSummaryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	date, err := utils.ParseBusinessDate(req.Date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	summary, err := h.attendanceService.RecomputeSummary(r.Context(), req.UserID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Summary recomputed", attendance.ToSummaryResponse(summary))
}
