package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// SESSION DTOs
// ========================================

type RecordSessionRequest struct {
	UserID     string      `json:"-"`
	Type       SessionType `json:"type"`
	Latitude   *float64    `json:"latitude"`
	Longitude  *float64    `json:"longitude"`
	DeviceInfo *string     `json:"device_info,omitempty"`
}

func (r *RecordSessionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if !validator.IsInSlice(string(r.Type), SessionTypeValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: " + strings.Join(SessionTypeValues, ", "),
		})
	}

	errs = validator.Coordinate(errs, r.Latitude, r.Longitude)

	if r.DeviceInfo != nil && len(*r.DeviceInfo) > 512 {
		errs = append(errs, validator.ValidationError{
			Field:   "device_info",
			Message: "device_info must not exceed 512 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type PingRequest struct {
	UserID    string   `json:"-"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (r *PingRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	errs = validator.Coordinate(errs, r.Latitude, r.Longitude)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// RecomputeSummaryRequest asks for one user's day to be re-aggregated.
type RecomputeSummaryRequest struct {
	UserID string `json:"user_id"`
	Date   string `json:"date"`
}

func (r *RecomputeSummaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SessionResponse struct {
	ID         string      `json:"id"`
	Type       SessionType `json:"type"`
	Timestamp  string      `json:"timestamp"`
	Latitude   float64     `json:"latitude"`
	Longitude  float64     `json:"longitude"`
	Address    *string     `json:"address,omitempty"`
	DeviceInfo *string     `json:"device_info,omitempty"`
}

type SummaryResponse struct {
	Date           string  `json:"date"`
	FirstCheckIn   *string `json:"first_check_in,omitempty"`
	LastCheckOut   *string `json:"last_check_out,omitempty"`
	TotalWorkMins  int     `json:"total_work_mins"`
	TotalBreakMins int     `json:"total_break_mins"`
	OvertimeMins   int     `json:"overtime_mins"`
	SessionCount   int     `json:"session_count"`
	Status         Status  `json:"status"`
}

type RecordSessionResponse struct {
	Session SessionResponse `json:"session"`
	Summary SummaryResponse `json:"summary"`
	State   DayState        `json:"state"`
}

type TodaySessionsResponse struct {
	Date     string            `json:"date"`
	State    DayState          `json:"state"`
	Sessions []SessionResponse `json:"sessions"`
	Summary  *SummaryResponse  `json:"summary,omitempty"`
}

// ========================================
// STATUS DTOs
// ========================================

type TodayStatusResponse struct {
	Date         string   `json:"date"`
	State        DayState `json:"state"`
	CanCheckIn   bool     `json:"can_check_in"`
	CanCheckOut  bool     `json:"can_check_out"`
	FirstCheckIn *string  `json:"first_check_in,omitempty"`
	WorkedMins   int      `json:"worked_mins"`
	BreakMins    int      `json:"break_mins"`
	SessionCount int      `json:"session_count"`
	Message      string   `json:"message"`
}

// ========================================
// MAPPERS
// ========================================

func formatTime(t time.Time) string {
	return t.In(utils.BusinessLocation).Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func ToSessionResponse(s Session) SessionResponse {
	return SessionResponse{
		ID:         s.ID,
		Type:       s.Type,
		Timestamp:  formatTime(s.Timestamp),
		Latitude:   s.Latitude,
		Longitude:  s.Longitude,
		Address:    s.Address,
		DeviceInfo: s.DeviceInfo,
	}
}

func ToSessionResponses(sessions []Session) []SessionResponse {
	out := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, ToSessionResponse(s))
	}
	return out
}

func ToSummaryResponse(s DailySummary) SummaryResponse {
	return SummaryResponse{
		Date:           s.Date.In(utils.BusinessLocation).Format(utils.DateLayout),
		FirstCheckIn:   formatTimePtr(s.FirstCheckIn),
		LastCheckOut:   formatTimePtr(s.LastCheckOut),
		TotalWorkMins:  s.TotalWorkMins,
		TotalBreakMins: s.TotalBreakMins,
		OvertimeMins:   s.OvertimeMins,
		SessionCount:   s.SessionCount,
		Status:         s.Status,
	}
}
