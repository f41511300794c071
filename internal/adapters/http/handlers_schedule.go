package web

import (
	"errors"
	"net/http"

	"yogao/internal/application/orchestrators"
	"yogao/internal/application/projections"
	"yogao/internal/domain/schedule"
)

// classSlotRequest is the JSON body for POST /api/schedule. An empty id
// creates a new slot.
type classSlotRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	DayOfWeek int    `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Color     string `json:"color"`
}

// handleClassSlots handles GET (list) and POST (create/update) for /api/schedule
func handleClassSlots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method == "GET" {
		slots, err := stores.ScheduleStore.List(ctx)
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, slots)
		return
	}

	if r.Method == "POST" {
		var req classSlotRequest
		if err := strictDecode(r, &req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		input := orchestrators.SaveClassSlotInput{
			ID:        req.ID,
			Name:      req.Name,
			DayOfWeek: req.DayOfWeek,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Color:     req.Color,
		}
		deps := orchestrators.SaveClassSlotDeps{ScheduleStore: stores.ScheduleStore}

		id, err := orchestrators.ExecuteSaveClassSlot(ctx, input, deps)
		if err != nil {
			if isSlotValidationError(err) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			internalError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"id": id})
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

func isSlotValidationError(err error) bool {
	return errors.Is(err, schedule.ErrInvalidDay) ||
		errors.Is(err, schedule.ErrEmptyStartTime) ||
		errors.Is(err, schedule.ErrEmptyEndTime) ||
		errors.Is(err, schedule.ErrInvalidColor)
}

// handleClassSlotDetail handles DELETE for /api/schedule/{id}
func handleClassSlotDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != "DELETE" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := r.PathValue("id")

	deps := orchestrators.SaveClassSlotDeps{ScheduleStore: stores.ScheduleStore}
	if err := orchestrators.ExecuteDeleteClassSlot(r.Context(), id, deps); err != nil {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleClassRoster handles GET /api/roster?date=YYYY-MM-DD&slot=<id>
func handleClassRoster(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "Invalid date", http.StatusBadRequest)
		return
	}
	if date.IsZero() {
		date = timeNow()
	}

	query := projections.GetClassRosterQuery{
		Date:        date,
		ClassSlotID: r.URL.Query().Get("slot"),
	}
	deps := projections.GetClassRosterDeps{
		StudentStore:    stores.StudentStore,
		MembershipStore: stores.MembershipStore,
		AttendanceStore: stores.AttendanceStore,
		ScheduleStore:   stores.ScheduleStore,
	}

	result, err := projections.QueryGetClassRoster(r.Context(), query, deps)
	if err != nil {
		if errors.Is(err, projections.ErrClassSlotNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// toggleAttendanceRequest is the JSON body for POST /api/attendance/toggle.
type toggleAttendanceRequest struct {
	StudentID   string `json:"studentId"`
	Date        string `json:"date"`
	ClassSlotID string `json:"classSlotId"`
}

// handleToggleAttendance handles POST /api/attendance/toggle
func handleToggleAttendance(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req toggleAttendanceRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		http.Error(w, "Invalid date", http.StatusBadRequest)
		return
	}
	if date.IsZero() {
		date = timeNow()
	}

	input := orchestrators.ToggleAttendanceInput{
		StudentID:   req.StudentID,
		Date:        date,
		ClassSlotID: req.ClassSlotID,
	}
	deps := orchestrators.ToggleAttendanceDeps{
		StudentStore:    stores.StudentStore,
		AttendanceStore: stores.AttendanceStore,
		ScheduleStore:   stores.ScheduleStore,
	}

	result, err := orchestrators.ExecuteToggleAttendance(r.Context(), input, deps)
	if err != nil {
		if errors.Is(err, orchestrators.ErrStudentNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
