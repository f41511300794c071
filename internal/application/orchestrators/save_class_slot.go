package orchestrators

import (
	"context"
	"log/slog"

	scheduleStore "yogao/internal/adapters/storage/schedule"
	"yogao/internal/domain/schedule"

	"github.com/google/uuid"
)

// SaveClassSlotInput carries input for the orchestrator. An empty ID means
// create; a known ID means update.
type SaveClassSlotInput struct {
	ID        string
	Name      string
	DayOfWeek int
	StartTime string
	EndTime   string
	Color     string
}

// SaveClassSlotDeps holds dependencies for SaveClassSlot.
type SaveClassSlotDeps struct {
	ScheduleStore scheduleStore.Store
}

// ExecuteSaveClassSlot creates or updates a recurring weekly class.
// PRE: Input passes ClassSlot validation
// POST: Slot is persisted; a fresh ID is generated when Input.ID is empty
func ExecuteSaveClassSlot(ctx context.Context, input SaveClassSlotInput, deps SaveClassSlotDeps) (string, error) {
	slot := schedule.ClassSlot{
		ID:        input.ID,
		Name:      input.Name,
		DayOfWeek: input.DayOfWeek,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Color:     input.Color,
	}
	if slot.ID == "" {
		slot.ID = uuid.New().String()
	}
	if err := slot.Validate(); err != nil {
		return "", err
	}
	if err := deps.ScheduleStore.Save(ctx, slot); err != nil {
		return "", err
	}

	slog.Info("class_slot_saved",
		"class_slot_id", slot.ID,
		"day_of_week", slot.DayOfWeek,
		"start_time", slot.StartTime,
	)
	return slot.ID, nil
}

// ExecuteDeleteClassSlot removes a class from the weekly schedule.
// PRE: slotID names an existing slot
// POST: Slot is removed; past attendance records keep their slot reference
func ExecuteDeleteClassSlot(ctx context.Context, slotID string, deps SaveClassSlotDeps) error {
	if _, err := deps.ScheduleStore.GetByID(ctx, slotID); err != nil {
		return err
	}
	if err := deps.ScheduleStore.Delete(ctx, slotID); err != nil {
		return err
	}
	slog.Info("class_slot_deleted", "class_slot_id", slotID)
	return nil
}
