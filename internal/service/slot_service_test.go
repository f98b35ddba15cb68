package service

import (
	"testing"

	"tutor_desk_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestedSlotsSkipConflicts(t *testing.T) {
	cfg := schedulingConfig()
	conflict := NewConflictService(cfg)
	slots := NewSlotService(conflict, cfg)

	roster := rosterWithSession("10:00", 60, model.SessionScheduled)

	got := slots.SuggestedSlots(testDay, 60, "08:00", "20:00", 10, roster)
	require.NotEmpty(t, got)

	// Round trip: every suggested slot must pass the same detector.
	for _, slot := range got {
		result := conflict.CheckConflict(model.SessionCandidate{
			Date:            testDay,
			StartTime:       slot.Time,
			DurationMinutes: 60,
		}, roster)
		assert.Nil(t, result, "slot %s should be conflict-free", slot.Time)
	}

	// 09:30, 10:00, 10:30 and 11:00 all collide with or crowd the
	// 10:00-11:00 session under the 15-minute minimum gap.
	for _, slot := range got {
		assert.NotContains(t, []string{"09:30", "10:00", "10:30", "11:00"}, slot.Time)
	}
}

func TestSuggestedSlotsChronologicalAndCapped(t *testing.T) {
	cfg := schedulingConfig()
	conflict := NewConflictService(cfg)
	slots := NewSlotService(conflict, cfg)

	got := slots.SuggestedSlots(testDay, 60, "08:00", "20:00", 3, nil)
	require.Len(t, got, 3)
	assert.Equal(t, "08:00", got[0].Time)
	assert.Equal(t, "08:30", got[1].Time)
	assert.Equal(t, "09:00", got[2].Time)
}

func TestSuggestedSlotsDayParts(t *testing.T) {
	cfg := schedulingConfig()
	slots := NewSlotService(NewConflictService(cfg), cfg)

	got := slots.SuggestedSlots(testDay, 30, "11:30", "18:00", 20, nil)
	require.NotEmpty(t, got)

	byTime := make(map[string]model.DayPart, len(got))
	for _, s := range got {
		byTime[s.Time] = s.DayPart
	}
	assert.Equal(t, model.DayPartMorning, byTime["11:30"])
	assert.Equal(t, model.DayPartAfternoon, byTime["12:00"])
	assert.Equal(t, model.DayPartAfternoon, byTime["16:30"])
	assert.Equal(t, model.DayPartEvening, byTime["17:00"])
}

func TestSuggestedSlotsBadRangeFallsBack(t *testing.T) {
	cfg := schedulingConfig()
	slots := NewSlotService(NewConflictService(cfg), cfg)

	got := slots.SuggestedSlots(testDay, 60, "bogus", "also bogus", 1, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "08:00", got[0].Time)
}
