package service

import (
	"sync/atomic"
	"time"

	"tutor_desk_backend/internal/config"
	"tutor_desk_backend/internal/model"
	"tutor_desk_backend/internal/util"
)

// SlotService enumerates conflict-free start times for a day. Every slot
// it returns passes the same ConflictService used for validation, so a
// suggested slot can never fail the pre-insert check.
type SlotService struct {
	Conflict *ConflictService
	step     atomic.Int64
}

func NewSlotService(conflict *ConflictService, cfg *config.Config) *SlotService {
	s := &SlotService{Conflict: conflict}
	s.UpdateConfig(cfg)
	return s
}

// UpdateConfig installs a new step width. Safe against concurrent
// SuggestedSlots calls.
func (s *SlotService) UpdateConfig(cfg *config.Config) {
	s.step.Store(int64(cfg.Scheduling.SlotStepMinutes))
}

// SuggestedSlots walks [rangeStart, rangeEnd) at the configured step and
// keeps candidates with no conflict, in chronological order, stopping at
// maxCount. Unparseable range bounds fall back to 08:00–20:00.
func (s *SlotService) SuggestedSlots(date time.Time, durationMinutes int, rangeStart, rangeEnd string, maxCount int, roster []model.Student) []model.SlotSuggestion {
	startMin, ok := util.ParseClock(rangeStart)
	if !ok {
		startMin = 8 * 60
	}
	endMin, ok := util.ParseClock(rangeEnd)
	if !ok {
		endMin = 20 * 60
	}
	if maxCount <= 0 {
		maxCount = 5
	}

	step := int(s.step.Load())
	if step <= 0 {
		step = 30
	}

	slots := make([]model.SlotSuggestion, 0, maxCount)
	for t := startMin; t < endMin && len(slots) < maxCount; t += step {
		candidate := model.SessionCandidate{
			Date:            date,
			StartTime:       util.FormatClock(t),
			DurationMinutes: durationMinutes,
		}
		if s.Conflict.CheckConflict(candidate, roster) != nil {
			continue
		}
		slots = append(slots, model.SlotSuggestion{
			Time:    candidate.StartTime,
			DayPart: dayPartOf(t),
		})
	}
	return slots
}

func dayPartOf(minutes int) model.DayPart {
	switch {
	case minutes < 12*60:
		return model.DayPartMorning
	case minutes < 17*60:
		return model.DayPartAfternoon
	default:
		return model.DayPartEvening
	}
}
