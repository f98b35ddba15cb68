package service

import (
	"sync"
	"testing"
	"time"

	"tutor_desk_backend/internal/config"
	"tutor_desk_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schedulingConfig() *config.Config {
	return &config.Config{
		Scheduling: config.SchedulingConfig{
			MinGapMinutes:            15,
			SlotStepMinutes:          30,
			DefaultDurationMinutes:   60,
			DefaultStartTime:         "15:00",
			RetentionDays:            30,
			GapThresholdMinutes:      120,
			PreSessionLookaheadMin:   90,
			CancellationWindowDays:   30,
			CancellationPatternCount: 3,
			MaxSuggestions:           5,
		},
	}
}

var testDay = time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)

func rosterWithSession(start string, duration int, status model.SessionStatus) []model.Student {
	return []model.Student{
		{
			BaseModel: model.BaseModel{ID: 1},
			Name:      "Alice",
			Sessions: []model.Session{
				{
					BaseModel:       model.BaseModel{ID: 11},
					StudentID:       1,
					Date:            testDay,
					StartTime:       start,
					DurationMinutes: duration,
					Status:          status,
				},
			},
		},
	}
}

func candidateAt(start string, duration int) model.SessionCandidate {
	return model.SessionCandidate{Date: testDay, StartTime: start, DurationMinutes: duration}
}

func TestCheckConflictOverlap(t *testing.T) {
	svc := NewConflictService(schedulingConfig())
	roster := rosterWithSession("10:00", 60, model.SessionScheduled)

	result := svc.CheckConflict(candidateAt("10:30", 60), roster)
	require.NotNil(t, result)
	assert.Equal(t, model.SeverityError, result.Severity)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, model.ConflictOverlap, result.Conflicts[0].Kind)
	assert.Equal(t, -30, result.Conflicts[0].GapMinutes)
}

func TestCheckConflictContained(t *testing.T) {
	svc := NewConflictService(schedulingConfig())
	roster := rosterWithSession("10:00", 60, model.SessionScheduled)

	// Candidate fully inside the existing session.
	result := svc.CheckConflict(candidateAt("10:15", 30), roster)
	require.NotNil(t, result)
	assert.Equal(t, model.SeverityError, result.Severity)
	assert.Equal(t, -30, result.Conflicts[0].GapMinutes)
}

func TestCheckConflictTouching(t *testing.T) {
	svc := NewConflictService(schedulingConfig())
	roster := rosterWithSession("10:00", 60, model.SessionScheduled)

	result := svc.CheckConflict(candidateAt("11:00", 60), roster)
	require.NotNil(t, result)
	assert.Equal(t, model.SeverityError, result.Severity)
	assert.Equal(t, 0, result.Conflicts[0].GapMinutes)
}

func TestCheckConflictClose(t *testing.T) {
	svc := NewConflictService(schedulingConfig())
	roster := rosterWithSession("10:00", 60, model.SessionScheduled)

	result := svc.CheckConflict(candidateAt("11:05", 60), roster)
	require.NotNil(t, result)
	assert.Equal(t, model.SeverityWarning, result.Severity)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, model.ConflictClose, result.Conflicts[0].Kind)
	assert.Equal(t, 5, result.Conflicts[0].GapMinutes)
}

func TestCheckConflictClear(t *testing.T) {
	svc := NewConflictService(schedulingConfig())
	roster := rosterWithSession("10:00", 60, model.SessionScheduled)

	assert.Nil(t, svc.CheckConflict(candidateAt("11:20", 60), roster))
	assert.Nil(t, svc.CheckConflict(candidateAt("08:00", 60), roster))
}

func TestCheckConflictIgnoresInactiveSessions(t *testing.T) {
	svc := NewConflictService(schedulingConfig())

	for _, status := range []model.SessionStatus{model.SessionCancelled, model.SessionVacation} {
		roster := rosterWithSession("10:00", 60, status)
		assert.Nil(t, svc.CheckConflict(candidateAt("10:00", 60), roster), "status %s", status)
	}

	// Completed sessions still count.
	roster := rosterWithSession("10:00", 60, model.SessionCompleted)
	assert.NotNil(t, svc.CheckConflict(candidateAt("10:00", 60), roster))
}

func TestCheckConflictIgnoresOtherDays(t *testing.T) {
	svc := NewConflictService(schedulingConfig())
	roster := rosterWithSession("10:00", 60, model.SessionScheduled)

	other := candidateAt("10:00", 60)
	other.Date = testDay.AddDate(0, 0, 1)
	assert.Nil(t, svc.CheckConflict(other, roster))
}

func TestCheckConflictFallbackChain(t *testing.T) {
	svc := NewConflictService(schedulingConfig())

	// Session carries no time or duration; the student default applies.
	roster := []model.Student{
		{
			BaseModel:              model.BaseModel{ID: 1},
			Name:                   "Bob",
			DefaultStartTime:       "09:00",
			DefaultDurationMinutes: 90,
			Sessions: []model.Session{
				{BaseModel: model.BaseModel{ID: 12}, StudentID: 1, Date: testDay, Status: model.SessionScheduled},
			},
		},
	}

	result := svc.CheckConflict(candidateAt("09:30", 30), roster)
	require.NotNil(t, result)
	assert.Equal(t, model.SeverityError, result.Severity)

	// No student default either: the global default (15:00, 60) applies.
	roster[0].DefaultStartTime = ""
	roster[0].DefaultDurationMinutes = 0
	assert.Nil(t, svc.CheckConflict(candidateAt("09:30", 30), roster))
	assert.NotNil(t, svc.CheckConflict(candidateAt("15:30", 30), roster))
}

func TestCheckConflictUnparseableCandidateTime(t *testing.T) {
	svc := NewConflictService(schedulingConfig())
	roster := rosterWithSession("15:00", 60, model.SessionScheduled)

	// Garbage start time falls back to the default 15:00 and collides.
	result := svc.CheckConflict(candidateAt("whenever", 60), roster)
	require.NotNil(t, result)
	assert.Equal(t, model.SeverityError, result.Severity)
}

func TestCheckConflictExcludesOwnSession(t *testing.T) {
	svc := NewConflictService(schedulingConfig())
	roster := rosterWithSession("10:00", 60, model.SessionScheduled)

	candidate := candidateAt("10:00", 60)
	candidate.ExcludeSessionID = 11
	assert.Nil(t, svc.CheckConflict(candidate, roster))
}

func TestCheckConflictOrdering(t *testing.T) {
	svc := NewConflictService(schedulingConfig())
	roster := []model.Student{
		{
			BaseModel: model.BaseModel{ID: 1},
			Name:      "Alice",
			Sessions: []model.Session{
				// Close before the candidate: warning.
				{BaseModel: model.BaseModel{ID: 21}, StudentID: 1, Date: testDay, StartTime: "08:50", DurationMinutes: 60, Status: model.SessionScheduled},
				// Overlapping: error.
				{BaseModel: model.BaseModel{ID: 22}, StudentID: 1, Date: testDay, StartTime: "10:30", DurationMinutes: 60, Status: model.SessionScheduled},
			},
		},
	}

	result := svc.CheckConflict(candidateAt("10:00", 60), roster)
	require.NotNil(t, result)
	assert.Equal(t, model.SeverityError, result.Severity)
	require.Len(t, result.Conflicts, 2)
	assert.Equal(t, model.ConflictOverlap, result.Conflicts[0].Kind)
	assert.Equal(t, model.ConflictClose, result.Conflicts[1].Kind)
	assert.Less(t, result.Conflicts[0].GapMinutes, result.Conflicts[1].GapMinutes)
}

func TestCheckConflictClampsAtMidnight(t *testing.T) {
	svc := NewConflictService(schedulingConfig())
	roster := rosterWithSession("23:00", 60, model.SessionScheduled)

	// Candidate would run past midnight; comparison stays within the day.
	result := svc.CheckConflict(candidateAt("23:30", 120), roster)
	require.NotNil(t, result)
	assert.Equal(t, model.SeverityError, result.Severity)
	assert.Equal(t, -30, result.Conflicts[0].GapMinutes)
}

// Config reloads land on the watcher goroutine while handlers and the
// ticker keep reading; this must stay clean under the race detector.
func TestConfigReloadConcurrentWithReads(t *testing.T) {
	cfg := schedulingConfig()
	conflict := NewConflictService(cfg)
	slots := NewSlotService(conflict, cfg)
	engine := NewEngineService(conflict, cfg)
	roster := rosterWithSession("10:00", 60, model.SessionScheduled)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			conflict.UpdateConfig(cfg)
			slots.UpdateConfig(cfg)
			engine.UpdateConfig(cfg)
		}
	}()

	for i := 0; i < 200; i++ {
		result := conflict.CheckConflict(candidateAt("10:30", 60), roster)
		require.NotNil(t, result)
		_ = slots.SuggestedSlots(testDay, 60, "08:00", "20:00", 3, roster)
		_ = engine.Generate(roster, nil, testNow)
	}
	wg.Wait()
}
