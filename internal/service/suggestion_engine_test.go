package service

import (
	"fmt"
	"strconv"
	"testing"
	"time"

	"tutor_desk_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() *EngineService {
	cfg := schedulingConfig()
	return NewEngineService(NewConflictService(cfg), cfg)
}

// 18:00 on the test day.
var testNow = time.Date(2026, 3, 10, 18, 0, 0, 0, time.Local)

func findByType(batch []model.Suggestion, t model.SuggestionType) []model.Suggestion {
	var out []model.Suggestion
	for _, s := range batch {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}

func TestPreSessionRule(t *testing.T) {
	engine := newEngine()
	roster := []model.Student{
		{
			BaseModel: model.BaseModel{ID: 1},
			Name:      "Alice",
			Sessions: []model.Session{
				{BaseModel: model.BaseModel{ID: 30}, StudentID: 1, Date: testDay.AddDate(0, 0, -7), StartTime: "18:30", DurationMinutes: 60, Status: model.SessionCompleted, Topic: "Fractions", Notes: "struggled with denominators"},
				{BaseModel: model.BaseModel{ID: 31}, StudentID: 1, Date: testDay, StartTime: "18:30", DurationMinutes: 60, Status: model.SessionScheduled},
				// Outside the 90-minute lookahead.
				{BaseModel: model.BaseModel{ID: 32}, StudentID: 1, Date: testDay, StartTime: "21:00", DurationMinutes: 60, Status: model.SessionScheduled},
			},
		},
	}

	batch := engine.Generate(roster, nil, testNow)
	got := findByType(batch, model.SuggestionPreSession)
	require.Len(t, got, 1)
	assert.Equal(t, "pre_session:31", got[0].ID)
	assert.Equal(t, model.InterruptTier, got[0].Priority)
	assert.Contains(t, got[0].Message, "Alice")
	assert.Contains(t, got[0].Message, "18:30")
	assert.Contains(t, got[0].Message, "Fractions")
	assert.Contains(t, got[0].Message, "struggled with denominators")
	require.NotNil(t, got[0].Related)
	assert.Equal(t, "session:31", got[0].Related.ConditionKey)
}

func TestEndOfDayRuleAggregates(t *testing.T) {
	engine := newEngine()

	// Six scheduled sessions that all ended before 18:00, unconfirmed.
	student := model.Student{BaseModel: model.BaseModel{ID: 1}, Name: "Alice"}
	for i := 0; i < 6; i++ {
		student.Sessions = append(student.Sessions, model.Session{
			BaseModel:       model.BaseModel{ID: uint(40 + i)},
			StudentID:       1,
			Date:            testDay,
			StartTime:       fmt.Sprintf("%02d:00", 8+i),
			DurationMinutes: 60,
			Status:          model.SessionScheduled,
		})
	}

	batch := engine.Generate([]model.Student{student}, nil, testNow)
	got := findByType(batch, model.SuggestionEndOfDay)
	require.Len(t, got, 1, "one aggregate suggestion, never six")
	assert.Equal(t, "end_of_day:2026-03-10", got[0].ID)
	assert.Contains(t, got[0].Message, "6 sessions")
}

func TestPatternRule(t *testing.T) {
	engine := newEngine()

	recent := testNow.AddDate(0, 0, -5)
	old := testNow.AddDate(0, 0, -45)
	student := model.Student{BaseModel: model.BaseModel{ID: 2}, Name: "Bob"}
	for i := 0; i < 3; i++ {
		when := recent
		student.Sessions = append(student.Sessions, model.Session{
			BaseModel:   model.BaseModel{ID: uint(50 + i)},
			StudentID:   2,
			Date:        recent,
			Status:      model.SessionCancelled,
			CancelledAt: &when,
		})
	}
	// Outside the trailing window: does not count.
	oldCopy := old
	student.Sessions = append(student.Sessions, model.Session{
		BaseModel: model.BaseModel{ID: 59}, StudentID: 2, Date: old, Status: model.SessionCancelled, CancelledAt: &oldCopy,
	})

	batch := engine.Generate([]model.Student{student}, nil, testNow)
	got := findByType(batch, model.SuggestionPattern)
	require.Len(t, got, 1)
	assert.Equal(t, "pattern:2", got[0].ID)
	assert.Contains(t, got[0].Message, "cancelled 3 sessions")

	// Two cancellations stay quiet.
	student.Sessions = student.Sessions[:2]
	batch = engine.Generate([]model.Student{student}, nil, testNow)
	assert.Empty(t, findByType(batch, model.SuggestionPattern))
}

func TestPaymentRule(t *testing.T) {
	engine := newEngine()
	roster := []model.Student{
		{BaseModel: model.BaseModel{ID: 3}, Name: "Cara"},
		{BaseModel: model.BaseModel{ID: 4}, Name: "Dan"},
	}
	payments := []model.PaymentRecord{
		{StudentID: 4, Period: "2026-02", Paid: true},
	}

	batch := engine.Generate(roster, payments, testNow)
	got := findByType(batch, model.SuggestionPayment)
	require.Len(t, got, 1)
	assert.Equal(t, "payment:3:2026-02", got[0].ID)
	assert.Contains(t, got[0].Message, "Cara")
	assert.Contains(t, got[0].Message, "9 days")
	assert.Equal(t, "open_payment:3", got[0].Action)

	// Month-end runs still bill the prior month, even when stepping back a
	// calendar month lands past the end of a shorter one.
	eom := time.Date(2026, 3, 31, 9, 0, 0, 0, time.Local)
	batch = engine.Generate(roster, payments, eom)
	got = findByType(batch, model.SuggestionPayment)
	require.Len(t, got, 1)
	assert.Equal(t, "payment:3:2026-02", got[0].ID)
}

func TestScheduleGapRule(t *testing.T) {
	engine := newEngine()
	roster := []model.Student{
		{
			BaseModel: model.BaseModel{ID: 5},
			Name:      "Eve",
			Sessions: []model.Session{
				{BaseModel: model.BaseModel{ID: 60}, StudentID: 5, Date: testDay, StartTime: "19:00", DurationMinutes: 60, Status: model.SessionScheduled},
				{BaseModel: model.BaseModel{ID: 61}, StudentID: 5, Date: testDay, StartTime: "22:30", DurationMinutes: 60, Status: model.SessionScheduled},
			},
		},
	}

	batch := engine.Generate(roster, []model.PaymentRecord{{StudentID: 5, Period: "2026-02", Paid: true}}, testNow)
	got := findByType(batch, model.SuggestionScheduleGap)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "150-minute gap")
	assert.Contains(t, got[0].Message, "20:00")
	assert.Contains(t, got[0].Message, "22:30")
}

func TestGenerateCapAndOrdering(t *testing.T) {
	engine := newEngine()

	// Seven unpaid students plus one imminent session: eight candidates.
	var roster []model.Student
	for i := 1; i <= 7; i++ {
		roster = append(roster, model.Student{
			BaseModel: model.BaseModel{ID: uint(i)},
			Name:      "Student " + strconv.Itoa(i),
		})
	}
	roster[0].Sessions = []model.Session{
		{BaseModel: model.BaseModel{ID: 70}, StudentID: 1, Date: testDay, StartTime: "18:30", DurationMinutes: 60, Status: model.SessionScheduled},
	}

	batch := engine.Generate(roster, nil, testNow)
	require.Len(t, batch, 5, "hard cap after sorting")

	// Most urgent first: the pre-session interrupt survives truncation.
	assert.Equal(t, model.SuggestionPreSession, batch[0].Type)
	for i := 1; i < len(batch); i++ {
		assert.GreaterOrEqual(t, batch[i].Priority, batch[i-1].Priority)
	}
}
