package service

import (
	"fmt"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"tutor_desk_backend/internal/config"
	"tutor_desk_backend/internal/model"
	"tutor_desk_backend/internal/util"
)

// engineOptions is the immutable knob snapshot one generate pass reads.
type engineOptions struct {
	lookaheadMinutes    int
	gapThresholdMinutes int
	cancellationWindow  time.Duration
	cancellationCount   int
	maxSuggestions      int
}

// EngineService scans the roster and payment snapshots and produces the
// ranked batch of candidate alerts. Deterministic given its inputs: no
// clock reads, no I/O. The caller hands the batch to the queue for
// reconciliation.
type EngineService struct {
	Conflict *ConflictService
	opts     atomic.Pointer[engineOptions]
}

func NewEngineService(conflict *ConflictService, cfg *config.Config) *EngineService {
	e := &EngineService{Conflict: conflict}
	e.UpdateConfig(cfg)
	return e
}

// UpdateConfig installs new rule thresholds. Safe to call while Generate
// runs on other goroutines.
func (e *EngineService) UpdateConfig(cfg *config.Config) {
	e.opts.Store(&engineOptions{
		lookaheadMinutes:    cfg.Scheduling.PreSessionLookaheadMin,
		gapThresholdMinutes: cfg.Scheduling.GapThresholdMinutes,
		cancellationWindow:  time.Duration(cfg.Scheduling.CancellationWindowDays) * 24 * time.Hour,
		cancellationCount:   cfg.Scheduling.CancellationPatternCount,
		maxSuggestions:      cfg.Scheduling.MaxSuggestions,
	})
}

// Generate runs every rule, sorts by priority tier ascending with an
// oldest-first tie-break, and truncates to the configured cap. Truncation
// happens only after the full sort so a low-tier item can never displace a
// higher one.
func (e *EngineService) Generate(roster []model.Student, payments []model.PaymentRecord, now time.Time) []model.Suggestion {
	o := e.opts.Load()

	var out []model.Suggestion
	out = append(out, e.preSessionRule(roster, now, o)...)
	out = append(out, e.endOfDayRule(roster, now)...)
	out = append(out, e.paymentRule(roster, payments, now)...)
	out = append(out, e.patternRule(roster, now, o)...)
	out = append(out, e.scheduleGapRule(roster, now, o)...)

	// Stable sort: rules run in a fixed order, so equal (tier, CreatedAt)
	// items keep a deterministic relative order.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if len(out) > o.maxSuggestions {
		out = out[:o.maxSuggestions]
	}
	return out
}

func newSuggestion(t model.SuggestionType, id, message, action string, related *model.RelatedEntity, now time.Time) model.Suggestion {
	tier, score := model.PriorityFor(t)
	return model.Suggestion{
		ID:            id,
		Type:          t,
		Priority:      tier,
		PriorityScore: score,
		Message:       message,
		Action:        action,
		Related:       related,
		Status:        model.SuggestionPending,
		CreatedAt:     now,
	}
}

// preSessionRule flags today's scheduled sessions starting inside the
// lookahead window, attaching the most recent prior session's topic and
// notes as context for preparation.
func (e *EngineService) preSessionRule(roster []model.Student, now time.Time, o *engineOptions) []model.Suggestion {
	var out []model.Suggestion
	nowMin := now.Hour()*60 + now.Minute()

	for i := range roster {
		student := &roster[i]
		for j := range student.Sessions {
			sess := &student.Sessions[j]
			if sess.Status != model.SessionScheduled || !model.SameDay(sess.Date, now) {
				continue
			}
			start, _ := e.Conflict.sessionInterval(sess, student)
			if start < nowMin || start > nowMin+o.lookaheadMinutes {
				continue
			}

			msg := fmt.Sprintf("Session with %s at %s starts soon.", student.Name, util.FormatClock(start))
			if prior := lastPriorSession(student, sess.Date); prior != nil {
				if prior.Topic != "" {
					msg += fmt.Sprintf(" Last topic: %s.", prior.Topic)
				}
				if prior.Notes != "" {
					msg += fmt.Sprintf(" Notes: %s.", prior.Notes)
				}
			}

			sid := strconv.FormatUint(uint64(sess.ID), 10)
			out = append(out, newSuggestion(
				model.SuggestionPreSession,
				"pre_session:"+sid,
				msg,
				model.BuildAction("open_student", strconv.FormatUint(uint64(student.ID), 10)),
				&model.RelatedEntity{Type: "session", ID: sid, ConditionKey: "session:" + sid},
				now,
			))
		}
	}
	return out
}

func lastPriorSession(student *model.Student, before time.Time) *model.Session {
	var best *model.Session
	for i := range student.Sessions {
		sess := &student.Sessions[i]
		if !sess.Status.IsActive() || !sess.Date.Before(before) {
			continue
		}
		if best == nil || sess.Date.After(best.Date) {
			best = sess
		}
	}
	return best
}

// endOfDayRule emits a single aggregate suggestion counting today's
// scheduled sessions whose end time has passed without confirmation —
// never one suggestion per session.
func (e *EngineService) endOfDayRule(roster []model.Student, now time.Time) []model.Suggestion {
	nowMin := now.Hour()*60 + now.Minute()
	count := 0

	for i := range roster {
		student := &roster[i]
		for j := range student.Sessions {
			sess := &student.Sessions[j]
			if sess.Status != model.SessionScheduled || !model.SameDay(sess.Date, now) {
				continue
			}
			if _, end := e.Conflict.sessionInterval(sess, student); end < nowMin {
				count++
			}
		}
	}

	if count == 0 {
		return nil
	}

	day := now.Format(util.DateFormat)
	noun := "sessions"
	if count == 1 {
		noun = "session"
	}
	return []model.Suggestion{newSuggestion(
		model.SuggestionEndOfDay,
		"end_of_day:"+day,
		fmt.Sprintf("%d %s today ended without confirmation.", count, noun),
		model.BuildAction("view_schedule", day),
		&model.RelatedEntity{Type: "day", ID: day, ConditionKey: "end_of_day:" + day},
		now,
	)}
}

// patternRule flags students with repeated cancellations in the trailing
// window.
func (e *EngineService) patternRule(roster []model.Student, now time.Time, o *engineOptions) []model.Suggestion {
	var out []model.Suggestion
	windowStart := now.Add(-o.cancellationWindow)

	for i := range roster {
		student := &roster[i]
		count := 0
		for j := range student.Sessions {
			sess := &student.Sessions[j]
			if sess.Status != model.SessionCancelled {
				continue
			}
			when := sess.Date
			if sess.CancelledAt != nil {
				when = *sess.CancelledAt
			}
			if when.After(windowStart) && !when.After(now) {
				count++
			}
		}
		if count < o.cancellationCount {
			continue
		}

		sid := strconv.FormatUint(uint64(student.ID), 10)
		out = append(out, newSuggestion(
			model.SuggestionPattern,
			"pattern:"+sid,
			fmt.Sprintf("%s cancelled %d sessions in the last 30 days.", student.Name, count),
			model.BuildAction("open_student", sid),
			&model.RelatedEntity{Type: "student", ID: sid, ConditionKey: "pattern:" + sid},
			now,
		))
	}
	return out
}

// paymentRule flags students whose previous calendar month is unpaid once
// that month has ended.
func (e *EngineService) paymentRule(roster []model.Student, payments []model.PaymentRecord, now time.Time) []model.Suggestion {
	period := model.PreviousPeriod(now)
	periodEnd, err := model.PeriodEnd(period, now.Location())
	if err != nil || now.Before(periodEnd) {
		return nil
	}

	paid := make(map[uint]bool, len(payments))
	for _, rec := range payments {
		if rec.Period == period && rec.Paid {
			paid[rec.StudentID] = true
		}
	}

	daysOverdue := int(now.Sub(periodEnd).Hours() / 24)

	var out []model.Suggestion
	for i := range roster {
		student := &roster[i]
		if paid[student.ID] {
			continue
		}

		sid := strconv.FormatUint(uint64(student.ID), 10)
		out = append(out, newSuggestion(
			model.SuggestionPayment,
			fmt.Sprintf("payment:%s:%s", sid, period),
			fmt.Sprintf("Payment from %s for %s is overdue by %d days.", student.Name, period, daysOverdue),
			model.BuildAction("open_payment", sid),
			&model.RelatedEntity{Type: "student", ID: sid, ConditionKey: fmt.Sprintf("payment:%s:%s", sid, period)},
			now,
		))
	}
	return out
}

// scheduleGapRule emits one suggestion per adjacent pair of today's
// scheduled sessions whose idle gap reaches the threshold.
func (e *EngineService) scheduleGapRule(roster []model.Student, now time.Time, o *engineOptions) []model.Suggestion {
	type interval struct{ start, end int }
	var today []interval

	for i := range roster {
		student := &roster[i]
		for j := range student.Sessions {
			sess := &student.Sessions[j]
			if sess.Status != model.SessionScheduled || !model.SameDay(sess.Date, now) {
				continue
			}
			start, end := e.Conflict.sessionInterval(sess, student)
			today = append(today, interval{start, end})
		}
	}

	sort.Slice(today, func(i, j int) bool { return today[i].start < today[j].start })

	day := now.Format(util.DateFormat)
	var out []model.Suggestion
	for i := 1; i < len(today); i++ {
		gap := today[i].start - today[i-1].end
		if gap < o.gapThresholdMinutes {
			continue
		}
		from := util.FormatClock(today[i-1].end)
		out = append(out, newSuggestion(
			model.SuggestionScheduleGap,
			fmt.Sprintf("schedule:%s:%s", day, from),
			fmt.Sprintf("You have a %d-minute gap between %s and %s.", gap, from, util.FormatClock(today[i].start)),
			model.BuildAction("view_schedule", day),
			&model.RelatedEntity{Type: "day", ID: day, ConditionKey: "schedule_gap:" + day},
			now,
		))
	}
	return out
}
