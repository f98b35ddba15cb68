package service

import (
	"sort"
	"sync/atomic"

	"tutor_desk_backend/internal/config"
	"tutor_desk_backend/internal/model"
	"tutor_desk_backend/internal/util"
)

// conflictOptions is the immutable knob snapshot a single check reads. The
// config watcher swaps in a whole new snapshot via UpdateConfig, so a check
// in flight never sees a half-updated set.
type conflictOptions struct {
	minGap          int
	defaultDuration int
	defaultStart    string
}

// ConflictService decides whether a candidate session collides with the
// roster. It is pure: it never touches the database and never fails —
// unparseable times fall back to the configured defaults.
type ConflictService struct {
	opts atomic.Pointer[conflictOptions]
}

func NewConflictService(cfg *config.Config) *ConflictService {
	s := &ConflictService{}
	s.UpdateConfig(cfg)
	return s
}

// UpdateConfig installs new scheduling knobs. Safe to call while checks run
// on other goroutines.
func (s *ConflictService) UpdateConfig(cfg *config.Config) {
	s.opts.Store(&conflictOptions{
		minGap:          cfg.Scheduling.MinGapMinutes,
		defaultDuration: cfg.Scheduling.DefaultDurationMinutes,
		defaultStart:    cfg.Scheduling.DefaultStartTime,
	})
}

// CheckConflict evaluates one candidate against every scheduled or
// completed session on the same calendar date. Returns nil when nothing
// overlaps or sits closer than the minimum gap.
//
// Sessions are only compared within the candidate's calendar date; a
// candidate whose duration would run past midnight is clamped at 24:00 and
// adjacent-day sessions are not consulted.
func (s *ConflictService) CheckConflict(candidate model.SessionCandidate, roster []model.Student) *model.ConflictResult {
	o := s.opts.Load()
	cStart, cEnd := candidateInterval(candidate, o)

	var conflicts []model.Conflict
	for i := range roster {
		student := &roster[i]
		for j := range student.Sessions {
			sess := &student.Sessions[j]
			if sess.ID != 0 && sess.ID == candidate.ExcludeSessionID {
				continue
			}
			if !sess.Status.IsActive() {
				continue
			}
			if !model.SameDay(sess.Date, candidate.Date) {
				continue
			}

			oStart, oEnd := sessionIntervalWith(sess, student, o)

			kind, gap, hit := compare(cStart, cEnd, oStart, oEnd, o.minGap)
			if !hit {
				continue
			}
			conflicts = append(conflicts, model.Conflict{
				StudentID:   student.ID,
				StudentName: student.Name,
				SessionID:   sess.ID,
				Kind:        kind,
				GapMinutes:  gap,
				StartTime:   util.FormatClock(oStart),
				EndTime:     util.FormatClock(oEnd),
			})
		}
	}

	if len(conflicts) == 0 {
		return nil
	}

	// Errors before warnings, then closest first.
	sort.SliceStable(conflicts, func(i, j int) bool {
		ie, je := conflicts[i].Kind == model.ConflictOverlap, conflicts[j].Kind == model.ConflictOverlap
		if ie != je {
			return ie
		}
		return conflicts[i].GapMinutes < conflicts[j].GapMinutes
	})

	severity := model.SeverityWarning
	if conflicts[0].Kind == model.ConflictOverlap {
		severity = model.SeverityError
	}

	return &model.ConflictResult{Severity: severity, Conflicts: conflicts}
}

// compare classifies one candidate/session pair. Overlapping or touching
// intervals are overlap conflicts with gap <= 0; spacing below minGap is a
// close conflict; anything wider is no conflict at all.
func compare(cStart, cEnd, oStart, oEnd, minGap int) (model.ConflictKind, int, bool) {
	if cStart < oEnd && oStart < cEnd {
		overlap := min(cEnd, oEnd) - max(cStart, oStart)
		return model.ConflictOverlap, -overlap, true
	}

	var gap int
	if cEnd <= oStart {
		gap = oStart - cEnd
	} else {
		gap = cStart - oEnd
	}

	if gap <= 0 {
		return model.ConflictOverlap, gap, true
	}
	if gap < minGap {
		return model.ConflictClose, gap, true
	}
	return "", 0, false
}

func candidateInterval(c model.SessionCandidate, o *conflictOptions) (start, end int) {
	start, ok := util.ParseClock(c.StartTime)
	if !ok {
		start, _ = util.ParseClock(o.defaultStart)
	}
	dur := c.DurationMinutes
	if dur <= 0 {
		dur = o.defaultDuration
	}
	end = start + dur
	if end > util.MinutesPerDay {
		end = util.MinutesPerDay
	}
	return start, end
}

// sessionInterval resolves a roster session's effective interval through
// the fallback chain: session value, then student default, then global
// default.
func (s *ConflictService) sessionInterval(sess *model.Session, student *model.Student) (start, end int) {
	return sessionIntervalWith(sess, student, s.opts.Load())
}

func sessionIntervalWith(sess *model.Session, student *model.Student, o *conflictOptions) (start, end int) {
	start, ok := util.ParseClock(sess.StartTime)
	if !ok {
		start, ok = util.ParseClock(student.DefaultStartTime)
		if !ok {
			start, _ = util.ParseClock(o.defaultStart)
		}
	}

	dur := sess.DurationMinutes
	if dur <= 0 {
		dur = student.DefaultDurationMinutes
	}
	if dur <= 0 {
		dur = o.defaultDuration
	}

	end = start + dur
	if end > util.MinutesPerDay {
		end = util.MinutesPerDay
	}
	return start, end
}
