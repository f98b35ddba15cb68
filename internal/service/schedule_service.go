package service

import (
	"strconv"
	"time"

	"tutor_desk_backend/internal/model"
	"tutor_desk_backend/internal/repository"
	"tutor_desk_backend/internal/util"
)

// ScheduleService owns session lifecycle: validated insert, cancel,
// validated restore and confirmation. Both the pre-insert and pre-restore
// paths run through the same ConflictService, so the two UI flows render
// the same ConflictResult shape.
type ScheduleService struct {
	StudentRepo *repository.StudentRepository
	SessionRepo *repository.SessionRepository
	Conflict    *ConflictService
	Slots       *SlotService
	Queue       *QueueService
}

func NewScheduleService(
	studentRepo *repository.StudentRepository,
	sessionRepo *repository.SessionRepository,
	conflict *ConflictService,
	slots *SlotService,
	queue *QueueService,
) *ScheduleService {
	return &ScheduleService{
		StudentRepo: studentRepo,
		SessionRepo: sessionRepo,
		Conflict:    conflict,
		Slots:       slots,
		Queue:       queue,
	}
}

// Validate checks a candidate against the current roster. A nil result
// means the time is safe.
func (s *ScheduleService) Validate(candidate model.SessionCandidate) (*model.ConflictResult, error) {
	roster, err := s.StudentRepo.ListWithSessions()
	if err != nil {
		return nil, err
	}
	return s.Conflict.CheckConflict(candidate, roster), nil
}

// SuggestedSlots returns conflict-free start times for the given day.
func (s *ScheduleService) SuggestedSlots(date time.Time, durationMinutes int, rangeStart, rangeEnd string, maxCount int) ([]model.SlotSuggestion, error) {
	roster, err := s.StudentRepo.ListWithSessions()
	if err != nil {
		return nil, err
	}
	return s.Slots.SuggestedSlots(date, durationMinutes, rangeStart, rangeEnd, maxCount, roster), nil
}

// CreateSession validates and inserts. An error-severity conflict blocks
// the insert and is returned for the client to render; a warning does not
// block but still comes back alongside the created session.
func (s *ScheduleService) CreateSession(session *model.Session) (*model.ConflictResult, error) {
	if _, err := s.StudentRepo.FindByID(session.StudentID); err != nil {
		return nil, util.ErrStudentNotFound
	}

	result, err := s.Validate(model.SessionCandidate{
		Date:            session.Date,
		StartTime:       session.StartTime,
		DurationMinutes: session.DurationMinutes,
	})
	if err != nil {
		return nil, err
	}
	if result != nil && result.Severity == model.SeverityError {
		return result, util.ErrScheduleConflict
	}

	if session.Status == "" {
		session.Status = model.SessionScheduled
	}
	if err := s.SessionRepo.Create(session); err != nil {
		return result, err
	}
	return result, nil
}

// CancelOutcome reports what the cancellation means under the student's
// policy so the caller can notify accordingly.
type CancelOutcome struct {
	Session            *model.Session `json:"session"`
	CancellationsMonth int64          `json:"cancellationsThisMonth"`
	LimitExceeded      bool           `json:"limitExceeded"`
	NotifyTutor        bool           `json:"notifyTutor"`
	NotifyParent       bool           `json:"notifyParent"`
}

func (s *ScheduleService) CancelSession(id uint, now time.Time) (*CancelOutcome, error) {
	session, err := s.SessionRepo.FindByID(id)
	if err != nil {
		return nil, util.ErrSessionNotFound
	}
	if session.Status != model.SessionScheduled {
		return nil, util.ErrSessionNotScheduled
	}

	student, err := s.StudentRepo.FindByID(session.StudentID)
	if err != nil {
		return nil, util.ErrStudentNotFound
	}

	session.Status = model.SessionCancelled
	session.CancelledAt = &now
	if err := s.SessionRepo.Update(session); err != nil {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	count, err := s.SessionRepo.CountCancellations(student.ID, monthStart, now)
	if err != nil {
		count = 0
	}

	outcome := &CancelOutcome{
		Session:            session,
		CancellationsMonth: count,
		NotifyTutor:        student.NotifyTutorOnCancel,
		NotifyParent:       student.AutoNotifyParent,
	}
	if student.MonthlyCancellationLimit != nil && count > int64(*student.MonthlyCancellationLimit) {
		outcome.LimitExceeded = true
	}
	return outcome, nil
}

// RestoreSession reinstates a cancelled or vacation session after
// revalidating its time against the roster, exactly like a fresh insert.
func (s *ScheduleService) RestoreSession(id uint) (*model.ConflictResult, error) {
	session, err := s.SessionRepo.FindByID(id)
	if err != nil {
		return nil, util.ErrSessionNotFound
	}
	if session.Status != model.SessionCancelled && session.Status != model.SessionVacation {
		return nil, util.ErrSessionNotRestorable
	}

	result, err := s.Validate(model.SessionCandidate{
		Date:             session.Date,
		StartTime:        session.StartTime,
		DurationMinutes:  session.DurationMinutes,
		ExcludeSessionID: session.ID,
	})
	if err != nil {
		return nil, err
	}
	if result != nil && result.Severity == model.SeverityError {
		return result, util.ErrScheduleConflict
	}

	session.Status = model.SessionScheduled
	session.CancelledAt = nil
	if err := s.SessionRepo.Update(session); err != nil {
		return result, err
	}
	return result, nil
}

// ConfirmSession marks a scheduled session completed and resolves any
// pending suggestions tied to it, so the next engine run does not have to
// regenerate and re-dismiss them.
func (s *ScheduleService) ConfirmSession(id uint) (*model.Session, error) {
	session, err := s.SessionRepo.FindByID(id)
	if err != nil {
		return nil, util.ErrSessionNotFound
	}
	if session.Status != model.SessionScheduled {
		return nil, util.ErrSessionNotScheduled
	}

	session.Status = model.SessionCompleted
	if err := s.SessionRepo.Update(session); err != nil {
		return nil, err
	}

	s.Queue.ResolveByEntity("session", strconv.FormatUint(uint64(session.ID), 10))

	// If that was the last unconfirmed session of the day, the aggregate
	// end-of-day alert is moot.
	if remaining, err := s.SessionRepo.ListByDate(session.Date); err == nil {
		open := false
		for _, other := range remaining {
			if other.Status == model.SessionScheduled {
				open = true
				break
			}
		}
		if !open {
			s.Queue.ResolveByCondition("end_of_day:" + session.Date.Format(util.DateFormat))
		}
	}
	return session, nil
}
