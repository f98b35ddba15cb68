package service

import (
	"fmt"
	"time"

	"tutor_desk_backend/internal/model"
	"tutor_desk_backend/internal/repository"
	"tutor_desk_backend/internal/util"
)

type PaymentService struct {
	PaymentRepo *repository.PaymentRepository
	StudentRepo *repository.StudentRepository
	Queue       *QueueService
}

func NewPaymentService(paymentRepo *repository.PaymentRepository, studentRepo *repository.StudentRepository, queue *QueueService) *PaymentService {
	return &PaymentService{
		PaymentRepo: paymentRepo,
		StudentRepo: studentRepo,
		Queue:       queue,
	}
}

func (s *PaymentService) ListForStudent(studentID uint) ([]model.PaymentRecord, error) {
	if _, err := s.StudentRepo.FindByID(studentID); err != nil {
		return nil, util.ErrStudentNotFound
	}
	return s.PaymentRepo.ListByStudent(studentID)
}

// MarkPaid settles a period and resolves the matching overdue suggestion
// by condition key, keeping the queue in step without waiting for the next
// engine run.
func (s *PaymentService) MarkPaid(studentID uint, period string, amount float64, now time.Time) (*model.PaymentRecord, error) {
	student, err := s.StudentRepo.FindByID(studentID)
	if err != nil {
		return nil, util.ErrStudentNotFound
	}
	if amount <= 0 {
		amount = student.MonthlyRate
	}

	record, err := s.PaymentRepo.MarkPaid(studentID, period, amount, now)
	if err != nil {
		return nil, err
	}

	s.Queue.ResolveByCondition(fmt.Sprintf("payment:%d:%s", studentID, period))
	return record, nil
}
