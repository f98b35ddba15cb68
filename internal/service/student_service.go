package service

import (
	"tutor_desk_backend/internal/model"
	"tutor_desk_backend/internal/repository"
	"tutor_desk_backend/internal/util"
)

type StudentService struct {
	StudentRepo *repository.StudentRepository
	SessionRepo *repository.SessionRepository
}

func NewStudentService(studentRepo *repository.StudentRepository, sessionRepo *repository.SessionRepository) *StudentService {
	return &StudentService{StudentRepo: studentRepo, SessionRepo: sessionRepo}
}

func (s *StudentService) Create(student *model.Student) error {
	student.Active = true
	return s.StudentRepo.Create(student)
}

func (s *StudentService) Update(id uint, updates *model.Student) (*model.Student, error) {
	existing, err := s.StudentRepo.FindByID(id)
	if err != nil {
		return nil, util.ErrStudentNotFound
	}

	existing.Name = updates.Name
	existing.Phone = updates.Phone
	existing.ParentPhone = updates.ParentPhone
	existing.SessionType = updates.SessionType
	existing.DefaultStartTime = updates.DefaultStartTime
	existing.DefaultDurationMinutes = updates.DefaultDurationMinutes
	existing.MonthlyRate = updates.MonthlyRate
	existing.MonthlyCancellationLimit = updates.MonthlyCancellationLimit
	existing.NotifyTutorOnCancel = updates.NotifyTutorOnCancel
	existing.AutoNotifyParent = updates.AutoNotifyParent

	if err := s.StudentRepo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *StudentService) Get(id uint) (*model.Student, error) {
	student, err := s.StudentRepo.FindByID(id)
	if err != nil {
		return nil, util.ErrStudentNotFound
	}
	sessions, err := s.SessionRepo.ListByStudent(id)
	if err == nil {
		student.Sessions = sessions
	}
	return student, nil
}

func (s *StudentService) List() ([]model.Student, error) {
	return s.StudentRepo.List()
}

func (s *StudentService) Delete(id uint) error {
	if _, err := s.StudentRepo.FindByID(id); err != nil {
		return util.ErrStudentNotFound
	}
	return s.StudentRepo.Delete(id)
}
