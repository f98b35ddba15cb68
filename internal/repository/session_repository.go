package repository

import (
	"time"

	"tutor_desk_backend/internal/model"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(session *model.Session) error {
	return r.DB.Create(session).Error
}

func (r *SessionRepository) Update(session *model.Session) error {
	return r.DB.Save(session).Error
}

func (r *SessionRepository) FindByID(id uint) (*model.Session, error) {
	var session model.Session
	err := r.DB.First(&session, id).Error
	return &session, err
}

func (r *SessionRepository) ListByDate(date time.Time) ([]model.Session, error) {
	var sessions []model.Session
	day := date.Format("2006-01-02")
	err := r.DB.Where("date = ?", day).Order("start_time asc").Find(&sessions).Error
	return sessions, err
}

func (r *SessionRepository) ListByStudent(studentID uint) ([]model.Session, error) {
	var sessions []model.Session
	err := r.DB.Where("student_id = ?", studentID).Order("date desc").Find(&sessions).Error
	return sessions, err
}

// CountCancellations counts a student's cancelled sessions whose
// cancellation fell inside [from, to]. Used for the monthly policy check.
func (r *SessionRepository) CountCancellations(studentID uint, from, to time.Time) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Session{}).
		Where("student_id = ? AND status = ? AND cancelled_at BETWEEN ? AND ?",
			studentID, model.SessionCancelled, from, to).
		Count(&count).Error
	return count, err
}
