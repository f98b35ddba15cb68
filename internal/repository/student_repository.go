package repository

import (
	"tutor_desk_backend/internal/model"

	"gorm.io/gorm"
)

type StudentRepository struct {
	DB *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

func (r *StudentRepository) Create(student *model.Student) error {
	return r.DB.Create(student).Error
}

func (r *StudentRepository) Update(student *model.Student) error {
	return r.DB.Save(student).Error
}

func (r *StudentRepository) FindByID(id uint) (*model.Student, error) {
	var student model.Student
	err := r.DB.First(&student, id).Error
	return &student, err
}

func (r *StudentRepository) List() ([]model.Student, error) {
	var students []model.Student
	err := r.DB.Order("name asc").Find(&students).Error
	return students, err
}

// ListWithSessions loads the full roster snapshot: every active student
// with all of their sessions. This is the input both the conflict detector
// and the suggestion engine operate on.
func (r *StudentRepository) ListWithSessions() ([]model.Student, error) {
	var students []model.Student
	err := r.DB.Where("active = ?", true).
		Preload("Sessions").
		Order("name asc").
		Find(&students).Error
	return students, err
}

func (r *StudentRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", id).Delete(&model.Session{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Student{}, id).Error
	})
}
