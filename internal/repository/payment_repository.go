package repository

import (
	"time"

	"tutor_desk_backend/internal/model"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	DB *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

func (r *PaymentRepository) ListByStudent(studentID uint) ([]model.PaymentRecord, error) {
	var records []model.PaymentRecord
	err := r.DB.Where("student_id = ?", studentID).Order("period desc").Find(&records).Error
	return records, err
}

// ListAll returns the payment snapshot the suggestion engine scans.
func (r *PaymentRepository) ListAll() ([]model.PaymentRecord, error) {
	var records []model.PaymentRecord
	err := r.DB.Order("period desc").Find(&records).Error
	return records, err
}

func (r *PaymentRepository) Find(studentID uint, period string) (*model.PaymentRecord, error) {
	var record model.PaymentRecord
	err := r.DB.Where("student_id = ? AND period = ?", studentID, period).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MarkPaid upserts the record for (student, period) and stamps it paid.
func (r *PaymentRepository) MarkPaid(studentID uint, period string, amount float64, paidAt time.Time) (*model.PaymentRecord, error) {
	var record model.PaymentRecord
	err := r.DB.Where("student_id = ? AND period = ?", studentID, period).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		record = model.PaymentRecord{StudentID: studentID, Period: period}
	} else if err != nil {
		return nil, err
	}

	record.Paid = true
	record.PaidAt = &paidAt
	if amount > 0 {
		record.Amount = amount
	}
	if err := r.DB.Save(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}
