package model

import "time"

// PaymentRecord tracks one student's payment for one calendar month.
// Period uses the "2006-01" layout.
// swagger:model PaymentRecord
type PaymentRecord struct {
	BaseModel
	StudentID uint       `gorm:"uniqueIndex:idx_student_period;not null" json:"studentId"`
	Period    string     `gorm:"size:7;uniqueIndex:idx_student_period;not null" json:"period"`
	Amount    float64    `gorm:"default:0" json:"amount"`
	Paid      bool       `gorm:"default:false;index" json:"paid"`
	PaidAt    *time.Time `json:"paidAt"`
}

func (PaymentRecord) TableName() string {
	return "payment_records"
}

const PeriodLayout = "2006-01"

// PreviousPeriod returns the calendar month before now, formatted as a
// payment period. Anchored to the first of the month: stepping back from
// day 29-31 directly would normalize into the wrong month.
func PreviousPeriod(now time.Time) string {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return first.AddDate(0, -1, 0).Format(PeriodLayout)
}

// PeriodEnd returns the first instant after the given period, i.e. midnight
// on the first day of the following month in the given location.
func PeriodEnd(period string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(PeriodLayout, period, loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.AddDate(0, 1, 0), nil
}
