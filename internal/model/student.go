package model

// Student holds per-student scheduling defaults and the cancellation policy.
// DefaultStartTime/DefaultDurationMinutes are the fallback used when a
// session does not carry its own time or duration.
// swagger:model Student
type Student struct {
	BaseModel
	Name                   string  `gorm:"size:100;not null" json:"name"`
	Phone                  string  `gorm:"size:30" json:"phone"`
	ParentPhone            string  `gorm:"size:30" json:"parentPhone"`
	SessionType            string  `gorm:"size:50;default:'private'" json:"sessionType"`
	DefaultStartTime       string  `gorm:"size:5" json:"defaultStartTime"` // "HH:MM"
	DefaultDurationMinutes int     `gorm:"default:0" json:"defaultDurationMinutes"`
	MonthlyRate            float64 `gorm:"default:0" json:"monthlyRate"`

	// Cancellation policy. A nil limit means unlimited cancellations.
	MonthlyCancellationLimit *int `json:"monthlyCancellationLimit"`
	NotifyTutorOnCancel      bool `gorm:"default:true" json:"notifyTutorOnCancel"`
	AutoNotifyParent         bool `gorm:"default:false" json:"autoNotifyParent"`

	Active bool `gorm:"default:true" json:"active"`

	Sessions []Session `gorm:"foreignKey:StudentID" json:"sessions,omitempty"`
}

func (Student) TableName() string {
	return "students"
}
