package Models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ShiftOffice    = "OFFICE"
	ShiftOutside   = "OUTSIDE"
	ShiftLeave     = "LEAVE"
	ShiftHalfLeave = "HALF_LEAVE"
	ShiftOther     = "OTHER"

	AttendanceStatusNormal   = "NORMAL"
	AttendanceStatusOvertime = "OVERTIME"
	AttendanceStatusExtra    = "EXTRA"
)

// AttendanceRecord is read-only to the reporting engine; ingestion happens
// elsewhere.
type AttendanceRecord struct {
	gorm.Model
	UserID        uint       `json:"user_id" gorm:"index;not null"`
	WorkDate      time.Time  `json:"work_date" gorm:"type:date;index;not null"`
	CheckInAt     *time.Time `json:"check_in_at"`
	CheckOutAt    *time.Time `json:"check_out_at"`
	ShiftType     string     `json:"shift_type" gorm:"type:varchar(20)"`
	IsHolidayWork bool       `json:"is_holiday_work"`
	Status        string     `json:"status" gorm:"type:varchar(20)"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}
