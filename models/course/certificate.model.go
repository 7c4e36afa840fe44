package course

import (
	"time"

	"gorm.io/gorm"
)

// Certificate is the proof artifact for completing a course. At most one
// exists per (user, course); the unique index is the durable guarantee,
// concurrent duplicate requests resolve to the first row created.
type Certificate struct {
	gorm.Model
	UserID            uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_course_cert"`
	CourseID          uint      `json:"course_id" gorm:"not null;uniqueIndex:idx_user_course_cert"`
	SubmissionID      uint      `json:"submission_id" gorm:"not null"` // qualifying submission the certificate was issued on
	Score             float64   `json:"score"`
	CertificateNumber string    `json:"certificate_number" gorm:"unique"`
	IssuedAt          time.Time `json:"issued_at"`
}
