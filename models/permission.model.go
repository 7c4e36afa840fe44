package models

import "gorm.io/gorm"

// Permission grants a user access to a protected capability
type Permission struct {
	gorm.Model
	UserID     uint   `json:"user_id" gorm:"index;not null"`
	Permission string `json:"permission" gorm:"not null"`
	IsDeleted  bool   `gorm:"default:false"`
}

// Permission names used across the routers
const (
	PermissionManageCourses    = "MANAGE_COURSES"
	PermissionGradeSubmissions = "GRADE_SUBMISSIONS"
)
