package models

import "gorm.io/gorm"

const (
	RoleStudent    = "STUDENT"
	RoleInstructor = "INSTRUCTOR"
	RoleAdmin      = "ADMIN"
)

// User model
type User struct {
	gorm.Model
	Name      string `json:"name" gorm:"not null"`
	Email     string `json:"email" gorm:"uniqueIndex;not null"`
	Mobile    string `json:"mobile"`
	Password  string `json:"-" gorm:"not null"`
	Role      string `json:"role" gorm:"type:varchar(20);default:'STUDENT'"`
	IsActive  bool   `json:"is_active" gorm:"default:true"`
	IsDeleted bool   `gorm:"default:false"`
}
