package models

import (
	"time"
)

// UserRole is assigned once at registration and never changes.
type UserRole int

const (
	RoleUnset    UserRole = 0
	RoleVendor   UserRole = 1
	RoleCustomer UserRole = 2
)

func (r UserRole) String() string {
	switch r {
	case RoleVendor:
		return "vendor"
	case RoleCustomer:
		return "customer"
	default:
		return "unset"
	}
}

type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	FirstName    string     `json:"first_name" gorm:"size:50"`
	LastName     string     `json:"last_name" gorm:"size:50"`
	Username     string     `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Email        string     `json:"email" gorm:"size:100;uniqueIndex;not null"`
	PhoneNumber  string     `json:"phone_number" gorm:"size:12"`
	Role         UserRole   `json:"role" gorm:"not null;default:0"`
	PasswordHash string     `json:"-" gorm:"not null"`
	IsActive     bool       `json:"is_active" gorm:"not null;default:false"`
	IsStaff      bool       `json:"is_staff" gorm:"not null;default:false"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// FullName mirrors how the dashboards greet a user.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserProfile is created together with its User and owned by it.
// Latitude and Longitude are system-maintained and never bound from requests.
type UserProfile struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	User           *User     `json:"-" gorm:"foreignKey:UserID"`
	ProfilePicture string    `json:"profile_picture"`
	CoverPhoto     string    `json:"cover_photo"`
	Address        string    `json:"address" gorm:"size:250"`
	Country        string    `json:"country" gorm:"size:15"`
	State          string    `json:"state" gorm:"size:15"`
	City           string    `json:"city" gorm:"size:15"`
	PinCode        string    `json:"pin_code" gorm:"size:6"`
	Latitude       *float64  `json:"latitude"`
	Longitude      *float64  `json:"longitude"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
