package models

import "time"

type Vendor struct {
	ID            uint         `json:"id" gorm:"primaryKey"`
	UserID        uint         `json:"user_id" gorm:"uniqueIndex;not null"`
	User          *User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
	UserProfileID uint         `json:"user_profile_id"`
	UserProfile   *UserProfile `json:"user_profile,omitempty" gorm:"foreignKey:UserProfileID"`
	Name          string       `json:"vendor_name" gorm:"size:50;not null"`
	Slug          string       `json:"vendor_slug" gorm:"size:100;uniqueIndex;not null"`
	License       string       `json:"vendor_license"`
	IsApproved    bool         `json:"is_approved" gorm:"not null;default:false"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Days are numbered Monday=1 .. Sunday=7.
var Days = map[int]string{
	1: "Monday",
	2: "Tuesday",
	3: "Wednesday",
	4: "Thursday",
	5: "Friday",
	6: "Saturday",
	7: "Sunday",
}

// OpeningHour is unique per (vendor, day, from, to).
type OpeningHour struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	VendorID uint   `json:"vendor_id" gorm:"not null;uniqueIndex:idx_opening_hour"`
	Day      int    `json:"day" gorm:"not null;uniqueIndex:idx_opening_hour"`
	FromHour string `json:"from_hour" gorm:"size:10;uniqueIndex:idx_opening_hour"`
	ToHour   string `json:"to_hour" gorm:"size:10;uniqueIndex:idx_opening_hour"`
	IsClosed bool   `json:"is_closed" gorm:"not null;default:false"`
}

func (h *OpeningHour) DayName() string {
	return Days[h.Day]
}
