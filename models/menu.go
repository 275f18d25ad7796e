package models

import "time"

type Category struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	VendorID    uint       `json:"vendor_id" gorm:"not null;uniqueIndex:idx_vendor_category"`
	Name        string     `json:"category_name" gorm:"size:50;not null;uniqueIndex:idx_vendor_category"`
	Slug        string     `json:"slug" gorm:"size:100"`
	Description string     `json:"description" gorm:"size:250"`
	FoodItems   []FoodItem `json:"fooditems,omitempty" gorm:"foreignKey:CategoryID"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type FoodItem struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	VendorID    uint      `json:"vendor_id" gorm:"not null;index"`
	CategoryID  uint      `json:"category_id" gorm:"not null;index"`
	Title       string    `json:"food_title" gorm:"size:50;not null"`
	Slug        string    `json:"slug" gorm:"size:100"`
	Description string    `json:"description" gorm:"size:250"`
	Price       float64   `json:"price" gorm:"not null"`
	Image       string    `json:"image"`
	IsAvailable bool      `json:"is_available" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Tax rows with IsRegistered set are applied to new orders.
type Tax struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	Type         string  `json:"tax_type" gorm:"size:20;uniqueIndex;not null"`
	Percentage   float64 `json:"tax_percentage" gorm:"not null"`
	IsRegistered bool    `json:"is_registered" gorm:"not null"`
}

type Cart struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_cart_user_food"`
	FoodItemID uint      `json:"fooditem_id" gorm:"not null;uniqueIndex:idx_cart_user_food"`
	FoodItem   FoodItem  `json:"fooditem" gorm:"foreignKey:FoodItemID"`
	Quantity   int       `json:"quantity" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
