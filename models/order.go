package models

import "time"

// OrderStatus is the vendor-facing lifecycle of a placed order.
type OrderStatus string

const (
	StatusNew       OrderStatus = "New"
	StatusAccepted  OrderStatus = "Accepted"
	StatusCompleted OrderStatus = "Completed"
	StatusCancelled OrderStatus = "Cancelled"
)

// TaxLine is one entry of an order's tax snapshot.
type TaxLine struct {
	Percentage float64 `json:"tax_percentage"`
	Amount     float64 `json:"tax_amount"`
}

// TaxData maps tax type to the percentage and amount captured when the order
// was placed. It is never recomputed from current Tax rows.
type TaxData map[string]TaxLine

type Payment struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"not null;index"`
	TransactionID string    `json:"transaction_id" gorm:"size:100;not null"`
	PaymentMethod string    `json:"payment_method" gorm:"size:100;not null"`
	Amount        float64   `json:"amount" gorm:"not null"`
	Status        string    `json:"status" gorm:"size:100"`
	CreatedAt     time.Time `json:"created_at"`
}

type Order struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	UserID        uint          `json:"user_id" gorm:"not null;index"`
	User          *User         `json:"-" gorm:"foreignKey:UserID"`
	PaymentID     *uint         `json:"payment_id"`
	Payment       *Payment      `json:"payment,omitempty" gorm:"foreignKey:PaymentID"`
	Vendors       []Vendor      `json:"vendors,omitempty" gorm:"many2many:order_vendors"`
	OrderNumber   string        `json:"order_number" gorm:"size:30;index"`
	FirstName     string        `json:"first_name" gorm:"size:50"`
	LastName      string        `json:"last_name" gorm:"size:50"`
	Phone         string        `json:"phone" gorm:"size:15"`
	Email         string        `json:"email" gorm:"size:50"`
	Address       string        `json:"address" gorm:"size:200"`
	Country       string        `json:"country" gorm:"size:15"`
	State         string        `json:"state" gorm:"size:15"`
	City          string        `json:"city" gorm:"size:50"`
	PinCode       string        `json:"pin_code" gorm:"size:10"`
	Subtotal      float64       `json:"subtotal"`
	TotalTax      float64       `json:"total_tax"`
	Total         float64       `json:"total"`
	TaxData       TaxData       `json:"tax_data" gorm:"serializer:json"`
	PaymentMethod string        `json:"payment_method" gorm:"size:25"`
	Status        OrderStatus   `json:"status" gorm:"size:15;not null;default:'New'"`
	IsOrdered     bool          `json:"is_ordered" gorm:"not null;default:false"`
	Items         []OrderedFood `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// OrderedFood snapshots price and owning vendor at order time.
type OrderedFood struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	OrderID    uint      `json:"order_id" gorm:"not null;index"`
	UserID     uint      `json:"user_id" gorm:"not null"`
	FoodItemID uint      `json:"fooditem_id" gorm:"not null"`
	VendorID   uint      `json:"vendor_id" gorm:"not null;index"`
	Title      string    `json:"food_title"`
	Quantity   int       `json:"quantity" gorm:"not null"`
	Price      float64   `json:"price" gorm:"not null"`
	Amount     float64   `json:"amount" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
}
