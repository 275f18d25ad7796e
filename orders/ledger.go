package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"foodonline-api/models"
	"foodonline-api/statemachine"

	"gorm.io/gorm"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrNotOwned      = errors.New("order does not belong to this account")
	ErrEmptyCart     = errors.New("cart is empty")
	ErrAlreadyPaid   = errors.New("order is already paid")
	// ErrItemUnavailable means a cart line points at food that was removed
	// or taken off the menu.
	ErrItemUnavailable = errors.New("food item is no longer available")
)

// Billing is the delivery and contact block copied onto an order.
type Billing struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Address   string
	Country   string
	State     string
	City      string
	PinCode   string
}

// Ledger reads and writes orders. Lookups that can fail for more than one
// reason return ErrOrderNotFound or ErrNotOwned so callers can tell them apart.
type Ledger struct {
	db  *gorm.DB
	now func() time.Time
}

// NewLedger creates a ledger. A nil now uses time.Now.
func NewLedger(db *gorm.DB, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{db: db, now: now}
}

// ForVendor lists placed orders with at least one item from vendorID,
// newest first.
func (l *Ledger) ForVendor(ctx context.Context, vendorID uint) ([]models.Order, error) {
	var list []models.Order
	sub := l.db.Model(&models.OrderedFood{}).Select("order_id").Where("vendor_id = ?", vendorID)
	err := l.db.WithContext(ctx).
		Preload("Items").
		Where("is_ordered = ? AND id IN (?)", true, sub).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list orders for vendor %d: %w", vendorID, err)
	}
	return list, nil
}

// ForCustomer lists the customer's placed orders, newest first.
func (l *Ledger) ForCustomer(ctx context.Context, userID uint) ([]models.Order, error) {
	var list []models.Order
	err := l.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND is_ordered = ?", userID, true).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list orders for user %d: %w", userID, err)
	}
	return list, nil
}

func (l *Ledger) placed(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := l.db.WithContext(ctx).
		Preload("Items").
		Where("order_number = ? AND is_ordered = ?", orderNumber, true).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", orderNumber, err)
	}
	return &order, nil
}

// VendorOrder loads a placed order the vendor sold at least one item in.
func (l *Ledger) VendorOrder(ctx context.Context, orderNumber string, vendorID uint) (*models.Order, error) {
	order, err := l.placed(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	for _, item := range order.Items {
		if item.VendorID == vendorID {
			return order, nil
		}
	}
	return nil, ErrNotOwned
}

// CustomerOrder loads a placed order belonging to userID.
func (l *Ledger) CustomerOrder(ctx context.Context, orderNumber string, userID uint) (*models.Order, error) {
	order, err := l.placed(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotOwned
	}
	return order, nil
}

// ItemsFor returns the order's lines sold by vendorID.
func ItemsFor(order *models.Order, vendorID uint) []models.OrderedFood {
	items := make([]models.OrderedFood, 0, len(order.Items))
	for _, item := range order.Items {
		if vendorID == AllVendors || item.VendorID == vendorID {
			items = append(items, item)
		}
	}
	return items
}

// Place turns the user's cart into an unpaid order. Prices, vendors and the
// registered taxes are snapshotted; later catalog or tax edits do not touch it.
func (l *Ledger) Place(ctx context.Context, userID uint, billing Billing, paymentMethod string) (*models.Order, error) {
	var order *models.Order
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart []models.Cart
		if err := tx.Preload("FoodItem").Where("user_id = ?", userID).Order("id").Find(&cart).Error; err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if len(cart) == 0 {
			return ErrEmptyCart
		}
		var taxes []models.Tax
		if err := tx.Where("is_registered = ?", true).Find(&taxes).Error; err != nil {
			return fmt.Errorf("load taxes: %w", err)
		}

		for _, line := range cart {
			if line.FoodItem.ID == 0 || !line.FoodItem.IsAvailable || line.FoodItem.VendorID == 0 {
				return fmt.Errorf("%w: cart line %d", ErrItemUnavailable, line.ID)
			}
		}

		var subtotal Cents
		vendorIDs := make([]uint, 0, len(cart))
		seen := make(map[uint]bool)
		for _, line := range cart {
			subtotal += FromFloat(line.FoodItem.Price) * Cents(line.Quantity)
			if !seen[line.FoodItem.VendorID] {
				seen[line.FoodItem.VendorID] = true
				vendorIDs = append(vendorIDs, line.FoodItem.VendorID)
			}
		}
		taxData, totalTax := BuildTaxData(subtotal, taxes)

		order = &models.Order{
			UserID:        userID,
			FirstName:     billing.FirstName,
			LastName:      billing.LastName,
			Phone:         billing.Phone,
			Email:         billing.Email,
			Address:       billing.Address,
			Country:       billing.Country,
			State:         billing.State,
			City:          billing.City,
			PinCode:       billing.PinCode,
			Subtotal:      subtotal.Float64(),
			TotalTax:      totalTax.Float64(),
			Total:         (subtotal + totalTax).Float64(),
			TaxData:       taxData,
			PaymentMethod: paymentMethod,
			Status:        models.StatusNew,
			CreatedAt:     l.now(),
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		order.OrderNumber = l.now().Format("20060102150405") + strconv.FormatUint(uint64(order.ID), 10)
		if err := tx.Model(order).Update("order_number", order.OrderNumber).Error; err != nil {
			return fmt.Errorf("set order number: %w", err)
		}

		var vendors []models.Vendor
		if err := tx.Where("id IN ?", vendorIDs).Find(&vendors).Error; err != nil {
			return fmt.Errorf("load vendors: %w", err)
		}
		if err := tx.Model(order).Association("Vendors").Append(&vendors); err != nil {
			return fmt.Errorf("link vendors: %w", err)
		}

		order.Items = make([]models.OrderedFood, 0, len(cart))
		for _, line := range cart {
			price := FromFloat(line.FoodItem.Price)
			order.Items = append(order.Items, models.OrderedFood{
				OrderID:    order.ID,
				UserID:     userID,
				FoodItemID: line.FoodItemID,
				VendorID:   line.FoodItem.VendorID,
				Title:      line.FoodItem.Title,
				Quantity:   line.Quantity,
				Price:      price.Float64(),
				Amount:     (price * Cents(line.Quantity)).Float64(),
			})
		}
		if err := tx.Create(&order.Items).Error; err != nil {
			return fmt.Errorf("create order items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Pay records a payment for an unpaid order, marks it placed and empties
// the customer's cart.
func (l *Ledger) Pay(ctx context.Context, userID uint, orderNumber, transactionID, method, status string) (*models.Order, error) {
	var order models.Order
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Items").Where("order_number = ?", orderNumber).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("load order %s: %w", orderNumber, err)
		}
		if order.UserID != userID {
			return ErrNotOwned
		}
		if order.IsOrdered {
			return ErrAlreadyPaid
		}

		payment := &models.Payment{
			UserID:        userID,
			TransactionID: transactionID,
			PaymentMethod: method,
			Amount:        order.Total,
			Status:        status,
		}
		if err := tx.Create(payment).Error; err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		order.PaymentID = &payment.ID
		order.Payment = payment
		order.IsOrdered = true
		err = tx.Model(&order).Updates(map[string]interface{}{
			"payment_id": payment.ID,
			"is_ordered": true,
		}).Error
		if err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Cart{}).Error; err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// SetStatus moves a placed order to a new status on behalf of actor. Vendors
// must have sold an item in the order; customers must own it.
func (l *Ledger) SetStatus(ctx context.Context, orderNumber string, actor statemachine.Actor, actorID uint, to models.OrderStatus) (*models.Order, error) {
	var (
		order *models.Order
		err   error
	)
	switch actor {
	case statemachine.ActorVendor:
		order, err = l.VendorOrder(ctx, orderNumber, actorID)
	case statemachine.ActorCustomer:
		order, err = l.CustomerOrder(ctx, orderNumber, actorID)
	default:
		return nil, ErrNotOwned
	}
	if err != nil {
		return nil, err
	}
	if err := statemachine.CanTransition(order.Status, to, actor); err != nil {
		return nil, err
	}
	if err := l.db.WithContext(ctx).Model(order).Update("status", to).Error; err != nil {
		return nil, fmt.Errorf("update order %s status: %w", orderNumber, err)
	}
	order.Status = to
	return order, nil
}
