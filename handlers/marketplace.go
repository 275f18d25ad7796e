package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"foodonline-api/mailer"
	"foodonline-api/middleware"
	"foodonline-api/models"
	"foodonline-api/orders"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ── Marketplace (public) ────────────────────────────────────────────────────

// Marketplace lists approved vendors whose owner account is active
func (h *Handler) Marketplace(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).
		Joins("JOIN users ON users.id = vendors.user_id").
		Where("vendors.is_approved = ? AND users.is_active = ?", true, true)
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		query = query.Where("vendors.name LIKE ?", "%"+search+"%")
	}
	var vendors []models.Vendor
	if err := query.Order("vendors.created_at").Find(&vendors).Error; err != nil {
		h.internalError(c, err, "Failed to load vendors")
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendor_count": len(vendors), "vendors": vendors})
}

// isoWeekday numbers Monday=1 .. Sunday=7.
func isoWeekday(t time.Time) int {
	if t.Weekday() == time.Sunday {
		return 7
	}
	return int(t.Weekday())
}

// isOpen reports whether ref falls inside one of the open intervals listed
// for ref's weekday.
func isOpen(hours []models.OpeningHour, ref time.Time) bool {
	day := isoWeekday(ref)
	now := ref.Hour()*60 + ref.Minute()
	for _, oh := range hours {
		if oh.Day != day || oh.IsClosed {
			continue
		}
		from, to := hourMinutes(oh.FromHour), hourMinutes(oh.ToHour)
		if from < 0 || to < 0 {
			continue
		}
		if from <= now && now < to {
			return true
		}
	}
	return false
}

// VendorDetail shows a vendor's menu of available food and opening hours
func (h *Handler) VendorDetail(c *gin.Context) {
	ctx := c.Request.Context()
	var vendor models.Vendor
	err := h.db.WithContext(ctx).Where("slug = ?", c.Param("vendor_slug")).First(&vendor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		notFound(c, "Vendor not found", marketplacePath)
		return
	}
	if err != nil {
		h.internalError(c, err, "Failed to load vendor")
		return
	}

	var categories []models.Category
	err = h.db.WithContext(ctx).
		Preload("FoodItems", "is_available = ?", true).
		Where("vendor_id = ?", vendor.ID).
		Order("created_at").
		Find(&categories).Error
	if err != nil {
		h.internalError(c, err, "Failed to load menu")
		return
	}
	var hours []models.OpeningHour
	if err := h.db.WithContext(ctx).Where("vendor_id = ?", vendor.ID).Find(&hours).Error; err != nil {
		h.internalError(c, err, "Failed to load opening hours")
		return
	}
	sortHours(hours)

	ref := h.now()
	today := make([]gin.H, 0)
	all := make([]gin.H, 0, len(hours))
	for _, oh := range hours {
		all = append(all, hourJSON(oh))
		if oh.Day == isoWeekday(ref) {
			today = append(today, hourJSON(oh))
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"vendor":                vendor,
		"categories":            categories,
		"opening_hours":         all,
		"current_opening_hours": today,
		"is_open":               isOpen(hours, ref),
	})
}

// ── Cart ────────────────────────────────────────────────────────────────────

func (h *Handler) cartItems(c *gin.Context, userID uint) ([]models.Cart, error) {
	var items []models.Cart
	err := h.db.WithContext(c.Request.Context()).
		Preload("FoodItem").
		Where("user_id = ?", userID).
		Order("created_at, id").
		Find(&items).Error
	return items, err
}

// cartAmounts prices the cart with the currently registered taxes.
func (h *Handler) cartAmounts(c *gin.Context, items []models.Cart) (gin.H, error) {
	var taxes []models.Tax
	if err := h.db.WithContext(c.Request.Context()).Where("is_registered = ?", true).Find(&taxes).Error; err != nil {
		return nil, err
	}
	var subtotal orders.Cents
	counter := 0
	for _, item := range items {
		subtotal += orders.FromFloat(item.FoodItem.Price) * orders.Cents(item.Quantity)
		counter += item.Quantity
	}
	taxData, tax := orders.BuildTaxData(subtotal, taxes)
	return gin.H{
		"cart_counter": counter,
		"subtotal":     subtotal,
		"tax":          tax,
		"tax_dict":     taxData,
		"grand_total":  subtotal + tax,
	}, nil
}

// cartResponse answers a cart mutation with the new counter and amounts.
func (h *Handler) cartResponse(c *gin.Context, status int, body gin.H) {
	items, err := h.cartItems(c, middleware.GetUserID(c))
	if err != nil {
		h.internalError(c, err, "Failed to load cart")
		return
	}
	amounts, err := h.cartAmounts(c, items)
	if err != nil {
		h.internalError(c, err, "Failed to price cart")
		return
	}
	body["cart_counter"] = amounts["cart_counter"]
	body["cart_amount"] = amounts
	c.JSON(status, body)
}

// Cart returns the caller's cart with amounts
func (h *Handler) Cart(c *gin.Context) {
	items, err := h.cartItems(c, middleware.GetUserID(c))
	if err != nil {
		h.internalError(c, err, "Failed to load cart")
		return
	}
	amounts, err := h.cartAmounts(c, items)
	if err != nil {
		h.internalError(c, err, "Failed to price cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart_items": items, "cart_amount": amounts})
}

func foodParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("food_id"), 10, 64)
	return uint(id), err == nil && id > 0
}

// AddToCart adds one unit of an available food item
func (h *Handler) AddToCart(c *gin.Context) {
	foodID, ok := foodParam(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"status": "Failed", "message": "This food does not exist!"})
		return
	}
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	var food models.FoodItem
	err := h.db.WithContext(ctx).Where("id = ? AND is_available = ?", foodID, true).First(&food).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"status": "Failed", "message": "This food does not exist!"})
		return
	}
	if err != nil {
		h.internalError(c, err, "Failed to load food item")
		return
	}

	var item models.Cart
	err = h.db.WithContext(ctx).Where("user_id = ? AND food_item_id = ?", userID, food.ID).First(&item).Error
	switch {
	case err == nil:
		item.Quantity++
		err = h.db.WithContext(ctx).Model(&item).Update("quantity", item.Quantity).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.Cart{UserID: userID, FoodItemID: food.ID, Quantity: 1}
		err = h.db.WithContext(ctx).Create(&item).Error
	}
	if err != nil {
		h.internalError(c, err, "Failed to update cart")
		return
	}
	h.cartResponse(c, http.StatusOK, gin.H{"status": "Success", "message": "Added the food to the cart", "qty": item.Quantity})
}

// DecreaseCart removes one unit; the line disappears at zero
func (h *Handler) DecreaseCart(c *gin.Context) {
	foodID, ok := foodParam(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"status": "Failed", "message": "This food does not exist!"})
		return
	}
	ctx := c.Request.Context()
	var item models.Cart
	err := h.db.WithContext(ctx).Where("user_id = ? AND food_item_id = ?", middleware.GetUserID(c), foodID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"status": "Failed", "message": "You do not have this item in your cart!"})
		return
	}
	if err != nil {
		h.internalError(c, err, "Failed to load cart")
		return
	}

	if item.Quantity > 1 {
		item.Quantity--
		err = h.db.WithContext(ctx).Model(&item).Update("quantity", item.Quantity).Error
	} else {
		item.Quantity = 0
		err = h.db.WithContext(ctx).Delete(&item).Error
	}
	if err != nil {
		h.internalError(c, err, "Failed to update cart")
		return
	}
	h.cartResponse(c, http.StatusOK, gin.H{"status": "Success", "qty": item.Quantity})
}

// DeleteCart removes one of the caller's cart lines
func (h *Handler) DeleteCart(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("cart_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "Failed", "message": "Cart Item does not exist!"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND user_id = ?", id, middleware.GetUserID(c)).
		Delete(&models.Cart{})
	if res.Error != nil {
		h.internalError(c, res.Error, "Failed to delete cart item")
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"status": "Failed", "message": "Cart Item does not exist!"})
		return
	}
	h.cartResponse(c, http.StatusOK, gin.H{"status": "Success", "message": "Cart item has been deleted!"})
}

// ── Checkout ────────────────────────────────────────────────────────────────

type PlaceOrderRequest struct {
	FirstName     string `json:"first_name" form:"first_name" binding:"required,max=50"`
	LastName      string `json:"last_name" form:"last_name" binding:"required,max=50"`
	Phone         string `json:"phone" form:"phone" binding:"required,max=15"`
	Email         string `json:"email" form:"email" binding:"required,email,max=50"`
	Address       string `json:"address" form:"address" binding:"required,max=200"`
	Country       string `json:"country" form:"country" binding:"max=15"`
	State         string `json:"state" form:"state" binding:"max=15"`
	City          string `json:"city" form:"city" binding:"required,max=50"`
	PinCode       string `json:"pin_code" form:"pin_code" binding:"required,max=10"`
	PaymentMethod string `json:"payment_method" form:"payment_method" binding:"required,oneof=PayPal RazorPay"`
}

type PaymentRequest struct {
	OrderNumber   string `json:"order_number" form:"order_number" binding:"required"`
	TransactionID string `json:"transaction_id" form:"transaction_id" binding:"required,max=100"`
	PaymentMethod string `json:"payment_method" form:"payment_method" binding:"required,max=100"`
	Status        string `json:"status" form:"status" binding:"required,max=100"`
}

// PlaceOrder turns the cart into an unpaid order
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	order, err := h.ledger.Place(c.Request.Context(), middleware.GetUserID(c), orders.Billing{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
		Country:   req.Country,
		State:     req.State,
		City:      req.City,
		PinCode:   req.PinCode,
	}, req.PaymentMethod)
	if errors.Is(err, orders.ErrEmptyCart) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty", "redirect": marketplacePath})
		return
	}
	if errors.Is(err, orders.ErrItemUnavailable) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "Some items in your cart are no longer available. Please remove them and try again.",
			"redirect": "/api/customer/cart",
		})
		return
	}
	if err != nil {
		h.internalError(c, err, "Failed to place order")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed, awaiting payment",
		"order":   order,
		"totals":  orders.Compute(order, orders.AllVendors),
	})
}

// Payments records the payment, marks the order placed and mails a confirmation
func (h *Handler) Payments(c *gin.Context) {
	var req PaymentRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	order, err := h.ledger.Pay(c.Request.Context(), middleware.GetUserID(c), req.OrderNumber, req.TransactionID, req.PaymentMethod, req.Status)
	switch {
	case errors.Is(err, orders.ErrAlreadyPaid):
		c.JSON(http.StatusConflict, gin.H{"error": "Order is already paid"})
		return
	case err != nil:
		h.writeLookupError(c, err, customerDashPath)
		return
	}
	h.metrics.OrdersPlaced.Inc()
	h.logger.Info().Str("order_number", order.OrderNumber).Str("transaction_id", req.TransactionID).Msg("order paid")

	totals := orders.Compute(order, orders.AllVendors)
	lines := make([]mailer.OrderLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, mailer.OrderLine{
			Title:    item.Title,
			Quantity: item.Quantity,
			Amount:   orders.FromFloat(item.Amount).String(),
		})
	}
	var tax orders.Cents
	for _, t := range totals.Taxes {
		tax += t.Amount
	}
	h.sendMail(c, order.Email, mailer.SubjectOrder, mailer.OrderBody(
		order.FirstName, order.OrderNumber, lines,
		totals.Subtotal.String(), tax.String(), totals.GrandTotal.String(),
	))

	c.JSON(http.StatusOK, gin.H{
		"message":        "Payment received",
		"order_number":   order.OrderNumber,
		"transaction_id": req.TransactionID,
		"redirect":       customerOrdersPath,
	})
}
