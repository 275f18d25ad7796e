package handlers

import (
	"net/http"
	"time"

	"foodonline-api/middleware"
	"foodonline-api/models"
	"foodonline-api/orders"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
)

const recentOrders = 5

// orderSummary is the row shown in order lists, with totals scoped to
// vendorID (orders.AllVendors for the customer's own view).
func orderSummary(o *models.Order, vendorID uint, ref time.Time) gin.H {
	totals := orders.Compute(o, vendorID)
	return gin.H{
		"order_number":   o.OrderNumber,
		"name":           o.FirstName + " " + o.LastName,
		"status":         o.Status,
		"payment_method": o.PaymentMethod,
		"created_at":     o.CreatedAt,
		"placed":         humanize.RelTime(o.CreatedAt, ref, "ago", "from now"),
		"subtotal":       totals.Subtotal,
		"tax_data":       totals.Taxes,
		"grand_total":    totals.GrandTotal,
	}
}

func summarize(list []models.Order, vendorID uint, ref time.Time) []gin.H {
	out := make([]gin.H, 0, len(list))
	for i := range list {
		out = append(out, orderSummary(&list[i], vendorID, ref))
	}
	return out
}

func recent(rows []gin.H) []gin.H {
	if len(rows) > recentOrders {
		return rows[:recentOrders]
	}
	return rows
}

// CustomerDashboard lists the caller's placed orders
func (h *Handler) CustomerDashboard(c *gin.Context) {
	list, err := h.ledger.ForCustomer(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.internalError(c, err, "Failed to load orders")
		return
	}
	rows := summarize(list, orders.AllVendors, h.now())
	c.JSON(http.StatusOK, gin.H{
		"orders":        rows,
		"orders_count":  len(rows),
		"recent_orders": recent(rows),
	})
}

// VendorDashboard lists the vendor's placed orders with revenue for the
// current month and all time
func (h *Handler) VendorDashboard(c *gin.Context) {
	vendor := h.currentVendor(c)
	if vendor == nil {
		return
	}
	list, err := h.ledger.ForVendor(c.Request.Context(), vendor.ID)
	if err != nil {
		h.internalError(c, err, "Failed to load orders")
		return
	}
	ref := h.now()
	rows := summarize(list, vendor.ID, ref)
	c.JSON(http.StatusOK, gin.H{
		"vendor":                vendor,
		"orders":                rows,
		"orders_count":          len(rows),
		"recent_orders":         recent(rows),
		"current_month_revenue": orders.MonthlyRevenue(list, vendor.ID, ref),
		"total_revenue":         orders.TotalRevenue(list, vendor.ID),
	})
}
