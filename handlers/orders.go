package handlers

import (
	"errors"
	"net/http"

	"foodonline-api/middleware"
	"foodonline-api/models"
	"foodonline-api/orders"
	"foodonline-api/statemachine"

	"github.com/gin-gonic/gin"
)

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" form:"status" binding:"required,oneof=New Accepted Completed Cancelled"`
}

func orderDetail(o *models.Order, vendorID uint) gin.H {
	totals := orders.Compute(o, vendorID)
	return gin.H{
		"order":        o,
		"ordered_food": orders.ItemsFor(o, vendorID),
		"subtotal":     totals.Subtotal,
		"tax_data":     totals.Taxes,
		"grand_total":  totals.GrandTotal,
	}
}

// writeLookupError maps a ledger lookup failure to 404, 403 or 500.
func (h *Handler) writeLookupError(c *gin.Context, err error, redirect string) {
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		notFound(c, "Order not found", redirect)
	case errors.Is(err, orders.ErrNotOwned):
		forbidden(c)
	case errors.Is(err, statemachine.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.internalError(c, err, "Failed to load order")
	}
}

// VendorMyOrders lists placed orders containing the vendor's food
func (h *Handler) VendorMyOrders(c *gin.Context) {
	vendor := h.currentVendor(c)
	if vendor == nil {
		return
	}
	list, err := h.ledger.ForVendor(c.Request.Context(), vendor.ID)
	if err != nil {
		h.internalError(c, err, "Failed to load orders")
		return
	}

	// status summary for the order list header
	summary := map[string]int{}
	for _, o := range list {
		summary[string(o.Status)]++
	}
	rows := summarize(list, vendor.ID, h.now())
	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"count":         len(rows),
		"orders":        rows,
	})
}

// VendorOrderDetail shows the vendor's share of one order
func (h *Handler) VendorOrderDetail(c *gin.Context) {
	vendor := h.currentVendor(c)
	if vendor == nil {
		return
	}
	order, err := h.ledger.VendorOrder(c.Request.Context(), c.Param("order_number"), vendor.ID)
	if err != nil {
		h.writeLookupError(c, err, vendorDashPath)
		return
	}
	c.JSON(http.StatusOK, orderDetail(order, vendor.ID))
}

// UpdateOrderStatus applies a vendor status transition
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	vendor := h.currentVendor(c)
	if vendor == nil {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	order, err := h.ledger.SetStatus(c.Request.Context(), c.Param("order_number"), statemachine.ActorVendor, vendor.ID, req.Status)
	if err != nil {
		h.writeLookupError(c, err, vendorDashPath)
		return
	}
	h.logger.Info().Str("order_number", order.OrderNumber).Str("status", string(order.Status)).Uint("vendor_id", vendor.ID).Msg("order status changed")
	c.JSON(http.StatusOK, gin.H{
		"message":           "Order status updated",
		"order_number":      order.OrderNumber,
		"status":            order.Status,
		"valid_next_states": statemachine.ValidTransitionsFrom(order.Status),
	})
}

// CustomerMyOrders lists the caller's placed orders
func (h *Handler) CustomerMyOrders(c *gin.Context) {
	list, err := h.ledger.ForCustomer(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.internalError(c, err, "Failed to load orders")
		return
	}
	rows := summarize(list, orders.AllVendors, h.now())
	c.JSON(http.StatusOK, gin.H{"count": len(rows), "orders": rows})
}

// CustomerOrderDetail shows one of the caller's orders with full totals
func (h *Handler) CustomerOrderDetail(c *gin.Context) {
	order, err := h.ledger.CustomerOrder(c.Request.Context(), c.Param("order_number"), middleware.GetUserID(c))
	if err != nil {
		h.writeLookupError(c, err, customerOrdersPath)
		return
	}
	c.JSON(http.StatusOK, orderDetail(order, orders.AllVendors))
}

// CancelOrder lets a customer cancel an order no vendor has accepted yet
func (h *Handler) CancelOrder(c *gin.Context) {
	order, err := h.ledger.SetStatus(c.Request.Context(), c.Param("order_number"), statemachine.ActorCustomer, middleware.GetUserID(c), models.StatusCancelled)
	if err != nil {
		h.writeLookupError(c, err, customerOrdersPath)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled", "order_number": order.OrderNumber, "status": order.Status})
}

// GetStateMachineInfo returns the order lifecycle for client documentation
func GetStateMachineInfo(c *gin.Context) {
	terminal := []models.OrderStatus{}
	for _, s := range []models.OrderStatus{models.StatusNew, models.StatusAccepted, models.StatusCompleted, models.StatusCancelled} {
		if statemachine.IsTerminal(s) {
			terminal = append(terminal, s)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"terminal_states": terminal,
		"description":     "FoodOnline Order Lifecycle State Machine",
	})
}
