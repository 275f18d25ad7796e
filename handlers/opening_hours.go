package handlers

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"foodonline-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type OpeningHourRequest struct {
	Day      int    `json:"day" form:"day" binding:"required,min=1,max=7"`
	FromHour string `json:"from_hour" form:"from_hour" binding:"required_without=IsClosed,omitempty,hour"`
	ToHour   string `json:"to_hour" form:"to_hour" binding:"required_without=IsClosed,omitempty,hour"`
	IsClosed bool   `json:"is_closed" form:"is_closed"`
}

func isAjax(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}

func hourMinutes(s string) int {
	t, err := time.Parse(hourLayout, s)
	if err != nil {
		return -1
	}
	return t.Hour()*60 + t.Minute()
}

// sortHours orders by day, then by opening time.
func sortHours(hours []models.OpeningHour) {
	sort.SliceStable(hours, func(i, j int) bool {
		if hours[i].Day != hours[j].Day {
			return hours[i].Day < hours[j].Day
		}
		return hourMinutes(hours[i].FromHour) < hourMinutes(hours[j].FromHour)
	})
}

func hourJSON(h models.OpeningHour) gin.H {
	out := gin.H{"id": h.ID, "day": h.DayName(), "day_number": h.Day}
	if h.IsClosed {
		out["is_closed"] = "Closed"
	} else {
		out["from_hour"] = h.FromHour
		out["to_hour"] = h.ToHour
	}
	return out
}

// OpeningHours lists the vendor's opening hours and the selectable values
func (h *Handler) OpeningHours(c *gin.Context) {
	vendor := h.currentVendor(c)
	if vendor == nil {
		return
	}
	var hours []models.OpeningHour
	if err := h.db.WithContext(c.Request.Context()).Where("vendor_id = ?", vendor.ID).Find(&hours).Error; err != nil {
		h.internalError(c, err, "Failed to load opening hours")
		return
	}
	sortHours(hours)
	rows := make([]gin.H, 0, len(hours))
	for _, oh := range hours {
		rows = append(rows, hourJSON(oh))
	}
	c.JSON(http.StatusOK, gin.H{
		"opening_hours": rows,
		"days":          models.Days,
		"hour_choices":  HourChoices,
	})
}

// AddOpeningHour is an AJAX endpoint. A duplicate interval answers with
// status "failed" instead of an error page.
func (h *Handler) AddOpeningHour(c *gin.Context) {
	if !isAjax(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	vendor := h.currentVendor(c)
	if vendor == nil {
		return
	}
	var req OpeningHourRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	hour := models.OpeningHour{
		VendorID: vendor.ID,
		Day:      req.Day,
		FromHour: req.FromHour,
		ToHour:   req.ToHour,
		IsClosed: req.IsClosed,
	}
	if hour.IsClosed {
		hour.FromHour, hour.ToHour = "", ""
	}

	ctx := c.Request.Context()
	var existing int64
	err := h.db.WithContext(ctx).Model(&models.OpeningHour{}).
		Where("vendor_id = ? AND day = ? AND from_hour = ? AND to_hour = ?", hour.VendorID, hour.Day, hour.FromHour, hour.ToHour).
		Count(&existing).Error
	if err != nil {
		h.internalError(c, err, "Failed to add opening hour")
		return
	}
	if existing > 0 {
		hourConflict(c, req, "opening hour for this vendor, day and interval already exists")
		return
	}
	if err := h.db.WithContext(ctx).Create(&hour).Error; err != nil {
		if models.IsUniqueViolation(err) {
			hourConflict(c, req, err.Error())
			return
		}
		h.internalError(c, err, "Failed to add opening hour")
		return
	}

	resp := hourJSON(hour)
	resp["status"] = "Success"
	c.JSON(http.StatusOK, resp)
}

func hourConflict(c *gin.Context, req OpeningHourRequest, detail string) {
	interval := req.FromHour + " - " + req.ToHour
	if req.IsClosed {
		interval = "Closed"
	}
	c.JSON(http.StatusConflict, gin.H{
		"status":  "failed",
		"message": interval + " already exist.",
		"error":   detail,
	})
}

// RemoveOpeningHour is an AJAX endpoint deleting one of the vendor's hours
func (h *Handler) RemoveOpeningHour(c *gin.Context) {
	if !isAjax(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	vendor := h.currentVendor(c)
	if vendor == nil {
		return
	}
	id, ok := pkParam(c)
	if !ok {
		notFound(c, "Opening hour not found", openingHoursPath)
		return
	}
	var hour models.OpeningHour
	err := h.db.WithContext(c.Request.Context()).First(&hour, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		notFound(c, "Opening hour not found", openingHoursPath)
		return
	}
	if err != nil {
		h.internalError(c, err, "Failed to load opening hour")
		return
	}
	if hour.VendorID != vendor.ID {
		forbidden(c)
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(&hour).Error; err != nil {
		h.internalError(c, err, "Failed to remove opening hour")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "id": hour.ID})
}
