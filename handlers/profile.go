package handlers

import (
	"errors"
	"net/http"
	"strings"

	"foodonline-api/accounts"
	"foodonline-api/middleware"
	"foodonline-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProfileRequest updates address fields. Nil fields are left unchanged.
// Latitude and longitude are deliberately absent.
type ProfileRequest struct {
	Address *string `json:"address" form:"address" binding:"omitempty,max=250"`
	Country *string `json:"country" form:"country" binding:"omitempty,max=15"`
	State   *string `json:"state" form:"state" binding:"omitempty,max=15"`
	City    *string `json:"city" form:"city" binding:"omitempty,max=15"`
	PinCode *string `json:"pin_code" form:"pin_code" binding:"omitempty,max=6"`
}

type CustomerProfileRequest struct {
	ProfileRequest
	FirstName   *string `json:"first_name" form:"first_name" binding:"omitempty,max=50"`
	LastName    *string `json:"last_name" form:"last_name" binding:"omitempty,max=50"`
	PhoneNumber *string `json:"phone_number" form:"phone_number" binding:"omitempty,max=12"`
}

type VendorProfileRequest struct {
	ProfileRequest
	VendorName *string `json:"vendor_name" form:"vendor_name" binding:"omitempty,max=50"`
}

var profileImages = map[string]string{
	"profile_picture": "users/profile_pictures",
	"cover_photo":     "users/cover_photos",
}

// applyProfile copies the request onto p. A changed address clears the
// coordinates, which only the system may set.
func applyProfile(p *models.UserProfile, req ProfileRequest, uploads map[string]string) {
	if req.Address != nil {
		addr := strings.TrimSpace(*req.Address)
		if addr != p.Address {
			p.Address = addr
			p.Latitude = nil
			p.Longitude = nil
		}
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&p.Country, req.Country)
	set(&p.State, req.State)
	set(&p.City, req.City)
	set(&p.PinCode, req.PinCode)
	if v, ok := uploads["profile_picture"]; ok {
		p.ProfilePicture = v
	}
	if v, ok := uploads["cover_photo"]; ok {
		p.CoverPhoto = v
	}
}

func (h *Handler) loadProfile(c *gin.Context) *models.UserProfile {
	var profile models.UserProfile
	err := h.db.WithContext(c.Request.Context()).Where("user_id = ?", middleware.GetUserID(c)).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		notFound(c, "Profile not found", myAccountPath)
		return nil
	}
	if err != nil {
		h.internalError(c, err, "Failed to load profile")
		return nil
	}
	return &profile
}

// GetCustomerProfile returns the caller's account and profile
func (h *Handler) GetCustomerProfile(c *gin.Context) {
	profile := h.loadProfile(c)
	if profile == nil {
		return
	}
	user, err := h.accounts.FindByID(c.Request.Context(), profile.UserID)
	if err != nil {
		h.internalError(c, err, "Failed to load user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userJSON(user), "profile": profile})
}

// UpdateCustomerProfile edits name, phone and address
func (h *Handler) UpdateCustomerProfile(c *gin.Context) {
	var req CustomerProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	profile := h.loadProfile(c)
	if profile == nil {
		return
	}
	pending, ok := h.prepareImages(c, profileImages)
	if !ok {
		return
	}
	user, err := h.accounts.FindByID(c.Request.Context(), profile.UserID)
	if err != nil {
		h.internalError(c, err, "Failed to load user")
		return
	}

	applyProfile(profile, req.ProfileRequest, pending.paths())
	userUpdates := map[string]interface{}{}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
		userUpdates["first_name"] = user.FirstName
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
		userUpdates["last_name"] = user.LastName
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = strings.TrimSpace(*req.PhoneNumber)
		userUpdates["phone_number"] = user.PhoneNumber
	}

	err = h.saveWithImages(c, pending, func(tx *gorm.DB) error {
		if err := tx.Save(profile).Error; err != nil {
			return err
		}
		if len(userUpdates) == 0 {
			return nil
		}
		return tx.Model(user).Updates(userUpdates).Error
	})
	if err != nil {
		h.internalError(c, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated.", "user": userJSON(user), "profile": profile})
}

// GetVendorProfile returns the vendor record and its owner's profile
func (h *Handler) GetVendorProfile(c *gin.Context) {
	vendor := h.currentVendor(c)
	if vendor == nil {
		return
	}
	profile := h.loadProfile(c)
	if profile == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendor": vendor, "profile": profile})
}

// UpdateVendorProfile edits the vendor name, license and address. The slug
// only changes when the name does.
func (h *Handler) UpdateVendorProfile(c *gin.Context) {
	var req VendorProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	vendor := h.currentVendor(c)
	if vendor == nil {
		return
	}
	profile := h.loadProfile(c)
	if profile == nil {
		return
	}
	if req.VendorName != nil && strings.TrimSpace(*req.VendorName) == "" {
		fieldError(c, "vendor_name", "This field is required.")
		return
	}
	images := map[string]string{"vendor_license": "vendor/license"}
	for k, v := range profileImages {
		images[k] = v
	}
	pending, ok := h.prepareImages(c, images)
	if !ok {
		return
	}

	uploads := pending.paths()
	applyProfile(profile, req.ProfileRequest, uploads)
	if req.VendorName != nil {
		accounts.RenameVendor(vendor, *req.VendorName)
	}
	if v, ok := uploads["vendor_license"]; ok {
		vendor.License = v
	}

	err := h.saveWithImages(c, pending, func(tx *gorm.DB) error {
		if err := tx.Save(profile).Error; err != nil {
			return err
		}
		return tx.Model(vendor).Updates(map[string]interface{}{
			"name":    vendor.Name,
			"slug":    vendor.Slug,
			"license": vendor.License,
		}).Error
	})
	if err != nil {
		h.internalError(c, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated.", "vendor": vendor, "profile": profile})
}
