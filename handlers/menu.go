package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"foodonline-api/models"
	"foodonline-api/slug"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ── Menu Builder ────────────────────────────────────────────────────────────

// MenuBuilder lists the vendor's categories with their food items
func (h *Handler) MenuBuilder(c *gin.Context) {
	vendor := h.currentVendor(c)
	if vendor == nil {
		return
	}
	var categories []models.Category
	err := h.db.WithContext(c.Request.Context()).
		Preload("FoodItems", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		Where("vendor_id = ?", vendor.ID).
		Order("created_at").
		Find(&categories).Error
	if err != nil {
		h.internalError(c, err, "Failed to load categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(categories), "categories": categories})
}

// FoodItemsByCategory lists the food of one of the vendor's categories
func (h *Handler) FoodItemsByCategory(c *gin.Context) {
	vendor := h.currentVendor(c)
	if vendor == nil {
		return
	}
	category := h.ownedCategory(c, vendor)
	if category == nil {
		return
	}
	var items []models.FoodItem
	err := h.db.WithContext(c.Request.Context()).
		Where("vendor_id = ? AND category_id = ?", vendor.ID, category.ID).
		Order("created_at").
		Find(&items).Error
	if err != nil {
		h.internalError(c, err, "Failed to load food items")
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category, "fooditems": items})
}

func pkParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("pk"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// ownedCategory loads the category named by :pk. Unknown ids give 404, other
// vendors' categories give 403.
func (h *Handler) ownedCategory(c *gin.Context, vendor *models.Vendor) *models.Category {
	id, ok := pkParam(c)
	if !ok {
		notFound(c, "Category not found", menuBuilderPath)
		return nil
	}
	var category models.Category
	err := h.db.WithContext(c.Request.Context()).First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		notFound(c, "Category not found", menuBuilderPath)
		return nil
	}
	if err != nil {
		h.internalError(c, err, "Failed to load category")
		return nil
	}
	if category.VendorID != vendor.ID {
		forbidden(c)
		return nil
	}
	return &category
}

func (h *Handler) ownedFood(c *gin.Context, vendor *models.Vendor) *models.FoodItem {
	id, ok := pkParam(c)
	if !ok {
		notFound(c, "Food item not found", menuBuilderPath)
		return nil
	}
	var food models.FoodItem
	err := h.db.WithContext(c.Request.Context()).First(&food, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		notFound(c, "Food item not found", menuBuilderPath)
		return nil
	}
	if err != nil {
		h.internalError(c, err, "Failed to load food item")
		return nil
	}
	if food.VendorID != vendor.ID {
		forbidden(c)
		return nil
	}
	return &food
}

// ── Category CRUD ───────────────────────────────────────────────────────────

type CategoryRequest struct {
	Name        string `json:"category_name" form:"category_name" binding:"required,max=50"`
	Description string `json:"description" form:"description" binding:"max=250"`
}

func (h *Handler) categoryNameTaken(c *gin.Context, vendorID uint, name string, exceptID uint) (bool, error) {
	var count int64
	err := h.db.WithContext(c.Request.Context()).Model(&models.Category{}).
		Where("vendor_id = ? AND name = ? AND id <> ?", vendorID, name, exceptID).
		Count(&count).Error
	return count > 0, err
}

// AddCategory creates a category; its slug ends with the category id
func (h *Handler) AddCategory(c *gin.Context) {
	vendor := h.currentVendor(c)
	if vendor == nil {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	taken, err := h.categoryNameTaken(c, vendor.ID, name, 0)
	if err != nil {
		h.internalError(c, err, "Failed to add category")
		return
	}
	if taken {
		fieldError(c, "category_name", "Category with this name already exists.")
		return
	}

	category := models.Category{VendorID: vendor.ID, Name: name, Description: req.Description}
	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&category).Error; err != nil {
			return err
		}
		category.Slug = slug.WithID(category.Name, category.ID)
		return tx.Model(&category).Update("slug", category.Slug).Error
	})
	if models.IsUniqueViolation(err) {
		fieldError(c, "category_name", "Category with this name already exists.")
		return
	}
	if err != nil {
		h.internalError(c, err, "Failed to add category")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Category added Successfully!", "category": category})
}

// EditCategory renames a category owned by the vendor
func (h *Handler) EditCategory(c *gin.Context) {
	vendor := h.currentVendor(c)
	if vendor == nil {
		return
	}
	category := h.ownedCategory(c, vendor)
	if category == nil {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	taken, err := h.categoryNameTaken(c, vendor.ID, name, category.ID)
	if err != nil {
		h.internalError(c, err, "Failed to update category")
		return
	}
	if taken {
		fieldError(c, "category_name", "Category with this name already exists.")
		return
	}

	category.Name = name
	category.Description = req.Description
	category.Slug = slug.WithID(name, category.ID)
	err = h.db.WithContext(c.Request.Context()).Model(category).Updates(map[string]interface{}{
		"name":        category.Name,
		"description": category.Description,
		"slug":        category.Slug,
	}).Error
	if err != nil {
		h.internalError(c, err, "Failed to update category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category updated Successfully!", "category": category})
}

// DeleteCategory removes a category and the food filed under it
func (h *Handler) DeleteCategory(c *gin.Context) {
	vendor := h.currentVendor(c)
	if vendor == nil {
		return
	}
	category := h.ownedCategory(c, vendor)
	if category == nil {
		return
	}
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		food := tx.Model(&models.FoodItem{}).Select("id").Where("category_id = ?", category.ID)
		if err := tx.Where("food_item_id IN (?)", food).Delete(&models.Cart{}).Error; err != nil {
			return err
		}
		if err := tx.Where("category_id = ?", category.ID).Delete(&models.FoodItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(category).Error
	})
	if err != nil {
		h.internalError(c, err, "Failed to delete category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category has been deleted Successfully!", "redirect": menuBuilderPath})
}

// ── Food CRUD ───────────────────────────────────────────────────────────────

type FoodItemRequest struct {
	Title       string  `json:"food_title" form:"food_title" binding:"required,max=50"`
	CategoryID  uint    `json:"category_id" form:"category_id" binding:"required"`
	Description string  `json:"description" form:"description" binding:"max=250"`
	Price       float64 `json:"price" form:"price" binding:"required,gt=0"`
	IsAvailable *bool   `json:"is_available" form:"is_available"`
}

// vendorCategory checks the requested category exists and belongs to vendor.
func (h *Handler) vendorCategory(c *gin.Context, vendor *models.Vendor, id uint) (*models.Category, bool) {
	var category models.Category
	err := h.db.WithContext(c.Request.Context()).Where("id = ? AND vendor_id = ?", id, vendor.ID).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fieldError(c, "category_id", "Select a valid choice.")
		return nil, false
	}
	if err != nil {
		h.internalError(c, err, "Failed to load category")
		return nil, false
	}
	return &category, true
}

// AddFood creates a food item in one of the vendor's categories
func (h *Handler) AddFood(c *gin.Context) {
	vendor := h.currentVendor(c)
	if vendor == nil {
		return
	}
	var req FoodItemRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	category, ok := h.vendorCategory(c, vendor, req.CategoryID)
	if !ok {
		return
	}
	pending, ok := h.prepareImages(c, map[string]string{"image": "foodimages"})
	if !ok {
		return
	}
	uploads := pending.paths()

	food := models.FoodItem{
		VendorID:    vendor.ID,
		CategoryID:  category.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Price:       req.Price,
		Image:       uploads["image"],
		IsAvailable: req.IsAvailable == nil || *req.IsAvailable,
	}
	food.Slug = slug.WithID(food.Title, category.ID)
	err := h.saveWithImages(c, pending, func(tx *gorm.DB) error {
		return tx.Create(&food).Error
	})
	if err != nil {
		h.internalError(c, err, "Failed to add food item")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Food Item added Successfully!", "fooditem": food})
}

// EditFood updates a food item owned by the vendor
func (h *Handler) EditFood(c *gin.Context) {
	vendor := h.currentVendor(c)
	if vendor == nil {
		return
	}
	food := h.ownedFood(c, vendor)
	if food == nil {
		return
	}
	var req FoodItemRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	category, ok := h.vendorCategory(c, vendor, req.CategoryID)
	if !ok {
		return
	}
	pending, ok := h.prepareImages(c, map[string]string{"image": "foodimages"})
	if !ok {
		return
	}
	uploads := pending.paths()

	food.Title = strings.TrimSpace(req.Title)
	food.CategoryID = category.ID
	food.Description = req.Description
	food.Price = req.Price
	food.Slug = slug.WithID(food.Title, category.ID)
	if req.IsAvailable != nil {
		food.IsAvailable = *req.IsAvailable
	}
	if img, ok := uploads["image"]; ok {
		food.Image = img
	}
	err := h.saveWithImages(c, pending, func(tx *gorm.DB) error {
		return tx.Save(food).Error
	})
	if err != nil {
		h.internalError(c, err, "Failed to update food item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Food Item updated Successfully!", "fooditem": food})
}

// DeleteFood removes a food item owned by the vendor
func (h *Handler) DeleteFood(c *gin.Context) {
	vendor := h.currentVendor(c)
	if vendor == nil {
		return
	}
	food := h.ownedFood(c, vendor)
	if food == nil {
		return
	}
	// cart lines go with the food so checkout never sees a dangling item
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("food_item_id = ?", food.ID).Delete(&models.Cart{}).Error; err != nil {
			return err
		}
		return tx.Delete(food).Error
	})
	if err != nil {
		h.internalError(c, err, "Failed to delete food item")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Food Item has been deleted Successfully!",
		"redirect": menuBuilderPath + "/category/" + strconv.FormatUint(uint64(food.CategoryID), 10),
	})
}
