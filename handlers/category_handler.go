package handlers

import (
	"errors"

	"book-catalog-api/helper"
	"book-catalog-api/models"
	"book-catalog-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CategoryHandler struct {
	categoryService services.CategoryService
	Helper          *helper.HTTPHelper
}

func NewCategoryHandler(categoryService services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, Helper: &helper.HTTPHelper{}}
}

func (h *CategoryHandler) GetCategories(c *gin.Context) {
	categories, err := h.categoryService.GetCategories()
	if err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	h.Helper.SendSuccess(c, "Success", categories)
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.Helper.SendBadRequest(c, "Invalid category ID", h.Helper.EmptyJsonMap())
		return
	}

	category, err := h.categoryService.GetCategory(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.Helper.SendNotFoundError(c, "Category not found", h.Helper.EmptyJsonMap())
			return
		}
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	h.Helper.SendSuccess(c, "Success", category)
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	category, err := h.categoryService.CreateCategory(req)
	if err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	h.Helper.SendSuccess(c, "Category has been added successfully", category)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.Helper.SendBadRequest(c, "Invalid category ID", h.Helper.EmptyJsonMap())
		return
	}

	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	category, err := h.categoryService.UpdateCategory(id, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.Helper.SendNotFoundError(c, "Category not found", h.Helper.EmptyJsonMap())
			return
		}
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	h.Helper.SendSuccess(c, "Category has been updated successfully", category)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.Helper.SendBadRequest(c, "Invalid category ID", h.Helper.EmptyJsonMap())
		return
	}

	if err := h.categoryService.DeleteCategory(id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			h.Helper.SendNotFoundError(c, "Category not found", h.Helper.EmptyJsonMap())
		case errors.Is(err, services.ErrCategoryHasItems):
			h.Helper.SendBadRequest(c, "Cannot delete category. Books still reference it.", h.Helper.EmptyJsonMap())
		default:
			h.Helper.SendBadRequest(c, "Delete failed: "+err.Error(), h.Helper.EmptyJsonMap())
		}
		return
	}

	h.Helper.SendSuccess(c, "Category has been deleted successfully", h.Helper.EmptyJsonMap())
}
