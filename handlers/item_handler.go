package handlers

import (
	"errors"
	"strconv"

	"book-catalog-api/helper"
	"book-catalog-api/middleware"
	"book-catalog-api/models"
	"book-catalog-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ItemHandler struct {
	itemService services.ItemService
	Helper      *helper.HTTPHelper
}

func NewItemHandler(itemService services.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService, Helper: &helper.HTTPHelper{}}
}

func (h *ItemHandler) GetItems(c *gin.Context) {
	var params models.ItemListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, "Invalid query parameters", err.Error())
		return
	}

	items, err := h.itemService.GetItems(params)
	if err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	h.Helper.SendSuccess(c, "Success", items)
}

func (h *ItemHandler) GetItemDetails(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.Helper.SendBadRequest(c, "Invalid item ID", h.Helper.EmptyJsonMap())
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	role := middleware.CurrentRole(c)

	details, err := h.itemService.GetItemDetails(id, userID, role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.Helper.SendNotFoundError(c, "Book not found", h.Helper.EmptyJsonMap())
			return
		}
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	h.Helper.SendSuccess(c, "Success", details)
}

func (h *ItemHandler) CreateItem(c *gin.Context) {
	var req models.CreateItemRequest
	if err := c.ShouldBind(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	// Optional upload; absence is not an error
	pdf, err := c.FormFile("pdf")
	if err != nil {
		pdf = nil
	}

	item, err := h.itemService.CreateItem(req, pdf)
	if err != nil {
		h.Helper.SendBadRequest(c, err.Error(), h.Helper.EmptyJsonMap())
		return
	}

	h.Helper.SendSuccess(c, "Book has been added successfully", item)
}

func (h *ItemHandler) UpdateItem(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.Helper.SendBadRequest(c, "Invalid item ID", h.Helper.EmptyJsonMap())
		return
	}

	var req models.CreateItemRequest
	if err := c.ShouldBind(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	pdf, err := c.FormFile("pdf")
	if err != nil {
		pdf = nil
	}

	item, err := h.itemService.UpdateItem(id, req, pdf)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.Helper.SendNotFoundError(c, "Book not found", h.Helper.EmptyJsonMap())
			return
		}
		h.Helper.SendBadRequest(c, err.Error(), h.Helper.EmptyJsonMap())
		return
	}

	h.Helper.SendSuccess(c, "Book updated successfully", item)
}

func (h *ItemHandler) DeleteItem(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.Helper.SendBadRequest(c, "Invalid item ID", h.Helper.EmptyJsonMap())
		return
	}

	if err := h.itemService.DeleteItem(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.Helper.SendNotFoundError(c, "Book not found", h.Helper.EmptyJsonMap())
			return
		}
		h.Helper.SendBadRequest(c, err.Error(), h.Helper.EmptyJsonMap())
		return
	}

	h.Helper.SendSuccess(c, "Book deleted successfully", h.Helper.EmptyJsonMap())
}

func (h *ItemHandler) RateItem(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.Helper.SendBadRequest(c, "Invalid item ID", h.Helper.EmptyJsonMap())
		return
	}

	userID, exists := middleware.CurrentUserID(c)
	if !exists {
		h.Helper.SendUnauthorizedError(c, "User not authenticated", h.Helper.EmptyJsonMap())
		return
	}
	role := middleware.CurrentRole(c)

	var req models.RateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	stats, err := h.itemService.RateItem(userID, role, id, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			h.Helper.SendNotFoundError(c, "Book not found", h.Helper.EmptyJsonMap())
		case errors.Is(err, services.ErrAdminCannotRate):
			h.Helper.SendForbiddenError(c, err.Error(), h.Helper.EmptyJsonMap())
		default:
			h.Helper.SendBadRequest(c, err.Error(), h.Helper.EmptyJsonMap())
		}
		return
	}

	message := "Rating added successfully"
	if stats.Updated {
		message = "Rating updated successfully"
	}

	h.Helper.SendSuccess(c, message, gin.H{
		"success":        true,
		"average_rating": stats.AverageRating,
		"total_ratings":  stats.TotalRatings,
	})
}

func (h *ItemHandler) DownloadPdf(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.Helper.SendBadRequest(c, "Invalid item ID", h.Helper.EmptyJsonMap())
		return
	}

	result, err := h.itemService.DownloadPdf(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, services.ErrPdfNotFound) {
			h.Helper.SendNotFoundError(c, "PDF file not found", h.Helper.EmptyJsonMap())
			return
		}
		h.Helper.SendBadRequest(c, err.Error(), h.Helper.EmptyJsonMap())
		return
	}

	h.Helper.SendSuccess(c, "Success", gin.H{
		"success":        true,
		"download_url":   result.DownloadURL,
		"download_count": result.DownloadCount,
	})
}

func (h *ItemHandler) CheckDuplicate(c *gin.Context) {
	var req models.CheckDuplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	exists, err := h.itemService.CheckDuplicate(req)
	if err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	h.Helper.SendSuccess(c, "Success", gin.H{"exists": exists})
}

// GetRatings lists every individual rating, admin only; ?item_id= filters to
// one book.
func (h *ItemHandler) GetRatings(c *gin.Context) {
	var itemID *uint
	if raw := c.Query("item_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			h.Helper.SendBadRequest(c, "Invalid item ID", h.Helper.EmptyJsonMap())
			return
		}
		id := uint(parsed)
		itemID = &id
	}

	ratings, err := h.itemService.ListRatings(itemID)
	if err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	h.Helper.SendSuccess(c, "Success", ratings)
}

func (h *ItemHandler) ExportItems(c *gin.Context) {
	content, contentType, fileName, err := h.itemService.ExportItems(c.DefaultQuery("format", "csv"))
	if err != nil {
		h.Helper.SendBadRequest(c, err.Error(), h.Helper.EmptyJsonMap())
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(200, contentType, content)
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
