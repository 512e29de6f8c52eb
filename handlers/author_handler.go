package handlers

import (
	"errors"

	"book-catalog-api/helper"
	"book-catalog-api/models"
	"book-catalog-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthorHandler struct {
	authorService services.AuthorService
	Helper        *helper.HTTPHelper
}

func NewAuthorHandler(authorService services.AuthorService) *AuthorHandler {
	return &AuthorHandler{authorService: authorService, Helper: &helper.HTTPHelper{}}
}

// GetAuthors lists authors with nested book summaries; ?has_books=true|false
// narrows to authors with or without published books.
func (h *AuthorHandler) GetAuthors(c *gin.Context) {
	var hasBooks *bool
	switch c.Query("has_books") {
	case "true":
		v := true
		hasBooks = &v
	case "false":
		v := false
		hasBooks = &v
	}

	authors, err := h.authorService.GetAuthors(hasBooks)
	if err != nil {
		h.Helper.SendBadRequest(c, "Error loading authors", err.Error())
		return
	}

	h.Helper.SendSuccess(c, "Success", authors)
}

func (h *AuthorHandler) GetAuthor(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.Helper.SendBadRequest(c, "Invalid author ID", h.Helper.EmptyJsonMap())
		return
	}

	author, err := h.authorService.GetAuthor(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.Helper.SendNotFoundError(c, "Author not found", h.Helper.EmptyJsonMap())
			return
		}
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	h.Helper.SendSuccess(c, "Success", author)
}

func (h *AuthorHandler) CreateAuthor(c *gin.Context) {
	var req models.CreateAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	author, err := h.authorService.CreateAuthor(req)
	if err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	h.Helper.SendSuccess(c, "Author has been added successfully", author)
}

func (h *AuthorHandler) UpdateAuthor(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.Helper.SendBadRequest(c, "Invalid author ID", h.Helper.EmptyJsonMap())
		return
	}

	var req models.CreateAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	author, err := h.authorService.UpdateAuthor(id, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.Helper.SendNotFoundError(c, "Author not found", h.Helper.EmptyJsonMap())
			return
		}
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	h.Helper.SendSuccess(c, "Author has been updated successfully", author)
}

func (h *AuthorHandler) DeleteAuthor(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.Helper.SendBadRequest(c, "Invalid author ID", h.Helper.EmptyJsonMap())
		return
	}

	if err := h.authorService.DeleteAuthor(id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			h.Helper.SendNotFoundError(c, "Author not found", h.Helper.EmptyJsonMap())
		case errors.Is(err, services.ErrAuthorHasBooks):
			h.Helper.SendBadRequest(c, "Cannot delete author. This author has published books. Please delete the books first.", h.Helper.EmptyJsonMap())
		default:
			h.Helper.SendBadRequest(c, "Delete failed: "+err.Error(), h.Helper.EmptyJsonMap())
		}
		return
	}

	h.Helper.SendSuccess(c, "Author has been deleted successfully", h.Helper.EmptyJsonMap())
}

func (h *AuthorHandler) SearchAuthors(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	authors, err := h.authorService.SearchAuthors(req.SearchTerm)
	if err != nil {
		h.Helper.SendBadRequest(c, "Search failed: "+err.Error(), h.Helper.EmptyJsonMap())
		return
	}

	h.Helper.SendSuccess(c, "Success", authors)
}

func (h *AuthorHandler) SortAuthors(c *gin.Context) {
	var req models.SortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	authors, err := h.authorService.SortAuthors(req.SortBy)
	if err != nil {
		h.Helper.SendBadRequest(c, "Sort failed: "+err.Error(), h.Helper.EmptyJsonMap())
		return
	}

	h.Helper.SendSuccess(c, "Success", authors)
}

func (h *AuthorHandler) GetStatistics(c *gin.Context) {
	stats, err := h.authorService.Statistics()
	if err != nil {
		h.Helper.SendBadRequest(c, "Error loading statistics", err.Error())
		return
	}

	h.Helper.SendSuccess(c, "Success", stats)
}

func (h *AuthorHandler) BulkDelete(c *gin.Context) {
	var req models.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	deleted, err := h.authorService.BulkDelete(req.AuthorIDs)
	if err != nil {
		h.Helper.SendBadRequest(c, "Bulk delete failed: "+err.Error(), h.Helper.EmptyJsonMap())
		return
	}

	h.Helper.SendSuccess(c, "Authors have been deleted successfully", gin.H{"deleted": deleted})
}

func (h *AuthorHandler) ExportAuthors(c *gin.Context) {
	content, contentType, fileName, err := h.authorService.ExportAuthors(c.DefaultQuery("format", "csv"))
	if err != nil {
		h.Helper.SendBadRequest(c, "Export failed: "+err.Error(), h.Helper.EmptyJsonMap())
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(200, contentType, content)
}
