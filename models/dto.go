package models

import "time"

type RegisterRequest struct {
	FirstName string   `json:"first_name" binding:"required,min=1,max=50"`
	LastName  string   `json:"last_name" binding:"required,min=1,max=50"`
	Email     string   `json:"email" binding:"required,email"`
	Password  string   `json:"password" binding:"required,min=6"`
	Role      UserRole `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token     string `json:"token"`
	CSRFToken string `json:"csrf_token"`
	User      User   `json:"user"`
}

type CreateAuthorRequest struct {
	Name  string  `json:"name" binding:"required,min=1,max=100"`
	Email *string `json:"email,omitempty" binding:"omitempty,email,max=100"`
	Phone *string `json:"phone,omitempty" binding:"omitempty,max=20"`
	Age   int     `json:"age" binding:"required,min=1,max=120"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// CreateItemRequest arrives as a multipart form because of the optional PDF.
type CreateItemRequest struct {
	Name       string `form:"name" binding:"required,min=1,max=200"`
	CategoryID uint   `form:"category_id" binding:"required"`
	AuthorID   uint   `form:"author_id" binding:"required"`
}

type RateItemRequest struct {
	Rating  int     `json:"rating" binding:"required"`
	Comment *string `json:"comment,omitempty" binding:"omitempty,max=500"`
}

type CheckDuplicateRequest struct {
	Name     string `json:"name" binding:"required"`
	AuthorID uint   `json:"author_id" binding:"required"`
	ItemID   *uint  `json:"item_id,omitempty"`
}

type SearchRequest struct {
	SearchTerm string `json:"search_term"`
}

type SortRequest struct {
	SortBy string `json:"sort_by"`
}

type BulkDeleteRequest struct {
	AuthorIDs []uint `json:"author_ids" binding:"required"`
}

type ItemListParams struct {
	Search     string `form:"search"`
	CategoryID uint   `form:"category_id"`
	AuthorID   uint   `form:"author_id"`
	SortBy     string `form:"sort_by,default=created_at"`
	SortOrder  string `form:"sort_order,default=desc"`
}

// ItemSummary is one row of the item list, with the joined names and the
// rating aggregate the list view renders.
type ItemSummary struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	AuthorID      uint      `json:"author_id"`
	AuthorName    string    `json:"author_name"`
	CategoryID    uint      `json:"category_id"`
	CategoryName  string    `json:"category_name"`
	DownloadCount int       `json:"download_count"`
	AverageRating float64   `json:"average_rating"`
	TotalRatings  int64     `json:"total_ratings"`
	HasPdf        bool      `json:"has_pdf"`
	CreatedAt     time.Time `json:"created_at"`
}

/// ItemDetails is the per-item AJAX payload: the caller's own rating plus,
// for admins only, every individual rating.
type ItemDetails struct {
	ID            uint          `json:"id"`
	Name          string        `json:"name"`
	AuthorName    string        `json:"author_name"`
	CategoryName  string        `json:"category_name"`
	CreatedAt     time.Time     `json:"created_at"`
	DownloadCount int           `json:"download_count"`
	AverageRating float64       `json:"average_rating"`
	TotalRatings  int64         `json:"total_ratings"`
	UserRating    *int          `json:"user_rating,omitempty"`
	UserComment   *string       `json:"user_comment,omitempty"`
	HasPdf        bool          `json:"has_pdf"`
	PdfPath       string        `json:"pdf_path,omitempty"`
	CanRate       bool          `json:"can_rate"`
	Ratings       []RatingEntry `json:"ratings,omitempty"`
}

type RatingEntry struct {
	ID           uint      `json:"id"`
	ItemID       uint      `json:"item_id"`
	ItemName     string    `json:"item_name,omitempty"`
	AuthorName   string    `json:"author_name,omitempty"`
	CategoryName string    `json:"category_name,omitempty"`
	UserName     string    `json:"user_name"`
	UserEmail    string    `json:"user_email,omitempty"`
	Rating       int       `json:"rating"`
	Comment      *string   `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// RatingStats is returned after a vote so the UI can refresh the aggregate
// without reloading.
type RatingStats struct {
	AverageRating float64 `json:"average_rating"`
	TotalRatings  int64   `json:"total_ratings"`
	Updated       bool    `json:"-"`
}

type DownloadResult struct {
	DownloadURL   string `json:"download_url"`
	DownloadCount int    `json:"download_count"`
}

// AuthorSummary nests the book summaries the author list view shows.
type AuthorSummary struct {
	ID         uint              `json:"id"`
	Name       string            `json:"name"`
	Email      *string           `json:"email,omitempty"`
	Phone      *string           `json:"phone,omitempty"`
	Age        int               `json:"age"`
	BooksCount int               `json:"books_count"`
	Books      []AuthorBookEntry `json:"books"`
}

type AuthorBookEntry struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	CategoryName string    `json:"category_name"`
	CreatedAt    time.Time `json:"created_at"`
}

type AuthorStatistics struct {
	TotalAuthors        int64   `json:"total_authors"`
	AuthorsWithBooks    int64   `json:"authors_with_books"`
	AuthorsWithoutBooks int64   `json:"authors_without_books"`
	TotalBooks          int64   `json:"total_books"`
	AverageAge          float64 `json:"average_age"`
	OldestAuthor        int     `json:"oldest_author"`
	YoungestAuthor      int     `json:"youngest_author"`
}

type CategorySummary struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	ItemsCount int64  `json:"items_count"`
}
