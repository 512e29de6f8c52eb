package services

import "errors"

var (
	ErrInvalidScore     = errors.New("rating must be between 1 and 5")
	ErrAdminCannotRate  = errors.New("admins cannot rate books")
	ErrDuplicateTitle   = errors.New("a book with this title already exists for this author")
	ErrAuthorHasBooks   = errors.New("cannot delete author with published books")
	ErrCategoryHasItems = errors.New("cannot delete category that still has books")
	ErrPdfNotFound      = errors.New("PDF file not found")
)
