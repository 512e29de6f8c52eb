package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"strconv"
	"time"

	"book-catalog-api/models"
	"book-catalog-api/repositories"
	"book-catalog-api/storage"

	"gorm.io/gorm"
)

type ItemService interface {
	GetItems(params models.ItemListParams) ([]models.ItemSummary, error)
	GetItemDetails(id uint, currentUserID uint, currentRole models.UserRole) (*models.ItemDetails, error)
	CreateItem(req models.CreateItemRequest, pdf *multipart.FileHeader) (*models.Item, error)
	UpdateItem(id uint, req models.CreateItemRequest, pdf *multipart.FileHeader) (*models.Item, error)
	DeleteItem(id uint) error
	RateItem(userID uint, role models.UserRole, itemID uint, score int, comment *string) (*models.RatingStats, error)
	DownloadPdf(itemID uint) (*models.DownloadResult, error)
	CheckDuplicate(req models.CheckDuplicateRequest) (bool, error)
	ListRatings(itemID *uint) ([]models.RatingEntry, error)
	ExportItems(format string) ([]byte, string, string, error)
}

type itemService struct {
	itemRepo     repositories.ItemRepository
	ratingRepo   repositories.RatingRepository
	authorRepo   repositories.AuthorRepository
	categoryRepo repositories.CategoryRepository
	pdfStore     *storage.PDFStore
}

func NewItemService(
	itemRepo repositories.ItemRepository,
	ratingRepo repositories.RatingRepository,
	authorRepo repositories.AuthorRepository,
	categoryRepo repositories.CategoryRepository,
	pdfStore *storage.PDFStore,
) ItemService {
	return &itemService{
		itemRepo:     itemRepo,
		ratingRepo:   ratingRepo,
		authorRepo:   authorRepo,
		categoryRepo: categoryRepo,
		pdfStore:     pdfStore,
	}
}

func (s *itemService) GetItems(params models.ItemListParams) ([]models.ItemSummary, error) {
	summaries, err := s.itemRepo.GetList(params)
	if err != nil {
		return nil, err
	}

	for i := range summaries {
		summaries[i].AverageRating = roundRating(summaries[i].AverageRating)
	}
	return summaries, nil
}

func (s *itemService) GetItemDetails(id uint, currentUserID uint, currentRole models.UserRole) (*models.ItemDetails, error) {
	item, err := s.itemRepo.GetDetail(id)
	if err != nil {
		return nil, err
	}

	isAdmin := currentRole == models.RoleAdmin

	details := &models.ItemDetails{
		ID:            item.ID,
		Name:          item.Name,
		CreatedAt:     item.CreatedAt,
		DownloadCount: item.DownloadCount,
		TotalRatings:  int64(len(item.Ratings)),
		HasPdf:        item.PdfPath != "",
		PdfPath:       item.PdfPath,
		CanRate:       currentUserID != 0 && !isAdmin,
	}
	if item.Author != nil {
		details.AuthorName = item.Author.Name
	}
	if item.Category != nil {
		details.CategoryName = item.Category.Name
	}

	if len(item.Ratings) > 0 {
		sum := 0
		for _, r := range item.Ratings {
			sum += r.Score
		}
		details.AverageRating = roundRating(float64(sum) / float64(len(item.Ratings)))
	}

	for _, r := range item.Ratings {
		if r.UserID == currentUserID {
			score := r.Score
			details.UserRating = &score
			details.UserComment = r.Comment
			break
		}
	}

	// Only admins see the individual ratings
	if isAdmin {
		details.Ratings = make([]models.RatingEntry, 0, len(item.Ratings))
		for _, r := range item.Ratings {
			entry := models.RatingEntry{
				ID:        r.ID,
				ItemID:    r.ItemID,
				Rating:    r.Score,
				Comment:   r.Comment,
				CreatedAt: r.CreatedAt,
			}
			if r.User != nil {
				entry.UserName = r.User.FullName()
				entry.UserEmail = r.User.Email
			} else {
				entry.UserName = "Unknown User"
			}
			details.Ratings = append(details.Ratings, entry)
		}
	}

	return details, nil
}

func (s *itemService) CreateItem(req models.CreateItemRequest, pdf *multipart.FileHeader) (*models.Item, error) {
	if _, err := s.authorRepo.GetByID(req.AuthorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("author not found")
		}
		return nil, err
	}
	if _, err := s.categoryRepo.GetByID(req.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("category not found")
		}
		return nil, err
	}

	// Friendlier message than the unique-index rejection
	exists, err := s.itemRepo.FindDuplicate(req.Name, req.AuthorID, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateTitle
	}

	item := &models.Item{
		Name:       req.Name,
		CategoryID: req.CategoryID,
		AuthorID:   req.AuthorID,
	}

	if pdf != nil {
		path, err := s.pdfStore.Save(pdf)
		if err != nil {
			return nil, err
		}
		item.PdfPath = path
	}

	if err := s.itemRepo.Create(item); err != nil {
		// The unique index is the actual enforcement; the check above only
		// makes the common case friendlier.
		s.pdfStore.Delete(item.PdfPath)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateTitle
		}
		return nil, err
	}

	return s.itemRepo.GetByID(item.ID)
}

func (s *itemService) UpdateItem(id uint, req models.CreateItemRequest, pdf *multipart.FileHeader) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	exists, err := s.itemRepo.FindDuplicate(req.Name, req.AuthorID, &id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateTitle
	}

	item.Name = req.Name
	item.CategoryID = req.CategoryID
	item.AuthorID = req.AuthorID
	item.Author = nil
	item.Category = nil

	if pdf != nil {
		path, err := s.pdfStore.Save(pdf)
		if err != nil {
			return nil, err
		}
		// Old file removal is best effort; an orphan is logged, not fatal.
		s.pdfStore.Delete(item.PdfPath)
		item.PdfPath = path
	}

	if err := s.itemRepo.Update(item); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateTitle
		}
		return nil, err
	}

	return s.itemRepo.GetByID(item.ID)
}

func (s *itemService) DeleteItem(id uint) error {
	item, err := s.itemRepo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.itemRepo.DeleteWithRatings(id); err != nil {
		return err
	}

	s.pdfStore.Delete(item.PdfPath)
	return nil
}

// RateItem performs the last-write-wins upsert keyed by (user, item) and
// returns the recomputed aggregate. Two concurrent first votes from the same
// user are resolved by the unique index: the losing insert is retried as an
// update.
func (s *itemService) RateItem(userID uint, role models.UserRole, itemID uint, score int, comment *string) (*models.RatingStats, error) {
	if role == models.RoleAdmin {
		return nil, ErrAdminCannotRate
	}
	if score < 1 || score > 5 {
		return nil, ErrInvalidScore
	}

	if _, err := s.itemRepo.GetByID(itemID); err != nil {
		return nil, err
	}

	updated := true
	existing, err := s.ratingRepo.GetByUserAndItem(userID, itemID)
	switch {
	case err == nil:
		existing.Score = score
		existing.Comment = comment
		existing.CreatedAt = time.Now()
		if err := s.ratingRepo.Update(existing); err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		updated = false
		rating := &models.Rating{
			ItemID:  itemID,
			UserID:  userID,
			Score:   score,
			Comment: comment,
		}
		if err := s.ratingRepo.Create(rating); err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, err
			}
			// Lost a first-vote race; converge on the latest score.
			existing, err := s.ratingRepo.GetByUserAndItem(userID, itemID)
			if err != nil {
				return nil, err
			}
			existing.Score = score
			existing.Comment = comment
			existing.CreatedAt = time.Now()
			if err := s.ratingRepo.Update(existing); err != nil {
				return nil, err
			}
			updated = true
		}
	default:
		return nil, err
	}

	avg, total, err := s.ratingRepo.AggregateForItem(itemID)
	if err != nil {
		return nil, err
	}

	return &models.RatingStats{
		AverageRating: roundRating(avg),
		TotalRatings:  total,
		Updated:       updated,
	}, nil
}

func (s *itemService) DownloadPdf(itemID uint) (*models.DownloadResult, error) {
	item, err := s.itemRepo.GetByID(itemID)
	if err != nil {
		return nil, err
	}

	if item.PdfPath == "" || !s.pdfStore.Exists(item.PdfPath) {
		return nil, ErrPdfNotFound
	}

	count, err := s.itemRepo.IncrementDownloadCount(itemID)
	if err != nil {
		return nil, err
	}

	return &models.DownloadResult{
		DownloadURL:   item.PdfPath,
		DownloadCount: count,
	}, nil
}

func (s *itemService) CheckDuplicate(req models.CheckDuplicateRequest) (bool, error) {
	return s.itemRepo.FindDuplicate(req.Name, req.AuthorID, req.ItemID)
}

func (s *itemService) ListRatings(itemID *uint) ([]models.RatingEntry, error) {
	ratings, err := s.ratingRepo.ListAll(itemID)
	if err != nil {
		return nil, err
	}

	entries := make([]models.RatingEntry, 0, len(ratings))
	for _, r := range ratings {
		entry := models.RatingEntry{
			ID:        r.ID,
			ItemID:    r.ItemID,
			Rating:    r.Score,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		}
		if r.User != nil {
			entry.UserName = r.User.FullName()
			entry.UserEmail = r.User.Email
		} else {
			entry.UserName = "Unknown User"
		}
		if r.Item != nil {
			entry.ItemName = r.Item.Name
			if r.Item.Author != nil {
				entry.AuthorName = r.Item.Author.Name
			}
			if r.Item.Category != nil {
				entry.CategoryName = r.Item.Category.Name
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *itemService) ExportItems(format string) ([]byte, string, string, error) {
	items, err := s.itemRepo.GetAllWithRelations()
	if err != nil {
		return nil, "", "", err
	}

	switch format {
	case "", "csv":
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write([]string{"ID", "Title", "Author", "Category", "Downloads", "Ratings", "Created"}); err != nil {
			return nil, "", "", err
		}
		for _, item := range items {
			authorName, categoryName := "", ""
			if item.Author != nil {
				authorName = item.Author.Name
			}
			if item.Category != nil {
				categoryName = item.Category.Name
			}
			record := []string{
				strconv.FormatUint(uint64(item.ID), 10),
				item.Name,
				authorName,
				categoryName,
				strconv.Itoa(item.DownloadCount),
				strconv.Itoa(len(item.Ratings)),
				item.CreatedAt.Format("02/01/2006"),
			}
			if err := w.Write(record); err != nil {
				return nil, "", "", err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, "", "", err
		}
		return buf.Bytes(), "text/csv", "items.csv", nil
	case "json":
		type itemExport struct {
			ID            uint   `json:"id"`
			Name          string `json:"name"`
			AuthorName    string `json:"author_name"`
			CategoryName  string `json:"category_name"`
			DownloadCount int    `json:"download_count"`
			TotalRatings  int    `json:"total_ratings"`
		}
		exports := make([]itemExport, 0, len(items))
		for _, item := range items {
			e := itemExport{
				ID:            item.ID,
				Name:          item.Name,
				DownloadCount: item.DownloadCount,
				TotalRatings:  len(item.Ratings),
			}
			if item.Author != nil {
				e.AuthorName = item.Author.Name
			}
			if item.Category != nil {
				e.CategoryName = item.Category.Name
			}
			exports = append(exports, e)
		}
		content, err := json.MarshalIndent(exports, "", "  ")
		if err != nil {
			return nil, "", "", err
		}
		return content, "application/json", "items.json", nil
	default:
		return nil, "", "", fmt.Errorf("unsupported format: %s", format)
	}
}

// roundRating rounds an average to one decimal place.
func roundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
