package repositories

import (
	"fmt"
	"time"

	"book-catalog-api/models"

	"gorm.io/gorm"
)

type ItemRepository interface {
	Create(item *models.Item) error
	GetByID(id uint) (*models.Item, error)
	GetDetail(id uint) (*models.Item, error)
	GetList(params models.ItemListParams) ([]models.ItemSummary, error)
	GetAllWithRelations() ([]models.Item, error)
	Update(item *models.Item) error
	DeleteWithRatings(id uint) error
	FindDuplicate(name string, authorID uint, excludeID *uint) (bool, error)
	IncrementDownloadCount(id uint) (int, error)
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(item *models.Item) error {
	return r.db.Create(item).Error
}

func (r *itemRepository) GetByID(id uint) (*models.Item, error) {
	var item models.Item
	err := r.db.Preload("Author").Preload("Category").First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) GetDetail(id uint) (*models.Item, error) {
	var item models.Item
	err := r.db.Preload("Author").
		Preload("Category").
		Preload("Ratings", func(db *gorm.DB) *gorm.DB {
			return db.Order("ratings.created_at desc")
		}).
		Preload("Ratings.User").
		First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

type itemListRow struct {
	ID            uint
	Name          string
	AuthorID      uint
	AuthorName    string
	CategoryID    uint
	CategoryName  string
	PdfPath       string
	DownloadCount int
	AvgRating     float64
	TotalRatings  int64
	CreatedAt     time.Time
}

func (r *itemRepository) GetList(params models.ItemListParams) ([]models.ItemSummary, error) {
	query := r.db.Model(&models.Item{}).
		Select(`items.id, items.name, items.author_id, authors.name AS author_name,
			items.category_id, categories.name AS category_name, items.pdf_path,
			items.download_count, items.created_at,
			COALESCE(AVG(ratings.rating), 0) AS avg_rating,
			COUNT(ratings.id) AS total_ratings`).
		Joins("JOIN authors ON authors.id = items.author_id").
		Joins("JOIN categories ON categories.id = items.category_id").
		Joins("LEFT JOIN ratings ON ratings.item_id = items.id").
		Group("items.id, items.name, items.author_id, authors.name, items.category_id, categories.name, items.pdf_path, items.download_count, items.created_at")

	if params.Search != "" {
		query = query.Where("LOWER(items.name) LIKE LOWER(?)", "%"+params.Search+"%")
	}
	if params.CategoryID > 0 {
		query = query.Where("items.category_id = ?", params.CategoryID)
	}
	if params.AuthorID > 0 {
		query = query.Where("items.author_id = ?", params.AuthorID)
	}

	sortOrder := params.SortOrder
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	var sortColumn string
	switch params.SortBy {
	case "name":
		sortColumn = "items.name"
	case "downloads":
		sortColumn = "items.download_count"
	case "rating":
		sortColumn = "avg_rating"
	default:
		sortColumn = "items.created_at"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortColumn, sortOrder))

	var rows []itemListRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	summaries := make([]models.ItemSummary, 0, len(rows))
	for _, rw := range rows {
		summaries = append(summaries, models.ItemSummary{
			ID:            rw.ID,
			Name:          rw.Name,
			AuthorID:      rw.AuthorID,
			AuthorName:    rw.AuthorName,
			CategoryID:    rw.CategoryID,
			CategoryName:  rw.CategoryName,
			DownloadCount: rw.DownloadCount,
			AverageRating: rw.AvgRating,
			TotalRatings:  rw.TotalRatings,
			HasPdf:        rw.PdfPath != "",
			CreatedAt:     rw.CreatedAt,
		})
	}
	return summaries, nil
}

func (r *itemRepository) GetAllWithRelations() ([]models.Item, error) {
	var items []models.Item
	err := r.db.Preload("Author").Preload("Category").Preload("Ratings").
		Order("items.name asc").Find(&items).Error
	return items, err
}

func (r *itemRepository) Update(item *models.Item) error {
	return r.db.Save(item).Error
}

// DeleteWithRatings removes the item and its ratings in one transaction. The
// schema also declares the cascade, but doing it explicitly keeps the
// behavior identical on stores that do not enforce it.
func (r *itemRepository) DeleteWithRatings(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Item{}, id).Error
	})
}

func (r *itemRepository) FindDuplicate(name string, authorID uint, excludeID *uint) (bool, error) {
	query := r.db.Model(&models.Item{}).
		Where("LOWER(name) = LOWER(?) AND author_id = ?", name, authorID)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// IncrementDownloadCount bumps the counter with a SQL expression so it stays
// monotonic under concurrent downloads, then reads the new value back.
func (r *itemRepository) IncrementDownloadCount(id uint) (int, error) {
	if err := r.db.Model(&models.Item{}).Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error; err != nil {
		return 0, err
	}

	var count int
	if err := r.db.Model(&models.Item{}).Where("id = ?", id).
		Pluck("download_count", &count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
