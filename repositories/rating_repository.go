package repositories

import (
	"book-catalog-api/models"

	"gorm.io/gorm"
)

type RatingRepository interface {
	Create(rating *models.Rating) error
	Update(rating *models.Rating) error
	GetByUserAndItem(userID, itemID uint) (*models.Rating, error)
	AggregateForItem(itemID uint) (float64, int64, error)
	ListAll(itemID *uint) ([]models.Rating, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Create(rating *models.Rating) error {
	return r.db.Create(rating).Error
}

func (r *ratingRepository) Update(rating *models.Rating) error {
	return r.db.Save(rating).Error
}

func (r *ratingRepository) GetByUserAndItem(userID, itemID uint) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.Where("user_id = ? AND item_id = ?", userID, itemID).First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// AggregateForItem recomputes the average and count over the current row set.
func (r *ratingRepository) AggregateForItem(itemID uint) (float64, int64, error) {
	var result struct {
		Avg   float64
		Total int64
	}
	err := r.db.Model(&models.Rating{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS total").
		Where("item_id = ?", itemID).
		Scan(&result).Error
	return result.Avg, result.Total, err
}

func (r *ratingRepository) ListAll(itemID *uint) ([]models.Rating, error) {
	query := r.db.Preload("User").
		Preload("Item.Author").
		Preload("Item.Category").
		Order("ratings.created_at desc")
	if itemID != nil {
		query = query.Where("item_id = ?", *itemID)
	}

	var ratings []models.Rating
	err := query.Find(&ratings).Error
	return ratings, err
}
