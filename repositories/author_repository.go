package repositories

import (
	"fmt"

	"book-catalog-api/models"

	"gorm.io/gorm"
)

type AuthorRepository interface {
	Create(author *models.Author) error
	GetByID(id uint) (*models.Author, error)
	GetByIDs(ids []uint) ([]models.Author, error)
	GetAll(hasBooks *bool) ([]models.Author, error)
	Search(term string) ([]models.Author, error)
	GetAllSorted(sortBy string) ([]models.Author, error)
	Update(author *models.Author) error
	Delete(id uint) error
	DeleteMany(ids []uint) error
	CountBooks(authorID uint) (int64, error)
	Statistics() (*models.AuthorStatistics, error)
}

type authorRepository struct {
	db *gorm.DB
}

func NewAuthorRepository(db *gorm.DB) AuthorRepository {
	return &authorRepository{db: db}
}

func (r *authorRepository) Create(author *models.Author) error {
	return r.db.Create(author).Error
}

func (r *authorRepository) GetByID(id uint) (*models.Author, error) {
	var author models.Author
	err := r.db.Preload("Books.Category").First(&author, id).Error
	if err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *authorRepository) GetByIDs(ids []uint) ([]models.Author, error) {
	var authors []models.Author
	err := r.db.Preload("Books").Where("id IN ?", ids).Find(&authors).Error
	return authors, err
}

func (r *authorRepository) GetAll(hasBooks *bool) ([]models.Author, error) {
	var authors []models.Author
	query := r.db.Preload("Books.Category")

	if hasBooks != nil {
		if *hasBooks {
			query = query.Where("EXISTS (SELECT 1 FROM items WHERE items.author_id = authors.id)")
		} else {
			query = query.Where("NOT EXISTS (SELECT 1 FROM items WHERE items.author_id = authors.id)")
		}
	}

	err := query.Order("authors.name asc").Find(&authors).Error
	return authors, err
}

func (r *authorRepository) Search(term string) ([]models.Author, error) {
	var authors []models.Author
	pattern := "%" + term + "%"
	err := r.db.Preload("Books.Category").
		Where("LOWER(authors.name) LIKE LOWER(?) OR LOWER(COALESCE(authors.email, '')) LIKE LOWER(?) OR COALESCE(authors.phone, '') LIKE ?",
			pattern, pattern, pattern).
		Order("authors.name asc").
		Find(&authors).Error
	return authors, err
}

func (r *authorRepository) GetAllSorted(sortBy string) ([]models.Author, error) {
	booksCount := "(SELECT COUNT(*) FROM items WHERE items.author_id = authors.id)"

	var order string
	switch sortBy {
	case "name-asc":
		order = "authors.name asc"
	case "name-desc":
		order = "authors.name desc"
	case "books-asc":
		order = booksCount + " asc"
	case "books-desc":
		order = booksCount + " desc"
	case "age-asc":
		order = "authors.age asc"
	case "age-desc":
		order = "authors.age desc"
	default:
		order = "authors.name asc"
	}

	var authors []models.Author
	err := r.db.Preload("Books.Category").Order(order).Find(&authors).Error
	return authors, err
}

func (r *authorRepository) Update(author *models.Author) error {
	return r.db.Save(author).Error
}

func (r *authorRepository) Delete(id uint) error {
	return r.db.Delete(&models.Author{}, id).Error
}

func (r *authorRepository) DeleteMany(ids []uint) error {
	return r.db.Delete(&models.Author{}, ids).Error
}

func (r *authorRepository) CountBooks(authorID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Item{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

func (r *authorRepository) Statistics() (*models.AuthorStatistics, error) {
	stats := &models.AuthorStatistics{}

	if err := r.db.Model(&models.Author{}).Count(&stats.TotalAuthors).Error; err != nil {
		return nil, fmt.Errorf("count authors: %w", err)
	}

	if err := r.db.Model(&models.Author{}).
		Where("EXISTS (SELECT 1 FROM items WHERE items.author_id = authors.id)").
		Count(&stats.AuthorsWithBooks).Error; err != nil {
		return nil, fmt.Errorf("count authors with books: %w", err)
	}
	stats.AuthorsWithoutBooks = stats.TotalAuthors - stats.AuthorsWithBooks

	if err := r.db.Model(&models.Item{}).Count(&stats.TotalBooks).Error; err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}

	if stats.TotalAuthors > 0 {
		row := r.db.Model(&models.Author{}).
			Select("COALESCE(AVG(age), 0), COALESCE(MAX(age), 0), COALESCE(MIN(age), 0)").
			Row()
		if err := row.Scan(&stats.AverageAge, &stats.OldestAuthor, &stats.YoungestAuthor); err != nil {
			return nil, fmt.Errorf("scan age aggregates: %w", err)
		}
	}

	return stats, nil
}
