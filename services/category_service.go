package services

import (
	"book-catalog-api/models"
	"book-catalog-api/repositories"
	"errors"

	"gorm.io/gorm"
)

type CategoryService interface {
	CreateCategory(req models.CreateCategoryRequest) (*models.Category, error)
	GetCategories() ([]models.CategorySummary, error)
	GetCategory(id uint) (*models.Category, error)
	UpdateCategory(id uint, req models.CreateCategoryRequest) (*models.Category, error)
	DeleteCategory(id uint) error
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
}

func NewCategoryService(categoryRepo repositories.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) CreateCategory(req models.CreateCategoryRequest) (*models.Category, error) {
	// Check if category already exists
	_, err := s.categoryRepo.GetByName(req.Name)
	if err == nil {
		return nil, errors.New("category already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category := &models.Category{Name: req.Name}

	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) GetCategories() ([]models.CategorySummary, error) {
	categories, err := s.categoryRepo.GetAll()
	if err != nil {
		return nil, err
	}

	summaries := make([]models.CategorySummary, 0, len(categories))
	for _, c := range categories {
		count, err := s.categoryRepo.CountItems(c.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, models.CategorySummary{
			ID:         c.ID,
			Name:       c.Name,
			ItemsCount: count,
		})
	}
	return summaries, nil
}

func (s *categoryService) GetCategory(id uint) (*models.Category, error) {
	return s.categoryRepo.GetByID(id)
}

func (s *categoryService) UpdateCategory(id uint, req models.CreateCategoryRequest) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	category.Name = req.Name
	category.Items = nil

	if err := s.categoryRepo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory refuses while items still reference the category.
func (s *categoryService) DeleteCategory(id uint) error {
	if _, err := s.categoryRepo.GetByID(id); err != nil {
		return err
	}

	count, err := s.categoryRepo.CountItems(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryHasItems
	}

	return s.categoryRepo.Delete(id)
}
