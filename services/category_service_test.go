package services

import (
	"testing"

	"book-catalog-api/models"
	"book-catalog-api/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategoryRejectsDuplicateName(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCategoryService(repositories.NewCategoryRepository(db))

	_, err := svc.CreateCategory(models.CreateCategoryRequest{Name: "Programming"})
	require.NoError(t, err)

	_, err = svc.CreateCategory(models.CreateCategoryRequest{Name: "programming"})
	assert.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Category{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDeleteCategoryWithItemsRefused(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCategoryService(repositories.NewCategoryRepository(db))
	author, category := seedCatalog(t, db)
	seedItem(t, db, "Intro to Go", author, category)

	err := svc.DeleteCategory(category.ID)
	assert.ErrorIs(t, err, ErrCategoryHasItems)

	empty, err := svc.CreateCategory(models.CreateCategoryRequest{Name: "Empty"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteCategory(empty.ID))
}

func TestGetCategoriesIncludesItemCounts(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCategoryService(repositories.NewCategoryRepository(db))
	author, category := seedCatalog(t, db)
	seedItem(t, db, "Intro to Go", author, category)
	seedItem(t, db, "Advanced Go", author, category)

	_, err := svc.CreateCategory(models.CreateCategoryRequest{Name: "Empty"})
	require.NoError(t, err)

	summaries, err := svc.GetCategories()
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byName := map[string]int64{}
	for _, s := range summaries {
		byName[s.Name] = s.ItemsCount
	}
	assert.Equal(t, int64(2), byName["Programming"])
	assert.Equal(t, int64(0), byName["Empty"])
}
