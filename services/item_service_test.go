package services

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"book-catalog-api/config"
	"book-catalog-api/models"
	"book-catalog-api/repositories"
	"book-catalog-api/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, config.Migrate(db))
	return db
}

func newTestItemService(t *testing.T, db *gorm.DB) (ItemService, *storage.PDFStore) {
	t.Helper()

	pdfStore, err := storage.NewPDFStore(t.TempDir())
	require.NoError(t, err)

	svc := NewItemService(
		repositories.NewItemRepository(db),
		repositories.NewRatingRepository(db),
		repositories.NewAuthorRepository(db),
		repositories.NewCategoryRepository(db),
		pdfStore,
	)
	return svc, pdfStore
}

func seedUser(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		FirstName: "Test",
		LastName:  string(role),
		Email:     uuid.NewString() + "@example.com",
		Password:  "hashed",
		Role:      role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedCatalog(t *testing.T, db *gorm.DB) (*models.Author, *models.Category) {
	t.Helper()

	author := &models.Author{Name: "Jane Dev", Age: 42}
	require.NoError(t, db.Create(author).Error)

	category := &models.Category{Name: "Programming"}
	require.NoError(t, db.Create(category).Error)

	return author, category
}

func seedItem(t *testing.T, db *gorm.DB, name string, author *models.Author, category *models.Category) *models.Item {
	t.Helper()

	item := &models.Item{Name: name, AuthorID: author.ID, CategoryID: category.ID}
	require.NoError(t, db.Create(item).Error)
	return item
}

func ratingCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.Rating{}).Count(&count).Error)
	return count
}

func TestRateItemRejectsOutOfRangeScores(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestItemService(t, db)
	author, category := seedCatalog(t, db)
	item := seedItem(t, db, "Intro to Go", author, category)
	user := seedUser(t, db, models.RoleUser)

	for _, score := range []int{0, -1, 6, 100} {
		stats, err := svc.RateItem(user.ID, user.Role, item.ID, score, nil)
		assert.ErrorIs(t, err, ErrInvalidScore)
		assert.Nil(t, stats)
	}

	assert.Equal(t, int64(0), ratingCount(t, db))
}

func TestRateItemRejectsAdmins(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestItemService(t, db)
	author, category := seedCatalog(t, db)
	item := seedItem(t, db, "Intro to Go", author, category)
	admin := seedUser(t, db, models.RoleAdmin)

	stats, err := svc.RateItem(admin.ID, admin.Role, item.ID, 4, nil)
	assert.ErrorIs(t, err, ErrAdminCannotRate)
	assert.Nil(t, stats)
	assert.Equal(t, int64(0), ratingCount(t, db))
}

func TestRateItemUnknownItem(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestItemService(t, db)
	user := seedUser(t, db, models.RoleUser)

	_, err := svc.RateItem(user.ID, user.Role, 9999, 4, nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Equal(t, int64(0), ratingCount(t, db))
}

func TestRateItemUpsertsAndRecomputesAggregate(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestItemService(t, db)
	author, category := seedCatalog(t, db)
	item := seedItem(t, db, "Intro to Go", author, category)
	userA := seedUser(t, db, models.RoleUser)
	userB := seedUser(t, db, models.RoleUser)

	stats, err := svc.RateItem(userA.ID, userA.Role, item.ID, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 3.0, stats.AverageRating)
	assert.Equal(t, int64(1), stats.TotalRatings)
	assert.False(t, stats.Updated)

	stats, err = svc.RateItem(userB.ID, userB.Role, item.ID, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, 4.0, stats.AverageRating)
	assert.Equal(t, int64(2), stats.TotalRatings)

	// Re-vote overwrites in place, no new row
	comment := "much better on a second read"
	stats, err = svc.RateItem(userA.ID, userA.Role, item.ID, 5, &comment)
	require.NoError(t, err)
	assert.True(t, stats.Updated)
	assert.Equal(t, 5.0, stats.AverageRating)
	assert.Equal(t, int64(2), stats.TotalRatings)
	assert.Equal(t, int64(2), ratingCount(t, db))

	var stored models.Rating
	require.NoError(t, db.Where("user_id = ? AND item_id = ?", userA.ID, item.ID).First(&stored).Error)
	assert.Equal(t, 5, stored.Score)
	require.NotNil(t, stored.Comment)
	assert.Equal(t, comment, *stored.Comment)
}

func TestRateItemAverageRoundsToOneDecimal(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestItemService(t, db)
	author, category := seedCatalog(t, db)
	item := seedItem(t, db, "Intro to Go", author, category)

	// 4, 4, 5 -> 4.333... -> 4.3
	for _, score := range []int{4, 4, 5} {
		user := seedUser(t, db, models.RoleUser)
		_, err := svc.RateItem(user.ID, user.Role, item.ID, score, nil)
		require.NoError(t, err)
	}

	stats, err := svc.RateItem(seedUser(t, db, models.RoleUser).ID, models.RoleUser, item.ID, 5, nil)
	require.NoError(t, err)
	// 4, 4, 5, 5 -> 4.5
	assert.Equal(t, 4.5, stats.AverageRating)
	assert.Equal(t, int64(4), stats.TotalRatings)
}

func TestDeleteItemCascadesRatings(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestItemService(t, db)
	author, category := seedCatalog(t, db)
	item := seedItem(t, db, "Intro to Go", author, category)

	for i := 0; i < 3; i++ {
		user := seedUser(t, db, models.RoleUser)
		_, err := svc.RateItem(user.ID, user.Role, item.ID, 4, nil)
		require.NoError(t, err)
	}
	require.Equal(t, int64(3), ratingCount(t, db))

	require.NoError(t, svc.DeleteItem(item.ID))

	assert.Equal(t, int64(0), ratingCount(t, db))
	var itemCount int64
	require.NoError(t, db.Model(&models.Item{}).Count(&itemCount).Error)
	assert.Equal(t, int64(0), itemCount)
}

func TestCreateItemDuplicateTitleGuard(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestItemService(t, db)
	author, category := seedCatalog(t, db)
	seedItem(t, db, "Intro to Go", author, category)

	// Same title, case-insensitive, same author
	_, err := svc.CreateItem(models.CreateItemRequest{
		Name:       "INTRO TO GO",
		AuthorID:   author.ID,
		CategoryID: category.ID,
	}, nil)
	assert.ErrorIs(t, err, ErrDuplicateTitle)

	var count int64
	require.NoError(t, db.Model(&models.Item{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// Same title under a different author is fine
	other := &models.Author{Name: "Other Author", Age: 30}
	require.NoError(t, db.Create(other).Error)

	item, err := svc.CreateItem(models.CreateItemRequest{
		Name:       "Intro to Go",
		AuthorID:   other.ID,
		CategoryID: category.ID,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Intro to Go", item.Name)
}

func TestUpdateItemDuplicateGuardExcludesSelf(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestItemService(t, db)
	author, category := seedCatalog(t, db)
	first := seedItem(t, db, "Intro to Go", author, category)
	second := seedItem(t, db, "Advanced Go", author, category)

	// Re-saving under its own title is not a duplicate
	updated, err := svc.UpdateItem(first.ID, models.CreateItemRequest{
		Name:       "Intro to Go",
		AuthorID:   author.ID,
		CategoryID: category.ID,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Intro to Go", updated.Name)

	// Renaming onto another book of the same author is
	_, err = svc.UpdateItem(second.ID, models.CreateItemRequest{
		Name:       "intro to go",
		AuthorID:   author.ID,
		CategoryID: category.ID,
	}, nil)
	assert.ErrorIs(t, err, ErrDuplicateTitle)
}

func TestCheckDuplicate(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestItemService(t, db)
	author, category := seedCatalog(t, db)
	item := seedItem(t, db, "Intro to Go", author, category)

	exists, err := svc.CheckDuplicate(models.CheckDuplicateRequest{Name: "intro TO go", AuthorID: author.ID})
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.CheckDuplicate(models.CheckDuplicateRequest{Name: "intro TO go", AuthorID: author.ID, ItemID: &item.ID})
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = svc.CheckDuplicate(models.CheckDuplicateRequest{Name: "Something Else", AuthorID: author.ID})
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDownloadPdfIncrementsCounter(t *testing.T) {
	db := setupTestDB(t)
	svc, pdfStore := newTestItemService(t, db)
	author, category := seedCatalog(t, db)
	item := seedItem(t, db, "Intro to Go", author, category)

	fileName := uuid.NewString() + ".pdf"
	require.NoError(t, os.WriteFile(filepath.Join(pdfStore.BasePath(), fileName), []byte("%PDF-1.4"), 0o644))
	require.NoError(t, db.Model(item).UpdateColumn("pdf_path", "/pdfs/"+fileName).Error)

	result, err := svc.DownloadPdf(item.ID)
	require.NoError(t, err)
	assert.Equal(t, "/pdfs/"+fileName, result.DownloadURL)
	assert.Equal(t, 1, result.DownloadCount)

	result, err = svc.DownloadPdf(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.DownloadCount)
}

func TestDownloadPdfMissingFile(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestItemService(t, db)
	author, category := seedCatalog(t, db)
	item := seedItem(t, db, "Intro to Go", author, category)

	_, err := svc.DownloadPdf(item.ID)
	assert.ErrorIs(t, err, ErrPdfNotFound)

	// No counter movement on failure
	var count int
	require.NoError(t, db.Model(&models.Item{}).Where("id = ?", item.ID).Pluck("download_count", &count).Error)
	assert.Equal(t, 0, count)
}

func TestGetItemDetailsShowsCallerRatingAndAdminList(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestItemService(t, db)
	author, category := seedCatalog(t, db)
	item := seedItem(t, db, "Intro to Go", author, category)
	user := seedUser(t, db, models.RoleUser)
	other := seedUser(t, db, models.RoleUser)
	admin := seedUser(t, db, models.RoleAdmin)

	comment := "solid introduction"
	_, err := svc.RateItem(user.ID, user.Role, item.ID, 3, &comment)
	require.NoError(t, err)
	_, err = svc.RateItem(other.ID, other.Role, item.ID, 5, nil)
	require.NoError(t, err)

	details, err := svc.GetItemDetails(item.ID, user.ID, user.Role)
	require.NoError(t, err)
	assert.Equal(t, "Jane Dev", details.AuthorName)
	assert.Equal(t, "Programming", details.CategoryName)
	assert.Equal(t, 4.0, details.AverageRating)
	assert.Equal(t, int64(2), details.TotalRatings)
	require.NotNil(t, details.UserRating)
	assert.Equal(t, 3, *details.UserRating)
	require.NotNil(t, details.UserComment)
	assert.Equal(t, comment, *details.UserComment)
	assert.True(t, details.CanRate)
	assert.Empty(t, details.Ratings, "individual ratings are admin only")

	adminDetails, err := svc.GetItemDetails(item.ID, admin.ID, admin.Role)
	require.NoError(t, err)
	assert.False(t, adminDetails.CanRate)
	assert.Nil(t, adminDetails.UserRating)
	assert.Len(t, adminDetails.Ratings, 2)
}

func TestGetItemsAggregatesAndSorts(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestItemService(t, db)
	author, category := seedCatalog(t, db)
	goBook := seedItem(t, db, "Intro to Go", author, category)
	rustBook := seedItem(t, db, "Intro to Rust", author, category)

	for _, score := range []int{3, 5} {
		user := seedUser(t, db, models.RoleUser)
		_, err := svc.RateItem(user.ID, user.Role, goBook.ID, score, nil)
		require.NoError(t, err)
	}
	_, err := svc.RateItem(seedUser(t, db, models.RoleUser).ID, models.RoleUser, rustBook.ID, 5, nil)
	require.NoError(t, err)

	items, err := svc.GetItems(models.ItemListParams{SortBy: "rating", SortOrder: "desc"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Intro to Rust", items[0].Name)
	assert.Equal(t, 5.0, items[0].AverageRating)
	assert.Equal(t, "Intro to Go", items[1].Name)
	assert.Equal(t, 4.0, items[1].AverageRating)
	assert.Equal(t, int64(2), items[1].TotalRatings)
	assert.Equal(t, "Jane Dev", items[0].AuthorName)
	assert.Equal(t, "Programming", items[0].CategoryName)

	filtered, err := svc.GetItems(models.ItemListParams{Search: "rust"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Intro to Rust", filtered[0].Name)
}

func TestExportItems(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestItemService(t, db)
	author, category := seedCatalog(t, db)
	seedItem(t, db, "Intro to Go", author, category)

	content, contentType, fileName, err := svc.ExportItems("csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Equal(t, "items.csv", fileName)
	assert.Contains(t, string(content), "Intro to Go")
	assert.Contains(t, string(content), "Jane Dev")

	content, contentType, fileName, err = svc.ExportItems("json")
	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "items.json", fileName)
	assert.Contains(t, string(content), `"Intro to Go"`)

	_, _, _, err = svc.ExportItems("xml")
	assert.Error(t, err)
}
