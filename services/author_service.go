package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"book-catalog-api/models"
	"book-catalog-api/repositories"
)

type AuthorService interface {
	CreateAuthor(req models.CreateAuthorRequest) (*models.Author, error)
	GetAuthors(hasBooks *bool) ([]models.AuthorSummary, error)
	GetAuthor(id uint) (*models.Author, error)
	UpdateAuthor(id uint, req models.CreateAuthorRequest) (*models.Author, error)
	DeleteAuthor(id uint) error
	SearchAuthors(term string) ([]models.AuthorSummary, error)
	SortAuthors(sortBy string) ([]models.AuthorSummary, error)
	Statistics() (*models.AuthorStatistics, error)
	BulkDelete(ids []uint) (int, error)
	ExportAuthors(format string) ([]byte, string, string, error)
}

type authorService struct {
	authorRepo repositories.AuthorRepository
}

func NewAuthorService(authorRepo repositories.AuthorRepository) AuthorService {
	return &authorService{authorRepo: authorRepo}
}

func (s *authorService) CreateAuthor(req models.CreateAuthorRequest) (*models.Author, error) {
	author := &models.Author{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Age:   req.Age,
	}

	if err := s.authorRepo.Create(author); err != nil {
		return nil, err
	}
	return author, nil
}

func (s *authorService) GetAuthors(hasBooks *bool) ([]models.AuthorSummary, error) {
	authors, err := s.authorRepo.GetAll(hasBooks)
	if err != nil {
		return nil, err
	}
	return buildAuthorSummaries(authors), nil
}

func (s *authorService) GetAuthor(id uint) (*models.Author, error) {
	return s.authorRepo.GetByID(id)
}

func (s *authorService) UpdateAuthor(id uint, req models.CreateAuthorRequest) (*models.Author, error) {
	author, err := s.authorRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	author.Name = req.Name
	author.Email = req.Email
	author.Phone = req.Phone
	author.Age = req.Age
	author.Books = nil

	if err := s.authorRepo.Update(author); err != nil {
		return nil, err
	}
	return s.authorRepo.GetByID(id)
}

// DeleteAuthor refuses while books still reference the author (restrict, not
// cascade).
func (s *authorService) DeleteAuthor(id uint) error {
	if _, err := s.authorRepo.GetByID(id); err != nil {
		return err
	}

	count, err := s.authorRepo.CountBooks(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrAuthorHasBooks
	}

	return s.authorRepo.Delete(id)
}

func (s *authorService) SearchAuthors(term string) ([]models.AuthorSummary, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.GetAuthors(nil)
	}

	authors, err := s.authorRepo.Search(term)
	if err != nil {
		return nil, err
	}
	return buildAuthorSummaries(authors), nil
}

func (s *authorService) SortAuthors(sortBy string) ([]models.AuthorSummary, error) {
	authors, err := s.authorRepo.GetAllSorted(strings.ToLower(sortBy))
	if err != nil {
		return nil, err
	}
	return buildAuthorSummaries(authors), nil
}

func (s *authorService) Statistics() (*models.AuthorStatistics, error) {
	return s.authorRepo.Statistics()
}

// BulkDelete is all-or-nothing: if any selected author still has books, the
// whole request is rejected naming them.
func (s *authorService) BulkDelete(ids []uint) (int, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("no authors selected")
	}

	authors, err := s.authorRepo.GetByIDs(ids)
	if err != nil {
		return 0, err
	}

	var withBooks []string
	for _, a := range authors {
		if len(a.Books) > 0 {
			withBooks = append(withBooks, a.Name)
		}
	}
	if len(withBooks) > 0 {
		return 0, fmt.Errorf("%w: %s", ErrAuthorHasBooks, strings.Join(withBooks, ", "))
	}

	deleteIDs := make([]uint, 0, len(authors))
	for _, a := range authors {
		deleteIDs = append(deleteIDs, a.ID)
	}
	if len(deleteIDs) == 0 {
		return 0, nil
	}

	if err := s.authorRepo.DeleteMany(deleteIDs); err != nil {
		return 0, err
	}
	return len(deleteIDs), nil
}

func (s *authorService) ExportAuthors(format string) ([]byte, string, string, error) {
	authors, err := s.authorRepo.GetAll(nil)
	if err != nil {
		return nil, "", "", err
	}

	switch strings.ToLower(format) {
	case "", "csv":
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write([]string{"ID", "Author Name", "Email", "Phone", "Age", "Books Count"}); err != nil {
			return nil, "", "", err
		}
		for _, a := range authors {
			email, phone := "", ""
			if a.Email != nil {
				email = *a.Email
			}
			if a.Phone != nil {
				phone = *a.Phone
			}
			record := []string{
				strconv.FormatUint(uint64(a.ID), 10),
				a.Name,
				email,
				phone,
				strconv.Itoa(a.Age),
				strconv.Itoa(len(a.Books)),
			}
			if err := w.Write(record); err != nil {
				return nil, "", "", err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, "", "", err
		}
		return buf.Bytes(), "text/csv", "authors.csv", nil
	case "json":
		summaries := buildAuthorSummaries(authors)
		content, err := json.MarshalIndent(summaries, "", "  ")
		if err != nil {
			return nil, "", "", err
		}
		return content, "application/json", "authors.json", nil
	default:
		return nil, "", "", fmt.Errorf("unsupported format: %s", format)
	}
}

func buildAuthorSummaries(authors []models.Author) []models.AuthorSummary {
	summaries := make([]models.AuthorSummary, 0, len(authors))
	for _, a := range authors {
		summary := models.AuthorSummary{
			ID:         a.ID,
			Name:       a.Name,
			Email:      a.Email,
			Phone:      a.Phone,
			Age:        a.Age,
			BooksCount: len(a.Books),
			Books:      make([]models.AuthorBookEntry, 0, len(a.Books)),
		}
		for _, b := range a.Books {
			entry := models.AuthorBookEntry{
				ID:           b.ID,
				Name:         b.Name,
				CategoryName: "Uncategorized",
				CreatedAt:    b.CreatedAt,
			}
			if b.Category != nil {
				entry.CategoryName = b.Category.Name
			}
			summary.Books = append(summary.Books, entry)
		}
		summaries = append(summaries, summary)
	}
	return summaries
}
