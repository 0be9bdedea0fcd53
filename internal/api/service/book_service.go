package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bookhub/internal/api/models"
	"bookhub/internal/api/repository"
)

var ErrBookNotFound = errors.New("book not found")

// BookInput carries the admin-editable fields of a book. Quantity is
// trusted as absolute: direct edits are not reconciled against active
// loans.
type BookInput struct {
	Name     string
	Details  string
	Image    string
	Quantity int
}

type BookService interface {
	Create(ctx context.Context, input BookInput) (*models.Book, error)
	List(ctx context.Context) ([]models.Book, error)
	Get(ctx context.Context, id string) (*models.Book, error)
	Update(ctx context.Context, id string, input BookInput) (*models.Book, error)
	Delete(ctx context.Context, id string) error
}

type bookService struct {
	bookRepo repository.BookRepository
}

func NewBookService(bookRepo repository.BookRepository) BookService {
	return &bookService{bookRepo: bookRepo}
}

func (s *bookService) Create(ctx context.Context, input BookInput) (*models.Book, error) {
	book := &models.Book{
		Name:     input.Name,
		Details:  input.Details,
		Image:    input.Image,
		Quantity: input.Quantity,
	}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *bookService) List(ctx context.Context) ([]models.Book, error) {
	return s.bookRepo.List(ctx)
}

func (s *bookService) Get(ctx context.Context, id string) (*models.Book, error) {
	book, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

func (s *bookService) Update(ctx context.Context, id string, input BookInput) (*models.Book, error) {
	fields := map[string]any{
		"name":     input.Name,
		"details":  input.Details,
		"image":    input.Image,
		"quantity": input.Quantity,
	}
	book, err := s.bookRepo.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

func (s *bookService) Delete(ctx context.Context, id string) error {
	if err := s.bookRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}
	return nil
}
