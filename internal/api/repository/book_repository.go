package repository

import (
	"context"

	"gorm.io/gorm"

	"bookhub/internal/api/models"
)

// BookRepository is the inventory ledger: book records plus the count of
// copies currently available for borrowing.
type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	FindByID(ctx context.Context, id string) (*models.Book, error)
	List(ctx context.Context) ([]models.Book, error)
	Update(ctx context.Context, id string, fields map[string]any) (*models.Book, error)
	Delete(ctx context.Context, id string) error
	Decrement(ctx context.Context, id string) error
	Increment(ctx context.Context, id string) error
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *bookRepository) FindByID(ctx context.Context, id string) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) List(ctx context.Context) ([]models.Book, error) {
	books := []models.Book{}
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) Update(ctx context.Context, id string, fields map[string]any) (*models.Book, error) {
	result := r.db.WithContext(ctx).Model(&models.Book{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *bookRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Book{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Decrement atomically takes one available copy. The quantity guard is in
// the UPDATE predicate so two concurrent callers can never drive the
// count negative.
func (r *bookRepository) Decrement(ctx context.Context, id string) error {
	return decrementQuantity(r.db.WithContext(ctx), id)
}

// Increment atomically puts one copy back. A missing book is a no-op:
// returning a loan for a since-deleted book still succeeds.
func (r *bookRepository) Increment(ctx context.Context, id string) error {
	return incrementQuantity(r.db.WithContext(ctx), id)
}

// Shared with the loan repository so borrow/return can run the quantity
// update inside their own transaction.
func decrementQuantity(tx *gorm.DB, id string) error {
	result := tx.Model(&models.Book{}).
		Where("id = ? AND quantity > 0", id).
		UpdateColumn("quantity", gorm.Expr("quantity - 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// distinguish a missing book from one with no copies left
		var count int64
		if err := tx.Model(&models.Book{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrBookUnavailable
	}
	return nil
}

func incrementQuantity(tx *gorm.DB, id string) error {
	result := tx.Model(&models.Book{}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + 1"))
	if result.Error != nil {
		return result.Error
	}
	// zero rows means the book was deleted while on loan; loan history
	// is preserved regardless, so this is not an error
	return nil
}
