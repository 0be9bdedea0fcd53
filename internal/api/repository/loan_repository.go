package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"bookhub/internal/api/models"
)

// LoanRepository persists the loan lifecycle. Borrow and Return each run
// as a single transaction so the quantity change and the loan write
// commit or roll back together.
type LoanRepository interface {
	Borrow(ctx context.Context, userID, bookID string, borrowedAt, dueDate time.Time) (*models.Loan, error)
	Return(ctx context.Context, loanID, userID string, returnedAt time.Time) (*models.Loan, error)
	ActiveExists(ctx context.Context, userID, bookID string) (bool, error)
	ListActiveByUser(ctx context.Context, userID string) ([]models.Loan, error)
	ListActive(ctx context.Context) ([]models.Loan, error)
}

type loanRepository struct {
	db *gorm.DB
}

func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

// Borrow takes one copy off the shelf and records the loan atomically.
// The conditional quantity update fails the transaction when no copies
// are left, and the partial unique index on (user_id, book_id) rejects a
// second active loan for the same pair, so neither hazard depends on an
// application-level check.
func (r *loanRepository) Borrow(ctx context.Context, userID, bookID string, borrowedAt, dueDate time.Time) (*models.Loan, error) {
	loan := &models.Loan{
		UserID:     userID,
		BookID:     bookID,
		BorrowedAt: borrowedAt,
		DueDate:    dueDate,
		Status:     models.LoanStatusBorrowed,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := decrementQuantity(tx, bookID); err != nil {
			return err
		}
		if err := tx.Create(loan).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateActiveLoan
			}
			return fmt.Errorf("create loan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// reload with the book snapshot joined in
	var created models.Loan
	if err := r.db.WithContext(ctx).Preload("Book").First(&created, "id = ?", loan.ID).Error; err != nil {
		return nil, fmt.Errorf("reload loan: %w", err)
	}
	return &created, nil
}

// Return closes the loan and puts the copy back. Ownership and the
// single-return guarantee live in the UPDATE predicate: zero rows means
// no active loan with that id belongs to that user.
func (r *loanRepository) Return(ctx context.Context, loanID, userID string, returnedAt time.Time) (*models.Loan, error) {
	var returned models.Loan

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Loan{}).
			Where("id = ? AND user_id = ? AND status = ?", loanID, userID, models.LoanStatusBorrowed).
			Updates(map[string]any{
				"status":      models.LoanStatusReturned,
				"returned_at": returnedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Preload("Book").First(&returned, "id = ?", loanID).Error; err != nil {
			return err
		}

		// best effort: the book may have been deleted while on loan
		return incrementQuantity(tx, returned.BookID)
	})
	if err != nil {
		return nil, err
	}
	return &returned, nil
}

func (r *loanRepository) ActiveExists(ctx context.Context, userID, bookID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("user_id = ? AND book_id = ? AND status = ?", userID, bookID, models.LoanStatusBorrowed).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *loanRepository) ListActiveByUser(ctx context.Context, userID string) ([]models.Loan, error) {
	loans := []models.Loan{}
	if err := r.db.WithContext(ctx).
		Preload("Book").
		Where("user_id = ? AND status = ?", userID, models.LoanStatusBorrowed).
		Order("borrowed_at DESC").
		Find(&loans).Error; err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	return loans, nil
}

func (r *loanRepository) ListActive(ctx context.Context) ([]models.Loan, error) {
	loans := []models.Loan{}
	if err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("User").
		Where("status = ?", models.LoanStatusBorrowed).
		Order("borrowed_at DESC").
		Find(&loans).Error; err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	return loans, nil
}
