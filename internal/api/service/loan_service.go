package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"bookhub/internal/api/models"
	"bookhub/internal/api/repository"
)

var (
	ErrBookUnavailable = errors.New("book has no available copies")
	ErrAlreadyBorrowed = errors.New("book already borrowed by this user")
	ErrLoanNotFound    = errors.New("loan not found")
)

// LoanService runs the loan lifecycle: none -> borrowed -> returned.
// Re-borrowing after a return creates a new loan record.
type LoanService interface {
	Borrow(ctx context.Context, userID, bookID string) (*models.Loan, error)
	Return(ctx context.Context, loanID, userID string) (*models.Loan, error)
	ListActiveForUser(ctx context.Context, userID string) ([]models.Loan, error)
	ListAllActive(ctx context.Context) ([]models.Loan, error)
}

type loanService struct {
	loanRepo   repository.LoanRepository
	bookRepo   repository.BookRepository
	loanPeriod time.Duration
}

func NewLoanService(loanRepo repository.LoanRepository, bookRepo repository.BookRepository, loanPeriod time.Duration) LoanService {
	return &loanService{
		loanRepo:   loanRepo,
		bookRepo:   bookRepo,
		loanPeriod: loanPeriod, // 14 days
	}
}

// Borrow takes one copy for the user. The duplicate check here is only a
// fast path for a friendly error; the storage layer (partial unique
// index + conditional decrement, one transaction) is what actually keeps
// two concurrent borrows from both succeeding.
func (s *loanService) Borrow(ctx context.Context, userID, bookID string) (*models.Loan, error) {
	if _, err := s.bookRepo.FindByID(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	exists, err := s.loanRepo.ActiveExists(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyBorrowed
	}

	now := time.Now()
	loan, err := s.loanRepo.Borrow(ctx, userID, bookID, now, now.Add(s.loanPeriod))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookUnavailable):
			return nil, ErrBookUnavailable
		case errors.Is(err, repository.ErrDuplicateActiveLoan):
			return nil, ErrAlreadyBorrowed
		case errors.Is(err, gorm.ErrRecordNotFound):
			// book deleted between the lookup and the transaction
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return loan, nil
}

// Return closes the loan. A loan that is not active or belongs to
// another user surfaces as not found; retrying a completed return yields
// the same, which keeps the operation safe to repeat.
func (s *loanService) Return(ctx context.Context, loanID, userID string) (*models.Loan, error) {
	loan, err := s.loanRepo.Return(ctx, loanID, userID, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

func (s *loanService) ListActiveForUser(ctx context.Context, userID string) ([]models.Loan, error) {
	return s.loanRepo.ListActiveByUser(ctx, userID)
}

func (s *loanService) ListAllActive(ctx context.Context) ([]models.Loan, error) {
	return s.loanRepo.ListActive(ctx)
}
