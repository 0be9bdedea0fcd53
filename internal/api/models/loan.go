package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	LoanStatusBorrowed = "borrowed"
	LoanStatusReturned = "returned"
)

// Loan records one user borrowing one copy of a book. A loan is created
// with status "borrowed" and mutated exactly once, on return. At most one
// borrowed loan may exist per (user, book) pair; the partial unique index
// created in database.Migrate enforces that at the storage layer.
type Loan struct {
	ID         string     `gorm:"primaryKey;type:uuid" json:"id"`
	UserID     string     `gorm:"type:uuid;not null;index" json:"user_id"`
	BookID     string     `gorm:"type:uuid;not null;index" json:"book_id"`
	BorrowedAt time.Time  `gorm:"not null" json:"borrowed_at"`
	DueDate    time.Time  `gorm:"not null" json:"due_date"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	Status     string     `gorm:"default:'borrowed';not null;index" json:"status"`

	// Associations for preloading only. No database-level constraint:
	// loans are kept as history after their book or user is deleted.
	User *User `gorm:"foreignKey:UserID;constraint:-" json:"user,omitempty"`
	Book *Book `gorm:"foreignKey:BookID;constraint:-" json:"book,omitempty"`
}

// BeforeCreate hook to set UUID before creating a Loan
func (loan *Loan) BeforeCreate(tx *gorm.DB) (err error) {
	if loan.ID == "" {
		loan.ID = uuid.New().String()
	}
	return
}

func (Loan) TableName() string {
	return "loans"
}
