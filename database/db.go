package database

import (
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bookhub/internal/api/models"
	"bookhub/internal/config"
)

func ConnectDB(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	// Loan rows are history and must outlive the users and books they
	// reference, so migration must not emit foreign key constraints from
	// the Loan association fields.
	gormCfg := &gorm.Config{DisableForeignKeyConstraintWhenMigrating: true}
	if !cfg.IsDevelopment() {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify the connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying connection: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		// close the handle if ping fails to avoid resource leak
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run migrations
	if err := Migrate(db, logger); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Connected to the database successfully")
	return db, nil
}

// Migrate applies the schema plus the partial unique index that backs
// duplicate-borrow prevention. AutoMigrate cannot express a partial
// index, so it is created with raw SQL.
func Migrate(db *gorm.DB, logger *slog.Logger) error {
	if err := db.AutoMigrate(&models.User{}, &models.Book{}, &models.Loan{}); err != nil {
		return fmt.Errorf("failed to auto-migrate schema: %w", err)
	}

	// at most one borrowed loan per (user, book) pair
	activeLoanIndex := `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_loans_active_user_book
		ON loans (user_id, book_id)
		WHERE status = 'borrowed'`
	if err := db.Exec(activeLoanIndex).Error; err != nil {
		return fmt.Errorf("failed to create active loan index: %w", err)
	}

	logger.Info("Database migrations applied successfully")
	return nil
}

// Close flushes and closes the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
