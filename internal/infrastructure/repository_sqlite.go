package infrastructure

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourusername/fileconv-go/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrRecordNotFound is returned when a conversion record does not exist
var ErrRecordNotFound = errors.New("conversion record not found")

// filterColumns are the columns FindAll accepts as filters
var filterColumns = map[string]bool{
	"status":          true,
	"target_format":   true,
	"source_category": true,
}

// SQLiteConversionRepository implements ConversionRepository using SQLite
type SQLiteConversionRepository struct {
	db *gorm.DB
}

// NewSQLiteConversionRepository creates a new SQLite repository
func NewSQLiteConversionRepository(dbPath string) (*SQLiteConversionRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.ConversionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteConversionRepository{db: db}, nil
}

// Create creates a new record
func (r *SQLiteConversionRepository) Create(record *domain.ConversionRecord) error {
	return r.db.Create(record).Error
}

// Update updates an existing record
func (r *SQLiteConversionRepository) Update(record *domain.ConversionRecord) error {
	return r.db.Save(record).Error
}

// Delete deletes a record by ID
func (r *SQLiteConversionRepository) Delete(id string) error {
	result := r.db.Delete(&domain.ConversionRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// FindByID finds a record by ID
func (r *SQLiteConversionRepository) FindByID(id string) (*domain.ConversionRecord, error) {
	var record domain.ConversionRecord
	err := r.db.First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindAll finds all records with optional filters, newest first
func (r *SQLiteConversionRepository) FindAll(filters map[string]interface{}) ([]*domain.ConversionRecord, error) {
	var records []*domain.ConversionRecord
	query := r.db

	for key, value := range filters {
		if !filterColumns[key] {
			return nil, fmt.Errorf("unsupported filter: %s", key)
		}
		query = query.Where(fmt.Sprintf("%s = ?", key), value)
	}

	err := query.Order("created_at DESC").Find(&records).Error
	return records, err
}

// GetStats returns conversion statistics
func (r *SQLiteConversionRepository) GetStats() (*domain.ConversionStats, error) {
	stats := &domain.ConversionStats{ByTarget: make(map[string]int64)}

	if err := r.db.Model(&domain.ConversionRecord{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	statusCounts := []struct {
		Status domain.ConversionStatus
		Count  int64
	}{}
	if err := r.db.Model(&domain.ConversionRecord{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}

	for _, sc := range statusCounts {
		switch sc.Status {
		case domain.StatusProcessing:
			stats.Processing = sc.Count
		case domain.StatusCompleted:
			stats.Completed = sc.Count
		case domain.StatusFailed:
			stats.Failed = sc.Count
		}
	}

	targetCounts := []struct {
		TargetFormat string
		Count        int64
	}{}
	if err := r.db.Model(&domain.ConversionRecord{}).
		Select("target_format, count(*) as count").
		Group("target_format").
		Scan(&targetCounts).Error; err != nil {
		return nil, err
	}
	for _, tc := range targetCounts {
		stats.ByTarget[tc.TargetFormat] = tc.Count
	}

	return stats, nil
}

// Close closes the database connection
func (r *SQLiteConversionRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
