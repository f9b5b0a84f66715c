package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ConversionStatus represents the state of a recorded conversion
type ConversionStatus string

const (
	StatusProcessing ConversionStatus = "processing"
	StatusCompleted  ConversionStatus = "completed"
	StatusFailed     ConversionStatus = "failed"
)

// ConversionRecord is the history entry of one submission
type ConversionRecord struct {
	ID             string           `json:"id" gorm:"primaryKey"`
	FileNames      string           `json:"file_names" gorm:"not null"`
	FileCount      int              `json:"file_count" gorm:"not null"`
	TotalSize      int64            `json:"total_size"`
	SourceCategory string           `json:"source_category,omitempty"`
	TargetFormat   string           `json:"target_format" gorm:"not null;index"`
	Status         ConversionStatus `json:"status" gorm:"not null;index"`
	ErrorMessage   string           `json:"error_message,omitempty"`
	Filename       string           `json:"filename,omitempty"`
	OutputPath     string           `json:"output_path,omitempty"`
	CreatedAt      time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
}

// NewConversionRecord creates a record for a submission that is starting
func NewConversionRecord(sel Selection) *ConversionRecord {
	category, _ := sel.SourceCategory()
	now := time.Now()
	return &ConversionRecord{
		ID:             uuid.New().String(),
		FileNames:      strings.Join(sel.FileNames(), ", "),
		FileCount:      len(sel.Files),
		TotalSize:      sel.TotalSize(),
		SourceCategory: string(category),
		TargetFormat:   sel.TargetFormat,
		Status:         StatusProcessing,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// MarkCompleted marks the conversion as completed
func (r *ConversionRecord) MarkCompleted(filename, outputPath string) {
	r.Status = StatusCompleted
	r.Filename = filename
	r.OutputPath = outputPath
	now := time.Now()
	r.CompletedAt = &now
	r.UpdatedAt = now
}

// MarkFailed marks the conversion as failed
func (r *ConversionRecord) MarkFailed(err error) {
	r.Status = StatusFailed
	r.ErrorMessage = err.Error()
	now := time.Now()
	r.CompletedAt = &now
	r.UpdatedAt = now
}

// IsTerminal checks if the conversion has finished
func (r *ConversionRecord) IsTerminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// ValidateStatus checks if a status is valid
func ValidateStatus(status ConversionStatus) bool {
	return status == StatusProcessing || status == StatusCompleted || status == StatusFailed
}
