package domain

// ConversionRepository defines the interface for conversion history persistence
type ConversionRepository interface {
	// Create creates a new record
	Create(record *ConversionRecord) error

	// Update updates an existing record
	Update(record *ConversionRecord) error

	// Delete deletes a record by ID
	Delete(id string) error

	// FindByID finds a record by ID
	FindByID(id string) (*ConversionRecord, error)

	// FindAll finds all records with optional filters, newest first
	FindAll(filters map[string]interface{}) ([]*ConversionRecord, error)

	// GetStats returns conversion statistics
	GetStats() (*ConversionStats, error)
}

// ConversionStats represents conversion statistics
type ConversionStats struct {
	Total      int64            `json:"total"`
	Processing int64            `json:"processing"`
	Completed  int64            `json:"completed"`
	Failed     int64            `json:"failed"`
	ByTarget   map[string]int64 `json:"by_target"`
}
