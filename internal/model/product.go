package model

import "time"

// MaxNameLength is the storage bound on a product name.
const MaxNameLength = 100

// Product represents a named catalogue record. Timestamps are pointers
// because tables created by earlier deployments allow NULL in both columns;
// such rows serialise as null.
type Product struct {
	ID        int64      `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Name      string     `json:"name" db:"name" gorm:"size:100;not null;check:length(name) <= 100"`
	CreatedAt *time.Time `json:"created_at" db:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;autoCreateTime:false"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP;autoUpdateTime:false"`
}

// TableName returns the table name for Product.
func (Product) TableName() string {
	return "products"
}

// ProductRequest is the request payload for creating or updating a product.
// Name is a pointer so an absent or null key can be told apart from "".
type ProductRequest struct {
	Name *string `json:"name"`
}

// MessageResponse is the body returned by operations without a record to echo.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status string  `json:"status"`
	Time   float64 `json:"time"`
}

// ReadinessResponse reports whether storage finished initialising.
type ReadinessResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
