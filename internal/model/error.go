package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorKind classifies the outcome of a failed operation.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindStorage
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Public messages sent to clients.
const (
	MsgNameRequired = "Product name is required"
	MsgDeleted      = "Product deleted successfully"
	MsgListFailed   = "Failed to fetch products"
	MsgCreateFailed = "Failed to create product"
	MsgSearchFailed = "Failed to search products"
	msgGetFailed    = "Failed to fetch product with id %d"
	msgUpdateFailed = "Failed to update product with id %d"
	msgDeleteFailed = "Failed to delete product with id %d"
	msgNotFound     = "Product with id %d not found"
)

// DomainError is the typed outcome of a failed product operation.
// Message is safe to return to clients; Err carries the underlying cause.
type DomainError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error.
func NewDomainError(kind ErrorKind, message string, err error) *DomainError {
	return &DomainError{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// ErrNameRequired is returned when a create or update body has no name.
var ErrNameRequired = NewDomainError(KindValidation, MsgNameRequired, nil)

// NotFound reports that no product exists with the given id.
func NotFound(id int64) *DomainError {
	return NewDomainError(KindNotFound, fmt.Sprintf(msgNotFound, id), nil)
}

// StorageError wraps a persistence failure behind a fixed public message.
func StorageError(message string, err error) *DomainError {
	return NewDomainError(KindStorage, message, err)
}

// GetFailed is the storage error for a failed lookup by id.
func GetFailed(id int64, err error) *DomainError {
	return StorageError(fmt.Sprintf(msgGetFailed, id), err)
}

// UpdateFailed is the storage error for a failed update.
func UpdateFailed(id int64, err error) *DomainError {
	return StorageError(fmt.Sprintf(msgUpdateFailed, id), err)
}

// DeleteFailed is the storage error for a failed delete.
func DeleteFailed(id int64, err error) *DomainError {
	return StorageError(fmt.Sprintf(msgDeleteFailed, id), err)
}

// KindOf returns the kind of err, treating anything that is not a
// DomainError as a storage failure.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindStorage
}
