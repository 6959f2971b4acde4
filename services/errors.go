package services

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Error codes returned to API clients
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeMailNotConfigured = "MAIL_NOT_CONFIGURED"
	ErrCodeMailSendFailed    = "MAIL_SEND_FAILED"
	ErrCodeStorage           = "STORAGE_ERROR"
	ErrCodeDatabase          = "DATABASE_ERROR"
)

// Messages shown when mail settings are incomplete
const (
	MsgMailNotConfigured     = "Email settings not configured in CMS. Please configure SMTP settings first."
	MsgMailNotConfiguredTest = "Email settings not configured in CMS"
)

// ServiceError is the typed error every service operation returns
type ServiceError struct {
	Code    string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewValidationError reports field-level validation failures
func NewValidationError(fields map[string]string) *ServiceError {
	return &ServiceError{Code: ErrCodeValidation, Message: "Invalid request data", Fields: fields}
}

// NewNotFoundError reports a missing record
func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{Code: ErrCodeNotFound, Message: message}
}

func newMailNotConfiguredError(message string) *ServiceError {
	return &ServiceError{Code: ErrCodeMailNotConfigured, Message: message}
}

func newDatabaseError(message string, err error) *ServiceError {
	return &ServiceError{Code: ErrCodeDatabase, Message: message, Err: err}
}

func newStorageError(message string, err error) *ServiceError {
	return &ServiceError{Code: ErrCodeStorage, Message: message, Err: err}
}

// CodeOf returns the ServiceError code in err's chain, or DATABASE_ERROR
// for anything untyped
func CodeOf(err error) string {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Code
	}
	return ErrCodeDatabase
}

// IsNotFound reports whether err is a not-found service error
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

// IsValidation reports whether err is a validation service error
func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidation
}

// IsMailNotConfigured reports whether err means SMTP settings are missing
func IsMailNotConfigured(err error) bool {
	return CodeOf(err) == ErrCodeMailNotConfigured
}

// isDuplicateKey recognises unique violations from both the translated GORM
// error and a raw postgres error
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
