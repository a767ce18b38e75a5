package errors

// ValidationError represents a validation error with a field and message
type ValidationError struct {
	Field   string
	Message string
	// Kind is the sentinel the error matches with errors.Is. Defaults to ErrInvalidInput.
	Kind error
}

// StorageError represents a failure talking to the backing store
type StorageError struct {
	Message string
	Cause   error
}
