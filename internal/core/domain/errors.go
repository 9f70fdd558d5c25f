package domain

import (
	"errors"
	"fmt"
)

// Виды ошибок слоя данных.
var (
	ErrNetwork = errors.New("network error")
	ErrDecode  = errors.New("decode error")
	ErrStorage = errors.New("storage error")

	ErrListingNotFound     = errors.New("listing not found")
	ErrUnknownDisplayState = errors.New("unknown display state")
	ErrSessionClosed       = errors.New("browse session closed")
)

// Операции хранилища избранного.
const (
	StorageOpLoad  = "load"
	StorageOpSave  = "save"
	StorageOpPurge = "purge"
)

// StorageError - ошибка чтения, записи или разбора файла избранного.
// errors.Is(err, ErrStorage) выполняется для любой StorageError.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}
