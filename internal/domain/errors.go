package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation некорректный или запрещённый ввод; до хранилища запрос не доходит.
	ErrValidation = errors.New("validation error")
	// ErrNotFound запрошенная сущность не существует.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState запись из хранилища нарушает инвариант данных.
	ErrInvalidState = errors.New("invalid state")
	// ErrStorage отказ хранилища (сеть, индекс, таймаут). Повтор на стороне вызывающего.
	ErrStorage = errors.New("storage error")
)

// ValidationError ошибка разбора или проверки одного параметра.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// InvalidStateError запись нарушает инвариант, нужный для вычисления.
type InvalidStateError struct {
	Entity string
	ID     string
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Entity, e.ID, e.Reason)
}

func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}
