package schema

import (
	"fmt"
	"strings"
)

// ValidationError ошибка валидации метаданных колонок
type ValidationError struct {
	Column  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error for column '%s': %s", e.Column, e.Message)
}

// Validator проверяет корректность метаданных
type Validator struct{}

// NewValidator создает новый валидатор
func NewValidator() *Validator {
	return &Validator{}
}

// Validate проверяет готовый store: есть колонки, имена непустые и
// уникальны, домены известны, первичный ключ ровно один.
func (v *Validator) Validate(s *Store) error {
	if s == nil || len(s.columns) == 0 {
		return &ValidationError{Message: "store must have at least one column"}
	}

	names := make(map[string]bool, len(s.columns))
	keys := 0

	for i, c := range s.columns {
		if c.Name == "" {
			return &ValidationError{Message: fmt.Sprintf("column at index %d has empty name", i)}
		}

		lower := strings.ToLower(c.Name)
		if names[lower] {
			return &ValidationError{Column: c.Name, Message: "duplicate column name"}
		}
		names[lower] = true

		if c.Domain < String || c.Domain > Date {
			return &ValidationError{Column: c.Name, Message: fmt.Sprintf("invalid domain %s", c.Domain)}
		}

		if c.PrimaryKey {
			keys++
		}
	}

	if keys != 1 {
		return &ValidationError{Message: fmt.Sprintf("expected exactly one primary key, found %d", keys)}
	}

	return nil
}
