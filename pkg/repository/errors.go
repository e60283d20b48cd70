package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNilRecord is returned by Create, Update and Delete for a nil
	// record. No statement is issued.
	ErrNilRecord = errors.New("nil record")

	// ErrDuplicateKey marks an insert rejected by a unique or primary-key
	// constraint.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrUnknownColumn is returned when a column name is not in the store.
	ErrUnknownColumn = errors.New("unknown column")
)

// ConnectionError - ошибка открытия, фиксации или закрытия сессии
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection %s failed: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// StatementError - ошибка выполнения SQL: запрос отклонен СУБД
// или значение не удалось привести к домену колонки
type StatementError struct {
	SQL string
	Err error
}

func (e *StatementError) Error() string {
	if e.SQL == "" {
		return fmt.Sprintf("statement failed: %v", e.Err)
	}
	return fmt.Sprintf("statement failed: %v (sql: %s)", e.Err, e.SQL)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}
