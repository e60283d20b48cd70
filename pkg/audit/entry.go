package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Level - уровень детализации логирования
type Level int

const (
	// LevelMinimal - только основная информация
	LevelMinimal Level = iota

	// LevelStandard - без данных записи
	LevelStandard

	// LevelFull - полная информация включая данные
	LevelFull
)

// String - строковое представление уровня
func (l Level) String() string {
	switch l {
	case LevelMinimal:
		return "minimal"
	case LevelStandard:
		return "standard"
	case LevelFull:
		return "full"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}

// ParseLevel resolves "minimal", "standard" or "full".
func ParseLevel(s string) (Level, error) {
	switch s {
	case "minimal":
		return LevelMinimal, nil
	case "", "standard":
		return LevelStandard, nil
	case "full":
		return LevelFull, nil
	default:
		return LevelStandard, fmt.Errorf("unknown audit level %q", s)
	}
}

// Operation - тип операции репозитория
type Operation string

const (
	OpSelect      Operation = "select"
	OpCreate      Operation = "create"
	OpUpdate      Operation = "update"
	OpUpdateField Operation = "update-field"
	OpDelete      Operation = "delete"
	OpTruncate    Operation = "truncate"
	OpExport      Operation = "export"
)

// Status - статус выполнения операции
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Entry - запись в audit логе
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Operation Operation `json:"operation"`
	Status    Status    `json:"status"`

	// Resource - таблица
	Resource string `json:"resource,omitempty"`

	// Key - первичный ключ затронутой строки
	Key string `json:"key,omitempty"`

	RecordsAffected int64         `json:"records_affected,omitempty"`
	Duration        time.Duration `json:"duration,omitempty"`
	ErrorMessage    string        `json:"error_message,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`

	// Data - данные записи (только для LevelFull)
	Data any `json:"data,omitempty"`

	// Fingerprint - xxh3 хеш Data; остается при фильтрации уровня,
	// так что изменения видны и без самих данных
	Fingerprint string `json:"fingerprint,omitempty"`
}

// NewEntry - создать новую audit запись
func NewEntry(operation Operation, status Status) *Entry {
	return &Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Operation: operation,
		Status:    status,
	}
}

// WithResource - установить таблицу
func (e *Entry) WithResource(resource string) *Entry {
	e.Resource = resource
	return e
}

// WithKey - установить ключ записи
func (e *Entry) WithKey(key string) *Entry {
	e.Key = key
	return e
}

// WithRecordsAffected - установить количество записей
func (e *Entry) WithRecordsAffected(count int64) *Entry {
	e.RecordsAffected = count
	return e
}

// WithDuration - установить длительность
func (e *Entry) WithDuration(duration time.Duration) *Entry {
	e.Duration = duration
	return e
}

// WithError - установить ошибку
func (e *Entry) WithError(err error) *Entry {
	if err != nil {
		e.ErrorMessage = err.Error()
		e.Status = StatusFailure
	}
	return e
}

// WithMetadata - добавить метаданные
func (e *Entry) WithMetadata(key string, value any) *Entry {
	if e.Metadata == nil {
		e.Metadata = make(map[string]any)
	}
	e.Metadata[key] = value
	return e
}

// WithData sets the record data and its fingerprint.
func (e *Entry) WithData(data any) *Entry {
	e.Data = data
	e.Fingerprint = Fingerprint(data)
	return e
}

// ToJSON - преобразовать в JSON
func (e *Entry) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// String - строковое представление
func (e *Entry) String() string {
	s := fmt.Sprintf("[%s] %s %s (resource=%s, key=%s, records=%d, duration=%v)",
		e.Timestamp.Format(time.RFC3339),
		e.Operation,
		e.Status,
		e.Resource,
		e.Key,
		e.RecordsAffected,
		e.Duration,
	)
	if e.ErrorMessage != "" {
		s += " error: " + e.ErrorMessage
	}
	return s
}

// Clone - создать копию записи
func (e *Entry) Clone() *Entry {
	clone := *e

	if e.Metadata != nil {
		clone.Metadata = make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			clone.Metadata[k] = v
		}
	}

	return &clone
}

// FilterByLevel - фильтрация данных по уровню
func (e *Entry) FilterByLevel(level Level) *Entry {
	filtered := e.Clone()

	switch level {
	case LevelMinimal:
		filtered.Metadata = nil
		filtered.Data = nil
	case LevelStandard:
		filtered.Data = nil
	case LevelFull:
		// Вся информация
	}

	return filtered
}
