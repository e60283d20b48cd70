package schema

import (
	"fmt"
	"strings"
)

// Hint - декларативные метаданные одного атрибута записи
type Hint struct {
	Attribute string

	// Column переопределяет имя колонки атрибута
	Column string

	PrimaryKey    bool
	AutoIncrement bool
	Required      bool
}

// Store - упорядоченные метаданные колонок одной таблицы, только чтение
type Store struct {
	columns []Column
	pk      int
}

// Correlate выполняет однократное сопоставление колонок с атрибутами и
// возвращает готовый store. cols не сохраняется.
//
// Порядок: сначала переопределения имен, затем первичный ключ (явное
// указание, иначе первая колонка), затем флаги автоинкремента и
// обязательности.
func Correlate(cols []Column, hints []Hint) (*Store, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("no columns to correlate")
	}

	work := make([]Column, len(cols))
	copy(work, cols)

	for _, h := range hints {
		if h.Column == "" {
			continue
		}
		for i := range work {
			if strings.EqualFold(work[i].Name, h.Column) {
				work[i].Attribute = h.Attribute
				break
			}
		}
	}

	pk := -1
	for _, h := range hints {
		if !h.PrimaryKey {
			continue
		}
		if i := indexByAttribute(work, h.Attribute); i >= 0 {
			pk = i
			break
		}
	}
	if pk < 0 {
		pk = 0
	}
	for i := range work {
		work[i].PrimaryKey = i == pk
	}

	for _, h := range hints {
		if !h.AutoIncrement && !h.Required {
			continue
		}
		for i := range work {
			if !strings.EqualFold(work[i].Attribute, h.Attribute) {
				continue
			}
			if h.AutoIncrement {
				work[i].AutoIncrement = true
			}
			if h.Required {
				work[i].Required = true
			}
		}
	}

	s := &Store{columns: work, pk: pk}
	if err := NewValidator().Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

func indexByAttribute(cols []Column, attr string) int {
	for i, c := range cols {
		if strings.EqualFold(c.Attribute, attr) {
			return i
		}
	}
	return -1
}

// Columns возвращает копию колонок в порядке таблицы
func (s *Store) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Len возвращает количество колонок
func (s *Store) Len() int {
	return len(s.columns)
}

// At возвращает колонку с индексом i
func (s *Store) At(i int) Column {
	return s.columns[i]
}

// PrimaryKey возвращает колонку первичного ключа
func (s *Store) PrimaryKey() Column {
	return s.columns[s.pk]
}

// PrimaryKeyIndex возвращает позицию колонки первичного ключа
func (s *Store) PrimaryKeyIndex() int {
	return s.pk
}

// Lookup ищет колонку по имени без учета регистра
func (s *Store) Lookup(name string) (Column, int, bool) {
	for i, c := range s.columns {
		if strings.EqualFold(c.Name, name) {
			return c, i, true
		}
	}
	return Column{}, -1, false
}

// Names возвращает имена колонок в порядке таблицы
func (s *Store) Names() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}
