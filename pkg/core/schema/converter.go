package schema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Форматы дат на входе. Первый используется и на выходе.
const (
	DateTimeLayout = "2006-01-02 15:04:05"
	DateLayout     = "2006-01-02"
)

var dateLayouts = []string{
	DateTimeLayout,
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05 -0700 MST",
}

var errEmpty = errors.New("empty value")

// Converter преобразует текст в значения доменов и обратно
type Converter struct {
	// Now - источник текущего времени для EmptyLiteral(Date)
	Now func() time.Time
}

// NewConverter создает новый конвертер
func NewConverter() *Converter {
	return &Converter{Now: time.Now}
}

// ToParameter разбирает raw в Go значение домена:
// string, int64, bool, float64 или time.Time.
func (c *Converter) ToParameter(raw string, d Domain) (any, error) {
	switch d {
	case String:
		return raw, nil
	case Int:
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, &CoercionError{Domain: d, Value: raw, Err: err}
		}
		return v, nil
	case Bool:
		v, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, &CoercionError{Domain: d, Value: raw, Err: err}
		}
		return v, nil
	case Double:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, &CoercionError{Domain: d, Value: raw, Err: err}
		}
		return v, nil
	case Date:
		v, err := parseDate(raw)
		if err != nil {
			return nil, &CoercionError{Domain: d, Value: raw, Err: err}
		}
		return v, nil
	default:
		return nil, &CoercionError{Domain: d, Value: raw, Err: fmt.Errorf("unsupported domain")}
	}
}

// Parse - вариант ToParameter для чтения: неразбираемое значение
// молча становится нулевым значением домена.
func (c *Converter) Parse(raw string, d Domain) any {
	v, err := c.ToParameter(raw, d)
	if err != nil {
		return Zero(d)
	}
	return v
}

// Coerce приводит произвольное Go значение к типу домена.
// Значения нужного типа проходят как есть, строки разбираются.
func (c *Converter) Coerce(v any, d Domain) (any, error) {
	switch d {
	case String:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case Int:
		switch n := v.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		}
	case Bool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case Double:
		switch f := v.(type) {
		case float64:
			return f, nil
		case float32:
			return float64(f), nil
		}
	case Date:
		if t, ok := v.(time.Time); ok {
			return t, nil
		}
	}
	if v == nil {
		return nil, &CoercionError{Domain: d, Err: errEmpty}
	}
	return c.ToParameter(c.Format(v, d), d)
}

// EmptyLiteral возвращает канонический текст пустого значения
func (c *Converter) EmptyLiteral(d Domain) string {
	switch d {
	case Int:
		return "0"
	case Bool:
		return "false"
	case Double:
		return "0.0"
	case Date:
		now := time.Now
		if c.Now != nil {
			now = c.Now
		}
		return now().Format(DateLayout)
	default:
		return "null"
	}
}

// HasContent сообщает, есть ли в v данные для записи
func HasContent(v any, d Domain) bool {
	if v == nil {
		return false
	}
	switch d {
	case Int:
		switch n := v.(type) {
		case int64:
			return n != 0
		case int:
			return n != 0
		case int32:
			return n != 0
		}
		return false
	case Double:
		switch f := v.(type) {
		case float64:
			return f != 0
		case float32:
			return f != 0
		}
		return false
	case Bool:
		return true
	case Date:
		t, ok := v.(time.Time)
		return ok && !t.IsZero()
	default:
		s, ok := v.(string)
		return ok && s != ""
	}
}

// Zero возвращает нулевое значение домена
func Zero(d Domain) any {
	switch d {
	case Int:
		return int64(0)
	case Bool:
		return false
	case Double:
		return float64(0)
	case Date:
		return time.Time{}
	default:
		return ""
	}
}

// Format выводит значение домена текстом. Bool - "1"/"0", время - в UTC.
func (c *Converter) Format(v any, d Domain) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		x = x.UTC()
		if d == Date && x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(DateLayout)
		}
		return x.Format(DateTimeLayout)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

func parseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, errEmpty
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
