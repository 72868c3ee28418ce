package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// enum maps a closed set of integer codes to their wire labels.
type enum[T ~int] struct {
	name   string
	labels map[T]string
	codes  map[string]T
}

func newEnum[T ~int](name string, labels map[T]string) enum[T] {
	codes := make(map[string]T, len(labels))
	for code, label := range labels {
		codes[label] = code
	}
	return enum[T]{name: name, labels: labels, codes: codes}
}

func (e enum[T]) label(v T) string {
	if label, ok := e.labels[v]; ok {
		return label
	}
	return fmt.Sprintf("%s(%d)", e.name, int(v))
}

func (e enum[T]) valid(v T) bool {
	_, ok := e.labels[v]
	return ok
}

// parse is case-insensitive and ignores surrounding whitespace.
func (e enum[T]) parse(s string) (T, error) {
	code, ok := e.codes[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, &InvalidInputError{Field: e.name, Reason: fmt.Sprintf("unknown value %q", s)}
	}
	return code, nil
}

func (e enum[T]) marshal(v T) ([]byte, error) {
	label, ok := e.labels[v]
	if !ok {
		return nil, fmt.Errorf("invalid %s %d", e.name, int(v))
	}
	return []byte(label), nil
}

func (e enum[T]) scan(dst *T, src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case nil:
		return fmt.Errorf("scan %s: null value", e.name)
	default:
		return fmt.Errorf("scan %s: unsupported type %T", e.name, src)
	}

	code, err := e.parse(raw)
	if err != nil {
		return err
	}
	*dst = code
	return nil
}

func (e enum[T]) value(v T) (driver.Value, error) {
	label, ok := e.labels[v]
	if !ok {
		return nil, fmt.Errorf("invalid %s %d", e.name, int(v))
	}
	return label, nil
}
