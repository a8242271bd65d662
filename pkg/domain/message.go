package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldType tells the confirmation UI how to render and validate a field.
type FieldType string

const (
	FieldAmount      FieldType = "amount"
	FieldBudget      FieldType = "budget"
	FieldGroup       FieldType = "group"
	FieldDescription FieldType = "description"
	FieldTitle       FieldType = "title"
	FieldDuration    FieldType = "duration"
	FieldDate        FieldType = "date"
	FieldTime        FieldType = "time"
)

// EditableField is one user-adjustable value in a confirmation message.
type EditableField struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	FieldType FieldType `json:"fieldType"`
}

// EditableMessage is a confirmation template with named fields the user may
// adjust before the intent is executed. The template contains {{placeholder}}
// tokens corresponding 1:1 to field keys.
type EditableMessage struct {
	Template string          `json:"template"`
	Fields   []EditableField `json:"fields"`
}

var placeholderPattern = regexp.MustCompile(`\{\{([a-zA-Z][a-zA-Z0-9_]*)\}\}`)

// Placeholders returns the placeholder names in template order.
func (m *EditableMessage) Placeholders() []string {
	matches := placeholderPattern.FindAllStringSubmatch(m.Template, -1)
	names := make([]string, 0, len(matches))
	for _, match := range matches {
		names = append(names, match[1])
	}
	return names
}

// Validate checks the template/field parity invariant in both directions:
// every placeholder has a field and every field has a placeholder.
func (m *EditableMessage) Validate() error {
	placeholders := make(map[string]bool)
	for _, name := range m.Placeholders() {
		placeholders[name] = true
	}
	fields := make(map[string]bool)
	for _, field := range m.Fields {
		if fields[field.Key] {
			return fmt.Errorf("%w: duplicate field %q", ErrMessageMismatch, field.Key)
		}
		fields[field.Key] = true
		if !placeholders[field.Key] {
			return fmt.Errorf("%w: field %q has no placeholder", ErrMessageMismatch, field.Key)
		}
	}
	for name := range placeholders {
		if !fields[name] {
			return fmt.Errorf("%w: placeholder %q has no field", ErrMessageMismatch, name)
		}
	}
	return nil
}

// Render substitutes every placeholder with its field value.
func (m *EditableMessage) Render() string {
	values := make(map[string]string, len(m.Fields))
	for _, field := range m.Fields {
		values[field.Key] = field.Value
	}
	return placeholderPattern.ReplaceAllStringFunc(m.Template, func(token string) string {
		name := strings.Trim(token, "{}")
		if value, ok := values[name]; ok {
			return value
		}
		return token
	})
}

// FieldValue returns the value of the named field, if present.
func (m *EditableMessage) FieldValue(key string) (string, bool) {
	for _, field := range m.Fields {
		if field.Key == key {
			return field.Value, true
		}
	}
	return "", false
}
