// Package forms describes every input form as a typed schema. The same
// schema drives rendering (served to the page components) and validation.
package forms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/robertarktes/airline-booking-bff/internal/domain"
)

type FieldType string

const (
	Text     FieldType = "text"
	Email    FieldType = "email"
	Password FieldType = "password"
	Number   FieldType = "number"
	Tel      FieldType = "tel"
	Date     FieldType = "date"
)

type Field struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	// Rule is a go-playground/validator tag applied to the submitted value.
	Rule string `json:"-"`
}

type Schema struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// ValidationError maps field names to human readable problems.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e.Fields[name]
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == domain.ErrInvalidInput
}

var validate = validator.New()

// Validate checks every schema field in values. Values are JSON-decoded, so
// numbers arrive as float64.
func (s Schema) Validate(values map[string]interface{}) error {
	problems := map[string]string{}
	for _, f := range s.Fields {
		v, present := values[f.Name]
		if present && v != nil && !f.accepts(v) {
			problems[f.Name] = f.Label + " has the wrong type"
			continue
		}
		if f.Rule == "" {
			continue
		}
		if err := validate.Var(v, f.Rule); err != nil {
			problems[f.Name] = describe(f, err)
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Fields: problems}
	}
	return nil
}

func (f Field) accepts(v interface{}) bool {
	switch v.(type) {
	case float64:
		return f.Type == Number
	case string:
		return f.Type != Number
	default:
		return false
	}
}

func describe(f Field, err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return f.Label + " is invalid"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return f.Label + " is required"
	case "email":
		return f.Label + " must be a valid email address"
	case "gt", "gte", "min":
		return fmt.Sprintf("%s must be at least %s", f.Label, minimumOf(fe))
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", f.Label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", f.Label, fe.Param())
	default:
		return f.Label + " is invalid"
	}
}

func minimumOf(fe validator.FieldError) string {
	if fe.Tag() == "gt" {
		return fmt.Sprintf("greater than %s", fe.Param())
	}
	return fe.Param()
}

// Decode reads a JSON object from r, validates it against s and decodes it
// into dst.
func Decode(r io.Reader, s Schema, dst interface{}) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "read form")
	}
	var values map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&values); err != nil {
		return errors.Mark(errors.Wrap(err, "decode form"), domain.ErrInvalidInput)
	}
	if err := s.Validate(values); err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return errors.Mark(errors.Wrap(err, "decode form"), domain.ErrInvalidInput)
	}
	return nil
}
