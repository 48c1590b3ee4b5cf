package form

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrUtilitiesCreateOnly  = errors.New("utilities can only be chosen when creating a room")
	ErrImageRemovalEditOnly = errors.New("existing images can only be removed when editing a room")
)

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("form"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}()

// FieldErrors 字段名 -> 提示信息
type FieldErrors map[string]string

// ValidationError carries every failing field of one submission attempt.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// collect turns validator output into messages keyed by form field name.
// Fields already carrying a parse error keep it.
func collect(err error, into FieldErrors, messages map[string]string) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return
	}
	for _, fe := range verrs {
		field := fe.Field()
		if _, exists := into[field]; exists {
			continue
		}
		msg, ok := messages[field+"."+fe.Tag()]
		if !ok {
			msg = field + " is invalid"
		}
		into[field] = msg
	}
}
