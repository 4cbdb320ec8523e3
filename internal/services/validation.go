package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Inputs carry the same `binding` tags gin checks at the HTTP edge, so a
// service called directly enforces identical rules.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	v.RegisterTagNameFunc(JSONFieldName)
	return v
}

// fieldPath drops the embedded "plain" wrapper that input decoders use, so
// paths read as the client sent them.
func fieldPath(path string) string {
	parts := strings.Split(path, ".")
	kept := parts[:0]
	for _, p := range parts {
		if p != "plain" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ".")
}

func jsonType(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	}
	return t.String()
}

// JSONFieldName reports validation failures under the JSON key of a field.
func JSONFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func check(in any) error {
	if err := validate.Struct(in); err != nil {
		return BindError(err)
	}
	return nil
}

// BindError converts a decoding or validation failure into a validation
// Error with a readable message.
func BindError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return Invalid(fmt.Sprintf("%s must be a %s", fieldPath(typeErr.Field), jsonType(typeErr.Type)))
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		name := fe.Field()
		switch fe.Tag() {
		case "required":
			return Invalid(fmt.Sprintf("%s is required", name))
		case "email":
			return Invalid(fmt.Sprintf("%s must be a valid email address", name))
		case "gt", "gte", "min", "max", "lt", "lte":
			return Invalid(fmt.Sprintf("%s is out of range (%s=%s)", name, fe.Tag(), fe.Param()))
		default:
			return Invalid(fmt.Sprintf("%s is invalid", name))
		}
	}
	return Invalid(err.Error())
}
