// Package validation contains the logic for validating
// request data.
//
// It uses the `validator` library to enforce rules (like
// required fields or length limits) defined in struct tags
// and extracts validation errors into a format the client can
// understand
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/deppfellow/adboard/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payload types that know how to validate themselves.
//
// Typical pattern:
// - Define a request struct with validator tags (`validate:"required,max=50"`)
// - Implement Validate() error that runs validation.Struct(req)
// - Return validator.ValidationErrors (or CustomValidationErrors for custom cases)
type Validatable interface {
	Validate() error
}

// CustomValidationError represents a single validation issue for a specific field.
// This is used for validation errors that cannot be expressed via validator tags.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// BindAndValidate binds request data into payload and validates it.
//
// Flow:
//  1. Path params are bound with Echo's binder.
//  2. The JSON body is decoded key by key, so a value of the wrong type
//     becomes a field error instead of aborting the whole decode.
//  3. payload.Validate() applies the tag rules to the fields that decoded.
//  4. Type and rule errors are merged into a single 400, in struct order.
//
// NOTE: payload must be a pointer to a struct.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := (&echo.DefaultBinder{}).BindPathParams(c, payload); err != nil {
		return bindError(err)
	}

	typeErrors, err := bindBody(c, payload)
	if err != nil {
		return err
	}

	_, ruleErrors := validateStruct(payload)

	fieldErrors := mergeFieldErrors(payload, typeErrors, ruleErrors)
	if len(fieldErrors) > 0 {
		return errs.NewBadRequestError("Validation failed", nil, fieldErrors)
	}

	return nil
}

// bindBody decodes the request body into payload one top-level key at a time.
//
// Keys that match no field are ignored, as encoding/json does. Field
// lookup is exact first, then case-insensitive.
func bindBody(c echo.Context, payload any) ([]errs.FieldError, error) {
	req := c.Request()
	if req.ContentLength == 0 || req.Body == nil {
		return nil, nil
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, errs.NewBadRequestError("Could not read request body", nil, nil)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	ctype := req.Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ctype, echo.MIMEApplicationJSON) {
		return nil, echo.ErrUnsupportedMediaType
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, errs.NewBadRequestError("Request body must be a JSON object", nil, nil)
		}
		return nil, errs.NewBadRequestError("Request body is not valid JSON", nil, nil)
	}

	target := reflect.ValueOf(payload)
	if target.Kind() != reflect.Ptr || target.Elem().Kind() != reflect.Struct {
		return nil, errs.NewInternalServerError()
	}
	target = target.Elem()

	var typeErrors []errs.FieldError
	for _, field := range reflect.VisibleFields(target.Type()) {
		name := jsonName(field)
		if name == "" || len(field.Index) != 1 {
			continue
		}

		value, ok := lookupKey(raw, name)
		if !ok {
			continue
		}

		dest := target.Field(field.Index[0]).Addr().Interface()
		if err := json.Unmarshal(value, dest); err != nil {
			typeErrors = append(typeErrors, errs.FieldError{
				Field: name,
				Error: typeMismatchMessage(field.Type),
			})
			// Leave the field unset so the rules do not report it a second time.
			target.Field(field.Index[0]).Set(reflect.Zero(field.Type))
		}
	}

	return typeErrors, nil
}

func lookupKey(raw map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	if value, ok := raw[name]; ok {
		return value, true
	}
	for key, value := range raw {
		if strings.EqualFold(key, name) {
			return value, true
		}
	}
	return nil, false
}

// jsonName returns the JSON key of an exported field, or "" if it has none.
func jsonName(field reflect.StructField) string {
	if !field.IsExported() {
		return ""
	}
	tag, ok := field.Tag.Lookup("json")
	if !ok {
		return field.Name
	}
	name := strings.SplitN(tag, ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// mergeFieldErrors combines type and rule errors, ordered by field declaration.
// A field with a type error is reported once, with the type error.
func mergeFieldErrors(payload any, typeErrors, ruleErrors []errs.FieldError) []errs.FieldError {
	if len(typeErrors) == 0 {
		return ruleErrors
	}

	mistyped := make(map[string]bool, len(typeErrors))
	for _, fe := range typeErrors {
		mistyped[fe.Field] = true
	}

	merged := append([]errs.FieldError{}, typeErrors...)
	for _, fe := range ruleErrors {
		if !mistyped[fe.Field] {
			merged = append(merged, fe)
		}
	}

	order := map[string]int{}
	if t := reflect.TypeOf(payload); t != nil && t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct {
		for _, field := range reflect.VisibleFields(t.Elem()) {
			if name := jsonName(field); name != "" {
				if _, seen := order[name]; !seen {
					order[name] = len(order)
				}
			}
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		oi, iok := order[merged[i].Field]
		oj, jok := order[merged[j].Field]
		if !iok || !jok {
			return iok && !jok
		}
		return oi < oj
	})
	return merged
}

// bindError turns an Echo path-param bind failure into a 400.
//
// Echo wraps parse errors in *echo.HTTPError with the original error as
// Internal, so errors.As can reach the strconv error underneath.
func bindError(err error) *errs.HTTPError {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return errs.NewBadRequestError(fmt.Sprintf("Invalid parameter %q: must be an integer", numErr.Num), nil, nil)
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if msg, ok := echoErr.Message.(string); ok && msg != "" {
			return errs.NewBadRequestError(msg, nil, nil)
		}
	}

	return errs.NewBadRequestError("Invalid request", nil, nil)
}

// typeMismatchMessage describes the JSON type a field expected.
func typeMismatchMessage(t reflect.Type) string {
	if t == nil {
		return "has an invalid type"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "must be an integer"
	case reflect.String:
		return "must be a string"
	case reflect.Bool:
		return "must be a boolean"
	default:
		return "has an invalid type"
	}
}

// validateStruct calls v.Validate() and extracts field errors if validation fails.
func validateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return "", nil
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		var customValidationErrors CustomValidationErrors
		if errors.As(err, &customValidationErrors) {
			for _, err := range customValidationErrors {
				fieldErrors = append(fieldErrors, errs.FieldError{
					Field: err.Field,
					Error: err.Message,
				})
			}
			return "Validation failed", fieldErrors
		}

		// Not a field-level failure (e.g. InvalidValidationError): report it whole.
		return "Validation failed", []errs.FieldError{{Field: "", Error: err.Error()}}
	}

	// Every failing field is reported, not just the first one.
	for _, err := range validationErrors {
		field := err.Field()
		var msg string

		switch err.Tag() {
		case "required":
			msg = "is required"

		case "min":
			// min tag means:
			// - for strings: minimum length
			// - for numbers: minimum value
			if err.Kind() == reflect.String {
				msg = fmt.Sprintf("must be more than %s", err.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", err.Param())
			}

		case "max":
			if err.Kind() == reflect.String {
				msg = fmt.Sprintf("must be less than %s", err.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", err.Param())
			}

		case "inrange":
			bounds := strings.SplitN(err.Param(), RangeSeparator, 2)
			if len(bounds) == 2 {
				msg = fmt.Sprintf("must be in range %s to %s", bounds[0], bounds[1])
			} else {
				msg = "is out of range"
			}

		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", err.Param())

		default:
			// Includes tag name and param (if any) to help debugging.
			if err.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, err.Tag(), err.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, err.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: msg,
		})
	}

	return "Validation failed", fieldErrors
}
