// Package validation contains the logic for validating
// request data.
//
// It uses the `validator` library to enforce rules (like
// required fields or length limits) defined in struct tags
// and extracts validation errors into a format the client can
// understand
package validation

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// RangeSeparator splits the bounds of the `inrange` rule: `inrange=0~100`.
const RangeSeparator = "~"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// instance returns the shared validator, built once.
//
// validator.Validate caches struct metadata and is safe for concurrent use,
// so one instance serves every request.
func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report fields by their JSON key ("owner_id") instead of the Go name ("OwnerID").
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		// inrange=<min>~<max> checks an integer is within both bounds (inclusive).
		_ = validate.RegisterValidation("inrange", validateInRange)
	})
	return validate
}

// Struct validates a payload struct against its `validate` tags.
//
// Payload types call this from their Validate() method.
func Struct(v any) error {
	return instance().Struct(v)
}

func validateInRange(fl validator.FieldLevel) bool {
	lo, hi, ok := parseRange(fl.Param())
	if !ok {
		return false
	}

	field := fl.Field()
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := field.Int()
		return v >= lo && v <= hi
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := field.Uint()
		if v > math.MaxInt64 {
			return false
		}
		return int64(v) >= lo && int64(v) <= hi
	default:
		return false
	}
}

func parseRange(param string) (int64, int64, bool) {
	bounds := strings.SplitN(param, RangeSeparator, 2)
	if len(bounds) != 2 {
		return 0, 0, false
	}
	lo, err := strconv.ParseInt(strings.TrimSpace(bounds[0]), 10, 64)
	if err != nil {
		return 0, 0, false
	}
	hi, err := strconv.ParseInt(strings.TrimSpace(bounds[1]), 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return lo, hi, true
}
