// Package model holds the domain records and the request payloads
// that feed them.
//
// Payload types carry the validation rules for each operation in
// their struct tags. Fields are pointers so an absent JSON key can be
// told apart from a zero value: only present fields reach the
// repository, which is what makes PATCH partial.
package model

// Fields is a normalized set of column values keyed by column name.
//
// It only ever contains the fields the client actually sent.
type Fields map[string]any

// Column names shared by payloads and repositories.
const (
	ColumnName        = "name"
	ColumnRating      = "rating"
	ColumnTitle       = "title"
	ColumnDescription = "description"
	ColumnOwnerID     = "owner_id"
)

// Response status markers returned alongside every successful payload.
const (
	StatusAdded   = "added"
	StatusExists  = "exists"
	StatusDeleted = "deleted"
	StatusPatched = "patched"
)

// setIfPresent adds value under key when the pointer is non-nil.
func setIfPresent[T any](fields Fields, key string, value *T) {
	if value != nil {
		fields[key] = *value
	}
}
