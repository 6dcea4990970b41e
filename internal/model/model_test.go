package model

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func failedFields(t *testing.T, err error) map[string]string {
	t.Helper()

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	out := map[string]string{}
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

func TestCreateUserPayload(t *testing.T) {
	p := &CreateUserPayload{Name: ptr("alice")}
	require.NoError(t, p.Validate())
	assert.Equal(t, Fields{ColumnName: "alice"}, p.Fields())

	p.Rating = ptr(0)
	require.NoError(t, p.Validate(), "zero rating is a valid explicit value")
	assert.Equal(t, Fields{ColumnName: "alice", ColumnRating: 0}, p.Fields())

	p = &CreateUserPayload{Name: ptr(strings.Repeat("n", 51)), Rating: ptr(101)}
	assert.Equal(t, map[string]string{"name": "max", "rating": "inrange"}, failedFields(t, p.Validate()))

	p = &CreateUserPayload{}
	assert.Equal(t, map[string]string{"name": "required"}, failedFields(t, p.Validate()))
}

func TestPatchUserPayload(t *testing.T) {
	p := &PatchUserPayload{ID: 1}
	require.NoError(t, p.Validate())
	assert.Empty(t, p.Fields())

	p.Rating = ptr(100)
	require.NoError(t, p.Validate())
	assert.Equal(t, Fields{ColumnRating: 100}, p.Fields())

	p.Rating = ptr(-1)
	assert.Equal(t, map[string]string{"rating": "inrange"}, failedFields(t, p.Validate()))
}

func TestCreateAdvertisementPayload(t *testing.T) {
	p := &CreateAdvertisementPayload{
		Title:       ptr("Sale"),
		Description: ptr("Big discount!"),
		OwnerID:     ptr(int64(1)),
	}
	require.NoError(t, p.Validate())
	assert.Equal(t, Fields{
		ColumnTitle:       "Sale",
		ColumnDescription: "Big discount!",
		ColumnOwnerID:     int64(1),
	}, p.Fields())

	p.Description = ptr("too short")
	assert.Equal(t, map[string]string{"description": "min"}, failedFields(t, p.Validate()))

	p = &CreateAdvertisementPayload{}
	assert.Equal(t, map[string]string{
		"title":       "required",
		"description": "required",
		"owner_id":    "required",
	}, failedFields(t, p.Validate()))
}

func TestPatchAdvertisementPayload(t *testing.T) {
	p := &PatchAdvertisementPayload{ID: 3}
	require.NoError(t, p.Validate())
	assert.Empty(t, p.Fields())

	p.Description = ptr("exactly10!")
	require.NoError(t, p.Validate())
	assert.Equal(t, Fields{ColumnDescription: "exactly10!"}, p.Fields())

	p.Title = ptr(strings.Repeat("t", 50))
	require.NoError(t, p.Validate(), "50 characters is the inclusive limit")

	p.Title = ptr(strings.Repeat("t", 51))
	assert.Equal(t, map[string]string{"title": "max"}, failedFields(t, p.Validate()))
}
