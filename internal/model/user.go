package model

import "github.com/deppfellow/adboard/internal/validation"

// User is a persisted user record.
type User struct {
	ID     int64
	Name   string
	Rating int
}

// CreateUserPayload is the body of POST /user.
//
// Rating is optional; the store defaults it to 0.
type CreateUserPayload struct {
	Name   *string `json:"name" validate:"required,max=50"`
	Rating *int    `json:"rating" validate:"omitnil,inrange=0~100"`
}

func (p *CreateUserPayload) Validate() error {
	return validation.Struct(p)
}

// Fields returns the normalized column values to insert.
func (p *CreateUserPayload) Fields() Fields {
	fields := Fields{}
	setIfPresent(fields, ColumnName, p.Name)
	setIfPresent(fields, ColumnRating, p.Rating)
	return fields
}

// PatchUserPayload is the body of PATCH /user/:id. Every field is optional.
type PatchUserPayload struct {
	ID     int64   `param:"id" json:"-"`
	Name   *string `json:"name" validate:"omitnil,max=50"`
	Rating *int    `json:"rating" validate:"omitnil,inrange=0~100"`
}

func (p *PatchUserPayload) Validate() error {
	return validation.Struct(p)
}

// Fields returns only the columns present in the request.
func (p *PatchUserPayload) Fields() Fields {
	fields := Fields{}
	setIfPresent(fields, ColumnName, p.Name)
	setIfPresent(fields, ColumnRating, p.Rating)
	return fields
}

// UserIDPayload addresses a single user by path id (GET and DELETE).
type UserIDPayload struct {
	ID int64 `param:"id" json:"-"`
}

func (p *UserIDPayload) Validate() error {
	return nil
}
