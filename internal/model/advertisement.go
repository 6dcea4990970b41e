package model

import (
	"time"

	"github.com/deppfellow/adboard/internal/validation"
)

// Advertisement is a persisted advertisement record.
//
// OwnerName is resolved from the owning user on reads.
type Advertisement struct {
	ID          int64
	Title       string
	Description string
	CreatedAt   time.Time
	OwnerID     int64
	OwnerName   string
}

// CreateAdvertisementPayload is the body of POST /adv.
type CreateAdvertisementPayload struct {
	Title       *string `json:"title" validate:"required,max=50"`
	Description *string `json:"description" validate:"required,min=10"`
	OwnerID     *int64  `json:"owner_id" validate:"required"`
}

func (p *CreateAdvertisementPayload) Validate() error {
	return validation.Struct(p)
}

// Fields returns the normalized column values to insert.
func (p *CreateAdvertisementPayload) Fields() Fields {
	fields := Fields{}
	setIfPresent(fields, ColumnTitle, p.Title)
	setIfPresent(fields, ColumnDescription, p.Description)
	setIfPresent(fields, ColumnOwnerID, p.OwnerID)
	return fields
}

// PatchAdvertisementPayload is the body of PATCH /adv/:id.
//
// The owner and creation time of an advertisement are immutable.
type PatchAdvertisementPayload struct {
	ID          int64   `param:"id" json:"-"`
	Title       *string `json:"title" validate:"omitnil,max=50"`
	Description *string `json:"description" validate:"omitnil,min=10"`
}

func (p *PatchAdvertisementPayload) Validate() error {
	return validation.Struct(p)
}

// Fields returns only the columns present in the request.
func (p *PatchAdvertisementPayload) Fields() Fields {
	fields := Fields{}
	setIfPresent(fields, ColumnTitle, p.Title)
	setIfPresent(fields, ColumnDescription, p.Description)
	return fields
}

// AdvertisementIDPayload addresses a single advertisement by path id.
type AdvertisementIDPayload struct {
	ID int64 `param:"id" json:"-"`
}

func (p *AdvertisementIDPayload) Validate() error {
	return nil
}
