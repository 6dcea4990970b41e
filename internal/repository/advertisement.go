package repository

import (
	"context"
	"time"

	"github.com/deppfellow/adboard/internal/database"
	"github.com/deppfellow/adboard/internal/model"
	"github.com/pkg/errors"
)

const advertisementColumns = `id, title, description, created_at, owner_id`

// ColumnCreatedAt is set by the repository on insert and never updated.
const ColumnCreatedAt = "created_at"

// AdvertisementRepo is the AdvertisementRepository backed by either supported driver.
type AdvertisementRepo struct {
	db      database.Querier
	dialect database.Dialect
	now     func() time.Time
}

func NewAdvertisementRepository(db *database.Database) *AdvertisementRepo {
	return &AdvertisementRepo{db: db.Querier(), dialect: db.Dialect, now: time.Now}
}

func scanAdvertisement(row database.Row, withOwner bool) (*model.Advertisement, error) {
	var (
		adv       model.Advertisement
		createdAt database.Timestamp
	)

	dest := []any{&adv.ID, &adv.Title, &adv.Description, &createdAt, &adv.OwnerID}
	if withOwner {
		dest = append(dest, &adv.OwnerName)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	adv.CreatedAt = createdAt.Time.UTC()
	return &adv, nil
}

// Create inserts an advertisement stamped with the current time.
//
// A missing owner yields ErrOwnerNotFound and inserts nothing.
func (r *AdvertisementRepo) Create(ctx context.Context, fields model.Fields) (*model.Advertisement, error) {
	row := make(model.Fields, len(fields)+1)
	for k, v := range fields {
		row[k] = v
	}
	// Microsecond precision is what PostgreSQL keeps.
	row[ColumnCreatedAt] = r.now().UTC().Truncate(time.Microsecond)

	stmt, err := newBuilder(r.dialect, "advertisements",
		model.ColumnTitle, model.ColumnDescription, model.ColumnOwnerID, ColumnCreatedAt,
	).insert(row, advertisementColumns)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	adv, err := scanAdvertisement(r.db.QueryRow(ctx, stmt.query, stmt.args...), false)
	if err != nil {
		return nil, translate(err, "insert advertisement", ErrAdvertisementNotFound, nil, ErrOwnerNotFound)
	}
	return adv, nil
}

// GetByID returns the advertisement with its owner's name.
func (r *AdvertisementRepo) GetByID(ctx context.Context, id int64) (*model.Advertisement, error) {
	query := `SELECT a.id, a.title, a.description, a.created_at, a.owner_id, u.name
		FROM advertisements a
		JOIN users u ON u.id = a.owner_id
		WHERE a.id = ` + r.dialect.Placeholder(1)

	adv, err := scanAdvertisement(r.db.QueryRow(ctx, query, id), true)
	if err != nil {
		return nil, translate(err, "get advertisement", ErrAdvertisementNotFound, nil, nil)
	}
	return adv, nil
}

// Update changes title and/or description. Owner and creation time are immutable.
func (r *AdvertisementRepo) Update(ctx context.Context, id int64, fields model.Fields) (*model.Advertisement, error) {
	if len(fields) == 0 {
		return r.GetByID(ctx, id)
	}

	stmt, err := newBuilder(r.dialect, "advertisements",
		model.ColumnTitle, model.ColumnDescription,
	).update(id, fields, advertisementColumns)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	adv, err := scanAdvertisement(r.db.QueryRow(ctx, stmt.query, stmt.args...), false)
	if err != nil {
		return nil, translate(err, "update advertisement", ErrAdvertisementNotFound, nil, nil)
	}
	return adv, nil
}

func (r *AdvertisementRepo) Delete(ctx context.Context, id int64) (*model.Advertisement, error) {
	query := `DELETE FROM advertisements WHERE id = ` + r.dialect.Placeholder(1) + ` RETURNING ` + advertisementColumns

	adv, err := scanAdvertisement(r.db.QueryRow(ctx, query, id), false)
	if err != nil {
		return nil, translate(err, "delete advertisement", ErrAdvertisementNotFound, nil, nil)
	}
	return adv, nil
}
