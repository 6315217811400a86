package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/mufant-museum/internal/database"
	"github.com/iliyamo/mufant-museum/internal/model"
)

// ActivityRepo reads and writes the museum_activities table.
type ActivityRepo struct {
	db *sql.DB
}

// NewActivityRepo constructs an ActivityRepo with the provided DB handle.
func NewActivityRepo(db *sql.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

const activityColumns = `id, name, type, description, start_date, end_date, location, notes, price, image_path, created_at, updated_at`

// Create inserts a new activity. On success the activity's ID and
// timestamps are populated from the stored row.
func (r *ActivityRepo) Create(ctx context.Context, a *model.Activity) error {
	return r.CreateTx(ctx, r.db, a)
}

// CreateTx inserts an activity using q, normally the caller's transaction.
// The type is lowercased and an empty location becomes the default venue
// before validation.
func (r *ActivityRepo) CreateTx(ctx context.Context, q database.Querier, a *model.Activity) error {
	a.Normalize()
	if err := model.Validate(a); err != nil {
		return database.Invalid("activity", err)
	}
	const qInsert = `INSERT INTO museum_activities
	    (name, type, description, start_date, end_date, location, notes, price, image_path)
	    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := q.ExecContext(ctx, qInsert,
		a.Name, a.Type, nullString(a.Description),
		database.TimeArg(a.StartDate), database.TimeArg(a.EndDate),
		a.Location, nullString(a.Notes), a.Price, nullString(a.ImagePath))
	if err != nil {
		return fmt.Errorf("insert activity: %w", database.Classify(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	// Read back to populate the generated timestamps.
	stored, err := getActivity(ctx, q, uint64(id))
	if err != nil {
		return err
	}
	*a = *stored
	return nil
}

// GetByID fetches an activity by its ID.
func (r *ActivityRepo) GetByID(ctx context.Context, id uint64) (*model.Activity, error) {
	return getActivity(ctx, r.db, id)
}

func getActivity(ctx context.Context, q database.Querier, id uint64) (*model.Activity, error) {
	row := q.QueryRowContext(ctx, "SELECT "+activityColumns+" FROM museum_activities WHERE id = ?", id)
	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("activity", id)
	}
	return a, err
}

// UpdatePrice changes the list price. Tickets already in carts keep the
// rate they captured.
func (r *ActivityRepo) UpdatePrice(ctx context.Context, id uint64, price float64) error {
	if price < 0 {
		return database.Invalid("activity", errors.New("Price must satisfy gte=0"))
	}
	const q = `UPDATE museum_activities SET price = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, price, id)
	if err != nil {
		return fmt.Errorf("update activity price: %w", database.Classify(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("activity", id)
	}
	return nil
}

// ListByType returns the activities of one type ordered by id. An empty
// type lists everything.
func (r *ActivityRepo) ListByType(ctx context.Context, typ string) ([]*model.Activity, error) {
	q := "SELECT " + activityColumns + " FROM museum_activities"
	var args []any
	if t := model.NormalizeActivityType(typ); t != "" {
		q += " WHERE type = ?"
		args = append(args, t)
	}
	q += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", database.Classify(err))
	}
	defer rows.Close()

	var out []*model.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Classify(err)
	}
	return out, nil
}

func scanActivity(s rowScanner) (*model.Activity, error) {
	var (
		a                         model.Activity
		description, notes, image sql.NullString
		location                  sql.NullString
		price                     sql.NullFloat64
		start, end                database.NullTime
		createdAt, updatedAt      database.NullTime
	)
	err := s.Scan(&a.ID, &a.Name, &a.Type, &description, &start, &end,
		&location, &notes, &price, &image, &createdAt, &updatedAt)
	if err != nil {
		return nil, database.Classify(err)
	}
	a.Description = description.String
	a.StartDate, a.EndDate = start.Ptr(), end.Ptr()
	a.Location = location.String
	a.Notes = notes.String
	a.Price = price.Float64
	a.ImagePath = image.String
	a.CreatedAt, a.UpdatedAt = createdAt.Time, updatedAt.Time
	return &a, nil
}
