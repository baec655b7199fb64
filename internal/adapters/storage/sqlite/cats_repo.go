package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"cat-shelter-api/internal/domain/cats"
)

const (
	dateLayout = "2006-01-02"
)

// CatsRepo implementa cats.Repository sobre SQLite. Misma semántica que el
// adapter de Postgres: agregados en SQL, transiciones de adopción como
// UPDATEs condicionales de una sola sentencia.
type CatsRepo struct {
	db *sql.DB
}

func NewCatsRepo(db *sql.DB) *CatsRepo {
	return &CatsRepo{db: db}
}

const catColumns = `
	id, name, breed, age, color, weight,
	is_neutered, owner_name, adoption_date, description, created_at`

func (r *CatsRepo) Create(ctx context.Context, c cats.Cat) (cats.Cat, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO cats (
			name, breed, age, color, weight,
			is_neutered, owner_name, adoption_date, description, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?)
	`,
		c.Name,
		nullStr(c.Breed),
		nullInt(c.Age),
		nullStr(c.Color),
		nullFloat(c.Weight),
		boolInt(c.IsNeutered),
		nullStr(c.OwnerName),
		nullDate(c.AdoptionDate),
		nullStr(c.Description),
		c.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return cats.Cat{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return cats.Cat{}, err
	}
	c.ID = id
	return c, nil
}

func (r *CatsRepo) GetByID(ctx context.Context, id int64) (cats.Cat, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+catColumns+`
		FROM cats
		WHERE id = ?
	`, id)

	c, err := scanCat(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return cats.Cat{}, cats.ErrNotFound
		}
		return cats.Cat{}, err
	}
	return c, nil
}

func (r *CatsRepo) Update(ctx context.Context, c cats.Cat) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cats
		SET
			name = ?,
			breed = ?,
			age = ?,
			color = ?,
			weight = ?,
			is_neutered = ?,
			owner_name = ?,
			adoption_date = ?,
			description = ?
		WHERE id = ?
	`,
		c.Name,
		nullStr(c.Breed),
		nullInt(c.Age),
		nullStr(c.Color),
		nullFloat(c.Weight),
		boolInt(c.IsNeutered),
		nullStr(c.OwnerName),
		nullDate(c.AdoptionDate),
		nullStr(c.Description),
		c.ID,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return cats.ErrNotFound
	}
	return nil
}

func (r *CatsRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cats WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return cats.ErrNotFound
	}
	return nil
}

func (r *CatsRepo) List(ctx context.Context, f cats.Filter) ([]cats.Cat, error) {
	var (
		where []string
		args  []any
	)
	like := func(col, needle string) string {
		args = append(args, "%"+strings.ToLower(needle)+"%")
		return "LOWER(" + col + ") LIKE ?"
	}

	switch f.Status {
	case cats.StatusAvailable:
		where = append(where, "adoption_date IS NULL")
	case cats.StatusAdopted:
		where = append(where, "adoption_date IS NOT NULL")
	}
	if f.Breed != "" {
		where = append(where, like("breed", f.Breed))
	}
	if f.Neutered != nil {
		where = append(where, "is_neutered = ?")
		args = append(args, boolInt(*f.Neutered))
	}
	if f.MinAge != nil {
		where = append(where, "age >= ?")
		args = append(args, *f.MinAge)
	}
	if f.MaxAge != nil {
		where = append(where, "age <= ?")
		args = append(args, *f.MaxAge)
	}
	if f.Search != "" {
		where = append(where, "("+strings.Join([]string{
			like("name", f.Search),
			like("breed", f.Search),
			like("color", f.Search),
			like("description", f.Search),
		}, " OR ")+")")
	}
	if f.Name != "" {
		where = append(where, like("name", f.Name))
	}
	if f.Color != "" {
		where = append(where, like("color", f.Color))
	}
	if f.Available != nil {
		if *f.Available {
			where = append(where, "adoption_date IS NULL")
		} else {
			where = append(where, "adoption_date IS NOT NULL")
		}
	}

	query := `SELECT ` + catColumns + ` FROM cats`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + orderClause(f)

	if f.PageSize > 0 {
		page := f.Page
		if page <= 0 {
			page = 1
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.PageSize, (page-1)*f.PageSize)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]cats.Cat, 0)
	for rows.Next() {
		c, err := scanCat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// orderClause replica el orden de Postgres: NULLs al final en ascendente,
// al principio en descendente (SQLite por default los pone primero).
func orderClause(f cats.Filter) string {
	key, desc := f.OrderKey()
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	if key == "id" {
		return "id " + dir
	}
	return fmt.Sprintf("(%s IS NULL) %s, %s %s, id ASC", key, dir, key, dir)
}

func (r *CatsRepo) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM cats
			WHERE LOWER(name) = LOWER(?) AND id <> ?
		)
	`, name, excludeID).Scan(&exists)
	return exists, err
}

func (r *CatsRepo) Adopt(ctx context.Context, id int64, ownerName string, date time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cats
		SET owner_name = ?, adoption_date = ?
		WHERE id = ? AND adoption_date IS NULL
	`, ownerName, date.UTC().Format(dateLayout), id)
	if err != nil {
		return err
	}
	return r.pairWriteOutcome(ctx, res, id)
}

func (r *CatsRepo) ReturnToShelter(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cats
		SET owner_name = NULL, adoption_date = NULL
		WHERE id = ? AND adoption_date IS NOT NULL
	`, id)
	if err != nil {
		return err
	}
	return r.pairWriteOutcome(ctx, res, id)
}

func (r *CatsRepo) pairWriteOutcome(ctx context.Context, res sql.Result, id int64) error {
	n, _ := res.RowsAffected()
	if n > 0 {
		return nil
	}
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM cats WHERE id = ?)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return cats.ErrNotFound
	}
	return cats.ErrConflict
}

func (r *CatsRepo) Stats(ctx context.Context, now time.Time) (cats.StatsAggregate, error) {
	// Las fechas son TEXT YYYY-MM-DD: la comparación lexicográfica equivale
	// a la cronológica.
	cutoff := now.UTC().AddDate(0, 0, -30).Format(dateLayout)

	var (
		agg    cats.StatsAggregate
		avgAge sql.NullFloat64
		minAge sql.NullInt64
		maxAge sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(adoption_date),
			COUNT(*) FILTER (WHERE is_neutered = 1),
			COUNT(*) FILTER (WHERE adoption_date >= ?),
			AVG(age),
			MIN(age),
			MAX(age),
			(SELECT COUNT(*) FROM (SELECT DISTINCT breed FROM cats) b)
		FROM cats
	`, cutoff).Scan(
		&agg.TotalCats,
		&agg.AdoptedCats,
		&agg.NeuteredCats,
		&agg.RecentAdoptions,
		&avgAge,
		&minAge,
		&maxAge,
		&agg.BreedsCount,
	)
	if err != nil {
		return cats.StatsAggregate{}, err
	}

	if avgAge.Valid {
		agg.AverageAge = &avgAge.Float64
	}
	if minAge.Valid {
		v := int(minAge.Int64)
		agg.YoungestAge = &v
	}
	if maxAge.Valid {
		v := int(maxAge.Int64)
		agg.OldestAge = &v
	}
	return agg, nil
}

func (r *CatsRepo) BreedStats(ctx context.Context) ([]cats.BreedAggregate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			breed,
			COUNT(*) AS total,
			COUNT(adoption_date),
			AVG(age),
			AVG(weight)
		FROM cats
		WHERE breed IS NOT NULL
		GROUP BY breed
		ORDER BY total DESC, breed ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]cats.BreedAggregate, 0)
	for rows.Next() {
		var (
			a         cats.BreedAggregate
			avgAge    sql.NullFloat64
			avgWeight sql.NullFloat64
		)
		if err := rows.Scan(&a.Breed, &a.Count, &a.AdoptedCount, &avgAge, &avgWeight); err != nil {
			return nil, err
		}
		if avgAge.Valid {
			a.AverageAge = &avgAge.Float64
		}
		if avgWeight.Valid {
			a.AverageWeight = &avgWeight.Float64
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCat(row rowScanner) (cats.Cat, error) {
	var (
		c        cats.Cat
		breed    sql.NullString
		age      sql.NullInt64
		color    sql.NullString
		weight   sql.NullFloat64
		neutered int64
		owner    sql.NullString
		adopted  sql.NullString
		desc     sql.NullString
		created  string
	)
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&breed,
		&age,
		&color,
		&weight,
		&neutered,
		&owner,
		&adopted,
		&desc,
		&created,
	); err != nil {
		return cats.Cat{}, err
	}

	c.IsNeutered = neutered != 0
	c.Breed = fromNullStr(breed)
	c.Color = fromNullStr(color)
	c.OwnerName = fromNullStr(owner)
	c.Description = fromNullStr(desc)
	if age.Valid {
		v := int(age.Int64)
		c.Age = &v
	}
	if weight.Valid {
		c.Weight = &weight.Float64
	}
	if adopted.Valid {
		t, err := time.Parse(dateLayout, adopted.String)
		if err != nil {
			return cats.Cat{}, fmt.Errorf("malformed adoption_date %q: %w", adopted.String, err)
		}
		c.AdoptionDate = &t
	}

	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return cats.Cat{}, fmt.Errorf("malformed created_at %q: %w", created, err)
	}
	c.CreatedAt = t

	return c, nil
}

func nullStr(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func fromNullStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(dateLayout), Valid: true}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
