package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"cat-shelter-api/internal/domain/cats"
)

// CatsRepo implementa cats.Repository contra Postgres.
//
// Los agregados (stats, breeds) corren en SQL; las transiciones de adopción
// son UPDATEs condicionales de una sola sentencia, así el par
// owner_name/adoption_date cambia atómicamente o no cambia.
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
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO cats (
			name, breed, age, color, weight,
			is_neutered, owner_name, adoption_date, description, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id
	`,
		c.Name,
		toNullString(c.Breed),
		toNullInt(c.Age),
		toNullString(c.Color),
		toNullFloat(c.Weight),
		c.IsNeutered,
		toNullString(c.OwnerName),
		toNullDate(c.AdoptionDate),
		toNullString(c.Description),
		c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return cats.Cat{}, err
	}
	return c, nil
}

func (r *CatsRepo) GetByID(ctx context.Context, id int64) (cats.Cat, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+catColumns+`
		FROM cats
		WHERE id = $1
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
			name = $2,
			breed = $3,
			age = $4,
			color = $5,
			weight = $6,
			is_neutered = $7,
			owner_name = $8,
			adoption_date = $9,
			description = $10
		WHERE id = $1
	`,
		c.ID,
		c.Name,
		toNullString(c.Breed),
		toNullInt(c.Age),
		toNullString(c.Color),
		toNullFloat(c.Weight),
		c.IsNeutered,
		toNullString(c.OwnerName),
		toNullDate(c.AdoptionDate),
		toNullString(c.Description),
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM cats WHERE id = $1`, id)
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
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch f.Status {
	case cats.StatusAvailable:
		where = append(where, "adoption_date IS NULL")
	case cats.StatusAdopted:
		where = append(where, "adoption_date IS NOT NULL")
	}
	if f.Breed != "" {
		where = append(where, "breed ILIKE "+arg("%"+f.Breed+"%"))
	}
	if f.Neutered != nil {
		where = append(where, "is_neutered = "+arg(*f.Neutered))
	}
	if f.MinAge != nil {
		where = append(where, "age >= "+arg(*f.MinAge))
	}
	if f.MaxAge != nil {
		where = append(where, "age <= "+arg(*f.MaxAge))
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where = append(where, fmt.Sprintf(
			"(name ILIKE %[1]s OR breed ILIKE %[1]s OR color ILIKE %[1]s OR description ILIKE %[1]s)", p))
	}
	if f.Name != "" {
		where = append(where, "name ILIKE "+arg("%"+f.Name+"%"))
	}
	if f.Color != "" {
		where = append(where, "color ILIKE "+arg("%"+f.Color+"%"))
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
		query += " LIMIT " + arg(f.PageSize) + " OFFSET " + arg((page-1)*f.PageSize)
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

// orderClause arma el ORDER BY desde la clave ya validada por ParseFilter.
// Desempate por id para salida estable.
func orderClause(f cats.Filter) string {
	key, desc := f.OrderKey()
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	if key == "id" {
		return "id " + dir
	}
	return fmt.Sprintf("%s %s, id ASC", key, dir)
}

func (r *CatsRepo) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM cats
			WHERE LOWER(name) = LOWER($1) AND id <> $2
		)
	`, name, excludeID).Scan(&exists)
	return exists, err
}

func (r *CatsRepo) Adopt(ctx context.Context, id int64, ownerName string, date time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cats
		SET owner_name = $2, adoption_date = $3
		WHERE id = $1 AND adoption_date IS NULL
	`, id, ownerName, date)
	if err != nil {
		return err
	}
	return r.pairWriteOutcome(ctx, res, id)
}

func (r *CatsRepo) ReturnToShelter(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cats
		SET owner_name = NULL, adoption_date = NULL
		WHERE id = $1 AND adoption_date IS NOT NULL
	`, id)
	if err != nil {
		return err
	}
	return r.pairWriteOutcome(ctx, res, id)
}

// pairWriteOutcome distingue "no existe" de "la guarda de estado no aplicó"
// cuando el UPDATE condicional no tocó filas.
func (r *CatsRepo) pairWriteOutcome(ctx context.Context, res sql.Result, id int64) error {
	n, _ := res.RowsAffected()
	if n > 0 {
		return nil
	}
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM cats WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return cats.ErrNotFound
	}
	return cats.ErrConflict
}

func (r *CatsRepo) Stats(ctx context.Context, now time.Time) (cats.StatsAggregate, error) {
	// El corte es una fecha: la hora del reloj no entra en la comparación
	// contra la columna DATE.
	y, m, d := now.UTC().Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -30)

	var (
		agg    cats.StatsAggregate
		avgAge sql.NullFloat64
		minAge sql.NullInt64
		maxAge sql.NullInt64
	)
	// El subselect de razas cuenta NULL como grupo propio: es un
	// COUNT(*) sobre DISTINCT breed, no un COUNT(breed).
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(adoption_date),
			COUNT(*) FILTER (WHERE is_neutered),
			COUNT(*) FILTER (WHERE adoption_date >= $1),
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
		c       cats.Cat
		breed   sql.NullString
		age     sql.NullInt64
		color   sql.NullString
		weight  sql.NullFloat64
		owner   sql.NullString
		adopted sql.NullTime
		desc    sql.NullString
	)
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&breed,
		&age,
		&color,
		&weight,
		&c.IsNeutered,
		&owner,
		&adopted,
		&desc,
		&c.CreatedAt,
	); err != nil {
		return cats.Cat{}, err
	}

	c.Breed = fromNullString(breed)
	c.Color = fromNullString(color)
	c.OwnerName = fromNullString(owner)
	c.Description = fromNullString(desc)
	if age.Valid {
		v := int(age.Int64)
		c.Age = &v
	}
	if weight.Valid {
		c.Weight = &weight.Float64
	}
	if adopted.Valid {
		// adoption_date es DATE, pgx lo mapea a time.Time medianoche UTC
		t := adopted.Time
		c.AdoptionDate = &t
	}
	return c, nil
}

func toNullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func toNullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func toNullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func toNullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
