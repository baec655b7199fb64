package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cat-shelter-api/internal/domain/cats"
)

func strp(s string) *string     { return &s }
func intp(n int) *int           { return &n }
func floatp(f float64) *float64 { return &f }

func openRepo(t *testing.T) *CatsRepo {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "cats.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewCatsRepo(db)
}

func TestCatsRepo_CreateAndGet_RoundTrip(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	created := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	adopted := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	c, err := repo.Create(ctx, cats.Cat{
		Name:         "Whiskers",
		Breed:        strp("Persian"),
		Age:          intp(3),
		Color:        strp("Snow White"),
		Weight:       floatp(4.5),
		IsNeutered:   true,
		OwnerName:    strp("John Doe"),
		AdoptionDate: &adopted,
		Description:  strp("A very friendly cat"),
		CreatedAt:    created,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Whiskers", got.Name)
	assert.Equal(t, "Persian", *got.Breed)
	assert.Equal(t, 3, *got.Age)
	assert.Equal(t, 4.5, *got.Weight)
	assert.True(t, got.IsNeutered)
	assert.Equal(t, "John Doe", *got.OwnerName)
	assert.True(t, got.AdoptionDate.Equal(adopted))
	assert.True(t, got.CreatedAt.Equal(created))
}

func TestCatsRepo_CreateAndGet_NullOptionals(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	c, err := repo.Create(ctx, cats.Cat{Name: "Shadow", CreatedAt: time.Now().UTC()})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Breed)
	assert.Nil(t, got.Age)
	assert.Nil(t, got.Weight)
	assert.Nil(t, got.OwnerName)
	assert.Nil(t, got.AdoptionDate)
	assert.False(t, got.IsNeutered)
}

func TestCatsRepo_UpdateAndDelete(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	c, err := repo.Create(ctx, cats.Cat{Name: "Whiskers", CreatedAt: time.Now().UTC()})
	require.NoError(t, err)

	c.Name = "Mittens"
	c.Breed = strp("Siamese")
	require.NoError(t, repo.Update(ctx, c))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mittens", got.Name)
	assert.Equal(t, "Siamese", *got.Breed)

	require.NoError(t, repo.Delete(ctx, c.ID))
	_, err = repo.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, cats.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, c.ID), cats.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, c), cats.ErrNotFound)
}

func TestCatsRepo_NameExists(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	c, err := repo.Create(ctx, cats.Cat{Name: "Whiskers", CreatedAt: time.Now().UTC()})
	require.NoError(t, err)

	exists, err := repo.NameExists(ctx, "wHISKERS", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.NameExists(ctx, "Whiskers", c.ID)
	require.NoError(t, err)
	assert.False(t, exists, "excluded id must not match")

	exists, err = repo.NameExists(ctx, "Shadow", 0)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCatsRepo_List_FiltersAndNullOrdering(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	adopted := now.AddDate(0, 0, -10)

	for _, c := range []cats.Cat{
		{Name: "Whiskers", Breed: strp("Persian"), Age: intp(3),
			OwnerName: strp("John Doe"), AdoptionDate: &adopted, CreatedAt: now},
		{Name: "Mittens", Breed: strp("Persian"), Age: intp(2), CreatedAt: now},
		{Name: "Shadow", CreatedAt: now},
	} {
		_, err := repo.Create(ctx, c)
		require.NoError(t, err)
	}

	got, err := repo.List(ctx, cats.Filter{Status: cats.StatusAvailable})
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = repo.List(ctx, cats.Filter{Breed: "PERS"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = repo.List(ctx, cats.Filter{MinAge: intp(2), MaxAge: intp(3)})
	require.NoError(t, err)
	require.Len(t, got, 2, "nil age never matches an age range")

	// nulos al final en ascendente, primero en descendente
	got, err = repo.List(ctx, cats.Filter{Ordering: "age"})
	require.NoError(t, err)
	assert.Equal(t, "Shadow", got[2].Name)

	got, err = repo.List(ctx, cats.Filter{Ordering: "-age"})
	require.NoError(t, err)
	assert.Equal(t, "Shadow", got[0].Name)

	// paginación sobre el orden por id
	got, err = repo.List(ctx, cats.Filter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Shadow", got[0].Name)
}

func TestCatsRepo_AdoptionTransitions(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	c, err := repo.Create(ctx, cats.Cat{Name: "Mittens", CreatedAt: now})
	require.NoError(t, err)

	require.NoError(t, repo.Adopt(ctx, c.ID, "Jane Roe", now))
	assert.ErrorIs(t, repo.Adopt(ctx, c.ID, "Someone Else", now), cats.ErrConflict)

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", *got.OwnerName)

	require.NoError(t, repo.ReturnToShelter(ctx, c.ID))
	assert.ErrorIs(t, repo.ReturnToShelter(ctx, c.ID), cats.ErrConflict)

	got, err = repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got.OwnerName)
	assert.Nil(t, got.AdoptionDate)

	assert.ErrorIs(t, repo.Adopt(ctx, 999, "Jane Roe", now), cats.ErrNotFound)
	assert.ErrorIs(t, repo.ReturnToShelter(ctx, 999), cats.ErrNotFound)
}

func TestCatsRepo_Stats(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	recent := now.AddDate(0, 0, -10)
	old := now.AddDate(0, 0, -40)

	for _, c := range []cats.Cat{
		{Name: "Whiskers", Breed: strp("Persian"), Age: intp(3), IsNeutered: true,
			OwnerName: strp("John Doe"), AdoptionDate: &recent, CreatedAt: now},
		{Name: "Mittens", Breed: strp("Persian"), Age: intp(2), CreatedAt: now},
		{Name: "Shadow", Age: intp(5), IsNeutered: true,
			OwnerName: strp("Jane Roe"), AdoptionDate: &old, CreatedAt: now},
		{Name: "Luna", CreatedAt: now},
	} {
		_, err := repo.Create(ctx, c)
		require.NoError(t, err)
	}

	agg, err := repo.Stats(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 4, agg.TotalCats)
	assert.Equal(t, 2, agg.AdoptedCats)
	assert.Equal(t, 2, agg.NeuteredCats)
	// Persian + raza nula = 2 grupos distintos
	assert.Equal(t, 2, agg.BreedsCount)
	assert.Equal(t, 1, agg.RecentAdoptions)
	require.NotNil(t, agg.AverageAge)
	assert.InDelta(t, 10.0/3.0, *agg.AverageAge, 1e-9)
	assert.Equal(t, 2, *agg.YoungestAge)
	assert.Equal(t, 5, *agg.OldestAge)
}

func TestCatsRepo_Stats_RecentAdoptionCutoffInclusive(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	// reloj fuera de medianoche: el corte sigue siendo por fecha
	now := time.Date(2026, 3, 15, 14, 23, 0, 0, time.UTC)

	exactly := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -30)
	older := exactly.AddDate(0, 0, -1)

	for i, d := range []time.Time{exactly, older} {
		date := d
		name := []string{"Whiskers", "Mittens"}[i]
		_, err := repo.Create(ctx, cats.Cat{
			Name: name, OwnerName: strp("John Doe"), AdoptionDate: &date, CreatedAt: now,
		})
		require.NoError(t, err)
	}

	agg, err := repo.Stats(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, agg.RecentAdoptions, "the 30-day boundary counts, the day before does not")
}

func TestCatsRepo_Stats_EmptyTable(t *testing.T) {
	repo := openRepo(t)

	agg, err := repo.Stats(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 0, agg.TotalCats)
	assert.Nil(t, agg.AverageAge)
	assert.Nil(t, agg.YoungestAge)
	assert.Nil(t, agg.OldestAge)
	assert.Equal(t, 0, agg.BreedsCount)
}

func TestCatsRepo_BreedStats(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	adopted := now.AddDate(0, 0, -5)

	for _, c := range []cats.Cat{
		{Name: "Whiskers", Breed: strp("Persian"), Age: intp(3), Weight: floatp(4.5),
			OwnerName: strp("John Doe"), AdoptionDate: &adopted, CreatedAt: now},
		{Name: "Mittens", Breed: strp("Persian"), Age: intp(2), Weight: floatp(3.5), CreatedAt: now},
		{Name: "Shadow", Breed: strp("Siamese"), CreatedAt: now},
		{Name: "Luna", CreatedAt: now}, // sin raza: fuera del reporte
	} {
		_, err := repo.Create(ctx, c)
		require.NoError(t, err)
	}

	aggs, err := repo.BreedStats(ctx)
	require.NoError(t, err)
	require.Len(t, aggs, 2)

	assert.Equal(t, "Persian", aggs[0].Breed)
	assert.Equal(t, 2, aggs[0].Count)
	assert.Equal(t, 1, aggs[0].AdoptedCount)
	require.NotNil(t, aggs[0].AverageAge)
	assert.InDelta(t, 2.5, *aggs[0].AverageAge, 1e-9)
	require.NotNil(t, aggs[0].AverageWeight)
	assert.InDelta(t, 4.0, *aggs[0].AverageWeight, 1e-9)

	assert.Equal(t, "Siamese", aggs[1].Breed)
	assert.Equal(t, 1, aggs[1].Count)
	assert.Equal(t, 0, aggs[1].AdoptedCount)
	assert.Nil(t, aggs[1].AverageAge)
	assert.Nil(t, aggs[1].AverageWeight)
}
