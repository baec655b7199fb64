package cats

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID   map[int64]Cat
	nextID int64

	// Agregados enlatados para los tests de estadísticas.
	statsAgg  StatsAggregate
	breedAggs []BreedAggregate
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[int64]Cat{}, nextID: 1}
}

func (r *testRepo) Create(ctx context.Context, c Cat) (Cat, error) {
	c.ID = r.nextID
	r.nextID++
	r.byID[c.ID] = c
	return c, nil
}

func (r *testRepo) GetByID(ctx context.Context, id int64) (Cat, error) {
	c, ok := r.byID[id]
	if !ok {
		return Cat{}, ErrNotFound
	}
	return c, nil
}

func (r *testRepo) Update(ctx context.Context, c Cat) error {
	if _, ok := r.byID[c.ID]; !ok {
		return ErrNotFound
	}
	r.byID[c.ID] = c
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) List(ctx context.Context, f Filter) ([]Cat, error) {
	out := make([]Cat, 0)
	for _, c := range r.byID {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	f.Sort(out)
	return f.Paginate(out), nil
}

func (r *testRepo) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	for _, c := range r.byID {
		if c.ID != excludeID && strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r *testRepo) Adopt(ctx context.Context, id int64, ownerName string, date time.Time) error {
	c, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if c.AdoptionDate != nil {
		return ErrConflict
	}
	c.OwnerName = &ownerName
	c.AdoptionDate = &date
	r.byID[id] = c
	return nil
}

func (r *testRepo) ReturnToShelter(ctx context.Context, id int64) error {
	c, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if c.AdoptionDate == nil {
		return ErrConflict
	}
	c.OwnerName = nil
	c.AdoptionDate = nil
	r.byID[id] = c
	return nil
}

func (r *testRepo) Stats(ctx context.Context, now time.Time) (StatsAggregate, error) {
	return r.statsAgg, nil
}

func (r *testRepo) BreedStats(ctx context.Context) ([]BreedAggregate, error) {
	return r.breedAggs, nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_NormalizesAndStampsCreatedAt(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	c, err := svc.Create(context.Background(), Input{
		Name:   "  whiskers  ",
		Breed:  strp("persian"),
		Age:    intp(3),
		Weight: floatp(4.567),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if c.ID != 1 {
		t.Fatalf("expected id 1, got %d", c.ID)
	}
	if c.Name != "Whiskers" || *c.Breed != "Persian" {
		t.Fatalf("expected normalized name/breed, got %q / %v", c.Name, c.Breed)
	}
	if *c.Weight != 4.57 {
		t.Fatalf("expected weight rounded to 4.57, got %v", *c.Weight)
	}
	if c.CreatedAt != now {
		t.Fatalf("expected CreatedAt to be now")
	}
	if c.IsAdopted() {
		t.Fatal("new cat should be available")
	}
}

func TestService_Create_DuplicateName_CaseInsensitive(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	if _, err := svc.Create(context.Background(), Input{Name: "Whiskers"}); err != nil {
		t.Fatalf("first Create error: %v", err)
	}

	_, err := svc.Create(context.Background(), Input{Name: "wHISKERS"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := "A cat with the name 'Whiskers' already exists. Please choose a different name."
	if msgs := verr.Fields["name"]; len(msgs) != 1 || msgs[0] != want {
		t.Fatalf("expected duplicate message, got %v", verr.Fields)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("duplicate create must not persist, got %d rows", len(repo.byID))
	}
}

func TestService_Create_SkipsDuplicateCheckWhenNameInvalid(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), Input{Name: " "})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if msgs := verr.Fields["name"]; len(msgs) != 1 || msgs[0] != "Cat name cannot be empty" {
		t.Fatalf("expected only the field error, got %v", verr.Fields)
	}
}

func TestService_Create_CrossFieldRunsAfterFieldRules(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	// campos sucios: la regla cruzada no debe aparecer todavía
	_, err := svc.Create(context.Background(), Input{
		Name:      "x",
		OwnerName: strp("John Doe"),
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.has("non_field_errors") {
		t.Fatalf("cross-field error should wait for clean fields, got %v", verr.Fields)
	}

	// campos limpios: ahora sí
	_, err = svc.Create(context.Background(), Input{
		Name:      "Whiskers",
		OwnerName: strp("John Doe"),
	})
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if msgs := verr.Fields["non_field_errors"]; len(msgs) != 1 ||
		msgs[0] != "Cats with owners must have an adoption date" {
		t.Fatalf("expected cross-field error, got %v", verr.Fields)
	}
}

func TestService_Update_FullReplace_KeepsIDAndCreatedAt(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return created }

	c, err := svc.Create(context.Background(), Input{
		Name:        "Whiskers",
		Breed:       strp("Persian"),
		Description: strp("A very friendly cat"),
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	updated, err := svc.Update(context.Background(), c.ID, Input{Name: "Mittens"})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.ID != c.ID || updated.CreatedAt != created {
		t.Fatal("expected ID and CreatedAt preserved")
	}
	if updated.Name != "Mittens" {
		t.Fatalf("expected renamed cat, got %q", updated.Name)
	}
	// PUT completo: los campos omitidos quedan en nil
	if updated.Breed != nil || updated.Description != nil {
		t.Fatalf("expected omitted fields cleared, got %+v", updated)
	}
}

func TestService_Update_NotFoundBeforeValidation(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	// input inválido contra un id inexistente: manda el 404
	_, err := svc.Update(context.Background(), 99, Input{Name: ""})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_Adopt_DefaultsDateToToday(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2026, 3, 15, 13, 45, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	c, err := svc.Create(context.Background(), Input{Name: "Whiskers"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	adopted, err := svc.Adopt(context.Background(), c.ID, "john doe", nil)
	if err != nil {
		t.Fatalf("Adopt error: %v", err)
	}
	if *adopted.OwnerName != "John Doe" {
		t.Fatalf("expected normalized owner, got %q", *adopted.OwnerName)
	}
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if !adopted.AdoptionDate.Equal(want) {
		t.Fatalf("expected adoption date %v, got %v", want, *adopted.AdoptionDate)
	}
	if !adopted.IsAdopted() {
		t.Fatal("expected adopted state")
	}
}

func TestService_Adopt_AlreadyAdopted_DoesNotOverwrite(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	c, err := svc.Create(context.Background(), Input{Name: "Whiskers"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := svc.Adopt(context.Background(), c.ID, "John Doe", nil); err != nil {
		t.Fatalf("first Adopt error: %v", err)
	}

	_, err = svc.Adopt(context.Background(), c.ID, "Jane Roe", nil)
	var serr *StateConflictError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StateConflictError, got %v", err)
	}
	if serr.Message != "Whiskers has already been adopted by John Doe" {
		t.Fatalf("unexpected message %q", serr.Message)
	}
	if *repo.byID[c.ID].OwnerName != "John Doe" {
		t.Fatal("losing adopt must not mutate the record")
	}
}

func TestService_Adopt_InvalidOwnerName(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	c, err := svc.Create(context.Background(), Input{Name: "Whiskers"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	_, err = svc.Adopt(context.Background(), c.ID, "  ", nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if msgs := verr.Fields["owner_name"]; len(msgs) != 1 || msgs[0] != "Owner name cannot be empty" {
		t.Fatalf("unexpected errors %v", verr.Fields)
	}
	if repo.byID[c.ID].IsAdopted() {
		t.Fatal("invalid adopt must not mutate the record")
	}
}

func TestService_ReturnToShelter_RoundTrip(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	c, err := svc.Create(context.Background(), Input{Name: "Whiskers"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := svc.Adopt(context.Background(), c.ID, "John Doe", nil); err != nil {
		t.Fatalf("Adopt error: %v", err)
	}

	back, former, err := svc.ReturnToShelter(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("ReturnToShelter error: %v", err)
	}
	if former != "John Doe" {
		t.Fatalf("expected former owner John Doe, got %q", former)
	}
	if back.IsAdopted() || back.OwnerName != nil || back.AdoptionDate != nil {
		t.Fatalf("expected cat indistinguishable from never adopted, got %+v", back)
	}

	// devolver un gato disponible es conflicto de estado
	_, _, err = svc.ReturnToShelter(context.Background(), c.ID)
	var serr *StateConflictError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StateConflictError, got %v", err)
	}
	if serr.Message != "Whiskers is not currently adopted" {
		t.Fatalf("unexpected message %q", serr.Message)
	}
}

func TestService_Statistics_DerivedFieldsAndRounding(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	avg := 11.0 / 3.0
	repo.statsAgg = StatsAggregate{
		TotalCats:       3,
		AdoptedCats:     1,
		NeuteredCats:    2,
		BreedsCount:     2,
		RecentAdoptions: 1,
		AverageAge:      &avg,
		YoungestAge:     intp(2),
		OldestAge:       intp(6),
	}

	st, err := svc.Statistics(context.Background())
	if err != nil {
		t.Fatalf("Statistics error: %v", err)
	}
	if st.AvailableCats != 2 {
		t.Fatalf("expected 2 available, got %d", st.AvailableCats)
	}
	if st.AdoptionRate != 33.33 {
		t.Fatalf("expected adoption rate 33.33, got %v", st.AdoptionRate)
	}
	if st.AverageAge == nil || *st.AverageAge != 3.7 {
		t.Fatalf("expected average age 3.7, got %v", st.AverageAge)
	}
}

func TestService_Statistics_EmptyShelter(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	st, err := svc.Statistics(context.Background())
	if err != nil {
		t.Fatalf("Statistics error: %v", err)
	}
	if st.TotalCats != 0 || st.AdoptionRate != 0 {
		t.Fatalf("expected zeroed stats, got %+v", st)
	}
	if st.AverageAge != nil || st.YoungestAge != nil || st.OldestAge != nil {
		t.Fatalf("expected nil age aggregates, got %+v", st)
	}
}

func TestService_BreedStatistics_Rounding(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	avgAge := 2.5
	avgWeight := 4.1666666
	repo.breedAggs = []BreedAggregate{
		{Breed: "Persian", Count: 2, AdoptedCount: 1, AverageAge: &avgAge, AverageWeight: &avgWeight},
		{Breed: "Siamese", Count: 1, AdoptedCount: 0},
	}

	out, err := svc.BreedStatistics(context.Background())
	if err != nil {
		t.Fatalf("BreedStatistics error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 breeds, got %d", len(out))
	}
	if out[0].AdoptionRate != 50.0 {
		t.Fatalf("expected Persian rate 50.0, got %v", out[0].AdoptionRate)
	}
	if *out[0].AverageWeight != 4.17 {
		t.Fatalf("expected average weight 4.17, got %v", *out[0].AverageWeight)
	}
	if out[1].AdoptionRate != 0 || out[1].AverageAge != nil {
		t.Fatalf("unexpected Siamese stats %+v", out[1])
	}
}
