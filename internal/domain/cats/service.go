package cats

import (
	"context"
	"fmt"
	"time"
)

// Service implementa las reglas de negocio sobre el Repository:
// validación antes de cada escritura, máquina de estados de adopción y
// presentación de estadísticas.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// Input son los campos candidatos de un create o update (PUT completo).
type Input struct {
	Name         string
	Breed        *string
	Age          *int
	Color        *string
	Weight       *float64
	IsNeutered   bool
	OwnerName    *string
	AdoptionDate *time.Time
	Description  *string
}

// Stats es la proyección de estadísticas globales que expone la API.
type Stats struct {
	TotalCats     int     `json:"total_cats"`
	AdoptedCats   int     `json:"adopted_cats"`
	AvailableCats int     `json:"available_cats"`
	AdoptionRate  float64 `json:"adoption_rate"`

	AverageAge  *float64 `json:"average_age"`
	YoungestAge *int     `json:"youngest_age"`
	OldestAge   *int     `json:"oldest_age"`

	NeuteredCats int `json:"neutered_cats"`
	BreedsCount  int `json:"breeds_count"`

	RecentAdoptions int `json:"recent_adoptions"`
}

// BreedStats es la proyección de estadísticas por raza.
type BreedStats struct {
	Breed         string   `json:"breed"`
	Count         int      `json:"count"`
	AdoptionRate  float64  `json:"adoption_rate"`
	AverageAge    *float64 `json:"average_age"`
	AverageWeight *float64 `json:"average_weight"`
}

// Create valida, normaliza y persiste un gato nuevo. El chequeo de nombre
// duplicado (case-insensitive) corre solo en creación y solo si el nombre
// pasó sus reglas de campo; los errores se acumulan con el resto.
func (s *Service) Create(ctx context.Context, in Input) (Cat, error) {
	verr := validateFields(&in)

	if verr == nil || !verr.has("name") {
		exists, err := s.repo.NameExists(ctx, in.Name, 0)
		if err != nil {
			return Cat{}, err
		}
		if exists {
			if verr == nil {
				verr = newValidationError()
			}
			verr.add("name", fmt.Sprintf(
				"A cat with the name '%s' already exists. Please choose a different name.", in.Name))
		}
	}
	if verr != nil {
		return Cat{}, verr
	}

	// Regla cruzada recién cuando los campos individuales están limpios.
	if cerr := validateAdoptionConsistency(&in); cerr != nil {
		return Cat{}, cerr
	}

	c := Cat{
		Name:         in.Name,
		Breed:        in.Breed,
		Age:          in.Age,
		Color:        in.Color,
		Weight:       in.Weight,
		IsNeutered:   in.IsNeutered,
		OwnerName:    in.OwnerName,
		AdoptionDate: in.AdoptionDate,
		Description:  in.Description,
		CreatedAt:    s.now(),
	}

	return s.repo.Create(ctx, c)
}

func (s *Service) GetByID(ctx context.Context, id int64) (Cat, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]Cat, error) {
	return s.repo.List(ctx, f)
}

// Update reemplaza todos los campos mutables (PUT completo). ID y CreatedAt
// no se tocan; el chequeo de nombre duplicado no corre en updates.
func (s *Service) Update(ctx context.Context, id int64, in Input) (Cat, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Cat{}, err
	}

	if verr := validateFields(&in); verr != nil {
		return Cat{}, verr
	}
	if cerr := validateAdoptionConsistency(&in); cerr != nil {
		return Cat{}, cerr
	}

	updated := Cat{
		ID:           current.ID,
		Name:         in.Name,
		Breed:        in.Breed,
		Age:          in.Age,
		Color:        in.Color,
		Weight:       in.Weight,
		IsNeutered:   in.IsNeutered,
		OwnerName:    in.OwnerName,
		AdoptionDate: in.AdoptionDate,
		Description:  in.Description,
		CreatedAt:    current.CreatedAt,
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		return Cat{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Adopt pasa un gato de disponible a adoptado. Solo válido desde el estado
// disponible; la fecha default es hoy. La escritura del par
// owner_name/adoption_date es una sola operación condicional en el store,
// así que dos adopciones concurrentes no pueden ganar las dos.
func (s *Service) Adopt(ctx context.Context, id int64, ownerName string, date *time.Time) (Cat, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Cat{}, err
	}
	if c.IsAdopted() {
		return Cat{}, s.alreadyAdopted(c)
	}

	owner, verr := validateOwnerName(ownerName)
	if verr != nil {
		return Cat{}, verr
	}

	d := dateOnly(s.now())
	if date != nil {
		d = dateOnly(*date)
	}

	if err := s.repo.Adopt(ctx, id, owner, d); err != nil {
		if err == ErrConflict {
			// Perdimos la carrera: releer para armar el mensaje con el
			// dueño actual.
			if fresh, ferr := s.repo.GetByID(ctx, id); ferr == nil && fresh.IsAdopted() {
				return Cat{}, s.alreadyAdopted(fresh)
			}
		}
		return Cat{}, err
	}

	return s.repo.GetByID(ctx, id)
}

// ReturnToShelter pasa un gato de adoptado a disponible y devuelve el
// nombre del dueño anterior. Solo válido desde el estado adoptado.
func (s *Service) ReturnToShelter(ctx context.Context, id int64) (Cat, string, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Cat{}, "", err
	}
	if !c.IsAdopted() {
		return Cat{}, "", &StateConflictError{
			Message: fmt.Sprintf("%s is not currently adopted", c.Name),
		}
	}
	formerOwner := *c.OwnerName

	if err := s.repo.ReturnToShelter(ctx, id); err != nil {
		if err == ErrConflict {
			return Cat{}, "", &StateConflictError{
				Message: fmt.Sprintf("%s is not currently adopted", c.Name),
			}
		}
		return Cat{}, "", err
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Cat{}, "", err
	}
	return updated, formerOwner, nil
}

// Statistics corre los agregados globales y calcula las tasas derivadas.
// total 0 da adoption_rate 0, nunca división por cero.
func (s *Service) Statistics(ctx context.Context) (Stats, error) {
	agg, err := s.repo.Stats(ctx, s.now())
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		TotalCats:       agg.TotalCats,
		AdoptedCats:     agg.AdoptedCats,
		AvailableCats:   agg.TotalCats - agg.AdoptedCats,
		YoungestAge:     agg.YoungestAge,
		OldestAge:       agg.OldestAge,
		NeuteredCats:    agg.NeuteredCats,
		BreedsCount:     agg.BreedsCount,
		RecentAdoptions: agg.RecentAdoptions,
	}
	if agg.TotalCats > 0 {
		st.AdoptionRate = round2(float64(agg.AdoptedCats) / float64(agg.TotalCats) * 100)
	}
	if agg.AverageAge != nil {
		v := round1(*agg.AverageAge)
		st.AverageAge = &v
	}
	return st, nil
}

// BreedStatistics devuelve una entrada por raza no nula, ordenadas por
// count descendente, con tasas y promedios redondeados.
func (s *Service) BreedStatistics(ctx context.Context) ([]BreedStats, error) {
	aggs, err := s.repo.BreedStats(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]BreedStats, 0, len(aggs))
	for _, a := range aggs {
		bs := BreedStats{
			Breed: a.Breed,
			Count: a.Count,
		}
		if a.Count > 0 {
			bs.AdoptionRate = round2(float64(a.AdoptedCount) / float64(a.Count) * 100)
		}
		if a.AverageAge != nil {
			v := round1(*a.AverageAge)
			bs.AverageAge = &v
		}
		if a.AverageWeight != nil {
			v := round2(*a.AverageWeight)
			bs.AverageWeight = &v
		}
		out = append(out, bs)
	}
	return out, nil
}

func (s *Service) alreadyAdopted(c Cat) *StateConflictError {
	return &StateConflictError{
		Message: fmt.Sprintf("%s has already been adopted by %s", c.Name, *c.OwnerName),
	}
}

// dateOnly trunca a fecha (medianoche UTC); adoption_date es DATE.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
