package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"cat-shelter-api/internal/domain/cats"
)

type catRepo struct {
	mu     sync.RWMutex
	byID   map[int64]cats.Cat
	nextID int64
}

// NewCatRepo crea el repo in-memory (dev sin DB y tests).
func NewCatRepo() cats.Repository {
	return &catRepo{
		byID:   make(map[int64]cats.Cat),
		nextID: 1,
	}
}

func (r *catRepo) Create(ctx context.Context, c cats.Cat) (cats.Cat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c.ID = r.nextID
	r.nextID++
	r.byID[c.ID] = c
	return c, nil
}

func (r *catRepo) GetByID(ctx context.Context, id int64) (cats.Cat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return cats.Cat{}, cats.ErrNotFound
	}
	return c, nil
}

func (r *catRepo) Update(ctx context.Context, c cats.Cat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[c.ID]
	if !ok {
		return cats.ErrNotFound
	}
	// created_at es inmutable
	c.CreatedAt = current.CreatedAt
	r.byID[c.ID] = c
	return nil
}

func (r *catRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return cats.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// List delega el matching y el orden en el motor de filtros del dominio,
// que es la misma semántica que los adapters SQL traducen a WHERE/ORDER BY.
func (r *catRepo) List(ctx context.Context, f cats.Filter) ([]cats.Cat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]cats.Cat, 0)
	for _, c := range r.byID {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	f.Sort(out)
	return f.Paginate(out), nil
}

func (r *catRepo) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.byID {
		if c.ID == excludeID {
			continue
		}
		if strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

// Adopt escribe el par owner_name/adoption_date bajo el lock, condicionado
// a que el gato siga disponible: o cambian los dos campos o ninguno.
func (r *catRepo) Adopt(ctx context.Context, id int64, ownerName string, date time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return cats.ErrNotFound
	}
	if c.AdoptionDate != nil {
		return cats.ErrConflict
	}

	c.OwnerName = &ownerName
	c.AdoptionDate = &date
	r.byID[id] = c
	return nil
}

func (r *catRepo) ReturnToShelter(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return cats.ErrNotFound
	}
	if c.AdoptionDate == nil {
		return cats.ErrConflict
	}

	c.OwnerName = nil
	c.AdoptionDate = nil
	r.byID[id] = c
	return nil
}

func (r *catRepo) Stats(ctx context.Context, now time.Time) (cats.StatsAggregate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var agg cats.StatsAggregate
	// El corte es una fecha: la hora del reloj no entra en la comparación.
	y, m, d := now.UTC().Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -30)

	var ageSum, aged int
	// breed NULL cuenta como su propio grupo distinto, igual que el
	// DISTINCT del store; "" no aparece porque la normalización lo vuelve nil.
	breeds := map[string]struct{}{}
	hasNullBreed := false

	for _, c := range r.byID {
		agg.TotalCats++
		if c.AdoptionDate != nil {
			agg.AdoptedCats++
			if !c.AdoptionDate.Before(cutoff) {
				agg.RecentAdoptions++
			}
		}
		if c.IsNeutered {
			agg.NeuteredCats++
		}
		if c.Age != nil {
			aged++
			ageSum += *c.Age
			if agg.YoungestAge == nil || *c.Age < *agg.YoungestAge {
				v := *c.Age
				agg.YoungestAge = &v
			}
			if agg.OldestAge == nil || *c.Age > *agg.OldestAge {
				v := *c.Age
				agg.OldestAge = &v
			}
		}
		if c.Breed != nil {
			breeds[*c.Breed] = struct{}{}
		} else {
			hasNullBreed = true
		}
	}

	agg.BreedsCount = len(breeds)
	if hasNullBreed {
		agg.BreedsCount++
	}
	if aged > 0 {
		avg := float64(ageSum) / float64(aged)
		agg.AverageAge = &avg
	}
	return agg, nil
}

func (r *catRepo) BreedStats(ctx context.Context) ([]cats.BreedAggregate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type acc struct {
		breed     string
		count     int
		adopted   int
		ageSum    int
		aged      int
		weightSum float64
		weighed   int
	}
	byBreed := map[string]*acc{}

	for _, c := range r.byID {
		if c.Breed == nil {
			continue
		}
		a, ok := byBreed[*c.Breed]
		if !ok {
			a = &acc{breed: *c.Breed}
			byBreed[*c.Breed] = a
		}
		a.count++
		if c.AdoptionDate != nil {
			a.adopted++
		}
		if c.Age != nil {
			a.aged++
			a.ageSum += *c.Age
		}
		if c.Weight != nil {
			a.weighed++
			a.weightSum += *c.Weight
		}
	}

	out := make([]cats.BreedAggregate, 0, len(byBreed))
	for _, a := range byBreed {
		b := cats.BreedAggregate{
			Breed:        a.breed,
			Count:        a.count,
			AdoptedCount: a.adopted,
		}
		if a.aged > 0 {
			avg := float64(a.ageSum) / float64(a.aged)
			b.AverageAge = &avg
		}
		if a.weighed > 0 {
			avg := a.weightSum / float64(a.weighed)
			b.AverageWeight = &avg
		}
		out = append(out, b)
	}

	// count descendente, empates por raza ascendente
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Breed < out[j].Breed
	})
	return out, nil
}
