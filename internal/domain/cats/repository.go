package cats

import (
	"context"
	"time"
)

// Filter describe un listado: filtros AND-compuestos, orden y página.
// El valor cero es un scan completo ordenado por id ascendente.
type Filter struct {
	Status   Status // vacío = sin filtro
	Breed    string // substring case-insensitive
	Neutered *bool
	MinAge   *int // inclusivo
	MaxAge   *int // inclusivo

	// Búsqueda libre: substring case-insensitive sobre
	// name/breed/color/description.
	Search string

	// Búsqueda por campo (endpoint /cats/search/).
	Name      string
	Color     string
	Available *bool

	// Clave de orden validada por ParseFilter; prefijo "-" = descendente.
	Ordering string

	// Paginación explícita; 0 = sin paginar.
	Page     int
	PageSize int
}

// StatsAggregate son los agregados globales crudos que produce el store.
// Tasas y redondeos de presentación los calcula el Service.
type StatsAggregate struct {
	TotalCats       int
	AdoptedCats     int
	NeuteredCats    int
	BreedsCount     int // grupos distintos de breed, NULL cuenta como grupo propio
	RecentAdoptions int // adoption_date dentro de los últimos 30 días
	AverageAge      *float64
	YoungestAge     *int
	OldestAge       *int
}

// BreedAggregate son los agregados crudos por raza (solo razas no nulas).
type BreedAggregate struct {
	Breed         string
	Count         int
	AdoptedCount  int
	AverageAge    *float64
	AverageWeight *float64
}

// Repository es el contrato con el record store. Lo implementan los
// adapters de postgres, sqlite y memoria.
type Repository interface {
	// Create inserta y devuelve el registro con el id asignado por el store.
	Create(ctx context.Context, c Cat) (Cat, error)

	GetByID(ctx context.Context, id int64) (Cat, error)

	// Update reemplaza todos los campos mutables. ErrNotFound si no existe.
	Update(ctx context.Context, c Cat) error

	// Delete es hard delete. ErrNotFound si no existe.
	Delete(ctx context.Context, id int64) error

	List(ctx context.Context, f Filter) ([]Cat, error)

	// NameExists chequea duplicados case-insensitive. excludeID > 0 omite
	// esa fila (para updates).
	NameExists(ctx context.Context, name string, excludeID int64) (bool, error)

	// Adopt fija owner_name y adoption_date en una sola escritura
	// condicionada a que el gato siga disponible. ErrConflict si ya estaba
	// adoptado, ErrNotFound si el id no existe.
	Adopt(ctx context.Context, id int64, ownerName string, date time.Time) error

	// ReturnToShelter limpia ambos campos en una sola escritura condicionada
	// a que el gato esté adoptado. ErrConflict si ya estaba disponible.
	ReturnToShelter(ctx context.Context, id int64) error

	// Stats corre los agregados globales; now fija el corte de
	// "adopciones recientes" (now - 30 días, inclusivo).
	Stats(ctx context.Context, now time.Time) (StatsAggregate, error)

	// BreedStats agrupa por raza no nula, ordenado por count descendente
	// (empates por raza ascendente).
	BreedStats(ctx context.Context) ([]BreedAggregate, error)
}
