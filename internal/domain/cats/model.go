package cats

import (
	"fmt"
	"time"
)

// Status define el estado de adopción de un gato.
// @Enum available, adopted
type Status string

const (
	StatusAvailable Status = "available"
	StatusAdopted   Status = "adopted"
)

// Cat representa el registro de un gato del refugio.
//
// Los campos opcionales son punteros: nil = sin valor en la fila.
// OwnerName y AdoptionDate van siempre juntos (ambos o ninguno);
// la validación lo garantiza antes de cada escritura.
type Cat struct {
	ID int64

	Name  string
	Breed *string
	Age   *int   // años
	Color *string

	Weight     *float64 // kilogramos, 2 decimales
	IsNeutered bool

	OwnerName    *string
	AdoptionDate *time.Time // solo fecha (medianoche UTC)

	Description *string

	CreatedAt time.Time
}

// IsAdopted indica si el gato fue adoptado (tiene fecha de adopción).
func (c Cat) IsAdopted() bool {
	return c.AdoptionDate != nil
}

// Status devuelve el estado de adopción derivado.
func (c Cat) Status() Status {
	if c.IsAdopted() {
		return StatusAdopted
	}
	return StatusAvailable
}

// AgeDisplay devuelve la edad en formato legible.
func (c Cat) AgeDisplay() string {
	if c.Age == nil {
		return "Age unknown"
	}
	if *c.Age == 1 {
		return "1 year old"
	}
	return fmt.Sprintf("%d years old", *c.Age)
}

// WeightDisplay devuelve el peso en formato legible.
func (c Cat) WeightDisplay() string {
	if c.Weight == nil {
		return "Weight unknown"
	}
	return fmt.Sprintf("%.2f kg", *c.Weight)
}

// StatusDisplay devuelve el estado de adopción en formato legible.
func (c Cat) StatusDisplay() string {
	if c.IsAdopted() {
		return fmt.Sprintf("Adopted by %s", *c.OwnerName)
	}
	return "Available for adoption"
}

// String implementa fmt.Stringer: "Nombre (Raza)".
func (c Cat) String() string {
	breed := "Mixed breed"
	if c.Breed != nil {
		breed = *c.Breed
	}
	return fmt.Sprintf("%s (%s)", c.Name, breed)
}
