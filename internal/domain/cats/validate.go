package cats

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	maxAge    = 30
	maxWeight = 20.0
	minChars  = 2
	minDesc   = 10
)

// titleCase normaliza un texto a Title Case ("snow white" -> "Snow White").
// El Caser no es seguro para uso concurrente, se crea por llamada.
func titleCase(s string) string {
	return cases.Title(language.English).String(strings.TrimSpace(s))
}

// validateFields aplica las reglas por campo y normaliza in en el lugar.
// Devuelve nil si todo pasa. La regla cruzada de adopción NO se chequea acá:
// corre después, solo cuando los campos individuales están limpios.
func validateFields(in *Input) *ValidationError {
	verr := newValidationError()

	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		verr.add("name", "Cat name cannot be empty")
	case len([]rune(name)) < minChars:
		verr.add("name", "Cat name must be at least 2 characters long")
	default:
		in.Name = titleCase(name)
	}

	if in.Breed != nil {
		if v := strings.TrimSpace(*in.Breed); v == "" {
			in.Breed = nil
		} else if len([]rune(v)) < minChars {
			verr.add("breed", "Breed name must be at least 2 characters long")
		} else {
			t := titleCase(v)
			in.Breed = &t
		}
	}

	if in.Color != nil {
		if v := strings.TrimSpace(*in.Color); v == "" {
			in.Color = nil
		} else if len([]rune(v)) < minChars {
			verr.add("color", "Color description must be at least 2 characters long")
		} else {
			t := titleCase(v)
			in.Color = &t
		}
	}

	if in.Age != nil {
		if *in.Age < 0 {
			verr.add("age", "Age cannot be negative")
		} else if *in.Age > maxAge {
			verr.add("age", "Age seems unrealistic for a cat")
		}
	}

	if in.Weight != nil {
		if *in.Weight <= 0 {
			verr.add("weight", "Weight must be positive")
		} else if *in.Weight > maxWeight {
			verr.add("weight", "Weight seems unrealistic for a cat")
		} else {
			w := round2(*in.Weight)
			in.Weight = &w
		}
	}

	if in.OwnerName != nil {
		if v := strings.TrimSpace(*in.OwnerName); v == "" {
			in.OwnerName = nil
		} else if len([]rune(v)) < minChars {
			verr.add("owner_name", "Owner name must be at least 2 characters long")
		} else {
			t := titleCase(v)
			in.OwnerName = &t
		}
	}

	if in.Description != nil {
		if v := strings.TrimSpace(*in.Description); v == "" {
			in.Description = nil
		} else if len([]rune(v)) < minDesc {
			verr.add("description", "Description must be at least 10 characters long")
		} else {
			in.Description = &v
		}
	}

	return verr.orNil()
}

// validateAdoptionConsistency aplica la invariante: OwnerName y AdoptionDate
// presentes ambos o ninguno.
func validateAdoptionConsistency(in *Input) *ValidationError {
	verr := newValidationError()
	if in.AdoptionDate != nil && in.OwnerName == nil {
		verr.add("non_field_errors", "Adopted cats must have an owner name")
	}
	if in.OwnerName != nil && in.AdoptionDate == nil {
		verr.add("non_field_errors", "Cats with owners must have an adoption date")
	}
	return verr.orNil()
}

// validateOwnerName valida y normaliza el nombre del adoptante (adopt).
func validateOwnerName(name string) (string, *ValidationError) {
	verr := newValidationError()
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		verr.add("owner_name", "Owner name cannot be empty")
	case len([]rune(name)) < minChars:
		verr.add("owner_name", "Owner name must be at least 2 characters long")
	}
	if v := verr.orNil(); v != nil {
		return "", v
	}
	return titleCase(name), nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
