package cats

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound indica que el id no existe en el store.
	ErrNotFound = errors.New("cat not found")

	// ErrConflict lo devuelven los adapters cuando una escritura condicional
	// de adopción no aplica (el estado cambió por debajo). El service lo
	// traduce a StateConflictError con mensaje legible.
	ErrConflict = errors.New("adoption state conflict")
)

// ValidationError acumula errores por campo. No es fail-fast: el cliente
// recibe todos los problemas en una sola respuesta.
//
// Los errores cruzados (consistencia de adopción) van bajo la clave
// "non_field_errors" y solo se evalúan cuando los campos individuales pasan.
type ValidationError struct {
	Fields map[string][]string
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

func (e *ValidationError) add(field, msg string) {
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) has(field string) bool {
	return len(e.Fields[field]) > 0
}

// orNil devuelve nil cuando no se acumuló nada, para que el caller pueda
// comparar contra nil sin mirar el mapa.
func (e *ValidationError) orNil() *ValidationError {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid data"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "invalid data: " + strings.Join(keys, ", ")
}

// StateConflictError indica un mal uso de la máquina de estados de adopción
// (adoptar un gato ya adoptado, devolver uno disponible).
type StateConflictError struct {
	Message string
}

func (e *StateConflictError) Error() string {
	return e.Message
}
