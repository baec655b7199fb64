package cats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

const dateLayout = "2006-01-02"

// Claves bajo las que se cachean las respuestas de estadísticas.
const (
	StatsCacheKey  = "global"
	BreedsCacheKey = "breeds"
)

// ResponseCache cachea payloads ya serializados de estadísticas.
// Lo implementan internal/cache (Valkey o memoria).
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, v []byte)
	Invalidate(ctx context.Context, keys ...string)
}

// AdoptionRecorder cuenta eventos de dominio para observabilidad.
type AdoptionRecorder interface {
	RecordAdoption()
	RecordReturn()
}

func RegisterRoutes(r chi.Router, svc *Service, cache ResponseCache, rec AdoptionRecorder) {
	r.Route("/cats", func(cr chi.Router) {
		cr.Get("/", listCatsHandler(svc))
		cr.Post("/", createCatHandler(svc, cache))

		// Acciones de colección antes que {catID} para que chi no las
		// capture como id.
		cr.Get("/available", listByStatusHandler(svc, StatusAvailable))
		cr.Get("/adopted", listByStatusHandler(svc, StatusAdopted))
		cr.Get("/statistics", statisticsHandler(svc, cache))
		cr.Get("/breeds", breedStatisticsHandler(svc, cache))
		cr.Get("/search", searchCatsHandler(svc))

		cr.Route("/{catID}", func(dr chi.Router) {
			dr.Get("/", getCatHandler(svc))
			dr.Put("/", updateCatHandler(svc, cache))
			dr.Delete("/", deleteCatHandler(svc, cache))
			dr.Post("/adopt", adoptCatHandler(svc, cache, rec))
			dr.Post("/return_to_shelter", returnToShelterHandler(svc, cache, rec))
		})
	})
}

type catRequest struct {
	Name         string   `json:"name"`
	Breed        *string  `json:"breed"`
	Age          *int     `json:"age"`
	Color        *string  `json:"color"`
	Weight       *float64 `json:"weight"`
	IsNeutered   bool     `json:"is_neutered"`
	OwnerName    *string  `json:"owner_name"`
	AdoptionDate *string  `json:"adoption_date"` // YYYY-MM-DD
	Description  *string  `json:"description"`
}

type adoptRequest struct {
	OwnerName    string  `json:"owner_name"`
	AdoptionDate *string `json:"adoption_date"` // YYYY-MM-DD, default hoy
}

// catResponse es la proyección completa de un gato (detalle, create, adopt).
type catResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Breed        *string   `json:"breed"`
	Age          *int      `json:"age"`
	Color        *string   `json:"color"`
	Weight       *float64  `json:"weight"`
	IsNeutered   bool      `json:"is_neutered"`
	OwnerName    *string   `json:"owner_name"`
	AdoptionDate *string   `json:"adoption_date"`
	Description  *string   `json:"description"`
	CreatedAt    time.Time `json:"created_at"`

	// Campos derivados, nunca persistidos.
	IsAdopted     bool   `json:"is_adopted"`
	AgeDisplay    string `json:"age_display"`
	WeightDisplay string `json:"weight_display"`
	StatusDisplay string `json:"status_display"`
}

// catListResponse es la proyección reducida para listados.
type catListResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Breed         *string   `json:"breed"`
	Age           *int      `json:"age"`
	Color         *string   `json:"color"`
	IsAdopted     bool      `json:"is_adopted"`
	StatusDisplay string    `json:"status_display"`
	CreatedAt     time.Time `json:"created_at"`
}

type searchResponse struct {
	Count   int               `json:"count"`
	Results []catListResponse `json:"results"`
}

// listCats godoc
// @Summary  Lista gatos con filtros
// @Tags     cats
// @Produce  json
// @Param    status    query string false "available|adopted"
// @Param    breed     query string false "substring case-insensitive"
// @Param    neutered  query string false "true|1|yes"
// @Param    min_age   query int    false "edad mínima inclusiva"
// @Param    max_age   query int    false "edad máxima inclusiva"
// @Param    search    query string false "búsqueda libre"
// @Param    ordering  query string false "id|name|age|weight|created_at, prefijo - para descendente"
// @Success  200 {array} catListResponse
// @Router   /cats/ [get]
func listCatsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := ParseFilter(r.URL.Query())
		// name/color/available son del endpoint de búsqueda, acá no aplican.
		f.Name, f.Color, f.Available = "", "", nil

		items, err := svc.List(r.Context(), f)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toListResponses(items))
	}
}

// createCat godoc
// @Summary  Crea un gato
// @Tags     cats
// @Accept   json
// @Produce  json
// @Param    cat body catRequest true "campos del gato"
// @Success  201 {object} map[string]any
// @Failure  400 {object} map[string]any
// @Router   /cats/ [post]
func createCatHandler(svc *Service, cache ResponseCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req catRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in, verr := req.toInput()
		if verr == nil {
			var err error
			var c Cat
			c, err = svc.Create(r.Context(), in)
			if err == nil {
				cache.Invalidate(r.Context(), StatsCacheKey, BreedsCacheKey)
				writeJSON(w, http.StatusCreated, map[string]any{
					"status":  "success",
					"message": fmt.Sprintf("Cat %q has been successfully added to the database", c.Name),
					"cat":     toCatResponse(c),
				})
				return
			}
			if !errors.As(err, &verr) {
				writeServiceError(w, err)
				return
			}
		}

		writeJSON(w, http.StatusBadRequest, map[string]any{
			"status":  "error",
			"message": "Invalid data provided",
			"errors":  verr.Fields,
		})
	}
}

// getCat godoc
// @Summary  Devuelve un gato por id
// @Tags     cats
// @Produce  json
// @Param    catID path int true "id del gato"
// @Success  200 {object} catResponse
// @Failure  404 {object} map[string]string
// @Router   /cats/{catID}/ [get]
func getCatHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := catID(w, r)
		if !ok {
			return
		}
		c, err := svc.GetByID(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toCatResponse(c))
	}
}

// updateCat godoc
// @Summary  Reemplaza los campos mutables de un gato (PUT completo)
// @Tags     cats
// @Accept   json
// @Produce  json
// @Param    catID path int true "id del gato"
// @Param    cat body catRequest true "campos del gato"
// @Success  200 {object} catResponse
// @Failure  400 {object} map[string][]string
// @Router   /cats/{catID}/ [put]
func updateCatHandler(svc *Service, cache ResponseCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := catID(w, r)
		if !ok {
			return
		}

		var req catRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in, verr := req.toInput()
		if verr != nil {
			writeJSON(w, http.StatusBadRequest, verr.Fields)
			return
		}

		c, err := svc.Update(r.Context(), id, in)
		if err != nil {
			if errors.As(err, &verr) {
				writeJSON(w, http.StatusBadRequest, verr.Fields)
				return
			}
			writeServiceError(w, err)
			return
		}

		cache.Invalidate(r.Context(), StatsCacheKey, BreedsCacheKey)
		writeJSON(w, http.StatusOK, toCatResponse(c))
	}
}

// deleteCat godoc
// @Summary  Borra un gato (hard delete)
// @Tags     cats
// @Param    catID path int true "id del gato"
// @Success  204
// @Failure  404 {object} map[string]string
// @Router   /cats/{catID}/ [delete]
func deleteCatHandler(svc *Service, cache ResponseCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := catID(w, r)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		cache.Invalidate(r.Context(), StatsCacheKey, BreedsCacheKey)
		w.WriteHeader(http.StatusNoContent)
	}
}

// adoptCat godoc
// @Summary  Adopta un gato disponible
// @Tags     cats
// @Accept   json
// @Produce  json
// @Param    catID path int true "id del gato"
// @Param    body body adoptRequest true "datos de adopción"
// @Success  200 {object} map[string]any
// @Failure  400 {object} map[string]string
// @Router   /cats/{catID}/adopt/ [post]
func adoptCatHandler(svc *Service, cache ResponseCache, rec AdoptionRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := catID(w, r)
		if !ok {
			return
		}

		var req adoptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var date *time.Time
		if req.AdoptionDate != nil {
			t, err := time.Parse(dateLayout, *req.AdoptionDate)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{
					"error": "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.",
				})
				return
			}
			date = &t
		}

		c, err := svc.Adopt(r.Context(), id, req.OwnerName, date)
		if err != nil {
			writeAdoptionError(w, err)
			return
		}

		rec.RecordAdoption()
		cache.Invalidate(r.Context(), StatsCacheKey, BreedsCacheKey)
		writeJSON(w, http.StatusOK, map[string]any{
			"message": fmt.Sprintf("%s has been successfully adopted by %s!", c.Name, *c.OwnerName),
			"cat":     toCatResponse(c),
		})
	}
}

// returnToShelter godoc
// @Summary  Devuelve un gato adoptado al refugio
// @Tags     cats
// @Produce  json
// @Param    catID path int true "id del gato"
// @Success  200 {object} map[string]any
// @Failure  400 {object} map[string]string
// @Router   /cats/{catID}/return_to_shelter/ [post]
func returnToShelterHandler(svc *Service, cache ResponseCache, rec AdoptionRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := catID(w, r)
		if !ok {
			return
		}

		c, formerOwner, err := svc.ReturnToShelter(r.Context(), id)
		if err != nil {
			writeAdoptionError(w, err)
			return
		}

		rec.RecordReturn()
		cache.Invalidate(r.Context(), StatsCacheKey, BreedsCacheKey)
		writeJSON(w, http.StatusOK, map[string]any{
			"message":      fmt.Sprintf("%s has been returned to the shelter", c.Name),
			"former_owner": formerOwner,
			"cat":          toCatResponse(c),
		})
	}
}

func listByStatusHandler(svc *Service, status Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context(), Filter{Status: status})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toListResponses(items))
	}
}

// statistics godoc
// @Summary  Estadísticas globales
// @Tags     stats
// @Produce  json
// @Success  200 {object} Stats
// @Router   /cats/statistics/ [get]
func statisticsHandler(svc *Service, cache ResponseCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if b, ok := cache.Get(r.Context(), StatsCacheKey); ok {
			writeRawJSON(w, http.StatusOK, b)
			return
		}

		stats, err := svc.Statistics(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}

		b, err := json.Marshal(stats)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		cache.Set(r.Context(), StatsCacheKey, b)
		writeRawJSON(w, http.StatusOK, b)
	}
}

// breedStatistics godoc
// @Summary  Estadísticas por raza
// @Tags     stats
// @Produce  json
// @Success  200 {array} BreedStats
// @Router   /cats/breeds/ [get]
func breedStatisticsHandler(svc *Service, cache ResponseCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if b, ok := cache.Get(r.Context(), BreedsCacheKey); ok {
			writeRawJSON(w, http.StatusOK, b)
			return
		}

		stats, err := svc.BreedStatistics(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}

		b, err := json.Marshal(stats)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		cache.Set(r.Context(), BreedsCacheKey, b)
		writeRawJSON(w, http.StatusOK, b)
	}
}

// searchCats godoc
// @Summary  Búsqueda avanzada por múltiples criterios
// @Tags     cats
// @Produce  json
// @Param    name      query string false "substring en el nombre"
// @Param    color     query string false "substring en el color"
// @Param    available query string false "true = disponibles, otro valor = adoptados"
// @Success  200 {object} searchResponse
// @Router   /cats/search/ [get]
func searchCatsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := ParseFilter(r.URL.Query())

		items, err := svc.List(r.Context(), f)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, searchResponse{
			Count:   len(items),
			Results: toListResponses(items),
		})
	}
}

// catID parsea el path param. Un id no numérico se trata como inexistente.
func catID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "catID"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return 0, false
	}
	return id, true
}

func (req catRequest) toInput() (Input, *ValidationError) {
	in := Input{
		Name:        req.Name,
		Breed:       req.Breed,
		Age:         req.Age,
		Color:       req.Color,
		Weight:      req.Weight,
		IsNeutered:  req.IsNeutered,
		OwnerName:   req.OwnerName,
		Description: req.Description,
	}
	if req.AdoptionDate != nil {
		t, err := time.Parse(dateLayout, *req.AdoptionDate)
		if err != nil {
			verr := newValidationError()
			verr.add("adoption_date", "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
			return Input{}, verr
		}
		in.AdoptionDate = &t
	}
	return in, nil
}

// writeServiceError mapea errores de dominio a HTTP. Los fallos de store
// nunca filtran detalle interno al cliente.
func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// writeAdoptionError cubre adopt/return: conflicto de estado y owner_name
// inválido responden 400 {"error": ...}.
func writeAdoptionError(w http.ResponseWriter, err error) {
	var serr *StateConflictError
	if errors.As(err, &serr) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": serr.Message})
		return
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		msg := "invalid input"
		if msgs := verr.Fields["owner_name"]; len(msgs) > 0 {
			msg = msgs[0]
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}
	writeServiceError(w, err)
}

func toCatResponse(c Cat) catResponse {
	resp := catResponse{
		ID:            c.ID,
		Name:          c.Name,
		Breed:         c.Breed,
		Age:           c.Age,
		Color:         c.Color,
		Weight:        c.Weight,
		IsNeutered:    c.IsNeutered,
		OwnerName:     c.OwnerName,
		Description:   c.Description,
		CreatedAt:     c.CreatedAt,
		IsAdopted:     c.IsAdopted(),
		AgeDisplay:    c.AgeDisplay(),
		WeightDisplay: c.WeightDisplay(),
		StatusDisplay: c.StatusDisplay(),
	}
	if c.AdoptionDate != nil {
		d := c.AdoptionDate.Format(dateLayout)
		resp.AdoptionDate = &d
	}
	return resp
}

func toListResponses(items []Cat) []catListResponse {
	out := make([]catListResponse, 0, len(items))
	for _, c := range items {
		out = append(out, catListResponse{
			ID:            c.ID,
			Name:          c.Name,
			Breed:         c.Breed,
			Age:           c.Age,
			Color:         c.Color,
			IsAdopted:     c.IsAdopted(),
			StatusDisplay: c.StatusDisplay(),
			CreatedAt:     c.CreatedAt,
		})
	}
	return out
}

// writeJSON está local al módulo a propósito, igual que en el resto de los
// handlers; si aparece un segundo módulo, recién ahí conviene extraerlo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRawJSON(w http.ResponseWriter, status int, b []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
