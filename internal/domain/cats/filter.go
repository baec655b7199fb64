package cats

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// orderingKeys es la whitelist de claves de orden expuestas por el listado.
var orderingKeys = map[string]struct{}{
	"id":         {},
	"name":       {},
	"age":        {},
	"weight":     {},
	"created_at": {},
}

// ParseFilter traduce query params a un Filter. Es permisivo a propósito:
// valores numéricos malformados o claves de orden desconocidas se ignoran
// en lugar de fallar, para que el listado nunca rompa por un param sucio.
func ParseFilter(q url.Values) Filter {
	var f Filter

	switch q.Get("status") {
	case string(StatusAvailable):
		f.Status = StatusAvailable
	case string(StatusAdopted):
		f.Status = StatusAdopted
	}

	f.Breed = strings.TrimSpace(q.Get("breed"))
	f.Search = strings.TrimSpace(q.Get("search"))
	f.Name = strings.TrimSpace(q.Get("name"))
	f.Color = strings.TrimSpace(q.Get("color"))

	if q.Has("neutered") {
		v := truthy(q.Get("neutered"))
		f.Neutered = &v
	}
	if q.Has("available") {
		v := truthy(q.Get("available"))
		f.Available = &v
	}

	f.MinAge = parseIntParam(q.Get("min_age"))
	f.MaxAge = parseIntParam(q.Get("max_age"))

	if o := strings.TrimSpace(q.Get("ordering")); o != "" {
		key := strings.TrimPrefix(o, "-")
		if _, ok := orderingKeys[key]; ok {
			f.Ordering = o
		}
	}

	if p := parseIntParam(q.Get("page")); p != nil && *p > 0 {
		f.Page = *p
	}
	if ps := parseIntParam(q.Get("page_size")); ps != nil && *ps > 0 {
		f.PageSize = *ps
	}

	return f
}

// truthy replica la semántica del parseo de booleanos por query param:
// true/1/yes (case-insensitive) es true, cualquier otro valor es false.
func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func parseIntParam(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// OrderKey descompone Ordering en clave + dirección. Default: id ascendente.
func (f Filter) OrderKey() (key string, desc bool) {
	o := f.Ordering
	if o == "" {
		return "id", false
	}
	if strings.HasPrefix(o, "-") {
		return strings.TrimPrefix(o, "-"), true
	}
	return o, false
}

// Matches evalúa los filtros en memoria (adapter memory y tests).
// Los adapters SQL traducen exactamente estas mismas reglas a WHERE.
func (f Filter) Matches(c Cat) bool {
	switch f.Status {
	case StatusAvailable:
		if c.IsAdopted() {
			return false
		}
	case StatusAdopted:
		if !c.IsAdopted() {
			return false
		}
	}

	if f.Breed != "" && !containsFold(strPtr(c.Breed), f.Breed) {
		return false
	}
	if f.Neutered != nil && c.IsNeutered != *f.Neutered {
		return false
	}
	if f.MinAge != nil && (c.Age == nil || *c.Age < *f.MinAge) {
		return false
	}
	if f.MaxAge != nil && (c.Age == nil || *c.Age > *f.MaxAge) {
		return false
	}

	if f.Search != "" {
		if !containsFold(c.Name, f.Search) &&
			!containsFold(strPtr(c.Breed), f.Search) &&
			!containsFold(strPtr(c.Color), f.Search) &&
			!containsFold(strPtr(c.Description), f.Search) {
			return false
		}
	}

	if f.Name != "" && !containsFold(c.Name, f.Name) {
		return false
	}
	if f.Color != "" && !containsFold(strPtr(c.Color), f.Color) {
		return false
	}
	if f.Available != nil && *f.Available == c.IsAdopted() {
		return false
	}

	return true
}

// Sort ordena el slice en el lugar según la clave de orden del filtro.
// Valores nulos (age/weight) van al final en ascendente y al principio en
// descendente, igual que el store. El desempate por id es ascendente en
// ambas direcciones, como el "id ASC" que emiten los adapters SQL.
func (f Filter) Sort(list []Cat) {
	key, desc := f.OrderKey()

	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]

		var r int
		switch key {
		case "id":
			r = cmpInt64(a.ID, b.ID)
		case "name":
			r = strings.Compare(a.Name, b.Name)
		case "age":
			r = cmpIntPtr(a.Age, b.Age)
		case "weight":
			r = cmpFloatPtr(a.Weight, b.Weight)
		case "created_at":
			switch {
			case a.CreatedAt.Before(b.CreatedAt):
				r = -1
			case a.CreatedAt.After(b.CreatedAt):
				r = 1
			}
		}
		if r != 0 {
			if desc {
				return r > 0
			}
			return r < 0
		}
		return a.ID < b.ID
	})
}

// Paginate aplica page/page_size sobre la lista ya ordenada.
func (f Filter) Paginate(list []Cat) []Cat {
	if f.PageSize <= 0 {
		return list
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * f.PageSize
	if start >= len(list) {
		return []Cat{}
	}
	end := start + f.PageSize
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}

func strPtr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// nil cuenta como mayor que cualquier valor: al final en ascendente.
func cmpIntPtr(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}

func cmpFloatPtr(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}
