package timing

import (
	"sort"
	"strings"
)

// Tags es el conjunto de métodos marcados para medir tiempo de ejecución.
// Se arma una vez al cablear la app y no se modifica después.
type Tags struct {
	set map[string]struct{}
}

func NewTags(methods ...string) Tags {
	set := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		set[m] = struct{}{}
	}
	return Tags{set: set}
}

func (t Tags) Has(method string) bool {
	_, ok := t.set[method]
	return ok
}

func (t Tags) Len() int { return len(t.set) }

// Names devuelve los métodos marcados en orden alfabético.
func (t Tags) Names() []string {
	out := make([]string, 0, len(t.set))
	for m := range t.set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
