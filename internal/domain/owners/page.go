package owners

import "math"

const (
	DefaultPageSize = 5
	MaxPageSize     = 100

	// MaxPage acota el número de página (base 0) para que Offset no desborde.
	MaxPage = 1 << 20
)

// Pageable pide una página (base 0) de tamaño Size.
type Pageable struct {
	Page int
	Size int
}

// Normalize aplica defaults y límites.
func (p Pageable) Normalize() Pageable {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	return p
}

// Offset satura en math.MaxInt en vez de desbordar.
func (p Pageable) Offset() int {
	if p.Page <= 0 || p.Size <= 0 {
		return 0
	}
	if p.Page > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return p.Page * p.Size
}

type Page[T any] struct {
	Content       []T
	Number        int
	Size          int
	TotalElements int
	TotalPages    int
}

// NewPage arma la página a partir del contenido ya recortado y el total.
func NewPage[T any](content []T, req Pageable, total int) Page[T] {
	req = req.Normalize()
	if content == nil {
		content = make([]T, 0)
	}
	pages := 0
	if total > 0 {
		pages = (total + req.Size - 1) / req.Size
	}
	return Page[T]{
		Content:       content,
		Number:        req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    pages,
	}
}

// Slice pagina una lista completa en memoria.
func Slice[T any](all []T, req Pageable) Page[T] {
	req = req.Normalize()
	start := len(all)
	if req.Page <= len(all)/req.Size {
		start = min(req.Offset(), len(all))
	}
	end := start + req.Size
	if end > len(all) {
		end = len(all)
	}
	content := make([]T, end-start)
	copy(content, all[start:end])
	return NewPage(content, req, len(all))
}

func (p Page[T]) HasNext() bool { return p.Number+1 < p.TotalPages }
