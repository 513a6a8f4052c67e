package owners

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
)

// Repository persiste owners. Las lecturas corren en transacción read-only
// y Save en read-write; eso lo resuelve cada adapter.
type Repository interface {
	// FindPetTypes devuelve el catálogo ordenado por nombre.
	FindPetTypes(ctx context.Context) ([]PetType, error)

	// FindByLastName: owners cuyo apellido empieza con lastName.
	FindByLastName(ctx context.Context, lastName string, page Pageable) (Page[Owner], error)

	// FindByFirstName: owners cuyo nombre contiene firstName.
	FindByFirstName(ctx context.Context, firstName string, page Pageable) (Page[Owner], error)

	// FindByID trae el owner con sus mascotas y visitas, o ErrNotFound.
	FindByID(ctx context.Context, id string) (Owner, error)

	// Save inserta o actualiza el owner con sus mascotas y visitas.
	Save(ctx context.Context, o Owner) error

	FindAll(ctx context.Context, page Pageable) (Page[Owner], error)
}
