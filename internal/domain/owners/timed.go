package owners

import (
	"context"

	"petclinic/internal/platform/timing"
)

// Nombres con los que se marcan los métodos del repositorio en timing.Tags.
const (
	MethodFindPetTypes    = "owners.FindPetTypes"
	MethodFindByLastName  = "owners.FindByLastName"
	MethodFindByFirstName = "owners.FindByFirstName"
	MethodFindByID        = "owners.FindByID"
	MethodSave            = "owners.Save"
	MethodFindAll         = "owners.FindAll"
)

// timedRepository delega en next; sólo mide lo que el interceptor tenga marcado.
type timedRepository struct {
	next Repository
	in   *timing.Interceptor
}

func NewTimedRepository(next Repository, in *timing.Interceptor) Repository {
	return &timedRepository{next: next, in: in}
}

func (r *timedRepository) FindPetTypes(ctx context.Context) ([]PetType, error) {
	return timing.Call(ctx, r.in, MethodFindPetTypes, r.next.FindPetTypes)
}

func (r *timedRepository) FindByLastName(ctx context.Context, lastName string, page Pageable) (Page[Owner], error) {
	return timing.Call(ctx, r.in, MethodFindByLastName, func(ctx context.Context) (Page[Owner], error) {
		return r.next.FindByLastName(ctx, lastName, page)
	})
}

func (r *timedRepository) FindByFirstName(ctx context.Context, firstName string, page Pageable) (Page[Owner], error) {
	return timing.Call(ctx, r.in, MethodFindByFirstName, func(ctx context.Context) (Page[Owner], error) {
		return r.next.FindByFirstName(ctx, firstName, page)
	})
}

func (r *timedRepository) FindByID(ctx context.Context, id string) (Owner, error) {
	return timing.Call(ctx, r.in, MethodFindByID, func(ctx context.Context) (Owner, error) {
		return r.next.FindByID(ctx, id)
	})
}

func (r *timedRepository) Save(ctx context.Context, o Owner) error {
	return r.in.Run(ctx, MethodSave, func(ctx context.Context) error {
		return r.next.Save(ctx, o)
	})
}

func (r *timedRepository) FindAll(ctx context.Context, page Pageable) (Page[Owner], error) {
	return timing.Call(ctx, r.in, MethodFindAll, func(ctx context.Context) (Page[Owner], error) {
		return r.next.FindAll(ctx, page)
	})
}
