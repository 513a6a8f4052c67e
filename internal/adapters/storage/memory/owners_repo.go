package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"petclinic/internal/domain/owners"
)

type ownerRepo struct {
	mu       sync.RWMutex
	byID     map[string]owners.Owner
	petTypes []owners.PetType
}

// NewOwnerRepo arranca con el catálogo de tipos por defecto.
func NewOwnerRepo() owners.Repository {
	types := make([]owners.PetType, len(owners.DefaultPetTypes))
	copy(types, owners.DefaultPetTypes)
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })

	return &ownerRepo{
		byID:     make(map[string]owners.Owner),
		petTypes: types,
	}
}

func (r *ownerRepo) FindPetTypes(ctx context.Context) ([]owners.PetType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]owners.PetType, len(r.petTypes))
	copy(out, r.petTypes)
	return out, nil
}

func (r *ownerRepo) FindByLastName(ctx context.Context, lastName string, page owners.Pageable) (owners.Page[owners.Owner], error) {
	lastName = strings.ToLower(lastName)
	return r.filter(page, func(o owners.Owner) bool {
		return strings.HasPrefix(strings.ToLower(o.LastName), lastName)
	}), nil
}

func (r *ownerRepo) FindByFirstName(ctx context.Context, firstName string, page owners.Pageable) (owners.Page[owners.Owner], error) {
	firstName = strings.ToLower(firstName)
	return r.filter(page, func(o owners.Owner) bool {
		return strings.Contains(strings.ToLower(o.FirstName), firstName)
	}), nil
}

func (r *ownerRepo) FindAll(ctx context.Context, page owners.Pageable) (owners.Page[owners.Owner], error) {
	return r.filter(page, func(owners.Owner) bool { return true }), nil
}

func (r *ownerRepo) FindByID(ctx context.Context, id string) (owners.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byID[id]
	if !ok {
		return owners.Owner{}, owners.ErrNotFound
	}
	return cloneOwner(o), nil
}

func (r *ownerRepo) Save(ctx context.Context, o owners.Owner) error {
	if strings.TrimSpace(o.ID) == "" {
		return errors.New("owner id required")
	}
	for _, p := range o.Pets {
		if strings.TrimSpace(p.ID) == "" {
			return errors.New("pet id required")
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[o.ID] = cloneOwner(o)
	return nil
}

func (r *ownerRepo) filter(page owners.Pageable, keep func(owners.Owner) bool) owners.Page[owners.Owner] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]owners.Owner, 0)
	for _, o := range r.byID {
		if keep(o) {
			matched = append(matched, cloneOwner(o))
		}
	}

	// Mismo orden que el store SQL: apellido, nombre, id.
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.ID < b.ID
	})

	return owners.Slice(matched, page)
}

// cloneOwner copia las slices para que nadie mute el estado guardado.
func cloneOwner(o owners.Owner) owners.Owner {
	pets := make([]owners.Pet, 0, len(o.Pets))
	for _, p := range o.Pets {
		visits := make([]owners.Visit, len(p.Visits))
		copy(visits, p.Visits)
		sort.SliceStable(visits, func(i, j int) bool { return visits[i].Date.Before(visits[j].Date) })
		p.Visits = visits
		pets = append(pets, p)
	}
	sort.SliceStable(pets, func(i, j int) bool { return pets[i].Name < pets[j].Name })
	o.Pets = pets
	return o
}
