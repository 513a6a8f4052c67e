package owners

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// Límites alineados con las columnas del schema SQL (VARCHAR(n)).
const (
	maxTelephoneDigits = 10
	maxNameLen         = 30
	maxAddressLen      = 255
	maxCityLen         = 80
	maxDescriptionLen  = 255
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type OwnerInput struct {
	FirstName string
	LastName  string
	Address   string
	City      string
	Telephone string
}

type PetInput struct {
	Name      string
	BirthDate time.Time
	Type      string // nombre del PetType, ej. "dog"
}

type VisitInput struct {
	Date        time.Time // zero => hoy
	Description string
}

// Search: FirstName tiene prioridad; ambos vacíos => todos los owners.
type Search struct {
	LastName  string
	FirstName string
}

func (s *Service) PetTypes(ctx context.Context) ([]PetType, error) {
	return s.repo.FindPetTypes(ctx)
}

func (s *Service) FindOwners(ctx context.Context, q Search, page Pageable) (Page[Owner], error) {
	page = page.Normalize()
	if first := strings.TrimSpace(q.FirstName); first != "" {
		return s.repo.FindByFirstName(ctx, first, page)
	}
	if last := strings.TrimSpace(q.LastName); last != "" {
		return s.repo.FindByLastName(ctx, last, page)
	}
	return s.repo.FindAll(ctx, page)
}

func (s *Service) GetOwner(ctx context.Context, id string) (Owner, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Owner{}, ErrNotFound
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) CreateOwner(ctx context.Context, in OwnerInput) (Owner, error) {
	o, err := applyOwnerInput(Owner{}, in)
	if err != nil {
		return Owner{}, err
	}
	o.ID = uuid.NewString()

	if err := s.repo.Save(ctx, o); err != nil {
		return Owner{}, err
	}
	return o, nil
}

func (s *Service) UpdateOwner(ctx context.Context, id string, in OwnerInput) (Owner, error) {
	current, err := s.GetOwner(ctx, id)
	if err != nil {
		return Owner{}, err
	}

	updated, err := applyOwnerInput(current, in)
	if err != nil {
		return Owner{}, err
	}
	if err := s.repo.Save(ctx, updated); err != nil {
		return Owner{}, err
	}
	return updated, nil
}

func (s *Service) AddPet(ctx context.Context, ownerID string, in PetInput) (Pet, error) {
	o, err := s.GetOwner(ctx, ownerID)
	if err != nil {
		return Pet{}, err
	}

	p, err := s.applyPetInput(ctx, o, Pet{}, in)
	if err != nil {
		return Pet{}, err
	}
	p.ID = uuid.NewString()
	o.Pets = append(o.Pets, p)

	if err := s.repo.Save(ctx, o); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) UpdatePet(ctx context.Context, ownerID, petID string, in PetInput) (Pet, error) {
	o, err := s.GetOwner(ctx, ownerID)
	if err != nil {
		return Pet{}, err
	}
	current, ok := o.Pet(petID)
	if !ok {
		return Pet{}, ErrNotFound
	}

	updated, err := s.applyPetInput(ctx, o, current, in)
	if err != nil {
		return Pet{}, err
	}
	for i := range o.Pets {
		if o.Pets[i].ID == petID {
			o.Pets[i] = updated
		}
	}

	if err := s.repo.Save(ctx, o); err != nil {
		return Pet{}, err
	}
	return updated, nil
}

func (s *Service) AddVisit(ctx context.Context, ownerID, petID string, in VisitInput) (Visit, error) {
	o, err := s.GetOwner(ctx, ownerID)
	if err != nil {
		return Visit{}, err
	}
	if _, ok := o.Pet(petID); !ok {
		return Visit{}, ErrNotFound
	}

	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return Visit{}, fmt.Errorf("%w: description required", ErrInvalidInput)
	}
	if tooLong(desc, maxDescriptionLen) {
		return Visit{}, fmt.Errorf("%w: description longer than %d characters", ErrInvalidInput, maxDescriptionLen)
	}
	date := in.Date
	if date.IsZero() {
		date = s.now()
	}

	v := Visit{
		ID:          uuid.NewString(),
		PetID:       petID,
		Date:        dateOnly(date),
		Description: desc,
	}
	for i := range o.Pets {
		if o.Pets[i].ID == petID {
			o.Pets[i].Visits = append(o.Pets[i].Visits, v)
		}
	}

	if err := s.repo.Save(ctx, o); err != nil {
		return Visit{}, err
	}
	return v, nil
}

// Import guarda un owner completo (seed). Valida igual que la API y asigna
// IDs faltantes a owner, mascotas y visitas.
func (s *Service) Import(ctx context.Context, o Owner) (Owner, error) {
	validated, err := applyOwnerInput(o, OwnerInput{
		FirstName: o.FirstName,
		LastName:  o.LastName,
		Address:   o.Address,
		City:      o.City,
		Telephone: o.Telephone,
	})
	if err != nil {
		return Owner{}, err
	}
	if validated.IsNew() {
		validated.ID = uuid.NewString()
	}

	pets := validated.Pets
	validated.Pets = make([]Pet, 0, len(pets))
	for _, p := range pets {
		np, err := s.applyPetInput(ctx, validated, p, PetInput{
			Name:      p.Name,
			BirthDate: p.BirthDate,
			Type:      p.Type.Name,
		})
		if err != nil {
			return Owner{}, fmt.Errorf("pet %q: %w", p.Name, err)
		}
		if np.ID == "" {
			np.ID = uuid.NewString()
		}
		for i := range np.Visits {
			if np.Visits[i].ID == "" {
				np.Visits[i].ID = uuid.NewString()
			}
			np.Visits[i].PetID = np.ID
			np.Visits[i].Date = dateOnly(np.Visits[i].Date)
		}
		validated.Pets = append(validated.Pets, np)
	}

	if err := s.repo.Save(ctx, validated); err != nil {
		return Owner{}, err
	}
	return validated, nil
}

func applyOwnerInput(o Owner, in OwnerInput) (Owner, error) {
	o.FirstName = strings.TrimSpace(in.FirstName)
	o.LastName = strings.TrimSpace(in.LastName)
	o.Address = strings.TrimSpace(in.Address)
	o.City = strings.TrimSpace(in.City)
	o.Telephone = strings.TrimSpace(in.Telephone)

	switch {
	case o.FirstName == "":
		return Owner{}, fmt.Errorf("%w: first name required", ErrInvalidInput)
	case o.LastName == "":
		return Owner{}, fmt.Errorf("%w: last name required", ErrInvalidInput)
	case o.Address == "":
		return Owner{}, fmt.Errorf("%w: address required", ErrInvalidInput)
	case o.City == "":
		return Owner{}, fmt.Errorf("%w: city required", ErrInvalidInput)
	case tooLong(o.FirstName, maxNameLen):
		return Owner{}, fmt.Errorf("%w: first name longer than %d characters", ErrInvalidInput, maxNameLen)
	case tooLong(o.LastName, maxNameLen):
		return Owner{}, fmt.Errorf("%w: last name longer than %d characters", ErrInvalidInput, maxNameLen)
	case tooLong(o.Address, maxAddressLen):
		return Owner{}, fmt.Errorf("%w: address longer than %d characters", ErrInvalidInput, maxAddressLen)
	case tooLong(o.City, maxCityLen):
		return Owner{}, fmt.Errorf("%w: city longer than %d characters", ErrInvalidInput, maxCityLen)
	case !validTelephone(o.Telephone):
		return Owner{}, fmt.Errorf("%w: telephone must be numeric with at most %d digits", ErrInvalidInput, maxTelephoneDigits)
	}
	return o, nil
}

func (s *Service) applyPetInput(ctx context.Context, o Owner, p Pet, in PetInput) (Pet, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Pet{}, fmt.Errorf("%w: pet name required", ErrInvalidInput)
	}
	if tooLong(name, maxNameLen) {
		return Pet{}, fmt.Errorf("%w: pet name longer than %d characters", ErrInvalidInput, maxNameLen)
	}
	if _, dup := o.PetByName(name, p.ID); dup {
		return Pet{}, fmt.Errorf("%w: pet %q already exists", ErrInvalidInput, name)
	}
	if in.BirthDate.IsZero() {
		return Pet{}, fmt.Errorf("%w: birth date required", ErrInvalidInput)
	}
	birth := dateOnly(in.BirthDate)
	if birth.After(dateOnly(s.now())) {
		return Pet{}, fmt.Errorf("%w: birth date in the future", ErrInvalidInput)
	}

	pt, err := s.resolvePetType(ctx, in.Type)
	if err != nil {
		return Pet{}, err
	}

	p.Name = name
	p.BirthDate = birth
	p.Type = pt
	return p, nil
}

func (s *Service) resolvePetType(ctx context.Context, name string) (PetType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return PetType{}, fmt.Errorf("%w: pet type required", ErrInvalidInput)
	}
	types, err := s.repo.FindPetTypes(ctx)
	if err != nil {
		return PetType{}, err
	}
	for _, t := range types {
		if strings.ToLower(t.Name) == name {
			return t, nil
		}
	}
	return PetType{}, fmt.Errorf("%w: unknown pet type %q", ErrInvalidInput, name)
}

// VARCHAR(n) cuenta caracteres, no bytes.
func tooLong(s string, limit int) bool { return utf8.RuneCountInString(s) > limit }

func validTelephone(s string) bool {
	if s == "" || len(s) > maxTelephoneDigits {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
