package owners

import (
	"strings"
	"time"
)

// PetType es un catálogo fijo (bird, cat, dog, ...). Los IDs son estables
// porque se siembran junto con el schema.
type PetType struct {
	ID   int
	Name string
}

type Visit struct {
	ID          string
	PetID       string
	Date        time.Time
	Description string
}

type Pet struct {
	ID        string
	Name      string
	BirthDate time.Time
	Type      PetType

	Visits []Visit
}

// Owner es la raíz del agregado: se guarda con sus mascotas y visitas.
type Owner struct {
	ID        string
	FirstName string
	LastName  string
	Address   string
	City      string
	Telephone string

	Pets []Pet
}

func (o Owner) IsNew() bool { return strings.TrimSpace(o.ID) == "" }

// Pet busca por ID.
func (o Owner) Pet(id string) (Pet, bool) {
	for _, p := range o.Pets {
		if p.ID == id {
			return p, true
		}
	}
	return Pet{}, false
}

// PetByName ignora mayúsculas; con skipID se excluye la mascota que se edita.
func (o Owner) PetByName(name, skipID string) (Pet, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range o.Pets {
		if p.ID == skipID {
			continue
		}
		if strings.ToLower(p.Name) == name {
			return p, true
		}
	}
	return Pet{}, false
}

// DefaultPetTypes es el seed del catálogo, ordenado por nombre.
var DefaultPetTypes = []PetType{
	{ID: 5, Name: "bird"},
	{ID: 1, Name: "cat"},
	{ID: 2, Name: "dog"},
	{ID: 6, Name: "hamster"},
	{ID: 3, Name: "lizard"},
	{ID: 4, Name: "snake"},
}
