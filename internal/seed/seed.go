// Package seed carga owners de ejemplo desde YAML.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"time"

	"petclinic/internal/domain/owners"

	"gopkg.in/yaml.v3"
)

//go:embed owners.yaml
var defaultFixture []byte

type Fixture struct {
	Owners []OwnerFixture `yaml:"owners"`
}

type OwnerFixture struct {
	FirstName string       `yaml:"first_name"`
	LastName  string       `yaml:"last_name"`
	Address   string       `yaml:"address"`
	City      string       `yaml:"city"`
	Telephone string       `yaml:"telephone"`
	Pets      []PetFixture `yaml:"pets"`
}

type PetFixture struct {
	Name      string         `yaml:"name"`
	BirthDate string         `yaml:"birth_date"`
	Type      string         `yaml:"type"`
	Visits    []VisitFixture `yaml:"visits"`
}

type VisitFixture struct {
	Date        string `yaml:"date"`
	Description string `yaml:"description"`
}

type Result struct {
	Created int
	Skipped int
}

func Parse(r io.Reader) (Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return Fixture{}, nil
		}
		return Fixture{}, fmt.Errorf("seed: decode: %w", err)
	}
	return f, nil
}

// Default es el fixture embebido (los diez owners clásicos).
func Default() (Fixture, error) {
	return Parse(bytes.NewReader(defaultFixture))
}

func (f Fixture) ToOwners() ([]owners.Owner, error) {
	out := make([]owners.Owner, 0, len(f.Owners))
	for i, of := range f.Owners {
		o := owners.Owner{
			FirstName: of.FirstName,
			LastName:  of.LastName,
			Address:   of.Address,
			City:      of.City,
			Telephone: of.Telephone,
		}
		for _, pf := range of.Pets {
			bd, err := parseDate(pf.BirthDate)
			if err != nil {
				return nil, fmt.Errorf("seed: owner #%d pet %q: birth_date: %w", i+1, pf.Name, err)
			}
			p := owners.Pet{
				Name:      pf.Name,
				BirthDate: bd,
				Type:      owners.PetType{Name: pf.Type},
			}
			for _, vf := range pf.Visits {
				d, err := parseDate(vf.Date)
				if err != nil {
					return nil, fmt.Errorf("seed: owner #%d pet %q: visit date: %w", i+1, pf.Name, err)
				}
				p.Visits = append(p.Visits, owners.Visit{Date: d, Description: strings.TrimSpace(vf.Description)})
			}
			o.Pets = append(o.Pets, p)
		}
		out = append(out, o)
	}
	return out, nil
}

// Load guarda cada owner vía el servicio. Un owner que ya existe (mismo
// nombre, apellido y teléfono) se saltea, así correr seed dos veces no duplica.
func Load(ctx context.Context, svc *owners.Service, f Fixture) (Result, error) {
	list, err := f.ToOwners()
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, o := range list {
		exists, err := alreadyLoaded(ctx, svc, o)
		if err != nil {
			return res, err
		}
		if exists {
			res.Skipped++
			continue
		}
		if _, err := svc.Import(ctx, o); err != nil {
			return res, fmt.Errorf("seed: %s %s: %w", o.FirstName, o.LastName, err)
		}
		res.Created++
	}
	return res, nil
}

func alreadyLoaded(ctx context.Context, svc *owners.Service, o owners.Owner) (bool, error) {
	page := owners.Pageable{Page: 0, Size: owners.MaxPageSize}
	for {
		res, err := svc.FindOwners(ctx, owners.Search{LastName: o.LastName}, page)
		if err != nil {
			return false, err
		}
		for _, c := range res.Content {
			if strings.EqualFold(c.LastName, strings.TrimSpace(o.LastName)) &&
				strings.EqualFold(c.FirstName, strings.TrimSpace(o.FirstName)) &&
				c.Telephone == strings.TrimSpace(o.Telephone) {
				return true, nil
			}
		}
		if !res.HasNext() {
			return false, nil
		}
		page.Page++
	}
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	return time.Parse("2006-01-02", s)
}
