package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"petclinic/internal/domain/owners"
)

// Los placeholders $n aparecen siempre en orden ascendente: SQLite los trata
// como parámetros con nombre y los numera según su primera aparición.

type OwnersRepo struct {
	db *sql.DB
}

func NewOwnersRepo(db *sql.DB) *OwnersRepo {
	return &OwnersRepo{db: db}
}

var readOnly = &sql.TxOptions{ReadOnly: true}

func (r *OwnersRepo) FindPetTypes(ctx context.Context) ([]owners.PetType, error) {
	var out []owners.PetType
	err := r.inTx(ctx, readOnly, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT id, name FROM types ORDER BY name`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]owners.PetType, 0)
		for rows.Next() {
			var t owners.PetType
			if err := rows.Scan(&t.ID, &t.Name); err != nil {
				return err
			}
			out = append(out, t)
		}
		return rows.Err()
	})
	return out, err
}

func (r *OwnersRepo) FindByLastName(ctx context.Context, lastName string, page owners.Pageable) (owners.Page[owners.Owner], error) {
	return r.findPage(ctx, `LOWER(o.last_name) LIKE $1 ESCAPE '\'`, []any{strings.ToLower(escapeLike(lastName)) + "%"}, page)
}

func (r *OwnersRepo) FindByFirstName(ctx context.Context, firstName string, page owners.Pageable) (owners.Page[owners.Owner], error) {
	return r.findPage(ctx, `LOWER(o.first_name) LIKE $1 ESCAPE '\'`, []any{"%" + strings.ToLower(escapeLike(firstName)) + "%"}, page)
}

func (r *OwnersRepo) FindAll(ctx context.Context, page owners.Pageable) (owners.Page[owners.Owner], error) {
	return r.findPage(ctx, "", nil, page)
}

func (r *OwnersRepo) FindByID(ctx context.Context, id string) (owners.Owner, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return owners.Owner{}, owners.ErrNotFound
	}

	var o owners.Owner
	err := r.inTx(ctx, readOnly, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			SELECT o.id, o.first_name, o.last_name, o.address, o.city, o.telephone
			FROM owners o
			WHERE o.id = $1
		`, id)
		if err := row.Scan(&o.ID, &o.FirstName, &o.LastName, &o.Address, &o.City, &o.Telephone); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return owners.ErrNotFound
			}
			return err
		}

		pets, err := loadPets(ctx, tx, []string{o.ID})
		if err != nil {
			return err
		}
		o.Pets = pets[o.ID]
		return nil
	})
	if err != nil {
		return owners.Owner{}, err
	}
	if o.Pets == nil {
		o.Pets = make([]owners.Pet, 0)
	}
	return o, nil
}

func (r *OwnersRepo) Save(ctx context.Context, o owners.Owner) error {
	if strings.TrimSpace(o.ID) == "" {
		return errors.New("owner id required")
	}

	return r.inTx(ctx, nil, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO owners (id, first_name, last_name, address, city, telephone)
			VALUES ($1,$2,$3,$4,$5,$6)
			ON CONFLICT (id) DO UPDATE SET
				first_name = excluded.first_name,
				last_name = excluded.last_name,
				address = excluded.address,
				city = excluded.city,
				telephone = excluded.telephone
		`, o.ID, o.FirstName, o.LastName, o.Address, o.City, o.Telephone); err != nil {
			return fmt.Errorf("save owner: %w", err)
		}

		for _, p := range o.Pets {
			if strings.TrimSpace(p.ID) == "" {
				return errors.New("pet id required")
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO pets (id, owner_id, name, birth_date, type_id)
				VALUES ($1,$2,$3,$4,$5)
				ON CONFLICT (id) DO UPDATE SET
					name = excluded.name,
					birth_date = excluded.birth_date,
					type_id = excluded.type_id
			`, p.ID, o.ID, p.Name, p.BirthDate, p.Type.ID); err != nil {
				return fmt.Errorf("save pet %s: %w", p.ID, err)
			}

			for _, v := range p.Visits {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO visits (id, pet_id, visit_date, description)
					VALUES ($1,$2,$3,$4)
					ON CONFLICT (id) DO UPDATE SET
						visit_date = excluded.visit_date,
						description = excluded.description
				`, v.ID, p.ID, v.Date, v.Description); err != nil {
					return fmt.Errorf("save visit %s: %w", v.ID, err)
				}
			}
		}
		return nil
	})
}

// findPage corre COUNT + página en la misma transacción read-only.
// where usa $1 si trae args; LIMIT/OFFSET toman los siguientes.
func (r *OwnersRepo) findPage(ctx context.Context, where string, args []any, page owners.Pageable) (owners.Page[owners.Owner], error) {
	page = page.Normalize()

	clause := ""
	if where != "" {
		clause = " WHERE " + where
	}

	var (
		total   int
		content []owners.Owner
	)
	err := r.inTx(ctx, readOnly, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM owners o`+clause, args...).Scan(&total); err != nil {
			return err
		}

		n := len(args)
		query := fmt.Sprintf(`
			SELECT o.id, o.first_name, o.last_name, o.address, o.city, o.telephone
			FROM owners o%s
			ORDER BY o.last_name, o.first_name, o.id
			LIMIT $%d OFFSET $%d
		`, clause, n+1, n+2)

		pageArgs := append(append([]any{}, args...), page.Size, page.Offset())
		rows, err := tx.QueryContext(ctx, query, pageArgs...)
		if err != nil {
			return err
		}
		defer rows.Close()

		content = make([]owners.Owner, 0, page.Size)
		ids := make([]string, 0, page.Size)
		for rows.Next() {
			var o owners.Owner
			if err := rows.Scan(&o.ID, &o.FirstName, &o.LastName, &o.Address, &o.City, &o.Telephone); err != nil {
				return err
			}
			content = append(content, o)
			ids = append(ids, o.ID)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		pets, err := loadPets(ctx, tx, ids)
		if err != nil {
			return err
		}
		for i := range content {
			content[i].Pets = pets[content[i].ID]
			if content[i].Pets == nil {
				content[i].Pets = make([]owners.Pet, 0)
			}
		}
		return nil
	})
	if err != nil {
		return owners.Page[owners.Owner]{}, err
	}

	return owners.NewPage(content, page, total), nil
}

// loadPets trae mascotas (con tipo y visitas) agrupadas por owner_id.
func loadPets(ctx context.Context, tx *sql.Tx, ownerIDs []string) (map[string][]owners.Pet, error) {
	out := make(map[string][]owners.Pet, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return out, nil
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT p.id, p.owner_id, p.name, p.birth_date, t.id, t.name
		FROM pets p
		JOIN types t ON t.id = p.type_id
		WHERE p.owner_id IN (`+placeholders(1, len(ownerIDs))+`)
		ORDER BY p.name, p.id
	`, toArgs(ownerIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type petRef struct {
		ownerID string
		idx     int
	}
	refs := make(map[string]petRef)
	petIDs := make([]string, 0)

	for rows.Next() {
		var (
			p       owners.Pet
			ownerID string
		)
		if err := rows.Scan(&p.ID, &ownerID, &p.Name, &p.BirthDate, &p.Type.ID, &p.Type.Name); err != nil {
			return nil, err
		}
		p.BirthDate = p.BirthDate.UTC()
		p.Visits = make([]owners.Visit, 0)
		out[ownerID] = append(out[ownerID], p)
		refs[p.ID] = petRef{ownerID: ownerID, idx: len(out[ownerID]) - 1}
		petIDs = append(petIDs, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(petIDs) == 0 {
		return out, nil
	}

	vrows, err := tx.QueryContext(ctx, `
		SELECT v.id, v.pet_id, v.visit_date, v.description
		FROM visits v
		WHERE v.pet_id IN (`+placeholders(1, len(petIDs))+`)
		ORDER BY v.visit_date, v.id
	`, toArgs(petIDs)...)
	if err != nil {
		return nil, err
	}
	defer vrows.Close()

	for vrows.Next() {
		var v owners.Visit
		if err := vrows.Scan(&v.ID, &v.PetID, &v.Date, &v.Description); err != nil {
			return nil, err
		}
		v.Date = v.Date.UTC()
		ref, ok := refs[v.PetID]
		if !ok {
			continue
		}
		pets := out[ref.ownerID]
		pets[ref.idx].Visits = append(pets[ref.idx].Visits, v)
	}
	return out, vrows.Err()
}

func (r *OwnersRepo) inTx(ctx context.Context, opts *sql.TxOptions, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// placeholders(1, 3) => "$1,$2,$3"
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ",")
}

func toArgs(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
