package owners

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"petclinic/internal/platform/timing"

	"github.com/go-chi/chi/v5"
)

// Nombres para marcar endpoints en timing.Tags.
const (
	HandlerListOwners = "http.owners.list"
	HandlerGetOwner   = "http.owners.get"
)

const dateLayout = "2006-01-02"

func RegisterRoutes(r chi.Router, svc *Service, in *timing.Interceptor) {
	r.Get("/pettypes", listPetTypesHandler(svc))

	r.Route("/owners", func(or chi.Router) {
		or.Get("/", in.Handler(HandlerListOwners, listOwnersHandler(svc)))
		or.Post("/", createOwnerHandler(svc))

		or.Get("/{ownerID}", in.Handler(HandlerGetOwner, getOwnerHandler(svc)))
		or.Put("/{ownerID}", updateOwnerHandler(svc))

		or.Post("/{ownerID}/pets", addPetHandler(svc))
		or.Put("/{ownerID}/pets/{petID}", updatePetHandler(svc))

		or.Post("/{ownerID}/pets/{petID}/visits", addVisitHandler(svc))
	})
}

type ownerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Telephone string `json:"telephone"`
}

type petRequest struct {
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"` // YYYY-MM-DD
	Type      string `json:"type"`
}

type visitRequest struct {
	Date        string `json:"date"` // YYYY-MM-DD opcional, default hoy
	Description string `json:"description"`
}

type ownerResponse struct {
	ID        string        `json:"id"`
	FirstName string        `json:"first_name"`
	LastName  string        `json:"last_name"`
	Address   string        `json:"address"`
	City      string        `json:"city"`
	Telephone string        `json:"telephone"`
	Pets      []petResponse `json:"pets"`
}

type petResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	BirthDate string          `json:"birth_date"`
	Type      string          `json:"type"`
	Visits    []visitResponse `json:"visits"`
}

type visitResponse struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

type petTypeResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type pageResponse struct {
	Content       []ownerResponse `json:"content"`
	Page          int             `json:"page"` // base 1, igual que el query param
	Size          int             `json:"size"`
	TotalElements int             `json:"total_elements"`
	TotalPages    int             `json:"total_pages"`
}

func listPetTypesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		types, err := svc.PetTypes(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]petTypeResponse, 0, len(types))
		for _, t := range types {
			out = append(out, petTypeResponse{ID: t.ID, Name: t.Name})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listOwnersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		page := 1
		if v := strings.TrimSpace(q.Get("page")); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > MaxPage+1 {
				http.Error(w, "page must be between 1 and "+strconv.Itoa(MaxPage+1), http.StatusBadRequest)
				return
			}
			page = n
		}
		size := 0
		if v := strings.TrimSpace(q.Get("size")); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				http.Error(w, "size must be a positive integer", http.StatusBadRequest)
				return
			}
			size = n
		}

		res, err := svc.FindOwners(r.Context(), Search{
			LastName:  q.Get("lastName"),
			FirstName: q.Get("firstName"),
		}, Pageable{Page: page - 1, Size: size})
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := pageResponse{
			Content:       make([]ownerResponse, 0, len(res.Content)),
			Page:          res.Number + 1,
			Size:          res.Size,
			TotalElements: res.TotalElements,
			TotalPages:    res.TotalPages,
		}
		for _, o := range res.Content {
			out.Content = append(out.Content, toOwnerResponse(o))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, err := svc.GetOwner(r.Context(), chi.URLParam(r, "ownerID"))
		if err != nil {
			writeError(w, err, "owner not found")
			return
		}
		writeJSON(w, http.StatusOK, toOwnerResponse(o))
	}
}

func createOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ownerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		o, err := svc.CreateOwner(r.Context(), req.toInput())
		if err != nil {
			writeError(w, err, "owner not found")
			return
		}
		writeJSON(w, http.StatusCreated, toOwnerResponse(o))
	}
}

func updateOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ownerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		o, err := svc.UpdateOwner(r.Context(), chi.URLParam(r, "ownerID"), req.toInput())
		if err != nil {
			writeError(w, err, "owner not found")
			return
		}
		writeJSON(w, http.StatusOK, toOwnerResponse(o))
	}
}

func addPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodePet(w, r)
		if !ok {
			return
		}

		p, err := svc.AddPet(r.Context(), chi.URLParam(r, "ownerID"), in)
		if err != nil {
			writeError(w, err, "owner not found")
			return
		}
		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodePet(w, r)
		if !ok {
			return
		}

		p, err := svc.UpdatePet(r.Context(), chi.URLParam(r, "ownerID"), chi.URLParam(r, "petID"), in)
		if err != nil {
			writeError(w, err, "pet not found")
			return
		}
		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func addVisitHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req visitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var date time.Time
		if strings.TrimSpace(req.Date) != "" {
			t, err := time.Parse(dateLayout, req.Date)
			if err != nil {
				http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			date = t
		}

		v, err := svc.AddVisit(r.Context(), chi.URLParam(r, "ownerID"), chi.URLParam(r, "petID"), VisitInput{
			Date:        date,
			Description: req.Description,
		})
		if err != nil {
			writeError(w, err, "pet not found")
			return
		}
		writeJSON(w, http.StatusCreated, toVisitResponse(v))
	}
}

func decodePet(w http.ResponseWriter, r *http.Request) (PetInput, bool) {
	var req petRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return PetInput{}, false
	}

	var bd time.Time
	if strings.TrimSpace(req.BirthDate) != "" {
		t, err := time.Parse(dateLayout, req.BirthDate)
		if err != nil {
			http.Error(w, "birth_date must be YYYY-MM-DD", http.StatusBadRequest)
			return PetInput{}, false
		}
		bd = t
	}

	return PetInput{Name: req.Name, BirthDate: bd, Type: req.Type}, true
}

func (req ownerRequest) toInput() OwnerInput {
	return OwnerInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Address:   req.Address,
		City:      req.City,
		Telephone: req.Telephone,
	}
}

func toOwnerResponse(o Owner) ownerResponse {
	out := ownerResponse{
		ID:        o.ID,
		FirstName: o.FirstName,
		LastName:  o.LastName,
		Address:   o.Address,
		City:      o.City,
		Telephone: o.Telephone,
		Pets:      make([]petResponse, 0, len(o.Pets)),
	}
	for _, p := range o.Pets {
		out.Pets = append(out.Pets, toPetResponse(p))
	}
	return out
}

func toPetResponse(p Pet) petResponse {
	out := petResponse{
		ID:        p.ID,
		Name:      p.Name,
		BirthDate: p.BirthDate.Format(dateLayout),
		Type:      p.Type.Name,
		Visits:    make([]visitResponse, 0, len(p.Visits)),
	}
	for _, v := range p.Visits {
		out.Visits = append(out.Visits, toVisitResponse(v))
	}
	return out
}

func toVisitResponse(v Visit) visitResponse {
	return visitResponse{
		ID:          v.ID,
		Date:        v.Date.Format(dateLayout),
		Description: v.Description,
	}
}

func writeError(w http.ResponseWriter, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, notFoundMsg, http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
