package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"petclinic/internal/platform/logger"
	"petclinic/internal/platform/metrics"
	"petclinic/internal/router"
)

// syncBuffer: el server de httptest escribe logs desde otra goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestServer(t *testing.T, methods []string) (*httptest.Server, *syncBuffer) {
	t.Helper()
	logs := &syncBuffer{}
	ts := httptest.NewServer(router.NewRouter(router.Options{
		Logger:       logger.New(logger.Options{Level: logger.Debug, Format: logger.FormatJSON, Output: logs}),
		TimedMethods: methods,
		Metrics:      metrics.New(),
	}))
	t.Cleanup(ts.Close)
	return ts, logs
}

func TestHTTP_EndToEnd_OwnerPetVisit(t *testing.T) {
	ts, logs := newTestServer(t, nil)

	// 1) Alta de owner
	var owner struct {
		ID string `json:"id"`
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/owners", map[string]any{
			"first_name": "George",
			"last_name":  "Franklin",
			"address":    "110 W. Liberty St.",
			"city":       "Madison",
			"telephone":  "6085551023",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create owner, got %d body=%s", st, string(body))
		}
		mustDecode(t, body, &owner)
		if owner.ID == "" {
			t.Fatalf("expected owner id")
		}
	}

	// 2) Búsqueda por apellido (case-insensitive, prefijo)
	{
		st, body := doReq(t, ts.URL, "GET", "/owners?lastName=fran", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 search, got %d body=%s", st, string(body))
		}
		var page struct {
			Content []struct {
				ID string `json:"id"`
			} `json:"content"`
			Page          int `json:"page"`
			TotalElements int `json:"total_elements"`
		}
		mustDecode(t, body, &page)
		if page.TotalElements != 1 || page.Content[0].ID != owner.ID || page.Page != 1 {
			t.Fatalf("unexpected search page: %s", string(body))
		}
	}

	// 3) Alta de mascota
	var pet struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/owners/"+owner.ID+"/pets", map[string]any{
			"name":       "Leo",
			"birth_date": "2010-09-07",
			"type":       "cat",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 add pet, got %d body=%s", st, string(body))
		}
		mustDecode(t, body, &pet)
		if pet.Type != "cat" {
			t.Fatalf("expected cat, got %q", pet.Type)
		}
	}

	// 4) Mascota duplicada => 400
	{
		st, body := doReq(t, ts.URL, "POST", "/owners/"+owner.ID+"/pets", map[string]any{
			"name":       "leo",
			"birth_date": "2011-01-01",
			"type":       "dog",
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 duplicate pet, got %d body=%s", st, string(body))
		}
	}

	// 5) Visita
	{
		st, body := doReq(t, ts.URL, "POST", "/owners/"+owner.ID+"/pets/"+pet.ID+"/visits", map[string]any{
			"date":        "2024-03-01",
			"description": "rabies shot",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 add visit, got %d body=%s", st, string(body))
		}
	}

	// 6) Detalle con mascotas y visitas
	{
		st, body := doReq(t, ts.URL, "GET", "/owners/"+owner.ID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get owner, got %d body=%s", st, string(body))
		}
		var got struct {
			Pets []struct {
				Name   string `json:"name"`
				Visits []struct {
					Date        string `json:"date"`
					Description string `json:"description"`
				} `json:"visits"`
			} `json:"pets"`
		}
		mustDecode(t, body, &got)
		if len(got.Pets) != 1 || len(got.Pets[0].Visits) != 1 || got.Pets[0].Visits[0].Date != "2024-03-01" {
			t.Fatalf("unexpected owner detail: %s", string(body))
		}
	}

	// 7) Update de owner
	{
		st, body := doReq(t, ts.URL, "PUT", "/owners/"+owner.ID, map[string]any{
			"first_name": "George",
			"last_name":  "Franklin",
			"address":    "110 W. Liberty St.",
			"city":       "Monona",
			"telephone":  "6085551023",
		})
		if st != http.StatusOK || !strings.Contains(string(body), `"city":"Monona"`) {
			t.Fatalf("expected 200 update owner, got %d body=%s", st, string(body))
		}
	}

	// 8) Los métodos marcados por defecto dejaron su línea de tiempos
	out := logs.String()
	for _, method := range []string{"owners.FindByLastName", "http.owners.list"} {
		if !strings.Contains(out, `"method":"`+method+`"`) {
			t.Fatalf("expected execution time logged for %s, logs=%s", method, out)
		}
	}
	if strings.Contains(out, `"method":"owners.Save"`) {
		t.Fatalf("owners.Save is not tagged by default but was timed")
	}
}

func TestHTTP_Validation(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	st, body := doReq(t, ts.URL, "POST", "/owners", map[string]any{
		"first_name": "A",
		"last_name":  "B",
		"address":    "C",
		"city":       "D",
		"telephone":  "not-a-phone",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid telephone, got %d body=%s", st, string(body))
	}

	st, _ = doReq(t, ts.URL, "GET", "/owners/does-not-exist", nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 unknown owner, got %d", st)
	}

	st, _ = doReq(t, ts.URL, "GET", "/owners?page=0", nil)
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for page=0, got %d", st)
	}

	st, _ = doReq(t, ts.URL, "POST", "/owners/does-not-exist/pets", map[string]any{
		"name": "Rex", "birth_date": "2020-01-01", "type": "dog",
	})
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 pet for unknown owner, got %d", st)
	}
}

func TestHTTP_ListOwners_PagingEdges(t *testing.T) {
	ts, _ := newTestServer(t, []string{})

	for i := 0; i < 7; i++ {
		st, body := doReq(t, ts.URL, "POST", "/owners", map[string]any{
			"first_name": "Owner",
			"last_name":  "Davis",
			"address":    "638 Cardinal Ave.",
			"city":       "Sun Prairie",
			"telephone":  "6085551749",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create owner, got %d body=%s", st, string(body))
		}
	}

	type pageBody struct {
		Content       []json.RawMessage `json:"content"`
		Page          int               `json:"page"`
		Size          int               `json:"size"`
		TotalElements int               `json:"total_elements"`
		TotalPages    int               `json:"total_pages"`
	}

	// Números de página enormes => 400, nunca 500
	for _, page := range []string{"3000000000000000000", "9223372036854775807", "99999999999999999999"} {
		st, body := doReq(t, ts.URL, "GET", "/owners?page="+page+"&size=5", nil)
		if st != http.StatusBadRequest {
			t.Fatalf("page=%s: expected 400, got %d body=%s", page, st, string(body))
		}
	}

	// size por encima del máximo se recorta
	{
		st, body := doReq(t, ts.URL, "GET", "/owners?size=1000", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", st, string(body))
		}
		var got pageBody
		mustDecode(t, body, &got)
		if got.Size != 100 || len(got.Content) != 7 || got.TotalPages != 1 {
			t.Fatalf("unexpected capped page: %s", string(body))
		}
	}

	// página pasada el final => contenido vacío, totales correctos
	{
		st, body := doReq(t, ts.URL, "GET", "/owners?page=5&size=3", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", st, string(body))
		}
		var got pageBody
		mustDecode(t, body, &got)
		if got.Content == nil || len(got.Content) != 0 || got.Page != 5 || got.TotalElements != 7 || got.TotalPages != 3 {
			t.Fatalf("unexpected page past the end: %s", string(body))
		}
	}

	// última página parcial
	{
		st, body := doReq(t, ts.URL, "GET", "/owners?page=3&size=3", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", st, string(body))
		}
		var got pageBody
		mustDecode(t, body, &got)
		if len(got.Content) != 1 {
			t.Fatalf("expected 1 owner on last page, got %s", string(body))
		}
	}
}

func TestHTTP_PetTypes(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	st, body := doReq(t, ts.URL, "GET", "/pettypes", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 pettypes, got %d", st)
	}
	var types []struct {
		Name string `json:"name"`
	}
	mustDecode(t, body, &types)
	if len(types) != 6 || types[0].Name != "bird" {
		t.Fatalf("unexpected pet types: %s", string(body))
	}
}

func TestHTTP_MetricsExposeTimedMethods(t *testing.T) {
	ts, _ := newTestServer(t, []string{"owners.FindAll"})

	if st, _ := doReq(t, ts.URL, "GET", "/owners", nil); st != http.StatusOK {
		t.Fatalf("expected 200 list owners, got %d", st)
	}

	st, body := doReq(t, ts.URL, "GET", "/metrics", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 metrics, got %d", st)
	}
	text := string(body)
	if !strings.Contains(text, `petclinic_method_duration_seconds_count{method="owners.FindAll",outcome="ok"} 1`) {
		t.Fatalf("expected timed method histogram, got:\n%s", text)
	}
	if !strings.Contains(text, `petclinic_http_requests_total{method="GET",route="/owners`) {
		t.Fatalf("expected request counter by route pattern, got:\n%s", text)
	}
}

func TestHTTP_EmptyTimedMethods_DisablesTiming(t *testing.T) {
	ts, logs := newTestServer(t, []string{})

	if st, _ := doReq(t, ts.URL, "GET", "/owners", nil); st != http.StatusOK {
		t.Fatalf("expected 200 list owners, got %d", st)
	}
	if strings.Contains(logs.String(), "execution time") {
		t.Fatalf("expected no timing logs, got %s", logs.String())
	}
}

func TestHTTP_Health(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	st, body := doReq(t, ts.URL, "GET", "/health", nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("expected 200 ok, got %d %q", st, string(body))
	}
}

// -------------------------
// helpers
// -------------------------

func doReq(t *testing.T, baseURL, method, path string, body any) (int, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out
}

func mustDecode(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("decode: %v body=%s", err, string(body))
	}
}
