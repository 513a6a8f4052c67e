package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"petclinic/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	seen []string
}

func (c *countingObserver) ObserveRequest(method, route, status string) {
	c.seen = append(c.seen, method+" "+route+" "+status)
}

func TestAccessLog_UsesRoutePatternAndLevelByStatus(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: logger.Debug, Format: logger.FormatJSON, Output: &buf})
	obs := &countingObserver{}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(AccessLog(log, obs))
	r.Get("/owners/{ownerID}", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "owner not found", http.StatusNotFound)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/owners/42", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "warn", rec["level"])
	assert.Equal(t, "/owners/{ownerID}", rec["route"])
	assert.Equal(t, "/owners/42", rec["path"])
	assert.NotEmpty(t, rec["request_id"])

	assert.Equal(t, []string{"GET /owners/{ownerID} 404"}, obs.seen)
}

func TestAccessLog_UnmatchedRoute(t *testing.T) {
	obs := &countingObserver{}

	r := chi.NewRouter()
	r.Use(AccessLog(logger.Nop(), obs))
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, []string{"GET unmatched 404"}, obs.seen)
}
