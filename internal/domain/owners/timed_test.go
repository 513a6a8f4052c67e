package owners

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"petclinic/internal/platform/logger"
	"petclinic/internal/platform/timing"
)

func timedFixture(methods ...string) (Repository, *testRepo, *bytes.Buffer) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: logger.Debug, Format: logger.FormatJSON, Output: &buf})
	repo := newTestRepo()
	in := timing.New(timing.NewTags(methods...), log)
	return NewTimedRepository(repo, in), repo, &buf
}

func loggedMethods(t *testing.T, buf *bytes.Buffer) []string {
	t.Helper()
	out := make([]string, 0)
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec struct {
			Method string `json:"method"`
		}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		out = append(out, rec.Method)
	}
	return out
}

func TestTimedRepository_OnlyTaggedMethodsAreLogged(t *testing.T) {
	timed, _, buf := timedFixture(MethodFindAll, MethodFindByLastName)
	ctx := context.Background()

	if err := timed.Save(ctx, Owner{ID: "o1", LastName: "Davis"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := timed.FindByID(ctx, "o1"); err != nil {
		t.Fatalf("find by id: %v", err)
	}
	page, err := timed.FindByLastName(ctx, "Dav", Pageable{})
	if err != nil {
		t.Fatalf("find by last name: %v", err)
	}
	if page.TotalElements != 1 {
		t.Fatalf("expected 1 owner, got %d", page.TotalElements)
	}
	if _, err := timed.FindAll(ctx, Pageable{}); err != nil {
		t.Fatalf("find all: %v", err)
	}

	got := loggedMethods(t, buf)
	want := []string{MethodFindByLastName, MethodFindAll}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected logged %v, got %v", want, got)
	}
}

func TestTimedRepository_PassesErrorsThrough(t *testing.T) {
	timed, _, buf := timedFixture(MethodFindByID)

	_, err := timed.FindByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got := loggedMethods(t, buf); len(got) != 1 || got[0] != MethodFindByID {
		t.Fatalf("expected failed call logged once, got %v", got)
	}
}

func TestTimedRepository_NilInterceptor(t *testing.T) {
	repo := newTestRepo()
	timed := NewTimedRepository(repo, nil)

	types, err := timed.FindPetTypes(context.Background())
	if err != nil || len(types) != len(DefaultPetTypes) {
		t.Fatalf("expected pet types, got %v err=%v", types, err)
	}
}
