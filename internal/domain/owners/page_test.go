package owners

import (
	"math"
	"testing"
)

func TestPageable_Normalize(t *testing.T) {
	cases := []struct {
		in   Pageable
		want Pageable
	}{
		{Pageable{}, Pageable{Page: 0, Size: DefaultPageSize}},
		{Pageable{Page: -3, Size: 10}, Pageable{Page: 0, Size: 10}},
		{Pageable{Page: 2, Size: 1000}, Pageable{Page: 2, Size: MaxPageSize}},
		{Pageable{Page: math.MaxInt, Size: 5}, Pageable{Page: MaxPage, Size: 5}},
	}
	for _, c := range cases {
		if got := c.in.Normalize(); got != c.want {
			t.Fatalf("Normalize(%+v) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestSlice(t *testing.T) {
	all := []int{1, 2, 3, 4, 5, 6, 7}

	p := Slice(all, Pageable{Page: 1, Size: 3})
	if len(p.Content) != 3 || p.Content[0] != 4 {
		t.Fatalf("unexpected content %v", p.Content)
	}
	if p.TotalElements != 7 || p.TotalPages != 3 || !p.HasNext() {
		t.Fatalf("unexpected page meta %+v", p)
	}

	last := Slice(all, Pageable{Page: 2, Size: 3})
	if len(last.Content) != 1 || last.HasNext() {
		t.Fatalf("unexpected last page %+v", last)
	}

	beyond := Slice(all, Pageable{Page: 9, Size: 3})
	if beyond.Content == nil || len(beyond.Content) != 0 {
		t.Fatalf("expected empty non-nil content, got %#v", beyond.Content)
	}
}

func TestNewPage_Empty(t *testing.T) {
	p := NewPage[Owner](nil, Pageable{}, 0)
	if p.Content == nil || p.TotalPages != 0 || p.Size != DefaultPageSize {
		t.Fatalf("unexpected empty page %+v", p)
	}
}

func TestPageable_Offset_DoesNotOverflow(t *testing.T) {
	if got := (Pageable{Page: math.MaxInt / 2, Size: 5}).Offset(); got != math.MaxInt {
		t.Fatalf("expected saturated offset, got %d", got)
	}
	if got := (Pageable{Page: 3, Size: 5}).Offset(); got != 15 {
		t.Fatalf("expected offset 15, got %d", got)
	}
	if got := (Pageable{Page: -1, Size: 5}).Offset(); got != 0 {
		t.Fatalf("expected offset 0 for negative page, got %d", got)
	}
}

func TestSlice_HugePage_ReturnsEmpty(t *testing.T) {
	all := []int{1, 2, 3}

	for _, page := range []int{3000000000000000000, math.MaxInt} {
		p := Slice(all, Pageable{Page: page, Size: 5})
		if len(p.Content) != 0 || p.TotalElements != 3 || p.TotalPages != 1 {
			t.Fatalf("page %d: unexpected page %+v", page, p)
		}
		if p.Number != MaxPage {
			t.Fatalf("page %d: expected number clamped to %d, got %d", page, MaxPage, p.Number)
		}
	}
}
