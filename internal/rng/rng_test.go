package rng

import (
	"testing"
	"unicode"
)

func TestNew_Deterministic(t *testing.T) {
	a := New(20, 0)
	b := New(20, 0)

	for i := 0; i < 100; i++ {
		x, y := a.Normal(4, 2), b.Normal(4, 2)
		if x != y {
			t.Fatalf("draw %d differs: %v != %v", i, x, y)
		}
	}
}

func TestNew_StreamsDiffer(t *testing.T) {
	a := New(20, 0)
	b := New(20, 1)

	same := 0
	for i := 0; i < 10; i++ {
		if a.Float64() == b.Float64() {
			same++
		}
	}
	if same == 10 {
		t.Error("expected different streams to produce different sequences")
	}
}

func TestSample(t *testing.T) {
	s := New(1, 0)

	got := s.Sample(10, 4)
	if len(got) != 4 {
		t.Fatalf("Sample(10, 4) returned %d values", len(got))
	}
	seen := make(map[int]bool)
	for _, v := range got {
		if v < 0 || v >= 10 {
			t.Errorf("value %d out of range", v)
		}
		if seen[v] {
			t.Errorf("value %d sampled twice", v)
		}
		seen[v] = true
	}

	if got := s.Sample(3, 10); len(got) != 3 {
		t.Errorf("Sample(3, 10) should clamp to 3, got %d", len(got))
	}
	if got := s.Sample(3, -1); len(got) != 0 {
		t.Errorf("Sample(3, -1) should be empty, got %d", len(got))
	}
}

func TestName(t *testing.T) {
	s := New(10, 0)
	name := s.Name(5)

	if len(name) != 5 {
		t.Fatalf("expected 5 letters, got %q", name)
	}
	if !unicode.IsUpper(rune(name[0])) {
		t.Errorf("expected Title case, got %q", name)
	}
	for _, c := range name[1:] {
		if !unicode.IsLower(c) {
			t.Errorf("expected lowercase tail, got %q", name)
		}
	}
}

func TestNormalVector_Moments(t *testing.T) {
	s := New(3, 0)
	v := s.NormalVector(20000, 4, 2)

	var sum float64
	for _, x := range v {
		sum += x
	}
	mean := sum / float64(len(v))
	if mean < 3.9 || mean > 4.1 {
		t.Errorf("sample mean %.3f too far from 4", mean)
	}
}
