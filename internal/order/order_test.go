package order

import (
	"reflect"
	"testing"
)

func TestLargest(t *testing.T) {
	values := []float64{3, 9, 1, 9, 5, 7}
	key := func(i int) float64 { return values[i] }

	tests := []struct {
		name string
		k    int
		want []int
	}{
		{"top 1", 1, []int{1}},
		{"ties keep index order", 2, []int{1, 3}},
		{"top 4", 4, []int{1, 3, 5, 4}},
		{"k larger than n", 10, []int{1, 3, 5, 4, 0, 2}},
		{"k zero", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Largest(len(values), tt.k, key)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Largest(k=%d) = %v, want %v", tt.k, got, tt.want)
			}
		})
	}
}

func TestSmallest(t *testing.T) {
	values := []float64{3, 1, 1, 9, 0}
	key := func(i int) float64 { return values[i] }

	got := Smallest(len(values), 3, key)
	want := []int{4, 1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Smallest(3) = %v, want %v", got, want)
	}
}

func TestLargest_AllEqual(t *testing.T) {
	got := Largest(5, 3, func(int) float64 { return 1 })
	want := []int{0, 1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Largest on equal values = %v, want %v", got, want)
	}
}
