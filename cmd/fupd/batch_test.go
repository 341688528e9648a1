package main

import (
	"reflect"
	"testing"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name  string
		items []int
		size  int
		want  [][]int
	}{
		{name: "even split", items: []int{1, 2, 3, 4}, size: 2, want: [][]int{{1, 2}, {3, 4}}},
		{name: "remainder", items: []int{1, 2, 3}, size: 2, want: [][]int{{1, 2}, {3}}},
		{name: "size larger than input", items: []int{1, 2}, size: 5, want: [][]int{{1, 2}}},
		{name: "empty input", items: nil, size: 2, want: nil},
		{name: "zero size takes everything at once", items: []int{1, 2, 3}, size: 0, want: [][]int{{1, 2, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chunk(tt.items, tt.size)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("chunk(%v, %d) = %v, want %v", tt.items, tt.size, got, tt.want)
			}
		})
	}
}
