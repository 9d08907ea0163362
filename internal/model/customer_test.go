package model

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareCustomerIDs(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"12346", "12347", -1},
		{"9", "10", -1},
		{"18287", "12346", 1},
		{"12346", "12346", 0},
		{"12346", "A100", -1},
		{"A100", "12346", 1},
		{"A100", "B100", -1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareCustomerIDs(tt.a, tt.b))
		})
	}
}

func TestCompareCustomerIDs_Sort(t *testing.T) {
	ids := []string{"X1", "100", "12", "9", "A0"}
	slices.SortFunc(ids, CompareCustomerIDs)
	assert.Equal(t, []string{"9", "12", "100", "A0", "X1"}, ids)
}

func TestNewLineItem(t *testing.T) {
	li := NewLineItem(Transaction{Invoice: "489434", Quantity: 12, Price: 6.95})
	assert.InDelta(t, 83.4, li.Revenue, 1e-9)
	assert.Equal(t, "489434", li.Invoice)
}
