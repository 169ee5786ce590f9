package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
}

func TestParseRunID(t *testing.T) {
	valid := NewRunID()
	tests := []struct {
		input    string
		hasError bool
	}{
		{valid.String(), false},
		{"", true},
		{"   ", true},
		{"not-a-uuid", true},
	}

	for _, tt := range tests {
		got, err := ParseRunID(tt.input)
		if tt.hasError {
			if err == nil {
				t.Errorf("ParseRunID(%q) expected error", tt.input)
			} else if !IsInputError(err) {
				t.Errorf("ParseRunID(%q) error should wrap ErrInvalidInput, got %v", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRunID(%q) unexpected error: %v", tt.input, err)
		}
		if got != valid {
			t.Errorf("ParseRunID(%q) = %q", tt.input, got)
		}
	}
}

func TestComputeMatrixHash(t *testing.T) {
	rows := [][]float64{{1, 2}, {3, 4}}
	a := ComputeMatrixHash([]string{"x", "y"}, rows)
	b := ComputeMatrixHash([]string{"x", "y"}, [][]float64{{1, 2}, {3, 4}})
	if !a.Equals(b) {
		t.Errorf("identical tables hashed differently: %s vs %s", a, b)
	}
	if a.Equals(ComputeMatrixHash([]string{"xy", ""}, rows)) {
		t.Error("column name boundaries must affect the hash")
	}
	if a.Equals(ComputeMatrixHash([]string{"x", "y"}, [][]float64{{1, 2}, {3, 4.0000001}})) {
		t.Error("values must affect the hash")
	}
}

func TestDegenerateStatisticsError(t *testing.T) {
	err := error(&DegenerateStatisticsError{
		Reason:       ReasonDegreesOfFreedom,
		I:            0,
		J:            2,
		Conditioning: []int{1},
		Samples:      4,
	})
	if !errors.Is(err, ErrDegenerateStatistics) {
		t.Fatalf("expected errors.Is to match ErrDegenerateStatistics")
	}
	var typed *DegenerateStatisticsError
	if !errors.As(err, &typed) || typed.J != 2 {
		t.Fatalf("expected errors.As to expose the pair, got %+v", typed)
	}
	want := "degenerate statistics: degrees_of_freedom_exhausted for pair (0, 2) given [1] with n=4"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
