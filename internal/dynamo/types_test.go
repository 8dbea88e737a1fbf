package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1.0, 2.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{1.0, math.Inf(1)}, false},
		{"with -Inf", State{math.Inf(-1), 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_Clone(t *testing.T) {
	s := State{1, 2}
	c := s.Clone()
	c[0] = 5
	if s[0] != 1 {
		t.Errorf("clone shares storage with original: %v", s)
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(0, 1, -3) {
		t.Error("expected finite values to pass")
	}
	if IsFinite(0, math.NaN()) {
		t.Error("expected NaN to fail")
	}
}

func TestSimulationErrorUnwrap(t *testing.T) {
	err := &SimulationError{Step: 3, Time: 0.06, Wrapped: ErrInvalidState}
	if !errors.Is(err, ErrInvalidState) {
		t.Error("expected SimulationError to unwrap to ErrInvalidState")
	}
	if err.Error() != "step 3 (t=0.0600): dynamo: invalid state (NaN or Inf detected)" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestBoundsError(t *testing.T) {
	err := BoundsError("dt", 0)
	if !errors.Is(err, ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}
