package core

import (
	"errors"
	"testing"
)

func TestNewParameterError(t *testing.T) {
	err := NewParameterError("k_parameter", "missing thresholds")
	if err.Error() != "parameter error: k_parameter: missing thresholds" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestNewDataShapeError(t *testing.T) {
	err := NewDataShapeError("hourly vs commit buffer length", 23, 24)
	if err.Got != 23 || err.Want != 24 {
		t.Errorf("got/want not recorded correctly: %+v", err)
	}
}

func TestNewNumericError(t *testing.T) {
	err := NewNumericError("soc_arbi out of bounds", 17)
	if err.Index != 17 {
		t.Errorf("Index = %d, want 17", err.Index)
	}
}

func TestTransientIOError_Unwrap(t *testing.T) {
	inner := errors.New("connection reset")
	err := NewTransientIOError("persist run", inner)
	if !errors.Is(err, inner) {
		t.Errorf("errors.Is did not unwrap to inner error")
	}
}
