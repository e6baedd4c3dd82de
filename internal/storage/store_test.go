package storage

import (
	"math"
	"testing"

	"energy-core/internal/model"
)

func TestNanToNull(t *testing.T) {
	if got := nanToNull(math.NaN()); got != nil {
		t.Errorf("nanToNull(NaN) = %v, want nil", got)
	}
	if got := nanToNull(3.5); got != 3.5 {
		t.Errorf("nanToNull(3.5) = %v, want 3.5", got)
	}
}

func TestDeltaKOrNull(t *testing.T) {
	if got := deltaKOrNull(model.ProposerRow{HasDeltaK: false, DeltaK: 10}); got != nil {
		t.Errorf("deltaKOrNull without HasDeltaK = %v, want nil", got)
	}
	if got := deltaKOrNull(model.ProposerRow{HasDeltaK: true, DeltaK: 10}); got != 10.0 {
		t.Errorf("deltaKOrNull with HasDeltaK = %v, want 10", got)
	}
}

func TestIndexOrNull(t *testing.T) {
	if got := indexOrNull(-1); got != nil {
		t.Errorf("indexOrNull(-1) = %v, want nil", got)
	}
	if got := indexOrNull(5); got != 5 {
		t.Errorf("indexOrNull(5) = %v, want 5", got)
	}
}

func TestNullIfEmpty(t *testing.T) {
	if got := nullIfEmpty(""); got != nil {
		t.Errorf("nullIfEmpty(\"\") = %v, want nil", got)
	}
	if got := nullIfEmpty("K4"); got != "K4" {
		t.Errorf("nullIfEmpty(K4) = %v, want K4", got)
	}
}

func TestNullIfZero(t *testing.T) {
	if got := nullIfZero(0); got != nil {
		t.Errorf("nullIfZero(0) = %v, want nil", got)
	}
	if got := nullIfZero(1.0); got != 1.0 {
		t.Errorf("nullIfZero(1.0) = %v, want 1.0", got)
	}
}
