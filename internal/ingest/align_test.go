package ingest

import "testing"

func TestAverageDuplicates(t *testing.T) {
	samples := []SparseSample{
		{Year: 2026, Month: 1, Day: 1, Hour: 0, Value: 10},
		{Year: 2026, Month: 1, Day: 1, Hour: 0, Value: 20},
		{Year: 2026, Month: 1, Day: 1, Hour: 1, Value: 5},
	}
	out := AverageDuplicates(samples)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].Value != 15 {
		t.Errorf("averaged hour0 = %v, want 15", out[0].Value)
	}
	if out[1].Value != 5 {
		t.Errorf("hour1 = %v, want 5", out[1].Value)
	}
}

func TestAlignInterpolate_EdgeFillAndLinear(t *testing.T) {
	// axis of 5 hours, samples only at index 1 (value 10) and index 3 (value 30).
	samples := []SparseSample{
		{Year: 2026, Month: 1, Day: 1, Hour: 1, Value: 10},
		{Year: 2026, Month: 1, Day: 1, Hour: 3, Value: 30},
	}
	axisIndexOf := func(y, m, d, h int) (int, bool) {
		if y == 2026 && m == 1 && d == 1 && h >= 0 && h < 5 {
			return h, true
		}
		return 0, false
	}

	out := AlignInterpolate(5, samples, axisIndexOf)
	want := []float64{10, 10, 20, 30, 30}
	for i, w := range want {
		if out[i] != w {
			t.Errorf("out[%d] = %v, want %v", i, out[i], w)
		}
	}
}
