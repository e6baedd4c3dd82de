package ingest

import (
	"testing"

	"energy-core/internal/params"
)

func TestBuildZoneMasks24_NoWrap(t *testing.T) {
	morn := params.WindowSpec{Start: 6, End: 10}
	aft := params.WindowSpec{Start: 17, End: 21}

	zm, err := BuildZoneMasks24(morn, aft)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	countAM, countPM, countOff := sumMask(zm.AM), sumMask(zm.PM), sumMask(zm.Off)
	if countAM != 4 {
		t.Errorf("mask_am = %v, want 4", countAM)
	}
	if countPM != 4 {
		t.Errorf("mask_pm = %v, want 4", countPM)
	}
	if countOff != 16 {
		t.Errorf("mask_off = %v, want 16", countOff)
	}

	for h := 0; h < 24; h++ {
		if zm.AM[h] == 1 && zm.PM[h] == 1 {
			t.Errorf("hour %d marked both am and pm", h)
		}
	}
}

func TestBuildZoneMasks24_Wrap(t *testing.T) {
	morn := params.WindowSpec{Start: 22, End: 2}
	aft := params.WindowSpec{Start: 10, End: 14}

	zm, err := BuildZoneMasks24(morn, aft)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantAM := map[int]bool{22: true, 23: true, 0: true, 1: true}
	for h := 0; h < 24; h++ {
		if zm.AM[h] == 1 != wantAM[h] {
			t.Errorf("hour %d: mask_am = %v, want %v", h, zm.AM[h] == 1, wantAM[h])
		}
	}

	wantPM := map[int]bool{10: true, 11: true, 12: true, 13: true}
	for h := 0; h < 24; h++ {
		if zm.PM[h] == 1 != wantPM[h] {
			t.Errorf("hour %d: mask_pm = %v, want %v", h, zm.PM[h] == 1, wantPM[h])
		}
	}
}

func sumMask(m [24]float64) int {
	n := 0
	for _, v := range m {
		if v == 1 {
			n++
		}
	}
	return n
}
