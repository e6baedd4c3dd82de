package ingest

import "sort"

// SparseSample is one (local year,month,day,hour) reading of a production
// or load series, possibly duplicated or missing hours.
type SparseSample struct {
	Year, Month, Day, Hour int
	Value                  float64
}

// AverageDuplicates groups samples by (y,m,d,h) and averages repeated
// readings for the same local hour (spec §4.2: "group by (y,m,d,h-local),
// average duplicates").
func AverageDuplicates(samples []SparseSample) []SparseSample {
	type key struct{ y, m, d, h int }
	sums := map[key]float64{}
	counts := map[key]int{}
	order := []key{}
	for _, s := range samples {
		k := key{s.Year, s.Month, s.Day, s.Hour}
		if counts[k] == 0 {
			order = append(order, k)
		}
		sums[k] += s.Value
		counts[k]++
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.y != b.y {
			return a.y < b.y
		}
		if a.m != b.m {
			return a.m < b.m
		}
		if a.d != b.d {
			return a.d < b.d
		}
		return a.h < b.h
	})
	out := make([]SparseSample, 0, len(order))
	for _, k := range order {
		out = append(out, SparseSample{Year: k.y, Month: k.m, Day: k.d, Hour: k.h, Value: sums[k] / float64(counts[k])})
	}
	return out
}

// AlignInterpolate fills a dense series of length n (one value per hour of
// the UTC axis) from sparse local-hour samples via piecewise-linear
// interpolation, with edge-fill (the first/last known value repeats past
// the sample range). axisIndexOf maps a sample's local (y,m,d,h) key to its
// axis index in [0,n), reporting false for keys that are not on the axis.
//
// Grounded on 01_ingest.py's _align_interp_ymdh (numpy piecewise-linear
// interp with edge-fill over a local-hour key axis).
func AlignInterpolate(n int, samples []SparseSample, axisIndexOf func(y, m, d, h int) (int, bool)) []float64 {
	avg := AverageDuplicates(samples)

	type point struct {
		idx int
		val float64
	}
	var points []point
	for _, s := range avg {
		if idx, ok := axisIndexOf(s.Year, s.Month, s.Day, s.Hour); ok {
			points = append(points, point{idx: idx, val: s.Value})
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].idx < points[j].idx })

	out := make([]float64, n)
	if len(points) == 0 {
		return out
	}

	// Edge-fill before the first and after the last known point.
	for i := 0; i < points[0].idx && i < n; i++ {
		out[i] = points[0].val
	}
	for i := points[len(points)-1].idx; i < n; i++ {
		out[i] = points[len(points)-1].val
	}

	for k := 0; k < len(points)-1; k++ {
		a, b := points[k], points[k+1]
		if b.idx <= a.idx {
			continue
		}
		out[a.idx] = a.val
		span := b.idx - a.idx
		for i := a.idx + 1; i < b.idx && i < n; i++ {
			frac := float64(i-a.idx) / float64(span)
			out[i] = a.val + frac*(b.val-a.val)
		}
	}
	out[points[len(points)-1].idx] = points[len(points)-1].val
	return out
}
