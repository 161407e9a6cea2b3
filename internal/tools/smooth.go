package tools

import "github.com/chewxy/math32"

// smooth moves every sample toward the average of itself and its four axis
// neighbors. Neighbors without data are left out of the average.
func smooth(in Input) Edits {
	e := Edits{Mode: Adjust}
	for _, s := range footprint(in) {
		center := in.Live.HeightAt(s.Coord)

		sum, count := center, float32(1)
		for _, n := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			h := in.Live.HeightAt(s.Coord.Add(n[0], n[1]))
			if math32.IsNaN(h) {
				continue
			}
			sum += h
			count++
		}

		e.add(s.Coord, (sum/count-center)*in.Brush.Power)
	}
	return e
}
