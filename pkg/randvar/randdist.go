/*
Copyright 2026 The Filebench Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package randvar

import (
	"fmt"
	"math"

	"github.com/filebench/filebench-sub000/pkg/fblog"
)

// Mode selects the distribution shape.
type Mode int

const (
	ModeUniform Mode = iota
	ModeGamma
	ModeTable
)

// TableEntry is one {percent, min, max} segment of a piecewise table
// distribution; valid tables sum percent to 100 across all entries.
type TableEntry struct {
	Percent float64
	Min     float64
	Max     float64
}

type tableBucket struct {
	base  float64
	width float64
}

// RandDist is a configured random variable: `Next() float64` plus
// min/round post-processing (spec.md §4.3).
type RandDist struct {
	Mode   Mode
	Source Source

	Min        float64
	Round      float64
	Mean       float64
	GammaShape float64

	table   []tableBucket
	gammaB  float64 // multiplier for gamma: (mean-min)/shape
}

// New constructs a RandDist. For ModeTable, pass the raw table
// entries; Init normalizes them.
func New(mode Mode, source Source, min, round, mean, gammaShape float64, table []TableEntry) *RandDist {
	d := &RandDist{
		Mode:       mode,
		Source:     source,
		Min:        min,
		Round:      round,
		Mean:       mean,
		GammaShape: gammaShape,
	}
	switch mode {
	case ModeGamma:
		shape := gammaShape
		if shape <= 0 {
			shape = 1
		}
		d.GammaShape = shape
		d.gammaB = (mean - min) / shape
	case ModeTable:
		d.buildTable(table)
	}
	return d
}

// buildTable normalizes {percent, min, max} entries into a 100-bucket
// lookup table, per spec.md §4.3: compute table-mean, adopt it if the
// workload's configured mean is 0, then normalize min to 0 and mean to
// 1 via (base-tablemin)/tablemean and range/tablemean.
func (d *RandDist) buildTable(entries []TableEntry) {
	total := 0.0
	for _, e := range entries {
		total += e.Percent
	}
	if total != 100 {
		fblog.Default.Error1f("randvar:table-sum",
			"table distribution percents sum to %.2f, not 100; padding/truncating to 100 slots", total)
	}

	tableMean := 0.0
	for _, e := range entries {
		tableMean += (e.Min + e.Max) / 2 * e.Percent
	}
	tableMean /= 100

	mean := d.Mean
	if mean == 0 {
		mean = tableMean
	}
	d.Mean = mean

	tableMin := math.Inf(1)
	for _, e := range entries {
		if e.Min < tableMin {
			tableMin = e.Min
		}
	}
	if len(entries) == 0 {
		tableMin = 0
	}

	buckets := make([]tableBucket, 0, 100)
	for _, e := range entries {
		slots := int(e.Percent + 0.5)
		base := 0.0
		width := 0.0
		if tableMean != 0 {
			base = (e.Min - tableMin) / tableMean
			width = (e.Max - e.Min) / tableMean
		}
		for i := 0; i < slots && len(buckets) < 100; i++ {
			buckets = append(buckets, tableBucket{base: base, width: width})
		}
	}
	// Pad (repeat the final bucket) or truncate to exactly 100
	// slots, per the ambiguity noted in spec.md §9 Open Question (i):
	// the source tolerates percents not summing to 100; we choose to
	// pad/truncate rather than error, and log the discrepancy above.
	for len(buckets) < 100 {
		if len(buckets) == 0 {
			buckets = append(buckets, tableBucket{base: 0, width: 1})
			continue
		}
		buckets = append(buckets, buckets[len(buckets)-1])
	}
	d.table = buckets[:100]
}

// Next draws the next sample, applying min/round post-processing.
func (d *RandDist) Next() float64 {
	var r float64
	switch d.Mode {
	case ModeUniform:
		u := clampUnit(d.Source.Float64())
		r = u*(2*(d.Mean-d.Min)) + d.Min
	case ModeGamma:
		x := d.nextGamma()
		r = d.gammaB*x + d.Min
	case ModeTable:
		u := clampUnit(d.Source.Float64())
		idx := int(u * 100)
		if idx > 99 {
			idx = 99
		}
		frac := u*100 - float64(idx)
		b := d.table[idx]
		r = (b.base+b.width*frac)*(d.Mean-d.Min) + d.Min
	default:
		panic(fmt.Sprintf("randvar: unknown mode %d", d.Mode))
	}
	if d.Round > 0 {
		r = math.Round(r/d.Round) * d.Round
	}
	return r
}

// nextGamma draws a standard gamma(shape) variate using Knuth's
// Algorithm G (shape <= 1, rejection) or Algorithm A (shape > 1,
// tangent transform), per spec.md §4.3.
func (d *RandDist) nextGamma() float64 {
	shape := d.GammaShape
	if shape <= 1 {
		return d.gammaAlgG(shape)
	}
	return d.gammaAlgA(shape)
}

// gammaAlgG implements Knuth's Algorithm G with p = e/(shape+e).
func (d *RandDist) gammaAlgG(shape float64) float64 {
	e := math.E
	p := e / (shape + e)
	for {
		u1 := clampUnit(d.Source.Float64())
		u2 := clampUnit(d.Source.Float64())
		if u1 <= p {
			x := math.Pow(u1/p, 1/shape)
			if u2 <= math.Exp(-x) {
				return x
			}
		} else {
			x := 1 - math.Log((1-u1)/(1-p))
			if x < 0 {
				continue
			}
			if u2 <= math.Pow(x, shape-1) {
				return x
			}
		}
	}
}

// gammaAlgA implements Knuth's Algorithm A via the tangent transform,
// valid for shape > 1.
func (d *RandDist) gammaAlgA(shape float64) float64 {
	a := shape - 1
	b := (shape - 1/(6*shape)) / a
	c := 2 / a
	cplus1 := c + 2
	for {
		u1 := clampUnit(d.Source.Float64())
		u2 := clampUnit(d.Source.Float64())
		v := c * (u1 - 0.5) / math.Sqrt(u1*(1-u1)+1e-12)
		x := a*b*math.Exp(v) + a
		if x <= 0 {
			continue
		}
		q := u1*u1*u1 + cplus1
		w := 4 * u2 * u1 * u1
		if w <= q || math.Log(w) <= a*math.Log(x/a)-x+a {
			return x
		}
	}
}
