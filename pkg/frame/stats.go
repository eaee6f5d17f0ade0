package frame

import (
	"github.com/chazu/sdfvm/pkg/march"
)

// Stats summarizes how the rays of a frame terminated.
type Stats struct {
	Samples         int
	Hits            int
	ProbeHits       int
	Divergent       int
	BudgetExhausted int
	TotalSteps      int
	MaxSteps        int
}

// MeanSteps is the average iteration count per sample.
func (s Stats) MeanSteps() float64 {
	if s.Samples == 0 {
		return 0
	}
	return float64(s.TotalSteps) / float64(s.Samples)
}

// HitRate is the fraction of samples that reached a surface.
func (s Stats) HitRate() float64 {
	if s.Samples == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Samples)
}

// Stats tallies the termination status of every sample.
func (f *Frame) Stats() Stats {
	st := Stats{Samples: len(f.Samples)}
	for _, s := range f.Samples {
		switch s.Status {
		case march.Hit:
			st.Hits++
			if s.Surface == march.SurfaceProbe {
				st.ProbeHits++
			}
		case march.Divergent:
			st.Divergent++
		case march.BudgetExhausted:
			st.BudgetExhausted++
		}
		st.TotalSteps += s.Steps
		st.MaxSteps = max(st.MaxSteps, s.Steps)
	}
	return st
}
