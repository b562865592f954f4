package robuststat

import "math"

// RewardShaper booleanizes a raw gate signal with two optional behaviors:
// dwell (raw must remain true for DwellSeconds before the output turns on)
// and refractory (after an on->off transition, wait RefractorySeconds
// before allowing another turn-on). Ported from the original's
// qeeg::RewardShaper.
type RewardShaper struct {
	dwellSeconds      float64
	refractorySeconds float64

	dwellAccumSec    float64
	outPrev          bool
	lastOffTimeSec   float64
}

// NewRewardShaper creates a shaper with the given dwell/refractory durations.
func NewRewardShaper(dwellSeconds, refractorySeconds float64) *RewardShaper {
	s := &RewardShaper{}
	s.SetDwellSeconds(dwellSeconds)
	s.SetRefractorySeconds(refractorySeconds)
	s.lastOffTimeSec = math.NaN()
	return s
}

// SetDwellSeconds configures the dwell duration; non-positive disables it.
func (s *RewardShaper) SetDwellSeconds(v float64) {
	if isFinite(v) && v > 0 {
		s.dwellSeconds = v
	} else {
		s.dwellSeconds = 0
		s.dwellAccumSec = 0
	}
}

// SetRefractorySeconds configures the refractory duration; non-positive disables it.
func (s *RewardShaper) SetRefractorySeconds(v float64) {
	if isFinite(v) && v > 0 {
		s.refractorySeconds = v
	} else {
		s.refractorySeconds = 0
	}
}

// DwellSeconds returns the configured dwell duration.
func (s *RewardShaper) DwellSeconds() float64 { return s.dwellSeconds }

// RefractorySeconds returns the configured refractory duration.
func (s *RewardShaper) RefractorySeconds() float64 { return s.refractorySeconds }

// Reset clears all shaper state.
func (s *RewardShaper) Reset() {
	s.dwellAccumSec = 0
	s.outPrev = false
	s.lastOffTimeSec = math.NaN()
}

// Update advances the gate by one step and returns the shaped reward.
//
//   - rawReward: the instantaneous reward condition.
//   - dtSeconds: elapsed time since the previous update, used for dwell accumulation.
//   - tEndSec: the current update timestamp, used for refractory.
//   - freeze: forces the output off and records an off-time stamp.
func (s *RewardShaper) Update(rawReward bool, dtSeconds float64, tEndSec float64, freeze bool) bool {
	dt := 0.0
	if isFinite(dtSeconds) && dtSeconds > 0 {
		dt = dtSeconds
	}

	if freeze || !rawReward {
		s.dwellAccumSec = 0
		if s.outPrev && isFinite(tEndSec) {
			s.lastOffTimeSec = tEndSec
		}
		s.outPrev = false
		return false
	}

	if s.dwellSeconds > 0 {
		s.dwellAccumSec += dt
		if s.dwellAccumSec < s.dwellSeconds {
			s.outPrev = false
			return false
		}
	}

	if s.outPrev {
		return true
	}

	if s.refractorySeconds > 0 && isFinite(s.lastOffTimeSec) && isFinite(tEndSec) {
		since := tEndSec - s.lastOffTimeSec
		if !isFinite(since) || since < s.refractorySeconds {
			return false
		}
	}

	s.outPrev = true
	return true
}
