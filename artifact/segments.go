package artifact

import "sort"

// BadCountsPerChannel counts, for each channel, how many windows flagged it
// as bad (per-channel Bad flag, independent of the window-level Bad flag).
func BadCountsPerChannel(res DetectionResult) []int {
	counts := make([]int, len(res.ChannelNames))
	for _, w := range res.Windows {
		for c, m := range w.Channels {
			if m.Bad {
				counts[c]++
			}
		}
	}
	return counts
}

// BadSegments merges overlapping or adjacent bad windows (sorted by start;
// end1+gap >= start2 are merged) into contiguous segments, mergeGapSeconds
// controlling how large a gap between two bad windows still counts as
// adjacent.
func BadSegments(res DetectionResult, mergeGapSeconds float64) []Segment {
	var badIdx []int
	for i, w := range res.Windows {
		if w.Bad {
			badIdx = append(badIdx, i)
		}
	}
	if len(badIdx) == 0 {
		return nil
	}
	sort.SliceStable(badIdx, func(i, j int) bool {
		return res.Windows[badIdx[i]].TStartSec < res.Windows[badIdx[j]].TStartSec
	})

	nch := len(res.ChannelNames)
	var segs []Segment

	cur := Segment{
		TStartSec:            res.Windows[badIdx[0]].TStartSec,
		TEndSec:              res.Windows[badIdx[0]].TEndSec,
		FirstWindow:          badIdx[0],
		LastWindow:           badIdx[0],
		WindowCount:          0,
		BadWindowsPerChannel: make([]int, nch),
	}
	addWindow := func(s *Segment, idx int) {
		w := res.Windows[idx]
		s.WindowCount++
		if w.BadChannelCount > s.MaxBadChannels {
			s.MaxBadChannels = w.BadChannelCount
		}
		for c, m := range w.Channels {
			if m.Bad {
				s.BadWindowsPerChannel[c]++
			}
		}
		if w.TEndSec > s.TEndSec {
			s.TEndSec = w.TEndSec
		}
		s.LastWindow = idx
	}
	addWindow(&cur, badIdx[0])

	for _, idx := range badIdx[1:] {
		w := res.Windows[idx]
		if w.TStartSec <= cur.TEndSec+mergeGapSeconds {
			addWindow(&cur, idx)
			continue
		}
		segs = append(segs, cur)
		cur = Segment{
			TStartSec:            w.TStartSec,
			TEndSec:              w.TEndSec,
			FirstWindow:          idx,
			LastWindow:           idx,
			BadWindowsPerChannel: make([]int, nch),
		}
		addWindow(&cur, idx)
	}
	segs = append(segs, cur)
	return segs
}
