package channels

import (
	"sort"

	"github.com/abrezinsky/stageplot/internal/models"
)

// OutputPatch is the output channel list of a plot
type OutputPatch struct {
	channels []models.OutputChannel
	byOutput map[int]int // output id -> channel number
}

// NewOutputPatch returns n empty output channels
func NewOutputPatch(n int) *OutputPatch {
	p := &OutputPatch{}
	p.Resize(n)
	return p
}

// NewOutputPatchFrom takes ownership of chs and normalizes it like
// NewInputPatchFrom
func NewOutputPatchFrom(chs []models.OutputChannel) *OutputPatch {
	p := &OutputPatch{channels: chs}
	p.reindex()
	return p
}

func (p *OutputPatch) reindex() {
	p.byOutput = make(map[int]int, len(p.channels))
	for i := range p.channels {
		ch := &p.channels[i]
		ch.ChannelNum = i + 1
		if ch.OutputID == nil {
			continue
		}
		if _, dup := p.byOutput[*ch.OutputID]; dup {
			ch.OutputID = nil
			continue
		}
		p.byOutput[*ch.OutputID] = i + 1
	}
}

func (p *OutputPatch) inRange(ch int) bool {
	return ch >= 1 && ch <= len(p.channels)
}

func (p *OutputPatch) Len() int {
	return len(p.channels)
}

// Channels returns the live channel slice
func (p *OutputPatch) Channels() []models.OutputChannel {
	return p.channels
}

// Snapshot returns a deep copy of the channels
func (p *OutputPatch) Snapshot() []models.OutputChannel {
	return models.CloneOutputChannels(p.channels)
}

// Replace swaps in a new channel list, taking ownership of it
func (p *OutputPatch) Replace(chs []models.OutputChannel) {
	p.channels = chs
	p.reindex()
}

// Assign routes outputID to ch, clearing it from any other channel
func (p *OutputPatch) Assign(outputID, ch int) bool {
	if !p.inRange(ch) {
		return false
	}
	if prev, ok := p.byOutput[outputID]; ok && prev != ch {
		p.channels[prev-1].OutputID = nil
	}
	p.channels[ch-1].OutputID = models.IntPtr(outputID)
	p.reindex()
	return true
}

// Unassign clears ch and returns the output that was on it
func (p *OutputPatch) Unassign(ch int) (int, bool) {
	if !p.inRange(ch) || p.channels[ch-1].OutputID == nil {
		return 0, false
	}
	id := *p.channels[ch-1].OutputID
	p.channels[ch-1].OutputID = nil
	p.reindex()
	return id, true
}

// ChannelOf returns the channel outputID is on
func (p *OutputPatch) ChannelOf(outputID int) (int, bool) {
	ch, ok := p.byOutput[outputID]
	return ch, ok
}

// OutputAt returns the output on ch
func (p *OutputPatch) OutputAt(ch int) (int, bool) {
	if !p.inRange(ch) || p.channels[ch-1].OutputID == nil {
		return 0, false
	}
	return *p.channels[ch-1].OutputID, true
}

// NextAvailable is the lowest free output channel
func (p *OutputPatch) NextAvailable() (int, bool) {
	for i := range p.channels {
		if p.channels[i].OutputID == nil {
			return i + 1, true
		}
	}
	return 0, false
}

// NextAvailableStereoStart is the lowest odd free pair
func (p *OutputPatch) NextAvailableStereoStart() (int, bool) {
	return stereoStart(len(p.channels), func(ch int) bool {
		return p.channels[ch-1].OutputID == nil
	})
}

// Resize keeps channels below n and appends empty ones up to n
func (p *OutputPatch) Resize(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(p.channels) {
		p.channels = p.channels[:n]
	}
	for len(p.channels) < n {
		p.channels = append(p.channels, models.OutputChannel{ChannelNum: len(p.channels) + 1})
	}
	p.reindex()
}

// EvictStereoLinks returns the sorted, deduplicated links whose pair
// (start, start+1) fits within n channels. Even starts are dropped.
func EvictStereoLinks(links []int, n int) []int {
	seen := make(map[int]bool, len(links))
	out := make([]int, 0, len(links))
	for _, start := range links {
		if start < 1 || start%2 == 0 || start+1 > n || seen[start] {
			continue
		}
		seen[start] = true
		out = append(out, start)
	}
	sort.Ints(out)
	return out
}

// AddStereoLink returns links with start added, sorted
func AddStereoLink(links []int, start int) []int {
	for _, l := range links {
		if l == start {
			return links
		}
	}
	out := append(append([]int(nil), links...), start)
	sort.Ints(out)
	return out
}
