// Package channels holds the console patch: which item feeds each input
// channel and which output each output channel drives.
//
// The channel slices are the source of truth. Lookups by item or output id
// go through indexes rebuilt by reindex after every mutation batch.
package channels

import (
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/abrezinsky/stageplot/internal/models"
)

// InputPatch is the input channel list of a plot
type InputPatch struct {
	channels []models.InputChannel
	byItem   map[int]int // item id -> channel number
}

// NewInputPatch returns n empty channels
func NewInputPatch(n int) *InputPatch {
	p := &InputPatch{}
	p.Resize(n)
	return p
}

// NewInputPatchFrom takes ownership of chs. Channel numbers are normalized
// to slot index + 1 and any item patched to more than one channel keeps
// only its lowest channel.
func NewInputPatchFrom(chs []models.InputChannel) *InputPatch {
	p := &InputPatch{channels: chs}
	p.reindex()
	return p
}

func (p *InputPatch) reindex() {
	p.byItem = make(map[int]int, len(p.channels))
	for i := range p.channels {
		ch := &p.channels[i]
		ch.ChannelNum = i + 1
		if ch.ItemID == nil {
			continue
		}
		if _, dup := p.byItem[*ch.ItemID]; dup {
			ch.ItemID = nil
			ch.Color = ""
			continue
		}
		p.byItem[*ch.ItemID] = i + 1
	}
}

func (p *InputPatch) inRange(ch int) bool {
	return ch >= 1 && ch <= len(p.channels)
}

// Len is the channel count
func (p *InputPatch) Len() int {
	return len(p.channels)
}

// Channels returns the live channel slice. Callers must not retain it
// across mutations.
func (p *InputPatch) Channels() []models.InputChannel {
	return p.channels
}

// Snapshot returns a deep copy of the channels
func (p *InputPatch) Snapshot() []models.InputChannel {
	return models.CloneInputChannels(p.channels)
}

// Replace swaps in a new channel list, taking ownership of it
func (p *InputPatch) Replace(chs []models.InputChannel) {
	p.channels = chs
	p.reindex()
}

// Channel returns a copy of channel ch
func (p *InputPatch) Channel(ch int) (models.InputChannel, bool) {
	if !p.inRange(ch) {
		return models.InputChannel{}, false
	}
	return p.channels[ch-1].Clone(), true
}

// Assign patches itemID to ch, unpatching it from any other channel.
// An empty channel name is seeded from itemName. Out of range is a no-op.
func (p *InputPatch) Assign(itemID, ch int, itemName string) bool {
	if !p.inRange(ch) {
		return false
	}
	if prev, ok := p.byItem[itemID]; ok && prev != ch {
		p.channels[prev-1].ItemID = nil
		p.channels[prev-1].Color = ""
	}
	target := &p.channels[ch-1]
	target.ItemID = models.IntPtr(itemID)
	if target.Name == "" {
		target.Name = itemName
	}
	p.reindex()
	return true
}

// Unassign clears the item and color on ch. Name and short name stay.
func (p *InputPatch) Unassign(ch int) bool {
	if !p.inRange(ch) {
		return false
	}
	target := &p.channels[ch-1]
	if target.ItemID == nil && target.Color == "" {
		return false
	}
	target.ItemID = nil
	target.Color = ""
	p.reindex()
	return true
}

// ClearItem unpatches itemID wherever it is. Returns the channel it was on.
func (p *InputPatch) ClearItem(itemID int) int {
	ch, ok := p.byItem[itemID]
	if !ok {
		return 0
	}
	p.Unassign(ch)
	return ch
}

// ClearAll unpatches every channel
func (p *InputPatch) ClearAll() {
	for i := range p.channels {
		p.channels[i].ItemID = nil
		p.channels[i].Color = ""
	}
	p.reindex()
}

// RenameItem copies an item's new name onto its channel, if patched
func (p *InputPatch) RenameItem(itemID int, name string) bool {
	ch, ok := p.byItem[itemID]
	if !ok {
		return false
	}
	p.channels[ch-1].Name = name
	return true
}

// ChannelOf returns the channel itemID is patched to
func (p *InputPatch) ChannelOf(itemID int) (int, bool) {
	ch, ok := p.byItem[itemID]
	return ch, ok
}

// ItemAt returns the item patched to ch
func (p *InputPatch) ItemAt(ch int) (int, bool) {
	if !p.inRange(ch) || p.channels[ch-1].ItemID == nil {
		return 0, false
	}
	return *p.channels[ch-1].ItemID, true
}

// Patched returns the item->channel index as a fresh map
func (p *InputPatch) Patched() map[int]int {
	out := make(map[int]int, len(p.byItem))
	for k, v := range p.byItem {
		out[k] = v
	}
	return out
}

// NextAvailable is the lowest channel with no item
func (p *InputPatch) NextAvailable() (int, bool) {
	for i := range p.channels {
		if p.channels[i].ItemID == nil {
			return i + 1, true
		}
	}
	return 0, false
}

// NextAvailableStereoStart is the lowest odd channel c where c and c+1
// both have no item
func (p *InputPatch) NextAvailableStereoStart() (int, bool) {
	return stereoStart(len(p.channels), func(ch int) bool {
		return p.channels[ch-1].ItemID == nil
	})
}

// Resize keeps channels below n and appends empty ones up to n
func (p *InputPatch) Resize(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(p.channels) {
		p.channels = p.channels[:n]
	}
	for len(p.channels) < n {
		p.channels = append(p.channels, models.InputChannel{ChannelNum: len(p.channels) + 1})
	}
	p.reindex()
}

// TruncateShortNames cuts every short name to max runes. Returns how many
// changed.
func (p *InputPatch) TruncateShortNames(max int) int {
	changed := 0
	for i := range p.channels {
		cut := Truncate(p.channels[i].ShortName, max)
		if cut != p.channels[i].ShortName {
			p.channels[i].ShortName = cut
			changed++
		}
	}
	return changed
}

func (p *InputPatch) SetColor(ch int, color string) bool {
	if !p.inRange(ch) {
		return false
	}
	p.channels[ch-1].Color = color
	return true
}

func (p *InputPatch) SetName(ch int, name string) bool {
	if !p.inRange(ch) {
		return false
	}
	p.channels[ch-1].Name = name
	return true
}

// SetShortName stores name cut to max runes. max <= 0 means unbounded.
func (p *InputPatch) SetShortName(ch int, name string, max int) bool {
	if !p.inRange(ch) {
		return false
	}
	p.channels[ch-1].ShortName = Truncate(name, max)
	return true
}

func (p *InputPatch) SetPhantom(ch int, on bool) bool {
	if !p.inRange(ch) {
		return false
	}
	p.channels[ch-1].Phantom = on
	return true
}

// Truncate normalizes s to NFC and cuts it to max runes. max <= 0 returns
// the normalized string unchanged.
func Truncate(s string, max int) string {
	s = norm.NFC.String(s)
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

func stereoStart(n int, free func(ch int) bool) (int, bool) {
	for c := 1; c+1 <= n; c += 2 {
		if free(c) && free(c+1) {
			return c, true
		}
	}
	return 0, false
}
