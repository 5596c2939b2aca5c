package plot

import (
	"github.com/abrezinsky/stageplot/internal/channels"
	"github.com/abrezinsky/stageplot/internal/consoles"
	apperrors "github.com/abrezinsky/stageplot/internal/errors"
	"github.com/abrezinsky/stageplot/internal/models"
)

// InputChannels returns a copy of the input patch
func (d *Document) InputChannels() []models.InputChannel {
	return d.inputs.Snapshot()
}

// OutputChannels returns a copy of the output patch
func (d *Document) OutputChannels() []models.OutputChannel {
	return d.outs.Snapshot()
}

// ChannelOf returns the input channel an item is patched to
func (d *Document) ChannelOf(itemID int) (int, bool) {
	return d.inputs.ChannelOf(itemID)
}

// ItemAt returns the item patched to an input channel
func (d *Document) ItemAt(ch int) (int, bool) {
	return d.inputs.ItemAt(ch)
}

// NextAvailableInput is the lowest unpatched input channel
func (d *Document) NextAvailableInput() (int, bool) {
	return d.inputs.NextAvailable()
}

// NextAvailableInputStereoStart is the lowest free odd input pair
func (d *Document) NextAvailableInputStereoStart() (int, bool) {
	return d.inputs.NextAvailableStereoStart()
}

// PatchItem patches an item to an input channel. When a console is set
// and the item's catalog category maps to a color category with a
// default, the channel takes that color.
func (d *Document) PatchItem(itemID, ch int) bool {
	i := d.indexOf(itemID)
	if i < 0 {
		return false
	}
	it := d.items[i]
	if !d.inputs.Assign(itemID, ch, it.Name) {
		return false
	}
	if color := d.categoryColor(it); color != "" {
		d.inputs.SetColor(ch, color)
	}
	d.commit()
	return true
}

func (d *Document) categoryColor(it models.Item) string {
	if d.consoleType == "" {
		return ""
	}
	category := it.Category
	if it.ItemData != nil && it.ItemData.Category != "" {
		category = it.ItemData.Category
	}
	colorCat, ok := consoles.CatalogColorCategory[category]
	if !ok {
		return ""
	}
	return d.colorDefault[colorCat]
}

// UnpatchChannel clears the item and color from an input channel
func (d *Document) UnpatchChannel(ch int) bool {
	if !d.inputs.Unassign(ch) {
		return false
	}
	d.commit()
	return true
}

// ClearAllPatch unpatches every input channel
func (d *Document) ClearAllPatch() {
	d.inputs.ClearAll()
	d.commit()
}

// SetChannelColor sets an input channel's scribble strip color
func (d *Document) SetChannelColor(ch int, color string) bool {
	if !d.inputs.SetColor(ch, color) {
		return false
	}
	d.commit()
	return true
}

// SetChannelName sets an input channel's long name
func (d *Document) SetChannelName(ch int, name string) bool {
	if !d.inputs.SetName(ch, name) {
		return false
	}
	d.commit()
	return true
}

// SetChannelShortName sets a scribble strip name, cut to the console's length
func (d *Document) SetChannelShortName(ch int, name string) bool {
	if !d.inputs.SetShortName(ch, name, consoles.ShortNameLength(d.consoleType)) {
		return false
	}
	d.commit()
	return true
}

// SetPhantom switches 48V on an input channel
func (d *Document) SetPhantom(ch int, on bool) bool {
	if !d.inputs.SetPhantom(ch, on) {
		return false
	}
	d.commit()
	return true
}

// SetInputChannelMode resizes the input patch. Stereo links that no
// longer fit are dropped.
func (d *Document) SetInputChannelMode(n int) error {
	if !consoles.IsChannelMode(n) {
		return apperrors.Validationf("invalid input channel count %d", n)
	}
	if n == d.inputs.Len() {
		return nil
	}
	d.inputs.Resize(n)
	d.stereoLinks = channels.EvictStereoLinks(d.stereoLinks, n)
	d.commit()
	return nil
}

// SetOutputChannelMode resizes the output patch
func (d *Document) SetOutputChannelMode(n int) error {
	if !consoles.IsChannelMode(n) {
		return apperrors.Validationf("invalid output channel count %d", n)
	}
	if n == d.outs.Len() {
		return nil
	}
	d.outs.Resize(n)
	d.outStereo = channels.EvictStereoLinks(d.outStereo, n)
	d.pruneOutputs()
	d.commit()
	return nil
}

// StereoLinks returns the input stereo link starts
func (d *Document) StereoLinks() []int {
	return append([]int{}, d.stereoLinks...)
}

// OutputStereoLinks returns the output stereo link starts
func (d *Document) OutputStereoLinks() []int {
	return append([]int{}, d.outStereo...)
}

// SetStereoLinks replaces the input stereo links. Invalid starts are dropped.
func (d *Document) SetStereoLinks(links []int) {
	d.stereoLinks = channels.EvictStereoLinks(links, d.inputs.Len())
	d.changed()
}

// SetOutputStereoLinks replaces the output stereo links
func (d *Document) SetOutputStereoLinks(links []int) {
	d.outStereo = channels.EvictStereoLinks(links, d.outs.Len())
	d.changed()
}

// CategoryColorDefaults returns a copy of the category color map
func (d *Document) CategoryColorDefaults() map[string]string {
	return copyStringMap(d.colorDefault)
}

// SetCategoryColorDefaults replaces the category color map
func (d *Document) SetCategoryColorDefaults(m map[string]string) {
	d.colorDefault = copyStringMap(m)
	d.changed()
}

// SetConsoleType switches console. An empty id clears it. Category color
// defaults are seeded when empty, channel counts are clamped to the
// console's limits and short names are cut to its scribble strip length.
func (d *Document) SetConsoleType(id string) error {
	if id == "" {
		d.consoleType = ""
		d.changed()
		return nil
	}
	console, ok := consoles.Get(id)
	if !ok {
		return apperrors.Validationf("unknown console %q", id)
	}

	d.consoleType = id
	if len(d.colorDefault) == 0 {
		d.colorDefault = consoles.DefaultCategoryColors(id)
	}

	recorded := false
	if consoles.IsChannelMode(console.InputChannels) && d.inputs.Len() > console.InputChannels {
		d.inputs.Resize(console.InputChannels)
		d.stereoLinks = channels.EvictStereoLinks(d.stereoLinks, console.InputChannels)
		recorded = true
	}
	if consoles.IsChannelMode(console.OutputBuses) && d.outs.Len() > console.OutputBuses {
		d.outs.Resize(console.OutputBuses)
		d.outStereo = channels.EvictStereoLinks(d.outStereo, console.OutputBuses)
		d.pruneOutputs()
		recorded = true
	}
	if d.inputs.TruncateShortNames(console.ScribbleLength) > 0 {
		recorded = true
	}

	if recorded {
		d.commit()
	} else {
		d.changed()
	}
	return nil
}
