package plot

import (
	"strings"

	"github.com/abrezinsky/stageplot/internal/channels"
	apperrors "github.com/abrezinsky/stageplot/internal/errors"
	"github.com/abrezinsky/stageplot/internal/models"
)

// Output types inferred from catalog paths
const (
	OutputTypeIEMStereo      = "iem_stereo"
	OutputTypeSidefill       = "sidefill"
	OutputTypeSub            = "sub"
	OutputTypeLineArray      = "line_array"
	OutputTypeColumnSpeaker  = "column_speaker"
	OutputTypePersonalSystem = "personal_system"
	OutputTypePASpeaker      = "pa_speaker"
	OutputTypeWedge          = "wedge"
	OutputTypeMonitor        = "monitor"
)

// Outputs returns a copy of the outputs
func (d *Document) Outputs() []models.Output {
	return models.CloneOutputs(d.outputs)
}

func (d *Document) outputIndex(id int) int {
	for i := range d.outputs {
		if d.outputs[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) nextOutputID() int {
	max := 0
	for _, o := range d.outputs {
		if o.ID > max {
			max = o.ID
		}
	}
	return max + 1
}

// pruneOutputs drops outputs that are no longer on any channel
func (d *Document) pruneOutputs() {
	kept := d.outputs[:0]
	for _, o := range d.outputs {
		if _, ok := d.outs.ChannelOf(o.ID); ok {
			kept = append(kept, o)
		}
	}
	d.outputs = kept
}

// NextAvailableOutput is the lowest free output channel
func (d *Document) NextAvailableOutput() (int, bool) {
	return d.outs.NextAvailable()
}

// NextAvailableOutputStereoStart is the lowest free odd output pair
func (d *Document) NextAvailableOutputStereoStart() (int, bool) {
	return d.outs.NextAvailableStereoStart()
}

// AddOutput creates an output on channel ch, replacing whatever was there
func (d *Document) AddOutput(o models.Output, ch int) (models.Output, error) {
	if ch < 1 || ch > d.outs.Len() {
		return models.Output{}, apperrors.Validationf("output channel %d out of range 1-%d", ch, d.outs.Len())
	}
	o = o.Clone()
	o.ID = d.nextOutputID()
	if o.LinkMode == "" {
		o.LinkMode = models.LinkModeMono
	}
	d.placeOutput(o, ch)
	d.commit()
	return o.Clone(), nil
}

func (d *Document) placeOutput(o models.Output, ch int) {
	d.outs.Unassign(ch)
	d.outputs = append(d.outputs, o)
	d.outs.Assign(o.ID, ch)
	d.pruneOutputs()
}

// AssignOutput moves an existing output to channel ch
func (d *Document) AssignOutput(outputID, ch int) bool {
	if d.outputIndex(outputID) < 0 || ch < 1 || ch > d.outs.Len() {
		return false
	}
	d.outs.Unassign(ch)
	d.outs.Assign(outputID, ch)
	d.pruneOutputs()
	d.commit()
	return true
}

// RemoveOutputChannel clears an output channel; the output is removed
// with it
func (d *Document) RemoveOutputChannel(ch int) bool {
	if _, ok := d.outs.Unassign(ch); !ok {
		return false
	}
	d.pruneOutputs()
	d.commit()
	return true
}

// IsMonitorItem reports whether catalog data describes a monitor
func IsMonitorItem(data *models.ItemData) bool {
	if data == nil {
		return false
	}
	category := strings.ToLower(data.Category)
	path := strings.ToLower(data.Path)
	return strings.Contains(category, "monitor") ||
		strings.HasPrefix(path, "monitors/") ||
		strings.HasPrefix(path, "outputs/monitors")
}

// InferOutputType guesses the output type from the catalog path
func InferOutputType(data *models.ItemData) string {
	if data == nil {
		return OutputTypeMonitor
	}
	path := strings.ToLower(data.Path)
	switch {
	case strings.Contains(path, "inear"):
		return OutputTypeIEMStereo
	case strings.Contains(path, "sidefill"):
		return OutputTypeSidefill
	case strings.Contains(path, "subwoofer"):
		return OutputTypeSub
	case strings.Contains(path, "linearray"):
		return OutputTypeLineArray
	case strings.Contains(path, "bosel1"):
		return OutputTypeColumnSpeaker
	case strings.Contains(path, "personalsys"):
		return OutputTypePersonalSystem
	case strings.Contains(path, "speakerwstand"), strings.Contains(path, "speaknsubwstand"):
		return OutputTypePASpeaker
	case strings.Contains(path, "lowprofile"), strings.Contains(path, "wedge"):
		return OutputTypeWedge
	}
	return OutputTypeMonitor
}

// InferOutputLinkMode is stereo for in-ears and sidefills
func InferOutputLinkMode(data *models.ItemData) string {
	if data == nil {
		return models.LinkModeMono
	}
	path := strings.ToLower(data.Path)
	if strings.Contains(path, "inear") || strings.Contains(path, "sidefill") {
		return models.LinkModeStereoPair
	}
	return models.LinkModeMono
}

// AddDefaultOutputs creates the outputs implied by a catalog item. The
// item's explicit default_outputs win; otherwise a monitor item gets one
// inferred output. Stereo outputs take the next free odd pair as "L"/"R"
// and are added to the output stereo links. Outputs that find no free
// channel are skipped.
func (d *Document) AddDefaultOutputs(data *models.ItemData) []models.Output {
	if data == nil {
		return nil
	}
	defs := data.DefaultOutputs
	if len(defs) == 0 && IsMonitorItem(data) {
		name := data.Name
		if name == "" {
			name = "Monitor"
		}
		defs = []models.DefaultOutput{{
			Name:     name,
			Type:     InferOutputType(data),
			LinkMode: InferOutputLinkMode(data),
		}}
	}
	if len(defs) == 0 {
		return nil
	}

	var created []models.Output
	for _, def := range defs {
		linkMode := def.LinkMode
		if linkMode == "" {
			linkMode = InferOutputLinkMode(data)
		}
		outType := def.Type
		if outType == "" {
			outType = InferOutputType(data)
		}
		base := def.Name
		if base == "" {
			base = data.Name
		}
		if base == "" {
			base = "Output"
		}

		if linkMode == models.LinkModeStereoPair {
			start, ok := d.outs.NextAvailableStereoStart()
			if !ok {
				continue
			}
			left := models.Output{ID: d.nextOutputID(), Name: base + " L", Type: outType, LinkMode: linkMode, ItemData: data.Clone()}
			d.placeOutput(left, start)
			right := models.Output{ID: d.nextOutputID(), Name: base + " R", Type: outType, LinkMode: linkMode, ItemData: data.Clone()}
			d.placeOutput(right, start+1)
			d.outStereo = channels.AddStereoLink(d.outStereo, start)
			created = append(created, left.Clone(), right.Clone())
			continue
		}

		ch, ok := d.outs.NextAvailable()
		if !ok {
			continue
		}
		o := models.Output{ID: d.nextOutputID(), Name: base, Type: outType, LinkMode: linkMode, ItemData: data.Clone()}
		d.placeOutput(o, ch)
		created = append(created, o.Clone())
	}

	if len(created) > 0 {
		d.commit()
	}
	return created
}
