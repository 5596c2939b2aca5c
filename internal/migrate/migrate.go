// Package migrate upgrades stored plot metadata written by older versions
// before a document is built from it. Every migration is idempotent.
package migrate

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/abrezinsky/stageplot/internal/models"
)

// Versions and legacy layout constants
const (
	CurrentCoordVersion  = 2
	LegacyInputChannels  = 48
	LegacyOutputChannels = 16
	LegacyCanvasWidth    = 1100.0
	legacyStageWidth     = 24.0
	legacyStageDepth     = 16.0
)

// Item is a stored item. Channel is only present in documents written
// before the channel arrays existed and holds a string or a number.
type Item struct {
	models.Item
	Channel json.RawMessage `json:"channel,omitempty"`
}

// Output is a stored output, with the same legacy channel field as Item
type Output struct {
	models.Output
	Channel json.RawMessage `json:"channel,omitempty"`
}

// InputChannel is a stored input channel. Name, ShortName and Phantom are
// pointers so records saved before those fields existed can be told apart
// from empty values.
type InputChannel struct {
	ChannelNum int     `json:"channelNum"`
	ItemID     *int    `json:"itemId"`
	Color      string  `json:"color,omitempty"`
	Name       *string `json:"name,omitempty"`
	ShortName  *string `json:"shortName,omitempty"`
	Phantom    *bool   `json:"phantom,omitempty"`
}

// Metadata is the stored document blob
type Metadata struct {
	CoordVersion      int                    `json:"coordVersion"`
	Items             []Item                 `json:"items"`
	Outputs           []Output               `json:"outputs"`
	InputChannels     []InputChannel         `json:"inputChannels"`
	OutputChannels    []models.OutputChannel `json:"outputChannels"`
	OutputStereoLinks []int                  `json:"outputStereoLinks"`
	UndoLog           json.RawMessage        `json:"undoLog,omitempty"`
	RedoStack         json.RawMessage        `json:"redoStack,omitempty"`
}

// Geometry is the stage and legacy canvas size stored beside the blob
type Geometry struct {
	CanvasWidth float64
	StageWidth  float64
	StageDepth  float64
}

// Result reports what a run changed
type Result struct {
	ChannelsMigrated   bool
	ChannelsBackfilled bool
	CoordsMigrated     bool
}

// Changed is true when the upgraded document differs from what is stored
func (r Result) Changed() bool {
	return r.ChannelsMigrated || r.ChannelsBackfilled || r.CoordsMigrated
}

// Run applies every migration in order. channelColors is the legacy
// per-channel color column keyed by channel number.
func Run(m *Metadata, g Geometry, channelColors map[string]string) Result {
	var res Result
	res.ChannelsMigrated, res.ChannelsBackfilled = ChannelModel(m, channelColors)
	res.CoordsMigrated = CoordinateUnits(m, g)
	return res
}

// ChannelModel builds the input and output channel arrays from the
// channel numbers embedded in items and outputs, or backfills fields
// missing from existing channel records. The embedded fields are removed
// either way.
func ChannelModel(m *Metadata, channelColors map[string]string) (migrated, backfilled bool) {
	names := make(map[int]string, len(m.Items))
	for _, it := range m.Items {
		names[it.ID] = it.Name
	}

	if m.InputChannels == nil {
		m.InputChannels = buildInputChannels(m.Items, channelColors)
		if m.OutputChannels == nil {
			m.OutputChannels = buildOutputChannels(m.Outputs)
		}
		migrated = true
	} else {
		backfilled = backfillInputChannels(m.InputChannels, names)
		if m.OutputChannels == nil {
			m.OutputChannels = buildOutputChannels(nil)
			backfilled = true
		}
		for i := range m.OutputChannels {
			if m.OutputChannels[i].ChannelNum != i+1 {
				m.OutputChannels[i].ChannelNum = i + 1
				backfilled = true
			}
		}
	}
	if m.OutputStereoLinks == nil {
		m.OutputStereoLinks = []int{}
	}

	for i := range m.Items {
		if m.Items[i].Channel != nil {
			m.Items[i].Channel = nil
			backfilled = backfilled || !migrated
		}
	}
	for i := range m.Outputs {
		if m.Outputs[i].Channel != nil {
			m.Outputs[i].Channel = nil
			backfilled = backfilled || !migrated
		}
	}
	return migrated, backfilled
}

func buildInputChannels(items []Item, colors map[string]string) []InputChannel {
	chs := make([]InputChannel, LegacyInputChannels)
	for i := range chs {
		chs[i] = InputChannel{
			ChannelNum: i + 1,
			Name:       strPtr(""),
			ShortName:  strPtr(""),
			Phantom:    boolPtr(false),
		}
	}
	for _, it := range items {
		ch, ok := parseChannel(it.Channel)
		if !ok || ch > LegacyInputChannels || chs[ch-1].ItemID != nil {
			continue
		}
		chs[ch-1].ItemID = models.IntPtr(it.ID)
		chs[ch-1].Name = strPtr(it.Name)
	}
	for key, color := range colors {
		ch, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || ch < 1 || ch > LegacyInputChannels {
			continue
		}
		chs[ch-1].Color = color
	}
	return chs
}

func buildOutputChannels(outputs []Output) []models.OutputChannel {
	chs := make([]models.OutputChannel, LegacyOutputChannels)
	for i := range chs {
		chs[i].ChannelNum = i + 1
	}
	for _, o := range outputs {
		ch, ok := parseChannel(o.Channel)
		if !ok || ch > LegacyOutputChannels || chs[ch-1].OutputID != nil {
			continue
		}
		chs[ch-1].OutputID = models.IntPtr(o.ID)
	}
	return chs
}

func backfillInputChannels(chs []InputChannel, names map[int]string) bool {
	changed := false
	for i := range chs {
		ch := &chs[i]
		if ch.ChannelNum != i+1 {
			ch.ChannelNum = i + 1
			changed = true
		}
		if ch.Name == nil {
			name := ""
			if ch.ItemID != nil {
				name = names[*ch.ItemID]
			}
			ch.Name = strPtr(name)
			changed = true
		}
		if ch.ShortName == nil {
			ch.ShortName = strPtr("")
			changed = true
		}
		if ch.Phantom == nil {
			ch.Phantom = boolPtr(false)
			changed = true
		}
	}
	return changed
}

// parseChannel reads a legacy channel value: a positive number or a
// numeric string
func parseChannel(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
	} else {
		s = string(raw)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 1 || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// CoordinateUnits converts pixel positions to feet. The X and Y axes use
// their own pixels-per-foot factor derived from the legacy canvas. Undo
// history recorded in pixels is discarded.
func CoordinateUnits(m *Metadata, g Geometry) bool {
	if m.CoordVersion >= CurrentCoordVersion {
		return false
	}
	canvasW := g.CanvasWidth
	if canvasW <= 0 {
		canvasW = LegacyCanvasWidth
	}
	stageW := g.StageWidth
	if stageW <= 0 {
		stageW = legacyStageWidth
	}
	stageD := g.StageDepth
	if stageD <= 0 {
		stageD = legacyStageDepth
	}
	pxPerFtX, pxPerFtY := PixelsPerFoot(canvasW, stageW, stageD)

	for i := range m.Items {
		p := &m.Items[i].Position
		p.X = Round4(p.X / pxPerFtX)
		p.Y = Round4(p.Y / pxPerFtY)
		p.Width = Round4(p.Width / pxPerFtX)
		p.Height = Round4(p.Height / pxPerFtY)
	}
	m.UndoLog = nil
	m.RedoStack = nil
	m.CoordVersion = CurrentCoordVersion
	return true
}

// PixelsPerFoot returns the per-axis scale of a legacy canvas canvasW
// pixels wide whose height follows the stage aspect ratio
func PixelsPerFoot(canvasW, stageW, stageD float64) (x, y float64) {
	canvasH := math.Round(canvasW * stageD / stageW)
	return canvasW / stageW, canvasH / stageD
}

// Round4 rounds to four decimal places
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// ModelItems returns the items without legacy fields
func (m *Metadata) ModelItems() []models.Item {
	out := make([]models.Item, len(m.Items))
	for i, it := range m.Items {
		out[i] = it.Item.Clone()
	}
	return out
}

// ModelOutputs returns the outputs without legacy fields
func (m *Metadata) ModelOutputs() []models.Output {
	out := make([]models.Output, len(m.Outputs))
	for i, o := range m.Outputs {
		out[i] = o.Output.Clone()
	}
	return out
}

// ModelInputChannels returns the input channels with missing fields
// defaulted
func (m *Metadata) ModelInputChannels() []models.InputChannel {
	out := make([]models.InputChannel, len(m.InputChannels))
	for i, ch := range m.InputChannels {
		out[i] = models.InputChannel{ChannelNum: ch.ChannelNum, Color: ch.Color}
		if ch.ItemID != nil {
			out[i].ItemID = models.IntPtr(*ch.ItemID)
		}
		if ch.Name != nil {
			out[i].Name = *ch.Name
		}
		if ch.ShortName != nil {
			out[i].ShortName = *ch.ShortName
		}
		if ch.Phantom != nil {
			out[i].Phantom = *ch.Phantom
		}
	}
	return out
}

// FromModel fills the blob from current model values. Undo data is left
// to the caller.
func FromModel(items []models.Item, outputs []models.Output, inputs []models.InputChannel, outs []models.OutputChannel, outputLinks []int) *Metadata {
	m := &Metadata{
		CoordVersion:      CurrentCoordVersion,
		Items:             make([]Item, len(items)),
		Outputs:           make([]Output, len(outputs)),
		InputChannels:     make([]InputChannel, len(inputs)),
		OutputChannels:    models.CloneOutputChannels(outs),
		OutputStereoLinks: append([]int{}, outputLinks...),
	}
	for i, it := range items {
		m.Items[i] = Item{Item: it.Clone()}
	}
	for i, o := range outputs {
		m.Outputs[i] = Output{Output: o.Clone()}
	}
	for i, ch := range inputs {
		m.InputChannels[i] = InputChannel{
			ChannelNum: ch.ChannelNum,
			Color:      ch.Color,
			Name:       strPtr(ch.Name),
			ShortName:  strPtr(ch.ShortName),
			Phantom:    boolPtr(ch.Phantom),
		}
		if ch.ItemID != nil {
			m.InputChannels[i].ItemID = models.IntPtr(*ch.ItemID)
		}
	}
	if m.OutputChannels == nil {
		m.OutputChannels = []models.OutputChannel{}
	}
	return m
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
