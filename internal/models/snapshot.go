package models

// SnapshotVersion tags snapshots written by the channel-array document
// model. Entries without it predate that model.
const SnapshotVersion = 2

// Snapshot is the undoable part of a plot document
type Snapshot struct {
	Version        int             `json:"version"`
	Items          []Item          `json:"items"`
	InputChannels  []InputChannel  `json:"inputChannels"`
	OutputChannels []OutputChannel `json:"outputChannels"`
	Outputs        []Output        `json:"outputs"`
}

// Clone returns a deep copy of the snapshot
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Version:        s.Version,
		Items:          CloneItems(s.Items),
		InputChannels:  CloneInputChannels(s.InputChannels),
		OutputChannels: CloneOutputChannels(s.OutputChannels),
		Outputs:        CloneOutputs(s.Outputs),
	}
}

// Clone returns a deep copy of the item
func (i Item) Clone() Item {
	out := i
	out.PersonID = cloneIntPtr(i.PersonID)
	out.ItemData = i.ItemData.Clone()
	return out
}

// Clone returns a deep copy of the item data, or nil
func (d *ItemData) Clone() *ItemData {
	if d == nil {
		return nil
	}
	out := *d
	if d.Variants != nil {
		out.Variants = make(map[string]string, len(d.Variants))
		for k, v := range d.Variants {
			out.Variants[k] = v
		}
	}
	if d.VariantOrder != nil {
		out.VariantOrder = append([]string(nil), d.VariantOrder...)
	}
	if d.DefaultOutputs != nil {
		out.DefaultOutputs = append([]DefaultOutput(nil), d.DefaultOutputs...)
	}
	out.RiserWidth = cloneFloatPtr(d.RiserWidth)
	out.RiserDepth = cloneFloatPtr(d.RiserDepth)
	out.RiserHeight = cloneFloatPtr(d.RiserHeight)
	return &out
}

// Clone returns a deep copy of the output
func (o Output) Clone() Output {
	out := o
	out.ItemData = o.ItemData.Clone()
	return out
}

// Clone returns a deep copy of the channel
func (c InputChannel) Clone() InputChannel {
	out := c
	out.ItemID = cloneIntPtr(c.ItemID)
	return out
}

// Clone returns a deep copy of the channel
func (c OutputChannel) Clone() OutputChannel {
	out := c
	out.OutputID = cloneIntPtr(c.OutputID)
	return out
}

// CloneItems deep-copies a slice of items. A nil slice stays nil.
func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i := range items {
		out[i] = items[i].Clone()
	}
	return out
}

// CloneOutputs deep-copies a slice of outputs
func CloneOutputs(outputs []Output) []Output {
	if outputs == nil {
		return nil
	}
	out := make([]Output, len(outputs))
	for i := range outputs {
		out[i] = outputs[i].Clone()
	}
	return out
}

// CloneInputChannels deep-copies a slice of input channels
func CloneInputChannels(chs []InputChannel) []InputChannel {
	if chs == nil {
		return nil
	}
	out := make([]InputChannel, len(chs))
	for i := range chs {
		out[i] = chs[i].Clone()
	}
	return out
}

// CloneOutputChannels deep-copies a slice of output channels
func CloneOutputChannels(chs []OutputChannel) []OutputChannel {
	if chs == nil {
		return nil
	}
	out := make([]OutputChannel, len(chs))
	for i := range chs {
		out[i] = chs[i].Clone()
	}
	return out
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
