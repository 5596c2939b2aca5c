package plot

import (
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/abrezinsky/stageplot/internal/errors"
	"github.com/abrezinsky/stageplot/internal/models"
)

// Items returns a copy of the items in z-order (back to front)
func (d *Document) Items() []models.Item {
	return models.CloneItems(d.items)
}

// Item returns a copy of one item
func (d *Document) Item(id int) (models.Item, bool) {
	if i := d.indexOf(id); i >= 0 {
		return d.items[i].Clone(), true
	}
	return models.Item{}, false
}

func (d *Document) indexOf(id int) int {
	for i := range d.items {
		if d.items[i].ID == id {
			return i
		}
	}
	return -1
}

// NextItemID is one more than the largest item id
func (d *Document) NextItemID() int {
	max := 0
	for _, it := range d.items {
		if it.ID > max {
			max = it.ID
		}
	}
	return max + 1
}

// AddItem places an item. An id of zero or one already in use is replaced
// with NextItemID. Returns the stored item.
func (d *Document) AddItem(item models.Item) models.Item {
	item = item.Clone()
	if item.ID <= 0 || d.indexOf(item.ID) >= 0 {
		item.ID = d.NextItemID()
	}
	if item.Type == "" {
		item.Type = models.ItemTypeInput
	}
	d.items = append(d.items, item)
	d.commit()
	return item.Clone()
}

// DeleteItem removes an item and unpatches its channel
func (d *Document) DeleteItem(id int) bool {
	i := d.indexOf(id)
	if i < 0 {
		return false
	}
	d.items = append(d.items[:i], d.items[i+1:]...)
	d.inputs.ClearItem(id)
	d.commit()
	return true
}

// DeleteItems removes several items as one undo step
func (d *Document) DeleteItems(ids []int) int {
	drop := make(map[int]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := d.items[:0]
	removed := 0
	for _, it := range d.items {
		if drop[it.ID] {
			d.inputs.ClearItem(it.ID)
			removed++
			continue
		}
		kept = append(kept, it)
	}
	d.items = kept
	if removed > 0 {
		d.commit()
	}
	return removed
}

// DuplicateItem copies an item under a fresh id, offset by dx/dy feet.
// The copy is not patched.
func (d *Document) DuplicateItem(id int, dx, dy float64) (models.Item, bool) {
	i := d.indexOf(id)
	if i < 0 {
		return models.Item{}, false
	}
	clone := d.items[i].Clone()
	clone.ID = d.NextItemID()
	clone.Position.X = round4(clone.Position.X + dx)
	clone.Position.Y = round4(clone.Position.Y + dy)
	d.items = append(d.items, clone)
	d.commit()
	return clone.Clone(), true
}

// RenameItem changes an item's name and syncs it to its channel
func (d *Document) RenameItem(id int, name string) bool {
	i := d.indexOf(id)
	if i < 0 {
		return false
	}
	d.items[i].Name = name
	d.inputs.RenameItem(id, name)
	d.commit()
	return true
}

// UpdateItemProperty sets one property from its string form. Riser
// dimensions also resize the item footprint.
func (d *Document) UpdateItemProperty(id int, property, value string) error {
	i := d.indexOf(id)
	if i < 0 {
		return apperrors.NotFoundf("item %d not found", id)
	}
	it := &d.items[i]

	switch property {
	case "name":
		it.Name = value
		d.inputs.RenameItem(id, value)
	case "category":
		it.Category = value
	case "size":
		it.Size = value
	case "currentVariant":
		it.CurrentVariant = value
	case "person_id":
		if value == "" {
			it.PersonID = nil
			break
		}
		pid, err := strconv.Atoi(value)
		if err != nil {
			return apperrors.InvalidInputf("person_id must be an integer: %q", value)
		}
		it.PersonID = models.IntPtr(pid)
	case "x", "y", "width", "height", "rotation":
		v, err := parseFloat(property, value)
		if err != nil {
			return err
		}
		setPositionField(&it.Position, property, v)
	case "riserWidth", "riserDepth", "riserHeight":
		v, err := parseFloat(property, value)
		if err != nil {
			return err
		}
		if v <= 0 {
			return apperrors.Validationf("%s must be positive", property)
		}
		if it.ItemData == nil {
			it.ItemData = &models.ItemData{ItemType: models.ItemTypeRiser}
		}
		switch property {
		case "riserWidth":
			it.ItemData.RiserWidth = models.Float64Ptr(v)
			it.Position.Width = v
		case "riserDepth":
			it.ItemData.RiserDepth = models.Float64Ptr(v)
			it.Position.Height = v
		default:
			it.ItemData.RiserHeight = models.Float64Ptr(v)
		}
	default:
		return apperrors.Validationf("unknown item property %q", property)
	}

	d.commit()
	return nil
}

func parseFloat(property, value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, apperrors.InvalidInputf("%s must be a number: %q", property, value)
	}
	return v, nil
}

func setPositionField(p *models.Position, field string, v float64) {
	switch field {
	case "x":
		p.X = round4(v)
	case "y":
		p.Y = round4(v)
	case "width":
		p.Width = round4(v)
	case "height":
		p.Height = round4(v)
	case "rotation":
		p.Rotation = v
	}
}

// MoveItem sets an item's top-left position in feet
func (d *Document) MoveItem(id int, x, y float64) bool {
	i := d.indexOf(id)
	if i < 0 {
		return false
	}
	d.items[i].Position.X = round4(x)
	d.items[i].Position.Y = round4(y)
	d.commit()
	return true
}

// NudgeItems shifts several items as one undo step
func (d *Document) NudgeItems(ids []int, dx, dy float64) int {
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	moved := 0
	for i := range d.items {
		if want[d.items[i].ID] {
			d.items[i].Position.X = round4(d.items[i].Position.X + dx)
			d.items[i].Position.Y = round4(d.items[i].Position.Y + dy)
			moved++
		}
	}
	if moved > 0 {
		d.commit()
	}
	return moved
}

// Z-order directions
const (
	ZFront    = "front"
	ZBack     = "back"
	ZForward  = "forward"
	ZBackward = "backward"
)

// MoveZ changes an item's stacking position
func (d *Document) MoveZ(id int, direction string) bool {
	i := d.indexOf(id)
	if i < 0 {
		return false
	}
	last := len(d.items) - 1
	switch direction {
	case ZFront:
		if i == last {
			return false
		}
		return d.ReorderItems(i, last)
	case ZBack:
		if i == 0 {
			return false
		}
		return d.ReorderItems(i, 0)
	case ZForward:
		if i >= last {
			return false
		}
		return d.ReorderItems(i, i+1)
	case ZBackward:
		if i <= 0 {
			return false
		}
		return d.ReorderItems(i, i-1)
	}
	return false
}

// ReorderItems moves the item at from to index to
func (d *Document) ReorderItems(from, to int) bool {
	n := len(d.items)
	if from == to || from < 0 || to < 0 || from >= n || to >= n {
		return false
	}
	moved := d.items[from]
	d.items = append(d.items[:from], d.items[from+1:]...)
	d.items = append(d.items[:to], append([]models.Item{moved}, d.items[to:]...)...)
	d.commit()
	return true
}

// VariantKeys lists an item's variants in display order
func VariantKeys(it models.Item) []string {
	if it.ItemData == nil || len(it.ItemData.Variants) == 0 {
		return nil
	}
	if len(it.ItemData.VariantOrder) > 0 {
		keys := make([]string, 0, len(it.ItemData.VariantOrder))
		for _, k := range it.ItemData.VariantOrder {
			if _, ok := it.ItemData.Variants[k]; ok {
				keys = append(keys, k)
			}
		}
		if len(keys) > 0 {
			return keys
		}
	}
	keys := make([]string, 0, len(it.ItemData.Variants))
	for k := range it.ItemData.Variants {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetVariant selects a variant the item actually has
func (d *Document) SetVariant(id int, key string) bool {
	i := d.indexOf(id)
	if i < 0 || d.items[i].ItemData == nil {
		return false
	}
	if _, ok := d.items[i].ItemData.Variants[key]; !ok {
		return false
	}
	d.items[i].CurrentVariant = key
	d.commit()
	return true
}

// RotateVariant steps through an item's variants; step is +1 or -1
func (d *Document) RotateVariant(id int, step int) bool {
	i := d.indexOf(id)
	if i < 0 {
		return false
	}
	keys := VariantKeys(d.items[i])
	if len(keys) == 0 {
		return false
	}
	current := d.items[i].CurrentVariant
	if current == "" {
		current = "default"
	}
	pos := 0
	for k, key := range keys {
		if key == current {
			pos = k
			break
		}
	}
	next := ((pos+step)%len(keys) + len(keys)) % len(keys)
	return d.SetVariant(id, keys[next])
}

// SetStage changes the stage size and rescales item positions
// proportionally. Riser footprints scale with the stage.
func (d *Document) SetStage(width, depth float64) error {
	if width <= 0 || depth <= 0 {
		return apperrors.Validationf("stage dimensions must be positive, got %gx%g", width, depth)
	}
	if width == d.stageWidth && depth == d.stageDepth {
		return nil
	}
	sx := width / d.stageWidth
	sy := depth / d.stageDepth
	for i := range d.items {
		p := &d.items[i].Position
		p.X = round4(p.X * sx)
		p.Y = round4(p.Y * sy)
		if d.items[i].Type == models.ItemTypeRiser {
			p.Width = round4(p.Width * sx)
			p.Height = round4(p.Height * sy)
		}
	}
	d.stageWidth = width
	d.stageDepth = depth
	d.commit()
	return nil
}
