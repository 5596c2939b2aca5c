package channels_test

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/abrezinsky/stageplot/internal/channels"
	"github.com/abrezinsky/stageplot/internal/models"
)

func countHolding(p *channels.InputPatch, itemID int) int {
	n := 0
	for _, ch := range p.Channels() {
		if ch.ItemID != nil && *ch.ItemID == itemID {
			n++
		}
	}
	return n
}

func TestNewInputPatch(t *testing.T) {
	p := channels.NewInputPatch(16)
	if p.Len() != 16 {
		t.Fatalf("expected 16 channels, got %d", p.Len())
	}
	for i, ch := range p.Channels() {
		if ch.ChannelNum != i+1 || ch.ItemID != nil {
			t.Errorf("slot %d not empty: %+v", i, ch)
		}
	}
}

func TestAssign_MovesItem(t *testing.T) {
	p := channels.NewInputPatch(8)

	p.Assign(10, 1, "Kick")
	p.Assign(10, 3, "Kick")

	if _, ok := p.ItemAt(1); ok {
		t.Error("expected channel 1 to be cleared")
	}
	if id, ok := p.ItemAt(3); !ok || id != 10 {
		t.Errorf("expected item 10 on channel 3, got %d %v", id, ok)
	}
	if ch, _ := p.ChannelOf(10); ch != 3 {
		t.Errorf("expected ChannelOf 3, got %d", ch)
	}
	// name stays on channel 1 as console identity
	c1, _ := p.Channel(1)
	if c1.Name != "Kick" {
		t.Errorf("expected channel 1 to keep name, got %q", c1.Name)
	}
}

func TestAssign_SeedsNameOnlyWhenEmpty(t *testing.T) {
	p := channels.NewInputPatch(8)
	p.SetName(2, "Lead Vox")

	p.Assign(5, 2, "SM58")
	p.Assign(6, 4, "Snare")

	c2, _ := p.Channel(2)
	if c2.Name != "Lead Vox" {
		t.Errorf("expected existing name kept, got %q", c2.Name)
	}
	c4, _ := p.Channel(4)
	if c4.Name != "Snare" {
		t.Errorf("expected seeded name, got %q", c4.Name)
	}
}

func TestAssign_OutOfRangeIsNoop(t *testing.T) {
	p := channels.NewInputPatch(8)
	for _, ch := range []int{0, -1, 9, 48} {
		if p.Assign(1, ch, "x") {
			t.Errorf("expected Assign(%d) to fail", ch)
		}
	}
	if _, ok := p.ChannelOf(1); ok {
		t.Error("expected item to stay unpatched")
	}
}

func TestUnassign_KeepsNames(t *testing.T) {
	p := channels.NewInputPatch(8)
	p.Assign(7, 1, "Bass DI")
	p.SetShortName(1, "BASS", 12)
	p.SetColor(1, "yellow")
	p.SetPhantom(1, true)

	if !p.Unassign(1) {
		t.Fatal("expected Unassign to report a change")
	}

	c, _ := p.Channel(1)
	if c.ItemID != nil || c.Color != "" {
		t.Errorf("expected item and color cleared, got %+v", c)
	}
	if c.Name != "Bass DI" || c.ShortName != "BASS" || !c.Phantom {
		t.Errorf("expected name/shortName/phantom kept, got %+v", c)
	}
	if _, ok := p.ChannelOf(7); ok {
		t.Error("expected index to drop item 7")
	}
}

func TestClearItemAndRename(t *testing.T) {
	p := channels.NewInputPatch(8)
	p.Assign(3, 5, "Gtr")

	if !p.RenameItem(3, "Gtr Amp") {
		t.Fatal("expected rename to apply")
	}
	c, _ := p.Channel(5)
	if c.Name != "Gtr Amp" {
		t.Errorf("expected synced name, got %q", c.Name)
	}
	if p.RenameItem(99, "nope") {
		t.Error("expected rename of unpatched item to be a no-op")
	}

	if ch := p.ClearItem(3); ch != 5 {
		t.Errorf("expected ClearItem to return 5, got %d", ch)
	}
	if ch := p.ClearItem(3); ch != 0 {
		t.Errorf("expected second ClearItem to return 0, got %d", ch)
	}
}

func TestExclusivity_RandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p := channels.NewInputPatch(16)

	for step := 0; step < 2000; step++ {
		item := rng.Intn(10) + 1
		ch := rng.Intn(18) // includes out of range values
		if rng.Intn(3) == 0 {
			p.Unassign(ch)
		} else {
			p.Assign(item, ch, "item")
		}
		for id := 1; id <= 10; id++ {
			if n := countHolding(p, id); n > 1 {
				t.Fatalf("step %d: item %d held by %d channels", step, id, n)
			}
			ch, ok := p.ChannelOf(id)
			if ok {
				if got, _ := p.ItemAt(ch); got != id {
					t.Fatalf("step %d: index says %d on %d, slot has %d", step, id, ch, got)
				}
			} else if countHolding(p, id) != 0 {
				t.Fatalf("step %d: index missing item %d", step, id)
			}
		}
	}
}

func TestNextAvailable(t *testing.T) {
	p := channels.NewInputPatch(4)
	p.Assign(1, 1, "a")
	p.Assign(2, 2, "b")

	if ch, ok := p.NextAvailable(); !ok || ch != 3 {
		t.Errorf("expected 3, got %d %v", ch, ok)
	}
	p.Assign(3, 3, "c")
	p.Assign(4, 4, "d")
	if _, ok := p.NextAvailable(); ok {
		t.Error("expected no channel available")
	}
}

func TestNextAvailableStereoStart(t *testing.T) {
	p := channels.NewInputPatch(8)
	p.Assign(1, 1, "a")
	p.Assign(2, 3, "b")

	ch, ok := p.NextAvailableStereoStart()
	if !ok || ch != 5 {
		t.Errorf("expected 5, got %d %v", ch, ok)
	}

	// channel 6 taken forces the next odd pair
	p.Assign(3, 6, "c")
	ch, _ = p.NextAvailableStereoStart()
	if ch != 7 {
		t.Errorf("expected 7, got %d", ch)
	}

	p.Assign(4, 8, "d")
	if _, ok := p.NextAvailableStereoStart(); ok {
		t.Error("expected no free pair")
	}
}

func TestResize_PreservesSlots(t *testing.T) {
	p := channels.NewInputPatch(16)
	p.Assign(1, 2, "Kick")
	p.Assign(2, 12, "Tom")

	p.Resize(8)
	if p.Len() != 8 {
		t.Fatalf("expected 8, got %d", p.Len())
	}
	if id, _ := p.ItemAt(2); id != 1 {
		t.Errorf("expected item 1 kept on channel 2")
	}
	if _, ok := p.ChannelOf(2); ok {
		t.Error("expected item on dropped channel to be unpatched")
	}

	p.Resize(24)
	if p.Len() != 24 {
		t.Fatalf("expected 24, got %d", p.Len())
	}
	c, _ := p.Channel(24)
	if c.ChannelNum != 24 || c.ItemID != nil {
		t.Errorf("unexpected appended channel: %+v", c)
	}
	c2, _ := p.Channel(2)
	if c2.Name != "Kick" {
		t.Errorf("expected name preserved across resize, got %q", c2.Name)
	}
}

func TestNewInputPatchFrom_Normalizes(t *testing.T) {
	p := channels.NewInputPatchFrom([]models.InputChannel{
		{ChannelNum: 9, ItemID: models.IntPtr(4)},
		{ChannelNum: 0, ItemID: models.IntPtr(4), Color: "red"},
		{ChannelNum: 0},
	})

	for i, ch := range p.Channels() {
		if ch.ChannelNum != i+1 {
			t.Errorf("slot %d has channelNum %d", i, ch.ChannelNum)
		}
	}
	if countHolding(p, 4) != 1 {
		t.Error("expected duplicate patch to be repaired")
	}
	if ch, _ := p.ChannelOf(4); ch != 1 {
		t.Errorf("expected lowest channel kept, got %d", ch)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Lead Vocal Left", 8, "Lead Voc"},
		{"Kick", 8, "Kick"},
		{"Señor Guitar", 5, "Señor"},
		{"Cafe\u0301 Piano", 4, "Caf\u00e9"}, // decomposed accent counts once after NFC
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := channels.Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestTruncateShortNames(t *testing.T) {
	p := channels.NewInputPatch(4)
	p.SetShortName(1, "OVERHEAD L", 0)
	p.SetShortName(2, "KICK", 0)

	if n := p.TruncateShortNames(8); n != 1 {
		t.Errorf("expected 1 change, got %d", n)
	}
	c, _ := p.Channel(1)
	if c.ShortName != "OVERHEAD" {
		t.Errorf("expected OVERHEAD, got %q", c.ShortName)
	}
}

func TestSetters_OutOfRange(t *testing.T) {
	p := channels.NewInputPatch(2)
	if p.SetColor(3, "red") || p.SetName(0, "x") || p.SetShortName(5, "x", 8) || p.SetPhantom(-1, true) {
		t.Error("expected out-of-range setters to be no-ops")
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	p := channels.NewInputPatch(4)
	p.Assign(1, 1, "a")
	snap := p.Snapshot()

	p.Unassign(1)
	if snap[0].ItemID == nil || *snap[0].ItemID != 1 {
		t.Error("expected snapshot unaffected by later edits")
	}

	p.Replace(snap)
	if ch, _ := p.ChannelOf(1); ch != 1 {
		t.Error("expected Replace to rebuild the index")
	}
}

func TestOutputPatch(t *testing.T) {
	p := channels.NewOutputPatch(8)
	p.Assign(100, 1)
	p.Assign(101, 3)

	if ch, ok := p.NextAvailable(); !ok || ch != 2 {
		t.Errorf("expected 2, got %d", ch)
	}
	if ch, ok := p.NextAvailableStereoStart(); !ok || ch != 5 {
		t.Errorf("expected 5, got %d", ch)
	}

	p.Assign(100, 2)
	if _, ok := p.OutputAt(1); ok {
		t.Error("expected output to move off channel 1")
	}

	id, ok := p.Unassign(2)
	if !ok || id != 100 {
		t.Errorf("expected to unassign 100, got %d %v", id, ok)
	}
	if _, ok := p.Unassign(2); ok {
		t.Error("expected second unassign to be a no-op")
	}

	p.Resize(2)
	if _, ok := p.ChannelOf(101); ok {
		t.Error("expected output on dropped channel to disappear")
	}
	if p.Assign(5, 9) {
		t.Error("expected out-of-range assign to fail")
	}
}

func TestEvictStereoLinks(t *testing.T) {
	got := channels.EvictStereoLinks([]int{15, 1, 4, 7, 1, 31, 0}, 16)
	want := []int{1, 7, 15}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if got := channels.EvictStereoLinks([]int{15}, 15); len(got) != 0 {
		t.Errorf("expected pair without partner to be dropped, got %v", got)
	}
}

func TestAddStereoLink(t *testing.T) {
	links := channels.AddStereoLink([]int{5}, 1)
	if !reflect.DeepEqual(links, []int{1, 5}) {
		t.Errorf("unexpected links %v", links)
	}
	if got := channels.AddStereoLink(links, 5); !reflect.DeepEqual(got, []int{1, 5}) {
		t.Errorf("expected no duplicate, got %v", got)
	}
}
