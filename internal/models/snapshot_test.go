package models_test

import (
	"reflect"
	"testing"

	"github.com/abrezinsky/stageplot/internal/models"
)

func sampleSnapshot() models.Snapshot {
	return models.Snapshot{
		Version: models.SnapshotVersion,
		Items: []models.Item{{
			ID:       1,
			Name:     "Riser",
			Type:     models.ItemTypeRiser,
			PersonID: models.IntPtr(4),
			Position: models.Position{X: 1, Y: 2, Width: 8, Height: 4},
			ItemData: &models.ItemData{
				Name:         "Riser 8'x4'",
				ItemType:     models.ItemTypeRiser,
				Variants:     map[string]string{"default": "riser.png"},
				VariantOrder: []string{"default"},
				DefaultOutputs: []models.DefaultOutput{
					{Name: "Wedge", LinkMode: models.LinkModeMono},
				},
				RiserWidth:  models.Float64Ptr(8),
				RiserDepth:  models.Float64Ptr(4),
				RiserHeight: models.Float64Ptr(1),
			},
		}},
		InputChannels:  []models.InputChannel{{ChannelNum: 1, ItemID: models.IntPtr(1), Name: "Riser"}},
		OutputChannels: []models.OutputChannel{{ChannelNum: 1, OutputID: models.IntPtr(9)}},
		Outputs:        []models.Output{{ID: 9, Name: "Wedge", ItemData: &models.ItemData{Name: "Wedge"}}},
	}
}

func TestSnapshotClone_Equal(t *testing.T) {
	s := sampleSnapshot()
	c := s.Clone()
	if !reflect.DeepEqual(s, c) {
		t.Fatalf("expected clone to equal original\n%+v\n%+v", s, c)
	}
}

func TestSnapshotClone_NoAliasing(t *testing.T) {
	s := sampleSnapshot()
	c := s.Clone()

	c.Items[0].Position.X = 99
	*c.Items[0].PersonID = 77
	c.Items[0].ItemData.Variants["default"] = "other.png"
	c.Items[0].ItemData.VariantOrder[0] = "R"
	c.Items[0].ItemData.DefaultOutputs[0].Name = "IEM"
	*c.Items[0].ItemData.RiserWidth = 12
	*c.InputChannels[0].ItemID = 2
	*c.OutputChannels[0].OutputID = 3
	c.Outputs[0].ItemData.Name = "Sub"

	if !reflect.DeepEqual(s, sampleSnapshot()) {
		t.Errorf("mutating the clone changed the original: %+v", s)
	}
}

func TestClone_NilsStayNil(t *testing.T) {
	var d *models.ItemData
	if d.Clone() != nil {
		t.Error("expected nil item data clone to be nil")
	}
	if models.CloneItems(nil) != nil || models.CloneOutputs(nil) != nil {
		t.Error("expected nil slices to stay nil")
	}
	if models.CloneInputChannels(nil) != nil || models.CloneOutputChannels(nil) != nil {
		t.Error("expected nil channel slices to stay nil")
	}
	empty := models.CloneItems([]models.Item{})
	if empty == nil || len(empty) != 0 {
		t.Error("expected empty slice to stay empty and non-nil")
	}
}
