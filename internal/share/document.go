package share

import (
	"github.com/abrezinsky/stageplot/internal/channels"
	"github.com/abrezinsky/stageplot/internal/migrate"
	"github.com/abrezinsky/stageplot/internal/models"
	"github.com/abrezinsky/stageplot/internal/plot"
)

// Stage is the stage size in feet
type Stage struct {
	Width float64
	Depth float64
}

// InputFromDocument builds encoder input from a document snapshot.
// Musicians are the people linked to the plot, their role standing in for
// the instrument; items point at them through person_id. Persons are the
// band contacts to include.
func InputFromDocument(s models.Snapshot, stage Stage, musicians, persons []models.Person) Input {
	channelOf := make(map[int]int)
	for _, ch := range s.InputChannels {
		if ch.ItemID != nil {
			channelOf[*ch.ItemID] = ch.ChannelNum
		}
	}
	musicianName := make(map[int]string, len(musicians))

	in := Input{
		StageWidth: stage.Width,
		StageDepth: stage.Depth,
		Items:      make([]Item, 0, len(s.Items)),
		Musicians:  make([]Musician, 0, len(musicians)),
		Persons:    make([]Person, 0, len(persons)),
	}
	for _, m := range musicians {
		musicianName[m.ID] = m.Name
		in.Musicians = append(in.Musicians, Musician{Name: m.Name, Instrument: m.Role})
	}
	for _, p := range persons {
		in.Persons = append(in.Persons, Person{
			Name:       p.Name,
			Role:       p.Role,
			Pronouns:   p.Pronouns,
			Phone:      p.Phone,
			Email:      p.Email,
			MemberType: p.MemberType,
			Status:     p.Status,
		})
	}
	for _, it := range s.Items {
		item := Item{
			Type:           it.Type,
			ItemData:       it.ItemData,
			CurrentVariant: it.CurrentVariant,
			Position:       it.Position,
			Channel:        channelOf[it.ID],
		}
		if it.PersonID != nil {
			item.Musician = musicianName[*it.PersonID]
		}
		in.Items = append(in.Items, item)
	}
	return in
}

// ToDocument materializes the decoded plot as a new document. personIDs
// holds the stored person for each musician by index (zero for none);
// items linked to a musician point at that person and the plot links
// every listed person. Items are patched to their decoded channels, the
// first claim on a channel winning.
func (d *DecodedPlot) ToDocument(id, bandID, name string, personIDs []int, opts ...plot.Option) *plot.Document {
	musicianIdx := make(map[string]int, len(d.Musicians))
	for i := len(d.Musicians) - 1; i >= 0; i-- {
		musicianIdx[d.Musicians[i].Name] = i
	}

	inputs := channels.NewInputPatch(plot.DefaultInputChannels)
	items := make([]models.Item, 0, len(d.Items))
	for _, di := range d.Items {
		it := models.Item{
			ID:             di.ID,
			Name:           di.Name,
			Type:           di.Type,
			CurrentVariant: di.CurrentVariant,
			Position: models.Position{
				X:      migrate.Round4(di.Position.X),
				Y:      migrate.Round4(di.Position.Y),
				Width:  migrate.Round4(di.Position.Width),
				Height: migrate.Round4(di.Position.Height),
			},
			ItemData: di.ItemData.Clone(),
		}
		if it.ItemData != nil {
			it.Category = it.ItemData.Category
		}
		if i, ok := musicianIdx[di.Musician]; ok && di.Musician != "" && i < len(personIDs) && personIDs[i] > 0 {
			it.PersonID = models.IntPtr(personIDs[i])
		}
		if ch := di.ChannelNum(); ch > 0 {
			if _, taken := inputs.ItemAt(ch); !taken {
				inputs.Assign(it.ID, ch, it.Name)
			}
		}
		items = append(items, it)
	}

	linked := make([]int, 0, len(personIDs))
	seen := make(map[int]bool, len(personIDs))
	for _, pid := range personIDs {
		if pid > 0 && !seen[pid] {
			seen[pid] = true
			linked = append(linked, pid)
		}
	}

	doc := plot.FromState(plot.State{
		ID:            id,
		BandID:        bandID,
		Name:          name,
		StageWidth:    d.StageWidth,
		StageDepth:    d.StageDepth,
		PersonIDs:     linked,
		Items:         items,
		InputChannels: inputs.Snapshot(),
	}, opts...)
	doc.ResetHistory()
	return doc
}
