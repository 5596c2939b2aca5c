// Package scene writes console scene files from a plot's input patch.
package scene

import (
	"fmt"
	"strings"

	"github.com/abrezinsky/stageplot/internal/consoles"
	"github.com/abrezinsky/stageplot/internal/models"
)

// X32 scene limits
const (
	X32Channels   = 32
	X32NameLength = 12
)

// Channel is one named input in the scene
type Channel struct {
	Number int
	Name   string
	Color  string // console color id, e.g. "red_inv"
}

// Options describes an X32 scene
type Options struct {
	Name        string
	Channels    []Channel
	StereoLinks []int // odd start channels
	MaxChannels int   // defaults to 32
}

// ChannelsFromPatch converts a patch list. The short name is preferred
// over the full name; unnamed, uncolored channels are skipped.
func ChannelsFromPatch(chs []models.InputChannel) []Channel {
	out := make([]Channel, 0, len(chs))
	for _, ch := range chs {
		name := ch.ShortName
		if name == "" {
			name = ch.Name
		}
		if name == "" && ch.Color == "" {
			continue
		}
		out = append(out, Channel{Number: ch.ChannelNum, Name: name, Color: ch.Color})
	}
	return out
}

// X32 renders a minimal X32 / M32 .scn file: channel names, scribble
// colors and stereo links. Everything else stays at factory defaults.
func X32(opts Options) string {
	max := opts.MaxChannels
	if max <= 0 {
		max = X32Channels
	}
	byNum := make(map[int]Channel, len(opts.Channels))
	for _, ch := range opts.Channels {
		byNum[ch.Number] = ch
	}

	var lines []string
	lines = append(lines, fmt.Sprintf(`#2# "%s" "" 0 0 0 0 0 0 0 0 0 0`, sanitizeName(opts.Name)))

	for i := 1; i <= max; i++ {
		ch := byNum[i]
		// icon 1, source is the channel's own physical input
		lines = append(lines, fmt.Sprintf(`/ch/%02d/config "%s" 1 %s %d`, i, sanitizeName(ch.Name), colorCode(ch.Color), i))
	}
	for i := 1; i <= max; i++ {
		lines = append(lines, fmt.Sprintf("/ch/%02d/preamp 0.0000 0.5000 OFF 80 OFF", i))
	}
	for i := 1; i <= max; i++ {
		lines = append(lines, fmt.Sprintf("/ch/%02d/gate OFF GATE -30.0 5 1 10 200 0", i))
	}
	for i := 1; i <= max; i++ {
		lines = append(lines, fmt.Sprintf("/ch/%02d/dyn OFF COMP RMS LIN 0.0 3.0 1 10 10 0 0 0 OFF 120", i))
	}
	for i := 1; i <= max; i++ {
		lines = append(lines, fmt.Sprintf("/ch/%02d/insert OFF POST OFF", i))
	}

	linked := make(map[int]bool, len(opts.StereoLinks))
	for _, l := range opts.StereoLinks {
		linked[l] = true
	}
	pairs := make([]string, 0, max/2)
	for pair := 0; pair < max/2; pair++ {
		if linked[pair*2+1] {
			pairs = append(pairs, "ON")
		} else {
			pairs = append(pairs, "OFF")
		}
	}
	lines = append(lines,
		"/config/chlink "+strings.Join(pairs, " "),
		"/config/buslink "+offs(8),
		"/config/auxlink "+offs(3),
		"/config/fxlink "+offs(4),
		"/config/mtxlink "+offs(3),
		"/config/routing/IN AN1-8 AN9-16 AN17-24 AN25-32 AUX1-6",
	)
	return strings.Join(lines, "\n") + "\n"
}

// sanitizeName cuts to the scribble length and swaps double quotes
func sanitizeName(name string) string {
	r := []rune(name)
	if len(r) > X32NameLength {
		r = r[:X32NameLength]
	}
	return strings.ReplaceAll(string(r), `"`, "'")
}

func colorCode(id string) string {
	if id == "" {
		return "OFF"
	}
	x32, _ := consoles.Get("x32")
	if c, ok := x32.ColorByID(id); ok {
		return c.SceneCode
	}
	return "OFF"
}

func offs(n int) string {
	return strings.TrimSuffix(strings.Repeat("OFF ", n), " ")
}
