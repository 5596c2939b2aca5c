// Package share encodes stage plots into compact URL-safe payloads and
// decodes them back against the equipment catalog.
//
// A payload is JSON, gzip compressed, then base64url encoded without
// padding. Band and plot names travel in the URL path instead.
package share

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/abrezinsky/stageplot/internal/errors"
	"github.com/abrezinsky/stageplot/internal/migrate"
	"github.com/abrezinsky/stageplot/internal/models"
	"github.com/abrezinsky/stageplot/pkg/catalog"
)

// Version is the payload version written by Encode. Version 1 stored
// positions in pixels of a 1100px canvas; version 2 stores centi-feet.
const Version = 2

const legacyCanvasWidth = 1100.0

// ErrUnsupportedVersion is returned for payloads from an unknown format
var ErrUnsupportedVersion = errors.New("unsupported share format version")

// Variants is the closed set of variant keys in wire order. Keys outside
// the list encode as "default".
var Variants = []string{
	"default",
	"R",
	"L",
	"RA",
	"LA",
	"RB",
	"LB",
	"back",
	"backRA",
	"backLA",
	"B",
	"BRA",
	"BLA",
	"_Vocal",
	"_VocalR",
	"_VocalL",
	"_VocalRA",
	"_VocalLA",
	"_short",
	"_shortR",
	"_shortL",
	"_shortRA",
	"_shortLA",
	"_shortBack",
	"4",
	"projector",
	"quad",
}

// Person is a band contact carried in the payload
type Person struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	Pronouns   string `json:"pronouns"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	MemberType string `json:"member_type"`
	Status     string `json:"status"`
}

// Musician is a plot-level performer
type Musician struct {
	Name       string `json:"name"`
	Instrument string `json:"instrument"`
}

// Item is one placed item as the encoder sees it
type Item struct {
	Type           string
	ItemData       *models.ItemData
	CurrentVariant string
	Position       models.Position
	Channel        int
	Musician       string
}

// Input is everything Encode needs
type Input struct {
	StageWidth float64
	StageDepth float64
	Items      []Item
	Musicians  []Musician
	Persons    []Person
}

// payload is the wire record before compression
type payload struct {
	V  int           `json:"v"`
	SW float64       `json:"sw"`
	SD float64       `json:"sd"`
	P  []personTuple `json:"p"`
	M  [][2]string   `json:"m"`
	I  [][]float64   `json:"i"`
}

// personTuple is [name, role, pronouns, phone, email, memberType, status]
type personTuple struct {
	fields     [5]string
	memberType int
	status     int
}

func (t personTuple) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{
		t.fields[0], t.fields[1], t.fields[2], t.fields[3], t.fields[4],
		t.memberType, t.status,
	})
}

// wirePayload is the loose form Decode reads. Only the top level must be
// a JSON object; every sub-field is coerced on its own.
type wirePayload struct {
	V  json.RawMessage `json:"v"`
	SW json.RawMessage `json:"sw"`
	SD json.RawMessage `json:"sd"`
	P  json.RawMessage `json:"p"`
	M  json.RawMessage `json:"m"`
	I  json.RawMessage `json:"i"`
}

// rawFloat reads a number or a numeric string
func rawFloat(raw json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// rawInt reads an index, -1 when the value is not numeric
func rawInt(raw json.RawMessage) int {
	f, ok := rawFloat(raw)
	if !ok {
		return -1
	}
	return int(f)
}

// rawString reads a string; numbers and booleans keep their JSON text and
// anything else is empty
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch v.(type) {
	case float64, bool:
		return string(bytes.TrimSpace(raw))
	}
	return ""
}

// rawList reads a JSON array, nil for anything else
func rawList(raw json.RawMessage) []json.RawMessage {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	return list
}

func decodePerson(raw json.RawMessage) Person {
	fields := rawList(raw)
	str := func(n int) string {
		if n < len(fields) {
			return rawString(fields[n])
		}
		return ""
	}
	idx := func(n int) int {
		if n < len(fields) {
			return rawInt(fields[n])
		}
		return -1
	}
	return Person{
		Name:       str(0),
		Role:       str(1),
		Pronouns:   str(2),
		Phone:      str(3),
		Email:      str(4),
		MemberType: at(models.MemberTypes, idx(5), models.MemberTypes[0]),
		Status:     at(models.MemberStatuses, idx(6), models.MemberStatuses[0]),
	}
}

// Encode produces the compressed payload for input. Unknown item types,
// variants, member types and statuses encode as index 0; items without a
// catalog entry or musician encode -1 for those fields.
func Encode(input Input, idx catalog.Index) (string, error) {
	musicians := make(map[string]int, len(input.Musicians))
	for i, m := range input.Musicians {
		musicians[m.Name] = i
	}

	p := payload{
		V:  Version,
		SW: input.StageWidth,
		SD: input.StageDepth,
		P:  make([]personTuple, 0, len(input.Persons)),
		M:  make([][2]string, 0, len(input.Musicians)),
		I:  make([][]float64, 0, len(input.Items)),
	}
	for _, person := range input.Persons {
		p.P = append(p.P, personTuple{
			fields:     [5]string{person.Name, person.Role, person.Pronouns, person.Phone, person.Email},
			memberType: indexOr0(models.MemberTypes, person.MemberType),
			status:     indexOr0(models.MemberStatuses, person.Status),
		})
	}
	for _, m := range input.Musicians {
		p.M = append(p.M, [2]string{m.Name, m.Instrument})
	}
	for _, it := range input.Items {
		catalogIdx := -1
		if it.ItemData != nil {
			catalogIdx = idx.Lookup(it.ItemData.Path)
		}
		variant := it.CurrentVariant
		if variant == "" {
			variant = "default"
		}
		musicianIdx := -1
		if it.Musician != "" {
			if i, ok := musicians[it.Musician]; ok {
				musicianIdx = i
			}
		}
		channel := it.Channel
		if channel < 0 {
			channel = 0
		}

		tuple := []float64{
			float64(catalogIdx),
			float64(indexOr0(Variants, variant)),
			centi(it.Position.X),
			centi(it.Position.Y),
			centi(it.Position.Width),
			centi(it.Position.Height),
			float64(channel),
			float64(musicianIdx),
			float64(indexOr0(models.ItemTypes, it.Type)),
		}
		if it.Type == models.ItemTypeRiser && it.ItemData != nil {
			tuple = append(tuple,
				derefFloat(it.ItemData.RiserWidth),
				derefFloat(it.ItemData.RiserDepth),
				derefFloat(it.ItemData.RiserHeight))
		}
		p.I = append(p.I, tuple)
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrInternal, "failed to encode share payload")
	}
	return compress(raw)
}

// DecodedMusician is a musician with a generated id
type DecodedMusician struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Instrument string `json:"instrument"`
}

// DecodedItem is an item rebuilt from a payload tuple. Channel is the
// channel number as text, empty when unpatched.
type DecodedItem struct {
	ID             int              `json:"id"`
	Type           string           `json:"type"`
	Name           string           `json:"name"`
	ItemData       *models.ItemData `json:"itemData"`
	CurrentVariant string           `json:"currentVariant"`
	Position       models.Position  `json:"position"`
	Channel        string           `json:"channel"`
	Musician       string           `json:"musician"`
}

// ChannelNum returns the patched channel, or 0
func (it DecodedItem) ChannelNum() int {
	n, err := strconv.Atoi(it.Channel)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// DecodedPlot is a decoded share payload
type DecodedPlot struct {
	Version    int               `json:"version"`
	StageWidth float64           `json:"stageWidth"`
	StageDepth float64           `json:"stageDepth"`
	Persons    []Person          `json:"persons"`
	Musicians  []DecodedMusician `json:"musicians"`
	Items      []DecodedItem     `json:"items"`
}

// Decode expands a payload against the catalog it was encoded with.
// Indices out of range degrade to defaults: type "input", variant
// "default", no catalog data, no musician.
func Decode(encoded string, entries []catalog.Entry) (*DecodedPlot, error) {
	raw, err := decompress(encoded)
	if err != nil {
		return nil, err
	}
	var p wirePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInvalidInput, "share payload is not valid JSON")
	}
	// The version is the one field that must be a literal number
	var version float64
	if err := json.Unmarshal(p.V, &version); err != nil || (version != 1 && version != 2) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, bytes.TrimSpace(p.V))
	}
	v := int(version)
	stageW, _ := rawFloat(p.SW)
	stageD, _ := rawFloat(p.SD)
	persons, musicians, tuples := rawList(p.P), rawList(p.M), rawList(p.I)

	out := &DecodedPlot{
		Version:    v,
		StageWidth: stageW,
		StageDepth: stageD,
		Persons:    make([]Person, 0, len(persons)),
		Musicians:  make([]DecodedMusician, 0, len(musicians)),
		Items:      make([]DecodedItem, 0, len(tuples)),
	}
	for i, m := range musicians {
		pair := rawList(m)
		dm := DecodedMusician{ID: i + 1}
		if len(pair) > 0 {
			dm.Name = rawString(pair[0])
		}
		if len(pair) > 1 {
			dm.Instrument = rawString(pair[1])
		}
		out.Musicians = append(out.Musicians, dm)
	}
	for _, raw := range persons {
		out.Persons = append(out.Persons, decodePerson(raw))
	}

	// Version 2 positions are centi-feet, version 1 legacy pixels
	perFootX, perFootY := 100.0, 100.0
	if v == 1 {
		perFootX, perFootY = legacyPixelsPerFoot(stageW, stageD)
	}

	for i, rawTuple := range tuples {
		tuple := rawList(rawTuple)
		field := func(n int, def float64) float64 {
			if n < len(tuple) {
				if f, ok := rawFloat(tuple[n]); ok {
					return f
				}
			}
			return def
		}
		catalogIdx := int(field(0, -1))
		musicianIdx := int(field(7, -1))
		typeName := at(models.ItemTypes, int(field(8, 0)), models.ItemTypeInput)

		it := DecodedItem{
			ID:             i + 1,
			Type:           typeName,
			CurrentVariant: at(Variants, int(field(1, 0)), Variants[0]),
			Position: models.Position{
				X:      field(2, 0) / perFootX,
				Y:      field(3, 0) / perFootY,
				Width:  field(4, 0) / perFootX,
				Height: field(5, 0) / perFootY,
			},
		}
		if ch := int(field(6, 0)); ch > 0 {
			it.Channel = strconv.Itoa(ch)
		}
		if musicianIdx >= 0 && musicianIdx < len(out.Musicians) {
			it.Musician = out.Musicians[musicianIdx].Name
		}
		if catalogIdx >= 0 && catalogIdx < len(entries) {
			e := entries[catalogIdx]
			it.ItemData = &models.ItemData{
				Path:     e.Path,
				Name:     e.Name,
				ItemType: e.ItemType,
				Category: e.Category,
				Variants: copyVariants(e.Variants),
			}
		}
		if typeName == models.ItemTypeRiser && len(tuple) >= 12 {
			w, d, h := field(9, 0), field(10, 0), field(11, 0)
			it.ItemData = &models.ItemData{
				Name:        fmt.Sprintf("Riser %s'x%s'", formatFeet(w), formatFeet(d)),
				ItemType:    models.ItemTypeRiser,
				Variants:    map[string]string{},
				RiserWidth:  models.Float64Ptr(w),
				RiserDepth:  models.Float64Ptr(d),
				RiserHeight: models.Float64Ptr(h),
			}
		}
		if it.ItemData != nil {
			it.Name = it.ItemData.Name
		}
		out.Items = append(out.Items, it)
	}
	return out, nil
}

// legacyPixelsPerFoot reproduces the version 1 canvas: 1100px wide and
// scaled to the stage aspect ratio.
func legacyPixelsPerFoot(stageW, stageD float64) (float64, float64) {
	if stageW <= 0 || stageD <= 0 {
		stageW, stageD = 24, 16
	}
	return migrate.PixelsPerFoot(legacyCanvasWidth, stageW, stageD)
}

func compress(raw []byte) (string, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrInternal, "failed to compress share payload")
	}
	if err := zw.Close(); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrInternal, "failed to compress share payload")
	}
	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

func decompress(encoded string) ([]byte, error) {
	// Tolerate padding left by other encoders
	for len(encoded) > 0 && encoded[len(encoded)-1] == '=' {
		encoded = encoded[:len(encoded)-1]
	}
	compressed, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInvalidInput, "share payload is not base64url")
	}
	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInvalidInput, "share payload is not gzip data")
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInvalidInput, "share payload is truncated")
	}
	return raw, nil
}

// centi rounds halves toward positive infinity, as the browser encoder does
func centi(v float64) float64 {
	return math.Floor(v*100 + 0.5)
}

func indexOr0(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return 0
}

func at(list []string, i int, def string) string {
	if i >= 0 && i < len(list) {
		return list[i]
	}
	return def
}

func derefFloat(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func formatFeet(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func copyVariants(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
