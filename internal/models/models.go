package models

// Item types understood by the editor and the share codec. The order of
// ItemTypes is part of the share wire format and must never change.
const (
	ItemTypeInput          = "input"
	ItemTypeOutput         = "output"
	ItemTypeRiser          = "riser"
	ItemTypeStageDeck      = "stageDeck"
	ItemTypeAmp            = "amp"
	ItemTypeCableConnector = "cable_connector"
	ItemTypeDIBox          = "di_box"
	ItemTypeDrumset        = "drumset"
	ItemTypeEquipment      = "equipment"
	ItemTypeFurniture      = "furniture"
	ItemTypeInstrument     = "instrument"
	ItemTypeMicrophone     = "microphone"
	ItemTypeMixer          = "mixer"
	ItemTypeMonitor        = "monitor"
	ItemTypePedal          = "pedal"
	ItemTypePerson         = "person"
	ItemTypePower          = "power"
	ItemTypeSpeaker        = "speaker"
	ItemTypeStagebox       = "stagebox"
	ItemTypeStagecraft     = "stagecraft"
	ItemTypeStand          = "stand"
)

// ItemTypes is the closed set of item types in wire order.
var ItemTypes = []string{
	ItemTypeInput,
	ItemTypeOutput,
	ItemTypeRiser,
	ItemTypeStageDeck,
	ItemTypeAmp,
	ItemTypeCableConnector,
	ItemTypeDIBox,
	ItemTypeDrumset,
	ItemTypeEquipment,
	ItemTypeFurniture,
	ItemTypeInstrument,
	ItemTypeMicrophone,
	ItemTypeMixer,
	ItemTypeMonitor,
	ItemTypePedal,
	ItemTypePerson,
	ItemTypePower,
	ItemTypeSpeaker,
	ItemTypeStagebox,
	ItemTypeStagecraft,
	ItemTypeStand,
}

// Output link modes
const (
	LinkModeMono       = "mono"
	LinkModeStereoPair = "stereo_pair"
)

// Person member types and statuses, in share wire order
var (
	MemberTypes    = []string{"performer", "crew", "management", "other"}
	MemberStatuses = []string{"permanent", "occasional", "temporary", "inactive"}
)

// Position is an item's footprint on stage, in feet
type Position struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation,omitempty"`
}

// DefaultOutput describes an output implied by a catalog item
type DefaultOutput struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name,omitempty"`
	Type      string `json:"type,omitempty"`
	LinkMode  string `json:"link_mode,omitempty"`
}

// ItemData is the catalog provenance carried by a placed item
type ItemData struct {
	Name           string            `json:"name"`
	Path           string            `json:"path,omitempty"`
	ItemType       string            `json:"item_type,omitempty"`
	Category       string            `json:"category,omitempty"`
	Variants       map[string]string `json:"variants,omitempty"`
	VariantOrder   []string          `json:"variant_order,omitempty"`
	DefaultOutputs []DefaultOutput   `json:"default_outputs,omitempty"`
	RiserWidth     *float64          `json:"riserWidth,omitempty"`
	RiserDepth     *float64          `json:"riserDepth,omitempty"`
	RiserHeight    *float64          `json:"riserHeight,omitempty"`
}

// Item is a placed piece of equipment or structural element
type Item struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	Category       string    `json:"category,omitempty"`
	CurrentVariant string    `json:"currentVariant,omitempty"`
	Position       Position  `json:"position"`
	PersonID       *int      `json:"person_id"`
	ItemData       *ItemData `json:"itemData,omitempty"`
	Size           string    `json:"size,omitempty"`
}

// Output is a named signal destination (wedge, IEM, sub, ...)
type Output struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Type     string    `json:"type,omitempty"`
	LinkMode string    `json:"link_mode,omitempty"`
	ItemData *ItemData `json:"itemData,omitempty"`
}

// InputChannel is one console input slot
type InputChannel struct {
	ChannelNum int    `json:"channelNum"`
	ItemID     *int   `json:"itemId"`
	Color      string `json:"color,omitempty"`
	Name       string `json:"name"`
	ShortName  string `json:"shortName"`
	Phantom    bool   `json:"phantom"`
}

// OutputChannel is one console output slot
type OutputChannel struct {
	ChannelNum int  `json:"channelNum"`
	OutputID   *int `json:"outputId"`
}

// Person is a band or crew member. Owned outside the plot.
type Person struct {
	ID         int    `json:"id"`
	BandID     string `json:"band_id,omitempty"`
	Name       string `json:"name"`
	Role       string `json:"role,omitempty"`
	Pronouns   string `json:"pronouns,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	MemberType string `json:"member_type,omitempty"`
	Status     string `json:"status,omitempty"`
}

// Band groups plots and persons
type Band struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PlotSummary is a plot listing row
type PlotSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	BandID       string `json:"band_id"`
	RevisionDate string `json:"revision_date"`
	IsTemplate   bool   `json:"is_template"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	PlotID  string      `json:"plot_id,omitempty"`
	Payload interface{} `json:"payload"`
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}

// Float64Ptr returns a pointer to v
func Float64Ptr(v float64) *float64 {
	return &v
}
