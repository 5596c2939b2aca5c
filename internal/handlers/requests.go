package handlers

import "github.com/abrezinsky/stageplot/internal/models"

// LoginRequest carries the editor password
type LoginRequest struct {
	Password string `json:"password"`
}

// PlotCreateRequest represents a request to create a plot
type PlotCreateRequest struct {
	BandID string `json:"band_id"`
	Name   string `json:"name"`
}

// PlotUpdateRequest changes plot-level fields. Nil fields are left alone.
type PlotUpdateRequest struct {
	Name         *string  `json:"name"`
	RevisionDate *string  `json:"revision_date"`
	StageWidth   *float64 `json:"stage_width"`
	StageDepth   *float64 `json:"stage_depth"`
}

// PlotCopyRequest names a duplicate, template, or plot made from a template
type PlotCopyRequest struct {
	Name   string `json:"name"`
	BandID string `json:"band_id,omitempty"`
}

// ItemCreateRequest places an item, optionally patching it
type ItemCreateRequest struct {
	Name           string           `json:"name"`
	Type           string           `json:"type"`
	Category       string           `json:"category"`
	CurrentVariant string           `json:"currentVariant"`
	Position       models.Position  `json:"position"`
	PersonID       *int             `json:"person_id"`
	ItemData       *models.ItemData `json:"itemData"`
	Channel        int              `json:"channel,omitempty"`
}

// ItemUpdateRequest sets one item property from its string form
type ItemUpdateRequest struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

// ItemDuplicateRequest offsets the copy in feet
type ItemDuplicateRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// NudgeRequest moves several items by a delta in feet
type NudgeRequest struct {
	IDs []int   `json:"ids"`
	DX  float64 `json:"dx"`
	DY  float64 `json:"dy"`
}

// ReorderRequest moves an item within the draw order
type ReorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// MoveZRequest is front, back, forward or backward
type MoveZRequest struct {
	Direction string `json:"direction"`
}

// VariantRequest selects a variant by key or rotates by step
type VariantRequest struct {
	Key  string `json:"key,omitempty"`
	Step int    `json:"step,omitempty"`
}

// ChannelModeRequest resizes a patch list
type ChannelModeRequest struct {
	Channels int `json:"channels"`
}

// StereoLinksRequest replaces the stereo link starts
type StereoLinksRequest struct {
	Links []int `json:"links"`
}

// InputAssignRequest patches an item to a channel
type InputAssignRequest struct {
	ItemID int `json:"item_id"`
}

// InputUpdateRequest changes channel fields. Nil fields are left alone.
type InputUpdateRequest struct {
	Name      *string `json:"name"`
	ShortName *string `json:"shortName"`
	Color     *string `json:"color"`
	Phantom   *bool   `json:"phantom"`
}

// OutputCreateRequest adds an output on a channel; zero picks the next free one
type OutputCreateRequest struct {
	Output  models.Output `json:"output"`
	Channel int           `json:"channel"`
}

// OutputAssignRequest moves an output to a channel
type OutputAssignRequest struct {
	OutputID int `json:"output_id"`
}

// DefaultOutputsRequest adds the outputs implied by a catalog item
type DefaultOutputsRequest struct {
	ItemData *models.ItemData `json:"itemData"`
}

// ConsoleRequest selects a console; empty clears it
type ConsoleRequest struct {
	ConsoleType string `json:"console_type"`
}

// ShareDecodeRequest carries a payload or full share URL
type ShareDecodeRequest struct {
	Payload string `json:"payload"`
}

// ShareImportRequest imports a share into a band
type ShareImportRequest struct {
	BandID  string `json:"band_id"`
	Payload string `json:"payload"`
	Name    string `json:"name"`
}

// BandCreateRequest represents a request to create a band
type BandCreateRequest struct {
	Name string `json:"name"`
}

// SettingsUpdateRequest represents a request to update settings
type SettingsUpdateRequest struct {
	ShareBaseURL    string  `json:"share_base_url"`
	DefaultConsole  *string `json:"default_console"`
	WriteDebounceMS int     `json:"write_debounce_ms"`
}

// DatabaseResetRequest represents a request to reset database tables
type DatabaseResetRequest struct {
	Tables []string `json:"tables"`
}
