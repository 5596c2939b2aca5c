package handlers

import (
	"github.com/abrezinsky/stageplot/internal/models"
	"github.com/abrezinsky/stageplot/internal/services"
)

// PlotResponse is the JSON form of an open plot
type PlotResponse struct {
	ID                    string                 `json:"id"`
	BandID                string                 `json:"band_id"`
	Name                  string                 `json:"name"`
	RevisionDate          string                 `json:"revision_date"`
	StageWidth            float64                `json:"stage_width"`
	StageDepth            float64                `json:"stage_depth"`
	CanvasWidth           float64                `json:"canvas_width"`
	ConsoleType           string                 `json:"console_type"`
	InputChannelMode      int                    `json:"input_channel_mode"`
	OutputChannelMode     int                    `json:"output_channel_mode"`
	CategoryColorDefaults map[string]string      `json:"category_color_defaults"`
	StereoLinks           []int                  `json:"stereo_links"`
	OutputStereoLinks     []int                  `json:"output_stereo_links"`
	PersonIDs             []int                  `json:"person_ids"`
	IsTemplate            bool                   `json:"is_template"`
	SourcePlotID          string                 `json:"source_plot_id,omitempty"`
	Items                 []models.Item          `json:"items"`
	Outputs               []models.Output        `json:"outputs"`
	InputChannels         []models.InputChannel  `json:"inputChannels"`
	OutputChannels        []models.OutputChannel `json:"outputChannels"`
	CanUndo               bool                   `json:"can_undo"`
	CanRedo               bool                   `json:"can_redo"`
	Pending               bool                   `json:"pending"`
}

func toPlotResponse(v *services.PlotView) PlotResponse {
	return PlotResponse{
		ID:                    v.ID,
		BandID:                v.BandID,
		Name:                  v.Name,
		RevisionDate:          v.RevisionDate,
		StageWidth:            v.StageWidth,
		StageDepth:            v.StageDepth,
		CanvasWidth:           v.CanvasWidth,
		ConsoleType:           v.ConsoleType,
		InputChannelMode:      len(v.InputChannels),
		OutputChannelMode:     len(v.OutputChannels),
		CategoryColorDefaults: v.CategoryColorDefaults,
		StereoLinks:           v.StereoLinks,
		OutputStereoLinks:     v.OutputStereoLinks,
		PersonIDs:             v.PersonIDs,
		IsTemplate:            v.IsTemplate,
		SourcePlotID:          v.SourcePlotID,
		Items:                 v.Items,
		Outputs:               v.Outputs,
		InputChannels:         v.InputChannels,
		OutputChannels:        v.OutputChannels,
		CanUndo:               v.CanUndo,
		CanRedo:               v.CanRedo,
		Pending:               v.Pending,
	}
}

// IDResponse is returned when something is created
type IDResponse struct {
	ID string `json:"id"`
}

// PersonIDResponse is returned when a person is created
type PersonIDResponse struct {
	ID int64 `json:"id"`
}

// HistoryResponse reports the result of an undo or redo
type HistoryResponse struct {
	Applied bool `json:"applied"`
}

// ShareResponse is an encoded plot
type ShareResponse struct {
	Payload string `json:"payload"`
	URL     string `json:"url,omitempty"`
}

// ShareLinkResponse is what the server knows about a share link; the
// payload stays in the fragment
type ShareLinkResponse struct {
	Band string `json:"band"`
	Plot string `json:"plot"`
}

// SettingsResponse is the response for settings
type SettingsResponse struct {
	ShareBaseURL    string `json:"share_base_url"`
	DefaultConsole  string `json:"default_console"`
	WriteDebounceMS int64  `json:"write_debounce_ms"`
}

// ResetResponse is the response for a database reset
type ResetResponse struct {
	Message string   `json:"message"`
	Tables  []string `json:"tables"`
}
