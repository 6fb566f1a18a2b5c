package model

// SaveVersion is the current save record schema version.
const SaveVersion = 2

// Save is the durable snapshot of the event flow for one player.
type Save struct {
	Version                  int   `json:"version"`
	LastEntryShownWindowID   int   `json:"last_entry_shown_window_id"`
	LastJoinLocalUnixSeconds int64 `json:"last_join_local_unix_seconds"`
	ConfigCursor             int   `json:"config_cursor"`
	CurrentRun               *Run  `json:"current_run"`
	LastFlowState            State `json:"last_flow_state"`
	SearchingStartUTC        int64 `json:"searching_start_utc_seconds"`
	SeenPopupTypes           []int `json:"seen_popup_types"`
	LastRoundBaseUTC         int64 `json:"last_round_base_utc_seconds,omitempty"`
}

// NewSave returns a clean save in the idle state.
func NewSave() Save {
	return Save{Version: SaveVersion, LastFlowState: StateIdle}
}
