package model

// PopupType identifies a host popup.
type PopupType int

// Popups requested by the race flow.
const (
	PopupIntro PopupType = iota + 1
	PopupEntry
	PopupSearching
	PopupExtendOffer
	PopupResult
	PopupClaimed
)

// NotificationKind discriminates Notification payloads.
type NotificationKind string

// Notification kinds published to subscribers.
const (
	KindStateChanged   NotificationKind = "state_changed"
	KindRunUpdated     NotificationKind = "run_updated"
	KindPopupRequested NotificationKind = "popup_requested"
	KindRewardGranted  NotificationKind = "reward_granted"
	KindLog            NotificationKind = "log"
)

// Notification is one observer event. Only the fields of its Kind are set;
// Run is nil on a run-updated notification when the run was cleared.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	From    State            `json:"from,omitempty"`
	To      State            `json:"to,omitempty"`
	Run     *Run             `json:"run,omitempty"`
	Popup   PopupType        `json:"popup,omitempty"`
	Payload any              `json:"payload,omitempty"`
	Reward  *Reward          `json:"reward,omitempty"`
	Message string           `json:"message,omitempty"`
}
