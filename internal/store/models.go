package store

import (
	"errors"
	"time"
)

var (
	// ErrSourceNotFound indicates the requested source id is unknown.
	ErrSourceNotFound = errors.New("store: source not found")
	// ErrInvalidSource indicates a create/update with missing required fields.
	ErrInvalidSource = errors.New("store: name and url are required")
)

// Source is one monitored market endpoint and its detection state. All
// state is in-memory only; nothing survives a restart.
type Source struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	Faction string `json:"faction,omitempty"`
	Enabled bool   `json:"enabled"`

	// LastCheck is when the last poll attempt completed, conclusive or not.
	LastCheck *time.Time `json:"last_check"`
	// AlertCount counts alerts actually emitted, never suppressed ones.
	AlertCount int `json:"alert_count"`
	// Baseline is the last committed combined signature. Empty means no
	// baseline yet: the next conclusive poll establishes it silently.
	Baseline string `json:"baseline_signature,omitempty"`
	// LastBuyCount is the buy-row total of the last conclusive poll.
	LastBuyCount int `json:"last_buy_count"`
	// LastAlertAt is the epoch second of the last emitted alert, 0 if never.
	LastAlertAt int64 `json:"last_alert_at"`
}

// Update carries a partial edit of a source's mutable fields. Nil pointers
// leave the field untouched.
type Update struct {
	Name    *string
	URL     *string
	Faction *string
	Enabled *bool
}
