package events

import "time"

type IdentityEventType string

const (
	IdentityPromoted IdentityEventType = "identity.promoted"
	IdentityRetired  IdentityEventType = "identity.retired"
)

type IdentityEvent struct {
	Type      IdentityEventType `json:"type"`
	Pool      string            `json:"pool"`
	Proxy     string            `json:"proxy"`
	BrowserID string            `json:"browser_id,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	At        time.Time         `json:"at"`
}
