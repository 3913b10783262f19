package api

import (
	"encoding/json"

	"github.com/dixieflatline76/Lumen/pkg/background"
	"github.com/dixieflatline76/Lumen/pkg/provider"
)

// Outbound message types pushed to the page.
const (
	MsgFrame         = "frame"
	MsgPlayerCommand = "playerCommand"
	MsgCurrentImage  = "currentImage"
	MsgPong          = "pong"
)

// Inbound message types received from the page.
const (
	MsgInit       = "init"
	MsgConfig     = "config"
	MsgRefresh    = "refresh"
	MsgApply      = "apply"
	MsgVideoEnded = "videoEnded"
	MsgPing       = "ping"
)

// outbound is the envelope for every message pushed to the page. Exactly
// one payload field is set, matching Type.
type outbound struct {
	Type    string                    `json:"type"`
	Frame   *background.Frame         `json:"frame,omitempty"`
	Command *background.PlayerCommand `json:"command,omitempty"`
	Meta    *background.CurrentMeta   `json:"meta,omitempty"`
}

// inbound is the envelope for every message received from the page.
// Payload fields are decoded lazily per type.
type inbound struct {
	Type       string          `json:"type"`
	State      json.RawMessage `json:"state,omitempty"`
	Background json.RawMessage `json:"background,omitempty"`
	Record     json.RawMessage `json:"record,omitempty"`
}

func (m *inbound) decodeState() (background.State, error) {
	var st background.State
	err := json.Unmarshal(m.State, &st)
	return st, err
}

func (m *inbound) decodeConfig() (background.Config, error) {
	var cfg background.Config
	err := json.Unmarshal(m.Background, &cfg)
	return cfg, err
}

func (m *inbound) decodeRecord() (provider.ImageRecord, error) {
	var rec provider.ImageRecord
	err := json.Unmarshal(m.Record, &rec)
	return rec, err
}
