package socket

import (
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// FrameUpdate is the only inbound frame type routed to widgets.
const FrameUpdate = "update"

const (
	pingText = "ping"
	pongText = "pong"
)

// Frame is one inbound message from the feed.
type Frame struct {
	Type     string          `json:"type"`
	WidgetID string          `json:"widget_id,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// IsUpdate reports whether f carries data for a channel.
func (f Frame) IsUpdate() bool {
	return f.Type == FrameUpdate && f.WidgetID != ""
}

// DecodeFrame parses a text frame.
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, errors.Wrap(err, "decode frame")
	}
	return f, nil
}

// EncodeUpdate builds the frame the feed sends for channel.
func EncodeUpdate(channel string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s payload", channel)
	}
	return json.Marshal(Frame{Type: FrameUpdate, WidgetID: channel, Data: raw})
}

// EncodeControl builds an outbound control message. The kind always wins over
// a "type" field in msg.
func EncodeControl(kind string, msg map[string]any) ([]byte, error) {
	if kind == "" {
		return nil, ErrEmptyKind
	}
	out := make(map[string]any, len(msg)+1)
	for k, v := range msg {
		out[k] = v
	}
	out["type"] = kind
	data, err := json.Marshal(out)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s message", kind)
	}
	return data, nil
}
