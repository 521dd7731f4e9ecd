package websocket

import (
	"encoding/json"
	"fmt"
)

// Inbound event names.
const (
	EventJoinRoom    = "joinRoom"
	EventChatMessage = "chatMessage"
)

// Frame is the envelope of every WebSocket message in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func decodeFrame(data []byte) (Frame, error) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	return frame, nil
}

// outboundFrame is encoded once per emission and shared by all recipients.
type outboundFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// EncodeFrame marshals an outbound event.
func EncodeFrame(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(outboundFrame{Event: event, Data: payload})
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", event, err)
	}
	return data, nil
}

// joinRoomData is the payload of an inbound joinRoom frame.
type joinRoomData struct {
	Room string `json:"room"`
}

// decodeRoom extracts the requested room. Missing or malformed data yields an
// empty room, which the engine rejects with an error event.
func decodeRoom(raw json.RawMessage) string {
	var data joinRoomData
	if len(raw) == 0 {
		return ""
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return ""
	}
	return data.Room
}

// decodeText extracts chat text. Clients send the raw text as a JSON string;
// an object of the form {"text": "..."} is accepted as well.
func decodeText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil
	}

	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", fmt.Errorf("decode chat message: %w", err)
	}
	return obj.Text, nil
}
