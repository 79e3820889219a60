// Package chat renders progress messages as game chat components.
package chat

import "encoding/json"

// Message is a JSON chat component.
type Message struct {
	Text   string    `json:"text"`
	Bold   bool      `json:"bold,omitempty"`
	Italic bool      `json:"italic,omitempty"`
	Color  string    `json:"color,omitempty"`
	Extra  []Message `json:"extra,omitempty"`
}

// Chat colors used by the broadcaster.
const (
	Gold  = "gold"
	Gray  = "gray"
	Green = "green"
	Red   = "red"
	White = "white"
)

// String serializes the message to JSON.
func (m Message) String() string {
	b, _ := json.Marshal(m)
	return string(b)
}

// Plain concatenates the text of m and its children without formatting.
func (m Message) Plain() string {
	s := m.Text
	for _, e := range m.Extra {
		s += e.Plain()
	}
	return s
}

// Text creates a simple text message.
func Text(text string) Message {
	return Message{Text: text}
}

// Colored creates a colored text message.
func Colored(text, color string) Message {
	return Message{Text: text, Color: color}
}

// Join builds one message from parts.
func Join(parts ...Message) Message {
	msg := Message{}
	if len(parts) > 0 {
		msg.Extra = parts
	}
	return msg
}
