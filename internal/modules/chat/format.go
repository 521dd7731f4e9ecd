package chat

import "time"

// TimeLayout renders hour:minute with a lower-case am/pm marker, e.g. "3:04 pm".
const TimeLayout = "3:04 pm"

// Envelope is the payload of an outbound "message" event.
type Envelope struct {
	Username string `json:"username"`
	Text     string `json:"text"`
	Time     string `json:"time"`
}

// Format builds the message envelope for text sent by username at when.
func Format(username, text string, when time.Time) Envelope {
	return Envelope{
		Username: username,
		Text:     text,
		Time:     when.Format(TimeLayout),
	}
}
