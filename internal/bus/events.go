package bus

import "fmt"

// InboundMessage is the normalized view of a webhook or channel event.
type InboundMessage struct {
	Channel            string            // source channel name (e.g. "whatsapp", "telegram")
	SenderID           string            // sender identifier
	ChatID             string            // chat/conversation identifier
	Content            string            // text body, empty for pure media events
	MediaURL           string            // URL of the attached media, if any
	MimeType           string            // content type of the attached media
	NumMedia           int               // number of attached media items
	Latitude           *float64          // set only for location events
	Longitude          *float64          // set only for location events
	SessionKeyOverride string            // optional override for session routing
	Metadata           map[string]string // arbitrary metadata
}

// SessionKey returns the routing key for session management.
// Uses SessionKeyOverride if set, otherwise "channel:chatID".
func (m InboundMessage) SessionKey() string {
	if m.SessionKeyOverride != "" {
		return m.SessionKeyOverride
	}
	return fmt.Sprintf("%s:%s", m.Channel, m.ChatID)
}

// HasLocation reports whether both coordinates are present.
func (m InboundMessage) HasLocation() bool {
	return m.Latitude != nil && m.Longitude != nil
}

// OutboundMessage is a message to be delivered to a channel, either as
// the reply to an inbound event or out-of-band by the background
// completion path.
type OutboundMessage struct {
	Channel  string            // target channel
	ChatID   string            // target chat
	Content  string            // text content
	Type     string            // "text" or "error"
	Metadata map[string]string // arbitrary metadata
}
