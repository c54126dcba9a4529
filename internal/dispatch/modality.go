package dispatch

import (
	"strings"

	"github.com/ssplabs/atende/internal/bus"
)

// Modality classifies an inbound event into exactly one processing path.
type Modality string

const (
	ModalityLocation    Modality = "location"
	ModalityAudio       Modality = "audio"
	ModalityImage       Modality = "image"
	ModalityText        Modality = "text"
	ModalityUnsupported Modality = "unsupported"
)

// Classify resolves the active modality with fixed precedence:
// location over media, media over plain text. First match wins.
func Classify(msg bus.InboundMessage) Modality {
	if msg.HasLocation() {
		return ModalityLocation
	}
	if msg.NumMedia > 0 {
		switch {
		case strings.Contains(msg.MimeType, "audio"):
			return ModalityAudio
		case strings.Contains(msg.MimeType, "image"):
			return ModalityImage
		default:
			return ModalityUnsupported
		}
	}
	return ModalityText
}
