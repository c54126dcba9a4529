// Package dispatch routes inbound events through the modality-specific
// transform chain, the conversational agent, and the interaction
// recorder. It is the only component with real control flow; everything
// it calls is a collaborator behind a narrow contract.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ssplabs/atende/internal/agent"
	"github.com/ssplabs/atende/internal/bus"
	"github.com/ssplabs/atende/internal/recorder"
	"github.com/ssplabs/atende/internal/result"
)

const (
	unsupportedReply = "Tipo de mensagem não suportado."
	genericFailure   = "Ocorreu um erro ao processar sua mensagem. Tente novamente."
)

// UtteranceResolver turns a media URL into a text utterance.
type UtteranceResolver interface {
	Resolve(ctx context.Context, mediaURL string) result.Result[string]
}

// ReverseGeocoder resolves a coordinate pair into an address.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lon float64) result.Result[string]
}

// Config holds the dispatcher's collaborators and settings.
type Config struct {
	Bus      *bus.MessageBus
	Agent    *agent.Agent
	Audio    UtteranceResolver
	Image    UtteranceResolver
	Geocoder ReverseGeocoder
	Recorder *recorder.Recorder

	// AsyncAudio detaches audio processing from the inbound event:
	// the webhook is acknowledged immediately and the eventual reply
	// is delivered out-of-band.
	AsyncAudio bool

	// Timeout bounds the processing of one event. Zero means no
	// deadline beyond the caller's context.
	Timeout time.Duration
}

// Dispatcher consumes inbound events and runs the request pipeline.
type Dispatcher struct {
	bus        *bus.MessageBus
	agent      *agent.Agent
	audio      UtteranceResolver
	image      UtteranceResolver
	geocoder   ReverseGeocoder
	recorder   *recorder.Recorder
	asyncAudio bool
	timeout    time.Duration
}

// New creates a Dispatcher from cfg.
func New(cfg Config) *Dispatcher {
	return &Dispatcher{
		bus:        cfg.Bus,
		agent:      cfg.Agent,
		audio:      cfg.Audio,
		image:      cfg.Image,
		geocoder:   cfg.Geocoder,
		recorder:   cfg.Recorder,
		asyncAudio: cfg.AsyncAudio,
		timeout:    cfg.Timeout,
	}
}

// Run consumes inbound events from the bus, processing each in its own
// goroutine. Returns when ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		msg, err := d.bus.ConsumeInbound(ctx)
		if err != nil {
			return err
		}
		go d.Handle(ctx, msg)
	}
}

// Handle processes one inbound event end to end. For audio in async
// mode the event is acknowledged immediately and completion runs on a
// detached task that cannot be cancelled once spawned.
func (d *Dispatcher) Handle(ctx context.Context, msg bus.InboundMessage) {
	modality := Classify(msg)
	if d.asyncAudio && modality == ModalityAudio {
		go d.process(context.WithoutCancel(ctx), msg, modality)
		return
	}
	d.process(ctx, msg, modality)
}

// process runs the full pipeline for one event. Exactly one interaction
// record is written per event, whichever branch executes and wherever
// it exits, including panics out of collaborators.
func (d *Dispatcher) process(ctx context.Context, msg bus.InboundMessage, modality Modality) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	start := time.Now()
	sessionID := msg.SessionKey()
	input := placeholderInput(msg, modality)
	var output string

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in request pipeline", "session", sessionID, "modality", modality, "panic", r)
			output = genericFailure
			d.send(msg, output, "error")
		}
		d.recorder.Log(recorder.Record{
			SessionID: sessionID,
			Input:     input,
			Output:    output,
			Modality:  string(modality),
			LatencyMS: time.Since(start).Milliseconds(),
		})
	}()

	switch modality {
	case ModalityUnsupported:
		output = unsupportedReply
		d.send(msg, output, "error")
		return

	case ModalityLocation:
		addr := d.geocoder.Reverse(ctx, *msg.Latitude, *msg.Longitude)
		if !addr.Success() {
			output = "Erro ao obter endereço: " + addr.Err()
			d.send(msg, output, "error")
			return
		}
		input = "Localização recebida:\nEndereço: " + addr.Data()

	case ModalityAudio:
		utterance := d.audio.Resolve(ctx, msg.MediaURL)
		if !utterance.Success() {
			output = utterance.Err()
			d.send(msg, output, "error")
			return
		}
		input = utterance.Data()

	case ModalityImage:
		utterance := d.image.Resolve(ctx, msg.MediaURL)
		if !utterance.Success() {
			output = utterance.Err()
			d.send(msg, output, "error")
			return
		}
		input = utterance.Data()

	case ModalityText:
		input = msg.Content
	}

	reply := d.agent.GenerateReply(ctx, input, sessionID)
	if !reply.Success() {
		output = reply.Err()
		d.send(msg, output, "error")
		return
	}
	output = reply.Data()
	d.send(msg, output, "text")
}

// send publishes the reply back onto the bus for out-of-band delivery
// by the originating channel.
func (d *Dispatcher) send(msg bus.InboundMessage, content, typ string) {
	d.bus.PublishOutbound(bus.OutboundMessage{
		Channel: msg.Channel,
		ChatID:  msg.ChatID,
		Content: content,
		Type:    typ,
	})
}

// placeholderInput is what the interaction record carries when the
// chain never resolved a text utterance.
func placeholderInput(msg bus.InboundMessage, modality Modality) string {
	switch modality {
	case ModalityLocation:
		return fmt.Sprintf("[location] %f,%f", *msg.Latitude, *msg.Longitude)
	case ModalityAudio:
		return "[audio] " + msg.MediaURL
	case ModalityImage:
		return "[image] " + msg.MediaURL
	case ModalityUnsupported:
		return "[unsupported] " + msg.MimeType
	default:
		return msg.Content
	}
}
