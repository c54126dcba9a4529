package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/ssplabs/atende/internal/bus"
)

func init() {
	Register("whatsapp", newWhatsAppChannel)
}

type whatsAppConfig struct {
	InstanceID   string   `json:"instanceId"`
	ClientToken  string   `json:"clientToken"`
	BaseURL      string   `json:"baseUrl"`
	WebhookPort  int      `json:"webhookPort"`
	AllowedUsers []string `json:"allowedUsers"`
}

// WhatsAppChannel implements Channel for WhatsApp through a Z-API style
// gateway: inbound messages arrive on an HTTP webhook, replies go out
// as POSTs against the gateway's instance endpoint.
type WhatsAppChannel struct {
	instanceID   string
	clientToken  string
	baseURL      string
	bus          *bus.MessageBus
	allowedUsers map[string]bool
	server       *http.Server
	client       *http.Client
}

func newWhatsAppChannel(cfg json.RawMessage, msgBus *bus.MessageBus) (Channel, error) {
	var c whatsAppConfig
	if err := json.Unmarshal(cfg, &c); err != nil {
		return nil, fmt.Errorf("failed to parse whatsapp config: %w", err)
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://api.z-api.io/instances"
	}
	if c.WebhookPort == 0 {
		c.WebhookPort = 9005
	}
	allowed := make(map[string]bool, len(c.AllowedUsers))
	for _, u := range c.AllowedUsers {
		allowed[u] = true
	}
	return &WhatsAppChannel{
		instanceID:   c.InstanceID,
		clientToken:  c.ClientToken,
		baseURL:      strings.TrimRight(c.BaseURL, "/"),
		bus:          msgBus,
		allowedUsers: allowed,
		server:       &http.Server{Addr: fmt.Sprintf(":%d", c.WebhookPort)},
		client:       &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *WhatsAppChannel) Name() string { return "whatsapp" }

func (c *WhatsAppChannel) Start(ctx context.Context) error {
	c.server.Handler = c.routes()

	go func() {
		if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("whatsapp: server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		c.Stop()
	}()

	return nil
}

func (c *WhatsAppChannel) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", c.handleWebhook)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok"}`)
	})
	return mux
}

func (c *WhatsAppChannel) Stop() error {
	return c.server.Shutdown(context.Background())
}

// handleWebhook parses the gateway envelope and publishes one inbound
// event per message. It always acknowledges with 200 so the gateway
// does not retry; processing failures are handled downstream.
func (c *WhatsAppChannel) handleWebhook(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read error", http.StatusBadRequest)
		return
	}
	if !gjson.ValidBytes(data) {
		http.Error(w, "parse error", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	// Subscription handshake: echo the challenge back.
	if challenge := gjson.GetBytes(data, "challenge"); challenge.Exists() {
		body, _ := sjson.Set(`{}`, "challenge", challenge.Value())
		fmt.Fprint(w, body)
		return
	}

	if gjson.GetBytes(data, "event").String() != "message" {
		fmt.Fprint(w, `{"status":"ignored","reason":"Not a message event"}`)
		return
	}

	msg := gjson.GetBytes(data, "message")
	sender := strings.ReplaceAll(msg.Get("from").String(), "@c.us", "")
	if sender == "" {
		fmt.Fprint(w, `{"status":"ignored","reason":"No sender"}`)
		return
	}
	if !c.IsAllowed(sender) {
		slog.Warn("whatsapp: message from disallowed user", "sender", sender)
		fmt.Fprint(w, `{"status":"ignored","reason":"Sender not allowed"}`)
		return
	}

	inbound := bus.InboundMessage{
		Channel:  "whatsapp",
		SenderID: sender,
		ChatID:   sender,
		Content:  msg.Get("body").String(),
	}

	switch msg.Get("type").String() {
	case "location":
		lat := msg.Get("location.latitude").Float()
		lon := msg.Get("location.longitude").Float()
		inbound.Latitude = &lat
		inbound.Longitude = &lon
	case "audio", "image":
		inbound.NumMedia = 1
		inbound.MediaURL = msg.Get("mediaUrl").String()
		inbound.MimeType = msg.Get("mimetype").String()
	case "text":
	default:
		// Unknown type still flows through so the pipeline can answer
		// with the unsupported-type reply. Carry the mimetype if any.
		inbound.NumMedia = 1
		inbound.MediaURL = msg.Get("mediaUrl").String()
		inbound.MimeType = msg.Get("mimetype").String()
	}

	c.bus.PublishInbound(inbound)
	fmt.Fprint(w, `{"status":"accepted"}`)
}

// Send delivers a text reply through the gateway's messages/text
// endpoint, authenticated with the instance client token.
func (c *WhatsAppChannel) Send(msg bus.OutboundMessage) error {
	payload, _ := sjson.Set(`{}`, "phone", msg.ChatID)
	payload, _ = sjson.Set(payload, "message", msg.Content)

	url := fmt.Sprintf("%s/%s/messages/text", c.baseURL, c.instanceID)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader([]byte(payload)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Client-Token", c.clientToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp: send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("whatsapp: send message status %d: %s", resp.StatusCode, b)
	}
	return nil
}

func (c *WhatsAppChannel) IsAllowed(senderID string) bool {
	if len(c.allowedUsers) == 0 {
		return true
	}
	return c.allowedUsers[senderID]
}
