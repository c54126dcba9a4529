package media

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/ssplabs/atende/internal/result"
)

const defaultTranscriptionModel = "whisper-large-v3"

// Transcriber runs speech-to-text against a Whisper-style HTTP API in a
// fixed target language.
type Transcriber struct {
	client   *http.Client
	url      string
	apiKey   string
	model    string
	language string
}

// NewTranscriber creates a transcriber. language is an ISO 639-1 code
// ("pt" for the pt-BR deployment); model defaults to whisper-large-v3.
func NewTranscriber(url, apiKey, model, language string) *Transcriber {
	if model == "" {
		model = defaultTranscriptionModel
	}
	if language == "" {
		language = "pt"
	}
	return &Transcriber{
		client:   &http.Client{Timeout: 60 * time.Second},
		url:      url,
		apiKey:   apiKey,
		model:    model,
		language: language,
	}
}

// Transcribe uploads the WAV bytes and returns the recognized text.
// Unrecognized audio ("no speech") is a distinct failure from a
// service-level error.
func (t *Transcriber) Transcribe(ctx context.Context, wav []byte) result.Result[string] {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return result.Wrap[string]("Erro ao usar o serviço de reconhecimento de fala", err)
	}
	if _, err := fw.Write(wav); err != nil {
		return result.Wrap[string]("Erro ao usar o serviço de reconhecimento de fala", err)
	}
	mw.WriteField("model", t.model)
	mw.WriteField("language", t.language)
	mw.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, &buf)
	if err != nil {
		return result.Wrap[string]("Erro ao usar o serviço de reconhecimento de fala", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return result.Wrap[string]("Erro ao usar o serviço de reconhecimento de fala", err)
	}
	defer resp.Body.Close()

	body := new(bytes.Buffer)
	if _, err := body.ReadFrom(resp.Body); err != nil {
		return result.Wrap[string]("Erro ao usar o serviço de reconhecimento de fala", err)
	}
	if resp.StatusCode != http.StatusOK {
		return result.Failf[string]("Erro ao usar o serviço de reconhecimento de fala: status %d", resp.StatusCode)
	}

	text := strings.TrimSpace(gjson.GetBytes(body.Bytes(), "text").String())
	if text == "" {
		return result.Fail[string]("Não foi possível reconhecer o áudio.")
	}
	return result.Ok(text)
}
