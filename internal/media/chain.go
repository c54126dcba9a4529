package media

import (
	"context"

	"github.com/ssplabs/atende/internal/result"
)

// Fetcher downloads raw media bytes.
type Fetcher interface {
	Download(ctx context.Context, mediaURL, errPrefix string) result.Result[[]byte]
}

// SpeechToText recognizes text from a WAV buffer.
type SpeechToText interface {
	Transcribe(ctx context.Context, wav []byte) result.Result[string]
}

// Interpreter extracts text/description from image bytes.
type Interpreter interface {
	Interpret(ctx context.Context, image []byte, mimeType string) result.Result[string]
}

// AudioChain runs download -> convert -> archive -> transcribe. The
// first failing step wins and its message becomes the user reply.
type AudioChain struct {
	Downloader  Fetcher
	Converter   Converter
	Archive     Archive
	Transcriber SpeechToText
}

// Resolve turns a voice-note URL into its transcription.
func (c *AudioChain) Resolve(ctx context.Context, mediaURL string) result.Result[string] {
	download := c.Downloader.Download(ctx, mediaURL, "Erro ao fazer download do áudio")
	if !download.Success() {
		return result.Fail[string](download.Err())
	}

	wav := c.Converter.ToWAV(ctx, download.Data())
	if !wav.Success() {
		return result.Fail[string](wav.Err())
	}

	// Archival failure aborts the chain even though transcription
	// does not depend on the stored copy.
	stored := c.Archive.Put(ctx, AudioFolder, NewObjectName(".wav"), wav.Data())
	if !stored.Success() {
		return result.Fail[string](stored.Err())
	}

	return c.Transcriber.Transcribe(ctx, wav.Data())
}

// ImageChain runs download -> interpret.
type ImageChain struct {
	Downloader  Fetcher
	Interpreter Interpreter
}

// Resolve turns an image URL into a text description.
func (c *ImageChain) Resolve(ctx context.Context, mediaURL string) result.Result[string] {
	download := c.Downloader.Download(ctx, mediaURL, "Erro ao baixar a imagem")
	if !download.Success() {
		return result.Fail[string](download.Err())
	}
	return c.Interpreter.Interpret(ctx, download.Data(), "")
}
