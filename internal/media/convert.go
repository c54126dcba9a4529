package media

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ssplabs/atende/internal/result"
)

// Converter re-encodes a compressed voice-note container into linear
// PCM WAV suitable for transcription.
type Converter interface {
	ToWAV(ctx context.Context, ogg []byte) result.Result[[]byte]
}

// FFmpegConverter shells out to ffmpeg for the decode/re-encode.
type FFmpegConverter struct {
	binary string
}

// NewFFmpegConverter creates a converter; binary defaults to "ffmpeg"
// on PATH.
func NewFFmpegConverter(binary string) *FFmpegConverter {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegConverter{binary: binary}
}

// ToWAV decodes the ogg/opus bytes and re-encodes to 16 kHz mono
// PCM16 WAV.
func (c *FFmpegConverter) ToWAV(ctx context.Context, ogg []byte) result.Result[[]byte] {
	dir, err := os.MkdirTemp("", "atende-audio-")
	if err != nil {
		return result.Wrap[[]byte]("Erro ao converter OGG para WAV", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in.ogg")
	out := filepath.Join(dir, "out.wav")
	if err := os.WriteFile(in, ogg, 0o600); err != nil {
		return result.Wrap[[]byte]("Erro ao converter OGG para WAV", err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.binary,
		"-hide_banner", "-loglevel", "error",
		"-i", in,
		"-ar", "16000", "-ac", "1", "-c:a", "pcm_s16le",
		out)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return result.Failf[[]byte]("Erro ao converter OGG para WAV: %s", detail)
	}

	wav, err := os.ReadFile(out)
	if err != nil {
		return result.Wrap[[]byte]("Erro ao converter OGG para WAV", err)
	}
	if !IsWAV(wav) {
		return result.Fail[[]byte]("Erro ao converter OGG para WAV: saída inválida")
	}
	return result.Ok(wav)
}

// IsWAV checks the RIFF/WAVE header.
func IsWAV(data []byte) bool {
	return len(data) >= 12 &&
		bytes.Equal(data[0:4], []byte("RIFF")) &&
		bytes.Equal(data[8:12], []byte("WAVE"))
}
