// Package media implements the inbound media transform chain:
// download, convert, archive, and content extraction. Every step
// returns a Result and the chains short-circuit on the first failure.
package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ssplabs/atende/internal/result"
)

// Downloader fetches media bytes from URLs protected by the hosting
// platform's basic-auth credentials.
type Downloader struct {
	client   *http.Client
	username string
	password string
}

// NewDownloader creates a Downloader. Empty credentials mean
// unauthenticated fetches.
func NewDownloader(username, password string) *Downloader {
	return &Downloader{
		client:   &http.Client{Timeout: 30 * time.Second},
		username: username,
		password: password,
	}
}

// Download fetches the raw bytes at mediaURL. errPrefix names the
// modality in the user-facing failure message.
func (d *Downloader) Download(ctx context.Context, mediaURL, errPrefix string) result.Result[[]byte] {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return result.Wrap[[]byte](errPrefix, err)
	}
	if d.username != "" {
		creds := base64.StdEncoding.EncodeToString([]byte(d.username + ":" + d.password))
		req.Header.Set("Authorization", "Basic "+creds)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return result.Wrap[[]byte](errPrefix, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return result.Failf[[]byte]("%s: status %d", errPrefix, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return result.Wrap[[]byte](errPrefix, err)
	}
	if len(data) == 0 {
		return result.Fail[[]byte](fmt.Sprintf("%s: resposta vazia", errPrefix))
	}
	return result.Ok(data)
}
