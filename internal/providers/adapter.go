// Package providers holds the language-model adapters. The dispatcher
// and agent only see the Adapter contract; which vendor actually
// answers is a wiring decision made at process start.
package providers

import (
	"context"
	"time"

	"github.com/ssplabs/atende/internal/result"
	"github.com/ssplabs/atende/internal/session"
)

// Context carries the per-turn context bag handed to the model.
type Context struct {
	Date         time.Time
	SystemPrompt string
}

// Adapter generates a reply from an input utterance plus ordered
// history. Expected failures (quota, network, empty completion) come
// back as failure Results, never as panics.
type Adapter interface {
	Generate(ctx context.Context, input string, history []session.Message, pctx Context) result.Result[string]
}

// systemText renders the system instruction with the current date
// appended, so the model knows "today" without a tool call.
func systemText(pctx Context) string {
	s := pctx.SystemPrompt
	if !pctx.Date.IsZero() {
		if s != "" {
			s += "\n\n"
		}
		s += "Data atual: " + pctx.Date.Format("2006-01-02")
	}
	return s
}
