// Package llm turns invoice text into structured JSON with a chat-completion
// model.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/example/invoice-scanner/pkg/invoice"
)

var (
	// ErrServiceCall wraps any failure talking to the model service
	ErrServiceCall = errors.New("error calling OpenAI API")
	// ErrMalformedOutput means the completion was not a JSON object
	ErrMalformedOutput = errors.New("error parsing JSON from OpenAI response")
)

// Request is a single chat-completion exchange
type Request struct {
	System string
	User   string
}

// Completer sends one request and returns the text of the completion
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Extractor asks a Completer for the structured form of an invoice. Each call
// makes exactly one request; there are no retries.
type Extractor struct {
	completer Completer
	logger    *logrus.Logger
}

// NewExtractor creates an Extractor. A nil logger discards output.
func NewExtractor(completer Completer, logger *logrus.Logger) *Extractor {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Extractor{completer: completer, logger: logger}
}

// Extract returns the invoice fields the model found in text
func (e *Extractor) Extract(ctx context.Context, text string) (invoice.Result, error) {
	content, err := e.completer.Complete(ctx, Request{
		System: SystemPrompt,
		User:   BuildPrompt(text),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServiceCall, err)
	}

	result, err := ParseResult(content)
	if err != nil {
		e.logger.WithError(err).WithField("content", content).Debug("Model returned unparseable output")
		return nil, err
	}

	if missing := result.MissingFields(); len(missing) > 0 {
		e.logger.WithField("missing_fields", missing).Debug("Result lacks some invoice fields")
	}
	return result, nil
}
