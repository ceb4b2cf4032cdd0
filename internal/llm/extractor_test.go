package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/invoice-scanner/pkg/invoice"
)

type fakeCompleter struct {
	content string
	err     error
	calls   int
	last    Request
}

func (f *fakeCompleter) Complete(_ context.Context, req Request) (string, error) {
	f.calls++
	f.last = req
	return f.content, f.err
}

func TestExtractor_Extract(t *testing.T) {
	fake := &fakeCompleter{content: "```json\n{\"total\": 10, \"numero_factura\": \"A-1\"}\n```"}

	result, err := NewExtractor(fake, nil).Extract(context.Background(), "Factura A-1")
	require.NoError(t, err)

	assert.Equal(t, invoice.Result{"total": json.Number("10"), "numero_factura": "A-1"}, result)
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, SystemPrompt, fake.last.System)
	assert.Equal(t, BuildPrompt("Factura A-1"), fake.last.User)
}

func TestExtractor_ServiceError(t *testing.T) {
	cause := errors.New("401 Unauthorized")
	fake := &fakeCompleter{err: cause}

	result, err := NewExtractor(fake, nil).Extract(context.Background(), "Factura")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrServiceCall)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrMalformedOutput)
	assert.Equal(t, 1, fake.calls)
}

func TestExtractor_MalformedOutput(t *testing.T) {
	fake := &fakeCompleter{content: "not json at all"}

	result, err := NewExtractor(fake, nil).Extract(context.Background(), "Factura")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrMalformedOutput)
	assert.NotErrorIs(t, err, ErrServiceCall)
	assert.Equal(t, 1, fake.calls)
}

func TestExtractor_MissingFieldsAreAccepted(t *testing.T) {
	fake := &fakeCompleter{content: `{"unexpected": true}`}

	result, err := NewExtractor(fake, nil).Extract(context.Background(), "Factura")
	require.NoError(t, err)
	assert.Equal(t, invoice.Result{"unexpected": true}, result)
}
