// Package scanner runs the invoice pipeline: PDF text extraction followed by
// structured extraction with a language model.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/example/invoice-scanner/pkg/invoice"
)

// ErrNoText means the PDF yielded no text, so the model was not called
var ErrNoText = errors.New("no text could be extracted from the PDF file")

// TextExtractor reads the text of an invoice document
type TextExtractor interface {
	Extract(ctx context.Context, path string) (*invoice.Document, error)
}

// FieldExtractor turns invoice text into structured fields
type FieldExtractor interface {
	Extract(ctx context.Context, text string) (invoice.Result, error)
}

// Scanner sequences text extraction and field extraction
type Scanner struct {
	text     TextExtractor
	fields   FieldExtractor
	progress io.Writer
	logger   *logrus.Logger
}

// New creates a Scanner that prints progress notices to progress. Nil progress
// or logger discard their output.
func New(text TextExtractor, fields FieldExtractor, progress io.Writer, logger *logrus.Logger) *Scanner {
	if progress == nil {
		progress = io.Discard
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Scanner{text: text, fields: fields, progress: progress, logger: logger}
}

// Scan extracts the structured data of the invoice PDF at path
func (s *Scanner) Scan(ctx context.Context, path string) (invoice.Result, error) {
	fmt.Fprintf(s.progress, "Extracting text from PDF: %s\n", path)
	doc, err := s.text.Extract(ctx, path)
	if err != nil {
		return nil, err
	}

	if doc.IsBlank() {
		s.logger.WithFields(logrus.Fields{
			"file_path":  path,
			"page_count": doc.PageCount(),
		}).Debug("Document has no extractable text")
		return nil, ErrNoText
	}

	fmt.Fprintln(s.progress, "Parsing invoice with OpenAI...")
	result, err := s.fields.Extract(ctx, doc.Text())
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"file_path":  path,
		"page_count": doc.PageCount(),
		"fields":     len(result),
	}).Info("Invoice scanned")
	return result, nil
}
