// Package pdftext reads the embedded text of a PDF, page by page.
package pdftext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"

	"github.com/example/invoice-scanner/pkg/invoice"
)

var (
	// ErrNotFound means the path does not name a readable regular file
	ErrNotFound = errors.New("PDF file not found")
	// ErrExtraction means the file could not be parsed as a PDF
	ErrExtraction = errors.New("error extracting text from PDF")
)

// Options configures an Extractor
type Options struct {
	// Strict runs pdfcpu's strict validation before reading any text
	Strict bool
}

// Extractor reads embedded text. There is no OCR: image-only pages come back
// empty.
type Extractor struct {
	opts   Options
	logger *logrus.Logger
}

// NewExtractor creates an Extractor. A nil logger discards output.
func NewExtractor(opts Options, logger *logrus.Logger) *Extractor {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Extractor{opts: opts, logger: logger}
}

// CheckFile returns ErrNotFound unless path is an existing regular file
func CheckFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrNotFound, path)
	}
	return nil
}

// Extract reads every page of the PDF at path in file order
func (e *Extractor) Extract(ctx context.Context, path string) (*invoice.Document, error) {
	if err := CheckFile(path); err != nil {
		return nil, err
	}

	if e.opts.Strict {
		if err := validate(path); err != nil {
			return nil, err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.WithError(err).Warn("Failed to close PDF file")
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	doc, err := e.read(ctx, path, f, info.Size())
	if err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"file_path":  path,
		"page_count": doc.PageCount(),
		"characters": len(doc.Text()),
	}).Debug("PDF text extraction completed")

	return doc, nil
}

// read walks the page tree. The reader panics on some malformed inputs, so
// panics are turned into ErrExtraction.
func (e *Extractor) read(ctx context.Context, path string, r io.ReaderAt, size int64) (doc *invoice.Document, err error) {
	defer func() {
		if p := recover(); p != nil {
			doc = nil
			err = fmt.Errorf("%w: %v", ErrExtraction, p)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	doc = &invoice.Document{Path: path}
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := pageText(reader.Page(i))
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrExtraction, i, err)
		}
		e.logger.WithFields(logrus.Fields{
			"page":        i,
			"characters":  len(text),
			"has_content": text != "",
		}).Debug("Extracted page text")
		doc.AddPage(text)
	}
	return doc, nil
}

// pageText returns the trimmed plain text of p. The reader starts every text
// object on a new line, so surrounding whitespace is noise.
func pageText(p pdf.Page) (string, error) {
	if p.V.IsNull() || p.V.Key("Contents").IsNull() {
		return "", nil
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func validate(path string) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationStrict
	if err := api.ValidateFile(path, conf); err != nil {
		return fmt.Errorf("%w: validation failed: %v", ErrExtraction, err)
	}
	return nil
}
