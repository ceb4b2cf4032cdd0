package invoice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Marshal encodes r as compact single-line JSON, or with 2-space indentation
// when pretty is set. Non-ASCII text is kept as UTF-8 and no trailing newline is
// written.
func Marshal(r Result, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("failed to encode invoice: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// WriteFile encodes r and writes it to path
func WriteFile(path string, r Result, pretty bool) error {
	data, err := Marshal(r, pretty)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
