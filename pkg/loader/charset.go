package loader

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// NewDecodingReader converts text in the named encoding to UTF-8.
// Labels are WHATWG names such as "windows-1250" or "iso-8859-2".
func NewDecodingReader(label string, r io.Reader) (io.Reader, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return r, nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	if name, _ := htmlindex.Name(enc); name == "utf-8" {
		return r, nil
	}

	return transform.NewReader(r, enc.NewDecoder()), nil
}
