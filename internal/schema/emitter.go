package schema

import (
	"bytes"
	"encoding/json"
	"io"
	"sync"

	"github.com/pkg/errors"
)

const (
	scriptOpen  = `<script type="application/ld+json">` + "\n"
	scriptClose = "</script>\n"
)

// Encode renders doc as one ld+json script block: indented, with slashes,
// HTML characters and non-ASCII text left unescaped.
func Encode(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(scriptOpen)
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(err, "encode document")
	}
	buf.WriteString(scriptClose)
	return buf.Bytes(), nil
}

// Emitter writes script blocks to a sink. Blocks never interleave.
type Emitter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewEmitter(w io.Writer) *Emitter { return &Emitter{w: w} }

func (e *Emitter) Emit(doc Document) error {
	b, err := Encode(doc)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err = e.w.Write(b)
	return errors.Wrap(err, "write document")
}
