package protocol

import (
	"strconv"

	"github.com/lexidb/lexid/internal/object"
)

// Encoder is an append-only frame builder, grounded on builder.c's Builder
// (grow-as-you-go byte buffer), generalized from "array of bulk strings"
// to every frame type in the codec.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an Encoder with capacity hint initialCap.
func NewEncoder(initialCap int) *Encoder {
	return &Encoder{buf: make([]byte, 0, initialCap)}
}

// Bytes returns the accumulated frame bytes.
func (e *Encoder) Bytes() []byte { return e.buf }

// Reset empties the buffer for reuse.
func (e *Encoder) Reset() { e.buf = e.buf[:0] }

func (e *Encoder) appendLine(prefix byte, body string) {
	e.buf = append(e.buf, prefix)
	e.buf = append(e.buf, body...)
	e.buf = append(e.buf, '\r', '\n')
}

// SimpleString appends a `+` frame.
func (e *Encoder) SimpleString(s string) { e.appendLine('+', s) }

// SimpleError appends a `-` frame.
func (e *Encoder) SimpleError(s string) { e.appendLine('-', s) }

// Int64 appends a `:` frame.
func (e *Encoder) Int64(v int64) { e.appendLine(':', strconv.FormatInt(v, 10)) }

// Double appends a `,` frame.
func (e *Encoder) Double(v float64) { e.appendLine(',', strconv.FormatFloat(v, 'g', -1, 64)) }

// Boolean appends a `#` frame.
func (e *Encoder) Boolean(v bool) {
	if v {
		e.buf = append(e.buf, '#', 't', '\r', '\n')
	} else {
		e.buf = append(e.buf, '#', 'f', '\r', '\n')
	}
}

// Null appends a `_` frame.
func (e *Encoder) Null() { e.buf = append(e.buf, '_', '\r', '\n') }

func (e *Encoder) appendBulk(prefix byte, s string) {
	e.buf = append(e.buf, prefix)
	e.buf = strconv.AppendInt(e.buf, int64(len(s)), 10)
	e.buf = append(e.buf, '\r', '\n')
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, '\r', '\n')
}

// BulkString appends a `$` frame.
func (e *Encoder) BulkString(s string) { e.appendBulk('$', s) }

// BulkError appends a `!` frame.
func (e *Encoder) BulkError(s string) { e.appendBulk('!', s) }

// ArrayHeader appends a `*` length prefix; the caller is responsible for
// immediately encoding exactly n further frames as the array's elements.
func (e *Encoder) ArrayHeader(n int) {
	e.buf = append(e.buf, '*')
	e.buf = strconv.AppendInt(e.buf, int64(n), 10)
	e.buf = append(e.buf, '\r', '\n')
}

// Encode appends obj in whichever frame type its Kind maps to, recursing
// for Array. Error objects always encode as bulk errors (`!`): spec.md
// §4.4/§7 define every error reply as its bare code (e.g. "EDBRANGE"), and
// dispatch never hands Encode a message that needs a simple-error line.
func (e *Encoder) Encode(obj object.Object) {
	switch obj.Kind() {
	case object.Null:
		e.Null()
	case object.Int64:
		e.Int64(obj.Int64())
	case object.Double:
		e.Double(obj.Double())
	case object.Boolean:
		e.Boolean(obj.Boolean())
	case object.String:
		e.BulkString(obj.Str())
	case object.Error:
		e.BulkError(obj.Str())
	case object.Array:
		elems := obj.Elements()
		e.ArrayHeader(len(elems))
		for _, el := range elems {
			e.Encode(el)
		}
	}
}
