// Package protocol implements the wire codec: a streaming decoder and an
// append-only encoder for the RESP-like frame set (simple string/error,
// int64, double, boolean, null, bulk string/error, array).
package protocol

import (
	"math"
	"strconv"

	"github.com/lexidb/lexid/internal/object"
)

// MaxNestingDepth bounds array recursion, the edge case spec.md calls out
// for malicious or malformed deeply-nested input. parser.c never had to
// make this choice since its parser never recursed into arrays at all;
// this is a fresh design decision for the recursive frame.
const MaxNestingDepth = 32

// Decode attempts to parse a single frame from the front of buf. On
// success it returns the decoded Object and how many bytes were consumed.
// If buf does not yet hold a complete frame, it returns ErrNeedMore and
// consumed == 0; the caller must not advance its read cursor and should
// call Decode again once more bytes have arrived. Any other error is a
// *ProtocolError and the connection should be closed.
func Decode(buf []byte) (object.Object, int, error) {
	return decodeValue(buf, 0)
}

func decodeValue(buf []byte, depth int) (object.Object, int, error) {
	if len(buf) == 0 {
		return object.Object{}, 0, ErrNeedMore
	}
	if depth > MaxNestingDepth {
		return object.Object{}, 0, newProtocolError(ErrNestingTooDeep, 0)
	}

	switch buf[0] {
	case '+':
		return decodeLine(buf, 1, func(s string) object.Object { return object.NewString(s) })
	case '-':
		return decodeLine(buf, 1, func(s string) object.Object { return object.NewError(s) })
	case ':':
		return decodeInt(buf)
	case ',':
		return decodeDouble(buf)
	case '#':
		return decodeBool(buf)
	case '_':
		return decodeNull(buf)
	case '$':
		return decodeBulk(buf, false)
	case '!':
		return decodeBulk(buf, true)
	case '*':
		return decodeArray(buf, depth)
	default:
		return object.Object{}, 0, newProtocolError(ErrUnknownType, 0)
	}
}

// findCRLF returns the index of the first "\r\n" at or after start, or -1
// if none is present yet.
func findCRLF(buf []byte, start int) int {
	for i := start; i+1 < len(buf); i++ {
		if buf[i] == '\r' && buf[i+1] == '\n' {
			return i
		}
	}
	return -1
}

func decodeLine(buf []byte, bodyStart int, build func(string) object.Object) (object.Object, int, error) {
	end := findCRLF(buf, bodyStart)
	if end == -1 {
		return object.Object{}, 0, ErrNeedMore
	}
	return build(string(buf[bodyStart:end])), end + 2, nil
}

func decodeInt(buf []byte) (object.Object, int, error) {
	end := findCRLF(buf, 1)
	if end == -1 {
		return object.Object{}, 0, ErrNeedMore
	}
	n, err := strconv.ParseInt(string(buf[1:end]), 10, 64)
	if err != nil {
		return object.Object{}, 0, newProtocolError(ErrMalformedInt, 1)
	}
	return object.NewInt64(n), end + 2, nil
}

func decodeDouble(buf []byte) (object.Object, int, error) {
	end := findCRLF(buf, 1)
	if end == -1 {
		return object.Object{}, 0, ErrNeedMore
	}
	f, err := strconv.ParseFloat(string(buf[1:end]), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return object.Object{}, 0, newProtocolError(ErrMalformedDouble, 1)
	}
	return object.NewDouble(f), end + 2, nil
}

func decodeBool(buf []byte) (object.Object, int, error) {
	if len(buf) < 4 {
		return object.Object{}, 0, ErrNeedMore
	}
	if buf[2] != '\r' || buf[3] != '\n' {
		return object.Object{}, 0, newProtocolError(ErrMissingCRLF, 2)
	}
	switch buf[1] {
	case 't':
		return object.NewBoolean(true), 4, nil
	case 'f':
		return object.NewBoolean(false), 4, nil
	default:
		return object.Object{}, 0, newProtocolError(ErrMalformedBool, 1)
	}
}

func decodeNull(buf []byte) (object.Object, int, error) {
	if len(buf) < 3 {
		return object.Object{}, 0, ErrNeedMore
	}
	if buf[1] != '\r' || buf[2] != '\n' {
		return object.Object{}, 0, newProtocolError(ErrMissingCRLF, 1)
	}
	return object.NewNull(), 3, nil
}

func decodeLength(buf []byte, pos int) (int64, int, error) {
	end := findCRLF(buf, pos)
	if end == -1 {
		return 0, 0, ErrNeedMore
	}
	n, err := strconv.ParseInt(string(buf[pos:end]), 10, 64)
	if err != nil {
		return 0, 0, newProtocolError(ErrMalformedLength, pos)
	}
	if n < 0 {
		return 0, 0, newProtocolError(ErrNegativeLength, pos)
	}
	return n, end + 2, nil
}

func decodeBulk(buf []byte, isError bool) (object.Object, int, error) {
	length, bodyStart, err := decodeLength(buf, 1)
	if err != nil {
		return object.Object{}, 0, err
	}
	end := bodyStart + int(length)
	if len(buf) < end+2 {
		return object.Object{}, 0, ErrNeedMore
	}
	if buf[end] != '\r' || buf[end+1] != '\n' {
		return object.Object{}, 0, newProtocolError(ErrMissingCRLF, end)
	}
	data := string(buf[bodyStart:end])
	if isError {
		return object.NewError(data), end + 2, nil
	}
	return object.NewString(data), end + 2, nil
}

// maxArrayPrealloc bounds how many elements decodeArray will preallocate
// up front from an attacker-controlled declared count; a header claiming
// far more elements than could possibly fit in the remaining buffer just
// grows the slice incrementally instead of allocating for the claim.
const maxArrayPrealloc = 4096

func decodeArray(buf []byte, depth int) (object.Object, int, error) {
	count, pos, err := decodeLength(buf, 1)
	if err != nil {
		return object.Object{}, 0, err
	}
	prealloc := count
	if prealloc > maxArrayPrealloc {
		prealloc = maxArrayPrealloc
	}
	elems := make([]object.Object, 0, prealloc)
	for i := int64(0); i < count; i++ {
		elem, n, err := decodeValue(buf[pos:], depth+1)
		if err != nil {
			return object.Object{}, 0, err
		}
		elems = append(elems, elem)
		pos += n
	}
	return object.NewArray(elems), pos, nil
}
