// Package object implements the tagged value model shared by the keyspace
// engine and the wire protocol codec.
package object

import (
	"fmt"
	"strconv"
)

// Kind identifies which variant an Object currently holds.
type Kind uint8

const (
	Null Kind = iota
	Int64
	Double
	Boolean
	String
	Error
	Array
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Int64:
		return "int64"
	case Double:
		return "double"
	case Boolean:
		return "boolean"
	case String:
		return "string"
	case Error:
		return "error"
	case Array:
		return "array"
	default:
		return "unknown"
	}
}

// Object is a tagged value. Only the field matching Kind is meaningful.
// Go has no union type, so the unused fields simply sit at their zero value;
// this costs a little memory per Object in exchange for never needing an
// unsafe cast to read one back out.
type Object struct {
	kind Kind
	i    int64
	f    float64
	b    bool
	s    string
	arr  []Object
}

// NewNull returns the Null singleton-shaped value.
func NewNull() Object { return Object{kind: Null} }

// NewInt64 wraps an integer.
func NewInt64(v int64) Object { return Object{kind: Int64, i: v} }

// NewDouble wraps an IEEE-754 double.
func NewDouble(v float64) Object { return Object{kind: Double, f: v} }

// NewBoolean wraps a boolean.
func NewBoolean(v bool) Object { return Object{kind: Boolean, b: v} }

// NewString wraps a string. The caller must not mutate the bytes backing s
// afterward if they want Object's copy to stay stable; strings are immutable
// in Go so this is automatic.
func NewString(v string) Object { return Object{kind: String, s: v} }

// NewError wraps an error message. Errors carry a plain string payload, the
// same as String, but are tagged distinctly so the wire codec can pick the
// right frame type (spec.md §4.3's `-`/`!` frames vs `$`).
func NewError(msg string) Object { return Object{kind: Error, s: msg} }

// NewArray wraps a slice of Objects. Ownership of elems transfers to the
// returned Object; callers that need to keep using their own copy should
// pass a clone.
func NewArray(elems []Object) Object { return Object{kind: Array, arr: elems} }

func (o Object) Kind() Kind { return o.kind }

// Int64 returns the wrapped integer. Callers must check Kind() == Int64 first.
func (o Object) Int64() int64 { return o.i }

// Double returns the wrapped double. Callers must check Kind() == Double first.
func (o Object) Double() float64 { return o.f }

// Boolean returns the wrapped boolean. Callers must check Kind() == Boolean first.
func (o Object) Boolean() bool { return o.b }

// Str returns the wrapped string or error message.
func (o Object) Str() string { return o.s }

// Elements returns the wrapped array's backing slice. Callers must not
// mutate it; use Clone if a detached copy is needed.
func (o Object) Elements() []Object { return o.arr }

// Clone returns a value with its own backing storage, recursively for
// arrays, so the copy does not alias the original's element slices.
func (o Object) Clone() Object {
	if o.kind != Array {
		return o
	}
	cloned := make([]Object, len(o.arr))
	for i, e := range o.arr {
		cloned[i] = e.Clone()
	}
	return Object{kind: Array, arr: cloned}
}

// variantOrder gives the fixed cross-variant ordering used when comparing
// Objects of different kinds (spec.md §4.2): Null < Boolean < Int64 <
// Double < String < Error < Array.
var variantOrder = map[Kind]int{
	Null:    0,
	Boolean: 1,
	Int64:   2,
	Double:  3,
	String:  4,
	Error:   5,
	Array:   6,
}

// Equal reports structural equality. Int64 and Double never compare equal
// across kinds even when numerically identical, matching the fixed
// variant-tag ordering's strict separation of numeric kinds.
func Equal(a, b Object) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Null:
		return true
	case Int64:
		return a.i == b.i
	case Double:
		return a.f == b.f
	case Boolean:
		return a.b == b.b
	case String, Error:
		return a.s == b.s
	case Array:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare orders two Objects for display/debugging purposes: first by
// variant tag, then within a variant by natural order.
func Compare(a, b Object) int {
	if a.kind != b.kind {
		return variantOrder[a.kind] - variantOrder[b.kind]
	}
	switch a.kind {
	case Int64:
		switch {
		case a.i < b.i:
			return -1
		case a.i > b.i:
			return 1
		default:
			return 0
		}
	case Double:
		switch {
		case a.f < b.f:
			return -1
		case a.f > b.f:
			return 1
		default:
			return 0
		}
	case String, Error:
		switch {
		case a.s < b.s:
			return -1
		case a.s > b.s:
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

// String renders a human-readable form for debugging; it is not the wire
// format (see internal/protocol).
func (o Object) String() string {
	switch o.kind {
	case Null:
		return "null"
	case Int64:
		return strconv.FormatInt(o.i, 10)
	case Double:
		return strconv.FormatFloat(o.f, 'g', -1, 64)
	case Boolean:
		if o.b {
			return "#t"
		}
		return "#f"
	case String:
		return o.s
	case Error:
		return "(error) " + o.s
	case Array:
		out := "["
		for i, e := range o.arr {
			if i > 0 {
				out += ", "
			}
			out += e.String()
		}
		return out + "]"
	default:
		return fmt.Sprintf("<unknown kind %d>", o.kind)
	}
}
