package protocol

import (
	"testing"

	"github.com/lexidb/lexid/internal/object"
	"github.com/stretchr/testify/require"
)

func TestDecodeScalarFrames(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want object.Object
	}{
		{"simple string", "+OK\r\n", object.NewString("OK")},
		{"simple error", "-oops\r\n", object.NewError("oops")},
		{"int", ":42\r\n", object.NewInt64(42)},
		{"negative int", ":-7\r\n", object.NewInt64(-7)},
		{"double", ",3.5\r\n", object.NewDouble(3.5)},
		{"bool true", "#t\r\n", object.NewBoolean(true)},
		{"bool false", "#f\r\n", object.NewBoolean(false)},
		{"null", "_\r\n", object.NewNull()},
		{"bulk string", "$5\r\nhello\r\n", object.NewString("hello")},
		{"bulk error", "!3\r\nbad\r\n", object.NewError("bad")},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, n, err := Decode([]byte(c.in))
			require.NoError(t, err)
			require.Equal(t, len(c.in), n)
			require.True(t, object.Equal(c.want, got))
		})
	}
}

func TestDecodeNeedsMoreData(t *testing.T) {
	_, n, err := Decode([]byte("$5\r\nhel"))
	require.ErrorIs(t, err, ErrNeedMore)
	require.Equal(t, 0, n)
}

func TestDecodeEmptyBuffer(t *testing.T) {
	_, _, err := Decode(nil)
	require.ErrorIs(t, err, ErrNeedMore)
}

func TestDecodeArrayRecursive(t *testing.T) {
	in := "*2\r\n:1\r\n*1\r\n+nested\r\n"
	got, n, err := Decode([]byte(in))
	require.NoError(t, err)
	require.Equal(t, len(in), n)
	require.Equal(t, object.Array, got.Kind())
	require.Len(t, got.Elements(), 2)
	require.Equal(t, int64(1), got.Elements()[0].Int64())
	require.Equal(t, object.Array, got.Elements()[1].Kind())
	require.Equal(t, "nested", got.Elements()[1].Elements()[0].Str())
}

func TestDecodeUnknownType(t *testing.T) {
	_, _, err := Decode([]byte("@nope\r\n"))
	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, ErrUnknownType, perr.Kind)
}

func TestDecodeNestingTooDeep(t *testing.T) {
	in := ""
	for i := 0; i <= MaxNestingDepth+1; i++ {
		in += "*1\r\n"
	}
	in += ":1\r\n"
	_, _, err := Decode([]byte(in))
	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, ErrNestingTooDeep, perr.Kind)
}

func TestDecodeNegativeLengthRejected(t *testing.T) {
	_, _, err := Decode([]byte("$-1\r\n"))
	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, ErrNegativeLength, perr.Kind)
}

func TestDecodeConsumesOnlyOneFrame(t *testing.T) {
	got, n, err := Decode([]byte(":1\r\n:2\r\n"))
	require.NoError(t, err)
	require.Equal(t, int64(1), got.Int64())
	require.Equal(t, 4, n)
}

func TestDecodeDoubleRejectsNonFinite(t *testing.T) {
	for _, in := range []string{",inf\r\n", ",+inf\r\n", ",-inf\r\n", ",nan\r\n"} {
		_, _, err := Decode([]byte(in))
		var perr *ProtocolError
		require.ErrorAsf(t, err, &perr, "input %q", in)
		require.Equal(t, ErrMalformedDouble, perr.Kind)
	}
}

func TestDecodeArrayHeaderWithHugeCountNeedsMoreRatherThanAllocating(t *testing.T) {
	_, _, err := Decode([]byte("*99999999999\r\n"))
	require.ErrorIs(t, err, ErrNeedMore)
}
