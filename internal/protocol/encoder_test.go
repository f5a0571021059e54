package protocol

import (
	"testing"

	"github.com/lexidb/lexid/internal/object"
	"github.com/stretchr/testify/require"
)

func TestEncodeRoundTripsThroughDecode(t *testing.T) {
	values := []object.Object{
		object.NewString("OK"),
		object.NewError("bad thing"),
		object.NewInt64(-123),
		object.NewDouble(2.25),
		object.NewBoolean(true),
		object.NewBoolean(false),
		object.NewNull(),
		object.NewArray([]object.Object{object.NewInt64(1), object.NewString("x")}),
	}
	for _, v := range values {
		enc := NewEncoder(16)
		enc.Encode(v)
		got, n, err := Decode(enc.Bytes())
		require.NoError(t, err)
		require.Equal(t, len(enc.Bytes()), n)
		require.True(t, object.Equal(v, got))
	}
}

func TestEncodeErrorWithCRLFUsesBulkFrame(t *testing.T) {
	enc := NewEncoder(16)
	enc.Encode(object.NewError("line1\r\nline2"))
	require.Equal(t, byte('!'), enc.Bytes()[0])
}

func TestEncodeArrayHeaderMatchesElementCount(t *testing.T) {
	enc := NewEncoder(16)
	enc.ArrayHeader(3)
	require.Equal(t, "*3\r\n", string(enc.Bytes()))
}

func TestEncoderResetReusesBuffer(t *testing.T) {
	enc := NewEncoder(16)
	enc.SimpleString("a")
	enc.Reset()
	require.Empty(t, enc.Bytes())
	enc.SimpleString("b")
	require.Equal(t, "+b\r\n", string(enc.Bytes()))
}
