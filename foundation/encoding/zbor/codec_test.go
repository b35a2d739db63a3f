package zbor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardanlabs/ledger/foundation/encoding/zbor"
)

type record struct {
	Name   string
	Amount uint64
	Index  int64
	Blob   []byte
	Tags   map[string]int
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := zbor.NewCodec()

	in := record{
		Name:   "ledger",
		Amount: 10,
		Index:  -1,
		Blob:   []byte{0x00, 0x01, 0xff},
		Tags:   map[string]int{"b": 2, "a": 1},
	}

	data, err := codec.Marshal(in)
	require.NoError(t, err)

	var out record
	require.NoError(t, codec.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestCodec_EncodeIsCanonical(t *testing.T) {
	codec := zbor.NewCodec()

	// Map iteration order is random, canonical encoding sorts the keys.
	first, err := codec.Encode(map[string]int{"a": 1, "b": 2, "c": 3})
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := codec.Encode(map[string]int{"c": 3, "b": 2, "a": 1})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCodec_UnmarshalGarbage(t *testing.T) {
	codec := zbor.NewCodec()

	var out record
	err := codec.Unmarshal([]byte("not a zstd frame"), &out)
	assert.Error(t, err)
}
