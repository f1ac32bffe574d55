package tuple

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	r := NewValue(ClassUpdate, 42, []byte("hello"))
	raw := r.Encode()
	decoded, err := Decode(raw)
	assert.NoError(t, err)
	assert.Equal(t, r, decoded)
}

func TestTSUpdateHasNoPayload(t *testing.T) {
	r := NewTSUpdate(3, 7)
	raw := r.Encode()
	decoded, err := Decode(raw)
	assert.NoError(t, err)
	assert.True(t, decoded.IsTSUpdate)
	assert.Equal(t, uint64(3), decoded.Delta)
	assert.Equal(t, uint64(7), decoded.Wts)
	assert.Empty(t, decoded.Payload)
}

func TestRts(t *testing.T) {
	r := Record{Wts: 5, Delta: 2}
	assert.Equal(t, uint64(7), r.Rts())
}

func TestDecodeTooShort(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	assert.Error(t, err)
}
