package tuple

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeDiscardsStaleTSUpdate(t *testing.T) {
	old := NewTSUpdate(1, 3).Encode()
	new := NewValue(ClassUpdate, 9, []byte("v2")).Encode()

	merged, err := Merge([]byte("k"), old, new, nil)
	assert.NoError(t, err)
	assert.Equal(t, new, merged)
}

func TestMergeValueThenTSUpdateKeepsValue(t *testing.T) {
	old := NewValue(ClassInsert, 5, []byte("V")).Encode()
	new := NewTSUpdate(2, 7).Encode()

	merged, err := Merge([]byte("k"), old, new, nil)
	assert.NoError(t, err)

	decoded, err := Decode(merged)
	assert.NoError(t, err)
	assert.False(t, decoded.IsTSUpdate)
	assert.Equal(t, ClassInsert, decoded.Class)
	assert.Equal(t, []byte("V"), decoded.Payload)
	assert.Equal(t, uint64(7), decoded.Wts)
	assert.Equal(t, uint64(2), decoded.Delta)
}

func TestMergeTwoValuesUsesAppMergeAndNewerHeader(t *testing.T) {
	old := NewValue(ClassInsert, 5, []byte("old")).Encode()
	new := NewValue(ClassUpdate, 9, []byte("new")).Encode()

	var sawOld, sawNew []byte
	appMerge := func(_ []byte, oldPayload, newPayload []byte) []byte {
		sawOld, sawNew = oldPayload, newPayload
		return append(append([]byte{}, oldPayload...), newPayload...)
	}

	merged, err := Merge([]byte("k"), old, new, appMerge)
	assert.NoError(t, err)

	decoded, err := Decode(merged)
	assert.NoError(t, err)
	assert.Equal(t, []byte("old"), sawOld)
	assert.Equal(t, []byte("new"), sawNew)
	assert.Equal(t, ClassUpdate, decoded.Class)
	assert.Equal(t, uint64(9), decoded.Wts)
	assert.Equal(t, []byte("oldnew"), decoded.Payload)
}

func TestFinalMergeAppliesAppFinalize(t *testing.T) {
	r := NewValue(ClassInsert, 5, []byte("V")).Encode()
	out, err := FinalMerge([]byte("k"), r, func(_ []byte, payload []byte) []byte {
		return append(payload, '!')
	})
	assert.NoError(t, err)
	decoded, err := Decode(out)
	assert.NoError(t, err)
	assert.Equal(t, []byte("V!"), decoded.Payload)
}

func TestFinalMergeLeavesTSUpdateUntouched(t *testing.T) {
	r := NewTSUpdate(1, 2).Encode()
	out, err := FinalMerge([]byte("k"), r, func(_ []byte, payload []byte) []byte {
		t := append(payload, '!')
		return t
	})
	assert.NoError(t, err)
	assert.Equal(t, r, out)
}
