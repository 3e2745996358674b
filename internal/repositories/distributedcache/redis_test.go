package distributedcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeVector(t *testing.T) {
	embedding := []float32{0.25, -1.5, 3.0, 0}
	decoded, err := decodeVector(encodeVector(embedding))
	assert.NoError(t, err)
	assert.Equal(t, embedding, decoded)
}

func TestDecodeVectorRejectsTruncatedPayload(t *testing.T) {
	_, err := decodeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestDecodeVectorEmptyPayload(t *testing.T) {
	decoded, err := decodeVector(nil)
	assert.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestGetFinalTTLWithJitter(t *testing.T) {
	ttl := 600
	for i := 0; i < 100; i++ {
		finalTTL := getFinalTTLWithJitter(ttl)
		assert.GreaterOrEqual(t, finalTTL, 540)
		assert.LessOrEqual(t, finalTTL, 660)
	}
}
