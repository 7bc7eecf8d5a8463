package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentKeyIsStableAndNamespaced(t *testing.T) {
	k1 := ContentKey("embedding", "what is the refund policy")
	k2 := ContentKey("embedding", "what is the refund policy")
	k3 := ContentKey("context", "what is the refund policy")

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Contains(t, k1, "embedding:")
	// sha256 hex digest after the namespace
	assert.Len(t, k1, len("embedding:")+64)
}
