package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier(t *testing.T) {
	v, err := NewVerifier("s3cr3t")
	require.NoError(t, err)

	assert.True(t, v.Verify("s3cr3t"))
	assert.False(t, v.Verify("s3cr3"))
	assert.False(t, v.Verify("s3cr3t "))
	assert.False(t, v.Verify(""))
}

func TestEmptySecret(t *testing.T) {
	_, err := NewVerifier("")
	assert.ErrorIs(t, err, ErrEmptySecret)

	var v *Verifier
	assert.False(t, v.Verify("anything"))
}
