package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignAndVerifyPayload(t *testing.T) {
	payload := []byte(`{"eventId":"evt-1","status":"SUCCEEDED"}`)

	sig := SignPayload(payload, "webhook-secret")
	assert.NotEmpty(t, sig)

	assert.True(t, VerifySignature(payload, sig, "webhook-secret"))
	assert.False(t, VerifySignature(payload, sig, "wrong-secret"))
	assert.False(t, VerifySignature([]byte("tampered"), sig, "webhook-secret"))
	assert.False(t, VerifySignature(payload, "", "webhook-secret"))
}

func TestMaskPAN(t *testing.T) {
	assert.Equal(t, "**** **** **** 1234", MaskPAN("6037991234561234"))
	assert.Equal(t, "**** **** **** 0000", MaskPAN("0000"))
	assert.Equal(t, "****", MaskPAN("12"))
	assert.Equal(t, "****", MaskPAN(""))
}

func TestGenerateRandomString(t *testing.T) {
	s := GenerateRandomString(32)
	assert.Len(t, s, 32)
	assert.NotEqual(t, s, GenerateRandomString(32))
}
