package webhook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/venuekit/venuekit/pkg/webhook"
)

func TestSign(t *testing.T) {
	t.Parallel()

	t.Run("deterministic for identical inputs", func(t *testing.T) {
		t.Parallel()

		payload := []byte(`{"event":"booking.created","id":"b1"}`)

		first := webhook.Sign("secret", payload)
		second := webhook.Sign("secret", payload)

		assert.Equal(t, first, second)
		assert.Len(t, first, 64) // hex-encoded SHA-256
	})

	t.Run("differs by secret", func(t *testing.T) {
		t.Parallel()

		payload := []byte(`{"a":1}`)

		assert.NotEqual(t, webhook.Sign("one", payload), webhook.Sign("two", payload))
	})

	t.Run("differs by payload", func(t *testing.T) {
		t.Parallel()

		assert.NotEqual(t,
			webhook.Sign("secret", []byte(`{"a":1}`)),
			webhook.Sign("secret", []byte(`{"a":2}`)),
		)
	})

	t.Run("known vector", func(t *testing.T) {
		t.Parallel()

		// HMAC-SHA256("key", "The quick brown fox jumps over the lazy dog")
		assert.Equal(t,
			"f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8",
			webhook.Sign("key", []byte("The quick brown fox jumps over the lazy dog")),
		)
	})
}

func TestVerify(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"event":"post.published"}`)
	sig := webhook.Sign("secret", payload)

	assert.True(t, webhook.Verify("secret", payload, sig))
	assert.False(t, webhook.Verify("wrong", payload, sig))
	assert.False(t, webhook.Verify("secret", []byte(`tampered`), sig))
	assert.False(t, webhook.Verify("secret", payload, "deadbeef"))
}
