package qrcode_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractly/contractly/pkg/qrcode"
)

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47}

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("returns a PNG", func(t *testing.T) {
		t.Parallel()
		img, err := qrcode.Generate("https://example.com/pay/123", 128)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(img, pngMagic))
	})

	t.Run("non-positive size falls back to default", func(t *testing.T) {
		t.Parallel()
		img, err := qrcode.Generate("content", 0)
		require.NoError(t, err)
		assert.NotEmpty(t, img)
	})

	t.Run("rejects blank content", func(t *testing.T) {
		t.Parallel()
		_, err := qrcode.Generate("   ", 128)
		assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
	})
}

func TestGenerateBase64Image(t *testing.T) {
	t.Parallel()

	uri, err := qrcode.GenerateBase64Image("pix-payload", 64)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	_, err = qrcode.GenerateBase64Image("", 64)
	assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
}
