package ws

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeImagePlainBase64(t *testing.T) {
	raw := []byte{0x89, 0x50, 0x4e, 0x47}
	data, err := decodeImage(base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, data)
}

func TestDecodeImageDataURL(t *testing.T) {
	raw := []byte("jpeg-bytes")
	encoded := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw)
	data, err := decodeImage(encoded)
	require.NoError(t, err)
	assert.Equal(t, raw, data)
}

func TestDecodeImageRejectsBadPayloads(t *testing.T) {
	cases := map[string]string{
		"not base64":         "%%%not-base64%%%",
		"data url no comma":  "data:image/png;base64",
		"empty after decode": "",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decodeImage(input)
			assert.Error(t, err)
		})
	}
}
