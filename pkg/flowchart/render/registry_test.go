package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"jpg", "mmd", "png", "svg"}, r.Formats())

	for _, format := range r.Formats() {
		enc, err := r.Encoder(format)
		require.NoError(t, err, format)
		assert.Equal(t, format, enc.Format())
	}
}

func TestRegistry_Unknown(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Has("png"))

	_, err := r.Encoder("png")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRegistry_Replace(t *testing.T) {
	r := DefaultRegistry()
	r.Register("png", func() (Encoder, error) { return NewMermaidEncoder(), nil })

	enc, err := r.Encoder("png")
	require.NoError(t, err)
	assert.IsType(t, &MermaidEncoder{}, enc)
}
