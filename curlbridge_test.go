package curlbridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPart_Accessors(t *testing.T) {
	p := NewPart("upload", "a.txt", "text/plain", []byte("x"))
	assert.Equal(t, "upload", p.Name())
	assert.Equal(t, "a.txt", p.Filename())
	assert.Equal(t, "text/plain", p.ContentType())
	assert.Equal(t, []byte("x"), p.Content())
}

func TestPart_NilReceiver(t *testing.T) {
	var f Field = (*Part)(nil)
	assert.NotPanics(t, func() {
		assert.Empty(t, f.Name())
		assert.Empty(t, f.Filename())
		assert.Empty(t, f.ContentType())
		assert.Nil(t, f.Content())
	})
}
