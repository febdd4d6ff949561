package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextPlainFiles(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     string
	}{
		{name: "txt", filename: "notes.txt", data: "hello world"},
		{name: "markdown", filename: "README.md", data: "# title\nbody"},
		{name: "uppercase extension", filename: "LOG.TXT", data: "line"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Text(tt.filename, []byte(tt.data), nil)
			assert.NoError(t, err)
			assert.Equal(t, tt.data, out)
		})
	}
}

func TestTextUnsupportedType(t *testing.T) {
	_, err := Text("image.png", []byte{0x89}, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestTextInvalidPDF(t *testing.T) {
	_, err := Text("broken.pdf", []byte("not a pdf"), nil)
	assert.Error(t, err)
}
