package document

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataURI(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantMIME string
		wantData []byte
		wantErr  error
	}{
		{
			name:     "pdf",
			raw:      "data:application/pdf;base64,AAAA",
			wantMIME: "application/pdf",
			wantData: []byte{0, 0, 0},
		},
		{
			name:     "with parameters",
			raw:      "data:image/png;name=scan.png;base64,aGVsbG8=",
			wantMIME: "image/png",
			wantData: []byte("hello"),
		},
		{
			name:     "missing padding",
			raw:      "data:image/jpeg;base64,aGVsbG8",
			wantMIME: "image/jpeg",
			wantData: []byte("hello"),
		},
		{
			name:    "not a data uri",
			raw:     "https://example.com/doc.pdf",
			wantErr: ErrNotDataURI,
		},
		{
			name:    "no comma",
			raw:     "data:application/pdf;base64",
			wantErr: ErrNotDataURI,
		},
		{
			name:    "not base64",
			raw:     "data:text/plain,hello",
			wantErr: ErrNotBase64,
		},
		{
			name:    "corrupt payload",
			raw:     "data:application/pdf;base64,!!!",
			wantErr: ErrNotBase64,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDataURI(tt.raw)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMIME, got.MIMEType)
			assert.Equal(t, tt.wantData, got.Data)
		})
	}
}

func TestDataURIPattern(t *testing.T) {
	pattern := regexp.MustCompile(DataURIPattern)

	tests := []struct {
		raw   string
		match bool
	}{
		{"data:application/pdf;base64,AAAA", true},
		{"data:image/png;name=scan.png;base64,aGVsbG8=", true},
		{"data:image/jpeg;base64,aGVsbG8", true},
		{"data:application/pdf;base64,aGk=", true},
		{"data:application/pdf;base64,aGk", true},
		{"data:application/pdf;base64,", true},
		{"data:application/pdf;base64,@@not base64@@", false},
		{"data:application/pdf;base64,!!!", false},
		{"data:application/pdf;base64,AAAAA", false},
		{"data:application/pdf;base64,AA AA", false},
		{"data:application/pdf,AAAA", false},
		{"data:;base64,AAAA", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.match, pattern.MatchString(tt.raw))
			if tt.match {
				_, err := ParseDataURI(tt.raw)
				assert.NoError(t, err)
			}
		})
	}
}

func TestDataURI_String(t *testing.T) {
	uri := DataURI{MIMEType: "application/pdf", Data: []byte("%PDF-1.7")}
	parsed, err := ParseDataURI(uri.String())
	require.NoError(t, err)
	assert.Equal(t, uri, parsed)
}

func TestMIMETypeForFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
		wantErr  bool
	}{
		{"ssr-report.pdf", "application/pdf", false},
		{"SCAN.JPG", "image/jpeg", false},
		{"photo.jpeg", "image/jpeg", false},
		{"seal.png", "image/png", false},
		{"notes.docx", "", true},
		{"noextension", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := MIMETypeForFilename(tt.filename)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnsupportedFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Len(t, AcceptedExtensions(), len(acceptedTypes))
}
