// Package document handles uploaded accreditation documents, which travel
// between forms, transports and the inference model as base64 data URIs.
package document

import (
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrNotDataURI        = errors.New("value is not a data URI")
	ErrNotBase64         = errors.New("data URI is not base64 encoded")
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// DataURIPattern matches a data URI whose payload is well-formed base64,
// padded or not. Schemas use it so a corrupt document is rejected before
// inference.
const DataURIPattern = `^data:[^;,]+(;[^;,]+)*;base64,(?:[A-Za-z0-9+/]{4})*(?:[A-Za-z0-9+/]{2}(?:==)?|[A-Za-z0-9+/]{3}=?)?$`

// Accepted upload formats, keyed by file extension.
var acceptedTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
}

// DataURI is a decoded data:<mime>;base64,<data> value.
type DataURI struct {
	MIMEType string
	Data     []byte
}

// String re-encodes the document as a data URI.
func (d DataURI) String() string {
	return EncodeDataURI(d.MIMEType, d.Data)
}

// ParseDataURI decodes a base64 data URI. Parameters between the MIME type
// and ";base64" (such as a name or charset) are accepted and dropped.
func ParseDataURI(raw string) (DataURI, error) {
	rest, ok := strings.CutPrefix(raw, "data:")
	if !ok {
		return DataURI{}, ErrNotDataURI
	}

	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return DataURI{}, ErrNotDataURI
	}

	params := strings.Split(header, ";")
	if len(params) < 2 || params[len(params)-1] != "base64" {
		return DataURI{}, ErrNotBase64
	}

	mimeType := strings.ToLower(strings.TrimSpace(params[0]))
	if mimeType == "" {
		mimeType = "text/plain"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some encoders drop the padding.
		if data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); err != nil {
			return DataURI{}, fmt.Errorf("%w: %v", ErrNotBase64, err)
		}
	}

	return DataURI{MIMEType: mimeType, Data: data}, nil
}

func EncodeDataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// MIMETypeForFilename resolves an upload's MIME type from its extension,
// rejecting anything outside pdf, jpeg, jpg and png.
func MIMETypeForFilename(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	mimeType, ok := acceptedTypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return mimeType, nil
}

// AcceptedExtensions lists the upload extensions in a stable order.
func AcceptedExtensions() []string {
	return []string{".pdf", ".jpeg", ".jpg", ".png"}
}
