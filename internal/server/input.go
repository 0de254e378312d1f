package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	apperrors "accreditation-gateway/internal/common/errors"
	"accreditation-gateway/internal/document"
)

const (
	// DocumentField is the multipart file field carrying the upload.
	DocumentField = "document"
	// DocumentInputField is the action input the upload is bound to.
	DocumentInputField = "documentDataUri"
)

// readInput decodes a JSON object body, or a multipart form whose document
// file becomes a data URI and whose other fields become strings.
func (s *Server) readInput(w http.ResponseWriter, r *http.Request) (map[string]interface{}, *apperrors.StandardError) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = "application/json"
	}

	if mediaType == "multipart/form-data" {
		return s.readMultipart(r)
	}

	var input map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		if tooLarge(err) {
			return nil, apperrors.NewUploadTooLargeError(s.maxUpload)
		}
		if errors.Is(err, io.EOF) {
			err = errors.New("request body is empty")
		}
		return nil, apperrors.NewInputParsingError(err)
	}
	if input == nil {
		return nil, apperrors.NewInputParsingError(errors.New("request body must be a JSON object"))
	}
	return input, nil
}

func (s *Server) readMultipart(r *http.Request) (map[string]interface{}, *apperrors.StandardError) {
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		if tooLarge(err) {
			return nil, apperrors.NewUploadTooLargeError(s.maxUpload)
		}
		return nil, apperrors.NewInputParsingError(err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	input := make(map[string]interface{}, len(r.MultipartForm.Value)+1)
	for key, values := range r.MultipartForm.Value {
		if len(values) > 0 {
			input[key] = values[0]
		}
	}

	files := r.MultipartForm.File[DocumentField]
	if len(files) == 0 {
		return input, nil
	}

	header := files[0]
	mimeType, err := document.MIMETypeForFilename(header.Filename)
	if err != nil {
		return nil, apperrors.NewInputParsingError(fmt.Errorf("%w (accepted: %s)", err, strings.Join(document.AcceptedExtensions(), ", ")))
	}

	f, err := header.Open()
	if err != nil {
		return nil, apperrors.NewInputParsingError(err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.NewInputParsingError(err)
	}
	input[DocumentInputField] = document.EncodeDataURI(mimeType, data)
	return input, nil
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}
