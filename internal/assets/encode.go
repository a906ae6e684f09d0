// Package assets converts uploaded files into the embeddable forms the rest
// of the pipeline works with: base64 image payloads for the AI collaborator
// and data URIs for texture references.
package assets

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotAnImage is returned when the uploaded bytes do not sniff as an image.
var ErrNotAnImage = errors.New("assets: data is not an image")

// EncodeImage sniffs the MIME type of raw image bytes and base64-encodes
// them for transmission. Only image/* payloads are accepted.
func EncodeImage(data []byte) (encoded, mimeType string, err error) {
	if len(data) == 0 {
		return "", "", ErrNotAnImage
	}
	mimeType = http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", "", fmt.Errorf("%w (detected %s)", ErrNotAnImage, mimeType)
	}
	return base64.StdEncoding.EncodeToString(data), mimeType, nil
}

// DataURI builds a data URI from a MIME type and base64 payload, the form
// stored in ModelData.TextureRef and the draft image set.
func DataURI(mimeType, encoded string) string {
	return "data:" + mimeType + ";base64," + encoded
}

// ParseDataURI splits a data URI back into its MIME type and decoded bytes.
func ParseDataURI(uri string) (mimeType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("assets: not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("assets: malformed data URI")
	}
	mimeType, _, _ = strings.Cut(meta, ";")
	if strings.Contains(meta, ";base64") {
		data, err = base64.StdEncoding.DecodeString(payload)
	} else {
		data = []byte(payload)
	}
	if err != nil {
		return "", nil, fmt.Errorf("assets: decode data URI: %w", err)
	}
	return mimeType, data, nil
}
