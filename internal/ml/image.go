package ml

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const defaultImagePrefix = "data:image/jpeg;base64,"

var errInvalidDataURI = errors.New("invalid image data URI")

// NormalizeImage turns a bare base64 payload into a JPEG data URI.
// Values that already are data URIs are returned unchanged.
func NormalizeImage(image string) string {
	if strings.HasPrefix(image, "data:") {
		return image
	}
	return defaultImagePrefix + image
}

// DecodeDataURI splits a base64 data URI into its image format (e.g. "jpeg")
// and the decoded bytes.
func DecodeDataURI(uri string) (string, []byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return "", nil, errInvalidDataURI
	}

	mimeType := strings.TrimSuffix(header, ";base64")
	format := strings.TrimPrefix(mimeType, "image/")
	if format == "" || format == mimeType {
		format = "jpeg"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("error decoding image: %w", err)
	}
	return format, data, nil
}
