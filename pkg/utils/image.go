package utils

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// ErrUnsupportedImageType is returned when neither the declared media type
// nor the image bytes identify one of the supported formats.
var ErrUnsupportedImageType = errors.New("unsupported image type")

// imageExts maps file extensions to the media types the model accepts.
var imageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

var supportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

func IsSupportedImageType(mediaType string) bool {
	return supportedImageTypes[normalizeMediaType(mediaType)]
}

// MediaTypeFromFileName returns the media type for a known image extension,
// or "" when the extension is not recognised.
func MediaTypeFromFileName(name string) string {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// SniffImageType detects the media type from the leading bytes.
func SniffImageType(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	return normalizeMediaType(http.DetectContentType(data))
}

// ResolveImageType prefers the declared media type and falls back to
// sniffing the bytes.
func ResolveImageType(declared string, data []byte) (string, error) {
	if mt := normalizeMediaType(declared); supportedImageTypes[mt] {
		return mt, nil
	}
	if mt := SniffImageType(data); supportedImageTypes[mt] {
		return mt, nil
	}
	return "", fmt.Errorf("%w: declared %q", ErrUnsupportedImageType, declared)
}

// EncodeBase64 is the inline transport encoding of image bytes.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 decodes standard base64 and also accepts a data URL. The
// service never decodes images; this is the inverse used to verify that
// encoded payloads round-trip byte for byte.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if idx := strings.IndexByte(s, ','); idx > 0 {
			s = s[idx+1:]
		}
	}
	return base64.StdEncoding.DecodeString(s)
}

// DataURL renders data as a data: URL, the form used for local previews.
func DataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + EncodeBase64(data)
}

func normalizeMediaType(mediaType string) string {
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(mediaType); err == nil {
		return strings.ToLower(mt)
	}
	return strings.ToLower(mediaType)
}
