package converter

import (
	"net/http"
	"path/filepath"
	"strings"
)

const (
	ContentTypePDF = "application/pdf"
)

var extensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".pdf":  ContentTypePDF,
}

// DetectType resolves the content type of an input from its file extension,
// falling back to the leading bytes.
func DetectType(name string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))

	if contentType, ok := extensions[ext]; ok {
		return contentType, nil
	}

	contentType, _, _ := strings.Cut(http.DetectContentType(content), ";")

	for _, supported := range extensions {
		if contentType == supported {
			return contentType, nil
		}
	}

	return "", ErrUnsupportedType
}

func IsImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// OutputName derives the name of the assembled PDF from the input name.
func OutputName(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "document"
	}

	return base + "_ocr.pdf"
}
