package tesseract

// PDFs have to be rasterized by the caller first.
func supported(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp", "image/tiff":
		return true
	}

	return false
}
