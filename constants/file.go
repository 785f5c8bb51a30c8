package constants

import "strings"

// Input formats accepted by the pipeline.
const (
	XML   = "XML"
	PDF   = "PDF"
	IMAGE = "IMAGE"
	TXT   = "TXT"
)

// FileTypes holds the formats a document can be routed to.
var FileTypes = []string{XML, PDF, IMAGE, TXT}

// AllowedExtensions holds the default file extensions accepted for extraction.
var AllowedExtensions = map[string]struct{}{
	"xml":  {},
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"txt":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// MapExtToFormat maps a file extension (with or without dot) to one of FileTypes.
// Unknown extensions map to "".
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "xml":
		return XML
	case "pdf":
		return PDF
	case "jpg", "jpeg", "png", "tif", "tiff":
		return IMAGE
	case "txt":
		return TXT
	default:
		return ""
	}
}
