package practice

import (
	"path/filepath"
	"strings"
)

type FileType string

const (
	FileTypePDF      FileType = "pdf"
	FileTypeJPG      FileType = "jpg"
	FileTypeJPEG     FileType = "jpeg"
	FileTypePNG      FileType = "png"
	FileTypeMusicXML FileType = "musicxml"
	FileTypeXML      FileType = "xml"
)

var fileTypesByExt = map[string]FileType{
	".pdf":      FileTypePDF,
	".jpg":      FileTypeJPG,
	".jpeg":     FileTypeJPEG,
	".png":      FileTypePNG,
	".musicxml": FileTypeMusicXML,
	".xml":      FileTypeXML,
}

// ClassifyFile maps a filename's extension onto a FileType. Unknown
// extensions classify as pdf.
func ClassifyFile(filename string) FileType {
	if ft, ok := fileTypesByExt[strings.ToLower(filepath.Ext(filename))]; ok {
		return ft
	}
	return FileTypePDF
}

// IsScoreNotation reports whether filename should go through the score parser.
func IsScoreNotation(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".musicxml", ".xml":
		return true
	default:
		return false
	}
}
