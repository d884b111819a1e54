package ocr

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Kind is the coarse format of an upload as far as text extraction cares.
type Kind int

const (
	KindUnknown Kind = iota
	KindPDF
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

type signature struct {
	offset int
	magic  []byte
	kind   Kind
}

var signatures = []signature{
	{0, []byte("%PDF-"), KindPDF},
	{0, []byte("\x89PNG\r\n\x1a\n"), KindImage},
	{0, []byte{0xFF, 0xD8, 0xFF}, KindImage},
	{0, []byte("GIF87a"), KindImage},
	{0, []byte("GIF89a"), KindImage},
	{0, []byte("II*\x00"), KindImage},
	{0, []byte("MM\x00*"), KindImage},
	{0, []byte("BM"), KindImage},
	{8, []byte("WEBP"), KindImage},
}

var extensions = map[string]Kind{
	".pdf":  KindPDF,
	".png":  KindImage,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".gif":  KindImage,
	".tif":  KindImage,
	".tiff": KindImage,
	".bmp":  KindImage,
	".webp": KindImage,
}

// Detect classifies an upload by its leading bytes, falling back to the filename extension.
func Detect(head []byte, filename string) Kind {
	for _, sig := range signatures {
		end := sig.offset + len(sig.magic)
		if len(head) >= end && bytes.Equal(head[sig.offset:end], sig.magic) {
			return sig.kind
		}
	}
	if kind, ok := extensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return kind
	}
	return KindUnknown
}
