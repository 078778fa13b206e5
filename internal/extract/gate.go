package extract

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/recipeops/ladle/internal/recipe"
)

// RejectedInputError is a terminal, per-file gate failure. It fails closed:
// nothing past the gate runs for the file.
type RejectedInputError struct {
	Filename string
	Reason   string
}

func (e *RejectedInputError) Error() string {
	return fmt.Sprintf("rejected input %s: %s", e.Filename, e.Reason)
}

// blockedExtensions are macro-enabled Office formats, rejected regardless of
// declared MIME type.
var blockedExtensions = map[string]bool{
	".xlsm": true,
	".docm": true,
	".xlsb": true,
}

// legacyExtensions are pre-OOXML Office formats the adapters cannot read.
// Rejected with an explicit reason so the uploader knows to convert.
var legacyExtensions = map[string]bool{
	".xls": true,
	".doc": true,
}

// extToType maps allowed extensions to their file type.
var extToType = map[string]recipe.FileType{
	".csv":  recipe.FileTypeCSV,
	".xlsx": recipe.FileTypeXLSX,
	".docx": recipe.FileTypeDOCX,
	".pdf":  recipe.FileTypePDF,
	".png":  recipe.FileTypeImage,
	".jpg":  recipe.FileTypeImage,
	".jpeg": recipe.FileTypeImage,
}

// expectedMIME maps extensions to the MIME type an honest uploader declares.
var expectedMIME = map[string]string{
	".csv":  "text/csv",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

type gatedFile struct {
	fileType recipe.FileType
	data     []byte
	sha256   string
	size     int64
}

// gate enforces the ingress hygiene rules: extension blocklist/allowlist,
// MIME consistency, content magic, size cap, EXIF strip for images, and the
// content hash used for duplicate detection and audit.
func (e *Extractor) gate(f File) (*gatedFile, error) {
	ext := strings.ToLower(filepath.Ext(f.Name))

	if blockedExtensions[ext] {
		return nil, &RejectedInputError{Filename: f.Name, Reason: fmt.Sprintf("file type %s not allowed (contains macros)", ext)}
	}
	if legacyExtensions[ext] {
		return nil, &RejectedInputError{Filename: f.Name, Reason: fmt.Sprintf("legacy format %s not supported, convert to %sx", ext, ext)}
	}

	fileType, ok := extToType[ext]
	if !ok {
		return nil, &RejectedInputError{Filename: f.Name, Reason: fmt.Sprintf("unsupported file type %q", ext)}
	}

	if len(f.Data) == 0 {
		return nil, &RejectedInputError{Filename: f.Name, Reason: "empty file"}
	}
	if e.limits.MaxFileBytes > 0 && int64(len(f.Data)) > e.limits.MaxFileBytes {
		return nil, &RejectedInputError{
			Filename: f.Name,
			Reason:   fmt.Sprintf("file size %d exceeds limit %d", len(f.Data), e.limits.MaxFileBytes),
		}
	}

	// Browsers frequently send application/octet-stream; that is tolerated.
	// A declared type that contradicts the extension is not.
	if declared := strings.ToLower(strings.TrimSpace(f.DeclaredMIME)); declared != "" &&
		declared != "application/octet-stream" && declared != expectedMIME[ext] {
		return nil, &RejectedInputError{
			Filename: f.Name,
			Reason:   fmt.Sprintf("declared MIME type %q does not match extension %s", f.DeclaredMIME, ext),
		}
	}

	if err := verifyMagic(fileType, f.Data); err != nil {
		return nil, &RejectedInputError{Filename: f.Name, Reason: err.Error()}
	}

	data := f.Data
	if fileType == recipe.FileTypeImage {
		stripped, err := stripImageMetadata(data)
		if err != nil {
			return nil, &RejectedInputError{Filename: f.Name, Reason: fmt.Sprintf("unreadable image: %v", err)}
		}
		data = stripped
	}

	// Hash the original bytes so duplicate detection survives re-encoding.
	sum := sha256.Sum256(f.Data)

	return &gatedFile{
		fileType: fileType,
		data:     data,
		sha256:   hex.EncodeToString(sum[:]),
		size:     int64(len(f.Data)),
	}, nil
}

// verifyMagic checks that the content actually is what the extension claims.
func verifyMagic(ft recipe.FileType, data []byte) error {
	switch ft {
	case recipe.FileTypePDF:
		if !bytes.HasPrefix(data, []byte("%PDF")) {
			return fmt.Errorf("content is not a PDF")
		}
	case recipe.FileTypeXLSX, recipe.FileTypeDOCX:
		// OOXML containers are zip archives. OLE2 content (legacy .xls/.doc
		// renamed to the new extension) fails here; the adapters cannot read it.
		if !bytes.HasPrefix(data, []byte("PK\x03\x04")) {
			return fmt.Errorf("content is not an OOXML document")
		}
	case recipe.FileTypeImage:
		if !bytes.HasPrefix(data, []byte{0x89, 'P', 'N', 'G'}) &&
			!bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}) {
			return fmt.Errorf("content is not a PNG or JPEG image")
		}
	case recipe.FileTypeCSV:
		// No magic for delimited text; reject NUL bytes as a cheap binary check.
		if bytes.IndexByte(data, 0x00) >= 0 {
			return fmt.Errorf("content is not delimited text")
		}
	}
	return nil
}
