package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/recipeops/ladle/internal/recipe"
)

// extractDOCX pulls paragraph and table text from a word-processor document
// in document order. OOXML is a zip archive; the body lives in
// word/document.xml and is walked with a streaming decoder so tables and
// paragraphs come out interleaved exactly as authored.
func (e *Extractor) extractDOCX(name string, data []byte) ([]recipe.RawPage, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open document container: %w", err)
	}

	var docXML io.ReadCloser
	for _, zf := range zr.File {
		if zf.Name == "word/document.xml" {
			docXML, err = zf.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open document body: %w", err)
			}
			break
		}
	}
	if docXML == nil {
		return nil, fmt.Errorf("document has no word/document.xml")
	}
	defer docXML.Close()

	lines, err := walkDocumentXML(docXML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document body: %w", err)
	}

	text := strings.Join(lines, "\n")
	e.log.Debug("docx extracted", "file", name, "lines", len(lines))

	return []recipe.RawPage{{
		SourceFile: name,
		PageIndex:  0,
		Text:       text,
		Method:     recipe.MethodNative,
		Metrics:    textMetrics(text),
		Provenance: "docx/native",
	}}, nil
}

// walkDocumentXML streams through the WordprocessingML body collecting
// non-empty paragraphs and table rows. Table rows are flattened to
// pipe-delimited lines, matching how downstream parsing expects tabular
// content.
func walkDocumentXML(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		lines     []string
		para      strings.Builder
		cellText  strings.Builder
		row       []string
		tblDepth  int
		inText    bool
	)

	flushPara := func() {
		if s := strings.TrimSpace(para.String()); s != "" {
			lines = append(lines, s)
		}
		para.Reset()
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth++
			case "p":
				if tblDepth == 0 {
					para.Reset()
				}
			case "tr":
				row = row[:0]
			case "tc":
				cellText.Reset()
			case "t":
				inText = true
			case "br", "cr":
				if tblDepth > 0 {
					cellText.WriteString(" ")
				} else {
					para.WriteString(" ")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth--
			case "p":
				if tblDepth == 0 {
					flushPara()
				} else {
					cellText.WriteString(" ")
				}
			case "tc":
				if s := strings.TrimSpace(cellText.String()); s != "" {
					row = append(row, s)
				}
			case "tr":
				if len(row) > 0 {
					lines = append(lines, strings.Join(row, " | "))
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if !inText {
				continue
			}
			if tblDepth > 0 {
				cellText.Write(t)
			} else {
				para.Write(t)
			}
		}
	}

	return lines, nil
}
