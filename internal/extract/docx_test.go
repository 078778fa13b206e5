package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("failed to create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("failed to write document.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

const docxBody = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Beef Stew</w:t></w:r></w:p>
    <w:p><w:r><w:t>Serves </w:t></w:r><w:r><w:t>6</w:t></w:r></w:p>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>2</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>lb</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>beef chuck</w:t></w:r></w:p></w:tc>
      </w:tr>
      <w:tr>
        <w:tc><w:p><w:r><w:t>4</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>cups</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>broth</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
    <w:p><w:r><w:t>Brown the beef,</w:t></w:r><w:r><w:br/></w:r><w:r><w:t>then simmer.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestExtractDOCX(t *testing.T) {
	e := testExtractor(nil)

	t.Run("paragraphs and tables in document order", func(t *testing.T) {
		pages, err := e.extractDOCX("stew.docx", buildDocx(t, docxBody))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pages) != 1 {
			t.Fatalf("pages = %d, want 1", len(pages))
		}

		want := []string{
			"Beef Stew",
			"Serves 6",
			"2 | lb | beef chuck",
			"4 | cups | broth",
			"Brown the beef, then simmer.",
		}
		got := strings.Split(pages[0].Text, "\n")
		if len(got) != len(want) {
			t.Fatalf("lines = %d, want %d:\n%s", len(got), len(want), pages[0].Text)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("line %d = %q, want %q", i, got[i], want[i])
			}
		}
		if pages[0].Provenance != "docx/native" {
			t.Errorf("provenance = %q", pages[0].Provenance)
		}
	})

	t.Run("missing document body", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		w, _ := zw.Create("word/styles.xml")
		w.Write([]byte("<styles/>"))
		zw.Close()

		if _, err := e.extractDOCX("bad.docx", buf.Bytes()); err == nil {
			t.Fatal("expected error for archive without document.xml")
		}
	})
}
