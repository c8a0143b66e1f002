package parser

import (
	"archive/zip"
	"bytes"
	"testing"
)

func zipWith(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestSniff(t *testing.T) {
	odf := zipWith(t, map[string]string{
		"mimetype":    "application/vnd.oasis.opendocument.text",
		"content.xml": "<office:document-content/>",
	})
	docx := zipWith(t, map[string]string{
		"[Content_Types].xml": "<Types/>",
		"word/document.xml":   "<w:document/>",
	})
	plainZip := zipWith(t, map[string]string{"readme.txt": "hello"})

	cases := []struct {
		name string
		data []byte
		want Format
	}{
		{"pdf header", []byte("%PDF-1.7\nstream"), FormatPDF},
		{"odf package", odf, FormatODF},
		{"docx package", docx, FormatOfficeXML},
		{"zip without markers", plainZip, FormatUnsupported},
		{"markdown", []byte("# Title\n\nBody."), FormatFlow},
		{"empty", nil, FormatFlow},
		{"nul bytes", []byte{0x7f, 0x45, 0x00, 0x46}, FormatUnsupported},
		{"invalid utf8", []byte{0xff, 0xfe, 0xfd}, FormatUnsupported},
	}
	for _, tc := range cases {
		if got := Sniff(tc.data); got != tc.want {
			t.Errorf("%s: Sniff = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestExtractTextFlowPassThrough(t *testing.T) {
	body := "---\ntitle: Notes\n---\n# Heading\n\nSome text with ![img](data:image/png;base64,AAAA)\n"
	got, err := ExtractText([]byte(body), "notes.md")
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if got != body {
		t.Errorf("flow text must pass through untouched")
	}
}

func TestExtractTextUnknownExtensionSniffs(t *testing.T) {
	got, err := ExtractText([]byte("plain words"), "attachment.bin")
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if got != "plain words" {
		t.Errorf("got %q", got)
	}
}

func TestExtractTextUnsupported(t *testing.T) {
	if _, err := ExtractText([]byte{0x00, 0x01}, "blob.bin"); err == nil {
		t.Fatal("expected error for unsupported bytes")
	}
}
