// Package parser normalizes heterogeneous document bytes into plain text
// for semantic analysis and into structural fact sheets for deterministic
// checks.
package parser

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Format is the detected container type of a document.
type Format string

const (
	FormatODF         Format = "ODF"
	FormatOfficeXML   Format = "DOCX"
	FormatPDF         Format = "PDF"
	FormatFlow        Format = "FLOW"
	FormatUnsupported Format = "UNSUPPORTED"
)

var pdfHeader = []byte("%PDF-")

// Sniff classifies raw document bytes by container type. Classification is
// content-based, not extension-based, so a renamed file cannot dodge the
// stricter handlers.
func Sniff(data []byte) Format {
	if bytes.HasPrefix(data, pdfHeader) {
		return FormatPDF
	}
	if zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data))); err == nil {
		for _, f := range zr.File {
			if f.Name == "mimetype" {
				rc, err := f.Open()
				if err != nil {
					break
				}
				var sb strings.Builder
				buf := make([]byte, 256)
				for {
					n, rerr := rc.Read(buf)
					sb.Write(buf[:n])
					if rerr != nil {
						break
					}
				}
				rc.Close()
				if strings.Contains(sb.String(), "opendocument") {
					return FormatODF
				}
			}
			if f.Name == "word/document.xml" {
				return FormatOfficeXML
			}
		}
		return FormatUnsupported
	}
	if isFlowText(data) {
		return FormatFlow
	}
	return FormatUnsupported
}

// isFlowText reports whether data looks like a plain-text flow document:
// valid UTF-8 with no NUL bytes.
func isFlowText(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return false
	}
	return utf8.Valid(data)
}

// ExtractText converts document bytes into plain text for the oracle.
// Inline images already embedded as data URIs in flow documents pass
// through untouched.
func ExtractText(data []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return extractPDFText(data)
	case ".docx":
		return extractDOCXText(data)
	case ".odt", ".ott", ".odm":
		return extractODFText(data)
	case ".html", ".htm":
		return extractHTMLText(data)
	case ".md", ".markdown", ".txt", "":
		return string(data), nil
	}

	// Unknown extension: fall back on content sniffing.
	switch Sniff(data) {
	case FormatPDF:
		return extractPDFText(data)
	case FormatOfficeXML:
		return extractDOCXText(data)
	case FormatODF:
		return extractODFText(data)
	case FormatFlow:
		return string(data), nil
	}
	return "", fmt.Errorf("cannot extract text from %s", filename)
}
