package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

const (
	odfOfficeNS = "urn:oasis:names:tc:opendocument:xmlns:office:1.0"
	odfStyleNS  = "urn:oasis:names:tc:opendocument:xmlns:style:1.0"
)

// ODFInfo is the structural fact sheet of an ODF package: everything the
// deterministic validator needs without re-reading the archive.
type ODFInfo struct {
	Mimetype string
	// Version is the office:version declared on the content root.
	Version string
	// Metadata maps meta.xml field names (local names) to their text.
	Metadata map[string]string
	// Styles maps style names to their text-property attributes, keyed as
	// "text:<attribute>" the way rule documents express them.
	Styles map[string]map[string]string
	// MacroEntries lists archive entries under script/macro directories.
	MacroEntries []string
}

// ParseODF reads an ODF package and extracts its fact sheet.
func ParseODF(data []byte) (*ODFInfo, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open odf package: %w", err)
	}

	info := &ODFInfo{
		Metadata: map[string]string{},
		Styles:   map[string]map[string]string{},
	}

	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "Basic/") || strings.HasPrefix(f.Name, "Scripts/") {
			info.MacroEntries = append(info.MacroEntries, f.Name)
		}
	}
	sort.Strings(info.MacroEntries)

	if b, err := readZipEntry(zr, "mimetype"); err == nil {
		info.Mimetype = strings.TrimSpace(string(b))
	}

	content, err := readZipEntry(zr, "content.xml")
	if err != nil {
		return nil, fmt.Errorf("read content.xml: %w", err)
	}
	info.Version = contentVersion(content)
	if err := collectStyles(content, info.Styles); err != nil {
		return nil, fmt.Errorf("parse content styles: %w", err)
	}

	// styles.xml carries the named styles; its absence is tolerated.
	if styles, err := readZipEntry(zr, "styles.xml"); err == nil {
		if err := collectStyles(styles, info.Styles); err != nil {
			return nil, fmt.Errorf("parse styles.xml: %w", err)
		}
	}

	if meta, err := readZipEntry(zr, "meta.xml"); err == nil {
		if err := collectMetadata(meta, info.Metadata); err != nil {
			return nil, fmt.Errorf("parse meta.xml: %w", err)
		}
	}

	return info, nil
}

func readZipEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("entry %s not found", name)
}

// contentVersion returns the office:version attribute of the content root.
func contentVersion(content []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(content))
	for {
		tok, err := dec.Token()
		if err != nil {
			return ""
		}
		if start, ok := tok.(xml.StartElement); ok {
			for _, attr := range start.Attr {
				if attr.Name.Local == "version" && attr.Name.Space == odfOfficeNS {
					return attr.Value
				}
			}
			// Root element reached without a version attribute.
			for _, attr := range start.Attr {
				if attr.Name.Local == "version" {
					return attr.Value
				}
			}
			return ""
		}
	}
}

// collectStyles scans for style:style elements and records the attributes
// of their style:text-properties children.
func collectStyles(doc []byte, out map[string]map[string]string) error {
	dec := xml.NewDecoder(bytes.NewReader(doc))
	var currentStyle string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == odfStyleNS && t.Name.Local == "style" {
				currentStyle = ""
				for _, attr := range t.Attr {
					if attr.Name.Local == "name" {
						currentStyle = attr.Value
					}
				}
				if currentStyle != "" && out[currentStyle] == nil {
					out[currentStyle] = map[string]string{}
				}
			}
			if t.Name.Space == odfStyleNS && t.Name.Local == "text-properties" && currentStyle != "" {
				props := out[currentStyle]
				for _, attr := range t.Attr {
					props["text:"+attr.Name.Local] = attr.Value
				}
			}
		case xml.EndElement:
			if t.Name.Space == odfStyleNS && t.Name.Local == "style" {
				currentStyle = ""
			}
		}
	}
}

// collectMetadata records each child element of office:meta as a
// local-name keyed string.
func collectMetadata(meta []byte, out map[string]string) error {
	dec := xml.NewDecoder(bytes.NewReader(meta))
	inMeta := false
	var field string
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == odfOfficeNS && t.Name.Local == "meta" {
				inMeta = true
				continue
			}
			if inMeta && field == "" {
				field = t.Name.Local
				text.Reset()
			}
		case xml.CharData:
			if field != "" {
				text.Write(t)
			}
		case xml.EndElement:
			if t.Name.Space == odfOfficeNS && t.Name.Local == "meta" {
				inMeta = false
				continue
			}
			if field != "" && field == t.Name.Local {
				out[field] = strings.TrimSpace(text.String())
				field = ""
			}
		}
	}
}

// extractODFText flattens the text:p and text:h content of an ODF body
// into plain text, one paragraph per line.
func extractODFText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open odf package: %w", err)
	}
	content, err := readZipEntry(zr, "content.xml")
	if err != nil {
		return "", fmt.Errorf("read content.xml: %w", err)
	}

	dec := xml.NewDecoder(bytes.NewReader(content))
	var sb strings.Builder
	depth := 0 // nesting depth inside office:body
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse content.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == odfOfficeNS && t.Name.Local == "body" {
				depth = 1
			} else if depth > 0 {
				depth++
			}
		case xml.CharData:
			if depth > 0 {
				sb.Write(t)
			}
		case xml.EndElement:
			if depth > 0 {
				depth--
				if t.Name.Local == "p" || t.Name.Local == "h" {
					sb.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
