package parser

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// FlowInfo is the fact sheet of a flow document (plain text or markdown):
// its front-matter metadata and the section headings it declares.
type FlowInfo struct {
	// FrontMatter holds key/value pairs from a leading "---" delimited
	// block, the only metadata a flow document can carry.
	FrontMatter map[string]string
	// Sections lists markdown heading titles in document order.
	Sections []string
}

// ParseFlow extracts the fact sheet of a flow document.
func ParseFlow(data []byte) *FlowInfo {
	info := &FlowInfo{FrontMatter: map[string]string{}}

	body := parseFrontMatter(data, info.FrontMatter)

	md := goldmark.New()
	reader := text.NewReader(body)
	doc := md.Parser().Parse(reader)
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			title := strings.TrimSpace(string(h.Text(body)))
			if title != "" {
				info.Sections = append(info.Sections, title)
			}
		}
	}
	return info
}

// parseFrontMatter consumes a leading front-matter block, fills out with
// its key/value lines, and returns the remaining body.
func parseFrontMatter(data []byte, out map[string]string) []byte {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "---" {
		return data
	}

	consumed := len(scanner.Text()) + 1
	closed := false
	for scanner.Scan() {
		line := scanner.Text()
		consumed += len(line) + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "---" {
			closed = true
			break
		}
		key, value, ok := strings.Cut(trimmed, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if key != "" {
			out[key] = value
		}
	}
	if !closed {
		// Not front matter after all.
		for k := range out {
			delete(out, k)
		}
		return data
	}
	if consumed > len(data) {
		consumed = len(data)
	}
	return data[consumed:]
}
