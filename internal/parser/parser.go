// Package parser extracts page fields from Markdown frontmatter and splits
// the body into line-indexed blocks for editor position mapping.
package parser

import (
	"bytes"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/halvard/skald/internal/models"
)

// BlockKind classifies a body block.
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockCode      BlockKind = "code"
	BlockList      BlockKind = "list"
	BlockQuote     BlockKind = "quote"
)

// Block is one visual unit of the body, anchored at its starting line
// (0-based, relative to the body).
type Block struct {
	Kind BlockKind
	Line int
	Text string // first line, for diagnostics
}

// Result holds the output of parsing a Markdown page source.
type Result struct {
	Fields models.PageFields
	Blocks []Block
}

// Parse extracts frontmatter fields and body blocks from raw Markdown bytes.
func Parse(data []byte) (*Result, error) {
	fm, body := splitFrontmatter(data)

	fields := fieldsFromFrontmatter(fm)
	fields.Body = body
	if fields.Title == "" {
		fields.Title = firstHeading(body)
	}

	return &Result{
		Fields: fields,
		Blocks: ScanBlocks(body),
	}, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. Missing or invalid frontmatter means the entire
// content is body.
func splitFrontmatter(data []byte) (map[string]interface{}, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}
	return fm, body
}

// fieldsFromFrontmatter maps known frontmatter keys onto PageFields.
// Unknown keys are ignored; absent keys leave the zero value.
func fieldsFromFrontmatter(fm map[string]interface{}) models.PageFields {
	var f models.PageFields
	if fm == nil {
		return f
	}
	if s, ok := fm["title"].(string); ok {
		f.Title = s
	}
	if s, ok := fm["slug"].(string); ok {
		f.Slug = s
	}
	if s, ok := fm["excerpt"].(string); ok {
		f.Excerpt = s
	}
	if s, ok := fm["cover"].(string); ok {
		f.Cover = s
	}
	if raw, ok := fm["tags"].([]interface{}); ok {
		seen := make(map[string]struct{}, len(raw))
		for _, item := range raw {
			s, ok := item.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			f.Tags = append(f.Tags, s)
		}
	}
	if t := parseTimestamp(fm["published_at"]); t != nil {
		f.PublishedAt = t
	}
	return f
}

// parseTimestamp accepts the timestamp shapes yaml.v3 produces for scalar
// values: native time.Time, RFC 3339 strings, and plain dates.
func parseTimestamp(v interface{}) *time.Time {
	switch t := v.(type) {
	case time.Time:
		u := t.UTC()
		return &u
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				u := parsed.UTC()
				return &u
			}
		}
	}
	return nil
}

// firstHeading returns the first H1 text, or empty string.
func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// ScanBlocks splits a Markdown body into blocks in document order. Blank
// lines separate blocks; headings always start their own block; fenced code
// is a single block spanning to the closing fence.
func ScanBlocks(body string) []Block {
	if body == "" {
		return nil
	}
	lines := strings.Split(body, "\n")

	var (
		blocks  []Block
		open    bool // a paragraph/list/quote block is being accumulated
		inFence bool
	)

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if inFence {
			if strings.HasPrefix(trimmed, "```") {
				inFence = false
			}
			continue
		}

		switch {
		case trimmed == "":
			open = false

		case strings.HasPrefix(trimmed, "```"):
			blocks = append(blocks, Block{Kind: BlockCode, Line: i, Text: trimmed})
			inFence = true
			open = false

		case strings.HasPrefix(trimmed, "#"):
			blocks = append(blocks, Block{Kind: BlockHeading, Line: i, Text: trimmed})
			open = false

		case !open:
			kind := BlockParagraph
			switch {
			case isListItem(trimmed):
				kind = BlockList
			case strings.HasPrefix(trimmed, ">"):
				kind = BlockQuote
			}
			blocks = append(blocks, Block{Kind: kind, Line: i, Text: trimmed})
			open = true
		}
	}
	return blocks
}

func isListItem(trimmed string) bool {
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "+ ") {
		return true
	}
	// Ordered list: digits followed by ". " or ") ".
	i := 0
	for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}
	return i > 0 && i+1 < len(trimmed) && (trimmed[i] == '.' || trimmed[i] == ')') && trimmed[i+1] == ' '
}
