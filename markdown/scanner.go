// Package markdown finds fenced diagram blocks in Markdown documents and
// rewrites them in place.
package markdown

import (
	"errors"
	"fmt"
	"strings"

	"umlboard/storage"
)

// Errors returned by ReplaceBlock.
var (
	ErrBlockBounds  = errors.New("invalid block boundaries")
	ErrBlockChanged = errors.New("block content has been modified externally")
)

// DiagramBlock represents a diagram code block found in markdown
type DiagramBlock struct {
	Type        string // mermaid, plantuml, etc.
	Content     string // block content with the fence indentation removed
	StartLine   int    // line of the opening fence (0-based)
	EndLine     int    // line of the closing fence
	Indent      string // indentation before the code fence
	ContentHash string // hash of Content, checked before a rewrite
}

// Scanner finds and extracts diagram blocks from markdown content
type Scanner struct {
	content string
	lines   []string
}

// NewScanner creates a new markdown scanner
func NewScanner(content string) *Scanner {
	return &Scanner{
		content: content,
		lines:   strings.Split(content, "\n"),
	}
}

// Content returns the current markdown content
func (s *Scanner) Content() string {
	return s.content
}

// FindDiagramBlocks finds all diagram code blocks in the markdown. An
// unterminated block is ignored.
func (s *Scanner) FindDiagramBlocks() []DiagramBlock {
	var blocks []DiagramBlock
	var current *DiagramBlock
	var body []string

	for i, line := range s.lines {
		trimmed := strings.TrimLeft(line, " \t")
		if current == nil {
			if !strings.HasPrefix(trimmed, "```") {
				continue
			}
			lang := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(trimmed, "```")))
			if IsDiagramLanguage(lang) {
				current = &DiagramBlock{Type: lang, StartLine: i, Indent: line[:len(line)-len(trimmed)]}
				body = body[:0]
			}
			continue
		}

		if strings.HasPrefix(trimmed, "```") {
			current.EndLine = i
			current.Content = strings.Join(body, "\n")
			current.ContentHash = storage.Hash([]byte(current.Content))
			blocks = append(blocks, *current)
			current = nil
			continue
		}
		body = append(body, strings.TrimPrefix(line, current.Indent))
	}

	return blocks
}

// ReplaceBlock replaces a diagram block's content, keeping its fences and
// indentation, and returns the new markdown. The block must come from this
// scanner and its content must be unchanged since it was found. On success
// the scanner holds the new content.
func (s *Scanner) ReplaceBlock(block DiagramBlock, newContent string) (string, error) {
	if block.StartLine < 0 || block.EndLine >= len(s.lines) || block.StartLine >= block.EndLine {
		return "", fmt.Errorf("%w: start=%d, end=%d, total lines=%d",
			ErrBlockBounds, block.StartLine, block.EndLine, len(s.lines))
	}

	start := strings.TrimLeft(s.lines[block.StartLine], " \t")
	if !strings.HasPrefix(strings.ToLower(start), "```"+block.Type) {
		return "", fmt.Errorf("%w: line %d no longer opens a %s block", ErrBlockChanged, block.StartLine+1, block.Type)
	}
	if !strings.HasPrefix(strings.TrimLeft(s.lines[block.EndLine], " \t"), "```") {
		return "", fmt.Errorf("%w: line %d no longer closes the block", ErrBlockChanged, block.EndLine+1)
	}

	body := make([]string, 0, block.EndLine-block.StartLine-1)
	for _, line := range s.lines[block.StartLine+1 : block.EndLine] {
		body = append(body, strings.TrimPrefix(line, block.Indent))
	}
	if storage.Hash([]byte(strings.Join(body, "\n"))) != block.ContentHash {
		return "", fmt.Errorf("%w (hash mismatch)", ErrBlockChanged)
	}

	replacement := strings.Split(strings.TrimRight(newContent, "\n"), "\n")
	lines := make([]string, 0, len(s.lines)-len(body)+len(replacement))
	lines = append(lines, s.lines[:block.StartLine+1]...)
	for _, line := range replacement {
		if line == "" {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, block.Indent+line)
	}
	lines = append(lines, s.lines[block.EndLine:]...)

	s.lines = lines
	s.content = strings.Join(lines, "\n")
	return s.content, nil
}

// IsDiagramLanguage reports whether a fence language holds a diagram.
func IsDiagramLanguage(lang string) bool {
	switch strings.ToLower(lang) {
	case "mermaid", "plantuml", "puml", "d2", "dot", "graphviz":
		return true
	default:
		return false
	}
}

// FormatBlockInfo returns a human-readable description of a block
func FormatBlockInfo(block DiagramBlock, index int) string {
	preview := ""
	for _, line := range strings.Split(block.Content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "@startuml") && !strings.HasPrefix(trimmed, "@enduml") {
			preview = trimmed
			if len(preview) > 50 {
				preview = preview[:47] + "..."
			}
			break
		}
	}

	return fmt.Sprintf("%d. %s (line %d): %s", index+1, block.Type, block.StartLine+1, preview)
}
