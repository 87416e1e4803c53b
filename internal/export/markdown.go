// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/chronoschism/internal/compare"
	"github.com/jeranaias/chronoschism/internal/diff"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports comparisons to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a comparison to Markdown: summary, moved blocks and the
// full listing in a diff fence.
func (e *MarkdownExporter) Export(cmp *compare.Comparison) ([]byte, error) {
	if err := validate(cmp); err != nil {
		return nil, err
	}
	r := cmp.Result
	var sb strings.Builder

	// YAML frontmatter with metadata
	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "left: %s\n", escapeYAML(cmp.LeftPath))
		fmt.Fprintf(&sb, "right: %s\n", escapeYAML(cmp.RightPath))
		fmt.Fprintf(&sb, "pattern: %s\n", escapeYAML(cmp.Pattern))
		fmt.Fprintf(&sb, "exported: %s\n", e.options.now().Format(time.RFC3339))
		sb.WriteString("generator: chronoschism\n")
		sb.WriteString("---\n\n")
	}

	fmt.Fprintf(&sb, "# %s vs %s\n\n",
		escapeMarkdown(titleName(cmp.LeftPath, "left")),
		escapeMarkdown(titleName(cmp.RightPath, "right")))

	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- **Result**: %s\n", r.Summary())
	fmt.Fprintf(&sb, "- **Added**: %d\n", r.Stats.Added)
	fmt.Fprintf(&sb, "- **Deleted**: %d\n", r.Stats.Deleted)
	fmt.Fprintf(&sb, "- **Moved**: %d\n", r.Stats.Moved)
	fmt.Fprintf(&sb, "- **Unchanged**: %d\n", r.Stats.Unchanged)
	if e.options.IncludeMetadata {
		if cmp.Pattern == "" {
			sb.WriteString("- **Pattern**: none\n")
		} else {
			fmt.Fprintf(&sb, "- **Pattern**: `%s`\n", strings.ReplaceAll(cmp.Pattern, "`", "'"))
		}
	}
	sb.WriteString("\n")

	if blocks := r.MovedBlocks(); len(blocks) > 0 {
		sb.WriteString("## Moved blocks\n\n")
		sb.WriteString("| Left lines | Right lines | Size |\n")
		sb.WriteString("|---|---|---|\n")
		for _, b := range blocks {
			fmt.Fprintf(&sb, "| %s | %s | %d |\n",
				lineRange(b.SourceStart, b.SourceEnd),
				lineRange(b.DestinationStart, b.DestinationEnd),
				b.Len())
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Alignment\n\n")
	if r.IsEmpty() {
		sb.WriteString("*Both inputs are empty.*\n")
	} else {
		listing := diff.FormatText(r)
		fence := codeFence(listing)
		sb.WriteString(fence + "diff\n")
		sb.WriteString(listing)
		sb.WriteString(fence + "\n")
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

func titleName(path, fallback string) string {
	if path == "" {
		return fallback
	}
	return filepath.Base(path)
}

func lineRange(start, end int) string {
	if start == end {
		return fmt.Sprintf("%d", start)
	}
	return fmt.Sprintf("%d-%d", start, end)
}

// codeFence returns a backtick fence longer than any run inside text.
func codeFence(text string) string {
	longest, run := 0, 0
	for _, r := range text {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return strings.Repeat("`", max(3, longest+1))
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes special Markdown characters in plain text.
func escapeMarkdown(s string) string {
	// Only escape characters that would break formatting in titles/headings
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML quotes values containing YAML syntax.
func escapeYAML(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
