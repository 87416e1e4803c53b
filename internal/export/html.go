// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/jeranaias/chronoschism/internal/compare"
	"github.com/jeranaias/chronoschism/internal/diff"
	"github.com/jeranaias/chronoschism/internal/util"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports comparisons to a self-contained HTML page with a
// side-by-side table and embedded CSS.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a comparison to HTML.
func (e *HTMLExporter) Export(cmp *compare.Comparison) ([]byte, error) {
	if err := validate(cmp); err != nil {
		return nil, err
	}

	theme := e.options.Theme
	if theme != "light" {
		theme = "dark"
	}
	title := fmt.Sprintf("%s vs %s", titleName(cmp.LeftPath, "left"), titleName(cmp.RightPath, "right"))

	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", html.EscapeString(title))
	sb.WriteString("    <meta name=\"generator\" content=\"chronoschism\">\n")
	sb.WriteString(e.getCSS())
	sb.WriteString("</head>\n")
	fmt.Fprintf(&sb, "<body class=\"%s-theme\">\n", theme)
	sb.WriteString("    <div class=\"container\">\n")

	sb.WriteString(e.renderHeader(cmp, title))
	sb.WriteString(e.renderTable(cmp.Result))

	if e.options.IncludeMetadata {
		sb.WriteString("        <footer class=\"footer\">\n")
		fmt.Fprintf(&sb, "            <p>Exported from <strong>chronoschism</strong> on %s</p>\n",
			e.options.now().Format("January 2, 2006 at 3:04 PM"))
		sb.WriteString("        </footer>\n")
	}

	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

func (e *HTMLExporter) renderHeader(cmp *compare.Comparison, title string) string {
	var sb strings.Builder
	stats := cmp.Result.Stats

	sb.WriteString("        <header class=\"header\">\n")
	fmt.Fprintf(&sb, "            <h1>%s</h1>\n", html.EscapeString(title))
	sb.WriteString("            <div class=\"metadata\">\n")
	fmt.Fprintf(&sb, "                <span class=\"meta-item added\">+%d added</span>\n", stats.Added)
	fmt.Fprintf(&sb, "                <span class=\"meta-item deleted\">-%d deleted</span>\n", stats.Deleted)
	fmt.Fprintf(&sb, "                <span class=\"meta-item moved\">&#8596;%d moved</span>\n", stats.Moved)
	fmt.Fprintf(&sb, "                <span class=\"meta-item\">=%d unchanged</span>\n", stats.Unchanged)
	if e.options.IncludeMetadata {
		pattern := "none"
		if cmp.Pattern != "" {
			pattern = cmp.Pattern
		}
		fmt.Fprintf(&sb, "                <span class=\"meta-item\"><strong>Pattern:</strong> <code>%s</code></span>\n", html.EscapeString(pattern))
		if cmp.Duration > 0 {
			fmt.Fprintf(&sb, "                <span class=\"meta-item\"><strong>Aligned in:</strong> %s</span>\n",
				cmp.Duration.Round(time.Microsecond))
		}
	}
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")

	return sb.String()
}

// renderTable emits one row per entry: left number and text, marker, right
// number and text.
func (e *HTMLExporter) renderTable(r *diff.Result) string {
	var sb strings.Builder

	sb.WriteString("        <main>\n")
	if r.IsEmpty() {
		sb.WriteString("            <p class=\"empty\">Both inputs are empty.</p>\n")
		sb.WriteString("        </main>\n")
		return sb.String()
	}

	sb.WriteString("            <table class=\"alignment\">\n")
	for _, entry := range r.Entries {
		fmt.Fprintf(&sb, "                <tr class=\"%s\">", entry.State)
		sb.WriteString(renderCells(entry.Left))
		fmt.Fprintf(&sb, "<td class=\"marker\">%s</td>", html.EscapeString(strings.TrimSpace(entry.State.Prefix())))
		sb.WriteString(renderCells(entry.Right))
		sb.WriteString("</tr>\n")
	}
	sb.WriteString("            </table>\n")
	sb.WriteString("        </main>\n")

	return sb.String()
}

func renderCells(line *diff.Line) string {
	if line == nil {
		return "<td class=\"num\"></td><td class=\"text filler\"></td>"
	}
	return fmt.Sprintf("<td class=\"num\">%d</td><td class=\"text\">%s</td>",
		line.Number, html.EscapeString(util.ExpandTabs(line.Text)))
}

// =============================================================================
// STYLING
// =============================================================================

func (e *HTMLExporter) getCSS() string {
	return `    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        :root {
            --font-sans: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            --font-mono: "SF Mono", "Monaco", "Inconsolata", "Fira Code", "Source Code Pro", monospace;
        }

        .dark-theme {
            --bg-primary: #1a1b26;
            --bg-secondary: #24283b;
            --bg-tertiary: #414868;
            --text-primary: #c0caf5;
            --text-muted: #565f89;
            --added-bg: #1e3a2b;
            --deleted-bg: #3d1f28;
            --moved-bg: #2e2450;
            --accent-green: #9ece6a;
            --accent-red: #f7768e;
            --accent-purple: #bb9af7;
        }

        .light-theme {
            --bg-primary: #ffffff;
            --bg-secondary: #f7f8fa;
            --bg-tertiary: #e1e4e8;
            --text-primary: #24292e;
            --text-muted: #6a737d;
            --added-bg: #e6ffec;
            --deleted-bg: #ffebe9;
            --moved-bg: #f0e8ff;
            --accent-green: #22863a;
            --accent-red: #d73a49;
            --accent-purple: #6f42c1;
        }

        body {
            font-family: var(--font-sans);
            color: var(--text-primary);
            background: var(--bg-primary);
            padding: 20px;
        }

        .container {
            margin: 0 auto;
            background: var(--bg-secondary);
            border-radius: 12px;
            overflow: hidden;
        }

        .header {
            padding: 24px 32px;
            background: var(--bg-tertiary);
        }

        .header h1 {
            font-size: 24px;
            margin-bottom: 12px;
        }

        .metadata {
            display: flex;
            flex-wrap: wrap;
            gap: 16px;
            font-size: 14px;
        }

        .meta-item.added { color: var(--accent-green); }
        .meta-item.deleted { color: var(--accent-red); }
        .meta-item.moved { color: var(--accent-purple); }

        .alignment {
            width: 100%;
            border-collapse: collapse;
            font-family: var(--font-mono);
            font-size: 13px;
        }

        .alignment td {
            padding: 1px 8px;
            vertical-align: top;
            white-space: pre;
        }

        .alignment .num {
            text-align: right;
            color: var(--text-muted);
            user-select: none;
        }

        .alignment .marker {
            text-align: center;
            user-select: none;
        }

        .alignment .text { width: 50%; }
        tr.added { background: var(--added-bg); }
        tr.deleted { background: var(--deleted-bg); }
        tr.moved { background: var(--moved-bg); }

        .empty {
            padding: 32px;
            color: var(--text-muted);
        }

        .footer {
            padding: 16px 32px;
            font-size: 12px;
            color: var(--text-muted);
        }
    </style>
`
}
