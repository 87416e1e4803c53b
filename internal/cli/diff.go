// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/muesli/termenv"

	"github.com/jeranaias/chronoschism/internal/compare"
	"github.com/jeranaias/chronoschism/internal/diff"
	"github.com/jeranaias/chronoschism/internal/export"
	"github.com/jeranaias/chronoschism/internal/util"
)

// DiffCmd compares two files without the viewer.
type DiffCmd struct {
	Left     string  `arg:"" help:"Left log file." type:"existingfile"`
	Right    string  `arg:"" help:"Right log file." type:"existingfile"`
	Pattern  *string `short:"p" help:"Timestamp pattern to strip before comparing. Defaults to pattern.default from the config."`
	Format   string  `short:"f" enum:"text,json,markdown,html" default:"text" help:"Output format (text, json, markdown, html)."`
	Output   string  `short:"o" type:"path" help:"Write the report to this file instead of stdout."`
	Side     string  `enum:"both,left,right" default:"both" help:"With text output, print one panel only (both, left, right)."`
	Color    string  `enum:"auto,always,never" default:"auto" help:"Colourise text output (auto, always, never)."`
	ExitCode bool    `name:"exit-code" help:"Exit with status 1 when the files differ."`
}

// Run compares the files and prints the result.
func (c *DiffCmd) Run(env *Env) error {
	pattern := env.Config().Pattern.Default
	if c.Pattern != nil {
		pattern = *c.Pattern
	}

	comparer, err := env.Comparer(nil)
	if err != nil {
		return err
	}
	cmp, err := comparer.Compare(context.Background(), compare.Request{
		LeftPath:  c.Left,
		RightPath: c.Right,
		Pattern:   pattern,
	})
	if err != nil {
		return err
	}

	if c.Format == "text" {
		useColor := c.Output == "" && colorsEnabled(c.Color, env.Config().UI.NoColor, env.Stdout)
		err = c.writeText(env, cmp.Result, useColor)
	} else {
		err = c.writeReport(env, cmp)
	}
	if err != nil {
		return err
	}

	if c.ExitCode && cmp.Result.Stats.TotalChanges() > 0 {
		return &ExitError{Code: 1}
	}
	return nil
}

func (c *DiffCmd) writeText(env *Env, r *diff.Result, useColor bool) error {
	var out string
	switch c.Side {
	case "left":
		out = diff.FormatSide(r.Entries, diff.LeftSide, "\n") + "\n"
	case "right":
		out = diff.FormatSide(r.Entries, diff.RightSide, "\n") + "\n"
	default:
		out = diff.FormatText(r)
	}
	if r.IsEmpty() {
		out = ""
	}

	if useColor {
		out = highlightDiff(out, colorProfile(true))
	}
	out += r.Summary() + "\n"

	if c.Output != "" {
		if err := util.AtomicWriteFile(c.Output, []byte(out), 0644); err != nil {
			return err
		}
		fmt.Fprintf(env.Stderr, "Wrote %s\n", c.Output)
		return nil
	}
	_, err := io.WriteString(env.Stdout, out)
	return err
}

// writeReport renders a json, markdown or html report.
func (c *DiffCmd) writeReport(env *Env, cmp *compare.Comparison) error {
	opts := export.DefaultOptions()
	opts.Theme = env.Config().UI.Theme
	exporter, err := export.ForFormat(c.Format, opts)
	if err != nil {
		return err
	}

	if c.Output != "" {
		if err := export.ExportToFile(cmp, exporter, c.Output); err != nil {
			return err
		}
		fmt.Fprintf(env.Stderr, "Wrote %s\n", c.Output)
		return nil
	}

	data, err := exporter.Export(cmp)
	if err != nil {
		return err
	}
	_, err = env.Stdout.Write(data)
	return err
}

// =============================================================================
// SYNTAX HIGHLIGHTING (Chroma-based)
// =============================================================================

// formatterFor picks the chroma terminal formatter for a colour profile.
func formatterFor(profile termenv.Profile) chroma.Formatter {
	name := "terminal256"
	switch profile {
	case termenv.TrueColor:
		name = "terminal16m"
	case termenv.ANSI:
		name = "terminal16"
	}
	if f := formatters.Get(name); f != nil {
		return f
	}
	return formatters.Fallback
}

// highlightDiff colours +/- lines with chroma's diff lexer. It returns text
// unchanged when highlighting fails.
func highlightDiff(text string, profile termenv.Profile) string {
	lexer := lexers.Get("diff")
	if lexer == nil {
		return text
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return text
	}
	var buf strings.Builder
	if err := formatterFor(profile).Format(&buf, style, iterator); err != nil {
		return text
	}
	return buf.String()
}
