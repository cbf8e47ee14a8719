// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tui styles terminal diagnostics.
package tui

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Style names a role a piece of output plays.
type Style uint8

const (
	Plain Style = iota
	Error
	Warn
	OK
	Dim
	Emph
)

var attrs = map[Style][]color.Attribute{
	Error: {color.FgRed, color.Bold},
	Warn:  {color.FgYellow},
	OK:    {color.FgGreen},
	Dim:   {color.FgHiBlack},
	Emph:  {color.Bold},
}

// Colorizer applies styles when enabled. The zero value prints plain text.
type Colorizer struct {
	Enabled bool
}

// NewColorizer returns a Colorizer for out. Colour is only used when
// enabled is set, out is a terminal, NO_COLOR is unset and TERM is not
// dumb.
func NewColorizer(enabled bool, out *os.File) Colorizer {
	if !enabled || out == nil {
		return Colorizer{}
	}
	if os.Getenv("NO_COLOR") != "" {
		return Colorizer{}
	}
	if t := os.Getenv("TERM"); t == "" || t == "dumb" {
		return Colorizer{}
	}
	if !isTerminal(int(out.Fd())) {
		return Colorizer{}
	}
	return Colorizer{Enabled: true}
}

var isTerminal = term.IsTerminal

// Sprint renders text in style s.
func (c Colorizer) Sprint(s Style, text string) string {
	a, ok := attrs[s]
	if !c.Enabled || !ok {
		return text
	}
	col := color.New(a...)
	col.EnableColor()
	return col.Sprint(text)
}

// Sprintf is Sprint with formatting.
func (c Colorizer) Sprintf(s Style, format string, args ...any) string {
	return c.Sprint(s, fmt.Sprintf(format, args...))
}

// Hinter is an error that can point at what to fix.
type Hinter interface {
	Hint() string
}

// PrintError writes err to w as "error: msg", followed by a dimmed hint
// when some error in the chain provides one.
func (c Colorizer) PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", c.Sprint(Error, "error:"), err)
	var h Hinter
	if errors.As(err, &h) {
		if hint := h.Hint(); hint != "" {
			fmt.Fprintf(w, "  %s\n", c.Sprint(Dim, hint))
		}
	}
}
