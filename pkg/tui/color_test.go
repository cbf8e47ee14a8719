// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tui

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestSprintDisabled(t *testing.T) {
	var c Colorizer
	if got := c.Sprint(Error, "boom"); got != "boom" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestSprintEnabled(t *testing.T) {
	c := Colorizer{Enabled: true}
	got := c.Sprint(Error, "boom")
	if !strings.Contains(got, "\x1b[") || !strings.Contains(got, "boom") {
		t.Fatalf("expected escape codes around text, got %q", got)
	}
	if got := c.Sprint(Plain, "boom"); got != "boom" {
		t.Fatalf("plain style should not be wrapped, got %q", got)
	}
}

func TestNewColorizer(t *testing.T) {
	orig := isTerminal
	t.Cleanup(func() { isTerminal = orig })
	isTerminal = func(int) bool { return true }

	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "xterm-256color")
	if !NewColorizer(true, os.Stderr).Enabled {
		t.Fatal("expected colour on a terminal")
	}
	if NewColorizer(false, os.Stderr).Enabled {
		t.Fatal("expected no colour when disabled")
	}

	t.Setenv("TERM", "dumb")
	if NewColorizer(true, os.Stderr).Enabled {
		t.Fatal("expected no colour for a dumb terminal")
	}

	t.Setenv("TERM", "xterm")
	t.Setenv("NO_COLOR", "1")
	if NewColorizer(true, os.Stderr).Enabled {
		t.Fatal("expected NO_COLOR to win")
	}

	t.Setenv("NO_COLOR", "")
	isTerminal = func(int) bool { return false }
	if NewColorizer(true, os.Stderr).Enabled {
		t.Fatal("expected no colour when not a terminal")
	}
}

type hinted struct{ hint string }

func (h hinted) Error() string { return "bad input" }
func (h hinted) Hint() string { return h.hint }

func TestPrintError(t *testing.T) {
	buf := new(bytes.Buffer)
	var c Colorizer
	c.PrintError(buf, fmt.Errorf("parse: %w", hinted{hint: "try again"}))
	if got := buf.String(); got != "error: parse: bad input\n  try again\n" {
		t.Fatalf("unexpected output: %q", got)
	}

	buf.Reset()
	c.PrintError(buf, errors.New("plain"))
	if got := buf.String(); got != "error: plain\n" {
		t.Fatalf("unexpected output: %q", got)
	}

	buf.Reset()
	c.PrintError(buf, nil)
	if buf.Len() != 0 {
		t.Fatalf("expected nothing for nil error, got %q", buf.String())
	}
}
