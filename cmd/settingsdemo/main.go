// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command settingsdemo parses its command line into sample settings
// structs and prints the result as YAML.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/shayne/yargs"
	"github.com/yeetrun/cmdsettings/pkg/parser"
	"github.com/yeetrun/cmdsettings/pkg/settings"
	"github.com/yeetrun/cmdsettings/pkg/tui"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

type globalFlagsParsed struct {
	Config  string `flag:"config" help:"Parser configuration file (.toml or .yaml); defaults to the nearest .cmdsettings.toml"`
	Verbose bool   `flag:"verbose" help:"Trace parser decisions to stderr"`
	NoColor bool   `flag:"no-color" help:"Disable coloured diagnostics"`
}

func parseGlobalFlags(args []string) (globalFlagsParsed, []string, error) {
	result, err := yargs.ParseKnownFlags[globalFlagsParsed](args, yargs.KnownFlagsOptions{})
	if err != nil {
		return globalFlagsParsed{}, nil, err
	}
	return result.Flags, result.RemainingArgs, nil
}

type app struct {
	stdout io.Writer
	stderr io.Writer
	color  tui.Colorizer
	cfg    settings.Config
	logf   func(format string, args ...any)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run executes the demo and reports any error on stderr before returning
// it.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{stdout: stdout, stderr: stderr, logf: func(string, ...any) {}}
	err := a.run(ctx, args)
	if err != nil {
		a.color.PrintError(stderr, err)
	}
	return err
}

func (a *app) run(ctx context.Context, args []string) error {
	globals, remaining, err := parseGlobalFlags(args)
	if err != nil {
		return err
	}
	if f, ok := a.stderr.(*os.File); ok {
		a.color = tui.NewColorizer(!globals.NoColor, f)
	}
	if globals.Verbose {
		a.logf = log.New(a.stderr, "settingsdemo: ", 0).Printf
	}
	if a.cfg, err = a.loadConfig(globals.Config); err != nil {
		return err
	}
	if globals.Verbose {
		a.cfg.Logf = a.logf
	}

	handlers := map[string]yargs.SubcommandHandler{
		"check": a.handleCheck,
		"split": a.handleSplit,
	}
	for _, e := range examples {
		handlers[e.name] = func(_ context.Context, args []string) error {
			tokens := tokensAfter(e.name, args)
			a.logf("%s: parsing %q", e.name, tokens)
			return a.parseExample(e, tokens)
		}
	}
	return yargs.RunSubcommandsWithGroups(ctx, remaining, buildHelpConfig(), globalFlagsParsed{}, handlers, nil)
}

// loadConfig reads the parser configuration from path, or from the
// nearest config file above the working directory when path is empty.
func (a *app) loadConfig(path string) (settings.Config, error) {
	base := settings.DefaultConfig()
	base.Verify = true
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return base, err
		}
		path, err = settings.FindConfigFile(wd)
		if errors.Is(err, os.ErrNotExist) {
			return base, nil
		}
		if err != nil {
			return base, err
		}
	}
	a.logf("using parser config %s", path)
	cfg, err := settings.LoadConfigFile(path, base)
	if err != nil {
		return base, fmt.Errorf("failed to load parser config: %w", err)
	}
	return cfg, nil
}

// tokensAfter strips the command name and a leading "--" from args.
func tokensAfter(name string, args []string) []string {
	if len(args) > 0 && args[0] == name {
		args = args[1:]
	}
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}
	return args
}

func (a *app) parseExample(e example, tokens []string) error {
	d, err := e.descriptor()
	if err != nil {
		return err
	}
	v := e.newValue()
	if err := parser.Run(tokens, a.cfg, d, v); err != nil {
		return err
	}
	var out any = v
	if e.report != nil {
		if out, err = e.report(v); err != nil {
			return err
		}
	}
	return a.printYAML(out)
}

func (a *app) printYAML(v any) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = a.stdout.Write(b)
	return err
}

type splitFlagsParsed struct {
	Example string `flag:"example" help:"Parse the split tokens with this example"`
}

// handleSplit splits a quoted command line the way a shell would and
// prints the tokens, or parses them with --example.
func (a *app) handleSplit(_ context.Context, args []string) error {
	result, err := yargs.ParseKnownFlags[splitFlagsParsed](tokensAfter("split", args), yargs.KnownFlagsOptions{})
	if err != nil {
		return err
	}
	rest := result.RemainingArgs
	if len(rest) > 0 && rest[0] == "--" {
		rest = rest[1:]
	}
	if len(rest) != 1 {
		return errors.New("split takes exactly one quoted command line")
	}
	tokens, err := parser.Split(rest[0])
	if err != nil {
		return err
	}
	if result.Flags.Example == "" {
		return a.printYAML(tokens)
	}
	e, ok := findExample(result.Flags.Example)
	if !ok {
		return fmt.Errorf("unknown example %q", result.Flags.Example)
	}
	return a.parseExample(e, tokens)
}

// handleCheck validates every example descriptor against the active
// configuration.
func (a *app) handleCheck(ctx context.Context, _ []string) error {
	errs := make([]error, len(examples))
	g, _ := errgroup.WithContext(ctx)
	for i, e := range examples {
		g.Go(func() error {
			d, err := e.descriptor()
			if err == nil {
				err = d.Validate(a.cfg)
			}
			errs[i] = err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	failed := 0
	for i, e := range examples {
		if errs[i] != nil {
			failed++
			fmt.Fprintf(a.stdout, "%s %-8s %v\n", a.color.Sprint(tui.Error, "FAIL"), e.name, errs[i])
			continue
		}
		fmt.Fprintf(a.stdout, "%s   %-8s %s\n", a.color.Sprint(tui.OK, "ok"), e.name, a.color.Sprint(tui.Dim, e.description))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d descriptors are invalid", failed, len(examples))
	}
	return nil
}

func buildHelpConfig() yargs.HelpConfig {
	subcommands := map[string]yargs.SubCommandInfo{
		"check": {
			Name:        "check",
			Description: "Validate every example descriptor against the parser configuration",
		},
		"split": {
			Name:        "split",
			Description: "Split a quoted command line into tokens",
			Usage:       "[--example NAME] -- 'LINE'",
			Examples:    []string{`settingsdemo split -- '-var a "b c"'`, `settingsdemo split --example count -- '/count 3'`},
		},
	}
	for _, e := range examples {
		subcommands[e.name] = yargs.SubCommandInfo{
			Name:        e.name,
			Description: e.description,
			Usage:       e.usage,
			Examples:    e.examples,
		}
	}
	return yargs.HelpConfig{
		Command: yargs.CommandInfo{
			Name:        "settingsdemo",
			Description: "Parse command lines into sample settings structs and print the result. " +
				"A settings token spelled -h or --help shows help instead; quote the line and use split to pass it.",
			Examples: []string{
				"settingsdemo check",
				"settingsdemo backup -- -modify -log out.log in.txt",
				"settingsdemo --config parser.yaml count -- --count 3",
			},
		},
		SubCommands: subcommands,
	}
}
