// Copyright 2026 Greenleaf Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// SPDX-License-Identifier: Apache-2.0

// Package main implements catalogadmin, the operator CLI for the label
// catalog service.
//
// Usage:
//
//	catalogadmin clear-all-data --yes [--config path]
//	catalogadmin export-database <path> [--config path]
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"

	"github.com/greenleaf/labelstore/internal/bootstrap"
	"github.com/greenleaf/labelstore/internal/config"
)

var (
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
)

func main() {
	configPath := flag.String("config", "", "Path to config YAML (default: built-in defaults)")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	command, cmdArgs := args[0], args[1:]

	switch command {
	case "clear-all-data":
		runClearAllData(cmdArgs, *configPath)
	case "export-database":
		runExportDatabase(cmdArgs, *configPath)
	default:
		fmt.Fprintf(os.Stderr, "catalogadmin: unknown command %q\n\n", command)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `catalogadmin - label catalog service operator CLI

Usage:
  catalogadmin <command> [options]

Commands:
  clear-all-data --yes     Delete every product and strain record
  export-database <path>   Write every catalog row to a spreadsheet

Global Options:
  --config path            Path to config YAML (default: built-in defaults)
`)
}

func loadConfig(path string) config.Config {
	if path == "" {
		return config.DefaultConfig()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "catalogadmin: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func runClearAllData(args []string, configPath string) {
	fs := flag.NewFlagSet("clear-all-data", flag.ExitOnError)
	confirm := fs.Bool("yes", false, "Confirm the deletion (required)")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, `Usage: catalogadmin clear-all-data --yes

Removes every product and strain record from the catalog store.
This cannot be undone.
`)
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if !*confirm {
		red.Fprintln(os.Stderr, "refusing to clear the catalog without --yes")
		os.Exit(1)
	}

	app, err := bootstrap.New(loadConfig(configPath))
	if err != nil {
		red.Fprintf(os.Stderr, "catalogadmin: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Catalog.ClearAllData(context.Background()); err != nil {
		red.Fprintf(os.Stderr, "catalogadmin: clear-all-data: %v\n", err)
		os.Exit(1)
	}

	green.Println("catalog cleared")
}

func runExportDatabase(args []string, configPath string) {
	fs := flag.NewFlagSet("export-database", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, `Usage: catalogadmin export-database <path>

Writes every non-synthetic product row to a spreadsheet at <path>.
`)
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}
	path := fs.Arg(0)

	app, err := bootstrap.New(loadConfig(configPath))
	if err != nil {
		red.Fprintf(os.Stderr, "catalogadmin: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Catalog.ExportDatabase(context.Background(), path); err != nil {
		red.Fprintf(os.Stderr, "catalogadmin: export-database: %v\n", err)
		os.Exit(1)
	}

	green.Printf("exported catalog to %s\n", path)
}
