package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fwojciec/cmtharvest"
	"github.com/fwojciec/cmtharvest/harvest"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Config   *cmtharvest.Config
	Runs     cmtharvest.RunService
	Pipeline *harvest.Pipeline
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool   `short:"v" help:"Log navigation and storage steps to stderr"`
	DB      string `name:"db" env:"CMTHARVEST_DB" help:"Run database path (default ~/.cmtharvest/cmtharvest.db)"`
	Config  string `name:"config" env:"CMTHARVEST_CONFIG" help:"Config file path (default ~/.cmtharvest/config.yaml)"`

	Harvest HarvestCmd `cmd:"" help:"Harvest catalog results for a year range and write the event table"`
	Parse   ParseCmd   `cmd:"" help:"Re-parse a stored corpus into an event table"`
	Show    ShowCmd    `cmd:"" help:"Preview an event table"`
	Regress RegressCmd `cmd:"" help:"Fit Mw against mb by least squares"`
	Runs    RunsCmd    `cmd:"" help:"List recorded harvest runs"`
	Export  ExportCmd  `cmd:"" help:"Write the records of a recorded run as CSV"`
	Delete  DeleteCmd  `cmd:"" help:"Delete a recorded run"`
}

// HarvestCmd is the "harvest" subcommand.
type HarvestCmd struct {
	Start  int    `arg:"" help:"First catalog year"`
	End    int    `arg:"" help:"Last catalog year (inclusive)"`
	Out    string `short:"o" help:"Table output path (default event_data.csv)"`
	Corpus string `short:"c" help:"Corpus output path (default event_data.txt)"`
	Engine string `help:"Session engine: browser or http (default from config)"`
}

// ParseCmd is the "parse" subcommand.
type ParseCmd struct {
	Corpus string `arg:"" help:"Corpus file written by harvest"`
	Out    string `short:"o" help:"Table output path (default event_data.csv)"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	Table string `arg:"" help:"Event table (CSV)"`
	Limit int    `short:"n" default:"20" help:"Maximum rows to print (0 for all)"`
}

// RegressCmd is the "regress" subcommand.
type RegressCmd struct {
	Table string `arg:"" help:"Event table (CSV)"`
	X     string `default:"mb" help:"Predictor column"`
	Y     string `default:"Mw" help:"Response column"`
}

// RunsCmd is the "runs" subcommand.
type RunsCmd struct {
	Outcome string `help:"Only runs with this outcome (complete, partial, failed)"`
	Limit   int    `short:"n" default:"20" help:"Maximum runs to list"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	ID string `arg:"" help:"Run ID"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID    string `arg:"" help:"Run ID"`
	Force bool   `help:"Confirm deletion"`
}

// report prints err the way every command does and returns it.
func report(w io.Writer, err error) error {
	fmt.Fprintf(w, "error: %s\n", message(err))
	return err
}

// message returns the user-facing text of err.
func message(err error) string {
	var e *cmtharvest.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
