// Command pixel-log views and analyzes pixeld protocol log files.
//
// Log files are created by pixeld when run with the -protocol-log flag.
//
// Usage:
//
//	pixel-log <command> [flags] <file.plog>
//
// Commands:
//
//	view     View log file in human-readable format
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	pixel-log view server.plog
//
//	# View only router events
//	pixel-log view -component router server.plog
//
//	# View only fanout events
//	pixel-log view -category fanout server.plog
//
//	# Filter by device and save to new file
//	pixel-log filter -device-id some_device -o filtered.plog server.plog
//
//	# Show statistics
//	pixel-log stats server.plog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/airpixel-go/pixeld/cmd/pixel-log/commands"
)

const usage = `pixel-log - pixeld Protocol Log Analyzer

Usage:
  pixel-log <command> [flags] <file.plog>

Commands:
  view     View log file in human-readable format
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "pixel-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `pixel-log view - View log file in human-readable format

Usage:
  pixel-log view [flags] <file.plog>

Flags:
`)
		fs.PrintDefaults()
	}

	component := fs.String("component", "", "Filter by component (registration, keepalive, supervisor, monitoring-ingest, subscription-control, router)")
	category := fs.String("category", "", "Filter by category (accepted, rejected, launched, killed, purged, dropped, subscribed, unsubscribed, fanout)")
	level := fs.String("level", "", "Filter by minimum level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	path := fs.Arg(0)

	var filter commands.ViewFilter
	if *component != "" {
		c, err := commands.ParseComponentFlag(*component)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		filter.Component = &c
	}
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		filter.Category = &c
	}
	if *level != "" {
		l, err := commands.ParseLevelFlag(*level)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		filter.Level = &l
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `pixel-log filter - Filter log file and write to new file

Usage:
  pixel-log filter [flags] <file.plog>

Flags:
`)
		fs.PrintDefaults()
	}

	output := fs.String("o", "", "Output file (required)")
	deviceID := fs.String("device-id", "", "Filter by device ID")
	remoteAddr := fs.String("remote-addr", "", "Filter by exact remote address")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	component := fs.String("component", "", "Filter by component")
	category := fs.String("category", "", "Filter by category")
	level := fs.String("level", "", "Filter by minimum level")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	path := fs.Arg(0)

	opts := commands.FilterOptions{
		Output:     *output,
		DeviceID:   *deviceID,
		RemoteAddr: *remoteAddr,
		TimeStart:  *timeStart,
		TimeEnd:    *timeEnd,
		Component:  *component,
		Category:   *category,
		Level:      *level,
	}

	if err := commands.RunFilter(path, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `pixel-log stats - Show statistics about the log file

Usage:
  pixel-log stats <file.plog>

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}

	path := fs.Arg(0)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
