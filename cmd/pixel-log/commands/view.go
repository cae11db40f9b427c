// Package commands implements the pixel-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/airpixel-go/pixeld/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Component *log.Component
	Category  *log.Category
	Level     *log.Level
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s %-5s %-20s %s", ts, event.Level, event.Component, event.Category)

	if event.RemoteAddr != "" {
		fmt.Fprintf(w, " addr=%s", event.RemoteAddr)
	}
	if event.DeviceID != "" {
		fmt.Fprintf(w, " device=%s", event.DeviceID)
	}
	if event.StreamID != "" {
		fmt.Fprintf(w, " stream=%s", event.StreamID)
	}
	if event.Message != "" {
		fmt.Fprintf(w, " msg=%q", event.Message)
	}
	if event.Err != "" {
		fmt.Fprintf(w, " err=%q", event.Err)
	}
	fmt.Fprintln(w)
}

// ParseComponentFlag parses a component string from a command-line flag
// (case-insensitive).
func ParseComponentFlag(s string) (log.Component, error) {
	switch strings.ToLower(s) {
	case "registration":
		return log.ComponentRegistration, nil
	case "keepalive":
		return log.ComponentKeepalive, nil
	case "supervisor":
		return log.ComponentSupervisor, nil
	case "monitoring-ingest":
		return log.ComponentMonitoringIngest, nil
	case "subscription-control":
		return log.ComponentSubscriptionControl, nil
	case "router":
		return log.ComponentRouter, nil
	default:
		return 0, fmt.Errorf("invalid component: %s", s)
	}
}

// ParseCategoryFlag parses a category string from a command-line flag
// (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "accepted":
		return log.CategoryAccepted, nil
	case "rejected":
		return log.CategoryRejected, nil
	case "launched":
		return log.CategoryLaunched, nil
	case "killed":
		return log.CategoryKilled, nil
	case "purged":
		return log.CategoryPurged, nil
	case "dropped":
		return log.CategoryDropped, nil
	case "subscribed":
		return log.CategorySubscribed, nil
	case "unsubscribed":
		return log.CategoryUnsubscribed, nil
	case "fanout":
		return log.CategoryFanout, nil
	default:
		return 0, fmt.Errorf("invalid category: %s", s)
	}
}

// ParseLevelFlag parses a level string from a command-line flag
// (case-insensitive).
func ParseLevelFlag(s string) (log.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return log.LevelDebug, nil
	case "info":
		return log.LevelInfo, nil
	case "warn":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid level: %s", s)
	}
}

// RunView executes the view command: it streams events matching filter
// from the log file at path and prints them to output.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, toReaderFilter(filter))
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}

	return nil
}

func toReaderFilter(v ViewFilter) log.Filter {
	return log.Filter{
		Component: v.Component,
		Category:  v.Category,
		Level:     v.Level,
	}
}
