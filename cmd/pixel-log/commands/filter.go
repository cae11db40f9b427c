package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/airpixel-go/pixeld/pkg/log"
)

// FilterOptions configures the filter command.
type FilterOptions struct {
	Output     string
	DeviceID   string
	RemoteAddr string
	TimeStart  string
	TimeEnd    string
	Component  string
	Category   string
	Level      string
}

// RunFilter reads the log file at path, keeps events matching opts, and
// writes them as a new CBOR-encoded log file at opts.Output.
func RunFilter(path string, opts FilterOptions) error {
	filter, err := buildFilter(opts)
	if err != nil {
		return err
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	out, err := log.NewFileLogger(opts.Output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		out.Log(event)
		count++
	}

	fmt.Printf("Wrote %d matching events to %s\n", count, opts.Output)
	return nil
}

func buildFilter(opts FilterOptions) (log.Filter, error) {
	var filter log.Filter
	filter.DeviceID = opts.DeviceID
	filter.RemoteAddr = opts.RemoteAddr

	if opts.Component != "" {
		c, err := ParseComponentFlag(opts.Component)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Component = &c
	}
	if opts.Category != "" {
		c, err := ParseCategoryFlag(opts.Category)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Category = &c
	}
	if opts.Level != "" {
		l, err := ParseLevelFlag(opts.Level)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Level = &l
	}
	if opts.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeStart)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid -time-start: %w", err)
		}
		filter.TimeStart = &t
	}
	if opts.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeEnd)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid -time-end: %w", err)
		}
		filter.TimeEnd = &t
	}

	return filter, nil
}
