package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/airpixel-go/pixeld/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByComponent map[log.Component]int
	EventsByCategory  map[log.Category]int
	EventsByLevel     map[log.Level]int
	Devices           map[string]*DeviceStats
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// DeviceStats holds statistics for a single device ID seen in the log.
type DeviceStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByComponent: make(map[log.Component]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByLevel:     make(map[log.Level]int),
		Devices:           make(map[string]*DeviceStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByComponent[event.Component]++
		stats.EventsByCategory[event.Category]++
		stats.EventsByLevel[event.Level]++

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		if event.DeviceID != "" {
			d, ok := stats.Devices[event.DeviceID]
			if !ok {
				d = &DeviceStats{FirstSeen: event.Timestamp}
				stats.Devices[event.DeviceID] = d
			}
			d.Events++
			if event.Timestamp.After(d.LastSeen) {
				d.LastSeen = event.Timestamp
			}
		}

		if event.Level == log.LevelError {
			stats.Errors++
		}
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== pixeld Protocol Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Component:")
	for _, c := range []log.Component{
		log.ComponentRegistration, log.ComponentKeepalive, log.ComponentSupervisor,
		log.ComponentMonitoringIngest, log.ComponentSubscriptionControl, log.ComponentRouter,
	} {
		if count := stats.EventsByComponent[c]; count > 0 {
			fmt.Fprintf(w, "  %-22s %d\n", c.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, c := range []log.Category{
		log.CategoryAccepted, log.CategoryRejected, log.CategoryLaunched, log.CategoryKilled,
		log.CategoryPurged, log.CategoryDropped, log.CategorySubscribed, log.CategoryUnsubscribed,
		log.CategoryFanout,
	} {
		if count := stats.EventsByCategory[c]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", c.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Devices: %d\n", len(stats.Devices))
	if len(stats.Devices) > 0 {
		type deviceInfo struct {
			id    string
			stats *DeviceStats
		}
		devices := make([]deviceInfo, 0, len(stats.Devices))
		for id, ds := range stats.Devices {
			devices = append(devices, deviceInfo{id, ds})
		}
		sort.Slice(devices, func(i, j int) bool {
			return devices[i].stats.FirstSeen.Before(devices[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, d := range devices {
			duration := d.stats.LastSeen.Sub(d.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  %-20s %d events, span %s\n", d.id, d.stats.Events, duration)
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
