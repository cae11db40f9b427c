package commands

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/airpixel-go/pixeld/pkg/log"
)

func TestFilterByDeviceID(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, DeviceID: "device-a", Category: log.CategoryAccepted},
		{Timestamp: ts, DeviceID: "device-b", Category: log.CategoryAccepted},
	}
	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "out.plog")

	err := RunFilter(path, FilterOptions{Output: outPath, DeviceID: "device-a"})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	reader, err := log.NewReader(outPath)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	var got []log.Event
	for {
		e, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		got = append(got, e)
	}

	if len(got) != 1 || got[0].DeviceID != "device-a" {
		t.Errorf("expected one device-a event, got %+v", got)
	}
}

func TestFilterRejectsUnknownCategory(t *testing.T) {
	path := createTestLogFile(t, []log.Event{{Timestamp: time.Now().UTC()}})
	outPath := filepath.Join(t.TempDir(), "out.plog")

	err := RunFilter(path, FilterOptions{Output: outPath, Category: "bogus"})
	if err == nil {
		t.Error("expected error for unknown category")
	}
}
