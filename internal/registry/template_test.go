package registry

import "testing"

func TestFormatCommandLine(t *testing.T) {
	got, err := formatCommandLine("some command {ip_address} {port}", "1.2.3.4", 60000)
	if err != nil {
		t.Fatalf("formatCommandLine: %v", err)
	}
	if want := "some command 1.2.3.4 60000"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFormatCommandLineRejectsUnknownPlaceholder(t *testing.T) {
	_, err := formatCommandLine("cmd {bogus}", "1.2.3.4", 1)
	if err == nil {
		t.Fatal("expected error for unknown placeholder")
	}
}

func TestFormatCommandLineNoPlaceholders(t *testing.T) {
	got, err := formatCommandLine("static command", "1.2.3.4", 1)
	if err != nil {
		t.Fatalf("formatCommandLine: %v", err)
	}
	if got != "static command" {
		t.Errorf("got %q, want unchanged template", got)
	}
}
