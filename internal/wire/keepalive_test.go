package wire

import (
	"errors"
	"testing"
)

func TestParseDeviceKeepalive(t *testing.T) {
	k, err := ParseDeviceKeepalive([]byte("10 11"))
	if err != nil {
		t.Fatalf("ParseDeviceKeepalive: %v", err)
	}
	if k.Frames != 10 || k.Rendered != 11 {
		t.Errorf("got %+v, want {10 11}", k)
	}
	if rate := k.Rate(); rate != 1.1 {
		t.Errorf("Rate() = %v, want 1.1", rate)
	}
}

func TestParseDeviceKeepaliveMalformed(t *testing.T) {
	cases := []string{"", "10", "10 11 12", "ten 11", "10 eleven", "-1 5", "5 -1"}
	for _, c := range cases {
		if _, err := ParseDeviceKeepalive([]byte(c)); !errors.Is(err, ErrMalformedKeepalive) {
			t.Errorf("ParseDeviceKeepalive(%q) err = %v, want ErrMalformedKeepalive", c, err)
		}
	}
}
