package wire

import (
	"bufio"
	"bytes"
	"testing"
	"testing/iotest"
)

func TestParseRegistrationFrame(t *testing.T) {
	// Scenario 1 / 6 of the literal end-to-end scenarios: port is a
	// strict 2-byte big-endian field, so 0xEA60 == 60000.
	body := []byte{0xEA, 0x60}
	body = append(body, "some_device"...)

	f, err := ParseRegistrationFrame(body)
	if err != nil {
		t.Fatalf("ParseRegistrationFrame: %v", err)
	}
	if f.Port != 60000 {
		t.Errorf("Port = %d, want 60000", f.Port)
	}
	if f.DeviceID != "some_device" {
		t.Errorf("DeviceID = %q, want some_device", f.DeviceID)
	}
}

func TestParseRegistrationFrameTooShort(t *testing.T) {
	if _, err := ParseRegistrationFrame([]byte{0x01}); err != ErrFrameTooShort {
		t.Errorf("err = %v, want ErrFrameTooShort", err)
	}
}

func TestReadRegistrationFrameSplitAcrossReads(t *testing.T) {
	// Scenario 6's port (256 = 0x0100), but delivered one byte per Read
	// to exercise frame reassembly across reads.
	var buf bytes.Buffer
	buf.Write([]byte{0x01})
	buf.Write([]byte{0x00})
	buf.WriteString("some_device\n")

	r := bufio.NewReader(iotest.OneByteReader(&buf))
	f, err := ReadRegistrationFrame(r)
	if err != nil {
		t.Fatalf("ReadRegistrationFrame: %v", err)
	}
	if f.Port != 256 {
		t.Errorf("Port = %d, want 256", f.Port)
	}
	if f.DeviceID != "some_device" {
		t.Errorf("DeviceID = %q, want some_device", f.DeviceID)
	}
}

func TestEncodeRegistrationAck(t *testing.T) {
	got := EncodeRegistrationAck(50001)
	want := []byte{0xC3, 0x51}
	if !bytes.Equal(got, want) {
		t.Errorf("EncodeRegistrationAck(50001) = %v, want %v", got, want)
	}
}
