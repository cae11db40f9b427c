package log

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// eventEncMode and eventDecMode are shared across every encode/decode
// call so pixel-log's view/filter/stats subcommands and the server's
// FileLogger always agree byte-for-byte on how an Event is framed.
var (
	eventEncMode cbor.EncMode
	eventDecMode cbor.DecMode
)

func init() {
	eventEncMode = mustEncMode()
	eventDecMode = mustDecMode()
}

// mustEncMode builds the canonical encoder: sorted map keys so two
// FileLogger instances writing the same Event produce identical bytes
// (pixel-log's filter command rewrites a .plog file, and an event it
// copies re-encodes to the same bytes), no indefinite-length items
// since a log file is read back by seeking Decode calls rather than
// streamed chunk-by-chunk, and nanosecond timestamps so event times
// keep their full precision.
func mustEncMode() cbor.EncMode {
	mode, err := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("log: building CBOR encoder mode: %v", err))
	}
	return mode
}

// mustDecMode builds the matching decoder. Duplicate map keys are
// tolerated rather than rejected since Event is produced exclusively by
// this package's own encoder, never hand-authored CBOR; indefinite
// length items are still accepted on read for forward compatibility
// with an encoder mode change down the line.
func mustDecMode() cbor.DecMode {
	mode, err := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("log: building CBOR decoder mode: %v", err))
	}
	return mode
}

// EncodeEvent encodes event using the integer-keyed CBOR layout Event's
// struct tags define.
func EncodeEvent(event Event) ([]byte, error) {
	return eventEncMode.Marshal(event)
}

// DecodeEvent decodes data produced by EncodeEvent back into an Event.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := eventDecMode.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// NewEncoder returns a CBOR encoder writing successive Events to w in
// eventEncMode, the format FileLogger appends to a .plog file.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return eventEncMode.NewEncoder(w)
}

// NewDecoder returns a CBOR decoder reading successive Events from r,
// the counterpart Reader uses to stream a .plog file back out.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return eventDecMode.NewDecoder(r)
}
