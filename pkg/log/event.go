package log

import "time"

// Event represents a single coordination-server event: a registration, a
// keepalive, a process lifecycle transition, a dropped package, or a
// subscription change. CBOR encoding uses integer keys for compactness,
// mirroring the wire-compact style the rest of this codebase uses for
// on-disk formats.
type Event struct {
	// Timestamp when the event occurred.
	Timestamp time.Time `cbor:"1,keyasint"`

	// Component identifies which subsystem produced the event.
	Component Component `cbor:"2,keyasint"`

	// Category classifies the event within its component.
	Category Category `cbor:"3,keyasint"`

	// Level is the severity, mirroring slog levels for easy bridging.
	Level Level `cbor:"4,keyasint"`

	// RemoteAddr is the peer address (IP or IP:port) associated with the event, if any.
	RemoteAddr string `cbor:"5,keyasint,omitempty"`

	// ConnectionID correlates events from the same accepted TCP connection
	// (registration or subscription-control), assigned at accept time.
	ConnectionID string `cbor:"10,keyasint,omitempty"`

	// DeviceID is the registered device identifier, if known.
	DeviceID string `cbor:"6,keyasint,omitempty"`

	// StreamID is the monitoring stream identifier, if applicable.
	StreamID string `cbor:"7,keyasint,omitempty"`

	// Message is a short human-readable description.
	Message string `cbor:"8,keyasint,omitempty"`

	// Err is the error text, if the event represents a failure.
	Err string `cbor:"9,keyasint,omitempty"`
}

// Component identifies the subsystem that produced an Event.
type Component uint8

const (
	ComponentRegistration Component = iota
	ComponentKeepalive
	ComponentSupervisor
	ComponentMonitoringIngest
	ComponentSubscriptionControl
	ComponentRouter
)

func (c Component) String() string {
	switch c {
	case ComponentRegistration:
		return "registration"
	case ComponentKeepalive:
		return "keepalive"
	case ComponentSupervisor:
		return "supervisor"
	case ComponentMonitoringIngest:
		return "monitoring-ingest"
	case ComponentSubscriptionControl:
		return "subscription-control"
	case ComponentRouter:
		return "router"
	default:
		return "unknown"
	}
}

// Category classifies an Event within its Component.
type Category uint8

const (
	CategoryAccepted Category = iota
	CategoryRejected
	CategoryLaunched
	CategoryKilled
	CategoryPurged
	CategoryDropped
	CategorySubscribed
	CategoryUnsubscribed
	CategoryFanout
)

func (c Category) String() string {
	switch c {
	case CategoryAccepted:
		return "accepted"
	case CategoryRejected:
		return "rejected"
	case CategoryLaunched:
		return "launched"
	case CategoryKilled:
		return "killed"
	case CategoryPurged:
		return "purged"
	case CategoryDropped:
		return "dropped"
	case CategorySubscribed:
		return "subscribed"
	case CategoryUnsubscribed:
		return "unsubscribed"
	case CategoryFanout:
		return "fanout"
	default:
		return "unknown"
	}
}

// Level mirrors log/slog's severity levels so events can be bridged
// to operational logging without a translation table.
type Level int8

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
