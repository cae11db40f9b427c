package log

// MultiLogger fans one event out to several Loggers. cmd/pixeld's
// buildEventLogger uses this to write every event to both an operational
// SlogAdapter (console) and, when -protocol-log is set, a FileLogger
// (the .plog trail pixel-log later reads).
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger returns a MultiLogger that calls Log on each of loggers,
// in order, for every event it receives.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log forwards event to every configured Logger in turn.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		l.Log(event)
	}
}

var _ Logger = (*MultiLogger)(nil)
