package logging

import "sync"

// MockLogger records log calls for assertions in tests.
type MockLogger struct {
	mu      sync.Mutex
	Entries []MockEntry
}

// MockEntry is one recorded log call.
type MockEntry struct {
	Level   string
	Message string
	Fields  []Field
	Err     error
}

// NewMockLogger creates an empty MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) record(level, msg string, fields []Field, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, MockEntry{Level: level, Message: msg, Fields: fields, Err: err})
}

func (m *MockLogger) Debug(msg string, fields ...Field) { m.record("debug", msg, fields, nil) }
func (m *MockLogger) Info(msg string, fields ...Field)  { m.record("info", msg, fields, nil) }
func (m *MockLogger) Warn(msg string, fields ...Field)  { m.record("warn", msg, fields, nil) }
func (m *MockLogger) Error(msg string, fields ...Field) { m.record("error", msg, fields, nil) }

// WithError returns a child logger that stamps err on every entry it
// records. Entries land in the root mock so tests see everything.
func (m *MockLogger) WithError(err error) Logger {
	return &mockChild{root: m, err: err}
}

// WithField returns a child logger with a pre-attached field.
func (m *MockLogger) WithField(key string, value interface{}) Logger {
	return &mockChild{root: m, fields: []Field{{Key: key, Value: value}}}
}

// Messages returns the recorded messages at the given level.
func (m *MockLogger) Messages(level string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.Entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

type mockChild struct {
	root   *MockLogger
	fields []Field
	err    error
}

func (c *mockChild) log(level, msg string, fields []Field) {
	all := append(append([]Field{}, c.fields...), fields...)
	c.root.record(level, msg, all, c.err)
}

func (c *mockChild) Debug(msg string, fields ...Field) { c.log("debug", msg, fields) }
func (c *mockChild) Info(msg string, fields ...Field)  { c.log("info", msg, fields) }
func (c *mockChild) Warn(msg string, fields ...Field)  { c.log("warn", msg, fields) }
func (c *mockChild) Error(msg string, fields ...Field) { c.log("error", msg, fields) }

func (c *mockChild) WithError(err error) Logger {
	return &mockChild{root: c.root, fields: c.fields, err: err}
}

func (c *mockChild) WithField(key string, value interface{}) Logger {
	return &mockChild{root: c.root, fields: append(append([]Field{}, c.fields...), Field{Key: key, Value: value}), err: c.err}
}
