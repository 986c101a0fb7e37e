package demo

import (
	"fmt"
	"os"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Session remembers state between runs in a small JSON file. Direct
// field access is fine while the app is single-threaded; once event
// goroutines run, size updates go through SetSize.
type Session struct {
	path string
	mu   sync.Mutex

	// Runs counts application starts.
	Runs int

	// LastScript is the script path from the previous run.
	LastScript string

	// LastWidth and LastHeight record the terminal size seen last.
	LastWidth  int
	LastHeight int
}

// LoadSession reads the session file at path. It is lenient: a
// missing or unreadable file yields a zero session bound to the same
// path.
func LoadSession(path string) *Session {
	s := &Session{path: path}

	data, err := os.ReadFile(path)
	if err != nil || !gjson.ValidBytes(data) {
		return s
	}
	s.Runs = int(gjson.GetBytes(data, "runs").Int())
	s.LastScript = gjson.GetBytes(data, "last_script").String()
	s.LastWidth = int(gjson.GetBytes(data, "last_size.width").Int())
	s.LastHeight = int(gjson.GetBytes(data, "last_size.height").Int())
	return s
}

// SetSize records the last seen terminal size. Safe to call from any
// goroutine.
func (s *Session) SetSize(w, h int) {
	s.mu.Lock()
	s.LastWidth, s.LastHeight = w, h
	s.mu.Unlock()
}

// Save writes the session back to its file.
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := []struct {
		path  string
		value any
	}{
		{"runs", s.Runs},
		{"last_script", s.LastScript},
		{"last_size.width", s.LastWidth},
		{"last_size.height", s.LastHeight},
	}

	var (
		out []byte
		err error
	)
	for _, f := range fields {
		if out, err = sjson.SetBytes(out, f.path, f.value); err != nil {
			return fmt.Errorf("demo: encode session: %w", err)
		}
	}
	if err := os.WriteFile(s.path, out, 0o644); err != nil {
		return fmt.Errorf("demo: save session: %w", err)
	}
	return nil
}
