package demo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tidwall/gjson"
)

func TestLoadSession_Missing(t *testing.T) {
	s := LoadSession(filepath.Join(t.TempDir(), "absent.json"))
	if s.Runs != 0 || s.LastScript != "" || s.LastWidth != 0 {
		t.Errorf("LoadSession() of a missing file = %+v, want zero session", s)
	}
}

func TestLoadSession_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	s := LoadSession(path)
	if s.Runs != 0 {
		t.Errorf("LoadSession() of a corrupt file Runs = %d, want 0", s.Runs)
	}
	if err := s.Save(); err != nil {
		t.Errorf("Save() over a corrupt file error = %v", err)
	}
}

func TestSession_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	s := LoadSession(path)
	s.Runs = 3
	s.LastScript = "demo.lua"
	s.SetSize(120, 40)
	if err := s.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got := LoadSession(path)
	if got.Runs != 3 {
		t.Errorf("Runs = %d, want 3", got.Runs)
	}
	if got.LastScript != "demo.lua" {
		t.Errorf("LastScript = %q, want %q", got.LastScript, "demo.lua")
	}
	if got.LastWidth != 120 || got.LastHeight != 40 {
		t.Errorf("size = %dx%d, want 120x40", got.LastWidth, got.LastHeight)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !gjson.ValidBytes(data) {
		t.Fatalf("session file is not valid JSON: %s", data)
	}
	if w := gjson.GetBytes(data, "last_size.width").Int(); w != 120 {
		t.Errorf("last_size.width = %d, want 120", w)
	}
}

func TestSession_SaveUnwritable(t *testing.T) {
	s := LoadSession(filepath.Join(t.TempDir(), "no", "such", "dir", "s.json"))
	s.Runs = 1
	if err := s.Save(); err == nil {
		t.Fatal("Save() into a missing directory succeeded, want error")
	}
}
