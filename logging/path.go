package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SessionLogPath builds the session log file path described in §6:
// $HOME/.jasmin-lsp/jasmin-lsp-YYYYMMDD-HHMMSS.log, falling back to
// /tmp/jasmin-lsp/... when $HOME can't be resolved or the directory can't
// be created. Returns "" if neither location is writable, which New
// treats as "degrade silently to stderr-only".
func SessionLogPath(now time.Time) string {
	name := fmt.Sprintf("jasmin-lsp-%s.log", now.Format("20060102-150405"))

	if home, err := os.UserHomeDir(); err == nil {
		dir := filepath.Join(home, ".jasmin-lsp")
		if os.MkdirAll(dir, 0o755) == nil {
			return filepath.Join(dir, name)
		}
	}

	dir := filepath.Join(os.TempDir(), "jasmin-lsp")
	if os.MkdirAll(dir, 0o755) == nil {
		return filepath.Join(dir, name)
	}

	return ""
}

// SessionStartMarker and SessionEndMarker bracket the session log file so
// a reader (or the status inspector, A5) can tell where one server run
// ends and the next begins inside an appended-to file.
const (
	SessionStartMarker = "=== jasmin-lsp session start ==="
	SessionEndMarker   = "=== jasmin-lsp session end ==="
)
