package prompt

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// AuditLog writes every fully-substituted prompt to disk before it is sent,
// so a bad generation can be replayed against the exact input.
type AuditLog struct {
	dir string
}

// NewAuditLog creates the audit directory if needed. An empty dir disables
// auditing.
func NewAuditLog(dir string) *AuditLog {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Warn("cannot create audit dir, auditing disabled", "dir", dir, "error", err)
			dir = ""
		}
	}
	return &AuditLog{dir: dir}
}

// Record persists one rendered prompt. Failures are logged and swallowed;
// auditing must never block the pipeline.
func (a *AuditLog) Record(module, rendered string) {
	if a.dir == "" {
		return
	}

	name := fmt.Sprintf("%s_%s_%s.txt",
		time.Now().UTC().Format("20060102T150405"),
		module,
		uuid.NewString()[:8],
	)
	path := filepath.Join(a.dir, name)

	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		slog.Warn("failed to write prompt audit file", "path", path, "error", err)
	}
}
