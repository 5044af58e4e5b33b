// Package staging manages scoped temporary directories for ZIP and
// directory loads: acquire one before extraction, track it for the
// lifetime of the load, release it on window close, new load, or
// extraction failure.
package staging

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Session is one acquired scratch directory.
type Session struct {
	id  string
	dir string
}

// ID is the session's opaque identifier.
func (s *Session) ID() string { return s.id }

// Dir is the scratch directory's absolute path.
func (s *Session) Dir() string { return s.dir }

// Manager tracks every currently-acquired Session so a caller can release
// one explicitly or release everything at once (e.g. on window close).
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Acquire creates a new scratch directory under the OS temp root and
// starts tracking it.
func (m *Manager) Acquire() (*Session, error) {
	id := uuid.NewString()
	dir, err := os.MkdirTemp("", "fm-dicom-stage-"+id+"-*")
	if err != nil {
		return nil, fmt.Errorf("acquire staging directory: %w", err)
	}

	session := &Session{id: id, dir: dir}
	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()
	return session, nil
}

// Release removes session's directory and stops tracking it. Safe to call
// more than once, and safe to call on a session already released by
// ReleaseAll.
func (m *Manager) Release(session *Session) error {
	if session == nil {
		return nil
	}

	m.mu.Lock()
	_, tracked := m.sessions[session.id]
	delete(m.sessions, session.id)
	m.mu.Unlock()

	if !tracked {
		return nil
	}
	return os.RemoveAll(session.dir)
}

// ReleaseAll removes every currently-tracked session's directory — used on
// window close or process shutdown. Errors for individual sessions are
// collected, not short-circuited, so one bad removal doesn't block the rest.
func (m *Manager) ReleaseAll() error {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var errs []string
	for _, s := range sessions {
		if err := os.RemoveAll(s.dir); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", s.dir, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("release staging directories: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Active reports how many sessions are currently tracked.
func (m *Manager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ExtractZip acquires a new session and extracts every regular file from
// zipPath into it, rejecting any entry whose name would escape the
// session directory (zip-slip). On any extraction error the session is
// released before returning, so a failed extraction never leaks a
// half-populated temp directory.
func (m *Manager) ExtractZip(zipPath string) (*Session, []string, error) {
	session, err := m.Acquire()
	if err != nil {
		return nil, nil, err
	}

	paths, err := extractZipInto(zipPath, session.Dir())
	if err != nil {
		_ = m.Release(session)
		return nil, nil, err
	}
	return session, paths, nil
}

func extractZipInto(zipPath, destDir string) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", zipPath, err)
	}
	defer r.Close()

	var extracted []string
	for _, f := range r.File {
		destPath, err := safeJoin(destDir, f.Name)
		if err != nil {
			return nil, err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(destPath, 0o755); err != nil {
				return nil, err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return nil, err
		}
		if err := extractOne(f, destPath); err != nil {
			return nil, fmt.Errorf("extract %s: %w", f.Name, err)
		}
		extracted = append(extracted, destPath)
	}
	return extracted, nil
}

func extractOne(f *zip.File, destPath string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

// safeJoin resolves name against destDir and rejects the result if it
// would land outside destDir — guards against a maliciously crafted ZIP
// entry name like "../../etc/passwd".
func safeJoin(destDir, name string) (string, error) {
	cleanName := filepath.Clean(filepath.FromSlash(name))
	joined := filepath.Join(destDir, cleanName)

	destWithSep := destDir + string(os.PathSeparator)
	if joined != destDir && !strings.HasPrefix(joined, destWithSep) {
		return "", fmt.Errorf("zip entry %q escapes destination directory", name)
	}
	return joined, nil
}
