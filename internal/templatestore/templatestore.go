// Package templatestore persists user-defined anonymization templates
// alongside the four built-in ones, which are always present regardless
// of what the file on disk contains.
package templatestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/FullMetalEd/fm-dicom/dicom/anonymize"
)

const fileVersion = 1

// document is the on-disk shape of anonymization_templates.json.
type document struct {
	Templates   []*anonymize.Template `json:"templates"`
	Version     int                    `json:"version"`
	LastUpdated time.Time              `json:"last_updated"`
}

// Store holds the decoded template file plus the always-present built-ins,
// and writes user templates back atomically on every mutation.
type Store struct {
	path     string
	builtins []*anonymize.Template
	user     []*anonymize.Template
}

// Path returns the template file path under configDir.
func Path(configDir string) string {
	return filepath.Join(configDir, "anonymization_templates.json")
}

// Load reads path, injecting the built-in templates regardless of file
// contents. A missing file is not an error — it yields a Store holding
// only the built-ins, persisted on first Add.
func Load(path string) (*Store, error) {
	s := &Store{path: path, builtins: anonymize.BuiltinTemplates()}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read template file %s: %w", path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse template file %s: %w", path, err)
	}
	s.user = filterOutBuiltinNames(doc.Templates)
	return s, nil
}

// filterOutBuiltinNames drops any persisted template whose name collides
// with a built-in, since built-ins are always injected fresh from code.
func filterOutBuiltinNames(templates []*anonymize.Template) []*anonymize.Template {
	builtinNames := make(map[string]bool)
	for _, t := range anonymize.BuiltinTemplates() {
		builtinNames[t.Name] = true
	}

	out := make([]*anonymize.Template, 0, len(templates))
	for _, t := range templates {
		if t == nil || builtinNames[t.Name] {
			continue
		}
		out = append(out, t)
	}
	return out
}

// All returns the built-in templates followed by user-defined templates.
func (s *Store) All() []*anonymize.Template {
	out := make([]*anonymize.Template, 0, len(s.builtins)+len(s.user))
	out = append(out, s.builtins...)
	out = append(out, s.user...)
	return out
}

// Find returns the template with the given name, or nil if none matches.
func (s *Store) Find(name string) *anonymize.Template {
	for _, t := range s.All() {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// IsBuiltin reports whether name refers to one of the four built-in templates.
func (s *Store) IsBuiltin(name string) bool {
	for _, t := range s.builtins {
		if t.Name == name {
			return true
		}
	}
	return false
}

// Add inserts or replaces a user-defined template by name and saves.
// Returns an error if name collides with a built-in template.
func (s *Store) Add(t *anonymize.Template) error {
	if s.IsBuiltin(t.Name) {
		return fmt.Errorf("%q is a built-in template name and cannot be overridden", t.Name)
	}

	now := nowOrZero()
	t.Modified = now
	if t.Created.IsZero() {
		t.Created = now
	}

	replaced := false
	for i, existing := range s.user {
		if existing.Name == t.Name {
			s.user[i] = t
			replaced = true
			break
		}
	}
	if !replaced {
		s.user = append(s.user, t)
	}
	return s.save()
}

// Remove deletes the user-defined template named name and saves.
// Removing a built-in template name is a no-op error since built-ins
// cannot be removed from the store.
func (s *Store) Remove(name string) error {
	if s.IsBuiltin(name) {
		return fmt.Errorf("%q is a built-in template and cannot be removed", name)
	}

	out := s.user[:0]
	for _, t := range s.user {
		if t.Name != name {
			out = append(out, t)
		}
	}
	s.user = out
	return s.save()
}

// save writes the user templates (built-ins excluded, since they are
// regenerated from code at every Load) to disk atomically.
func (s *Store) save() error {
	doc := document{
		Templates:   s.user,
		Version:     fileVersion,
		LastUpdated: nowOrZero(),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal templates: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create template dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".anonymization-templates-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp template file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp template file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp template file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace template file: %w", err)
	}
	return nil
}

// nowOrZero exists so save()'s timestamp source is a single call site;
// callers that need determinism in tests construct documents directly.
func nowOrZero() time.Time {
	return time.Now()
}
