package storage

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	errs "wvdl/pkg/errors"
	"wvdl/pkg/logger"
	"wvdl/pkg/weverse"
)

const scratchSuffix = ".temp"

var illegalPathChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SanitizeName replaces characters that are not allowed in directory names
// on common filesystems.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = illegalPathChars.ReplaceAllString(name, "-")
	return strings.TrimRight(name, ". ")
}

// Target is the commit unit of one post: <root>/<prefix>, built in
// <root>/<prefix>.temp and promoted by a single rename.
type Target struct {
	Root   string
	Prefix string // YYYYMMDD-<id>-<nickname>
	key    string // YYYYMMDD-<id>-
}

// NewTarget computes where post is committed under root. The date is taken
// in the post's own UTC offset.
func NewTarget(root string, post weverse.Post) (Target, error) {
	created, err := post.Created()
	if err != nil {
		return Target{}, errs.Wrap(errs.ErrorTypeResponse, fmt.Sprintf("post %d", post.ID), "invalid post timestamp", err)
	}
	key := fmt.Sprintf("%s-%d-", created.Format("20060102"), post.ID)
	return Target{
		Root:   root,
		Prefix: key + SanitizeName(post.CommunityUser.Nickname),
		key:    key,
	}, nil
}

// Dir is the committed post directory
func (t Target) Dir() string {
	return filepath.Join(t.Root, t.Prefix)
}

// ScratchDir is where files are written before the commit
func (t Target) ScratchDir() string {
	return t.Dir() + scratchSuffix
}

// MediaPath returns the scratch path of the index-th photo ("img") or
// video ("vid") downloaded from mediaURL.
func (t Target) MediaPath(kind string, index int, mediaURL string) string {
	name := fmt.Sprintf("%s-%s%02d%s", t.Prefix, kind, index, Ext(mediaURL))
	return filepath.Join(t.ScratchDir(), name)
}

// ContentPath returns the scratch path of the text body file
func (t Target) ContentPath() string {
	return filepath.Join(t.ScratchDir(), t.Prefix+"-content.txt")
}

// Ext returns the extension of the URL's path including the dot, or "" when
// the last path segment has none.
func Ext(mediaURL string) string {
	p := mediaURL
	if u, err := url.Parse(mediaURL); err == nil && u.Path != "" {
		p = u.Path
	}
	dot := strings.LastIndex(p, ".")
	if dot < 0 || dot < strings.LastIndex(p, "/") {
		return ""
	}
	return p[dot:]
}

// Manager tracks committed post directories and performs the scratch
// and commit steps.
type Manager struct {
	logger logger.Logger

	mu      sync.RWMutex
	scanned map[string]map[string]bool // root -> committed keys
}

// NewManager creates a new storage manager
func NewManager(log logger.Logger) *Manager {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Manager{
		logger:  log,
		scanned: make(map[string]map[string]bool),
	}
}

// IsCommitted reports whether t was already downloaded, either at exactly
// its directory or under a sibling that shares the date and post id (the
// author may have been renamed since). Scratch directories do not count.
func (m *Manager) IsCommitted(t Target) bool {
	if info, err := os.Stat(t.Dir()); err == nil && info.IsDir() {
		return true
	}

	keys, err := m.committedKeys(t.Root)
	if err != nil {
		m.logger.DebugWithFields("failed to scan download directory", map[string]interface{}{
			"root":  t.Root,
			"error": err.Error(),
		})
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return keys[t.key]
}

// committedKeys scans root once and caches the date-id keys of every
// committed directory in it.
func (m *Manager) committedKeys(root string) (map[string]bool, error) {
	m.mu.RLock()
	keys, ok := m.scanned[root]
	m.mu.RUnlock()
	if ok {
		return keys, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if keys, ok := m.scanned[root]; ok {
		return keys, nil
	}

	keys = make(map[string]bool)
	entries, err := os.ReadDir(root)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasSuffix(name, scratchSuffix) {
			continue
		}
		if key, ok := dirKey(name); ok {
			keys[key] = true
		}
	}
	m.scanned[root] = keys

	m.logger.DebugWithFields("scanned download directory", map[string]interface{}{
		"root":      root,
		"committed": len(keys),
	})
	return keys, nil
}

// dirKey extracts "YYYYMMDD-<id>-" from a committed directory name
func dirKey(name string) (string, bool) {
	parts := strings.SplitN(name, "-", 3)
	if len(parts) < 3 {
		return "", false
	}
	return parts[0] + "-" + parts[1] + "-", true
}

// Prepare removes any stale scratch directory (or file) left by an earlier
// run and creates a fresh one.
func (m *Manager) Prepare(t Target) error {
	scratch := t.ScratchDir()
	_ = os.RemoveAll(scratch)
	if err := os.MkdirAll(scratch, 0755); err != nil {
		return errs.Wrap(errs.ErrorTypeFileIO, scratch, "failed to create directory", err)
	}
	return nil
}

// WriteContent writes the post's text file into the scratch directory
func (m *Manager) WriteContent(t Target, content string) error {
	path := t.ContentPath()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return errs.Wrap(errs.ErrorTypeFileIO, path, "failed to write file", err)
	}
	return nil
}

// Commit promotes the scratch directory to the final directory
func (m *Manager) Commit(t Target) error {
	if err := os.Rename(t.ScratchDir(), t.Dir()); err != nil {
		return errs.Wrap(errs.ErrorTypeFileIO, t.ScratchDir(), "failed to rename", err)
	}

	m.mu.Lock()
	if keys, ok := m.scanned[t.Root]; ok {
		keys[t.key] = true
	}
	m.mu.Unlock()
	return nil
}

// Content renders the text file stored next to a post's media
func Content(webURL string, post weverse.Post) string {
	return fmt.Sprintf("%s\n%s (%s):\n%s", webURL, post.CommunityUser.Nickname, post.CreatedAt, post.BodyText())
}
