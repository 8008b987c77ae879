// Package project stores exports and sessions as timestamped files in one
// directory: 2006-01-02_15-04-05_name.ext.
package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/mitchellh/go-homedir"

	"go-loopstation/recorder"
)

// File extensions the store writes
const (
	ExtWAV     = ".wav"
	ExtMIDI    = ".mid"
	ExtSession = ".json"
)

const timeLayout = "2006-01-02_15-04-05"

// FileInfo represents a stored file (for listing)
type FileInfo struct {
	Filename  string
	Name      string // parsed from filename (empty if unnamed)
	Ext       string
	Timestamp time.Time
}

// Session is everything needed to pick a performance back up
type Session struct {
	Tempo     int               `json:"tempo"`
	Pattern   string            `json:"pattern"`
	Kit       string            `json:"kit,omitempty"`
	Metronome bool              `json:"metronome"`
	Recorder  recorder.Snapshot `json:"recorder"`
}

// Store is one export directory
type Store struct {
	dir string
	now func() time.Time
}

// DefaultDir returns the default export directory path
func DefaultDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-loopstation", "exports"), nil
}

// NewStore opens dir, expanding a leading ~. The directory is created on
// first save.
func NewStore(dir string) (*Store, error) {
	p, err := homedir.Expand(dir)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.WithDesc("expand export dir", "Export directory "+dir+" is not valid"))
	}
	return &Store{dir: os.ExpandEnv(p), now: time.Now}, nil
}

// Dir returns the resolved directory
func (s *Store) Dir() string {
	return s.dir
}

// Save writes data as a new timestamped file and returns its path
func (s *Store) Save(name, ext string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fault.Wrap(err, fmsg.WithDesc("create export dir", "Could not create "+s.dir))
	}

	filename := s.now().Format(timeLayout)
	if safe := sanitizeFilename(name); safe != "" {
		filename += "_" + safe
	}
	filename += ext

	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fault.Wrap(err, fmsg.WithDesc("write export", "Could not write "+filename))
	}
	return path, nil
}

// List returns stored files, newest first. A missing directory is empty.
func (s *Store) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []FileInfo{}, nil
		}
		return nil, fault.Wrap(err, fmsg.With("read export dir"))
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if info, ok := parseFilename(entry.Name()); ok {
			files = append(files, info)
		}
	}

	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].Timestamp.Equal(files[j].Timestamp) {
			return files[i].Timestamp.After(files[j].Timestamp)
		}
		return files[i].Filename < files[j].Filename
	})
	return files, nil
}

// parseFilename splits 2024-01-15_14-30-00_name.ext; ok is false for
// files the store did not write
func parseFilename(filename string) (FileInfo, bool) {
	ext := filepath.Ext(filename)
	switch ext {
	case ExtWAV, ExtMIDI, ExtSession:
	default:
		return FileInfo{}, false
	}
	base := strings.TrimSuffix(filename, ext)
	if len(base) < len(timeLayout) {
		return FileInfo{}, false
	}
	ts, err := time.ParseInLocation(timeLayout, base[:len(timeLayout)], time.Local)
	if err != nil {
		return FileInfo{}, false
	}
	name := ""
	if len(base) > len(timeLayout)+1 && base[len(timeLayout)] == '_' {
		name = base[len(timeLayout)+1:]
	}
	return FileInfo{Filename: filename, Name: name, Ext: ext, Timestamp: ts}, true
}

// SaveSession writes the session as indented JSON
func (s *Store) SaveSession(name string, sess Session) (string, error) {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return "", fault.Wrap(err, fmsg.With("encode session"))
	}
	return s.Save(name, ExtSession, data)
}

// LoadSession reads a session file; an empty filename loads the newest
func (s *Store) LoadSession(filename string) (Session, error) {
	if filename == "" {
		files, err := s.List()
		if err != nil {
			return Session{}, err
		}
		for _, f := range files {
			if f.Ext == ExtSession {
				filename = f.Filename
				break
			}
		}
		if filename == "" {
			return Session{}, fault.New("no sessions",
				ftag.With(ftag.NotFound),
				fmsg.WithDesc("no sessions", "No saved sessions in "+s.dir))
		}
	}

	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if err != nil {
		return Session{}, fault.Wrap(err, fmsg.WithDesc("read session", "Could not read "+filename))
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fault.Wrap(err,
			ftag.With(ftag.InvalidArgument),
			fmsg.WithDesc("decode session", filename+" is not a session file"))
	}
	return sess, nil
}

// Delete removes a stored file
func (s *Store) Delete(filename string) error {
	if err := os.Remove(filepath.Join(s.dir, filepath.Base(filename))); err != nil {
		return fault.Wrap(err, fmsg.WithDesc("delete", "Could not delete "+filename))
	}
	return nil
}

// Rename changes the name part of a stored file, keeping timestamp and extension
func (s *Store) Rename(filename, newName string) (string, error) {
	info, ok := parseFilename(filename)
	if !ok {
		return "", fault.New("invalid filename", ftag.With(ftag.InvalidArgument),
			fmsg.WithDesc("invalid filename", filename+" was not written by this store"))
	}
	newFilename := info.Timestamp.Format(timeLayout)
	if safe := sanitizeFilename(newName); safe != "" {
		newFilename += "_" + safe
	}
	newFilename += info.Ext

	if err := os.Rename(filepath.Join(s.dir, filename), filepath.Join(s.dir, newFilename)); err != nil {
		return "", fault.Wrap(err, fmsg.WithDesc("rename", "Could not rename "+filename))
	}
	return newFilename, nil
}

// sanitizeFilename removes/replaces characters that are problematic in filenames
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = strings.NewReplacer(
		" ", "-", "/", "-", "\\", "-", ":", "-",
		"*", "", "?", "", "\"", "", "<", "", ">", "", "|", "",
	).Replace(name)
	return name
}

// Message returns the user-facing description of an error from this
// package, falling back to err.Error()
func Message(err error) string {
	if err == nil {
		return ""
	}
	if issue := fmsg.GetIssue(err); issue != "" {
		return issue
	}
	return err.Error()
}

// IsNotFound reports whether err means there was nothing to load
func IsNotFound(err error) bool {
	return ftag.Get(err) == ftag.NotFound
}
