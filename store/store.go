// Package store keeps the command catalog in a JSON file.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"cmdbank/logging"
	"cmdbank/model"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// LoadStatus describes how Load ended up populating the store.
type LoadStatus int

const (
	Loaded LoadStatus = iota
	Missing
	Corrupt
	Failed
)

func (s LoadStatus) String() string {
	switch s {
	case Loaded:
		return "Command data loaded."
	case Missing:
		return "No command data found. Starting with empty data."
	case Corrupt:
		return "Command data file is corrupted. Starting with empty data."
	default:
		return "Error loading command data. Starting with empty data."
	}
}

// LoadResult is returned by Load. Err holds the recovered cause, if any;
// the store is usable either way.
type LoadResult struct {
	Status  LoadStatus
	Err     error
	Removed int // duplicates collapsed during load
}

// Store owns the catalog and the file it is persisted to. It is not safe
// for concurrent use.
type Store struct {
	fs   afero.Fs
	path string
	data model.Catalog
	log  zerolog.Logger
}

// New returns an empty store backed by path on fsys.
func New(fsys afero.Fs, path string) *Store {
	return &Store{
		fs:   fsys,
		path: path,
		data: model.NewCatalog(),
		log:  logging.With("store"),
	}
}

// Path returns the data file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the data file. A missing, unreadable or malformed file leaves
// the store holding the default empty catalog. After a successful read the
// catalog is de-duplicated and written back.
func (s *Store) Load() LoadResult {
	raw, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		s.data = model.NewCatalog()
		if errors.Is(err, fs.ErrNotExist) {
			s.log.Info().Str("path", s.path).Msg("no data file, starting empty")
			return LoadResult{Status: Missing}
		}
		s.log.Warn().Err(err).Str("path", s.path).Msg("reading data file")
		return LoadResult{Status: Failed, Err: err}
	}

	data, err := Decode(raw)
	if err != nil {
		s.data = model.NewCatalog()
		s.log.Warn().Err(err).Str("path", s.path).Msg("data file is corrupted")
		return LoadResult{Status: Corrupt, Err: err}
	}

	s.data = data
	removed := s.Deduplicate()
	if err := s.Save(); err != nil {
		s.log.Warn().Err(err).Msg("saving de-duplicated data")
	}
	s.log.Debug().Int("records", s.data.Len()).Int("duplicates", removed).Msg("loaded commands")
	return LoadResult{Status: Loaded, Removed: removed}
}

// Save writes the whole catalog to the data file. The in-memory catalog is
// kept even when writing fails.
func (s *Store) Save() error {
	raw, err := Encode(s.data)
	if err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	if err := s.writeFile(raw); err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	s.log.Debug().Str("path", s.path).Msg("saved commands")
	return nil
}

func (s *Store) writeFile(raw []byte) error {
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := afero.TempFile(s.fs, dir, ".commands-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return err
	}
	if err := s.fs.Chmod(tmpName, 0644); err != nil {
		s.fs.Remove(tmpName)
		return err
	}
	return s.fs.Rename(tmpName, s.path)
}

// Catalog returns a copy of the whole catalog.
func (s *Store) Catalog() model.Catalog {
	return s.data.Clone()
}

// Categories returns the known categories followed by any other category
// present in the data, sorted by name.
func (s *Store) Categories() []model.Category {
	cats := append([]model.Category{}, model.Categories...)
	var extra []model.Category
	for c := range s.data {
		if !c.Known() {
			extra = append(extra, c)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(cats, extra...)
}

// Records returns a copy of the records in category, in insertion order.
func (s *Store) Records(category model.Category) []model.Record {
	return append([]model.Record{}, s.data[category]...)
}

// Descriptions returns the selectable descriptions for category: the empty
// "none selected" entry first, then every non-empty description in order.
func (s *Store) Descriptions(category model.Category) []string {
	out := []string{""}
	for _, r := range s.data[category] {
		if r.Description != "" {
			out = append(out, r.Description)
		}
	}
	return out
}

// Lookup returns the first record in category with the given description.
func (s *Store) Lookup(category model.Category, description string) (model.Record, bool) {
	for _, r := range s.data[category] {
		if r.Description == description {
			return r, true
		}
	}
	return model.Record{}, false
}

// Add appends a record to category and saves.
func (s *Store) Add(category model.Category, command, description string) error {
	if command == "" {
		return &ValidationError{Field: "command", Message: "Command cannot be empty."}
	}
	if strings.TrimSpace(description) == "" {
		return &ValidationError{Field: "description", Message: "Description cannot be empty."}
	}

	rec := model.Record{Command: command, Description: description}
	for _, r := range s.data[category] {
		if r == rec {
			return fmt.Errorf("%w in %s: %q", ErrDuplicate, category, description)
		}
	}

	s.data[category] = append(s.records(category), rec)
	s.log.Info().Str("category", string(category)).Str("description", description).Msg("added command")
	return s.Save()
}

// Remove deletes the first record in category whose description matches.
// Only the description is compared, so of two records sharing a
// description only the earlier one is reachable.
func (s *Store) Remove(category model.Category, description string) error {
	recs := s.data[category]
	for i, r := range recs {
		if r.Description == description {
			s.data[category] = append(recs[:i:i], recs[i+1:]...)
			s.log.Info().Str("category", string(category)).Str("description", description).Msg("removed command")
			return s.Save()
		}
	}
	return fmt.Errorf("%w in %s: %q", ErrNotFound, category, description)
}

// Deduplicate collapses repeated (command, description) pairs in every
// category and returns how many records were dropped. It does not save.
func (s *Store) Deduplicate() int {
	before := s.data.Len()
	s.data = Deduplicate(s.data)
	return before - s.data.Len()
}

// Merge adds every record of other that is not already present, keeping
// other's order, and saves once. Category keys matching a known category
// case-insensitively are folded into it. Records with an empty command or blank
// description are skipped.
func (s *Store) Merge(other model.Catalog) (int, error) {
	added := 0
	for _, name := range sortedCategories(other) {
		c := name
		if known, err := model.ParseCategory(string(name)); err == nil {
			c = known
		}
		for _, rec := range other[name] {
			if rec.Command == "" || strings.TrimSpace(rec.Description) == "" || s.contains(c, rec) {
				continue
			}
			s.data[c] = append(s.records(c), rec)
			added++
		}
	}
	if added == 0 {
		return 0, nil
	}
	s.log.Info().Int("added", added).Msg("merged commands")
	return added, s.Save()
}

// Export writes the catalog in its file format to w.
func (s *Store) Export(w io.Writer) error {
	raw, err := Encode(s.data)
	if err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}

func (s *Store) contains(category model.Category, rec model.Record) bool {
	for _, r := range s.data[category] {
		if r == rec {
			return true
		}
	}
	return false
}

// records returns the slice for category, creating it if absent.
func (s *Store) records(category model.Category) []model.Record {
	recs, ok := s.data[category]
	if !ok || recs == nil {
		recs = []model.Record{}
		s.data[category] = recs
	}
	return recs
}

// Deduplicate returns a copy of c where each category keeps only the first
// record of every distinct (command, description) pair.
func Deduplicate(c model.Catalog) model.Catalog {
	out := make(model.Catalog, len(c))
	for cat, recs := range c {
		seen := make(map[model.Record]bool, len(recs))
		unique := make([]model.Record, 0, len(recs))
		for _, r := range recs {
			if !seen[r] {
				seen[r] = true
				unique = append(unique, r)
			}
		}
		out[cat] = unique
	}
	return out
}

// Decode parses the data file format. Categories holding null become empty.
// Every record must be an object with string "command" and "description"
// keys, matched exactly.
func Decode(raw []byte) (model.Catalog, error) {
	var objs map[model.Category][]map[string]string
	if err := json.Unmarshal(raw, &objs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	if objs == nil {
		return model.NewCatalog(), nil
	}
	data := make(model.Catalog, len(objs))
	for c, list := range objs {
		recs := make([]model.Record, 0, len(list))
		for i, obj := range list {
			rec, err := decodeRecord(obj)
			if err != nil {
				return nil, fmt.Errorf("%w: %s record %d: %v", ErrCorruptData, c, i, err)
			}
			recs = append(recs, rec)
		}
		data[c] = recs
	}
	return data, nil
}

func decodeRecord(obj map[string]string) (model.Record, error) {
	if obj == nil {
		return model.Record{}, errors.New("null record")
	}
	command, ok := obj["command"]
	if !ok {
		return model.Record{}, errors.New(`missing "command"`)
	}
	description, ok := obj["description"]
	if !ok {
		return model.Record{}, errors.New(`missing "description"`)
	}
	return model.Record{Command: command, Description: description}, nil
}

// Encode renders c with sorted keys and four-space indentation.
func Encode(c model.Catalog) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sortedCategories(c model.Catalog) []model.Category {
	cats := make([]model.Category, 0, len(c))
	for cat := range c {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}
