package cli

import (
	"fmt"
	"io"
	"os"

	"cmdbank/config"
	"cmdbank/db"
	"cmdbank/logging"
	"cmdbank/model"
	"cmdbank/runner"
	"cmdbank/store"
	"cmdbank/ui"

	"github.com/spf13/afero"
)

// session holds what every subcommand works with. One per process.
type session struct {
	dataFile  string
	logLevel  string
	printLogs bool

	cfg     *config.Config
	store   *store.Store
	loaded  store.LoadResult
	runner  *runner.Runner
	db      *db.DB
	history ui.History
	logFile *os.File
}

func (s *session) open(stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if s.dataFile != "" {
		cfg.DataFile = s.dataFile
	}
	if s.logLevel != "" {
		cfg.LogLevel = s.logLevel
	}
	s.cfg = cfg

	s.initLogging(stderr)

	s.store = store.New(afero.NewOsFs(), cfg.DataFile)
	s.loaded = s.store.Load()
	if s.loaded.Status == store.Corrupt || s.loaded.Status == store.Failed {
		fmt.Fprintf(stderr, "warning: %s\n", s.loaded.Status)
	}

	s.runner = runner.New(cfg.Runner)

	s.history = ui.NopHistory{}
	if !cfg.NoHistory {
		d, err := db.New(cfg.HistoryDB)
		if err != nil {
			logging.Logger.Warn().Err(err).Str("path", cfg.HistoryDB).Msg("history disabled")
		} else {
			s.db = d
			s.history = d
		}
	}
	return nil
}

func (s *session) initLogging(stderr io.Writer) {
	level := logging.ParseLevel(s.cfg.LogLevel)
	if s.printLogs {
		logging.Init(logging.Config{Level: level, Output: stderr, Pretty: true})
		return
	}
	f, err := logging.OpenFile(s.cfg.LogFile)
	if err != nil {
		// Without a log file there is nowhere quiet to log to.
		logging.Init(logging.Config{Level: level, Output: io.Discard})
		return
	}
	s.logFile = f
	logging.Init(logging.Config{Level: level, Output: f})
}

func (s *session) close() error {
	var err error
	if s.db != nil {
		err = s.db.Close()
		s.db = nil
	}
	if s.logFile != nil {
		s.logFile.Close()
		s.logFile = nil
	}
	return err
}

// category resolves a category argument: a known category in any case, or
// a category already present in the data file.
func (s *session) category(name string) (model.Category, error) {
	c, err := model.ParseCategory(name)
	if err == nil {
		return c, nil
	}
	for _, existing := range s.store.Categories() {
		if string(existing) == name {
			return existing, nil
		}
	}
	return "", err
}

// record looks up a template by category and description.
func (s *session) record(categoryName, description string) (model.Category, model.Record, error) {
	c, err := s.category(categoryName)
	if err != nil {
		return "", model.Record{}, err
	}
	rec, ok := s.store.Lookup(c, description)
	if !ok {
		return "", model.Record{}, fmt.Errorf("%w in %s: %q", store.ErrNotFound, c, description)
	}
	return c, rec, nil
}
