package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"modelvault/internal/automation"
	"modelvault/internal/config"
	"modelvault/internal/engine"
	"modelvault/internal/history"
	"modelvault/internal/logging"
	"modelvault/internal/replicate"
	"modelvault/internal/store"
)

// openProject locates the project root from the working directory and
// wires the engine the way every command consumes it: store, history
// log, collaborator runner, file logger. The returned cleanup syncs the
// logger and must be deferred.
func openProject() (*engine.Engine, func(), error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, nil, err
	}
	root, err := store.FindRoot(wd)
	if err != nil {
		return nil, nil, err
	}
	s, err := store.Open(root)
	if err != nil {
		return nil, nil, err
	}
	log, err := history.Open(s.HistoryDir())
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(logging.Options{
		FilePath:   filepath.Join(s.LogsDir(), config.GetLogFile()),
		Level:      config.GetLogLevel(),
		MaxSizeMB:  config.GetLogMaxSizeMB(),
		MaxBackups: config.GetLogMaxBackups(),
		MaxAgeDays: config.GetLogMaxAgeDays(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	e := engine.New(s, log, &automation.ExecRunner{
		Command: config.GetAutomationCommand(),
		Timeout: config.GetAutomationTimeout(),
		Progress: func(line string) {
			fmt.Println("  " + line)
		},
	})
	e.Author = config.Author()
	e.FreeMargin = config.GetFreeMarginBytes()
	e.Logger = logger
	return e, func() { _ = logger.Sync() }, nil
}

// lockProject acquires the exclusive project lock for a mutating
// command; callers defer the returned release.
func lockProject(e *engine.Engine) (func(), error) {
	fl, err := e.Store.Lock()
	if err != nil {
		return nil, err
	}
	return func() { store.Unlock(fl) }, nil
}

// newReplicator builds a replicator that shares the engine's logger.
func newReplicator(e *engine.Engine) *replicate.Replicator {
	r := replicate.New(e.Store, e.Log)
	r.Logger = e.Logger
	return r
}

// resolveRemote returns the shared-folder remote from the flag or the
// configuration, in that order.
func resolveRemote(flag string) (*replicate.Remote, error) {
	path := flag
	if path == "" {
		path = config.GetRemotePath()
	}
	if path == "" {
		return nil, fmt.Errorf("no remote configured (pass --remote or set remote.path)")
	}
	return &replicate.Remote{Root: path}, nil
}
