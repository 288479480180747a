// Package file stores the routing table in a JSON or YAML document.
//
// The document has a single top-level "routes" object mapping route ids to
// ordered target lists:
//
//	routes:
//	  orders:
//	    - http://billing.internal/hooks
//	    - http://audit.internal/hooks
//
// Writes go to a temporary file in the same directory which is then renamed
// over the document, so readers never see a partial write.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.yaml.in/yaml/v3"

	"webhook-fanout/internal/common/logging"
	"webhook-fanout/internal/routing"
)

// Document is the on-disk shape.
type Document struct {
	Routes map[string][]string `json:"routes" yaml:"routes"`
}

type Adapter struct {
	config *Config
	logger logging.Logger

	mu       sync.Mutex
	lastSeen []byte // content last written or loaded by this process
}

func NewAdapter(config *Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid file store config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(config.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create routes directory: %w", err)
	}

	return &Adapter{
		config: config,
		logger: logging.GetGlobalLogger().WithFields(
			logging.String("component", "file_store"),
			logging.String("path", config.Path),
		),
	}, nil
}

// Load reads the document. A missing file is an empty table.
func (a *Adapter) Load(ctx context.Context) (map[string][]string, error) {
	data, err := os.ReadFile(a.config.Path)
	if os.IsNotExist(err) {
		return map[string][]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read routes file: %w", err)
	}

	routes, err := a.decode(data)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.lastSeen = data
	a.mu.Unlock()

	return routes, nil
}

// Save atomically replaces the document with routes.
func (a *Adapter) Save(ctx context.Context, routes map[string][]string) error {
	data, err := a.encode(routes)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	dir := filepath.Dir(a.config.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(a.config.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write routes: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync routes: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, a.config.Path); err != nil {
		return fmt.Errorf("failed to replace routes file: %w", err)
	}

	a.lastSeen = data
	return nil
}

func (a *Adapter) Close() error {
	return nil
}

// Watch calls onChange when the document is edited by someone else. It
// watches the directory so that atomic replaces are seen, and debounces
// bursts of events.
func (a *Adapter) Watch(ctx context.Context, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(a.config.Path)
	name := filepath.Base(a.config.Path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(a.config.WatchDebounce, func() {
			if ctx.Err() != nil || !a.changedExternally() {
				return
			}
			a.logger.Info("Routes file changed, reloading")
			onChange()
		})
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	a.logger.Debug("Watching routes file")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("Routes file watch error", logging.Err(err))
		}
	}
}

// changedExternally reports whether the document differs from what this
// process last wrote or read.
func (a *Adapter) changedExternally() bool {
	data, err := os.ReadFile(a.config.Path)
	if err != nil {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return !bytes.Equal(data, a.lastSeen)
}

func (a *Adapter) decode(data []byte) (map[string][]string, error) {
	var doc Document
	if len(bytes.TrimSpace(data)) > 0 {
		var err error
		if a.config.Format == FormatYAML {
			err = yaml.Unmarshal(data, &doc)
		} else {
			err = json.Unmarshal(data, &doc)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse routes file: %w", err)
		}
	}
	return routing.CloneRoutes(doc.Routes), nil
}

func (a *Adapter) encode(routes map[string][]string) ([]byte, error) {
	doc := Document{Routes: routing.CloneRoutes(routes)}

	if a.config.Format == FormatYAML {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to encode routes: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode routes: %w", err)
		}
		return buf.Bytes(), nil
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode routes: %w", err)
	}
	return append(data, '\n'), nil
}
