package server

import (
	"crypto/tls"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"resumatch/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// KeyPairReloader serves a TLS key pair and reloads it when the files change
type KeyPairReloader struct {
	mu   sync.RWMutex
	cert *tls.Certificate

	certFile string
	keyFile  string

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan chan struct{}
	stopOnce sync.Once
	logger   *errors.Logger

	// onReload is called after every reload attempt; tests hook it
	onReload func(error)
}

// NewKeyPairReloader loads the key pair once. Call Start to watch for changes.
func NewKeyPairReloader(certFile, keyFile string, debounceDelay time.Duration, logger *errors.Logger) (*KeyPairReloader, error) {
	if debounceDelay <= 0 {
		debounceDelay = time.Second // Default 1 second debounce
	}
	if logger == nil {
		logger = errors.NewNopLogger()
	}

	r := &KeyPairReloader{
		certFile:      certFile,
		keyFile:       keyFile,
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		logger:        logger,
	}
	if err := r.reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// GetCertificate is a tls.Config.GetCertificate callback
func (r *KeyPairReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert, nil
}

// reload replaces the served key pair. On failure the previous pair stays.
func (r *KeyPairReloader) reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "Failed to load TLS key pair", err).
			WithContext("cert_file", r.certFile)
	}
	r.mu.Lock()
	r.cert = &cert
	r.mu.Unlock()
	return nil
}

// Start watches the directories holding the key pair. Directories are
// watched rather than files so atomic renames are seen.
func (r *KeyPairReloader) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	dirs := map[string]struct{}{filepath.Dir(r.certFile): {}, filepath.Dir(r.keyFile): {}}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}
	r.fsWatcher = watcher

	go r.watchLoop()

	r.logger.Info("TLS key pair watcher started",
		"cert_file", r.certFile,
		"key_file", r.keyFile,
		"debounce_delay", r.debounceDelay)
	return nil
}

// Stop stops watching. It is safe to call more than once.
func (r *KeyPairReloader) Stop() error {
	var err error
	r.stopOnce.Do(func() {
		close(r.stopChan)

		r.mu.Lock()
		if r.debounceTimer != nil {
			r.debounceTimer.Stop()
		}
		r.mu.Unlock()

		if r.fsWatcher != nil {
			err = r.fsWatcher.Close()
		}
	})
	return err
}

func (r *KeyPairReloader) watchLoop() {
	for {
		select {
		case event, ok := <-r.fsWatcher.Events:
			if !ok {
				return
			}
			if r.isKeyPairEvent(event) {
				r.scheduleReload()
			}

		case err, ok := <-r.fsWatcher.Errors:
			if !ok {
				return
			}
			r.logger.LogError(err, "File watcher error")

		case <-r.stopChan:
			return
		}
	}
}

func (r *KeyPairReloader) isKeyPairEvent(event fsnotify.Event) bool {
	name := filepath.Clean(event.Name)
	if name != filepath.Clean(r.certFile) && name != filepath.Clean(r.keyFile) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// scheduleReload debounces bursts of events from one certificate rotation
func (r *KeyPairReloader) scheduleReload() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.debounceTimer != nil {
		r.debounceTimer.Stop()
	}
	r.debounceTimer = time.AfterFunc(r.debounceDelay, func() {
		select {
		case <-r.stopChan:
			return
		default:
		}

		err := r.reload()
		if err != nil {
			r.logger.LogError(err, "Failed to reload TLS certificates")
		} else {
			r.logger.Info("TLS certificates reloaded successfully")
		}
		if r.onReload != nil {
			r.onReload(err)
		}
	})
}
