package supportchat

import (
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/ysy950803/supportchat/internal/kvstore"
	"github.com/ysy950803/supportchat/internal/supportchat/ctx"
	"github.com/ysy950803/supportchat/internal/supportchat/http"
	"github.com/ysy950803/supportchat/pkg/util"
)

// Manager wires the pieces together: config context, document store, HTTP
// service.
type Manager struct {
	ctx  *ctx.Context
	kv   kvstore.Store
	http *http.Service

	httpAddrOverride string

	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

func New() *Manager {
	return &Manager{
		shutdownCh: make(chan struct{}),
	}
}

// SetHTTPAddr overrides the configured listen address (CLI flag).
func (m *Manager) SetHTTPAddr(addr string) {
	m.httpAddrOverride = addr
}

func (m *Manager) Run(configPath string) error {

	var err error
	m.ctx, err = ctx.New(configPath)
	if err != nil {
		return err
	}
	if m.httpAddrOverride != "" {
		m.ctx.SetHTTPAddr(m.httpAddrOverride)
	}
	m.ctx.WatchConfig()

	dataDir := m.ctx.GetDataDir()
	if err := util.PrepareDir(dataDir); err != nil {
		return err
	}

	m.kv, err = kvstore.NewSQLiteStore(filepath.Join(dataDir, "supportchat.db"))
	if err != nil {
		return err
	}
	defer m.kv.Close()

	m.http = http.NewService(m.ctx, m.kv)
	if err := m.http.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case <-m.shutdownCh:
		log.Info().Msg("shutdown requested")
	}

	return m.stop()
}

// Shutdown asks a running manager to stop. Safe to call more than once.
func (m *Manager) Shutdown() {
	m.shutdownOnce.Do(func() {
		close(m.shutdownCh)
	})
}

func (m *Manager) stop() error {
	if m.http != nil {
		if err := m.http.Stop(); err != nil {
			log.Err(err).Msg("failed to stop HTTP service")
		}
	}
	return nil
}
