package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gigtune/gigtune/internal/config"
	"github.com/gigtune/gigtune/internal/model"
	"github.com/gigtune/gigtune/internal/session"
	"github.com/gigtune/gigtune/internal/status"
	"github.com/gigtune/gigtune/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

type backend struct {
	musicianCalls atomic.Int32
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	mux.HandleFunc("GET /api/musicians", func(w http.ResponseWriter, r *http.Request) {
		b.musicianCalls.Add(1)
		writeJSON(w, []model.Musician{{ID: 1, Name: "Ana Souza", Email: "ana@gigtune.dev"}})
	})
	mux.HandleFunc("GET /api/notifications", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []model.Notification{})
	})
	mux.HandleFunc("GET /api/conversations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []model.Conversation{})
	})
	mux.HandleFunc("GET /api/gigs", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []model.Gig{})
	})
	return mux
}

// writeConfig points a fresh GIGTUNE_HOME at srv and returns the config path.
func writeConfig(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.HomeEnv, home)

	cfg := config.Default()
	cfg.APIBaseURL = srv.URL + "/api"
	cfg.SocketURL = "ws://127.0.0.1:1/ws"
	cfg.ReconnectAttempts = 1
	cfg.ReconnectDelay = config.Duration{Duration: 10 * time.Millisecond}
	cfg.SignalPollInterval = config.Duration{Duration: 20 * time.Millisecond}
	path := filepath.Join(home, "config.toml")
	require.NoError(t, config.Save(path, cfg))
	return path
}

func TestFxModuleWiring(t *testing.T) {
	t.Setenv(config.HomeEnv, t.TempDir())
	err := fx.ValidateApp(Module(Params{Profile: "fxtest", Quiet: true}))
	require.NoError(t, err)
}

func TestLifecycleCreatesProfileFiles(t *testing.T) {
	be := &backend{}
	srv := httptest.NewServer(be.handler())
	defer srv.Close()
	cfgPath := writeConfig(t, srv)

	var mgr *session.Manager
	app := fxtest.New(t,
		Module(Params{Profile: "fxtest", ConfigPath: cfgPath, Quiet: true}),
		fx.Populate(&mgr),
	)
	app.RequireStart()

	for _, path := range []string{config.SignalDBPath("fxtest"), config.LogPath("fxtest")} {
		_, err := os.Stat(path)
		assert.NoError(t, err, path)
	}

	st, err := mgr.Login(context.Background(), "ANA@gigtune.dev")
	require.NoError(t, err)
	state, _ := st.Status()
	assert.Equal(t, status.Ready, state)

	app.RequireStop()
	assert.Nil(t, mgr.Store())
	assert.Empty(t, st.Musicians())
}

func TestCrossInstanceSignalReloadsStore(t *testing.T) {
	be := &backend{}
	srv := httptest.NewServer(be.handler())
	defer srv.Close()
	cfgPath := writeConfig(t, srv)

	var mgr *session.Manager
	app := fxtest.New(t,
		Module(Params{Profile: "fxtest", ConfigPath: cfgPath, Quiet: true}),
		fx.Populate(&mgr),
	)
	app.RequireStart()
	defer app.RequireStop()

	_, err := mgr.Login(context.Background(), "ana@gigtune.dev")
	require.NoError(t, err)
	before := be.musicianCalls.Load()

	other, err := store.Open(config.SignalDBPath("fxtest"))
	require.NoError(t, err)
	defer func() { _ = other.Close() }()
	require.NoError(t, other.TouchSignal(context.Background(), "other-instance", time.Now()))

	require.Eventually(t, func() bool {
		return be.musicianCalls.Load() > before
	}, 2*time.Second, 10*time.Millisecond, fmt.Sprintf("no reload after signal (calls=%d)", before))
}
