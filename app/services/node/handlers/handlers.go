// Package handlers manages the operational endpoints for the node: the
// debug mux and the event streaming API. The protocol itself is served over
// TCP by the server package; nothing here translates browser requests into
// protocol commands.
package handlers

import (
	"encoding/json"
	"expvar"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/CookieClickerdev/Vanilla-Coin-Final/business/web/mid"
	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/events"
	"github.com/CookieClickerdev/Vanilla-Coin-Final/foundation/ledger/state"
	"github.com/dimfeld/httptreemux/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// MuxConfig contains all the mandatory systems required by handlers.
type MuxConfig struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
}

// OpsMux constructs a http.Handler with the node status and event
// streaming routes defined.
func OpsMux(cfg MuxConfig) http.Handler {
	mux := httptreemux.NewContextMux()

	og := opsGroup{
		log:   cfg.Log,
		state: cfg.State,
		evts:  cfg.Evts,
	}

	mux.Handler(http.MethodGet, "/v1/node/status", http.HandlerFunc(og.status))
	mux.Handler(http.MethodGet, "/v1/events", http.HandlerFunc(og.events))

	return mid.Cors("*")(mux)
}

// DebugMux registers all the debug standard library routes and then custom
// debug application routes for the service. Using a dedicated mux instead of
// the DefaultServerMux keeps dependencies from injecting handlers without
// us knowing it.
func DebugMux(build string, log *zap.SugaredLogger) http.Handler {
	mux := http.NewServeMux()

	// Register all the standard library debug endpoints.
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())

	cg := checkGroup{
		build: build,
		log:   log,
	}
	mux.HandleFunc("/debug/readiness", cg.readiness)
	mux.HandleFunc("/debug/liveness", cg.liveness)

	return mux
}

// =============================================================================

// opsGroup holds the dependencies for the operational handlers.
type opsGroup struct {
	log   *zap.SugaredLogger
	state *state.State
	evts  *events.Events
	ws    websocket.Upgrader
}

// status reports the chain tail and the difficulty in force.
func (og *opsGroup) status(w http.ResponseWriter, r *http.Request) {
	latest := og.state.LatestBlock()

	resp := struct {
		ChainName   string `json:"chain_name"`
		ChainLength int    `json:"chain_length"`
		LatestBlock uint64 `json:"latest_block"`
		LatestHash  string `json:"latest_hash"`
		Difficulty  int    `json:"difficulty"`
	}{
		ChainName:   og.state.Genesis().ChainName,
		ChainLength: og.state.ChainLength(),
		LatestBlock: latest.ID,
		LatestHash:  latest.Hash,
		Difficulty:  og.state.Difficulty(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// events handles a web socket to provide node events to an observer.
func (og *opsGroup) events(w http.ResponseWriter, r *http.Request) {
	og.ws.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := og.ws.Upgrade(w, r, nil)
	if err != nil {
		og.log.Errorw("events", "ERROR", err)
		return
	}
	defer c.Close()

	id := uuid.NewString()
	ch := og.evts.Acquire(id)
	defer og.evts.Release(id)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return
			}
		}
	}
}

// =============================================================================

// checkGroup holds the dependencies for the check handlers.
type checkGroup struct {
	build string
	log   *zap.SugaredLogger
}

// readiness checks if the node is ready to take traffic.
func (cg checkGroup) readiness(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		Status string `json:"status"`
	}{
		Status: "OK",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// liveness returns simple status info about the running service.
func (cg checkGroup) liveness(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		Status string `json:"status"`
		Build  string `json:"build"`
	}{
		Status: "up",
		Build:  cg.build,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
