package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxPayload = 64 << 10

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type api struct {
	streams   *Streams
	broker    *Broker
	heartbeat time.Duration
}

func newHandler(streams *Streams, broker *Broker, gatherer prometheus.Gatherer, heartbeat time.Duration) http.Handler {
	a := &api{streams: streams, broker: broker, heartbeat: heartbeat}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /streams", a.listStreams)
	mux.HandleFunc("GET /streams/{name}", a.getStream)
	mux.HandleFunc("GET /streams/{name}/dump", a.dumpStream)
	mux.HandleFunc("POST /streams/{name}/push", a.pushStream)
	mux.HandleFunc("POST /streams/{name}/pop", a.popStream)
	mux.HandleFunc("POST /streams/{name}/clear", a.clearStream)
	mux.HandleFunc("GET /events", a.events)
	mux.HandleFunc("GET /ws", a.socket)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}

func serveHTTP(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("http shutdown", "error", err)
		}
	}()

	slog.Info("http server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("JSON marshalling error", "error", err)
		http.Error(w, "encoding failure", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// parseEnd reads the ?end= parameter; back is the default.
func parseEnd(r *http.Request) (front bool, err error) {
	switch end := r.URL.Query().Get("end"); end {
	case "", "back":
		return false, nil
	case "front":
		return true, nil
	default:
		return false, fmt.Errorf("end must be front or back, got %q", end)
	}
}

func (a *api) stream(w http.ResponseWriter, r *http.Request) (*Stream, bool) {
	st, err := a.streams.Get(r.PathValue("name"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	return st, true
}

func (a *api) listStreams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.streams)
}

func (a *api) getStream(w http.ResponseWriter, r *http.Request) {
	st, ok := a.stream(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, st.Snapshot())
}

func (a *api) dumpStream(w http.ResponseWriter, r *http.Request) {
	st, ok := a.stream(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := st.Dump(w); err != nil {
		slog.Debug("dump write failed", "stream", st.Name, "error", err)
	}
}

func (a *api) pushStream(w http.ResponseWriter, r *http.Request) {
	front, err := parseEnd(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayload))
	if err != nil {
		http.Error(w, fmt.Sprintf("reading body: %v", err), http.StatusBadRequest)
		return
	}

	source, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		source = r.RemoteAddr
	}

	st := a.streams.GetOrCreate(r.PathValue("name"))
	rec, overwrote := st.Push(r.Context(), source, string(body), front)
	writeJSON(w, http.StatusOK, struct {
		Record    Record `json:"record"`
		Overwrote bool   `json:"overwrote"`
	}{rec, overwrote})
}

func (a *api) popStream(w http.ResponseWriter, r *http.Request) {
	front, err := parseEnd(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	st, ok := a.stream(w, r)
	if !ok {
		return
	}
	rec, ok := st.Pop(r.Context(), front)
	if !ok {
		http.Error(w, fmt.Sprintf("stream %q is empty", st.Name), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (a *api) clearStream(w http.ResponseWriter, r *http.Request) {
	st, ok := a.stream(w, r)
	if !ok {
		return
	}
	st.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// events streams StreamEvents as server-sent events. ?stream= limits the
// output to one stream.
func (a *api) events(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("stream")

	// Mandatory SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Tell client to retry in 3s if disconnected
	if _, err := fmt.Fprint(w, "retry: 3000\n\n"); err != nil {
		return
	}

	// Subscribe before taking the snapshot so nothing between the two is
	// lost.
	ch, unsubscribe := a.broker.Subscribe()
	defer unsubscribe()

	var initial any = a.streams
	if name != "" {
		st, err := a.streams.Get(name)
		if err != nil {
			initial = nil
		} else {
			initial = st.Snapshot()
		}
	}
	if initial != nil {
		data, err := json.Marshal(initial)
		if err != nil {
			slog.Error("JSON marshalling error", "error", err)
		} else if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return
		}
	}

	flusher.Flush()

	heartbeat := time.NewTicker(a.heartbeat)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			// comment lines are ignored by EventSource but keep the pipe warm
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if name != "" && msg.Stream != name {
				continue
			}
			data, err := json.Marshal(msg)
			if err != nil {
				slog.Error("JSON marshalling error", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// socket sends the same events as /events, one JSON text frame each.
func (a *api) socket(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("stream")

	ch, unsubscribe := a.broker.Subscribe()
	defer unsubscribe()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// The read side only exists to notice the peer going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(a.heartbeat)
	defer ping.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-gone:
			return
		case <-ping.C:
			deadline := time.Now().Add(5 * time.Second)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if name != "" && msg.Stream != name {
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}
