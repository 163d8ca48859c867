// mock-gateway imitates the Evolution API endpoints the worker calls, for
// local runs and demos. Outcomes are controlled by MOCK_SUCCESS_RATE.
package main

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/kelseyhightower/envconfig"
)

type config struct {
	Port        string  `envconfig:"PORT" default:"8090"`
	APIKey      string  `envconfig:"GATEWAY_API_KEY" default:"mock_key"`
	SuccessRate float64 `envconfig:"MOCK_SUCCESS_RATE" default:"1.0"`
	DelayMs     int     `envconfig:"MOCK_DELAY_MS" default:"0"`
}

type textPayload struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

type mediaPayload struct {
	Number    string `json:"number"`
	MediaType string `json:"mediatype"`
	Caption   string `json:"caption"`
	Media     string `json:"media"`
	FileName  string `json:"fileName"`
}

type server struct {
	cfg   config
	rng   *rand.Rand
	rngMu sync.Mutex
}

func main() {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(h))

	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		slog.Error("mock gateway config load failed", "err", err)
		os.Exit(1)
	}

	s := &server{cfg: cfg, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}

	router := mux.NewRouter()
	router.HandleFunc("/message/sendText/{instance}", s.handleText).Methods(http.MethodPost)
	router.HandleFunc("/message/sendMedia/{instance}", s.handleMedia).Methods(http.MethodPost)

	slog.Info("mock gateway listening", "port", cfg.Port, "success_rate", cfg.SuccessRate)
	if err := http.ListenAndServe(":"+cfg.Port, loggingMiddleware(router)); err != nil {
		slog.Error("mock gateway server failed", "err", err)
		os.Exit(1)
	}
}

func (s *server) handleText(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid apikey"})
		return
	}
	var p textPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.Number == "" || p.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "number and text are required"})
		return
	}
	s.respond(w, mux.Vars(r)["instance"], p.Number, "text")
}

func (s *server) handleMedia(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid apikey"})
		return
	}
	var p mediaPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.Number == "" || p.Media == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "number and media are required"})
		return
	}
	s.respond(w, mux.Vars(r)["instance"], p.Number, "media")
}

func (s *server) respond(w http.ResponseWriter, instance, number, kind string) {
	if s.cfg.DelayMs > 0 {
		time.Sleep(time.Duration(s.cfg.DelayMs) * time.Millisecond)
	}

	s.rngMu.Lock()
	ok := s.rng.Float64() <= s.cfg.SuccessRate
	s.rngMu.Unlock()

	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "mock delivery failure"})
		return
	}

	slog.Info("mock message accepted", "instance", instance, "number", number, "kind", kind)
	writeJSON(w, http.StatusCreated, map[string]any{
		"key":    map[string]string{"remoteJid": number + "@s.whatsapp.net"},
		"status": "PENDING",
	})
}

func (s *server) authorized(r *http.Request) bool {
	return r.Header.Get("apikey") == s.cfg.APIKey
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		slog.Info("mock gateway request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
