package main

import (
	"TagSpectra/internal/config"
	"TagSpectra/internal/query"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path of the configuration file.")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if !cfg.Sinks.ClickHouse.Enabled {
		log.Fatalf("ClickHouse sink is not enabled in config. API server cannot start.")
	}

	querier, err := query.NewClickHouseQuerier(cfg.Sinks.ClickHouse)
	if err != nil {
		log.Fatalf("Failed to create querier: %v", err)
	}

	r := mux.NewRouter()
	apiHandler := &APIHandler{querier: querier}
	r.HandleFunc("/api/v1/tags/latest", apiHandler.latestValuesHandler).Methods("GET")
	r.HandleFunc("/api/v1/tags/{tag}/history", apiHandler.tagHistoryHandler).Methods("GET")

	server := &http.Server{
		Addr:    cfg.API.ListenAddr,
		Handler: r,
	}

	go func() {
		log.Printf("API server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", server.Addr, err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("API server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("API server exited.")
}

// APIHandler holds the dependencies for API handlers.
type APIHandler struct {
	querier query.Querier
}

// latestValuesHandler returns the most recent stored value of every tag.
func (h *APIHandler) latestValuesHandler(w http.ResponseWriter, r *http.Request) {
	values, err := h.querier.LatestValues(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query latest values: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, values)
}

// tagHistoryHandler returns the stored values of one tag in a time range.
// The range is given as RFC3339 'from' and 'to' query parameters; 'to'
// defaults to now and 'from' to 24 hours before it.
func (h *APIHandler) tagHistoryHandler(w http.ResponseWriter, r *http.Request) {
	tag := mux.Vars(r)["tag"]

	to := time.Now()
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid 'to' parameter: %v", err), http.StatusBadRequest)
			return
		}
		to = parsed
	}
	from := to.Add(-24 * time.Hour)
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid 'from' parameter: %v", err), http.StatusBadRequest)
			return
		}
		from = parsed
	}

	values, err := h.querier.TagHistory(r.Context(), tag, from, to)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query tag history: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, values)
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
