// Package stub serves a stand-in for the target service so the simulator
// can be exercised locally without the real CRUD application.
package stub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

type Options struct {
	// Latency is added to every response.
	Latency time.Duration
	// Status, when non-zero, is returned by every route instead of the normal one.
	Status int
}

type user struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type handler struct {
	opts   Options
	nextID atomic.Int64
}

func NewHandler(opts Options) http.Handler {
	h := &handler{opts: opts}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users", h.listUsers)
	mux.HandleFunc("GET /users/{id}", h.getUser)
	mux.HandleFunc("POST /users", h.createUser)
	return h.delay(mux)
}

func (h *handler) delay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.opts.Latency > 0 {
			time.Sleep(h.opts.Latency)
		}
		if h.opts.Status != 0 {
			writeJSON(w, h.opts.Status, map[string]string{"message": http.StatusText(h.opts.Status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *handler) listUsers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, []user{
		{ID: 1, Name: "User_1", Email: "user_1@example.com"},
	})
}

func (h *handler) getUser(w http.ResponseWriter, r *http.Request) {
	var id int64
	if _, err := fmt.Sscan(r.PathValue("id"), &id); err != nil || id < 1 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, user{ID: id, Name: fmt.Sprintf("User_%d", id), Email: fmt.Sprintf("user_%d@example.com", id)})
}

func (h *handler) createUser(w http.ResponseWriter, r *http.Request) {
	var u user
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil || u.Name == "" || u.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and email are required"})
		return
	}
	u.ID = h.nextID.Add(1)
	writeJSON(w, http.StatusCreated, u)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// ListenAndServe runs the stub on addr until ctx is done.
func ListenAndServe(ctx context.Context, addr string, opts Options) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           NewHandler(opts),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	log.WithFields(log.Fields{"addr": addr, "latency": opts.Latency}).Info("👻 stub target running")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("stub server: %w", err)
	}
	return nil
}
