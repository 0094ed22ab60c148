package sim

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/dennis-eisen/ptzctrl/grid"
	"github.com/dennis-eisen/ptzctrl/ptz"
)

const (
	outboxSize   = 16
	writeTimeout = 3 * time.Second
)

// Server exposes a Hub over HTTP.
type Server struct {
	hub *Hub
	log *zap.Logger
}

// NewServer wraps hub.
func NewServer(hub *Hub, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{hub: hub, log: log}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.serveWS)
	r.Get("/ws", s.serveWS)
	r.Get("/healthz", healthz)
	r.Put("/tally/{cam}/{state}", s.putTally)
	return r
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	s.log.Info("listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) putTally(w http.ResponseWriter, r *http.Request) {
	cam, err := strconv.Atoi(chi.URLParam(r, "cam"))
	if err != nil {
		http.Error(w, "bad camera", http.StatusBadRequest)
		return
	}
	state, err := strconv.Atoi(chi.URLParam(r, "state"))
	if err != nil {
		http.Error(w, "bad state", http.StatusBadRequest)
		return
	}
	switch err := s.hub.SetTally(cam, state); {
	case errors.Is(err, grid.ErrUnknownCamera):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, grid.ErrInvalidTally):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case err != nil:
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.log.Warn("accept", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	id := uuid.NewString()
	log := s.log.With(zap.String("client", id))
	out := make(chan ptz.Message, outboxSize)
	s.hub.Join(id, out)
	defer s.hub.Leave(id)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Writer
	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-out:
				if !ok {
					conn.Close(websocket.StatusPolicyViolation, "too slow")
					return
				}
				wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
				err := wsjson.Write(wctx, conn, msg)
				wcancel()
				if err != nil {
					log.Debug("write", zap.Error(err))
					return
				}
			}
		}
	}()

	// Reader
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				log.Debug("read", zap.Error(err))
			}
			return
		}
		if typ != websocket.MessageText {
			log.Warn("binary frame ignored")
			continue
		}
		msg, err := ptz.DecodeFrame(data)
		if err != nil {
			log.Warn("malformed frame", zap.Error(err))
			continue
		}
		s.hub.Deliver(id, msg)
	}
}
