package server

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smartattend/smartattend-go/pkg/audit"
	"github.com/smartattend/smartattend-go/pkg/config"
	"github.com/smartattend/smartattend-go/pkg/registry"
	"github.com/smartattend/smartattend-go/pkg/store"
)

type Server struct {
	Router   *mux.Router
	DB       *gorm.DB
	Store    store.IsolationStore
	Registry *registry.Registry
	Sink     *audit.Sink
	Config   *config.Config
	Log      *zap.Logger

	// TokenKey verifies bearer tokens at the edge
	TokenKey []byte

	srv *http.Server
}

func NewServer(
	db *gorm.DB,
	st store.IsolationStore,
	reg *registry.Registry,
	sink *audit.Sink,
	cfg *config.Config,
	log *zap.Logger,
	tokenKey []byte,
	host string,
	port string,
) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	router := mux.NewRouter().UseEncodedPath()
	srv := &http.Server{
		Handler: handlers.LoggingHandler(os.Stdout, router),
		Addr:    host + ":" + port,
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Router:   router,
		DB:       db,
		Store:    st,
		Registry: reg,
		Sink:     sink,
		Config:   cfg,
		Log:      log,
		TokenKey: tokenKey,
		srv:      srv,
	}
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown stops the HTTP listener and flushes the audit sink.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	if s.Sink != nil {
		s.Sink.Close()
	}
	return err
}
