package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"helpsync/calllog"
	"helpsync/history"
	"helpsync/state"
	"helpsync/types"
	"helpsync/workflow"
)

// SourceManager manages knowledge sources
type SourceManager interface {
	ListSources(ctx context.Context) ([]types.KnowledgeSource, error)
	CreateSource(ctx context.Context, source types.KnowledgeSource) error
	DeleteSource(ctx context.Context, id string) error
}

// Server is the helpsync HTTP server
type Server struct {
	stateManager   *state.Manager
	workflowRunner *workflow.Runner
	sources        SourceManager
	calls          *calllog.Log
	history        history.Store

	httpServer *http.Server
	cron       *cron.Cron
	cronID     cron.EntryID
	mu         sync.Mutex

	// ctx bounds background operations and is cancelled on shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// Options are the collaborators of a Server; Sources, Calls and History may be nil
type Options struct {
	Runner  *workflow.Runner
	Sources SourceManager
	Calls   *calllog.Log
	History history.Store
	Addr    string
}

// NewServer creates a new server
func NewServer(opts Options) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		stateManager:   opts.Runner.State(),
		workflowRunner: opts.Runner,
		sources:        opts.Sources,
		calls:          opts.Calls,
		history:        opts.History,
		cron:           cron.New(),
		ctx:            ctx,
		cancel:         cancel,
	}

	s.httpServer = &http.Server{
		Addr:    opts.Addr,
		Handler: NewRouter(s),
	}
	return s
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(s *Server) *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	// Register resource routers
	RegisterHealthRoutes(r)
	RegisterSyncRoutes(r, s)
	RegisterSourceRoutes(r, s)
	RegisterLogRoutes(r, s)
	return r
}

// Handler exposes the router
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("🚀 Starting helpsync server on %s", s.httpServer.Addr)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	return nil
}

// StartCron schedules fetch+compare runs; a tick is skipped while an operation is running
func (s *Server) StartCron(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(schedule, func() {
		log.Println("⏰ Cron triggered: starting scheduled run")

		err := s.workflowRunner.Start(s.ctx, workflow.Request{Action: workflow.ActionRun})
		var busy *workflow.ErrBusy
		if errors.As(err, &busy) {
			log.Printf("Cron skipped: helpsync is busy (state=%s)", busy.State)
		} else if err != nil {
			log.Printf("Cron run error: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cronID = id
	s.cron.Start()
	log.Printf("Cron job started with schedule: %s", schedule)
	return nil
}

// Dispatch starts a background operation on behalf of another transport
func (s *Server) Dispatch(req workflow.Request) error {
	return s.workflowRunner.Start(s.ctx, req)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down helpsync server...")

	stopped := s.cron.Stop()
	s.cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}

	select {
	case <-stopped.Done():
	case <-ctx.Done():
	}
	return nil
}
