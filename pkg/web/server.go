package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dskvich/trip-planner/pkg/domain"
	"github.com/dskvich/trip-planner/pkg/render"
)

//go:embed templates/*.html
var templates embed.FS

const shutdownTimeout = 10 * time.Second

type Planner interface {
	NewSessionID() string
	Session(ctx context.Context, id string) (*domain.Session, error)
	SubmitIntake(ctx context.Context, id string, in domain.Intake) (*domain.Outcome, error)
	SubmitRefinement(ctx context.Context, id string, r domain.Refinement) (*domain.Outcome, error)
	SendMessage(ctx context.Context, id, text string) (*domain.Outcome, error)
	GenerateItinerary(ctx context.Context, id string) (*domain.Outcome, error)
	Reset(ctx context.Context, id string) error
}

type ItineraryArchive interface {
	GetByID(ctx context.Context, id int64) (*domain.Itinerary, error)
	ListBySession(ctx context.Context, sessionID string) ([]domain.Itinerary, error)
}

type server struct {
	addr    string
	engine  *gin.Engine
	planner Planner
	archive ItineraryArchive
}

// NewServer builds the HTML and JSON routes. archive may be nil, in which
// case the archive endpoints are not registered.
func NewServer(addr string, planner Planner, archive ItineraryArchive, allowedOrigins []string) (*server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"markdown": func(s string) template.HTML { return template.HTML(render.ToHTML(s)) },
	}).ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), requestLogger())
	engine.SetHTMLTemplate(tmpl)

	s := &server{
		addr:    addr,
		engine:  engine,
		planner: planner,
		archive: archive,
	}
	s.routes(allowedOrigins)

	return s, nil
}

func (s *server) routes(allowedOrigins []string) {
	pages := s.engine.Group("/", sessionCookie(s.planner))
	{
		pages.GET("/", s.showPage)
		pages.POST("/intake", s.submitIntake)
		pages.POST("/refine", s.submitRefinement)
		pages.POST("/chat", s.sendMessage)
		pages.POST("/itinerary", s.generateItinerary)
		pages.POST("/reset", s.reset)
		pages.GET("/itinerary/download", s.downloadItinerary)
	}

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, sessionHeader)
	corsCfg.ExposeHeaders = []string{sessionHeader}
	if len(allowedOrigins) > 0 {
		corsCfg.AllowOrigins = allowedOrigins
		corsCfg.AllowCredentials = true
	} else {
		corsCfg.AllowAllOrigins = true
	}

	api := s.engine.Group("/api", cors.New(corsCfg))
	{
		// Preflight requests only reach the cors middleware through a route.
		api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })

		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now()})
		})

		sessions := api.Group("/", sessionCookie(s.planner))
		sessions.GET("/session", s.apiSession)
		sessions.POST("/intake", s.apiSubmitIntake)
		sessions.POST("/refine", s.apiSubmitRefinement)
		sessions.POST("/chat", s.apiSendMessage)
		sessions.POST("/itinerary", s.apiGenerateItinerary)
		sessions.DELETE("/session", s.apiReset)

		if s.archive != nil {
			sessions.GET("/itineraries", s.apiListItineraries)
			sessions.GET("/itineraries/:id", s.apiGetItinerary)
		}
	}
}

func (s *server) Handler() http.Handler { return s.engine }

func (s *server) Name() string { return "web_server" }

func (s *server) Start(ctx context.Context) error {
	slog.Info("Starting worker", "name", s.Name(), "addr", s.addr)
	defer slog.Info("Worker stopped", "name", s.Name())

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrStageNotReached), errors.Is(err, domain.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
