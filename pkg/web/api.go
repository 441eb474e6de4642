package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dskvich/trip-planner/pkg/domain"
	"github.com/dskvich/trip-planner/pkg/logger"
)

type sessionResponse struct {
	Stage   domain.Stage    `json:"stage"`
	Session *domain.Session `json:"session"`
	Notices []domain.Notice `json:"notices,omitempty"`
}

func newSessionResponse(s *domain.Session, notices []domain.Notice) sessionResponse {
	return sessionResponse{Stage: s.Stage(), Session: s, Notices: notices}
}

func (s *server) apiSession(c *gin.Context) {
	session, err := s.planner.Session(c.Request.Context(), sessionID(c))
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(session, nil))
}

func (s *server) apiSubmitIntake(c *gin.Context) {
	var form intakeForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in, err := form.toIntake()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := s.planner.SubmitIntake(c.Request.Context(), sessionID(c), in)
	s.apiOutcome(c, out, err)
}

func (s *server) apiSubmitRefinement(c *gin.Context) {
	var form refinementForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := form.toRefinement()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := s.planner.SubmitRefinement(c.Request.Context(), sessionID(c), r)
	s.apiOutcome(c, out, err)
}

func (s *server) apiSendMessage(c *gin.Context) {
	var form chatForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := s.planner.SendMessage(c.Request.Context(), sessionID(c), form.Message)
	s.apiOutcome(c, out, err)
}

func (s *server) apiGenerateItinerary(c *gin.Context) {
	out, err := s.planner.GenerateItinerary(c.Request.Context(), sessionID(c))
	s.apiOutcome(c, out, err)
}

func (s *server) apiReset(c *gin.Context) {
	if err := s.planner.Reset(c.Request.Context(), sessionID(c)); err != nil {
		s.apiError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *server) apiListItineraries(c *gin.Context) {
	list, err := s.archive.ListBySession(c.Request.Context(), sessionID(c))
	if err != nil {
		s.apiError(c, err)
		return
	}
	if list == nil {
		list = []domain.Itinerary{}
	}
	c.JSON(http.StatusOK, list)
}

func (s *server) apiGetItinerary(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}

	it, err := s.archive.GetByID(c.Request.Context(), id)
	if err != nil {
		s.apiError(c, err)
		return
	}

	// Archived itineraries are only visible to the session that made them.
	if it.SessionID != sessionID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrNotFound.Error()})
		return
	}

	c.JSON(http.StatusOK, it)
}

func (s *server) apiOutcome(c *gin.Context, out *domain.Outcome, err error) {
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(out.Session, out.Notices))
}

func (s *server) apiError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "Handling api request", logger.Err(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
