package web

import (
	"fmt"
	"log/slog"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dskvich/trip-planner/pkg/domain"
	"github.com/dskvich/trip-planner/pkg/logger"
)

type pageView struct {
	Session    *domain.Session
	Stage      domain.Stage
	Notices    []domain.Notice
	Budgets    []domain.Budget
	Interests  []domain.Interest
	Diets      []domain.Diet
	Mobilities []domain.Mobility
	MinDays    int
	MaxDays    int
}

func (v pageView) HasInterest(i domain.Interest) bool {
	return v.Session.Profile.HasInterest(i)
}

func newPageView(s *domain.Session, notices []domain.Notice) pageView {
	return pageView{
		Session:    s,
		Stage:      s.Stage(),
		Notices:    notices,
		Budgets:    domain.Budgets,
		Interests:  domain.Interests,
		Diets:      domain.Diets,
		Mobilities: domain.Mobilities,
		MinDays:    domain.MinDuration,
		MaxDays:    domain.MaxDuration,
	}
}

func (s *server) showPage(c *gin.Context) {
	session, err := s.planner.Session(c.Request.Context(), sessionID(c))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.HTML(http.StatusOK, "index.html", newPageView(session, takeFlash(c)))
}

func (s *server) submitIntake(c *gin.Context) {
	var form intakeForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderBadRequest(c, err)
		return
	}

	in, err := form.toIntake()
	if err != nil {
		s.renderBadRequest(c, err)
		return
	}

	out, err := s.planner.SubmitIntake(c.Request.Context(), sessionID(c), in)
	s.renderOutcome(c, out, err)
}

func (s *server) submitRefinement(c *gin.Context) {
	var form refinementForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderBadRequest(c, err)
		return
	}

	r, err := form.toRefinement()
	if err != nil {
		s.renderBadRequest(c, err)
		return
	}

	out, err := s.planner.SubmitRefinement(c.Request.Context(), sessionID(c), r)
	s.renderOutcome(c, out, err)
}

func (s *server) sendMessage(c *gin.Context) {
	var form chatForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderBadRequest(c, err)
		return
	}

	out, err := s.planner.SendMessage(c.Request.Context(), sessionID(c), form.Message)
	s.renderOutcome(c, out, err)
}

func (s *server) generateItinerary(c *gin.Context) {
	out, err := s.planner.GenerateItinerary(c.Request.Context(), sessionID(c))
	s.renderOutcome(c, out, err)
}

func (s *server) reset(c *gin.Context) {
	if err := s.planner.Reset(c.Request.Context(), sessionID(c)); err != nil {
		s.renderError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *server) downloadItinerary(c *gin.Context) {
	session, err := s.planner.Session(c.Request.Context(), sessionID(c))
	if err != nil {
		c.String(statusFor(err), err.Error())
		return
	}

	it := session.Itinerary
	if it == nil {
		c.String(http.StatusNotFound, "no itinerary generated yet")
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": it.FileName()}))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(it.Content))
}

// renderOutcome redirects back to the page after a successful action so a
// refresh does not submit the form again. Notices ride along in a flash
// cookie.
func (s *server) renderOutcome(c *gin.Context, out *domain.Outcome, err error) {
	if err != nil {
		s.renderError(c, err)
		return
	}
	setFlash(c, out.Notices)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *server) renderBadRequest(c *gin.Context, err error) {
	s.renderWithNotice(c, http.StatusBadRequest, fmt.Errorf("invalid form: %w", err))
}

func (s *server) renderError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "Handling page request", logger.Err(err))
	}
	s.renderWithNotice(c, status, err)
}

func (s *server) renderWithNotice(c *gin.Context, status int, err error) {
	session, loadErr := s.planner.Session(c.Request.Context(), sessionID(c))
	if loadErr != nil {
		c.String(http.StatusInternalServerError, loadErr.Error())
		return
	}

	out := domain.Outcome{Session: session}
	out.Error(err)
	c.HTML(status, "index.html", newPageView(session, out.Notices))
}
