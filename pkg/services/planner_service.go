package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/dskvich/trip-planner/pkg/domain"
	"github.com/dskvich/trip-planner/pkg/logger"
	"github.com/dskvich/trip-planner/pkg/prompt"
)

type SessionRepository interface {
	Create(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Update(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, id string) error
}

type ItineraryRepository interface {
	Save(ctx context.Context, it domain.Itinerary) (int64, error)
}

type Completer interface {
	Complete(ctx context.Context, p prompt.Prompt) (string, error)
}

type plannerService struct {
	sessionRepo   SessionRepository
	itineraryRepo ItineraryRepository
	completer     Completer
}

// NewPlannerService wires the flow controller. itineraryRepo may be nil when
// no archive is configured.
func NewPlannerService(
	sessionRepo SessionRepository,
	itineraryRepo ItineraryRepository,
	completer Completer,
) *plannerService {
	return &plannerService{
		sessionRepo:   sessionRepo,
		itineraryRepo: itineraryRepo,
		completer:     completer,
	}
}

func (p *plannerService) NewSessionID() string {
	return uuid.NewString()
}

// Session returns the stored session or starts an empty one under id.
func (p *plannerService) Session(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		id = p.NewSessionID()
	}

	s, err := p.sessionRepo.Get(ctx, id)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("fetching session: %w", err)
	}

	slog.InfoContext(ctx, "Starting new session", "sessionID", id)

	s = domain.NewSession(id)
	if err := p.sessionRepo.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return s, nil
}

// SubmitIntake overwrites the profile with the first form. Diet and
// mobility are cleared until the refinement form is submitted again.
func (p *plannerService) SubmitIntake(ctx context.Context, id string, in domain.Intake) (*domain.Outcome, error) {
	s, err := p.Session(ctx, id)
	if err != nil {
		return nil, err
	}

	s.Profile = domain.TripProfile{
		Destination: in.Destination,
		Duration:    in.Duration,
		Budget:      in.Budget,
		Interests:   lo.Uniq(in.Interests),
	}

	slog.InfoContext(ctx, "Intake submitted", "sessionID", s.ID, "destination", in.Destination, "stage", s.Stage())

	if err := p.save(ctx, s); err != nil {
		return nil, err
	}

	out := &domain.Outcome{Session: s}
	out.Success("Got it! Now let's refine your trip.")
	return out, nil
}

// SubmitRefinement finalizes the profile and seeds the transcript with the
// first assistant reply.
func (p *plannerService) SubmitRefinement(ctx context.Context, id string, r domain.Refinement) (*domain.Outcome, error) {
	s, err := p.Session(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.CanRefine() {
		return nil, fmt.Errorf("refining trip without destination: %w", domain.ErrStageNotReached)
	}

	s.Profile.Diet = ""
	if s.Profile.WantsDiet() {
		s.Profile.Diet, _ = lo.Coalesce(r.Diet, domain.DietNone)
	}
	s.Profile.Mobility = r.Mobility

	out := &domain.Outcome{Session: s}

	reply, err := p.completer.Complete(ctx, prompt.New(prompt.InitialRequest).WithContext(prompt.TripDetails(s.Profile)))
	if err != nil {
		out.Error(err)
	}

	s.Messages = []domain.ChatMessage{{Role: domain.RoleAssistant, Content: reply}}

	if err := p.save(ctx, s); err != nil {
		return nil, err
	}

	out.Success("Perfect! Let's chat about your trip details.")
	return out, nil
}

// SendMessage appends the user's text and the assistant's reply. The
// transcript advances even when the completion falls back.
func (p *plannerService) SendMessage(ctx context.Context, id, text string) (*domain.Outcome, error) {
	s, err := p.Session(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.CanChat() {
		return nil, fmt.Errorf("chatting before trip is refined: %w", domain.ErrStageNotReached)
	}

	s.Messages = append(s.Messages, domain.ChatMessage{Role: domain.RoleUser, Content: text})

	out := &domain.Outcome{Session: s}

	window := prompt.ContextWindow(s.Messages, prompt.ContextWindowSize)
	reply, err := p.completer.Complete(ctx, prompt.New(text).WithContext(window))
	if err != nil {
		out.Error(err)
	}

	s.Messages = append(s.Messages, domain.ChatMessage{Role: domain.RoleAssistant, Content: reply})

	slog.InfoContext(ctx, "Chat turn completed", "sessionID", s.ID, "messagesCount", len(s.Messages))

	if err := p.save(ctx, s); err != nil {
		return nil, err
	}

	return out, nil
}

// GenerateItinerary asks for a full schedule. It can be called any number
// of times once the transcript exists; the latest result replaces the
// previous one on the session.
func (p *plannerService) GenerateItinerary(ctx context.Context, id string) (*domain.Outcome, error) {
	s, err := p.Session(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.CanChat() {
		return nil, fmt.Errorf("generating itinerary before trip is refined: %w", domain.ErrStageNotReached)
	}

	out := &domain.Outcome{Session: s}

	content, err := p.completer.Complete(ctx, prompt.New(prompt.Itinerary(s.Profile)))
	if err != nil {
		out.Error(err)
	}

	it := domain.Itinerary{
		SessionID:   s.ID,
		Destination: s.Profile.Destination,
		Duration:    s.Profile.Duration,
		Content:     content,
		CreatedAt:   time.Now(),
	}

	if p.itineraryRepo != nil && err == nil {
		if it.ID, err = p.itineraryRepo.Save(ctx, it); err != nil {
			slog.ErrorContext(ctx, "Archiving itinerary failed", "sessionID", s.ID, logger.Err(err))
		}
	}

	s.Itinerary = &it

	if err := p.save(ctx, s); err != nil {
		return nil, err
	}

	return out, nil
}

// Reset drops the session so the next visit starts over at intake.
func (p *plannerService) Reset(ctx context.Context, id string) error {
	if err := p.sessionRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	slog.InfoContext(ctx, "Session reset", "sessionID", id)
	return nil
}

func (p *plannerService) save(ctx context.Context, s *domain.Session) error {
	if err := p.sessionRepo.Update(ctx, s); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}
