package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dskvich/trip-planner/pkg/domain"
	"github.com/dskvich/trip-planner/pkg/logger"
	"github.com/dskvich/trip-planner/pkg/prompt"
)

type CompletionProvider interface {
	Name() string
	Complete(ctx context.Context, p prompt.Prompt) (string, error)
}

type completionService struct {
	provider CompletionProvider
}

func NewCompletionService(provider CompletionProvider) *completionService {
	return &completionService{provider: provider}
}

// Complete never fails the caller. When the provider errors the fallback
// text is returned together with an error wrapping
// domain.ErrCompletionUnavailable for the surface to show as a notice.
func (c *completionService) Complete(ctx context.Context, p prompt.Prompt) (string, error) {
	slog.InfoContext(ctx, "Requesting completion", "provider", c.provider.Name(), "hasContext", p.Context != "")

	start := time.Now()
	text, err := c.provider.Complete(ctx, p)
	if err != nil {
		slog.ErrorContext(ctx, "Completion failed", "provider", c.provider.Name(), logger.Err(err))
		return domain.CompletionFallback, fmt.Errorf("%w: %s: %v", domain.ErrCompletionUnavailable, c.provider.Name(), err)
	}

	slog.DebugContext(ctx, "Completion received", "elapsed", time.Since(start), "length", len(text))

	return text, nil
}
