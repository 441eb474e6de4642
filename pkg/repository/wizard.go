package repository

import (
	"sync"
	"time"

	"github.com/dskvich/trip-planner/pkg/domain"
)

type wizardEntry struct {
	wizard     domain.Wizard
	lastUpdate time.Time
}

type wizardRepository struct {
	mu        sync.Mutex
	wizards   map[int64]wizardEntry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

// NewWizardRepository keeps telegram intake drafts in memory. Drafts idle
// for longer than ttl are dropped; ttl <= 0 keeps them forever.
func NewWizardRepository(ttl time.Duration) *wizardRepository {
	return &wizardRepository{
		wizards: make(map[int64]wizardEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (w *wizardRepository) Save(chatID int64, wizard domain.Wizard) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.sweep(now)
	w.wizards[chatID] = wizardEntry{wizard: cloneWizard(wizard), lastUpdate: now}
}

func (w *wizardRepository) Get(chatID int64) (domain.Wizard, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	entry, ok := w.wizards[chatID]
	if !ok {
		return domain.Wizard{}, false
	}
	if w.isExpired(entry) {
		delete(w.wizards, chatID)
		return domain.Wizard{}, false
	}
	return cloneWizard(entry.wizard), true
}

// Update applies fn to the stored draft under the lock and returns the
// result. It reports false when there is no live draft for chatID.
func (w *wizardRepository) Update(chatID int64, fn func(*domain.Wizard)) (domain.Wizard, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	entry, ok := w.wizards[chatID]
	if !ok || w.isExpired(entry) {
		delete(w.wizards, chatID)
		return domain.Wizard{}, false
	}

	fn(&entry.wizard)
	entry.lastUpdate = w.now()
	w.wizards[chatID] = entry

	return cloneWizard(entry.wizard), true
}

func (w *wizardRepository) Clear(chatID int64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.wizards, chatID)
}

func (w *wizardRepository) sweep(now time.Time) {
	if w.ttl <= 0 || now.Sub(w.lastSweep) < w.ttl {
		return
	}
	w.lastSweep = now

	for chatID, entry := range w.wizards {
		if w.isExpired(entry) {
			delete(w.wizards, chatID)
		}
	}
}

func (w *wizardRepository) isExpired(entry wizardEntry) bool {
	return w.ttl > 0 && w.now().Sub(entry.lastUpdate) > w.ttl
}

func cloneWizard(wizard domain.Wizard) domain.Wizard {
	wizard.Intake.Interests = append([]domain.Interest(nil), wizard.Intake.Interests...)
	return wizard
}
