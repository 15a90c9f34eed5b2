package store

import (
	"context"
	"sync"

	"github.com/LautaroGarc/dardito/internal/errors"
	"github.com/LautaroGarc/dardito/internal/models"
)

// Mutator serializes every read-modify-write cycle against a document.
// Without it, two concurrent mutations of the same team would race at the
// whole-document write and the later one would silently drop the earlier
// one's changes. All teams share the teams document, so one writer per
// document also serializes writes per team. Plain reads bypass the lock.
type Mutator struct {
	store   Store
	teamsMu sync.Mutex
	usersMu sync.Mutex
}

func NewMutator(s Store) *Mutator {
	return &Mutator{store: s}
}

// ReadTeams reads without holding the write lock.
func (m *Mutator) ReadTeams(ctx context.Context) (*models.TeamsDocument, error) {
	return m.store.ReadTeams(ctx)
}

// ReadUsers reads without holding the write lock.
func (m *Mutator) ReadUsers(ctx context.Context) (*models.UsersDocument, error) {
	return m.store.ReadUsers(ctx)
}

// UpdateTeams runs fn over a freshly-read teams document and writes the
// result back, holding the document's writer lock for the whole cycle.
// The write is skipped when fn fails.
func (m *Mutator) UpdateTeams(ctx context.Context, fn func(doc *models.TeamsDocument) error) error {
	m.teamsMu.Lock()
	defer m.teamsMu.Unlock()

	doc, err := m.store.ReadTeams(ctx)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return m.store.WriteTeams(ctx, doc)
}

// UpdateTeam is UpdateTeams scoped to one named team; fn also receives the
// full document for cross-team bookkeeping. Fails with NOT_FOUND when the
// team does not exist.
func (m *Mutator) UpdateTeam(ctx context.Context, team string, fn func(doc *models.TeamsDocument, t *models.Team) error) error {
	return m.UpdateTeams(ctx, func(doc *models.TeamsDocument) error {
		t := doc.Team(team)
		if t == nil {
			return errors.NotFound("team %s not found", team)
		}
		return fn(doc, t)
	})
}

// UpdateUsers runs fn over a freshly-read users document and writes the
// result back under the users writer lock.
func (m *Mutator) UpdateUsers(ctx context.Context, fn func(doc *models.UsersDocument) error) error {
	m.usersMu.Lock()
	defer m.usersMu.Unlock()

	doc, err := m.store.ReadUsers(ctx)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return m.store.WriteUsers(ctx, doc)
}
