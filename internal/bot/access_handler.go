package bot

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// AccessStore persists which users have passed the gate.
type AccessStore interface {
	IsUnlocked(telegramID int64) (bool, error)
	Unlock(telegramID int64) error
}

// AccessGate keeps the bot closed until a user sends the access code.
// Only a bcrypt hash of the code is held in memory.
type AccessGate struct {
	hash  []byte
	store AccessStore
}

// NewAccessGate hashes the access code. store may be nil, in which case
// unlocks last until the process exits.
func NewAccessGate(code string, store AccessStore) (*AccessGate, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("access code is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash access code: %w", err)
	}
	return &AccessGate{hash: hash, store: store}, nil
}

// Matches reports whether attempt is the access code.
func (g *AccessGate) Matches(attempt string) bool {
	return bcrypt.CompareHashAndPassword(g.hash, []byte(strings.TrimSpace(attempt))) == nil
}

// HandleAttempt checks a locked user's message against the code and unlocks
// the session on success.
// Called from session worker - no locking needed.
func (g *AccessGate) HandleAttempt(session *UserSession, text string) {
	if !g.Matches(text) {
		log.Warn().Int64("userId", session.userId).Msg("access code rejected")
		session.reply(MsgAccessDenied)
		return
	}

	if g.store != nil {
		if err := g.store.Unlock(session.userId); err != nil {
			log.Error().Err(err).Int64("userId", session.userId).Msg("failed to persist unlock")
		}
	}
	session.setUnlocked()
	log.Info().Int64("userId", session.userId).Msg("user unlocked")
	session.reply(MsgAccessGranted)
}
