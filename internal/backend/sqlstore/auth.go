package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matthieukhl/doemart/internal/backend/credentials"
	"github.com/matthieukhl/doemart/internal/types"
)

type userRow struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
}

type sessionRow struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Store) findUser(ctx context.Context, filter types.Filter) (*userRow, error) {
	t, err := s.table("auth_users", true)
	if err != nil {
		return nil, err
	}
	rows, err := s.selectRows(ctx, t, types.Where(filter))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	u, err := types.DecodeRow[userRow](rows[0])
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) newSession(ctx context.Context, u *userRow) (*types.Session, error) {
	t, err := s.table("auth_sessions", true)
	if err != nil {
		return nil, err
	}
	token, err := credentials.NewToken()
	if err != nil {
		return nil, err
	}

	expires := s.now().Add(s.tokenTTL).UTC()
	if _, err := s.insertRow(ctx, t, types.Row{
		"token":      token,
		"user_id":    u.ID,
		"expires_at": expires,
	}); err != nil {
		return nil, err
	}

	session := &types.Session{
		Identity:    types.Identity{ID: u.ID, Email: u.Email},
		AccessToken: token,
		ExpiresAt:   expires,
	}
	if err := s.storage.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Store) SignIn(ctx context.Context, email, password string) (*types.Session, error) {
	email, err := credentials.NormalizeEmail(email)
	if err != nil {
		return nil, types.ErrInvalidCredentials
	}

	u, err := s.findUser(ctx, types.Eq("email", email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, types.ErrInvalidCredentials
	}

	ok, err := credentials.CheckPassword(u.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrInvalidCredentials
	}

	return s.newSession(ctx, u)
}

// SignUp creates the identity row; profile metadata is left to the caller's profile insert
func (s *Store) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*types.Session, error) {
	email, err := credentials.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	existing, err := s.findUser(ctx, types.Eq("email", email))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, types.ErrEmailTaken
	}

	hash, err := credentials.HashPassword(password, s.cost)
	if err != nil {
		return nil, err
	}

	t, err := s.table("auth_users", true)
	if err != nil {
		return nil, err
	}
	row, err := s.insertRow(ctx, t, types.Row{
		"email":         email,
		"password_hash": hash,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	u, err := types.DecodeRow[userRow](row)
	if err != nil {
		return nil, err
	}
	return s.newSession(ctx, &u)
}

func (s *Store) RestoreSession(ctx context.Context) (*types.Session, error) {
	stored, err := s.storage.Load()
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, types.ErrNoSession
	}

	t, err := s.table("auth_sessions", true)
	if err != nil {
		return nil, err
	}
	rows, err := s.selectRows(ctx, t, types.Where(types.Eq("token", stored.AccessToken)))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		_ = s.storage.Clear()
		return nil, types.ErrNoSession
	}

	sess, err := types.DecodeRow[sessionRow](rows[0])
	if err != nil {
		return nil, err
	}
	if !s.now().Before(sess.ExpiresAt) {
		_ = s.deleteRows(ctx, t, []types.Filter{types.Eq("token", sess.Token)})
		_ = s.storage.Clear()
		return nil, types.ErrNoSession
	}

	u, err := s.findUser(ctx, types.Eq("id", sess.UserID))
	if err != nil {
		return nil, err
	}
	if u == nil {
		_ = s.storage.Clear()
		return nil, types.ErrNoSession
	}

	return &types.Session{
		Identity:    types.Identity{ID: u.ID, Email: u.Email},
		AccessToken: sess.Token,
		ExpiresAt:   sess.ExpiresAt,
	}, nil
}

func (s *Store) SignOut(ctx context.Context) error {
	stored, err := s.storage.Load()
	if err != nil {
		return err
	}
	if stored != nil {
		t, err := s.table("auth_sessions", true)
		if err != nil {
			return err
		}
		if err := s.deleteRows(ctx, t, []types.Filter{types.Eq("token", stored.AccessToken)}); err != nil {
			return err
		}
	}
	return s.storage.Clear()
}
