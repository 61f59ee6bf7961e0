package types

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Row is a single record as exchanged with the data backend
type Row map[string]any

// Filter is an equality predicate on one column
type Filter struct {
	Column string `json:"column"`
	Value  any    `json:"value"`
}

// Eq builds an equality filter
func Eq(column string, value any) Filter {
	return Filter{Column: column, Value: value}
}

// Ordering sorts results by one column
type Ordering struct {
	Column     string `json:"column"`
	Descending bool   `json:"descending"`
}

// Query describes a select or count against one collection
type Query struct {
	Columns []string  `json:"columns,omitempty"`
	Filters []Filter  `json:"filters,omitempty"`
	Order   *Ordering `json:"order,omitempty"`
	Limit   int       `json:"limit,omitempty"`
}

// Where returns a query with the given equality filters
func Where(filters ...Filter) Query {
	return Query{Filters: filters}
}

// OrderBy returns a copy of q sorted by column
func (q Query) OrderBy(column string, descending bool) Query {
	q.Order = &Ordering{Column: column, Descending: descending}
	return q
}

// DataClient performs CRUD-style calls against named collections
type DataClient interface {
	Select(ctx context.Context, collection string, q Query) ([]Row, error)
	Count(ctx context.Context, collection string, q Query) (int, error)
	Insert(ctx context.Context, collection string, record Row) (Row, error)
	Update(ctx context.Context, collection string, filters []Filter, patch Row) (int, error)
}

// Identity is the authenticated account as known to the identity service
type Identity struct {
	ID    uuid.UUID `json:"id" yaml:"id"`
	Email string    `json:"email" yaml:"email"`
}

// Session is an authenticated identity plus the tokens that prove it
type Session struct {
	Identity     Identity  `json:"user" yaml:"user"`
	AccessToken  string    `json:"access_token" yaml:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty" yaml:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at" yaml:"expires_at"`
}

// Expired reports whether the access token is past its expiry
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// AuthClient is the identity sub-interface of the backend
type AuthClient interface {
	// RestoreSession returns the persisted session, or ErrNoSession when there is none
	RestoreSession(ctx context.Context) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*Session, error)
	SignOut(ctx context.Context) error
}

// Backend is a configured handle to the data service and its identity service
type Backend interface {
	DataClient
	AuthClient
	Name() string
	Close() error
}

// SessionStorage persists the current session between runs
type SessionStorage interface {
	Load() (*Session, error)
	Save(s *Session) error
	Clear() error
}

// HealthChecker is implemented by backends that can probe their service
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
