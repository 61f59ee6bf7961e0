package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matthieukhl/doemart/internal/backend/credentials"
	"github.com/matthieukhl/doemart/internal/database"
	"github.com/matthieukhl/doemart/internal/types"
	"golang.org/x/crypto/bcrypt"
)

type user struct {
	id           uuid.UUID
	email        string
	passwordHash string
}

// Backend is an in-process data and identity service
type Backend struct {
	mu       sync.RWMutex
	tables   map[string][]types.Row
	users    map[string]user
	sessions map[string]types.Session
	latency  map[string]time.Duration

	storage  types.SessionStorage
	tokenTTL time.Duration
	now      func() time.Time
}

func New(storage types.SessionStorage) *Backend {
	return &Backend{
		tables:   make(map[string][]types.Row),
		users:    make(map[string]user),
		sessions: make(map[string]types.Session),
		latency:  make(map[string]time.Duration),
		storage:  storage,
		tokenTTL: 24 * time.Hour,
		now:      time.Now,
	}
}

func (b *Backend) Name() string { return "memory" }

func (b *Backend) Close() error { return nil }

// SetLatency delays every call against collection by d
func (b *Backend) SetLatency(collection string, d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latency[collection] = d
}

func (b *Backend) wait(ctx context.Context, collection string) error {
	b.mu.RLock()
	d := b.latency[collection]
	b.mu.RUnlock()

	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// normalize reduces v to JSON primitives so typed and decoded values compare equal
func normalize(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

func equal(a, b any) bool {
	return fmt.Sprint(normalize(a)) == fmt.Sprint(normalize(b))
}

func matches(row types.Row, filters []types.Filter) bool {
	for _, f := range filters {
		if !equal(row[f.Column], f.Value) {
			return false
		}
	}
	return true
}

func less(a, b any) bool {
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		at, aerr := time.Parse(time.RFC3339Nano, as)
		bt, berr := time.Parse(time.RFC3339Nano, bs)
		if aerr == nil && berr == nil {
			return at.Before(bt)
		}
		return as < bs
	}
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		return af < bf
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func project(row types.Row, columns []string) types.Row {
	out := make(types.Row, len(row))
	if len(columns) == 0 {
		for k, v := range row {
			out[k] = v
		}
		return out
	}
	for _, c := range columns {
		if v, ok := row[c]; ok {
			out[c] = v
		}
	}
	return out
}

func (b *Backend) Select(ctx context.Context, collection string, q types.Query) ([]types.Row, error) {
	if err := b.wait(ctx, collection); err != nil {
		return nil, err
	}

	b.mu.RLock()
	var rows []types.Row
	for _, row := range b.tables[collection] {
		if matches(row, q.Filters) {
			rows = append(rows, project(row, nil))
		}
	}
	b.mu.RUnlock()

	if q.Order != nil {
		col, desc := q.Order.Column, q.Order.Descending
		sort.SliceStable(rows, func(i, j int) bool {
			if desc {
				return less(rows[j][col], rows[i][col])
			}
			return less(rows[i][col], rows[j][col])
		})
	}
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	if len(q.Columns) > 0 {
		for i := range rows {
			rows[i] = project(rows[i], q.Columns)
		}
	}

	return rows, nil
}

func (b *Backend) Count(ctx context.Context, collection string, q types.Query) (int, error) {
	if err := b.wait(ctx, collection); err != nil {
		return 0, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for _, row := range b.tables[collection] {
		if matches(row, q.Filters) {
			n++
		}
	}
	return n, nil
}

func (b *Backend) Insert(ctx context.Context, collection string, record types.Row) (types.Row, error) {
	if err := b.wait(ctx, collection); err != nil {
		return nil, err
	}

	row, ok := normalize(map[string]any(record)).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("record for %s is not an object", collection)
	}

	stamp := b.now().UTC().Format(time.RFC3339Nano)
	if id, _ := row["id"].(string); id == "" || id == uuid.Nil.String() {
		row["id"] = uuid.NewString()
	}
	if _, ok := row["created_at"]; !ok {
		row["created_at"] = stamp
	}
	if _, ok := row["updated_at"]; !ok {
		row["updated_at"] = stamp
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkUnique(collection, row); err != nil {
		return nil, err
	}
	b.tables[collection] = append(b.tables[collection], types.Row(row))

	return project(row, nil), nil
}

// checkUnique enforces the catalog's unique columns; callers hold b.mu
func (b *Backend) checkUnique(collection string, row map[string]any) error {
	t, ok := database.LookupTable(collection)
	if !ok {
		return nil
	}
	for _, c := range t.Columns {
		v, set := row[c.Name]
		if !c.Unique || !set || v == nil {
			continue
		}
		for _, existing := range b.tables[collection] {
			if equal(existing[c.Name], v) {
				return fmt.Errorf("%s.%s = %v: %w", collection, c.Name, v, types.ErrConflict)
			}
		}
	}
	return nil
}

func (b *Backend) Update(ctx context.Context, collection string, filters []types.Filter, patch types.Row) (int, error) {
	if err := b.wait(ctx, collection); err != nil {
		return 0, err
	}
	if len(filters) == 0 {
		return 0, fmt.Errorf("update on %s requires a filter", collection)
	}

	values, ok := normalize(map[string]any(patch)).(map[string]any)
	if !ok {
		return 0, fmt.Errorf("patch for %s is not an object", collection)
	}
	stamp := b.now().UTC().Format(time.RFC3339Nano)

	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, row := range b.tables[collection] {
		if !matches(row, filters) {
			continue
		}
		for k, v := range values {
			row[k] = v
		}
		row["updated_at"] = stamp
		n++
	}
	return n, nil
}

func (b *Backend) newSession(u user) (*types.Session, error) {
	token, err := credentials.NewToken()
	if err != nil {
		return nil, err
	}
	s := types.Session{
		Identity:    types.Identity{ID: u.id, Email: u.email},
		AccessToken: token,
		ExpiresAt:   b.now().Add(b.tokenTTL),
	}

	b.mu.Lock()
	b.sessions[token] = s
	b.mu.Unlock()

	if err := b.storage.Save(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (b *Backend) RestoreSession(ctx context.Context) (*types.Session, error) {
	stored, err := b.storage.Load()
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, types.ErrNoSession
	}

	b.mu.RLock()
	s, ok := b.sessions[stored.AccessToken]
	b.mu.RUnlock()

	if !ok || s.Expired(b.now()) {
		_ = b.storage.Clear()
		return nil, types.ErrNoSession
	}
	return &s, nil
}

func (b *Backend) SignIn(ctx context.Context, email, password string) (*types.Session, error) {
	email, err := credentials.NormalizeEmail(email)
	if err != nil {
		return nil, types.ErrInvalidCredentials
	}

	b.mu.RLock()
	u, ok := b.users[email]
	b.mu.RUnlock()
	if !ok {
		return nil, types.ErrInvalidCredentials
	}

	match, err := credentials.CheckPassword(u.passwordHash, password)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, types.ErrInvalidCredentials
	}

	return b.newSession(u)
}

func (b *Backend) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*types.Session, error) {
	email, err := credentials.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	hash, err := credentials.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	if _, exists := b.users[email]; exists {
		b.mu.Unlock()
		return nil, types.ErrEmailTaken
	}
	u := user{id: uuid.New(), email: email, passwordHash: hash}
	b.users[email] = u
	b.mu.Unlock()

	return b.newSession(u)
}

func (b *Backend) SignOut(ctx context.Context) error {
	stored, err := b.storage.Load()
	if err != nil {
		return err
	}
	if stored != nil {
		b.mu.Lock()
		delete(b.sessions, stored.AccessToken)
		b.mu.Unlock()
	}
	return b.storage.Clear()
}

// Compile-time interface check
var _ types.Backend = (*Backend)(nil)
