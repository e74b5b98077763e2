// Package memory implements every repository contract over in-process maps.
// It has no durability and ignores transactions; it backs tests and local
// experiments. The exported *Err fields make the matching repository fail.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Store holds the state shared by the repositories it hands out.
type Store struct {
	mu sync.Mutex

	users      map[string]*models.User
	refresh    map[string]models.RefreshToken
	scopes     map[string]*models.Scope
	userScopes map[string]map[string]bool
	resets     map[string]models.PasswordReset

	UsersErr          error
	RefreshTokensErr  error
	CreateRefreshErr  error
	ScopesErr         error
	PasswordResetsErr error
}

// NewStore returns an empty store seeded with the given scope ids.
func NewStore(scopeIDs ...string) *Store {
	s := &Store{
		users:      map[string]*models.User{},
		refresh:    map[string]models.RefreshToken{},
		scopes:     map[string]*models.Scope{},
		userScopes: map[string]map[string]bool{},
		resets:     map[string]models.PasswordReset{},
	}
	for _, id := range scopeIDs {
		s.scopes[id] = &models.Scope{ID: id, CreatedAt: time.Now()}
	}
	return s
}

// AddUser stores u as is and assigns scopeIDs, creating missing scopes.
func (s *Store) AddUser(u models.User, scopeIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = &u
	for _, id := range scopeIDs {
		if s.scopes[id] == nil {
			s.scopes[id] = &models.Scope{ID: id, CreatedAt: time.Now()}
		}
		if s.userScopes[u.ID] == nil {
			s.userScopes[u.ID] = map[string]bool{}
		}
		s.userScopes[u.ID][id] = true
	}
}

// User returns the stored user, deleted or not.
func (s *Store) User(id string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, false
	}
	return *u, true
}

func (s *Store) RefreshToken(id string) (models.RefreshToken, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.refresh[id]
	return t, ok
}

// RefreshTokenCount counts the stored refresh tokens of userID.
func (s *Store) RefreshTokenCount(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.refresh {
		if t.UserID == userID {
			n++
		}
	}
	return n
}

func (s *Store) PasswordReset(userID string) (models.PasswordReset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resets[userID]
	return r, ok
}

func (s *Store) Users() *UsersRepository                   { return &UsersRepository{s} }
func (s *Store) RefreshTokens() *RefreshTokensRepository   { return &RefreshTokensRepository{s} }
func (s *Store) Scopes() *ScopesRepository                 { return &ScopesRepository{s} }
func (s *Store) PasswordResets() *PasswordResetsRepository { return &PasswordResetsRepository{s} }

type UsersRepository struct{ s *Store }

func (r *UsersRepository) live(id string) (*models.User, error) {
	u, ok := r.s.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (r *UsersRepository) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.UsersErr != nil {
		return r.s.UsersErr
	}
	for _, x := range r.s.users {
		if x.DeletedAt == nil && x.Email == u.Email {
			return common.ErrorAlreadyExists
		}
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *UsersRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.UsersErr != nil {
		return nil, r.s.UsersErr
	}
	for _, u := range r.s.users {
		if u.DeletedAt == nil && u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *UsersRepository) GetUserByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.UsersErr != nil {
		return nil, r.s.UsersErr
	}
	u, err := r.live(id)
	if err != nil {
		return nil, err
	}
	cp := *u
	return &cp, nil
}

func (r *UsersRepository) UpdatePassword(_ context.Context, id, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.UsersErr != nil {
		return r.s.UsersErr
	}
	u, err := r.live(id)
	if err != nil {
		return err
	}
	u.Password = hash
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *UsersRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.UsersErr != nil {
		return r.s.UsersErr
	}
	u, err := r.live(id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	u.DeletedAt = &now
	return nil
}

// List orders live users by id; the Sort and Desc fields of page are ignored.
func (r *UsersRepository) List(_ context.Context, page models.Page) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.UsersErr != nil {
		return nil, r.s.UsersErr
	}
	out := []models.User{}
	for _, u := range r.s.users {
		if u.DeletedAt == nil {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	page = page.Normalize()
	from := min(page.Offset(), len(out))
	to := min(from+page.Size, len(out))
	return out[from:to], nil
}

func (r *UsersRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.UsersErr != nil {
		return 0, r.s.UsersErr
	}
	var n int64
	for _, u := range r.s.users {
		if u.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

type RefreshTokensRepository struct{ s *Store }

func (r *RefreshTokensRepository) Create(_ context.Context, t *models.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.CreateRefreshErr != nil {
		return r.s.CreateRefreshErr
	}
	if r.s.RefreshTokensErr != nil {
		return r.s.RefreshTokensErr
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	r.s.refresh[t.ID] = *t
	return nil
}

func (r *RefreshTokensRepository) Consume(_ context.Context, id string) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.RefreshTokensErr != nil {
		return nil, r.s.RefreshTokensErr
	}
	t, ok := r.s.refresh[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(r.s.refresh, id)
	return &t, nil
}

func (r *RefreshTokensRepository) DeleteByUser(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.RefreshTokensErr != nil {
		return r.s.RefreshTokensErr
	}
	for id, t := range r.s.refresh {
		if t.UserID == userID {
			delete(r.s.refresh, id)
		}
	}
	return nil
}

type ScopesRepository struct{ s *Store }

func (r *ScopesRepository) Create(_ context.Context, id string) (*models.Scope, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ScopesErr != nil {
		return nil, r.s.ScopesErr
	}
	if _, ok := r.s.scopes[id]; ok {
		return nil, common.ErrorAlreadyExists
	}
	sc := &models.Scope{ID: id, CreatedAt: time.Now().UTC()}
	r.s.scopes[id] = sc
	cp := *sc
	return &cp, nil
}

func (r *ScopesRepository) Get(_ context.Context, id string) (*models.Scope, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ScopesErr != nil {
		return nil, r.s.ScopesErr
	}
	sc, ok := r.s.scopes[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *sc
	return &cp, nil
}

func (r *ScopesRepository) List(_ context.Context) ([]models.Scope, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ScopesErr != nil {
		return nil, r.s.ScopesErr
	}
	out := []models.Scope{}
	for _, sc := range r.s.scopes {
		out = append(out, *sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Delete drops the scope; assignments to it stop counting.
func (r *ScopesRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ScopesErr != nil {
		return r.s.ScopesErr
	}
	if _, ok := r.s.scopes[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.scopes, id)
	return nil
}

func (r *ScopesRepository) ScopesOf(_ context.Context, userID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ScopesErr != nil {
		return nil, r.s.ScopesErr
	}
	out := []string{}
	for id := range r.s.userScopes[userID] {
		if _, live := r.s.scopes[id]; live {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *ScopesRepository) AddToUser(_ context.Context, userID, scopeID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ScopesErr != nil {
		return r.s.ScopesErr
	}
	if r.s.userScopes[userID] == nil {
		r.s.userScopes[userID] = map[string]bool{}
	}
	r.s.userScopes[userID][scopeID] = true
	return nil
}

func (r *ScopesRepository) RemoveFromUser(_ context.Context, userID, scopeID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ScopesErr != nil {
		return r.s.ScopesErr
	}
	if !r.s.userScopes[userID][scopeID] {
		return common.ErrorNotFound
	}
	delete(r.s.userScopes[userID], scopeID)
	return nil
}

type PasswordResetsRepository struct{ s *Store }

func (r *PasswordResetsRepository) Upsert(_ context.Context, reset *models.PasswordReset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.PasswordResetsErr != nil {
		return r.s.PasswordResetsErr
	}
	r.s.resets[reset.UserID] = *reset
	return nil
}

func (r *PasswordResetsRepository) FindByToken(_ context.Context, token string, now time.Time) (*models.PasswordReset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.PasswordResetsErr != nil {
		return nil, r.s.PasswordResetsErr
	}
	for _, pr := range r.s.resets {
		if pr.Token != token || !pr.ExpiresAt.After(now) {
			continue
		}
		if u, ok := r.s.users[pr.UserID]; ok && u.DeletedAt == nil {
			cp := pr
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *PasswordResetsRepository) DeleteByUser(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.PasswordResetsErr != nil {
		return r.s.PasswordResetsErr
	}
	delete(r.s.resets, userID)
	return nil
}
