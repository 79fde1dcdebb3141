package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/parlor-chat/parlor/internal/events"
	"github.com/parlor-chat/parlor/internal/models"
	"github.com/parlor-chat/parlor/internal/repository"
)

// In-memory stand-ins for the Mongo repositories and the Redis session
// store. They return copies so the service layer cannot mutate stored
// state except through repository calls, matching the remote boundary.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func copyUser(u *models.User) *models.User {
	cp := *u
	return &cp
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = copyUser(u)
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) List(_ context.Context, includeBanned bool) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.User{}
	for _, u := range r.users {
		if u.Banned && !includeBanned {
			continue
		}
		out = append(out, copyUser(u))
	}
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	r.users[u.ID] = copyUser(u)
	return nil
}

func (r *fakeUserRepo) set(id string, apply func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	apply(u)
	return nil
}

func (r *fakeUserRepo) SetStatus(_ context.Context, id, status string) error {
	return r.set(id, func(u *models.User) { u.Status = status })
}

func (r *fakeUserRepo) SetBanned(_ context.Context, id string, banned bool) error {
	return r.set(id, func(u *models.User) { u.Banned = banned })
}

func (r *fakeUserRepo) SetAdmin(_ context.Context, id string, isAdmin bool) error {
	return r.set(id, func(u *models.User) { u.IsAdmin = isAdmin })
}

type fakeChannelRepo struct {
	mu       sync.Mutex
	channels map[string]*models.Channel
}

func newFakeChannelRepo() *fakeChannelRepo {
	return &fakeChannelRepo{channels: map[string]*models.Channel{}}
}

func copyChannel(c *models.Channel) *models.Channel {
	cp := *c
	cp.Participants = append([]string(nil), c.Participants...)
	cp.Nicknames = map[string]string{}
	for k, v := range c.Nicknames {
		cp.Nicknames[k] = v
	}
	return &cp
}

func (r *fakeChannelRepo) Create(_ context.Context, c *models.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.channels {
		if c.DirectKey != "" && existing.DirectKey == c.DirectKey {
			return repository.ErrDuplicate
		}
		if c.Kind == models.ChannelGroup && existing.Kind == models.ChannelGroup &&
			strings.EqualFold(existing.Name, c.Name) {
			return repository.ErrDuplicate
		}
	}
	if c.Nicknames == nil {
		c.Nicknames = map[string]string{}
	}
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	r.channels[c.ID] = copyChannel(c)
	return nil
}

func (r *fakeChannelRepo) FindByID(_ context.Context, id string) (*models.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.channels[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyChannel(c), nil
}

func (r *fakeChannelRepo) FindByName(_ context.Context, name string) (*models.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.channels {
		if c.Kind == models.ChannelGroup && strings.EqualFold(c.Name, name) {
			return copyChannel(c), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeChannelRepo) FindDirect(_ context.Context, directKey string) (*models.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.channels {
		if c.DirectKey == directKey {
			return copyChannel(c), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeChannelRepo) ListForUser(_ context.Context, userID string) ([]*models.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Channel{}
	for _, c := range r.channels {
		if c.HasParticipant(userID) || (c.Kind == models.ChannelGroup && !c.IsPrivate) {
			out = append(out, copyChannel(c))
		}
	}
	return out, nil
}

func (r *fakeChannelRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.channels[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.channels, id)
	return nil
}

func (r *fakeChannelRepo) with(id string, apply func(*models.Channel)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.channels[id]
	if !ok {
		return repository.ErrNotFound
	}
	apply(c)
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeChannelRepo) AddParticipant(_ context.Context, channelID, userID string) error {
	return r.with(channelID, func(c *models.Channel) {
		if !c.HasParticipant(userID) {
			c.Participants = append(c.Participants, userID)
		}
	})
}

func (r *fakeChannelRepo) RemoveParticipant(_ context.Context, channelID, userID string) error {
	return r.with(channelID, func(c *models.Channel) {
		out := c.Participants[:0]
		for _, id := range c.Participants {
			if id != userID {
				out = append(out, id)
			}
		}
		c.Participants = out
		delete(c.Nicknames, userID)
	})
}

func (r *fakeChannelRepo) SetNickname(_ context.Context, channelID, userID, nickname string) error {
	return r.with(channelID, func(c *models.Channel) {
		c.Nicknames[userID] = nickname
	})
}

func (r *fakeChannelRepo) ClearNickname(_ context.Context, channelID, userID string) error {
	return r.with(channelID, func(c *models.Channel) {
		delete(c.Nicknames, userID)
	})
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[string]*models.Message
	failWith error // when set, every call fails
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: map[string]*models.Message{}}
}

func copyMessage(m *models.Message) *models.Message {
	cp := *m
	cp.Reactions = map[string][]string{}
	for k, v := range m.Reactions {
		cp.Reactions[k] = append([]string(nil), v...)
	}
	return &cp
}

func (r *fakeMessageRepo) Create(_ context.Context, m *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	if m.Reactions == nil {
		m.Reactions = map[string][]string{}
	}
	r.messages[m.ID] = copyMessage(m)
	return nil
}

func (r *fakeMessageRepo) FindByID(_ context.Context, id string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyMessage(m), nil
}

func (r *fakeMessageRepo) ListByChannel(_ context.Context, channelID string, limit int64, before time.Time) ([]*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Message{}
	for _, m := range r.messages {
		if m.ChannelID != channelID {
			continue
		}
		if !before.IsZero() && !m.CreatedAt.Before(before) {
			continue
		}
		out = append(out, copyMessage(m))
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.Before(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[int64(len(out))-limit:]
	}
	return out, nil
}

func (r *fakeMessageRepo) UpdateContent(_ context.Context, id, content string, now time.Time) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	m, ok := r.messages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m.Content = content
	m.Edited = true
	m.UpdatedAt = now
	return copyMessage(m), nil
}

func (r *fakeMessageRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	if _, ok := r.messages[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.messages, id)
	return nil
}

func (r *fakeMessageRepo) DeleteByChannel(_ context.Context, channelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.messages {
		if m.ChannelID == channelID {
			delete(r.messages, id)
		}
	}
	return nil
}

func (r *fakeMessageRepo) AddReaction(_ context.Context, id, emoji, userID string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !m.HasReaction(emoji, userID) {
		if m.Reactions == nil {
			m.Reactions = map[string][]string{}
		}
		m.Reactions[emoji] = append(m.Reactions[emoji], userID)
	}
	return copyMessage(m), nil
}

func (r *fakeMessageRepo) RemoveReaction(_ context.Context, id, emoji, userID string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	set := m.Reactions[emoji]
	out := set[:0]
	for _, uid := range set {
		if uid != userID {
			out = append(out, uid)
		}
	}
	m.Reactions[emoji] = out
	return copyMessage(m), nil
}

type fakeInviteRepo struct {
	mu      sync.Mutex
	invites map[string]*models.AdminInvite // keyed by token
}

func newFakeInviteRepo() *fakeInviteRepo {
	return &fakeInviteRepo{invites: map[string]*models.AdminInvite{}}
}

func (r *fakeInviteRepo) Create(_ context.Context, inv *models.AdminInvite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invites[inv.Token]; ok {
		return repository.ErrDuplicate
	}
	inv.CreatedAt = time.Now().UTC()
	cp := *inv
	r.invites[inv.Token] = &cp
	return nil
}

func (r *fakeInviteRepo) FindByToken(_ context.Context, token string) (*models.AdminInvite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invites[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInviteRepo) Consume(_ context.Context, token string, now time.Time) (*models.AdminInvite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invites[token]
	if !ok || inv.Used || now.After(inv.ExpiresAt) {
		return nil, repository.ErrNotFound
	}
	inv.Used = true
	inv.UsedAt = &now
	cp := *inv
	return &cp, nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	refresh  map[string]string
	presence map[string]string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{refresh: map[string]string{}, presence: map[string]string{}}
}

func (s *fakeSessionStore) SaveRefreshToken(_ context.Context, userID, token string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh[userID] = token
	return nil
}

func (s *fakeSessionStore) GetRefreshToken(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.refresh[userID]; ok {
		return t, nil
	}
	return "", repository.ErrNotFound
}

func (s *fakeSessionStore) DeleteRefreshToken(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refresh, userID)
	return nil
}

func (s *fakeSessionStore) SetPresence(_ context.Context, userID, status string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presence[userID] = status
	return nil
}

func (s *fakeSessionStore) GetPresence(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.presence[userID]; ok {
		return st, nil
	}
	return "", repository.ErrNotFound
}

func (s *fakeSessionStore) ClearPresence(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.presence, userID)
	return nil
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePublisher) Publish(_ context.Context, ev events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *capturePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
