package api

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pawhaven/adoption-api/internal/core/domain"
)

// memStore backs the repositories the router scenario touches. Each
// repository shares one mutex; ids are sequential per kind.
type memStore struct {
	mu        sync.Mutex
	seq       int
	users     map[string]*domain.User
	pets      map[string]*domain.Pet
	adoptions map[string]*domain.AdoptionRequest
	chats     map[string]*domain.Chat
	messages  []*domain.Message
	revoked   map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[string]*domain.User{},
		pets:      map[string]*domain.Pet{},
		adoptions: map[string]*domain.AdoptionRequest{},
		chats:     map[string]*domain.Chat{},
		revoked:   map[string]bool{},
	}
}

func (m *memStore) nextID(kind string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", kind, m.seq)
}

// --- users ---

type memUsers struct{ *memStore }

func (r memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	cp := *u
	cp.ID = r.nextID("user")
	r.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) FindManyByID(_ context.Context, ids []string) (map[string]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]*domain.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			cp := *u
			out[id] = &cp
		}
	}
	return out, nil
}

func (r memUsers) UpdateProfile(_ context.Context, id string, up domain.ProfileUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if up.Name != nil {
		u.Name = *up.Name
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) SetVerified(_ context.Context, id string, verified bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Verified = verified
	return nil
}

func (r memUsers) List(context.Context, string, int, int) ([]*domain.User, int64, error) {
	return nil, 0, nil
}

func (r memUsers) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

// --- pets ---

type memPets struct{ *memStore }

func (r memPets) Create(_ context.Context, p *domain.Pet) (*domain.Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	cp.ID = r.nextID("pet")
	r.pets[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r memPets) FindByID(_ context.Context, id string) (*domain.Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pets[id]
	if !ok {
		return nil, domain.ErrPetNotFound
	}
	cp := *p
	return &cp, nil
}

func (r memPets) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*domain.Pet, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil || p.OwnerID != ownerID {
		return nil, domain.ErrPetNotFound
	}
	return p, nil
}

func (r memPets) List(_ context.Context, f domain.PetFilter) ([]*domain.Pet, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Pet
	for _, p := range r.pets {
		if f.AvailableOnly && !p.Available {
			continue
		}
		if f.Type != "" && f.Type != p.Type {
			continue
		}
		if f.OwnerID != "" && f.OwnerID != p.OwnerID {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r memPets) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Pet, error) {
	pets, _, err := r.List(ctx, domain.PetFilter{OwnerID: ownerID})
	return pets, err
}

func (r memPets) Update(ctx context.Context, id, ownerID string, up domain.PetUpdate) (*domain.Pet, error) {
	if _, err := r.FindByIDAndOwner(ctx, id, ownerID); err != nil {
		return nil, err
	}
	r.mu.Lock()
	p := r.pets[id]
	if up.Name != nil {
		p.Name = *up.Name
	}
	if up.Available != nil {
		p.Available = *up.Available
	}
	r.mu.Unlock()
	return r.FindByID(ctx, id)
}

func (r memPets) SetAvailable(_ context.Context, id string, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pets[id]
	if !ok {
		return domain.ErrPetNotFound
	}
	p.Available = available
	return nil
}

func (r memPets) AddImage(context.Context, string, string) error    { return nil }
func (r memPets) RemoveImage(context.Context, string, string) error { return nil }

func (r memPets) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pets, id)
	return nil
}

// --- adoptions ---

type memAdoptions struct{ *memStore }

func (r memAdoptions) Create(_ context.Context, a *domain.AdoptionRequest) (*domain.AdoptionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.adoptions {
		if existing.UserID == a.UserID && existing.PetID == a.PetID && existing.Status == domain.AdoptionPending {
			return nil, domain.ErrAdoptionExists
		}
	}
	cp := *a
	cp.ID = r.nextID("adoption")
	r.adoptions[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r memAdoptions) FindByIDAndOwner(_ context.Context, id, ownerID string) (*domain.AdoptionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.adoptions[id]
	if !ok || a.OwnerID != ownerID {
		return nil, domain.ErrAdoptionNotFound
	}
	cp := *a
	return &cp, nil
}

func (r memAdoptions) list(match func(*domain.AdoptionRequest) bool) []*domain.AdoptionRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AdoptionRequest
	for _, a := range r.adoptions {
		if match(a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out
}

func (r memAdoptions) ListByUser(_ context.Context, userID string) ([]*domain.AdoptionRequest, error) {
	return r.list(func(a *domain.AdoptionRequest) bool { return a.UserID == userID }), nil
}

func (r memAdoptions) ListByOwner(_ context.Context, ownerID string) ([]*domain.AdoptionRequest, error) {
	return r.list(func(a *domain.AdoptionRequest) bool { return a.OwnerID == ownerID }), nil
}

func (r memAdoptions) UpdateStatus(_ context.Context, id string, status domain.AdoptionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.adoptions[id]
	if !ok {
		return domain.ErrAdoptionNotFound
	}
	if a.Status != domain.AdoptionPending {
		return domain.ErrAdoptionClosed
	}
	a.Status = status
	return nil
}

func (r memAdoptions) RejectPendingForPet(_ context.Context, petID, exceptID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.adoptions {
		if a.PetID == petID && a.ID != exceptID && a.Status == domain.AdoptionPending {
			a.Status = domain.AdoptionRejected
			n++
		}
	}
	return n, nil
}

func (r memAdoptions) DeleteByPet(context.Context, string) error  { return nil }
func (r memAdoptions) DeleteByUser(context.Context, string) error { return nil }

// --- chats ---

type memChats struct{ *memStore }

func (r memChats) FindOrCreate(_ context.Context, a, b string) (*domain.Chat, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := domain.PairKey(a, b)
	for _, c := range r.chats {
		if c.PairKey == key {
			cp := *c
			return &cp, false, nil
		}
	}
	if a > b {
		a, b = b, a
	}
	now := time.Now().UTC()
	c := &domain.Chat{ID: r.nextID("chat"), User1ID: a, User2ID: b, PairKey: key, CreatedAt: now, UpdatedAt: now}
	r.chats[c.ID] = c
	cp := *c
	return &cp, true, nil
}

func (r memChats) FindByID(_ context.Context, id string) (*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[id]
	if !ok {
		return nil, domain.ErrChatNotFound
	}
	cp := *c
	return &cp, nil
}

func (r memChats) ListByUser(_ context.Context, userID string) ([]*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Chat
	for _, c := range r.chats {
		if c.HasParticipant(userID) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memChats) Touch(_ context.Context, chatID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.chats[chatID]; ok {
		c.LastMessageAt = &at
	}
	return nil
}

func (r memChats) DeleteByUser(context.Context, string) error { return nil }

func (r memChats) CreateMessage(_ context.Context, msg *domain.Message) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *msg
	cp.ID = r.nextID("msg")
	r.messages = append(r.messages, &cp)
	out := cp
	return &out, nil
}

func (r memChats) FindMessage(_ context.Context, chatID, messageID string) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ChatID == chatID && m.ID == messageID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, domain.ErrMessageNotFound
}

func (r memChats) ListMessages(_ context.Context, chatID string) ([]*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Message{}
	for _, m := range r.messages {
		if m.ChatID == chatID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memChats) LastMessage(ctx context.Context, chatID string) (*domain.Message, error) {
	msgs, _ := r.ListMessages(ctx, chatID)
	if len(msgs) == 0 {
		return nil, nil
	}
	return msgs[len(msgs)-1], nil
}

func (r memChats) CountUnread(_ context.Context, chatID, receiverID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.messages {
		if m.ChatID == chatID && m.ReceiverID == receiverID && m.ReadAt == nil {
			n++
		}
	}
	return n, nil
}

func (r memChats) MarkRead(_ context.Context, chatID, messageID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ChatID == chatID && m.ID == messageID && m.ReadAt == nil {
			m.ReadAt = &at
		}
	}
	return nil
}

func (r memChats) MarkAllRead(_ context.Context, chatID, receiverID string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.messages {
		if m.ChatID == chatID && m.ReceiverID == receiverID && m.ReadAt == nil {
			m.ReadAt = &at
			n++
		}
	}
	return n, nil
}

// --- revocations ---

type memRevocations struct{ *memStore }

func (r memRevocations) Revoke(_ context.Context, tokenID string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[tokenID] = true
	return nil
}

func (r memRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.revoked[tokenID], nil
}
