package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/pawhaven/adoption-api/internal/core/domain"
	"github.com/pawhaven/adoption-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users  map[string]*domain.User
	seq    int
	findFn func(id string) (*domain.User, error)
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func (r *stubUserRepo) add(u *domain.User) *domain.User {
	r.users[u.ID] = cloneUser(u)
	return u
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	c := cloneUser(user)
	c.ID = fmt.Sprintf("u%d", r.seq)
	r.users[c.ID] = cloneUser(c)
	return c, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.findFn != nil {
		return r.findFn(id)
	}
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindManyByID(_ context.Context, ids []string) (map[string]*domain.User, error) {
	out := make(map[string]*domain.User)
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = cloneUser(u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id string, up domain.ProfileUpdate) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if up.Name != nil {
		u.Name = *up.Name
	}
	if up.Phone != nil {
		u.Phone = *up.Phone
	}
	if up.Bio != nil {
		u.Bio = *up.Bio
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) SetVerified(_ context.Context, id string, verified bool) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Verified = verified
	return nil
}

func (r *stubUserRepo) List(_ context.Context, role string, _, _ int) ([]*domain.User, int64, error) {
	var out []*domain.User
	for _, u := range r.users {
		if role == "" || u.Role == role {
			out = append(out, cloneUser(u))
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// ---------------------------------------------------------------------------
// Tokens
// ---------------------------------------------------------------------------

type stubRevocations struct {
	revoked map[string]time.Duration
	err     error
}

func newStubRevocations() *stubRevocations {
	return &stubRevocations{revoked: make(map[string]time.Duration)}
}

func (r *stubRevocations) Revoke(_ context.Context, id string, ttl time.Duration) error {
	if r.err != nil {
		return r.err
	}
	r.revoked[id] = ttl
	return nil
}

func (r *stubRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.revoked[id]
	return ok, nil
}

type recordingActivity struct {
	mu      sync.Mutex
	entries []domain.Activity
}

func (r *recordingActivity) Record(a domain.Activity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, a)
}

func (r *recordingActivity) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, string(e.Type)+":"+e.Action)
	}
	return out
}

// ---------------------------------------------------------------------------
// Pets and images
// ---------------------------------------------------------------------------

type stubPetRepo struct {
	pets map[string]*domain.Pet
	seq  int
}

func newStubPetRepo() *stubPetRepo {
	return &stubPetRepo{pets: make(map[string]*domain.Pet)}
}

func clonePet(p *domain.Pet) *domain.Pet {
	c := *p
	c.ImageIDs = append([]string(nil), p.ImageIDs...)
	return &c
}

func (r *stubPetRepo) add(p *domain.Pet) *domain.Pet {
	r.pets[p.ID] = clonePet(p)
	return p
}

func (r *stubPetRepo) Create(_ context.Context, pet *domain.Pet) (*domain.Pet, error) {
	r.seq++
	c := clonePet(pet)
	c.ID = fmt.Sprintf("p%d", r.seq)
	r.pets[c.ID] = clonePet(c)
	return c, nil
}

func (r *stubPetRepo) FindByID(_ context.Context, id string) (*domain.Pet, error) {
	if p, ok := r.pets[id]; ok {
		return clonePet(p), nil
	}
	return nil, domain.ErrPetNotFound
}

func (r *stubPetRepo) FindByIDAndOwner(_ context.Context, id, ownerID string) (*domain.Pet, error) {
	if p, ok := r.pets[id]; ok && p.OwnerID == ownerID {
		return clonePet(p), nil
	}
	return nil, domain.ErrPetNotFound
}

func (r *stubPetRepo) List(_ context.Context, f domain.PetFilter) ([]*domain.Pet, int64, error) {
	var out []*domain.Pet
	for _, p := range r.pets {
		if f.AvailableOnly && !p.Available {
			continue
		}
		if f.Type != "" && p.Type != f.Type {
			continue
		}
		out = append(out, clonePet(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *stubPetRepo) ListByOwner(_ context.Context, ownerID string) ([]*domain.Pet, error) {
	var out []*domain.Pet
	for _, p := range r.pets {
		if p.OwnerID == ownerID {
			out = append(out, clonePet(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubPetRepo) Update(_ context.Context, id, ownerID string, up domain.PetUpdate) (*domain.Pet, error) {
	p, ok := r.pets[id]
	if !ok || p.OwnerID != ownerID {
		return nil, domain.ErrPetNotFound
	}
	if up.Name != nil {
		p.Name = *up.Name
	}
	if up.Age != nil {
		p.Age = *up.Age
	}
	if up.Available != nil {
		p.Available = *up.Available
	}
	return clonePet(p), nil
}

func (r *stubPetRepo) SetAvailable(_ context.Context, id string, available bool) error {
	p, ok := r.pets[id]
	if !ok {
		return domain.ErrPetNotFound
	}
	p.Available = available
	return nil
}

func (r *stubPetRepo) AddImage(_ context.Context, petID, imageID string) error {
	p, ok := r.pets[petID]
	if !ok {
		return domain.ErrPetNotFound
	}
	p.ImageIDs = append(p.ImageIDs, imageID)
	return nil
}

func (r *stubPetRepo) RemoveImage(_ context.Context, petID, imageID string) error {
	p, ok := r.pets[petID]
	if !ok {
		return domain.ErrPetNotFound
	}
	kept := p.ImageIDs[:0]
	for _, id := range p.ImageIDs {
		if id != imageID {
			kept = append(kept, id)
		}
	}
	p.ImageIDs = kept
	return nil
}

func (r *stubPetRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.pets[id]; !ok {
		return domain.ErrPetNotFound
	}
	delete(r.pets, id)
	return nil
}

type stubImageStore struct {
	images map[string]*domain.PetImage
	blobs  map[string][]byte
	seq    int
}

func newStubImageStore() *stubImageStore {
	return &stubImageStore{images: make(map[string]*domain.PetImage), blobs: make(map[string][]byte)}
}

func (s *stubImageStore) Save(_ context.Context, petID, filename, contentType string, r io.Reader) (*domain.PetImage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.seq++
	img := &domain.PetImage{
		ID:          fmt.Sprintf("img%d", s.seq),
		PetID:       petID,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
	}
	s.images[img.ID] = img
	s.blobs[img.ID] = data
	return img, nil
}

func (s *stubImageStore) Find(_ context.Context, petID, imageID string) (*domain.PetImage, error) {
	img, ok := s.images[imageID]
	if !ok || img.PetID != petID {
		return nil, domain.ErrImageNotFound
	}
	return img, nil
}

func (s *stubImageStore) Open(_ context.Context, img *domain.PetImage) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.blobs[img.ID])), nil
}

func (s *stubImageStore) Delete(_ context.Context, petID, imageID string) error {
	img, ok := s.images[imageID]
	if !ok || img.PetID != petID {
		return domain.ErrImageNotFound
	}
	delete(s.images, imageID)
	delete(s.blobs, imageID)
	return nil
}

func (s *stubImageStore) DeleteByPet(_ context.Context, petID string) error {
	for id, img := range s.images {
		if img.PetID == petID {
			delete(s.images, id)
			delete(s.blobs, id)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Adoptions and favorites
// ---------------------------------------------------------------------------

type stubAdoptionRepo struct {
	reqs map[string]*domain.AdoptionRequest
	seq  int
}

func newStubAdoptionRepo() *stubAdoptionRepo {
	return &stubAdoptionRepo{reqs: make(map[string]*domain.AdoptionRequest)}
}

func (r *stubAdoptionRepo) Create(_ context.Context, req *domain.AdoptionRequest) (*domain.AdoptionRequest, error) {
	for _, existing := range r.reqs {
		if existing.UserID == req.UserID && existing.PetID == req.PetID && existing.Status == domain.AdoptionPending {
			return nil, domain.ErrAdoptionExists
		}
	}
	r.seq++
	c := *req
	c.ID = fmt.Sprintf("a%d", r.seq)
	stored := c
	r.reqs[c.ID] = &stored
	return &c, nil
}

func (r *stubAdoptionRepo) FindByIDAndOwner(_ context.Context, id, ownerID string) (*domain.AdoptionRequest, error) {
	if req, ok := r.reqs[id]; ok && req.OwnerID == ownerID {
		c := *req
		return &c, nil
	}
	return nil, domain.ErrAdoptionNotFound
}

func (r *stubAdoptionRepo) list(match func(*domain.AdoptionRequest) bool) []*domain.AdoptionRequest {
	var out []*domain.AdoptionRequest
	for _, req := range r.reqs {
		if match(req) {
			c := *req
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *stubAdoptionRepo) ListByUser(_ context.Context, userID string) ([]*domain.AdoptionRequest, error) {
	return r.list(func(a *domain.AdoptionRequest) bool { return a.UserID == userID }), nil
}

func (r *stubAdoptionRepo) ListByOwner(_ context.Context, ownerID string) ([]*domain.AdoptionRequest, error) {
	return r.list(func(a *domain.AdoptionRequest) bool { return a.OwnerID == ownerID }), nil
}

func (r *stubAdoptionRepo) UpdateStatus(_ context.Context, id string, status domain.AdoptionStatus) error {
	req, ok := r.reqs[id]
	if !ok {
		return domain.ErrAdoptionNotFound
	}
	if req.Status != domain.AdoptionPending {
		return domain.ErrAdoptionClosed
	}
	req.Status = status
	return nil
}

func (r *stubAdoptionRepo) RejectPendingForPet(_ context.Context, petID, exceptID string) (int64, error) {
	var n int64
	for _, req := range r.reqs {
		if req.PetID == petID && req.ID != exceptID && req.Status == domain.AdoptionPending {
			req.Status = domain.AdoptionRejected
			n++
		}
	}
	return n, nil
}

func (r *stubAdoptionRepo) DeleteByPet(_ context.Context, petID string) error {
	for id, req := range r.reqs {
		if req.PetID == petID {
			delete(r.reqs, id)
		}
	}
	return nil
}

func (r *stubAdoptionRepo) DeleteByUser(_ context.Context, userID string) error {
	for id, req := range r.reqs {
		if req.UserID == userID {
			delete(r.reqs, id)
		}
	}
	return nil
}

type stubFavoriteRepo struct {
	favs []*domain.Favorite
}

func (r *stubFavoriteRepo) Create(_ context.Context, fav *domain.Favorite) (*domain.Favorite, error) {
	for _, f := range r.favs {
		if f.UserID == fav.UserID && f.PetID == fav.PetID {
			return nil, domain.ErrFavoriteExists
		}
	}
	c := *fav
	c.ID = fmt.Sprintf("f%d", len(r.favs)+1)
	r.favs = append(r.favs, &c)
	return &c, nil
}

func (r *stubFavoriteRepo) ListByUser(_ context.Context, userID string) ([]*domain.Favorite, error) {
	var out []*domain.Favorite
	for _, f := range r.favs {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *stubFavoriteRepo) remove(match func(*domain.Favorite) bool) int {
	kept := r.favs[:0]
	removed := 0
	for _, f := range r.favs {
		if match(f) {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	r.favs = kept
	return removed
}

func (r *stubFavoriteRepo) Delete(_ context.Context, userID, petID string) error {
	if r.remove(func(f *domain.Favorite) bool { return f.UserID == userID && f.PetID == petID }) == 0 {
		return domain.ErrFavoriteNotFound
	}
	return nil
}

func (r *stubFavoriteRepo) DeleteByPet(_ context.Context, petID string) error {
	r.remove(func(f *domain.Favorite) bool { return f.PetID == petID })
	return nil
}

func (r *stubFavoriteRepo) DeleteByUser(_ context.Context, userID string) error {
	r.remove(func(f *domain.Favorite) bool { return f.UserID == userID })
	return nil
}

// ---------------------------------------------------------------------------
// Chats
// ---------------------------------------------------------------------------

type stubChatRepo struct {
	mu       sync.Mutex
	chats    map[string]*domain.Chat
	messages []*domain.Message
	seq      int
}

func newStubChatRepo() *stubChatRepo {
	return &stubChatRepo{chats: make(map[string]*domain.Chat)}
}

func (r *stubChatRepo) FindOrCreate(_ context.Context, a, b string) (*domain.Chat, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := domain.PairKey(a, b)
	for _, c := range r.chats {
		if c.PairKey == key {
			cc := *c
			return &cc, false, nil
		}
	}
	r.seq++
	now := time.Now().UTC()
	c := &domain.Chat{ID: fmt.Sprintf("c%d", r.seq), User1ID: a, User2ID: b, PairKey: key, CreatedAt: now, UpdatedAt: now}
	r.chats[c.ID] = c
	cc := *c
	return &cc, true, nil
}

func (r *stubChatRepo) FindByID(_ context.Context, id string) (*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.chats[id]; ok {
		cc := *c
		return &cc, nil
	}
	return nil, domain.ErrChatNotFound
}

func (r *stubChatRepo) ListByUser(_ context.Context, userID string) ([]*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Chat
	for _, c := range r.chats {
		if c.HasParticipant(userID) {
			cc := *c
			out = append(out, &cc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubChatRepo) Touch(_ context.Context, chatID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.chats[chatID]; ok {
		c.LastMessageAt = &at
		c.UpdatedAt = at
	}
	return nil
}

func (r *stubChatRepo) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.chats {
		if c.HasParticipant(userID) {
			delete(r.chats, id)
		}
	}
	return nil
}

func (r *stubChatRepo) CreateMessage(_ context.Context, msg *domain.Message) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *msg
	c.ID = fmt.Sprintf("m%d", len(r.messages)+1)
	stored := c
	r.messages = append(r.messages, &stored)
	return &c, nil
}

func (r *stubChatRepo) FindMessage(_ context.Context, chatID, messageID string) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ChatID == chatID && m.ID == messageID {
			c := *m
			return &c, nil
		}
	}
	return nil, domain.ErrMessageNotFound
}

func (r *stubChatRepo) ListMessages(_ context.Context, chatID string) ([]*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Message
	for _, m := range r.messages {
		if m.ChatID == chatID {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *stubChatRepo) LastMessage(ctx context.Context, chatID string) (*domain.Message, error) {
	msgs, _ := r.ListMessages(ctx, chatID)
	if len(msgs) == 0 {
		return nil, domain.ErrMessageNotFound
	}
	return msgs[len(msgs)-1], nil
}

func (r *stubChatRepo) CountUnread(_ context.Context, chatID, receiverID string) (int64, error) {
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

func (r *stubChatRepo) MarkRead(_ context.Context, chatID, messageID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ChatID == chatID && m.ID == messageID {
			if m.ReadAt == nil {
				m.ReadAt = &at
			}
			return nil
		}
	}
	return domain.ErrMessageNotFound
}

func (r *stubChatRepo) MarkAllRead(_ context.Context, chatID, receiverID string, at time.Time) (int64, error) {
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

type relayEvent struct {
	chatID string
	event  string
}

type stubRelay struct {
	events []relayEvent
}

func (r *stubRelay) Broadcast(chatID, event string, _ any) {
	r.events = append(r.events, relayEvent{chatID: chatID, event: event})
}

type stubPublisher struct {
	keys []string
}

func (p *stubPublisher) Publish(key string, _ any) error {
	p.keys = append(p.keys, key)
	return nil
}

// ---------------------------------------------------------------------------
// Settings and activities
// ---------------------------------------------------------------------------

type stubSettingRepo struct {
	settings map[string]*domain.Setting
}

func newStubSettingRepo() *stubSettingRepo {
	return &stubSettingRepo{settings: make(map[string]*domain.Setting)}
}

func (r *stubSettingRepo) Upsert(_ context.Context, s *domain.Setting) (*domain.Setting, error) {
	c := *s
	c.ID = "s-" + s.Key
	r.settings[s.Key] = &c
	out := c
	return &out, nil
}

func (r *stubSettingRepo) FindByKey(_ context.Context, key string) (*domain.Setting, error) {
	if s, ok := r.settings[key]; ok {
		return s, nil
	}
	return nil, domain.ErrSettingNotFound
}

func (r *stubSettingRepo) List(_ context.Context, category string) ([]*domain.Setting, error) {
	var out []*domain.Setting
	for _, s := range r.settings {
		if category == "" || s.Category == category {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *stubSettingRepo) ListPublic(_ context.Context, keys []string) ([]*domain.Setting, error) {
	var out []*domain.Setting
	for _, k := range keys {
		if s, ok := r.settings[k]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *stubSettingRepo) Delete(_ context.Context, key string) error {
	if _, ok := r.settings[key]; !ok {
		return domain.ErrSettingNotFound
	}
	delete(r.settings, key)
	return nil
}

type stubActivityRepo struct {
	lastFilter ports.ActivityFilter
	items      []*domain.Activity
}

func (r *stubActivityRepo) Insert(_ context.Context, a *domain.Activity) error {
	r.items = append(r.items, a)
	return nil
}

func (r *stubActivityRepo) List(_ context.Context, f ports.ActivityFilter) ([]*domain.Activity, int64, error) {
	r.lastFilter = f
	return r.items, int64(len(r.items)), nil
}
