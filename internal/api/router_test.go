package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pawhaven/adoption-api/internal/api/handler"
	"github.com/pawhaven/adoption-api/internal/core/service"
	"github.com/pawhaven/adoption-api/pkg/apiclient"
)

type testServer struct {
	*httptest.Server
	store *memStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zerolog.Nop()
	store := newMemStore()
	users := memUsers{store}
	pets := memPets{store}
	adoptions := memAdoptions{store}
	chats := memChats{store}
	revoked := memRevocations{store}

	tokens, err := service.NewTokenService("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	identity := service.NewIdentityResolver(tokens, users, revoked, "token", log)

	e := NewRouter(Deps{
		Log:       log,
		Identity:  identity,
		Cookie:    handler.CookieOptions{Name: "token"},
		Auth:      service.NewAuthService(users, tokens, revoked, nil, log),
		Pets:      service.NewPetService(pets, nil, adoptions, nil, nil, 0, log),
		Adoptions: service.NewAdoptionService(adoptions, pets, nil, nil, log),
		Chats:     service.NewChatService(chats, users, nil, log),
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, store: store}
}

// session registers and logs in an account, returning a client bound to it.
func (s *testServer) session(t *testing.T, name, email, role string) (*apiclient.Client, *apiclient.User) {
	t.Helper()
	ctx := context.Background()
	creds := &apiclient.TokenStore{}
	c := apiclient.New(s.URL, apiclient.WithCredentials(creds))

	if _, err := c.Register(ctx, apiclient.RegisterRequest{
		Name: name, Email: email, Password: "secret123", Role: role, Phone: "555-0100",
	}); err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	sess, err := c.Login(ctx, email, "secret123")
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	if sess.Token == "" || sess.User == nil || sess.User.Role != role {
		t.Fatalf("unexpected session: %+v", sess)
	}
	creds.Set(sess.Token)
	return c, sess.User
}

func TestRouter_AdoptionAndChatFlow(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	alice, aliceUser := srv.session(t, "Alice", "alice@example.com", "USER")
	bob, bobUser := srv.session(t, "Bob", "bob@example.com", "OWNER")

	if _, err := alice.MyPets(ctx); apiclient.StatusOf(err) != http.StatusForbidden {
		t.Fatalf("USER on my-pets: expected 403, got %v", err)
	}

	pet, err := bob.CreatePet(ctx, apiclient.Pet{Name: "Rex", Type: "dog", Age: 3})
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}
	if pet.OwnerID != bobUser.ID || !pet.Available {
		t.Fatalf("unexpected pet: %+v", pet)
	}

	mine, err := bob.MyPets(ctx)
	if err != nil || len(mine) != 1 || mine[0].ID != pet.ID {
		t.Fatalf("my-pets: %v %+v", err, mine)
	}

	// The public listing needs no credentials at all.
	anon := apiclient.New(srv.URL)
	page, err := anon.ListPets(ctx, apiclient.PetQuery{Type: "dog"})
	if err != nil {
		t.Fatalf("list pets: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].ID != pet.ID {
		t.Fatalf("unexpected page: %+v", page)
	}

	ar, err := alice.RequestAdoption(ctx, pet.ID, "I have a garden")
	if err != nil {
		t.Fatalf("request adoption: %v", err)
	}
	if ar.Status != "pending" || ar.OwnerID != bobUser.ID || ar.UserID != aliceUser.ID {
		t.Fatalf("unexpected adoption request: %+v", ar)
	}
	if _, err := alice.RequestAdoption(ctx, pet.ID, "again"); apiclient.StatusOf(err) != http.StatusConflict {
		t.Fatalf("duplicate request: expected 409, got %v", err)
	}
	if _, err := bob.RequestAdoption(ctx, pet.ID, ""); apiclient.StatusOf(err) != http.StatusForbidden {
		t.Fatalf("OWNER requesting adoption: expected 403, got %v", err)
	}

	chat, err := alice.CreateChat(ctx, bobUser.ID)
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}
	again, err := bob.CreateChat(ctx, aliceUser.ID)
	if err != nil || again.ID != chat.ID {
		t.Fatalf("chat not reused: %v %+v", err, again)
	}

	msg, err := alice.SendMessage(ctx, chat.ID, bobUser.ID, "Is Rex still available?")
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if msg.SenderID != aliceUser.ID || msg.ReceiverID != bobUser.ID {
		t.Fatalf("unexpected message: %+v", msg)
	}

	msgs, err := bob.Messages(ctx, chat.ID)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "Is Rex still available?" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
}

func TestRouter_LogoutRevokesToken(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	alice, _ := srv.session(t, "Alice", "alice@example.com", "USER")

	me, err := alice.Me(ctx)
	if err != nil || me.Email != "alice@example.com" {
		t.Fatalf("me: %v %+v", err, me)
	}
	if err := alice.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := alice.Me(ctx); apiclient.StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("me after logout: expected 401, got %v", err)
	}
}

func TestRouter_GateOnPages(t *testing.T) {
	srv := newTestServer(t)
	_, _ = srv.session(t, "Bob", "bob@example.com", "OWNER")

	ctx := context.Background()
	sess, err := apiclient.New(srv.URL).Login(ctx, "bob@example.com", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}

	resp, err := client.Get(srv.URL + "/dashboard/listings?tab=1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, "/auth/signin?callbackUrl=") || !strings.Contains(loc, "%2Fdashboard%2Flistings") {
		t.Fatalf("unexpected location %q", loc)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	req.Header.Set("X-User-Role", "ADMIN")
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["user_id"] != sess.User.ID || body["role"] != "OWNER" {
		t.Fatalf("unexpected page body: %v", body)
	}
}
