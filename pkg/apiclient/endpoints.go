package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Phone    string `json:"phone,omitempty"`
	Verified bool   `json:"verified"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

type Pet struct {
	ID          string   `json:"id"`
	OwnerID     string   `json:"owner_id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Breed       string   `json:"breed,omitempty"`
	Age         int      `json:"age"`
	Size        string   `json:"size,omitempty"`
	Gender      string   `json:"gender,omitempty"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location,omitempty"`
	Available   bool     `json:"available"`
	ImageIDs    []string `json:"image_ids"`
}

type PetPage struct {
	Items      []*Pet `json:"items"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
}

// PetQuery narrows ListPets. Zero values are omitted.
type PetQuery struct {
	Type, Size, Gender, Breed, Q string
	Page, Limit                  int
}

func (q PetQuery) values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("type", q.Type)
	set("size", q.Size)
	set("gender", q.Gender)
	set("breed", q.Breed)
	set("q", q.Q)
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

type Chat struct {
	ID      string `json:"id"`
	User1ID string `json:"user1_id"`
	User2ID string `json:"user2_id"`
}

type Message struct {
	ID         string     `json:"id"`
	ChatID     string     `json:"chat_id"`
	SenderID   string     `json:"sender_id"`
	ReceiverID string     `json:"receiver_id"`
	Content    string     `json:"content"`
	CreatedAt  time.Time  `json:"created_at"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
}

type AdoptionRequest struct {
	ID      string `json:"id"`
	PetID   string `json:"pet_id"`
	UserID  string `json:"user_id"`
	OwnerID string `json:"owner_id"`
	Message string `json:"message,omitempty"`
	Status  string `json:"status"`
}

func (c *Client) Register(ctx context.Context, in RegisterRequest) (*User, error) {
	var out struct {
		User *User `json:"user"`
	}
	if err := c.Do(ctx, http.MethodPost, "/api/auth/register", in, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// Login signs in. Store the returned token in the client's CredentialSource
// to use it for WithAuth calls.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var out Session
	body := map[string]string{"email": email, "password": password}
	if err := c.Do(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, WithAuth())
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out struct {
		User *User `json:"user"`
	}
	if err := c.Do(ctx, http.MethodGet, "/api/auth/me", nil, &out, WithAuth()); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) ListPets(ctx context.Context, q PetQuery) (*PetPage, error) {
	var out PetPage
	if err := c.Do(ctx, http.MethodGet, "/api/pets", nil, &out, WithQuery(q.values())); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyPets(ctx context.Context) ([]*Pet, error) {
	var out []*Pet
	if err := c.Do(ctx, http.MethodGet, "/api/pets/my-pets", nil, &out, WithAuth()); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreatePet(ctx context.Context, pet Pet) (*Pet, error) {
	var out Pet
	if err := c.Do(ctx, http.MethodPost, "/api/pets", pet, &out, WithAuth()); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RequestAdoption(ctx context.Context, petID, message string) (*AdoptionRequest, error) {
	var out AdoptionRequest
	body := map[string]string{"petId": petID, "message": message}
	if err := c.Do(ctx, http.MethodPost, "/api/adoptions", body, &out, WithAuth()); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateChat(ctx context.Context, otherUserID string) (*Chat, error) {
	var out Chat
	if err := c.Do(ctx, http.MethodPost, "/api/chats/create", map[string]string{"userId": otherUserID}, &out, WithAuth()); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID, receiverID, content string) (*Message, error) {
	var out Message
	body := map[string]string{"content": content, "receiverId": receiverID}
	if err := c.Do(ctx, http.MethodPost, "/api/chats/"+url.PathEscape(chatID)+"/messages", body, &out, WithAuth()); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Messages(ctx context.Context, chatID string) ([]*Message, error) {
	var out []*Message
	if err := c.Do(ctx, http.MethodGet, "/api/chats/"+url.PathEscape(chatID)+"/messages", nil, &out, WithAuth()); err != nil {
		return nil, err
	}
	return out, nil
}
