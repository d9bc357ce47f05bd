package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/mimic/internal/replies"
	"github.com/MikeSquared-Agency/mimic/internal/store"
	"github.com/MikeSquared-Agency/mimic/internal/synth"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUsers struct {
	users    map[uuid.UUID]store.User
	comments map[uuid.UUID][]store.Comment
	sessions map[uuid.UUID]store.Session
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		users:    make(map[uuid.UUID]store.User),
		comments: make(map[uuid.UUID][]store.Comment),
		sessions: make(map[uuid.UUID]store.Session),
	}
}

func (f *fakeUsers) CreateUser(_ context.Context, email, name string) (store.User, error) {
	u := store.User{ID: uuid.New(), Email: email, Name: name, CreatedAt: time.Now()}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetUser(_ context.Context, id uuid.UUID) (store.User, error) {
	u, ok := f.users[id]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) AddComment(_ context.Context, userID uuid.UUID, body string) (store.Comment, error) {
	if _, ok := f.users[userID]; !ok {
		return store.Comment{}, store.ErrNotFound
	}
	c := store.Comment{ID: uuid.New(), UserID: userID, Body: body}
	f.comments[userID] = append(f.comments[userID], c)
	return c, nil
}

func (f *fakeUsers) ListComments(_ context.Context, userID uuid.UUID) ([]store.Comment, error) {
	return f.comments[userID], nil
}

func (f *fakeUsers) DeleteComment(_ context.Context, userID, commentID uuid.UUID) error {
	list := f.comments[userID]
	for i, c := range list {
		if c.ID == commentID {
			f.comments[userID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeUsers) GetSession(_ context.Context, userID, sessionID uuid.UUID) (store.Session, error) {
	s, ok := f.sessions[sessionID]
	if !ok || s.UserID != userID {
		return store.Session{}, store.ErrNotFound
	}
	return s, nil
}

type fakeReplier struct {
	got replies.Request
	err error
}

func (f *fakeReplier) Reply(_ context.Context, req replies.Request) (replies.Reply, error) {
	f.got = req
	if f.err != nil {
		return replies.Reply{}, f.err
	}
	return replies.Reply{Reply: "So real.", Source: synth.SourceTemplate, SessionID: "s-1", Advisory: true}, nil
}

func newTestServer(token string) (*Server, *fakeUsers, *fakeReplier) {
	users := newFakeUsers()
	rep := &fakeReplier{}
	srv := NewServer(8760, token, users, rep, StatusInfo{Generator: "templates", Ledger: "memory", Index: "none"}, discardLogger())
	return srv, users, rep
}

func do(srv *Server, method, path, body string, header ...string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv, _, _ := newTestServer("")
	w := do(srv, "GET", "/health", "")

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv, _, _ := newTestServer("secret")
	w := do(srv, "GET", "/api/v1/mimic/status", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 without auth, got %d", w.Code)
	}

	var body struct {
		Agent  string     `json:"agent"`
		Config StatusInfo `json:"config"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Agent != "mimic" {
		t.Errorf("expected agent mimic, got %q", body.Agent)
	}
	if body.Config.Generator != "templates" {
		t.Errorf("expected generator templates, got %q", body.Config.Generator)
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv, _, _ := newTestServer("")
	if w := do(srv, "GET", "/nonexistent", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestBearerAuth(t *testing.T) {
	srv, _, _ := newTestServer("secret")
	body := `{"email":"a@example.com"}`

	if w := do(srv, "POST", "/api/v1/users", body); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}
	if w := do(srv, "POST", "/api/v1/users", body, "Authorization", "Bearer wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong token, got %d", w.Code)
	}
	if w := do(srv, "POST", "/api/v1/users", body, "Authorization", "Bearer secret"); w.Code != http.StatusCreated {
		t.Errorf("expected 201 with token, got %d", w.Code)
	}
}

func TestUserAndCommentLifecycle(t *testing.T) {
	srv, _, _ := newTestServer("")

	w := do(srv, "POST", "/api/v1/users", `{"email":"a@example.com","name":"Ada"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create user: expected 201, got %d", w.Code)
	}
	var u store.User
	json.NewDecoder(w.Body).Decode(&u)

	base := "/api/v1/users/" + u.ID.String()
	if w := do(srv, "GET", base, ""); w.Code != http.StatusOK {
		t.Errorf("get user: expected 200, got %d", w.Code)
	}

	w = do(srv, "POST", base+"/comments", `{"comment":"Felt this."}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("add comment: expected 201, got %d", w.Code)
	}
	var c store.Comment
	json.NewDecoder(w.Body).Decode(&c)
	if c.Body != "Felt this." {
		t.Errorf("expected comment body, got %q", c.Body)
	}

	w = do(srv, "GET", base+"/comments", "")
	var list struct {
		Count int `json:"count"`
	}
	json.NewDecoder(w.Body).Decode(&list)
	if list.Count != 1 {
		t.Errorf("expected 1 comment, got %d", list.Count)
	}

	if w := do(srv, "DELETE", base+"/comments/"+c.ID.String(), ""); w.Code != http.StatusNoContent {
		t.Errorf("delete comment: expected 204, got %d", w.Code)
	}
	if w := do(srv, "DELETE", base+"/comments/"+c.ID.String(), ""); w.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", w.Code)
	}
}

func TestValidation(t *testing.T) {
	srv, _, _ := newTestServer("")

	tests := []struct {
		name, method, path, body string
		want                     int
	}{
		{"bad json", "POST", "/api/v1/users", "{", http.StatusBadRequest},
		{"missing email", "POST", "/api/v1/users", `{"name":"x"}`, http.StatusBadRequest},
		{"bad user id", "GET", "/api/v1/users/nope/comments", "", http.StatusBadRequest},
		{"empty comment", "POST", "/api/v1/users/" + uuid.NewString() + "/comments", `{"comment":"  "}`, http.StatusBadRequest},
		{"unknown user", "POST", "/api/v1/users/" + uuid.NewString() + "/comments", `{"comment":"hi"}`, http.StatusNotFound},
		{"unknown session", "GET", "/api/v1/users/" + uuid.NewString() + "/sessions/" + uuid.NewString(), "", http.StatusNotFound},
		{"bad session id", "GET", "/api/v1/users/" + uuid.NewString() + "/sessions/nope", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(srv, tt.method, tt.path, tt.body); w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestGetSession(t *testing.T) {
	srv, users, _ := newTestServer("")
	uid, sid := uuid.New(), uuid.New()
	users.sessions[sid] = store.Session{
		ID:      sid,
		UserID:  uid,
		Queries: []store.Exchange{{UserQuery: "post", BotResponse: "So real."}},
	}

	w := do(srv, "GET", "/api/v1/users/"+uid.String()+"/sessions/"+sid.String(), "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var sess store.Session
	json.NewDecoder(w.Body).Decode(&sess)
	if len(sess.Queries) != 1 || sess.Queries[0].BotResponse != "So real." {
		t.Errorf("unexpected session %+v", sess)
	}
}

func TestCreateReply(t *testing.T) {
	srv, _, rep := newTestServer("")
	uid := uuid.NewString()

	w := do(srv, "POST", "/api/v1/replies", `{"user_id":"`+uid+`","session_id":"s-0","post":"Shipped it."}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got replies.Reply
	json.NewDecoder(w.Body).Decode(&got)
	if got.Reply != "So real." || got.Source != synth.SourceTemplate || got.SessionID != "s-1" {
		t.Errorf("unexpected reply %+v", got)
	}
	if rep.got.UserID != uid || rep.got.SessionID != "s-0" || rep.got.Post != "Shipped it." {
		t.Errorf("unexpected request %+v", rep.got)
	}
	if rep.got.RequestID == "" {
		t.Error("expected request id from middleware")
	}
}

func TestCreateReply_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid user", replies.ErrInvalidUserID, http.StatusBadRequest},
		{"empty post", replies.ErrEmptyPost, http.StatusBadRequest},
		{"unknown user", store.ErrNotFound, http.StatusNotFound},
		{"store down", io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _, rep := newTestServer("")
			rep.err = tt.err
			if w := do(srv, "POST", "/api/v1/replies", `{"user_id":"x","post":"p"}`); w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}
