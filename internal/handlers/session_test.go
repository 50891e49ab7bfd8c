package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"postcraft/internal/session"
)

// fakeSessions records the sessions an API issues and ends.
type fakeSessions struct {
	created   []session.Data
	destroyed int
	err       error
}

func (f *fakeSessions) Create(_ context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, *data)
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "sid"})
	return "sid", nil
}

func (f *fakeSessions) Destroy(_ context.Context, w http.ResponseWriter, _ *http.Request) error {
	if f.err != nil {
		return f.err
	}
	f.destroyed++
	return nil
}

func TestIssueDevSession(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		err       error
		want      int
		wantOwner string
	}{
		{"defaults to request owner", "", nil, http.StatusCreated, testOwner},
		{"explicit owner", `{"ownerId":" alice ","email":"a@example.com"}`, nil, http.StatusCreated, "alice"},
		{"blank owner falls back", `{"ownerId":"  "}`, nil, http.StatusCreated, testOwner},
		{"owner too long", `{"ownerId":"` + strings.Repeat("x", maxOwnerIDLen+1) + `"}`, nil, http.StatusBadRequest, ""},
		{"malformed", "{", nil, http.StatusBadRequest, ""},
		{"store failure", "", errors.New("valkey down"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := &fakeSessions{err: tt.err}
			env := newTestEnv(t, func(d *Deps) { d.Sessions = sessions })

			rec := do(env.API.IssueDevSession, http.MethodPost, "/api/session", tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status: got %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
			if tt.wantOwner == "" {
				if len(sessions.created) != 0 {
					t.Errorf("created %d sessions, want none", len(sessions.created))
				}
				return
			}
			if len(sessions.created) != 1 || sessions.created[0].OwnerID != tt.wantOwner {
				t.Fatalf("created: got %+v, want owner %q", sessions.created, tt.wantOwner)
			}
			if got := decodeBody(t, rec)["ownerId"]; got != tt.wantOwner {
				t.Errorf("ownerId: got %v, want %q", got, tt.wantOwner)
			}
			if !strings.Contains(rec.Header().Get("Set-Cookie"), session.CookieName+"=") {
				t.Errorf("Set-Cookie: got %q", rec.Header().Get("Set-Cookie"))
			}
		})
	}
}

func TestIssueDevSessionWithoutStore(t *testing.T) {
	env := newTestEnv(t)
	rec := do(env.API.IssueDevSession, http.MethodPost, "/api/session", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestSignOut(t *testing.T) {
	tests := []struct {
		name     string
		sessions *fakeSessions
		want     int
	}{
		{"ends session", &fakeSessions{}, http.StatusOK},
		{"store failure", &fakeSessions{err: errors.New("valkey down")}, http.StatusInternalServerError},
		{"no store configured", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, func(d *Deps) {
				if tt.sessions != nil {
					d.Sessions = tt.sessions
				}
			})

			rec := do(env.API.SignOut, http.MethodDelete, "/api/session", "")
			if rec.Code != tt.want {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusOK && decodeBody(t, rec)["ok"] != true {
				t.Errorf("body: got %s", rec.Body.String())
			}
			if tt.sessions != nil && tt.sessions.err == nil && tt.sessions.destroyed != 1 {
				t.Errorf("destroyed: got %d, want 1", tt.sessions.destroyed)
			}
		})
	}
}
