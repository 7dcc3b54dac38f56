package twitchapi

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/onnwee/speedbot/testutil"
)

type staticToken string

func (s staticToken) Get(context.Context) (string, error) { return string(s), nil }

func newTestHelix(t *testing.T) (*HelixClient, *testutil.MockTwitchServer) {
	t.Helper()
	mock := testutil.NewMockTwitchServer(t)
	hc := &HelixClient{
		TokenSource: staticToken("test-token"),
		ClientID:    "test-client-id",
		BaseURL:     mock.URL,
	}
	return hc, mock
}

func TestHelixClient_GetUserID(t *testing.T) {
	hc, mock := newTestHelix(t)
	mock.Handlers["/users"] = func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Client-Id") != "test-client-id" {
			t.Errorf("missing or wrong Client-Id header")
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("missing or wrong Authorization header")
		}
		if got := r.URL.Query().Get("login"); got != "speedbot" {
			t.Errorf("login query param = %s, want speedbot", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"12345","login":"speedbot"}]}`))
	}

	id, err := hc.GetUserID(context.Background(), "speedbot")
	if err != nil {
		t.Fatalf("GetUserID: %v", err)
	}
	if id != "12345" {
		t.Errorf("id = %s, want 12345", id)
	}
}

func TestHelixClient_GetUserID_NotFound(t *testing.T) {
	hc, mock := newTestHelix(t)
	mock.JSON("/users", `{"data":[]}`)
	if _, err := hc.GetUserID(context.Background(), "ghost"); err == nil {
		t.Fatal("expected error for unknown user")
	}
}

func TestHelixClient_GetUserID_EmptyLogin(t *testing.T) {
	hc, _ := newTestHelix(t)
	if _, err := hc.GetUserID(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty login")
	}
}

func TestHelixClient_GetChannelGame(t *testing.T) {
	hc, mock := newTestHelix(t)
	mock.JSON("/channels", `{"data":[{"game_name":"Super Mario 64"}]}`)
	game, err := hc.GetChannelGame(context.Background(), "12345")
	if err != nil {
		t.Fatalf("GetChannelGame: %v", err)
	}
	if game != "Super Mario 64" {
		t.Errorf("game = %q", game)
	}
}

func TestHelixClient_CreateClip(t *testing.T) {
	hc, mock := newTestHelix(t)
	mock.MockClipResponse("clip-abc")
	id, err := hc.CreateClip(context.Background(), "12345")
	if err != nil {
		t.Fatalf("CreateClip: %v", err)
	}
	if id != "clip-abc" {
		t.Errorf("clip id = %s, want clip-abc", id)
	}
}

func TestHelixClient_CreateClip_Offline(t *testing.T) {
	hc, mock := newTestHelix(t)
	mock.Handlers["/clips"] = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}
	if _, err := hc.CreateClip(context.Background(), "12345"); !errors.Is(err, ErrChannelOffline) {
		t.Fatalf("err = %v, want ErrChannelOffline", err)
	}
}
