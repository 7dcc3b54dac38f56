package twitchapi

import (
	"context"
	"testing"
	"time"

	"github.com/onnwee/speedbot/testutil"
)

func TestTokenSource_FetchAndCache(t *testing.T) {
	mock := testutil.NewMockTwitchServer(t)
	mock.MockOAuthTokenResponse("app-token-1", 3600)

	ts := &TokenSource{
		ClientID:     "id",
		ClientSecret: "secret",
		TokenURL:     mock.URL + "/oauth2/token",
	}

	tok, err := ts.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if tok != "app-token-1" {
		t.Errorf("token = %q, want app-token-1", tok)
	}

	// A fresh token is served from cache; swap the server response to prove
	// no second request happens.
	mock.MockOAuthTokenResponse("app-token-2", 3600)
	tok, err = ts.Get(context.Background())
	if err != nil {
		t.Fatalf("Get (cached): %v", err)
	}
	if tok != "app-token-1" {
		t.Errorf("token = %q, want cached app-token-1", tok)
	}
}

func TestTokenSource_RefreshesNearExpiry(t *testing.T) {
	mock := testutil.NewMockTwitchServer(t)
	// expires_in below the 60s freshness buffer forces a refresh on next Get.
	mock.MockOAuthTokenResponse("short-token", 30)

	ts := &TokenSource{
		ClientID:     "id",
		ClientSecret: "secret",
		TokenURL:     mock.URL + "/oauth2/token",
	}
	if _, err := ts.Get(context.Background()); err != nil {
		t.Fatalf("Get: %v", err)
	}

	mock.MockOAuthTokenResponse("fresh-token", 3600)
	tok, err := ts.Get(context.Background())
	if err != nil {
		t.Fatalf("Get (refresh): %v", err)
	}
	if tok != "fresh-token" {
		t.Errorf("token = %q, want fresh-token", tok)
	}
}

func TestTokenSource_MissingCredentials(t *testing.T) {
	ts := &TokenSource{}
	if _, err := ts.Get(context.Background()); err == nil {
		t.Fatal("expected error without client id/secret")
	}
}

func TestComputeExpiry(t *testing.T) {
	got := ComputeExpiry(3600)
	want := time.Now().Add(time.Hour)
	if diff := got.Sub(want.UTC()); diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("ComputeExpiry off by %v", diff)
	}
}
