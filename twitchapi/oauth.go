package twitchapi

import (
	"context"
	"errors"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// RefreshUserToken exchanges a refresh token for a fresh user access token
// through the standard OAuth2 refresh grant. Used by the scheduled refresher
// to keep the bot's chat identity valid.
func RefreshUserToken(ctx context.Context, clientID, clientSecret, refreshToken string) (access, refresh string, expiry time.Time, err error) {
	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return "", "", time.Time{}, errors.New("missing client credentials or refresh token")
	}
	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     endpoints.Twitch,
	}
	tok, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return "", "", time.Time{}, err
	}
	newRefresh := tok.RefreshToken
	if newRefresh == "" {
		newRefresh = refreshToken
	}
	return tok.AccessToken, newRefresh, tok.Expiry, nil
}
