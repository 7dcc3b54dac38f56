// Package srcom is a minimal speedrun.com REST API client covering the calls
// the bot needs: game search, category/level/variable listings, filtered
// leaderboards and user lookups. Endpoint ordering is the catalog's own and
// is preserved; callers rely on it for first-match resolution.
package srcom

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/onnwee/speedbot/telemetry"
)

// DefaultBaseURL is the public speedrun.com API root.
const DefaultBaseURL = "https://www.speedrun.com/api/v1"

// Client talks to the speedrun.com API. The zero value with a BaseURL works;
// HTTPClient defaults to http.DefaultClient.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
}

func (c *Client) http() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) base() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}

// getJSON performs a GET and decodes the body into out. Any transport error,
// non-2xx status or malformed body comes back as a single wrapped error; the
// caller treats all of them as a transient catalog failure.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.base() + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("srcom request %s: %w", path, err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	telemetry.Inc(telemetry.CatalogRequests)
	resp, err := c.http().Do(req)
	if err != nil {
		telemetry.Inc(telemetry.CatalogErrors)
		return fmt.Errorf("srcom get %s: %w", path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", slog.Any("err", err))
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		telemetry.Inc(telemetry.CatalogErrors)
		return fmt.Errorf("srcom get %s: unexpected status %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		telemetry.Inc(telemetry.CatalogErrors)
		return fmt.Errorf("srcom decode %s: %w", path, err)
	}
	return nil
}

// SearchGames queries the catalog's name search. Result order is the remote
// relevance ranking and must not be re-sorted locally.
func (c *Client) SearchGames(ctx context.Context, name string, maxResults int) ([]Game, error) {
	if maxResults <= 0 {
		maxResults = 5
	}
	q := url.Values{}
	q.Set("name", name)
	q.Set("max", strconv.Itoa(maxResults))
	var body struct {
		Data []gameWire `json:"data"`
	}
	if err := c.getJSON(ctx, "/games", q, &body); err != nil {
		return nil, err
	}
	out := make([]Game, 0, len(body.Data))
	for _, g := range body.Data {
		out = append(out, g.toGame())
	}
	return out, nil
}

// ListCategories returns a game's categories in catalog order.
func (c *Client) ListCategories(ctx context.Context, gameID string) ([]Category, error) {
	if gameID == "" {
		return nil, fmt.Errorf("gameID empty")
	}
	var body struct {
		Data []categoryWire `json:"data"`
	}
	if err := c.getJSON(ctx, "/games/"+url.PathEscape(gameID)+"/categories", nil, &body); err != nil {
		return nil, err
	}
	out := make([]Category, 0, len(body.Data))
	for _, cw := range body.Data {
		out = append(out, cw.toCategory())
	}
	return out, nil
}

// ListLevels returns a game's levels in catalog order.
func (c *Client) ListLevels(ctx context.Context, gameID string) ([]Level, error) {
	if gameID == "" {
		return nil, fmt.Errorf("gameID empty")
	}
	var body struct {
		Data []levelWire `json:"data"`
	}
	if err := c.getJSON(ctx, "/games/"+url.PathEscape(gameID)+"/levels", nil, &body); err != nil {
		return nil, err
	}
	out := make([]Level, 0, len(body.Data))
	for _, lv := range body.Data {
		out = append(out, Level{ID: lv.ID, Name: lv.Name})
	}
	return out, nil
}

// ListVariables returns a category's variables in catalog order, each with
// its values in catalog order.
func (c *Client) ListVariables(ctx context.Context, categoryID string) ([]Variable, error) {
	if categoryID == "" {
		return nil, fmt.Errorf("categoryID empty")
	}
	var body struct {
		Data []variableWire `json:"data"`
	}
	if err := c.getJSON(ctx, "/categories/"+url.PathEscape(categoryID)+"/variables", nil, &body); err != nil {
		return nil, err
	}
	out := make([]Variable, 0, len(body.Data))
	for _, vw := range body.Data {
		out = append(out, vw.toVariable())
	}
	return out, nil
}

// GetLeaderboard fetches the runs matching q, best time first. When
// q.EmbedPlayers is set, embedded display names are joined onto each run's
// player references by id.
func (c *Client) GetLeaderboard(ctx context.Context, q LeaderboardQuery) ([]Run, error) {
	if q.GameID == "" || q.CategoryID == "" {
		return nil, fmt.Errorf("leaderboard query missing game or category id")
	}
	vals := url.Values{}
	if q.Top > 0 {
		vals.Set("top", strconv.Itoa(q.Top))
	}
	if q.LevelID != "" {
		vals.Set("level", q.LevelID)
	}
	for _, f := range q.Filters {
		vals.Set("var-"+f.VariableID, f.ValueID)
	}
	if q.EmbedPlayers {
		vals.Set("embed", "players")
	}
	var body struct {
		Data struct {
			Runs []struct {
				Place int     `json:"place"`
				Run   runWire `json:"run"`
			} `json:"runs"`
			Players struct {
				Data []userWire `json:"data"`
			} `json:"players"`
		} `json:"data"`
	}
	path := "/leaderboards/" + url.PathEscape(q.GameID) + "/category/" + url.PathEscape(q.CategoryID)
	if err := c.getJSON(ctx, path, vals, &body); err != nil {
		return nil, err
	}
	names := make(map[string]string, len(body.Data.Players.Data))
	for _, p := range body.Data.Players.Data {
		if p.ID != "" && p.Names.International != "" {
			names[p.ID] = p.Names.International
		}
	}
	out := make([]Run, 0, len(body.Data.Runs))
	for _, e := range body.Data.Runs {
		run := e.Run.toRun()
		for i := range run.Players {
			if run.Players[i].Name == "" {
				run.Players[i].Name = names[run.Players[i].ID]
			}
		}
		out = append(out, run)
	}
	return out, nil
}

// GetUserByID resolves a user id to its profile.
func (c *Client) GetUserByID(ctx context.Context, userID string) (User, error) {
	if userID == "" {
		return User{}, fmt.Errorf("userID empty")
	}
	var body struct {
		Data userWire `json:"data"`
	}
	if err := c.getJSON(ctx, "/users/"+url.PathEscape(userID), nil, &body); err != nil {
		return User{}, err
	}
	return User{ID: body.Data.ID, Name: body.Data.Names.International}, nil
}

// LookupUser finds a user by exact name lookup. An empty slice means the
// catalog knows no such user.
func (c *Client) LookupUser(ctx context.Context, name string) ([]User, error) {
	q := url.Values{}
	q.Set("lookup", name)
	var body struct {
		Data []userWire `json:"data"`
	}
	if err := c.getJSON(ctx, "/users", q, &body); err != nil {
		return nil, err
	}
	out := make([]User, 0, len(body.Data))
	for _, u := range body.Data {
		out = append(out, User{ID: u.ID, Name: u.Names.International})
	}
	return out, nil
}

// GetPersonalBests lists a user's personal bests with embedded game and
// category data.
func (c *Client) GetPersonalBests(ctx context.Context, userID string) ([]PersonalBest, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID empty")
	}
	q := url.Values{}
	q.Set("embed", "game,category")
	var body struct {
		Data []struct {
			Place int     `json:"place"`
			Run   runWire `json:"run"`
			Game  struct {
				Data gameWire `json:"data"`
			} `json:"game"`
			Category struct {
				Data categoryWire `json:"data"`
			} `json:"category"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, "/users/"+url.PathEscape(userID)+"/personal-bests", q, &body); err != nil {
		return nil, err
	}
	out := make([]PersonalBest, 0, len(body.Data))
	for _, e := range body.Data {
		out = append(out, PersonalBest{
			Place:    e.Place,
			Run:      e.Run.toRun(),
			Game:     e.Game.Data.toGame(),
			Category: e.Category.Data.toCategory(),
		})
	}
	return out, nil
}
