package command

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/onnwee/speedbot/cache"
	"github.com/onnwee/speedbot/srcom"
	"github.com/onnwee/speedbot/testutil"
	"github.com/onnwee/speedbot/twitchapi"
)

// fakeStore is an in-memory command.Store.
type fakeStore struct {
	botUsers map[string]string            // twitch id -> name
	commands map[string]map[string]string // channel id -> name -> response
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		botUsers: make(map[string]string),
		commands: make(map[string]map[string]string),
	}
}

func (s *fakeStore) InsertBotUser(_ context.Context, twitchID, name string) error {
	s.botUsers[twitchID] = name
	return nil
}

func (s *fakeStore) RemoveBotUser(_ context.Context, twitchID string) (bool, error) {
	_, ok := s.botUsers[twitchID]
	delete(s.botUsers, twitchID)
	return ok, nil
}

func (s *fakeStore) UpsertCommand(_ context.Context, name, channelID, response string) error {
	if s.commands[channelID] == nil {
		s.commands[channelID] = make(map[string]string)
	}
	s.commands[channelID][name] = response
	return nil
}

func (s *fakeStore) DeleteCommand(_ context.Context, name, channelID string) (bool, error) {
	_, ok := s.commands[channelID][name]
	delete(s.commands[channelID], name)
	return ok, nil
}

// ListCommandNames mirrors the SQL helper: distinct names, sorted.
func (s *fakeStore) ListCommandNames(_ context.Context, channelIDs []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, id := range channelIDs {
		for name := range s.commands[id] {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *fakeStore) GetCommandResponse(_ context.Context, name string, channelIDs []string) (string, bool, error) {
	for _, id := range channelIDs {
		if resp, ok := s.commands[id][name]; ok {
			return resp, true, nil
		}
	}
	return "", false, nil
}

// fakeChat records what the router said and which channels it joined or left.
type fakeChat struct {
	said     []string
	joined   []string
	departed []string
}

func (c *fakeChat) Say(_, text string)    { c.said = append(c.said, text) }
func (c *fakeChat) Join(channel string)   { c.joined = append(c.joined, channel) }
func (c *fakeChat) Depart(channel string) { c.departed = append(c.departed, channel) }
func (c *fakeChat) lastSaid() string {
	if len(c.said) == 0 {
		return ""
	}
	return c.said[len(c.said)-1]
}

func newTestRouter(t *testing.T, catalogBase string) (*Router, *fakeStore, *fakeChat) {
	t.Helper()
	store := newFakeStore()
	chat := &fakeChat{}
	r := &Router{
		Store:     store,
		Chat:      chat,
		Catalog:   &srcom.Client{BaseURL: catalogBase},
		Results:   cache.New(time.Minute, 32),
		Prefix:    "!",
		BotUserID: "bot-id",
	}
	return r, store, chat
}

func TestHandle_IgnoresNonCommands(t *testing.T) {
	r, _, chat := newTestRouter(t, "")
	r.Handle(context.Background(), Message{Channel: "c", Text: "just chatting"})
	if len(chat.said) != 0 {
		t.Fatalf("said = %v, want nothing", chat.said)
	}
}

func TestHandle_CooldownDropsCommands(t *testing.T) {
	r, _, chat := newTestRouter(t, "")
	r.Cooldown = NewGate(5 * time.Second)

	m := Message{Channel: "c", ChannelID: "bot-id", UserID: "u1", UserName: "runner", Text: "!hola"}
	r.Handle(context.Background(), m)
	if len(chat.said) != 1 {
		t.Fatalf("said = %v, want greeting", chat.said)
	}
	// Second command inside the cooldown window is ignored silently.
	r.Handle(context.Background(), m)
	if len(chat.said) != 1 {
		t.Fatalf("said = %v, want no second reply during cooldown", chat.said)
	}
}

func TestHandle_IgnoredCommandsDoNotArmCooldown(t *testing.T) {
	r, _, chat := newTestRouter(t, "")
	r.Cooldown = NewGate(5 * time.Second)

	// Unknown command with no custom match, then !hola outside the bot's
	// channel: both are silently ignored and must not start the cooldown.
	r.Handle(context.Background(), Message{Channel: "c", ChannelID: "chan-1", UserID: "u1", Text: "!nosuchcommand"})
	r.Handle(context.Background(), Message{Channel: "c", ChannelID: "chan-1", UserID: "u1", UserName: "runner", Text: "!hola"})
	if len(chat.said) != 0 {
		t.Fatalf("said = %v, want nothing for ignored commands", chat.said)
	}

	r.Handle(context.Background(), Message{Channel: "c", ChannelID: "chan-1", Text: "!help"})
	if len(chat.said) != 1 {
		t.Fatalf("said = %v, want the help page despite the earlier junk", chat.said)
	}
}

func TestHandleHola_RegistersAndJoins(t *testing.T) {
	r, store, chat := newTestRouter(t, "")
	m := Message{Channel: "speedbot", ChannelID: "bot-id", UserID: "u7", UserName: "Runner", Text: "!hola"}
	r.Handle(context.Background(), m)

	if store.botUsers["u7"] != "runner" {
		t.Errorf("bot users = %v, want runner under u7", store.botUsers)
	}
	if len(chat.joined) != 1 || chat.joined[0] != "runner" {
		t.Errorf("joined = %v, want [runner]", chat.joined)
	}
	if got := chat.lastSaid(); got != "Hola, Runner. Me he unido a tu canal." {
		t.Errorf("reply = %q", got)
	}
}

func TestHandleHola_OnlyInBotChannel(t *testing.T) {
	r, store, chat := newTestRouter(t, "")
	m := Message{Channel: "other", ChannelID: "someone-else", UserID: "u7", UserName: "Runner", Text: "!hola"}
	r.Handle(context.Background(), m)
	if len(store.botUsers) != 0 || len(chat.said) != 0 {
		t.Fatal("expected !hola outside the bot channel to be ignored")
	}
}

func TestHandleAdios_RemovesAndDeparts(t *testing.T) {
	r, store, chat := newTestRouter(t, "")
	store.botUsers["u7"] = "runner"

	m := Message{Channel: "speedbot", ChannelID: "bot-id", UserID: "u7", UserName: "Runner", Text: "!adios"}
	r.Handle(context.Background(), m)

	if len(store.botUsers) != 0 {
		t.Errorf("bot users = %v, want empty", store.botUsers)
	}
	if len(chat.departed) != 1 || chat.departed[0] != "runner" {
		t.Errorf("departed = %v, want [runner]", chat.departed)
	}
	if got := chat.lastSaid(); got != "Adiós, Runner. He salido de tu canal." {
		t.Errorf("reply = %q", got)
	}
}

func TestCustomCommands_Lifecycle(t *testing.T) {
	r, _, chat := newTestRouter(t, "")
	mod := Message{Channel: "c", ChannelID: "chan-1", UserID: "u1", UserName: "Mod", IsMod: true}

	mod.Text = "!comando discord https://discord.gg/example"
	r.Handle(context.Background(), mod)
	if got := chat.lastSaid(); got != "El comando discord se ha añadido correctamente al canal." {
		t.Fatalf("reply = %q", got)
	}

	// Anyone can invoke it.
	viewer := Message{Channel: "c", ChannelID: "chan-1", UserID: "u2", UserName: "Viewer", Text: "!discord"}
	r.Handle(context.Background(), viewer)
	if got := chat.lastSaid(); got != "https://discord.gg/example" {
		t.Fatalf("reply = %q", got)
	}

	mod.Text = "!comandos"
	r.Handle(context.Background(), mod)
	if got := chat.lastSaid(); got != "Mis comandos: discord" {
		t.Fatalf("reply = %q", got)
	}

	mod.Text = "!borracomando discord"
	r.Handle(context.Background(), mod)
	if got := chat.lastSaid(); got != "El comando discord se ha eliminado del canal." {
		t.Fatalf("reply = %q", got)
	}

	mod.Text = "!borracomando discord"
	r.Handle(context.Background(), mod)
	if got := chat.lastSaid(); got != "No existe ningún comando con ese nombre." {
		t.Fatalf("reply = %q", got)
	}
}

func TestCustomCommands_RequireMod(t *testing.T) {
	r, _, chat := newTestRouter(t, "")
	m := Message{Channel: "c", ChannelID: "chan-1", UserID: "u2", UserName: "Viewer", Text: "!comando x y"}
	r.Handle(context.Background(), m)
	if got := chat.lastSaid(); got != "Solo moderadores del canal pueden ejecutar este comando." {
		t.Fatalf("reply = %q", got)
	}
}

func TestCustomCommands_CannotShadowGlobals(t *testing.T) {
	r, _, chat := newTestRouter(t, "")
	m := Message{Channel: "c", ChannelID: "chan-1", IsMod: true, Text: "!comando wr something"}
	r.Handle(context.Background(), m)
	if got := chat.lastSaid(); got != "El nombre del comando no puede coincidir con el de un comando global." {
		t.Fatalf("reply = %q", got)
	}
}

func TestCustomCommands_BotChannelShared(t *testing.T) {
	r, store, chat := newTestRouter(t, "")
	// A command defined in the bot's own channel is visible everywhere, but a
	// channel-local definition shadows it.
	store.commands["bot-id"] = map[string]string{"social": "bot-wide answer"}
	store.commands["chan-1"] = map[string]string{"social": "channel answer"}

	r.Handle(context.Background(), Message{Channel: "c", ChannelID: "chan-1", Text: "!social"})
	if got := chat.lastSaid(); got != "channel answer" {
		t.Fatalf("reply = %q, want the channel-local definition", got)
	}

	r.Handle(context.Background(), Message{Channel: "d", ChannelID: "chan-2", Text: "!social"})
	if got := chat.lastSaid(); got != "bot-wide answer" {
		t.Fatalf("reply = %q, want the bot channel fallback", got)
	}
}

func TestHandleHelp(t *testing.T) {
	r, _, chat := newTestRouter(t, "")

	r.Handle(context.Background(), Message{Channel: "c", ChannelID: "x", Text: "!help"})
	got := chat.lastSaid()
	want := "📜 Comandos del bot (Página 1/2): !hola | !adios | !clip | !wr | !pb | !fernando | Usa !help <número> o !help <comando>"
	if got != want {
		t.Fatalf("page 1 = %q, want %q", got, want)
	}

	r.Handle(context.Background(), Message{Channel: "c", ChannelID: "x", Text: "!help 2"})
	if got := chat.lastSaid(); !strings.Contains(got, "Página 2/2") || !strings.Contains(got, "!comandos") {
		t.Errorf("page 2 = %q", got)
	}

	r.Handle(context.Background(), Message{Channel: "c", ChannelID: "x", Text: "!help wr"})
	if got := chat.lastSaid(); got != "📘 !wr → muestra el récord mundial de un juego | Uso: !wr <juego> [categoría/opciones]" {
		t.Errorf("help wr = %q", got)
	}

	r.Handle(context.Background(), Message{Channel: "c", ChannelID: "x", Text: "!help nope"})
	if got := chat.lastSaid(); got != "❌ El comando !nope no existe." {
		t.Errorf("help nope = %q", got)
	}
}

func wrCatalog(t *testing.T) (*testutil.MockCatalogServer, *int) {
	t.Helper()
	mock := testutil.NewMockCatalogServer(t)
	mock.Handlers["/games"] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("name") == "The Legend of Zelda: Ocarina of Time" {
			fmt.Fprint(w, `{"data":[{"id":"oot","names":{"international":"The Legend of Zelda: Ocarina of Time"}}]}`)
			return
		}
		fmt.Fprint(w, `{"data":[]}`)
	}
	mock.JSON("/games/oot/categories", `{"data":[
		{"id":"any","name":"Any%","type":"per-game"},
		{"id":"100","name":"100%","type":"per-game"}
	]}`)
	mock.JSON("/games/oot/levels", `{"data":[]}`)
	mock.JSON("/categories/any/variables", `{"data":[{
		"id":"v1","name":"Ruleset","is-subcategory":true,
		"values":{"values":{
			"glitched":{"label":"Glitched"},
			"nmgid":{"label":"No Major Glitches"}
		}}
	}]}`)
	boards := 0
	mock.Handlers["/leaderboards/oot/category/any"] = func(w http.ResponseWriter, r *http.Request) {
		boards++
		if got := r.URL.Query().Get("var-v1"); got != "nmgid" {
			t.Errorf("var-v1 = %q, want nmgid", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{
			"runs":[{"place":1,"run":{
				"id":"r1","game":"oot","category":"any",
				"times":{"primary_t":90.25},
				"players":[{"rel":"user","id":"u1"}],
				"values":{"v1":"nmgid"}
			}}],
			"players":{"data":[{"id":"u1","names":{"international":"cheese"}}]}
		}}`)
	}
	return mock, &boards
}

func TestHandleWR_FullFlow(t *testing.T) {
	mock, boards := wrCatalog(t)
	r, _, chat := newTestRouter(t, mock.URL)

	m := Message{Channel: "c", ChannelID: "x", UserName: "viewer", Text: "!wr oot nmg"}
	r.Handle(context.Background(), m)

	want := "🏆 WR The Legend of Zelda: Ocarina of Time – Any% [No Major Glitches] → 1:30.25 por cheese"
	if got := chat.lastSaid(); got != want {
		t.Fatalf("reply = %q, want %q", got, want)
	}

	// Identical query inside the TTL is served from cache.
	r.Handle(context.Background(), m)
	if got := chat.lastSaid(); got != want {
		t.Fatalf("cached reply = %q", got)
	}
	if *boards != 1 {
		t.Fatalf("leaderboard fetches = %d, want 1 (second served from cache)", *boards)
	}
}

func TestHandleWR_Usage(t *testing.T) {
	r, _, chat := newTestRouter(t, "")
	r.Handle(context.Background(), Message{Channel: "c", ChannelID: "x", Text: "!wr"})
	if got := chat.lastSaid(); got != "📘 Uso: !wr <juego> [categoría/opciones]" {
		t.Fatalf("reply = %q", got)
	}
}

type fixedToken string

func (f fixedToken) Get(context.Context) (string, error) { return string(f), nil }

func TestHandleWR_NoArgsUsesCurrentGame(t *testing.T) {
	mock := testutil.NewMockCatalogServer(t)
	mock.Handlers["/games"] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("name") == "super mario 64" {
			fmt.Fprint(w, `{"data":[{"id":"sm64","names":{"international":"Super Mario 64"}}]}`)
			return
		}
		fmt.Fprint(w, `{"data":[]}`)
	}
	mock.JSON("/games/sm64/categories", `{"data":[{"id":"c120","name":"120 Star","type":"per-game"}]}`)
	mock.JSON("/games/sm64/levels", `{"data":[]}`)
	mock.JSON("/categories/c120/variables", `{"data":[]}`)
	mock.JSON("/leaderboards/sm64/category/c120", `{"data":{
		"runs":[{"place":1,"run":{
			"id":"r1","game":"sm64","category":"c120",
			"times":{"primary_t":300.3},
			"players":[{"rel":"guest","name":"plush"}]
		}}],
		"players":{"data":[]}
	}}`)

	tw := testutil.NewMockTwitchServer(t)
	tw.JSON("/channels", `{"data":[{"game_name":"Super Mario 64"}]}`)

	r, _, chat := newTestRouter(t, mock.URL)
	r.Helix = &twitchapi.HelixClient{TokenSource: fixedToken("tok"), BaseURL: tw.URL}

	r.Handle(context.Background(), Message{Channel: "c", ChannelID: "77", Text: "!wr"})
	want := "🏆 WR Super Mario 64 – 120 Star → 5:00.30 por plush"
	if got := chat.lastSaid(); got != want {
		t.Fatalf("reply = %q, want %q", got, want)
	}
}

func TestHandleWR_GameNotFound(t *testing.T) {
	mock := testutil.NewMockCatalogServer(t)
	mock.JSON("/games", `{"data":[]}`)
	r, _, chat := newTestRouter(t, mock.URL)

	r.Handle(context.Background(), Message{Channel: "c", ChannelID: "x", Text: "!wr unknowngame"})
	if got := chat.lastSaid(); got != "❌ Juego no encontrado." {
		t.Fatalf("reply = %q", got)
	}
}

func TestHandleWR_NoRuns(t *testing.T) {
	mock, _ := wrCatalog(t)
	mock.JSON("/leaderboards/oot/category/any", `{"data":{"runs":[],"players":{"data":[]}}}`)
	r, _, chat := newTestRouter(t, mock.URL)

	r.Handle(context.Background(), Message{Channel: "c", ChannelID: "x", Text: "!wr oot nmg"})
	if got := chat.lastSaid(); got != "❌ No hay runs para esa combinación." {
		t.Fatalf("reply = %q", got)
	}
}

func pbCatalog(t *testing.T) *testutil.MockCatalogServer {
	t.Helper()
	mock := testutil.NewMockCatalogServer(t)
	mock.Handlers["/users"] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("lookup") == "cheese" {
			fmt.Fprint(w, `{"data":[{"id":"u1","names":{"international":"cheese"}}]}`)
			return
		}
		fmt.Fprint(w, `{"data":[]}`)
	}
	mock.JSON("/users/u1/personal-bests", `{"data":[
		{"place":2,
		 "run":{"id":"r1","game":"g1","category":"c1","times":{"primary_t":90.25}},
		 "game":{"data":{"id":"g1","names":{"international":"Game A"}}},
		 "category":{"data":{"id":"c1","name":"Any%","type":"per-game"}}},
		{"place":5,
		 "run":{"id":"r2","game":"g2","category":"c2","times":{"primary_t":300.3}},
		 "game":{"data":{"id":"g2","names":{"international":"Game B"}}},
		 "category":{"data":{"id":"c2","name":"Any%","type":"per-game"}}},
		{"place":9,
		 "run":{"id":"r3","game":"g1","category":"c3","times":{"primary_t":45.5}},
		 "game":{"data":{"id":"g1","names":{"international":"Game A"}}},
		 "category":{"data":{"id":"c3","name":"Low%","type":"per-game"}}}
	]}`)
	return mock
}

func TestHandlePB_Summary(t *testing.T) {
	mock := pbCatalog(t)
	r, _, chat := newTestRouter(t, mock.URL)

	r.Handle(context.Background(), Message{Channel: "c", ChannelID: "x", Text: "!pb cheese"})

	// One entry per game, best time kept, games in first-seen order.
	want := "🎮 PBs de cheese → Game A: 00:45.50 | Game B: 05:00.30"
	if got := chat.lastSaid(); got != want {
		t.Fatalf("reply = %q, want %q", got, want)
	}
}

func TestHandlePB_WithGame(t *testing.T) {
	mock := pbCatalog(t)
	mock.Handlers["/games"] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":[{"id":"g1","names":{"international":"Game A"}}]}`)
	}
	r, _, chat := newTestRouter(t, mock.URL)

	r.Handle(context.Background(), Message{Channel: "c", ChannelID: "x", Text: "!pb cheese game a"})

	want := "🎯 PBs de cheese en Game A → Any%: 01:30.25 | Low%: 00:45.50"
	if got := chat.lastSaid(); got != want {
		t.Fatalf("reply = %q, want %q", got, want)
	}
}

func TestHandlePB_UserNotFound(t *testing.T) {
	mock := pbCatalog(t)
	r, _, chat := newTestRouter(t, mock.URL)

	r.Handle(context.Background(), Message{Channel: "c", ChannelID: "x", Text: "!pb ghost"})
	if got := chat.lastSaid(); got != "❌ Usuario no encontrado." {
		t.Fatalf("reply = %q", got)
	}
}

func TestHandlePB_NoPBs(t *testing.T) {
	mock := pbCatalog(t)
	mock.JSON("/users/u1/personal-bests", `{"data":[]}`)
	r, _, chat := newTestRouter(t, mock.URL)

	r.Handle(context.Background(), Message{Channel: "c", ChannelID: "x", Text: "!pb cheese"})
	if got := chat.lastSaid(); got != "❌ No tiene PBs." {
		t.Fatalf("reply = %q", got)
	}
}

func TestHandlePB_Usage(t *testing.T) {
	r, _, chat := newTestRouter(t, "")
	r.Handle(context.Background(), Message{Channel: "c", ChannelID: "x", Text: "!pb"})
	if got := chat.lastSaid(); got != "📘 Uso: !pb <usuario> [juego]" {
		t.Fatalf("reply = %q", got)
	}
}

func TestGate(t *testing.T) {
	now := time.Now()
	g := NewGate(5 * time.Second)
	g.now = func() time.Time { return now }

	if g.Active("c") {
		t.Fatal("fresh gate must not be active")
	}
	g.Arm("c")
	if !g.Active("c") {
		t.Fatal("armed gate must be active")
	}
	if g.Active("other") {
		t.Fatal("cooldown is per channel")
	}
	now = now.Add(5 * time.Second)
	if g.Active("c") {
		t.Fatal("gate must clear after its duration")
	}
}
