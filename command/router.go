// Package command dispatches incoming chat commands: the speedrun.com
// lookups (!wr, !pb), channel management (!hola, !adios), clips, help,
// quotes, and per-channel custom commands.
package command

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/onnwee/speedbot/cache"
	"github.com/onnwee/speedbot/quotes"
	"github.com/onnwee/speedbot/srcom"
	"github.com/onnwee/speedbot/telemetry"
	"github.com/onnwee/speedbot/twitchapi"
)

// GlobalCommands are the built-in command names; custom commands may not
// shadow them.
var GlobalCommands = []string{"hola", "adios", "clip", "wr", "pb", "help", "fernando", "comando", "borracomando", "comandos"}

// Message is one inbound chat command, transport concerns already handled.
type Message struct {
	Channel       string // channel login name, no leading #
	ChannelID     string
	UserID        string
	UserName      string
	Text          string // raw message text including the prefix
	IsMod         bool
	IsBroadcaster bool
}

// ChatControl is what the router needs from the chat transport.
type ChatControl interface {
	Say(channel, text string)
	Join(channel string)
	Depart(channel string)
}

// Store is the persistence surface the router depends on; db.Store adapts
// *sql.DB to it.
type Store interface {
	InsertBotUser(ctx context.Context, twitchID, name string) error
	RemoveBotUser(ctx context.Context, twitchID string) (bool, error)
	UpsertCommand(ctx context.Context, name, channelID, response string) error
	DeleteCommand(ctx context.Context, name, channelID string) (bool, error)
	ListCommandNames(ctx context.Context, channelIDs []string) ([]string, error)
	GetCommandResponse(ctx context.Context, name string, channelIDs []string) (string, bool, error)
}

// Router routes a parsed command to its handler. Handlers run independently
// per message; the only shared mutable state is the result cache and the
// cooldown gate, both safe for concurrent use.
type Router struct {
	Store    Store
	Chat     ChatControl
	Catalog  *srcom.Client
	Helix    *twitchapi.HelixClient
	Quotes   *quotes.Source
	Results  *cache.Cache
	Cooldown *Gate
	Prefix   string
	// BotUserID is the Twitch id of the bot's own channel; !hola and !adios
	// only work there, and its custom commands are visible everywhere.
	BotUserID string
}

// Handle processes one chat message. Non-commands and messages during a
// channel cooldown are ignored silently.
func (r *Router) Handle(ctx context.Context, m Message) {
	if r.Prefix == "" || !strings.HasPrefix(m.Text, r.Prefix) {
		return
	}
	if r.Cooldown != nil && r.Cooldown.Active(m.Channel) {
		telemetry.Inc(telemetry.CooldownDropped)
		return
	}
	args := strings.Fields(strings.TrimSpace(strings.TrimPrefix(m.Text, r.Prefix)))
	if len(args) == 0 {
		return
	}
	cmd := strings.ToLower(args[0])

	ctx = telemetry.WithCorrelation(ctx, uuid.NewString())
	ctx, span := telemetry.StartSpan(ctx, "command", "command."+cmd,
		attribute.String("channel", m.Channel),
		attribute.String("user", m.UserName),
	)
	defer span.End()
	telemetry.Inc(telemetry.CommandsProcessed)

	start := time.Now()
	defer func() {
		if telemetry.CommandDuration != nil {
			telemetry.CommandDuration.Observe(time.Since(start).Seconds())
		}
	}()

	// Only handled commands arm the cooldown; an ignored message must not
	// suppress the channel's next real command.
	handled := true
	switch cmd {
	case "hola":
		if m.ChannelID == r.BotUserID && len(args) == 1 {
			r.handleHola(ctx, m)
		} else {
			handled = false
		}
	case "adios":
		if m.ChannelID == r.BotUserID && len(args) == 1 {
			r.handleAdios(ctx, m)
		} else {
			handled = false
		}
	case "clip":
		if len(args) == 1 {
			r.handleClip(ctx, m)
		} else {
			handled = false
		}
	case "wr":
		r.handleWR(ctx, m, args)
	case "pb":
		r.handlePB(ctx, m, args)
	case "help":
		r.handleHelp(ctx, m, args)
	case "fernando":
		r.handleFernando(ctx, m)
	case "comando":
		r.handleComando(ctx, m, args)
	case "borracomando":
		r.handleBorracomando(ctx, m, args)
	case "comandos":
		if len(args) == 1 {
			r.handleComandos(ctx, m)
		} else {
			handled = false
		}
	default:
		handled = r.handleCustom(ctx, m, cmd)
	}
	if handled && r.Cooldown != nil {
		r.Cooldown.Arm(m.Channel)
	}
}

func (r *Router) say(m Message, text string) {
	if r.Chat != nil {
		r.Chat.Say(m.Channel, text)
	}
}

// fail replies with the outcome-specific line when err is an expected
// resolution outcome, or logs the details and replies with the command's
// generic failure line for transient catalog errors.
func (r *Router) fail(ctx context.Context, m Message, err error, generic string) {
	telemetry.Inc(telemetry.CommandsFailed)
	if msg, ok := userMessage(err); ok {
		r.say(m, msg)
		return
	}
	telemetry.LoggerWithCorr(ctx).Error("command failed",
		slog.String("channel", m.Channel), slog.Any("err", err))
	r.say(m, generic)
}

func (r *Router) handleHola(ctx context.Context, m Message) {
	// requested from the bot's own channel: register and join the requester's channel
	if err := r.Store.InsertBotUser(ctx, m.UserID, strings.ToLower(m.UserName)); err != nil {
		r.fail(ctx, m, err, "Se ha producido un error al registrar el canal.")
		return
	}
	if r.Chat != nil {
		r.Chat.Join(strings.ToLower(m.UserName))
	}
	r.say(m, "Hola, "+m.UserName+". Me he unido a tu canal.")
}

func (r *Router) handleAdios(ctx context.Context, m Message) {
	removed, err := r.Store.RemoveBotUser(ctx, m.UserID)
	if err != nil {
		r.fail(ctx, m, err, "Se ha producido un error al salir del canal.")
		return
	}
	if removed && r.Chat != nil {
		r.Chat.Depart(strings.ToLower(m.UserName))
	}
	r.say(m, "Adiós, "+m.UserName+". He salido de tu canal.")
}

func (r *Router) handleFernando(ctx context.Context, m Message) {
	if r.Quotes == nil {
		return
	}
	quote, err := r.Quotes.Random(ctx)
	if err != nil {
		r.fail(ctx, m, err, "No hay frases disponibles.")
		return
	}
	r.say(m, quote)
}

func (r *Router) handleClip(ctx context.Context, m Message) {
	if r.Helix == nil {
		return
	}
	clipID, err := r.Helix.CreateClip(ctx, m.ChannelID)
	if err == twitchapi.ErrChannelOffline {
		r.say(m, "No se pueden crear clips en canales desconectados.")
		return
	}
	if err != nil {
		r.fail(ctx, m, err, "Se ha producido un error al intentar crear el clip.")
		return
	}
	r.say(m, "https://clips.twitch.tv/"+clipID)
}

func isGlobalCommand(name string) bool {
	for _, g := range GlobalCommands {
		if g == name {
			return true
		}
	}
	return false
}
