// Package chat connects the bot to Twitch IRC and feeds incoming messages
// to the command router.
//
// Credentials: the IRC client requires a bot username and an OAuth token with
// chat:read/chat:edit scopes (oauth: prefix added automatically). The bot
// joins its own channel plus every channel registered in the bot_users table.
package chat

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"sync"

	twitch "github.com/gempir/go-twitch-irc/v4"

	"github.com/onnwee/speedbot/command"
	"github.com/onnwee/speedbot/config"
	"github.com/onnwee/speedbot/db"
	"github.com/onnwee/speedbot/telemetry"
)

// Bot is the IRC transport. It satisfies command.ChatControl so handlers can
// reply, join, and depart without knowing the IRC client. Handlers run on
// their own goroutines, so the channel count is mutex-guarded.
type Bot struct {
	client *twitch.Client

	mu       sync.Mutex
	channels int
}

// Say sends a message to a channel.
func (b *Bot) Say(channel, text string) { b.client.Say(channel, text) }

// Join joins a channel.
func (b *Bot) Join(channel string) {
	b.client.Join(channel)
	b.mu.Lock()
	b.channels++
	n := b.channels
	b.mu.Unlock()
	telemetry.SetJoinedChannels(n)
}

// Depart leaves a channel.
func (b *Bot) Depart(channel string) {
	b.client.Depart(channel)
	b.mu.Lock()
	if b.channels > 0 {
		b.channels--
	}
	n := b.channels
	b.mu.Unlock()
	telemetry.SetJoinedChannels(n)
}

// Start connects to Twitch IRC, joins the bot's own channel and every
// registered channel, and dispatches messages to the router until ctx is
// cancelled. It blocks; run it on its own goroutine.
func Start(ctx context.Context, cfg *config.Config, dbx *sql.DB, router *command.Router) error {
	client := twitch.NewClient(cfg.TwitchBotUsername, cfg.OAuthPassToken())
	bot := &Bot{client: client}
	router.Chat = bot

	client.OnPrivateMessage(func(msg twitch.PrivateMessage) {
		m := command.Message{
			Channel:       msg.Channel,
			ChannelID:     msg.RoomID,
			UserID:        msg.User.ID,
			UserName:      msg.User.DisplayName,
			Text:          msg.Message,
			IsMod:         msg.User.Badges["moderator"] > 0,
			IsBroadcaster: msg.User.Badges["broadcaster"] > 0,
		}
		go router.Handle(ctx, m)
	})

	bot.Join(strings.ToLower(cfg.TwitchBotUsername))
	users, err := db.ListBotUsers(ctx, dbx)
	if err != nil {
		slog.Error("list registered channels", slog.Any("err", err))
	}
	for _, u := range users {
		bot.Join(u.Name)
	}

	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		client.Disconnect()
		close(done)
	}()

	if err := client.Connect(); err != nil && ctx.Err() == nil {
		return err
	}
	<-done
	return nil
}
