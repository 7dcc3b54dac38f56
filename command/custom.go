package command

import (
	"context"
	"fmt"
	"strings"
)

// handleComando adds or replaces a channel custom command. Moderator or
// broadcaster only; the name may not shadow a built-in.
func (r *Router) handleComando(ctx context.Context, m Message, args []string) {
	if !m.IsMod && !m.IsBroadcaster {
		r.say(m, "Solo moderadores del canal pueden ejecutar este comando.")
		return
	}
	if len(args) < 3 {
		r.say(m, "Es necesario especificar el nombre del comando y su respuesta.")
		return
	}
	name := strings.ToLower(strings.TrimPrefix(args[1], r.Prefix))
	if isGlobalCommand(name) {
		r.say(m, "El nombre del comando no puede coincidir con el de un comando global.")
		return
	}
	response := strings.Join(args[2:], " ")
	if err := r.Store.UpsertCommand(ctx, name, m.ChannelID, response); err != nil {
		r.fail(ctx, m, err, "Se ha producido un error al guardar el comando.")
		return
	}
	r.say(m, fmt.Sprintf("El comando %s se ha añadido correctamente al canal.", name))
}

// handleBorracomando removes a channel custom command.
func (r *Router) handleBorracomando(ctx context.Context, m Message, args []string) {
	if !m.IsMod && !m.IsBroadcaster {
		r.say(m, "Solo moderadores del canal pueden ejecutar este comando.")
		return
	}
	if len(args) != 2 {
		r.say(m, "Es necesario especificar el nombre del comando a borrar.")
		return
	}
	name := strings.ToLower(strings.TrimPrefix(args[1], r.Prefix))
	deleted, err := r.Store.DeleteCommand(ctx, name, m.ChannelID)
	if err != nil {
		r.fail(ctx, m, err, "Se ha producido un error al borrar el comando.")
		return
	}
	if deleted {
		r.say(m, fmt.Sprintf("El comando %s se ha eliminado del canal.", name))
	} else {
		r.say(m, "No existe ningún comando con ese nombre.")
	}
}

// handleComandos lists the custom commands visible in this channel, the
// channel's own plus the bot channel's shared ones.
func (r *Router) handleComandos(ctx context.Context, m Message) {
	names, err := r.Store.ListCommandNames(ctx, r.commandScope(m))
	if err != nil {
		r.fail(ctx, m, err, "Se ha producido un error al listar los comandos.")
		return
	}
	if len(names) == 0 {
		r.say(m, "No hay comandos definidos en este canal.")
		return
	}
	r.say(m, "Mis comandos: "+strings.Join(names, ", "))
}

// handleCustom resolves an unrecognized command name against the stored
// custom commands; channel-local definitions shadow the bot channel's.
// Returns whether a response was sent.
func (r *Router) handleCustom(ctx context.Context, m Message, name string) bool {
	response, ok, err := r.Store.GetCommandResponse(ctx, name, r.commandScope(m))
	if err != nil || !ok {
		return false
	}
	r.say(m, response)
	return true
}

// commandScope returns the channel ids whose custom commands apply here,
// most specific first.
func (r *Router) commandScope(m Message) []string {
	if m.ChannelID == r.BotUserID {
		return []string{m.ChannelID}
	}
	return []string{m.ChannelID, r.BotUserID}
}
