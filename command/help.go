package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

type helpEntry struct {
	name  string
	short string
	usage string
}

// helpCatalog is the ordered help index; the order is the pagination order.
var helpCatalog = []helpEntry{
	{"hola", "hace que el bot se una a tu canal (solo desde el canal del bot)", "!hola"},
	{"adios", "hace que el bot salga de tu canal (solo desde el canal del bot)", "!adios"},
	{"clip", "crea un clip del directo actual", "!clip"},
	{"wr", "muestra el récord mundial de un juego", "!wr <juego> [categoría/opciones]"},
	{"pb", "muestra las marcas personales de un usuario", "!pb <usuario> [juego]"},
	{"fernando", "suelta una frase aleatoria", "!fernando"},
	{"comando", "añade o actualiza un comando del canal (solo moderadores)", "!comando <nombre> <respuesta>"},
	{"borracomando", "borra un comando del canal (solo moderadores)", "!borracomando <nombre>"},
	{"comandos", "lista los comandos personalizados del canal", "!comandos"},
}

const helpPerPage = 6

// handleHelp paginates the command index, or describes one command when
// given its name.
func (r *Router) handleHelp(_ context.Context, m Message, args []string) {
	page := 1
	if len(args) > 1 {
		arg := strings.ToLower(strings.TrimPrefix(args[1], "!"))
		if n, err := strconv.Atoi(arg); err == nil {
			page = n
		} else {
			for _, e := range helpCatalog {
				if e.name == arg {
					r.say(m, fmt.Sprintf("📘 !%s → %s | Uso: %s", e.name, e.short, e.usage))
					return
				}
			}
			r.say(m, fmt.Sprintf("❌ El comando !%s no existe.", arg))
			return
		}
	}

	pages := (len(helpCatalog) + helpPerPage - 1) / helpPerPage
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * helpPerPage
	end := start + helpPerPage
	if end > len(helpCatalog) {
		end = len(helpCatalog)
	}
	names := make([]string, 0, end-start)
	for _, e := range helpCatalog[start:end] {
		names = append(names, "!"+e.name)
	}
	r.say(m, fmt.Sprintf("📜 Comandos del bot (Página %d/%d): %s | Usa !help <número> o !help <comando>",
		page, pages, strings.Join(names, " | ")))
}
