package command

import (
	"errors"

	"github.com/onnwee/speedbot/resolve"
)

// userMessage maps the expected resolution outcomes to their user-facing
// lines. Anything else is a transient fault: the caller logs the detail and
// answers with the command's generic failure line instead.
func userMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, resolve.ErrGameNotFound):
		return "❌ Juego no encontrado.", true
	case errors.Is(err, resolve.ErrUserNotFound):
		return "❌ Usuario no encontrado.", true
	case errors.Is(err, resolve.ErrCategoryNotFound):
		return "❌ Categoría no encontrada.", true
	case errors.Is(err, resolve.ErrMissingLevel):
		return "❌ Esta categoría requiere especificar un nivel.", true
	}
	return "", false
}
