// Package quotes serves random quotes for the !fernando command. A quote can
// come from an external command (QUOTE_COMMAND) or from a newline-separated
// file; the command takes precedence when configured.
package quotes

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Source produces one random quote per call.
type Source struct {
	// Command, when non-empty, is executed through the shell and its stdout
	// (trimmed) is the quote.
	Command string
	// File is a newline-separated quote list used when Command is empty.
	File string
}

// Random returns a quote, or an error when neither source yields one.
func (s *Source) Random(ctx context.Context) (string, error) {
	if s.Command != "" {
		return s.fromCommand(ctx)
	}
	return s.fromFile()
}

func (s *Source) fromCommand(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, "sh", "-c", s.Command).Output()
	if err != nil {
		return "", fmt.Errorf("quote command: %w", err)
	}
	quote := strings.TrimSpace(string(out))
	if quote == "" {
		return "", fmt.Errorf("quote command produced no output")
	}
	return quote, nil
}

func (s *Source) fromFile() (string, error) {
	if s.File == "" {
		return "", fmt.Errorf("no quote source configured")
	}
	data, err := os.ReadFile(s.File)
	if err != nil {
		return "", fmt.Errorf("read quote file: %w", err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("quote file %s is empty", s.File)
	}
	//nolint:gosec // G404: math/rand is fine for picking a quote
	return lines[rand.Intn(len(lines))], nil
}
