package credentials

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"golang.org/x/term"
)

func (m MapEnvironment) LookupEnv(_ context.Context, key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (e *OSEnvironment) LookupEnv(ctx context.Context, key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v, true
	}
	if !e.Interactive {
		return "", false
	}
	return e.prompt(ctx, key)
}

// prompt asks for a value on the terminal and stores it in the
// process environment so that it is only asked for once.
func (e *OSEnvironment) prompt(ctx context.Context, key string) (string, bool) {
	log := logr.FromContextOrDiscard(ctx).WithValues("key", key)

	e.mu.Lock()
	defer e.mu.Unlock()

	// another caller may have prompted while we were waiting
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v, true
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		log.V(2).Info("not prompting for secret as stdin is not a terminal")
		return "", false
	}
	out := e.Prompt
	if out == nil {
		out = os.Stderr
	}
	_, _ = fmt.Fprintf(out, "Enter value for %s (leave empty to skip): ", key)
	data, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(out)
	if err != nil {
		log.Error(err, "failed to read secret from terminal")
		return "", false
	}
	val := strings.TrimSpace(string(data))
	if val == "" {
		return "", false
	}
	if err := os.Setenv(key, val); err != nil {
		log.V(1).Info("failed to remember secret", "error", err.Error())
	}
	return val, true
}
