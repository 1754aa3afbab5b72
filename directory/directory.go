// Package directory answers two questions about a login: is the password
// right, and is the person an administrator. Failures of the backend are
// reported as "no" so callers cannot tell a wrong password from an outage.
package directory

import (
	"context"
	"fmt"

	"timetracking/config"
)

type Directory interface {
	Authenticate(ctx context.Context, username, password string) bool
	IsAdmin(ctx context.Context, username string) bool
}

// New picks the backend named in the configuration.
func New(cfg config.Config) (Directory, error) {
	switch cfg.DirectoryBackend {
	case "ldap", "":
		return NewLDAP(cfg.LDAP), nil
	case "static":
		return ParseStatic(cfg.StaticUsers, cfg.StaticAdmins)
	default:
		return nil, fmt.Errorf("unknown directory backend %q", cfg.DirectoryBackend)
	}
}

func unique(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
