package permission

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/homevoice/internal/core"
	"github.com/sandevgo/homevoice/pkg/log"
)

// Resolver maps user IDs to permission levels from a static roster of
// "user:level" pairs. Users not on the roster resolve to Guest.
type Resolver struct {
	levels map[string]core.PermissionLevel
}

func NewResolver(pairs []string) (*Resolver, error) {
	levels := make(map[string]core.PermissionLevel, len(pairs))
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		user, raw, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("malformed user entry %q, want user:level", pair)
		}
		level, err := core.ParsePermissionLevel(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("user %q: %w", user, err)
		}
		levels[strings.ToLower(strings.TrimSpace(user))] = level
	}
	return &Resolver{levels: levels}, nil
}

func (r *Resolver) Resolve(ctx context.Context, userID string) (core.PermissionLevel, error) {
	level, ok := r.levels[strings.ToLower(strings.TrimSpace(userID))]
	if !ok {
		log.FromCtx(ctx).Debug().Str("user", userID).Msg("user not on roster, treating as guest")
		return core.PermissionGuest, nil
	}
	return level, nil
}
