package memory

import (
	"context"
	"strings"

	"github.com/sandevgo/homevoice/internal/core"
)

const scenePrefix = "scene:"

// Facts is the remembered key/value store behind "remember X is Y" and
// the named scene definitions. Keys are case-insensitive.
type Facts struct {
	repo core.FactsRepository
}

func NewFacts(repo core.FactsRepository) *Facts {
	return &Facts{repo: repo}
}

func (f *Facts) Remember(ctx context.Context, key, value string) error {
	return f.repo.Remember(ctx, normalize(key), value)
}

func (f *Facts) Recall(ctx context.Context, key string) (string, error) {
	return f.repo.Recall(ctx, normalize(key))
}

func (f *Facts) Forget(ctx context.Context, key string) error {
	return f.repo.Forget(ctx, normalize(key))
}

func (f *Facts) RememberScene(ctx context.Context, name, definition string) error {
	return f.repo.Remember(ctx, scenePrefix+normalize(name), definition)
}

func (f *Facts) RecallScene(ctx context.Context, name string) (string, error) {
	return f.repo.Recall(ctx, scenePrefix+normalize(name))
}

func normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
