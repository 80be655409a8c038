package note

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"notewise/utils"

	"go.uber.org/zap"
)

// RenderCache stores rendered note HTML keyed by note id and version.
type RenderCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, html string)
}

const renderCacheTTL = 24 * time.Hour

// markdown matches the web editor's dialect: GFM with task-list checkboxes.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.TaskList),
)

// RenderNoteHTML converts a note's markdown content to HTML for the share
// and export surfaces. Results are cached per (id, updatedAt) so edits
// naturally invalidate.
func (s *DefaultNoteService) RenderNoteHTML(ctx context.Context, id string) (string, error) {
	note, err := s.GetNote(ctx, id)
	if err != nil {
		return "", fmt.Errorf("RenderNoteHTML: %w", err)
	}

	key := fmt.Sprintf("render:%s:%d", note.ID, note.UpdatedAt)
	if s.Cache != nil {
		if html, ok := s.Cache.Get(ctx, key); ok {
			return html, nil
		}
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(note.Content), &buf); err != nil {
		return "", fmt.Errorf("RenderNoteHTML: failed to render note %s: %w", id, err)
	}
	html := buf.String()

	if s.Cache != nil {
		s.Cache.Set(ctx, key, html)
	}
	return html, nil
}

// RedisRenderCache is the production RenderCache on the shared cache client.
type RedisRenderCache struct {
	Client *redis.Client
}

func (c *RedisRenderCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.Client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *RedisRenderCache) Set(ctx context.Context, key, html string) {
	if err := c.Client.Set(ctx, key, html, renderCacheTTL).Err(); err != nil {
		utils.GetLogger().Warn("render cache write failed", zap.String("key", key), zap.Error(err))
	}
}
