package diary

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/linesmerrill/case-diary-api/models"
)

// SignedURLTTL is how long a resolved file link stays valid
const SignedURLTTL = time.Hour

const resolveConcurrency = 8

// URLSigner turns a stored object path into a time-limited URL
type URLSigner interface {
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}

// ResolveFiles replaces the stored paths of each item with signed URLs. A path that cannot
// be signed is left out of its item; the other files and items are unaffected.
func ResolveFiles(ctx context.Context, items []models.HistoryItem, signer URLSigner, ttl time.Duration) []models.HistoryItem {
	resolved := make([]models.HistoryItem, len(items))
	copy(resolved, items)

	urls := make([][]string, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)

	for i, item := range items {
		if len(item.Files) == 0 {
			continue
		}
		urls[i] = make([]string, len(item.Files))
		for j, path := range item.Files {
			i, j, path := i, j, path
			g.Go(func() error {
				u, err := signer.SignedURL(gctx, path, ttl)
				if err != nil {
					zap.S().Debugw("dropping unresolvable history file",
						"path", path,
						"error", err)
					return nil
				}
				urls[i][j] = u
				return nil
			})
		}
	}
	_ = g.Wait()

	for i := range resolved {
		if urls[i] == nil {
			continue
		}
		files := make([]string, 0, len(urls[i]))
		for _, u := range urls[i] {
			if u != "" {
				files = append(files, u)
			}
		}
		if len(files) == 0 {
			files = nil
		}
		resolved[i].Files = files
	}
	return resolved
}
