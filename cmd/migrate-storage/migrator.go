package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/consultorio-web/consultorio-backend/internal/storage"
	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// itemStore is the part of the resource store the migration touches.
type itemStore interface {
	ListWithItems(ctx context.Context) ([]*types.Resource, error)
	UpdateItem(ctx context.Context, item *types.ResourceItem) error
}

type summary struct {
	Total    int
	Migrated int64
	Errors   int64
}

type migrator struct {
	items      itemStore
	target     storage.ObjectStore
	client     *http.Client
	sourceBase string
	log        *zap.SugaredLogger
}

// pending returns the file items still hosted under the source bucket.
func (m *migrator) pending(ctx context.Context) ([]types.ResourceItem, error) {
	resources, err := m.items.ListWithItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	var out []types.ResourceItem
	for _, r := range resources {
		for _, item := range r.Items {
			if item.Type.IsFile() && strings.HasPrefix(item.Link, m.sourceBase) {
				out = append(out, item)
			}
		}
	}
	return out, nil
}

func (m *migrator) Run(ctx context.Context, dryRun bool, concurrency int) (summary, error) {
	items, err := m.pending(ctx)
	if err != nil {
		return summary{}, err
	}
	result := summary{Total: len(items)}
	m.log.Infow("Found files to migrate", "count", len(items))

	if dryRun {
		for i, item := range items {
			m.log.Infow("Would migrate", "n", i+1, "item", item.ID, "link", item.Link)
		}
		return result, nil
	}

	if concurrency < 1 {
		concurrency = 1
	}
	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, concurrency)
	)
	for i := range items {
		wg.Add(1)
		sem <- struct{}{}

		go func(item types.ResourceItem) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := m.migrate(ctx, item); err != nil {
				m.log.Errorw("Failed to migrate file", "item", item.ID, "link", item.Link, "error", err)
				atomic.AddInt64(&result.Errors, 1)
				return
			}
			atomic.AddInt64(&result.Migrated, 1)
		}(items[i])
	}
	wg.Wait()

	return result, nil
}

// migrate copies one file and repoints its item. The source object is left in
// place so a failed run can simply be repeated.
func (m *migrator) migrate(ctx context.Context, item types.ResourceItem) error {
	key, err := storage.KeyFromURL(item.Link)
	if err != nil {
		return err
	}

	data, err := m.fetch(ctx, item.Link)
	if err != nil {
		return err
	}

	newURL, err := m.target.Put(ctx, key, mimetype.Detect(data).String(), bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}

	item.Link = newURL
	item.UpdatedAt = time.Now().UTC()
	if err := m.items.UpdateItem(ctx, &item); err != nil {
		return fmt.Errorf("update item %s: %w", item.ID, err)
	}
	m.log.Infow("Migrated file", "item", item.ID, "key", key)
	return nil
}

func (m *migrator) fetch(ctx context.Context, link string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", link, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status %d", link, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, storage.MaxPDFSize+1))
}
