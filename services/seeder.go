package services

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/consultorio-web/consultorio-backend/internal/store"
	"github.com/consultorio-web/consultorio-backend/logger"
	"github.com/consultorio-web/consultorio-backend/types"
	"gopkg.in/yaml.v3"
)

//go:embed seed/contenido.yaml
var defaultContentSeed []byte

// ParseContentSeed decodes seed rows and checks each one is usable.
func ParseContentSeed(data []byte) ([]*types.ContentItem, error) {
	var items []*types.ContentItem
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode content seed: %w", err)
	}
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		switch {
		case item.ID == "" || item.Seccion == "" || item.Contenido == "":
			return nil, fmt.Errorf("content seed row %d: id, seccion and contenido are required", i)
		case !item.Tipo.IsValid():
			return nil, fmt.Errorf("content seed row %q: unknown tipo %q", item.ID, item.Tipo)
		case seen[item.ID]:
			return nil, fmt.Errorf("content seed row %q: duplicate id", item.ID)
		}
		seen[item.ID] = true
	}
	return items, nil
}

// SeedContent fills an empty contenido table with the default page text.
// A table that already has rows is left untouched.
func SeedContent(ctx context.Context, s store.ContentStore) error {
	items, err := ParseContentSeed(defaultContentSeed)
	if err != nil {
		return err
	}
	now := utcNow()
	for _, item := range items {
		item.CreatedAt = now
		item.UpdatedAt = now
	}

	inserted, err := s.SeedIfEmpty(ctx, items)
	if err != nil {
		return fmt.Errorf("seed content: %w", err)
	}
	if inserted {
		logger.GetLogger().Infow("Seeded initial content", "rows", len(items))
	} else {
		logger.GetLogger().Debug("Content table not empty, skipping seed")
	}
	return nil
}
