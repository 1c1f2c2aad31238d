// Package loader populates the shared store's question catalogs from a JSON
// file on disk, once at bootstrap.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/observer/trivia/internal/questions"
	"github.com/observer/trivia/internal/store"
)

// fileFormat mirrors the on-disk question file: two top-level arrays of raw
// question records, one per difficulty tier.
type fileFormat struct {
	Normal []questions.Question `json:"normal"`
	Final  []questions.Question `json:"final"`
}

// Load reads path and writes every question into its catalog hash in s,
// field-keyed by index, replacing the "<BLANK>" placeholder with the spoken
// blank used by the client.
func Load(ctx context.Context, s store.Store, path string, logger *slog.Logger) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read question file %s: %w", path, err)
	}

	var parsed fileFormat
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("parse question file %s: %w", path, err)
	}

	if err := loadCatalog(ctx, s, questions.NormalQuestionsKey, parsed.Normal); err != nil {
		return err
	}
	if err := loadCatalog(ctx, s, questions.FinalQuestionsKey, parsed.Final); err != nil {
		return err
	}

	logger.Info("loaded question catalogs", "normal", len(parsed.Normal), "final", len(parsed.Final), "file", path)
	return nil
}

func loadCatalog(ctx context.Context, s store.Store, catalogKey string, items []questions.Question) error {
	for idx, q := range items {
		q.Prompt = strings.ReplaceAll(q.Prompt, "<BLANK>", " _______ ")

		encoded, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("encode question %d for %s: %w", idx, catalogKey, err)
		}
		if err := s.HashSet(ctx, catalogKey, strconv.Itoa(idx), string(encoded)); err != nil {
			return fmt.Errorf("store question %d for %s: %w", idx, catalogKey, err)
		}
	}
	return nil
}
