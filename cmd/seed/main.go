// Seeds the document store from a directory of .txt files. Each file becomes
// one document embedding row; the file name doubles as the document title the
// pipeline reports back to users.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"ai-docchat-be/internal/config"
	"ai-docchat-be/internal/model"
	"ai-docchat-be/pkg/database"
	"ai-docchat-be/pkg/embedding"
	"ai-docchat-be/pkg/utils"

	"github.com/pgvector/pgvector-go"
)

// Embedding providers have bounded input windows; only the leading chunk of a
// long document is embedded. The full text is still stored for answering.
const (
	embedChunkSize    = 2000
	embedChunkOverlap = 200
)

func main() {
	dir := flag.String("dir", "./documents", "directory of .txt files to ingest")
	flag.Parse()

	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Error: Failed to connect to database: %v", err)
	}

	var provider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel, cfg.Ai.OllamaEmbeddingDim)
	} else {
		provider = embedding.NewHashProvider()
	}
	if err := embedding.ValidateDimension(provider, model.EmbeddingDim); err != nil {
		log.Fatalf("Error: embedding provider incompatible with document store schema: %v", err)
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("Error: Failed to read directory %s: %v", *dir, err)
	}

	seeded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(*dir, entry.Name()))
		if err != nil {
			log.Printf("Warn: skipping %s: %v", entry.Name(), err)
			continue
		}

		text := strings.TrimSpace(string(content))
		if text == "" {
			log.Printf("Warn: skipping %s: empty file", entry.Name())
			continue
		}

		chunks := utils.SplitText(text, embedChunkSize, embedChunkOverlap)
		resp, err := provider.Generate(chunks[0], "RETRIEVAL_DOCUMENT")
		if err != nil {
			log.Printf("Warn: skipping %s: embedding failed: %v", entry.Name(), err)
			continue
		}

		doc := model.DocumentEmbedding{
			DocumentName:   entry.Name(),
			Text:           text,
			EmbeddingValue: pgvector.NewVector(resp.Values),
		}
		if err := db.Create(&doc).Error; err != nil {
			log.Printf("Warn: failed to insert %s: %v", entry.Name(), err)
			continue
		}
		seeded++
		log.Printf("Seeded %s (%d chars)", entry.Name(), len(text))
	}

	log.Printf("✅ Success: seeded %d documents from %s", seeded, *dir)
}
