package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jobbuddy/career-assistant/internal/config"
	"jobbuddy/career-assistant/internal/services"
)

// Guides are read from <dir>/<doc_type>/<file>, e.g.
// career_guides/ats_guide/formatting.txt.
func main() {
	dir := flag.String("dir", "./career_guides", "directory of career guides grouped by doc type")
	chunkSize := flag.Int("chunk-size", services.DefaultChunkSize, "maximum chunk size in characters")
	overlap := flag.Int("overlap", services.DefaultChunkOverlap, "characters shared by consecutive chunks")
	flag.Parse()

	log.Println("🚀 Starting career guide ingestion...")

	cfg := config.Load()
	cfg.Qdrant.Enabled = true

	geminiService, err := services.NewGeminiService(cfg.Gemini, cfg.Worker.RetryInitialDelay)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	qdrantService, err := services.NewQdrantService(cfg.Qdrant)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}
	defer qdrantService.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if err := qdrantService.InitCollection(ctx); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	extractor := services.NewDefaultExtractorRegistry(nil)
	chunker := services.NewTextChunker()

	successCount := 0
	failCount := 0

	err = filepath.WalkDir(*dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		docType := filepath.Base(filepath.Dir(path))
		name := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		docID := fmt.Sprintf("%s/%s", docType, name)

		log.Printf("\n📄 Processing: %s", docID)

		text, err := extractor.Extract(ctx, path, "")
		if err != nil {
			log.Printf("   ❌ Failed to extract text: %v", err)
			failCount++
			return nil
		}

		chunks := chunker.ChunkText(services.CleanText(text), *chunkSize, *overlap)
		log.Printf("   ✂️  Created %d chunks from %d characters", len(chunks), len(text))

		if err := qdrantService.DeleteDocument(ctx, docID); err != nil {
			log.Printf("   ⚠️  Failed to remove previous chunks: %v", err)
		}

		stored := 0
		for i, chunk := range chunks {
			embedding, err := geminiService.GenerateEmbedding(ctx, chunk)
			if err != nil {
				log.Printf("   ❌ Failed to generate embedding for chunk %d: %v", i+1, err)
				continue
			}

			err = qdrantService.UpsertChunk(ctx, services.GuideChunk{
				DocID:   docID,
				DocType: docType,
				Title:   name,
				Index:   i,
				Text:    chunk,
			}, embedding)
			if err != nil {
				log.Printf("   ❌ Failed to store chunk %d: %v", i+1, err)
				continue
			}
			stored++
		}

		if stored == 0 {
			failCount++
			return nil
		}

		log.Printf("   ✅ Stored %d/%d chunks", stored, len(chunks))
		successCount++
		return nil
	})
	if err != nil {
		log.Fatalf("❌ Failed to read %s: %v", *dir, err)
	}

	log.Println("\n" + strings.Repeat("=", 60))
	log.Printf("📊 Ingestion Summary:")
	log.Printf("   ✅ Successful: %d documents", successCount)
	log.Printf("   ❌ Failed: %d documents", failCount)
	log.Println(strings.Repeat("=", 60))

	if failCount > 0 {
		os.Exit(1)
	}
}
