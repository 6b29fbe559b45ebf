// Package index implements the semantic index: embedded text chunks in
// three logical partitions with brute-force cosine similarity search.
//
// Contents live in an immutable snapshot behind an atomic pointer.
// Queries read whatever snapshot is current; a rebuild embeds the new
// corpus aside and swaps the pointer, so in-flight queries finish
// against the old contents and never observe a partial mix.
package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/agentswarm/agentswarm/agent/contract"
)

const (
	// DefaultTopK is the similarity query depth when callers pass k <= 0.
	DefaultTopK = 3
	// embedBatchSize caps texts per embedding call during rebuild.
	embedBatchSize = 64
)

type indexedDoc struct {
	id        string
	text      string
	partition contractx.Partition
	vector    []float64
}

// snapshot is immutable after construction.
type snapshot struct {
	docs   []indexedDoc
	counts map[contractx.Partition]int
}

// Index is the process-wide semantic index. Safe for concurrent use.
type Index struct {
	embedder contractx.Embedder

	current atomic.Pointer[snapshot]
	// rebuildMu serializes rebuilds; queries never take it.
	rebuildMu sync.Mutex
}

func New(embedder contractx.Embedder) *Index {
	idx := &Index{embedder: embedder}
	idx.current.Store(&snapshot{counts: map[contractx.Partition]int{}})
	return idx
}

// Query embeds text and returns the top-k most similar documents across
// the requested partitions, ordered by descending score. An empty index
// fails with ErrIndexUnavailable so callers can fall back to search.
func (i *Index) Query(ctx context.Context, text string, partitions []contractx.Partition, k int) ([]contractx.RetrievedFact, error) {
	snap := i.current.Load()
	if snap == nil || len(snap.docs) == 0 {
		return nil, fmt.Errorf("%w: index is empty", contractx.ErrIndexUnavailable)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: query text is empty", contractx.ErrValidation)
	}
	if k <= 0 {
		k = DefaultTopK
	}

	vectors, err := i.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", contractx.ErrIndexUnavailable, err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned for query", contractx.ErrIndexUnavailable)
	}
	query := vectors[0]

	wanted := make(map[contractx.Partition]bool, len(partitions))
	for _, p := range partitions {
		wanted[p] = true
	}

	facts := make([]contractx.RetrievedFact, 0, len(snap.docs))
	for _, doc := range snap.docs {
		if len(wanted) > 0 && !wanted[doc.partition] {
			continue
		}
		if len(doc.vector) != len(query) {
			continue
		}
		facts = append(facts, contractx.RetrievedFact{
			Text:      doc.text,
			Source:    contractx.SourceIndex,
			Score:     cosineSimilarity(query, doc.vector),
			Partition: doc.partition,
		})
	}

	sort.Slice(facts, func(a, b int) bool { return facts[a].Score > facts[b].Score })
	if k < len(facts) {
		facts = facts[:k]
	}
	return facts, nil
}

// Rebuild embeds docs into a fresh snapshot and atomically replaces the
// current one. Full replace, never an incremental merge.
func (i *Index) Rebuild(ctx context.Context, docs []contractx.Document) error {
	i.rebuildMu.Lock()
	defer i.rebuildMu.Unlock()

	start := time.Now()

	kept := make([]contractx.Document, 0, len(docs))
	for _, d := range docs {
		if strings.TrimSpace(d.Text) != "" {
			kept = append(kept, d)
		}
	}

	next := &snapshot{
		docs:   make([]indexedDoc, 0, len(kept)),
		counts: map[contractx.Partition]int{},
	}

	for lo := 0; lo < len(kept); lo += embedBatchSize {
		hi := lo + embedBatchSize
		if hi > len(kept) {
			hi = len(kept)
		}
		batch := kept[lo:hi]

		texts := make([]string, len(batch))
		for j, d := range batch {
			texts[j] = d.Text
		}
		vectors, err := i.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("%w: embed documents: %v", contractx.ErrIndexUnavailable, err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("%w: embedder returned %d vectors for %d documents", contractx.ErrIndexUnavailable, len(vectors), len(batch))
		}

		for j, d := range batch {
			next.docs = append(next.docs, indexedDoc{
				id:        uuid.NewString(),
				text:      d.Text,
				partition: d.Partition,
				vector:    vectors[j],
			})
			next.counts[d.Partition]++
		}
	}

	i.current.Store(next)
	log.Info().
		Int("documents", len(next.docs)).
		Dur("elapsed", time.Since(start)).
		Msg("semantic index rebuilt")
	return nil
}

// Stats reports per-partition document counts for the current snapshot.
func (i *Index) Stats() contractx.IndexStats {
	snap := i.current.Load()
	stats := contractx.IndexStats{Counts: map[contractx.Partition]int{
		contractx.PartitionText:       0,
		contractx.PartitionPricing:    0,
		contractx.PartitionStructured: 0,
	}}
	if snap == nil {
		return stats
	}
	for p, n := range snap.counts {
		stats.Counts[p] = n
		stats.Total += n
	}
	return stats
}

func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
