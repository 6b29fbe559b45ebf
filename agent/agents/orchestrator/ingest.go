package orchestrator

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/agentswarm/agentswarm/agent/contract"
	"github.com/agentswarm/agentswarm/agent/pricing"
	scraperx "github.com/agentswarm/agentswarm/pkg/scraper"
)

// maxChunkChars bounds one indexed document. Small chunks keep the
// similarity signal sharp; a whole scraped page embeds poorly.
const maxChunkChars = 300

// PageSource yields scraped pages for ingestion. Failing URLs are
// skipped by the implementation, not surfaced here.
type PageSource interface {
	ScrapeAll(ctx context.Context, urls []string) []scraperx.Page
}

// Ingestor turns source pages into partitioned index documents, falling
// back to the built-in seed corpus when no pages are available.
type Ingestor struct {
	pages     PageSource
	urls      []string
	extractor *pricing.Extractor
}

func NewIngestor(pages PageSource, urls []string) *Ingestor {
	return &Ingestor{
		pages:     pages,
		urls:      urls,
		extractor: pricing.NewExtractor(),
	}
}

func (i *Ingestor) Load(ctx context.Context) []contractx.Document {
	docs := i.loadScraped(ctx)
	if len(docs) == 0 {
		log.Info().Msg("no scraped content available, using seed corpus")
		return seedDocuments()
	}
	return docs
}

func (i *Ingestor) loadScraped(ctx context.Context) []contractx.Document {
	if i.pages == nil || len(i.urls) == 0 {
		return nil
	}

	var docs []contractx.Document
	for _, page := range i.pages.ScrapeAll(ctx, i.urls) {
		for _, chunk := range chunkText(page.Text) {
			docs = append(docs, contractx.Document{
				Text:      chunk,
				Partition: i.classify(chunk),
			})
		}
	}
	log.Info().Int("documents", len(docs)).Int("urls", len(i.urls)).Msg("ingested scraped content")
	return docs
}

// classify picks the partition for one chunk: anything with extractable
// pricing goes to PRICING, key-value records to STRUCTURED, the rest to
// TEXT.
func (i *Ingestor) classify(chunk string) contractx.Partition {
	if len(i.extractor.Extract(chunk)) > 0 {
		return contractx.PartitionPricing
	}
	if isRecordLike(chunk) {
		return contractx.PartitionStructured
	}
	return contractx.PartitionText
}

// isRecordLike detects key-value style content, e.g.
// "plan: pro | device: smart | settlement: 1 day".
func isRecordLike(chunk string) bool {
	pairs := strings.Count(chunk, ": ")
	return pairs >= 3 && (strings.Contains(chunk, "|") || strings.Contains(chunk, ";"))
}

// chunkText packs sentences into chunks of at most maxChunkChars,
// never splitting inside a sentence.
func chunkText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= maxChunkChars {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	for _, sentence := range splitSentences(text) {
		if current.Len() > 0 && current.Len()+len(sentence)+1 > maxChunkChars {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}
	return chunks
}

func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '.' && text[i] != '!' && text[i] != '?' {
			continue
		}
		if i+1 < len(text) && text[i+1] != ' ' {
			continue
		}
		if s := strings.TrimSpace(text[start : i+1]); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// seedDocuments is the built-in product corpus used until a real
// content source is configured.
func seedDocuments() []contractx.Document {
	return []contractx.Document{
		{
			Text:      "Maquininha Smart is InfinitePay's card machine. It accepts credit cards, debit cards, PIX, and contactless payments, and works over Wi-Fi or its own chip.",
			Partition: contractx.PartitionText,
		},
		{
			Text:      "Maquininha Smart rates: Credit cards 2.5%, Debit cards 1.9%, PIX free. Installment sales from 4.2% depending on the plan.",
			Partition: contractx.PartitionPricing,
		},
		{
			Text:      "InfiniteTap turns your phone into a card machine. Tap to Pay on smartphone charges 3.15% per credit transaction with no extra device.",
			Partition: contractx.PartitionPricing,
		},
		{
			Text:      "PIX is the Brazilian instant payment system. With InfinitePay, PIX transfers are free and settle immediately, any day and any hour.",
			Partition: contractx.PartitionText,
		},
		{
			Text:      "Boleto payments are available for the digital account. Boleto issuance costs R$ 3.50 per slip and settles in one business day.",
			Partition: contractx.PartitionPricing,
		},
		{
			Text:      "The InfinitePay digital account has no monthly maintenance fee. Balance earns 100% of CDI and the account includes a free virtual card.",
			Partition: contractx.PartitionText,
		},
		{
			Text:      "plan: pro | device: maquininha_smart | monthly_fee: R$ 0 | credit_rate: 2.5% | debit_rate: 1.9% | settlement: 1 business day",
			Partition: contractx.PartitionStructured,
		},
		{
			Text:      "plan: tap | device: smartphone | monthly_fee: R$ 0 | credit_rate: 3.15% | settlement: 1 business day",
			Partition: contractx.PartitionStructured,
		},
		{
			Text:      "Payment links let you sell online without a website. Share the link on social media and receive by credit card, PIX, or boleto.",
			Partition: contractx.PartitionText,
		},
		{
			Text:      "Empréstimo para lojistas: working capital loans are offered based on your sales history, with rates from 1.99% per month.",
			Partition: contractx.PartitionPricing,
		},
	}
}
