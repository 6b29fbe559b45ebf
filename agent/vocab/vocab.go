// Package vocab holds the domain vocabulary used for deterministic
// routing and retrieval-source decisions.
package vocab

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Product and service terms. A hit means the message is about the
// payment platform itself and should be answered from the index first.
var productTerms = []string{
	"infinitepay", "maquininha", "maquinha", "smart", "celular",
	"tap-to-pay", "tap to pay", "infinitetap", "pdv", "pos",
	"pix", "boleto", "link de pagamento", "payment link",
	"receba na hora", "loja online", "online store",
	"gestao de cobranca", "gestão de cobrança", "billing",
	"conta digital", "conta pj", "digital account",
	"emprestimo", "empréstimo", "loan", "cartao", "cartão", "card machine",
	"rendimento", "pix parcelado",
}

// Pricing-intent terms. A hit forces pricing extraction on retrieved
// facts even when no PRICING-partition document matched.
var pricingTerms = []string{
	"fee", "fees", "rate", "rates", "cost", "price", "charge",
	"%", "percent", "taxa", "taxas", "preço", "preco", "valor",
	"quanto custa", "how much",
}

// Support-intent phrases. A direct hit routes to SUPPORT with
// confidence 1.0, no model call needed.
var supportPhrases = []string{
	"can't access", "cannot access", "can't sign in", "cannot sign in",
	"can't log in", "can't login", "cannot log in",
	"can't make transfers", "can't transfer", "cannot transfer",
	"transfer failed", "transfers are not working",
	"account issue", "account problem", "account blocked", "account locked",
	"não consigo acessar", "não consigo entrar", "não consigo transferir",
	"transferência falhou", "problema na conta", "conta bloqueada",
}

// Knowledge-intent phrases. A direct hit routes to KNOWLEDGE with
// confidence 1.0.
var knowledgePhrases = []string{
	"fees for", "fees of", "how much does", "how much is",
	"rates for", "rate for", "what is the cost", "what are the fees",
	"taxas da", "taxas do", "taxa da", "taxa do", "quanto custa",
	"what is pix", "o que é pix",
}

// Transaction terms trigger the recent-transaction lookup in the
// support agent.
var transactionTerms = []string{
	"transfer", "payment", "transaction", "pix", "money",
	"transferência", "transferencia", "pagamento", "transação", "transacao",
}

func containsAny(message string, terms []string) (string, bool) {
	lower := strings.ToLower(message)
	for _, term := range terms {
		if matchesTerm(lower, term) {
			return term, true
		}
	}
	return "", false
}

// matchesTerm applies substring matching, except that short plain-letter
// terms must sit on word boundaries: "pos" must not fire inside
// "possible", nor "fee" inside "coffee".
func matchesTerm(lower, term string) bool {
	if len(term) >= 4 || !isLetters(term) {
		return strings.Contains(lower, term)
	}
	for start := 0; ; start++ {
		idx := strings.Index(lower[start:], term)
		if idx < 0 {
			return false
		}
		start += idx
		if boundedAt(lower, start, start+len(term)) {
			return true
		}
	}
}

func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func boundedAt(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// MatchesProduct reports whether the message mentions a known product or
// service term, returning the first matching term.
func MatchesProduct(message string) (string, bool) {
	return containsAny(message, productTerms)
}

// MatchesPricing reports whether the message carries pricing intent.
func MatchesPricing(message string) (string, bool) {
	return containsAny(message, pricingTerms)
}

// MatchesSupportPhrase reports a direct support-intent phrase hit.
func MatchesSupportPhrase(message string) (string, bool) {
	return containsAny(message, supportPhrases)
}

// MatchesKnowledgePhrase reports a direct product/pricing phrase hit.
func MatchesKnowledgePhrase(message string) (string, bool) {
	return containsAny(message, knowledgePhrases)
}

// MatchesTransaction reports whether the message implies transaction
// history.
func MatchesTransaction(message string) (string, bool) {
	return containsAny(message, transactionTerms)
}
