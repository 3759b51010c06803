// Package intent maps free-text client messages to a fixed set of named
// intents and renders a reply from the matched intent's template list.
package intent

import (
	"math/rand"
	"strconv"
	"strings"
)

// Client is the read-only profile subset replies are personalised with.
// A nil *Client means nobody is authenticated.
type Client struct {
	FullName  string
	GivenName string
	Score     int
}

const (
	genericName = "cher client"
	authPrompt  = "Pour accéder à cette fonctionnalité, vous devez d'abord vous identifier avec votre numéro WhatsApp."
)

// Resolver classifies text against the static intent table and picks reply
// templates. It holds no mutable state besides the injected random source,
// so a single instance is safe for concurrent use when pick is.
type Resolver struct {
	byName map[string]*Intent
	pick   func(n int) int
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithPick replaces the template selector. Tests use it to pin which
// template a reply is rendered from.
func WithPick(pick func(n int) int) Option {
	return func(r *Resolver) { r.pick = pick }
}

// NewResolver builds a resolver over the static table.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		byName: make(map[string]*Intent, len(Table)),
		pick:   rand.Intn,
	}
	for i := range Table {
		r.byName[Table[i].Name] = &Table[i]
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve maps raw text to an intent name. It never returns an empty string:
// unmatched input yields the fallback sentinel. Matching is substring-based
// on the lowercased raw text, so "chambre" also fires inside "chambres".
func (r *Resolver) Resolve(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))

	for i := range Table {
		for _, example := range Table[i].Examples {
			if strings.Contains(lower, strings.ToLower(example)) {
				return Table[i].Name
			}
		}
	}

	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.intent
			}
		}
	}

	return Fallback
}

// Respond renders a reply for a resolved intent. Intents that require
// authentication short-circuit to a fixed identification prompt when client
// is nil; everything else picks one template uniformly and substitutes the
// placeholders. Total: unknown intent names render as fallback.
func (r *Resolver) Respond(intentName string, client *Client) string {
	def, ok := r.byName[intentName]
	if !ok {
		def = r.byName[Fallback]
	}

	if def.RequiresAuth && client == nil {
		return authPrompt
	}

	template := def.Responses[r.pick(len(def.Responses))]
	return substitute(template, client)
}

// Reply resolves text and renders the response in one step.
func (r *Resolver) Reply(text string, client *Client) string {
	return r.Respond(r.Resolve(text), client)
}

func substitute(template string, client *Client) string {
	name := genericName
	score := 0
	if client != nil {
		switch {
		case client.FullName != "":
			name = client.FullName
		case client.GivenName != "":
			name = client.GivenName
		}
		score = client.Score
	}
	out := strings.ReplaceAll(template, "{{nom}}", name)
	return strings.ReplaceAll(out, "{{fidelite}}", strconv.Itoa(score))
}
