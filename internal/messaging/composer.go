// Package messaging composes and sends templated outbound messages to
// clients over WhatsApp, routed by the loyalty engine's category selection.
package messaging

import (
	"math/rand"
	"unicode"

	"hoteldesk/internal/loyalty"
)

// Composer renders outbound message texts. Template choice within a category
// is random; the category itself is deterministic (loyalty.SelectCategory).
type Composer struct {
	pick func(n int) int
}

// NewComposer builds a composer. pick may be nil, in which case math/rand
// is used; tests inject a deterministic selector.
func NewComposer(pick func(n int) int) *Composer {
	if pick == nil {
		pick = rand.Intn
	}
	return &Composer{pick: pick}
}

// Random returns one template text for the category, personalised with the
// client name when given. Unknown categories fall back to the thank-you set.
func (c *Composer) Random(category loyalty.Category, clientName string) string {
	return c.fromList(builtinTemplates[category], category, clientName)
}

// FromTemplates picks among stored template rows when any exist, otherwise
// among the built-in texts for the category.
func (c *Composer) FromTemplates(stored []string, category loyalty.Category, clientName string) string {
	if len(stored) > 0 {
		return personalise(stored[c.pick(len(stored))], clientName)
	}
	return c.Random(category, clientName)
}

// Smart selects the category from the client profile and trigger hint, then
// renders a random text for it.
func (c *Composer) Smart(p loyalty.Profile, trigger, clientName string) (loyalty.Category, string) {
	category := loyalty.SelectCategory(p, trigger)
	return category, c.Random(category, clientName)
}

func (c *Composer) fromList(list []string, category loyalty.Category, clientName string) string {
	if len(list) == 0 {
		list = builtinTemplates[loyalty.CategoryThanks]
	}
	return personalise(list[c.pick(len(list))], clientName)
}

// personalise prefixes the text with a salutation, lowering the original
// first letter so the sentence still reads naturally.
func personalise(text, clientName string) string {
	if clientName == "" || text == "" {
		return text
	}
	runes := []rune(text)
	runes[0] = unicode.ToLower(runes[0])
	return "Cher(e) " + clientName + ", " + string(runes)
}

// WithChatbotLink appends the chat widget invitation to a message. A blank
// url returns the message untouched.
func WithChatbotLink(message, url string) string {
	if url == "" {
		return message
	}
	return message + "\n\n💬 Des questions ? Contactez-nous directement ici : " + url
}
