package intent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstPick(n int) int { return 0 }

func TestResolveExampleScanPrecedesKeywords(t *testing.T) {
	r := NewResolver()

	// "Bonjour" is a greeting example phrase, so the example scan wins even
	// though the text also carries the "réserv" keyword.
	assert.Equal(t, "greeting", r.Resolve("Bonjour, je voudrais réserver une chambre"))

	// Without a greeting the keyword chain routes to the reservation intent,
	// and "réserv" outranks the later "chambre" rule.
	assert.Equal(t, "make_reservation", r.Resolve("je voudrais réserver une chambre"))
}

func TestResolveKeywordChain(t *testing.T) {
	r := NewResolver()

	cases := []struct {
		text string
		want string
	}{
		{"bonsoir tout le monde", "greeting"},
		{"avez-vous des chambres disponibles demain", "check_availability"},
		{"le wifi marche pas", "wifi_info"},
		{"où garer ma voiture", "parking_info"},
		{"heure d'arrivée demain", "check_in_time"},
		{"mon départ est dimanche", "check_out_time"},
		{"merci pour tout", "thanks"},
		{"ok bye", "goodbye"},
		{"j'ai un problème dans la 12", "complaint"},
		{"suis-je vip maintenant", "loyalty_status"},
		{"je veux parler à un humain", "contact_reception"},
		{"avez-vous une piscine chauffée", "amenities"},
		{"une suite pour deux", "room_types"},
		{"quelle est votre adresse", "directions"},
		{"montre le menu", "help_menu"},
		{"xyzxyz nonsense", Fallback},
		{"", Fallback},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, r.Resolve(tc.text), "text: %q", tc.text)
	}
}

func TestResolveSubstringInsideLongerWord(t *testing.T) {
	r := NewResolver()
	// Substring matching is deliberate: "chambre" fires inside "chambres".
	assert.Equal(t, "room_types", r.Resolve("vos chambres sont belles"))
}

func TestResolveIsStable(t *testing.T) {
	r := NewResolver()
	first := r.Resolve("Je veux réserver")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, r.Resolve("Je veux réserver"))
	}
}

func TestRespondAuthGate(t *testing.T) {
	r := NewResolver(WithPick(firstPick))

	reply := r.Respond("loyalty_status", nil)
	assert.Equal(t, authPrompt, reply)

	reply = r.Respond("loyalty_status", &Client{FullName: "Amani Kalinda", Score: 45})
	assert.Contains(t, reply, "45%")
}

func TestRespondSubstitution(t *testing.T) {
	r := NewResolver(WithPick(firstPick))

	reply := r.Respond("greeting", &Client{FullName: "Amani Kalinda"})
	assert.Contains(t, reply, "Amani Kalinda")
	assert.NotContains(t, reply, "{{")

	// Given name backs up a missing full name.
	reply = r.Respond("greeting", &Client{GivenName: "Amani"})
	assert.Contains(t, reply, "Amani")

	// No client on a non-auth intent substitutes the generic name.
	reply = r.Respond("greeting", nil)
	assert.Contains(t, reply, genericName)
	assert.NotContains(t, reply, "{{")
}

func TestRespondUnknownIntentFallsBack(t *testing.T) {
	r := NewResolver(WithPick(firstPick))
	assert.Equal(t, Table[len(Table)-1].Responses[0], r.Respond("no_such_intent", nil))
}

func TestReplyDrawsFromResolvedIntentTemplates(t *testing.T) {
	r := NewResolver()
	client := &Client{FullName: "Amani Kalinda", Score: 60}

	var def *Intent
	for i := range Table {
		if Table[i].Name == "thanks" {
			def = &Table[i]
		}
	}
	require.NotNil(t, def)

	for i := 0; i < 20; i++ {
		reply := r.Reply("Merci beaucoup", client)
		found := false
		for _, tpl := range def.Responses {
			if reply == substitute(tpl, client) {
				found = true
				break
			}
		}
		assert.True(t, found, "reply %q not drawn from thanks templates", reply)
	}
}

func TestTableTemplatesRenderClean(t *testing.T) {
	r := NewResolver(WithPick(firstPick))
	client := &Client{FullName: "Test Client", Score: 10}
	for _, def := range Table {
		require.NotEmpty(t, def.Responses, "intent %s has no responses", def.Name)
		reply := r.Respond(def.Name, client)
		assert.False(t, strings.Contains(reply, "{{"), "intent %s leaked a placeholder: %q", def.Name, reply)
	}
}
