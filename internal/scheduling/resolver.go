package scheduling

import (
	"strings"

	"github.com/wolfman30/bookline/internal/clients"
	"github.com/wolfman30/bookline/internal/providers"
)

// MatchProviders returns every provider whose name contains the query,
// case-insensitively. Zero, one, or many candidates come back; callers
// decide whether multiple matches mean "report all" or "ask the user".
func MatchProviders(query string, list []providers.Provider) []providers.Provider {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var matches []providers.Provider
	for _, p := range list {
		if strings.Contains(strings.ToLower(p.Name), q) {
			matches = append(matches, p)
		}
	}
	return matches
}

// MatchClient resolves a free-text name to a client using a cascade of
// progressively looser rules. The cascade is deliberate: conversational
// input rarely matches a stored name exactly.
//
//  1. the query is a substring of "first last" or "last first"
//  2. a two-token query matches first and last name exactly
//  3. the first token matches either first or last name exactly
//  4. any client at all, when the set is non-empty
//
// Returns nil only when no clients exist.
func MatchClient(query string, list []clients.Client) *clients.Client {
	if len(list) == 0 {
		return nil
	}
	q := strings.ToLower(strings.TrimSpace(query))

	for i, c := range list {
		firstLast := strings.ToLower(c.FirstName + " " + c.LastName)
		lastFirst := strings.ToLower(c.LastName + " " + c.FirstName)
		if q != "" && (strings.Contains(firstLast, q) || strings.Contains(lastFirst, q)) {
			return &list[i]
		}
	}

	tokens := strings.Fields(q)
	if len(tokens) == 2 {
		for i, c := range list {
			if strings.EqualFold(c.FirstName, tokens[0]) && strings.EqualFold(c.LastName, tokens[1]) {
				return &list[i]
			}
		}
	}
	if len(tokens) > 0 {
		for i, c := range list {
			if strings.EqualFold(c.FirstName, tokens[0]) || strings.EqualFold(c.LastName, tokens[0]) {
				return &list[i]
			}
		}
	}

	return &list[0]
}
