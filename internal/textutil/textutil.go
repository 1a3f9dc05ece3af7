// Package textutil extracts hashtag and mention tokens from tweet bodies.
package textutil

import "strings"

const punctCutset = ".,!?:;()[]"

// Hashtags returns the #-prefixed tokens of body, prefix kept,
// case-sensitive, deduplicated in first-seen order.
func Hashtags(body string) []string {
	return tokens(body, "#")
}

// Mentions returns the @-prefixed tokens of body, prefix kept,
// deduplicated in first-seen order. Whether a mention resolves to a known
// user is the caller's concern, so the literal token survives extraction.
func Mentions(body string) []string {
	return tokens(body, "@")
}

func tokens(body, prefix string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, f := range strings.Fields(body) {
		f = strings.Trim(f, punctCutset)
		if !strings.HasPrefix(f, prefix) || len(f) == len(prefix) {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
