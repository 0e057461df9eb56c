package agent

// CitationURLs pulls url_citation targets out of loosely typed message
// annotations. Providers ship annotations as raw JSON objects shaped like
// {"type":"url_citation","url_citation":{"url":...,"title":...}}; anything
// that does not match is ignored.
func CitationURLs(annotations []any) []string {
	var urls []string
	for _, raw := range annotations {
		ann, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		citation, ok := ann["url_citation"].(map[string]any)
		if !ok {
			continue
		}
		if u, ok := citation["url"].(string); ok && u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// mergeURLs concatenates the given URL lists preserving first-seen order and
// dropping duplicates.
func mergeURLs(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var merged []string
	for _, list := range lists {
		for _, u := range list {
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			merged = append(merged, u)
		}
	}
	return merged
}
