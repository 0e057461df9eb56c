// Package article turns result URLs into stored text blobs: it fetches each
// page, extracts the readable text and uploads it to blob storage with the
// source URL and title attached as metadata.
package article

// Data is one extracted article.
type Data struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Outcome records what happened to a single URL during batch processing.
// Err is nil when the article was extracted and stored; Blob then holds the
// name it was stored under.
type Outcome struct {
	URL     string
	Blob    string
	Article *Data
	Err     error
}

// Stored filters outcomes down to the successfully stored articles, in
// input order. The result is never nil so it encodes as a JSON array.
func Stored(outcomes []Outcome) []*Data {
	articles := make([]*Data, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err == nil && o.Article != nil {
			articles = append(articles, o.Article)
		}
	}
	return articles
}
