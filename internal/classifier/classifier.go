// Package classifier decides whether a chat query should be answered from the
// uploaded documents. It is a case-insensitive substring test against a fixed
// keyword set.
package classifier

import "strings"

// DefaultKeywords are document-referential terms in English and Urdu.
var DefaultKeywords = []string{
	"document", "file", "pdf", "doc", "paper", "report", "assignment",
	"what does", "what is", "explain", "summary", "summarize", "tell me about",
	"information", "details", "content", "written", "mentioned", "states",
	"according to", "in the", "from the", "based on",
	"کیا", "کیسے", "بتاؤ",
}

type Classifier struct {
	keywords []string
}

// New builds a classifier. With no keywords it uses DefaultKeywords.
func New(keywords ...string) *Classifier {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}

	c := &Classifier{keywords: make([]string, 0, len(keywords))}
	for _, k := range keywords {
		k = strings.ToLower(k)
		if k == "" {
			continue
		}
		c.keywords = append(c.keywords, k)
	}
	return c
}

// Classify reports whether query should use document context. It is always
// false when no documents are loaded.
func (c *Classifier) Classify(query string, documentCount int) bool {
	if documentCount <= 0 {
		return false
	}

	lowered := strings.ToLower(query)
	for _, k := range c.keywords {
		if strings.Contains(lowered, k) {
			return true
		}
	}
	return false
}
