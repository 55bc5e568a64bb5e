package workflow

import "newsflow/internal/news"

// DigestSet accumulates final articles per recipient across topics. A
// recipient subscribed to several topics that surface the same link gets
// that article exactly once.
type DigestSet struct {
	order   []string
	digests map[string][]news.FinalArticle
	links   map[string]map[string]struct{}
}

func NewDigestSet() *DigestSet {
	return &DigestSet{
		digests: make(map[string][]news.FinalArticle),
		links:   make(map[string]map[string]struct{}),
	}
}

// Add appends each article to the recipient's digest unless the link is
// already present.
func (d *DigestSet) Add(recipient string, articles []news.FinalArticle) {
	seen, ok := d.links[recipient]
	if !ok {
		seen = make(map[string]struct{})
		d.links[recipient] = seen
		d.order = append(d.order, recipient)
	}

	for _, article := range articles {
		if _, dup := seen[article.Link]; dup {
			continue
		}
		seen[article.Link] = struct{}{}
		d.digests[recipient] = append(d.digests[recipient], article)
	}
}

// Recipients returns recipients in first-seen order.
func (d *DigestSet) Recipients() []string {
	return d.order
}

// Articles returns the accumulated digest for one recipient.
func (d *DigestSet) Articles(recipient string) []news.FinalArticle {
	return d.digests[recipient]
}
