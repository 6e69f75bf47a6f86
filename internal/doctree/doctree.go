package doctree

// DocTree is the heading outline of a rendered document.
type DocTree struct {
	Title    string     // Document title (first H1, or the file name)
	Children []*DocNode // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     // Section heading (empty for leaf text)
	Text     string     // Text content of this node (may be empty for container nodes)
	Line     int        // Source line of the heading (0 if N/A)
	Children []*DocNode // Subsections
}

// Headings returns every section title in document order, depth first.
func (t *DocTree) Headings() []string {
	var out []string
	var walk func(nodes []*DocNode)
	walk = func(nodes []*DocNode) {
		for _, n := range nodes {
			if n.Title != "" {
				out = append(out, n.Title)
			}
			walk(n.Children)
		}
	}
	walk(t.Children)
	return out
}

// Chunk is a sized slice of a rendered document, ready for indexing.
type Chunk struct {
	Text   string // Chunk text content, without header
	Index  int    // 1-based position within the document
	Total  int    // Number of chunks the document was split into
	Tokens int    // Estimated token count of Text
}
