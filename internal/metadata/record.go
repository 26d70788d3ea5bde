package metadata

// Info is the raw document information dictionary as handed over by the
// document parser. Values are usually []byte or string but nothing is
// guaranteed.
type Info map[string]any

const KindText = "text"

// Record is the canonical metadata emitted for a document. Only Properties
// is guaranteed; every other field is present when the source property was
// found, decoded and non-empty.
type Record struct {
	Properties Properties `json:"properties"`
	Authors    []string   `json:"authors,omitempty"`
	Title      string     `json:"title,omitempty"`
	Keywords   []string   `json:"keywords,omitempty"`
	CreatedAt  string     `json:"createdAt,omitempty"`
	UpdatedAt  string     `json:"updatedAt,omitempty"`
}

type Properties struct {
	Kind  string `json:"kind"`
	Attrs Attrs  `json:"attrs"`
}

type Attrs struct {
	Pages int `json:"pages"`
}
