package postman

// Postman Collection v2.1.0 documents. Field order follows the order the
// Postman app itself writes, and empty lists are emitted as [] rather than
// omitted.

const SchemaURL = "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"

type Collection struct {
	Info      Info       `json:"info"`
	Folders   []*Folder  `json:"item"`
	Variables []Variable `json:"variable"`
}

type Info struct {
	Name        string `json:"name"`
	Schema      string `json:"schema"`
	Description string `json:"description"`
}

type Variable struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type"`
}

type Folder struct {
	Name  string  `json:"name"`
	Items []*Item `json:"item"`
}

type Item struct {
	Name      string      `json:"name"`
	Request   Request     `json:"request"`
	Responses []*Response `json:"response"`
	Events    []Event     `json:"event,omitempty"`
}

type Request struct {
	Method      string     `json:"method"`
	Headers     []KeyValue `json:"header"`
	Body        Body       `json:"body"`
	URL         URL        `json:"url"`
	Description string     `json:"description"`
}

// KeyValue is a header or query parameter entry.
type KeyValue struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

type URL struct {
	Raw   string     `json:"raw"`
	Host  []string   `json:"host"`
	Path  []string   `json:"path"`
	Query []KeyValue `json:"query"`
}

// Body is serialized as {} when the request has no body.
type Body struct {
	Mode    string       `json:"mode,omitempty"`
	Raw     string       `json:"raw,omitempty"`
	Options *BodyOptions `json:"options,omitempty"`
}

type BodyOptions struct {
	Raw RawOptions `json:"raw"`
}

type RawOptions struct {
	Language string `json:"language"`
}

type Event struct {
	Listen string `json:"listen"`
	Script Script `json:"script"`
}

type Script struct {
	Exec []string `json:"exec"`
	Type string   `json:"type"`
}

type Response struct {
	Name            string     `json:"name"`
	OriginalRequest Request    `json:"originalRequest"`
	Status          string     `json:"status"`
	Code            int        `json:"code"`
	Body            string     `json:"body"`
	Headers         []KeyValue `json:"header"`
	Description     string     `json:"description"`
}

// Counts reports how many folders and requests the collection holds.
func (c *Collection) Counts() (folders, items int) {
	if c == nil {
		return 0, 0
	}
	for _, f := range c.Folders {
		items += len(f.Items)
	}
	return len(c.Folders), items
}
