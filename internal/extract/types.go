package extract

// Kind names a source payload type. The set is closed: pdf, text, url.
type Kind string

// Source kinds.
const (
	KindPDF  Kind = "pdf"
	KindText Kind = "text"
	KindURL  Kind = "url"
)

// Valid reports whether k names a known source kind.
func (k Kind) Valid() bool {
	switch k {
	case KindPDF, KindText, KindURL:
		return true
	}
	return false
}

// Input is the closed tagged union of source payloads. Only PDF, Text, and
// URL implement it; Extract dispatches by type switch so every kind is
// handled exhaustively.
type Input interface {
	Kind() Kind

	// Meta returns the provenance string persisted with the source
	// (filename or URL, empty for inline text).
	Meta() string

	sealed()
}

// PDF is an uploaded PDF document.
type PDF struct {
	Data     []byte
	Filename string
}

// Kind implements Input.
func (PDF) Kind() Kind { return KindPDF }

// Meta implements Input.
func (p PDF) Meta() string { return p.Filename }

func (PDF) sealed() {}

// Text is caller-supplied plain text. No network or parsing is involved.
type Text struct {
	Content string
}

// Kind implements Input.
func (Text) Kind() Kind { return KindText }

// Meta implements Input.
func (Text) Meta() string { return "" }

func (Text) sealed() {}

// URL is a web page address to fetch and clean.
type URL struct {
	Addr string
}

// Kind implements Input.
func (URL) Kind() Kind { return KindURL }

// Meta implements Input.
func (u URL) Meta() string { return u.Addr }

func (URL) sealed() {}
