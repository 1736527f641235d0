package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/answerdesk/answerdesk/internal/log"
)

func TestExtractText(t *testing.T) {
	e := New(nil, log.NewNop())

	got, err := e.Extract(context.Background(), Text{Content: "  raw   text\npasses through  "})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	// Text passes through unmodified; normalization happens in the chunker.
	if got != "  raw   text\npasses through  " {
		t.Errorf("Extract() = %q", got)
	}
}

func TestExtractPDFRejectsOversized(t *testing.T) {
	e := New(nil, log.NewNop())

	data := make([]byte, MaxPDFBytes+1)
	_, err := e.Extract(context.Background(), PDF{Data: data, Filename: "big.pdf"})
	if !errors.Is(err, ErrExtraction) {
		t.Errorf("Extract() error = %v, want ErrExtraction", err)
	}
}

func TestExtractPDFMalformed(t *testing.T) {
	e := New(nil, log.NewNop())

	_, err := e.Extract(context.Background(), PDF{Data: []byte("not a pdf at all"), Filename: "bad.pdf"})
	if !errors.Is(err, ErrExtraction) {
		t.Errorf("Extract() error = %v, want ErrExtraction", err)
	}
}

func TestExtractPDFEmpty(t *testing.T) {
	e := New(nil, log.NewNop())

	_, err := e.Extract(context.Background(), PDF{Filename: "empty.pdf"})
	if !errors.Is(err, ErrExtraction) {
		t.Errorf("Extract() error = %v, want ErrExtraction", err)
	}
}

func TestExtractURL(t *testing.T) {
	const page = `<html><head>
		<script>ignore("me")</script>
		<style>body { color: red }</style>
	</head><body>
		<nav>Home | About</nav>
		<h1>Opening   Hours</h1>
		<p>We are open
		9am   to 5pm.</p>
		<footer>Copyright</footer>
	</body></html>`

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	e := New(srv.Client(), log.NewNop())
	got, err := e.Extract(context.Background(), URL{Addr: srv.URL})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if got != "Opening Hours We are open 9am to 5pm." {
		t.Errorf("Extract() = %q", got)
	}
	for _, banned := range []string{"ignore", "color: red", "Home | About", "Copyright"} {
		if strings.Contains(got, banned) {
			t.Errorf("stripped element leaked into output: %q", banned)
		}
	}
	if gotUA != userAgent {
		t.Errorf("User-Agent = %q, want %q", gotUA, userAgent)
	}
}

func TestExtractURLTruncates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>"))
		chunk := []byte(strings.Repeat("a", 1000) + " ")
		for i := 0; i < 150; i++ {
			_, _ = w.Write(chunk)
		}
		_, _ = w.Write([]byte("</body></html>"))
	}))
	defer srv.Close()

	e := New(srv.Client(), log.NewNop())
	got, err := e.Extract(context.Background(), URL{Addr: srv.URL})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(got) != MaxPageChars {
		t.Errorf("len = %d, want truncation to %d", len(got), MaxPageChars)
	}
}

// The page ceiling counts runes; a multibyte page is cut on a character
// boundary, never mid-rune.
func TestExtractURLTruncatesMultibyte(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>"))
		chunk := []byte(strings.Repeat("知", 1000))
		for i := 0; i < 110; i++ {
			_, _ = w.Write(chunk)
		}
		_, _ = w.Write([]byte("</body></html>"))
	}))
	defer srv.Close()

	e := New(srv.Client(), log.NewNop())
	got, err := e.Extract(context.Background(), URL{Addr: srv.URL})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !utf8.ValidString(got) {
		t.Error("truncated text is not valid UTF-8")
	}
	if n := utf8.RuneCountInString(got); n != MaxPageChars {
		t.Errorf("rune count = %d, want %d", n, MaxPageChars)
	}
}

func TestExtractURLNon2xx(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"server error", http.StatusInternalServerError},
		{"redirect loop exhausted", http.StatusMovedPermanently},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := srv.Client()
			client.CheckRedirect = func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			}

			e := New(client, log.NewNop())
			_, err := e.Extract(context.Background(), URL{Addr: srv.URL})

			var fe *FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("Extract() error = %T %v, want *FetchError", err, err)
			}
			if fe.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", fe.StatusCode, tt.status)
			}
			if !errors.Is(err, ErrFetch) {
				t.Error("FetchError does not match ErrFetch")
			}
		})
	}
}

func TestExtractURLNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediately: connection refused

	e := New(nil, log.NewNop())
	_, err := e.Extract(context.Background(), URL{Addr: srv.URL})

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Extract() error = %T, want *FetchError", err)
	}
	if fe.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for transport error", fe.StatusCode)
	}
}

func TestKindValid(t *testing.T) {
	for _, k := range []Kind{KindPDF, KindText, KindURL} {
		if !k.Valid() {
			t.Errorf("Kind(%q).Valid() = false", k)
		}
	}
	if Kind("docx").Valid() {
		t.Error(`Kind("docx").Valid() = true`)
	}
}
