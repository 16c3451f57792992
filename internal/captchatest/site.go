package captchatest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ironsheep/captcha-tools-mcp/internal/corpus"
)

// PagePath is the challenge page path served by Site.
const PagePath = "/errors/validateCaptcha"

// Site is a fake challenge site. Every page shows the same image of Answer.
// Submitting Answer with the page token redirects to "/"; any other answer
// gets the challenge page again.
type Site struct {
	*httptest.Server

	Answer string
	Token  string

	Pages    atomic.Int64
	Images   atomic.Int64
	Accepted atomic.Int64
	Rejected atomic.Int64
}

// NewSite starts a Site rendering text with store. The answer expected back
// is text lower-cased. The server is closed when the test ends.
func NewSite(tb testing.TB, store *corpus.Store, text string) *Site {
	tb.Helper()

	image := PNG(tb, RenderText(tb, store, text))
	site := &Site{Answer: strings.ToLower(text), Token: "tok-42"}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "<html><body>home</body></html>")
	})
	mux.HandleFunc("/captcha/challenge.jpg", func(w http.ResponseWriter, r *http.Request) {
		site.Images.Add(1)
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(image) //nolint:errcheck
	})
	mux.HandleFunc(PagePath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Has("field-keywords") {
			if q.Get("field-keywords") == site.Answer && q.Get("amzn") == site.Token {
				site.Accepted.Add(1)
				http.Redirect(w, r, q.Get("amzn-r"), http.StatusFound)
				return
			}
			site.Rejected.Add(1)
		}
		site.Pages.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, pageTemplate, site.Token)
	})

	site.Server = httptest.NewServer(mux)
	tb.Cleanup(site.Close)
	return site
}

// PageURL returns the absolute challenge page URL.
func (s *Site) PageURL() string {
	return s.URL + PagePath
}

const pageTemplate = `<!doctype html>
<html>
<head><title>Robot Check</title></head>
<body>
<div class="a-row a-text-center">
  <img src="/captcha/challenge.jpg">
</div>
<form method="get" action="/errors/validateCaptcha" name="">
  <input type=hidden name="amzn" value="%s" />
  <input type=hidden name="amzn-r" value="&#047;" />
  <input id="captchacharacters" name="field-keywords" type="text">
  <button type="submit">Continue shopping</button>
</form>
</body>
</html>
`
