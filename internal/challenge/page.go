package challenge

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Hidden form fields echoed back on submit.
const (
	fieldToken    = "amzn"
	fieldRedirect = "amzn-r"
	fieldAnswer   = "field-keywords"
)

// ErrNoImage is returned when a page carries no challenge image.
var ErrNoImage = errors.New("no challenge image on page")

// Page is the parsed content of a challenge page.
type Page struct {
	// ImageURL is the absolute URL of the challenge JPEG.
	ImageURL string `json:"image_url"`
	// Token is the hidden "amzn" value that ties an answer to the image.
	Token string `json:"token"`
	// Redirect is the hidden "amzn-r" value, "/" when absent.
	Redirect string `json:"redirect"`
	// Action is the absolute form action URL, empty when the page has no form.
	Action string `json:"action,omitempty"`
}

// ParsePage extracts the challenge image and hidden form fields from an HTML
// document. Relative URLs are resolved against base.
func ParsePage(r io.Reader, base *url.URL) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse challenge page: %w", err)
	}

	page := &Page{Redirect: "/"}
	var imageSrc, action string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Img:
				src := attr(n, "src")
				if imageSrc == "" && isJPEG(src) {
					imageSrc = src
				}
			case atom.Input:
				switch attr(n, "name") {
				case fieldToken:
					page.Token = attr(n, "value")
				case fieldRedirect:
					if v := attr(n, "value"); v != "" {
						page.Redirect = v
					}
				}
			case atom.Form:
				if action == "" {
					action = attr(n, "action")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if imageSrc == "" {
		return nil, ErrNoImage
	}

	imageURL, err := resolve(base, imageSrc)
	if err != nil {
		return nil, fmt.Errorf("image url: %w", err)
	}
	page.ImageURL = imageURL

	if action != "" {
		if page.Action, err = resolve(base, action); err != nil {
			return nil, fmt.Errorf("form action: %w", err)
		}
	}

	return page, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func isJPEG(src string) bool {
	if src == "" {
		return false
	}
	if u, err := url.Parse(src); err == nil {
		src = u.Path
	}
	lower := strings.ToLower(src)
	return strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg")
}

func resolve(base *url.URL, ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if base == nil {
		return u.String(), nil
	}
	return base.ResolveReference(u).String(), nil
}
