package hostfuncs

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"

	"github.com/moshez/ward/wireformat"
)

// droppedElements are removed together with everything inside them.
var droppedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"iframe":   true,
	"object":   true,
	"embed":    true,
	"applet":   true,
	"noscript": true,
	"template": true,
	"frame":    true,
	"frameset": true,
	"base":     true,
	"link":     true,
	"meta":     true,
	"svg":      true,
	"math":     true,
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

var urlAttributes = map[string]bool{
	"href":       true,
	"src":        true,
	"action":     true,
	"formaction": true,
	"poster":     true,
	"cite":       true,
	"background": true,
}

// SanitizeHTML tokenizes untrusted markup and encodes the safe subset as a
// markup stream: script-bearing elements are dropped with their content, as
// are event-handler attributes, inline styles, attribute names that are not
// plain alphanumerics, and script-capable URLs. The output is balanced:
// stray end tags are ignored and open elements are closed at end of input.
func SanitizeHTML(markup []byte) []byte {
	z := html.NewTokenizer(bytes.NewReader(markup))
	var w wireformat.MarkupWriter
	var open []string
	skipTag := ""
	skipDepth := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			for range open {
				w.Close()
			}
			return w.Bytes()

		case html.TextToken:
			if skipDepth == 0 {
				w.Text(string(z.Text()))
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			selfClosing := tt == html.SelfClosingTagToken || voidElements[tok.Data]
			if skipDepth > 0 {
				if tok.Data == skipTag && !selfClosing {
					skipDepth++
				}
				continue
			}
			if droppedElements[tok.Data] {
				if !selfClosing {
					skipTag, skipDepth = tok.Data, 1
				}
				continue
			}
			if !w.Open(tok.Data, safeAttrs(tok.Attr)) {
				continue
			}
			if selfClosing {
				w.Close()
			} else {
				open = append(open, tok.Data)
			}

		case html.EndTagToken:
			tok := z.Token()
			if skipDepth > 0 {
				if tok.Data == skipTag {
					skipDepth--
				}
				continue
			}
			for i := len(open) - 1; i >= 0; i-- {
				if open[i] == tok.Data {
					for range open[i:] {
						w.Close()
					}
					open = open[:i]
					break
				}
			}
		}
	}
}

func safeAttrs(attrs []html.Attribute) []wireformat.Attr {
	out := make([]wireformat.Attr, 0, len(attrs))
	for _, a := range attrs {
		if a.Namespace != "" || !safeAttrName(a.Key) {
			continue
		}
		if urlAttributes[a.Key] && scriptURL(a.Val) {
			continue
		}
		out = append(out, wireformat.Attr{Name: a.Key, Value: a.Val})
	}
	return out
}

func safeAttrName(name string) bool {
	if name == "" || name == "style" || strings.HasPrefix(name, "on") {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

func scriptURL(v string) bool {
	v = strings.Map(func(r rune) rune {
		if r <= ' ' {
			return -1
		}
		return r
	}, v)
	v = strings.ToLower(v)
	return strings.HasPrefix(v, "javascript:") ||
		strings.HasPrefix(v, "vbscript:") ||
		strings.HasPrefix(v, "data:")
}
