package render

import (
	"strings"

	"golang.org/x/net/html"
)

var allowedTags = map[string]bool{
	"span": true, "b": true, "strong": true, "i": true, "em": true, "u": true, "del": true,
	"br": true, "p": true, "ul": true, "ol": true, "li": true,
	"h1": true, "h2": true, "h3": true, "h4": true,
}

// dropped along with their content
var rawTextTags = map[string]bool{
	"script": true, "style": true, "iframe": true, "object": true, "noscript": true, "textarea": true, "title": true,
}

var allowedStyle = map[string]bool{
	"color":            true,
	"background-color": true,
	"font-weight":      true,
	"font-style":       true,
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Sanitize keeps only allow-listed tags. span keeps a filtered style attribute,
// every other attribute is removed. Text is re-escaped.
func Sanitize(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var (
		out  strings.Builder
		skip string
	)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or a tokenizer error; either way the fragment ends here.
			return out.String()
		case html.TextToken:
			if skip == "" {
				out.WriteString(textEscaper.Replace(string(z.Text())))
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if skip != "" {
				continue
			}
			if rawTextTags[tag] {
				if tt == html.StartTagToken {
					skip = tag
				}
				continue
			}
			if !allowedTags[tag] {
				continue
			}
			if tag == "br" {
				out.WriteString("<br>")
				continue
			}
			out.WriteString("<" + tag)
			if tag == "span" && hasAttr {
				if style := spanStyle(z); style != "" {
					out.WriteString(" style='" + style + "'")
				}
			}
			out.WriteString(">")
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skip != "" {
				if tag == skip {
					skip = ""
				}
				continue
			}
			if allowedTags[tag] && tag != "br" {
				out.WriteString("</" + tag + ">")
			}
		}
	}
}

func spanStyle(z *html.Tokenizer) string {
	for {
		key, val, more := z.TagAttr()
		if string(key) == "style" {
			return filterStyle(string(val))
		}
		if !more {
			return ""
		}
	}
}

func filterStyle(style string) string {
	var kept []string
	for _, decl := range strings.Split(style, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		if !allowedStyle[prop] || !safeStyleValue(value) {
			continue
		}
		kept = append(kept, prop+":"+value+";")
	}
	return strings.Join(kept, " ")
}

func safeStyleValue(v string) bool {
	if v == "" {
		return false
	}
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '#', r == ' ', r == '.', r == ',', r == '%', r == '-':
		default:
			return false
		}
	}
	return true
}
