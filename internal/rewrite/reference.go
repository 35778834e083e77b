// Package rewrite finds legacy encrypted-storage media links in block text
// and points them at the migrated objects.
package rewrite

import (
	"regexp"
)

// Kind is the syntactic wrapper a media link appears in.
type Kind int

const (
	KindImage Kind = iota // ![alt](url)
	KindPDF               // {{[[pdf]]: url}}
	KindVideo             // {{[[video]]: url}}
	KindLink              // <url>
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindPDF:
		return "pdf"
	case KindVideo:
		return "video"
	case KindLink:
		return "link"
	default:
		return "unknown"
	}
}

// Wrap renders url in the wrapper of kind k.
func (k Kind) Wrap(alt, url string) string {
	switch k {
	case KindImage:
		return "![" + alt + "](" + url + ")"
	case KindPDF:
		return "{{[[pdf]]: " + url + "}}"
	case KindVideo:
		return "{{[[video]]: " + url + "}}"
	default:
		return "<" + url + ">"
	}
}

// Kinds in the order they are applied to a block.
var Kinds = []Kind{KindImage, KindPDF, KindVideo, KindLink}

var patterns = map[Kind]*regexp.Regexp{
	KindImage: regexp.MustCompile(`(?i)!\[([^\]]*)\]\((https://firebasestorage[^)]+\.enc[^)]*)\)`),
	KindPDF:   regexp.MustCompile(`(?i)\{\{\[\[pdf\]\]:\s*(https://firebasestorage[^}]+\.enc[^}]*)\}\}`),
	KindVideo: regexp.MustCompile(`(?i)\{\{\[\[video\]\]:\s*(https://firebasestorage[^}]+\.enc[^}]*)\}\}`),
	KindLink:  regexp.MustCompile(`(?i)<(https://firebasestorage[^>]+\.enc[^>]*)>`),
}

var identifierRe = regexp.MustCompile(`imgs%2Fapp%2F[^%]+%2F([^.]+)\.([^.]+)\.enc`)

// MediaReference is one legacy link found in a block.
type MediaReference struct {
	Kind       Kind
	Start, End int // byte span of the whole wrapper in the text
	Alt        string
	URL        string
	Identifier string
	Ext        string // with the dot
}

// Span returns the matched wrapper text.
func (r MediaReference) Span(text string) string {
	return text[r.Start:r.End]
}

// ExtractIdentifier returns the file identifier and extension (with the
// dot) encoded in a legacy storage URL. The URL path must carry
// imgs%2Fapp%2F<graph>%2F<id>.<ext>.enc; anything else is not a media link.
func ExtractIdentifier(url string) (id, ext string, ok bool) {
	m := identifierRe.FindStringSubmatch(url)
	if m == nil {
		return "", "", false
	}
	return m[1], "." + m[2], true
}

// FindReferences returns the links of kind k in text, left to right.
// Links whose URL carries no identifier are left out.
func FindReferences(text string, k Kind) []MediaReference {
	re := patterns[k]
	var refs []MediaReference

	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		ref := MediaReference{Kind: k, Start: loc[0], End: loc[1]}
		if k == KindImage {
			ref.Alt = text[loc[2]:loc[3]]
			ref.URL = text[loc[4]:loc[5]]
		} else {
			ref.URL = text[loc[2]:loc[3]]
		}

		id, ext, ok := ExtractIdentifier(ref.URL)
		if !ok {
			continue
		}
		ref.Identifier, ref.Ext = id, ext
		refs = append(refs, ref)
	}
	return refs
}
