package matcher

import (
	"strings"

	"golang.org/x/net/html"
)

// Void elements never open a nesting level of their own beyond the one they
// occupy.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// HTMLDepth tokenizes an HTML fragment and returns the maximum element
// nesting depth. Depth counts elements, not text; void and self-closing
// elements occupy one level without opening another. Unbalanced fragments
// are measured as far as they parse.
func HTMLDepth(fragment string) int {
	z := html.NewTokenizer(strings.NewReader(fragment))
	depth, max := 0, 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return max
		case html.StartTagToken:
			name, _ := z.TagName()
			if voidElements[string(name)] {
				if depth+1 > max {
					max = depth + 1
				}
				continue
			}
			depth++
			if depth > max {
				max = depth
			}
		case html.SelfClosingTagToken:
			if depth+1 > max {
				max = depth + 1
			}
		case html.EndTagToken:
			if depth > 0 {
				depth--
			}
		}
	}
}
