package render

import (
	"strings"

	"github.com/dgallion1/ctidoc/internal/ctijson"
	"github.com/dgallion1/ctidoc/internal/extract"
	"github.com/dgallion1/ctidoc/internal/normalize"
)

const noData = "No data available"

// Bullets renders an extracted object as nested Markdown bullets, two
// spaces of indent per level:
//
//	- **key:** value
//	- **object:**
//	  - **child:** value
//	- **list:**
//	  - item
//	  - - **first:** key of an object element
//	    - **second:** key of the same element
func Bullets(n *extract.Node) string {
	if n == nil || len(n.Children) == 0 {
		return noData
	}
	if n.Kind != ctijson.Object {
		return strings.Join(itemLines(n, 0), "\n")
	}
	return strings.Join(objectLines(n, 0), "\n")
}

func objectLines(n *extract.Node, level int) []string {
	indent := strings.Repeat("  ", level)
	var lines []string
	for _, c := range n.Children {
		label := indent + "- **" + c.Key + ":**"
		switch c.Kind {
		case ctijson.Object:
			lines = append(lines, label)
			lines = append(lines, objectLines(c, level+1)...)
		case ctijson.Array:
			lines = append(lines, label)
			lines = append(lines, itemLines(c, level)...)
		default:
			lines = append(lines, label+" "+scalarText(c))
		}
	}
	return lines
}

// itemLines renders the elements of an array whose key sits at level.
func itemLines(n *extract.Node, level int) []string {
	indent := strings.Repeat("  ", level)
	var lines []string
	for _, item := range n.Children {
		if item.Kind != ctijson.Object {
			lines = append(lines, indent+"  - "+scalarText(item))
			continue
		}
		nested := objectLines(item, level+2)
		nested[0] = indent + "  - " + strings.TrimLeft(nested[0], " ")
		lines = append(lines, nested...)
	}
	return lines
}

// scalarText is the display text of a leaf. Nested arrays inside arrays
// collapse to their JSON form.
func scalarText(n *extract.Node) string {
	if n.IsContainer() {
		return normalize.Text(n.Value().JSON())
	}
	return normalize.Text(n.Scalar.Text())
}
