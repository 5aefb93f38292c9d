package display

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Lightwood13/msc/internal/types"
)

// TreeNode is one line of a rendered tree.
type TreeNode struct {
	Name     string
	Detail   string
	Children []*TreeNode
}

// TreeFormatter renders catalog trees as text
type TreeFormatter struct {
	options FormatterOptions
}

// FormatterOptions controls tree formatting
type FormatterOptions struct {
	ShowDocs bool // Append the first documentation line to members
	MaxDepth int  // Maximum depth to display, 0 for unlimited
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(options FormatterOptions) *TreeFormatter {
	return &TreeFormatter{options: options}
}

// Format renders root and its children as ASCII art
func (tf *TreeFormatter) Format(root *TreeNode) string {
	if root == nil {
		return ""
	}
	var sb strings.Builder
	tf.formatNode(&sb, root, "", true, true, 0)
	return sb.String()
}

func (tf *TreeFormatter) formatNode(sb *strings.Builder, node *TreeNode, prefix string, isLast, isRoot bool, depth int) {
	if tf.options.MaxDepth > 0 && depth > tf.options.MaxDepth {
		return
	}

	var branch string
	switch {
	case isRoot:
		branch = ""
	case isLast:
		branch = "└─ "
	default:
		branch = "├─ "
	}

	sb.WriteString(prefix)
	sb.WriteString(branch)
	sb.WriteString(node.Name)
	if tf.options.ShowDocs && node.Detail != "" {
		sb.WriteString(" - ")
		sb.WriteString(node.Detail)
	}
	sb.WriteString("\n")

	var childPrefix string
	switch {
	case isRoot:
		childPrefix = prefix
	case isLast:
		childPrefix = prefix + "   "
	default:
		childPrefix = prefix + "│  "
	}
	for i, child := range node.Children {
		tf.formatNode(sb, child, childPrefix, i == len(node.Children)-1, false, depth+1)
	}
}

// TableTree builds the tree of one namespace or class table. Callables
// contribute one line per overload.
func TableTree(title string, table *types.MemberTable) *TreeNode {
	root := &TreeNode{Name: title}
	if table == nil {
		return root
	}

	keys := make([]string, 0, len(table.Members))
	for key := range table.Members {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		m := table.Members[key]
		if sigs := table.Signatures[key]; len(sigs) > 0 {
			for _, sig := range sigs {
				doc := sig.Documentation
				if doc == "" {
					doc = m.Documentation
				}
				root.Children = append(root.Children, &TreeNode{
					Name:   sig.Label,
					Detail: firstLine(doc),
				})
			}
			continue
		}
		root.Children = append(root.Children, &TreeNode{
			Name:   memberLabel(m),
			Detail: firstLine(m.Documentation),
		})
	}
	return root
}

func memberLabel(m *types.Member) string {
	if m.ReturnType == "" {
		return m.Key
	}
	return fmt.Sprintf("%s %s", m.ReturnType, m.Key)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}
