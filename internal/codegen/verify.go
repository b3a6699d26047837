package codegen

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

const armTypeQuery = `(type_spec name: (type_identifier) @name)`

// verify parses rendered Go with tree-sitter. When arms is set, the source
// must also declare exactly one armN type per revision and no other armN.
func verify(ctx context.Context, output string, src []byte, revisions []int, arms bool) error {
	lang := golang.GetLanguage()
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return fmt.Errorf("%s: tree-sitter parse failed: %w", output, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return syntaxError(output, src, root)
	}
	if !arms {
		return nil
	}

	q, err := sitter.NewQuery([]byte(armTypeQuery), lang)
	if err != nil {
		return fmt.Errorf("arm query: %w", err)
	}
	defer q.Close()
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q, root)

	count := make(map[int]int)
	var extra []string
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		for _, capture := range match.Captures {
			name := capture.Node.Content(src)
			digits, ok := strings.CutPrefix(name, "arm")
			if !ok {
				continue
			}
			rev, err := strconv.Atoi(digits)
			if err != nil {
				continue
			}
			count[rev]++
			if count[rev] > 1 || !slices.Contains(revisions, rev) {
				extra = append(extra, name)
			}
		}
	}

	var missing []int
	for _, rev := range revisions {
		if count[rev] == 0 {
			missing = append(missing, rev)
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		return &CoverageError{Output: output, Missing: missing, Extra: extra}
	}
	return nil
}

// syntaxError reports the first error or missing node in document order.
func syntaxError(output string, src []byte, root *sitter.Node) error {
	n := firstError(root)
	if n == nil {
		n = root
	}
	p := n.StartPoint()
	near := n.Content(src)
	if len(near) > 32 {
		near = near[:32]
	}
	if n.IsMissing() {
		near = n.Type()
	}
	return &SyntaxError{Output: output, Line: int(p.Row) + 1, Column: int(p.Column) + 1, Near: near}
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := firstError(n.Child(i)); found != nil {
			return found
		}
	}
	return nil
}
