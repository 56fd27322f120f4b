package thread

import (
	"sort"
	"strings"

	"github.com/oziev02/ThreadDigest/internal/domain"
)

// frame - уровень явного стека обхода
type frame struct {
	children []domain.Comment
	next     int
	depth    int
}

// Render сериализует поддерево rootID, начиная с базовой глубины диалекта
func Render(rootID string, idx Index, d Dialect) string {
	return RenderAt(rootID, idx, d, d.BaseDepth)
}

// RenderAt сериализует поддерево rootID в прямом порядке обхода в глубину.
// Братья упорядочены по возрастанию CreatedUTC, при равенстве сохраняется входной порядок.
// Результат либо пуст, либо заканчивается ровно одним переводом строки.
func RenderAt(rootID string, idx Index, d Dialect, depth int) string {
	nodes := walk(rootID, idx, depth)
	if d.Flat {
		// только достижимые из корня узлы, без учёта вложенности
		sort.SliceStable(nodes, func(i, j int) bool {
			return sortKey(nodes[i].comment.CreatedUTC) < sortKey(nodes[j].comment.CreatedUTC)
		})
	}

	var b strings.Builder
	for _, n := range nodes {
		writeComment(&b, d, n.comment, n.depth)
	}

	return finish(b.String())
}

type node struct {
	comment domain.Comment
	depth   int
}

// walk обходит дерево итеративно, без рекурсии по глубине ветки.
// Дети каждого id раскрываются не более одного раза, поэтому цикл в parent_id не зацикливает обход.
func walk(rootID string, idx Index, depth int) []node {
	var nodes []node

	expanded := map[string]bool{rootID: true}
	stack := []frame{{children: idx.children(rootID), depth: depth}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(top.children) {
			stack = stack[:len(stack)-1]
			continue
		}

		c := top.children[top.next]
		top.next++
		level := top.depth

		nodes = append(nodes, node{comment: c, depth: level})

		if expanded[c.ID] {
			continue
		}
		expanded[c.ID] = true

		if kids := idx.children(c.ID); len(kids) > 0 {
			stack = append(stack, frame{children: kids, depth: level + 1})
		}
	}

	return nodes
}

func writeComment(b *strings.Builder, d Dialect, c domain.Comment, depth int) {
	visible := d.Visible
	if visible == nil {
		visible = Visible
	}
	if !visible(c) {
		return
	}

	prefix := ""
	if d.Prefix != nil {
		prefix = d.Prefix(depth)
	}

	if d.Header != nil {
		b.WriteString(prefix)
		b.WriteString(d.Header(c))
		b.WriteByte('\n')
	}

	for _, line := range splitLines(strings.TrimSpace(c.Body)) {
		b.WriteString(prefix)
		if strings.TrimSpace(line) != "" {
			b.WriteString(d.BodyIndent)
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}

	b.WriteString(d.Spacing)
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}

func finish(s string) string {
	s = strings.TrimRight(s, " \t\r\n")
	if s == "" {
		return ""
	}
	return s + "\n"
}
