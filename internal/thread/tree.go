package thread

import "github.com/oziev02/ThreadDigest/internal/domain"

// Tree строит вложенное дерево комментариев под rootID.
// Порядок детей тот же, что и при рендеринге; удалённые узлы не отфильтровываются.
func Tree(rootID string, idx Index) []domain.CommentTree {
	expanded := map[string]bool{rootID: true}
	return buildTree(rootID, idx, expanded)
}

// buildTree строит дерево комментариев рекурсивно
func buildTree(parentID string, idx Index, expanded map[string]bool) []domain.CommentTree {
	children := idx.children(parentID)
	trees := make([]domain.CommentTree, 0, len(children))

	for _, c := range children {
		tree := domain.CommentTree{Comment: c}
		if !expanded[c.ID] {
			expanded[c.ID] = true
			tree.Children = buildTree(c.ID, idx, expanded)
		}
		trees = append(trees, tree)
	}

	return trees
}
