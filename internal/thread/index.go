// Package thread восстанавливает дерево комментариев из плоского списка
// с указателями на родителя и сериализует его в текстовые диалекты.
package thread

import (
	"sort"

	"github.com/oziev02/ThreadDigest/internal/domain"
)

// Index группирует комментарии по ParentID.
// Порядок внутри группы совпадает с порядком во входных данных.
type Index map[string][]domain.Comment

// BuildIndex группирует комментарии по родителю.
// Висячие и циклические ссылки не проверяются, каждая запись попадает в индекс ровно один раз.
func BuildIndex(comments []domain.Comment) Index {
	idx := make(Index)
	for _, c := range comments {
		idx[c.ParentID] = append(idx[c.ParentID], c)
	}
	return idx
}

// Len возвращает общее количество комментариев в индексе
func (idx Index) Len() int {
	n := 0
	for _, group := range idx {
		n += len(group)
	}
	return n
}

// children возвращает отсортированную по времени создания копию группы
func (idx Index) children(parentID string) []domain.Comment {
	group, ok := idx[parentID]
	if !ok || len(group) == 0 {
		return nil
	}

	sorted := make([]domain.Comment, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sortKey(sorted[i].CreatedUTC) < sortKey(sorted[j].CreatedUTC)
	})

	return sorted
}

// sortKey ставит некорректные метки времени в начало эпохи
func sortKey(ts float64) float64 {
	if !domain.ValidTimestamp(ts) {
		return 0
	}
	return ts
}
