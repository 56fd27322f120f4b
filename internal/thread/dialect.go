package thread

import (
	"fmt"
	"strings"

	"github.com/oziev02/ThreadDigest/internal/domain"
)

// Плейсхолдеры, которые подставляются вместо пустых блоков
const (
	NoCommentsPlaceholder  = "[No comments found for this post]"
	NoBodyPlaceholder      = "[No body text or body was deleted/removed]"
	InvalidDatePlaceholder = "[invalid date]"
)

const (
	minuteLayout = "2006-01-02 15:04 UTC"
	secondLayout = "2006-01-02 15:04:05 UTC"
)

// Dialect описывает политику форматирования поверх одного и того же обхода дерева
type Dialect struct {
	Name string
	// BaseDepth - глубина комментариев верхнего уровня
	BaseDepth int
	// Flat отключает вложенность: комментарии выводятся строго по времени создания
	Flat bool
	// Prefix возвращает префикс каждой строки комментария на глубине depth
	Prefix func(depth int) string
	// Header возвращает заголовок комментария; nil - без заголовка
	Header func(c domain.Comment) string
	// BodyIndent добавляется к префиксу строк тела
	BodyIndent string
	// Spacing дописывается после каждого комментария
	Spacing string
	// Visible решает, выводить ли сам узел; потомки выводятся в любом случае
	Visible func(c domain.Comment) bool
	// Compose собирает документ поста из заголовка, тела и дерева комментариев
	Compose func(post domain.Post, s PostSections) string
	// Separator ставится между документами нескольких постов
	Separator string
}

// PlainIndented - текст с отступом в два пробела на уровень
var PlainIndented = Dialect{
	Name:      "plain",
	BaseDepth: 0,
	Prefix: func(depth int) string {
		return strings.Repeat("  ", depth)
	},
	Header: func(c domain.Comment) string {
		return fmt.Sprintf("Comment by %s (ID: t1_%s, Date: %s):",
			authorOrDeleted(c.Author), c.ID, FormatTimestamp(c.CreatedUTC, minuteLayout))
	},
	BodyIndent: "  ",
	Spacing:    "\n",
	Visible:    Visible,
	Compose:    composePlain,
	Separator:  "\n",
}

// MarkdownBlockquote - markdown, где вложенность выражена цитатами "> "
var MarkdownBlockquote = Dialect{
	Name:      "markdown",
	BaseDepth: 1,
	Prefix: func(depth int) string {
		return strings.Repeat("> ", depth)
	},
	Header: func(c domain.Comment) string {
		return fmt.Sprintf("**%s** (%s):", authorOrDeleted(c.Author), FormatTimestamp(c.CreatedUTC, secondLayout))
	},
	Spacing:   "\n",
	Visible:   Visible,
	Compose:   composeMarkdown,
	Separator: "\n---\n\n",
}

// FlatTagged - только тела комментариев, без признаков вложенности
var FlatTagged = Dialect{
	Name: "flat",
	Flat: true,
	Prefix: func(int) string {
		return ""
	},
	Visible:   Visible,
	Compose:   composeFlat,
	Separator: "\n",
}

var dialectAliases = map[string]Dialect{
	"plain":               PlainIndented,
	"plain-indented":      PlainIndented,
	"text":                PlainIndented,
	"markdown":            MarkdownBlockquote,
	"markdown-blockquote": MarkdownBlockquote,
	"md":                  MarkdownBlockquote,
	"flat":                FlatTagged,
	"flat-tagged":         FlatTagged,
	"tagged":              FlatTagged,
}

// DialectByName возвращает диалект по имени или псевдониму
func DialectByName(name string) (Dialect, error) {
	d, ok := dialectAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Dialect{}, fmt.Errorf("%w: %q", domain.ErrUnknownDialect, name)
	}
	return d, nil
}

// Visible - фильтр видимости по умолчанию: тело не пустое и не является заглушкой удаления
func Visible(c domain.Comment) bool {
	return visibleText(c.Body)
}

func visibleText(text string) bool {
	body := strings.TrimSpace(text)
	if body == "" {
		return false
	}
	return !strings.EqualFold(body, domain.DeletedSentinel) && !strings.EqualFold(body, domain.RemovedSentinel)
}

// FormatTimestamp форматирует секунды эпохи в UTC.
// Некорректное значение превращается в плейсхолдер, а не в ошибку.
func FormatTimestamp(ts float64, layout string) string {
	if !domain.ValidTimestamp(ts) {
		return InvalidDatePlaceholder
	}
	return domain.UnixTime(ts).Format(layout)
}

func authorOrDeleted(author string) string {
	if strings.TrimSpace(author) == "" {
		return domain.DeletedSentinel
	}
	return author
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
