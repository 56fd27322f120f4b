package thread

import (
	"fmt"
	"strings"

	"github.com/oziev02/ThreadDigest/internal/domain"
)

// PostSections содержит тело поста и отрендеренное дерево комментариев
// с уже подставленными плейсхолдерами
type PostSections struct {
	Body     string
	Comments string
}

// Sections рендерит тело поста и его комментарии в диалекте d
func Sections(post domain.Post, idx Index, d Dialect) PostSections {
	body := strings.TrimSpace(post.Selftext)
	if !visibleText(body) {
		body = NoBodyPlaceholder
	}

	comments := strings.TrimSpace(Render(post.ID, idx, d))
	if comments == "" {
		comments = NoCommentsPlaceholder
	}

	return PostSections{Body: body, Comments: comments}
}

// FormatThread собирает документ поста: заголовок, тело и дерево комментариев
func FormatThread(post domain.Post, idx Index, d Dialect) string {
	s := Sections(post, idx, d)
	if d.Compose == nil {
		return fmt.Sprintf("%s\n\n%s\n\n%s\n", orDefault(post.Title, "Untitled Post"), s.Body, s.Comments)
	}
	return d.Compose(post, s)
}

// PostDate форматирует дату создания поста с точностью до минуты
func PostDate(post domain.Post) string {
	return FormatTimestamp(post.CreatedUTC, minuteLayout)
}

func composePlain(post domain.Post, s PostSections) string {
	var b strings.Builder

	b.WriteString("--- START OF REDDIT POST ---\n")
	fmt.Fprintf(&b, "Subreddit: r/%s\n", orDefault(post.Subreddit, "unknown"))
	fmt.Fprintf(&b, "Title: %s\n", orDefault(post.Title, "N/A"))
	fmt.Fprintf(&b, "Author: %s\n", authorOrDeleted(post.Author))
	fmt.Fprintf(&b, "Date: %s\n", PostDate(post))
	fmt.Fprintf(&b, "URL: %s\n", orDefault(post.URL, "N/A"))

	if s.Body == NoBodyPlaceholder {
		fmt.Fprintf(&b, "Body: %s\n\n", s.Body)
	} else {
		fmt.Fprintf(&b, "Body:\n%s\n\n", s.Body)
	}

	b.WriteString("--- COMMENTS FOR THIS POST ---\n")
	b.WriteString(s.Comments)
	b.WriteString("\n\n--- END OF REDDIT POST ---\n")

	return b.String()
}

func composeMarkdown(post domain.Post, s PostSections) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n", orDefault(post.Title, "Untitled Post"))
	fmt.Fprintf(&b, "**Author:** %s | **Posted:** %s | **URL:** %s\n\n",
		orDefault(post.Author, "Unknown Author"),
		FormatTimestamp(post.CreatedUTC, secondLayout),
		post.URL,
	)
	b.WriteString(s.Body)
	b.WriteString("\n\n## Comments\n\n")
	b.WriteString(s.Comments)
	b.WriteByte('\n')

	return b.String()
}

func composeFlat(post domain.Post, s PostSections) string {
	var b strings.Builder

	title := strings.ReplaceAll(orDefault(post.Title, "Untitled Post"), `"`, "'")
	fmt.Fprintf(&b, "<post_title=\"%s\">\n", title)
	b.WriteString(s.Body)
	b.WriteString("\n<comments_section>\n")
	b.WriteString(s.Comments)
	b.WriteString("\n</comments_section>\n")

	return b.String()
}
