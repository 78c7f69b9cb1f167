package articles

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/ports"
)

const fence = "---"

// DirSource loads finished markdown articles from a content directory.
// Front matter carries the metadata; the rest of the file is the body.
type DirSource struct {
	dir    string
	logger *slog.Logger
}

var _ ports.ArticleSource = (*DirSource)(nil)

// NewDirSource points the source at a directory of .md files.
func NewDirSource(dir string, logger *slog.Logger) *DirSource {
	return &DirSource{dir: dir, logger: logger}
}

// Load reads every markdown file in the directory, sorted by name so batch
// order stays deterministic across runs. A single unreadable article is
// skipped with a warning, not fatal to the batch.
func (s *DirSource) Load(ctx context.Context) ([]domain.Article, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read content dir %s: %w", s.dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	articles := make([]domain.Article, 0, len(names))
	for _, name := range names {
		if ctx.Err() != nil {
			return articles, ctx.Err()
		}
		path := filepath.Join(s.dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			s.warn("article unreadable, skipping", "path", path, "error", err)
			continue
		}
		article, err := Parse(raw, name)
		if err != nil {
			s.warn("article unparsable, skipping", "path", path, "error", err)
			continue
		}
		article.SourcePath = path
		articles = append(articles, article)
	}

	return articles, nil
}

type frontMatter struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
	Cover       string   `yaml:"cover"`
}

// Parse splits an article file into YAML front matter and body. A file
// without a front-matter block is still a valid article; the title falls
// back to the file name.
func Parse(raw []byte, filename string) (domain.Article, error) {
	id := strings.TrimSuffix(filename, filepath.Ext(filename))
	article := domain.Article{ID: id}

	content := strings.ReplaceAll(string(raw), "\r\n", "\n")
	meta, body := splitFrontMatter(content)

	if meta != "" {
		var fm frontMatter
		if err := yaml.Unmarshal([]byte(meta), &fm); err != nil {
			return domain.Article{}, fmt.Errorf("front matter of %s: %w", filename, err)
		}
		article.Title = CleanTitle(fm.Title)
		article.Description = strings.TrimSpace(fm.Description)
		article.Tags = fm.Tags
		article.CoverImage = fm.Cover
	}

	if article.Title == "" {
		article.Title = CleanTitle(id)
	}
	article.Body = strings.TrimSpace(body)
	return article, nil
}

// splitFrontMatter returns the YAML block between the leading fences and
// the remaining body. No leading fence means no front matter.
func splitFrontMatter(content string) (meta, body string) {
	if !strings.HasPrefix(content, fence+"\n") {
		return "", content
	}
	rest := content[len(fence)+1:]
	end := strings.Index(rest, "\n"+fence)
	if end < 0 {
		return "", content
	}
	meta = rest[:end]
	body = rest[end+len(fence)+1:]
	if i := strings.Index(body, "\n"); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}
	return meta, body
}

// CleanTitle strips straight and typographic quotes that platforms reject
// in headline fields.
func CleanTitle(title string) string {
	replacer := strings.NewReplacer(
		`"`, "", "“", "", "”", "",
		"'", "", "‘", "", "’", "",
	)
	return strings.TrimSpace(replacer.Replace(title))
}

func (s *DirSource) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
