package theme

import (
	"encoding/json"
	"errors"
	"maps"
)

// Config is the typed view of a merged configuration document.
type Config struct {
	Site    Site    `json:"site"`
	Content Content `json:"content"`
	Theme   Style   `json:"theme"`
	Layout  Layout  `json:"layout"`
	Text    Text    `json:"text"`
}

type Site struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Tagline     string `json:"tagline"`
	Footer      string `json:"footer"`
	Favicon     string `json:"favicon"`
}

// Content selects where posts come from: "local" or "github".
type Content struct {
	Source string `json:"source"`
	GitHub GitHub `json:"github"`
}

type GitHub struct {
	Owner      string `json:"owner"`
	Repo       string `json:"repo"`
	PostsPath  string `json:"postsPath"`
	DraftsPath string `json:"draftsPath"`
}

// Style holds the values exported as CSS custom properties.
type Style struct {
	Colors         map[string]string `json:"colors"`
	Fonts          map[string]string `json:"fonts"`
	Spacing        map[string]string `json:"spacing"`
	BorderRadius   string            `json:"borderRadius"`
	HeaderGradient string            `json:"headerGradient"`
}

type Layout struct {
	Home     HomeLayout     `json:"home"`
	Post     PostLayout     `json:"post"`
	PostList PostListLayout `json:"postList"`
}

type HomeLayout struct {
	ShowPostCount      bool   `json:"showPostCount"`
	ShowControls       bool   `json:"showControls"`
	DefaultPostsToShow int    `json:"defaultPostsToShow"`
	DateFormat         string `json:"dateFormat"`
}

type PostLayout struct {
	ShowAuthor     bool   `json:"showAuthor"`
	ShowDate       bool   `json:"showDate"`
	ShowBackButton bool   `json:"showBackButton"`
	BackButtonText string `json:"backButtonText"`
	DateFormat     string `json:"dateFormat"`
}

type PostListLayout struct {
	ShowExcerpt        bool   `json:"showExcerpt"`
	ShowAuthor         bool   `json:"showAuthor"`
	ShowDraftIndicator bool   `json:"showDraftIndicator"`
	DraftIndicatorText string `json:"draftIndicatorText"`
	ReadMoreText       string `json:"readMoreText"`
}

// Text holds user-facing strings. ShowingPosts understands {current} and
// {total} placeholders.
type Text struct {
	Loading          string `json:"loading"`
	LoadingPost      string `json:"loadingPost"`
	NoPostsFound     string `json:"noPostsFound"`
	PostNotFound     string `json:"postNotFound"`
	ErrorLoading     string `json:"errorLoading"`
	ShowingPosts     string `json:"showingPosts"`
	PostsToShowLabel string `json:"postsToShowLabel"`
	ShowAllButton    string `json:"showAllButton"`
	ShowLessButton   string `json:"showLessButton"`
	NewerPostsButton string `json:"newerPostsButton"`
	OlderPostsButton string `json:"olderPostsButton"`
}

// Default returns the built-in configuration used when the configuration
// documents cannot be loaded. Each call returns a fresh value.
func Default() Config {
	return Config{
		Site: Site{
			Title:       "My Blog",
			Description: "A markdown-based blog",
		},
		Content: Content{
			Source: "local",
			GitHub: GitHub{
				Owner:      "your-username",
				Repo:       "your-repo",
				PostsPath:  "content/posts",
				DraftsPath: "content/drafts",
			},
		},
		Theme: Style{
			Colors: map[string]string{
				"primary":     "#667eea",
				"secondary":   "#764ba2",
				"accent":      "#3498db",
				"accentHover": "#2980b9",
				"text":        "#2c3e50",
				"textLight":   "#7f8c8d",
				"background":  "#ffffff",
				"headerText":  "#ffffff",
				"border":      "#ddd",
				"draft":       "#e74c3c",
			},
			Fonts: map[string]string{
				"primary":  "-apple-system, BlinkMacSystemFont, 'Segoe UI', 'Roboto', 'Helvetica Neue', sans-serif",
				"headings": "inherit",
				"code":     "Monaco, Consolas, 'Courier New', Courier, monospace",
			},
			Spacing: map[string]string{
				"headerPadding":   "60px 20px 40px",
				"contentMaxWidth": "800px",
				"postSpacing":     "40px",
			},
			BorderRadius:   "4px",
			HeaderGradient: "linear-gradient(135deg, #667eea 0%, #764ba2 100%)",
		},
		Layout: Layout{
			Home: HomeLayout{
				ShowPostCount:      true,
				ShowControls:       true,
				DefaultPostsToShow: 5,
				DateFormat:         "long",
			},
			Post: PostLayout{
				ShowAuthor:     true,
				ShowDate:       true,
				ShowBackButton: true,
				BackButtonText: "← Back to Home",
				DateFormat:     "long",
			},
			PostList: PostListLayout{
				ShowExcerpt:        true,
				ShowAuthor:         true,
				ShowDraftIndicator: true,
				DraftIndicatorText: "[DRAFT]",
				ReadMoreText:       "Read more →",
			},
		},
		Text: Text{
			Loading:          "Loading posts...",
			LoadingPost:      "Loading...",
			NoPostsFound:     "No posts found.",
			PostNotFound:     "Post not found",
			ErrorLoading:     "Failed to load post",
			ShowingPosts:     "Showing {current} of {total} posts",
			PostsToShowLabel: "Posts to show: ",
			ShowAllButton:    "Show All",
			ShowLessButton:   "Show Less",
			NewerPostsButton: "← Newer Posts",
			OlderPostsButton: "Older Posts →",
		},
	}
}

// Clone returns a copy of c that shares no maps with it.
func (c Config) Clone() Config {
	c.Theme.Colors = maps.Clone(c.Theme.Colors)
	c.Theme.Fonts = maps.Clone(c.Theme.Fonts)
	c.Theme.Spacing = maps.Clone(c.Theme.Spacing)
	return c
}

// Decode converts a merged tree into a Config, starting from Default so that
// absent or null fields keep their built-in values. Fields whose JSON type
// does not match are skipped rather than failing the whole document.
func Decode(t Tree) (Config, error) {
	cfg := Default()
	b, err := json.Marshal(t)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return Default(), err
		}
	}
	return cfg, nil
}
