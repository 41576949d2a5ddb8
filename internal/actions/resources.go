package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/mentorlabs/mentor/internal/agent"
)

// Resource is one recommended learning resource
type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"` // video, article, course
}

type searchArgs struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

// curatedVideos maps topic keywords to known-good video resources
var curatedVideos = map[string][]Resource{
	"go": {
		{Title: "Go Programming - Full Course", URL: "https://www.youtube.com/watch?v=un6ZyFkqFKo", Type: "video"},
		{Title: "Learn Go in 12 Minutes", URL: "https://www.youtube.com/watch?v=C8LgvuEBraI", Type: "video"},
	},
	"python": {
		{Title: "Python for Beginners - Full Course", URL: "https://www.youtube.com/watch?v=rfscVS0vtbw", Type: "video"},
		{Title: "Python Crash Course", URL: "https://www.youtube.com/watch?v=JJmcL1N2KQs", Type: "video"},
	},
	"javascript": {
		{Title: "JavaScript Full Course for Beginners", URL: "https://www.youtube.com/watch?v=PkZNo7MFNFg", Type: "video"},
	},
	"piano": {
		{Title: "Piano Lessons for Beginners", URL: "https://www.youtube.com/watch?v=4SXQ_wlbWog", Type: "video"},
	},
	"spanish": {
		{Title: "Learn Spanish in 4 Hours", URL: "https://www.youtube.com/watch?v=t6Hz1UZ6-_A", Type: "video"},
	},
}

// curatedWeb maps topic keywords to reading resources
var curatedWeb = map[string][]Resource{
	"go": {
		{Title: "A Tour of Go", URL: "https://go.dev/tour/", Type: "course"},
		{Title: "Go by Example", URL: "https://gobyexample.com/", Type: "article"},
	},
	"python": {
		{Title: "The Python Tutorial", URL: "https://docs.python.org/3/tutorial/", Type: "article"},
		{Title: "Real Python", URL: "https://realpython.com/", Type: "article"},
	},
	"javascript": {
		{Title: "MDN JavaScript Guide", URL: "https://developer.mozilla.org/en-US/docs/Web/JavaScript/Guide", Type: "article"},
	},
	"math": {
		{Title: "Khan Academy", URL: "https://www.khanacademy.org/math", Type: "course"},
	},
}

func matchCurated(table map[string][]Resource, query string, limit int) []Resource {
	lower := strings.ToLower(query)
	var matched []Resource
	for keyword, resources := range table {
		if strings.Contains(lower, keyword) {
			matched = append(matched, resources...)
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}

func (d *Deps) searchYouTubeResources(ctx context.Context, principal agent.Principal, args json.RawMessage) (any, error) {
	var parsed searchArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(parsed.Query) == "" {
		return nil, fmt.Errorf("query is required")
	}

	results := matchCurated(curatedVideos, parsed.Query, parsed.MaxResults)
	if len(results) == 0 {
		results = []Resource{{
			Title: fmt.Sprintf("YouTube search: %s", parsed.Query),
			URL:   "https://www.youtube.com/results?search_query=" + url.QueryEscape(parsed.Query),
			Type:  "video",
		}}
	}
	return map[string]any{"query": parsed.Query, "resources": results}, nil
}

func (d *Deps) searchWebResources(ctx context.Context, principal agent.Principal, args json.RawMessage) (any, error) {
	var parsed searchArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(parsed.Query) == "" {
		return nil, fmt.Errorf("query is required")
	}

	results := matchCurated(curatedWeb, parsed.Query, parsed.MaxResults)
	if len(results) == 0 {
		results = []Resource{{
			Title: fmt.Sprintf("Web search: %s", parsed.Query),
			URL:   "https://duckduckgo.com/?q=" + url.QueryEscape(parsed.Query),
			Type:  "article",
		}}
	}
	return map[string]any{"query": parsed.Query, "resources": results}, nil
}
