// Package siq reads SIGame package documents (.siq archives or their content.xml).
package siq

import "strings"

// Content item types
const (
	ContentText  = "text"
	ContentImage = "image"
	ContentAudio = "audio"
	ContentVideo = "video"
	ContentHTML  = "html"
)

type Package struct {
	Name    string
	Authors []string
	Rounds  []Round
}

type Round struct {
	Name   string
	Themes []Theme
}

type Theme struct {
	Name      string
	Questions []Question
}

type ContentItem struct {
	Type  string
	Value string
}

type Question struct {
	Price   int
	Content []ContentItem
	Right   []string
	Wrong   []string
}

// IsTextOnly reports whether every content item of the question is text.
func (q Question) IsTextOnly() bool {
	for _, item := range q.Content {
		if item.Type != ContentText {
			return false
		}
	}
	return true
}

// Text joins the text items of the question content.
func (q Question) Text() string {
	parts := make([]string, 0, len(q.Content))
	for _, item := range q.Content {
		if item.Type == ContentText {
			parts = append(parts, item.Value)
		}
	}
	return strings.Join(parts, "\n")
}
