package siq

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ContentFileName is the package document entry inside a .siq archive.
const ContentFileName = "content.xml"

var ErrContentNotFound = errors.New("siq: content.xml not found in archive")

type xmlPackage struct {
	Name    string     `xml:"name,attr"`
	Authors []string   `xml:"info>authors>author"`
	Rounds  []xmlRound `xml:"rounds>round"`
}

type xmlRound struct {
	Name   string     `xml:"name,attr"`
	Themes []xmlTheme `xml:"themes>theme"`
}

type xmlTheme struct {
	Name      string        `xml:"name,attr"`
	Questions []xmlQuestion `xml:"questions>question"`
}

type xmlQuestion struct {
	Price  string       `xml:"price,attr"`
	Atoms  []xmlContent `xml:"scenario>atom"`
	Params []xmlParam   `xml:"params>param"`
	Right  []string     `xml:"right>answer"`
	Wrong  []string     `xml:"wrong>answer"`
}

type xmlParam struct {
	Name  string       `xml:"name,attr"`
	Items []xmlContent `xml:"item"`
}

type xmlContent struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

// Read parses either a zipped .siq archive or a bare content.xml document.
func Read(data []byte) (*Package, error) {
	if bytes.HasPrefix(data, []byte("PK")) {
		return readArchive(data)
	}
	return Parse(bytes.NewReader(data))
}

func readArchive(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("siq: open archive: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != ContentFileName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("siq: open %s: %w", ContentFileName, err)
		}
		defer rc.Close()
		return Parse(rc)
	}
	return nil, ErrContentNotFound
}

// Parse decodes a content.xml document. Both the legacy scenario/atom layout
// and the params/item layout are supported.
func Parse(r io.Reader) (*Package, error) {
	var doc xmlPackage
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("siq: decode content: %w", err)
	}

	pkg := &Package{Name: doc.Name, Authors: doc.Authors, Rounds: make([]Round, 0, len(doc.Rounds))}
	for _, xr := range doc.Rounds {
		round := Round{Name: xr.Name, Themes: make([]Theme, 0, len(xr.Themes))}
		for _, xt := range xr.Themes {
			theme := Theme{Name: xt.Name, Questions: make([]Question, 0, len(xt.Questions))}
			for _, xq := range xt.Questions {
				theme.Questions = append(theme.Questions, convertQuestion(xq))
			}
			round.Themes = append(round.Themes, theme)
		}
		pkg.Rounds = append(pkg.Rounds, round)
	}
	return pkg, nil
}

func convertQuestion(xq xmlQuestion) Question {
	price, _ := strconv.Atoi(strings.TrimSpace(xq.Price))
	q := Question{Price: price, Right: trimAll(xq.Right), Wrong: trimAll(xq.Wrong)}

	if len(xq.Params) > 0 {
		for _, p := range xq.Params {
			if p.Name != "question" {
				continue
			}
			for _, item := range p.Items {
				q.Content = append(q.Content, ContentItem{Type: itemType(item.Type), Value: item.Value})
			}
		}
		return q
	}

	// Legacy layout: atoms after the marker belong to the answer.
	for _, atom := range xq.Atoms {
		t := atomType(atom.Type)
		if t == "marker" {
			break
		}
		q.Content = append(q.Content, ContentItem{Type: t, Value: atom.Value})
	}
	return q
}

func itemType(t string) string {
	if t == "" {
		return ContentText
	}
	return strings.ToLower(t)
}

func atomType(t string) string {
	switch strings.ToLower(t) {
	case "", "text", "say":
		return ContentText
	case "voice":
		return ContentAudio
	default:
		return strings.ToLower(t)
	}
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}
