package models

import (
	"bytes"
	"encoding/json"
)

// CatalogEntry is a card from the home page listing
type CatalogEntry struct {
	Title    string `json:"title"`
	Image    string `json:"img"`
	Episodes string `json:"eps"`
	Status   string `json:"status"`
	URL      string `json:"url"`
}

// SearchResult is a single hit of the site search
type SearchResult struct {
	Title    string   `json:"title"`
	Image    string   `json:"img"`
	Rating   string   `json:"rating"`
	Type     string   `json:"type"`
	Season   string   `json:"season"`
	Synopsis string   `json:"sypnosis"`
	Genres   []string `json:"genre"`
	URL      string   `json:"url"`
}

// Episode is an entry of an anime's episode list
type Episode struct {
	Episode string `json:"eps"`
	Date    string `json:"date"`
	URL     string `json:"url"`
}

// AnimeDetail is the content of an anime detail page
type AnimeDetail struct {
	Title      string     `json:"title"`
	Image      string     `json:"img"`
	Synopsis   string     `json:"synopsis"`
	Attributes Attributes `json:"detail"`
	Genres     []string   `json:"genre"`
	Episodes   []Episode  `json:"episodes"`
}

// Attribute is one row of the detail page's key/value table
type Attribute struct {
	Key   string
	Value string
}

// Attributes keeps the detail table in page order and serializes as a JSON object.
type Attributes []Attribute

// Set adds or replaces a key. A replaced key keeps its original position.
func (a *Attributes) Set(key, value string) {
	for i := range *a {
		if (*a)[i].Key == key {
			(*a)[i].Value = value
			return
		}
	}
	*a = append(*a, Attribute{Key: key, Value: value})
}

// MarshalJSON writes the attributes as an object whose member order follows the page.
func (a Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, attr := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(attr.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(attr.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
