// Package backend is the client for the external video backend that stores
// uploads and streams them back over HTTP.
package backend

import (
	"bytes"
	"encoding/json"
	"io"
)

// ID is an opaque video identifier. Backends emit it either as a JSON string
// or as a number; both decode to the same textual form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Video is the backend's metadata record for one uploaded media item. Only ID
// and Filename are guaranteed; everything else may be absent.
type Video struct {
	ID          ID       `json:"id"`
	Filename    string   `json:"filename"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Views       int64    `json:"views,omitempty"`
}

// Upload describes one multipart create request. File is required; the text
// fields are sent only when non-empty.
type Upload struct {
	File        io.Reader
	FileName    string
	ContentType string
	Title       string
	Description string
	Tags        string
}

func (u Upload) fields() [][2]string {
	var out [][2]string
	if u.Title != "" {
		out = append(out, [2]string{"title", u.Title})
	}
	if u.Description != "" {
		out = append(out, [2]string{"description", u.Description})
	}
	if u.Tags != "" {
		out = append(out, [2]string{"tags", u.Tags})
	}
	return out
}
