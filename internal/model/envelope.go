package model

import (
    "bytes"
    "encoding/json"
)

// Envelope is the response wrapper used by every upstream endpoint:
// {"success": bool, "data": ..., "message": "..."}.
type Envelope[T any] struct {
    Success bool   `json:"success"`
    Data    T      `json:"data"`
    Message string `json:"message,omitempty"`
}

// PageLink is one entry of the upstream "links" navigation array.
type PageLink struct {
    URL    *string `json:"url"`
    Label  string  `json:"label"`
    Active bool    `json:"active"`
}

// Page is the upstream paginated collection.
type Page[T any] struct {
    CurrentPage  int        `json:"current_page"`
    Data         []T        `json:"data"`
    PerPage      int        `json:"per_page"`
    Total        int        `json:"total"`
    LastPage     int        `json:"last_page"`
    From         *int       `json:"from"`
    To           *int       `json:"to"`
    FirstPageURL string     `json:"first_page_url,omitempty"`
    LastPageURL  string     `json:"last_page_url,omitempty"`
    NextPageURL  *string    `json:"next_page_url"`
    PrevPageURL  *string    `json:"prev_page_url"`
    Links        []PageLink `json:"links,omitempty"`
}

// HasNext reports whether the upstream advertises another page.
func (p Page[T]) HasNext() bool { return p.NextPageURL != nil && *p.NextPageURL != "" }

// OneOrMany decodes a value the upstream returns either as a single object or
// as an array of objects.
type OneOrMany[T any] []T

func (o *OneOrMany[T]) UnmarshalJSON(b []byte) error {
    b = bytes.TrimSpace(b)
    if len(b) == 0 || bytes.Equal(b, []byte("null")) {
        *o = nil
        return nil
    }
    if b[0] == '[' {
        var many []T
        if err := json.Unmarshal(b, &many); err != nil {
            return err
        }
        *o = many
        return nil
    }
    var one T
    if err := json.Unmarshal(b, &one); err != nil {
        return err
    }
    *o = OneOrMany[T]{one}
    return nil
}

// First returns the first element, or false when the value was empty.
func (o OneOrMany[T]) First() (T, bool) {
    var zero T
    if len(o) == 0 {
        return zero, false
    }
    return o[0], true
}
