package htb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// flexInt accepts a JSON number or a string holding a decimal integer; the
// API is not consistent about which one it sends for ids and page numbers.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid integer %q", s)
		}
		*n = flexInt(v)
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = flexInt(v)
	return nil
}

// --- challenge/list, challenge/list/retired ---

type challengeList struct {
	Challenges *[]challengeJSON `json:"challenges"`
}

type challengeJSON struct {
	ID         *flexInt `json:"id"`
	Name       string   `json:"name"`
	Difficulty string   `json:"difficulty"`
	CategoryID *flexInt `json:"challenge_category_id"`
}

// --- machine/paginated, machine/list/retired/paginated ---

type machinePage struct {
	Data *[]machineJSON `json:"data"`
	Meta *pageMeta      `json:"meta"`
}

type machineJSON struct {
	ID             *flexInt `json:"id"`
	Name           string   `json:"name"`
	DifficultyText string   `json:"difficultyText"`
}

type pageMeta struct {
	CurrentPage *flexInt `json:"current_page"`
	LastPage    *flexInt `json:"last_page"`
}

// --- fortresses ---

type fortressList struct {
	Data json.RawMessage `json:"data"` // object keyed by pseudo-id
}

type fortressJSON struct {
	ID   *flexInt `json:"id"`
	Name string   `json:"name"`
}

// --- university/members/{id} ---

type memberJSON struct {
	ID   *flexInt `json:"id"`
	Name string   `json:"name"`
}

// --- user/profile/activity/{id} ---

type activityFeed struct {
	Profile *struct {
		Activity *[]activityJSON `json:"activity"`
	} `json:"profile"`
}

type activityJSON struct {
	ObjectType string   `json:"object_type"`
	ID         *flexInt `json:"id"`
	Name       string   `json:"name"`
}

// decode unmarshals body into v, tagging failures as ErrMalformedResponse.
func decode(body json.RawMessage, v any, what string) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, what, err)
	}
	return nil
}

func missing(what, field string) error {
	return fmt.Errorf("%w: %s: missing %q", ErrMalformedResponse, what, field)
}

// eachMember walks a JSON object in document order, calling fn with every
// member value. A JSON array is accepted too; its elements are visited in
// order with their index as key. Go maps do not keep key order, so the
// object is streamed token by token.
func eachMember(raw json.RawMessage, fn func(key string, value json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	delim, ok := tok.(json.Delim)
	if !ok || (delim != '{' && delim != '[') {
		return fmt.Errorf("expected object or array, got %v", tok)
	}

	for i := 0; dec.More(); i++ {
		key := strconv.Itoa(i)
		if delim == '{' {
			keyTok, err := dec.Token()
			if err != nil {
				return err
			}
			key, _ = keyTok.(string)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}

	_, err = dec.Token()
	return err
}
