// Package filesource serves list items from a JSON export on disk. It
// accepts either a bare array of items or the OData verbose envelope.
package filesource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/kilianp07/docksched/core/source"
)

// Source implements source.Source over a file re-read on every fetch.
type Source struct {
	path string
}

func New(path string) *Source { return &Source{path: path} }

func (s *Source) Fetch(ctx context.Context, _ time.Time) ([]source.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &source.FetchError{Err: err}
	}
	items, err := Decode(data)
	if err != nil {
		return nil, &source.FetchError{Err: fmt.Errorf("%s: %w", s.path, err)}
	}
	return items, nil
}

// Decode parses a list export.
func Decode(data []byte) ([]source.Item, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []source.Item
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var env struct {
		D struct {
			Results []source.Item `json:"results"`
		} `json:"d"`
		Value []source.Item `json:"value"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.D.Results != nil {
		return env.D.Results, nil
	}
	return env.Value, nil
}
