package resolve

import (
	"errors"
	"fmt"
)

type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
)

type AssetKind string

const (
	KindVideo AssetKind = "video"
	KindAudio AssetKind = "audio"
)

var ErrNoAssets = errors.New("result has no assets")

// MediaLinkResult is what one engine produced for one url. It is built fresh
// per request and never mutated once returned.
type MediaLinkResult struct {
	Source    Source       `json:"source"`
	Title     string       `json:"title,omitempty"`
	Thumbnail string       `json:"thumbnail,omitempty"`
	Platform  string       `json:"platform,omitempty"`
	Items     []MediaAsset `json:"downloads"`
}

// MediaAsset is one retrievable file. URL is opaque and never dereferenced here.
type MediaAsset struct {
	Label     string    `json:"label"`
	Kind      AssetKind `json:"kind"`
	Extension string    `json:"extension"`
	SizeHint  string    `json:"size,omitempty"`
	URL       string    `json:"url"`
}

func (r *MediaLinkResult) Validate() error {
	if r == nil || len(r.Items) == 0 {
		return ErrNoAssets
	}
	for i, item := range r.Items {
		if item.URL == "" {
			return fmt.Errorf("asset %d (%s) has no url", i, item.Label)
		}
	}
	return nil
}
