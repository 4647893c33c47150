package resolve

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	var nilResult *MediaLinkResult
	assert.ErrorIs(t, nilResult.Validate(), ErrNoAssets)
	assert.ErrorIs(t, (&MediaLinkResult{}).Validate(), ErrNoAssets)
	assert.Error(t, (&MediaLinkResult{Items: []MediaAsset{{URL: "a"}, {Label: "720p"}}}).Validate())
	assert.NoError(t, okResult(SourceLocal).Validate())
}

func TestResultJSONShape(t *testing.T) {
	b, err := json.Marshal(MediaLinkResult{
		Source: SourceRemote,
		Title:  "t",
		Items:  []MediaAsset{{Label: "Audio Only", Kind: KindAudio, Extension: "mp3", URL: "u"}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"source": "remote",
		"title": "t",
		"downloads": [{"label": "Audio Only", "kind": "audio", "extension": "mp3", "url": "u"}]
	}`, string(b))
}
