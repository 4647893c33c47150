package resolve

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"
)

var acceptedVideoLabels = map[string]bool{
	"1080p": true,
	"720p":  true,
	"480p":  true,
	"360p":  true,
}

// assetRule extracts assets from one known response shape. It returns nil when
// the shape is absent.
type assetRule struct {
	name    string
	extract func(doc gjson.Result) []MediaAsset
}

// assetRules are tried in order; the first rule producing an asset wins.
var assetRules = []assetRule{
	{"links", linksAssets},
	{"contents", contentsAssets},
	{"formats", formatsAssets},
	{"url", urlAssets},
}

// normalize converts a remote response document into a result. ok is false
// when no rule produced an asset.
func normalize(doc gjson.Result) (res *MediaLinkResult, rule string, ok bool) {
	for _, r := range assetRules {
		items := r.extract(doc)
		if len(items) == 0 {
			continue
		}
		res = &MediaLinkResult{
			Source:    SourceRemote,
			Title:     firstString(doc, "metadata.title", "title"),
			Thumbnail: firstString(doc, "metadata.thumbnailUrl", "picture", "thumbnail.url", "thumbnail"),
			Items:     items,
		}
		return res, r.name, true
	}
	return nil, "", false
}

func linksAssets(doc gjson.Result) []MediaAsset {
	first := doc.Get("links.0")
	link := first.Get("link").String()
	if link == "" {
		return nil
	}
	return []MediaAsset{{
		Label:     orDefault(first.Get("quality").String(), "best"),
		Kind:      KindVideo,
		Extension: orDefault(first.Get("extension").String(), "mp4"),
		SizeHint:  sizeHint(first),
		URL:       link,
	}}
}

func contentsAssets(doc gjson.Result) []MediaAsset {
	content := doc.Get("contents.0")
	if !content.Exists() {
		return nil
	}

	var items []MediaAsset
	for _, v := range content.Get("videos").Array() {
		label := v.Get("label").String()
		u := v.Get("url").String()
		if !acceptedVideoLabels[label] || u == "" {
			continue
		}
		items = append(items, MediaAsset{
			Label:     label,
			Kind:      KindVideo,
			Extension: videoExtension(v),
			SizeHint:  sizeHint(v),
			URL:       u,
		})
	}
	for _, a := range content.Get("audios").Array() {
		u := a.Get("url").String()
		if isLowAudioQuality(a.Get("metadata.audio_quality").String()) || u == "" {
			continue
		}
		items = append(items, MediaAsset{
			Label:     "Audio Only",
			Kind:      KindAudio,
			Extension: "mp3",
			SizeHint:  sizeHint(a),
			URL:       u,
		})
	}
	return items
}

// isLowAudioQuality matches the bottom tiers, AUDIO_QUALITY_LOW and
// AUDIO_QUALITY_ULTRALOW.
func isLowAudioQuality(q string) bool {
	return strings.HasSuffix(q, "LOW")
}

func formatsAssets(doc gjson.Result) []MediaAsset {
	first := doc.Get("formats.0")
	u := first.Get("url").String()
	if u == "" {
		return nil
	}
	return []MediaAsset{{
		Label:     orDefault(firstString(first, "qualityLabel", "quality"), "best"),
		Kind:      KindVideo,
		Extension: videoExtension(first),
		SizeHint:  sizeHint(first),
		URL:       u,
	}}
}

func urlAssets(doc gjson.Result) []MediaAsset {
	u := doc.Get("url")
	if u.Type != gjson.String || u.String() == "" {
		return nil
	}
	return []MediaAsset{{
		Label:     "best",
		Kind:      KindVideo,
		Extension: "mp4",
		URL:       u.String(),
	}}
}

// videoExtension reads an explicit extension or derives one from a mime type
// such as "video/mp4; codecs=...".
func videoExtension(v gjson.Result) string {
	if ext := firstString(v, "extension", "ext"); ext != "" {
		return ext
	}
	if mt := firstString(v, "metadata.mime_type", "mimeType", "mime_type"); mt != "" {
		mt, _, _ = strings.Cut(mt, ";")
		if _, sub, ok := strings.Cut(mt, "/"); ok && sub != "" {
			return sub
		}
	}
	return "mp4"
}

// sizeHint prefers a size string supplied upstream and falls back to a byte
// count. It is informational only.
func sizeHint(v gjson.Result) string {
	if s := firstString(v, "size", "metadata.size"); s != "" {
		return s
	}
	for _, p := range []string{"metadata.contentLength", "contentLength", "filesize"} {
		if n := v.Get(p).Uint(); n > 0 {
			return humanize.Bytes(n)
		}
	}
	return ""
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
