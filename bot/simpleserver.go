package bot

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/robertkozin/video-link-resolver/resolve"
)

var page = `<!doctype html>
<html lang="en">
<head>
<title>Video Link Resolver</title>
<meta charset="utf-8">
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/water.css@2/out/water.css">
</head>
<body>
	<h1>Video Link Resolver Tester</h1>

	<form method="POST">
		<label for="input">Video URL</label>
		<input type="url" id="input" name="input" placeholder="https://www.tiktok.com/@example/video/..." value="{{.Input}}" style="width: 100%">
		<button type="submit">Resolve</button>
	</form>

	{{if .Error}}
		<h2>Error</h2>
		<pre><code>{{.Error}}</code></pre>
	{{end}}

	{{with .Result}}
		<h2>{{.Title}}</h2>
		<p>via {{.Source}}{{if .Platform}} ({{.Platform}}){{end}}</p>
		{{if .Thumbnail}}<img src="{{.Thumbnail}}" alt="Thumbnail" style="max-width: 400px; height: auto;">{{end}}
		{{range .Items}}
			<p><a href="{{.URL}}" target="_blank" rel="noreferrer">{{.Label}} {{.Kind}} .{{.Extension}}</a>{{if .SizeHint}} {{.SizeHint}}{{end}}</p>
		{{end}}
	{{end}}
</body>
</html>`

type pageData struct {
	Input  string
	Result *resolve.MediaLinkResult
	Error  string
}

var tmpl = template.Must(template.New("page").Parse(page))

func SimpleServer(res MediaResolver) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data := pageData{}

		switch r.Method {
		case http.MethodGet:
		case http.MethodPost:
			data.Input = r.FormValue("input")
			result, err := res.Resolve(r.Context(), data.Input)
			if err != nil {
				data.Error = resolve.ErrResolutionFailed.Error()
			} else {
				out := withDefaults(result)
				data.Result = &out
			}
		default:
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			slog.Error("template execute", "err", err)
		}
	})
}
