package http

import (
	"html/template"
	"log/slog"
	"net/http"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>voicegate</title>
<style>
body { font-family: sans-serif; max-width: 48em; margin: 2em auto; }
td, th { text-align: left; padding: 0.2em 1em 0.2em 0; }
code { background: #f4f4f4; padding: 0 0.2em; }
</style>
</head>
<body>
<h1>voicegate</h1>
<p>Model <code>{{.ModelName}}</code> on the <code>{{.Backend}}</code> backend.</p>
{{if .Speakers}}<p>Speakers: {{range $i, $s := .Speakers}}{{if $i}}, {{end}}<code>{{$s}}</code>{{end}}</p>{{end}}
{{if .Languages}}<p>Languages: {{range $i, $l := .Languages}}{{if $i}}, {{end}}<code>{{$l}}</code>{{end}}</p>{{end}}
{{if .Cloning}}<p>Voice cloning is available through <code>speaker_wav</code>.</p>{{end}}
{{if .Details}}
<h2>Configuration</h2>
<table>
{{range $k, $v := .Details}}<tr><th>{{$k}}</th><td>{{$v}}</td></tr>
{{end}}</table>
{{else}}
<ul>
<li><code>GET|POST /api/tts?text=...</code> returns WAV</li>
<li><code>POST /v1/audio/speech</code> returns wav, mp3, opus, aac, flac or pcm</li>
<li><code>GET /voices</code>, <code>GET /locales</code>, <code>GET|POST /process</code> (MaryTTS)</li>
<li><a href="/details">details</a>, <a href="/swagger/index.html">API docs</a></li>
</ul>
{{end}}
</body>
</html>
`))

type pageData struct {
	ModelName string
	Backend   string
	Speakers  []string
	Languages []string
	Cloning   bool
	Details   map[string]string
}

func (t *Transport) page() pageData {
	return pageData{
		ModelName: t.opts.ModelName,
		Backend:   t.opts.Backend,
		Speakers:  t.caps.Speakers,
		Languages: t.caps.Languages,
		Cloning:   t.caps.VoiceCloning,
	}
}

// handleIndex renders the landing page.
func (t *Transport) handleIndex(w http.ResponseWriter, r *http.Request) {
	t.renderPage(w, t.page())
}

// handleDetails renders the landing page plus the configuration table when
// show_details is enabled.
func (t *Transport) handleDetails(w http.ResponseWriter, r *http.Request) {
	data := t.page()
	if t.opts.ShowDetails {
		data.Details = t.opts.Details
	}
	t.renderPage(w, data)
}

func (t *Transport) renderPage(w http.ResponseWriter, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		slog.Error("rendering page", "error", err)
	}
}
