package server

import "html/template"

type page struct {
	PageTitle string
	Nonce     string
	Query     string
}

type videoCard struct {
	ID          string
	Title       string
	Description string
	StreamURL   string
	WatchURL    string
}

type uploadFormData struct {
	Title       string
	Description string
	Tags        string
	Message     string
	Failed      bool
	Query       string
}

type feedPageData struct {
	page
	Form            uploadFormData
	Limits          map[string]int
	ShowFeed        bool
	FeedUnavailable bool
	Cards           []videoCard
	FeedURL         string
}

type watchPageData struct {
	page
	NotFound    bool
	Unavailable bool
	Title       string
	Description string
	StreamURL   string
	Views       string
	Tags        string
}

type diagnosticsPageData struct {
	page
	Report diagnosticsReport
}

var layoutTemplate = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{.PageTitle}} · VibeTube</title>
    <style nonce="{{.Nonce}}">
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; background: #f8fafc; color: #0f172a; }
        a { color: inherit; text-decoration: none; }
        .topbar { position: sticky; top: 0; z-index: 10; background: #fff; border-bottom: 1px solid #e2e8f0; }
        .bar { max-width: 1200px; margin: 0 auto; padding: 0.75rem 1rem; display: flex; align-items: center; gap: 1rem; }
        .logo { font-weight: 700; font-size: 1.25rem; color: #dc2626; }
        .search { flex: 1; display: flex; max-width: 560px; }
        .search input { flex: 1; padding: 0.5rem 0.75rem; border: 1px solid #cbd5e1; border-radius: 999px 0 0 999px; }
        .search button { padding: 0.5rem 1rem; border: 1px solid #cbd5e1; border-left: none; border-radius: 0 999px 999px 0; background: #f1f5f9; cursor: pointer; }
        .diag { font-size: 0.875rem; color: #475569; }
        .wrap { max-width: 1200px; margin: 0 auto; padding: 1rem; }
        .panel { background: #fff; border: 1px solid #e2e8f0; border-radius: 12px; padding: 1rem; }
        .panel h2 { font-size: 1rem; margin-bottom: 0.75rem; }
        .upload { display: grid; grid-template-columns: 1fr 1fr; gap: 1rem; }
        .col { display: flex; flex-direction: column; gap: 0.5rem; }
        .col input, .col textarea { padding: 0.5rem; border: 1px solid #cbd5e1; border-radius: 8px; font: inherit; }
        .actions { display: flex; align-items: center; gap: 0.75rem; }
        .actions button { padding: 0.5rem 1.25rem; border: none; border-radius: 8px; background: #dc2626; color: #fff; cursor: pointer; }
        .actions button:disabled { opacity: 0.6; cursor: default; }
        .message { font-size: 0.875rem; }
        .message.failed { color: #b91c1c; }
        h3 { margin: 1rem 0 0.75rem; }
        .grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(260px, 1fr)); gap: 1rem; }
        .card { display: block; background: #fff; border-radius: 12px; overflow: hidden; border: 1px solid #e2e8f0; }
        .thumb { aspect-ratio: 16 / 9; background: #000; }
        .thumb video, .player video { width: 100%; height: 100%; object-fit: cover; }
        .card h4 { padding: 0.5rem 0.75rem 0; font-size: 0.95rem; }
        .card p { padding: 0.25rem 0.75rem 0.75rem; font-size: 0.85rem; color: #475569; }
        .muted { color: #64748b; }
        .watch { display: grid; grid-template-columns: 2fr 1fr; gap: 1.5rem; }
        .player { aspect-ratio: 16 / 9; background: #000; border-radius: 12px; overflow: hidden; }
        .player video { object-fit: contain; }
        .watch h1 { font-size: 1.25rem; margin: 0.75rem 0 0.5rem; }
        .description { white-space: pre-wrap; margin-bottom: 0.5rem; }
        .about { background: #fff; border: 1px solid #e2e8f0; border-radius: 12px; padding: 1rem; align-self: start; }
        .notice { font-size: 1.25rem; padding: 2rem 0; }
        table { border-collapse: collapse; background: #fff; }
        td, th { text-align: left; padding: 0.5rem 1rem; border-bottom: 1px solid #e2e8f0; }
        .ok { color: #15803d; }
        .bad { color: #b91c1c; }
        @media (max-width: 768px) { .upload, .watch { grid-template-columns: 1fr; } }
    </style>
</head>
<body>
    <header class="topbar">
        <div class="bar">
            <a href="/" class="logo">VibeTube</a>
            <form action="/" method="get" class="search" role="search">
                <input type="search" name="q" value="{{.Query}}" placeholder="Search" aria-label="Search videos">
                <button type="submit">Search</button>
            </form>
            <a href="/test" class="diag">Backend Test</a>
        </div>
    </header>
{{template "content" .}}
</body>
</html>
`))

func pageTemplate(name, content string) *template.Template {
	return template.Must(template.Must(layoutTemplate.Clone()).New(name).Parse(content))
}

var feedPageTemplate = pageTemplate("feed", `{{define "content"}}
    <section class="wrap">
        <div class="panel">
            <h2>Upload a video</h2>
            <form action="/upload" method="post" enctype="multipart/form-data" class="upload" id="upload-form">
                <input type="hidden" name="q" value="{{.Form.Query}}">
                <div class="col">
                    <input type="file" name="file" accept="video/*" aria-label="Video file">
                    <input type="text" name="title" value="{{.Form.Title}}" placeholder="Title" maxlength="{{index .Limits "title"}}">
                    <input type="text" name="tags" value="{{.Form.Tags}}" placeholder="Tags (comma separated)" maxlength="{{index .Limits "tags"}}">
                </div>
                <div class="col">
                    <textarea name="description" rows="4" placeholder="Description" maxlength="{{index .Limits "description"}}">{{.Form.Description}}</textarea>
                    <div class="actions">
                        <button type="submit" id="upload-button">Upload</button>
                        {{with .Form.Message}}<span class="message{{if $.Form.Failed}} failed{{end}}" id="upload-message">{{.}}</span>{{end}}
                    </div>
                </div>
            </form>
        </div>
    </section>
    <main class="wrap">
        <h3>Latest uploads</h3>
        {{if .ShowFeed}}
        {{if .Cards}}
        <div class="grid">
            {{range .Cards}}
            <a href="{{.WatchURL}}" class="card" id="video-{{.ID}}">
                <div class="thumb"><video src="{{.StreamURL}}" muted preload="metadata"></video></div>
                <h4>{{.Title}}</h4>
                <p>{{.Description}}</p>
            </a>
            {{end}}
        </div>
        {{else if .FeedUnavailable}}
        <p class="muted">Could not load videos right now.</p>
        {{else}}
        <p class="muted">No videos yet. Upload one above to get started.</p>
        {{end}}
        {{else}}
        <p class="muted"><a href="{{.FeedURL}}">Back to latest uploads</a></p>
        {{end}}
    </main>
    <script nonce="{{.Nonce}}">
        document.getElementById('upload-form').addEventListener('submit', function () {
            var button = document.getElementById('upload-button');
            button.disabled = true;
            button.textContent = 'Uploading...';
        });
    </script>
{{end}}`)

var watchPageTemplate = pageTemplate("watch", `{{define "content"}}
    {{if .NotFound}}
    <main class="wrap">
        <p class="notice">Not found</p>
        {{if .Unavailable}}<p class="muted">The video service did not respond. Try again shortly.</p>{{end}}
    </main>
    {{else}}
    <main class="wrap watch">
        <div>
            <div class="player"><video src="{{.StreamURL}}" controls autoplay></video></div>
            <h1>{{.Title}}</h1>
            {{with .Description}}<p class="description">{{.}}</p>{{end}}
            <p class="muted views">{{.Views}}</p>
        </div>
        <aside class="about">
            <h3>About</h3>
            <p class="muted tags">Tags: {{.Tags}}</p>
        </aside>
    </main>
    {{end}}
{{end}}`)

var diagnosticsPageTemplate = pageTemplate("diagnostics", `{{define "content"}}
    <main class="wrap">
        <h3>Backend Test</h3>
        <table>
            <tr><th>Backend</th><td>{{.Report.BackendURL}}</td></tr>
            <tr><th>Status</th><td>{{if .Report.Reachable}}<span class="ok">reachable</span>{{else}}<span class="bad">unreachable</span>{{end}}</td></tr>
            <tr><th>Latency</th><td>{{.Report.LatencyMS}} ms</td></tr>
            {{if .Report.Reachable}}<tr><th>Videos</th><td>{{.Report.VideoCount}}</td></tr>{{end}}
            {{with .Report.Error}}<tr><th>Error</th><td class="bad">{{.}}</td></tr>{{end}}
            {{with .Report.SampleStream}}<tr><th>Sample stream</th><td><a href="{{.}}">{{.}}</a></td></tr>{{end}}
            {{with .Report.Storage}}
            <tr><th>Storage object</th><td>{{.Key}}</td></tr>
            {{if .Error}}<tr><th>Storage</th><td class="bad">{{.Error}}</td></tr>{{else}}<tr><th>Storage</th><td class="ok">{{.Size}} bytes, {{.ContentType}}</td></tr>{{end}}
            {{end}}
        </table>
    </main>
{{end}}`)
