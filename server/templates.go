package server

import "html/template"

const reloadScript = `<script>
(function () {
  var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
  ws.onmessage = function (ev) {
    var msg = JSON.parse(ev.data);
    if (msg.type !== "changed") return;
    var id = document.body.dataset.note;
    if (!id || !msg.id || msg.id === id) location.reload();
  };
})();
</script>`

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>bluenotes</title></head>
<body>
<h1>Notes</h1>
<ul>
{{range .}}<li><a href="/notes/{{.ID}}">{{.Title}}</a>{{if .Favorite}} ★{{end}}{{if .Category}} <small>{{.Category}}</small>{{end}}</li>
{{else}}<li>No notes available</li>
{{end}}</ul>
` + reloadScript + `
</body>
</html>
`))

var noteTmpl = template.Must(template.New("note").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title>
<style>iframe{width:100%;min-height:240px;border:1px solid #ccc}</style>
</head>
<body data-note="{{.ID}}">
<p><a href="/">&larr; all notes</a></p>
{{range .Blocks}}{{if .Snippet}}<iframe sandbox="allow-scripts" src="/notes/{{$.ID}}/snippets/{{.Index}}"></iframe>
{{else}}{{.Prose}}
{{end}}{{end}}` + reloadScript + `
</body>
</html>
`))
