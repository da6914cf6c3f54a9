package prompt

import (
	"bytes"
	"html/template"
	"strings"
)

var pageTmpl = template.Must(template.New("prompt").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font: 13px "Segoe UI", sans-serif; margin: 16px; background: #f3f3f3; }
p { white-space: pre-line; margin: 0 0 12px; }
input { width: 100%; box-sizing: border-box; padding: 6px; }
.buttons { margin-top: 14px; text-align: right; }
button { min-width: 80px; margin-left: 8px; }
</style>
</head>
<body>
<p>{{.Message}}</p>
<input id="answer" value="{{.Initial}}" autofocus>
<div class="buttons">
<button id="ok">OK</button>
<button id="cancel">Cancel</button>
</div>
<script>
const answer = document.getElementById('answer');
function done(ok) { window.promptDone(ok, answer.value); }
document.getElementById('ok').onclick = function () { done(true); };
document.getElementById('cancel').onclick = function () { done(false); };
answer.addEventListener('keydown', function (e) {
	if (e.key === 'Enter') done(true);
	if (e.key === 'Escape') done(false);
});
answer.select();
</script>
</body>
</html>
`))

// renderPage builds the dialog HTML with every field escaped.
func renderPage(req Request) (string, error) {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// dialogHeight grows with the number of message lines.
func dialogHeight(req Request) int {
	lines := strings.Count(req.Message, "\n") + 1
	return 150 + 20*lines
}
