package dashboard

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Page.Title}}</title>
{{if .Pending}}<meta http-equiv="refresh" content="2">{{end}}
<style>
body { font-family: sans-serif; margin: 0; background: #f8fafc; color: #0f172a; }
body.dark { background: #0f172a; color: #e2e8f0; }
nav { display: flex; gap: 1rem; padding: 1rem; border-bottom: 1px solid #cbd5e1; }
nav .active { font-weight: bold; text-decoration: underline; }
main { padding: 1rem 2rem; }
.notice { padding: .5rem 1rem; margin: .5rem 0; border-radius: 4px; background: #fef3c7; color: #78350f; }
.notice.error { background: #fee2e2; color: #7f1d1d; }
.cards { display: flex; gap: 1rem; }
.card { padding: 1rem; border: 1px solid #cbd5e1; border-radius: 6px; min-width: 10rem; }
table { border-collapse: collapse; }
td, th { padding: .25rem .75rem; text-align: left; }
</style>
</head>
<body class="{{.Page.Theme}}" data-state="{{.Page.State}}">
<nav>
<strong>{{.Page.Title}}</strong>
{{range .Page.Tabs}}{{if .Disabled}}<span class="{{if .Active}}active{{end}}" aria-disabled="true">{{.Label}}</span>{{else}}<a class="{{if .Active}}active{{end}}" href="/{{tabPath .Name}}">{{.Label}}</a>{{end}}
{{end}}</nav>
<main>
{{range .Page.Notices}}<div class="notice {{.Level}}">{{.Message}}
<form method="post" action="/notices/{{.ID}}/dismiss" style="display:inline"><button type="submit">Dismiss</button></form></div>
{{end}}
{{with .Page.Dashboard}}<h1>{{.Heading}}</h1>
{{with .Upload}}<form method="post" action="/files" enctype="multipart/form-data">
<input type="file" name="files" multiple accept="{{.Accept}}">
<button type="submit">Select</button>
</form>
{{if .Files}}<ul class="files">{{range .Files}}<li>{{.}}</li>{{end}}</ul>{{end}}
<form method="post" action="/analyze"><button type="submit"{{if .SubmitDisabled}} disabled{{end}}>{{.ButtonLabel}}</button></form>
{{end}}{{with .Result}}<h2>{{.Fields.Title}}</h2>
{{if .Fields.CreatedAt}}<p class="created">{{.Fields.CreatedAt}}</p>{{end}}
<div class="cards">
<div class="card"><h3>Revenue</h3><p>{{.Fields.Revenue}}</p></div>
<div class="card"><h3>Expenses</h3><p>{{.Fields.Expenses}}</p></div>
<div class="card"><h3>Net Profit</h3><p>{{.Fields.NetProfit}}</p><small>Margin: {{.Fields.Margin}}</small></div>
<div class="card"><h3>Health</h3><p style="color: {{.Fields.HealthColor}}">{{.Fields.HealthStatus}}</p></div>
</div>
<h3>Cash Flow</h3>
<img src="/chart.svg" alt="{{range .Slices}}{{.Label}} {{end}}">
<ul class="legend">{{range .Slices}}<li style="color: {{.Color}}">{{.Label}}</li>{{end}}</ul>
<h3>AI Analysis</h3>
<p class="analysis">{{.Fields.Analysis}}</p>
<form method="post" action="/reset"><button type="submit">{{uploadNew}}</button></form>
{{end}}{{end}}
{{with .Page.History}}<h1>{{.Heading}}</h1>
<p>{{.Subtitle}}</p>
{{if .Failed}}<p class="stale">Showing the last loaded list.</p>{{end}}
{{if .Message}}<p class="message">{{.Message}}</p>{{end}}
{{if .Entries}}<table>
<tr><th>Report</th><th>Created</th><th>Health</th><th>Margin</th><th></th></tr>
{{range .Entries}}<tr>
<td>{{.Title}}</td><td>{{.CreatedAt}}</td><td style="color: {{.HealthColor}}">{{.HealthStatus}}</td><td>{{.Margin}}</td>
<td>{{if not $.Page.History.Loading}}<form method="post" action="/history/{{.ID}}/view"><button type="submit">{{viewDetails}}</button></form>{{end}}</td>
</tr>
{{end}}</table>{{end}}
{{end}}
</main>
</body>
</html>
`
