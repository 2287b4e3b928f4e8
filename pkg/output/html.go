// Copyright 2025 CKSEARCH Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package output

import (
	"html/template"
	"io"

	"github.com/cimenkdev/cksearch/pkg/scan"
)

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>CKSEARCH report: {{.Target.Value}}</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #ccc; padding: 0.4em 0.8em; text-align: left; }
th { background: #f0f0f0; }
.stats span { margin-right: 1.5em; }
h2 { margin-top: 1.5em; }
</style>
</head>
<body>
<h1>Scan report: {{.Target.Value}}</h1>
<p>Kind: {{.Target.Kind}} &middot; Mode: {{.Mode}} &middot; Started: {{.StartedAt.Format "2006-01-02 15:04:05 MST"}}</p>
<p class="stats">
<span>Attempted: {{.Stats.Attempted}}</span>
<span>Present: {{.Stats.Present}}</span>
<span>Absent: {{.Stats.Absent}}</span>
<span>Indeterminate: {{.Stats.Indeterminate}}</span>
<span>Errors: {{.Stats.Error}}</span>
</p>
{{if .Hits}}
<h2>Confirmed accounts</h2>
<table>
<tr><th>Platform</th><th>Category</th><th>URL</th></tr>
{{range .Hits}}<tr><td>{{.Name}}</td><td>{{.Category}}</td><td><a href="{{.URL}}">{{.URL}}</a></td></tr>
{{end}}
</table>
{{else}}
<p>No confirmed accounts found.</p>
{{end}}
{{range $category, $hits := .ByCategory}}
<h3>{{$category}}</h3>
<ul>
{{range $hits}}<li><a href="{{.URL}}">{{.Name}}</a></li>
{{end}}
</ul>
{{end}}
</body>
</html>
`))

// WriteHTML renders the report as a self-contained HTML page, the
// printable form of the report.
func WriteHTML(w io.Writer, r *scan.Report) error {
	return htmlTemplate.Execute(w, r)
}
