package completion

// BaseTemplate wraps every public page.
const BaseTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; background: #f5f6f8; margin: 0; color: #212529; }
.wrap { max-width: 560px; margin: 0 auto; padding: 24px 16px; }
.logo { text-align: center; margin-bottom: 16px; }
.logo img { height: 56px; object-fit: contain; }
.card { background: #fff; border-radius: 8px; box-shadow: 0 1px 3px rgba(0,0,0,.08); padding: 16px; margin-bottom: 16px; }
.card.missing { border: 2px solid #dc3545; }
.muted { color: #6c757d; }
.center { text-align: center; }
.option { display: block; border: 1px solid #0d6efd; border-radius: 6px; padding: 12px; margin-top: 8px; cursor: pointer; }
.option input { margin-right: 8px; }
.btn { display: block; width: 100%; box-sizing: border-box; background: #0d6efd; color: #fff; border: 0; border-radius: 6px; padding: 14px; font-size: 18px; text-align: center; text-decoration: none; }
.alert { background: #f8d7da; color: #842029; border-radius: 6px; padding: 12px; margin-bottom: 16px; }
</style>
</head>
<body>
<div class="wrap">
{{if .LogoURL}}<div class="logo"><img src="{{.LogoURL}}" alt="{{.StoreName}}"></div>{{end}}
{{.Content}}
</div>
</body>
</html>`

// SurveyFormTemplate lists every question with its options as radio buttons.
// Description fields are authored by the store and rendered as HTML.
const SurveyFormTemplate = `
<div class="center" style="margin-bottom:16px">
<h2 style="margin-bottom:4px">{{.Survey.Name}}</h2>
{{if .Survey.Description.Valid}}<div class="muted">{{trusted .Survey.Description.String}}</div>{{end}}
</div>
{{if .Missing}}<div class="alert">Please answer question {{.MissingNumber}} before submitting.</div>{{end}}
<form method="post" action="/s/{{.QRKey}}">
{{range $i, $q := .Questions}}
<div class="card{{if eq $i $.MissingIndex}} missing{{end}}" id="q-{{$i}}">
<div style="font-weight:600;font-size:18px">{{$q.Question.Question}}</div>
{{if $q.Description.Valid}}<div class="muted">{{trusted $q.Description.String}}</div>{{end}}
{{range $q.Options}}
<label class="option"><input type="radio" name="q_{{$q.ID}}" value="{{.ID}}"{{if eq (index $.Selected $q.ID) .ID.String}} checked{{end}}>{{.Option}}</label>
{{end}}
</div>
{{end}}
<button class="btn" type="submit">Submit</button>
</form>`

// TerminalTemplate is shown for unknown QR codes and unavailable surveys.
const TerminalTemplate = `
<div class="card center">
<h3>{{.Heading}}</h3>
<p class="muted">{{.Message}}</p>
</div>`

// CompleteTemplate renders the store's thank-you HTML and reward link.
const CompleteTemplate = `
<div class="card">
<div>{{trusted .HTML}}</div>
<p style="margin-top:16px"><a class="btn" href="{{.RedirectURL}}" rel="noreferrer">Click for Your Reward</a></p>
</div>`
