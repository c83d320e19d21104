// Package templates renders the transactional emails sent by the worker.
package templates

import (
	"bytes"
	"fmt"
	htmpl "html/template"
	texttpl "text/template"
)

const (
	Welcome     = "welcome"
	NewFollower = "new_follower"
)

type emailTemplate struct {
	subject *texttpl.Template
	text    *texttpl.Template
	html    *htmpl.Template
}

var registry = map[string]emailTemplate{
	Welcome: {
		subject: texttpl.Must(texttpl.New("s").Parse(`Welcome to {{.AppName}}, {{.Name}}`)),
		text: texttpl.Must(texttpl.New("t").Parse(`Hi {{.Name}},

Your account @{{.Username}} is ready. Log in to follow people and share updates.

{{.AppName}}`)),
		html: htmpl.Must(htmpl.New("h").Parse(`<p>Hi {{.Name}},</p>
<p>Your account <strong>@{{.Username}}</strong> is ready. Log in to follow people and share updates.</p>
<p>{{.AppName}}</p>`)),
	},
	NewFollower: {
		subject: texttpl.Must(texttpl.New("s").Parse(`{{.FollowerName}} is now following you`)),
		text: texttpl.Must(texttpl.New("t").Parse(`Hi {{.Name}},

{{.FollowerName}} (@{{.FollowerUsername}}) just followed you on {{.AppName}}.`)),
		html: htmpl.Must(htmpl.New("h").Parse(`<p>Hi {{.Name}},</p>
<p><strong>{{.FollowerName}}</strong> (@{{.FollowerUsername}}) just followed you on {{.AppName}}.</p>`)),
	},
}

// Render executes the named template and returns subject, text and html.
func Render(name string, data map[string]any) (string, string, string, error) {
	tpl, ok := registry[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown template %q", name)
	}
	var s, t, h bytes.Buffer
	if err := tpl.subject.Execute(&s, data); err != nil {
		return "", "", "", fmt.Errorf("render subject: %w", err)
	}
	if err := tpl.text.Execute(&t, data); err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	if err := tpl.html.Execute(&h, data); err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	return s.String(), t.String(), h.String(), nil
}
