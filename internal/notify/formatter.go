package notify

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/solprod/contact-api/internal/submission"
	"github.com/solprod/contact-api/pkg/sanitizer"
)

const receivedAtLayout = "2006-01-02 15:04:05"

// Formatter builds notifications for a fixed recipient. Output is
// deterministic given a submission and the formatter's clock; the clock only
// feeds the "Received at" line of both bodies.
type Formatter struct {
	recipient string
	now       func() time.Time
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithClock overrides the time source. Used by tests for deterministic output.
func WithClock(now func() time.Time) Option {
	return func(f *Formatter) {
		if now != nil {
			f.now = now
		}
	}
}

// NewFormatter creates a Formatter that addresses every notification to the
// given recipient.
func NewFormatter(recipient string, opts ...Option) *Formatter {
	f := &Formatter{
		recipient: recipient,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format builds the notification for a submission. It cannot fail: the
// submission is already validated and the HTML template escapes every
// user-supplied value on render.
func (f *Formatter) Format(sub submission.Submission) Notification {
	switch s := sub.(type) {
	case submission.DiscussProject:
		return f.formatDiscussProject(s)
	case submission.Review:
		return f.formatReview(s)
	default:
		panic(fmt.Sprintf("notify: unknown submission type %T", sub))
	}
}

func (f *Formatter) formatDiscussProject(s submission.DiscussProject) Notification {
	receivedAt := f.now().Format(receivedAtLayout)

	fields := []bodyField{
		{Label: "Name", Value: s.Name()},
		{Label: "Email", Value: s.Email(), Href: template.URL("mailto:" + s.Email())},
		{Label: "Phone", Value: s.Phone(), Href: template.URL("tel:" + s.Phone())},
	}
	if s.ProductName() != "" {
		fields = append(fields, bodyField{Label: "Product Name", Value: s.ProductName()})
	}
	fields = append(fields, bodyField{Label: "Comment", Value: s.Comment(), Multiline: true})

	return Notification{
		Subject:   "New Project Discussion - " + sanitizer.HeaderSafe(s.Name()),
		PlainBody: plainBody("New Project Discussion Request", fields, receivedAt),
		RichBody:  richBody("New Project Discussion Request", fields, receivedAt),
		ReplyTo:   s.Email(),
		Recipient: f.recipient,
	}
}

func (f *Formatter) formatReview(s submission.Review) Notification {
	receivedAt := f.now().Format(receivedAtLayout)
	stars := strings.Repeat("★", s.Rating()) + strings.Repeat("☆", 5-s.Rating())

	fields := []bodyField{
		{Label: "Name", Value: s.Name()},
		{Label: "Phone", Value: s.Phone(), Href: template.URL("tel:" + s.Phone())},
		{Label: "Rating", Value: fmt.Sprintf("%s (%d/5)", stars, s.Rating())},
		{Label: "Review", Value: s.Comment(), Multiline: true},
	}

	return Notification{
		Subject:   fmt.Sprintf("New Review (%d/5) - %s", s.Rating(), sanitizer.HeaderSafe(s.Name())),
		PlainBody: plainBody("New Review Received", fields, receivedAt),
		RichBody:  richBody("New Review Received", fields, receivedAt),
		Recipient: f.recipient,
	}
}

// bodyField is one labelled value of a notification body. Multiline values
// keep their line breaks in both bodies; Href turns the HTML value into a
// mailto:/tel: link. Href is template.URL because the template's URL filter
// would reject the tel: scheme; it must only ever be built from validated
// fields, never raw input.
type bodyField struct {
	Label     string
	Value     string
	Href      template.URL
	Multiline bool
}

// Lines splits the value for per-line rendering in the HTML template, which
// rejoins them with <br> after escaping each line.
func (f bodyField) Lines() []string {
	return strings.Split(strings.ReplaceAll(f.Value, "\r\n", "\n"), "\n")
}

func plainBody(title string, fields []bodyField, receivedAt string) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	for _, f := range fields {
		if f.Multiline {
			fmt.Fprintf(&b, "%s:\n%s\n", f.Label, f.Value)
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", f.Label, f.Value)
	}
	fmt.Fprintf(&b, "\nReceived at: %s\n", receivedAt)
	return b.String()
}

// richTmpl escapes every interpolated value contextually. User input never
// reaches the HTML body unescaped.
var richTmpl = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: #667eea; color: white; padding: 20px; border-radius: 5px 5px 0 0;">
    <h2>{{.Title}}</h2>
  </div>
  <div style="background: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px;">
{{- range .Fields}}
    <div style="margin-bottom: 20px;">
      <div style="font-weight: bold; color: #667eea; margin-bottom: 5px;">{{.Label}}:</div>
      <div style="background: white; padding: 10px; border-radius: 3px; border-left: 3px solid #667eea;">
        {{- if .Href}}<a href="{{.Href}}">{{.Value}}</a>
        {{- else if .Multiline}}{{range $i, $line := .Lines}}{{if $i}}<br>{{end}}{{$line}}{{end}}
        {{- else}}{{.Value}}{{end}}</div>
    </div>
{{- end}}
    <div style="text-align: center; margin-top: 20px; color: #888; font-size: 12px;">
      <p>Received at: {{.ReceivedAt}}</p>
    </div>
  </div>
</div>
</body>
</html>
`))

func richBody(title string, fields []bodyField, receivedAt string) string {
	var b strings.Builder
	err := richTmpl.Execute(&b, struct {
		Title      string
		Fields     []bodyField
		ReceivedAt string
	}{Title: title, Fields: fields, ReceivedAt: receivedAt})
	if err != nil {
		// The template is static and the data contains no methods that can
		// fail, so execution errors are programmer mistakes.
		panic(fmt.Sprintf("notify: render notification body: %v", err))
	}
	return b.String()
}
