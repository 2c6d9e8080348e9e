package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// CommentMail is the material shared by both comment notification templates.
type CommentMail struct {
	Actor      string // who wrote the comment
	FileName   string
	EntityName string // task or subtask display name
	Text       string // raw comment body
	IsReply    bool
}

// stripPolicy removes every tag; mention emails quote the comment as plain
// text inside their own markup.
var stripPolicy = bluemonday.StrictPolicy()

var ownerTmpl = template.Must(template.New("owner").Parse(`
<html>
	<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
		<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
			<h2 style="color: #2f74c0;">New {{.Label}} on Your File</h2>
			<p>Hi {{.To}},</p>
			<p><strong>{{.Actor}}</strong> has left a {{.LowerLabel}} on your problem file:</p>
			<div style="background: #f5f5f5; padding: 15px; border-left: 4px solid #2f74c0; margin: 20px 0;">
				<p><strong>Problem File:</strong> {{.FileName}}</p>
				<p><strong>Task/Subtask:</strong> {{.EntityName}}</p>
				<p><strong>{{.Label}}:</strong></p>
				<p style="font-style: italic;">&quot;{{.Text}}&quot;</p>
			</div>
			<p>Log in to the Problem File Tracker to view and respond.</p>
			<hr style="border: none; border-top: 1px solid #ddd; margin: 30px 0;">
			<p style="font-size: 12px; color: #666;">This is an automated notification from Problem File Tracker.</p>
		</div>
	</body>
</html>`))

var mentionTmpl = template.Must(template.New("mention").Parse(`
<html>
	<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
		<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
			<h2 style="color: #2f74c0;">You Were Mentioned</h2>
			<p>Hi {{.To}},</p>
			<p><strong>{{.Actor}}</strong> mentioned you in a {{.LowerLabel}}:</p>
			<div style="background: #f5f5f5; padding: 15px; border-left: 4px solid #2f74c0; margin: 20px 0;">
				<p><strong>Problem File:</strong> {{.FileName}}</p>
				<p><strong>Task/Subtask:</strong> {{.EntityName}}</p>
				<p><strong>{{.Label}}:</strong></p>
				<p style="font-style: italic;">&quot;{{.Text}}&quot;</p>
			</div>
			<p>Log in to the Problem File Tracker to join the conversation.</p>
			<hr style="border: none; border-top: 1px solid #ddd; margin: 30px 0;">
			<p style="font-size: 12px; color: #666;">This is an automated notification from Problem File Tracker.</p>
		</div>
	</body>
</html>`))

type commentTmplData struct {
	To         string
	Actor      string
	FileName   string
	EntityName string
	Text       string
	Label      string
	LowerLabel string
}

func labels(isReply bool) (string, string) {
	if isReply {
		return "Reply", "reply"
	}
	return "Comment", "comment"
}

func ownerCommentEmail(to string, m CommentMail) (subject, body string) {
	label, lower := labels(m.IsReply)
	subject = fmt.Sprintf("New %s on '%s'", label, m.FileName)
	body = render(ownerTmpl, commentTmplData{
		To: to, Actor: m.Actor, FileName: m.FileName, EntityName: m.EntityName,
		Text: m.Text, Label: label, LowerLabel: lower,
	})
	return subject, body
}

func mentionEmail(to string, m CommentMail) (subject, body string) {
	label, lower := labels(m.IsReply)
	subject = fmt.Sprintf("%s mentioned you on '%s'", m.Actor, m.FileName)
	body = render(mentionTmpl, commentTmplData{
		To: to, Actor: m.Actor, FileName: m.FileName, EntityName: m.EntityName,
		Text: stripPolicy.Sanitize(m.Text), Label: label, LowerLabel: lower,
	})
	return subject, body
}

// DeadlineTask is one approaching deadline inside a deadline alert email.
type DeadlineTask struct {
	TaskName   string
	AssignedTo string
	DueDate    time.Time
	DaysUntil  int
	Progress   int
}

// DeadlineEmail builds the periodic deadline reminder for a file owner.
func DeadlineEmail(owner, fileName string, tasks []DeadlineTask) (subject, body string) {
	subject = fmt.Sprintf("Upcoming Deadlines in '%s'", fileName)

	var rows strings.Builder
	for _, t := range tasks {
		color := "#ff9900"
		if t.DaysUntil <= 1 {
			color = "#ff0000"
		}
		rows.WriteString(fmt.Sprintf(`
		<div style="background: #fff; border: 1px solid #ddd; padding: 10px; margin: 10px 0; border-radius: 5px;">
			<p><strong>%s</strong></p>
			<p>Assigned to: %s</p>
			<p>Due: %s (<span style="color: %s;">%d days remaining</span>)</p>
			<p>Progress: %d%%</p>
		</div>`,
			template.HTMLEscapeString(t.TaskName),
			template.HTMLEscapeString(t.AssignedTo),
			t.DueDate.Format("2006-01-02"), color, t.DaysUntil, t.Progress))
	}

	body = fmt.Sprintf(`
<html>
	<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
		<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
			<h2 style="color: #ff9900;">Upcoming Deadlines</h2>
			<p>Hi %s,</p>
			<p>The following tasks in <strong>'%s'</strong> have deadlines approaching:</p>
			<div style="background: #fff9e6; padding: 15px; border: 1px solid #ffcc00; margin: 20px 0;">%s</div>
			<p>Please log in to the Problem File Tracker to review and update these tasks.</p>
			<hr style="border: none; border-top: 1px solid #ddd; margin: 30px 0;">
			<p style="font-size: 12px; color: #666;">This is an automated deadline reminder from Problem File Tracker.</p>
		</div>
	</body>
</html>`,
		template.HTMLEscapeString(owner),
		template.HTMLEscapeString(fileName), rows.String())
	return subject, body
}

func render(t *template.Template, data commentTmplData) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Sprintf("%s commented on %s", data.Actor, data.FileName)
	}
	return buf.String()
}
