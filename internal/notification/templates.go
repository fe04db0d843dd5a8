// internal/notification/templates.go
package notification

import (
	"fmt"
	"strings"

	"hiring-workers/internal/models"
)

type template struct {
	title string
	body  string
}

var templates = map[models.NotificationKind]template{
	models.KindApplicationSubmitted: {
		title: "New application for {{jobTitle}}",
		body:  "{{candidateName}} applied for {{jobTitle}}.",
	},
	models.KindApplicationInReview: {
		title: "Your application is in review",
		body:  "{{organizationName}} is reviewing your application for {{jobTitle}}.",
	},
	models.KindApplicationAccepted: {
		title: "Your application was accepted",
		body:  "{{organizationName}} accepted your application for {{jobTitle}}.{{schedule}}{{details}}",
	},
	models.KindApplicationRejected: {
		title: "Update on your application",
		body:  "{{organizationName}} declined your application for {{jobTitle}}. Reason: {{rejectReason}}",
	},
	models.KindApplicationApproved: {
		title: "Offer confirmed for {{jobTitle}}",
		body:  "{{candidateName}} confirmed the offer for {{jobTitle}} on {{approvedDate}}.",
	},
	models.KindBadgeAwarded: {
		title: "You earned a badge",
		body:  "Congratulations, you earned the {{badgeName}} badge.",
	},
}

// compose renders the title and body of kind. Values are inserted verbatim and are
// never scanned for placeholders themselves; unknown placeholders render empty.
func compose(kind models.NotificationKind, data map[string]string) (title, body string, err error) {
	tmpl, ok := templates[kind]
	if !ok {
		return "", "", fmt.Errorf("no template for notification kind %q", kind)
	}
	return render(tmpl.title, data), render(tmpl.body, data), nil
}

func render(tmpl string, data map[string]string) string {
	var b strings.Builder
	rest := tmpl
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(rest[start:], "}}")
		if end == -1 {
			break
		}
		b.WriteString(rest[:start])
		b.WriteString(data[rest[start+2:start+end]])
		rest = rest[start+end+2:]
	}
	b.WriteString(rest)
	return b.String()
}

// transitionData collects the placeholder values for a transition notice.
func transitionData(app *models.Application, names names) map[string]string {
	data := map[string]string{
		"jobTitle":         names.jobTitle,
		"organizationName": names.organizationName,
		"candidateName":    names.candidateName,
		"rejectReason":     app.RejectReason,
	}
	if app.AcceptDate != "" || app.AcceptTime != "" {
		data["schedule"] = fmt.Sprintf(" Scheduled for %s at %s.", app.AcceptDate, app.AcceptTime)
	}
	if app.AcceptDetails != "" {
		data["details"] = " Details: " + app.AcceptDetails
	}
	if app.ApprovedAt != nil {
		data["approvedDate"] = app.ApprovedAt.Format("2006-01-02")
	}
	return data
}
