// Package render owns the two document layouts the engine can issue and
// turns resolved content into PDF artifacts. Templates are a closed,
// compiled-in set: this is deliberately not a general templating engine,
// so user input can never alter layout or inject markup.
package render

import (
	"math"
	"regexp"
	"strings"
	"time"
)

// Kinds accepted by TemplateFor. They mirror the persisted document kinds.
const (
	KindOfferLetter           = "offer_letter"
	KindCompletionCertificate = "completion_certificate"
)

// Template is a fixed parameterized document layout.
type Template struct {
	Title string
	Body  string
}

var placeholderPattern = regexp.MustCompile(`\{\{([A-Za-z0-9_]+)\}\}`)

// Resolve substitutes every {{field}} placeholder with its value.
// Unknown fields resolve to empty string rather than failing the render:
// a missing cosmetic field must not block an otherwise valid document.
func (t Template) Resolve(fields map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(t.Body, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		return fields[name]
	})
}

// TemplateFor returns the layout owned by the given document kind.
func TemplateFor(kind string) (Template, bool) {
	switch kind {
	case KindOfferLetter:
		return offerLetterTemplate, true
	case KindCompletionCertificate:
		return certificateTemplate, true
	default:
		return Template{}, false
	}
}

// DurationMonths computes the internship duration from a calendar date
// range, counting ~30-day months and rounding up so a 61-day internship
// reports as 3 months.
func DurationMonths(start, end time.Time) int {
	days := end.Sub(start).Hours() / 24
	if days <= 0 {
		return 0
	}
	return int(math.Ceil(days / 30))
}

// GradeLabel maps a letter grade onto its qualitative label. Values
// outside the closed set fall back to "Excellent" rather than an empty
// string, because the document is user facing.
func GradeLabel(grade string) string {
	switch strings.ToUpper(strings.TrimSpace(grade)) {
	case "A":
		return "Outstanding"
	case "B":
		return "Excellent"
	case "C":
		return "Good"
	case "D":
		return "Satisfactory"
	default:
		return "Excellent"
	}
}

var offerLetterTemplate = Template{
	Title: "Internship Offer Letter",
	Body: `{{company_name}}

Date: {{generated_date}}
To: {{student_name}}
Email: {{student_email}}

Dear {{student_name}},

We are pleased to offer you an internship position with {{company_name}}. Congratulations on being selected for this opportunity!

Internship Details
Position: {{internship_title}}
Department/Team: {{department}}
Start Date: {{start_date}}
End Date: {{end_date}}
Duration: {{duration_months}} months
Stipend: {{stipend}}
Location: {{location}}
Reporting Manager: {{supervisor_name}}

During your internship you will work on challenging projects, gain hands-on experience, and contribute to the team's success. Please confirm your acceptance of this offer within 5 business days. Upon acceptance you will receive further information about onboarding, required documentation, and your first-day schedule.

If you have any questions, please reach out to your supervisor or the HR department.

Sincerely,
{{supervisor_name}}
{{company_name}}

This offer is valid until {{expires_date}}.
Document Serial: {{serial_number}}
This is an electronically generated document. No physical signature required.`,
}

var certificateTemplate = Template{
	Title: "Certificate of Internship Completion",
	Body: `{{company_name}}

This is to certify that

{{student_name}}

has successfully completed the internship program and has demonstrated dedication, professionalism, and competence throughout the internship period.

Internship Details
Internship Title: {{internship_title}}
Internship Period: {{start_date}} to {{end_date}}
Completion Date: {{completion_date}}
Duration: {{duration_months}} months

Skills and Knowledge Acquired
{{skills_formatted}}

Overall Performance: {{performance_grade}}

{{hr_manager_name}} - HR Manager
{{supervisor_name}} - Internship Supervisor

Certificate Serial: {{serial_number}}
Issued on {{certificate_date}}. This is an electronically generated certificate.`,
}
