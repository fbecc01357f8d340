// Package mailingest accepts vendor invoices over SMTP. Inbound email is
// parsed with enmime, attachments land in object storage, and the message
// runs through the same extraction pipeline as the HTTP process endpoint.
package mailingest

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/jhillyerd/enmime"
)

// ParsedEmail is an inbound email reduced to what extraction needs
type ParsedEmail struct {
	SenderEmail string
	SenderName  string
	Subject     string
	BodyText    string
	BodyHTML    string
	Attachments []ParsedAttachment
}

// ParsedAttachment is a decoded attachment ready for storage
type ParsedAttachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ParseEmail parses an email from an io.Reader
func ParseEmail(r io.Reader) (*ParsedEmail, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, err
	}

	parsed := &ParsedEmail{
		Subject:  env.GetHeader("Subject"),
		BodyText: env.Text,
		BodyHTML: env.HTML,
	}
	parsed.SenderName, parsed.SenderEmail = parseFromHeader(env.GetHeader("From"))

	for _, att := range env.Attachments {
		parsed.Attachments = append(parsed.Attachments, ParsedAttachment{
			Filename:    att.FileName,
			ContentType: att.ContentType,
			Content:     att.Content,
		})
	}

	// Inline parts with a filename are attachments in practice (scanned
	// invoices pasted into the body).
	for _, att := range env.Inlines {
		if att.FileName != "" {
			parsed.Attachments = append(parsed.Attachments, ParsedAttachment{
				Filename:    att.FileName,
				ContentType: att.ContentType,
				Content:     att.Content,
			})
		}
	}

	return parsed, nil
}

// ExtractionContent composes the free-text input for the extraction
// pipeline: subject line plus plain-text body, falling back to stripped
// HTML when no text part exists.
func (p *ParsedEmail) ExtractionContent() string {
	body := strings.TrimSpace(p.BodyText)
	if body == "" && p.BodyHTML != "" {
		body = strings.TrimSpace(stripHTMLTags(p.BodyHTML))
	}

	subject := strings.TrimSpace(p.Subject)
	switch {
	case subject == "":
		return body
	case body == "":
		return subject
	default:
		return fmt.Sprintf("Subject: %s\n\n%s", subject, body)
	}
}

// parseFromHeader extracts name and email from a From header
func parseFromHeader(from string) (name, email string) {
	from = strings.TrimSpace(from)
	if from == "" {
		return "", ""
	}

	// Pattern: "Name" <email@example.com> or Name <email@example.com>
	re := regexp.MustCompile(`^(?:"?([^"<]*)"?\s*)?<?([^<>]+@[^<>]+)>?$`)
	matches := re.FindStringSubmatch(from)

	if len(matches) >= 3 {
		name = strings.Trim(strings.TrimSpace(matches[1]), `"`)
		email = strings.TrimSpace(matches[2])
	} else {
		email = from
	}

	return name, email
}

// stripHTMLTags removes HTML tags from a string
func stripHTMLTags(html string) string {
	re := regexp.MustCompile(`(?i)<script[^>]*>[\s\S]*?</script>|(?i)<style[^>]*>[\s\S]*?</style>`)
	html = re.ReplaceAllString(html, "")

	re = regexp.MustCompile(`<[^>]*>`)
	html = re.ReplaceAllString(html, " ")

	html = strings.ReplaceAll(html, "&nbsp;", " ")
	html = strings.ReplaceAll(html, "&amp;", "&")
	html = strings.ReplaceAll(html, "&lt;", "<")
	html = strings.ReplaceAll(html, "&gt;", ">")
	html = strings.ReplaceAll(html, "&quot;", `"`)
	html = strings.ReplaceAll(html, "&#39;", "'")

	return strings.Join(strings.Fields(html), " ")
}
