package form

import "strings"

// TemplateSchema builds a deterministic schema for a category, used whenever
// LLM generation is unavailable or fails. Generation therefore always
// produces a usable form.
func TemplateSchema(category Category, prompt string) Schema {
	title := TitleFromPrompt(prompt)

	switch category {
	case CategoryJob:
		if title == "" {
			title = "Job Application"
		}
		return NewSchema(title, "Tell us about yourself and upload your application materials.", []Field{
			NewField("full_name", "Full Name", KindText, true, nil),
			NewField("email", "Email Address", KindEmail, true, nil),
			NewField("phone", "Phone Number", KindPhone, false, nil),
			NewField("position", "Position Applied For", KindText, true, nil),
			NewField("resume", "Resume", KindFile, true, nil),
			NewField("cover_letter", "Cover Letter", KindTextarea, false, nil),
			NewField("available_from", "Available From", KindDate, false, nil),
		})
	case CategorySurvey:
		if title == "" {
			title = "Survey"
		}
		return NewSchema(title, "Your responses help us improve.", []Field{
			NewField("satisfaction", "Overall Satisfaction", KindRating, true, nil),
			NewField("liked_most", "What did you like most?", KindTextarea, false, nil),
			NewField("improvements", "What could we improve?", KindTextarea, false, nil),
			NewField("recommend", "Would you recommend us?", KindRadio, true, []string{"Yes", "No", "Maybe"}),
		})
	case CategoryContact:
		if title == "" {
			title = "Contact Us"
		}
		return NewSchema(title, "Send us a message and we will get back to you.", []Field{
			NewField("name", "Name", KindText, true, nil),
			NewField("email", "Email Address", KindEmail, true, nil),
			NewField("subject", "Subject", KindText, false, nil),
			NewField("message", "Message", KindTextarea, true, nil),
		})
	case CategoryRegistration:
		if title == "" {
			title = "Registration"
		}
		return NewSchema(title, "Register to secure your spot.", []Field{
			NewField("full_name", "Full Name", KindText, true, nil),
			NewField("email", "Email Address", KindEmail, true, nil),
			NewField("organization", "Organization", KindText, false, nil),
			NewField("ticket_type", "Ticket Type", KindSelect, true, []string{"Standard", "Student", "VIP"}),
			NewField("dietary_requirements", "Dietary Requirements", KindTextarea, false, nil),
		})
	case CategoryFeedback:
		if title == "" {
			title = "Feedback"
		}
		return NewSchema(title, "We value your feedback.", []Field{
			NewField("name", "Name", KindText, false, nil),
			NewField("email", "Email Address", KindEmail, false, nil),
			NewField("rating", "Rating", KindRating, true, nil),
			NewField("comments", "Comments", KindTextarea, true, nil),
		})
	case CategoryOrder:
		if title == "" {
			title = "Order Form"
		}
		return NewSchema(title, "Place your order below.", []Field{
			NewField("full_name", "Full Name", KindText, true, nil),
			NewField("email", "Email Address", KindEmail, true, nil),
			NewField("item", "Item", KindText, true, nil),
			NewField("quantity", "Quantity", KindNumber, true, nil),
			NewField("delivery_address", "Delivery Address", KindTextarea, true, nil),
			NewField("delivery_date", "Preferred Delivery Date", KindDate, false, nil),
		})
	default:
		if title == "" {
			title = "Form"
		}
		return NewSchema(title, "", []Field{
			NewField("name", "Name", KindText, true, nil),
			NewField("email", "Email Address", KindEmail, false, nil),
			NewField("message", "Message", KindTextarea, false, nil),
		})
	}
}

// maxTitleLen caps prompt-derived titles, in runes.
const maxTitleLen = 60

// TitleFromPrompt derives a display title from a prompt by title-casing its
// leading words. Returns "" for empty prompts so callers can substitute a
// category default.
func TitleFromPrompt(prompt string) string {
	words := strings.Fields(prompt)
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	for _, w := range words {
		next := capitalize(w)
		if b.Len() > 0 {
			if b.Len()+1+len(next) > maxTitleLen {
				break
			}
			b.WriteByte(' ')
		}
		b.WriteString(next)
	}
	return b.String()
}

func capitalize(w string) string {
	r := []rune(w)
	if len(r) == 0 {
		return w
	}
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
