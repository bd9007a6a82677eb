package analytics

import "strings"

// Attachment classes for the comment column.
const (
	AttachmentPresent = "Есть файл"
	AttachmentAbsent  = "Без файла"

	attachmentPrefix = "http"
)

// FallbackColor is used for question types without a fixed color.
const FallbackColor = "#999999"

var subjectLabels = map[string]string{
	"bio":   "Биология",
	"fr":    "Французский",
	"inf":   "Информатика",
	"math":  "Мат (проф.)",
	"mathb": "Мат (баз.)",
	"phys":  "Физика",
	"sp":    "Испанский",
}

var typeColors = map[string]string{
	"аудирование":         "#e5f0e5",
	"выбор ответа (один)": "#cccccc",
	"множественный выбор": "#7f7f7f",
	"неизвестно":          "#4d4d4d",
	"открытый ответ":      "#2d6b2d",
	"соответствие":        "#cce5cc",
}

var attachmentColors = map[string]string{
	AttachmentPresent: "#2d6b2d",
	AttachmentAbsent:  "#cccccc",
}

// attachmentOrder fixes the column order of the attachment table.
var attachmentOrder = []string{AttachmentPresent, AttachmentAbsent}

// Label translates a subject code to its display name.
// Unknown codes, including names that are already translated, are returned unchanged.
func Label(code string) string {
	if label, ok := subjectLabels[code]; ok {
		return label
	}

	return code
}

// TypeColor returns the bar color for a question type.
func TypeColor(questionType string) string {
	if color, ok := typeColors[questionType]; ok {
		return color
	}

	return FallbackColor
}

// AttachmentColor returns the bar color for an attachment class.
func AttachmentColor(class string) string {
	if color, ok := attachmentColors[class]; ok {
		return color
	}

	return FallbackColor
}

// ClassifyAttachment puts a comment into exactly one attachment class.
// Only comments starting with the http prefix count as attached files.
func ClassifyAttachment(comment string) string {
	if comment != "" && strings.HasPrefix(comment, attachmentPrefix) {
		return AttachmentPresent
	}

	return AttachmentAbsent
}
