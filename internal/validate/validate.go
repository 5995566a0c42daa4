package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Upload form limits, shared by the form markup and the submit check.
const (
	MaxTitleLength       = 500
	MaxDescriptionLength = 5000
	MaxTagsLength        = 1000
	MaxTagNameLength     = 50
)

func checkLen(value string, max int, field string) string {
	if utf8.RuneCountInString(value) > max {
		return fmt.Sprintf("%s must be %d characters or fewer", field, max)
	}
	return ""
}

func Title(s string) string       { return checkLen(s, MaxTitleLength, "title") }
func Description(s string) string { return checkLen(s, MaxDescriptionLength, "description") }

// Tags checks the raw comma separated tag text as typed into the form.
func Tags(s string) string {
	if msg := checkLen(s, MaxTagsLength, "tags"); msg != "" {
		return msg
	}
	for _, tag := range strings.Split(s, ",") {
		if msg := checkLen(strings.TrimSpace(tag), MaxTagNameLength, "each tag"); msg != "" {
			return msg
		}
	}
	return ""
}

// FieldLimits returns the maxlength attributes for the upload form.
func FieldLimits() map[string]int {
	return map[string]int{
		"title":       MaxTitleLength,
		"description": MaxDescriptionLength,
		"tags":        MaxTagsLength,
	}
}
