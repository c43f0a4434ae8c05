package dialogflow

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Placeholder replies used when the agent response carries no usable text.
const (
	// NoTextReply is returned when the agent answered but with no text lines.
	NoTextReply = "received a response but no text to display."
	// FallbackReply is returned when the response has no reply fields at all.
	FallbackReply = "sorry, could not process your request right now."
)

// ExtractResponseText picks the user-facing reply out of a detectIntent
// response body. In order of precedence:
//
//  1. text lines of every responseMessages entry with a non-empty text.text,
//     lines joined by "\n" and messages joined by "\n"
//  2. a non-empty fulfillmentText
//  3. NoTextReply if either field was present and not null
//  4. FallbackReply otherwise
func ExtractResponseText(body []byte) string {
	result := gjson.GetBytes(body, "queryResult")
	messages := result.Get("responseMessages")
	fulfillment := result.Get("fulfillmentText")

	if messages.IsArray() {
		var texts []string
		messages.ForEach(func(_, msg gjson.Result) bool {
			lines := msg.Get("text.text")
			if !lines.IsArray() || len(lines.Array()) == 0 {
				return true
			}
			parts := make([]string, 0, len(lines.Array()))
			for _, line := range lines.Array() {
				parts = append(parts, line.String())
			}
			texts = append(texts, strings.Join(parts, "\n"))
			return true
		})
		if len(texts) > 0 {
			return strings.Join(texts, "\n")
		}
	}

	if text := fulfillment.String(); fulfillment.Exists() && text != "" {
		return text
	}

	if present(messages) || present(fulfillment) {
		return NoTextReply
	}
	return FallbackReply
}

func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}
