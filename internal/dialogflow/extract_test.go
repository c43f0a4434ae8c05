package dialogflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractResponseText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "joins lines and messages with newlines",
			body: `{"queryResult":{"responseMessages":[{"text":{"text":["a","b"]}},{"text":{"text":["c"]}}]}}`,
			want: "a\nb\nc",
		},
		{
			name: "skips messages without text",
			body: `{"queryResult":{"responseMessages":[{"payload":{"k":"v"}},{"text":{"text":[]}},{"text":{"text":["only"]}}]}}`,
			want: "only",
		},
		{
			name: "response messages win over fulfillment text",
			body: `{"queryResult":{"responseMessages":[{"text":{"text":["from messages"]}}],"fulfillmentText":"ignored"}}`,
			want: "from messages",
		},
		{
			name: "fulfillment text without messages",
			body: `{"queryResult":{"fulfillmentText":"hello"}}`,
			want: "hello",
		},
		{
			name: "fulfillment text when messages carry no text",
			body: `{"queryResult":{"responseMessages":[{"payload":{}}],"fulfillmentText":"hello"}}`,
			want: "hello",
		},
		{
			name: "empty fulfillment text",
			body: `{"queryResult":{"fulfillmentText":""}}`,
			want: NoTextReply,
		},
		{
			name: "messages present but textless",
			body: `{"queryResult":{"responseMessages":[{"payload":{}}]}}`,
			want: NoTextReply,
		},
		{
			name: "empty messages array",
			body: `{"queryResult":{"responseMessages":[]}}`,
			want: NoTextReply,
		},
		{
			name: "null messages",
			body: `{"queryResult":{"responseMessages":null}}`,
			want: FallbackReply,
		},
		{
			name: "null messages and fulfillment text",
			body: `{"queryResult":{"responseMessages":null,"fulfillmentText":null}}`,
			want: FallbackReply,
		},
		{
			name: "null messages with empty fulfillment text",
			body: `{"queryResult":{"responseMessages":null,"fulfillmentText":""}}`,
			want: NoTextReply,
		},
		{
			name: "neither field present",
			body: `{"queryResult":{"text":"hi","languageCode":"en"}}`,
			want: FallbackReply,
		},
		{
			name: "no query result",
			body: `{}`,
			want: FallbackReply,
		},
		{
			name: "empty body",
			body: ``,
			want: FallbackReply,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractResponseText([]byte(tt.body)))
		})
	}
}
