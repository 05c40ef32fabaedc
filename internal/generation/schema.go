package generation

import "encoding/json"

// topicContentSchema is the JSON schema sent as the structured-output
// contract and used to validate parsed responses locally.
var topicContentSchema = json.RawMessage(`{
  "name": "topic_content",
  "strict": true,
  "schema": {
    "type": "object",
    "properties": {
      "topic_title": {"type": "string"},
      "definition": {"type": "string"},
      "explanation": {"type": "string"},
      "comparison": {"type": "string"},
      "example_detailed": {"type": "string"},
      "example_short": {"type": "string"},
      "questions": {
        "type": "array",
        "minItems": 3,
        "maxItems": 3,
        "items": {
          "type": "object",
          "properties": {
            "prompt": {"type": "string"},
            "answer": {"type": "string"}
          },
          "required": ["prompt", "answer"],
          "additionalProperties": false
        }
      }
    },
    "required": ["topic_title", "definition", "explanation", "example_detailed", "example_short", "questions"],
    "additionalProperties": false
  }
}`)

// TopicContentSchema returns the structured-output schema for a topic.
func TopicContentSchema() json.RawMessage {
	return topicContentSchema
}
