package service

import "strings"

var levelWords = []string{"fundamentals", "basics", "advanced"}

// GenerateTitle derives a quiz title from a topic when the generator did not supply one.
func GenerateTitle(topic string) string {
	topic = strings.TrimSpace(topic)
	lower := strings.ToLower(topic)

	if strings.HasSuffix(lower, "quiz") {
		return topic
	}

	for _, w := range levelWords {
		if strings.Contains(lower, w) {
			return topic + " Quiz"
		}
	}

	return topic + " Fundamentals Quiz"
}
