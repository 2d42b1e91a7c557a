package telegram

import (
	"strconv"
	"strings"
)

// parseQuizArgs splits "/quiz" arguments into a topic and a question count.
// A trailing integer is the count; everything before it is the topic.
func parseQuizArgs(args string, defaultCount int) (topic string, count int) {
	fields := strings.Fields(args)
	count = defaultCount

	if len(fields) > 1 {
		if n, err := strconv.Atoi(fields[len(fields)-1]); err == nil {
			count = n
			fields = fields[:len(fields)-1]
		}
	}

	return strings.Join(fields, " "), count
}

// parseRegisterArgs reads "<name...> <email> <password>"; the name may contain spaces.
func parseRegisterArgs(args string) (name, email, password string, ok bool) {
	fields := strings.Fields(args)
	if len(fields) < 3 {
		return "", "", "", false
	}

	n := len(fields)
	return strings.Join(fields[:n-2], " "), fields[n-2], fields[n-1], true
}

// parseLoginArgs reads "<email> <password>".
func parseLoginArgs(args string) (email, password string, ok bool) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return "", "", false
	}
	return fields[0], fields[1], true
}
