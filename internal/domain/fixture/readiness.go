package fixture

import (
	"bufio"
	"strconv"
	"strings"
)

// ReadinessCondition is a predicate over the lines a container has logged.
type ReadinessCondition struct {
	Description string
	Match       func(line string) bool
}

// UntilMessageIsLogged is satisfied once any log line contains msg.
func UntilMessageIsLogged(msg string) ReadinessCondition {
	return ReadinessCondition{
		Description: "log message " + strconv.Quote(msg),
		Match: func(line string) bool {
			return strings.Contains(line, msg)
		},
	}
}

// Satisfied reports whether any line of the supplied log output matches.
// An unset condition is never satisfied.
func (r ReadinessCondition) Satisfied(logs ...string) bool {
	if r.Match == nil {
		return false
	}
	for _, chunk := range logs {
		scanner := bufio.NewScanner(strings.NewReader(chunk))
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if r.Match(strings.TrimRight(scanner.Text(), "\r")) {
				return true
			}
		}
	}
	return false
}

func (r ReadinessCondition) String() string {
	if r.Description == "" {
		return "custom readiness condition"
	}
	return r.Description
}
