// Package conversation provides intent parsing and user notification implementations.
package conversation

import (
	"context"
	"regexp"
	"strings"

	"github.com/hammamikhairi/cooksync/internal/domain"
	"github.com/hammamikhairi/cooksync/internal/logger"
)

// Compile-time interface check.
var _ domain.IntentParser = (*KeywordParser)(nil)

// KeywordParser matches user input to intents using keywords and simple patterns.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
}

// patternRule maps a regex to an intent. Capture groups become the
// intent's arguments.
type patternRule struct {
	regex  *regexp.Regexp
	intent domain.IntentType
}

// NewKeywordParser creates a keyword-based intent parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(list|dishes|ls|show)$`), domain.IntentListDishes},
		{regexp.MustCompile(`(?i)^(plan|calculate|sync)$`), domain.IntentPlan},
		{regexp.MustCompile(`(?i)^(?:oven|appliance|use)\s+(.+)$`), domain.IntentSetAppliance},
		{regexp.MustCompile(`(?i)^(start|cook|go|begin|let'?s go)$`), domain.IntentStart},
		{regexp.MustCompile(`(?i)^(ok|ack|dismiss|got it|acknowledged|silence)$`), domain.IntentAcknowledge},
		{regexp.MustCompile(`(?i)^(next|done|continue|n|in|advance)$`), domain.IntentAdvance},
		{regexp.MustCompile(`(?i)^(stop|cancel|abort)$`), domain.IntentStop},
		{regexp.MustCompile(`(?i)^(reset|restart)$`), domain.IntentReset},
		{regexp.MustCompile(`(?i)^(status|where|progress|info)$`), domain.IntentStatus},
		{regexp.MustCompile(`(?i)^add\s+dish(?:\s+(.+))?$`), domain.IntentAddDish},
		{regexp.MustCompile(`(?i)^add\s+task(?:\s+(.+))?$`), domain.IntentAddTask},
		{regexp.MustCompile(`(?i)^(?:edit|time|set)\s+task\s+(\d+)\s+(\d+)$`), domain.IntentEditTask},
		{regexp.MustCompile(`(?i)^(?:remove|rm|delete|del)\s+task\s+(\d+)$`), domain.IntentRemoveTask},
		{regexp.MustCompile(`(?i)^(?:edit|time|set)\s+(\d+)\s+(\d+)$`), domain.IntentEditTime},
		{regexp.MustCompile(`(?i)^(?:remove|rm|delete|del)\s+(\d+)$`), domain.IntentRemove},
		{regexp.MustCompile(`(?i)^(clear|clear all)$`), domain.IntentClear},
		{regexp.MustCompile(`(?i)^(whoami|me|account)$`), domain.IntentWhoAmI},
		{regexp.MustCompile(`(?i)^(help|h|\?)$`), domain.IntentHelp},
		{regexp.MustCompile(`(?i)^(quit|exit|q|bye)$`), domain.IntentQuit},
	}
	return p
}

// Parse converts user input into an intent.
func (p *KeywordParser) Parse(ctx context.Context, input string) (*domain.Intent, error) {
	trimmed := strings.Join(strings.Fields(input), " ")
	if trimmed == "" {
		return &domain.Intent{Type: domain.IntentUnknown}, nil
	}

	p.log.Debug("parsing input: %q", trimmed)

	for _, rule := range p.patterns {
		m := rule.regex.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		p.log.Debug("matched intent: %s", rule.intent)
		intent := &domain.Intent{Type: rule.intent}
		// Keyword-only rules capture their alternation; that is not an argument.
		if hasArgs(rule.intent) {
			intent.Args = m[1:]
		}
		return intent, nil
	}

	// A bare appliance name is shorthand for "oven <name>".
	if isApplianceName(trimmed) {
		return &domain.Intent{Type: domain.IntentSetAppliance, Args: []string{trimmed}}, nil
	}

	p.log.Debug("no match, returning unknown intent")
	return &domain.Intent{Type: domain.IntentUnknown, Args: []string{trimmed}}, nil
}

func hasArgs(t domain.IntentType) bool {
	switch t {
	case domain.IntentSetAppliance, domain.IntentEditTime, domain.IntentRemove,
		domain.IntentAddDish, domain.IntentAddTask, domain.IntentEditTask, domain.IntentRemoveTask:
		return true
	default:
		return false
	}
}

func isApplianceName(s string) bool {
	switch strings.ToLower(s) {
	case "fan", "electric", "gas", "air fryer", "airfryer":
		return true
	default:
		return false
	}
}
