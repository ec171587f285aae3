package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/statforge/statforge/internal/models"
	"log/slog"
)

// ClaimValidator extracts a quantifiable claim (percentage, ratio, or
// labeled timeframe) from a candidate's text and judges its plausibility.
// Rejections are non-fatal; they shrink the candidate pool, not the run.
type ClaimValidator struct {
	logger *slog.Logger
}

// NewClaimValidator constructs a validator.
func NewClaimValidator(logger *slog.Logger) *ClaimValidator {
	return &ClaimValidator{logger: logger}
}

var (
	percentRe = regexp.MustCompile(`(?i)(-?\d+(?:[.,]\d+)?)\s*(?:%|percent|proc\.?|procent)`)

	// "3 in 5", "1 of 4", "2 out of 3", Polish "3 na 5", "1 z 10".
	ratioRe = regexp.MustCompile(`(?i)\b(\d+)\s+(?:in|of|out of|na|z)\s+(\d+)\b`)

	// Bounded period phrases: a labeled year, a year range, or a trailing
	// window like "last 5 years" / "ostatnich 10 lat".
	timeframeYearRe   = regexp.MustCompile(`(?i)\b(?:in|since|by|during|od|do|w roku)\s+((?:1[89]|20)\d{2})\b`)
	timeframeRangeRe  = regexp.MustCompile(`(?i)\b(?:w latach\s+)?((?:1[89]|20)\d{2})\s*[-–]\s*((?:1[89]|20)\d{2})\b`)
	timeframeWindowRe = regexp.MustCompile(`(?i)\b(?:last|past|ostatni(?:ch|e)?)\s+(\d+)\s+(?:years?|months?|weeks?|days?|lat|miesi[eę]cy|tygodni|dni)\b`)
)

// Validate screens a single candidate. On success it returns the item with
// its extracted claim fields attached and a nil issue; on rejection it
// returns a ValidationIssue describing why, including the sentence the claim
// was extracted from.
func (v *ClaimValidator) Validate(item models.SourceItem) (models.SourceItem, *models.ValidationIssue) {
	claim := extractClaim(item.Title, item.Summary)

	// An unreachable citation cannot be trusted even when its text parses.
	if item.StatusCode != 0 && (item.StatusCode < 200 || item.StatusCode >= 300) {
		issue := v.issueFor(item, claim, fmt.Sprintf("source responded with status %d at fetch time", item.StatusCode))
		return item, issue
	}

	if claim == nil {
		issue := v.issueFor(item, nil, "no quantifiable claim found in title or summary")
		return item, issue
	}

	if reason := claim.implausible(); reason != "" {
		issue := v.issueFor(item, claim, reason)
		return item, issue
	}

	item.PercentageValue = claim.percentage
	item.Ratio = claim.ratio
	item.Timeframe = claim.timeframe
	return item, nil
}

func (v *ClaimValidator) issueFor(item models.SourceItem, claim *claim, reason string) *models.ValidationIssue {
	issue := &models.ValidationIssue{
		SourceID:         item.SourceID,
		SourceName:       item.SourceName,
		Title:            item.Title,
		Reason:           reason,
		SourceURL:        item.SourceURL,
		SourceStatusCode: item.StatusCode,
	}
	if claim != nil {
		issue.PercentageValue = claim.percentage
		issue.Ratio = claim.ratio
		issue.Timeframe = claim.timeframe
		issue.ContextSentence = claim.sentence
	}

	v.logger.Debug("candidate rejected", "source_id", item.SourceID, "title", item.Title, "reason", reason)
	return issue
}

// claim is an extracted quantitative assertion plus the sentence it came
// from. At most one of the three claim shapes is populated; percentage wins
// over ratio, ratio over timeframe, matching how specific each shape is.
type claim struct {
	percentage *float64
	ratio      string
	ratioNum   int
	ratioDen   int
	timeframe  string
	sentence   string
}

// implausible returns a rejection reason, or "" when the claim holds up.
func (c *claim) implausible() string {
	switch {
	case c.percentage != nil:
		if *c.percentage < 0 || *c.percentage > 100 {
			return fmt.Sprintf("percentage %.4g outside the plausible range [0, 100]", *c.percentage)
		}
	case c.ratio != "":
		if c.ratioDen == 0 {
			return fmt.Sprintf("ratio %s has a zero denominator", c.ratio)
		}
		if c.ratioNum > c.ratioDen {
			return fmt.Sprintf("ratio %s has numerator greater than denominator", c.ratio)
		}
	case c.timeframe != "":
		// Year bounds are enforced by the regexes; a matched timeframe is
		// structurally well-formed. Reject future years beyond next year.
		if year := leadingYear(c.timeframe); year > time.Now().Year()+1 {
			return fmt.Sprintf("timeframe %q refers to an implausible future year", c.timeframe)
		}
	}
	return ""
}

func leadingYear(timeframe string) int {
	m := regexp.MustCompile(`(?:1[89]|20)\d{2}`).FindString(timeframe)
	if m == "" {
		return 0
	}
	year, _ := strconv.Atoi(m)
	return year
}

// extractClaim scans title then summary sentence by sentence for the first
// quantifiable claim.
func extractClaim(title, summary string) *claim {
	for _, sentence := range splitSentences(title + ". " + summary) {
		if c := claimFromSentence(sentence); c != nil {
			return c
		}
	}
	return nil
}

func claimFromSentence(sentence string) *claim {
	if m := percentRe.FindStringSubmatch(sentence); m != nil {
		raw := strings.ReplaceAll(m[1], ",", ".")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil
		}
		return &claim{percentage: &value, sentence: sentence}
	}

	if m := ratioRe.FindStringSubmatch(sentence); m != nil {
		num, errN := strconv.Atoi(m[1])
		den, errD := strconv.Atoi(m[2])
		if errN != nil || errD != nil {
			return nil
		}
		return &claim{
			ratio:    fmt.Sprintf("%d/%d", num, den),
			ratioNum: num,
			ratioDen: den,
			sentence: sentence,
		}
	}

	if m := timeframeRangeRe.FindString(sentence); m != "" {
		return &claim{timeframe: strings.TrimSpace(m), sentence: sentence}
	}
	if m := timeframeYearRe.FindString(sentence); m != "" {
		return &claim{timeframe: strings.TrimSpace(m), sentence: sentence}
	}
	if m := timeframeWindowRe.FindString(sentence); m != "" {
		return &claim{timeframe: strings.TrimSpace(m), sentence: sentence}
	}

	return nil
}

// splitSentences breaks text on sentence terminators. Short fragments are
// kept because feed titles are routinely terse.
func splitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\n", " ")

	var sentences []string
	var current strings.Builder

	flush := func() {
		sentence := strings.TrimSpace(current.String())
		sentence = strings.TrimRight(sentence, ".!?")
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		current.Reset()
	}

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			// Avoid splitting decimals like "12.5%".
			if r == '.' && i+1 < len(runes) && runes[i+1] >= '0' && runes[i+1] <= '9' {
				continue
			}
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\t' {
				flush()
			}
		}
	}
	flush()

	return sentences
}
