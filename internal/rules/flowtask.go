package rules

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/toodl-app/mind/pkg/domain"
)

var (
	flowMoneyVeto   = regexp.MustCompile(`(?i)[$€£¥₹]\s*\d|\b\d+(?:[.,]\d{1,2})?\s*(dollars?|usd|eur|gbp|cad|aud|inr)\b`)
	flowIntentVerb  = regexp.MustCompile(`(?i)\b(schedule|plan|block|set(?:\s+up)?|add|create|book|log)\b`)
	flowContextWord = regexp.MustCompile(`(?i)\b(task|meeting|call|session|block|calendar|slot|flow|orbit|agenda|workout|focus)\b`)
	flowSurfaceWord = regexp.MustCompile(`(?i)\b(?:orbit|flow|calendar|time block|timeblock|time-block)\b`)

	titleCapturePattern = regexp.MustCompile(`(?i)^\s*(?:please\s+)?(?:can you|could you|would you|will you|let's|lets|need to|help me|please)?\s*(?:please\s+)?(?:schedule|plan|block(?:\s+off)?|set(?:\s+up)?|add|create|put|book|log)\s+(?:a\s+|an\s+|the\s+)?(?P<title>[a-z0-9&'()\-.\s]{2,120}?)(?:\s+(?:for|on|at|start|starting|beginning|lasting|go|runs)\b|[.,!?]|$)`)

	durationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:for|lasting|lasts|runs?\s*for|around|about)\s+(?P<value>\d+(?:\.\d+)?)\s*(?P<unit>minutes?|min|mins|hours?|hrs?|hr)\b`),
		regexp.MustCompile(`(?i)\b(?P<value>\d+(?:\.\d+)?)\s*-\s*(?P<unit>minute|min)\b`),
		regexp.MustCompile(`(?i)\b(?P<value>\d+(?:\.\d+)?)\s*(?P<unit>minutes?|min|mins|hours?|hrs?|hr)\b`),
	}
	anHourPattern      = regexp.MustCompile(`(?i)\b(an|a)\s+hour\b`)
	halfHourPattern    = regexp.MustCompile(`(?i)\bhalf(?:\s+an?)?\s+hour\b`)
	quarterHourPattern = regexp.MustCompile(`(?i)\bquarter\s+hour\b`)

	timePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:starts?\s+at|starting\s+at|beginning\s+at|at)\s+(?P<hour>\d{1,2})(?::(?P<minute>\d{2}))?(?:\s*(?P<meridiem>am|pm))?`),
		regexp.MustCompile(`(?i)@\s*(?P<hour>\d{1,2})(?::(?P<minute>\d{2}))?(?:\s*(?P<meridiem>am|pm))?`),
		regexp.MustCompile(`(?i)\b(?P<hour>\d{1,2})(?::(?P<minute>\d{2}))?\s*(?P<meridiem>am|pm)`),
	}
	noonPattern     = regexp.MustCompile(`(?i)\b(?:at\s+)?noon\b`)
	midnightPattern = regexp.MustCompile(`(?i)\b(?:at\s+)?midnight\b`)

	relativeDatePattern = regexp.MustCompile(`(?i)\b(tomorrow|today|tonight)\b`)
	isoDatePattern      = regexp.MustCompile(`(?i)\b(?:on\s+)?(\d{4}-\d{2}-\d{2})\b`)
	slashDatePattern    = regexp.MustCompile(`(?i)\b(?:on\s+)?(\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?)\b`)
	monthDatePattern    = regexp.MustCompile(`(?i)\b(?:on\s+)?((?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec|january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2}(?:st|nd|rd|th)?(?:,\s*\d{4})?)\b`)
	weekdayDatePattern  = regexp.MustCompile(`(?i)\b(?:on\s+)?(?:(next|this)\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	monthDateParts      = regexp.MustCompile(`(?i)^([a-z]+)\s+(\d{1,2})(?:st|nd|rd|th)?(?:,\s*(\d{2,4}))?$`)

	calendarPhrase = regexp.MustCompile(`(?i)\b(?:to|in|on|into)\s+(?:orbit|my\s+calendar|the\s+calendar|calendar)\b`)
	toOrbitPhrase  = regexp.MustCompile(`(?i)\bto\s+orbit\b`)
	politeWords    = regexp.MustCompile(`(?i)\b(?:please|kindly|thanks)\b`)
	minuteRemnant  = regexp.MustCompile(`(?i)\b\d+(?:-|\s*)(?:minutes?|min)\b`)
	hourRemnant    = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s*(?:hours?|hrs?|hr)\b`)
	fillerWords    = regexp.MustCompile(`(?i)\b(?:for|start|starting|starts|beginning|total|around|about|go|runs|lasting|lasts)\b`)
	trailingTask   = regexp.MustCompile(`(?i)\btask(\s|$)`)
	titlePunct     = regexp.MustCompile(`[,.;:?!"']`)
	leadingArticle = regexp.MustCompile(`(?i)^(?:a|an|the)\s+`)
)

var monthLookup = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

var weekdayLookup = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

type durationMatch struct {
	minutes int
	text    string
}

type timeMatch struct {
	value string
	text  string
}

type dateMatch struct {
	value   string
	display string
	text    string
}

// FlowTaskRule parses utterances like "Schedule yoga tomorrow at 6am for 45
// minutes" into an add_flow_task intent. The clock is injected so date
// inference is testable.
type FlowTaskRule struct {
	now func() time.Time
}

// NewFlowTaskRule builds the rule; a nil clock uses the wall clock.
func NewFlowTaskRule(now func() time.Time) *FlowTaskRule {
	if now == nil {
		now = time.Now
	}
	return &FlowTaskRule{now: now}
}

// Tool reports the intent this rule produces.
func (r *FlowTaskRule) Tool() domain.Tool { return domain.ToolAddFlowTask }

func flowMatchesIntent(utterance string) bool {
	normalized := strings.ToLower(strings.TrimSpace(utterance))
	if normalized == "" {
		return false
	}
	if flowMoneyVeto.MatchString(normalized) {
		return false
	}
	if !flowIntentVerb.MatchString(normalized) {
		return false
	}
	return flowContextWord.MatchString(normalized) || flowSurfaceWord.MatchString(normalized)
}

func parseDurationMinutes(value, unit string) int {
	numeric, err := strconv.ParseFloat(value, 64)
	if err != nil || numeric <= 0 {
		return 0
	}
	unit = strings.ToLower(unit)
	if strings.HasPrefix(unit, "hour") || strings.HasPrefix(unit, "hr") {
		return int(math.Round(numeric * 60))
	}
	return int(math.Round(numeric))
}

func extractFlowDuration(utterance string) *durationMatch {
	for _, pattern := range durationPatterns {
		if m := pattern.FindStringSubmatch(utterance); m != nil {
			if minutes := parseDurationMinutes(m[1], m[2]); minutes > 0 {
				return &durationMatch{minutes: minutes, text: m[0]}
			}
		}
	}
	if m := anHourPattern.FindString(utterance); m != "" {
		return &durationMatch{minutes: 60, text: m}
	}
	if m := halfHourPattern.FindString(utterance); m != "" {
		return &durationMatch{minutes: 30, text: m}
	}
	if m := quarterHourPattern.FindString(utterance); m != "" {
		return &durationMatch{minutes: 15, text: m}
	}
	return nil
}

// normalizeTimeValue converts a parsed clock reading to its canonical form:
// "6:00am" style with a meridiem, zero-padded 24h "14:00" without.
func normalizeTimeValue(hours, minutes int, meridiem string) string {
	meridiem = strings.ToLower(meridiem)
	if meridiem == "pm" && hours < 12 {
		hours += 12
	} else if meridiem == "am" && hours == 12 {
		hours = 0
	}
	if hours > 23 || minutes > 59 {
		return ""
	}
	if meridiem != "" {
		displayHour := (hours+11)%12 + 1
		return fmt.Sprintf("%d:%02d%s", displayHour, minutes, meridiem)
	}
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}

func extractFlowTime(utterance string) *timeMatch {
	for _, pattern := range timePatterns {
		match := firstTimeMatch(pattern, utterance)
		if match == nil {
			continue
		}
		hour, _ := strconv.Atoi(match.hour)
		if hour <= 0 {
			continue
		}
		minute := 0
		if match.minute != "" {
			minute, _ = strconv.Atoi(match.minute)
		}
		if value := normalizeTimeValue(hour, minute, match.meridiem); value != "" {
			return &timeMatch{value: value, text: match.text}
		}
	}
	if m := noonPattern.FindString(utterance); m != "" {
		return &timeMatch{value: "12:00pm", text: m}
	}
	if m := midnightPattern.FindString(utterance); m != "" {
		return &timeMatch{value: "12:00am", text: m}
	}
	return nil
}

type clockCapture struct {
	hour, minute, meridiem, text string
}

// firstTimeMatch returns the first pattern match not immediately followed by
// another digit, which would indicate a partial read of a longer number.
func firstTimeMatch(pattern *regexp.Regexp, utterance string) *clockCapture {
	for _, idx := range pattern.FindAllStringSubmatchIndex(utterance, -1) {
		end := idx[1]
		if end < len(utterance) && utterance[end] >= '0' && utterance[end] <= '9' {
			continue
		}
		return &clockCapture{
			hour:     submatch(utterance, idx, 1),
			minute:   submatch(utterance, idx, 2),
			meridiem: submatch(utterance, idx, 3),
			text:     utterance[idx[0]:end],
		}
	}
	return nil
}

func toIsoDate(year int, month time.Month, day int) string {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC).Format("2006-01-02")
}

func ensureFourDigitYear(year int) int {
	if year < 100 {
		return 2000 + year
	}
	return year
}

// nextOccurrenceYear picks the year that puts month/day on or after the base
// date, so "March 7" said in February stays this year and said in April rolls
// forward.
func nextOccurrenceYear(base time.Time, month time.Month, day int) int {
	year := base.Year()
	candidate := time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	baseDay := time.Date(base.Year(), base.Month(), base.Day(), 12, 0, 0, 0, time.UTC)
	if candidate.Before(baseDay) {
		return year + 1
	}
	return year
}

func parseSlashDate(input string, base time.Time) string {
	parts := strings.FieldsFunc(input, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) < 2 {
		return ""
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return ""
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return ""
	}
	if month < 1 || month > 12 {
		return ""
	}
	if len(parts) > 2 {
		year, err := strconv.Atoi(parts[2])
		if err != nil {
			return ""
		}
		return toIsoDate(ensureFourDigitYear(year), time.Month(month), day)
	}
	return toIsoDate(nextOccurrenceYear(base, time.Month(month), day), time.Month(month), day)
}

func parseMonthDate(input string, base time.Time) string {
	m := monthDateParts.FindStringSubmatch(normalizeWhitespace(input))
	if m == nil {
		return ""
	}
	month, ok := monthLookup[strings.ToLower(m[1])]
	if !ok {
		return ""
	}
	day, err := strconv.Atoi(m[2])
	if err != nil {
		return ""
	}
	if m[3] != "" {
		year, err := strconv.Atoi(m[3])
		if err != nil {
			return ""
		}
		return toIsoDate(ensureFourDigitYear(year), month, day)
	}
	return toIsoDate(nextOccurrenceYear(base, month, day), month, day)
}

func computeWeekdayDate(prefix string, weekday time.Weekday, base time.Time) string {
	offset := int(weekday) - int(base.Weekday())
	switch prefix {
	case "next":
		if offset <= 0 {
			offset += 7
		}
		offset += 7
	default:
		if offset < 0 {
			offset += 7
		}
	}
	target := time.Date(base.Year(), base.Month(), base.Day()+offset, 12, 0, 0, 0, time.UTC)
	return target.Format("2006-01-02")
}

func formatDateDisplay(value string) string {
	switch value {
	case "today":
		return "Today"
	case "tomorrow":
		return "Tomorrow"
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return titleCase(value)
	}
	return parsed.Format("Jan 2, 2006")
}

func (r *FlowTaskRule) extractFlowDate(utterance string) *dateMatch {
	base := r.now().UTC()

	if m := relativeDatePattern.FindStringSubmatch(utterance); m != nil {
		value := "today"
		if strings.EqualFold(m[1], "tomorrow") {
			value = "tomorrow"
		}
		return &dateMatch{value: value, display: formatDateDisplay(value), text: m[0]}
	}
	if m := isoDatePattern.FindStringSubmatch(utterance); m != nil {
		return &dateMatch{value: m[1], display: formatDateDisplay(m[1]), text: m[0]}
	}
	if m := slashDatePattern.FindStringSubmatch(utterance); m != nil {
		if value := parseSlashDate(m[1], base); value != "" {
			return &dateMatch{value: value, display: formatDateDisplay(value), text: m[0]}
		}
	}
	if m := monthDatePattern.FindStringSubmatch(utterance); m != nil {
		if value := parseMonthDate(m[1], base); value != "" {
			return &dateMatch{value: value, display: formatDateDisplay(value), text: m[0]}
		}
	}
	if m := weekdayDatePattern.FindStringSubmatch(utterance); m != nil {
		prefix := strings.ToLower(m[1])
		if prefix != "" || strings.Contains(strings.ToLower(m[0]), "on") {
			value := computeWeekdayDate(prefix, weekdayLookup[strings.ToLower(m[2])], base)
			return &dateMatch{value: value, display: formatDateDisplay(value), text: m[0]}
		}
	}
	return nil
}

// replaceFirst removes the first case-insensitive occurrence of segment.
func replaceFirst(input, segment string) string {
	pattern, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(segment))
	if err != nil {
		return input
	}
	if loc := pattern.FindStringIndex(input); loc != nil {
		return input[:loc[0]] + " " + input[loc[1]:]
	}
	return input
}

func cleanFlowTitle(utterance string, segments []string) string {
	captured := ""
	if m := titleCapturePattern.FindStringSubmatch(utterance); m != nil {
		captured = m[1]
	}
	working := captured
	if working == "" {
		working = utterance
	}

	working = calendarPhrase.ReplaceAllString(working, " ")
	working = toOrbitPhrase.ReplaceAllString(working, " ")
	for _, segment := range segments {
		if segment != "" {
			working = replaceFirst(working, segment)
		}
	}
	working = politeWords.ReplaceAllString(working, " ")
	working = minuteRemnant.ReplaceAllString(working, " ")
	working = hourRemnant.ReplaceAllString(working, " ")
	working = fillerWords.ReplaceAllString(working, " ")
	working = trailingTask.ReplaceAllString(working, " ")
	working = titlePunct.ReplaceAllString(working, " ")
	working = normalizeWhitespace(working)
	working = leadingArticle.ReplaceAllString(working, "")

	if working == "" {
		working = captured
		if working == "" {
			working = utterance
		}
	}
	working = normalizeWhitespace(working)
	if working == "" {
		return ""
	}
	return titleCase(working)
}

func formatDurationDisplay(minutes int) string {
	hours := minutes / 60
	remaining := minutes % 60
	var parts []string
	if hours > 0 {
		if hours == 1 {
			parts = append(parts, "1 hr")
		} else {
			parts = append(parts, fmt.Sprintf("%d hrs", hours))
		}
	}
	if remaining > 0 || len(parts) == 0 {
		if remaining == 1 {
			parts = append(parts, "1 min")
		} else {
			parts = append(parts, fmt.Sprintf("%d mins", remaining))
		}
	}
	return strings.Join(parts, " ")
}

// Parse evaluates the utterance and returns an add_flow_task result, or nil
// when the scheduling signal, a usable title, or a start time are missing.
// Tasks without an explicit time of day are left to the user to place.
func (r *FlowTaskRule) Parse(utterance string, snapshot *domain.MindExperienceSnapshot) *domain.RuleResult {
	if strings.TrimSpace(utterance) == "" {
		return nil
	}
	if !flowMatchesIntent(utterance) {
		return nil
	}

	duration := extractFlowDuration(utterance)
	clock := extractFlowTime(utterance)
	if clock == nil {
		return nil
	}
	date := r.extractFlowDate(utterance)

	segments := make([]string, 0, 3)
	if duration != nil {
		segments = append(segments, duration.text)
	}
	segments = append(segments, clock.text)
	if date != nil {
		segments = append(segments, date.text)
	}
	title := cleanFlowTitle(utterance, segments)
	if title == "" {
		return nil
	}

	durationMinutes := 30
	if duration != nil {
		durationMinutes = duration.minutes
	}
	durationDisplay := formatDurationDisplay(durationMinutes)

	scheduledFor := ""
	if date != nil {
		scheduledFor = date.value
	}

	confidence := 0.6 + 0.05
	if duration != nil {
		confidence += 0.15
	}
	if date != nil {
		confidence += 0.1
	}
	confidence = math.Round(math.Max(0.4, math.Min(confidence, 0.92))*100) / 100

	details := []string{fmt.Sprintf("%q", title)}
	templateParts := []string{"Schedule {{title}}"}
	fields := []domain.EditableField{
		{Key: "title", Value: title, FieldType: domain.FieldTitle},
	}
	if date != nil {
		details = append(details, "on "+date.display)
		templateParts = append(templateParts, "on {{date}}")
		fields = append(fields, domain.EditableField{
			Key: "date", Value: date.display, FieldType: domain.FieldDate,
		})
	}
	details = append(details, "at "+clock.value)
	templateParts = append(templateParts, "at {{time}}")
	fields = append(fields, domain.EditableField{
		Key: "time", Value: clock.value, FieldType: domain.FieldTime,
	})
	details = append(details, "for "+durationDisplay)
	templateParts = append(templateParts, "for {{duration}}")
	fields = append(fields, domain.EditableField{
		Key: "duration", Value: durationDisplay, FieldType: domain.FieldDuration,
	})

	return &domain.RuleResult{
		Intent: domain.Intent{
			Tool: domain.ToolAddFlowTask,
			Input: domain.AddFlowTaskInput{
				Title:           title,
				DurationMinutes: durationMinutes,
				ScheduledFor:    scheduledFor,
				StartsAt:        clock.value,
			},
		},
		Confidence: confidence,
		Message:    "Ready to schedule " + strings.Join(details, " ") + ".",
		EditableMessage: &domain.EditableMessage{
			Template: strings.Join(templateParts, " ") + "?",
			Fields:   fields,
		},
	}
}
