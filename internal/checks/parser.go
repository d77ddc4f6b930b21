package checks

import (
	"encoding/json"
	"strings"

	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/types"
)

// checkOutput is the machine-parseable report a check may emit on stdout.
type checkOutput struct {
	Status   string `json:"status"`
	Findings []struct {
		Severity string `json:"severity"`
		Message  string `json:"message"`
		File     string `json:"file"`
		Line     int    `json:"line"`
	} `json:"findings"`
}

// parseFindings extracts structured findings from check stdout. Output that
// is not valid JSON yields no findings; the exit code alone still carries
// the outcome, so a check with plain-text output degrades gracefully.
func parseFindings(stdout []byte) []types.Finding {
	payload := extractJSON(stdout)
	if payload == nil {
		return nil
	}

	var out checkOutput
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil
	}

	findings := make([]types.Finding, 0, len(out.Findings))
	for _, f := range out.Findings {
		severity := types.Severity(f.Severity)
		if !severity.IsValid() {
			severity = types.SeverityInfo
		}
		findings = append(findings, types.Finding{
			Severity: severity,
			Message:  f.Message,
			File:     f.File,
			Line:     f.Line,
		})
	}

	if len(findings) == 0 {
		return nil
	}
	return findings
}

// extractJSON locates a JSON object in check output. Checks commonly prefix
// their report with banner lines, so scan for the first line that starts an
// object and take everything from there.
func extractJSON(output []byte) []byte {
	trimmed := strings.TrimSpace(string(output))
	if trimmed == "" {
		return nil
	}
	if strings.HasPrefix(trimmed, "{") {
		return []byte(trimmed)
	}

	if idx := strings.Index(trimmed, "\n{"); idx >= 0 {
		return []byte(trimmed[idx+1:])
	}
	return nil
}

// summarizeOutput condenses raw output to a short single-line message for a
// synthesized finding. Mirrors the report summaries checks emit themselves.
func summarizeOutput(raw string) string {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	var kept []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		kept = append(kept, line)
		if len(kept) == 3 {
			break
		}
	}
	summary := strings.Join(kept, " | ")
	if len(summary) > 400 {
		summary = summary[:400]
	}
	if summary == "" {
		summary = "check reported failure with no output"
	}
	return summary
}
