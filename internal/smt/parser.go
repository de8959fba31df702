package smt

import (
	"strings"
)

// parseSatResult reads the first non-blank line of solver output, which
// must be one of sat/unsat/unknown per §6's wire protocol.
func parseSatResult(output string) string {
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		return trimmed
	}

	return ""
}

// parseModel extracts a variable->value map from a sat response's model.
// Solvers normally emit `(model (define-fun v () Sort value) ...)`; some
// emit a bracketed fallback form instead (`[v value]` pairs, possibly
// without the `define-fun`/`model` wrapper at all), which this parser
// accepts by scanning character-by-character rather than assuming a fixed
// grammar (§6).
func parseModel(output string) map[string]string {
	model := make(map[string]string)

	if defs := extractDefineFuns(output); len(defs) > 0 {
		for k, v := range defs {
			model[k] = v
		}

		return model
	}

	for k, v := range extractBracketedPairs(output) {
		model[k] = v
	}

	return model
}

// extractDefineFuns finds every `(define-fun name () Sort value)` form in
// output, returning name->value.
func extractDefineFuns(output string) map[string]string {
	out := make(map[string]string)

	const marker = "(define-fun"

	i := 0
	for {
		idx := strings.Index(output[i:], marker)
		if idx < 0 {
			break
		}

		start := i + idx
		depth := 0
		end := start

		for j := start; j < len(output); j++ {
			switch output[j] {
			case '(':
				depth++
			case ')':
				depth--

				if depth == 0 {
					end = j

					goto found
				}
			}
		}

		break

	found:
		fields := strings.Fields(output[start+len(marker) : end])
		// fields: name () Sort value  -- "()" tokenizes as "(" ")" separately
		// when there are no bound variables, so filter parens out first.
		var clean []string

		for _, f := range fields {
			if f == "(" || f == ")" {
				continue
			}

			clean = append(clean, f)
		}

		if len(clean) >= 3 {
			name := clean[0]
			value := clean[len(clean)-1]
			out[name] = value
		}

		i = end + 1

		if i >= len(output) {
			break
		}
	}

	return out
}

// extractBracketedPairs scans output one rune at a time for `[name value]`
// or bare `(name value)` pairs outside of any define-fun form, accepting
// whatever a non-conformant solver emits rather than failing verification
// outright.
func extractBracketedPairs(output string) map[string]string {
	out := make(map[string]string)

	runes := []rune(output)
	i := 0

	for i < len(runes) {
		open := runes[i]
		if open != '[' && open != '(' {
			i++

			continue
		}

		closeCh := ']'
		if open == '(' {
			closeCh = ')'
		}

		j := i + 1

		var body strings.Builder

		for j < len(runes) && runes[j] != closeCh {
			body.WriteRune(runes[j])
			j++
		}

		if j < len(runes) {
			fields := strings.Fields(body.String())
			if len(fields) == 2 {
				out[fields[0]] = fields[1]
			}

			i = j + 1

			continue
		}

		i++
	}

	return out
}
