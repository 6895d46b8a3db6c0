package symbols

import "strings"

// Documentation is a parsed doc comment.
type Documentation struct {
	Summary     string
	Description string
	Inputs      map[string]string
	Output      string
}

// ParseDocumentation splits doc comment lines into their "# Summary",
// "# Description", "# Input" (with one "## name" per parameter) and
// "# Output" sections. Text before any heading counts as the summary.
func ParseDocumentation(lines []string) Documentation {
	doc := Documentation{Inputs: make(map[string]string)}

	section := "summary"
	param := ""

	var buf []string

	flush := func() {
		text := strings.TrimSpace(strings.Join(buf, "\n"))
		buf = buf[:0]

		if text == "" {
			return
		}

		switch section {
		case "summary":
			doc.Summary = join(doc.Summary, text)
		case "description":
			doc.Description = join(doc.Description, text)
		case "input":
			if param != "" {
				doc.Inputs[param] = join(doc.Inputs[param], text)
			}
		case "output":
			doc.Output = join(doc.Output, text)
		}
	}

	for _, raw := range lines {
		line := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "///"))

		switch {
		case strings.HasPrefix(line, "## "):
			flush()

			param = strings.TrimSpace(strings.TrimPrefix(line, "## "))
		case strings.HasPrefix(line, "# "):
			flush()

			section = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, "# ")))
			param = ""
		default:
			buf = append(buf, line)
		}
	}

	flush()

	return doc
}

func join(a, b string) string {
	if a == "" {
		return b
	}

	return a + "\n\n" + b
}
