// Package readme turns the upstream internship README into job postings.
//
// The README embeds an HTML table inside Markdown. Rows are matched with a
// handful of fixed patterns that follow the table layout used upstream; this
// is a micro-parser for that one shape, not a general HTML reader.
package readme

import (
	"fmt"
	"regexp"
	"strings"

	"internhunt-engine/internal/domain"
)

type section struct {
	marker   string
	category string
}

// Section headers, matched as literal substrings. Order matters: first hit wins.
var sections = []section{
	{marker: "## 💻 Software Engineering Internship Roles", category: domain.CategorySoftware},
	{marker: "## 📱 Product Management Internship Roles", category: domain.CategoryProduct},
	{marker: "## 🤖 Data Science, AI & Machine Learning Internship Roles", category: domain.CategoryDataAI},
	{marker: "## 📈 Quantitative Finance Internship Roles", category: domain.CategoryQuant},
	{marker: "## 🔧 Hardware Engineering Internship Roles", category: domain.CategoryHardware},
}

const (
	rowOpen    = "<tr>"
	rowClose   = "</tr>"
	headerCell = "<th>"
)

var (
	companyRe  = regexp.MustCompile(`<td><strong>(?:<a[^>]*>)?([^<]+)(?:</a>)?</strong></td>`)
	roleRe     = regexp.MustCompile(`<td>([^<]+)</td>`)
	locationRe = regexp.MustCompile(`<td>([^<]+)</td>(?s:.*?)<td>([^<]+)</td>`)
	applyRe    = regexp.MustCompile(`(?i)<td><div[^>]*>(?:<[^>]*>)*<a href="([^"]+)"[^>]*><img[^>]*alt="Apply"`)
	ageRe      = regexp.MustCompile(`<td>(\d+d|N/A|🔒)</td>`)
)

// scanState is everything Parse carries from one line to the next.
type scanState struct {
	category string
	emitted  int
}

// Parse extracts postings in document order. Rows that do not yield a
// company, role and location are skipped; Parse never fails.
func Parse(document string) []domain.JobPosting {
	jobs := make([]domain.JobPosting, 0)
	lines := strings.Split(document, "\n")
	st := scanState{category: domain.CategoryUnknown}

	for i := 0; i < len(lines); i++ {
		st.category = sectionFor(lines[i], st.category)

		if !strings.HasPrefix(strings.TrimSpace(lines[i]), rowOpen) {
			continue
		}

		row, end := collectRow(lines, i)
		i = end

		if job, ok := st.classify(row); ok {
			jobs = append(jobs, job)
		}
	}
	return jobs
}

func sectionFor(line, current string) string {
	for _, s := range sections {
		if strings.Contains(line, s.marker) {
			return s.category
		}
	}
	return current
}

// collectRow joins lines[start] through the first line containing </tr>.
// An unterminated row runs to the end of the document.
func collectRow(lines []string, start int) (row string, end int) {
	end = start
	for end < len(lines) && !strings.Contains(lines[end], rowClose) {
		end++
	}
	if end == len(lines) {
		return strings.Join(lines[start:], "\n"), end - 1
	}
	return strings.Join(lines[start:end+1], "\n"), end
}

func (st *scanState) classify(row string) (domain.JobPosting, bool) {
	if strings.Contains(row, headerCell) {
		return domain.JobPosting{}, false
	}

	company := strings.TrimSpace(submatch(companyRe, row, 1))
	role := strings.TrimSpace(submatch(roleRe, row, 1))
	location := strings.TrimSpace(submatch(locationRe, row, 2))
	if company == "" || role == "" || location == "" {
		return domain.JobPosting{}, false
	}

	age := submatch(ageRe, row, 1)
	if age == "" {
		age = domain.AgeUnknown
	}

	job := domain.JobPosting{
		ID:             fmt.Sprintf("%s-%d", Slug(company+"-"+role+"-"+location), st.emitted),
		Company:        company,
		Role:           role,
		Location:       location,
		ApplicationURL: submatch(applyRe, row, 1),
		Age:            age,
		Category:       st.category,
	}
	st.emitted++
	return job, true
}

func submatch(re *regexp.Regexp, s string, group int) string {
	m := re.FindStringSubmatch(s)
	if len(m) <= group {
		return ""
	}
	return m[group]
}

// Slug keeps ASCII letters, digits and hyphens and lower-cases the result.
// Everything else becomes one hyphen per UTF-16 code unit, so a rune outside
// the Basic Multilingual Plane (most emoji) becomes two. IDs stay identical
// to the ones the web tracker minted for the same rows.
func Slug(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r > 0xFFFF:
			b.WriteString("--")
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}
