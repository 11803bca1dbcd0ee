package readme

import (
	"reflect"
	"strings"
	"testing"

	"internhunt-engine/internal/domain"
)

const tableHeader = `<table>
<thead>
<tr>
<th>Company</th>
<th>Role</th>
<th>Location</th>
<th>Application</th>
<th>Age</th>
</tr>
</thead>
<tbody>`

func row(company, role, location, applyURL, age string) string {
	var b strings.Builder
	b.WriteString("<tr>\n")
	b.WriteString(`<td><strong><a href="https://simplify.jobs/c/x">` + company + "</a></strong></td>\n")
	b.WriteString("<td>" + role + "</td>\n")
	if location != "" {
		b.WriteString("<td>" + location + "</td>\n")
	}
	if applyURL != "" {
		b.WriteString(`<td><div align="center"><a href="` + applyURL + `"><img src="https://i.imgur.com/u1KNU8z.png" width="118" alt="Apply"></a> <a href="https://simplify.jobs/p/1"><img src="https://i.imgur.com/fbjwDvo.png" width="26" alt="Simplify"></a></div></td>` + "\n")
	}
	if age != "" {
		b.WriteString("<td>" + age + "</td>\n")
	}
	b.WriteString("</tr>")
	return b.String()
}

func doc(parts ...string) string {
	return strings.Join(parts, "\n")
}

func TestParse_NoRows(t *testing.T) {
	in := doc("# Summer 2026 Internships", "", "Some intro text.", "## 💻 Software Engineering Internship Roles", "nothing here")
	got := Parse(in)
	if len(got) != 0 {
		t.Fatalf("expected no postings, got %d: %+v", len(got), got)
	}
	if len(Parse("")) != 0 {
		t.Fatalf("expected no postings for empty document")
	}
}

func TestParse_HardwareExample(t *testing.T) {
	in := doc(
		"## 🔧 Hardware Engineering Internship Roles",
		tableHeader,
		row("Acme", "Firmware Intern", "Remote", "https://acme.test/apply", "3d"),
		"</tbody>",
		"</table>",
	)

	got := Parse(in)
	want := []domain.JobPosting{{
		ID:             "acme-firmware-intern-remote-0",
		Company:        "Acme",
		Role:           "Firmware Intern",
		Location:       "Remote",
		ApplicationURL: "https://acme.test/apply",
		Age:            "3d",
		Category:       domain.CategoryHardware,
	}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse mismatch\n got: %+v\nwant: %+v", got, want)
	}
}

func TestParse_MissingApplyLinkKeepsPosting(t *testing.T) {
	in := doc(
		"## 🔧 Hardware Engineering Internship Roles",
		row("Acme", "Firmware Intern", "Remote", "", "3d"),
	)
	got := Parse(in)
	if len(got) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(got))
	}
	if got[0].ApplicationURL != "" {
		t.Fatalf("expected empty application url, got %q", got[0].ApplicationURL)
	}
	if got[0].Age != "3d" || got[0].Location != "Remote" {
		t.Fatalf("unexpected fields: %+v", got[0])
	}
}

func TestParse_HeaderRowExcluded(t *testing.T) {
	in := doc(
		"## 💻 Software Engineering Internship Roles",
		row("First", "SWE Intern", "NYC", "https://first.test", "1d"),
		"<tr>",
		"<th>Company</th>",
		"<th>Role</th>",
		"</tr>",
		row("Second", "Backend Intern", "SF", "https://second.test", "2d"),
	)
	got := Parse(in)
	if len(got) != 2 {
		t.Fatalf("expected 2 postings, got %d: %+v", len(got), got)
	}
	if got[0].Company != "First" || got[1].Company != "Second" {
		t.Fatalf("unexpected order: %q, %q", got[0].Company, got[1].Company)
	}
}

func TestParse_CategoryIsSticky(t *testing.T) {
	parts := []string{
		row("Before", "Intern", "Austin", "https://a.test", "1d"),
		"## 🤖 Data Science, AI & Machine Learning Internship Roles",
	}
	for i := 0; i < 5; i++ {
		parts = append(parts, row("DS Co", "ML Intern", "Boston", "https://ds.test", "4d"))
		parts = append(parts, "", "### a sub heading that is not a marker", "")
	}
	parts = append(parts, "## 📈 Quantitative Finance Internship Roles", row("Quant", "Trader", "Chicago", "https://q.test", "5d"))

	got := Parse(doc(parts...))
	if len(got) != 7 {
		t.Fatalf("expected 7 postings, got %d", len(got))
	}
	if got[0].Category != domain.CategoryUnknown {
		t.Fatalf("row before any marker: category = %q", got[0].Category)
	}
	for _, j := range got[1:6] {
		if j.Category != domain.CategoryDataAI {
			t.Fatalf("row %s: category = %q, want %q", j.ID, j.Category, domain.CategoryDataAI)
		}
	}
	if got[6].Category != domain.CategoryQuant {
		t.Fatalf("last row: category = %q", got[6].Category)
	}
}

func TestParse_MissingLocationDropsRow(t *testing.T) {
	in := doc(
		row("NoLoc", "Intern", "", "https://noloc.test", ""),
		row("HasLoc", "Intern", "Denver", "https://hasloc.test", ""),
	)
	got := Parse(in)
	if len(got) != 1 || got[0].Company != "HasLoc" {
		t.Fatalf("expected only HasLoc, got %+v", got)
	}
	if got[0].ID != "hasloc-intern-denver-0" {
		t.Fatalf("ordinal should count emitted postings only, got id %q", got[0].ID)
	}
}

func TestParse_IDsUniqueForDuplicates(t *testing.T) {
	r := row("Acme", "Intern", "Remote", "https://acme.test", "1d")
	got := Parse(doc(r, r, r))
	if len(got) != 3 {
		t.Fatalf("expected 3 postings, got %d", len(got))
	}
	seen := map[string]bool{}
	for _, j := range got {
		if seen[j.ID] {
			t.Fatalf("duplicate id %q", j.ID)
		}
		seen[j.ID] = true
	}
	if got[2].ID != "acme-intern-remote-2" {
		t.Fatalf("unexpected id %q", got[2].ID)
	}
}

func TestParse_Deterministic(t *testing.T) {
	in := doc(
		"## 📱 Product Management Internship Roles",
		row("Acme", "PM Intern", "Remote", "https://acme.test", "N/A"),
		row("Beta", "APM Intern", "Seattle, WA", "", "🔒"),
	)
	a := Parse(in)
	b := Parse(in)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("two runs differ:\n%+v\n%+v", a, b)
	}
}

func TestParse_AgeVocabulary(t *testing.T) {
	tests := []struct {
		age  string
		want string
	}{
		{"12d", "12d"},
		{"N/A", "N/A"},
		{"🔒", "🔒"},
		{"", "N/A"},
		{"soon", "N/A"},
	}
	for _, tt := range tests {
		got := Parse(row("Acme", "Intern", "Remote", "https://acme.test", tt.age))
		if len(got) != 1 {
			t.Fatalf("age %q: expected 1 posting, got %d", tt.age, len(got))
		}
		if got[0].Age != tt.want {
			t.Errorf("age %q: got %q, want %q", tt.age, got[0].Age, tt.want)
		}
	}
}

func TestParse_TrimsCellText(t *testing.T) {
	in := doc(
		"<tr>",
		"<td><strong>  Acme Robotics </strong></td>",
		"<td>\tControls Intern  </td>",
		"<td> Pittsburgh, PA </td>",
		"</tr>",
	)
	got := Parse(in)
	if len(got) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(got))
	}
	j := got[0]
	if j.Company != "Acme Robotics" || j.Role != "Controls Intern" || j.Location != "Pittsburgh, PA" {
		t.Fatalf("cells not trimmed: %+v", j)
	}
}

func TestParse_BlankCellsDropRow(t *testing.T) {
	in := doc(
		"<tr>",
		"<td><strong>Acme</strong></td>",
		"<td>   </td>",
		"<td>Remote</td>",
		"</tr>",
	)
	if got := Parse(in); len(got) != 0 {
		t.Fatalf("expected blank role to drop the row, got %+v", got)
	}
}

func TestParse_SingleLineAndIndentedRows(t *testing.T) {
	in := doc(
		`<tr><td><strong>One</strong></td><td>Intern</td><td>Remote</td><td>2d</td></tr>`,
		`    <tr>`,
		`<td><strong>Two</strong></td><td>Intern</td><td>NYC</td>`,
		`    </tr>`,
	)
	got := Parse(in)
	if len(got) != 2 {
		t.Fatalf("expected 2 postings, got %d: %+v", len(got), got)
	}
	if got[0].Age != "2d" || got[1].Company != "Two" {
		t.Fatalf("unexpected postings: %+v", got)
	}
}

func TestParse_UnterminatedRow(t *testing.T) {
	in := doc(
		row("Good", "Intern", "Remote", "https://good.test", "1d"),
		"<tr>",
		"<td><strong>Broken</strong></td>",
		"<td>Intern</td>",
	)
	got := Parse(in)
	if len(got) != 1 || got[0].Company != "Good" {
		t.Fatalf("expected only the well-formed row, got %+v", got)
	}
}

func TestParse_ApplyLinkCaseInsensitive(t *testing.T) {
	in := doc(
		"<tr>",
		"<td><strong>Acme</strong></td>",
		"<td>Intern</td>",
		"<td>Remote</td>",
		`<TD><DIV ALIGN="center"><A HREF="https://upper.test/apply"><IMG SRC="x.png" ALT="Apply"></A></DIV></TD>`,
		"</tr>",
	)
	got := Parse(in)
	if len(got) != 1 || got[0].ApplicationURL != "https://upper.test/apply" {
		t.Fatalf("unexpected postings: %+v", got)
	}
}

func TestParseIDCountsSurrogatePairs(t *testing.T) {
	in := "<tr><td><strong>Acme 🚀</strong></td><td>Intern</td><td>NYC</td></tr>"
	got := Parse(in)
	if len(got) != 1 || got[0].ID != "acme----intern-nyc-0" {
		t.Fatalf("unexpected postings: %+v", got)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme-Firmware Intern-Remote", "acme-firmware-intern-remote"},
		{"Jane Street-Quant Trader (Summer)-NYC, NY", "jane-street-quant-trader--summer--nyc--ny"},
		{"Café-Intern-Zürich", "caf--intern-z-rich"},
		{"ABC123", "abc123"},
		{"Acme 🚀-Intern-NYC", "acme----intern-nyc"},
		{"日本-Intern", "---intern"},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
