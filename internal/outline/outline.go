// Package outline splits freeform CV text into labeled sections for document rendering.
// It is a best-effort presentation aid: it never fails and never validates the CV.
package outline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SectionType labels a CV section.
type SectionType string

const (
	Summary        SectionType = "summary"
	Experience     SectionType = "experience"
	Education      SectionType = "education"
	Skills         SectionType = "skills"
	Certifications SectionType = "certifications"
	Projects       SectionType = "projects"
	Languages      SectionType = "languages"
	Other          SectionType = "other"
)

// Structured reports whether sections of this type collect entries.
func (t SectionType) Structured() bool {
	switch t {
	case Summary, Skills, Languages:
		return false
	default:
		return true
	}
}

// Entry is one position, degree or project inside a structured section.
type Entry struct {
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle,omitempty"`
	Date        string   `json:"date,omitempty"`
	Description string   `json:"description,omitempty"`
	Bullets     []string `json:"bullets"`
}

// Section is a header and everything up to the next header.
type Section struct {
	Type       SectionType `json:"type"`
	Title      string      `json:"title"`
	Content    []string    `json:"content"`
	Entries    []Entry     `json:"entries,omitempty"`
	Structured bool        `json:"structured"`
}

// Document is an ordered list of sections.
type Document struct {
	Sections []Section `json:"sections"`
}

// Leading returns the untitled section holding text that appeared before the first header, or nil.
func (d *Document) Leading() *Section {
	if len(d.Sections) > 0 && d.Sections[0].Type == Other && d.Sections[0].Title == "" {
		return &d.Sections[0]
	}
	return nil
}

// Name returns the first line of the leading content, usually the candidate's name.
func (d *Document) Name() string {
	if lead := d.Leading(); lead != nil && len(lead.Content) > 0 {
		return lead.Content[0]
	}
	return ""
}

// Parser turns CV text into a Document.
type Parser interface {
	Parse(text string) *Document
}

// HeuristicParser recognizes English and Turkish section headers and entry lines by shape.
type HeuristicParser struct{}

// Parse runs HeuristicParser on text.
func Parse(text string) *Document {
	return HeuristicParser{}.Parse(text)
}

type headerPattern struct {
	typ     SectionType
	pattern *regexp.Regexp
}

// Keywords are written with a plain I; dotI widens each to also accept the Turkish dotted capital İ.
var headerPatterns = []headerPattern{
	{Summary, headerRegexp("ÖZET", "SUMMARY", "PROFIL", "PROFILE", "HAKKIMDA", "ABOUT ME", "ABOUT")},
	{Experience, headerRegexp("DENEYIM", "EXPERIENCE", "IŞ DENEYIMI", "WORK EXPERIENCE", "ÇALIŞMA GEÇMIŞI", "PROFESSIONAL EXPERIENCE")},
	{Education, headerRegexp("EĞITIM", "EDUCATION", "AKADEMIK", "ACADEMIC")},
	{Skills, headerRegexp("BECERILER", "SKILLS", "TEKNIK BECERILER", "TECHNICAL SKILLS", "YETKINLIKLER")},
	{Certifications, headerRegexp("SERTIFIKALAR", "CERTIFICATIONS", "SERTIFIKA", "CERTIFICATES")},
	{Projects, headerRegexp("PROJELER", "PROJECTS", "PROJE")},
	{Languages, headerRegexp("DILLER", "LANGUAGES", "YABANCI DIL")},
}

func headerRegexp(keywords ...string) *regexp.Regexp {
	alts := make([]string, len(keywords))
	for i, k := range keywords {
		alts[i] = dotI(regexp.QuoteMeta(k))
	}
	// Whole-line match: a header stands alone, optionally followed by ":" and inline content.
	return regexp.MustCompile(`^(?:` + strings.Join(alts, "|") + `)\s*(?::\s*(.*))?$`)
}

func dotI(s string) string {
	return strings.ReplaceAll(s, "I", "[Iİ]")
}

var (
	yearPattern = regexp.MustCompile(`\d{4}`)
	datePattern = regexp.MustCompile(`(?i)\d{4}\s*[-–]\s*(?:\d{4}|günümüz|devam|halen|present|current|now)|\d{4}`)
	pipeSplit   = regexp.MustCompile(`\s*\|\s*`)
)

// matchHeader returns the section type of a header line and any inline content after its colon.
func matchHeader(line string) (SectionType, string, bool) {
	upper := strings.ToUpper(line)
	for _, hp := range headerPatterns {
		if m := hp.pattern.FindStringSubmatchIndex(upper); m != nil {
			inline := ""
			if m[2] >= 0 {
				// Indices are into the upper-cased line; slice the original by rune offset.
				inline = sliceByUpperOffset(line, upper, m[2])
			}
			return hp.typ, strings.TrimSpace(inline), true
		}
	}
	return "", "", false
}

// sliceByUpperOffset returns the suffix of line corresponding to byte offset off in upper.
// ToUpper can change the byte length of individual runes, so offsets are mapped rune by rune.
func sliceByUpperOffset(line, upper string, off int) string {
	runes := utf8.RuneCountInString(upper[:off])
	for i := range line {
		if runes == 0 {
			return line[i:]
		}
		runes--
	}
	return ""
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•")
}

func stripBullet(line string) string {
	line = strings.TrimPrefix(line, "-")
	line = strings.TrimPrefix(line, "•")
	return strings.TrimSpace(line)
}

func looksLikeEntry(line string) bool {
	if isBullet(line) {
		return false
	}
	if strings.Contains(line, "|") || yearPattern.MatchString(line) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(line)
	return unicode.IsUpper(r)
}

func parseEntry(line string) Entry {
	date := datePattern.FindString(line)
	parts := pipeSplit.Split(line, -1)

	clean := func(s string) string {
		if date != "" {
			s = strings.Replace(s, date, "", 1)
		}
		return strings.Trim(strings.TrimSpace(s), ",-– ")
	}

	entry := Entry{Date: date, Bullets: []string{}}
	entry.Title = clean(parts[0])
	if entry.Title == "" {
		entry.Title = line
	}
	if len(parts) > 1 {
		entry.Subtitle = clean(parts[1])
	}
	return entry
}

// Parse implements Parser.
func (HeuristicParser) Parse(text string) *Document {
	doc := &Document{Sections: []Section{}}

	var (
		current *Section
		entry   *Entry
	)

	flush := func() {
		if current == nil {
			return
		}
		if entry != nil {
			current.Entries = append(current.Entries, *entry)
			entry = nil
		}
		doc.Sections = append(doc.Sections, *current)
		current = nil
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if typ, inline, ok := matchHeader(line); ok {
			flush()
			title := line
			if idx := strings.Index(title, ":"); idx >= 0 {
				title = title[:idx]
			}
			current = &Section{
				Type:       typ,
				Title:      strings.TrimSpace(title),
				Content:    []string{},
				Structured: typ.Structured(),
			}
			if inline != "" {
				current.Content = append(current.Content, inline)
			}
			continue
		}

		if current == nil {
			// Text before the first header: name and contact details.
			current = &Section{Type: Other, Content: []string{}, Structured: false}
		}

		switch {
		case current.Structured && looksLikeEntry(line):
			if entry != nil {
				current.Entries = append(current.Entries, *entry)
			}
			e := parseEntry(line)
			entry = &e
		case isBullet(line):
			if entry != nil {
				entry.Bullets = append(entry.Bullets, stripBullet(line))
			} else {
				current.Content = append(current.Content, stripBullet(line))
			}
		case entry != nil:
			if entry.Description == "" {
				entry.Description = line
			} else {
				entry.Description += " " + line
			}
		default:
			current.Content = append(current.Content, line)
		}
	}
	flush()

	return doc
}
