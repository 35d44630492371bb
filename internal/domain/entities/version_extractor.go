package entities

import (
	"regexp"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

const packageRecordMarker = "[[package]]"

var (
	recordNamePattern    = regexp.MustCompile(`^name\s*=\s*"([^"]*)"`)
	recordVersionPattern = regexp.MustCompile(`^version\s*=\s*"([^"]*)"`)
)

// VersionChange describes how one package's pinned version moved within a diff.
// An empty OldVersion or NewVersion means the version is absent.
type VersionChange struct {
	Package    string
	OldVersion string
	NewVersion string
	Changed    bool
}

// String renders the change as "name old -> new".
func (it VersionChange) String() string {
	return it.Package + " " + it.OldVersion + " -> " + it.NewVersion
}

// ExtractVersionChange reports the version change of packageName inside the diff.
// Package names are matched case-insensitively. A package whose record does not
// carry exactly one removed and one added version line is reported as absent.
func ExtractVersionChange(result DiffResult, packageName string) VersionChange {
	absent := VersionChange{Package: packageName}
	if !result.Changed || packageName == "" {
		return absent
	}

	var found *VersionChange
	for _, record := range scanRecords(result.UnifiedText) {
		if !strings.EqualFold(record.oldName, packageName) {
			continue
		}
		change, ok := record.versionChange()
		if !ok {
			continue
		}
		change.Package = packageName
		if change.Changed {
			return change
		}
		if found == nil {
			found = &change
		}
	}

	if found != nil {
		return *found
	}
	return absent
}

// ScanVersionChanges lists every package whose version changed in the diff, in diff order.
func ScanVersionChanges(result DiffResult) []VersionChange {
	if !result.Changed {
		return nil
	}

	var changes []VersionChange
	seen := make(map[string]bool)
	for _, record := range scanRecords(result.UnifiedText) {
		change, ok := record.versionChange()
		if !ok || !change.Changed {
			continue
		}
		key := strings.ToLower(record.oldName)
		if seen[key] {
			continue
		}
		seen[key] = true
		changes = append(changes, change)
	}
	return changes
}

// scanRecords splits a unified diff into hunks and feeds every hunk through the
// record scanner. Text that does not parse as a unified diff is scanned as a
// single block of lines.
func scanRecords(text string) []lockRecord {
	scanner := &recordScanner{}

	hunks := parseHunks(text)
	if len(hunks) == 0 {
		for _, line := range strings.Split(text, "\n") {
			scanner.feed(line)
		}
		return scanner.finish()
	}

	for _, hunk := range hunks {
		// records do not continue across hunk boundaries
		scanner.leaveRecord()
		for _, line := range strings.Split(string(hunk.Body), "\n") {
			scanner.feed(line)
		}
	}
	return scanner.finish()
}

func parseHunks(text string) []*diff.Hunk {
	if strings.HasPrefix(text, fromFilePrefix) {
		files, err := diff.ParseMultiFileDiff([]byte(text))
		if err != nil {
			return nil
		}
		var hunks []*diff.Hunk
		for _, file := range files {
			hunks = append(hunks, file.Hunks...)
		}
		return hunks
	}

	if strings.HasPrefix(text, hunkPrefix) {
		hunks, err := diff.ParseHunks([]byte(text))
		if err != nil {
			return nil
		}
		return hunks
	}
	return nil
}

// lockRecord collects the version lines seen inside one package record.
// oldName and newName are the record's name on the removed and added side;
// they differ when the diff aligned one package's record with another's.
type lockRecord struct {
	oldName string
	newName string
	removed []string
	added   []string
}

func (it lockRecord) versionChange() (VersionChange, bool) {
	if it.oldName == "" || !strings.EqualFold(it.oldName, it.newName) {
		return VersionChange{}, false
	}
	if len(it.removed) != 1 || len(it.added) != 1 {
		return VersionChange{}, false
	}
	return VersionChange{
		Package:    it.oldName,
		OldVersion: it.removed[0],
		NewVersion: it.added[0],
		Changed:    it.removed[0] != it.added[0],
	}, true
}

type scannerState int

const (
	outsideRecord scannerState = iota
	insideRecord
)

// recordScanner is the parser state machine over diff lines.
// Outside a record every line is ignored until a record marker is seen; inside a
// record the first name declaration on each side names it, and a version line
// counts only toward the side its diff marker belongs to.
type recordScanner struct {
	state   scannerState
	current lockRecord
	records []lockRecord
}

func (it *recordScanner) feed(line string) {
	marker, content, ok := splitDiffLine(line)
	if !ok {
		return
	}

	if content == packageRecordMarker {
		it.leaveRecord()
		it.state = insideRecord
		it.current = lockRecord{}
		return
	}

	if it.state != insideRecord {
		return
	}

	if match := recordNamePattern.FindStringSubmatch(content); match != nil {
		if marker != '+' && it.current.oldName == "" {
			it.current.oldName = match[1]
		}
		if marker != '-' && it.current.newName == "" {
			it.current.newName = match[1]
		}
		return
	}

	match := recordVersionPattern.FindStringSubmatch(content)
	if match == nil {
		return
	}
	switch marker {
	case '-':
		if it.current.oldName != "" {
			it.current.removed = append(it.current.removed, match[1])
		}
	case '+':
		if it.current.newName != "" {
			it.current.added = append(it.current.added, match[1])
		}
	}
}

func (it *recordScanner) leaveRecord() {
	if it.state == insideRecord && (it.current.oldName != "" || it.current.newName != "") {
		it.records = append(it.records, it.current)
	}
	it.state = outsideRecord
	it.current = lockRecord{}
}

func (it *recordScanner) finish() []lockRecord {
	it.leaveRecord()
	return it.records
}

// splitDiffLine separates the diff marker from the line content.
// Lines without a marker are treated as context; "\ No newline" notes are skipped.
func splitDiffLine(line string) (byte, string, bool) {
	line = strings.TrimRight(line, "\r")
	if line == "" {
		return ' ', "", false
	}

	switch marker := line[0]; marker {
	case ' ', '+', '-':
		if strings.HasPrefix(line, fromFilePrefix) || strings.HasPrefix(line, toFilePrefix) {
			return ' ', "", false
		}
		return marker, strings.TrimSpace(line[1:]), true
	case '\\':
		return ' ', "", false
	default:
		if strings.HasPrefix(line, hunkPrefix) {
			return ' ', "", false
		}
		return ' ', strings.TrimSpace(line), true
	}
}
