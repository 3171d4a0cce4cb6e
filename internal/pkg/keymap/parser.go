package keymap

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gethiox/stradella/internal/pkg/midi"
	"github.com/gethiox/stradella/internal/pkg/stradella"
)

// LineError describes a skipped keymap line.
type LineError struct {
	Line   int
	Text   string
	Reason string
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d \"%s\": %s", e.Line, e.Text, e.Reason)
}

// Load reads keymap file, see Parse.
func Load(path string, voicing stradella.Voicing) (*Mapper, []LineError, error) {
	f, err := os.Open(path)
	if err != nil {
		return Default(voicing), nil, fmt.Errorf("failed to open keymap file: %w", err)
	}
	defer f.Close()

	return Parse(f, voicing)
}

// Parse reads keymap text on top of the default layout. Malformed lines are skipped
// and returned as LineError list, returned Mapper is always usable.
// Assignments before the first section header belong to [bass].
//
//	[bass]
//	a=36        # key=note[,note...]
//	KEY_S=C2
//	[major]
//	q=48,52,55
func Parse(r io.Reader, voicing stradella.Voicing) (*Mapper, []LineError, error) {
	var (
		m        = Default(voicing)
		skipped  []LineError
		row      = stradella.Bass
		skipping bool
		lineNo   int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := stripComment(raw)
		if line == "" {
			continue
		}

		skip := func(reason string) {
			skipped = append(skipped, LineError{Line: lineNo, Text: strings.TrimSpace(raw), Reason: reason})
		}

		// "[" is a valid key, headers never contain assignment
		if strings.HasPrefix(line, "[") && !strings.Contains(line, "=") {
			if !strings.HasSuffix(line, "]") {
				skip("unterminated section header")
				continue
			}
			name := strings.TrimSpace(line[1 : len(line)-1])
			r, ok := stradella.RowFromSection(name)
			if !ok {
				skip(fmt.Sprintf("unknown section \"%s\", its assignments are ignored", name))
				skipping = true
				continue
			}
			row, skipping = r, false
			continue
		}

		if skipping {
			continue
		}

		entry, reason := parseAssignment(line, row, voicing.Counterbass)
		if reason != "" {
			skip(reason)
			continue
		}
		m.Set(entry)
	}

	if err := scanner.Err(); err != nil {
		return m, skipped, fmt.Errorf("failed to read keymap: %w", err)
	}
	return m, skipped, nil
}

// stripComment removes "#" comment, sharp sign inside a note name ("F#3") is kept.
func stripComment(line string) string {
	for i, r := range line {
		if r != '#' {
			continue
		}
		if i == 0 || line[i-1] == ' ' || line[i-1] == '\t' {
			line = line[:i]
			break
		}
	}
	return strings.TrimSpace(line)
}

func parseAssignment(line string, row stradella.Row, interval stradella.CounterbassInterval) (Entry, string) {
	key, value, found := strings.Cut(line, "=")
	if !found {
		return Entry{}, "missing \"=\""
	}

	key, value = strings.TrimSpace(key), strings.TrimSpace(value)
	code, err := KeyCode(key)
	if err != nil {
		return Entry{}, err.Error()
	}

	var notes []int
	for _, token := range strings.Split(value, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		note, err := parseNote(token)
		if err != nil {
			return Entry{}, err.Error()
		}
		if note < 0 || note > 127 {
			continue
		}
		notes = append(notes, note)
	}
	if len(notes) == 0 {
		return Entry{}, "no valid notes"
	}

	root := notes[0]
	switch {
	case row == stradella.Counterbass:
		root -= int(interval)
	case row.IsChord():
		root -= 12
	}

	column, ok := stradella.ColumnForRoot(root)
	if !ok {
		return Entry{}, fmt.Sprintf("root %s does not match any column", midi.NoteName(root))
	}

	return Entry{
		Code:  code,
		Cell:  stradella.Cell{Row: row, Column: column},
		Notes: notes,
	}, ""
}

func parseNote(token string) (int, error) {
	if n, err := strconv.Atoi(token); err == nil {
		return n, nil
	}
	n, err := midi.StringToNote(token)
	if err != nil {
		return 0, fmt.Errorf("invalid note \"%s\"", token)
	}
	return n, nil
}
