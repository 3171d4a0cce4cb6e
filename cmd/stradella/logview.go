package main

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gethiox/stradella/internal/pkg/logger"
	"github.com/logrusorgru/aurora"
)

type TimeNanosecond time.Time

func (j *TimeNanosecond) UnmarshalJSON(b []byte) error {
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return err
	}
	*j = TimeNanosecond(time.Unix(0, v))
	return nil
}

type Entry struct {
	Ts     TimeNanosecond `json:"ts"`
	Caller string         `json:"caller"`
	Msg    string         `json:"msg"`
	Level  int            `json:"level"`

	Key          string `json:"key"`
	Velocity     *int   `json:"velocity"`
	Session      string `json:"session"`
	Path         string `json:"path"`
	Error        string `json:"error"`
	Device       string `json:"device"`
	DevicePhys   string `json:"device_phys"`
	HandlerEvent string `json:"handler_event"`
	HandlerName  string `json:"handler_name"`
}

func unpack(data []byte) (Entry, error) {
	var v Entry
	err := json.Unmarshal(data, &v)
	return v, err
}

func gray(v uint8) aurora.Color {
	if v > 23 {
		v = 23
	}
	return aurora.Color(232+v) << 16
}

// r, g, b 0<=v<=5
func color(r, g, b uint8) aurora.Color {
	return aurora.Color(16+36*r+6*g+b) << 16
}

func terminator(r rune) bool {
	return r >= 0x40 && r <= 0x7e
}

// returns color for string, will return the same color for the same string
func colorForString(au aurora.Aurora, s string) aurora.Value {
	h := fnv.New32a()
	h.Write([]byte(s))
	sum := h.Sum32()

	r, g, b := uint8(sum)&0b00000111, uint8(sum>>8)&0b00000111, uint8(sum>>16)&0b00000111
	if r > 5 {
		r = 5
	}
	if g > 5 {
		g = 5
	}
	if b > 5 {
		b = 5
	}

	// avoid dark colors
	if r+g+b < 3 {
		r += 1
		g += 1
		b += 1
	}

	return au.Index(16+36*r+6*g+b, s)
}

// rawStringLen returns a len of string ignoring included escape sequences
func rawStringLen(s string) int {
	var sequence bool
	var escLens []int
	var escLen int

	for i, r := range s {
		if !sequence {
			if r == '\033' {
				if i >= len(s)-1 { // esc seems to be last character
					continue
				}
				if s[i+1] == '[' {
					sequence = true
					escLen += 1
					continue
				}
			}
		} else {
			if r == '[' && s[i-1] == '\033' {
				escLen += 1
				continue
			}
			escLen += 1
			if terminator(r) {
				sequence = false
				escLens = append(escLens, escLen)
				escLen = 0
			}
		}
	}
	var sum int
	for _, x := range escLens {
		sum += x
	}
	return len(s) - sum
}

func levelColor(level int) aurora.Color {
	switch level {
	case logger.ErrorLvl:
		return color(5, 1, 1)
	case logger.WarningLvl:
		return color(5, 5, 1)
	case logger.InfoLvl:
		return gray(20)
	case logger.ActionLvl:
		return color(5, 3, 1)
	case logger.KeysLvl:
		return gray(16)
	case logger.ExpressionLvl:
		return color(1, 4, 4)
	default:
		return gray(9)
	}
}

func (e Entry) fields(au aurora.Aurora, debug bool) string {
	var fields []string
	add := func(name, value string) {
		if value == "" {
			return
		}
		if name == "" {
			fields = append(fields, fmt.Sprintf("[%s]", colorForString(au, value)))
			return
		}
		fields = append(fields, fmt.Sprintf("[%s=%s]", name, colorForString(au, value)))
	}

	add("key", e.Key)
	if e.Velocity != nil {
		add("vel", strconv.Itoa(*e.Velocity))
	}
	add("session", e.Session)
	add("path", e.Path)
	add("error", e.Error)
	add("", e.HandlerEvent)
	add("handler", e.HandlerName)
	add("dev", e.Device)
	add("phys", e.DevicePhys)

	if debug && e.Caller != "" {
		x := strings.SplitN(e.Caller, ":", 2)
		if len(x) == 2 {
			fields = append(fields, fmt.Sprintf("(%s:%s)", colorForString(au, x[0]), x[1]))
		}
	}
	return strings.Join(fields, " ")
}

// prepareString formats log entry for a terminal, width -1 means no limit.
// Entries above logLevel are filtered out with an empty string.
func prepareString(msg Entry, au aurora.Aurora, width, logLevel int) string {
	if msg.Level > logLevel {
		return ""
	}

	msgColor := levelColor(msg.Level)

	timestamp := fmt.Sprintf(
		"[%s]",
		au.Reset(time.Time(msg.Ts).Format("15:04:05.000")).Colorize(color(1, 1, 5)).String(),
	)

	fields := msg.fields(au, logLevel >= logger.DebugLvl)

	if width < 0 {
		m := au.Reset(msg.Msg).Colorize(msgColor).String()
		return strings.TrimRight(fmt.Sprintf("%s %s %s", timestamp, m, fields), " ")
	}

	fieldsLen := rawStringLen(fields)
	timeLen := rawStringLen(timestamp)
	msgLen := len(msg.Msg)

	var m string
	freeSpace := width - (timeLen + 1 + msgLen + 1 + fieldsLen)
	if freeSpace < 0 {
		limit := (width - (fieldsLen + 1 + timeLen + 1)) - 3
		if limit < 20 {
			m = au.Reset(msg.Msg).Colorize(msgColor).String()
			fields = au.Gray(12, "(fields hidden)").String()
			freeSpace = width - (timeLen + 1 + msgLen + 1 + rawStringLen(fields))
			if freeSpace < 0 {
				freeSpace = 0
			}
		} else {
			m = au.Reset(msg.Msg[:limit] + "...").Colorize(msgColor).String()
			freeSpace = 0
		}
	} else {
		m = au.Reset(msg.Msg).Colorize(msgColor).String()
	}

	return fmt.Sprintf("%s %s%s %s", timestamp, m, strings.Repeat(" ", freeSpace), fields)
}

// logBuffer keeps the last messages for the log view.
type logBuffer struct {
	mu       sync.Mutex
	messages [][]byte
	next     int
	full     bool
}

func newLogBuffer(size int) *logBuffer {
	if size < 1 {
		size = 1
	}
	return &logBuffer{messages: make([][]byte, size)}
}

func (b *logBuffer) WriteMessage(msg []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages[b.next] = msg
	b.next++
	if b.next == len(b.messages) {
		b.next = 0
		b.full = true
	}
}

// ReadLastMessages returns up to n newest messages, the oldest first.
func (b *logBuffer) ReadLastMessages(n int) [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := b.next
	if b.full {
		count = len(b.messages)
	}
	if n > count {
		n = count
	}
	if n < 0 {
		n = 0
	}

	out := make([][]byte, 0, n)
	for i := n; i > 0; i-- {
		idx := (b.next - i + len(b.messages)) % len(b.messages)
		out = append(out, b.messages[idx])
	}
	return out
}
