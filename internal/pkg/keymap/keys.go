package keymap

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/holoplot/go-evdev"
)

func init() {
	for r, code := range charToCode {
		codeToChar[code] = r
	}
	for name, code := range evdev.KEYFromString {
		// aliases share codes, keep the lexically first name for stable output
		if existing, ok := codeToName[code]; !ok || name < existing {
			codeToName[code] = name
		}
	}
	for name, code := range buttons {
		codeToName[code] = name
	}
}

// charToCode covers printable characters of a US keyboard layout
var charToCode = map[rune]evdev.EvCode{
	'a': evdev.KEY_A, 'b': evdev.KEY_B, 'c': evdev.KEY_C, 'd': evdev.KEY_D, 'e': evdev.KEY_E,
	'f': evdev.KEY_F, 'g': evdev.KEY_G, 'h': evdev.KEY_H, 'i': evdev.KEY_I, 'j': evdev.KEY_J,
	'k': evdev.KEY_K, 'l': evdev.KEY_L, 'm': evdev.KEY_M, 'n': evdev.KEY_N, 'o': evdev.KEY_O,
	'p': evdev.KEY_P, 'q': evdev.KEY_Q, 'r': evdev.KEY_R, 's': evdev.KEY_S, 't': evdev.KEY_T,
	'u': evdev.KEY_U, 'v': evdev.KEY_V, 'w': evdev.KEY_W, 'x': evdev.KEY_X, 'y': evdev.KEY_Y,
	'z': evdev.KEY_Z,

	'1': evdev.KEY_1, '2': evdev.KEY_2, '3': evdev.KEY_3, '4': evdev.KEY_4, '5': evdev.KEY_5,
	'6': evdev.KEY_6, '7': evdev.KEY_7, '8': evdev.KEY_8, '9': evdev.KEY_9, '0': evdev.KEY_0,

	',':  evdev.KEY_COMMA,
	'.':  evdev.KEY_DOT,
	'/':  evdev.KEY_SLASH,
	';':  evdev.KEY_SEMICOLON,
	'\'': evdev.KEY_APOSTROPHE,
	'[':  evdev.KEY_LEFTBRACE,
	']':  evdev.KEY_RIGHTBRACE,
	'-':  evdev.KEY_MINUS,
	'=':  evdev.KEY_EQUAL,
	'`':  evdev.KEY_GRAVE,
	'\\': evdev.KEY_BACKSLASH,
	' ':  evdev.KEY_SPACE,
}

// buttons are pointer buttons usable as modifiers
var buttons = map[string]evdev.EvCode{
	"BTN_LEFT":   evdev.BTN_LEFT,
	"BTN_RIGHT":  evdev.BTN_RIGHT,
	"BTN_MIDDLE": evdev.BTN_MIDDLE,
	"BTN_SIDE":   evdev.BTN_SIDE,
	"BTN_EXTRA":  evdev.BTN_EXTRA,
}

var codeToChar = map[evdev.EvCode]rune{}   // filled up with init()
var codeToName = map[evdev.EvCode]string{} // filled up with init()

// KeyCode converts key token into evdev code. Supported forms:
// single printable character ("a", ";"), evdev name ("KEY_A", "BTN_LEFT")
// and hexadecimal code prefixed with "x" ("x1e").
func KeyCode(token string) (evdev.EvCode, error) {
	if token == "" {
		return 0, fmt.Errorf("empty key")
	}

	if utf8.RuneCountInString(token) == 1 {
		r, _ := utf8.DecodeRuneInString(token)
		code, ok := charToCode[unicode.ToLower(r)]
		if !ok {
			return 0, fmt.Errorf("unsupported key character \"%s\"", token)
		}
		return code, nil
	}

	if strings.HasPrefix(token, "x") {
		trimmed := strings.TrimPrefix(token, "x")
		code, err := strconv.ParseUint(trimmed, 16, 16)
		if err != nil {
			return 0, fmt.Errorf("convertion hex value \"%s\" failed: %w", trimmed, err)
		}
		return evdev.EvCode(code), nil
	}

	upper := strings.ToUpper(token)
	if code, ok := buttons[upper]; ok {
		return code, nil
	}
	if code, ok := evdev.KEYFromString[upper]; ok {
		return code, nil
	}
	return 0, fmt.Errorf("EvCode name \"%s\" not found / not supported", token)
}

// KeyName returns the shortest readable form of the code, a character when possible.
func KeyName(code evdev.EvCode) string {
	if r, ok := codeToChar[code]; ok {
		if r == ' ' {
			return "space"
		}
		return string(r)
	}
	if name, ok := codeToName[code]; ok {
		return name
	}
	return fmt.Sprintf("x%x", uint16(code))
}
