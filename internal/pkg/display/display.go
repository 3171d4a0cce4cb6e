package display

import (
	"fmt"
	"strings"
	"sync"

	device "github.com/d2r2/go-hd44780"
	"github.com/d2r2/go-i2c"
	shittyLogger "github.com/d2r2/go-logger"
	"github.com/gethiox/stradella/internal/pkg/logger"
)

var log = logger.GetLogger()

var Blocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

var Heart, Note = '❤', '♪'

// screen is the part of hd44780 driver used for printing
type screen interface {
	SetPosition(line, pos int) error
	Write(buf []byte) (int, error)
	Clear() error
}

func getDisplay(addr uint8, bus int, lcdType device.LcdType) (*device.Lcd, *i2c.I2C, error) {
	shittyLogger.ChangePackageLogLevel("i2c", shittyLogger.InfoLevel)
	shittyLogger.ChangePackageLogLevel("hd44780", shittyLogger.InfoLevel)

	lcdRaw, err := i2c.NewI2C(addr, bus)
	if err != nil {
		return nil, nil, err
	}

	lcd, err := device.NewLcd(lcdRaw, lcdType)
	if err != nil {
		return nil, lcdRaw, err
	}

	return lcd, lcdRaw, nil
}

func loadCustomCharacters(lcd *device.Lcd, characters [][]byte) {
	for i, char := range characters {
		var location = uint8(i) & 0x7

		lcd.Command(device.CMD_CGRAM_Set | (location << 3))
		lcd.Write(char)
	}
}

var barChars = [][]byte{
	{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x1F}, // "▁"
	{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x1F, 0x1F}, // "▂"
	{0x00, 0x00, 0x00, 0x00, 0x00, 0x1F, 0x1F, 0x1F}, // "▃"
	{0x00, 0x00, 0x00, 0x00, 0x1F, 0x1F, 0x1F, 0x1F}, // "▄"
	{0x00, 0x00, 0x00, 0x1F, 0x1F, 0x1F, 0x1F, 0x1F}, // "▅"
	{0x00, 0x00, 0x1F, 0x1F, 0x1F, 0x1F, 0x1F, 0x1F}, // "▆"
	{0x00, 0x1F, 0x1F, 0x1F, 0x1F, 0x1F, 0x1F, 0x1F}, // "▇"
	{0x1F, 0x1F, 0x1F, 0x1F, 0x1F, 0x1F, 0x1F, 0x1F}, // "█"
}

var exitChars = [][]byte{
	{0x00, 0x00, 0x0A, 0x1F, 0x1F, 0x0E, 0x04, 0x00}, // "❤"
	{0x02, 0x03, 0x02, 0x02, 0x0E, 0x1E, 0x0C, 0x00}, // "♪"
}

var conversionMap = map[rune]byte{
	'▁': 0,
	'▂': 1,
	'▃': 2,
	'▄': 3,
	'▅': 4,
	'▆': 5,
	'▇': 6,
	'█': 7,
}

var exitConversionMap = map[rune]byte{
	'❤': 0,
	'♪': 1,
}

// replaceCharsForDisplay swaps known runes with CGRAM slots, remaining non-ascii runes become '?'.
func replaceCharsForDisplay(s string, conversion map[rune]byte) []byte {
	var b = make([]byte, 0, len(s))
	for _, r := range s {
		n, ok := conversion[r]
		switch {
		case ok:
			b = append(b, n)
		case r < 0x80:
			b = append(b, byte(r))
		default:
			b = append(b, '?')
		}
	}
	return b
}

// Fit pads or cuts s to exactly width runes.
func Fit(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}

type DisplayData struct {
	Lines   [4]string
	LastMsg bool // inform LCD about loading exit message to load differrent custom character set
}

func printLines(lcd screen, lines [4]string, height int, conversion map[rune]byte) {
	for i, s := range lines {
		if i >= height {
			break
		}
		lcd.SetPosition(i, 0)
		lcd.Write(replaceCharsForDisplay(s, conversion))
	}
}

func HandleDisplay(wg *sync.WaitGroup, cfg ScreenConfig, dd <-chan DisplayData) {
	defer wg.Done()
	lcd, bus, err := getDisplay(cfg.Address, cfg.Bus, cfg.LcdType)
	if err != nil {
		log.Info(fmt.Sprintf("cannot open display: %s", err), logger.Warning)
		if bus != nil {
			bus.Close()
		}
		for range dd {
		}
		return
	}

	_, height := cfg.Size()

	loadCustomCharacters(lcd, barChars)

	lcd.BacklightOn()
	lcd.Clear()

	for data := range dd {
		if !data.LastMsg {
			printLines(lcd, data.Lines, height, conversionMap)
			continue
		}
		loadCustomCharacters(lcd, exitChars)
		lcd.Clear()
		printLines(lcd, data.Lines, height, exitConversionMap)
	}

	bus.Close()
	log.Info("display closed", logger.Debug)
}
