package carousel

import (
	"fmt"
	"image/color"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// DefaultColor replaces any color the normalizer cannot interpret.
const DefaultColor = "#ffffff"

var (
	hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	rgbColor = regexp.MustCompile(`^rgba?\(\s*\d{1,3}%?\s*[, ]\s*\d{1,3}%?\s*[, ]\s*\d{1,3}%?\s*(?:[,/]\s*(?:\d*\.?\d+%?)\s*)?\)$`)
	cssFunc  = regexp.MustCompile(`^([a-z]+)\((.*)\)$`)
	varFunc  = regexp.MustCompile(`^var\(\s*--[\w-]+\s*(?:,\s*(.+))?\)$`)
)

// ValidColor reports whether s is hex or rgb()/rgba(), the forms the
// rasterizer reads directly.
func ValidColor(s string) bool {
	return hexColor.MatchString(s) || rgbColor.MatchString(s)
}

// NormalizeColor converts a CSS color into hex or rgb() form. Hex and rgb
// input is returned unchanged. hsl, lab, lch, oklab, oklch, named colors and
// var() fallbacks are converted to 6-digit hex; anything else becomes
// DefaultColor.
func NormalizeColor(s string) string {
	s = strings.TrimSpace(s)
	if ValidColor(s) {
		return s
	}

	lower := strings.ToLower(s)
	if m := varFunc.FindStringSubmatch(lower); m != nil {
		if m[1] == "" {
			return DefaultColor
		}
		return NormalizeColor(m[1])
	}
	if c, ok := colornames.Map[lower]; ok {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}

	m := cssFunc.FindStringSubmatch(lower)
	if m == nil {
		return DefaultColor
	}
	args, ok := parseArgs(m[2])
	if !ok || len(args) < 3 {
		return DefaultColor
	}

	// lab and lch are read against D65 without chromatic adaptation.
	var c colorful.Color
	switch m[1] {
	case "hsl", "hsla":
		c = colorful.Hsl(args[0].hue(), args[1].unit(), args[2].unit())
	case "lab":
		c = colorful.Lab(args[0].scaled(100)/100, args[1].scaled(125)/100, args[2].scaled(125)/100)
	case "lch":
		c = colorful.Hcl(args[2].hue(), args[1].scaled(150)/100, args[0].scaled(100)/100)
	case "oklab":
		c = oklab(args[0].unit(), args[1].scaled(0.4), args[2].scaled(0.4))
	case "oklch":
		l, ch, h := args[0].unit(), args[1].scaled(0.4), args[2].hue()*math.Pi/180
		c = oklab(l, ch*math.Cos(h), ch*math.Sin(h))
	default:
		return DefaultColor
	}
	return c.Clamped().Hex()
}

// oklab converts Oklab coordinates through linear sRGB.
func oklab(l, a, b float64) colorful.Color {
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	l3, m3, s3 := l_*l_*l_, m_*m_*m_, s_*s_*s_
	return colorful.LinearRgb(
		+4.0767416621*l3-3.3077115913*m3+0.2309699292*s3,
		-1.2684380046*l3+2.6097574011*m3-0.3413193965*s3,
		-0.0041960863*l3-0.7034186147*m3+1.7076147010*s3,
	)
}

// cssArg is one numeric argument of a CSS color function.
type cssArg struct {
	v       float64
	percent bool
}

// unit maps a percentage or plain number to 0-1.
func (a cssArg) unit() float64 {
	if a.percent {
		return a.v / 100
	}
	if a.v > 1 {
		return a.v / 100
	}
	return a.v
}

// scaled maps a percentage onto [0, ref]; plain numbers pass through.
func (a cssArg) scaled(ref float64) float64 {
	if a.percent {
		return a.v / 100 * ref
	}
	return a.v
}

func (a cssArg) hue() float64 {
	return math.Mod(math.Mod(a.v, 360)+360, 360)
}

// parseArgs splits "a b c / alpha" or "a, b, c, alpha" into numbers,
// dropping any alpha component.
func parseArgs(s string) ([]cssArg, bool) {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })

	args := make([]cssArg, 0, len(fields))
	for _, f := range fields {
		var a cssArg
		switch {
		case strings.HasSuffix(f, "%"):
			a.percent = true
			f = strings.TrimSuffix(f, "%")
		case strings.HasSuffix(f, "deg"):
			f = strings.TrimSuffix(f, "deg")
		case f == "none":
			f = "0"
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		a.v = v
		args = append(args, a)
	}
	if len(args) > 3 {
		args = args[:3]
	}
	return args, true
}

// ToRGBA resolves a color string for drawing. Input is normalized first;
// unparseable values yield opaque white.
func ToRGBA(s string) color.NRGBA {
	s = NormalizeColor(s)
	if hexColor.MatchString(s) {
		return hexToRGBA(s)
	}

	inner := s[strings.IndexByte(s, '(')+1 : len(s)-1]
	args, ok := parseArgs(inner)
	if !ok || len(args) < 3 {
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	channel := func(a cssArg) uint8 {
		v := a.v
		if a.percent {
			v = v / 100 * 255
		}
		return uint8(math.Max(0, math.Min(255, math.Round(v))))
	}
	return color.NRGBA{R: channel(args[0]), G: channel(args[1]), B: channel(args[2]), A: 255}
}

func hexToRGBA(s string) color.NRGBA {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	n, _ := strconv.ParseUint(h[:6], 16, 32)
	c := color.NRGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 255}
	if len(h) == 8 {
		a, _ := strconv.ParseUint(h[6:], 16, 8)
		c.A = uint8(a)
	}
	return c
}
