package pdftext

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// spaceAdjust is the TJ displacement (thousandths of text space) at or below
// which a gap between two string fragments is treated as a word break.
const spaceAdjust = -250

// baselineEpsilon tolerates rounding noise when comparing text baselines.
const baselineEpsilon = 0.5

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokString
	tokName
	tokArrayStart
	tokArrayEnd
	tokDictStart
	tokDictEnd
	tokOperator
)

type token struct {
	kind tokenKind
	num  float64
	str  []byte
	op   string
}

// textState follows the text cursor just far enough to decide where lines
// break: only the vertical position and leading matter. The current font is
// saved and restored with the graphics state.
type textState struct {
	x, y    float64
	leading float64
	font    *font
	saved   []*font

	out      strings.Builder
	started  bool
	lastY    float64
	gapAfter bool
}

func (s *textState) moveTo(x, y float64) {
	if x != s.x || y != s.y {
		s.gapAfter = true
	}
	s.x, s.y = x, y
}

func (s *textState) show(b []byte) {
	text := s.font.decode(b)
	if text == "" {
		return
	}
	if s.started {
		switch {
		case math.Abs(s.y-s.lastY) > baselineEpsilon:
			s.out.WriteByte('\n')
		case s.gapAfter && !endsWithSpace(&s.out) && !strings.HasPrefix(text, " "):
			s.out.WriteByte(' ')
		}
	}
	s.out.WriteString(text)
	s.started = true
	s.lastY = s.y
	s.gapAfter = false
}

func (s *textState) space() {
	if s.started && !endsWithSpace(&s.out) {
		s.out.WriteByte(' ')
	}
}

func (s *textState) push() { s.saved = append(s.saved, s.font) }

func (s *textState) pop() {
	if n := len(s.saved); n > 0 {
		s.font = s.saved[n-1]
		s.saved = s.saved[:n-1]
	}
}

func endsWithSpace(b *strings.Builder) bool {
	str := b.String()
	return str != "" && (str[len(str)-1] == ' ' || str[len(str)-1] == '\n')
}

// FromContentStream returns the text shown by a decoded page content stream,
// one output line per text baseline. Without resources every string is read
// as WinAnsi (or UTF-16BE when it carries a byte order mark).
func FromContentStream(content []byte) string {
	return textOf(content, nil)
}

// textOf is FromContentStream with the page's fonts and forms resolved.
func textOf(content []byte, res *resources) string {
	st := &textState{}
	runContent(st, content, res, 0)
	return strings.TrimRight(st.out.String(), " \n")
}

// runContent interprets one content stream. Form XObjects drawn with Do are run
// recursively against the same text state.
func runContent(st *textState, content []byte, res *resources, depth int) {
	lx := &lexer{data: content}
	var operands []token
	var array []token
	inArray := false

	for {
		tok, ok := lx.next()
		if !ok {
			break
		}
		switch tok.kind {
		case tokArrayStart:
			inArray = true
			array = array[:0]
			continue
		case tokArrayEnd:
			inArray = false
			continue
		case tokOperator:
		default:
			if inArray {
				array = append(array, tok)
			} else {
				operands = append(operands, tok)
			}
			continue
		}

		switch tok.op {
		case "q":
			st.push()
		case "Q":
			st.pop()
		case "BT":
			st.moveTo(0, 0)
		case "Tf":
			if name, ok := lastName(operands); ok {
				st.font = res.font(name)
			}
		case "Td":
			if x, y, ok := lastTwoNumbers(operands); ok {
				st.moveTo(st.x+x, st.y+y)
			}
		case "TD":
			if x, y, ok := lastTwoNumbers(operands); ok {
				st.leading = -y
				st.moveTo(st.x+x, st.y+y)
			}
		case "Tm":
			if x, y, ok := lastTwoNumbers(operands); ok {
				st.moveTo(x, y)
			}
		case "TL":
			if n := numbers(operands); len(n) > 0 {
				st.leading = n[len(n)-1]
			}
		case "T*":
			st.moveTo(0, st.y-nonZero(st.leading))
		case "Tj":
			if s, ok := lastString(operands); ok {
				st.show(s)
			}
		case "'", "\"":
			st.moveTo(0, st.y-nonZero(st.leading))
			if s, ok := lastString(operands); ok {
				st.show(s)
			}
		case "TJ":
			for _, el := range array {
				switch el.kind {
				case tokString:
					st.show(el.str)
				case tokNumber:
					if el.num <= spaceAdjust {
						st.space()
					}
				}
			}
			array = array[:0]
		case "Do":
			name, ok := lastName(operands)
			if !ok || depth >= maxFormDepth {
				break
			}
			if f := res.form(name); f != nil {
				formRes := f.res
				if formRes == nil {
					formRes = res
				}
				st.push()
				runContent(st, f.content, formRes, depth+1)
				st.pop()
			}
		case "BI":
			lx.skipInlineImage()
		}
		operands = operands[:0]
	}
}

// nonZero keeps T* and ' from staying on the same baseline when the stream
// never set a leading.
func nonZero(leading float64) float64 {
	if leading == 0 {
		return 1
	}
	return leading
}

func numbers(ops []token) []float64 {
	var out []float64
	for _, t := range ops {
		if t.kind == tokNumber {
			out = append(out, t.num)
		}
	}
	return out
}

func lastTwoNumbers(ops []token) (float64, float64, bool) {
	n := numbers(ops)
	if len(n) < 2 {
		return 0, 0, false
	}
	return n[len(n)-2], n[len(n)-1], true
}

func lastName(ops []token) (string, bool) {
	for i := len(ops) - 1; i >= 0; i-- {
		if ops[i].kind == tokName {
			return ops[i].op, true
		}
	}
	return "", false
}

func lastString(ops []token) ([]byte, bool) {
	for i := len(ops) - 1; i >= 0; i-- {
		if ops[i].kind == tokString {
			return ops[i].str, true
		}
	}
	return nil, false
}

// decodeString maps PDF string bytes to text. Strings with a UTF-16BE byte
// order mark are decoded as such; everything else is read as WinAnsi, the
// encoding of the standard 14 fonts.
func decodeString(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		if s, err := dec.Bytes(b); err == nil {
			return string(s)
		}
	}
	s, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

type lexer struct {
	data []byte
	pos  int
}

func isWhite(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == 0
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (l *lexer) next() (token, bool) {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case isWhite(c):
			l.pos++
		case c == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		case c == '(':
			l.pos++
			return token{kind: tokString, str: l.literal()}, true
		case c == '<':
			if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
				l.pos += 2
				return token{kind: tokDictStart}, true
			}
			l.pos++
			return token{kind: tokString, str: l.hex()}, true
		case c == '>':
			l.pos++
			if l.pos < len(l.data) && l.data[l.pos] == '>' {
				l.pos++
			}
			return token{kind: tokDictEnd}, true
		case c == '[':
			l.pos++
			return token{kind: tokArrayStart}, true
		case c == ']':
			l.pos++
			return token{kind: tokArrayEnd}, true
		case c == '/':
			l.pos++
			return token{kind: tokName, op: l.word()}, true
		case c == '{' || c == '}' || c == ')':
			l.pos++
		default:
			w := l.word()
			if w == "" {
				l.pos++
				continue
			}
			if f, err := strconv.ParseFloat(w, 64); err == nil {
				return token{kind: tokNumber, num: f}, true
			}
			return token{kind: tokOperator, op: w}, true
		}
	}
	return token{}, false
}

func (l *lexer) word() string {
	start := l.pos
	for l.pos < len(l.data) && !isWhite(l.data[l.pos]) && !isDelim(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

// literal reads a (string) body; the opening paren is already consumed.
func (l *lexer) literal() []byte {
	var out []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				return out
			}
			out = append(out, c)
		case '\\':
			if l.pos >= len(l.data) {
				return out
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				// line continuation
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && l.pos < len(l.data); i++ {
						d := l.data[l.pos]
						if d < '0' || d > '7' {
							break
						}
						v = v*8 + int(d-'0')
						l.pos++
					}
					out = append(out, byte(v))
				} else {
					out = append(out, e)
				}
			}
		default:
			out = append(out, c)
		}
	}
	return out
}

// hex reads a <hex string>; the opening bracket is already consumed.
func (l *lexer) hex() []byte {
	var digits []byte
	for l.pos < len(l.data) && l.data[l.pos] != '>' {
		c := l.data[l.pos]
		if hexVal(c) >= 0 {
			digits = append(digits, c)
		}
		l.pos++
	}
	l.pos++ // '>'
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, 0, len(digits)/2)
	for i := 0; i < len(digits); i += 2 {
		out = append(out, byte(hexVal(digits[i])<<4|hexVal(digits[i+1])))
	}
	return out
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

// skipInlineImage jumps past the binary payload of BI ... ID <data> EI.
func (l *lexer) skipInlineImage() {
	for {
		tok, ok := l.next()
		if !ok {
			return
		}
		if tok.kind == tokOperator && tok.op == "ID" {
			break
		}
	}
	for l.pos+2 <= len(l.data) {
		if l.data[l.pos] == 'E' && l.data[l.pos+1] == 'I' &&
			(l.pos == 0 || isWhite(l.data[l.pos-1])) &&
			(l.pos+2 == len(l.data) || isWhite(l.data[l.pos+2])) {
			l.pos += 2
			return
		}
		l.pos++
	}
	l.pos = len(l.data)
}
