package pdftext

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// maxRangeSpan bounds a single bfrange so a corrupt CMap cannot allocate an
// unbounded map.
const maxRangeSpan = 0xFFFF

// font holds what is needed to turn shown string bytes into text.
type font struct {
	// twoByte is set for composite (Type0) fonts, whose codes are two bytes.
	twoByte bool
	// toUnicode maps character codes to text, from the /ToUnicode CMap.
	toUnicode map[uint32]string
	// base is the simple-font base encoding; nil means WinAnsi.
	base *charmap.Charmap
	// differences maps single-byte codes to glyph names from /Differences.
	differences map[byte]string
}

// decode maps the bytes of one shown string to text. A nil font falls back to
// decodeString.
func (f *font) decode(b []byte) string {
	if f == nil {
		return decodeString(b)
	}
	var sb strings.Builder
	if f.twoByte {
		for i := 0; i+1 < len(b); i += 2 {
			code := uint32(b[i])<<8 | uint32(b[i+1])
			if s, ok := f.toUnicode[code]; ok {
				sb.WriteString(s)
			} else if f.toUnicode == nil && code >= 0x20 {
				// Without a CMap the best guess is that codes are Unicode.
				sb.WriteRune(rune(code))
			}
		}
		return sb.String()
	}
	for _, c := range b {
		if s, ok := f.toUnicode[uint32(c)]; ok {
			sb.WriteString(s)
			continue
		}
		if name, ok := f.differences[c]; ok {
			if s := glyphText(name); s != "" {
				sb.WriteString(s)
				continue
			}
		}
		sb.WriteString(decodeByte(f.base, c))
	}
	return sb.String()
}

func decodeByte(cm *charmap.Charmap, c byte) string {
	if cm == nil {
		cm = charmap.Windows1252
	}
	return string(cm.DecodeByte(c))
}

// baseEncoding maps a simple-font /Encoding or /BaseEncoding name.
func baseEncoding(name string) *charmap.Charmap {
	if name == "MacRomanEncoding" {
		return charmap.Macintosh
	}
	return nil
}

// glyphNames covers the Adobe glyph names that show up in /Differences
// arrays of ordinary text fonts. Single-letter names and uniXXXX/uXXXX names
// are resolved by glyphText without a table entry.
var glyphNames = map[string]string{
	"space": " ", "exclam": "!", "quotedbl": "\"", "numbersign": "#",
	"dollar": "$", "percent": "%", "ampersand": "&", "quotesingle": "'",
	"parenleft": "(", "parenright": ")", "asterisk": "*", "plus": "+",
	"comma": ",", "hyphen": "-", "period": ".", "slash": "/",
	"zero": "0", "one": "1", "two": "2", "three": "3", "four": "4",
	"five": "5", "six": "6", "seven": "7", "eight": "8", "nine": "9",
	"colon": ":", "semicolon": ";", "less": "<", "equal": "=",
	"greater": ">", "question": "?", "at": "@", "bracketleft": "[",
	"backslash": "\\", "bracketright": "]", "asciicircum": "^",
	"underscore": "_", "grave": "`", "braceleft": "{", "bar": "|",
	"braceright": "}", "asciitilde": "~",
	"quoteleft": "‘", "quoteright": "’", "quotedblleft": "“",
	"quotedblright": "”", "endash": "–", "emdash": "—",
	"bullet": "•", "ellipsis": "…", "section": "§",
	"paragraph": "¶", "degree": "°", "rupee": "₹",
	"fi": "fi", "fl": "fl", "ff": "ff", "ffi": "ffi", "ffl": "ffl",
	"nbspace": " ", "uni00A0": " ",
}

// glyphText resolves a glyph name to text, or "" when unknown.
func glyphText(name string) string {
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	if s, ok := glyphNames[name]; ok {
		return s
	}
	if len(name) == 1 && (name[0] >= 'A' && name[0] <= 'Z' || name[0] >= 'a' && name[0] <= 'z') {
		return name
	}
	if strings.HasPrefix(name, "uni") && len(name) >= 7 && (len(name)-3)%4 == 0 {
		var sb strings.Builder
		for i := 3; i < len(name); i += 4 {
			v, err := strconv.ParseUint(name[i:i+4], 16, 32)
			if err != nil {
				return ""
			}
			sb.WriteRune(rune(v))
		}
		return sb.String()
	}
	if strings.HasPrefix(name, "u") && len(name) >= 5 && len(name) <= 7 {
		if v, err := strconv.ParseUint(name[1:], 16, 32); err == nil && utf8.ValidRune(rune(v)) {
			return string(rune(v))
		}
	}
	return ""
}

// parseCMap reads the bfchar and bfrange sections of a ToUnicode CMap.
func parseCMap(data []byte) map[uint32]string {
	m := make(map[uint32]string)
	lx := &lexer{data: data}
	section := ""
	var pending [][]byte
	for {
		tok, ok := lx.next()
		if !ok {
			return m
		}
		switch {
		case tok.kind == tokOperator:
			section = tok.op
			pending = pending[:0]
		case tok.kind == tokString && section == "beginbfchar":
			pending = append(pending, tok.str)
			if len(pending) == 2 {
				m[codeOf(pending[0])] = utf16Text(pending[1])
				pending = pending[:0]
			}
		case tok.kind == tokString && section == "beginbfrange":
			pending = append(pending, tok.str)
			if len(pending) == 3 {
				addRange(m, codeOf(pending[0]), codeOf(pending[1]), utf16Text(pending[2]))
				pending = pending[:0]
			}
		case tok.kind == tokArrayStart && section == "beginbfrange" && len(pending) == 2:
			code, hi := codeOf(pending[0]), codeOf(pending[1])
			for {
				el, ok := lx.next()
				if !ok || el.kind == tokArrayEnd {
					break
				}
				if el.kind == tokString && code <= hi {
					m[code] = utf16Text(el.str)
					code++
				}
			}
			pending = pending[:0]
		}
	}
}

// addRange maps lo..hi to consecutive characters starting at dst. The last
// character of dst is the one incremented.
func addRange(m map[uint32]string, lo, hi uint32, dst string) {
	if hi < lo || hi-lo > maxRangeSpan || dst == "" {
		return
	}
	runes := []rune(dst)
	prefix, last := string(runes[:len(runes)-1]), runes[len(runes)-1]
	for c := lo; c <= hi; c++ {
		m[c] = prefix + string(last+rune(c-lo))
	}
}

func codeOf(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}

// utf16Text decodes a CMap destination, which is UTF-16BE without a BOM.
func utf16Text(b []byte) string {
	if len(b)%2 == 1 {
		return string(b)
	}
	s, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return string(s)
}
