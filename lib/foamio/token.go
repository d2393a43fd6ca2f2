package foamio

/* token.go contains a small tokenizer for OpenFOAM's dictionary syntax. It
only knows as much as is needed to read headers, lists, and the handful of
entries foamtonumpy cares about. */

import (
	"bytes"
	"fmt"
	"strconv"
)

type tokenKind int

const (
	wordToken tokenKind = iota
	numberToken
	stringToken
	punctToken
	eofToken
)

func (k tokenKind) String() string {
	switch k {
	case wordToken:
		return "word"
	case numberToken:
		return "number"
	case stringToken:
		return "string"
	case punctToken:
		return "punctuation"
	case eofToken:
		return "end of file"
	}
	return "unknown"
}

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

// is returns true if tok is the punctuation character c.
func (tok token) is(c byte) bool {
	return tok.kind == punctToken && tok.text[0] == c
}

func (tok token) String() string {
	if tok.kind == eofToken {
		return "end of file"
	}
	return fmt.Sprintf("%s '%s'", tok.kind, tok.text)
}

// tokenizer splits the text of a single file into tokens. Binary payloads
// can be pulled out of the stream with raw().
type tokenizer struct {
	name string
	b    []byte
	pos  int
}

func newTokenizer(name string, b []byte) *tokenizer {
	return &tokenizer{name: name, b: b}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' ||
		c == '\v'
}

func isPunct(c byte) bool {
	switch c {
	case '(', ')', '{', '}', '[', ']', ';':
		return true
	}
	return false
}

// skipSpace moves past whitespace and comments.
func (t *tokenizer) skipSpace() error {
	for t.pos < len(t.b) {
		c := t.b[t.pos]
		switch {
		case isSpace(c):
			t.pos++
		case c == '/' && t.pos+1 < len(t.b) && t.b[t.pos+1] == '/':
			end := bytes.IndexByte(t.b[t.pos:], '\n')
			if end == -1 {
				t.pos = len(t.b)
			} else {
				t.pos += end + 1
			}
		case c == '/' && t.pos+1 < len(t.b) && t.b[t.pos+1] == '*':
			end := bytes.Index(t.b[t.pos+2:], []byte("*/"))
			if end == -1 {
				return t.errorf(t.pos, "the comment starting here is never "+
					"closed")
			}
			t.pos += end + 4
		default:
			return nil
		}
	}
	return nil
}

// next returns the next token in the stream.
func (t *tokenizer) next() (token, error) {
	if err := t.skipSpace(); err != nil {
		return token{}, err
	}
	if t.pos >= len(t.b) {
		return token{kind: eofToken, pos: t.pos}, nil
	}

	start := t.pos
	c := t.b[start]

	if isPunct(c) {
		t.pos++
		return token{kind: punctToken, text: string(c), pos: start}, nil
	}

	if c == '"' {
		for i := start + 1; i < len(t.b); i++ {
			if t.b[i] == '\\' {
				i++
				continue
			}
			if t.b[i] == '"' {
				t.pos = i + 1
				return token{
					kind: stringToken, text: string(t.b[start+1 : i]),
					pos: start,
				}, nil
			}
		}
		return token{}, t.errorf(start, "the string starting here is never "+
			"closed")
	}

	end := start
	for end < len(t.b) && !isSpace(t.b[end]) && !isPunct(t.b[end]) &&
		t.b[end] != '"' {
		end++
	}
	t.pos = end

	text := string(t.b[start:end])
	if !startsNumber(text) {
		return token{kind: wordToken, text: text, pos: start}, nil
	}
	if x, err := strconv.ParseFloat(text, 64); err == nil {
		return token{kind: numberToken, text: text, num: x, pos: start}, nil
	}
	return token{kind: wordToken, text: text, pos: start}, nil
}

// peek returns the next token without consuming it.
func (t *tokenizer) peek() (token, error) {
	pos := t.pos
	tok, err := t.next()
	t.pos = pos
	return tok, err
}

// expect consumes the next token and returns an error if it isn't the
// punctuation character c.
func (t *tokenizer) expect(c byte) error {
	tok, err := t.next()
	if err != nil {
		return err
	}
	if !tok.is(c) {
		return t.errorf(tok.pos, "expected '%c', but found %s", c, tok)
	}
	return nil
}

// word consumes the next token and returns its text. It returns an error if
// the token isn't a word.
func (t *tokenizer) word() (string, error) {
	tok, err := t.next()
	if err != nil {
		return "", err
	}
	if tok.kind != wordToken {
		return "", t.errorf(tok.pos, "expected a keyword, but found %s", tok)
	}
	return tok.text, nil
}

// number consumes the next token and returns its value.
func (t *tokenizer) number() (float64, error) {
	tok, err := t.next()
	if err != nil {
		return 0, err
	}
	if tok.kind != numberToken {
		return 0, t.errorf(tok.pos, "expected a number, but found %s", tok)
	}
	return tok.num, nil
}

// label consumes the next token and returns it as a non-negative integer.
func (t *tokenizer) label() (int, error) {
	tok, err := t.next()
	if err != nil {
		return 0, err
	}
	if tok.kind != numberToken {
		return 0, t.errorf(tok.pos, "expected an integer, but found %s", tok)
	}
	n, err := strconv.Atoi(tok.text)
	if err != nil || n < 0 {
		return 0, t.errorf(tok.pos, "expected a non-negative integer, but "+
			"found '%s'", tok.text)
	}
	return n, nil
}

// raw returns the next n bytes of the stream without tokenizing them. This is
// how binary list payloads are read.
func (t *tokenizer) raw(n int) ([]byte, error) {
	if n < 0 || n > len(t.b)-t.pos {
		return nil, t.errorf(t.pos, "expected %d bytes of binary data, but "+
			"only %d bytes remain in the file", n, len(t.b)-t.pos)
	}
	out := t.b[t.pos : t.pos+n]
	t.pos += n
	return out, nil
}

// skipLine moves past the end of the current line. Directives like
// #include "file" and #inputMode merge are line-oriented and have no ';'.
func (t *tokenizer) skipLine() {
	end := bytes.IndexByte(t.b[t.pos:], '\n')
	if end == -1 {
		t.pos = len(t.b)
	} else {
		t.pos += end + 1
	}
}

// remaining returns the number of untokenized bytes left.
func (t *tokenizer) remaining() int { return len(t.b) - t.pos }

// lineNumber returns the 1-indexed line containing byte pos.
func (t *tokenizer) lineNumber(pos int) int {
	if pos > len(t.b) {
		pos = len(t.b)
	}
	return 1 + bytes.Count(t.b[:pos], []byte{'\n'})
}

func (t *tokenizer) errorf(pos int, format string, a ...interface{}) error {
	return fmt.Errorf("%s, line %d: %s", t.name, t.lineNumber(pos),
		fmt.Sprintf(format, a...))
}

// skipValue consumes tokens up to and including the ';' that ends the
// current entry. A '{ ... }' block also ends an entry.
func (t *tokenizer) skipValue() error {
	depth := 0
	for {
		tok, err := t.next()
		if err != nil {
			return err
		}
		switch {
		case tok.kind == eofToken:
			return t.errorf(tok.pos, "unexpected end of file inside an entry")
		case tok.is('(') || tok.is('['):
			depth++
		case tok.is(')') || tok.is(']'):
			depth--
		case tok.is('{'):
			if err := t.skipBlock(); err != nil {
				return err
			}
			if depth > 0 {
				continue
			}
			// Either a sub-dictionary or a uniform list like 3{0}, which
			// is still followed by a ';'.
			nextTok, err := t.peek()
			if err != nil {
				return err
			}
			if nextTok.is(';') {
				t.pos = nextTok.pos + 1
			}
			return nil
		case tok.is(';') && depth <= 0:
			return nil
		}
	}
}

// skipBlock consumes tokens up to and including the '}' matching a '{' which
// has already been read.
func (t *tokenizer) skipBlock() error {
	depth := 1
	for depth > 0 {
		tok, err := t.next()
		if err != nil {
			return err
		}
		switch {
		case tok.kind == eofToken:
			return t.errorf(tok.pos, "unexpected end of file inside a "+
				"'{ ... }' block")
		case tok.is('{'):
			depth++
		case tok.is('}'):
			depth--
		}
	}
	return nil
}

// readValue collects the tokens of an entry up to the terminating ';', which
// is consumed but not returned.
func (t *tokenizer) readValue() ([]token, error) {
	out := []token{}
	depth := 0
	for {
		tok, err := t.next()
		if err != nil {
			return nil, err
		}
		switch {
		case tok.kind == eofToken:
			return nil, t.errorf(tok.pos, "unexpected end of file inside an "+
				"entry")
		case tok.is('(') || tok.is('[') || tok.is('{'):
			depth++
		case tok.is(')') || tok.is(']') || tok.is('}'):
			depth--
		case tok.is(';') && depth <= 0:
			return out, nil
		}
		out = append(out, tok)
	}
}

// readDict reads the entries of a '{ ... }' block whose opening brace has
// already been consumed. Nested dictionaries are skipped.
func (t *tokenizer) readDict() (map[string][]token, error) {
	dict := map[string][]token{}
	for {
		tok, err := t.next()
		if err != nil {
			return nil, err
		}
		if tok.is('}') {
			return dict, nil
		} else if tok.kind == eofToken {
			return nil, t.errorf(tok.pos, "unexpected end of file inside a "+
				"'{ ... }' block")
		} else if tok.kind != wordToken && tok.kind != stringToken {
			return nil, t.errorf(tok.pos, "expected a keyword, but found %s",
				tok)
		}

		nextTok, err := t.peek()
		if err != nil {
			return nil, err
		}
		if nextTok.is('{') {
			t.pos = nextTok.pos + 1
			if err := t.skipBlock(); err != nil {
				return nil, err
			}
			continue
		}

		value, err := t.readValue()
		if err != nil {
			return nil, err
		}
		dict[tok.text] = value
	}
}

// joinTokens glues the text of a set of tokens back together with spaces.
func joinTokens(toks []token) string {
	buf := &bytes.Buffer{}
	for i := range toks {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(toks[i].text)
	}
	return buf.String()
}

// startsNumber returns true if text begins the way a number does. This keeps
// words like "inf" and "nan" out of numberTokens.
func startsNumber(text string) bool {
	if len(text) > 1 && (text[0] == '-' || text[0] == '+') {
		text = text[1:]
	}
	if len(text) > 1 && text[0] == '.' {
		text = text[1:]
	}
	return len(text) > 0 && text[0] >= '0' && text[0] <= '9'
}
