package ratexpr

import (
	"errors"
	"io"
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

// Token is a lexical token of an expression.
type Token struct {
	// Kind is the token type.
	Kind TokenKind
	// Text is the source text of the token. For operators it is the operator
	// rune as written, e.g. "×" or "*".
	Text string
	// Num is the value of a TokenNum. It is nil for other kinds.
	Num *big.Rat
	// Op is the operator of a TokenOp.
	Op Op
	// Pos is the 1-based rune column of the start of the token.
	Pos int
}

func (t Token) String() string {
	return t.Kind.String() + ":" + t.Text + "@" + strconv.Itoa(t.Pos)
}

// TokenKind is the type of a token.
type TokenKind int

const (
	tokenNone TokenKind = iota
	// TokenEOF indicates the end of the input.
	TokenEOF
	// TokenNum is a number literal.
	TokenNum
	// TokenIdent is a variable or function name.
	TokenIdent
	// TokenOp is an operator.
	TokenOp
	// TokenOpen is an open bracket, e.g. (.
	TokenOpen
	// TokenClose is a close bracket, e.g. ).
	TokenClose
	// TokenSep is a tuple separator, a comma.
	TokenSep
)

var tokenKindNames = [...]string{
	tokenNone:  "None",
	TokenEOF:   "EOF",
	TokenNum:   "Num",
	TokenIdent: "Ident",
	TokenOp:    "Op",
	TokenOpen:  "Open",
	TokenClose: "Close",
	TokenSep:   "Sep",
}

func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindNames) {
		return "TokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenKindNames[k]
}

// Operators contains the runes which are considered to be operators.
const Operators = "+-*/%^=×÷"

// operatorOps gives the Op for each rune of Operators, in order.
var operatorOps = [...]Op{OpAdd, OpSubtract, OpMultiply, OpDivide, OpModulus, OpExponent, OpEquals, OpMultiply, OpDivide}

// OpenBrackets and CloseBrackets contain the runes which group expressions.
// The parser checks that a bracket in byte position k in OpenBrackets is
// matched with the bracket in byte position k in ClosedBrackets.
const (
	OpenBrackets  = "([{"
	CloseBrackets = ")]}"
)

func byteidcs(s string) []string {
	v := make([]string, 0, len(s))
	for _, r := range s {
		v = append(v, string(r))
	}
	return v
}

var (
	operstrs      = byteidcs(Operators)
	openbrackets  = byteidcs(OpenBrackets)
	closebrackets = byteidcs(CloseBrackets)
)

// runeIndex is strings.IndexRune counted in runes rather than bytes.
func runeIndex(s string, r rune) int {
	i := 0
	for _, c := range s {
		if c == r {
			return i
		}
		i++
	}
	return -1
}

type lexer struct {
	src  io.RuneScanner
	buf  strings.Builder
	rune int
	eof  bool
}

func lex(src io.RuneScanner) *lexer {
	return &lexer{
		src:  src,
		rune: 1,
	}
}

// Lex scans the entire input into a token sequence. The last token is always
// a TokenEOF.
func Lex(src io.RuneScanner) ([]Token, error) {
	l := lex(src)
	var toks []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == TokenEOF {
			return toks, nil
		}
	}
}

// LexString is a shortcut to lex a string.
func LexString(src string) ([]Token, error) {
	return Lex(strings.NewReader(src))
}

// readRune reads a rune from the src and updates the lexer's position info.
func (l *lexer) readRune() (r rune, err error) {
	r, sz, err := l.src.ReadRune()
	if sz > 0 {
		l.rune++
	}
	return r, err
}

// unreadRune unreads a rune from the src and updates the lexer's position
// info. Panics if unreading returns an error.
func (l *lexer) unreadRune() {
	if err := l.src.UnreadRune(); err != nil {
		panic(err)
	}
	l.rune--
}

// next scans the next token from the input. The first time EOF is encountered,
// the result is an EOF token with a nil error. Subsequent times, the result is
// an empty token with io.EOF.
func (l *lexer) next() (Token, error) {
	if l.eof {
		return Token{}, io.EOF
	}
	defer l.buf.Reset()
	tok := Token{Pos: l.rune}
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				tok.Kind = TokenEOF
				l.eof = true
				return tok, nil
			}
			return tok, err
		}
		switch {
		case unicode.IsSpace(r):
			tok.Pos++
			continue
		case '0' <= r && r <= '9':
			l.unreadRune()
			v, err := l.scanNum()
			if err != nil {
				return tok, err
			}
			tok.Text = l.buf.String()
			tok.Kind = TokenNum
			tok.Num = v
			return tok, nil
		case unicode.IsLetter(r):
			l.unreadRune()
			if err := l.scanIdent(); err != nil {
				return tok, err
			}
			tok.Text = l.buf.String()
			tok.Kind = TokenIdent
			return tok, nil
		case r == ',':
			tok.Text = ","
			tok.Kind = TokenSep
			return tok, nil
		default:
			if k := runeIndex(Operators, r); k >= 0 {
				tok.Text = operstrs[k]
				tok.Kind = TokenOp
				tok.Op = operatorOps[k]
				return tok, nil
			}
			if k := runeIndex(OpenBrackets, r); k >= 0 {
				tok.Text = openbrackets[k]
				tok.Kind = TokenOpen
				return tok, nil
			}
			if k := runeIndex(CloseBrackets, r); k >= 0 {
				tok.Text = closebrackets[k]
				tok.Kind = TokenClose
				return tok, nil
			}
			// Write the rune so that it shows up in the error message.
			l.buf.WriteRune(r)
			return tok, l.error("")
		}
	}
}

// scanNum scans a decimal literal. Underscores separate digit groups and are
// dropped. The value is digits/10^scale, where scale is the number of digits
// after the point.
func (l *lexer) scanNum() (*big.Rat, error) {
	var digits strings.Builder
	dot := false
	scale := 0
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if r == '.' {
			l.buf.WriteRune(r)
			if dot {
				return nil, l.error("number")
			}
			dot = true
			continue
		}
		if r == '_' {
			l.buf.WriteRune(r)
			continue
		}
		if r < '0' || r > '9' {
			// Anything else starts a new token, so 2x is 2 x.
			l.unreadRune()
			break
		}
		l.buf.WriteRune(r)
		digits.WriteRune(r)
		if dot {
			scale++
		}
	}
	n, ok := new(big.Int).SetString(digits.String(), 10)
	if !ok {
		// The first rune is always a digit, so this is unreachable.
		panic("ratexpr: invalid number " + strconv.Quote(l.buf.String()))
	}
	d := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(scale)), nil)
	return new(big.Rat).SetFrac(n, d), nil
}

func (l *lexer) scanIdent() error {
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// next unreads the rune that decides ident scanning before
				// calling scanIdent, so we have scanned at least one rune.
				return nil
			}
			return err
		}
		switch {
		case r == '_', unicode.IsLetter(r), unicode.IsDigit(r):
			l.buf.WriteRune(r)
		default:
			l.unreadRune()
			return nil
		}
	}
}

func (l *lexer) error(kind string) error {
	return &LexError{
		Text: l.buf.String(),
		Kind: kind,
		Col:  l.rune - 1,
	}
}

// LexError indicates an invalid token. It implements InputError.
type LexError struct {
	// Text is the token the lexer was scanning when the invalid rune was
	// encountered, plus the invalid rune.
	Text string
	// Kind is the type of token the lexer was scanning. This is "number" or
	// the empty string (if a token kind hadn't been decided).
	Kind string
	// Col is the 1-based column of the invalid rune.
	Col int
}

func (err *LexError) Error() string {
	pos := "column " + strconv.Itoa(err.Col)
	if err.Kind == "" {
		return "invalid token at " + pos + ": " + err.Text
	}
	return "invalid " + err.Kind + " token at " + pos + ": " + err.Text
}

func (err *LexError) Pos() int {
	return err.Col
}
