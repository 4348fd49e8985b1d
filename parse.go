package ratexpr

import (
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Line  = Expr { ',' Expr }
// Expr  = num | name | Neg | Plus | Add | Sub | Mul | Div | Mod | Pow | Eq | Adj | '(' Expr ')' | '[' Expr ']' | '{' Expr '}'
// Neg   = '-' Expr
// Plus  = '+' Expr
// Add   = Expr '+' Expr
// Sub   = Expr '-' Expr
// Mul   = Expr '*' Expr | Expr '×' Expr
// Div   = Expr '/' Expr | Expr '÷' Expr
// Mod   = Expr '%' Expr
// Pow   = Expr '^' Expr
// Eq    = Expr '=' Expr
// Adj   = Expr Expr

// Parse parses one line of input. A comma-separated list at the outermost
// level produces a Tuple.
func Parse(src io.RuneScanner) (Expr, error) {
	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}
	return ParseTokens(toks)
}

// ParseString is a shortcut to parse a string.
func ParseString(src string) (Expr, error) {
	return Parse(strings.NewReader(src))
}

// ParseTokens parses a token sequence as produced by Lex. The sequence need
// not end with a TokenEOF. Either the entire sequence is consumed or the
// result is an error.
func ParseTokens(toks []Token) (Expr, error) {
	scan := newScanner(toks)
	var p parsectx
	var items Tuple
	for {
		n, err := parseterm(scan, &p, exprprec)
		if err != nil {
			return nil, err
		}
		tok := scan.must()
		if n == nil {
			// A close bracket with nothing before it.
			return nil, itShouldNotHaveEndedThisWay(tok, -1)
		}
		switch tok.Kind {
		case TokenEOF:
			if items == nil {
				return n, nil
			}
			return append(items, n), nil
		case TokenSep:
			items = append(items, n)
		default:
			return nil, itShouldNotHaveEndedThisWay(tok, -1)
		}
	}
}

// scanner feeds tokens to the parser. It allows one token of lookahead by
// pushing back the last token scanned.
type scanner struct {
	toks []Token
	p    Token
	// end is the position of the synthesized EOF token when the sequence
	// does not end with one.
	end int
}

func newScanner(toks []Token) *scanner {
	s := scanner{toks: toks, end: 1}
	if len(toks) > 0 {
		last := toks[len(toks)-1]
		s.end = last.Pos + utf8.RuneCountInString(last.Text)
	}
	return &s
}

// next scans the next token. Past the end of the sequence, it returns EOF
// tokens.
func (s *scanner) next() Token {
	if s.p.Kind != tokenNone {
		tok := s.p
		s.p = Token{}
		return tok
	}
	if len(s.toks) == 0 {
		return Token{Kind: TokenEOF, Pos: s.end}
	}
	tok := s.toks[0]
	s.toks = s.toks[1:]
	return tok
}

// push unreads a token so that it is the next token returned from next. Panics
// if there is already a pushed token.
func (s *scanner) push(tok Token) {
	if s.p.Kind != tokenNone {
		panic("ratexpr: double push")
	}
	s.p = tok
}

// must scans the pushed token. Panics if there is no pushed token.
func (s *scanner) must() Token {
	tok := s.p
	if tok.Kind == tokenNone {
		panic("ratexpr: no pushed token")
	}
	s.p = Token{}
	return tok
}

// parsectx holds general data for parsing.
type parsectx struct {
	// depth is the number of open brackets around the current term.
	depth int
}

// parseterm parses a single term. If there is no error, then parseterm pushes
// the last token it scans, including EOF. If the input is an empty
// subexpression, the result is nil with no error; callers must create an error
// in contexts where empty subexpressions are illegal.
func parseterm(scan *scanner, p *parsectx, until operator) (Expr, error) {
	n, err := parselhs(scan, p, until)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	// eq records whether this term already has a comparison at this level.
	eq := false
	for {
		tok := scan.next()
		switch tok.Kind {
		case TokenNum, TokenIdent, TokenOpen:
			// (parsed) x -> (parsed) (x)
			// (parsed) x^y -> (parsed) (x^y)
			// a^(parsed) x -> (a^(parsed)) (x)
			scan.push(tok)
			prec := termprec
			if !prec.moreBinding(until) {
				return n, nil
			}
			rhs, err := parseterm(scan, p, prec)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				return nil, emptyAt(scan)
			}
			n = BinaryExpr{Left: n, Op: OpAdjacent, Right: rhs}
		case TokenOp:
			// Binary operator.
			prec := binop(tok.Op)
			if prec.op == opNone {
				return nil, &OperatorError{Col: tok.Pos, Operator: tok.Text, Term: false}
			}
			if !prec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			if prec.op == OpEquals {
				if eq {
					return nil, &AssocError{Col: tok.Pos, Operator: tok.Text}
				}
				eq = true
			}
			rhs, err := parseterm(scan, p, prec)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				return nil, emptyAt(scan)
			}
			n = BinaryExpr{Left: n, Op: prec.op, Right: rhs}
		case TokenClose, TokenSep, TokenEOF:
			// End of expression.
			scan.push(tok)
			return n, nil
		default:
			panic("ratexpr: unknown token: " + tok.String())
		}
	}
}

// parselhs parses the first component of a term. I.e., operators are unary
// and any encountered token must be valid as the start of a subexpression.
func parselhs(scan *scanner, p *parsectx, until operator) (Expr, error) {
	tok := scan.next()
	switch tok.Kind {
	case TokenNum:
		if tok.Num == nil {
			return nil, &LexError{Text: tok.Text, Kind: "number", Col: tok.Pos}
		}
		return NewNumber(tok.Num), nil
	case TokenIdent:
		return Name(tok.Text), nil
	case TokenOp:
		// unary operator
		prec := unop(tok.Op)
		if prec.op == opNone {
			return nil, &OperatorError{Col: tok.Pos, Operator: tok.Text, Term: true}
		}
		if !prec.moreBinding(until) {
			// x^-y -> x^(-y)
			// Just use the new operator's precedence to simplify.
			prec.prec, prec.right = until.prec, until.right
		}
		rhs, err := parseterm(scan, p, prec)
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			return nil, emptyAt(scan)
		}
		if prec.op == OpAdd {
			return rhs, nil
		}
		if x, ok := rhs.(Number); ok {
			return Number{r: x.Rat().Neg(x.rat())}, nil
		}
		return BinaryExpr{Left: Int(0), Op: OpSubtract, Right: rhs}, nil
	case TokenOpen:
		match := rightbracket(tok.Text)
		p.depth++
		rhs, err := parseterm(scan, p, exprprec)
		p.depth--
		if err != nil {
			return nil, err
		}
		end := scan.must()
		if end.Kind != TokenClose || end.Text != closebrackets[match] {
			return nil, itShouldNotHaveEndedThisWay(end, match)
		}
		if rhs == nil {
			return nil, &EmptyExpressionError{Col: end.Pos, End: end.Text}
		}
		return rhs, nil
	case TokenClose:
		// Let the caller decide what to do.
		scan.push(tok)
		return nil, nil
	case TokenSep:
		if p.depth > 0 {
			return nil, &SeparatorError{Col: tok.Pos, Sep: tok.Text}
		}
		return nil, &EmptyExpressionError{Col: tok.Pos, End: tok.Text}
	case TokenEOF:
		return nil, &EmptyExpressionError{Col: tok.Pos, End: ""}
	default:
		panic("ratexpr: unknown token: " + tok.String())
	}
}

// emptyAt creates an error for an empty subexpression ending at the pushed
// token, leaving it pushed.
func emptyAt(scan *scanner) error {
	tok := scan.must()
	scan.push(tok)
	return &EmptyExpressionError{Col: tok.Pos, End: tok.Text}
}

// rightbracket gets the closing bracket index for an opening bracket.
func rightbracket(left string) int {
	r, sz := utf8.DecodeRuneInString(left)
	k := runeIndex(OpenBrackets, r)
	if k < 0 || sz != len(left) {
		panic("ratexpr: invalid bracket " + strconv.Quote(left))
	}
	return k
}

// leftbracket gets the opening bracket matching right. If right is no bracket,
// then the result is the empty string.
func leftbracket(right int) string {
	if right == -1 {
		return ""
	}
	return openbrackets[right]
}

// itShouldNotHaveEndedThisWay returns an error appropriate for an unexpected
// token at the end of a subexpression. match is the bracket rune index that
// the expression should have matched, or -1 if none.
func itShouldNotHaveEndedThisWay(tok Token, match int) error {
	switch tok.Kind {
	case TokenEOF:
		// Unexpected EOF implies an open bracket that was not closed.
		return &BracketError{Col: tok.Pos, Left: leftbracket(match), Right: ""}
	case TokenClose:
		// A bracket could be the wrong bracket for the opening brace or any
		// bracket at the end of an input.
		return &BracketError{Col: tok.Pos, Left: leftbracket(match), Right: tok.Text}
	case TokenSep:
		// Separator inside brackets.
		return &SeparatorError{Col: tok.Pos, Sep: tok.Text}
	default:
		panic("ratexpr: it really should not have ended this way: " + tok.String())
	}
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// op is the operator to use when this operator is selected.
	op Op
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop gets a binary operator. If there is no such binary operator, then the
// result has an op of opNone.
func binop(op Op) operator {
	switch op {
	case OpEquals:
		return operator{0, false, OpEquals}
	case OpAdd:
		return operator{1, false, OpAdd}
	case OpSubtract:
		return operator{1, false, OpSubtract}
	case OpMultiply:
		return operator{5, false, OpMultiply}
	case OpDivide:
		return operator{5, false, OpDivide}
	case OpModulus:
		return operator{5, false, OpModulus}
	case OpExponent:
		return operator{15, true, OpExponent}
	default:
		return operator{}
	}
}

// unop gets a unary operator. If there is no such unary operator, then the
// result has an op of opNone. The op of the result identifies the operator;
// unary minus builds a subtraction from zero.
func unop(op Op) operator {
	switch op {
	case OpAdd:
		return operator{10, true, OpAdd}
	case OpSubtract:
		return operator{10, true, OpSubtract}
	default:
		return operator{}
	}
}

var (
	// termprec is the precedence for parsing juxtaposed terms. It matches
	// multiplication.
	termprec = operator{5, false, OpAdjacent}
	// exprprec is the precedence required to parse an entire subexpression.
	exprprec = operator{-128, true, opNone}
)
