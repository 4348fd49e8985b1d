package ratexpr

import "strconv"

// OperatorError reports an operator that cannot appear where it was found,
// such as "*" at the start of an operand. It implements InputError.
type OperatorError struct {
	// Col is the column of the operator.
	Col int
	// Operator is the operator as written.
	Operator string
	// Term is true when the operator appeared where an operand must begin,
	// so only "+" or "-" could have been accepted.
	Term bool
}

func (err *OperatorError) Error() string {
	if err.Term {
		return errpos(err.Col, "expected a term but found operator "+strconv.Quote(err.Operator))
	}
	return errpos(err.Col, "unknown binary operator "+strconv.Quote(err.Operator))
}

func (err *OperatorError) Pos() int {
	return err.Col
}

// AssocError reports a second "=" at the same level, as in "a = b = c".
// Comparisons only chain through brackets. It implements InputError.
type AssocError struct {
	// Col is the column of the second operator.
	Col int
	// Operator is the operator as written.
	Operator string
}

func (err *AssocError) Error() string {
	return errpos(err.Col, strconv.Quote(err.Operator)+" cannot be chained; use brackets")
}

func (err *AssocError) Pos() int {
	return err.Col
}

// BracketError reports a close bracket that does not match the innermost open
// bracket, or an open bracket still unclosed at the end of the line. It
// implements InputError.
type BracketError struct {
	// Col is the column of the close bracket, or of the end of the line.
	Col int
	// Left is the unmatched open bracket, or empty if there is none.
	Left string
	// Right is the offending close bracket, or empty at the end of the line.
	Right string
}

func (err *BracketError) Error() string {
	switch {
	case err.Left == "":
		return errpos(err.Col, "close bracket "+err.Right+" with no open bracket")
	case err.Right == "":
		return errpos(err.Col, "open bracket "+err.Left+" with no close bracket")
	default:
		return errpos(err.Col, err.Right+" closes "+err.Left)
	}
}

func (err *BracketError) Pos() int {
	return err.Col
}

// SeparatorError reports a comma inside brackets. Tuples exist only at the
// top level of a line. It implements InputError.
type SeparatorError struct {
	// Col is the column of the comma.
	Col int
	// Sep is the separator as written.
	Sep string
}

func (err *SeparatorError) Error() string {
	return errpos(err.Col, strconv.Quote(err.Sep)+" inside brackets; tuples are only allowed at the top level")
}

func (err *SeparatorError) Pos() int {
	return err.Col
}

// EmptyExpressionError reports a missing operand: an empty line, empty
// brackets, an operator with nothing after it, or an empty tuple item. It
// implements InputError.
type EmptyExpressionError struct {
	// Col is the column of the token where an operand was expected.
	Col int
	// End is that token, or empty at the end of the line.
	End string
}

func (err *EmptyExpressionError) Error() string {
	switch {
	case err.End != "":
		return errpos(err.Col, "no expression before "+strconv.Quote(err.End))
	case err.Col <= 1:
		return errpos(err.Col, "no expression")
	default:
		return errpos(err.Col, "no expression at end")
	}
}

func (err *EmptyExpressionError) Pos() int {
	return err.Col
}

func errpos(col int, msg string) string {
	return strconv.Itoa(col) + ": " + msg
}

// InputError is implemented by every error that Lex or Parse returns for
// malformed input.
type InputError interface {
	error
	// Pos is the 1-based column where the problem was found.
	Pos() int
}

var (
	_ InputError = (*LexError)(nil)
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*AssocError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*SeparatorError)(nil)
	_ InputError = (*EmptyExpressionError)(nil)
)
