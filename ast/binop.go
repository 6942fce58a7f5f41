package ast

// BinopKind is the closed enumeration of binary operators. The
// reference implementation (original_source/scrapscript.py) actually
// carries 22 members. HASTYPE,
// PIPE, and REVERSE_PIPE have no evaluator handler in the original and
// PIPE/REVERSE_PIPE are never constructed by a conforming parser (they
// desugar to Apply at parse time per spec.md §4.2). They are kept here
// so the lexer/precedence table and BinopKind stay in exact 1:1
// correspondence with the reference, and so a stray literal
// `Binop(HASTYPE, ...)` has well-defined (if unimplemented) behavior.
type BinopKind int

const (
	ADD BinopKind = iota
	SUB
	MUL
	DIV
	FLOOR_DIV
	EXP
	MOD
	EQUAL
	NOT_EQUAL
	LESS
	GREATER
	LESS_EQUAL
	GREATER_EQUAL
	BOOL_AND
	BOOL_OR
	STRING_CONCAT
	LIST_CONS
	LIST_APPEND
	RIGHT_EVAL
	HASTYPE
	PIPE
	REVERSE_PIPE
)

var binopToStr = map[BinopKind]string{
	ADD: "+", SUB: "-", MUL: "*", DIV: "/", FLOOR_DIV: "//", EXP: "^", MOD: "%",
	EQUAL: "==", NOT_EQUAL: "/=", LESS: "<", GREATER: ">",
	LESS_EQUAL: "<=", GREATER_EQUAL: ">=",
	BOOL_AND: "&&", BOOL_OR: "||", STRING_CONCAT: "++",
	LIST_CONS: ">+", LIST_APPEND: "+<", RIGHT_EVAL: "!",
	HASTYPE: ":", PIPE: "|>", REVERSE_PIPE: "<|",
}

var strToBinop = func() map[string]BinopKind {
	m := make(map[string]BinopKind, len(binopToStr))
	for k, v := range binopToStr {
		m[v] = k
	}
	return m
}()

func (k BinopKind) String() string { return binopToStr[k] }

// BinopFromString maps an operator's textual form to its BinopKind.
// The ok result is false for operators that are not binary operators
// in BinopKind's vocabulary (e.g. `->`, `=`, `.`, `@`, `?`, `,`, `...`,
// `#`, which the parser handles as their own productions, and `::`,
// which the parser rejects).
func BinopFromString(s string) (BinopKind, bool) {
	k, ok := strToBinop[s]
	return k, ok
}
