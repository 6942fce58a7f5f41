package serial

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"sort"

	"github.com/scrapscript/scrapscript-go/ast"
)

// Serializer accumulates a byte encoding of an ast.Expr tree, emitting
// a back-reference instead of re-encoding a List or Closure it has
// already visited by pointer identity (spec.md §4.7 "cyclic values").
type Serializer struct {
	refs   []ast.Expr
	output []byte
}

// NewSerializer returns an empty Serializer.
func NewSerializer() *Serializer { return &Serializer{} }

// Bytes returns the bytes emitted so far.
func (s *Serializer) Bytes() []byte { return s.output }

// Serialize encodes obj into the Serializer's output buffer.
func Serialize(obj ast.Expr) []byte {
	s := NewSerializer()
	s.serialize(obj)
	return s.Bytes()
}

func (s *Serializer) findRef(obj ast.Expr) (int, bool) {
	for i, r := range s.refs {
		if r == obj {
			return i, true
		}
	}
	return 0, false
}

func (s *Serializer) addRef(tag byte, obj ast.Expr) {
	s.emitByte(refTag(tag))
	s.refs = append(s.refs, obj)
}

func (s *Serializer) emitByte(b byte) { s.output = append(s.output, b) }
func (s *Serializer) emit(b []byte)   { s.output = append(s.output, b...) }

func (s *Serializer) shortBytes(n int64) []byte {
	number := zigzagEncode(n)
	var buf []byte
	for {
		toWrite := byte(number & 0x7f)
		number >>= 7
		if number != 0 {
			buf = append(buf, toWrite|0x80)
		} else {
			buf = append(buf, toWrite)
			break
		}
	}
	return buf
}

func (s *Serializer) longBytes(n *big.Int) []byte {
	number := zigzagEncodeBig(n)
	var digits []uint64
	mask := new(big.Int).SetUint64(digitMask)
	zero := big.NewInt(0)
	for number.Cmp(zero) != 0 {
		digit := new(big.Int).And(number, mask)
		digits = append(digits, digit.Uint64())
		number = new(big.Int).Rsh(number, bitsPerDigit)
	}
	buf := append([]byte{}, s.shortBytes(int64(len(digits)))...)
	for _, d := range digits {
		var b [bytesPerDigit]byte
		binary.LittleEndian.PutUint64(b[:], d)
		buf = append(buf, b[:]...)
	}
	return buf
}

func zigzagEncodeBig(v *big.Int) *big.Int {
	if v.Sign() < 0 {
		out := new(big.Int).Mul(v, big.NewInt(-2))
		return out.Sub(out, big.NewInt(1))
	}
	return new(big.Int).Mul(v, big.NewInt(2))
}

func zigzagDecodeBig(v *big.Int) *big.Int {
	bit := new(big.Int).And(v, big.NewInt(1))
	half := new(big.Int).Rsh(v, 1)
	if bit.Sign() == 0 {
		return half
	}
	return new(big.Int).Neg(new(big.Int).Add(half, big.NewInt(1)))
}

func (s *Serializer) stringBytes(str string) []byte {
	encoded := []byte(str)
	out := append([]byte{}, s.shortBytes(int64(len(encoded)))...)
	return append(out, encoded...)
}

func fitsInInt64(v *big.Int) bool {
	return v.IsInt64()
}

// serialize encodes obj, consulting/growing the ref table for List and
// Closure values (spec.md §4.7).
func (s *Serializer) serialize(obj ast.Expr) {
	if idx, ok := s.findRef(obj); ok {
		s.emitByte(tagRef)
		s.emit(s.shortBytes(int64(idx)))
		return
	}
	switch o := obj.(type) {
	case *ast.Int:
		if fitsInInt64(o.Value) {
			s.emitByte(tagShort)
			s.emit(s.shortBytes(o.Value.Int64()))
			return
		}
		s.emitByte(tagLong)
		s.emit(s.longBytes(o.Value))
		return
	case *ast.String:
		s.emitByte(tagString)
		s.emit(s.stringBytes(o.Value))
		return
	case *ast.List:
		s.addRef(tagList, o)
		s.emit(s.shortBytes(int64(len(o.Items))))
		for _, item := range o.Items {
			s.serialize(item)
		}
		return
	case *ast.Variant:
		s.emitByte(tagVariant)
		s.emit(s.stringBytes(o.Tag))
		s.serialize(o.Value)
		return
	case *ast.Record:
		s.emitByte(tagRecord)
		s.emit(s.shortBytes(int64(len(o.Fields))))
		for _, f := range o.Fields {
			s.emit(s.stringBytes(f.Name))
			s.serialize(f.Value)
		}
		return
	case *ast.Var:
		s.emitByte(tagVar)
		s.emit(s.stringBytes(o.Name))
		return
	case *ast.Function:
		s.emitByte(tagFunction)
		s.serialize(o.Arg)
		s.serialize(o.Body)
		return
	case *ast.MatchFunction:
		s.emitByte(tagMatchFunction)
		s.emit(s.shortBytes(int64(len(o.Cases))))
		for _, c := range o.Cases {
			s.serialize(c.Pattern)
			s.serialize(c.Body)
		}
		return
	case *ast.Closure:
		s.addRef(tagClosure, o)
		s.serialize(o.Func)
		keys := o.Env.Keys()
		sort.Strings(keys)
		s.emit(s.shortBytes(int64(len(keys))))
		for _, k := range keys {
			v, _ := o.Env.Get(k)
			s.emit(s.stringBytes(k))
			s.serialize(v)
		}
		return
	case *ast.Bytes:
		s.emitByte(tagBytes)
		s.emit(s.shortBytes(int64(len(o.Value))))
		s.emit(o.Value)
		return
	case *ast.Float:
		s.emitByte(tagFloat)
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(o.Value))
		s.emit(b[:])
		return
	case *ast.Hole:
		s.emitByte(tagHole)
		return
	case *ast.Assign:
		s.emitByte(tagAssign)
		s.serialize(o.Name)
		s.serialize(o.Value)
		return
	case *ast.Binop:
		s.emitByte(tagBinop)
		s.emit(s.stringBytes(o.Op.String()))
		s.serialize(o.Left)
		s.serialize(o.Right)
		return
	case *ast.Apply:
		s.emitByte(tagApply)
		s.serialize(o.Func)
		s.serialize(o.Arg)
		return
	case *ast.Where:
		s.emitByte(tagWhere)
		s.serialize(o.Body)
		s.serialize(o.Binding)
		return
	case *ast.Access:
		s.emitByte(tagAccess)
		s.serialize(o.Object)
		s.serialize(o.Accessor)
		return
	case *ast.Spread:
		if o.Named {
			s.emitByte(tagNamedSpread)
			s.emit(s.stringBytes(o.Name))
			return
		}
		s.emitByte(tagSpread)
		return
	default:
		panic(fmt.Sprintf("serial: unsupported expression type %T", obj))
	}
}
