package serial

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"

	"github.com/scrapscript/scrapscript-go/ast"
)

// Deserializer parses a byte encoding produced by Serializer back into
// an ast.Expr tree, resolving TYPE_REF back-references against its own
// growing ref table (spec.md §4.7).
type Deserializer struct {
	flat []byte
	idx  int
	refs []ast.Expr
}

// NewDeserializer wraps flat for parsing from the start.
func NewDeserializer(flat []byte) *Deserializer {
	return &Deserializer{flat: flat}
}

// Deserialize parses flat as a single ast.Expr (spec.md §4.7's
// "deserialize(serialize(e)) = e" round trip).
func Deserialize(flat []byte) (ast.Expr, error) {
	return NewDeserializer(flat).Parse()
}

func (d *Deserializer) read(size int) ([]byte, error) {
	if d.idx+size > len(d.flat) {
		return nil, fmt.Errorf("serial: unexpected end of input at offset %d, want %d bytes", d.idx, size)
	}
	out := d.flat[d.idx : d.idx+size]
	d.idx += size
	return out, nil
}

func (d *Deserializer) readTag() (byte, bool, error) {
	b, err := d.read(1)
	if err != nil {
		return 0, false, err
	}
	tag := b[0]
	isRef := tag&flagRef != 0
	return tag &^ flagRef, isRef, nil
}

func (d *Deserializer) readShort() (int64, error) {
	var shift uint
	var result uint64
	for {
		b, err := d.read(1)
		if err != nil {
			return 0, err
		}
		result |= uint64(b[0]&0x7f) << shift
		shift += 7
		if b[0]&0x80 == 0 {
			break
		}
	}
	return zigzagDecode(result), nil
}

func (d *Deserializer) readLong() (*big.Int, error) {
	numDigits, err := d.readShort()
	if err != nil {
		return nil, err
	}
	digits := make([]uint64, numDigits)
	for i := range digits {
		b, err := d.read(bytesPerDigit)
		if err != nil {
			return nil, err
		}
		digits[i] = binary.LittleEndian.Uint64(b)
	}
	result := new(big.Int)
	for i := len(digits) - 1; i >= 0; i-- {
		result.Lsh(result, bitsPerDigit)
		result.Or(result, new(big.Int).SetUint64(digits[i]))
	}
	return zigzagDecodeBig(result), nil
}

func (d *Deserializer) readString() (string, error) {
	length, err := d.readShort()
	if err != nil {
		return "", err
	}
	b, err := d.read(int(length))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Parse reads and returns the next encoded ast.Expr.
func (d *Deserializer) Parse() (ast.Expr, error) {
	tag, isRef, err := d.readTag()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagRef:
		idx, err := d.readShort()
		if err != nil {
			return nil, err
		}
		if int(idx) < 0 || int(idx) >= len(d.refs) {
			return nil, fmt.Errorf("serial: invalid back-reference %d", idx)
		}
		return d.refs[idx], nil
	case tagShort:
		n, err := d.readShort()
		if err != nil {
			return nil, err
		}
		return &ast.Int{Value: big.NewInt(n)}, nil
	case tagLong:
		n, err := d.readLong()
		if err != nil {
			return nil, err
		}
		return &ast.Int{Value: n}, nil
	case tagString:
		str, err := d.readString()
		if err != nil {
			return nil, err
		}
		return &ast.String{Value: str}, nil
	case tagList:
		if !isRef {
			return nil, fmt.Errorf("serial: TYPE_LIST must be a ref")
		}
		length, err := d.readShort()
		if err != nil {
			return nil, err
		}
		result := &ast.List{Items: make([]ast.Expr, 0, length)}
		d.refs = append(d.refs, result)
		for i := int64(0); i < length; i++ {
			item, err := d.Parse()
			if err != nil {
				return nil, err
			}
			result.Items = append(result.Items, item)
		}
		return result, nil
	case tagRecord:
		length, err := d.readShort()
		if err != nil {
			return nil, err
		}
		result := &ast.Record{Fields: make([]ast.RecordField, 0, length)}
		for i := int64(0); i < length; i++ {
			key, err := d.readString()
			if err != nil {
				return nil, err
			}
			value, err := d.Parse()
			if err != nil {
				return nil, err
			}
			result.Fields = append(result.Fields, ast.RecordField{Name: key, Value: value})
		}
		return result, nil
	case tagVariant:
		tagStr, err := d.readString()
		if err != nil {
			return nil, err
		}
		value, err := d.Parse()
		if err != nil {
			return nil, err
		}
		return &ast.Variant{Tag: tagStr, Value: value}, nil
	case tagVar:
		name, err := d.readString()
		if err != nil {
			return nil, err
		}
		return &ast.Var{Name: name}, nil
	case tagFunction:
		arg, err := d.Parse()
		if err != nil {
			return nil, err
		}
		body, err := d.Parse()
		if err != nil {
			return nil, err
		}
		return &ast.Function{Arg: arg, Body: body}, nil
	case tagMatchFunction:
		length, err := d.readShort()
		if err != nil {
			return nil, err
		}
		result := &ast.MatchFunction{Cases: make([]ast.MatchCase, 0, length)}
		for i := int64(0); i < length; i++ {
			pattern, err := d.Parse()
			if err != nil {
				return nil, err
			}
			body, err := d.Parse()
			if err != nil {
				return nil, err
			}
			result.Cases = append(result.Cases, ast.MatchCase{Pattern: pattern, Body: body})
		}
		return result, nil
	case tagClosure:
		if !isRef {
			return nil, fmt.Errorf("serial: TYPE_CLOSURE must be a ref")
		}
		result := &ast.Closure{Env: ast.Empty()}
		d.refs = append(d.refs, result)
		fn, err := d.Parse()
		if err != nil {
			return nil, err
		}
		switch fn.(type) {
		case *ast.Function, *ast.MatchFunction:
		default:
			return nil, fmt.Errorf("serial: closure function must be a Function or MatchFunction, got %T", fn)
		}
		length, err := d.readShort()
		if err != nil {
			return nil, err
		}
		result.Func = fn
		for i := int64(0); i < length; i++ {
			key, err := d.readString()
			if err != nil {
				return nil, err
			}
			value, err := d.Parse()
			if err != nil {
				return nil, err
			}
			result.Env.SetSelf(key, value)
		}
		return result, nil
	case tagBytes:
		length, err := d.readShort()
		if err != nil {
			return nil, err
		}
		b, err := d.read(int(length))
		if err != nil {
			return nil, err
		}
		value := make([]byte, len(b))
		copy(value, b)
		return &ast.Bytes{Value: value}, nil
	case tagFloat:
		b, err := d.read(8)
		if err != nil {
			return nil, err
		}
		return &ast.Float{Value: math.Float64frombits(binary.LittleEndian.Uint64(b))}, nil
	case tagHole:
		return &ast.Hole{}, nil
	case tagAssign:
		name, err := d.Parse()
		if err != nil {
			return nil, err
		}
		v, ok := name.(*ast.Var)
		if !ok {
			return nil, fmt.Errorf("serial: assign name must be a Var, got %T", name)
		}
		value, err := d.Parse()
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Name: v, Value: value}, nil
	case tagBinop:
		opStr, err := d.readString()
		if err != nil {
			return nil, err
		}
		op, ok := ast.BinopFromString(opStr)
		if !ok {
			return nil, fmt.Errorf("serial: unknown binop %q", opStr)
		}
		left, err := d.Parse()
		if err != nil {
			return nil, err
		}
		right, err := d.Parse()
		if err != nil {
			return nil, err
		}
		return &ast.Binop{Op: op, Left: left, Right: right}, nil
	case tagApply:
		fn, err := d.Parse()
		if err != nil {
			return nil, err
		}
		arg, err := d.Parse()
		if err != nil {
			return nil, err
		}
		return &ast.Apply{Func: fn, Arg: arg}, nil
	case tagWhere:
		body, err := d.Parse()
		if err != nil {
			return nil, err
		}
		binding, err := d.Parse()
		if err != nil {
			return nil, err
		}
		a, ok := binding.(*ast.Assign)
		if !ok {
			return nil, fmt.Errorf("serial: where binding must be an Assign, got %T", binding)
		}
		return &ast.Where{Body: body, Binding: a}, nil
	case tagAccess:
		obj, err := d.Parse()
		if err != nil {
			return nil, err
		}
		accessor, err := d.Parse()
		if err != nil {
			return nil, err
		}
		return &ast.Access{Object: obj, Accessor: accessor}, nil
	case tagSpread:
		return &ast.Spread{}, nil
	case tagNamedSpread:
		name, err := d.readString()
		if err != nil {
			return nil, err
		}
		return &ast.Spread{Name: name, Named: true}, nil
	default:
		return nil, fmt.Errorf("serial: unknown tag byte %q", tag)
	}
}
