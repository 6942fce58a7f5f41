package builtin

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"

	"github.com/scrapscript/scrapscript-go/ast"
	"github.com/scrapscript/scrapscript-go/errs"
	"github.com/scrapscript/scrapscript-go/serial"
)

// native wraps a Go function as an ast.NativeFunction value, grounded
// on the teacher's std.Builtin{Name, Callback} registration shape.
func native(name string, fn func(rt ast.Runtime, arg ast.Expr) (ast.Expr, error)) *ast.NativeFunction {
	return &ast.NativeFunction{Name: name, Call: fn}
}

// fetch implements $$fetch: a single blocking GET, returning the
// response body as a String (spec.md §6, original_source's fetch).
func fetch(_ ast.Runtime, arg ast.Expr) (ast.Expr, error) {
	url, ok := arg.(*ast.String)
	if !ok {
		return nil, errs.TypeError(errs.Pos{}, "fetch expected String, but got %T", arg)
	}
	resp, err := http.Get(url.Value)
	if err != nil {
		return nil, errs.RuntimeError(errs.Pos{}, "fetch failed: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.RuntimeError(errs.Pos{}, "fetch failed reading body: %v", err)
	}
	return &ast.String{Value: string(body)}, nil
}

// makeObject converts a decoded interface{} (from encoding/json) into
// the Scrapscript value domain, mirroring original_source's
// make_object. JSON numbers decode as Float (Go's json.Unmarshal into
// interface{} always produces float64, never an arbitrary-precision
// integer) — this is a deliberate divergence from the reference's
// Python int/float distinction.
func makeObject(v any) (ast.Expr, error) {
	switch x := v.(type) {
	case nil:
		return &ast.Hole{}, nil
	case bool:
		return ast.MakeBool(x), nil
	case float64:
		return &ast.Float{Value: x}, nil
	case string:
		return &ast.String{Value: x}, nil
	case []any:
		items := make([]ast.Expr, len(x))
		for i, e := range x {
			v, err := makeObject(e)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return &ast.List{Items: items}, nil
	case map[string]any:
		fields := make([]ast.RecordField, 0, len(x))
		for k, e := range x {
			v, err := makeObject(e)
			if err != nil {
				return nil, err
			}
			fields = append(fields, ast.RecordField{Name: k, Value: v})
		}
		return &ast.Record{Fields: fields}, nil
	default:
		return nil, errs.RuntimeError(errs.Pos{}, "jsondecode: unsupported JSON value %T", v)
	}
}

// jsondecode implements $$jsondecode.
func jsondecode(_ ast.Runtime, arg ast.Expr) (ast.Expr, error) {
	s, ok := arg.(*ast.String)
	if !ok {
		return nil, errs.TypeError(errs.Pos{}, "jsondecode expected String, but got %T", arg)
	}
	var data any
	if err := json.Unmarshal([]byte(s.Value), &data); err != nil {
		return nil, errs.RuntimeError(errs.Pos{}, "jsondecode: %v", err)
	}
	return makeObject(data)
}

// listlength implements $$listlength : list a -> int.
func listlength(_ ast.Runtime, arg ast.Expr) (ast.Expr, error) {
	l, ok := arg.(*ast.List)
	if !ok {
		return nil, errs.TypeError(errs.Pos{}, "listlength expected List, but got %T", arg)
	}
	return &ast.Int{Value: big.NewInt(int64(len(l.Items)))}, nil
}

// serializeBuiltin implements $$serialize : a -> bytes.
func serializeBuiltin(_ ast.Runtime, arg ast.Expr) (ast.Expr, error) {
	return &ast.Bytes{Value: serial.Serialize(arg)}, nil
}

// deserializeBuiltin implements $$deserialize : bytes -> a.
func deserializeBuiltin(_ ast.Runtime, arg ast.Expr) (ast.Expr, error) {
	b, ok := arg.(*ast.Bytes)
	if !ok {
		return nil, errs.TypeError(errs.Pos{}, "deserialize expected Bytes, but got %T", arg)
	}
	return serial.Deserialize(b.Value)
}

// addClosure builds $$add as a genuine Closure rather than a native
// function (SPEC_FULL §12: "$$add is a Closure, not a native
// function" — a real, observable asymmetry the reference preserves,
// since only the true natives are opaque to serialization).
func addClosure() *ast.Closure {
	fn := &ast.Function{
		Arg: &ast.Var{Name: "x"},
		Body: &ast.Function{
			Arg: &ast.Var{Name: "y"},
			Body: &ast.Binop{
				Op:    ast.ADD,
				Left:  &ast.Var{Name: "x"},
				Right: &ast.Var{Name: "y"},
			},
		},
	}
	return &ast.Closure{Env: ast.Empty(), Func: fn}
}

// Stdlib is the set of bindings available to the prelude while it is
// parsed and evaluated (SPEC_FULL §12, original_source's STDLIB).
func Stdlib() *ast.Env {
	env := ast.Empty()
	env = env.Extend("$$add", addClosure())
	env = env.Extend("$$fetch", native("$$fetch", fetch))
	env = env.Extend("$$jsondecode", native("$$jsondecode", jsondecode))
	env = env.Extend("$$serialize", native("$$serialize", serializeBuiltin))
	env = env.Extend("$$deserialize", native("$$deserialize", deserializeBuiltin))
	env = env.Extend("$$listlength", native("$$listlength", listlength))
	return env
}
