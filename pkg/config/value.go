package config

import (
	"fmt"
	"go/ast"
	"go/constant"
	"go/parser"
	"go/token"
	"math"
	"strings"
)

func toFloat(v any) (float64, error) {
	switch v := v.(type) {
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		c, err := Eval(v)
		if err != nil {
			return 0, err
		}
		if c.Kind() != constant.Int && c.Kind() != constant.Float {
			return 0, fmt.Errorf("%q is not a number", v)
		}
		f, _ := constant.Float64Val(constant.ToFloat(c))
		return f, nil
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}

func toInt(v any) (int, error) {
	switch v := v.(type) {
	case int64:
		return int(v), nil
	case int:
		return v, nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("expected an integer, got %v", v)
		}
		return int(v), nil
	case string:
		c, err := Eval(v)
		if err != nil {
			return 0, err
		}
		i := constant.ToInt(c)
		if i.Kind() != constant.Int {
			return 0, fmt.Errorf("%q is not an integer", v)
		}
		n, exact := constant.Int64Val(i)
		if !exact {
			return 0, fmt.Errorf("%q is out of range", v)
		}
		return int(n), nil
	}
	return 0, fmt.Errorf("expected an integer, got %T", v)
}

func toBool(v any) (bool, error) {
	switch v := v.(type) {
	case bool:
		return v, nil
	case string:
		c, err := Eval(v)
		if err != nil {
			return false, err
		}
		if c.Kind() != constant.Bool {
			return false, fmt.Errorf("%q is not a boolean", v)
		}
		return constant.BoolVal(c), nil
	}
	return false, fmt.Errorf("expected a boolean, got %T", v)
}

// Eval evaluates a constant expression. It accepts integer and decimal
// literals, parentheses, unary + and -, the binary operators + - * / and
// the identifiers true, false, True and False. Division is exact: 2/90 is
// not zero.
func Eval(expr string) (constant.Value, error) {
	e, err := parser.ParseExpr(strings.TrimSpace(expr))
	if err != nil {
		return nil, fmt.Errorf("malformed expression %q", expr)
	}
	return eval(e)
}

func eval(e ast.Expr) (constant.Value, error) {
	switch e := e.(type) {
	case *ast.BasicLit:
		if e.Kind != token.INT && e.Kind != token.FLOAT {
			return nil, fmt.Errorf("unsupported literal %s", e.Value)
		}
		return constant.MakeFromLiteral(e.Value, e.Kind, 0), nil
	case *ast.Ident:
		switch e.Name {
		case "true", "True":
			return constant.MakeBool(true), nil
		case "false", "False":
			return constant.MakeBool(false), nil
		}
		return nil, fmt.Errorf("unknown name %q", e.Name)
	case *ast.ParenExpr:
		return eval(e.X)
	case *ast.UnaryExpr:
		x, err := eval(e.X)
		if err != nil {
			return nil, err
		}
		if !numeric(x) || (e.Op != token.ADD && e.Op != token.SUB) {
			return nil, fmt.Errorf("unsupported operator %s", e.Op)
		}
		return constant.UnaryOp(e.Op, x, 0), nil
	case *ast.BinaryExpr:
		x, err := eval(e.X)
		if err != nil {
			return nil, err
		}
		y, err := eval(e.Y)
		if err != nil {
			return nil, err
		}
		if !numeric(x) || !numeric(y) {
			return nil, fmt.Errorf("operator %s needs numbers", e.Op)
		}
		switch e.Op {
		case token.ADD, token.SUB, token.MUL:
			return constant.BinaryOp(x, e.Op, y), nil
		case token.QUO:
			if constant.Sign(y) == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			return constant.BinaryOp(constant.ToFloat(x), token.QUO, constant.ToFloat(y)), nil
		}
		return nil, fmt.Errorf("unsupported operator %s", e.Op)
	}
	return nil, fmt.Errorf("unsupported expression")
}

func numeric(v constant.Value) bool {
	return v.Kind() == constant.Int || v.Kind() == constant.Float
}
