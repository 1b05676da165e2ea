package toolchain

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"math"
	"strconv"

	"github.com/easyops/studybuddy-go/pkg/core/errors"
)

// CalculationError 算术求值失败时返回的固定文本
const CalculationError = "Calculation error."

// Evaluate 使用 Go AST 安全地计算算术表达式
//
// 仅支持数字字面量上的二元运算 + - * / ^（^ 解释为幂运算），
// 其余任何节点类型都是硬错误。
func Evaluate(expr string) (float64, error) {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return 0, errors.WrapError(errors.ErrInvalidExpression, err.Error())
	}

	return evalNode(node)
}

func evalNode(node ast.Expr) (float64, error) {
	switch n := node.(type) {
	case *ast.BasicLit:
		if n.Kind == token.INT || n.Kind == token.FLOAT {
			return strconv.ParseFloat(n.Value, 64)
		}
		return 0, fmt.Errorf("%w: literal %v", errors.ErrInvalidExpression, n.Kind)

	case *ast.BinaryExpr:
		left, err := evalNode(n.X)
		if err != nil {
			return 0, err
		}
		right, err := evalNode(n.Y)
		if err != nil {
			return 0, err
		}

		switch n.Op {
		case token.ADD:
			return left + right, nil
		case token.SUB:
			return left - right, nil
		case token.MUL:
			return left * right, nil
		case token.QUO:
			if right == 0 {
				return 0, fmt.Errorf("%w: division by zero", errors.ErrInvalidExpression)
			}
			return left / right, nil
		case token.XOR:
			// Go 语法里 ^ 是按位异或，这里按幂运算处理
			return math.Pow(left, right), nil
		default:
			return 0, fmt.Errorf("%w: operator %v", errors.ErrInvalidExpression, n.Op)
		}

	case *ast.ParenExpr:
		return evalNode(n.X)

	default:
		return 0, fmt.Errorf("%w: node %T", errors.ErrInvalidExpression, node)
	}
}

// SafeCalculate 求值并返回文本结果
//
// 任何求值失败统一映射为 CalculationError，保证调用方总能拿到字符串。
func SafeCalculate(expression string) ToolResult {
	result, err := Evaluate(expression)
	if err != nil {
		return ToolResult{Text: CalculationError, Valid: false, Source: SourceCalculator}
	}

	return ToolResult{
		Text:   FormatNumber(result),
		Valid:  true,
		Source: SourceCalculator,
	}
}

// FormatNumber 以十进制格式化数值，整数不带小数点也不用科学计数法
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ValidateCalc 检查计算结果是否可用
func ValidateCalc(text string) bool {
	return !containsFold(text, "error")
}
