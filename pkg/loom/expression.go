package loom

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ExpressionNode represents a node in the expression AST
type ExpressionNode interface {
	String() string
	Evaluate(scope TemplateData, helpers HelperRegistry) (interface{}, error)
}

// LiteralNode represents a literal value (string, number, boolean)
type LiteralNode struct {
	Value interface{}
}

func (n *LiteralNode) String() string {
	if str, ok := n.Value.(string); ok {
		return fmt.Sprintf("Literal(%q)", str)
	}
	return fmt.Sprintf("Literal(%v)", n.Value)
}

func (n *LiteralNode) Evaluate(scope TemplateData, helpers HelperRegistry) (interface{}, error) {
	return n.Value, nil
}

// VariableNode represents a bare variable reference. Dotted and indexed
// chains are parsed into FieldAccessNode/IndexAccessNode, so the name here
// is always a single identifier. A missing name resolves to nil, not an
// error; operations on the nil decide whether evaluation fails.
type VariableNode struct {
	Name string
}

func (n *VariableNode) String() string {
	return fmt.Sprintf("Variable(%s)", n.Name)
}

func (n *VariableNode) Evaluate(scope TemplateData, helpers HelperRegistry) (interface{}, error) {
	if scope == nil {
		return nil, nil
	}
	return scope[n.Name], nil
}

// BinaryOpNode represents a binary operation
type BinaryOpNode struct {
	Left     ExpressionNode
	Operator string
	Right    ExpressionNode
}

func (n *BinaryOpNode) String() string {
	return fmt.Sprintf("BinaryOp(%s %s %s)", n.Left.String(), n.Operator, n.Right.String())
}

func (n *BinaryOpNode) Evaluate(scope TemplateData, helpers HelperRegistry) (interface{}, error) {
	leftVal, err := n.Left.Evaluate(scope, helpers)
	if err != nil {
		return nil, err
	}

	rightVal, err := n.Right.Evaluate(scope, helpers)
	if err != nil {
		return nil, err
	}

	return evaluateBinaryOperation(leftVal, n.Operator, rightVal)
}

// UnaryOpNode represents a unary operation
type UnaryOpNode struct {
	Operator string
	Operand  ExpressionNode
}

func (n *UnaryOpNode) String() string {
	return fmt.Sprintf("UnaryOp(%s %s)", n.Operator, n.Operand.String())
}

func (n *UnaryOpNode) Evaluate(scope TemplateData, helpers HelperRegistry) (interface{}, error) {
	operandVal, err := n.Operand.Evaluate(scope, helpers)
	if err != nil {
		return nil, err
	}

	switch n.Operator {
	case "!":
		return !isTruthy(operandVal), nil
	case "-":
		return evaluateUnaryMinus(operandVal)
	case "+":
		return evaluateUnaryPlus(operandVal)
	default:
		return nil, fmt.Errorf("unknown unary operator: %s", n.Operator)
	}
}

// FieldAccessNode represents field access (obj.field)
type FieldAccessNode struct {
	Object ExpressionNode
	Field  string
}

func (n *FieldAccessNode) String() string {
	return fmt.Sprintf("FieldAccess(%s.%s)", n.Object.String(), n.Field)
}

func (n *FieldAccessNode) Evaluate(scope TemplateData, helpers HelperRegistry) (interface{}, error) {
	obj, err := n.Object.Evaluate(scope, helpers)
	if err != nil {
		return nil, err
	}
	return accessMapField(obj, n.Field), nil
}

// IndexAccessNode represents index access (obj[index])
type IndexAccessNode struct {
	Object ExpressionNode
	Index  ExpressionNode
}

func (n *IndexAccessNode) String() string {
	return fmt.Sprintf("IndexAccess(%s[%s])", n.Object.String(), n.Index.String())
}

func (n *IndexAccessNode) Evaluate(scope TemplateData, helpers HelperRegistry) (interface{}, error) {
	obj, err := n.Object.Evaluate(scope, helpers)
	if err != nil {
		return nil, err
	}

	indexVal, err := n.Index.Evaluate(scope, helpers)
	if err != nil {
		return nil, err
	}

	switch idx := indexVal.(type) {
	case int:
		return accessArrayIndex(obj, idx), nil
	case string:
		return accessMapField(obj, idx), nil
	case float64:
		return accessArrayIndex(obj, int(idx)), nil
	default:
		return nil, fmt.Errorf("invalid index type: %T", indexVal)
	}
}

// FunctionCallNode represents a helper call. The call target is resolved
// against the scope first (a caller may bind a callable directly in data;
// scope wins on name collision), then against the helper registry.
type FunctionCallNode struct {
	Name string
	Args []ExpressionNode
}

func (n *FunctionCallNode) String() string {
	args := make([]string, len(n.Args))
	for i, arg := range n.Args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("FunctionCall(%s, [%s])", n.Name, strings.Join(args, ", "))
}

func (n *FunctionCallNode) Evaluate(scope TemplateData, helpers HelperRegistry) (result interface{}, err error) {
	args := make([]interface{}, len(n.Args))
	for i, arg := range n.Args {
		val, err := arg.Evaluate(scope, helpers)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate argument %d for helper %s: %w", i, n.Name, err)
		}
		args[i] = val
	}

	// A panicking helper fails the expression, never the render call
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = NewHelperError(n.Name, args, RecoverError(r))
		}
	}()

	if scope != nil {
		if bound, ok := scope[n.Name]; ok {
			if fn, ok := callableFrom(bound); ok {
				return fn(args...)
			}
			return nil, fmt.Errorf("%s is not callable", n.Name)
		}
	}

	if helpers != nil {
		if helper, ok := helpers.Get(n.Name); ok {
			return helper.Call(args...)
		}
	}

	return nil, fmt.Errorf("unknown helper: %s", n.Name)
}

// callableFrom extracts a callable from a scope-bound value
func callableFrom(v interface{}) (HelperFunc, bool) {
	switch fn := v.(type) {
	case HelperFunc:
		return fn, true
	case func(args ...interface{}) (interface{}, error):
		return fn, true
	case Helper:
		return fn.Call, true
	case func(args ...interface{}) interface{}:
		return func(args ...interface{}) (interface{}, error) {
			return fn(args...), nil
		}, true
	}
	return nil, false
}

// ExpressionToken represents a token in an expression
type ExpressionToken struct {
	Type  ExpressionTokenType
	Value string
	Pos   int
}

type ExpressionTokenType int

const (
	ExprTokenIdentifier ExpressionTokenType = iota
	ExprTokenNumber
	ExprTokenString
	ExprTokenOperator
	ExprTokenLeftParen
	ExprTokenRightParen
	ExprTokenComma
	ExprTokenEOF
	ExprTokenInvalid
)

var (
	// Regular expressions for tokenizing expressions
	identifierRegex  = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*`)
	exprNumberRegex  = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?`)
	stringRegex      = regexp.MustCompile(`^"([^"\\]|\\.)*"`)
	singleQuoteRegex = regexp.MustCompile(`^'([^'\\]|\\.)*'`)
	// Two-character operators must match before their one-character prefixes
	operatorRegex = regexp.MustCompile(`^(&&|\|\||==|!=|<=|>=|\+|\-|\*|\/|\%|\&|\||\!|<|>)`)
)

// TokenizeExpression tokenizes an expression string
func TokenizeExpression(expr string) ([]ExpressionToken, error) {
	var tokens []ExpressionToken
	pos := 0

	for pos < len(expr) {
		// Skip whitespace
		if expr[pos] == ' ' || expr[pos] == '\t' || expr[pos] == '\n' || expr[pos] == '\r' {
			pos++
			continue
		}

		remaining := expr[pos:]

		// Identifiers (variables, helper names, keywords)
		if match := identifierRegex.FindString(remaining); match != "" {
			tokens = append(tokens, ExpressionToken{
				Type:  ExprTokenIdentifier,
				Value: match,
				Pos:   pos,
			})
			pos += len(match)
			continue
		}

		// Numbers
		if match := exprNumberRegex.FindString(remaining); match != "" {
			tokens = append(tokens, ExpressionToken{
				Type:  ExprTokenNumber,
				Value: match,
				Pos:   pos,
			})
			pos += len(match)
			continue
		}

		// Double-quoted strings
		if match := stringRegex.FindString(remaining); match != "" {
			value := match[1 : len(match)-1]
			value = strings.ReplaceAll(value, `\"`, `"`)
			value = strings.ReplaceAll(value, `\\`, `\`)
			tokens = append(tokens, ExpressionToken{
				Type:  ExprTokenString,
				Value: value,
				Pos:   pos,
			})
			pos += len(match)
			continue
		}

		// Single-quoted strings
		if match := singleQuoteRegex.FindString(remaining); match != "" {
			value := match[1 : len(match)-1]
			value = strings.ReplaceAll(value, `\'`, `'`)
			value = strings.ReplaceAll(value, `\\`, `\`)
			tokens = append(tokens, ExpressionToken{
				Type:  ExprTokenString,
				Value: value,
				Pos:   pos,
			})
			pos += len(match)
			continue
		}

		// Operators
		if match := operatorRegex.FindString(remaining); match != "" {
			tokens = append(tokens, ExpressionToken{
				Type:  ExprTokenOperator,
				Value: match,
				Pos:   pos,
			})
			pos += len(match)
			continue
		}

		// Parentheses
		if expr[pos] == '(' {
			tokens = append(tokens, ExpressionToken{
				Type:  ExprTokenLeftParen,
				Value: "(",
				Pos:   pos,
			})
			pos++
			continue
		}

		if expr[pos] == ')' {
			tokens = append(tokens, ExpressionToken{
				Type:  ExprTokenRightParen,
				Value: ")",
				Pos:   pos,
			})
			pos++
			continue
		}

		// Commas
		if expr[pos] == ',' {
			tokens = append(tokens, ExpressionToken{
				Type:  ExprTokenComma,
				Value: ",",
				Pos:   pos,
			})
			pos++
			continue
		}

		// Dots: either a leading-dot decimal or field access
		if expr[pos] == '.' {
			if pos+1 < len(expr) && expr[pos+1] >= '0' && expr[pos+1] <= '9' {
				if match := leadingDotNumberRegex.FindString(remaining); match != "" {
					tokens = append(tokens, ExpressionToken{
						Type:  ExprTokenNumber,
						Value: "0" + match,
						Pos:   pos,
					})
					pos += len(match)
					continue
				}
			}
			tokens = append(tokens, ExpressionToken{
				Type:  ExprTokenOperator,
				Value: ".",
				Pos:   pos,
			})
			pos++
			continue
		}

		// Brackets for array/map access
		if expr[pos] == '[' {
			tokens = append(tokens, ExpressionToken{
				Type:  ExprTokenOperator,
				Value: "[",
				Pos:   pos,
			})
			pos++
			continue
		}

		if expr[pos] == ']' {
			tokens = append(tokens, ExpressionToken{
				Type:  ExprTokenOperator,
				Value: "]",
				Pos:   pos,
			})
			pos++
			continue
		}

		return nil, NewParseError("unexpected character", string(expr[pos]), pos)
	}

	tokens = append(tokens, ExpressionToken{
		Type: ExprTokenEOF,
		Pos:  pos,
	})

	return tokens, nil
}

var leadingDotNumberRegex = regexp.MustCompile(`^\.[0-9]+`)

// ParseExpression parses an expression string into an AST
func ParseExpression(expr string) (ExpressionNode, error) {
	return parseExpressionWithMode(expr, false)
}

// ParseExpressionStrict parses an expression string into an AST and requires
// full token consumption. Validation uses it to reject trailing tokens such
// as "name name2".
func ParseExpressionStrict(expr string) (ExpressionNode, error) {
	return parseExpressionWithMode(expr, true)
}

func parseExpressionWithMode(expr string, requireEOF bool) (ExpressionNode, error) {
	tokens, err := TokenizeExpression(expr)
	if err != nil {
		return nil, err
	}

	parser := &ExpressionParser{
		tokens: tokens,
		pos:    0,
	}

	node, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}

	if requireEOF && parser.current().Type != ExprTokenEOF {
		token := parser.current()
		return nil, NewParseError("unexpected trailing token", token.Value, token.Pos)
	}

	return node, nil
}

// ExpressionParser parses expressions into AST nodes
type ExpressionParser struct {
	tokens []ExpressionToken
	pos    int
}

func (p *ExpressionParser) current() ExpressionToken {
	if p.pos >= len(p.tokens) {
		return ExpressionToken{Type: ExprTokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *ExpressionParser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

// parseExpression parses a complete expression
func (p *ExpressionParser) parseExpression() (ExpressionNode, error) {
	return p.parseLogicalOr()
}

// parseLogicalOr parses logical OR expressions (lowest precedence)
func (p *ExpressionParser) parseLogicalOr() (ExpressionNode, error) {
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}

	for p.current().Type == ExprTokenOperator && (p.current().Value == "||" || p.current().Value == "|") {
		p.advance()
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryOpNode{Left: left, Operator: "|", Right: right}
	}

	return left, nil
}

// parseLogicalAnd parses logical AND expressions
func (p *ExpressionParser) parseLogicalAnd() (ExpressionNode, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}

	for p.current().Type == ExprTokenOperator && (p.current().Value == "&&" || p.current().Value == "&") {
		p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &BinaryOpNode{Left: left, Operator: "&", Right: right}
	}

	return left, nil
}

// parseEquality parses equality expressions (==, !=)
func (p *ExpressionParser) parseEquality() (ExpressionNode, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	for p.current().Type == ExprTokenOperator && (p.current().Value == "==" || p.current().Value == "!=") {
		op := p.current().Value
		p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &BinaryOpNode{Left: left, Operator: op, Right: right}
	}

	return left, nil
}

// parseComparison parses comparison expressions (<, >, <=, >=)
func (p *ExpressionParser) parseComparison() (ExpressionNode, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for p.current().Type == ExprTokenOperator &&
		(p.current().Value == "<" || p.current().Value == ">" ||
			p.current().Value == "<=" || p.current().Value == ">=") {
		op := p.current().Value
		p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &BinaryOpNode{Left: left, Operator: op, Right: right}
	}

	return left, nil
}

// parseTerm parses addition and subtraction (lower precedence)
func (p *ExpressionParser) parseTerm() (ExpressionNode, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for p.current().Type == ExprTokenOperator && (p.current().Value == "+" || p.current().Value == "-") {
		op := p.current().Value
		p.advance()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &BinaryOpNode{Left: left, Operator: op, Right: right}
	}

	return left, nil
}

// parseFactor parses multiplication, division, and modulo (higher precedence)
func (p *ExpressionParser) parseFactor() (ExpressionNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.current().Type == ExprTokenOperator &&
		(p.current().Value == "*" || p.current().Value == "/" || p.current().Value == "%") {
		op := p.current().Value
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryOpNode{Left: left, Operator: op, Right: right}
	}

	return left, nil
}

// parseUnary parses unary expressions (!, -, +)
func (p *ExpressionParser) parseUnary() (ExpressionNode, error) {
	if p.current().Type == ExprTokenOperator &&
		(p.current().Value == "!" || p.current().Value == "-" || p.current().Value == "+") {
		op := p.current().Value
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOpNode{Operator: op, Operand: operand}, nil
	}

	return p.parseFieldAccess()
}

// parseFieldAccess parses field access expressions (obj.field, obj[key])
func (p *ExpressionParser) parseFieldAccess() (ExpressionNode, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		if p.current().Type == ExprTokenOperator && p.current().Value == "." {
			p.advance()
			if p.current().Type != ExprTokenIdentifier {
				return nil, NewParseError("expected identifier after '.'", p.current().Value, p.current().Pos)
			}
			field := p.current().Value
			p.advance()
			left = &FieldAccessNode{Object: left, Field: field}
		} else if p.current().Type == ExprTokenOperator && p.current().Value == "[" {
			p.advance()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if p.current().Type != ExprTokenOperator || p.current().Value != "]" {
				return nil, NewParseError("expected ']' after index", p.current().Value, p.current().Pos)
			}
			p.advance()
			left = &IndexAccessNode{Object: left, Index: index}
		} else {
			break
		}
	}

	return left, nil
}

// parsePrimary parses primary expressions (literals, variables, parenthesized expressions)
func (p *ExpressionParser) parsePrimary() (ExpressionNode, error) {
	token := p.current()

	switch token.Type {
	case ExprTokenNumber:
		p.advance()
		if intVal, err := strconv.Atoi(token.Value); err == nil {
			return &LiteralNode{Value: intVal}, nil
		}
		if floatVal, err := strconv.ParseFloat(token.Value, 64); err == nil {
			return &LiteralNode{Value: floatVal}, nil
		}
		return nil, NewParseError("invalid number", token.Value, token.Pos)

	case ExprTokenString:
		p.advance()
		return &LiteralNode{Value: token.Value}, nil

	case ExprTokenIdentifier:
		p.advance()
		if token.Value == "true" {
			return &LiteralNode{Value: true}, nil
		}
		if token.Value == "false" {
			return &LiteralNode{Value: false}, nil
		}
		if token.Value == "null" || token.Value == "nil" {
			return &LiteralNode{Value: nil}, nil
		}

		if p.current().Type == ExprTokenLeftParen {
			return p.parseHelperCall(token.Value)
		}

		return &VariableNode{Name: token.Value}, nil

	case ExprTokenLeftParen:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.current().Type != ExprTokenRightParen {
			return nil, NewParseError("expected ')' after expression", p.current().Value, p.current().Pos)
		}
		p.advance()
		return expr, nil

	default:
		return nil, NewParseError("unexpected token", token.Value, token.Pos)
	}
}

// parseHelperCall parses a helper call
func (p *ExpressionParser) parseHelperCall(name string) (ExpressionNode, error) {
	if p.current().Type != ExprTokenLeftParen {
		return nil, NewParseError("expected '(' after helper name", p.current().Value, p.current().Pos)
	}
	p.advance()

	var args []ExpressionNode

	if p.current().Type == ExprTokenRightParen {
		p.advance()
		return &FunctionCallNode{Name: name, Args: args}, nil
	}

	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		if p.current().Type == ExprTokenComma {
			p.advance()
			continue
		}

		if p.current().Type == ExprTokenRightParen {
			p.advance()
			break
		}

		return nil, NewParseError("expected ',' or ')' in helper arguments", p.current().Value, p.current().Pos)
	}

	return &FunctionCallNode{Name: name, Args: args}, nil
}

// evaluateBinaryOperation evaluates a binary operation between two values
func evaluateBinaryOperation(left interface{}, operator string, right interface{}) (interface{}, error) {
	switch operator {
	case "+":
		return evaluateAddition(left, right)
	case "-":
		return evaluateSubtraction(left, right)
	case "*":
		return evaluateMultiplication(left, right)
	case "/":
		return evaluateDivision(left, right)
	case "%":
		return evaluateModulo(left, right)
	case "==":
		return evaluateEquals(left, right), nil
	case "!=":
		return !evaluateEquals(left, right), nil
	case "<":
		return evaluateLessThan(left, right)
	case ">":
		return evaluateGreaterThan(left, right)
	case "<=":
		return evaluateLessEqual(left, right)
	case ">=":
		return evaluateGreaterEqual(left, right)
	case "&":
		return isTruthy(left) && isTruthy(right), nil
	case "|":
		return isTruthy(left) || isTruthy(right), nil
	default:
		return nil, fmt.Errorf("unknown binary operator: %s", operator)
	}
}

// Helper functions for arithmetic operations
func evaluateAddition(left, right interface{}) (interface{}, error) {
	// Either operand being a string makes + concatenation
	if leftStr, ok := left.(string); ok {
		return leftStr + FormatValue(right), nil
	}
	if rightStr, ok := right.(string); ok {
		return FormatValue(left) + rightStr, nil
	}

	leftNum, leftOk := toFloat64(left)
	rightNum, rightOk := toFloat64(right)

	if !leftOk || !rightOk {
		return nil, fmt.Errorf("cannot add %T and %T", left, right)
	}

	// Return int if both operands were integers
	if isInteger(left) && isInteger(right) {
		return int(leftNum + rightNum), nil
	}
	return leftNum + rightNum, nil
}

func evaluateSubtraction(left, right interface{}) (interface{}, error) {
	leftNum, leftOk := toFloat64(left)
	rightNum, rightOk := toFloat64(right)

	if !leftOk || !rightOk {
		return nil, fmt.Errorf("cannot subtract %T and %T", left, right)
	}

	if isInteger(left) && isInteger(right) {
		return int(leftNum - rightNum), nil
	}
	return leftNum - rightNum, nil
}

func evaluateMultiplication(left, right interface{}) (interface{}, error) {
	leftNum, leftOk := toFloat64(left)
	rightNum, rightOk := toFloat64(right)

	if !leftOk || !rightOk {
		return nil, fmt.Errorf("cannot multiply %T and %T", left, right)
	}

	if isInteger(left) && isInteger(right) {
		return int(leftNum * rightNum), nil
	}
	return leftNum * rightNum, nil
}

func evaluateDivision(left, right interface{}) (interface{}, error) {
	leftNum, leftOk := toFloat64(left)
	rightNum, rightOk := toFloat64(right)

	if !leftOk || !rightOk {
		return nil, fmt.Errorf("cannot divide %T and %T", left, right)
	}

	if rightNum == 0 {
		return nil, fmt.Errorf("division by zero")
	}

	result := leftNum / rightNum
	if isInteger(left) && isInteger(right) && result == float64(int(result)) {
		return int(result), nil
	}
	return result, nil
}

func evaluateModulo(left, right interface{}) (interface{}, error) {
	leftInt, leftOk := toInt(left)
	rightInt, rightOk := toInt(right)

	if !leftOk || !rightOk {
		return nil, fmt.Errorf("modulo operation requires integers, got %T and %T", left, right)
	}

	if rightInt == 0 {
		return nil, fmt.Errorf("modulo by zero")
	}

	return leftInt % rightInt, nil
}

// Helper functions for comparison operations
func evaluateEquals(left, right interface{}) bool {
	if left == nil && right == nil {
		return true
	}
	if left == nil || right == nil {
		return false
	}

	// Numbers compare by value regardless of concrete type
	if leftNum, leftOk := toFloat64(left); leftOk {
		if rightNum, rightOk := toFloat64(right); rightOk {
			return leftNum == rightNum
		}
	}

	return left == right
}

func evaluateLessThan(left, right interface{}) (interface{}, error) {
	leftNum, leftOk := toFloat64(left)
	rightNum, rightOk := toFloat64(right)

	if !leftOk || !rightOk {
		return nil, fmt.Errorf("cannot compare %T and %T", left, right)
	}

	return leftNum < rightNum, nil
}

func evaluateGreaterThan(left, right interface{}) (interface{}, error) {
	leftNum, leftOk := toFloat64(left)
	rightNum, rightOk := toFloat64(right)

	if !leftOk || !rightOk {
		return nil, fmt.Errorf("cannot compare %T and %T", left, right)
	}

	return leftNum > rightNum, nil
}

func evaluateLessEqual(left, right interface{}) (interface{}, error) {
	leftNum, leftOk := toFloat64(left)
	rightNum, rightOk := toFloat64(right)

	if !leftOk || !rightOk {
		return nil, fmt.Errorf("cannot compare %T and %T", left, right)
	}

	return leftNum <= rightNum, nil
}

func evaluateGreaterEqual(left, right interface{}) (interface{}, error) {
	leftNum, leftOk := toFloat64(left)
	rightNum, rightOk := toFloat64(right)

	if !leftOk || !rightOk {
		return nil, fmt.Errorf("cannot compare %T and %T", left, right)
	}

	return leftNum >= rightNum, nil
}

// Utility functions for type conversion and checks
func toFloat64(val interface{}) (float64, bool) {
	switch v := val.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

func toInt(val interface{}) (int, bool) {
	switch v := val.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint:
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		return int(v), true
	case float32:
		if v == float32(int(v)) {
			return int(v), true
		}
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}

func isInteger(val interface{}) bool {
	switch val.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}

// isTruthy implements host truthiness: nil and false are falsy, zero numbers
// are falsy, empty strings and empty collections are falsy, everything else
// is truthy.
func isTruthy(val interface{}) bool {
	if val == nil {
		return false
	}

	if b, ok := val.(bool); ok {
		return b
	}
	if num, ok := toFloat64(val); ok {
		return num != 0
	}

	switch v := val.(type) {
	case string:
		return v != ""
	case []interface{}:
		return len(v) > 0
	case TemplateData:
		return len(v) > 0
	case map[string]interface{}:
		return len(v) > 0
	}

	if n, ok := collectionLen(val); ok {
		return n > 0
	}

	return true
}

// Helper functions for unary operations
func evaluateUnaryMinus(operand interface{}) (interface{}, error) {
	num, ok := toFloat64(operand)
	if !ok {
		return nil, fmt.Errorf("cannot apply unary minus to %T", operand)
	}

	if isInteger(operand) {
		return -int(num), nil
	}
	return -num, nil
}

func evaluateUnaryPlus(operand interface{}) (interface{}, error) {
	num, ok := toFloat64(operand)
	if !ok {
		return nil, fmt.Errorf("cannot apply unary plus to %T", operand)
	}

	if isInteger(operand) {
		return int(num), nil
	}
	return num, nil
}
