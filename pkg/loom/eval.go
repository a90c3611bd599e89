package loom

import (
	"go.uber.org/zap"
)

// EvaluateExpression parses and evaluates one expression against a scope
// and helper registry.
func EvaluateExpression(expr string, scope TemplateData, helpers HelperRegistry) (interface{}, error) {
	node, err := ParseExpression(expr)
	if err != nil {
		return nil, NewEvaluationError(expr, err)
	}
	value, err := node.Evaluate(scope, helpers)
	if err != nil {
		return nil, NewEvaluationError(expr, err)
	}
	return value, nil
}

// evalSilent evaluates an expression, degrading every failure (including
// panics) to nil. Failures surface only at debug level.
func (s *renderState) evalSilent(expr string) (result interface{}) {
	defer func() {
		if r := recover(); r != nil {
			GetLogger().Debug("expression evaluation panicked",
				zap.String("expression", expr),
				zap.Any("panic", r))
			result = nil
		}
	}()

	value, err := EvaluateExpression(expr, s.scope, s.helpers)
	if err != nil {
		GetLogger().Debug("expression evaluation failed",
			zap.String("expression", expr),
			zap.Error(err))
		return nil
	}

	if IsDebugEnabled() {
		GetLogger().Debug("expression evaluated",
			zap.String("expression", expr),
			zap.Any("result", value))
	}
	return value
}

// evalCondition evaluates a conditional header to a truth value.
func (s *renderState) evalCondition(expr string) bool {
	return isTruthy(s.evalSilent(expr))
}
