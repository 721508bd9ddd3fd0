package contextx

import "context"

// Operator identifies who issued a console action: a terminal user or a bot account.
type Operator string

type contextKeyOperator struct{}

func (o Operator) String() string {
	return string(o)
}

func WithOperator(ctx context.Context, operator Operator) context.Context {
	return context.WithValue(ctx, contextKeyOperator{}, operator)
}

func OperatorFromContext(ctx context.Context) (Operator, error) {
	return valueFromContext[Operator](ctx, contextKeyOperator{}, "operator")
}
