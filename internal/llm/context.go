package llm

import "context"

// PurposeCurriculum labels curriculum generation requests.
const PurposeCurriculum = "curriculum"

type callKey struct{}

// callLabels describe an LLM call for logging and the event log.
type callLabels struct {
	purpose string
	userID  string
}

func labelsFrom(ctx context.Context) callLabels {
	l, _ := ctx.Value(callKey{}).(callLabels)
	return l
}

// WithPurpose labels calls made with ctx by what they are for.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	l := labelsFrom(ctx)
	l.purpose = purpose
	return context.WithValue(ctx, callKey{}, l)
}

// WithUser labels calls made with ctx by the learner they serve.
func WithUser(ctx context.Context, userID string) context.Context {
	l := labelsFrom(ctx)
	l.userID = userID
	return context.WithValue(ctx, callKey{}, l)
}

// PurposeFrom returns the purpose label, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if p := labelsFrom(ctx).purpose; p != "" {
		return p
	}
	return "unknown"
}

// UserFrom returns the user label, or "".
func UserFrom(ctx context.Context) string {
	return labelsFrom(ctx).userID
}
