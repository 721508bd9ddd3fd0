package handler

import (
	"context"
	"strconv"
	"strings"

	"smartdeals/internal/console"
	"smartdeals/pkg/contextx"
)

const journalLimit = 15

type refresher interface {
	IsRunning() bool
}

type Handler struct {
	console   *console.Console
	refresher refresher
}

func New(c *console.Console, r refresher) *Handler {
	return &Handler{
		console:   c,
		refresher: r,
	}
}

// operatorContext tags console actions with the Telegram user who sent them.
func operatorContext(ctx context.Context, userID int64) context.Context {
	return contextx.WithOperator(ctx, contextx.Operator("telegram:"+strconv.FormatInt(userID, 10)))
}

// payload returns the text after the command word.
func payload(text string) string {
	text = strings.TrimSpace(text)

	i := strings.IndexAny(text, " \n")
	if i < 0 {
		return ""
	}

	return strings.TrimSpace(text[i+1:])
}

// splitField cuts "<field> <value>" where value may span lines.
func splitField(args string) (string, string) {
	i := strings.IndexAny(args, " \n")
	if i < 0 {
		return args, ""
	}

	return args[:i], strings.TrimSpace(args[i+1:])
}
