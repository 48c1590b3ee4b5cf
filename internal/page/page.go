package page

import (
	"context"
	"sync"

	"roomadmin/internal/auth"
	"roomadmin/internal/client"

	"go.uber.org/zap"
)

// Gate is the session check that guards mutating actions.
type Gate interface {
	Check(ctx context.Context) error
	HandleUnauthorized(ctx context.Context) string
}

// banner 页面级可关闭错误提示
type banner struct {
	mu  sync.Mutex
	msg string
}

func (b *banner) set(msg string) {
	b.mu.Lock()
	b.msg = msg
	b.mu.Unlock()
}

func (b *banner) get() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.msg
}

// guard runs the credential check; a failure is shown on the banner and no
// request is made.
func guard(ctx context.Context, gate Gate, b *banner, logger *zap.Logger, action string) error {
	err := gate.Check(ctx)
	if err == nil {
		return nil
	}
	logger.Warn("Action blocked without valid credential", zap.String("action", action), zap.Error(err))
	b.set(auth.Message(err))
	return err
}

// surface routes a failure to the banner; a 401 also runs the session's
// unauthorized flow.
func surface(ctx context.Context, gate Gate, b *banner, logger *zap.Logger, action string, err error) {
	if err == nil {
		return
	}
	if client.IsUnauthorized(err) {
		b.set(gate.HandleUnauthorized(ctx))
		return
	}
	logger.Error("Page action failed", zap.String("action", action), zap.Error(err))
	b.set(client.MessageOf(err))
}
