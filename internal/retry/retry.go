package retry

import (
	"context"
	"time"
)

// Policy 外部调用的重试策略：指数退避，延迟封顶。
// 显式对象替代装饰器写法，方便在调用点复用同一份参数。
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
}

// Default 外部服务共用的策略：3 次尝试，首次退避 4s，倍率 1，封顶 10s
var Default = Policy{
	MaxAttempts: 3,
	BaseDelay:   4 * time.Second,
	Multiplier:  1,
	MaxDelay:    10 * time.Second,
}

// Do 按策略执行 fn，直到成功或尝试次数耗尽。
// 退避期间响应 ctx 取消；返回最后一次的错误。
func (p Policy) Do(ctx context.Context, fn func(context.Context) error) error {
	var lastErr error

	delay := p.BaseDelay
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}

			delay = time.Duration(float64(delay) * p.Multiplier)
			if delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
	}

	return lastErr
}
