package worker

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"coachrelay/internal/gateway/evolution"
	"coachrelay/internal/observability"
	"coachrelay/internal/util"
)

type Gateway interface {
	SendText(ctx context.Context, number, text string) (int, error)
	SendDocument(ctx context.Context, number, caption string, att evolution.Attachment) (int, error)
}

// MessageSender is what the jobs see: one attempt, boolean outcome, no retry.
type MessageSender interface {
	Send(ctx context.Context, phoneRaw, text string, att *evolution.Attachment) bool
}

// Sender is the shared send path: normalize the phone, wait for a rate token,
// call the gateway behind the circuit breaker. A false return means "this
// attempt failed"; callers decide what that costs them.
type Sender struct {
	Gateway     Gateway
	CountryCode string
	Limiter     *rate.Limiter
	Breaker     *gobreaker.CircuitBreaker
}

func (s *Sender) Send(ctx context.Context, phoneRaw, text string, att *evolution.Attachment) bool {
	number := util.NormalizePhone(phoneRaw, s.CountryCode)
	if number == "" {
		slog.Warn("send skipped, phone has no digits", "phone", phoneRaw)
		return false
	}

	if s.Limiter != nil {
		waitCtx, cancelWait := context.WithTimeout(ctx, 2*time.Second)
		err := s.Limiter.Wait(waitCtx)
		cancelWait()
		if err != nil {
			observability.GatewaySend.WithLabelValues(kindLabel(att), "rate_limited_local").Inc()
			return false
		}
	}

	start := time.Now()
	status, err := s.executeWithBreaker(ctx, number, text, att)

	if err != nil {
		result := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = "cb_open"
		}
		observability.GatewaySend.WithLabelValues(kindLabel(att), result).Inc()
		slog.Error("gateway send failed", "number", number, "kind", kindLabel(att),
			"http_status", strconv.Itoa(status), "err", err)
		return false
	}

	observability.GatewaySend.WithLabelValues(kindLabel(att), "ok").Inc()
	observability.GatewayLatency.Observe(time.Since(start).Seconds())
	return true
}

func (s *Sender) executeWithBreaker(ctx context.Context, number, text string, att *evolution.Attachment) (int, error) {
	call := func() (any, error) {
		var status int
		var err error
		if att != nil {
			status, err = s.Gateway.SendDocument(ctx, number, text, *att)
		} else {
			status, err = s.Gateway.SendText(ctx, number, text)
		}
		if err != nil {
			return status, gatewayCallError{err: err, httpStatus: status}
		}
		return status, nil
	}

	if s.Breaker == nil {
		res, err := call()
		return unwrapCall(res, err)
	}
	res, err := s.Breaker.Execute(call)
	return unwrapCall(res, err)
}

func unwrapCall(res any, err error) (int, error) {
	if err != nil {
		var gce gatewayCallError
		if errors.As(err, &gce) {
			return gce.httpStatus, gce.err
		}
		return 0, err
	}
	return res.(int), nil
}

func kindLabel(att *evolution.Attachment) string {
	if att != nil {
		return "document"
	}
	return "text"
}

type gatewayCallError struct {
	err        error
	httpStatus int
}

func (e gatewayCallError) Error() string { return e.err.Error() }
func (e gatewayCallError) Unwrap() error { return e.err }
