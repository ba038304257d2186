package services

import (
	"context"
	"errors"

	"github.com/algospace/algospace-api/pkg/circuitbreaker"
	"github.com/algospace/algospace-api/pkg/coderunner"
	"github.com/algospace/algospace-api/pkg/logger"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedLanguage  = errors.New("unsupported language")
	ErrExecutorUnavailable  = errors.New("code execution service unavailable")
	ErrExecutionInterrupted = errors.New("code execution interrupted")
)

// ExecutionService runs code snippets from collaboration rooms against the
// remote sandbox. It satisfies the room Runner contract.
type ExecutionService struct {
	runner  *coderunner.Client
	breaker *gobreaker.CircuitBreaker
}

func NewExecutionService(runner *coderunner.Client) *ExecutionService {
	return &ExecutionService{
		runner:  runner,
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig("code_runner")),
	}
}

// Run executes the snippet and returns its combined output and a room-facing
// status string. Compile errors and runtime errors are not Go errors; they
// come back as output with an "error" status.
func (s *ExecutionService) Run(ctx context.Context, language, code string) (string, string, error) {
	if _, ok := coderunner.LanguageID(language); !ok {
		return "", "error", ErrUnsupportedLanguage
	}

	result, err := circuitbreaker.Execute(s.breaker, func() (*coderunner.Result, error) {
		return s.runner.Execute(ctx, language, code, "")
	})
	if err != nil {
		if circuitbreaker.IsCircuitOpen(s.breaker) {
			return "", "error", ErrExecutorUnavailable
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", "error", ErrExecutionInterrupted
		}
		logger.Error("Code execution failed",
			zap.String("language", language),
			zap.Error(err))
		return "", "error", circuitbreaker.FormatError("code_runner", err)
	}

	status := "success"
	// Judge0 status 3 is Accepted; anything above indicates a compile or
	// runtime problem that still produced output for the room.
	if result.Status.ID != 3 {
		status = "error"
	}
	return result.Output(), status, nil
}
