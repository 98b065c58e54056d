package services

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/desertthunder/libget/internal/shared"
)

// requestError maps a transport failure to [shared.ErrTimeout] or [shared.ErrNetwork].
func requestError(op string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %s: %v", shared.ErrTimeout, op, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %v", shared.ErrNetwork, op, err)
}
