package challenge

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/libget/internal/models"
	"github.com/desertthunder/libget/internal/shared"
)

const (
	// TargetSize is the width in bytes of a SHA-256 digest.
	TargetSize = sha256.Size

	defaultChunkSize = 4096
	// cancellation is polled once per this many hashes
	checkEvery = 1024
)

// SolverOpts configures a [Solver].
type SolverOpts struct {
	Workers   int           // defaults to runtime.NumCPU()
	ChunkSize uint64        // nonces per worker per round
	Deadline  time.Duration // zero means no deadline
	Logger    *log.Logger
}

// Solver finds the smallest nonce satisfying a challenge.
type Solver struct {
	workers   int
	chunkSize uint64
	deadline  time.Duration
	logger    *log.Logger
}

// NewSolver creates a solver, applying defaults for zero options.
func NewSolver(opts SolverOpts) *Solver {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.ChunkSize == 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Solver{
		workers:   opts.Workers,
		chunkSize: opts.ChunkSize,
		deadline:  opts.Deadline,
		logger:    opts.Logger,
	}
}

// Solve parses the challenge target and searches for a nonce.
func (s *Solver) Solve(ctx context.Context, c models.Challenge) (uint64, error) {
	target, err := ParseTarget(c.Target)
	if err != nil {
		return 0, err
	}
	return s.SolveTarget(ctx, c.Prefix, target)
}

// SolveTarget searches for the smallest nonce whose digest is <= target.
// target must be [TargetSize] bytes (see [ParseTarget]).
func (s *Solver) SolveTarget(ctx context.Context, prefix string, target []byte) (uint64, error) {
	if len(target) != TargetSize {
		return 0, fmt.Errorf("%w: target must be %d bytes, got %d", shared.ErrInvalidChallenge, TargetSize, len(target))
	}

	if s.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deadline)
		defer cancel()
	}

	started := time.Now()
	window := s.chunkSize * uint64(s.workers)

	for base := uint64(0); ; base += window {
		if err := ctx.Err(); err != nil {
			return 0, solveError(err)
		}

		nonce, found, err := s.round(ctx, prefix, target, base)
		if err != nil {
			return 0, solveError(err)
		}
		if found {
			s.logger.Debug("challenge solved", "nonce", nonce, "workers", s.workers, "elapsed", time.Since(started))
			return nonce, nil
		}

		if base > math.MaxUint64-2*window {
			return 0, fmt.Errorf("%w: nonce space exhausted", shared.ErrInvalidChallenge)
		}
	}
}

// round scans [base, base+workers*chunk) and returns the smallest hit in that window.
func (s *Solver) round(ctx context.Context, prefix string, target []byte, base uint64) (uint64, bool, error) {
	var best atomic.Uint64
	best.Store(math.MaxUint64)

	g, gctx := errgroup.WithContext(ctx)
	for w := range s.workers {
		start := base + uint64(w)*s.chunkSize
		end := start + s.chunkSize

		g.Go(func() error {
			buf := make([]byte, 0, len(prefix)+20)
			buf = append(buf, prefix...)

			for n := start; n < end; n++ {
				if n > best.Load() {
					return nil
				}
				if (n-start)%checkEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}

				if matches(buf, n, target) {
					storeMin(&best, n)
					return nil
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, false, err
	}

	n := best.Load()
	return n, n != math.MaxUint64, nil
}

// ParseTarget decodes a hex target and left-pads it to [TargetSize] bytes.
func ParseTarget(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" {
		return nil, fmt.Errorf("%w: empty target", shared.ErrInvalidChallenge)
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: target is not hex: %v", shared.ErrInvalidChallenge, err)
	}

	raw = bytes.TrimLeft(raw, "\x00")
	if len(raw) > TargetSize {
		return nil, fmt.Errorf("%w: target wider than %d bytes", shared.ErrInvalidChallenge, TargetSize)
	}

	target := make([]byte, TargetSize)
	copy(target[TargetSize-len(raw):], raw)
	return target, nil
}

// Verify reports whether nonce solves the challenge.
func Verify(prefix string, nonce uint64, target []byte) bool {
	if len(target) != TargetSize {
		return false
	}
	return matches([]byte(prefix), nonce, target)
}

// matches hashes buf (holding only the prefix) extended with nonce.
func matches(buf []byte, nonce uint64, target []byte) bool {
	sum := sha256.Sum256(strconv.AppendUint(buf, nonce, 10))
	return bytes.Compare(sum[:], target) <= 0
}

func storeMin(v *atomic.Uint64, n uint64) {
	for {
		cur := v.Load()
		if n >= cur || v.CompareAndSwap(cur, n) {
			return
		}
	}
}

func solveError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", shared.ErrSolverTimeout, err)
	}
	return fmt.Errorf("challenge solve: %w", err)
}
