package engine

import (
	"errors"

	"github.com/dshills/keystorm/internal/engine/buffer"
	"github.com/dshills/keystorm/internal/engine/history"
	"github.com/dshills/keystorm/internal/engine/tracking"
)

// Sentinel errors surfaced by the engine facade. The bounds errors
// mirror the buffer's; callers that clamp instead of failing should do
// so before reaching the engine.
var (
	ErrOffsetOutOfRange = buffer.ErrOffsetOutOfRange
	ErrRangeInvalid     = buffer.ErrRangeInvalid
	ErrEditsOverlap     = buffer.ErrEditsOverlap
	ErrNothingToUndo    = history.ErrNothingToUndo
	ErrNothingToRedo    = history.ErrNothingToRedo
	ErrSnapshotNotFound = tracking.ErrSnapshotNotFound
	ErrRevisionNotFound = errors.New("revision not found")
	ErrReadOnly         = errors.New("engine is read-only")
)
