// Package history keeps committed edit operations for undo and redo.
package history

import (
	"errors"
	"sync"
)

// DefaultDepth is the number of operations kept when no depth is given.
const DefaultDepth = 100

var (
	// ErrNothingToUndo is returned by Undo on an empty history.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrNothingToRedo is returned by Redo when no undone operation is left.
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Operation is an undoable edit.
type Operation interface {
	Redo()
	Undo()
}

// Executor runs an operation and takes ownership of it.
type Executor interface {
	Execute(op Operation)
}

// Stack is a bounded undo/redo history. It is safe for concurrent use.
type Stack struct {
	mu    sync.Mutex
	ops   []Operation
	pos   int // ops[:pos] are done, ops[pos:] are undone
	depth int
}

// NewStack returns a stack holding at most depth operations.
func NewStack(depth int) *Stack {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Stack{depth: depth}
}

// Execute runs op and pushes it, dropping any undone operations.
func (s *Stack) Execute(op Operation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	op.Redo()

	clear(s.ops[s.pos:])
	s.ops = append(s.ops[:s.pos], op)
	if over := len(s.ops) - s.depth; over > 0 {
		clear(s.ops[:over])
		s.ops = s.ops[over:]
	}
	s.pos = len(s.ops)
}

// Undo reverts the most recent operation.
func (s *Stack) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pos == 0 {
		return ErrNothingToUndo
	}
	s.pos--
	s.ops[s.pos].Undo()
	return nil
}

// Redo reapplies the most recently undone operation.
func (s *Stack) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pos == len(s.ops) {
		return ErrNothingToRedo
	}
	s.ops[s.pos].Redo()
	s.pos++
	return nil
}

// Counts returns how many operations can be undone and redone.
func (s *Stack) Counts() (undo, redo int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos, len(s.ops) - s.pos
}

// Clear drops the whole history.
func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.ops)
	s.ops = s.ops[:0]
	s.pos = 0
}
