// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package chatflow

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danielhkuo/ai-ceo/logger"
	"github.com/danielhkuo/ai-ceo/quotes"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrSessionNotFound   = errors.New("chat session not found")
)

// QuoteSource writes quotes for a goal.
type QuoteSource interface {
	Generate(goal string) quotes.Quote
}

// Engine drives onboarding sessions through the scripted states.
type Engine struct {
	quotes   QuoteSource
	sessions *SessionStore

	// serializes read-modify-write of a session
	mu sync.Mutex
}

func NewEngine(q QuoteSource, sessions *SessionStore) *Engine {
	return &Engine{quotes: q, sessions: sessions}
}

// Start opens a session at welcome, or straight at result when goal is set.
func (e *Engine) Start(goal string) Session {
	now := e.sessions.now()
	sess := Session{
		ID:        uuid.NewString(),
		State:     StateWelcome,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if goal = strings.TrimSpace(goal); goal != "" {
		sess.State = StateResult
		sess.Goal = goal
		q := e.quotes.Generate(goal)
		sess.Quote = &q
	}
	e.sessions.Put(sess)
	logger.Debug("chat session started", zap.String("session_id", sess.ID), zap.String("state", string(sess.State)))
	return sess
}

func (e *Engine) Get(id string) (Session, error) {
	return e.sessions.Get(id)
}

// Apply performs an action. A rejected action leaves the session unchanged.
func (e *Engine) Apply(id string, a Action) (Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, err := e.sessions.Get(id)
	if err != nil {
		return Session{}, err
	}

	from := sess.State
	next, err := e.transition(sess, a)
	if err != nil {
		logger.Debug("chat action rejected",
			zap.String("session_id", id),
			zap.String("state", string(from)),
			zap.String("action", string(a.Kind)),
			zap.Error(err))
		return sess, err
	}

	now := e.sessions.now()
	next.UpdatedAt = now
	next.History = append(next.History, Turn{From: from, To: next.State, Action: a.Kind, At: now})
	e.sessions.Put(next)
	return next.clone(), nil
}

func (e *Engine) transition(sess Session, a Action) (Session, error) {
	switch a.Kind {
	case ActionNavigate:
		if !canNavigate(sess.State, a.Target) {
			return sess, fmt.Errorf("%w: cannot go from %s to %s", ErrInvalidTransition, sess.State, a.Target)
		}
		if a.Target == StateResult {
			goal := strings.TrimSpace(a.Goal)
			if goal == "" {
				goal = sess.Goal
			}
			if goal == "" {
				return sess, fmt.Errorf("%w: a goal is required", ErrInvalidTransition)
			}
			if _, ok := quotes.LookupGoal(goal); !ok && sess.State == StateGoalSelect {
				return sess, fmt.Errorf("%w: unknown goal %q", ErrInvalidTransition, goal)
			}
			return e.toResult(sess, goal), nil
		}
		sess.State = a.Target
		return sess, nil

	case ActionRegenerate:
		if sess.State != StateResult {
			return sess, fmt.Errorf("%w: regenerate is only available on a result", ErrInvalidTransition)
		}
		return e.toResult(sess, sess.Goal), nil

	case ActionCustom:
		if sess.State != StateGoalSelect {
			return sess, fmt.Errorf("%w: custom goals are only accepted during goal selection", ErrInvalidTransition)
		}
		text := strings.TrimSpace(a.Text)
		if text == "" {
			return sess, fmt.Errorf("%w: custom goal is empty", ErrInvalidTransition)
		}
		return e.toResult(sess, text), nil
	}
	return sess, fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, a.Kind)
}

func (e *Engine) toResult(sess Session, goal string) Session {
	q := e.quotes.Generate(goal)
	sess.State = StateResult
	sess.Goal = goal
	sess.Quote = &q
	return sess
}
