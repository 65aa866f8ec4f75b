// Package pipeline turns one raw company update into a classification draft,
// optionally enriched with an action point from a specialized agent. Stages
// run as a state graph (init → classify → gate → dispatch? → invoke? →
// synthesize? → finalize).
package pipeline

import "errors"

// Sentinel errors for pipeline operations. Only ErrClassifyFailed reaches the
// caller of Execute; the rest are carried on Outcome values.
var (
	ErrClassifyFailed  = errors.New("classification failed")
	ErrDispatchFailed  = errors.New("agent dispatch failed")
	ErrSynthesisFailed = errors.New("synthesis failed")
	ErrInvalidInput    = errors.New("invalid pipeline input")
)
