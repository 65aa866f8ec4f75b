package pipeline

import (
	"slices"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

func get[T any](s state.State, key string) (T, bool) {
	var zero T
	val, ok := s.Get(key)
	if !ok {
		return zero, false
	}
	v, ok := val.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

func flag(key string) func(state.State) bool {
	return func(s state.State) bool {
		v, _ := get[bool](s, key)
		return v
	}
}

func recordDegradation(s state.State, rt *Runtime, d Degradation) state.State {
	rt.Metrics.Degradations.WithLabelValues(d.Stage, string(d.Kind)).Inc()

	current, _ := get[[]Degradation](s, KeyDegradations)
	return s.Set(KeyDegradations, append(slices.Clone(current), d))
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
