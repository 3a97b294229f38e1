/* phase.go
 * Contains the pure mapping from runtime settings and wall-clock time to the current
 * event phase. Callers must evaluate this fresh every time; caching a phase goes
 * stale the moment a milestone passes.
 * Authors: Zachary Bower
 */

package logic

import (
	"time"

	"qrhunt/api/store"
)

// Phase is the stage of the event at a point in time
type Phase string

const (
	PhaseUnknown  Phase = "unknown"
	PhasePre      Phase = "pre"
	PhaseRunning  Phase = "running"
	PhaseFrozen   Phase = "frozen"
	PhaseFinished Phase = "finished"
)

// PhaseInfo is the result of evaluating the event phase
type PhaseInfo struct {
	Phase              Phase      `json:"phase"`
	CountdownTarget    *time.Time `json:"countdown_target,omitempty"`
	LeaderboardVisible bool       `json:"leaderboard_visible"`
}

// EvaluatePhase maps settings and now to the current phase.
// Unknown means the event window is not fully configured yet.
func EvaluatePhase(settings store.Settings, now time.Time) PhaseInfo {
	if settings.EventStart == nil || settings.EventEnd == nil {
		return PhaseInfo{Phase: PhaseUnknown}
	}

	if now.Before(*settings.EventStart) {
		return PhaseInfo{
			Phase:           PhasePre,
			CountdownTarget: settings.EventStart,
		}
	}

	if !now.Before(*settings.EventEnd) {
		return PhaseInfo{
			Phase:              PhaseFinished,
			LeaderboardVisible: true,
		}
	}

	if settings.FreezeAt != nil && !now.Before(*settings.FreezeAt) {
		return PhaseInfo{
			Phase:           PhaseFrozen,
			CountdownTarget: settings.EventEnd,
		}
	}

	target := settings.EventEnd
	if settings.FreezeAt != nil {
		target = settings.FreezeAt
	}
	return PhaseInfo{
		Phase:              PhaseRunning,
		CountdownTarget:    target,
		LeaderboardVisible: true,
	}
}
