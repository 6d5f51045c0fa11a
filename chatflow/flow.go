// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package chatflow

import "github.com/danielhkuo/ai-ceo/quotes"

type State string

const (
	StateWelcome    State = "welcome"
	StateGoalSelect State = "goal_select"
	StateResult     State = "result"
	StateVoting     State = "voting"
	StateComplete   State = "complete"
)

type ActionKind string

const (
	ActionNavigate   ActionKind = "navigate"
	ActionRegenerate ActionKind = "regenerate"
	ActionCustom     ActionKind = "custom"
)

// Action is a user input. Target and Goal apply to navigate, Text to custom.
type Action struct {
	Kind   ActionKind
	Target State
	Goal   string
	Text   string
}

// Option is something the user can pick in a state.
type Option struct {
	Label  string
	Kind   ActionKind
	Target State
	Goal   string
}

// Step is the scripted content of a state.
type Step struct {
	Prompt  string
	Options []Option
}

var script = map[State]Step{
	StateWelcome: {
		Prompt: "Hi, I'm your new AI CEO. I've already scheduled an all-hands. Want to hear my vision?",
		Options: []Option{
			{Label: "Let's hear it", Kind: ActionNavigate, Target: StateGoalSelect},
			{Label: "Take me to the leaderboard", Kind: ActionNavigate, Target: StateVoting},
		},
	},
	StateResult: {
		Prompt: "Here is my statement to the company.",
		Options: []Option{
			{Label: "Say something else", Kind: ActionRegenerate},
			{Label: "Change the goal", Kind: ActionNavigate, Target: StateGoalSelect},
			{Label: "Vote on who to replace", Kind: ActionNavigate, Target: StateVoting},
		},
	},
	StateVoting: {
		Prompt: "Pick a CEO you'd replace with me. You have a few votes, spend them wisely.",
		Options: []Option{
			{Label: "Done voting", Kind: ActionNavigate, Target: StateComplete},
			{Label: "Generate another quote", Kind: ActionNavigate, Target: StateGoalSelect},
		},
	},
	StateComplete: {
		Prompt: "Thanks for your input. It has been noted and will be ignored. Share your quote to unlock more votes.",
		Options: []Option{
			{Label: "Start over", Kind: ActionNavigate, Target: StateWelcome},
		},
	},
}

// StepFor returns the prompt and options of a state.
func StepFor(s State) (Step, bool) {
	if s == StateGoalSelect {
		return goalSelectStep(), true
	}
	step, ok := script[s]
	return step, ok
}

func goalSelectStep() Step {
	opts := make([]Option, 0, len(quotes.Goals)+2)
	for _, g := range quotes.Goals {
		opts = append(opts, Option{Label: g.Label, Kind: ActionNavigate, Target: StateResult, Goal: g.Key})
	}
	opts = append(opts,
		Option{Label: "Something else", Kind: ActionCustom},
		Option{Label: "Back", Kind: ActionNavigate, Target: StateWelcome},
	)
	return Step{
		Prompt:  "What should your AI CEO focus on this quarter?",
		Options: opts,
	}
}

func canNavigate(from, to State) bool {
	step, ok := StepFor(from)
	if !ok {
		return false
	}
	for _, o := range step.Options {
		if o.Kind == ActionNavigate && o.Target == to {
			return true
		}
	}
	return false
}
