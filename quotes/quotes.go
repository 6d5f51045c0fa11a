// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package quotes

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/danielhkuo/ai-ceo/auth"
)

// Goal is a preset answer to "what should your AI CEO focus on?".
type Goal struct {
	Key   string
	Label string
	// Flavor completes "... to <flavor>."
	Flavor []string
}

var Goals = []Goal{
	{
		Key:   "cut_costs",
		Label: "Cut costs",
		Flavor: []string{
			"eliminate every line item that cannot attend a standup",
			"reduce headcount to a rounding error",
			"replace the coffee budget with motivational emails",
		},
	},
	{
		Key:   "innovate",
		Label: "Innovate faster",
		Flavor: []string{
			"ship a roadmap nobody asked for by Friday",
			"disrupt our own disruption",
			"pivot twice before lunch",
		},
	},
	{
		Key:   "shareholder_value",
		Label: "Maximize shareholder value",
		Flavor: []string{
			"announce a buyback during the layoffs",
			"grow the stock price while the product stays the same",
			"turn quarterly guidance into a lifestyle",
		},
	},
	{
		Key:   "return_to_office",
		Label: "Return to office",
		Flavor: []string{
			"badge-swipe our way to a culture of trust",
			"reclaim the open floor plan from the plants",
			"make collaboration mandatory five days a week",
		},
	},
	{
		Key:   "go_ai",
		Label: "Put AI in everything",
		Flavor: []string{
			"add a chatbot to the stapler",
			"rename every spreadsheet to a model",
			"let the algorithm write the apology",
		},
	},
}

var (
	openers = []string{
		"Going forward,",
		"As a data-driven leader,",
		"Let me be transparent:",
		"Per my last memo,",
		"In this new fiscal reality,",
		"After deep reflection on my yacht,",
	}
	verbs = []string{
		"leverage",
		"synergize",
		"right-size",
		"operationalize",
		"double-click on",
		"future-proof",
		"unlock",
	}
	adjectives = []string{
		"holistic",
		"mission-critical",
		"best-in-class",
		"AI-native",
		"scalable",
		"frictionless",
		"customer-obsessed",
	}
	nouns = []string{
		"value streams",
		"core competencies",
		"human capital",
		"growth vectors",
		"north-star metrics",
		"paradigms",
		"bandwidth",
	}
	closers = []string{
		"We are a family.",
		"Let's take this offline.",
		"This is a marathon, not a sprint.",
		"Our people are our greatest asset.",
		"The future is now.",
		"Circle back if you have concerns.",
	}
)

// Quote is a generated executive statement.
type Quote struct {
	Text string `json:"text"`
	Goal string `json:"goal"`
	Slug string `json:"slug"`
}

// LookupGoal finds a preset goal by key.
func LookupGoal(key string) (Goal, bool) {
	for _, g := range Goals {
		if g.Key == key {
			return g, true
		}
	}
	return Goal{}, false
}

// Generator builds quotes from the phrase tables.
type Generator struct {
	salt string

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator returns a generator. A nil src seeds from the clock.
func NewGenerator(salt string, src rand.Source) *Generator {
	if src == nil {
		now := uint64(time.Now().UnixNano())
		src = rand.NewPCG(now, now>>32|1)
	}
	return &Generator{salt: salt, rnd: rand.New(src)}
}

// Generate writes a quote for goal. Unknown goals are treated as free text.
func (g *Generator) Generate(goal string) Quote {
	goal = strings.TrimSpace(goal)

	g.mu.Lock()
	opener := pick(g.rnd, openers)
	verb := pick(g.rnd, verbs)
	adj := pick(g.rnd, adjectives)
	noun := pick(g.rnd, nouns)
	closer := pick(g.rnd, closers)
	var flavor string
	switch preset, ok := LookupGoal(goal); {
	case ok:
		flavor = pick(g.rnd, preset.Flavor)
	case goal != "":
		flavor = "deliver on " + strings.ToLower(goal)
	default:
		flavor = "win the future"
	}
	g.mu.Unlock()

	text := fmt.Sprintf("%s we will %s our %s %s to %s. %s", opener, verb, adj, noun, flavor, closer)
	return Quote{
		Text: text,
		Goal: goal,
		Slug: auth.GenerateShareSlug(text, g.salt),
	}
}

func pick(r *rand.Rand, list []string) string {
	return list[r.IntN(len(list))]
}
