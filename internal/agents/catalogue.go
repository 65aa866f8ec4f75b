package agents

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/rively/internal/inference"
)

// Catalogue names.
const (
	SimilarClientDiscovery = "Similar Client Discovery Agent"
	ContentMarketing       = "Content Marketing Agent"
)

// Agent describes one specialized follow-up agent.
type Agent struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Input       string             `json:"input"`
	UseWhen     string             `json:"use_when"`
	Identity    inference.Identity `json:"identity"`
}

// Catalogue is the closed, ordered set of agents available to dispatch.
type Catalogue struct {
	agents []Agent
}

// DefaultCatalogue returns the two production agents.
func DefaultCatalogue() Catalogue {
	return NewCatalogue(
		Agent{
			Name:        SimilarClientDiscovery,
			Description: "This agent takes a company name, domain, or a brief description as input and finds similar companies using Perplexity. It returns a list of similar companies along with their domains for further lead discovery or sales prospecting.",
			Input:       "company domain (or) name + description",
			UseWhen:     "when the company's update is about onboarding a new customer or client.",
			Identity: inference.Identity{
				AgentID:   "686cada6868e419e65c9ec21",
				SessionID: "686cada6868e419e65c9ec21-ku9x9k8abpg",
			},
		},
		Agent{
			Name:        ContentMarketing,
			Description: "This agent takes a piece of content (blog, post, tweet, text) as input and creates a better and plagiarism free content of same type. It also suggests trending topics for consideration.",
			Input:       "content",
			UseWhen:     "when the company's update is about content marketing, blog posts, or social media updates.",
			Identity: inference.Identity{
				AgentID:   "686cf6114cba69cf109dfaaf",
				SessionID: "686cf6114cba69cf109dfaaf-fmqewle6bb5",
			},
		},
	)
}

// NewCatalogue copies agents into an immutable catalogue.
func NewCatalogue(agents ...Agent) Catalogue {
	return Catalogue{agents: append([]Agent(nil), agents...)}
}

// Lookup returns the agent with an exactly matching name.
func (c Catalogue) Lookup(name string) (Agent, bool) {
	for _, a := range c.agents {
		if a.Name == name {
			return a, true
		}
	}
	return Agent{}, false
}

// Names lists agent names in catalogue order.
func (c Catalogue) Names() []string {
	names := make([]string, len(c.agents))
	for i, a := range c.agents {
		names[i] = a.Name
	}
	return names
}

// Agents returns a copy of the catalogue entries.
func (c Catalogue) Agents() []Agent {
	return append([]Agent(nil), c.agents...)
}

// Describe renders the catalogue for inclusion in the dispatch prompt.
func (c Catalogue) Describe() string {
	var sb strings.Builder
	for _, a := range c.agents {
		fmt.Fprintf(&sb, "%q: %q\n", a.Name,
			fmt.Sprintf("%s input: %s. Only when to use: %s", a.Description, a.Input, a.UseWhen))
	}
	return sb.String()
}
