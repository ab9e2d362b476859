package video_slides

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/alanbriolat/video-slides/generic"
)

var (
	ErrDuplicateProvider = errors.New("duplicate provider name")
	ErrInvalidProvider   = errors.New("invalid provider")
	ErrNoMatch           = errors.New("no provider matched the input")
	ErrUnknownProvider   = errors.New("unknown provider")
)

var (
	PriorityHighest int16 = math.MinInt16
	PriorityDefault int16 = 0
	PriorityLowest  int16 = math.MaxInt16
)

// Identifier is the short code that uniquely addresses a hosted video, e.g. "abc123" for https://youtu.be/abc123.
type Identifier string

func (id Identifier) String() string {
	return string(id)
}

// A MatchFunc extracts an Identifier from a link, or explains why it can't. It must be pure: the same link always
// gives the same result.
type MatchFunc = func(link string) (Identifier, error)

// A Provider matches any link it knows how to handle, giving the Identifier of the video it refers to.
type Provider struct {
	Name  string
	Match MatchFunc
	// Priority of the matcher, lower (including negative) means matching earlier.
	Priority int16
}

// A Match is the result of a Provider successfully matching a link.
type Match struct {
	ProviderName string
	Identifier   Identifier
}

// A ProviderRegistry is a collection of Provider instances which can be used to try to match links.
type ProviderRegistry struct {
	providers   []*Provider
	providerMap map[string]*Provider
}

// Add registers a Provider with the ProviderRegistry. Provider.Name and Provider.Match must be set, and
// Provider.Name must be unique within the ProviderRegistry.
func (r *ProviderRegistry) Add(p Provider) error {
	if r.providerMap == nil {
		r.providerMap = make(map[string]*Provider)
	}
	if p.Name == "" || p.Match == nil {
		return ErrInvalidProvider
	}
	if _, ok := r.providerMap[p.Name]; ok {
		return ErrDuplicateProvider
	}
	r.providerMap[p.Name] = &p
	r.providers = append(r.providers, r.providerMap[p.Name])
	r.sortByPriority()
	return nil
}

// Create is a shortcut for Add(Provider{Name: ..., Match: ...}).
func (r *ProviderRegistry) Create(name string, f MatchFunc) error {
	return r.Add(Provider{
		Name:  name,
		Match: f,
	})
}

// List returns the names of registered providers in priority order.
func (r *ProviderRegistry) List() []string {
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Name)
	}
	return names
}

// Match a link against each Provider in priority order. If nothing matches, the error wraps ErrNoMatch and lists
// every provider's reason.
func (r *ProviderRegistry) Match(link string) (*Match, error) {
	var reasons *multierror.Error
	for _, p := range r.providers {
		id, err := p.Match(link)
		if err == nil && id != "" {
			return &Match{ProviderName: p.Name, Identifier: id}, nil
		}
		if err == nil {
			err = errors.New("empty identifier")
		}
		reasons = multierror.Append(reasons, multierror.Prefix(err, fmt.Sprintf("[%v]", p.Name)))
	}
	if reasons == nil {
		return nil, ErrNoMatch
	}
	reasons.ErrorFormat = listReasons
	return nil, fmt.Errorf("%w: %v", ErrNoMatch, reasons)
}

// MatchWith will attempt to match a link against a specific provider.
func (r *ProviderRegistry) MatchWith(name string, link string) (*Match, error) {
	p, ok := r.providerMap[name]
	if !ok {
		return nil, ErrUnknownProvider
	}
	id, err := p.Match(link)
	if err != nil || id == "" {
		return nil, ErrNoMatch
	}
	return &Match{ProviderName: p.Name, Identifier: id}, nil
}

// MustAdd wraps Add but panics if there is an error.
func (r *ProviderRegistry) MustAdd(p Provider) {
	generic.Unwrap_(r.Add(p))
}

// SetPriority adjust the priority of a named Provider.
func (r *ProviderRegistry) SetPriority(name string, priority int16) error {
	p, ok := r.providerMap[name]
	if !ok {
		return ErrUnknownProvider
	}
	p.Priority = priority
	r.sortByPriority()
	return nil
}

func (r *ProviderRegistry) sortByPriority() {
	sort.SliceStable(r.providers, func(i, j int) bool {
		return r.providers[i].Priority < r.providers[j].Priority
	})
}

func listReasons(errs []error) string {
	reasons := make([]string, 0, len(errs))
	for _, err := range errs {
		reasons = append(reasons, err.Error())
	}
	return strings.Join(reasons, "; ")
}

// DefaultProviderRegistry is populated by importing provider packages, usually through
// github.com/alanbriolat/video-slides/providers.
var DefaultProviderRegistry ProviderRegistry
