// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package guard

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/canteen-vote/models"
)

var ErrInvalidPolicy = errors.New("invalid role policy")

type Kind int

const (
	Allow Kind = iota
	Loading
	Redirect
)

func (k Kind) String() string {
	switch k {
	case Allow:
		return "allow"
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Decision is what a protected route should do with a request.
// Target is set only for Redirect.
type Decision struct {
	Kind   Kind
	Target string
}

// Input is the slice of auth state a decision depends on
type Input struct {
	Loading       bool
	Authenticated bool
	Role          models.Role
}

// Policy holds the redirect targets. RoleHome maps each role to the page a
// user of that role lands on when sent away from a page they may not see.
type Policy struct {
	SignIn   string                 `yaml:"sign_in"`
	Fallback string                 `yaml:"fallback"`
	RoleHome map[models.Role]string `yaml:"role_home"`
}

func DefaultPolicy() Policy {
	return Policy{
		SignIn:   "/sign-in",
		Fallback: "/",
		RoleHome: map[models.Role]string{
			models.RoleStaff: "/dashboard",
			models.RoleVoter: "/",
		},
	}
}

// HomeFor returns the landing page for role, or Fallback for roles the
// policy does not know.
func (p Policy) HomeFor(role models.Role) string {
	if home, ok := p.Home(role); ok {
		return home
	}
	return p.Fallback
}

// Home returns the landing page configured for role, if any
func (p Policy) Home(role models.Role) (string, bool) {
	home, ok := p.RoleHome[role]
	return home, ok && home != ""
}

// Decide applies the guard rules in order: a pending auth check shows the
// loading page, an anonymous user goes to sign-in, a user whose role is not
// in allowed goes to their role home. An empty allowed list admits any
// authenticated user.
func (p Policy) Decide(in Input, allowed ...models.Role) Decision {
	if in.Loading {
		return Decision{Kind: Loading}
	}
	if !in.Authenticated {
		return Decision{Kind: Redirect, Target: p.SignIn}
	}
	if len(allowed) > 0 && !slices.Contains(allowed, in.Role) {
		return Decision{Kind: Redirect, Target: p.HomeFor(in.Role)}
	}
	return Decision{Kind: Allow}
}

// LoadPolicy reads a YAML policy file. Fields it omits keep their defaults;
// role_home entries are merged over the default map.
//
//	sign_in: /sign-in
//	fallback: /
//	role_home:
//	  staff: /dashboard
//	  voter: /
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("reading role policy: %w", err)
	}

	var file Policy
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Policy{}, fmt.Errorf("%w: %w", ErrInvalidPolicy, err)
	}

	if file.SignIn != "" {
		p.SignIn = file.SignIn
	}
	if file.Fallback != "" {
		p.Fallback = file.Fallback
	}
	for role, home := range file.RoleHome {
		p.RoleHome[role] = home
	}

	if err := p.validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// validate rejects targets that are not local paths, so the policy can never
// produce an open redirect.
func (p Policy) validate() error {
	check := func(name, target string) error {
		if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
			return fmt.Errorf("%w: %s must be a local path, got %q", ErrInvalidPolicy, name, target)
		}
		return nil
	}

	if err := check("sign_in", p.SignIn); err != nil {
		return err
	}
	if err := check("fallback", p.Fallback); err != nil {
		return err
	}
	for role, home := range p.RoleHome {
		if err := check("role_home."+string(role), home); err != nil {
			return err
		}
	}
	return nil
}
