package tokengate

import "github.com/porthorian/tokengate/pkg/strategy"

// BuildProfile maps a raw userinfo payload into the canonical profile shape.
// It is a pure transformation: no I/O, no side effects. The result is nil
// when the payload lacks the provider-scoped subject, in which case the
// overall authentication attempt must be rejected.
func BuildProfile(raw map[string]any, provider string) *strategy.Profile {
	subject, _ := raw["sub"].(string)
	if subject == "" {
		return nil
	}

	profile := &strategy.Profile{
		Subject:  subject,
		Provider: provider,
	}

	if name, ok := raw["name"].(string); ok && name != "" {
		profile.DisplayName = name
	}
	if email, ok := raw["email"].(string); ok && email != "" {
		profile.Emails = append(profile.Emails, email)
	}
	if picture, ok := raw["picture"].(string); ok && picture != "" {
		profile.Photos = append(profile.Photos, picture)
	}

	return profile
}
