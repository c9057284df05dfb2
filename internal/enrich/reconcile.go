package enrich

import (
	"github.com/sells-group/contact-enricher/internal/model"
)

// Reconciler merges model-reported and regex-found social profiles.
type Reconciler struct {
	matchers []PlatformMatcher
}

// NewReconciler returns a Reconciler over matchers, in priority order.
// With no matchers it uses DefaultMatchers.
func NewReconciler(matchers ...PlatformMatcher) *Reconciler {
	if len(matchers) == 0 {
		matchers = DefaultMatchers()
	}
	return &Reconciler{matchers: matchers}
}

// profileSet keeps at most one profile per platform. The first profile
// added for a platform wins.
type profileSet struct {
	seen     map[model.Platform]bool
	profiles []model.SocialProfile
}

func (s *profileSet) add(p model.SocialProfile) {
	if s.seen[p.Platform] {
		return
	}
	if s.seen == nil {
		s.seen = make(map[model.Platform]bool)
	}
	s.seen[p.Platform] = true
	s.profiles = append(s.profiles, p)
}

// Reconcile builds the social profiles of a contact. Model-reported URLs are
// added first, flagged primary when primaryPlatform names their platform.
// URLs found in rawText then fill platforms the model left empty.
func (r *Reconciler) Reconcile(d *model.ExtractedDossier, rawText string) []model.SocialProfile {
	var set profileSet
	primary := ""
	if d != nil {
		primary = d.PrimaryPlatform
	}

	for _, m := range r.matchers {
		url := m.ExtractedURL(d)
		if url == "" {
			continue
		}
		username, _ := m.Username(url)
		set.add(model.SocialProfile{
			Platform:  m.Platform(),
			URL:       url,
			Username:  username,
			IsPrimary: primary != "" && m.IsLabel(primary),
		})
	}

	for _, m := range r.matchers {
		found := m.FindAll(rawText)
		if len(found) == 0 {
			continue
		}
		username, _ := m.Username(found[0])
		set.add(model.SocialProfile{
			Platform: m.Platform(),
			URL:      found[0],
			Username: username,
		})
	}

	if set.profiles == nil {
		return []model.SocialProfile{}
	}
	return set.profiles
}
