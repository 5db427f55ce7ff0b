package region

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Region identifies a Wargaming realm.
type Region string

const (
	EU   Region = "EU"
	NA   Region = "NA"
	ASIA Region = "ASIA"
)

var (
	// ErrUnknownRegion is returned for region codes or provider URLs that do
	// not map to a configured region.
	ErrUnknownRegion = errors.New("unknown region")

	// ErrInvalidEndpoint is a configuration error: an API path could not be
	// resolved against a region's base URL.
	ErrInvalidEndpoint = errors.New("invalid endpoint")
)

// All lists the supported regions.
var All = []Region{EU, NA, ASIA}

// ParseRegion converts a region code into a Region. Unknown codes are an
// error; there is no default region.
func ParseRegion(code string) (Region, error) {
	for _, r := range All {
		if string(r) == code {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRegion, code)
}

// Endpoints holds the two external URLs of a region.
type Endpoints struct {
	// IdentityProvider is the OpenID 2.0 provider endpoint. It doubles as the
	// openid.op_endpoint value the provider puts into its assertions.
	IdentityProvider *url.URL
	// APIBase is the base URL of the public statistics API.
	APIBase *url.URL
}

// Registry is an immutable mapping from region to endpoints. It is safe for
// concurrent use.
type Registry struct {
	endpoints map[Region]Endpoints
}

// NewRegistry validates raw and builds a Registry. Every entry must carry two
// absolute URLs.
func NewRegistry(raw map[Region][2]string) (*Registry, error) {
	if len(raw) == 0 {
		return nil, errors.New("region registry is empty")
	}

	endpoints := make(map[Region]Endpoints, len(raw))
	for r, urls := range raw {
		if _, err := ParseRegion(string(r)); err != nil {
			return nil, err
		}
		provider, err := parseAbsolute(urls[0])
		if err != nil {
			return nil, fmt.Errorf("identity provider URL for %s: %w", r, err)
		}
		api, err := parseAbsolute(urls[1])
		if err != nil {
			return nil, fmt.Errorf("API base URL for %s: %w", r, err)
		}
		endpoints[r] = Endpoints{IdentityProvider: provider, APIBase: api}
	}

	return &Registry{endpoints: endpoints}, nil
}

// DefaultRegistry returns the production endpoints.
func DefaultRegistry() *Registry {
	reg, err := NewRegistry(map[Region][2]string{
		EU:   {"https://eu.wargaming.net/id/openid/", "https://api.worldoftanks.eu"},
		NA:   {"https://na.wargaming.net/id/openid/", "https://api.worldoftanks.com"},
		ASIA: {"https://asia.wargaming.net/id/openid/", "https://api.worldoftanks.asia"},
	})
	if err != nil {
		panic(fmt.Sprintf("default region registry: %v", err))
	}
	return reg
}

// Resolve returns the endpoints of a region. Callers get copies of the URLs
// so the registry stays immutable.
func (reg *Registry) Resolve(r Region) (Endpoints, error) {
	ep, ok := reg.endpoints[r]
	if !ok {
		return Endpoints{}, fmt.Errorf("%w: %q", ErrUnknownRegion, r)
	}
	return Endpoints{
		IdentityProvider: cloneURL(ep.IdentityProvider),
		APIBase:          cloneURL(ep.APIBase),
	}, nil
}

// JoinEndpoint resolves path against the API base URL of a region. The path
// must be a relative reference; anything carrying its own scheme or host is
// rejected with ErrInvalidEndpoint.
func (reg *Registry) JoinEndpoint(r Region, path string) (*url.URL, error) {
	ep, err := reg.Resolve(r)
	if err != nil {
		return nil, err
	}

	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidEndpoint, path, err)
	}
	if path == "" || ref.IsAbs() || ref.Host != "" || ref.User != nil {
		return nil, fmt.Errorf("%w: %q is not a relative path", ErrInvalidEndpoint, path)
	}

	return ep.APIBase.ResolveReference(ref), nil
}

// RegionForProvider finds the region whose identity provider URL equals
// opEndpoint, the discriminator carried in OpenID assertions.
func (reg *Registry) RegionForProvider(opEndpoint string) (Region, error) {
	u, err := url.Parse(opEndpoint)
	if err != nil {
		return "", fmt.Errorf("%w: provider %q", ErrUnknownRegion, opEndpoint)
	}
	for r, ep := range reg.endpoints {
		if sameURL(ep.IdentityProvider, u) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: provider %q", ErrUnknownRegion, opEndpoint)
}

func parseAbsolute(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%q is not an absolute URL", raw)
	}
	return u, nil
}

func sameURL(a, b *url.URL) bool {
	return strings.EqualFold(a.Scheme, b.Scheme) &&
		strings.EqualFold(a.Host, b.Host) &&
		a.EscapedPath() == b.EscapedPath() &&
		a.RawQuery == b.RawQuery
}

func cloneURL(u *url.URL) *url.URL {
	c := *u
	if u.User != nil {
		user := *u.User
		c.User = &user
	}
	return &c
}
