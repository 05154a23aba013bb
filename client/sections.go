package client

import (
	"slices"

	"github.com/kbukum/apihelper/errors"
)

// SectionFactory builds a section handle bound to a client.
type SectionFactory func(c *Client) any

// buildSections resolves every section the provider declares. Called once,
// after the session is installed.
func (c *Client) buildSections() {
	sp, ok := c.provider.(SectionProvider)
	if !ok {
		return
	}
	factories := sp.Sections()
	c.sections = make(map[string]any, len(factories))
	for name, f := range factories {
		c.sections[name] = f(c)
	}
}

// SectionNames returns the registered section names, sorted.
func (c *Client) SectionNames() []string {
	names := make([]string, 0, len(c.sections))
	for name := range c.sections {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Section returns the named section handle as T.
//
//	users, err := client.Section[*vk.UsersSection](c, "users")
func Section[T any](c *Client, name string) (T, error) {
	var zero T
	s, ok := c.sections[name]
	if !ok {
		return zero, errors.InvalidArgument("provider %s has no section %q", c.Name(), name)
	}
	typed, ok := s.(T)
	if !ok {
		return zero, errors.InvalidArgument("section %q is %T, not %T", name, s, zero)
	}
	return typed, nil
}
