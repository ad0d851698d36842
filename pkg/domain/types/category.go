package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// CategoryID is the risk category slug shared by risks and incidents.
// Incident history is matched on exact equality, so both sides must use the
// same normalized form.
type CategoryID string

var categoryPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Validate checks that the category is a lowercase slug such as "operational" or "data-breach"
func (c CategoryID) Validate() error {
	if c == "" {
		return goerr.New("risk category is required")
	}
	if !categoryPattern.MatchString(string(c)) {
		return goerr.New("risk category must be a lowercase slug joined by single hyphens", goerr.V("category", c))
	}
	return nil
}

func (c CategoryID) String() string {
	return string(c)
}

// ParseCategoryID parses a category slug. An empty string yields an empty
// category only when allowEmpty is set.
func ParseCategoryID(s string, allowEmpty bool) (CategoryID, error) {
	c := CategoryID(s)
	if s == "" && allowEmpty {
		return c, nil
	}
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}
