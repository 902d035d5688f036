package validate

import (
	"regexp"
	"strings"
)

var (
	reKey     = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reUUID    = regexp.MustCompile(`^[A-Za-z0-9:._-]{1,80}$`)
	reCoupon  = regexp.MustCompile(`^[A-Za-z0-9_-]{1,50}$`)
	reSlug    = regexp.MustCompile(`^[a-z0-9_-]{1,100}$`)
	reCountry = regexp.MustCompile(`^[A-Z]{2}$`)
	rePostal  = regexp.MustCompile(`^[A-Za-z0-9 -]{1,12}$`)
	reSubdiv  = regexp.MustCompile(`^[A-Za-z0-9-]{1,6}$`)
)

// CartKey validates a remote cart key (a numeric site/user id or no-user).
func CartKey(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reKey.MatchString(s)
}

// UUID validates the uuid of a cart item, including local placeholders.
func UUID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reUUID.MatchString(s)
}

func Coupon(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reCoupon.MatchString(s)
}

// Slug accepts an empty slug; product_id is what identifies a product.
func Slug(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	return s, reSlug.MatchString(s)
}

func ProductID(id int) bool {
	return id > 0
}

func Quantity(q *int) bool {
	return q == nil || (*q >= 1 && *q <= 1000)
}

// Country requires an ISO 3166-1 alpha-2 code.
func Country(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	return s, reCountry.MatchString(s)
}

// Postal accepts an empty postal code.
func Postal(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	return s, rePostal.MatchString(s)
}

// Subdivision accepts an empty subdivision code.
func Subdivision(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", true
	}
	return s, reSubdiv.MatchString(s)
}
