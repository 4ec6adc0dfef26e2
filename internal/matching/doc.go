// Package matching provides deterministic, offline implementations of the
// stylist/coupon selection and template ranking collaborators. They score
// candidates by text similarity against the style analysis and are used when
// no model-backed matcher is configured, and as the fallback in tests.
package matching
