// Package templates loads the salon's title template catalog and matches a
// style analysis against it.
//
// The catalog is a CSV with category, title, menu, comment, and hashtag
// columns (English or Japanese headers). Matching prefers templates whose
// category equals the analysed category and ranks the rest by TF-IDF cosine
// similarity over the template text, using textutil fingerprints so that
// Japanese text without word boundaries still compares meaningfully.
package templates
