// Package salon supplies the stylist and coupon reference data used by the
// stylist selection stage.
//
// Data is keyed by the salon's HotPepper Beauty URL. FileSource reads a
// YAML or JSON export of that data from disk, and CachedSource memoizes any
// Source through the analysis cache so repeated runs reuse the same lists.
package salon
