// Package match compares property names across schemas.
//
// Key functions:
//   - Tokenize / NormalizeName: split and fold names such as
//     "minVerticalClearance_ft" or "separacion-vertical"
//   - Levenshtein / Similarity: edit distance and its normalized score
//   - RankTargets / Suggest: rank global properties as mapping targets for a
//     document property that has none yet
//   - Closest: nearest identifiers for "did you mean" hints
package match
