// Package forensic compares document reconstructions and flags tamper
// indicators.
//
// Two operations share the same underlying primitives:
//
//   - [Diff] compares two independently reconstructed page sets
//     presumed to be earlier/later states of one document and reports,
//     per page, the words, lines, image resources, and form fields
//     present only in the later version.
//   - [Scanner] examines a single document's raw revision signals and
//     fragment geometry for signs of after-the-fact modification:
//     rewritten objects, overlapping text, localized font switches,
//     and suspicious gaps in the text flow.
//
// The diff is a pure case-insensitive set comparison: content that is
// merely repositioned but textually identical is not reported.
package forensic
