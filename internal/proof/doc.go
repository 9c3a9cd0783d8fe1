// Package proof implements the two-pass proofreading pipeline: safe-
// boundary chunking, detector and judge model passes, the ordered
// heuristic filter chain, and the variant splitter that produces the
// final reports.
package proof
