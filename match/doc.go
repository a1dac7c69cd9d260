// Package match decides which decoded nodes are kept.
//
// A Matcher runs in one of two modes, fixed when it is created:
//
//   - Filter mode (non-empty Filter): a node is kept when at least one of its tag
//     keys is in the filter and the filter's value set for that key holds the
//     Wildcard or one of the node's values for the key.
//   - Discovery mode (nil or empty Filter): every node is kept and every
//     key/value pair seen is recorded in a Vocabulary.
package match
