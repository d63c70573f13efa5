// Package treent adds a generic hierarchical composition tree to entities
// that are otherwise flat, independent records in a component registry.
//
// A tree is configured as a Shape: an ordered list of tree-aware component
// kinds. Each kind embeds TreeComponent and defines a single Compose method
// that combines two states of the kind into one; Descend propagates state
// from ancestors into descendants, Ascend aggregates state from a node up
// into its ancestors. The Treent facade wraps one entity, keeps the
// structural links of all kinds in lockstep and owns its subtree.
//
// All structural mutation and traversal is assumed to run on a single
// goroutine, there is no internal locking.
package treent
