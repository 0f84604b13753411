// Package index implements the containers.index codec.
//
// The index is a header ([MetaData]) followed by one [Entry] per container.
// Both are versioned: the header version selects which optional header fields
// exist and also the layout of every entry that follows. Versions above
// [MaxVersion] are rejected.
package index
