// Package patchcache keeps the patch documents of an in-flight hunk
// selection on disk, because "git apply" consumes files rather than text.
//
// Each entry holds up to three scratch files named after the entry hash:
// <hash>-or.patch (all hunks), <hash>-ac.patch (accepted hunks) and, when at
// least one hunk was rejected, <hash>-ig.patch (ignored hunks). Entries live
// until Clear removes them; files left behind by a crashed run are not swept
// by the cache.
package patchcache
