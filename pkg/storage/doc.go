// Package storage persists the crawled follower graph as flat files.
//
// Each crawled account gets one adjacency file, <dir>/<id>.txt, holding the
// ids of its followers one per line. The presence of that file is the only
// record that an account has been crawled, so it is honored across runs and
// restarts. Files are written to a temporary name and renamed into place, so
// an interrupted write never leaves a half-written list that would mark the
// account as done.
//
// The Manager keeps an in-memory index of crawled ids built from the
// directory at startup and re-checks the disk on a miss.
//
// ReadLines and WriteLines are the line-oriented helpers shared with the
// checkpoint package.
package storage
