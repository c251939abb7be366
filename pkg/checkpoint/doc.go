// Package checkpoint saves and restores the crawl frontier.
//
// When a crawl run fails or is interrupted, the whole pending frontier is
// written to the checkpoint file, one "level, id" line per entry, using a
// temporary file and rename so a crash never leaves a truncated checkpoint.
// The next run resumes from it when it holds at least one valid entry and
// falls back to the seed file (one id per line, all at level 0) otherwise.
//
// A Manager is constructed once by the command and handed to the crawl
// driver; there is no package-level state.
package checkpoint
