// Package highscore persists the single best score of a game.
//
// Both stores implement engine.HighScoreStore. FileStore writes the score as
// a decimal integer followed by a newline and replaces the file atomically;
// a missing file reads as "nothing stored yet". MemoryStore is used by tests
// and by sessions started without a data directory.
package highscore
