// Package quiz produces the comprehension Q&A set (questions.md) and the
// flashcard deck derived from its keyword section (flashcards.yaml).
//
// The deck comes from a second generation call asking for YAML. When that
// output does not validate, the deck is rebuilt locally from the keyword
// Q&A pairs with positional ids (keyword_01, keyword_02, ...), so the same
// malformed response always yields the same deck.
package quiz
