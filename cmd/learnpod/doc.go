// Command learnpod turns a Markdown study document into a podcast-style
// learning package: a two-speaker script, a detailed explanation, a Q&A set
// with flashcards, and narrated audio, optionally delivered by email.
//
// Usage:
//
//	learnpod run notes.md --length 15 --lang ja --no-email
//	learnpod ingest notes.md
//	learnpod script notes.md
//	learnpod explain outputs/250601_1200/script.md
//	learnpod questions outputs/250601_1200/script.md
//	learnpod audio outputs/250601_1200/script.md
//	learnpod config init|validate|check
package main
