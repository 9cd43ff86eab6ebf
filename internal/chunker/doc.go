// Package chunker splits long text into pieces that fit a generation
// service's token budget.
//
// SplitByBudget packs paragraphs greedily and falls back to sentence
// boundaries for a paragraph that cannot fit on its own. A single sentence
// larger than the budget is emitted whole: content is never dropped to satisfy
// a size limit. SplitScriptForNarration packs whole dialogue lines so that no
// utterance is ever divided between two synthesis calls.
//
// Both functions take the cost oracle as a parameter. Callers pass an exact
// counter backed by the model (see llm.CostFunc) or Estimate.
package chunker
