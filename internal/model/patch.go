package model

// Opt wraps an optional patch field, distinguishing "field absent from the
// request" (Set == false) from "field explicitly supplied" (Set == true).
// For nullable fields the value type is itself a pointer, so
// Opt[*string]{Set: true, Value: nil} means "explicitly cleared".
type Opt[T any] struct {
	Set   bool
	Value T
}

// Some returns a set Opt holding v.
func Some[T any](v T) Opt[T] {
	return Opt[T]{Set: true, Value: v}
}

// DocumentPatch carries the updatable document fields. Title and Content
// omitted from the request are not compared against current state and cannot
// trigger a new version. CategoryID distinguishes absent (no change), set to
// an id (re-file), and set to nil (un-file).
type DocumentPatch struct {
	Title      Opt[string]
	Content    Opt[string]
	CategoryID Opt[*string]
	ChangeNote Opt[string]
}

// Empty reports whether the patch carries no fields at all.
func (p DocumentPatch) Empty() bool {
	return !p.Title.Set && !p.Content.Set && !p.CategoryID.Set
}
