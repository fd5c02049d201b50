// Package expr parses the operator language that selects temporal
// relations and the function applied to matched maps.
//
// An operator is a brace-delimited body:
//
//	{equal|during,+!:}
//
// The body starts with an optional '|'-separated relation list. After a
// comma (or on its own) comes an optional temporal combination mode
// ("=", "|", "&" or "+") followed by the function. Plain operators use the
// select functions ":" and "!:", the count function "#" or one of the
// overlay functions "|", "&", "+", "^" and "~". Comparison operators,
// parsed with ParseComparison, use "&&" and "||".
//
// Omitting the relation list selects equal. Omitting the temporal mode in
// front of a function selects "=". A bare relation list has no mode and no
// function.
//
// Parsing is all-or-nothing: either the whole input is accepted or a
// *ParseError with the offending byte offset is returned.
package expr
