/*
Package fcsql parses and structurally edits multi-layer annotation queries.

# Overview

A query is a sequence of segments matched against consecutive tokens of an
annotated corpus. Each segment constrains one or more annotation layers:

	[ word = "walk" & pos != "NOUN" ] [ lemma = "up|down"/i ]{1,2} within s

Items can be grouped and repeated, alternatives are separated by "|", and an
optional within clause limits the match to a structural scope.

# Parsing

Parse lexes the text (whitespace is kept as hidden tokens) and builds a
concrete syntax tree in a cst.Tree arena. Wrapper nodes are only created when
they hold more than one element: a query made of one segment has a Simple
node as its main part, not a one-element Sequence. Syntax errors are
collected on the tree; Parse never fails.

# Editing

An Editor schedules text edits against the token positions of one parsed
tree. Operations are named after what a user does:

  - AddSegmentFirst, AddSegmentAfter, RemoveSegment
  - SetWithin
  - ChangeLayer, ChangeOperator, ChangeValue, SetImplicitValue, SetFlags
  - Wrap, Unwrap, ChangeToList, RemoveExpression
  - AddQuantifier, RemoveQuantifier, SetQuantifier

After one operation, Render returns the new text, which the caller parses
again before the next edit. A failed operation leaves the text untouched.

# Quantifiers

DecodeQuantifier classifies a quantifier node into one of seven shapes and
Quantifier.Encode renders a shape back, so that:

	DecodeQuantifier(Parse("[]" + q.Encode())...) == q
*/
package fcsql
