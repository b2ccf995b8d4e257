// Package token defines the lexical tokens of random map scripts.
// Invariants:
//   - Token.Text is the exact source slice for lexed tokens; synthesized
//     tokens (macro output, hoisted constants) carry generated text and the
//     span of the construct that produced them.
//   - Whitespace and comments never appear as tokens in the main stream.
//     They are Trivia attached to the following token (Leading), so the
//     concatenation of every Leading text and Text reproduces the input.
//   - Directive tokens keep the '#' in Text. Their names are matched
//     case-insensitively.
//   - The body between #HEADER_START and #HEADER_END is one Raw token.
package token
