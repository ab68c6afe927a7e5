// Package token defines lexical token kinds and the Token value produced by
// the lexer.
// Invariants:
//   - Token.Span covers exactly the bytes the lexer classified; the lexeme is
//     recovered by slicing the source buffer, never stored in the token.
//   - Kind values 1..255 are fallback kinds: a byte b the lexer does not
//     recognize becomes Kind(b). Named kinds start at 256 and never collide
//     with a byte value.
//   - Only Int tokens carry an IntValue payload and only Name tokens carry a
//     NameValue payload; every other kind has none.
package token
