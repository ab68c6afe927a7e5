// Package diag defines the diagnostic model shared by the lexer and the
// driver.
//
// Diagnostics here are advisory: the lexer never fails, so nothing it reports
// changes the token stream. Codes in the 1000 range come from the lexer
// (stray bytes, integer overflow), 4000 from file loading and 6000 from the
// token cache.
//
// Package diag does not format or print anything; rendering lives in
// internal/diagfmt.
package diag
